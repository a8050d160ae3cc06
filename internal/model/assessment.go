package model

// SellerAssessment is the outcome of sampling one seller's inventory against
// the typical phrases. It lives only for the duration of a phrase-fetch
// cycle and is never persisted.
type SellerAssessment struct {
	Err        error
	Seller     string
	SampleSize int
	MatchCount int
	Ratio      float64
	Exclude    bool
}

// Included reports whether the seller passed qualification. A seller is in
// scope only when its sampled inventory shows incidental (0 < ratio <= 20)
// overlap with the target niche.
func (a SellerAssessment) Included() bool {
	return !a.Exclude
}
