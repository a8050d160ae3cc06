package ebay

// browseSearchResponse is the wire shape of the Browse API item_summary
// search endpoint, trimmed to the fields the scanner reads.
type browseSearchResponse struct {
	ItemSummaries []browseItemSummary `json:"itemSummaries"`
	Total         int                 `json:"total"`
}

type browseItemSummary struct {
	ItemID     string       `json:"itemId"`
	Title      string       `json:"title"`
	Condition  string       `json:"condition"`
	ItemWebURL string       `json:"itemWebUrl"`
	Price      browsePrice  `json:"price"`
	Seller     browseSeller `json:"seller"`
}

type browsePrice struct {
	Value    string `json:"value"`
	Currency string `json:"currency"`
}

type browseSeller struct {
	Username      string `json:"username"`
	FeedbackScore int    `json:"feedbackScore"`
}
