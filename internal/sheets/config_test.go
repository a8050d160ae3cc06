package sheets

import "testing"

func TestConfigValidate(t *testing.T) {
	tests := []struct {
		name    string
		config  Config
		wantErr bool
	}{
		{
			name:    "no auth at all",
			config:  Config{},
			wantErr: true,
		},
		{
			name:    "service account only",
			config:  Config{ServiceAccountPath: "/etc/finder/sa.json"},
			wantErr: false,
		},
		{
			name: "complete oauth",
			config: Config{
				ClientID:     "id",
				ClientSecret: "secret",
				RefreshToken: "refresh",
			},
			wantErr: false,
		},
		{
			name: "partial oauth is rejected",
			config: Config{
				ClientID:     "id",
				ClientSecret: "secret",
			},
			wantErr: true,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			err := tt.config.Validate()
			if (err != nil) != tt.wantErr {
				t.Errorf("Validate() error = %v, wantErr %v", err, tt.wantErr)
			}
		})
	}
}

func TestConfigValidateDefaultsName(t *testing.T) {
	config := Config{ServiceAccountPath: "/etc/finder/sa.json"}
	if err := config.Validate(); err != nil {
		t.Fatalf("Validate() failed: %v", err)
	}
	if config.SpreadsheetName == "" {
		t.Error("expected a default spreadsheet name")
	}
}
