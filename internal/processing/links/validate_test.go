package links

import "testing"

func TestValidateURL(t *testing.T) {
	tests := []struct {
		name       string
		raw        string
		wantStatus ValidationStatus
		wantValid  bool
	}{
		{"empty is idle", "", StatusIdle, false},
		{"whitespace only is idle", "   ", StatusIdle, false},
		{"https with path", "https://example.com/a", StatusValid, true},
		{"plain http", "http://example.com", StatusValid, true},
		{"bare host http", "http://foo", StatusValid, true},
		{"missing scheme", "example.com", StatusInvalid, false},
		{"ftp scheme", "ftp://example.com", StatusInvalid, false},
		{"scheme without host", "https://", StatusInvalid, false},
		{"unparsable", "http://%zz", StatusInvalid, false},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got := ValidateURL(tt.raw)
			if got.Status != tt.wantStatus {
				t.Errorf("ValidateURL(%q).Status = %q, want %q", tt.raw, got.Status, tt.wantStatus)
			}
			if got.IsValid != tt.wantValid {
				t.Errorf("ValidateURL(%q).IsValid = %v, want %v", tt.raw, got.IsValid, tt.wantValid)
			}
			if !tt.wantValid && tt.wantStatus == StatusInvalid && got.Message == "" {
				t.Error("invalid verdict must carry a message")
			}
		})
	}
}

func TestValidateURLMessages(t *testing.T) {
	t.Run("missing scheme names http/https", func(t *testing.T) {
		got := ValidateURL("example.com")
		if got.Message != msgMissingHTTP {
			t.Errorf("got %q, want %q", got.Message, msgMissingHTTP)
		}
	})

	t.Run("host-less url asks for a complete address", func(t *testing.T) {
		got := ValidateURL("https://")
		if got.Message != msgMalformedURL {
			t.Errorf("got %q, want %q", got.Message, msgMalformedURL)
		}
	})
}
