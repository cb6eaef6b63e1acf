package validation

import "testing"

type createPayload struct {
	URL      string `json:"url" validate:"required,notblank,http_url"`
	Alias    string `json:"alias" validate:"alias"`
	Provider string `json:"provider" validate:"provider"`
}

func TestCustomTags(t *testing.T) {
	tests := []struct {
		name    string
		payload createPayload
		wantErr bool
	}{
		{"valid full payload", createPayload{URL: "https://example.com", Alias: "foo-link", Provider: "bit.ly"}, false},
		{"empty alias and provider allowed", createPayload{URL: "https://example.com"}, false},
		{"missing scheme", createPayload{URL: "example.com"}, true},
		{"blank url", createPayload{URL: "   "}, true},
		{"unsanitized alias", createPayload{URL: "https://example.com", Alias: "Foo Link"}, true},
		{"unknown provider", createPayload{URL: "https://example.com", Provider: "evil.example"}, true},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			err := Validate(tt.payload)
			if (err != nil) != tt.wantErr {
				t.Errorf("Validate(%+v) error = %v, wantErr %v", tt.payload, err, tt.wantErr)
			}
		})
	}
}
