package domain

import (
	"errors"
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestUpload_Validate(t *testing.T) {
	raw := &RawContent{MIMEType: "text/plain", Content: []byte("x")}

	tests := []struct {
		name    string
		upload  Upload
		wantErr bool
	}{
		{"url only", Upload{URL: "https://example.com/a.pdf"}, false},
		{"raw only", Upload{Raw: raw}, false},
		{"neither", Upload{}, true},
		{"both", Upload{URL: "https://example.com/a.pdf", Raw: raw}, true},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			err := tt.upload.Validate()
			if tt.wantErr {
				assert.True(t, errors.Is(err, ErrInvalidInput))
			} else {
				assert.NoError(t, err)
			}
		})
	}
}
