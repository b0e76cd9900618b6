package domain

// RawContent represents opaque bytes fetched from a URL or uploaded by a client.
// It is the input to extraction.
type RawContent struct {
	// Source is the URL or filename the bytes came from.
	Source string

	// MIMEType is the declared content type (e.g., "application/pdf").
	// It may carry parameters such as charset.
	MIMEType string

	// Content is the raw bytes.
	Content []byte
}

// Upload is a document supplied to the stateful workflow.
// Exactly one of URL or Raw must be set.
type Upload struct {
	// URL is a remote document location.
	URL string

	// Raw holds uploaded bytes and their declared type.
	Raw *RawContent
}

// Validate checks that exactly one source is present.
func (u Upload) Validate() error {
	hasURL := u.URL != ""
	hasRaw := u.Raw != nil
	if hasURL == hasRaw {
		return ErrInvalidInput
	}
	return nil
}
