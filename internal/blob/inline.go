package blob

import (
	"context"
	"encoding/base64"
	"strings"
)

const defaultContentType = "application/octet-stream"

// InlineStore encodes content into a data: URL, so the record itself
// carries the payload and nothing lives outside the database. This is the
// blob backend of the embedded variant.
type InlineStore struct{}

func NewInlineStore() *InlineStore {
	return &InlineStore{}
}

func (s *InlineStore) Put(_ context.Context, _ string, data []byte, contentType string) (string, error) {
	if contentType == "" {
		contentType = defaultContentType
	}
	return "data:" + contentType + ";base64," + base64.StdEncoding.EncodeToString(data), nil
}

// Delete is a no-op: inline payloads die with their record.
func (s *InlineStore) Delete(_ context.Context, _ string) error {
	return nil
}

// DecodeDataURL extracts the payload of a data: URL produced by Put.
// Returns ok=false for any other URL shape.
func DecodeDataURL(url string) (data []byte, contentType string, ok bool) {
	rest, found := strings.CutPrefix(url, "data:")
	if !found {
		return nil, "", false
	}

	ct, payload, found := strings.Cut(rest, ";base64,")
	if !found {
		return nil, "", false
	}

	decoded, err := base64.StdEncoding.DecodeString(payload)
	if err != nil {
		return nil, "", false
	}
	return decoded, ct, true
}
