package blob

import (
	"context"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestInlineStore_PutRoundTrip(t *testing.T) {
	s := NewInlineStore()

	url, err := s.Put(context.Background(), "ignored", []byte("hello world"), "text/plain")
	require.NoError(t, err)
	assert.Equal(t, "data:text/plain;base64,aGVsbG8gd29ybGQ=", url)

	data, ct, ok := DecodeDataURL(url)
	require.True(t, ok)
	assert.Equal(t, "text/plain", ct)
	assert.Equal(t, []byte("hello world"), data)
}

func TestInlineStore_EmptyContentTypeDefaults(t *testing.T) {
	s := NewInlineStore()

	url, err := s.Put(context.Background(), "k", []byte{0x01}, "")
	require.NoError(t, err)
	assert.Contains(t, url, "data:application/octet-stream;base64,")
}

func TestInlineStore_DeleteIsNoOp(t *testing.T) {
	s := NewInlineStore()
	assert.NoError(t, s.Delete(context.Background(), "anything"))
}

func TestDecodeDataURL_Rejects(t *testing.T) {
	tests := []struct {
		name string
		url  string
	}{
		{"http url", "https://example.com/f.txt"},
		{"no base64 marker", "data:text/plain,hello"},
		{"bad payload", "data:text/plain;base64,$$$"},
		{"empty", ""},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, _, ok := DecodeDataURL(tt.url)
			assert.False(t, ok)
		})
	}
}
