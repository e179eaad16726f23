package netx

import (
	"context"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestFetchURL(t *testing.T) {
	t.Run("success 200 OK", func(t *testing.T) {
		ts := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			assert.Equal(t, http.MethodGet, r.Method)
			_, _ = w.Write([]byte("file content"))
		}))
		defer ts.Close()

		data, err := FetchURL(context.Background(), ts.URL)
		require.NoError(t, err)
		assert.Equal(t, "file content", string(data))
	})

	t.Run("non-200 status", func(t *testing.T) {
		ts := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			w.WriteHeader(http.StatusForbidden)
			_, _ = w.Write([]byte("denied"))
		}))
		defer ts.Close()

		_, err := FetchURL(context.Background(), ts.URL)
		require.Error(t, err)
		assert.Contains(t, err.Error(), "denied")
	})

	t.Run("unreachable server", func(t *testing.T) {
		_, err := FetchURL(context.Background(), "http://127.0.0.1:1/missing")
		require.Error(t, err)
	})
}
