package cms

import (
	"context"
	"encoding/json"
	"io"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/sirupsen/logrus"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func testLogger() *logrus.Logger {
	logger := logrus.New()
	logger.SetOutput(io.Discard)
	return logger
}

func TestClientMirror(t *testing.T) {
	t.Run("posts bearer-authed data envelope", func(t *testing.T) {
		var gotAuth string
		var gotBody map[string]any

		srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			gotAuth = r.Header.Get("Authorization")
			require.NoError(t, json.NewDecoder(r.Body).Decode(&gotBody))
			w.WriteHeader(http.StatusCreated)
		}))
		defer srv.Close()

		c := New(srv.URL, "secret-token", testLogger())
		ok := c.Mirror(context.Background(), "puja-sponsorships", map[string]any{
			"transactionId": "req_0123",
			"postgresId":    "abc",
		})

		assert.True(t, ok)
		assert.Equal(t, "Bearer secret-token", gotAuth)

		data, isMap := gotBody["data"].(map[string]any)
		require.True(t, isMap, "body wraps the record in a data envelope")
		assert.Equal(t, "req_0123", data["transactionId"])
		assert.Equal(t, "abc", data["postgresId"])
	})

	t.Run("non-2xx is swallowed", func(t *testing.T) {
		srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			http.Error(w, "bad token", http.StatusForbidden)
		}))
		defer srv.Close()

		c := New(srv.URL, "secret-token", testLogger())
		assert.False(t, c.Mirror(context.Background(), "puja-sponsorships", map[string]any{}))
	})

	t.Run("unreachable target is swallowed", func(t *testing.T) {
		srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {}))
		srv.Close()

		c := New(srv.URL, "secret-token", testLogger())
		assert.False(t, c.Mirror(context.Background(), "puja-sponsorships", map[string]any{}))
	})

	t.Run("missing credentials is a skip", func(t *testing.T) {
		c := New("", "", testLogger())
		assert.False(t, c.Enabled())
		assert.False(t, c.Mirror(context.Background(), "puja-sponsorships", map[string]any{}))
	})
}
