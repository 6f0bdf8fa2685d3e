package idempotency

import (
	"bytes"
	"io"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestMiddlewarePassThrough(t *testing.T) {
	tests := []struct {
		name  string
		store *Store
		key   string
	}{
		{name: "No store configured", store: nil, key: "retry-1"},
		{name: "No idempotency key on the request", store: &Store{}, key: ""},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			var called bool
			next := http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
				called = true
				body, _ := io.ReadAll(r.Body)
				assert.Equal(t, `{"amount":250}`, string(body))
				w.WriteHeader(http.StatusAccepted)
			})

			req := httptest.NewRequest("POST", "/api/transactions/deposit", bytes.NewReader([]byte(`{"amount":250}`)))
			if tt.key != "" {
				req.Header.Set("Idempotency-Key", tt.key)
			}
			rr := httptest.NewRecorder()

			Middleware(tt.store)(next).ServeHTTP(rr, req)

			assert.True(t, called)
			assert.Equal(t, http.StatusAccepted, rr.Code)
			assert.Empty(t, rr.Header().Get("X-Idempotent-Replay"))
		})
	}
}

func TestHashRequest(t *testing.T) {
	base := hashRequest("POST", "/api/transactions/deposit", []byte(`{"amount":250}`))

	assert.Equal(t, base, hashRequest("POST", "/api/transactions/deposit", []byte(`{"amount":250}`)))
	assert.NotEqual(t, base, hashRequest("POST", "/api/transactions/deposit", []byte(`{"amount":100}`)))
	assert.NotEqual(t, base, hashRequest("PUT", "/api/transactions/deposit", []byte(`{"amount":250}`)))
	assert.NotEqual(t, base, hashRequest("POST", "/api/other", []byte(`{"amount":250}`)))
	assert.Len(t, base, 64)
}

func TestRespondFromRecord(t *testing.T) {
	rr := httptest.NewRecorder()

	respondFromRecord(rr, &Record{
		Status:      http.StatusAccepted,
		Body:        []byte(`{"status":"Pending"}`),
		ContentType: "application/json",
	})

	assert.Equal(t, http.StatusAccepted, rr.Code)
	assert.Equal(t, `{"status":"Pending"}`, rr.Body.String())
	assert.Equal(t, "application/json", rr.Header().Get("Content-Type"))
	assert.Equal(t, "true", rr.Header().Get("X-Idempotent-Replay"))
}

func TestBodyRecorderCapturesResponse(t *testing.T) {
	rr := httptest.NewRecorder()
	rec := &bodyRecorder{ResponseWriter: rr}

	rec.WriteHeader(http.StatusCreated)
	_, err := rec.Write([]byte(`{"id":7}`))
	assert.NoError(t, err)

	assert.Equal(t, http.StatusCreated, rec.status)
	assert.Equal(t, `{"id":7}`, rec.body.String())
	assert.Equal(t, http.StatusCreated, rr.Code)
	assert.Equal(t, `{"id":7}`, rr.Body.String())
}
