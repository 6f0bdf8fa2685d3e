package idempotency

import (
	"bytes"
	"crypto/sha256"
	"encoding/hex"
	"errors"
	"io"
	"net/http"

	"go.uber.org/zap"

	"github.com/samirahpartel/kirtbank/pkg/utils"
)

// Middleware enforces the Idempotency-Key contract on mutating requests.
// The header is optional: without it the request passes straight through,
// with it a retry replays the first response.
func Middleware(store *Store) func(http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			key := r.Header.Get("Idempotency-Key")
			if store == nil || key == "" {
				next.ServeHTTP(w, r)
				return
			}

			bodyBytes, err := io.ReadAll(r.Body)
			if err != nil {
				utils.RespondWithError(w, http.StatusBadRequest, "can't read request body")
				return
			}
			_ = r.Body.Close()
			r.Body = io.NopCloser(bytes.NewReader(bodyBytes))

			reqHash := hashRequest(r.Method, r.URL.Path, bodyBytes)
			rec, err := store.Lookup(r.Context(), key, reqHash)
			if err == nil {
				respondFromRecord(w, rec)
				return
			}
			switch {
			case errors.Is(err, ErrHashMismatch):
				utils.RespondWithError(w, http.StatusConflict, "idempotency key reused with a different request")
				return
			case errors.Is(err, ErrInProgress):
				utils.RespondWithError(w, http.StatusConflict, "request with this idempotency key is in progress")
				return
			case !errors.Is(err, ErrNotFound):
				zap.L().Warn("idempotency lookup failed", zap.Error(err))
				next.ServeHTTP(w, r)
				return
			}

			reserved, err := store.Reserve(r.Context(), key, reqHash)
			if err != nil {
				zap.L().Warn("idempotency reserve failed", zap.Error(err))
				next.ServeHTTP(w, r)
				return
			}
			if !reserved {
				utils.RespondWithError(w, http.StatusConflict, "request with this idempotency key is in progress")
				return
			}

			recorder := &bodyRecorder{ResponseWriter: w}
			next.ServeHTTP(recorder, r)
			if recorder.status == 0 {
				recorder.status = http.StatusOK
			}

			contentType := recorder.Header().Get("Content-Type")
			if contentType == "" {
				contentType = "application/json"
			}
			err = store.Finalize(r.Context(), key, reqHash, recorder.status, recorder.body.Bytes(), contentType)
			if err != nil {
				zap.L().Warn("idempotency finalize failed", zap.String("key", key), zap.Error(err))
				store.Release(r.Context(), key)
			}
		})
	}
}

func hashRequest(method, path string, body []byte) string {
	sum := sha256.Sum256(append([]byte(method+"|"+path+"|"), body...))
	return hex.EncodeToString(sum[:])
}

type bodyRecorder struct {
	http.ResponseWriter
	status int
	body   bytes.Buffer
}

func (br *bodyRecorder) WriteHeader(code int) {
	br.status = code
	br.ResponseWriter.WriteHeader(code)
}

func (br *bodyRecorder) Write(b []byte) (int, error) {
	if br.status == 0 {
		br.status = http.StatusOK
	}
	br.body.Write(b)
	return br.ResponseWriter.Write(b)
}

func respondFromRecord(w http.ResponseWriter, rec *Record) {
	w.Header().Set("Content-Type", rec.ContentType)
	w.Header().Set("X-Idempotent-Replay", "true")
	w.WriteHeader(rec.Status)
	_, _ = w.Write(rec.Body)
}
