package common

import (
	"net/http"
	"time"

	"github.com/matst80/slask-parts/pkg/common/jsoncompat"
	"github.com/matst80/slask-parts/pkg/errx"
	"github.com/matst80/slask-parts/pkg/logx"
)

type ErrorResponse struct {
	Error  string `json:"error"`
	Status int    `json:"status"`
}

type statusWriter struct {
	http.ResponseWriter
	status int
}

func (w *statusWriter) WriteHeader(status int) {
	if w.status == 0 {
		w.status = status
	}
	w.ResponseWriter.WriteHeader(status)
}

func (w *statusWriter) Write(b []byte) (int, error) {
	if w.status == 0 {
		w.status = http.StatusOK
	}
	return w.ResponseWriter.Write(b)
}

func (w *statusWriter) Unwrap() http.ResponseWriter {
	return w.ResponseWriter
}

// JsonHandler handles OPTIONS, the session cookie and error responses. A handler that
// returns an error before writing gets a json error body with the mapped status.
func JsonHandler(fn func(w http.ResponseWriter, r *http.Request, sessionId string, enc jsoncompat.Encoder) error) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		if r.Method == http.MethodOptions {
			RespondToOptions(w, r)
			return
		}
		start := time.Now()
		sw := &statusWriter{ResponseWriter: w}
		sessionId := HandleSessionCookie(sw, r)
		if origin := r.Header.Get("Origin"); origin != "" {
			sw.Header().Set("Access-Control-Allow-Origin", origin)
			sw.Header().Set("Access-Control-Allow-Credentials", "true")
		}

		err := fn(sw, r, sessionId, jsoncompat.NewEncoder(sw))
		if err != nil {
			status := errx.StatusOf(err)
			event := logx.Warn()
			if status >= http.StatusInternalServerError {
				event = logx.Error()
			}
			event.Err(err).Str("path", r.URL.Path).Int("status", status).Msg("request failed")
			if sw.status == 0 {
				WriteError(sw, err)
			}
			return
		}
		logx.Debug().
			Str("method", r.Method).
			Str("path", r.URL.Path).
			Int("status", sw.status).
			Dur("took", time.Since(start)).
			Msg("request")
	}
}

func WriteError(w http.ResponseWriter, err error) {
	status := errx.StatusOf(err)
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	_ = jsoncompat.NewEncoder(w).Encode(ErrorResponse{
		Error:  errx.MessageOf(err),
		Status: status,
	})
}

func RespondToOptions(w http.ResponseWriter, r *http.Request) {
	w.Header().Set("Cache-Control", "public, max-age=3600")
	origin := r.Header.Get("Origin")
	if origin != "" {
		w.Header().Set("Access-Control-Allow-Origin", origin)
		w.Header().Set("Access-Control-Max-Age", "86400")
		w.Header().Set("Access-Control-Allow-Methods", "GET, POST, PUT, DELETE, OPTIONS")
		w.Header().Set("Access-Control-Allow-Headers", "*")
		w.Header().Set("Access-Control-Allow-Credentials", "true")
	}
	w.Header().Set("Age", "0")
	w.WriteHeader(http.StatusAccepted)
}
