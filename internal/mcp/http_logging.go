package mcp

import (
	"bytes"
	"io"
	"net/http"
	"strings"
	"time"

	errors "github.com/Laisky/errors/v2"
	logSDK "github.com/Laisky/go-utils/v6/log"
	"github.com/Laisky/zap"
	srv "github.com/mark3labs/mcp-go/server"
)

// httpLogBodyLimit caps how much of a request or response body is logged.
const httpLogBodyLimit = 16 << 10

// cappedBuffer keeps the first limit bytes written to it and drops the rest.
type cappedBuffer struct {
	buf       bytes.Buffer
	limit     int
	truncated bool
	// total counts every byte written, kept or not.
	total int
}

func (c *cappedBuffer) Write(p []byte) (int, error) {
	c.total += len(p)
	room := c.limit - c.buf.Len()
	if room < len(p) {
		c.truncated = true
		if room > 0 {
			c.buf.Write(p[:room])
		}
		return len(p), nil
	}
	c.buf.Write(p)
	return len(p), nil
}

func (c *cappedBuffer) String() string {
	return c.buf.String()
}

// tapRequestBody copies up to limit bytes of the body for logging and
// leaves an unread copy of the whole body on r.
func tapRequestBody(r *http.Request, limit int) (*cappedBuffer, error) {
	tap := &cappedBuffer{limit: limit}
	if r.Body == nil || r.Body == http.NoBody {
		return tap, nil
	}

	data, err := io.ReadAll(io.TeeReader(r.Body, tap))
	closeErr := r.Body.Close()
	r.Body = io.NopCloser(bytes.NewReader(data))
	if err != nil {
		return tap, errors.Wrap(err, "read request body")
	}
	if closeErr != nil {
		return tap, errors.Wrap(closeErr, "close request body")
	}
	return tap, nil
}

// tappedResponseWriter records the status and a capped copy of the body.
type tappedResponseWriter struct {
	http.ResponseWriter
	status int
	body   *cappedBuffer
}

func (w *tappedResponseWriter) WriteHeader(code int) {
	w.status = code
	w.ResponseWriter.WriteHeader(code)
}

func (w *tappedResponseWriter) Write(b []byte) (int, error) {
	if w.status == 0 {
		w.status = http.StatusOK
	}
	_, _ = w.body.Write(b)
	return w.ResponseWriter.Write(b)
}

// Flush keeps SSE streams of the streamable transport flowing.
func (w *tappedResponseWriter) Flush() {
	if flusher, ok := w.ResponseWriter.(http.Flusher); ok {
		flusher.Flush()
	}
}

func (w *tappedResponseWriter) Unwrap() http.ResponseWriter {
	return w.ResponseWriter
}

func (w *tappedResponseWriter) statusCode() int {
	if w.status == 0 {
		return http.StatusOK
	}
	return w.status
}

// withHTTPLogging logs redacted request and response bodies at debug level.
func withHTTPLogging(next http.Handler, logger logSDK.Logger) http.Handler {
	if next == nil {
		return nil
	}
	if logger == nil {
		return next
	}

	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		startAt := time.Now()
		reqBody, err := tapRequestBody(r, httpLogBodyLimit)
		if err != nil {
			logger.Warn("tap mcp request body", zap.Error(err))
		}

		fields := []zap.Field{
			zap.String("method", r.Method),
			zap.String("path", r.URL.Path),
			zap.String("remote_addr", r.RemoteAddr),
		}
		if sessionID := strings.TrimSpace(r.Header.Get(srv.HeaderKeySessionID)); sessionID != "" {
			fields = append(fields, zap.String("session_id", sessionID))
		}
		logger.Debug("mcp http request", append(fields,
			zap.String("body", redactLoggedBody(reqBody)),
			zap.Bool("body_truncated", reqBody.truncated),
		)...)

		tapped := &tappedResponseWriter{
			ResponseWriter: w,
			body:           &cappedBuffer{limit: httpLogBodyLimit},
		}
		next.ServeHTTP(tapped, r)

		logger.Debug("mcp http response", append(fields,
			zap.Int("status", tapped.statusCode()),
			zap.String("body", redactLoggedBody(tapped.body)),
			zap.Bool("body_truncated", tapped.body.truncated),
			zap.Duration("cost", time.Since(startAt)),
		)...)
	})
}
