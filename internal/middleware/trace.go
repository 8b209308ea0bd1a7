// Package middleware holds the HTTP middleware chain: request tracing
// and security headers.
package middleware

import (
	"crypto/rand"
	"encoding/hex"
	"fmt"
	"net/http"
	"sync/atomic"
	"time"

	"wallet/internal/log"
)

// Trace assigns each request an ID, exposes it via the X-Request-ID
// header, and keeps simple request counters.
type Trace struct {
	totalRequests  atomic.Int64
	lastDurationUS atomic.Int64
}

// Metrics is a snapshot of the trace counters.
type Metrics struct {
	TotalRequests      int64
	LastResponseTimeUS int64
}

func NewTrace() *Trace {
	return &Trace{}
}

func (t *Trace) Middleware(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		start := time.Now()

		id := newRequestID()
		ctx := log.WithRequestID(r.Context(), id)
		w.Header().Set("X-Request-ID", id)

		t.totalRequests.Add(1)
		next.ServeHTTP(w, r.WithContext(ctx))

		t.lastDurationUS.Store(time.Since(start).Microseconds())
	})
}

func (t *Trace) Metrics() Metrics {
	return Metrics{
		TotalRequests:      t.totalRequests.Load(),
		LastResponseTimeUS: t.lastDurationUS.Load(),
	}
}

func newRequestID() string {
	bytes := make([]byte, 8)
	if _, err := rand.Read(bytes); err != nil {
		return fmt.Sprintf("req_%d", time.Now().UnixNano())
	}
	return "req_" + hex.EncodeToString(bytes)
}
