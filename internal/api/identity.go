// SPDX-License-Identifier: Apache-2.0
// Copyright 2026 Postline Contributors

package api

import (
	"context"
	"net/http"
	"strconv"
	"strings"
	"time"

	"github.com/postline/postline/internal/access"
	"github.com/postline/postline/internal/auth"
)

type ctxKey int

const identityKey ctxKey = iota

// IdentityFromContext returns the caller identity. Requests without a valid
// Bearer token carry the anonymous identity.
func IdentityFromContext(ctx context.Context) access.Identity {
	if id, ok := ctx.Value(identityKey).(access.Identity); ok {
		return id
	}
	return access.Anonymous()
}

// withIdentity resolves the Authorization header into an identity. An absent
// or invalid token leaves the request anonymous; route handlers decide
// whether that is acceptable.
func (s *Server) withIdentity(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		header := r.Header.Get("Authorization")
		token, ok := strings.CutPrefix(header, "Bearer ")
		if !ok || token == "" {
			next.ServeHTTP(w, r)
			return
		}

		claims, err := s.issuer.Verify(token, auth.AccessToken)
		if err != nil {
			// expired and malformed tokens both degrade to anonymous
			next.ServeHTTP(w, r)
			return
		}

		identity := access.Identity{Subject: claims.Subject, Role: claims.Role}
		ctx := context.WithValue(r.Context(), identityKey, identity)
		next.ServeHTTP(w, r.WithContext(ctx))
	})
}

// recordMetrics counts requests and measures latency per route pattern.
func (s *Server) recordMetrics(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		start := time.Now()
		ww := &statusWriter{ResponseWriter: w, status: http.StatusOK}
		next.ServeHTTP(ww, r)

		route := r.URL.Path
		s.metrics.RequestsTotal.WithLabelValues(r.Method, route, strconv.Itoa(ww.status)).Inc()
		s.metrics.RequestDuration.WithLabelValues(route).Observe(time.Since(start).Seconds())
	})
}

type statusWriter struct {
	http.ResponseWriter
	status int
}

func (w *statusWriter) WriteHeader(status int) {
	w.status = status
	w.ResponseWriter.WriteHeader(status)
}
