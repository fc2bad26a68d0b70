// SPDX-License-Identifier: Apache-2.0
// Copyright 2026 Postline Contributors

package api

import (
	"encoding/json"
	"errors"
	"net/http"

	"github.com/go-playground/validator/v10"

	"github.com/postline/postline/internal/auth"
	"github.com/postline/postline/internal/content"
)

// errorEnvelope is the wire shape of every error response.
type errorEnvelope struct {
	Error errorBody `json:"error"`
}

type errorBody struct {
	Kind    string `json:"kind"`
	Message string `json:"message"`
}

func writeJSON(w http.ResponseWriter, status int, body any) {
	w.Header().Set("Content-Type", "application/json; charset=utf-8")
	w.WriteHeader(status)
	if body != nil {
		//nolint:errcheck // response write error means the client went away
		json.NewEncoder(w).Encode(body)
	}
}

func writeErrorKind(w http.ResponseWriter, status int, kind, message string) {
	writeJSON(w, status, errorEnvelope{Error: errorBody{Kind: kind, Message: message}})
}

// writeError maps domain errors onto the error envelope. Unknown errors are
// logged and reported as internal without leaking detail.
func (s *Server) writeError(w http.ResponseWriter, r *http.Request, err error) {
	switch {
	case errors.Is(err, content.ErrNoCategories):
		writeErrorKind(w, http.StatusConflict, "conflict", "create categories before using them")
	case errors.Is(err, auth.ErrConflict), errors.Is(err, content.ErrConflict):
		writeErrorKind(w, http.StatusConflict, "conflict", err.Error())
	case errors.Is(err, auth.ErrNotFound), errors.Is(err, content.ErrNotFound):
		writeErrorKind(w, http.StatusNotFound, "not_found", err.Error())
	case errors.Is(err, auth.ErrForbidden):
		writeErrorKind(w, http.StatusForbidden, "forbidden", err.Error())
	case errors.Is(err, auth.ErrTokenExpired), errors.Is(err, auth.ErrTokenInvalid):
		writeErrorKind(w, http.StatusUnauthorized, "unauthorized", err.Error())
	default:
		var validationErrs validator.ValidationErrors
		if errors.As(err, &validationErrs) {
			writeErrorKind(w, http.StatusBadRequest, "bad_request", validationErrs.Error())
			return
		}
		s.logger.Error("request failed",
			"method", r.Method,
			"path", r.URL.Path,
			"error", err)
		writeErrorKind(w, http.StatusInternalServerError, "internal", "internal error")
	}
}

func (s *Server) writeUnauthorized(w http.ResponseWriter) {
	writeErrorKind(w, http.StatusUnauthorized, "unauthorized", "authentication required")
}

func (s *Server) writeForbidden(w http.ResponseWriter) {
	writeErrorKind(w, http.StatusForbidden, "forbidden", "permission denied")
}

func (s *Server) writeBadRequest(w http.ResponseWriter, message string) {
	writeErrorKind(w, http.StatusBadRequest, "bad_request", message)
}

// decode reads a JSON body into target and applies struct validation.
func (s *Server) decode(r *http.Request, target any) error {
	dec := json.NewDecoder(r.Body)
	dec.DisallowUnknownFields()
	if err := dec.Decode(target); err != nil {
		return err
	}
	return s.validate.Struct(target)
}
