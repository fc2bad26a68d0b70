// SPDX-License-Identifier: Apache-2.0
// Copyright 2026 Postline Contributors

package api

import (
	"net/http"
	"strconv"

	"github.com/go-chi/chi/v5"
	"github.com/oklog/ulid/v2"

	"github.com/postline/postline/internal/auth"
)

func (s *Server) handleListUsers(w http.ResponseWriter, r *http.Request) {
	identity := IdentityFromContext(r.Context())
	if identity.Subject == "" {
		s.writeUnauthorized(w)
		return
	}
	// listing all accounts is an admin-only read
	if !s.policy.Allows(identity, "read", "user:*") {
		s.writeForbidden(w)
		return
	}

	limit, _ := strconv.Atoi(r.URL.Query().Get("limit"))
	offset, _ := strconv.Atoi(r.URL.Query().Get("offset"))

	users, err := s.users.List(r.Context(), limit, offset)
	if err != nil {
		s.writeError(w, r, err)
		return
	}

	out := make([]userResponse, 0, len(users))
	for _, u := range users {
		out = append(out, toUserResponse(u))
	}
	writeJSON(w, http.StatusOK, out)
}

func (s *Server) handleGetUser(w http.ResponseWriter, r *http.Request) {
	identity := IdentityFromContext(r.Context())
	if identity.Subject == "" {
		s.writeUnauthorized(w)
		return
	}

	id, err := ulid.Parse(chi.URLParam(r, "id"))
	if err != nil {
		s.writeBadRequest(w, "invalid user id")
		return
	}
	if !s.policy.Allows(identity, "read", "user:"+id.String()) {
		s.writeForbidden(w)
		return
	}

	user, err := s.users.Get(r.Context(), id)
	if err != nil {
		s.writeError(w, r, err)
		return
	}
	writeJSON(w, http.StatusOK, toUserResponse(user))
}

func (s *Server) handleUpdateUser(w http.ResponseWriter, r *http.Request) {
	identity := IdentityFromContext(r.Context())
	if identity.Subject == "" {
		s.writeUnauthorized(w)
		return
	}

	id, err := ulid.Parse(chi.URLParam(r, "id"))
	if err != nil {
		s.writeBadRequest(w, "invalid user id")
		return
	}
	if !s.policy.Allows(identity, "write", "user:"+id.String()) {
		s.writeForbidden(w)
		return
	}

	var req updateUserRequest
	if err := s.decode(r, &req); err != nil {
		s.writeBadRequest(w, err.Error())
		return
	}

	user, err := s.users.UpdateProfile(r.Context(), id, auth.UpdateProfileInput{
		FirstName: req.FirstName,
		LastName:  req.LastName,
		Img:       req.Img,
		Age:       req.Age,
	})
	if err != nil {
		s.writeError(w, r, err)
		return
	}
	writeJSON(w, http.StatusOK, toUserResponse(user))
}

func (s *Server) handleDeleteUser(w http.ResponseWriter, r *http.Request) {
	identity := IdentityFromContext(r.Context())
	if identity.Subject == "" {
		s.writeUnauthorized(w)
		return
	}

	id, err := ulid.Parse(chi.URLParam(r, "id"))
	if err != nil {
		s.writeBadRequest(w, "invalid user id")
		return
	}
	if !s.policy.Allows(identity, "delete", "user:"+id.String()) {
		s.writeForbidden(w)
		return
	}

	if err := s.users.Delete(r.Context(), id); err != nil {
		s.writeError(w, r, err)
		return
	}
	w.WriteHeader(http.StatusNoContent)
}
