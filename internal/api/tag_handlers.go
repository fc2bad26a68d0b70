// SPDX-License-Identifier: Apache-2.0
// Copyright 2026 Postline Contributors

package api

import (
	"net/http"

	"github.com/go-chi/chi/v5"
	"github.com/oklog/ulid/v2"
)

func (s *Server) handleListTags(w http.ResponseWriter, r *http.Request) {
	identity := IdentityFromContext(r.Context())
	if !s.policy.Allows(identity, "read", "tag:*") {
		s.writeForbidden(w)
		return
	}

	tags, err := s.tags.List(r.Context())
	if err != nil {
		s.writeError(w, r, err)
		return
	}

	out := make([]tagResponse, 0, len(tags))
	for _, tag := range tags {
		out = append(out, toTagResponse(tag))
	}
	writeJSON(w, http.StatusOK, out)
}

func (s *Server) handleGetTag(w http.ResponseWriter, r *http.Request) {
	identity := IdentityFromContext(r.Context())

	id, err := ulid.Parse(chi.URLParam(r, "id"))
	if err != nil {
		s.writeBadRequest(w, "invalid tag id")
		return
	}
	if !s.policy.Allows(identity, "read", "tag:"+id.String()) {
		s.writeForbidden(w)
		return
	}

	tag, err := s.tags.Get(r.Context(), id)
	if err != nil {
		s.writeError(w, r, err)
		return
	}
	writeJSON(w, http.StatusOK, toTagResponse(tag))
}

func (s *Server) handleCreateTag(w http.ResponseWriter, r *http.Request) {
	identity := IdentityFromContext(r.Context())
	if identity.Subject == "" {
		s.writeUnauthorized(w)
		return
	}
	if !s.policy.Allows(identity, "create", "tag:new") {
		s.writeForbidden(w)
		return
	}

	var req tagRequest
	if err := s.decode(r, &req); err != nil {
		s.writeBadRequest(w, err.Error())
		return
	}

	tag, err := s.tags.GetOrCreate(r.Context(), req.Label)
	if err != nil {
		s.writeError(w, r, err)
		return
	}
	writeJSON(w, http.StatusCreated, toTagResponse(tag))
}

func (s *Server) handleUpdateTag(w http.ResponseWriter, r *http.Request) {
	identity := IdentityFromContext(r.Context())
	if identity.Subject == "" {
		s.writeUnauthorized(w)
		return
	}

	id, err := ulid.Parse(chi.URLParam(r, "id"))
	if err != nil {
		s.writeBadRequest(w, "invalid tag id")
		return
	}
	if !s.policy.Allows(identity, "write", "tag:"+id.String()) {
		s.writeForbidden(w)
		return
	}

	var req tagRequest
	if err := s.decode(r, &req); err != nil {
		s.writeBadRequest(w, err.Error())
		return
	}

	tag, err := s.tags.Rename(r.Context(), id, req.Label)
	if err != nil {
		s.writeError(w, r, err)
		return
	}
	writeJSON(w, http.StatusOK, toTagResponse(tag))
}

func (s *Server) handleDeleteTag(w http.ResponseWriter, r *http.Request) {
	identity := IdentityFromContext(r.Context())
	if identity.Subject == "" {
		s.writeUnauthorized(w)
		return
	}

	id, err := ulid.Parse(chi.URLParam(r, "id"))
	if err != nil {
		s.writeBadRequest(w, "invalid tag id")
		return
	}
	if !s.policy.Allows(identity, "delete", "tag:"+id.String()) {
		s.writeForbidden(w)
		return
	}

	if err := s.tags.Delete(r.Context(), id); err != nil {
		s.writeError(w, r, err)
		return
	}
	w.WriteHeader(http.StatusNoContent)
}
