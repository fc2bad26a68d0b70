// SPDX-License-Identifier: Apache-2.0
// Copyright 2026 Postline Contributors

package api

import (
	"net/http"

	"github.com/go-chi/chi/v5"
	"github.com/oklog/ulid/v2"
)

func (s *Server) handleListCategories(w http.ResponseWriter, r *http.Request) {
	identity := IdentityFromContext(r.Context())
	if !s.policy.Allows(identity, "read", "category:*") {
		s.writeForbidden(w)
		return
	}

	categories, err := s.categories.List(r.Context())
	if err != nil {
		s.writeError(w, r, err)
		return
	}

	out := make([]categoryResponse, 0, len(categories))
	for _, c := range categories {
		out = append(out, toCategoryResponse(c))
	}
	writeJSON(w, http.StatusOK, out)
}

func (s *Server) handleGetCategory(w http.ResponseWriter, r *http.Request) {
	identity := IdentityFromContext(r.Context())

	id, err := ulid.Parse(chi.URLParam(r, "id"))
	if err != nil {
		s.writeBadRequest(w, "invalid category id")
		return
	}
	if !s.policy.Allows(identity, "read", "category:"+id.String()) {
		s.writeForbidden(w)
		return
	}

	category, err := s.categories.Get(r.Context(), id)
	if err != nil {
		s.writeError(w, r, err)
		return
	}
	writeJSON(w, http.StatusOK, toCategoryResponse(category))
}

func (s *Server) handleCreateCategory(w http.ResponseWriter, r *http.Request) {
	identity := IdentityFromContext(r.Context())
	if identity.Subject == "" {
		s.writeUnauthorized(w)
		return
	}
	if !s.policy.Allows(identity, "create", "category:new") {
		s.writeForbidden(w)
		return
	}

	var req categoryRequest
	if err := s.decode(r, &req); err != nil {
		s.writeBadRequest(w, err.Error())
		return
	}

	category, err := s.categories.Create(r.Context(), req.Label, req.Value)
	if err != nil {
		s.writeError(w, r, err)
		return
	}
	writeJSON(w, http.StatusCreated, toCategoryResponse(category))
}

func (s *Server) handleUpdateCategory(w http.ResponseWriter, r *http.Request) {
	identity := IdentityFromContext(r.Context())
	if identity.Subject == "" {
		s.writeUnauthorized(w)
		return
	}

	id, err := ulid.Parse(chi.URLParam(r, "id"))
	if err != nil {
		s.writeBadRequest(w, "invalid category id")
		return
	}
	if !s.policy.Allows(identity, "write", "category:"+id.String()) {
		s.writeForbidden(w)
		return
	}

	var req updateCategoryRequest
	if err := s.decode(r, &req); err != nil {
		s.writeBadRequest(w, err.Error())
		return
	}

	category, err := s.categories.Update(r.Context(), id, req.Label, req.Value)
	if err != nil {
		s.writeError(w, r, err)
		return
	}
	writeJSON(w, http.StatusOK, toCategoryResponse(category))
}

func (s *Server) handleDeleteCategory(w http.ResponseWriter, r *http.Request) {
	identity := IdentityFromContext(r.Context())
	if identity.Subject == "" {
		s.writeUnauthorized(w)
		return
	}

	id, err := ulid.Parse(chi.URLParam(r, "id"))
	if err != nil {
		s.writeBadRequest(w, "invalid category id")
		return
	}
	if !s.policy.Allows(identity, "delete", "category:"+id.String()) {
		s.writeForbidden(w)
		return
	}

	if err := s.categories.Delete(r.Context(), id); err != nil {
		s.writeError(w, r, err)
		return
	}
	w.WriteHeader(http.StatusNoContent)
}
