// SPDX-License-Identifier: Apache-2.0
// Copyright 2026 Postline Contributors

package api

import (
	"net/http"
	"strconv"

	"github.com/go-chi/chi/v5"
	"github.com/oklog/ulid/v2"

	"github.com/postline/postline/internal/content"
)

func (s *Server) handleListPosts(w http.ResponseWriter, r *http.Request) {
	identity := IdentityFromContext(r.Context())
	if !s.policy.Allows(identity, "read", "post:*") {
		s.writeForbidden(w)
		return
	}

	filter := content.ListFilter{
		CategoryValue: r.URL.Query().Get("category"),
		TagLabel:      r.URL.Query().Get("tag"),
	}
	if page, err := strconv.Atoi(r.URL.Query().Get("page")); err == nil {
		filter.Page = page
	}
	if limit, err := strconv.Atoi(r.URL.Query().Get("limit")); err == nil {
		filter.Limit = limit
	}
	filter = filter.Normalize()

	posts, total, err := s.posts.List(r.Context(), filter)
	if err != nil {
		s.writeError(w, r, err)
		return
	}

	out := make([]postResponse, 0, len(posts))
	for _, p := range posts {
		out = append(out, toPostResponse(p))
	}
	writeJSON(w, http.StatusOK, postListResponse{
		Posts: out,
		Total: total,
		Page:  filter.Page,
		Limit: filter.Limit,
	})
}

func (s *Server) handleGetPost(w http.ResponseWriter, r *http.Request) {
	identity := IdentityFromContext(r.Context())

	id, err := ulid.Parse(chi.URLParam(r, "id"))
	if err != nil {
		s.writeBadRequest(w, "invalid post id")
		return
	}
	if !s.policy.Allows(identity, "read", "post:"+id.String()) {
		s.writeForbidden(w)
		return
	}

	post, err := s.posts.Get(r.Context(), id)
	if err != nil {
		s.writeError(w, r, err)
		return
	}
	writeJSON(w, http.StatusOK, toPostResponse(post))
}

func (s *Server) handleCreatePost(w http.ResponseWriter, r *http.Request) {
	identity := IdentityFromContext(r.Context())
	if identity.Subject == "" {
		s.writeUnauthorized(w)
		return
	}
	if !s.policy.Allows(identity, "create", "post:new") {
		s.writeForbidden(w)
		return
	}
	userID, err := ulid.Parse(identity.Subject)
	if err != nil {
		s.writeUnauthorized(w)
		return
	}

	var req createPostRequest
	if err := s.decode(r, &req); err != nil {
		s.writeBadRequest(w, err.Error())
		return
	}

	post, err := s.posts.Create(r.Context(), userID, content.CreatePostInput{
		Title:       req.Title,
		Description: req.Description,
		Link:        req.Link,
		City:        req.City,
		CategoryIDs: req.CategoryIDs,
		TagLabels:   req.TagLabels,
	})
	if err != nil {
		s.writeError(w, r, err)
		return
	}
	if s.metrics != nil {
		s.metrics.PostsCreated.Inc()
	}

	writeJSON(w, http.StatusCreated, toPostResponse(post))
}

func (s *Server) handleUpdatePost(w http.ResponseWriter, r *http.Request) {
	identity := IdentityFromContext(r.Context())
	if identity.Subject == "" {
		s.writeUnauthorized(w)
		return
	}

	id, err := ulid.Parse(chi.URLParam(r, "id"))
	if err != nil {
		s.writeBadRequest(w, "invalid post id")
		return
	}

	post, err := s.posts.Get(r.Context(), id)
	if err != nil {
		s.writeError(w, r, err)
		return
	}
	if !s.policy.Allows(identity, "write", "post:"+post.UserID.String()+":"+id.String()) {
		s.writeForbidden(w)
		return
	}

	var req updatePostRequest
	if err := s.decode(r, &req); err != nil {
		s.writeBadRequest(w, err.Error())
		return
	}

	updated, err := s.posts.Update(r.Context(), id, content.UpdatePostInput{
		Title:       req.Title,
		Description: req.Description,
		Link:        req.Link,
		City:        req.City,
		CategoryIDs: req.CategoryIDs,
		TagLabels:   req.TagLabels,
	})
	if err != nil {
		s.writeError(w, r, err)
		return
	}
	writeJSON(w, http.StatusOK, toPostResponse(updated))
}

func (s *Server) handleDeletePost(w http.ResponseWriter, r *http.Request) {
	identity := IdentityFromContext(r.Context())
	if identity.Subject == "" {
		s.writeUnauthorized(w)
		return
	}

	id, err := ulid.Parse(chi.URLParam(r, "id"))
	if err != nil {
		s.writeBadRequest(w, "invalid post id")
		return
	}

	post, err := s.posts.Get(r.Context(), id)
	if err != nil {
		s.writeError(w, r, err)
		return
	}
	if !s.policy.Allows(identity, "delete", "post:"+post.UserID.String()+":"+id.String()) {
		s.writeForbidden(w)
		return
	}

	if err := s.posts.Delete(r.Context(), id); err != nil {
		s.writeError(w, r, err)
		return
	}
	w.WriteHeader(http.StatusNoContent)
}
