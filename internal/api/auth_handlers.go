// SPDX-License-Identifier: Apache-2.0
// Copyright 2026 Postline Contributors

package api

import (
	"net/http"

	"github.com/oklog/ulid/v2"

	"github.com/postline/postline/internal/auth"
)

func (s *Server) handleSignup(w http.ResponseWriter, r *http.Request) {
	var req signupRequest
	if err := s.decode(r, &req); err != nil {
		s.writeBadRequest(w, err.Error())
		return
	}

	profile := auth.Profile{
		FirstName: req.FirstName,
		LastName:  req.LastName,
		Img:       req.Img,
		Age:       req.Age,
	}
	user, pair, err := s.auth.Signup(r.Context(), profile, req.Email, req.Password)
	if err != nil {
		s.writeError(w, r, err)
		return
	}

	writeJSON(w, http.StatusCreated, toAuthResponse(user, pair))
}

func (s *Server) handleSignin(w http.ResponseWriter, r *http.Request) {
	var req signinRequest
	if err := s.decode(r, &req); err != nil {
		s.writeBadRequest(w, err.Error())
		return
	}

	user, pair, err := s.auth.Signin(r.Context(), req.Email, req.Password)
	if err != nil {
		if s.metrics != nil {
			s.metrics.SigninsTotal.WithLabelValues("failure").Inc()
		}
		s.writeError(w, r, err)
		return
	}
	if s.metrics != nil {
		s.metrics.SigninsTotal.WithLabelValues("success").Inc()
	}

	writeJSON(w, http.StatusOK, toAuthResponse(user, pair))
}

func (s *Server) handleLogout(w http.ResponseWriter, r *http.Request) {
	identity := IdentityFromContext(r.Context())
	if identity.Subject == "" {
		s.writeUnauthorized(w)
		return
	}
	userID, err := ulid.Parse(identity.Subject)
	if err != nil {
		s.writeUnauthorized(w)
		return
	}

	deleted, err := s.auth.Logout(r.Context(), userID)
	if err != nil {
		s.writeError(w, r, err)
		return
	}

	writeJSON(w, http.StatusOK, map[string]bool{"logged_out": deleted})
}

func (s *Server) handleRefresh(w http.ResponseWriter, r *http.Request) {
	var req refreshRequest
	if err := s.decode(r, &req); err != nil {
		s.writeBadRequest(w, err.Error())
		return
	}

	// the refresh token itself names the user; no access token is needed
	claims, err := s.issuer.Verify(req.RefreshToken, auth.RefreshToken)
	if err != nil {
		s.writeError(w, r, err)
		return
	}
	userID, err := claims.UserID()
	if err != nil {
		s.writeUnauthorized(w)
		return
	}

	user, pair, err := s.auth.Refresh(r.Context(), userID, req.RefreshToken)
	if err != nil {
		s.writeError(w, r, err)
		return
	}

	writeJSON(w, http.StatusOK, toAuthResponse(user, pair))
}
