// SPDX-License-Identifier: Apache-2.0
// Copyright 2026 Postline Contributors

package api

import (
	"time"

	"github.com/postline/postline/internal/auth"
	"github.com/postline/postline/internal/content"
)

// === Requests ===

type signupRequest struct {
	Email     string `json:"email" validate:"required,email,max=254"`
	Password  string `json:"password" validate:"required,min=8,max=1024"`
	FirstName string `json:"first_name" validate:"omitempty,max=255"`
	LastName  string `json:"last_name" validate:"omitempty,max=255"`
	Img       string `json:"img" validate:"omitempty,max=1024"`
	Age       string `json:"age" validate:"omitempty,max=16"`
}

type signinRequest struct {
	Email    string `json:"email" validate:"required,email,max=254"`
	Password string `json:"password" validate:"required,max=1024"`
}

type refreshRequest struct {
	RefreshToken string `json:"refresh_token" validate:"required"`
}

type createPostRequest struct {
	Title       string   `json:"title" validate:"required,max=255"`
	Description string   `json:"description" validate:"required,max=255"`
	Link        string   `json:"link" validate:"required,url,max=255"`
	City        string   `json:"city" validate:"required,max=255"`
	CategoryIDs []string `json:"category_ids" validate:"dive,len=26"`
	TagLabels   []string `json:"tags" validate:"dive,min=1,max=255"`
}

type updatePostRequest struct {
	Title       *string   `json:"title" validate:"omitempty,max=255"`
	Description *string   `json:"description" validate:"omitempty,max=255"`
	Link        *string   `json:"link" validate:"omitempty,url,max=255"`
	City        *string   `json:"city" validate:"omitempty,max=255"`
	CategoryIDs *[]string `json:"category_ids" validate:"omitempty,dive,len=26"`
	TagLabels   *[]string `json:"tags" validate:"omitempty,dive,min=1,max=255"`
}

type categoryRequest struct {
	Label string `json:"label" validate:"required,max=255"`
	Value string `json:"value" validate:"required,max=255"`
}

type updateCategoryRequest struct {
	Label string `json:"label" validate:"omitempty,max=255"`
	Value string `json:"value" validate:"omitempty,max=255"`
}

type tagRequest struct {
	Label string `json:"label" validate:"required,min=1,max=255"`
}

type updateUserRequest struct {
	FirstName *string `json:"first_name" validate:"omitempty,max=255"`
	LastName  *string `json:"last_name" validate:"omitempty,max=255"`
	Img       *string `json:"img" validate:"omitempty,max=1024"`
	Age       *string `json:"age" validate:"omitempty,max=16"`
}

// === Responses ===

// userResponse never carries the password hash.
type userResponse struct {
	ID        string    `json:"id"`
	Email     string    `json:"email"`
	Role      string    `json:"role"`
	FirstName string    `json:"first_name,omitempty"`
	LastName  string    `json:"last_name,omitempty"`
	Img       string    `json:"img,omitempty"`
	Age       string    `json:"age,omitempty"`
	CreatedAt time.Time `json:"created_at"`
	UpdatedAt time.Time `json:"updated_at"`
}

func toUserResponse(u *auth.User) userResponse {
	return userResponse{
		ID:        u.ID.String(),
		Email:     u.Email,
		Role:      string(u.Role),
		FirstName: u.Profile.FirstName,
		LastName:  u.Profile.LastName,
		Img:       u.Profile.Img,
		Age:       u.Profile.Age,
		CreatedAt: u.CreatedAt,
		UpdatedAt: u.UpdatedAt,
	}
}

type tokenResponse struct {
	AccessToken  string `json:"access_token"`
	RefreshToken string `json:"refresh_token"`
}

type authResponse struct {
	User   userResponse  `json:"user"`
	Tokens tokenResponse `json:"tokens"`
}

func toAuthResponse(u *auth.User, pair auth.TokenPair) authResponse {
	return authResponse{
		User:   toUserResponse(u),
		Tokens: tokenResponse{AccessToken: pair.Access, RefreshToken: pair.Refresh},
	}
}

type categoryResponse struct {
	ID    string `json:"id"`
	Label string `json:"label"`
	Value string `json:"value"`
}

func toCategoryResponse(c *content.Category) categoryResponse {
	return categoryResponse{ID: c.ID.String(), Label: c.Label, Value: c.Value}
}

type tagResponse struct {
	ID    string `json:"id"`
	Label string `json:"label"`
}

func toTagResponse(tag *content.Tag) tagResponse {
	return tagResponse{ID: tag.ID.String(), Label: tag.Label}
}

type postResponse struct {
	ID          string             `json:"id"`
	UserID      string             `json:"user_id"`
	Title       string             `json:"title"`
	Description string             `json:"description"`
	Link        string             `json:"link"`
	City        string             `json:"city"`
	Categories  []categoryResponse `json:"categories"`
	Tags        []tagResponse      `json:"tags"`
	CreatedAt   time.Time          `json:"created_at"`
	UpdatedAt   time.Time          `json:"updated_at"`
}

func toPostResponse(p *content.Post) postResponse {
	categories := make([]categoryResponse, 0, len(p.Categories))
	for i := range p.Categories {
		categories = append(categories, toCategoryResponse(&p.Categories[i]))
	}
	tags := make([]tagResponse, 0, len(p.Tags))
	for i := range p.Tags {
		tags = append(tags, toTagResponse(&p.Tags[i]))
	}
	return postResponse{
		ID:          p.ID.String(),
		UserID:      p.UserID.String(),
		Title:       p.Title,
		Description: p.Description,
		Link:        p.Link,
		City:        p.City,
		Categories:  categories,
		Tags:        tags,
		CreatedAt:   p.CreatedAt,
		UpdatedAt:   p.UpdatedAt,
	}
}

type postListResponse struct {
	Posts []postResponse `json:"posts"`
	Total int            `json:"total"`
	Page  int            `json:"page"`
	Limit int            `json:"limit"`
}
