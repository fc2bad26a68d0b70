// SPDX-License-Identifier: Apache-2.0
// Copyright 2026 Postline Contributors

package content

import (
	"context"
	"errors"
	"log/slog"

	"github.com/oklog/ulid/v2"
	"github.com/samber/oops"
)

// CreatePostInput carries the fields for creating a post. CategoryIDs picks
// a subset of existing categories by ID (membership only, order ignored);
// TagLabels resolve get-or-create by exact label.
type CreatePostInput struct {
	Title       string
	Description string
	Link        string
	City        string
	CategoryIDs []string
	TagLabels   []string
}

// UpdatePostInput carries the updatable post fields. Nil means unchanged;
// a non-nil empty slice clears the relation set.
type UpdatePostInput struct {
	Title       *string
	Description *string
	Link        *string
	City        *string
	CategoryIDs *[]string
	TagLabels   *[]string
}

// PostService coordinates post operations. Creation and update run inside a
// single transaction so an aborted attempt leaves no partial post and no
// orphan tag rows.
type PostService struct {
	posts      PostRepository
	categories CategoryRepository
	tags       TagRepository
	users      UserDirectory
	tx         Transactor
	logger     *slog.Logger
}

// NewPostService creates a PostService.
func NewPostService(posts PostRepository, categories CategoryRepository, tags TagRepository, users UserDirectory, tx Transactor, logger *slog.Logger) (*PostService, error) {
	if posts == nil {
		return nil, oops.Errorf("posts repository is required")
	}
	if categories == nil {
		return nil, oops.Errorf("categories repository is required")
	}
	if tags == nil {
		return nil, oops.Errorf("tags repository is required")
	}
	if users == nil {
		return nil, oops.Errorf("user directory is required")
	}
	if tx == nil {
		return nil, oops.Errorf("transactor is required")
	}
	if logger == nil {
		logger = slog.Default()
	}
	return &PostService{posts: posts, categories: categories, tags: tags, users: users, tx: tx, logger: logger}, nil
}

// Create persists a new post for the user inside one transaction:
//
//  1. reject a duplicate (user, link) pair with ErrConflict
//  2. reject an unknown user with ErrNotFound
//  3. reject creation while no categories exist (ErrNoCategories), else
//     resolve the subset named by CategoryIDs
//  4. resolve TagLabels get-or-create, each label at most once
//  5. persist the post with its relation rows
//
// Any failure rolls back the whole transaction, including tags created in
// step 4.
func (s *PostService) Create(ctx context.Context, userID ulid.ULID, input CreatePostInput) (*Post, error) {
	post, err := NewPost(userID, input.Title, input.Description, input.Link, input.City)
	if err != nil {
		return nil, err
	}

	err = s.tx.InTransaction(ctx, func(ctx context.Context) error {
		if _, err := s.posts.GetByUserLink(ctx, userID, input.Link); err == nil {
			return oops.Code("POST_DUPLICATE_LINK").
				With("user_id", userID.String()).
				With("link", input.Link).
				Wrap(ErrConflict)
		} else if !errors.Is(err, ErrNotFound) {
			return err
		}

		exists, err := s.users.UserExists(ctx, userID)
		if err != nil {
			return err
		}
		if !exists {
			return oops.Code("POST_UNKNOWN_USER").
				With("user_id", userID.String()).
				Wrap(ErrNotFound)
		}

		categories, err := s.resolveCategories(ctx, input.CategoryIDs)
		if err != nil {
			return err
		}
		tags, err := s.resolveTags(ctx, input.TagLabels)
		if err != nil {
			return err
		}

		post.Categories = categories
		post.Tags = tags
		return s.posts.Create(ctx, post)
	})
	if err != nil {
		return nil, err
	}

	s.logger.Info("post created", "post_id", post.ID.String(), "user_id", userID.String())
	return post, nil
}

// Get retrieves a post with its relations.
func (s *PostService) Get(ctx context.Context, id ulid.ULID) (*Post, error) {
	post, err := s.posts.Get(ctx, id)
	if err != nil {
		return nil, err
	}
	return post, nil
}

// List returns a page of the feed, newest first, with the total count.
func (s *PostService) List(ctx context.Context, filter ListFilter) ([]*Post, int, error) {
	posts, total, err := s.posts.List(ctx, filter.Normalize())
	if err != nil {
		return nil, 0, oops.Code("POST_LIST_FAILED").Wrap(err)
	}
	return posts, total, nil
}

// Update applies the non-nil fields of input and replaces relation sets
// where given, all inside one transaction. Changing the link re-checks the
// per-user uniqueness.
func (s *PostService) Update(ctx context.Context, id ulid.ULID, input UpdatePostInput) (*Post, error) {
	var updated *Post
	err := s.tx.InTransaction(ctx, func(ctx context.Context) error {
		post, err := s.posts.Get(ctx, id)
		if err != nil {
			return err
		}

		if input.Title != nil {
			post.Title = *input.Title
		}
		if input.Description != nil {
			post.Description = *input.Description
		}
		if input.Link != nil && *input.Link != post.Link {
			if _, err := s.posts.GetByUserLink(ctx, post.UserID, *input.Link); err == nil {
				return oops.Code("POST_DUPLICATE_LINK").
					With("user_id", post.UserID.String()).
					With("link", *input.Link).
					Wrap(ErrConflict)
			} else if !errors.Is(err, ErrNotFound) {
				return err
			}
			post.Link = *input.Link
		}
		if input.City != nil {
			post.City = *input.City
		}
		if input.CategoryIDs != nil {
			categories, err := s.resolveCategories(ctx, *input.CategoryIDs)
			if err != nil {
				return err
			}
			post.Categories = categories
		}
		if input.TagLabels != nil {
			tags, err := s.resolveTags(ctx, *input.TagLabels)
			if err != nil {
				return err
			}
			post.Tags = tags
		}

		if err := s.posts.Update(ctx, post); err != nil {
			return err
		}
		updated = post
		return nil
	})
	if err != nil {
		return nil, err
	}
	return updated, nil
}

// Delete removes a post and its relation rows. Shared categories and tags
// stay untouched.
func (s *PostService) Delete(ctx context.Context, id ulid.ULID) error {
	if err := s.posts.Delete(ctx, id); err != nil {
		return err
	}
	s.logger.Info("post deleted", "post_id", id.String())
	return nil
}

// resolveCategories loads all categories and returns the subset whose IDs
// appear in ids. Fails with ErrNoCategories while the system has none.
func (s *PostService) resolveCategories(ctx context.Context, ids []string) ([]Category, error) {
	all, err := s.categories.List(ctx)
	if err != nil {
		return nil, err
	}
	if len(all) == 0 {
		return nil, oops.Code("POST_NO_CATEGORIES").
			Hint("create categories before using them").
			Wrap(ErrNoCategories)
	}

	wanted := make(map[string]struct{}, len(ids))
	for _, id := range ids {
		wanted[id] = struct{}{}
	}

	var subset []Category
	for _, c := range all {
		if _, ok := wanted[c.ID.String()]; ok {
			subset = append(subset, *c)
		}
	}
	return subset, nil
}

// resolveTags resolves labels get-or-create with each label used at most
// once. A concurrent create losing the unique-label race falls back to
// fetching the winner's row.
func (s *PostService) resolveTags(ctx context.Context, labels []string) ([]Tag, error) {
	seen := make(map[string]struct{}, len(labels))
	var tags []Tag
	for _, label := range labels {
		if label == "" {
			continue
		}
		if _, ok := seen[label]; ok {
			continue
		}
		seen[label] = struct{}{}

		tag, err := s.tags.GetByLabel(ctx, label)
		switch {
		case err == nil:
			tags = append(tags, *tag)
		case errors.Is(err, ErrNotFound):
			fresh, err := NewTag(label)
			if err != nil {
				return nil, err
			}
			if err := s.tags.Create(ctx, fresh); err != nil {
				if errors.Is(err, ErrConflict) {
					existing, err := s.tags.GetByLabel(ctx, label)
					if err != nil {
						return nil, err
					}
					tags = append(tags, *existing)
					continue
				}
				return nil, err
			}
			tags = append(tags, *fresh)
		default:
			return nil, err
		}
	}
	return tags, nil
}
