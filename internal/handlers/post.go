package handlers

import (
	"errors"
	"net/http"
	"strings"

	"github.com/tokeley/researchlog/internal/metrics"
	"github.com/tokeley/researchlog/internal/middleware"
	"github.com/tokeley/researchlog/internal/models"
	"github.com/tokeley/researchlog/internal/repo"
)

// ==========================
// Post Handler
// ==========================
type PostHandler struct {
	Repo *repo.PostRepo
}

type createPostInput struct {
	Title   string   `json:"title" validate:"required,max=300"`
	Caption string   `json:"caption" validate:"max=500"`
	Content string   `json:"content" validate:"required"`
	Tags    []string `json:"tags"`
	Status  string   `json:"status" validate:"omitempty,oneof=draft published"`
}

type updatePostInput struct {
	Title   *string   `json:"title" validate:"omitnil,min=1,max=300"`
	Caption *string   `json:"caption" validate:"omitnil,max=500"`
	Content *string   `json:"content" validate:"omitnil,min=1"`
	Tags    *[]string `json:"tags"`
	Status  *string   `json:"status" validate:"omitnil,oneof=draft published"`
}

// ==========================
// List Posts (drafts only for admins)
// ==========================
func (h *PostHandler) ListPosts(w http.ResponseWriter, r *http.Request) {
	filter := listFilter(r)
	if id, ok := middleware.IdentityFrom(r.Context()); ok && id.IsAdmin {
		filter.IncludeDrafts = true
	}

	posts, err := h.Repo.List(r.Context(), filter)
	if err != nil {
		internalError(w, r, "list posts", err)
		return
	}
	writeJSON(w, http.StatusOK, posts)
}

func (h *PostHandler) ListTags(w http.ResponseWriter, r *http.Request) {
	tags, err := h.Repo.Tags(r.Context())
	if err != nil {
		internalError(w, r, "list post tags", err)
		return
	}
	writeJSON(w, http.StatusOK, tags)
}

// ==========================
// Get Post
// ==========================
func (h *PostHandler) GetPost(w http.ResponseWriter, r *http.Request) {
	id, ok := idParam(r)
	if !ok {
		JSONError(w, "invalid post id", http.StatusBadRequest)
		return
	}

	post, err := h.Repo.Get(r.Context(), id)
	if err != nil {
		storeError(w, r, "get post", err, "post not found")
		return
	}
	writeJSON(w, http.StatusOK, post)
}

// ==========================
// Create Post (author is the caller)
// ==========================
func (h *PostHandler) CreatePost(w http.ResponseWriter, r *http.Request) {
	caller, ok := middleware.IdentityFrom(r.Context())
	if !ok {
		JSONError(w, "unauthorized", http.StatusUnauthorized)
		return
	}

	var input createPostInput
	if err := decodeJSON(r, &input); err != nil {
		JSONError(w, "invalid json", http.StatusBadRequest)
		return
	}
	input.Title = strings.TrimSpace(input.Title)
	input.Caption = strings.TrimSpace(input.Caption)
	input.Status = strings.TrimSpace(input.Status)
	if fields := validationFields(input); fields != nil {
		JSONValidationError(w, "validation failed", fields, http.StatusBadRequest)
		return
	}

	post, err := h.Repo.Create(r.Context(), models.Post{
		Title:   input.Title,
		Caption: input.Caption,
		Content: input.Content,
		Tags:    cleanTags(input.Tags),
		Status:  input.Status,
		Author:  models.UserPublic{ID: caller.UserID},
	})
	if errors.Is(err, repo.ErrUnknownOwner) {
		// token outlived its account
		JSONError(w, "unauthorized", http.StatusUnauthorized)
		return
	}
	if err != nil {
		internalError(w, r, "create post", err)
		return
	}

	metrics.IncMutation("posts", "create")
	writeJSON(w, http.StatusCreated, post)
}

// ==========================
// Update Post (partial)
// ==========================
func (h *PostHandler) UpdatePost(w http.ResponseWriter, r *http.Request) {
	id, ok := idParam(r)
	if !ok {
		JSONError(w, "invalid post id", http.StatusBadRequest)
		return
	}

	var input updatePostInput
	if err := decodeJSON(r, &input); err != nil {
		JSONError(w, "invalid json", http.StatusBadRequest)
		return
	}
	input.Title = trimPtr(input.Title)
	input.Caption = trimPtr(input.Caption)
	input.Status = trimPtr(input.Status)
	if fields := validationFields(input); fields != nil {
		JSONValidationError(w, "validation failed", fields, http.StatusBadRequest)
		return
	}

	patch := models.PostPatch{
		Title:   input.Title,
		Caption: input.Caption,
		Content: input.Content,
		Status:  input.Status,
	}
	if input.Tags != nil {
		tags := cleanTags(*input.Tags)
		patch.Tags = &tags
	}

	post, err := h.Repo.Update(r.Context(), id, patch)
	if err != nil {
		storeError(w, r, "update post", err, "post not found")
		return
	}

	metrics.IncMutation("posts", "update")
	writeJSON(w, http.StatusOK, post)
}

// ==========================
// Delete Post
// ==========================
func (h *PostHandler) DeletePost(w http.ResponseWriter, r *http.Request) {
	id, ok := idParam(r)
	if !ok {
		JSONError(w, "invalid post id", http.StatusBadRequest)
		return
	}

	if err := h.Repo.Delete(r.Context(), id); err != nil {
		storeError(w, r, "delete post", err, "post not found")
		return
	}

	metrics.IncMutation("posts", "delete")
	w.WriteHeader(http.StatusNoContent)
}

// listFilter reads the tag and q query parameters shared by the list endpoints.
func listFilter(r *http.Request) models.ListFilter {
	q := r.URL.Query()
	return models.ListFilter{
		Tag:   strings.TrimSpace(q.Get("tag")),
		Query: strings.TrimSpace(q.Get("q")),
	}
}
