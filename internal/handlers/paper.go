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
// Paper Handler
// ==========================
type PaperHandler struct {
	Repo *repo.PaperRepo
}

type createPaperInput struct {
	Title    string   `json:"title" validate:"required,max=500"`
	Authors  []string `json:"authors" validate:"required,min=1,dive,required"`
	Year     int      `json:"year" validate:"required,gt=0,lte=9999"`
	Abstract string   `json:"abstract"`
	URL      string   `json:"url" validate:"omitempty,url"`
	IsRead   bool     `json:"isRead"`
	Notes    string   `json:"notes"`
	Tags     []string `json:"tags"`
}

type updatePaperInput struct {
	Title    *string   `json:"title" validate:"omitnil,min=1,max=500"`
	Authors  *[]string `json:"authors" validate:"omitnil,min=1,dive,required"`
	Year     *int      `json:"year" validate:"omitnil,gt=0,lte=9999"`
	Abstract *string   `json:"abstract"`
	URL      *string   `json:"url"`
	IsRead   *bool     `json:"isRead"`
	Notes    *string   `json:"notes"`
	Tags     *[]string `json:"tags"`
}

type notesInput struct {
	Notes *string `json:"notes" validate:"required"`
}

func (h *PaperHandler) ListPapers(w http.ResponseWriter, r *http.Request) {
	papers, err := h.Repo.List(r.Context(), listFilter(r))
	if err != nil {
		internalError(w, r, "list papers", err)
		return
	}
	writeJSON(w, http.StatusOK, papers)
}

func (h *PaperHandler) ListTags(w http.ResponseWriter, r *http.Request) {
	tags, err := h.Repo.Tags(r.Context())
	if err != nil {
		internalError(w, r, "list paper tags", err)
		return
	}
	writeJSON(w, http.StatusOK, tags)
}

func (h *PaperHandler) GetPaper(w http.ResponseWriter, r *http.Request) {
	id, ok := idParam(r)
	if !ok {
		JSONError(w, "invalid paper id", http.StatusBadRequest)
		return
	}

	paper, err := h.Repo.Get(r.Context(), id)
	if err != nil {
		storeError(w, r, "get paper", err, "paper not found")
		return
	}
	writeJSON(w, http.StatusOK, paper)
}

// ==========================
// Create Paper (addedBy is the caller)
// ==========================
func (h *PaperHandler) CreatePaper(w http.ResponseWriter, r *http.Request) {
	caller, ok := middleware.IdentityFrom(r.Context())
	if !ok {
		JSONError(w, "unauthorized", http.StatusUnauthorized)
		return
	}

	var input createPaperInput
	if err := decodeJSON(r, &input); err != nil {
		JSONError(w, "invalid json", http.StatusBadRequest)
		return
	}
	input.Title = strings.TrimSpace(input.Title)
	input.Authors = trimAll(input.Authors)
	input.URL = strings.TrimSpace(input.URL)
	if fields := validationFields(input); fields != nil {
		JSONValidationError(w, "validation failed", fields, http.StatusBadRequest)
		return
	}

	paper, err := h.Repo.Create(r.Context(), models.Paper{
		Title:    input.Title,
		Authors:  input.Authors,
		Year:     input.Year,
		Abstract: input.Abstract,
		URL:      input.URL,
		IsRead:   input.IsRead,
		Notes:    input.Notes,
		Tags:     cleanTags(input.Tags),
		AddedBy:  models.UserPublic{ID: caller.UserID},
	})
	if errors.Is(err, repo.ErrUnknownOwner) {
		// token outlived its account
		JSONError(w, "unauthorized", http.StatusUnauthorized)
		return
	}
	if err != nil {
		internalError(w, r, "create paper", err)
		return
	}

	metrics.IncMutation("papers", "create")
	writeJSON(w, http.StatusCreated, paper)
}

// ==========================
// Update Paper (partial)
// ==========================
func (h *PaperHandler) UpdatePaper(w http.ResponseWriter, r *http.Request) {
	id, ok := idParam(r)
	if !ok {
		JSONError(w, "invalid paper id", http.StatusBadRequest)
		return
	}

	var input updatePaperInput
	if err := decodeJSON(r, &input); err != nil {
		JSONError(w, "invalid json", http.StatusBadRequest)
		return
	}
	input.Title = trimPtr(input.Title)
	input.URL = trimPtr(input.URL)
	if input.Authors != nil {
		authors := trimAll(*input.Authors)
		input.Authors = &authors
	}
	fields := validationFields(input)
	// An empty url clears the link.
	if input.URL != nil && *input.URL != "" && validate.Var(*input.URL, "url") != nil {
		if fields == nil {
			fields = map[string]string{}
		}
		fields["url"] = "url"
	}
	if fields != nil {
		JSONValidationError(w, "validation failed", fields, http.StatusBadRequest)
		return
	}

	patch := models.PaperPatch{
		Title:    input.Title,
		Authors:  input.Authors,
		Year:     input.Year,
		Abstract: input.Abstract,
		URL:      input.URL,
		IsRead:   input.IsRead,
		Notes:    input.Notes,
	}
	if input.Tags != nil {
		tags := cleanTags(*input.Tags)
		patch.Tags = &tags
	}

	paper, err := h.Repo.Update(r.Context(), id, patch)
	if err != nil {
		storeError(w, r, "update paper", err, "paper not found")
		return
	}

	metrics.IncMutation("papers", "update")
	writeJSON(w, http.StatusOK, paper)
}

// ToggleRead flips the read flag.
func (h *PaperHandler) ToggleRead(w http.ResponseWriter, r *http.Request) {
	id, ok := idParam(r)
	if !ok {
		JSONError(w, "invalid paper id", http.StatusBadRequest)
		return
	}

	paper, err := h.Repo.ToggleRead(r.Context(), id)
	if err != nil {
		storeError(w, r, "toggle read", err, "paper not found")
		return
	}

	metrics.IncMutation("papers", "toggle_read")
	writeJSON(w, http.StatusOK, paper)
}

// UpdateNotes replaces the notes. An empty string clears them.
func (h *PaperHandler) UpdateNotes(w http.ResponseWriter, r *http.Request) {
	id, ok := idParam(r)
	if !ok {
		JSONError(w, "invalid paper id", http.StatusBadRequest)
		return
	}

	var input notesInput
	if err := decodeJSON(r, &input); err != nil {
		JSONError(w, "invalid json", http.StatusBadRequest)
		return
	}
	if fields := validationFields(input); fields != nil {
		JSONValidationError(w, "validation failed", fields, http.StatusBadRequest)
		return
	}

	paper, err := h.Repo.SetNotes(r.Context(), id, *input.Notes)
	if err != nil {
		storeError(w, r, "update notes", err, "paper not found")
		return
	}

	metrics.IncMutation("papers", "notes")
	writeJSON(w, http.StatusOK, paper)
}

func (h *PaperHandler) DeletePaper(w http.ResponseWriter, r *http.Request) {
	id, ok := idParam(r)
	if !ok {
		JSONError(w, "invalid paper id", http.StatusBadRequest)
		return
	}

	if err := h.Repo.Delete(r.Context(), id); err != nil {
		storeError(w, r, "delete paper", err, "paper not found")
		return
	}

	metrics.IncMutation("papers", "delete")
	w.WriteHeader(http.StatusNoContent)
}
