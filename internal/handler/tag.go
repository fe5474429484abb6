package handler

import (
	"log/slog"
	"net/http"

	docsysSvc "vault/internal/domain/services/docsystem"
	"vault/internal/httputil"
)

// TagHandler handles tag HTTP requests
type TagHandler struct {
	tagService docsysSvc.TagService
	logger     *slog.Logger
}

// NewTagHandler creates a new tag handler
func NewTagHandler(tagService docsysSvc.TagService, logger *slog.Logger) *TagHandler {
	return &TagHandler{
		tagService: tagService,
		logger:     logger,
	}
}

// ListTags lists the caller's tags with document counts
// GET /api/v1/tags
func (h *TagHandler) ListTags(w http.ResponseWriter, r *http.Request) {
	tags, err := h.tagService.ListTags(r.Context(), httputil.GetUserID(r))
	if err != nil {
		handleError(w, err)
		return
	}

	httputil.RespondJSON(w, http.StatusOK, tags)
}

// UpdateTag renames or recolors a tag
// PATCH /api/v1/tags/{id}
func (h *TagHandler) UpdateTag(w http.ResponseWriter, r *http.Request) {
	id, ok := PathParam(w, r, "id", "Tag ID")
	if !ok {
		return
	}

	var req docsysSvc.UpdateTagRequest
	if err := httputil.ParseJSON(w, r, &req); err != nil {
		handleParseError(w, err)
		return
	}

	tag, err := h.tagService.UpdateTag(r.Context(), httputil.GetUserID(r), id, &req)
	if err != nil {
		handleError(w, err)
		return
	}

	httputil.RespondJSON(w, http.StatusOK, tag)
}

// DeleteTag deletes a tag and unlinks it from every document
// DELETE /api/v1/tags/{id}
func (h *TagHandler) DeleteTag(w http.ResponseWriter, r *http.Request) {
	id, ok := PathParam(w, r, "id", "Tag ID")
	if !ok {
		return
	}

	if err := h.tagService.DeleteTag(r.Context(), httputil.GetUserID(r), id); err != nil {
		handleError(w, err)
		return
	}

	w.WriteHeader(http.StatusNoContent)
}
