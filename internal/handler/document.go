package handler

import (
	"context"
	"errors"
	"log/slog"
	"net/http"
	"net/url"
	"strconv"
	"strings"
	"time"

	"vault/internal/domain"
	docsystem "vault/internal/domain/models/docsystem"
	docsysSvc "vault/internal/domain/services/docsystem"
	"vault/internal/httputil"

	validation "github.com/go-ozzo/ozzo-validation/v4"
)

// DocumentHandler handles document HTTP requests
type DocumentHandler struct {
	docService docsysSvc.DocumentService
	logger     *slog.Logger
}

// NewDocumentHandler creates a new document handler
func NewDocumentHandler(docService docsysSvc.DocumentService, logger *slog.Logger) *DocumentHandler {
	return &DocumentHandler{
		docService: docService,
		logger:     logger,
	}
}

// updateDocumentBody is the PATCH payload. source_url distinguishes null from absent.
type updateDocumentBody struct {
	Title      *string                 `json:"title"`
	Content    *string                 `json:"content"`
	DocType    *string                 `json:"doc_type"`
	SourceURL  httputil.OptionalString `json:"source_url"`
	IsPinned   *bool                   `json:"is_pinned"`
	IsArchived *bool                   `json:"is_archived"`
	Tags       *[]string               `json:"tags"`
}

// ListDocuments lists the caller's documents
// GET /api/v1/documents
func (h *DocumentHandler) ListDocuments(w http.ResponseWriter, r *http.Request) {
	filter, err := parseDocumentFilter(r.URL.Query())
	if err != nil {
		handleError(w, err)
		return
	}
	filter.UserID = httputil.GetUserID(r)

	page, err := h.docService.ListDocuments(r.Context(), filter)
	if err != nil {
		handleError(w, err)
		return
	}

	httputil.RespondJSON(w, http.StatusOK, page)
}

// CreateDocument creates a document
// POST /api/v1/documents
func (h *DocumentHandler) CreateDocument(w http.ResponseWriter, r *http.Request) {
	var req docsysSvc.CreateDocumentRequest
	if err := httputil.ParseJSON(w, r, &req); err != nil {
		handleParseError(w, err)
		return
	}

	doc, err := h.docService.CreateDocument(r.Context(), httputil.GetUserID(r), &req)
	if err != nil {
		handleError(w, err)
		return
	}

	httputil.RespondJSON(w, http.StatusCreated, doc)
}

// GetDocument retrieves a document by ID
// GET /api/v1/documents/{id}
func (h *DocumentHandler) GetDocument(w http.ResponseWriter, r *http.Request) {
	id, ok := PathParam(w, r, "id", "Document ID")
	if !ok {
		return
	}

	doc, err := h.docService.GetDocument(r.Context(), httputil.GetUserID(r), id)
	if err != nil {
		handleError(w, err)
		return
	}

	httputil.RespondJSON(w, http.StatusOK, doc)
}

// UpdateDocument applies a partial update
// PATCH /api/v1/documents/{id}
func (h *DocumentHandler) UpdateDocument(w http.ResponseWriter, r *http.Request) {
	id, ok := PathParam(w, r, "id", "Document ID")
	if !ok {
		return
	}

	var body updateDocumentBody
	if err := httputil.ParseJSON(w, r, &body); err != nil {
		handleParseError(w, err)
		return
	}

	req := &docsysSvc.UpdateDocumentRequest{
		Title:      body.Title,
		Content:    body.Content,
		DocType:    body.DocType,
		SourceURL:  body.SourceURL.Domain(),
		IsPinned:   body.IsPinned,
		IsArchived: body.IsArchived,
		Tags:       body.Tags,
	}

	doc, err := h.docService.UpdateDocument(r.Context(), httputil.GetUserID(r), id, req)
	if err != nil {
		handleError(w, err)
		return
	}

	httputil.RespondJSON(w, http.StatusOK, doc)
}

// DeleteDocument hard-deletes a document
// DELETE /api/v1/documents/{id}
func (h *DocumentHandler) DeleteDocument(w http.ResponseWriter, r *http.Request) {
	id, ok := PathParam(w, r, "id", "Document ID")
	if !ok {
		return
	}

	if err := h.docService.DeleteDocument(r.Context(), httputil.GetUserID(r), id); err != nil {
		handleError(w, err)
		return
	}

	w.WriteHeader(http.StatusNoContent)
}

// Archive returns a handler setting the archived flag to value.
// POST /api/v1/documents/{id}/archive and /unarchive
func (h *DocumentHandler) Archive(value bool) http.HandlerFunc {
	return h.flagHandler(value, h.docService.ArchiveDocument)
}

// Pin returns a handler setting the pinned flag to value.
// POST /api/v1/documents/{id}/pin and /unpin
func (h *DocumentHandler) Pin(value bool) http.HandlerFunc {
	return h.flagHandler(value, h.docService.PinDocument)
}

type flagSetter func(ctx context.Context, userID, documentID string, value bool) (*docsystem.Document, error)

func (h *DocumentHandler) flagHandler(value bool, set flagSetter) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		id, ok := PathParam(w, r, "id", "Document ID")
		if !ok {
			return
		}

		doc, err := set(r.Context(), httputil.GetUserID(r), id, value)
		if err != nil {
			handleError(w, err)
			return
		}

		httputil.RespondJSON(w, http.StatusOK, doc)
	}
}

// parseDocumentFilter maps listing query parameters onto a filter.
// Unparseable values are reported together as one validation error.
func parseDocumentFilter(query url.Values) (*docsystem.DocumentFilter, error) {
	filter := &docsystem.DocumentFilter{
		Query:     query.Get("query"),
		DocType:   strings.TrimSpace(query.Get("doc_type")),
		Tags:      splitList(query["tags"]),
		SortBy:    query.Get("sort_by"),
		SortOrder: query.Get("sort_order"),
	}

	errs := validation.Errors{}
	filter.IsPinned = parseBoolParam(query, "is_pinned", errs)
	filter.IsArchived = parseBoolParam(query, "is_archived", errs)
	filter.DateFrom = parseTimeParam(query, "date_from", errs)
	filter.DateTo = parseTimeParam(query, "date_to", errs)
	filter.Page = parseIntParam(query, "page", errs)
	filter.Limit = parseIntParam(query, "limit", errs)

	if len(errs) > 0 {
		return nil, domain.NewValidationError(errs)
	}
	return filter, nil
}

// splitList accepts both repeated and comma-separated values
func splitList(values []string) []string {
	var out []string
	for _, value := range values {
		for _, part := range strings.Split(value, ",") {
			if part = strings.TrimSpace(part); part != "" {
				out = append(out, part)
			}
		}
	}
	return out
}

func parseBoolParam(query url.Values, name string, errs validation.Errors) *bool {
	raw := query.Get(name)
	if raw == "" {
		return nil
	}
	value, err := strconv.ParseBool(raw)
	if err != nil {
		errs[name] = errors.New("must be true or false")
		return nil
	}
	return &value
}

func parseIntParam(query url.Values, name string, errs validation.Errors) int {
	raw := query.Get(name)
	if raw == "" {
		return 0
	}
	value, err := strconv.Atoi(raw)
	if err != nil {
		errs[name] = errors.New("must be an integer")
		return 0
	}
	if value < 1 {
		errs[name] = errors.New("must be no less than 1")
		return 0
	}
	return value
}

// parseTimeParam accepts RFC 3339 timestamps or plain dates (midnight UTC)
func parseTimeParam(query url.Values, name string, errs validation.Errors) *time.Time {
	raw := query.Get(name)
	if raw == "" {
		return nil
	}
	for _, layout := range []string{time.RFC3339, time.DateOnly} {
		if value, err := time.Parse(layout, raw); err == nil {
			return &value
		}
	}
	errs[name] = errors.New("must be an RFC 3339 timestamp or a YYYY-MM-DD date")
	return nil
}
