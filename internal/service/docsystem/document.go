package docsystem

import (
	"context"
	"fmt"
	"log/slog"
	"strings"
	"time"

	"vault/internal/domain"
	"vault/internal/domain/models"
	docsys "vault/internal/domain/models/docsystem"
	"vault/internal/domain/repositories"
	docsysRepo "vault/internal/domain/repositories/docsystem"
	"vault/internal/domain/services"
	docsysSvc "vault/internal/domain/services/docsystem"
)

// documentService implements the DocumentService interface
type documentService struct {
	docRepo    docsysRepo.DocumentRepository
	tagRepo    docsysRepo.TagRepository
	txManager  repositories.TransactionManager
	reconciler docsysSvc.TagReconciler
	authorizer services.ResourceAuthorizer
	renderer   docsysSvc.ContentRenderer
	logger     *slog.Logger
	now        func() time.Time
}

// NewDocumentService creates a new document service
func NewDocumentService(
	docRepo docsysRepo.DocumentRepository,
	tagRepo docsysRepo.TagRepository,
	txManager repositories.TransactionManager,
	reconciler docsysSvc.TagReconciler,
	authorizer services.ResourceAuthorizer,
	renderer docsysSvc.ContentRenderer,
	logger *slog.Logger,
) docsysSvc.DocumentService {
	return &documentService{
		docRepo:    docRepo,
		tagRepo:    tagRepo,
		txManager:  txManager,
		reconciler: reconciler,
		authorizer: authorizer,
		renderer:   renderer,
		logger:     logger,
		now:        func() time.Time { return time.Now().UTC() },
	}
}

// CreateDocument creates a document and applies its tags in one transaction
func (s *documentService) CreateDocument(ctx context.Context, userID string, req *docsysSvc.CreateDocumentRequest) (*docsys.Document, error) {
	req.Title = strings.TrimSpace(req.Title)
	if err := req.Validate(); err != nil {
		return nil, domain.NewValidationError(err)
	}

	doc := &docsys.Document{
		Base:            models.NewBase(s.now()),
		UserID:          userID,
		Title:           req.Title,
		DocType:         strings.TrimSpace(req.DocType),
		SourceType:      req.SourceType,
		SourceURL:       normalizeURL(req.SourceURL),
		Metadata:        models.JSONMap{},
		ImportanceScore: docsys.DefaultImportance,
		IsPinned:        req.IsPinned,
		Tags:            []string{},
	}
	if doc.DocType == "" {
		doc.DocType = docsys.DefaultDocType
	}
	if doc.SourceType == "" {
		doc.SourceType = docsys.SourceTypeManual
	}
	if err := s.setContent(ctx, doc, req.Content); err != nil {
		return nil, err
	}

	err := s.txManager.ExecTx(ctx, func(txCtx context.Context) error {
		if err := s.docRepo.Create(txCtx, doc); err != nil {
			return err
		}
		if len(req.Tags) == 0 {
			return nil
		}
		applied, err := s.reconciler.Apply(txCtx, doc.ID, userID, req.Tags)
		if err != nil {
			return err
		}
		doc.Tags = applied
		return nil
	})
	if err != nil {
		return nil, err
	}

	s.logger.Info("document created",
		"id", doc.ID,
		"user_id", userID,
		"doc_type", doc.DocType,
		"tags", len(doc.Tags),
	)
	return doc, nil
}

// GetDocument returns an owned document and records the access
func (s *documentService) GetDocument(ctx context.Context, userID, documentID string) (*docsys.Document, error) {
	doc, err := s.authorizer.CanAccessDocument(ctx, userID, documentID)
	if err != nil {
		return nil, err
	}

	accessed := s.now()
	if err := s.docRepo.TouchLastAccessed(ctx, doc.ID, accessed); err != nil {
		return nil, fmt.Errorf("record access to document %s: %w", doc.ID, err)
	}
	doc.LastAccessed = &accessed

	if err := s.loadTags(ctx, doc); err != nil {
		return nil, err
	}
	return doc, nil
}

// ListDocuments returns one page of the user's documents with their tags
func (s *documentService) ListDocuments(ctx context.Context, filter *docsys.DocumentFilter) (*docsys.DocumentPage, error) {
	filter.ApplyDefaults()
	filter.Tags = docsysSvc.NormalizeTagNames(filter.Tags)
	if err := filter.Validate(); err != nil {
		return nil, domain.NewValidationError(err)
	}

	docs, total, err := s.docRepo.List(ctx, filter)
	if err != nil {
		return nil, err
	}

	ids := make([]string, len(docs))
	for i := range docs {
		ids[i] = docs[i].ID
	}
	names, err := s.tagRepo.ListNamesByDocuments(ctx, ids)
	if err != nil {
		return nil, err
	}
	for i := range docs {
		docs[i].Tags = tagsOrEmpty(names[docs[i].ID])
	}

	return docsys.NewDocumentPage(docs, total, filter), nil
}

// UpdateDocument applies a partial update. Tags, when present, replace the whole set
// in the same transaction as the row update.
func (s *documentService) UpdateDocument(ctx context.Context, userID, documentID string, req *docsysSvc.UpdateDocumentRequest) (*docsys.Document, error) {
	if req.Title != nil {
		title := strings.TrimSpace(*req.Title)
		req.Title = &title
	}
	if err := req.Validate(); err != nil {
		return nil, domain.NewValidationError(err)
	}

	doc, err := s.authorizer.CanAccessDocument(ctx, userID, documentID)
	if err != nil {
		return nil, err
	}

	if req.Title != nil {
		doc.Title = *req.Title
	}
	if req.Content != nil {
		if err := s.setContent(ctx, doc, *req.Content); err != nil {
			return nil, err
		}
	}
	if req.DocType != nil {
		doc.DocType = strings.TrimSpace(*req.DocType)
	}
	if req.SourceURL.Present {
		doc.SourceURL = normalizeURL(req.SourceURL.Value)
	}
	if req.IsPinned != nil {
		doc.IsPinned = *req.IsPinned
	}
	if req.IsArchived != nil {
		doc.IsArchived = *req.IsArchived
	}
	doc.Touch(s.now())

	err = s.txManager.ExecTx(ctx, func(txCtx context.Context) error {
		if err := s.docRepo.Update(txCtx, doc); err != nil {
			return err
		}
		if req.Tags == nil {
			return nil
		}
		applied, err := s.reconciler.Apply(txCtx, doc.ID, userID, *req.Tags)
		if err != nil {
			return err
		}
		doc.Tags = applied
		return nil
	})
	if err != nil {
		return nil, err
	}

	if req.Tags == nil {
		if err := s.loadTags(ctx, doc); err != nil {
			return nil, err
		}
	}

	s.logger.Info("document updated", "id", doc.ID, "user_id", userID)
	return doc, nil
}

// DeleteDocument hard-deletes an owned document
func (s *documentService) DeleteDocument(ctx context.Context, userID, documentID string) error {
	if _, err := s.authorizer.CanAccessDocument(ctx, userID, documentID); err != nil {
		return err
	}

	if err := s.docRepo.Delete(ctx, documentID, userID); err != nil {
		return err
	}

	s.logger.Info("document deleted", "id", documentID, "user_id", userID)
	return nil
}

// ArchiveDocument sets the archived flag
func (s *documentService) ArchiveDocument(ctx context.Context, userID, documentID string, archived bool) (*docsys.Document, error) {
	return s.setFlag(ctx, userID, documentID, "archived", archived, func(doc *docsys.Document) *bool { return &doc.IsArchived })
}

// PinDocument sets the pinned flag
func (s *documentService) PinDocument(ctx context.Context, userID, documentID string, pinned bool) (*docsys.Document, error) {
	return s.setFlag(ctx, userID, documentID, "pinned", pinned, func(doc *docsys.Document) *bool { return &doc.IsPinned })
}

// Stats summarizes the user's vault
func (s *documentService) Stats(ctx context.Context, userID string) (*docsys.Stats, error) {
	return s.docRepo.Stats(ctx, userID)
}

// setFlag is idempotent: a flag already at the requested value is not written again
func (s *documentService) setFlag(ctx context.Context, userID, documentID, name string, value bool, field func(*docsys.Document) *bool) (*docsys.Document, error) {
	doc, err := s.authorizer.CanAccessDocument(ctx, userID, documentID)
	if err != nil {
		return nil, err
	}

	if flag := field(doc); *flag != value {
		*flag = value
		doc.Touch(s.now())
		if err := s.docRepo.Update(ctx, doc); err != nil {
			return nil, err
		}
		s.logger.Info("document flag changed", "id", doc.ID, "flag", name, "value", value)
	}

	if err := s.loadTags(ctx, doc); err != nil {
		return nil, err
	}
	return doc, nil
}

// setContent stores raw markdown with its rendered variants and word count
func (s *documentService) setContent(ctx context.Context, doc *docsys.Document, raw string) error {
	rendered, err := s.renderer.Render(ctx, raw)
	if err != nil {
		return fmt.Errorf("render content: %w", err)
	}

	doc.ContentRaw = raw
	doc.ContentHTML = rendered.HTML
	doc.ContentPlain = rendered.Plain
	if doc.Metadata == nil {
		doc.Metadata = models.JSONMap{}
	}
	doc.Metadata["word_count"] = rendered.WordCount
	return nil
}

func (s *documentService) loadTags(ctx context.Context, doc *docsys.Document) error {
	names, err := s.tagRepo.ListNamesByDocuments(ctx, []string{doc.ID})
	if err != nil {
		return err
	}
	doc.Tags = tagsOrEmpty(names[doc.ID])
	return nil
}

// normalizeURL trims a source URL, treating blank as absent
func normalizeURL(url *string) *string {
	if url == nil {
		return nil
	}
	trimmed := strings.TrimSpace(*url)
	if trimmed == "" {
		return nil
	}
	return &trimmed
}

func tagsOrEmpty(names []string) []string {
	if names == nil {
		return []string{}
	}
	return names
}
