package docsystem

import (
	"context"
	"fmt"
	"log/slog"
	"sort"
	"strings"
	"time"

	"vault/internal/domain"
	models "vault/internal/domain/models/docsystem"
	"vault/internal/domain/repositories"
	docsysRepo "vault/internal/domain/repositories/docsystem"
	"vault/internal/domain/services"
	docsysSvc "vault/internal/domain/services/docsystem"
)

// tagReconciler implements the TagReconciler interface
type tagReconciler struct {
	tagRepo   docsysRepo.TagRepository
	txManager repositories.TransactionManager
	logger    *slog.Logger
}

// NewTagReconciler creates a new tag reconciler
func NewTagReconciler(
	tagRepo docsysRepo.TagRepository,
	txManager repositories.TransactionManager,
	logger *slog.Logger,
) docsysSvc.TagReconciler {
	return &tagReconciler{
		tagRepo:   tagRepo,
		txManager: txManager,
		logger:    logger,
	}
}

// Apply replaces the document's links with the normalized desired names.
// The document row is locked first so concurrent applies to it serialize.
// Missing tags are created through FindOrCreate, which relies on the
// (user_id, name) unique constraint instead of a separate existence check.
func (r *tagReconciler) Apply(ctx context.Context, documentID, userID string, names []string) ([]string, error) {
	desired := docsysSvc.NormalizeTagNames(names)

	err := r.txManager.ExecTx(ctx, func(txCtx context.Context) error {
		if err := r.tagRepo.LockDocument(txCtx, documentID); err != nil {
			return err
		}
		if err := r.tagRepo.DeleteDocumentTags(txCtx, documentID); err != nil {
			return err
		}

		now := time.Now().UTC()
		for _, name := range desired {
			tag, err := r.tagRepo.FindOrCreate(txCtx, userID, name, models.DefaultTagColor)
			if err != nil {
				return err
			}

			link := &models.DocumentTag{
				DocumentID: documentID,
				TagID:      tag.ID,
				Confidence: 1.0,
				IsAuto:     false,
				CreatedAt:  now,
			}
			if err := r.tagRepo.AddDocumentTag(txCtx, link); err != nil {
				return err
			}
		}
		return nil
	})
	if err != nil {
		return nil, fmt.Errorf("apply tags to document %s: %w", documentID, err)
	}

	sort.Strings(desired)
	r.logger.Debug("tags applied", "document_id", documentID, "tags", desired)
	return desired, nil
}

// tagService implements the TagService interface
type tagService struct {
	tagRepo    docsysRepo.TagRepository
	authorizer services.ResourceAuthorizer
	logger     *slog.Logger
}

// NewTagService creates a new tag service
func NewTagService(
	tagRepo docsysRepo.TagRepository,
	authorizer services.ResourceAuthorizer,
	logger *slog.Logger,
) docsysSvc.TagService {
	return &tagService{
		tagRepo:    tagRepo,
		authorizer: authorizer,
		logger:     logger,
	}
}

// ListTags lists the user's tags with document counts
func (s *tagService) ListTags(ctx context.Context, userID string) ([]models.Tag, error) {
	return s.tagRepo.ListByUser(ctx, userID)
}

// UpdateTag renames or recolors a tag. Names are normalized like applied tags.
func (s *tagService) UpdateTag(ctx context.Context, userID, tagID string, req *docsysSvc.UpdateTagRequest) (*models.Tag, error) {
	if req.Name != nil {
		name := strings.ToLower(strings.TrimSpace(*req.Name))
		req.Name = &name
	}
	if err := req.Validate(); err != nil {
		return nil, domain.NewValidationError(err)
	}

	tag, err := s.authorizer.CanAccessTag(ctx, userID, tagID)
	if err != nil {
		return nil, err
	}

	if req.Name != nil {
		tag.Name = *req.Name
	}
	if req.Color != nil {
		tag.Color = strings.ToLower(*req.Color)
	}
	tag.Touch(time.Now().UTC())

	if err := s.tagRepo.Update(ctx, tag); err != nil {
		return nil, err
	}

	s.logger.Info("tag updated", "id", tag.ID, "name", tag.Name)
	return tag, nil
}

// DeleteTag removes a tag and its links
func (s *tagService) DeleteTag(ctx context.Context, userID, tagID string) error {
	if _, err := s.authorizer.CanAccessTag(ctx, userID, tagID); err != nil {
		return err
	}

	if err := s.tagRepo.Delete(ctx, tagID, userID); err != nil {
		return err
	}

	s.logger.Info("tag deleted", "id", tagID)
	return nil
}
