package service

import (
	"context"

	"github.com/google/uuid"
	"github.com/planloop-io/planloop/internal/modules/model"
	"github.com/planloop-io/planloop/internal/modules/repo"
	"gorm.io/datatypes"
)

type TemplateService interface {
	Create(ctx context.Context, t *model.Template) error
	Get(ctx context.Context, id uuid.UUID) (*model.Template, error)
	List(ctx context.Context) ([]model.Template, error)
	Update(ctx context.Context, id uuid.UUID, in UpdateTemplateInput) (*model.Template, error)
	Delete(ctx context.Context, id uuid.UUID) error
}

type templateService struct{ r repo.TemplateRepo }

func NewTemplateService(r repo.TemplateRepo) TemplateService {
	return &templateService{r: r}
}

func (s *templateService) Create(ctx context.Context, t *model.Template) error {
	if t.Frequency <= 0 {
		t.Frequency = 1
	}
	return s.r.Create(ctx, t)
}

func (s *templateService) Get(ctx context.Context, id uuid.UUID) (*model.Template, error) {
	return s.r.Get(ctx, id)
}

func (s *templateService) List(ctx context.Context) ([]model.Template, error) {
	return s.r.List(ctx)
}

type UpdateTemplateInput struct {
	Title       *string
	Description *string
	Points      *int
	Kind        *model.RecurrenceKind
	Frequency   *int
	Meta        map[string]interface{}
}

// Update edits a template's defaults. Recurrence kind is immutable after
// creation: changing kind requires a new template, so generated history
// keeps a coherent lineage.
func (s *templateService) Update(ctx context.Context, id uuid.UUID, in UpdateTemplateInput) (*model.Template, error) {
	existing, err := s.r.Get(ctx, id)
	if err != nil {
		return nil, err
	}
	if in.Kind != nil && *in.Kind != existing.Kind {
		return nil, model.ErrKindImmutable
	}

	fields := map[string]interface{}{}
	if in.Title != nil {
		fields["title"] = *in.Title
	}
	if in.Description != nil {
		fields["description"] = *in.Description
	}
	if in.Points != nil {
		fields["points"] = *in.Points
	}
	if in.Frequency != nil {
		fields["frequency"] = *in.Frequency
	}
	if in.Meta != nil {
		fields["meta"] = datatypes.JSONMap(in.Meta)
	}
	if len(fields) > 0 {
		if err := s.r.Update(ctx, id, fields); err != nil {
			return nil, err
		}
	}

	return s.r.Get(ctx, id)
}

// Delete removes a template. Generated instances are snapshots and keep
// their copied title/points; their template reference is nulled by the
// database.
func (s *templateService) Delete(ctx context.Context, id uuid.UUID) error {
	return s.r.Delete(ctx, id)
}
