package product

import (
	"context"
	"errors"
	"strings"

	"mshop-be/internal/access"
	"mshop-be/internal/apperror"
	"mshop-be/internal/logger"
	"mshop-be/internal/utils"

	"go.uber.org/zap"
)

type Service interface {
	List(ctx context.Context, q ListQuery) ([]*Product, utils.Pagination, error)
	Get(ctx context.Context, id uint) (*Product, error)
	Create(ctx context.Context, actor access.Actor, input CreateInput) (*Product, error)
	Update(ctx context.Context, actor access.Actor, id uint, input UpdateInput) (*Product, error)
	Delete(ctx context.Context, actor access.Actor, id uint) error
}

type service struct {
	repo Repository
}

func NewService(repo Repository) Service {
	return &service{repo: repo}
}

// List returns the public catalog: inactive products are never shown.
func (s *service) List(ctx context.Context, q ListQuery) ([]*Product, utils.Pagination, error) {
	page, limit := utils.NormalizePage(q.Page, q.Limit)

	products, total, err := s.repo.List(ctx, ListFilter{
		Category:   strings.TrimSpace(q.Category),
		OnlyActive: true,
		Limit:      limit,
		Offset:     utils.Offset(page, limit),
	})
	if err != nil {
		return nil, utils.Pagination{}, apperror.Internal("list products", err)
	}

	return products, utils.NewPagination(page, limit, total), nil
}

func (s *service) Get(ctx context.Context, id uint) (*Product, error) {
	p, err := s.repo.GetByID(ctx, id)
	if err != nil {
		if errors.Is(err, ErrProductNotFound) {
			return nil, err
		}
		return nil, apperror.Internal("get product", err)
	}
	if !p.IsActive {
		return nil, ErrProductNotFound
	}
	return p, nil
}

func (s *service) Create(ctx context.Context, actor access.Actor, input CreateInput) (*Product, error) {
	log := logger.FromCtx(ctx).With(
		zap.String("layer", "service"),
		zap.String("method", "Create"),
	)

	if !access.Allow(actor, access.ActionProductWrite, 0) {
		return nil, ErrForbidden
	}

	name := strings.TrimSpace(input.Name)
	if name == "" {
		return nil, ErrNameRequired
	}
	if input.Price.IsNegative() {
		return nil, ErrInvalidPrice
	}
	if input.Stock < 0 {
		return nil, ErrInvalidStock
	}

	images := input.Images
	if images == nil {
		images = []string{}
	}
	createdBy := actor.UserID

	p := &Product{
		Name:        name,
		Description: input.Description,
		Price:       input.Price,
		Stock:       input.Stock,
		Category:    strings.TrimSpace(input.Category),
		Images:      images,
		CreatedBy:   &createdBy,
	}
	if err := s.repo.Create(ctx, p); err != nil {
		return nil, apperror.Internal("create product", err)
	}

	log.Info("product created", zap.Uint("product_id", p.ID))
	return p, nil
}

func (s *service) Update(ctx context.Context, actor access.Actor, id uint, input UpdateInput) (*Product, error) {
	if !access.Allow(actor, access.ActionProductWrite, 0) {
		return nil, ErrForbidden
	}
	if input.empty() {
		return nil, ErrNothingToSave
	}
	if input.Name != nil {
		name := strings.TrimSpace(*input.Name)
		if name == "" {
			return nil, ErrNameRequired
		}
		input.Name = &name
	}
	if input.Price != nil && input.Price.IsNegative() {
		return nil, ErrInvalidPrice
	}
	if input.Stock != nil && *input.Stock < 0 {
		return nil, ErrInvalidStock
	}

	p, err := s.repo.Update(ctx, id, input)
	if err != nil {
		if errors.Is(err, ErrProductNotFound) {
			return nil, err
		}
		return nil, apperror.Internal("update product", err)
	}

	logger.FromCtx(ctx).Info("product updated", zap.Uint("product_id", id))
	return p, nil
}

// Delete deactivates the product. Existing order items keep referencing it.
func (s *service) Delete(ctx context.Context, actor access.Actor, id uint) error {
	if !access.Allow(actor, access.ActionProductWrite, 0) {
		return ErrForbidden
	}

	if err := s.repo.SoftDelete(ctx, id); err != nil {
		if errors.Is(err, ErrProductNotFound) {
			return err
		}
		return apperror.Internal("delete product", err)
	}
	return nil
}
