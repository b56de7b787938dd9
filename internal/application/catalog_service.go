package application

import (
	"context"
	"strings"
	"time"

	"github.com/go-playground/validator/v10"
	"github.com/google/uuid"

	"github.com/oksasatya/go-storefront/internal/domain/entity"
	repo "github.com/oksasatya/go-storefront/internal/domain/repository"
)

// NamedInput is the admin form shared by categories and brands.
type NamedInput struct {
	Name  string `json:"name" validate:"required,max=100"`
	Image string `json:"image" validate:"omitempty,url"`
}

// CatalogService manages the category and brand lookups.
type CatalogService struct {
	Categories repo.CategoryRepository
	Brands     repo.BrandRepository
	Validate   *validator.Validate
	Now        func() time.Time
}

func NewCatalogService(categories repo.CategoryRepository, brands repo.BrandRepository) *CatalogService {
	return &CatalogService{Categories: categories, Brands: brands, Validate: defaultValidator, Now: time.Now}
}

func (s *CatalogService) now() time.Time {
	if s.Now != nil {
		return s.Now().UTC()
	}
	return time.Now().UTC()
}

func (s *CatalogService) ListCategories(ctx context.Context, q string) ([]*entity.Category, error) {
	items, err := s.Categories.List(ctx)
	if err != nil {
		return nil, err
	}
	return FilterBySubstring(items, q, func(c *entity.Category) []string { return []string{c.Name} }), nil
}

func (s *CatalogService) GetCategory(ctx context.Context, id string) (*entity.Category, error) {
	return s.Categories.Get(ctx, id)
}

func (s *CatalogService) AddCategory(ctx context.Context, sess *Session, in NamedInput) (*entity.Category, error) {
	if err := sess.RequireAdmin(); err != nil {
		return nil, err
	}
	if err := validate(s.Validate, in); err != nil {
		return nil, err
	}
	c := &entity.Category{ID: uuid.NewString(), Name: strings.TrimSpace(in.Name), Image: in.Image, CreatedAt: s.now()}
	if err := s.Categories.Add(ctx, c); err != nil {
		return nil, err
	}
	return c, nil
}

func (s *CatalogService) UpdateCategory(ctx context.Context, sess *Session, id string, in NamedInput) (*entity.Category, error) {
	if err := sess.RequireAdmin(); err != nil {
		return nil, err
	}
	if err := validate(s.Validate, in); err != nil {
		return nil, err
	}
	if err := s.Categories.Update(ctx, id, map[string]any{"name": strings.TrimSpace(in.Name), "image": in.Image}); err != nil {
		return nil, err
	}
	return s.Categories.Get(ctx, id)
}

// DeleteCategory leaves products pointing at the category untouched.
func (s *CatalogService) DeleteCategory(ctx context.Context, sess *Session, id string) ([]*entity.Category, error) {
	if err := sess.RequireAdmin(); err != nil {
		return nil, err
	}
	if err := s.Categories.Delete(ctx, id); err != nil {
		return nil, err
	}
	return s.Categories.List(ctx)
}

func (s *CatalogService) ListBrands(ctx context.Context, q string) ([]*entity.Brand, error) {
	items, err := s.Brands.List(ctx)
	if err != nil {
		return nil, err
	}
	return FilterBySubstring(items, q, func(b *entity.Brand) []string { return []string{b.Name} }), nil
}

func (s *CatalogService) GetBrand(ctx context.Context, id string) (*entity.Brand, error) {
	return s.Brands.Get(ctx, id)
}

func (s *CatalogService) AddBrand(ctx context.Context, sess *Session, in NamedInput) (*entity.Brand, error) {
	if err := sess.RequireAdmin(); err != nil {
		return nil, err
	}
	if err := validate(s.Validate, in); err != nil {
		return nil, err
	}
	b := &entity.Brand{ID: uuid.NewString(), Name: strings.TrimSpace(in.Name), Image: in.Image, CreatedAt: s.now()}
	if err := s.Brands.Add(ctx, b); err != nil {
		return nil, err
	}
	return b, nil
}

func (s *CatalogService) UpdateBrand(ctx context.Context, sess *Session, id string, in NamedInput) (*entity.Brand, error) {
	if err := sess.RequireAdmin(); err != nil {
		return nil, err
	}
	if err := validate(s.Validate, in); err != nil {
		return nil, err
	}
	if err := s.Brands.Update(ctx, id, map[string]any{"name": strings.TrimSpace(in.Name), "image": in.Image}); err != nil {
		return nil, err
	}
	return s.Brands.Get(ctx, id)
}

func (s *CatalogService) DeleteBrand(ctx context.Context, sess *Session, id string) ([]*entity.Brand, error) {
	if err := sess.RequireAdmin(); err != nil {
		return nil, err
	}
	if err := s.Brands.Delete(ctx, id); err != nil {
		return nil, err
	}
	return s.Brands.List(ctx)
}
