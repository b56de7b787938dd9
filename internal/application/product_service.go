package application

import (
	"context"
	"errors"
	"strings"
	"time"

	"github.com/go-playground/validator/v10"
	"github.com/google/uuid"
	"github.com/shopspring/decimal"
	"github.com/sirupsen/logrus"

	"github.com/oksasatya/go-storefront/internal/domain/entity"
	repo "github.com/oksasatya/go-storefront/internal/domain/repository"
)

type ProductInput struct {
	Title       string          `json:"title" validate:"required,max=200"`
	Price       decimal.Decimal `json:"price"`
	Stock       int             `json:"stock" validate:"gte=0"`
	CategoryID  string          `json:"categoryId" validate:"required"`
	BrandID     string          `json:"brandId"`
	Colors      []string        `json:"colors" validate:"dive,required"`
	Images      []string        `json:"images" validate:"dive,required"`
	Description string          `json:"description" validate:"max=5000"`
}

// ProductFilter narrows List. Empty fields match everything.
type ProductFilter struct {
	CategoryID string
	BrandID    string
	Query      string
}

type ProductService struct {
	Products repo.ProductRepository
	Index    ProductIndex
	Validate *validator.Validate
	Logger   *logrus.Logger
	Now      func() time.Time
}

func NewProductService(products repo.ProductRepository, index ProductIndex, logger *logrus.Logger) *ProductService {
	return &ProductService{Products: products, Index: index, Validate: defaultValidator, Logger: logger, Now: time.Now}
}

func (s *ProductService) Get(ctx context.Context, id string) (*entity.Product, error) {
	return s.Products.Get(ctx, id)
}

func (s *ProductService) List(ctx context.Context, f ProductFilter) ([]*entity.Product, error) {
	var (
		items []*entity.Product
		err   error
	)
	switch {
	case f.CategoryID != "":
		items, err = s.Products.ListBy(ctx, "categoryId", f.CategoryID)
	case f.BrandID != "":
		items, err = s.Products.ListBy(ctx, "brandId", f.BrandID)
	default:
		items, err = s.Products.List(ctx)
	}
	if err != nil {
		return nil, err
	}
	if f.CategoryID != "" && f.BrandID != "" {
		kept := items[:0]
		for _, p := range items {
			if p.BrandID == f.BrandID {
				kept = append(kept, p)
			}
		}
		items = kept
	}
	return FilterBySubstring(items, f.Query, productFields), nil
}

// Search uses the full-text index when one is configured and falls back to
// substring filtering over the whole collection.
func (s *ProductService) Search(ctx context.Context, q string, size int) ([]*entity.Product, error) {
	if strings.TrimSpace(q) == "" {
		return s.Products.List(ctx)
	}
	if s.Index != nil {
		ids, err := s.Index.SearchProducts(ctx, q, size)
		if err == nil {
			out := make([]*entity.Product, 0, len(ids))
			for _, id := range ids {
				p, gerr := s.Products.Get(ctx, id)
				if errors.Is(gerr, repo.ErrNotFound) {
					continue
				}
				if gerr != nil {
					return nil, gerr
				}
				out = append(out, p)
			}
			return out, nil
		}
		if s.Logger != nil {
			s.Logger.WithError(err).Warn("product search index failed; falling back to substring match")
		}
	}
	return s.List(ctx, ProductFilter{Query: q})
}

func (s *ProductService) Add(ctx context.Context, sess *Session, in ProductInput) (*entity.Product, error) {
	if err := sess.RequireAdmin(); err != nil {
		return nil, err
	}
	if err := s.check(in); err != nil {
		return nil, err
	}
	now := s.now()
	p := &entity.Product{
		ID:          uuid.NewString(),
		Title:       strings.TrimSpace(in.Title),
		Price:       in.Price,
		Stock:       in.Stock,
		CategoryID:  in.CategoryID,
		BrandID:     in.BrandID,
		Colors:      nonNil(in.Colors),
		Images:      nonNil(in.Images),
		Description: in.Description,
		CreatedAt:   now,
		UpdatedAt:   now,
	}
	if err := s.Products.Add(ctx, p); err != nil {
		return nil, err
	}
	s.index(ctx, p)
	return p, nil
}

// Update replaces the editable fields. Rating and review count are left to
// the review flow.
func (s *ProductService) Update(ctx context.Context, sess *Session, id string, in ProductInput) (*entity.Product, error) {
	if err := sess.RequireAdmin(); err != nil {
		return nil, err
	}
	if err := s.check(in); err != nil {
		return nil, err
	}
	fields := map[string]any{
		"title":       strings.TrimSpace(in.Title),
		"price":       in.Price,
		"stock":       in.Stock,
		"categoryId":  in.CategoryID,
		"brandId":     in.BrandID,
		"colors":      nonNil(in.Colors),
		"images":      nonNil(in.Images),
		"description": in.Description,
		"updatedAt":   s.now(),
	}
	if err := s.Products.Update(ctx, id, fields); err != nil {
		return nil, err
	}
	p, err := s.Products.Get(ctx, id)
	if err != nil {
		return nil, err
	}
	s.index(ctx, p)
	return p, nil
}

// Delete removes the product and returns the refetched list. Reviews are not
// cascaded.
func (s *ProductService) Delete(ctx context.Context, sess *Session, id string) ([]*entity.Product, error) {
	if err := sess.RequireAdmin(); err != nil {
		return nil, err
	}
	if err := s.Products.Delete(ctx, id); err != nil {
		return nil, err
	}
	if s.Index != nil {
		if err := s.Index.DeleteProduct(ctx, id); err != nil && s.Logger != nil {
			s.Logger.WithError(err).WithField("product_id", id).Warn("unindex product failed")
		}
	}
	return s.Products.List(ctx)
}

func (s *ProductService) check(in ProductInput) error {
	if err := validate(s.Validate, in); err != nil {
		return err
	}
	if !in.Price.IsPositive() {
		return fieldError("price", "must be greater than 0")
	}
	return nil
}

func (s *ProductService) index(ctx context.Context, p *entity.Product) {
	if s.Index == nil {
		return
	}
	if err := s.Index.IndexProduct(ctx, p); err != nil && s.Logger != nil {
		s.Logger.WithError(err).WithField("product_id", p.ID).Warn("index product failed")
	}
}

func (s *ProductService) now() time.Time {
	if s.Now != nil {
		return s.Now().UTC()
	}
	return time.Now().UTC()
}

func productFields(p *entity.Product) []string {
	return append([]string{p.Title, p.Description}, p.Colors...)
}

func nonNil(s []string) []string {
	if s == nil {
		return []string{}
	}
	return s
}
