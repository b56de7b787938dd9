package persistence

import (
	"context"

	"github.com/oksasatya/go-storefront/internal/domain/entity"
	"github.com/oksasatya/go-storefront/internal/domain/repository"
	"github.com/oksasatya/go-storefront/internal/infrastructure/docstore"
)

func setProductID(p *entity.Product, id string)   { p.ID = id }
func setCategoryID(c *entity.Category, id string) { c.ID = id }
func setBrandID(b *entity.Brand, id string)       { b.ID = id }

type ProductRepository struct {
	store docstore.Store
}

func NewProductRepository(store docstore.Store) *ProductRepository {
	return &ProductRepository{store: store}
}

func (r *ProductRepository) Get(ctx context.Context, id string) (*entity.Product, error) {
	return getAs(ctx, r.store, productsCollection, id, setProductID)
}

func (r *ProductRepository) List(ctx context.Context) ([]*entity.Product, error) {
	return listAs(ctx, r.store, productsCollection, setProductID)
}

// ListBy filters on a top-level string field such as categoryId or brandId.
func (r *ProductRepository) ListBy(ctx context.Context, field, value string) ([]*entity.Product, error) {
	return whereAs(ctx, r.store, productsCollection, field, value, setProductID)
}

func (r *ProductRepository) Add(ctx context.Context, p *entity.Product) error {
	id, err := add(ctx, r.store, productsCollection, p.ID, p)
	if err != nil {
		return err
	}
	p.ID = id
	return nil
}

func (r *ProductRepository) Update(ctx context.Context, id string, fields map[string]any) error {
	return r.store.Update(ctx, productsCollection, id, fields)
}

func (r *ProductRepository) Delete(ctx context.Context, id string) error {
	return r.store.Delete(ctx, productsCollection, id)
}

type CategoryRepository struct {
	store docstore.Store
}

func NewCategoryRepository(store docstore.Store) *CategoryRepository {
	return &CategoryRepository{store: store}
}

func (r *CategoryRepository) Get(ctx context.Context, id string) (*entity.Category, error) {
	return getAs(ctx, r.store, categoriesCollection, id, setCategoryID)
}

func (r *CategoryRepository) List(ctx context.Context) ([]*entity.Category, error) {
	return listAs(ctx, r.store, categoriesCollection, setCategoryID)
}

func (r *CategoryRepository) Add(ctx context.Context, c *entity.Category) error {
	id, err := add(ctx, r.store, categoriesCollection, c.ID, c)
	if err != nil {
		return err
	}
	c.ID = id
	return nil
}

func (r *CategoryRepository) Update(ctx context.Context, id string, fields map[string]any) error {
	return r.store.Update(ctx, categoriesCollection, id, fields)
}

func (r *CategoryRepository) Delete(ctx context.Context, id string) error {
	return r.store.Delete(ctx, categoriesCollection, id)
}

type BrandRepository struct {
	store docstore.Store
}

func NewBrandRepository(store docstore.Store) *BrandRepository {
	return &BrandRepository{store: store}
}

func (r *BrandRepository) Get(ctx context.Context, id string) (*entity.Brand, error) {
	return getAs(ctx, r.store, brandsCollection, id, setBrandID)
}

func (r *BrandRepository) List(ctx context.Context) ([]*entity.Brand, error) {
	return listAs(ctx, r.store, brandsCollection, setBrandID)
}

func (r *BrandRepository) Add(ctx context.Context, b *entity.Brand) error {
	id, err := add(ctx, r.store, brandsCollection, b.ID, b)
	if err != nil {
		return err
	}
	b.ID = id
	return nil
}

func (r *BrandRepository) Update(ctx context.Context, id string, fields map[string]any) error {
	return r.store.Update(ctx, brandsCollection, id, fields)
}

func (r *BrandRepository) Delete(ctx context.Context, id string) error {
	return r.store.Delete(ctx, brandsCollection, id)
}

var (
	_ repository.ProductRepository  = (*ProductRepository)(nil)
	_ repository.CategoryRepository = (*CategoryRepository)(nil)
	_ repository.BrandRepository    = (*BrandRepository)(nil)
)
