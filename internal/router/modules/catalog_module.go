package modules

import (
	"github.com/gin-gonic/gin"

	handlers "github.com/oksasatya/go-storefront/internal/interface/http"
	"github.com/oksasatya/go-storefront/internal/interface/middleware"
)

// CatalogModule exposes the browsable catalog to everyone, guests included.
// Writing a review needs a member session.
type CatalogModule struct {
	Products *handlers.ProductHandler
	Catalog  *handlers.CatalogHandler
	Reviews  *handlers.ReviewHandler
}

func NewCatalogModule(p *handlers.ProductHandler, c *handlers.CatalogHandler, r *handlers.ReviewHandler) *CatalogModule {
	return &CatalogModule{Products: p, Catalog: c, Reviews: r}
}

func (m *CatalogModule) Register(rg *gin.RouterGroup) {
	rg.GET("/products", m.Products.List)
	rg.GET("/products/search", m.Products.Search)
	rg.GET("/products/:id", m.Products.Get)
	rg.GET("/products/:id/reviews", m.Reviews.List)
	rg.POST("/products/:id/reviews", middleware.RequireMember(), m.Reviews.Create)
	rg.DELETE("/products/:id/reviews/:reviewId", middleware.RequireMember(), m.Reviews.Delete)

	rg.GET("/categories", m.Catalog.ListCategories)
	rg.GET("/categories/:id", m.Catalog.GetCategory)
	rg.GET("/brands", m.Catalog.ListBrands)
	rg.GET("/brands/:id", m.Catalog.GetBrand)
}
