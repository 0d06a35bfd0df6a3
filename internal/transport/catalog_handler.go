package transport

import (
	"errors"
	"net/http"
	"strings"

	"bloom-shop/internal/catalog"
	"bloom-shop/internal/domain"
	"bloom-shop/internal/middleware"
	"bloom-shop/internal/notify"

	"github.com/go-chi/chi/v5"
	"go.uber.org/zap"
)

// ProductListResponse is the body of product listings
type ProductListResponse struct {
	Products      []domain.Product      `json:"products"`
	Count         int                   `json:"count"`
	Notifications []notify.Notification `json:"notifications,omitempty"`
}

// CatalogHandler handles HTTP requests for catalog queries
type CatalogHandler struct {
	catalog *catalog.Service
	logger  *zap.Logger
}

// NewCatalogHandler creates a new CatalogHandler
func NewCatalogHandler(catalogService *catalog.Service, logger *zap.Logger) *CatalogHandler {
	return &CatalogHandler{
		catalog: catalogService,
		logger:  logger,
	}
}

// RegisterRoutes registers all catalog routes
func (h *CatalogHandler) RegisterRoutes(r chi.Router) {
	r.Route("/api/products", func(r chi.Router) {
		r.Get("/", h.ListProducts)
		r.Get("/featured", h.GetFeatured)
		r.Get("/{id}", h.GetProduct)
	})
	r.Get("/api/categories", h.GetCategories)
	r.Get("/api/price-range", h.GetPriceRange)
}

// ListProducts answers the shop page. A search query takes precedence over a
// category, which takes precedence over the price and stock filter. The
// result is then ordered by the sort parameter.
func (h *CatalogHandler) ListProducts(w http.ResponseWriter, r *http.Request) {
	ctx, rec := withRecorder(r)
	q := r.URL.Query()

	var products []domain.Product
	search := strings.TrimSpace(q.Get("search"))
	category := strings.TrimSpace(q.Get("category"))

	switch {
	case search != "":
		products = h.catalog.Search(ctx, search)
	case category != "" && category != catalog.AllCategories:
		products = h.catalog.GetByCategory(ctx, category)
	default:
		products = h.catalog.Filter(ctx, catalog.ParseFilter(q))
	}

	if sortKey := q.Get("sort"); sortKey != "" {
		products = catalog.SortProducts(products, catalog.SortKey(sortKey))
	}

	middleware.RespondWithJSON(w, http.StatusOK, ProductListResponse{
		Products:      products,
		Count:         len(products),
		Notifications: rec.Notifications(),
	})
}

// GetFeatured returns the featured products
func (h *CatalogHandler) GetFeatured(w http.ResponseWriter, r *http.Request) {
	ctx, rec := withRecorder(r)
	products := h.catalog.GetFeatured(ctx)

	middleware.RespondWithJSON(w, http.StatusOK, ProductListResponse{
		Products:      products,
		Count:         len(products),
		Notifications: rec.Notifications(),
	})
}

// GetProduct returns one product by id
func (h *CatalogHandler) GetProduct(w http.ResponseWriter, r *http.Request) {
	id := chi.URLParam(r, "id")

	product, err := h.catalog.GetByID(r.Context(), id)
	if err != nil {
		if errors.Is(err, catalog.ErrProductNotFound) {
			middleware.RespondWithError(w, http.StatusNotFound, "Product not found")
			return
		}
		h.logger.Error("Failed to get product", zap.String("product_id", id), zap.Error(err))
		middleware.RespondWithError(w, http.StatusServiceUnavailable, "Failed to load product")
		return
	}

	middleware.RespondWithJSON(w, http.StatusOK, product)
}

// GetCategories returns the distinct product categories
func (h *CatalogHandler) GetCategories(w http.ResponseWriter, r *http.Request) {
	ctx, rec := withRecorder(r)
	categories := h.catalog.Categories(ctx)

	middleware.RespondWithJSON(w, http.StatusOK, map[string]interface{}{
		"categories":    categories,
		"notifications": rec.Notifications(),
	})
}

// GetPriceRange returns the lowest and highest catalog price
func (h *CatalogHandler) GetPriceRange(w http.ResponseWriter, r *http.Request) {
	middleware.RespondWithJSON(w, http.StatusOK, h.catalog.PriceRange(r.Context()))
}
