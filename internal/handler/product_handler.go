package handler

import (
	"errors"
	"net/http"
	"time"

	"billing-service/internal/model"
	"billing-service/internal/store"
	"billing-service/pkg/logger"
	"billing-service/prometheus"

	"github.com/labstack/echo/v4"
	"go.uber.org/zap"
)

// ProductHandler is the admin surface over the item catalog.
type ProductHandler struct {
	catalog *store.CatalogStore
}

func NewProductHandler(catalog *store.CatalogStore) *ProductHandler {
	return &ProductHandler{catalog: catalog}
}

// ProductRequest defines the structure for product creation requests
type ProductRequest struct {
	ItemCode    string  `json:"item_code" validate:"required"`
	ItemName    string  `json:"item_name" validate:"required"`
	DefaultRate float64 `json:"default_rate" validate:"gte=0"`
}

// UpdateProductRequest defines the structure for partial product updates.
// Only supplied fields are changed.
type UpdateProductRequest struct {
	ItemName    *string  `json:"item_name"`
	DefaultRate *float64 `json:"default_rate" validate:"omitempty,gte=0"`
}

// ListProducts handles retrieving the catalog, ordered by item code. The
// same list backs the item picker and the admin table.
func (h *ProductHandler) ListProducts(c echo.Context) error {
	log := logger.FromContext(c)

	products, err := h.catalog.List()
	if err != nil {
		log.Error("Failed to list products", zap.Error(err))
		return c.JSON(http.StatusInternalServerError, echo.Map{
			"error": "Failed to retrieve products",
		})
	}

	prometheus.RecordCatalogOperation("list")
	log.Info("Products retrieved", zap.Int("count", len(products)))
	return c.JSON(http.StatusOK, products)
}

// GetProduct handles retrieving a single product by item code
func (h *ProductHandler) GetProduct(c echo.Context) error {
	log := logger.FromContext(c)
	code := c.Param("code")

	product, err := h.catalog.Get(code)
	if errors.Is(err, store.ErrNotFound) {
		log.Warn("Product not found", zap.String("item_code", code))
		return c.JSON(http.StatusNotFound, echo.Map{
			"error": "Product not found",
		})
	}
	if err != nil {
		log.Error("Failed to get product",
			zap.String("item_code", code),
			zap.Error(err))
		return c.JSON(http.StatusInternalServerError, echo.Map{
			"error": "Failed to retrieve product",
		})
	}

	return c.JSON(http.StatusOK, product)
}

// CreateProduct handles adding a new catalog entry
func (h *ProductHandler) CreateProduct(c echo.Context) error {
	log := logger.FromContext(c)
	log.Info("Creating new product")

	var req ProductRequest
	if err := c.Bind(&req); err != nil {
		log.Warn("Invalid product request", zap.Error(err))
		return c.JSON(http.StatusBadRequest, echo.Map{
			"error": "Invalid request data",
		})
	}
	if err := c.Validate(&req); err != nil {
		log.Warn("Product request failed validation", zap.Error(err))
		return c.JSON(http.StatusBadRequest, echo.Map{
			"error": "Invalid request data",
		})
	}

	defer prometheus.TrackDBOperation("create_product")(time.Now())
	product, err := h.catalog.Create(req.ItemCode, req.ItemName, req.DefaultRate)
	if errors.Is(err, store.ErrConflict) {
		log.Warn("Product code already exists", zap.String("item_code", req.ItemCode))
		return c.JSON(http.StatusBadRequest, echo.Map{
			"error": "Product with this item code already exists",
		})
	}
	if err != nil {
		var verr *store.ValidationError
		if errors.As(err, &verr) {
			log.Warn("Product rejected",
				zap.String("field", verr.Field),
				zap.String("reason", verr.Reason))
			return c.JSON(http.StatusBadRequest, echo.Map{
				"error": verr.Error(),
			})
		}
		log.Error("Failed to create product",
			zap.String("item_code", req.ItemCode),
			zap.Error(err))
		return c.JSON(http.StatusInternalServerError, echo.Map{
			"error": "Failed to create product",
		})
	}

	prometheus.RecordCatalogOperation("create")
	log.Info("Product created",
		zap.String("item_code", product.ItemCode),
		zap.String("item_name", product.ItemName),
		zap.Float64("default_rate", product.DefaultRate))
	return c.JSON(http.StatusCreated, product)
}

// UpdateProduct handles partially updating an existing catalog entry
func (h *ProductHandler) UpdateProduct(c echo.Context) error {
	log := logger.FromContext(c)
	code := c.Param("code")
	log.Info("Updating product", zap.String("item_code", code))

	var req UpdateProductRequest
	if err := c.Bind(&req); err != nil {
		log.Warn("Invalid product request",
			zap.String("item_code", code),
			zap.Error(err))
		return c.JSON(http.StatusBadRequest, echo.Map{
			"error": "Invalid request data",
		})
	}
	if err := c.Validate(&req); err != nil {
		log.Warn("Product request failed validation", zap.Error(err))
		return c.JSON(http.StatusBadRequest, echo.Map{
			"error": "Invalid request data",
		})
	}

	product, err := h.catalog.Update(code, req.ItemName, req.DefaultRate)
	if errors.Is(err, store.ErrNotFound) {
		log.Warn("Product not found for update", zap.String("item_code", code))
		return c.JSON(http.StatusNotFound, echo.Map{
			"error": "Product not found",
		})
	}
	if err != nil {
		var verr *store.ValidationError
		if errors.As(err, &verr) {
			log.Warn("Product update rejected",
				zap.String("item_code", code),
				zap.String("reason", verr.Reason))
			return c.JSON(http.StatusBadRequest, echo.Map{
				"error": verr.Error(),
			})
		}
		log.Error("Failed to update product",
			zap.String("item_code", code),
			zap.Error(err))
		return c.JSON(http.StatusInternalServerError, echo.Map{
			"error": "Failed to update product",
		})
	}

	prometheus.RecordCatalogOperation("update")
	log.Info("Product updated",
		zap.String("item_code", code),
		zap.String("item_name", product.ItemName),
		zap.Float64("default_rate", product.DefaultRate))
	return c.JSON(http.StatusOK, product)
}

// DeleteProduct handles removing a catalog entry. The reserved custom-item
// entry is refused outright.
func (h *ProductHandler) DeleteProduct(c echo.Context) error {
	log := logger.FromContext(c)
	code := c.Param("code")
	log.Info("Deleting product", zap.String("item_code", code))

	err := h.catalog.Delete(code)
	switch {
	case errors.Is(err, store.ErrForbidden):
		log.Warn("Refused to delete reserved product", zap.String("item_code", code))
		return c.JSON(http.StatusForbidden, echo.Map{
			"error": "The reserved " + model.ReservedItemCode + " entry cannot be deleted",
		})
	case errors.Is(err, store.ErrNotFound):
		log.Warn("Product not found for deletion", zap.String("item_code", code))
		return c.JSON(http.StatusNotFound, echo.Map{
			"error": "Product not found",
		})
	case err != nil:
		log.Error("Failed to delete product",
			zap.String("item_code", code),
			zap.Error(err))
		return c.JSON(http.StatusInternalServerError, echo.Map{
			"error": "Failed to delete product",
		})
	}

	prometheus.RecordCatalogOperation("delete")
	log.Info("Product deleted", zap.String("item_code", code))
	return c.JSON(http.StatusOK, echo.Map{
		"message": "Product deleted successfully",
	})
}
