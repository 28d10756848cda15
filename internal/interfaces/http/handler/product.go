package handler

import (
	"github.com/gin-gonic/gin"
	catalogapp "github.com/saleledger/backend/internal/application/catalog"
)

// ProductHandler handles product-related API endpoints
type ProductHandler struct {
	BaseHandler
	productService *catalogapp.ProductService
}

// NewProductHandler creates a new ProductHandler
func NewProductHandler(productService *catalogapp.ProductService) *ProductHandler {
	return &ProductHandler{
		productService: productService,
	}
}

// Create registers a product.
// POST /products
func (h *ProductHandler) Create(c *gin.Context) {
	var req catalogapp.CreateProductRequest
	if !h.bindJSON(c, &req) {
		return
	}

	product, err := h.productService.Create(c.Request.Context(), req)
	if err != nil {
		h.HandleError(c, err)
		return
	}
	h.Created(c, product)
}

// GetByID returns one product.
// GET /products/:id
func (h *ProductHandler) GetByID(c *gin.Context) {
	id, ok := h.pathID(c, "id", "product")
	if !ok {
		return
	}

	product, err := h.productService.GetByID(c.Request.Context(), id)
	if err != nil {
		h.HandleError(c, err)
		return
	}
	h.Success(c, product)
}

// List returns products, optionally searched by name.
// GET /products
func (h *ProductHandler) List(c *gin.Context) {
	var filter catalogapp.ProductListFilter
	if !h.bindQuery(c, &filter) {
		return
	}

	products, total, err := h.productService.List(c.Request.Context(), filter)
	if err != nil {
		h.HandleError(c, err)
		return
	}
	h.SuccessWithMeta(c, products, total, max(filter.Page, 1), filter.PageSize)
}

// Update edits the product profile.
// PUT /products/:id
func (h *ProductHandler) Update(c *gin.Context) {
	id, ok := h.pathID(c, "id", "product")
	if !ok {
		return
	}
	var req catalogapp.UpdateProductRequest
	if !h.bindJSON(c, &req) {
		return
	}

	product, err := h.productService.Update(c.Request.Context(), id, req)
	if err != nil {
		h.HandleError(c, err)
		return
	}
	h.Success(c, product)
}

// SetStock overwrites the on-hand quantity outside of any sale.
// PUT /products/:id/stock
func (h *ProductHandler) SetStock(c *gin.Context) {
	id, ok := h.pathID(c, "id", "product")
	if !ok {
		return
	}
	var req catalogapp.SetStockRequest
	if !h.bindJSON(c, &req) {
		return
	}

	product, err := h.productService.SetStock(c.Request.Context(), id, req)
	if err != nil {
		h.HandleError(c, err)
		return
	}
	h.Success(c, product)
}

// Delete removes a product. Recorded sales keep their line item snapshot.
// DELETE /products/:id
func (h *ProductHandler) Delete(c *gin.Context) {
	id, ok := h.pathID(c, "id", "product")
	if !ok {
		return
	}

	if err := h.productService.Delete(c.Request.Context(), id); err != nil {
		h.HandleError(c, err)
		return
	}
	h.NoContent(c)
}
