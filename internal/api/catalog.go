package api

import (
	"net/http"

	"fast-order/internal/service"

	"github.com/gin-gonic/gin"
)

func (h *Handler) createProduct(c *gin.Context) {
	var req service.ProductRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		failBinding(c, err)
		return
	}

	product, err := h.products.CreateProduct(c.Request.Context(), &req)
	if err != nil {
		fail(c, err)
		return
	}

	respond(c, http.StatusCreated, "Product created successfully.", product)
}

func (h *Handler) getProduct(c *gin.Context) {
	id, ok := pathID(c)
	if !ok {
		return
	}

	product, err := h.products.GetProduct(c.Request.Context(), id)
	if err != nil {
		fail(c, err)
		return
	}

	respond(c, http.StatusOK, "Product retrieved successfully.", product)
}

func (h *Handler) getProductByName(c *gin.Context) {
	product, err := h.products.GetProductByName(c.Request.Context(), c.Param("name"))
	if err != nil {
		fail(c, err)
		return
	}

	respond(c, http.StatusOK, "Product retrieved successfully.", product)
}

func (h *Handler) listProducts(c *gin.Context) {
	products, err := h.products.ListProducts(c.Request.Context())
	if err != nil {
		fail(c, err)
		return
	}

	respond(c, http.StatusOK, "Products retrieved successfully.", products)
}

func (h *Handler) updateProduct(c *gin.Context) {
	id, ok := pathID(c)
	if !ok {
		return
	}

	var req service.ProductRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		failBinding(c, err)
		return
	}

	product, err := h.products.UpdateProduct(c.Request.Context(), id, &req)
	if err != nil {
		fail(c, err)
		return
	}

	respond(c, http.StatusOK, "Product updated successfully.", product)
}

func (h *Handler) updateProductPrice(c *gin.Context) {
	id, ok := pathID(c)
	if !ok {
		return
	}

	var req service.PriceRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		failBinding(c, err)
		return
	}

	product, err := h.products.UpdatePrice(c.Request.Context(), id, req.Price)
	if err != nil {
		fail(c, err)
		return
	}

	respond(c, http.StatusOK, "Product price updated successfully.", product)
}

func (h *Handler) restockProduct(c *gin.Context) {
	id, ok := pathID(c)
	if !ok {
		return
	}

	var req service.RestockRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		failBinding(c, err)
		return
	}

	product, err := h.products.Restock(c.Request.Context(), id, req.Amount)
	if err != nil {
		fail(c, err)
		return
	}

	respond(c, http.StatusOK, "Product stock updated successfully.", product)
}

func (h *Handler) deleteProduct(c *gin.Context) {
	id, ok := pathID(c)
	if !ok {
		return
	}

	if err := h.products.DeleteProduct(c.Request.Context(), id); err != nil {
		fail(c, err)
		return
	}

	respond(c, http.StatusOK, "Product deleted successfully.", nil)
}
