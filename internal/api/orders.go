package api

import (
	"net/http"

	"fast-order/internal/service"

	"github.com/gin-gonic/gin"
)

// createOrder handles order creation. An Idempotency-Key header makes retries
// return the order created by the first attempt.
func (h *Handler) createOrder(c *gin.Context) {
	var req service.CreateOrderRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		failBinding(c, err)
		return
	}
	req.IdempotencyKey = c.GetHeader("Idempotency-Key")

	order, err := h.orders.CreateOrder(c.Request.Context(), &req)
	if err != nil {
		fail(c, err)
		return
	}

	respond(c, http.StatusCreated, "Order created successfully.", order)
}

func (h *Handler) updateOrder(c *gin.Context) {
	id, ok := pathID(c)
	if !ok {
		return
	}

	var req service.UpdateOrderRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		failBinding(c, err)
		return
	}

	order, err := h.orders.UpdateOrder(c.Request.Context(), id, &req)
	if err != nil {
		fail(c, err)
		return
	}

	respond(c, http.StatusOK, "Order updated successfully.", order)
}

func (h *Handler) cancelOrder(c *gin.Context) {
	id, ok := pathID(c)
	if !ok {
		return
	}

	msg, err := h.orders.CancelOrder(c.Request.Context(), id)
	if err != nil {
		fail(c, err)
		return
	}

	respond(c, http.StatusOK, msg, nil)
}

// getOrder handles get order by ID
func (h *Handler) getOrder(c *gin.Context) {
	id, ok := pathID(c)
	if !ok {
		return
	}

	order, err := h.orders.GetOrder(c.Request.Context(), id)
	if err != nil {
		fail(c, err)
		return
	}

	respond(c, http.StatusOK, "Order retrieved successfully.", order)
}

func (h *Handler) listOrders(c *gin.Context) {
	orders, err := h.orders.ListOrders(c.Request.Context())
	if err != nil {
		fail(c, err)
		return
	}

	respond(c, http.StatusOK, "Orders retrieved successfully.", orders)
}

func (h *Handler) listNotifications(c *gin.Context) {
	id, ok := pathID(c)
	if !ok {
		return
	}

	notifications, err := h.notifications.ListByOrder(c.Request.Context(), id)
	if err != nil {
		fail(c, err)
		return
	}

	respond(c, http.StatusOK, "Notifications retrieved successfully.", notifications)
}

func (h *Handler) sendMessage(c *gin.Context) {
	event, err := h.notifications.SendMessage(c.Request.Context(), c.Query("message"))
	if err != nil {
		fail(c, err)
		return
	}

	respond(c, http.StatusOK, "Message sent successfully.", event)
}
