package handlers

import (
	"net/http"

	"medimarket/internal/models"
	"medimarket/internal/services"

	"github.com/gin-gonic/gin"
)

type OrderHandler struct {
	reconciliationService services.ReconciliationService
}

func NewOrderHandler(reconciliationService services.ReconciliationService) *OrderHandler {
	return &OrderHandler{reconciliationService: reconciliationService}
}

func (h *OrderHandler) Suspend(c *gin.Context) {
	var req struct {
		actorRequest
		services.SuspendInput
	}
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "Invalid request format"})
		return
	}

	o, err := h.reconciliationService.Suspend(req.SuspendInput, req.actor())
	if err != nil {
		respondError(c, err)
		return
	}
	c.JSON(http.StatusCreated, o)
}

func (h *OrderHandler) Modify(c *gin.Context) {
	var req struct {
		actorRequest
		services.OrderModification
	}
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "Invalid request format"})
		return
	}

	o, err := h.reconciliationService.ModifyOrder(c.Param("id"), req.OrderModification, req.actor())
	if err != nil {
		respondError(c, err)
		return
	}
	c.JSON(http.StatusOK, o)
}

func (h *OrderHandler) RestoreItem(c *gin.Context) {
	var req actorRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "Invalid request format"})
		return
	}

	o, err := h.reconciliationService.RestoreItem(c.Param("id"), c.Param("item_id"), req.actor())
	if err != nil {
		respondError(c, err)
		return
	}
	c.JSON(http.StatusOK, o)
}

func (h *OrderHandler) Approve(c *gin.Context) {
	var req actorRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "Invalid request format"})
		return
	}

	if err := h.reconciliationService.Approve(c.Param("id"), req.actor()); err != nil {
		respondError(c, err)
		return
	}
	c.JSON(http.StatusOK, gin.H{"status": "resolved"})
}

func (h *OrderHandler) Reject(c *gin.Context) {
	var req actorRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "Invalid request format"})
		return
	}

	if err := h.reconciliationService.RejectModification(c.Param("id"), req.actor()); err != nil {
		respondError(c, err)
		return
	}
	c.JSON(http.StatusOK, gin.H{"status": "cancelled"})
}

func (h *OrderHandler) Escalate(c *gin.Context) {
	var req actorRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "Invalid request format"})
		return
	}

	if err := h.reconciliationService.Escalate(c.Param("id"), req.actor()); err != nil {
		respondError(c, err)
		return
	}
	c.JSON(http.StatusOK, gin.H{"status": "escalated"})
}

func (h *OrderHandler) Get(c *gin.Context) {
	o, err := h.reconciliationService.GetByID(c.Param("id"))
	if err != nil {
		respondError(c, err)
		return
	}
	c.JSON(http.StatusOK, o)
}

func (h *OrderHandler) List(c *gin.Context) {
	if pharmacyID := c.Query("pharmacy_id"); pharmacyID != "" {
		orders, err := h.reconciliationService.ListByPharmacy(pharmacyID)
		if err != nil {
			respondError(c, err)
			return
		}
		c.JSON(http.StatusOK, orders)
		return
	}

	status := models.SuspendedOrderStatus(c.DefaultQuery("status", string(models.OrderSuspended)))
	orders, err := h.reconciliationService.ListByStatus(status)
	if err != nil {
		respondError(c, err)
		return
	}
	c.JSON(http.StatusOK, orders)
}
