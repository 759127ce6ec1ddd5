package handlers

import (
	"net/http"
	"strconv"
	"time"

	"medimarket/internal/models"
	"medimarket/internal/services"

	"github.com/gin-gonic/gin"
)

type SettlementHandler struct {
	settlementService services.SettlementService
}

func NewSettlementHandler(settlementService services.SettlementService) *SettlementHandler {
	return &SettlementHandler{settlementService: settlementService}
}

func (h *SettlementHandler) RecordSettlement(c *gin.Context) {
	var req struct {
		EntityID       string  `json:"entity_id" binding:"required"`
		EntityType     string  `json:"entity_type" binding:"required"`
		EntityName     string  `json:"entity_name"`
		OrderAmount    float64 `json:"order_amount"`
		CommissionRate float64 `json:"commission_rate"`
	}
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "Invalid request format"})
		return
	}

	txs, err := h.settlementService.RecordOrderSettlement(
		req.EntityID, models.EntityType(req.EntityType), req.EntityName,
		req.OrderAmount, req.CommissionRate,
	)
	if err != nil {
		respondError(c, err)
		return
	}
	c.JSON(http.StatusCreated, gin.H{"transactions": txs})
}

func (h *SettlementHandler) CollectCommission(c *gin.Context) {
	var req actorRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "Invalid request format"})
		return
	}

	collected, err := h.settlementService.CollectCommission(
		c.Param("entity_id"), models.EntityType(c.Param("entity_type")), req.actor(),
	)
	if err != nil {
		respondError(c, err)
		return
	}
	c.JSON(http.StatusOK, gin.H{"collected": collected})
}

func (h *SettlementHandler) GetCommission(c *gin.Context) {
	commission, err := h.settlementService.GetCommission(
		c.Param("entity_id"), models.EntityType(c.Param("entity_type")),
	)
	if err != nil {
		respondError(c, err)
		return
	}
	c.JSON(http.StatusOK, commission)
}

func (h *SettlementHandler) ListCommissions(c *gin.Context) {
	entityType := models.EntityType(c.DefaultQuery("entity_type", string(models.EntityPharmacy)))
	commissions, err := h.settlementService.ListCommissions(entityType)
	if err != nil {
		respondError(c, err)
		return
	}
	c.JSON(http.StatusOK, commissions)
}

func (h *SettlementHandler) RecordDoctorCommission(c *gin.Context) {
	var req struct {
		DoctorID   string  `json:"doctor_id" binding:"required"`
		DoctorName string  `json:"doctor_name"`
		Amount     float64 `json:"amount"`
		Reference  string  `json:"reference"`
	}
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "Invalid request format"})
		return
	}

	tx, err := h.settlementService.RecordDoctorCommission(req.DoctorID, req.DoctorName, req.Amount, req.Reference)
	if err != nil {
		respondError(c, err)
		return
	}
	c.JSON(http.StatusCreated, tx)
}

func (h *SettlementHandler) RequestRefund(c *gin.Context) {
	var req struct {
		OrderID      string  `json:"order_id" binding:"required"`
		CustomerID   string  `json:"customer_id"`
		Amount       float64 `json:"amount"`
		Reason       string  `json:"reason"`
		RefundMethod string  `json:"refund_method"`
	}
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "Invalid request format"})
		return
	}

	refund, err := h.settlementService.RequestRefund(req.OrderID, req.CustomerID, req.Amount, req.Reason, req.RefundMethod)
	if err != nil {
		respondError(c, err)
		return
	}
	c.JSON(http.StatusCreated, refund)
}

func (h *SettlementHandler) ResolveRefund(c *gin.Context) {
	var req struct {
		Action string `json:"action" binding:"required"`
		Notes  string `json:"notes"`
	}
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "Invalid request format"})
		return
	}

	ok, err := h.settlementService.ResolveRefund(c.Param("id"), req.Action, req.Notes)
	if err != nil {
		respondError(c, err)
		return
	}
	c.JSON(http.StatusOK, gin.H{"resolved": ok})
}

func (h *SettlementHandler) SchedulePayout(c *gin.Context) {
	var req struct {
		EntityID      string  `json:"entity_id" binding:"required"`
		EntityType    string  `json:"entity_type" binding:"required"`
		EntityName    string  `json:"entity_name"`
		Frequency     string  `json:"frequency"`
		MinimumAmount float64 `json:"minimum_amount"`
	}
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "Invalid request format"})
		return
	}

	payout, err := h.settlementService.SchedulePayout(
		req.EntityID, models.EntityType(req.EntityType), req.EntityName,
		req.Frequency, req.MinimumAmount,
	)
	if err != nil {
		respondError(c, err)
		return
	}
	c.JSON(http.StatusCreated, payout)
}

func (h *SettlementHandler) SetPayoutStatus(c *gin.Context) {
	id, err := strconv.ParseUint(c.Param("id"), 10, 32)
	if err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "Invalid payout id"})
		return
	}

	var req struct {
		Status string `json:"status" binding:"required"`
	}
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "Invalid request format"})
		return
	}

	if err := h.settlementService.SetPayoutStatus(uint(id), models.PayoutStatus(req.Status)); err != nil {
		respondError(c, err)
		return
	}
	c.JSON(http.StatusOK, gin.H{"status": req.Status})
}

func (h *SettlementHandler) DuePayouts(c *gin.Context) {
	payouts, err := h.settlementService.DuePayouts(time.Now())
	if err != nil {
		respondError(c, err)
		return
	}
	c.JSON(http.StatusOK, payouts)
}

func (h *SettlementHandler) Metrics(c *gin.Context) {
	to := time.Now()
	from := to.AddDate(0, -1, 0)
	if v := c.Query("from"); v != "" {
		if parsed, err := time.Parse(time.RFC3339, v); err == nil {
			from = parsed
		}
	}
	if v := c.Query("to"); v != "" {
		if parsed, err := time.Parse(time.RFC3339, v); err == nil {
			to = parsed
		}
	}

	metrics, err := h.settlementService.ComputeMetrics(from, to)
	if err != nil {
		respondError(c, err)
		return
	}
	c.JSON(http.StatusOK, metrics)
}
