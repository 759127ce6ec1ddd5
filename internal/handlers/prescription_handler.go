package handlers

import (
	"net/http"
	"strings"

	"medimarket/internal/models"
	"medimarket/internal/services"

	"github.com/gin-gonic/gin"
)

type PrescriptionHandler struct {
	prescriptionService services.PrescriptionService
}

func NewPrescriptionHandler(prescriptionService services.PrescriptionService) *PrescriptionHandler {
	return &PrescriptionHandler{prescriptionService: prescriptionService}
}

func (h *PrescriptionHandler) Submit(c *gin.Context) {
	var req struct {
		actorRequest
		Patient models.PatientInfo        `json:"patient"`
		Files   []models.PrescriptionFile `json:"files"`
		Urgency models.Urgency            `json:"urgency"`
	}
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "Invalid request format"})
		return
	}

	p, err := h.prescriptionService.Submit(req.Patient, req.Files, req.Urgency, req.actor())
	if err != nil {
		respondError(c, err)
		return
	}
	c.JSON(http.StatusCreated, p)
}

func (h *PrescriptionHandler) AssignReader(c *gin.Context) {
	var req struct {
		actorRequest
		ReaderID string `json:"reader_id" binding:"required"`
	}
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "Invalid request format"})
		return
	}

	if err := h.prescriptionService.AssignReader(c.Param("id"), req.ReaderID, req.actor()); err != nil {
		respondError(c, err)
		return
	}
	c.JSON(http.StatusOK, gin.H{"status": "assigned"})
}

func (h *PrescriptionHandler) UpdateStatus(c *gin.Context) {
	var req struct {
		actorRequest
		Status        models.PrescriptionStatus `json:"status" binding:"required"`
		Notes         string                    `json:"notes"`
		QualityChecks models.QualityChecks      `json:"quality_checks"`
	}
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "Invalid request format"})
		return
	}

	p, err := h.prescriptionService.UpdateStatus(c.Param("id"), req.Status, req.actor(), req.Notes, req.QualityChecks)
	if err != nil {
		respondError(c, err)
		return
	}
	c.JSON(http.StatusOK, p)
}

func (h *PrescriptionHandler) AddMedicine(c *gin.Context) {
	var req struct {
		actorRequest
		Medicine models.ProcessedMedicine `json:"medicine"`
	}
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "Invalid request format"})
		return
	}

	warnings, err := h.prescriptionService.AddMedicine(c.Param("id"), req.Medicine, req.actor())
	if err != nil {
		respondError(c, err)
		return
	}
	c.JSON(http.StatusOK, gin.H{
		"status":               "added",
		"interaction_warnings": warnings,
	})
}

func (h *PrescriptionHandler) UpdateMedicine(c *gin.Context) {
	var req struct {
		actorRequest
		Patch services.MedicinePatch `json:"patch"`
	}
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "Invalid request format"})
		return
	}

	warnings, err := h.prescriptionService.UpdateMedicine(c.Param("id"), c.Param("medicine_id"), req.Patch, req.actor())
	if err != nil {
		respondError(c, err)
		return
	}
	c.JSON(http.StatusOK, gin.H{
		"status":               "updated",
		"interaction_warnings": warnings,
	})
}

func (h *PrescriptionHandler) RemoveMedicine(c *gin.Context) {
	var req actorRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "Invalid request format"})
		return
	}

	if err := h.prescriptionService.RemoveMedicine(c.Param("id"), c.Param("medicine_id"), req.actor()); err != nil {
		respondError(c, err)
		return
	}
	c.JSON(http.StatusOK, gin.H{"status": "removed"})
}

func (h *PrescriptionHandler) Get(c *gin.Context) {
	p, err := h.prescriptionService.GetByID(c.Param("id"))
	if err != nil {
		respondError(c, err)
		return
	}
	c.JSON(http.StatusOK, p)
}

func (h *PrescriptionHandler) List(c *gin.Context) {
	filter := services.PrescriptionFilter{
		Urgency:    models.Urgency(c.Query("urgency")),
		ReaderID:   c.Query("reader_id"),
		CustomerID: c.Query("customer_id"),
		Query:      c.Query("q"),
	}
	if statuses := c.Query("statuses"); statuses != "" {
		for _, s := range strings.Split(statuses, ",") {
			filter.Statuses = append(filter.Statuses, models.PrescriptionStatus(s))
		}
	}

	prescriptions, err := h.prescriptionService.FilterAndSort(filter, c.DefaultQuery("sort", "created_at"), c.DefaultQuery("order", "desc"))
	if err != nil {
		respondError(c, err)
		return
	}
	c.JSON(http.StatusOK, prescriptions)
}

func (h *PrescriptionHandler) CheckInteractions(c *gin.Context) {
	warnings, err := h.prescriptionService.CheckInteractions(c.Param("id"))
	if err != nil {
		respondError(c, err)
		return
	}
	c.JSON(http.StatusOK, gin.H{"interactions": warnings})
}
