package handler

import (
	"net/http"

	"github.com/gin-gonic/gin"

	"github.com/adtristoneindustries-ux/erp-tristone-copy-sub002/internal/dto"
	"github.com/adtristoneindustries-ux/erp-tristone-copy-sub002/internal/models"
	"github.com/adtristoneindustries-ux/erp-tristone-copy-sub002/internal/service"
	"github.com/adtristoneindustries-ux/erp-tristone-copy-sub002/pkg/response"
)

// FinanceHandler exposes fee ledger endpoints.
type FinanceHandler struct {
	finance *service.FinanceService
}

// NewFinanceHandler constructs FinanceHandler.
func NewFinanceHandler(finance *service.FinanceService) *FinanceHandler {
	return &FinanceHandler{finance: finance}
}

// AssignFee godoc
// @Summary Assign fee
// @Description Creates or updates the ledger of a student for an academic year.
// @Tags Finance
// @Accept json
// @Produce json
// @Param payload body dto.AssignFeeRequest true "Fee"
// @Success 200 {object} response.Envelope
// @Router /finance/fees [post]
func (h *FinanceHandler) AssignFee(c *gin.Context) {
	actor, ok := actorFromContext(c)
	if !ok {
		return
	}
	var req dto.AssignFeeRequest
	if !bindJSON(c, &req, "invalid fee payload") {
		return
	}
	ledger, err := h.finance.AssignFee(c.Request.Context(), actor, req)
	if err != nil {
		response.Error(c, err)
		return
	}
	response.JSON(c, http.StatusOK, ledger, nil)
}

// RecordPayment godoc
// @Summary Record payment
// @Tags Finance
// @Accept json
// @Produce json
// @Param payload body dto.PaymentRequest true "Payment"
// @Success 200 {object} response.Envelope
// @Failure 404 {object} response.Envelope
// @Router /finance/payments [post]
func (h *FinanceHandler) RecordPayment(c *gin.Context) {
	actor, ok := actorFromContext(c)
	if !ok {
		return
	}
	var req dto.PaymentRequest
	if !bindJSON(c, &req, "invalid payment payload") {
		return
	}
	ledger, err := h.finance.RecordPayment(c.Request.Context(), actor, req)
	if err != nil {
		response.Error(c, err)
		return
	}
	response.JSON(c, http.StatusOK, ledger, nil)
}

// Get godoc
// @Summary Get ledger
// @Tags Finance
// @Produce json
// @Param studentId path string true "Student ID"
// @Param academicYear path string true "Academic year"
// @Success 200 {object} response.Envelope
// @Router /finance/{studentId}/{academicYear} [get]
func (h *FinanceHandler) Get(c *gin.Context) {
	actor, ok := actorFromContext(c)
	if !ok {
		return
	}
	ledger, err := h.finance.Get(c.Request.Context(), actor, c.Param("studentId"), c.Param("academicYear"))
	if err != nil {
		response.Error(c, err)
		return
	}
	response.JSON(c, http.StatusOK, ledger, nil)
}

// List godoc
// @Summary List ledgers
// @Tags Finance
// @Produce json
// @Param studentId query string false "Student"
// @Param academicYear query string false "Academic year"
// @Param pendingOnly query bool false "Only ledgers with dues"
// @Success 200 {object} response.Envelope
// @Router /finance [get]
func (h *FinanceHandler) List(c *gin.Context) {
	actor, ok := actorFromContext(c)
	if !ok {
		return
	}
	var query dto.FinanceQuery
	if !bindQuery(c, &query) {
		return
	}
	ledgers, pagination, err := h.finance.List(c.Request.Context(), actor, models.FinanceFilter{
		StudentID:    query.StudentID,
		AcademicYear: query.AcademicYear,
		PendingOnly:  query.PendingOnly,
		Page:         query.Page,
		PageSize:     query.PageSize,
	})
	if err != nil {
		response.Error(c, err)
		return
	}
	response.JSON(c, http.StatusOK, ledgers, pagination)
}
