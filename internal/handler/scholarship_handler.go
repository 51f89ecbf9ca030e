package handler

import (
	"context"
	"net/http"

	"github.com/gin-gonic/gin"

	"github.com/adtristoneindustries-ux/erp-tristone-copy-sub002/internal/dto"
	"github.com/adtristoneindustries-ux/erp-tristone-copy-sub002/internal/models"
	"github.com/adtristoneindustries-ux/erp-tristone-copy-sub002/internal/service"
	"github.com/adtristoneindustries-ux/erp-tristone-copy-sub002/pkg/response"
)

// ScholarshipHandler exposes the scholarship workflow.
type ScholarshipHandler struct {
	scholarships *service.ScholarshipService
}

// NewScholarshipHandler constructs ScholarshipHandler.
func NewScholarshipHandler(scholarships *service.ScholarshipService) *ScholarshipHandler {
	return &ScholarshipHandler{scholarships: scholarships}
}

type scholarshipTransition func(ctx context.Context, actor models.Actor, id, note string) (*models.Scholarship, error)

// Apply godoc
// @Summary Apply for scholarship
// @Tags Scholarships
// @Accept json
// @Produce json
// @Param payload body dto.ApplyScholarshipRequest true "Application"
// @Success 201 {object} response.Envelope
// @Router /scholarships [post]
func (h *ScholarshipHandler) Apply(c *gin.Context) {
	actor, ok := actorFromContext(c)
	if !ok {
		return
	}
	var req dto.ApplyScholarshipRequest
	if !bindJSON(c, &req, "invalid scholarship payload") {
		return
	}
	sch, err := h.scholarships.Apply(c.Request.Context(), actor, req)
	if err != nil {
		response.Error(c, err)
		return
	}
	response.Created(c, sch)
}

// Get godoc
// @Summary Get scholarship
// @Tags Scholarships
// @Produce json
// @Param id path string true "Scholarship ID"
// @Success 200 {object} response.Envelope
// @Router /scholarships/{id} [get]
func (h *ScholarshipHandler) Get(c *gin.Context) {
	actor, ok := actorFromContext(c)
	if !ok {
		return
	}
	sch, err := h.scholarships.Get(c.Request.Context(), actor, c.Param("id"))
	if err != nil {
		response.Error(c, err)
		return
	}
	response.JSON(c, http.StatusOK, sch, nil)
}

// List godoc
// @Summary List scholarships
// @Tags Scholarships
// @Produce json
// @Param studentId query string false "Student"
// @Param academicYear query string false "Academic year"
// @Param status query string false "Pending, Verified, Approved or Rejected"
// @Success 200 {object} response.Envelope
// @Router /scholarships [get]
func (h *ScholarshipHandler) List(c *gin.Context) {
	actor, ok := actorFromContext(c)
	if !ok {
		return
	}
	var query dto.ScholarshipQuery
	if !bindQuery(c, &query) {
		return
	}
	items, pagination, err := h.scholarships.List(c.Request.Context(), actor, models.ScholarshipFilter{
		StudentID:    query.StudentID,
		AcademicYear: query.AcademicYear,
		Status:       models.ScholarshipStatus(query.Status),
		Page:         query.Page,
		PageSize:     query.PageSize,
	})
	if err != nil {
		response.Error(c, err)
		return
	}
	response.JSON(c, http.StatusOK, items, pagination)
}

// Verify godoc
// @Summary Verify scholarship
// @Tags Scholarships
// @Accept json
// @Produce json
// @Param id path string true "Scholarship ID"
// @Param payload body dto.ScholarshipActionRequest false "Note"
// @Success 200 {object} response.Envelope
// @Failure 409 {object} response.Envelope
// @Router /scholarships/{id}/verify [post]
func (h *ScholarshipHandler) Verify(c *gin.Context) {
	h.transition(c, h.scholarships.Verify)
}

// Approve godoc
// @Summary Approve scholarship
// @Description Applies the discount to the fee ledger in the same transaction.
// @Tags Scholarships
// @Accept json
// @Produce json
// @Param id path string true "Scholarship ID"
// @Param payload body dto.ScholarshipActionRequest false "Note"
// @Success 200 {object} response.Envelope
// @Failure 409 {object} response.Envelope
// @Router /scholarships/{id}/approve [post]
func (h *ScholarshipHandler) Approve(c *gin.Context) {
	h.transition(c, h.scholarships.Approve)
}

// Reject godoc
// @Summary Reject scholarship
// @Tags Scholarships
// @Accept json
// @Produce json
// @Param id path string true "Scholarship ID"
// @Param payload body dto.ScholarshipActionRequest false "Note"
// @Success 200 {object} response.Envelope
// @Failure 409 {object} response.Envelope
// @Router /scholarships/{id}/reject [post]
func (h *ScholarshipHandler) Reject(c *gin.Context) {
	h.transition(c, h.scholarships.Reject)
}

// Revoke godoc
// @Summary Revoke approved scholarship
// @Description Reverses exactly the discount applied at approval.
// @Tags Scholarships
// @Accept json
// @Produce json
// @Param id path string true "Scholarship ID"
// @Param payload body dto.ScholarshipActionRequest false "Note"
// @Success 200 {object} response.Envelope
// @Failure 409 {object} response.Envelope
// @Router /scholarships/{id}/revoke [post]
func (h *ScholarshipHandler) Revoke(c *gin.Context) {
	h.transition(c, h.scholarships.Revoke)
}

// BulkVerify godoc
// @Summary Verify scholarships in bulk
// @Tags Scholarships
// @Accept json
// @Produce json
// @Param payload body dto.BulkVerifyRequest true "IDs"
// @Success 200 {object} response.Envelope
// @Router /scholarships/bulk-verify [post]
func (h *ScholarshipHandler) BulkVerify(c *gin.Context) {
	actor, ok := actorFromContext(c)
	if !ok {
		return
	}
	var req dto.BulkVerifyRequest
	if !bindJSON(c, &req, "invalid bulk verify payload") {
		return
	}
	results, err := h.scholarships.BulkVerify(c.Request.Context(), actor, req)
	if err != nil {
		response.Error(c, err)
		return
	}
	response.JSON(c, http.StatusOK, results, nil)
}

func (h *ScholarshipHandler) transition(c *gin.Context, fn scholarshipTransition) {
	actor, ok := actorFromContext(c)
	if !ok {
		return
	}
	var req dto.ScholarshipActionRequest
	if c.Request.ContentLength > 0 && !bindJSON(c, &req, "invalid note payload") {
		return
	}
	sch, err := fn(c.Request.Context(), actor, c.Param("id"), req.Note)
	if err != nil {
		response.Error(c, err)
		return
	}
	response.JSON(c, http.StatusOK, sch, nil)
}
