package handler

import (
	"net/http"

	"github.com/gin-gonic/gin"

	"github.com/adtristoneindustries-ux/erp-tristone-copy-sub002/internal/dto"
	"github.com/adtristoneindustries-ux/erp-tristone-copy-sub002/internal/service"
	"github.com/adtristoneindustries-ux/erp-tristone-copy-sub002/pkg/response"
)

// MarkHandler exposes exam score endpoints.
type MarkHandler struct {
	marks *service.MarkService
}

// NewMarkHandler constructs MarkHandler.
func NewMarkHandler(marks *service.MarkService) *MarkHandler {
	return &MarkHandler{marks: marks}
}

// Record godoc
// @Summary Record mark
// @Tags Marks
// @Accept json
// @Produce json
// @Param payload body dto.MarkRequest true "Mark"
// @Success 200 {object} response.Envelope
// @Router /marks [post]
func (h *MarkHandler) Record(c *gin.Context) {
	actor, ok := actorFromContext(c)
	if !ok {
		return
	}
	var req dto.MarkRequest
	if !bindJSON(c, &req, "invalid mark payload") {
		return
	}
	mark, err := h.marks.Record(c.Request.Context(), actor, req)
	if err != nil {
		response.Error(c, err)
		return
	}
	response.JSON(c, http.StatusOK, mark, nil)
}

// BulkRecord godoc
// @Summary Record marks in bulk
// @Tags Marks
// @Accept json
// @Produce json
// @Param payload body dto.BulkMarkRequest true "Marks"
// @Success 200 {object} response.Envelope
// @Router /marks/bulk [post]
func (h *MarkHandler) BulkRecord(c *gin.Context) {
	actor, ok := actorFromContext(c)
	if !ok {
		return
	}
	var req dto.BulkMarkRequest
	if !bindJSON(c, &req, "invalid bulk mark payload") {
		return
	}
	results, err := h.marks.BulkRecord(c.Request.Context(), actor, req)
	if err != nil {
		response.Error(c, err)
		return
	}
	response.JSON(c, http.StatusOK, results, nil)
}

// ListByExam godoc
// @Summary List marks of an exam
// @Tags Marks
// @Produce json
// @Param id path string true "Exam ID"
// @Success 200 {object} response.Envelope
// @Router /exams/{id}/marks [get]
func (h *MarkHandler) ListByExam(c *gin.Context) {
	actor, ok := actorFromContext(c)
	if !ok {
		return
	}
	marks, err := h.marks.ListByExam(c.Request.Context(), actor, c.Param("id"))
	if err != nil {
		response.Error(c, err)
		return
	}
	response.JSON(c, http.StatusOK, marks, nil)
}

// ListByStudent godoc
// @Summary List marks of a student
// @Tags Marks
// @Produce json
// @Param id path string true "Student ID"
// @Success 200 {object} response.Envelope
// @Router /students/{id}/marks [get]
func (h *MarkHandler) ListByStudent(c *gin.Context) {
	actor, ok := actorFromContext(c)
	if !ok {
		return
	}
	marks, err := h.marks.ListByStudent(c.Request.Context(), actor, c.Param("id"))
	if err != nil {
		response.Error(c, err)
		return
	}
	response.JSON(c, http.StatusOK, marks, nil)
}
