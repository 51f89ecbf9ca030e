package handler

import (
	"net/http"

	"github.com/gin-gonic/gin"

	"github.com/adtristoneindustries-ux/erp-tristone-copy-sub002/internal/dto"
	"github.com/adtristoneindustries-ux/erp-tristone-copy-sub002/internal/service"
	"github.com/adtristoneindustries-ux/erp-tristone-copy-sub002/pkg/response"
)

// ExamHandler exposes exam scheduling endpoints.
type ExamHandler struct {
	exams *service.ExamService
}

// NewExamHandler constructs ExamHandler.
func NewExamHandler(exams *service.ExamService) *ExamHandler {
	return &ExamHandler{exams: exams}
}

// Create godoc
// @Summary Schedule exam
// @Description Rejects with 409 when the class or an invigilator already sits an overlapping exam that day.
// @Tags Exams
// @Accept json
// @Produce json
// @Param payload body dto.ExamRequest true "Exam"
// @Success 201 {object} response.Envelope
// @Failure 409 {object} response.Envelope
// @Router /exams [post]
func (h *ExamHandler) Create(c *gin.Context) {
	actor, ok := actorFromContext(c)
	if !ok {
		return
	}
	var req dto.ExamRequest
	if !bindJSON(c, &req, "invalid exam payload") {
		return
	}
	exam, err := h.exams.Create(c.Request.Context(), actor, req)
	if err != nil {
		examError(c, err)
		return
	}
	response.Created(c, exam)
}

// Update godoc
// @Summary Update exam
// @Tags Exams
// @Accept json
// @Produce json
// @Param id path string true "Exam ID"
// @Param payload body dto.ExamRequest true "Exam"
// @Success 200 {object} response.Envelope
// @Failure 409 {object} response.Envelope
// @Router /exams/{id} [put]
func (h *ExamHandler) Update(c *gin.Context) {
	actor, ok := actorFromContext(c)
	if !ok {
		return
	}
	var req dto.ExamRequest
	if !bindJSON(c, &req, "invalid exam payload") {
		return
	}
	exam, err := h.exams.Update(c.Request.Context(), actor, c.Param("id"), req)
	if err != nil {
		examError(c, err)
		return
	}
	response.JSON(c, http.StatusOK, exam, nil)
}

// UpdateStatus godoc
// @Summary Change exam status
// @Tags Exams
// @Accept json
// @Produce json
// @Param id path string true "Exam ID"
// @Param payload body dto.ExamStatusRequest true "Status"
// @Success 200 {object} response.Envelope
// @Router /exams/{id}/status [patch]
func (h *ExamHandler) UpdateStatus(c *gin.Context) {
	actor, ok := actorFromContext(c)
	if !ok {
		return
	}
	var req dto.ExamStatusRequest
	if !bindJSON(c, &req, "invalid status payload") {
		return
	}
	exam, err := h.exams.UpdateStatus(c.Request.Context(), actor, c.Param("id"), req)
	if err != nil {
		examError(c, err)
		return
	}
	response.JSON(c, http.StatusOK, exam, nil)
}

// Get godoc
// @Summary Get exam
// @Tags Exams
// @Produce json
// @Param id path string true "Exam ID"
// @Success 200 {object} response.Envelope
// @Router /exams/{id} [get]
func (h *ExamHandler) Get(c *gin.Context) {
	exam, err := h.exams.Get(c.Request.Context(), c.Param("id"))
	if err != nil {
		response.Error(c, err)
		return
	}
	response.JSON(c, http.StatusOK, exam, nil)
}

// List godoc
// @Summary List exams
// @Tags Exams
// @Produce json
// @Param className query string false "Class"
// @Param subject query string false "Subject"
// @Param status query string false "Status"
// @Param dateFrom query string false "YYYY-MM-DD"
// @Param dateTo query string false "YYYY-MM-DD"
// @Success 200 {object} response.Envelope
// @Router /exams [get]
func (h *ExamHandler) List(c *gin.Context) {
	var query dto.ExamQuery
	if !bindQuery(c, &query) {
		return
	}
	exams, pagination, err := h.exams.List(c.Request.Context(), query)
	if err != nil {
		response.Error(c, err)
		return
	}
	response.JSON(c, http.StatusOK, exams, pagination)
}

// Delete godoc
// @Summary Delete exam
// @Tags Exams
// @Produce json
// @Param id path string true "Exam ID"
// @Success 200 {object} response.Envelope
// @Router /exams/{id} [delete]
func (h *ExamHandler) Delete(c *gin.Context) {
	actor, ok := actorFromContext(c)
	if !ok {
		return
	}
	exam, err := h.exams.Delete(c.Request.Context(), actor, c.Param("id"))
	if err != nil {
		response.Error(c, err)
		return
	}
	response.JSON(c, http.StatusOK, exam, nil)
}

// HallTicket godoc
// @Summary Issue hall ticket
// @Description Generates the admission PDF and returns a signed download URL.
// @Tags Exams
// @Produce json
// @Param id path string true "Exam ID"
// @Param studentId path string true "Student ID"
// @Success 200 {object} response.Envelope
// @Router /exams/{id}/hall-tickets/{studentId} [get]
func (h *ExamHandler) HallTicket(c *gin.Context) {
	actor, ok := actorFromContext(c)
	if !ok {
		return
	}
	ticket, err := h.exams.HallTicket(c.Request.Context(), actor, c.Param("id"), c.Param("studentId"))
	if err != nil {
		response.Error(c, err)
		return
	}
	response.JSON(c, http.StatusOK, ticket, nil)
}

func examError(c *gin.Context, err error) {
	if conflict, ok := service.AsExamConflict(err); ok {
		response.ErrorWithMeta(c, err, map[string]interface{}{"conflict": conflict})
		return
	}
	response.Error(c, err)
}
