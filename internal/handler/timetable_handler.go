package handler

import (
	"net/http"

	"github.com/gin-gonic/gin"

	"github.com/adtristoneindustries-ux/erp-tristone-copy-sub002/internal/dto"
	"github.com/adtristoneindustries-ux/erp-tristone-copy-sub002/internal/middleware"
	"github.com/adtristoneindustries-ux/erp-tristone-copy-sub002/internal/service"
	"github.com/adtristoneindustries-ux/erp-tristone-copy-sub002/pkg/response"
)

// TimetableHandler exposes weekly timetable endpoints.
type TimetableHandler struct {
	timetable *service.TimetableService
}

// NewTimetableHandler constructs TimetableHandler.
func NewTimetableHandler(timetable *service.TimetableService) *TimetableHandler {
	return &TimetableHandler{timetable: timetable}
}

// Upsert godoc
// @Summary Save period
// @Description Sets the subject and teacher of a (class, section, day, period) slot.
// @Tags Timetable
// @Accept json
// @Produce json
// @Param payload body dto.PeriodRequest true "Period"
// @Success 200 {object} response.Envelope
// @Router /timetable [put]
func (h *TimetableHandler) Upsert(c *gin.Context) {
	actor, ok := actorFromContext(c)
	if !ok {
		return
	}
	var req dto.PeriodRequest
	if !bindJSON(c, &req, "invalid period payload") {
		return
	}
	period, err := h.timetable.Upsert(c.Request.Context(), actor, req)
	if err != nil {
		response.Error(c, err)
		return
	}
	response.JSON(c, http.StatusOK, period, nil)
}

// Delete godoc
// @Summary Clear period
// @Tags Timetable
// @Produce json
// @Param id path string true "Period ID"
// @Success 200 {object} response.Envelope
// @Router /timetable/{id} [delete]
func (h *TimetableHandler) Delete(c *gin.Context) {
	actor, ok := actorFromContext(c)
	if !ok {
		return
	}
	period, err := h.timetable.Delete(c.Request.Context(), actor, c.Param("id"))
	if err != nil {
		response.Error(c, err)
		return
	}
	response.JSON(c, http.StatusOK, period, nil)
}

// Grid godoc
// @Summary Weekly timetable grid
// @Description Always returns 5 days of 8 periods.
// @Tags Timetable
// @Produce json
// @Param className path string true "Class"
// @Param section path string true "Section"
// @Success 200 {object} response.Envelope
// @Router /timetable/classes/{className}/{section} [get]
func (h *TimetableHandler) Grid(c *gin.Context) {
	grid, hit, err := h.timetable.Grid(c.Request.Context(), c.Param("className"), c.Param("section"))
	if err != nil {
		response.Error(c, err)
		return
	}
	middleware.SetCacheHit(c, hit)
	response.JSON(c, http.StatusOK, grid, nil, middleware.ExtractMeta(c))
}

// TeacherSchedule godoc
// @Summary Teacher schedule
// @Tags Timetable
// @Produce json
// @Param teacher path string true "Teacher name"
// @Success 200 {object} response.Envelope
// @Router /timetable/teachers/{teacher} [get]
func (h *TimetableHandler) TeacherSchedule(c *gin.Context) {
	periods, err := h.timetable.TeacherSchedule(c.Request.Context(), c.Param("teacher"))
	if err != nil {
		response.Error(c, err)
		return
	}
	response.JSON(c, http.StatusOK, periods, nil)
}
