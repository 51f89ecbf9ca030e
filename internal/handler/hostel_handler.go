package handler

import (
	"net/http"

	"github.com/gin-gonic/gin"

	"github.com/adtristoneindustries-ux/erp-tristone-copy-sub002/internal/dto"
	"github.com/adtristoneindustries-ux/erp-tristone-copy-sub002/internal/service"
	"github.com/adtristoneindustries-ux/erp-tristone-copy-sub002/pkg/response"
)

// HostelHandler exposes hostel and room allocation endpoints.
type HostelHandler struct {
	hostels *service.HostelService
}

// NewHostelHandler constructs HostelHandler.
func NewHostelHandler(hostels *service.HostelService) *HostelHandler {
	return &HostelHandler{hostels: hostels}
}

// List godoc
// @Summary List hostels
// @Tags Hostel
// @Produce json
// @Success 200 {object} response.Envelope
// @Router /hostels [get]
func (h *HostelHandler) List(c *gin.Context) {
	hostels, err := h.hostels.List(c.Request.Context())
	if err != nil {
		response.Error(c, err)
		return
	}
	response.JSON(c, http.StatusOK, hostels, nil)
}

// Get godoc
// @Summary Get hostel
// @Tags Hostel
// @Produce json
// @Param id path string true "Hostel ID"
// @Success 200 {object} response.Envelope
// @Router /hostels/{id} [get]
func (h *HostelHandler) Get(c *gin.Context) {
	hostel, err := h.hostels.Get(c.Request.Context(), c.Param("id"))
	if err != nil {
		response.Error(c, err)
		return
	}
	response.JSON(c, http.StatusOK, hostel, nil)
}

// Create godoc
// @Summary Create hostel
// @Tags Hostel
// @Accept json
// @Produce json
// @Param payload body dto.HostelRequest true "Hostel"
// @Success 201 {object} response.Envelope
// @Router /hostels [post]
func (h *HostelHandler) Create(c *gin.Context) {
	actor, ok := actorFromContext(c)
	if !ok {
		return
	}
	var req dto.HostelRequest
	if !bindJSON(c, &req, "invalid hostel payload") {
		return
	}
	hostel, err := h.hostels.Create(c.Request.Context(), actor, req)
	if err != nil {
		response.Error(c, err)
		return
	}
	response.Created(c, hostel)
}

// Update godoc
// @Summary Update hostel
// @Tags Hostel
// @Accept json
// @Produce json
// @Param id path string true "Hostel ID"
// @Param payload body dto.HostelRequest true "Hostel"
// @Success 200 {object} response.Envelope
// @Failure 409 {object} response.Envelope
// @Router /hostels/{id} [put]
func (h *HostelHandler) Update(c *gin.Context) {
	actor, ok := actorFromContext(c)
	if !ok {
		return
	}
	var req dto.HostelRequest
	if !bindJSON(c, &req, "invalid hostel payload") {
		return
	}
	hostel, err := h.hostels.Update(c.Request.Context(), actor, c.Param("id"), req)
	if err != nil {
		response.Error(c, err)
		return
	}
	response.JSON(c, http.StatusOK, hostel, nil)
}

// Delete godoc
// @Summary Delete empty hostel
// @Tags Hostel
// @Produce json
// @Param id path string true "Hostel ID"
// @Success 200 {object} response.Envelope
// @Failure 409 {object} response.Envelope
// @Router /hostels/{id} [delete]
func (h *HostelHandler) Delete(c *gin.Context) {
	actor, ok := actorFromContext(c)
	if !ok {
		return
	}
	hostel, err := h.hostels.Delete(c.Request.Context(), actor, c.Param("id"))
	if err != nil {
		response.Error(c, err)
		return
	}
	response.JSON(c, http.StatusOK, hostel, nil)
}

// Allocate godoc
// @Summary Allocate room
// @Tags Hostel
// @Accept json
// @Produce json
// @Param id path string true "Hostel ID"
// @Param payload body dto.AllocateRoomRequest true "Allocation"
// @Success 201 {object} response.Envelope
// @Failure 409 {object} response.Envelope
// @Router /hostels/{id}/allocations [post]
func (h *HostelHandler) Allocate(c *gin.Context) {
	actor, ok := actorFromContext(c)
	if !ok {
		return
	}
	var req dto.AllocateRoomRequest
	if !bindJSON(c, &req, "invalid allocation payload") {
		return
	}
	alloc, err := h.hostels.Allocate(c.Request.Context(), actor, c.Param("id"), req)
	if err != nil {
		response.Error(c, err)
		return
	}
	response.Created(c, alloc)
}

// Allocations godoc
// @Summary List hostel residents
// @Tags Hostel
// @Produce json
// @Param id path string true "Hostel ID"
// @Success 200 {object} response.Envelope
// @Router /hostels/{id}/allocations [get]
func (h *HostelHandler) Allocations(c *gin.Context) {
	items, err := h.hostels.Allocations(c.Request.Context(), c.Param("id"))
	if err != nil {
		response.Error(c, err)
		return
	}
	response.JSON(c, http.StatusOK, items, nil)
}

// Vacate godoc
// @Summary Vacate student's room
// @Tags Hostel
// @Produce json
// @Param studentId path string true "Student ID"
// @Success 200 {object} response.Envelope
// @Router /hostel-allocations/{studentId} [delete]
func (h *HostelHandler) Vacate(c *gin.Context) {
	actor, ok := actorFromContext(c)
	if !ok {
		return
	}
	alloc, err := h.hostels.Vacate(c.Request.Context(), actor, c.Param("studentId"))
	if err != nil {
		response.Error(c, err)
		return
	}
	response.JSON(c, http.StatusOK, alloc, nil)
}
