package handler

import (
	"net/http"

	"github.com/gin-gonic/gin"

	"github.com/adtristoneindustries-ux/erp-tristone-copy-sub002/internal/dto"
	"github.com/adtristoneindustries-ux/erp-tristone-copy-sub002/internal/service"
	"github.com/adtristoneindustries-ux/erp-tristone-copy-sub002/pkg/response"
)

// TransportHandler exposes bus route endpoints.
type TransportHandler struct {
	routes *service.TransportService
}

// NewTransportHandler constructs TransportHandler.
func NewTransportHandler(routes *service.TransportService) *TransportHandler {
	return &TransportHandler{routes: routes}
}

// List godoc
// @Summary List transport routes
// @Tags Transport
// @Produce json
// @Success 200 {object} response.Envelope
// @Router /transport/routes [get]
func (h *TransportHandler) List(c *gin.Context) {
	routes, err := h.routes.List(c.Request.Context())
	if err != nil {
		response.Error(c, err)
		return
	}
	response.JSON(c, http.StatusOK, routes, nil)
}

// Get godoc
// @Summary Get route
// @Tags Transport
// @Produce json
// @Param id path string true "Route ID"
// @Success 200 {object} response.Envelope
// @Router /transport/routes/{id} [get]
func (h *TransportHandler) Get(c *gin.Context) {
	route, err := h.routes.Get(c.Request.Context(), c.Param("id"))
	if err != nil {
		response.Error(c, err)
		return
	}
	response.JSON(c, http.StatusOK, route, nil)
}

// Create godoc
// @Summary Create route
// @Tags Transport
// @Accept json
// @Produce json
// @Param payload body dto.RouteRequest true "Route"
// @Success 201 {object} response.Envelope
// @Router /transport/routes [post]
func (h *TransportHandler) Create(c *gin.Context) {
	actor, ok := actorFromContext(c)
	if !ok {
		return
	}
	var req dto.RouteRequest
	if !bindJSON(c, &req, "invalid route payload") {
		return
	}
	route, err := h.routes.Create(c.Request.Context(), actor, req)
	if err != nil {
		response.Error(c, err)
		return
	}
	response.Created(c, route)
}

// Update godoc
// @Summary Update route
// @Tags Transport
// @Accept json
// @Produce json
// @Param id path string true "Route ID"
// @Param payload body dto.RouteRequest true "Route"
// @Success 200 {object} response.Envelope
// @Failure 409 {object} response.Envelope
// @Router /transport/routes/{id} [put]
func (h *TransportHandler) Update(c *gin.Context) {
	actor, ok := actorFromContext(c)
	if !ok {
		return
	}
	var req dto.RouteRequest
	if !bindJSON(c, &req, "invalid route payload") {
		return
	}
	route, err := h.routes.Update(c.Request.Context(), actor, c.Param("id"), req)
	if err != nil {
		response.Error(c, err)
		return
	}
	response.JSON(c, http.StatusOK, route, nil)
}

// Delete godoc
// @Summary Delete unused route
// @Tags Transport
// @Produce json
// @Param id path string true "Route ID"
// @Success 200 {object} response.Envelope
// @Failure 409 {object} response.Envelope
// @Router /transport/routes/{id} [delete]
func (h *TransportHandler) Delete(c *gin.Context) {
	actor, ok := actorFromContext(c)
	if !ok {
		return
	}
	route, err := h.routes.Delete(c.Request.Context(), actor, c.Param("id"))
	if err != nil {
		response.Error(c, err)
		return
	}
	response.JSON(c, http.StatusOK, route, nil)
}

// Assign godoc
// @Summary Assign student to route stop
// @Tags Transport
// @Accept json
// @Produce json
// @Param id path string true "Route ID"
// @Param payload body dto.AssignRouteRequest true "Assignment"
// @Success 201 {object} response.Envelope
// @Failure 409 {object} response.Envelope
// @Router /transport/routes/{id}/assignments [post]
func (h *TransportHandler) Assign(c *gin.Context) {
	actor, ok := actorFromContext(c)
	if !ok {
		return
	}
	var req dto.AssignRouteRequest
	if !bindJSON(c, &req, "invalid assignment payload") {
		return
	}
	assignment, err := h.routes.Assign(c.Request.Context(), actor, c.Param("id"), req)
	if err != nil {
		response.Error(c, err)
		return
	}
	response.Created(c, assignment)
}

// Assignments godoc
// @Summary List route riders
// @Tags Transport
// @Produce json
// @Param id path string true "Route ID"
// @Success 200 {object} response.Envelope
// @Router /transport/routes/{id}/assignments [get]
func (h *TransportHandler) Assignments(c *gin.Context) {
	items, err := h.routes.Assignments(c.Request.Context(), c.Param("id"))
	if err != nil {
		response.Error(c, err)
		return
	}
	response.JSON(c, http.StatusOK, items, nil)
}

// Unassign godoc
// @Summary Remove student from transport
// @Tags Transport
// @Produce json
// @Param studentId path string true "Student ID"
// @Success 200 {object} response.Envelope
// @Router /transport/assignments/{studentId} [delete]
func (h *TransportHandler) Unassign(c *gin.Context) {
	actor, ok := actorFromContext(c)
	if !ok {
		return
	}
	assignment, err := h.routes.Unassign(c.Request.Context(), actor, c.Param("studentId"))
	if err != nil {
		response.Error(c, err)
		return
	}
	response.JSON(c, http.StatusOK, assignment, nil)
}
