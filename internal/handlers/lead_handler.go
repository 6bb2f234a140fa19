package handlers

import (
	"fmt"
	"net/http"
	"time"

	"github.com/gin-gonic/gin"
	"go.uber.org/zap"

	"leadcrm/internal/models"
	"leadcrm/internal/services"
)

const leadNotFound = "Lead not found"

type LeadHandler struct {
	service *services.LeadService
	log     *zap.Logger
}

func NewLeadHandler(service *services.LeadService, log *zap.Logger) *LeadHandler {
	return &LeadHandler{service: service, log: log}
}

func bindLeadQuery(c *gin.Context) (models.LeadQuery, bool) {
	var q models.LeadQuery
	if err := c.ShouldBindQuery(&q); err != nil {
		abortDetail(c, http.StatusBadRequest, err.Error())
		return q, false
	}
	return q, true
}

func bindLeadInput(c *gin.Context) (*models.LeadInput, bool) {
	var in models.LeadInput
	if err := c.ShouldBindJSON(&in); err != nil {
		abortDetail(c, http.StatusBadRequest, err.Error())
		return nil, false
	}
	return &in, true
}

// List godoc
// @Summary      List leads
// @Description  Leads visible to the caller, ordered by id. search matches first name, last name or email.
// @Tags         Leads
// @Produce      json
// @Security     BearerAuth
// @Param        status  query     string  false  "Exact status"
// @Param        search  query     string  false  "Case-insensitive substring"
// @Param        limit   query     int     false  "Max rows (1-1000)"  default(100)
// @Success      200     {array}   models.Lead
// @Failure      400     {object}  handlers.ErrorResponse
// @Failure      401     {object}  handlers.ErrorResponse
// @Router       /leads [get]
func (h *LeadHandler) List(c *gin.Context) {
	who, ok := currentIdentity(c)
	if !ok {
		return
	}
	q, ok := bindLeadQuery(c)
	if !ok {
		return
	}
	leads, err := h.service.List(c.Request.Context(), who, q)
	if err != nil {
		handleError(c, h.log, err, leadNotFound)
		return
	}
	c.JSON(http.StatusOK, leads)
}

// Export godoc
// @Summary      Export leads as PDF
// @Description  Same selection as the list endpoint, rendered as a report.
// @Tags         Leads
// @Produce      application/pdf
// @Security     BearerAuth
// @Param        status  query     string  false  "Exact status"
// @Param        search  query     string  false  "Case-insensitive substring"
// @Param        limit   query     int     false  "Max rows (1-1000)"  default(100)
// @Success      200     {file}    file
// @Failure      400     {object}  handlers.ErrorResponse
// @Router       /leads/export [get]
func (h *LeadHandler) Export(c *gin.Context) {
	who, ok := currentIdentity(c)
	if !ok {
		return
	}
	q, ok := bindLeadQuery(c)
	if !ok {
		return
	}
	doc, err := h.service.Export(c.Request.Context(), who, q)
	if err != nil {
		handleError(c, h.log, err, leadNotFound)
		return
	}
	name := fmt.Sprintf("leads-%s.pdf", time.Now().UTC().Format("20060102"))
	c.Header("Content-Disposition", `attachment; filename="`+name+`"`)
	c.Data(http.StatusOK, "application/pdf", doc)
}

// Get godoc
// @Summary      Get a lead
// @Tags         Leads
// @Produce      json
// @Security     BearerAuth
// @Param        id   path      int  true  "Lead ID"
// @Success      200  {object}  models.Lead
// @Failure      400  {object}  handlers.ErrorResponse
// @Failure      404  {object}  handlers.ErrorResponse
// @Router       /leads/{id} [get]
func (h *LeadHandler) Get(c *gin.Context) {
	who, ok := currentIdentity(c)
	if !ok {
		return
	}
	id, ok := parseID(c)
	if !ok {
		return
	}
	lead, err := h.service.Get(c.Request.Context(), who, id)
	if err != nil {
		handleError(c, h.log, err, leadNotFound)
		return
	}
	c.JSON(http.StatusOK, lead)
}

// Create godoc
// @Summary      Create a lead
// @Description  The caller becomes the owner; created defaults to today.
// @Tags         Leads
// @Accept       json
// @Produce      json
// @Security     BearerAuth
// @Param        lead  body      models.LeadInput  true  "Lead"
// @Success      200   {object}  models.Lead
// @Failure      400   {object}  handlers.ErrorResponse
// @Failure      403   {object}  handlers.ErrorResponse
// @Failure      500   {object}  handlers.ErrorResponse
// @Router       /leads [post]
func (h *LeadHandler) Create(c *gin.Context) {
	who, ok := currentIdentity(c)
	if !ok {
		return
	}
	in, ok := bindLeadInput(c)
	if !ok {
		return
	}
	lead, err := h.service.Create(c.Request.Context(), who, in)
	if err != nil {
		handleError(c, h.log, err, leadNotFound)
		return
	}
	c.JSON(http.StatusOK, lead)
}

// Update godoc
// @Summary      Replace a lead
// @Tags         Leads
// @Accept       json
// @Produce      json
// @Security     BearerAuth
// @Param        id    path      int               true  "Lead ID"
// @Param        lead  body      models.LeadInput  true  "Lead"
// @Success      200   {object}  models.Lead
// @Failure      400   {object}  handlers.ErrorResponse
// @Failure      403   {object}  handlers.ErrorResponse
// @Failure      404   {object}  handlers.ErrorResponse
// @Router       /leads/{id} [put]
func (h *LeadHandler) Update(c *gin.Context) {
	who, ok := currentIdentity(c)
	if !ok {
		return
	}
	id, ok := parseID(c)
	if !ok {
		return
	}
	in, ok := bindLeadInput(c)
	if !ok {
		return
	}
	lead, err := h.service.Update(c.Request.Context(), who, id, in)
	if err != nil {
		handleError(c, h.log, err, leadNotFound)
		return
	}
	c.JSON(http.StatusOK, lead)
}

// Delete godoc
// @Summary      Delete a lead
// @Tags         Leads
// @Produce      json
// @Security     BearerAuth
// @Param        id   path      int  true  "Lead ID"
// @Success      200  {object}  handlers.MessageResponse
// @Failure      403  {object}  handlers.ErrorResponse
// @Failure      404  {object}  handlers.ErrorResponse
// @Router       /leads/{id} [delete]
func (h *LeadHandler) Delete(c *gin.Context) {
	who, ok := currentIdentity(c)
	if !ok {
		return
	}
	id, ok := parseID(c)
	if !ok {
		return
	}
	if err := h.service.Delete(c.Request.Context(), who, id); err != nil {
		handleError(c, h.log, err, leadNotFound)
		return
	}
	c.JSON(http.StatusOK, MessageResponse{Message: "Lead deleted successfully"})
}
