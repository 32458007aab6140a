package handler

import (
	"net/http"

	"github.com/gin-gonic/gin"

	"github.com/breakthefear/fees-api/internal/service"
	appErrors "github.com/breakthefear/fees-api/pkg/errors"
	"github.com/breakthefear/fees-api/pkg/response"
)

// InstitutionHandler exposes institution endpoints.
type InstitutionHandler struct {
	institutions *service.InstitutionService
}

// NewInstitutionHandler constructs InstitutionHandler.
func NewInstitutionHandler(institutions *service.InstitutionService) *InstitutionHandler {
	return &InstitutionHandler{institutions: institutions}
}

// List godoc
// @Summary List institutions
// @Tags Institutions
// @Produce json
// @Success 200 {object} response.Envelope
// @Router /institutions [get]
func (h *InstitutionHandler) List(c *gin.Context) {
	institutions, err := h.institutions.List(c.Request.Context())
	if err != nil {
		response.Error(c, err)
		return
	}
	response.JSON(c, http.StatusOK, institutions, nil)
}

// Get godoc
// @Summary Get institution
// @Tags Institutions
// @Produce json
// @Param id path string true "Institution ID"
// @Success 200 {object} response.Envelope
// @Router /institutions/{id} [get]
func (h *InstitutionHandler) Get(c *gin.Context) {
	institution, err := h.institutions.Get(c.Request.Context(), c.Param("id"))
	if err != nil {
		response.Error(c, err)
		return
	}
	response.JSON(c, http.StatusOK, institution, nil)
}

// Create godoc
// @Summary Create institution
// @Tags Institutions
// @Accept json
// @Produce json
// @Param payload body service.InstitutionRequest true "Institution payload"
// @Success 201 {object} response.Envelope
// @Router /institutions [post]
func (h *InstitutionHandler) Create(c *gin.Context) {
	var req service.InstitutionRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		response.Error(c, appErrors.Wrap(err, appErrors.ErrValidation.Code, http.StatusBadRequest, "invalid payload"))
		return
	}
	institution, err := h.institutions.Create(c.Request.Context(), req, actorFromContext(c))
	if err != nil {
		response.Error(c, err)
		return
	}
	response.Created(c, institution)
}

// Update godoc
// @Summary Update institution
// @Tags Institutions
// @Accept json
// @Produce json
// @Param id path string true "Institution ID"
// @Param payload body service.InstitutionRequest true "Institution payload"
// @Success 200 {object} response.Envelope
// @Router /institutions/{id} [put]
func (h *InstitutionHandler) Update(c *gin.Context) {
	var req service.InstitutionRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		response.Error(c, appErrors.Wrap(err, appErrors.ErrValidation.Code, http.StatusBadRequest, "invalid payload"))
		return
	}
	institution, err := h.institutions.Update(c.Request.Context(), c.Param("id"), req, actorFromContext(c))
	if err != nil {
		response.Error(c, err)
		return
	}
	response.JSON(c, http.StatusOK, institution, nil)
}

// Delete godoc
// @Summary Delete institution
// @Description Fails with 409 while students still reference the institution
// @Tags Institutions
// @Produce json
// @Param id path string true "Institution ID"
// @Success 204
// @Failure 409 {object} response.Envelope
// @Router /institutions/{id} [delete]
func (h *InstitutionHandler) Delete(c *gin.Context) {
	if err := h.institutions.Delete(c.Request.Context(), c.Param("id"), actorFromContext(c)); err != nil {
		response.Error(c, err)
		return
	}
	response.NoContent(c)
}
