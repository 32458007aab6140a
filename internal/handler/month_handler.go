package handler

import (
	"net/http"

	"github.com/gin-gonic/gin"

	"github.com/breakthefear/fees-api/internal/service"
	appErrors "github.com/breakthefear/fees-api/pkg/errors"
	"github.com/breakthefear/fees-api/pkg/response"
)

// MonthHandler exposes fee month endpoints.
type MonthHandler struct {
	months *service.MonthService
}

// NewMonthHandler constructs MonthHandler.
func NewMonthHandler(months *service.MonthService) *MonthHandler {
	return &MonthHandler{months: months}
}

// Get godoc
// @Summary Get fee month
// @Tags Months
// @Produce json
// @Param id path string true "Month ID"
// @Success 200 {object} response.Envelope
// @Router /months/{id} [get]
func (h *MonthHandler) Get(c *gin.Context) {
	month, err := h.months.Get(c.Request.Context(), c.Param("id"))
	if err != nil {
		response.Error(c, err)
		return
	}
	response.JSON(c, http.StatusOK, month, nil)
}

// Create godoc
// @Summary Create fee month
// @Tags Months
// @Accept json
// @Produce json
// @Param payload body service.MonthRequest true "Month payload"
// @Success 201 {object} response.Envelope
// @Router /months [post]
func (h *MonthHandler) Create(c *gin.Context) {
	var req service.MonthRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		response.Error(c, appErrors.Wrap(err, appErrors.ErrValidation.Code, http.StatusBadRequest, "invalid payload"))
		return
	}
	month, err := h.months.Create(c.Request.Context(), req, actorFromContext(c))
	if err != nil {
		response.Error(c, err)
		return
	}
	response.Created(c, month)
}

// Update godoc
// @Summary Update fee month
// @Description Fee changes apply to future ledger reads; recorded allocations keep their captured fee
// @Tags Months
// @Accept json
// @Produce json
// @Param id path string true "Month ID"
// @Param payload body service.MonthRequest true "Month payload"
// @Success 200 {object} response.Envelope
// @Router /months/{id} [put]
func (h *MonthHandler) Update(c *gin.Context) {
	var req service.MonthRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		response.Error(c, appErrors.Wrap(err, appErrors.ErrValidation.Code, http.StatusBadRequest, "invalid payload"))
		return
	}
	month, err := h.months.Update(c.Request.Context(), c.Param("id"), req, actorFromContext(c))
	if err != nil {
		response.Error(c, err)
		return
	}
	response.JSON(c, http.StatusOK, month, nil)
}

// Delete godoc
// @Summary Delete fee month
// @Description Fails with 409 while enrollments or payments still reference the month
// @Tags Months
// @Produce json
// @Param id path string true "Month ID"
// @Success 204
// @Failure 409 {object} response.Envelope
// @Router /months/{id} [delete]
func (h *MonthHandler) Delete(c *gin.Context) {
	if err := h.months.Delete(c.Request.Context(), c.Param("id"), actorFromContext(c)); err != nil {
		response.Error(c, err)
		return
	}
	response.NoContent(c)
}
