package compensation

import (
	"net/http"

	"go-payledger/internal/shared/apperror"
	"go-payledger/internal/shared/response"

	"github.com/gin-gonic/gin"
)

type Handler struct {
	service Service
}

func NewHandler(service Service) *Handler {
	return &Handler{service: service}
}

func (h *Handler) GetLedger(c *gin.Context) {
	companyID := c.GetString("company_id")
	employeeID := c.Param("employeeID")

	resp, err := h.service.GetLedger(c.Request.Context(), companyID, employeeID)
	if err != nil {
		response.FromError(c, err)
		return
	}

	response.Success(c, http.StatusOK, resp)
}

func (h *Handler) AddInitial(c *gin.Context) {
	companyID := c.GetString("company_id")
	employeeID := c.Param("employeeID")

	resp, err := h.service.AddInitial(c.Request.Context(), companyID, employeeID)
	if err != nil {
		response.FromError(c, err)
		return
	}

	response.Success(c, http.StatusCreated, resp)
}

func (h *Handler) AddPeriod(c *gin.Context) {
	companyID := c.GetString("company_id")
	employeeID := c.Param("employeeID")

	var req PeriodRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		response.FromError(c, apperror.MapValidationError(err))
		return
	}

	resp, err := h.service.AddPeriod(c.Request.Context(), companyID, employeeID, req)
	if err != nil {
		response.FromError(c, err)
		return
	}

	response.Success(c, http.StatusCreated, resp)
}

func (h *Handler) Increment(c *gin.Context) {
	companyID := c.GetString("company_id")
	employeeID := c.Param("employeeID")

	var req PeriodRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		response.FromError(c, apperror.MapValidationError(err))
		return
	}

	resp, err := h.service.IncrementPeriod(c.Request.Context(), companyID, employeeID, req)
	if err != nil {
		response.FromError(c, err)
		return
	}

	response.Success(c, http.StatusCreated, resp)
}

func (h *Handler) EditPeriod(c *gin.Context) {
	companyID := c.GetString("company_id")
	employeeID := c.Param("employeeID")
	periodID := c.Param("periodID")

	var req PeriodRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		response.FromError(c, apperror.MapValidationError(err))
		return
	}

	resp, err := h.service.EditPeriod(c.Request.Context(), companyID, employeeID, periodID, req)
	if err != nil {
		response.FromError(c, err)
		return
	}

	response.Success(c, http.StatusOK, resp)
}

func (h *Handler) DeletePeriod(c *gin.Context) {
	companyID := c.GetString("company_id")
	employeeID := c.Param("employeeID")
	periodID := c.Param("periodID")

	resp, err := h.service.DeletePeriod(c.Request.Context(), companyID, employeeID, periodID)
	if err != nil {
		response.FromError(c, err)
		return
	}

	response.Success(c, http.StatusOK, resp)
}
