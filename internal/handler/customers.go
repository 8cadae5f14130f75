package handler

import (
	"net/http"

	"pharmapos/internal/dto"
	"pharmapos/internal/middleware"
	"pharmapos/internal/service"

	"github.com/gin-gonic/gin"
)

type CustomersHandler struct {
	svc   service.CustomerService
	sales service.SaleService
}

func NewCustomersHandler(svc service.CustomerService, sales service.SaleService) *CustomersHandler {
	return &CustomersHandler{svc: svc, sales: sales}
}

func (h *CustomersHandler) Create(c *gin.Context) {
	var req dto.CreateCustomerRequest
	if !bindAndValidate(c, &req) {
		return
	}
	resp, err := h.svc.Create(c.Request.Context(), middleware.GetUserID(c), req)
	if err != nil {
		writeError(c, err)
		return
	}
	c.JSON(http.StatusCreated, resp)
}

func (h *CustomersHandler) List(c *gin.Context) {
	resp, err := h.svc.List(c.Request.Context(), middleware.GetUserID(c))
	if err != nil {
		writeError(c, err)
		return
	}
	c.JSON(http.StatusOK, resp)
}

func (h *CustomersHandler) Get(c *gin.Context) {
	resp, err := h.svc.Get(c.Request.Context(), middleware.GetUserID(c), c.Param("id"))
	if err != nil {
		writeError(c, err)
		return
	}
	c.JSON(http.StatusOK, resp)
}

// Payment godoc
// @Summary Record a payment; the balance never drops below zero
// @Tags customers
// @Accept json
// @Produce json
// @Param id path string true "Customer ID"
// @Param body body dto.LedgerEntryRequest true "Payment"
// @Success 200 {object} dto.LedgerResponse
// @Router /v1/customers/{id}/payments [post]
func (h *CustomersHandler) Payment(c *gin.Context) {
	var req dto.LedgerEntryRequest
	if !bindAndValidate(c, &req) {
		return
	}
	resp, err := h.svc.RecordPayment(c.Request.Context(), middleware.GetUserID(c), c.Param("id"), req)
	if err != nil {
		writeError(c, err)
		return
	}
	c.JSON(http.StatusOK, resp)
}

func (h *CustomersHandler) Debt(c *gin.Context) {
	var req dto.LedgerEntryRequest
	if !bindAndValidate(c, &req) {
		return
	}
	resp, err := h.svc.RecordDebt(c.Request.Context(), middleware.GetUserID(c), c.Param("id"), req)
	if err != nil {
		writeError(c, err)
		return
	}
	c.JSON(http.StatusOK, resp)
}

func (h *CustomersHandler) History(c *gin.Context) {
	resp, err := h.svc.History(c.Request.Context(), middleware.GetUserID(c), c.Param("id"))
	if err != nil {
		writeError(c, err)
		return
	}
	c.JSON(http.StatusOK, resp)
}

func (h *CustomersHandler) Sales(c *gin.Context) {
	resp, err := h.sales.ListByCustomer(c.Request.Context(), middleware.GetUserID(c), c.Param("id"))
	if err != nil {
		writeError(c, err)
		return
	}
	c.JSON(http.StatusOK, resp)
}

func (h *CustomersHandler) Delete(c *gin.Context) {
	if err := h.svc.Delete(c.Request.Context(), middleware.GetUserID(c), c.Param("id")); err != nil {
		writeError(c, err)
		return
	}
	c.Status(http.StatusNoContent)
}
