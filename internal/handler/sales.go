package handler

import (
	"fmt"
	"net/http"

	"pharmapos/internal/dto"
	"pharmapos/internal/infra"
	"pharmapos/internal/middleware"
	"pharmapos/internal/service"

	"github.com/gin-gonic/gin"
	"github.com/rs/zerolog/log"
)

type SalesHandler struct {
	svc         service.SaleService
	receiptPath string
}

// NewSalesHandler serves sales. When receiptPath is set, rendered receipts
// are also kept there.
func NewSalesHandler(svc service.SaleService, receiptPath string) *SalesHandler {
	return &SalesHandler{svc: svc, receiptPath: receiptPath}
}

// Register godoc
// @Summary Register a sale
// @Tags sales
// @Accept json
// @Produce json
// @Param body body dto.RegisterSaleRequest true "Sale"
// @Success 201 {object} dto.SaleResponse
// @Failure 409 {object} apierror.APIError
// @Failure 422 {object} apierror.ValidationError
// @Router /v1/sales [post]
func (h *SalesHandler) Register(c *gin.Context) {
	var req dto.RegisterSaleRequest
	if !bindAndValidate(c, &req) {
		return
	}
	resp, err := h.svc.Register(c.Request.Context(), middleware.GetUserID(c), req)
	if err != nil {
		writeError(c, err)
		return
	}
	c.JSON(http.StatusCreated, resp)
}

func (h *SalesHandler) List(c *gin.Context) {
	var filter dto.SaleFilter
	if !bindQuery(c, &filter) {
		return
	}
	resp, err := h.svc.List(c.Request.Context(), middleware.GetUserID(c), filter)
	if err != nil {
		writeError(c, err)
		return
	}
	c.JSON(http.StatusOK, resp)
}

func (h *SalesHandler) Get(c *gin.Context) {
	resp, err := h.svc.Get(c.Request.Context(), middleware.GetUserID(c), c.Param("id"))
	if err != nil {
		writeError(c, err)
		return
	}
	c.JSON(http.StatusOK, resp)
}

// Receipt godoc
// @Summary Download the PDF receipt of a sale
// @Tags sales
// @Produce application/pdf
// @Param id path string true "Sale ID"
// @Success 200 {file} binary
// @Failure 404 {object} apierror.APIError
// @Router /v1/sales/{id}/receipt [get]
func (h *SalesHandler) Receipt(c *gin.Context) {
	receipt, err := h.svc.Receipt(c.Request.Context(), middleware.GetUserID(c), c.Param("id"))
	if err != nil {
		writeError(c, err)
		return
	}

	if h.receiptPath != "" {
		path, err := infra.GenerateReceiptPDF(*receipt, h.receiptPath)
		if err != nil {
			writeError(c, err)
			return
		}
		log.Debug().Str("path", path).Msg("receipt stored")
	}

	c.Header("Content-Type", "application/pdf")
	c.Header("Content-Disposition", fmt.Sprintf(`attachment; filename="receipt_%s.pdf"`, receipt.SaleID))
	c.Status(http.StatusOK)
	if err := infra.WriteReceiptPDF(c.Writer, *receipt); err != nil {
		log.Error().Err(err).Str("sale_id", receipt.SaleID).Msg("receipt render failed")
	}
}
