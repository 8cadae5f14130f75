package handler

import (
	"net/http"

	"pharmapos/internal/dto"
	"pharmapos/internal/middleware"
	"pharmapos/internal/service"

	"github.com/gin-gonic/gin"
)

type NotificationsHandler struct{ svc service.NotificationService }

func NewNotificationsHandler(svc service.NotificationService) *NotificationsHandler {
	return &NotificationsHandler{svc: svc}
}

func (h *NotificationsHandler) List(c *gin.Context) {
	resp, err := h.svc.Alerts(c.Request.Context(), middleware.GetUserID(c))
	if err != nil {
		writeError(c, err)
		return
	}
	c.JSON(http.StatusOK, resp)
}

// ── AI assistant ─────────────────────────────────────────────────────────────

type AIHandler struct{ svc service.AIService }

func NewAIHandler(svc service.AIService) *AIHandler { return &AIHandler{svc: svc} }

// Ask godoc
// @Summary Ask the pharmacy assistant (hosted mode only)
// @Tags ai
// @Accept json
// @Produce json
// @Param body body dto.AskRequest true "Question"
// @Failure 501 {object} apierror.APIError
// @Router /v1/ai/ask [post]
func (h *AIHandler) Ask(c *gin.Context) {
	var req dto.AskRequest
	if !bindAndValidate(c, &req) {
		return
	}
	resp, err := h.svc.Ask(c.Request.Context(), middleware.GetUserID(c), req.Prompt)
	if err != nil {
		writeError(c, err)
		return
	}
	c.JSON(http.StatusOK, gin.H{"data": resp})
}
