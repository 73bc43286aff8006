package handler

import (
	"net/http"

	"github.com/gin-gonic/gin"
	"github.com/prep-study/pronto/internal/constants"
	"github.com/prep-study/pronto/internal/dto"
	apperrors "github.com/prep-study/pronto/internal/errors"
	"github.com/prep-study/pronto/internal/service"
	ctxutil "github.com/prep-study/pronto/pkg/context"
)

// NotificationHandler serves the mail delivery webhook and email history.
type NotificationHandler struct {
	notificationService *service.NotificationService
}

func NewNotificationHandler(notificationService *service.NotificationService) *NotificationHandler {
	return &NotificationHandler{notificationService: notificationService}
}

// DeliveryWebhook records a delivery status event posted by the mail
// provider.
func (h *NotificationHandler) DeliveryWebhook(c *gin.Context) {
	ctx := ctxutil.NewContextWithRequest(c.Request.Context(), c.Request, "handler", "DeliveryWebhook")

	var event dto.DeliveryEvent
	if err := c.ShouldBindJSON(&event); err != nil {
		respondInvalid(c, err)
		return
	}

	if err := h.notificationService.HandleDeliveryEvent(ctx, &event); err != nil {
		respondError(c, err)
		return
	}

	c.JSON(http.StatusOK, constants.NewSuccessResponse(constants.MsgDeliveryEventRecordedSuccess, nil))
}

// EmailHistory lists delivery records for an email address.
func (h *NotificationHandler) EmailHistory(c *gin.Context) {
	ctx := ctxutil.NewContextWithRequest(c.Request.Context(), c.Request, "handler", "EmailHistory")

	email := c.Query("email")
	if email == "" {
		respondError(c, apperrors.ErrInvalidInput)
		return
	}

	pagination := constants.ParsePaginationParams(c)

	history, total, pageTotal, err := h.notificationService.History(ctx, email, pagination.Limit, pagination.Offset)
	if err != nil {
		respondError(c, err)
		return
	}

	c.JSON(http.StatusOK, constants.NewSuccessResponse(
		constants.MsgEmailHistoryFetchSuccess,
		constants.BuildListResponse(total, pagination.Page, pageTotal, history),
	))
}
