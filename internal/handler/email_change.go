package handler

import (
	"net/http"

	"github.com/gin-gonic/gin"
	"github.com/prep-study/pronto/internal/constants"
	"github.com/prep-study/pronto/internal/dto"
	"github.com/prep-study/pronto/internal/service"
	ctxutil "github.com/prep-study/pronto/pkg/context"
)

// EmailChangeHandler serves email change request and confirmation endpoints.
type EmailChangeHandler struct {
	emailChangeService *service.EmailChangeService
}

func NewEmailChangeHandler(emailChangeService *service.EmailChangeService) *EmailChangeHandler {
	return &EmailChangeHandler{emailChangeService: emailChangeService}
}

// Request opens an email change request and mails a verification code to the
// new address.
func (h *EmailChangeHandler) Request(c *gin.Context) {
	ctx := ctxutil.NewContextWithRequest(c.Request.Context(), c.Request, "handler", "Request")

	userID, ok := currentUserID(c)
	if !ok {
		c.JSON(http.StatusUnauthorized, constants.NewErrorResponse("Unauthorized", nil))
		return
	}

	var req dto.EmailChangeRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		respondInvalid(c, err)
		return
	}

	res, err := h.emailChangeService.Request(ctx, userID, req.NewEmail)
	if err != nil {
		respondError(c, err)
		return
	}

	c.JSON(http.StatusOK, constants.NewSuccessResponse(constants.MsgEmailChangeRequestCreateSuccess, res))
}

// Confirm applies the email change named by the verification_code query
// parameter.
func (h *EmailChangeHandler) Confirm(c *gin.Context) {
	ctx := ctxutil.NewContextWithRequest(c.Request.Context(), c.Request, "handler", "Confirm")

	userID, ok := currentUserID(c)
	if !ok {
		c.JSON(http.StatusUnauthorized, constants.NewErrorResponse("Unauthorized", nil))
		return
	}

	code := c.Query("verification_code")
	if err := h.emailChangeService.Confirm(ctx, userID, code); err != nil {
		respondError(c, err)
		return
	}

	c.JSON(http.StatusOK, constants.NewSuccessResponse(constants.MsgEmailChangeSuccess, nil))
}
