package handler

import (
	"net/http"

	"github.com/gin-gonic/gin"
	"github.com/prep-study/pronto/internal/constants"
	"github.com/prep-study/pronto/internal/dto"
	"github.com/prep-study/pronto/internal/service"
	ctxutil "github.com/prep-study/pronto/pkg/context"
)

// PasswordHandler serves password reset and change endpoints.
type PasswordHandler struct {
	passwordService *service.PasswordService
}

func NewPasswordHandler(passwordService *service.PasswordService) *PasswordHandler {
	return &PasswordHandler{passwordService: passwordService}
}

// RequestReset mails a reset code to the account's email address.
func (h *PasswordHandler) RequestReset(c *gin.Context) {
	ctx := ctxutil.NewContextWithRequest(c.Request.Context(), c.Request, "handler", "RequestReset")

	var req dto.PasswordResetRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		respondInvalid(c, err)
		return
	}

	if err := h.passwordService.RequestReset(ctx, req.Email); err != nil {
		respondError(c, err)
		return
	}

	c.JSON(http.StatusOK, constants.NewSuccessResponse(constants.MsgPasswordResetRequestSentSuccess, nil))
}

// ConfirmReset sets a new password using a mailed reset code.
func (h *PasswordHandler) ConfirmReset(c *gin.Context) {
	ctx := ctxutil.NewContextWithRequest(c.Request.Context(), c.Request, "handler", "ConfirmReset")

	var req dto.PasswordResetConfirmRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		respondInvalid(c, err)
		return
	}

	if err := h.passwordService.ConfirmReset(ctx, &req); err != nil {
		respondError(c, err)
		return
	}

	c.JSON(http.StatusOK, constants.NewSuccessResponse(constants.MsgPasswordChangeSuccess, nil))
}

// Set establishes a first-time password during onboarding. The caller is
// identified by email; there is no current password to check.
func (h *PasswordHandler) Set(c *gin.Context) {
	ctx := ctxutil.NewContextWithRequest(c.Request.Context(), c.Request, "handler", "Set")

	var req dto.PasswordSetRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		respondInvalid(c, err)
		return
	}

	if err := h.passwordService.Set(ctx, &req); err != nil {
		respondError(c, err)
		return
	}

	c.JSON(http.StatusOK, constants.NewSuccessResponse(constants.MsgPasswordChangeSuccess, nil))
}

// Change updates the authenticated user's password.
func (h *PasswordHandler) Change(c *gin.Context) {
	ctx := ctxutil.NewContextWithRequest(c.Request.Context(), c.Request, "handler", "Change")

	userID, ok := currentUserID(c)
	if !ok {
		c.JSON(http.StatusUnauthorized, constants.NewErrorResponse("Unauthorized", nil))
		return
	}

	var req dto.PasswordChangeRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		respondInvalid(c, err)
		return
	}

	if err := h.passwordService.Change(ctx, userID, &req); err != nil {
		respondError(c, err)
		return
	}

	c.JSON(http.StatusOK, constants.NewSuccessResponse(constants.MsgPasswordChangeSuccess, nil))
}
