package handler

import (
	"net/http"

	"github.com/gin-gonic/gin"
	"github.com/prep-study/pronto/internal/constants"
	"github.com/prep-study/pronto/internal/dto"
	"github.com/prep-study/pronto/internal/service"
	ctxutil "github.com/prep-study/pronto/pkg/context"
	"github.com/prep-study/pronto/pkg/logger"
)

// AccountHandler serves account activation and deletion endpoints.
type AccountHandler struct {
	accountService  *service.AccountService
	deletionService *service.DeletionService
}

func NewAccountHandler(accountService *service.AccountService, deletionService *service.DeletionService) *AccountHandler {
	return &AccountHandler{
		accountService:  accountService,
		deletionService: deletionService,
	}
}

// VerifyAccount activates the account named by the one-time code in the path.
func (h *AccountHandler) VerifyAccount(c *gin.Context) {
	ctx := ctxutil.NewContextWithRequest(c.Request.Context(), c.Request, "handler", "VerifyAccount")

	if err := h.accountService.VerifyAccount(ctx, c.Param("verification_code")); err != nil {
		respondError(c, err)
		return
	}

	c.JSON(http.StatusOK, constants.NewSuccessResponse(constants.MsgActivatedAccountSuccess, nil))
}

// ResendVerification mails the account's verification code again.
func (h *AccountHandler) ResendVerification(c *gin.Context) {
	ctx := ctxutil.NewContextWithRequest(c.Request.Context(), c.Request, "handler", "ResendVerification")

	var req dto.ResendVerificationRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		respondInvalid(c, err)
		return
	}

	if err := h.accountService.ResendVerification(ctx, req.Email); err != nil {
		respondError(c, err)
		return
	}

	c.JSON(http.StatusOK, constants.NewSuccessResponse(constants.MsgAuthenticationCodeSendSuccess, nil))
}

// RequestDeletion opens a deletion request for the authenticated user. The
// account is removed after the grace period unless a login cancels it.
func (h *AccountHandler) RequestDeletion(c *gin.Context) {
	ctx := ctxutil.NewContextWithRequest(c.Request.Context(), c.Request, "handler", "RequestDeletion")

	userID, ok := currentUserID(c)
	if !ok {
		c.JSON(http.StatusUnauthorized, constants.NewErrorResponse("Unauthorized", nil))
		return
	}

	// The reason body is optional on DELETE.
	var req dto.DeleteAccountRequest
	if c.Request.ContentLength > 0 {
		if err := c.ShouldBindJSON(&req); err != nil {
			respondInvalid(c, err)
			return
		}
	}

	res, err := h.deletionService.Request(ctx, userID, req.Reason)
	if err != nil {
		respondError(c, err)
		return
	}

	c.JSON(http.StatusOK, constants.NewSuccessResponse(constants.MsgDeleteAccountRequestSuccess, res))
}

// SendDeleteEmail mails a deletion confirmation link to the account owner.
func (h *AccountHandler) SendDeleteEmail(c *gin.Context) {
	ctx := ctxutil.NewContextWithRequest(c.Request.Context(), c.Request, "handler", "SendDeleteEmail")

	var req dto.SendDeleteEmailRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		respondInvalid(c, err)
		return
	}

	if err := h.deletionService.SendDeleteEmail(ctx, req.Email, req.Reason, c.Request.Host); err != nil {
		respondError(c, err)
		return
	}

	c.JSON(http.StatusOK, constants.NewSuccessResponse(constants.MsgSendDeleteRequestEmailSuccess, nil))
}

// ConfirmDeletion acknowledges the deletion request named by the uid query
// parameter, which arrives from the mailed confirmation link. The account is
// removed by the finalizer after the grace period, not here.
func (h *AccountHandler) ConfirmDeletion(c *gin.Context) {
	ctx := ctxutil.NewContextWithRequest(c.Request.Context(), c.Request, "handler", "ConfirmDeletion")

	uid := c.Query("uid")
	if uid == "" {
		c.JSON(http.StatusBadRequest, constants.NewErrorResponse(constants.MsgUserNotFound, nil))
		return
	}

	logger.InfoWithContext(ctx, "Deletion confirmation received").
		String("uid", uid).
		Log()

	if err := h.deletionService.ConfirmByIdentifier(ctx, uid); err != nil {
		respondError(c, err)
		return
	}

	c.JSON(http.StatusOK, constants.NewSuccessResponse(constants.MsgDeleteAccountRequestSuccess, nil))
}
