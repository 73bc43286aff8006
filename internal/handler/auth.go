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

type AuthHandler struct {
	authService    *service.AuthService
	accountService *service.AccountService
}

func NewAuthHandler(authService *service.AuthService, accountService *service.AccountService) *AuthHandler {
	return &AuthHandler{
		authService:    authService,
		accountService: accountService,
	}
}

// Register creates a new account. Registrations through a corporate host are
// activated immediately; the rest get a verification mail.
func (h *AuthHandler) Register(c *gin.Context) {
	ctx := ctxutil.NewContextWithRequest(c.Request.Context(), c.Request, "handler", "Register")

	var req dto.RegisterRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		logger.WarnWithContext(ctx, "Invalid registration payload").
			Err(err).
			Log()
		respondInvalid(c, err)
		return
	}

	logger.InfoWithContext(ctx, "Registration request").
		String("username", req.Username).
		String("role", req.Role).
		Log()

	user, err := h.accountService.Register(ctx, &req, c.Request.Host)
	if err != nil {
		respondError(c, err)
		return
	}

	c.JSON(http.StatusCreated, constants.NewSuccessResponse("User registered successfully.", user))
}

// Login authenticates with username (or email) and password, or an auth code.
func (h *AuthHandler) Login(c *gin.Context) {
	ctx := ctxutil.NewContextWithRequest(c.Request.Context(), c.Request, "handler", "Login")

	var req dto.LoginRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		respondInvalid(c, err)
		return
	}

	logger.InfoWithContext(ctx, "Login request").
		String("username", req.Username).
		Bool("via_auth_code", req.AuthCode != "").
		Log()

	res, err := h.authService.Login(ctx, &req, c.ClientIP(), c.Request.UserAgent())
	if err != nil {
		respondError(c, err)
		return
	}

	c.JSON(http.StatusOK, constants.NewSuccessResponse(constants.MsgLoginSuccess, res))
}

// RefreshToken rotates the access and refresh token pair.
func (h *AuthHandler) RefreshToken(c *gin.Context) {
	ctx := ctxutil.NewContextWithRequest(c.Request.Context(), c.Request, "handler", "RefreshToken")

	var req dto.RefreshTokenRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		respondInvalid(c, err)
		return
	}

	res, err := h.authService.RefreshToken(ctx, req.RefreshToken)
	if err != nil {
		logger.WarnWithContext(ctx, "Token refresh failed").
			Err(err).
			Log()
		respondError(c, err)
		return
	}

	c.JSON(http.StatusOK, constants.NewSuccessResponse(constants.MsgAccessTokenRenewedSuccess, res))
}

// Logout revokes the caller's tokens and closes open sessions.
func (h *AuthHandler) Logout(c *gin.Context) {
	ctx := ctxutil.NewContextWithRequest(c.Request.Context(), c.Request, "handler", "Logout")

	userID, ok := currentUserID(c)
	if !ok {
		c.JSON(http.StatusUnauthorized, constants.NewErrorResponse("Unauthorized", nil))
		return
	}

	if err := h.authService.Logout(ctx, userID); err != nil {
		respondError(c, err)
		return
	}

	c.JSON(http.StatusOK, constants.NewSuccessResponse("Logged out successfully.", nil))
}
