package handler

import (
	"net/http"
	"strconv"

	"github.com/gin-gonic/gin"
	"github.com/prep-study/pronto/internal/constants"
	"github.com/prep-study/pronto/internal/dto"
	apperrors "github.com/prep-study/pronto/internal/errors"
	"github.com/prep-study/pronto/internal/service"
	ctxutil "github.com/prep-study/pronto/pkg/context"
	"github.com/prep-study/pronto/pkg/logger"
)

type UserHandler struct {
	userService *service.UserService
}

func NewUserHandler(service *service.UserService) *UserHandler {
	return &UserHandler{userService: service}
}

// GetAll lists users with pagination, search and filters.
func (h *UserHandler) GetAll(c *gin.Context) {
	ctx := ctxutil.NewContextWithRequest(c.Request.Context(), c.Request, "handler", "GetAll")

	pagination := constants.ParsePaginationParams(c)
	search := c.DefaultQuery(constants.QueryParamSearch, constants.DefaultSearch)

	var filter dto.UserFilter
	if v := c.Query("is_active"); v != "" {
		b := v == "true" || v == "1"
		filter.IsActive = &b
	}
	if v := c.Query("is_deleted"); v != "" {
		b := v == "true" || v == "1"
		filter.IsDeleted = &b
	}
	filter.Role = c.Query("role")

	users, total, pageTotal, err := h.userService.GetAll(ctx, pagination.Limit, pagination.Offset, search, filter)
	if err != nil {
		respondError(c, err)
		return
	}

	c.JSON(http.StatusOK, constants.NewSuccessResponse(
		constants.MsgUserListFetchSuccess,
		constants.BuildListResponse(total, pagination.Page, pageTotal, users),
	))
}

func (h *UserHandler) GetByID(c *gin.Context) {
	ctx := ctxutil.NewContextWithRequest(c.Request.Context(), c.Request, "handler", "GetByID")

	id, err := strconv.ParseUint(c.Param("id"), 10, 32)
	if err != nil {
		logger.WarnWithContext(ctx, "Invalid user ID format").
			String("raw_id", c.Param("id")).
			Err(err).
			Log()
		respondError(c, apperrors.ErrInvalidInput)
		return
	}

	user, err := h.userService.GetByID(ctx, uint(id))
	if err != nil {
		respondError(c, err)
		return
	}

	c.JSON(http.StatusOK, constants.NewSuccessResponse(constants.MsgUserDetailFetchSuccess, user))
}

// Me returns the authenticated user's own profile.
func (h *UserHandler) Me(c *gin.Context) {
	ctx := ctxutil.NewContextWithRequest(c.Request.Context(), c.Request, "handler", "Me")

	userID, ok := currentUserID(c)
	if !ok {
		c.JSON(http.StatusUnauthorized, constants.NewErrorResponse("Unauthorized", nil))
		return
	}

	user, err := h.userService.GetByID(ctx, userID)
	if err != nil {
		respondError(c, err)
		return
	}

	c.JSON(http.StatusOK, constants.NewSuccessResponse(constants.MsgUserDetailFetchSuccess, user))
}

// GetByEmail looks a user up by email, optionally scoped to a role slug.
func (h *UserHandler) GetByEmail(c *gin.Context) {
	ctx := ctxutil.NewContextWithRequest(c.Request.Context(), c.Request, "handler", "GetByEmail")

	email := c.Query("email")
	if email == "" {
		respondError(c, apperrors.ErrInvalidInput)
		return
	}

	user, err := h.userService.GetByEmail(ctx, email, c.Query("role"))
	if err != nil {
		respondError(c, err)
		return
	}

	c.JSON(http.StatusOK, constants.NewSuccessResponse(constants.MsgUserByEmailFetchSuccess, user))
}

// Update modifies the authenticated user's profile fields.
func (h *UserHandler) Update(c *gin.Context) {
	ctx := ctxutil.NewContextWithRequest(c.Request.Context(), c.Request, "handler", "Update")

	userID, ok := currentUserID(c)
	if !ok {
		c.JSON(http.StatusUnauthorized, constants.NewErrorResponse("Unauthorized", nil))
		return
	}

	var req dto.UpdateUserRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		respondInvalid(c, err)
		return
	}

	user, err := h.userService.Update(ctx, userID, &req)
	if err != nil {
		respondError(c, err)
		return
	}

	c.JSON(http.StatusOK, constants.NewSuccessResponse(constants.MsgUserUpdateSuccess, user))
}
