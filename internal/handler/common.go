package handler

import (
	"net/http"

	"github.com/gin-gonic/gin"
	"github.com/prep-study/pronto/internal/constants"
	apperrors "github.com/prep-study/pronto/internal/errors"
	"github.com/prep-study/pronto/pkg/validation"
)

// respondError writes the envelope for a failed request, mapping the domain
// error to its HTTP status.
func respondError(c *gin.Context, err error) {
	status := apperrors.ToHTTPStatus(err)
	c.JSON(status, constants.NewErrorResponse(apperrors.GetErrorMessage(err), nil))
}

// respondInvalid writes the envelope for a request that failed binding.
func respondInvalid(c *gin.Context, err error) {
	c.JSON(http.StatusBadRequest, constants.NewErrorResponse(validation.Describe(err), nil))
}

// currentUserID pulls the authenticated user's ID set by the JWT middleware.
func currentUserID(c *gin.Context) (uint, bool) {
	value, exists := c.Get("user_id")
	if !exists {
		return 0, false
	}
	switch v := value.(type) {
	case uint:
		return v, true
	case float64:
		return uint(v), true
	default:
		return 0, false
	}
}
