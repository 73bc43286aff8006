package handler

import (
	"net/http"
	"strconv"

	"github.com/gin-gonic/gin"
	"github.com/prep-study/pronto/internal/constants"
	apperrors "github.com/prep-study/pronto/internal/errors"
	"github.com/prep-study/pronto/internal/service"
	ctxutil "github.com/prep-study/pronto/pkg/context"
)

// LocationHandler serves the country/state/city reference endpoints.
type LocationHandler struct {
	locationService *service.LocationService
}

func NewLocationHandler(locationService *service.LocationService) *LocationHandler {
	return &LocationHandler{locationService: locationService}
}

func (h *LocationHandler) Countries(c *gin.Context) {
	ctx := ctxutil.NewContextWithRequest(c.Request.Context(), c.Request, "handler", "Countries")

	countries, err := h.locationService.Countries(ctx)
	if err != nil {
		respondError(c, err)
		return
	}

	c.JSON(http.StatusOK, constants.NewSuccessResponse(constants.MsgCountryListFetchSuccess, countries))
}

func (h *LocationHandler) States(c *gin.Context) {
	ctx := ctxutil.NewContextWithRequest(c.Request.Context(), c.Request, "handler", "States")

	countryID, err := strconv.ParseUint(c.Param("country_id"), 10, 32)
	if err != nil {
		respondError(c, apperrors.ErrInvalidInput)
		return
	}

	states, err := h.locationService.States(ctx, uint(countryID))
	if err != nil {
		respondError(c, err)
		return
	}

	c.JSON(http.StatusOK, constants.NewSuccessResponse(constants.MsgStateListFetchSuccess, states))
}

func (h *LocationHandler) Cities(c *gin.Context) {
	ctx := ctxutil.NewContextWithRequest(c.Request.Context(), c.Request, "handler", "Cities")

	stateID, err := strconv.ParseUint(c.Param("state_id"), 10, 32)
	if err != nil {
		respondError(c, apperrors.ErrInvalidInput)
		return
	}

	cities, err := h.locationService.Cities(ctx, uint(stateID))
	if err != nil {
		respondError(c, err)
		return
	}

	c.JSON(http.StatusOK, constants.NewSuccessResponse(constants.MsgCityListFetchSuccess, cities))
}
