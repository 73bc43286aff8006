package handler

import (
	"net/http"

	"github.com/gin-gonic/gin"
	"github.com/prep-study/pronto/internal/constants"
	"github.com/prep-study/pronto/internal/service"
	ctxutil "github.com/prep-study/pronto/pkg/context"
)

// CatalogHandler serves the read-only product catalog endpoints.
type CatalogHandler struct {
	catalogService *service.CatalogService
}

func NewCatalogHandler(catalogService *service.CatalogService) *CatalogHandler {
	return &CatalogHandler{catalogService: catalogService}
}

func (h *CatalogHandler) Categories(c *gin.Context) {
	ctx := ctxutil.NewContextWithRequest(c.Request.Context(), c.Request, "handler", "Categories")

	categories, err := h.catalogService.Categories(ctx)
	if err != nil {
		respondError(c, err)
		return
	}

	c.JSON(http.StatusOK, constants.NewSuccessResponse(constants.MsgCategoryListFetchSuccess, categories))
}

func (h *CatalogHandler) Manufacturers(c *gin.Context) {
	ctx := ctxutil.NewContextWithRequest(c.Request.Context(), c.Request, "handler", "Manufacturers")

	manufacturers, err := h.catalogService.Manufacturers(ctx)
	if err != nil {
		respondError(c, err)
		return
	}

	c.JSON(http.StatusOK, constants.NewSuccessResponse(constants.MsgManufacturerListFetchSuccess, manufacturers))
}

func (h *CatalogHandler) Products(c *gin.Context) {
	ctx := ctxutil.NewContextWithRequest(c.Request.Context(), c.Request, "handler", "Products")

	pagination := constants.ParsePaginationParams(c)
	categorySlug := c.Query("category")

	products, total, pageTotal, err := h.catalogService.Products(ctx, pagination.Limit, pagination.Offset, categorySlug)
	if err != nil {
		respondError(c, err)
		return
	}

	c.JSON(http.StatusOK, constants.NewSuccessResponse(
		constants.MsgProductListFetchSuccess,
		constants.BuildListResponse(total, pagination.Page, pageTotal, products),
	))
}

func (h *CatalogHandler) ProductBySlug(c *gin.Context) {
	ctx := ctxutil.NewContextWithRequest(c.Request.Context(), c.Request, "handler", "ProductBySlug")

	product, err := h.catalogService.ProductBySlug(ctx, c.Param("slug"))
	if err != nil {
		respondError(c, err)
		return
	}

	c.JSON(http.StatusOK, constants.NewSuccessResponse(constants.MsgProductDetailFetchSuccess, product))
}
