package service

import (
	"context"
	"math"

	"github.com/prep-study/pronto/internal/dto"
	apperrors "github.com/prep-study/pronto/internal/errors"
	"github.com/prep-study/pronto/internal/model"
	ctxutil "github.com/prep-study/pronto/pkg/context"
	"gorm.io/gorm"
)

type catalogStore interface {
	ListCategories(ctx context.Context) ([]model.Category, error)
	ListManufacturers(ctx context.Context) ([]model.Manufacturer, error)
	ListProducts(ctx context.Context, limit, offset int, categorySlug string) ([]model.Product, int64, error)
	GetProductBySlug(ctx context.Context, slug string) (*model.Product, error)
}

// CatalogService is a thin read layer over the study catalog.
type CatalogService struct {
	catalog catalogStore
}

func NewCatalogService(catalog catalogStore) *CatalogService {
	return &CatalogService{catalog: catalog}
}

func (s *CatalogService) Categories(ctx context.Context) ([]dto.CategoryResponse, error) {
	categories, err := s.catalog.ListCategories(ctx)
	if err != nil {
		return nil, apperrors.WrapError(apperrors.ErrInternal, err)
	}

	res := make([]dto.CategoryResponse, 0, len(categories))
	for _, c := range categories {
		res = append(res, dto.CategoryResponse{
			ID:          c.ID,
			Name:        c.Name,
			Slug:        c.Slug,
			Description: c.Description,
		})
	}
	return res, nil
}

func (s *CatalogService) Manufacturers(ctx context.Context) ([]dto.ManufacturerResponse, error) {
	manufacturers, err := s.catalog.ListManufacturers(ctx)
	if err != nil {
		return nil, apperrors.WrapError(apperrors.ErrInternal, err)
	}

	res := make([]dto.ManufacturerResponse, 0, len(manufacturers))
	for _, m := range manufacturers {
		res = append(res, dto.ManufacturerResponse{ID: m.ID, Name: m.Name, Slug: m.Slug})
	}
	return res, nil
}

func (s *CatalogService) Products(ctx context.Context, limit, offset int, categorySlug string) ([]dto.ProductResponse, int64, int, error) {
	ctx = context.WithValue(ctx, ctxutil.FunctionKey, "Products")
	ctx = context.WithValue(ctx, ctxutil.ModuleKey, "service")

	products, total, err := s.catalog.ListProducts(ctx, limit, offset, categorySlug)
	if err != nil {
		return nil, 0, 0, apperrors.WrapError(apperrors.ErrInternal, err)
	}

	pageTotal := 0
	if limit > 0 {
		pageTotal = int(math.Ceil(float64(total) / float64(limit)))
	}

	res := make([]dto.ProductResponse, 0, len(products))
	for i := range products {
		res = append(res, toProductResponse(&products[i]))
	}
	return res, total, pageTotal, nil
}

func (s *CatalogService) ProductBySlug(ctx context.Context, slug string) (*dto.ProductResponse, error) {
	product, err := s.catalog.GetProductBySlug(ctx, slug)
	if err != nil {
		if err == gorm.ErrRecordNotFound {
			return nil, apperrors.ErrResourceNotFound
		}
		return nil, apperrors.WrapError(apperrors.ErrInternal, err)
	}

	res := toProductResponse(product)
	return &res, nil
}

func toProductResponse(p *model.Product) dto.ProductResponse {
	res := dto.ProductResponse{
		ID:          p.ID,
		Name:        p.Name,
		Slug:        p.Slug,
		Description: p.Description,
	}
	if p.Category != nil {
		res.Category = p.Category.Name
	}
	if p.Manufacturer != nil {
		res.Manufacturer = p.Manufacturer.Name
	}
	return res
}
