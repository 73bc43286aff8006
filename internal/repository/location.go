package repository

import (
	"context"

	"github.com/prep-study/pronto/internal/model"
	"gorm.io/gorm"
)

type LocationRepository struct {
	db *gorm.DB
}

func NewLocationRepository(db *gorm.DB) *LocationRepository {
	return &LocationRepository{db: db}
}

func (r *LocationRepository) ListCountries(ctx context.Context) ([]model.Country, error) {
	var countries []model.Country
	if err := r.db.WithContext(ctx).Order("name").Find(&countries).Error; err != nil {
		return nil, err
	}
	return countries, nil
}

func (r *LocationRepository) ListStatesByCountry(ctx context.Context, countryID uint) ([]model.State, error) {
	var states []model.State
	if err := r.db.WithContext(ctx).Where("country_id = ?", countryID).Order("name").Find(&states).Error; err != nil {
		return nil, err
	}
	return states, nil
}

func (r *LocationRepository) ListCitiesByState(ctx context.Context, stateID uint) ([]model.City, error) {
	var cities []model.City
	if err := r.db.WithContext(ctx).Where("state_id = ?", stateID).Order("name").Find(&cities).Error; err != nil {
		return nil, err
	}
	return cities, nil
}

func (r *LocationRepository) GetCountry(ctx context.Context, id uint) (*model.Country, error) {
	var country model.Country
	if err := r.db.WithContext(ctx).Where("id = ?", id).First(&country).Error; err != nil {
		return nil, err
	}
	return &country, nil
}

func (r *LocationRepository) GetState(ctx context.Context, id uint) (*model.State, error) {
	var state model.State
	if err := r.db.WithContext(ctx).Where("id = ?", id).First(&state).Error; err != nil {
		return nil, err
	}
	return &state, nil
}

// GetCity loads a city with its state and country for hierarchy checks.
func (r *LocationRepository) GetCity(ctx context.Context, id uint) (*model.City, error) {
	var city model.City
	if err := r.db.WithContext(ctx).Preload("State.Country").Where("id = ?", id).First(&city).Error; err != nil {
		return nil, err
	}
	return &city, nil
}
