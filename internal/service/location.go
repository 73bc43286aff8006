package service

import (
	"context"
	"fmt"
	"time"

	"github.com/prep-study/pronto/internal/constants"
	"github.com/prep-study/pronto/internal/dto"
	apperrors "github.com/prep-study/pronto/internal/errors"
	"github.com/prep-study/pronto/internal/model"
	ctxutil "github.com/prep-study/pronto/pkg/context"
	"github.com/prep-study/pronto/pkg/logger"
	"gorm.io/gorm"
)

type locationStore interface {
	ListCountries(ctx context.Context) ([]model.Country, error)
	ListStatesByCountry(ctx context.Context, countryID uint) ([]model.State, error)
	ListCitiesByState(ctx context.Context, stateID uint) ([]model.City, error)
	GetCountry(ctx context.Context, id uint) (*model.Country, error)
	GetState(ctx context.Context, id uint) (*model.State, error)
	GetCity(ctx context.Context, id uint) (*model.City, error)
}

type locationCache interface {
	GetJSON(ctx context.Context, key string, dest interface{}) (bool, error)
	SetJSON(ctx context.Context, key string, value interface{}, ttl time.Duration) error
}

// LocationService serves the Country/State/City reference data. Lists are
// read-mostly, so they sit behind a redis cache.
type LocationService struct {
	locations locationStore
	cache     locationCache
	ttl       time.Duration
}

func NewLocationService(locations locationStore, cache locationCache, ttl time.Duration) *LocationService {
	return &LocationService{
		locations: locations,
		cache:     cache,
		ttl:       ttl,
	}
}

func (s *LocationService) Countries(ctx context.Context) ([]dto.CountryResponse, error) {
	ctx = context.WithValue(ctx, ctxutil.FunctionKey, "Countries")
	ctx = context.WithValue(ctx, ctxutil.ModuleKey, "service")

	var cached []dto.CountryResponse
	if s.cacheGet(ctx, constants.CacheKeyCountries, &cached) {
		return cached, nil
	}

	countries, err := s.locations.ListCountries(ctx)
	if err != nil {
		return nil, apperrors.WrapError(apperrors.ErrInternal, err)
	}

	res := make([]dto.CountryResponse, 0, len(countries))
	for _, c := range countries {
		res = append(res, dto.CountryResponse{ID: c.ID, Name: c.Name, Code: c.Code})
	}

	s.cacheSet(ctx, constants.CacheKeyCountries, res)
	return res, nil
}

func (s *LocationService) States(ctx context.Context, countryID uint) ([]dto.StateResponse, error) {
	ctx = context.WithValue(ctx, ctxutil.FunctionKey, "States")
	ctx = context.WithValue(ctx, ctxutil.ModuleKey, "service")

	key := fmt.Sprintf("%s%d", constants.CacheKeyStates, countryID)
	var cached []dto.StateResponse
	if s.cacheGet(ctx, key, &cached) {
		return cached, nil
	}

	if _, err := s.locations.GetCountry(ctx, countryID); err != nil {
		if err == gorm.ErrRecordNotFound {
			return nil, apperrors.ErrCountryNotFound
		}
		return nil, apperrors.WrapError(apperrors.ErrInternal, err)
	}

	states, err := s.locations.ListStatesByCountry(ctx, countryID)
	if err != nil {
		return nil, apperrors.WrapError(apperrors.ErrInternal, err)
	}

	res := make([]dto.StateResponse, 0, len(states))
	for _, st := range states {
		res = append(res, dto.StateResponse{ID: st.ID, Name: st.Name, CountryID: st.CountryID})
	}

	s.cacheSet(ctx, key, res)
	return res, nil
}

func (s *LocationService) Cities(ctx context.Context, stateID uint) ([]dto.CityResponse, error) {
	ctx = context.WithValue(ctx, ctxutil.FunctionKey, "Cities")
	ctx = context.WithValue(ctx, ctxutil.ModuleKey, "service")

	key := fmt.Sprintf("%s%d", constants.CacheKeyCities, stateID)
	var cached []dto.CityResponse
	if s.cacheGet(ctx, key, &cached) {
		return cached, nil
	}

	if _, err := s.locations.GetState(ctx, stateID); err != nil {
		if err == gorm.ErrRecordNotFound {
			return nil, apperrors.ErrStateNotFound
		}
		return nil, apperrors.WrapError(apperrors.ErrInternal, err)
	}

	cities, err := s.locations.ListCitiesByState(ctx, stateID)
	if err != nil {
		return nil, apperrors.WrapError(apperrors.ErrInternal, err)
	}

	res := make([]dto.CityResponse, 0, len(cities))
	for _, c := range cities {
		res = append(res, dto.CityResponse{ID: c.ID, Name: c.Name, StateID: c.StateID})
	}

	s.cacheSet(ctx, key, res)
	return res, nil
}

// ValidateCity checks that the city belongs to the given state and the state
// to the given country.
func (s *LocationService) ValidateCity(ctx context.Context, cityID, stateID, countryID uint) error {
	ctx = context.WithValue(ctx, ctxutil.FunctionKey, "ValidateCity")
	ctx = context.WithValue(ctx, ctxutil.ModuleKey, "service")

	city, err := s.locations.GetCity(ctx, cityID)
	if err != nil {
		if err == gorm.ErrRecordNotFound {
			return apperrors.ErrCityNotFound
		}
		return apperrors.WrapError(apperrors.ErrInternal, err)
	}

	if city.StateID != stateID {
		return apperrors.ErrLocationHierarchyMismatch
	}
	if city.State == nil || city.State.CountryID != countryID {
		return apperrors.ErrLocationHierarchyMismatch
	}

	return nil
}

// Cache misses and failures fall through to the database; the cache is never
// the source of truth.
func (s *LocationService) cacheGet(ctx context.Context, key string, dest interface{}) bool {
	if s.cache == nil {
		return false
	}
	hit, err := s.cache.GetJSON(ctx, key, dest)
	if err != nil {
		logger.WarnWithContext(ctx, "Location cache read failed").
			String("key", key).
			Err(err).
			Log()
		return false
	}
	return hit
}

func (s *LocationService) cacheSet(ctx context.Context, key string, value interface{}) {
	if s.cache == nil {
		return
	}
	if err := s.cache.SetJSON(ctx, key, value, s.ttl); err != nil {
		logger.WarnWithContext(ctx, "Location cache write failed").
			String("key", key).
			Err(err).
			Log()
	}
}
