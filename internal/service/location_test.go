package service

import (
	"context"
	"testing"
	"time"

	apperrors "github.com/prep-study/pronto/internal/errors"
	"github.com/prep-study/pronto/internal/model"
)

func testLocations() *fakeLocations {
	country := &model.Country{Name: "Indonesia", Code: "ID"}
	country.ID = 1
	state := &model.State{Name: "West Java", CountryID: 1, Country: country}
	state.ID = 10
	city := &model.City{Name: "Bandung", StateID: 10, State: state}
	city.ID = 100
	return &fakeLocations{
		countries: []*model.Country{country},
		states:    []*model.State{state},
		cities:    []*model.City{city},
	}
}

func TestLocationService_Countries_PopulatesCache(t *testing.T) {
	cache := newFakeCache()
	svc := NewLocationService(testLocations(), cache, time.Hour)

	res, err := svc.Countries(context.Background())
	if err != nil {
		t.Fatalf("Countries returned error: %v", err)
	}
	if len(res) != 1 || res[0].Name != "Indonesia" {
		t.Fatalf("Unexpected countries: %+v", res)
	}
	if cache.sets != 1 {
		t.Errorf("Expected the list to be cached, sets=%d", cache.sets)
	}
}

func TestLocationService_Countries_CacheHitSkipsStore(t *testing.T) {
	cache := newFakeCache()
	locations := testLocations()
	svc := NewLocationService(locations, cache, time.Hour)

	if _, err := svc.Countries(context.Background()); err != nil {
		t.Fatal(err)
	}

	// A store failure after the first read proves the second one is served
	// from the cache.
	locations.listErr = errTest
	res, err := svc.Countries(context.Background())
	if err != nil {
		t.Fatalf("Expected a cache hit, got %v", err)
	}
	if len(res) != 1 || res[0].Name != "Indonesia" {
		t.Errorf("Unexpected cached countries: %+v", res)
	}
}

func TestLocationService_CacheFailureFallsThrough(t *testing.T) {
	cache := newFakeCache()
	cache.getErr = errTest
	svc := NewLocationService(testLocations(), cache, time.Hour)

	res, err := svc.Countries(context.Background())
	if err != nil {
		t.Fatalf("Expected the database to serve a broken cache, got %v", err)
	}
	if len(res) != 1 {
		t.Errorf("Unexpected countries: %+v", res)
	}
}

func TestLocationService_WithoutCache(t *testing.T) {
	svc := NewLocationService(testLocations(), nil, time.Hour)
	if _, err := svc.Countries(context.Background()); err != nil {
		t.Errorf("Expected the service to run without a cache, got %v", err)
	}
}

func TestLocationService_States(t *testing.T) {
	svc := NewLocationService(testLocations(), newFakeCache(), time.Hour)

	res, err := svc.States(context.Background(), 1)
	if err != nil {
		t.Fatalf("States returned error: %v", err)
	}
	if len(res) != 1 || res[0].Name != "West Java" {
		t.Errorf("Unexpected states: %+v", res)
	}

	if _, err := svc.States(context.Background(), 99); err != apperrors.ErrCountryNotFound {
		t.Errorf("Expected ErrCountryNotFound, got %v", err)
	}
}

func TestLocationService_Cities(t *testing.T) {
	svc := NewLocationService(testLocations(), newFakeCache(), time.Hour)

	res, err := svc.Cities(context.Background(), 10)
	if err != nil {
		t.Fatalf("Cities returned error: %v", err)
	}
	if len(res) != 1 || res[0].Name != "Bandung" {
		t.Errorf("Unexpected cities: %+v", res)
	}

	if _, err := svc.Cities(context.Background(), 99); err != apperrors.ErrStateNotFound {
		t.Errorf("Expected ErrStateNotFound, got %v", err)
	}
}

func TestLocationService_ValidateCity(t *testing.T) {
	svc := NewLocationService(testLocations(), newFakeCache(), time.Hour)

	if err := svc.ValidateCity(context.Background(), 100, 10, 1); err != nil {
		t.Errorf("Expected a consistent hierarchy to validate, got %v", err)
	}
	if err := svc.ValidateCity(context.Background(), 100, 11, 1); err != apperrors.ErrLocationHierarchyMismatch {
		t.Errorf("Expected hierarchy mismatch for the wrong state, got %v", err)
	}
	if err := svc.ValidateCity(context.Background(), 100, 10, 2); err != apperrors.ErrLocationHierarchyMismatch {
		t.Errorf("Expected hierarchy mismatch for the wrong country, got %v", err)
	}
	if err := svc.ValidateCity(context.Background(), 999, 10, 1); err != apperrors.ErrCityNotFound {
		t.Errorf("Expected ErrCityNotFound, got %v", err)
	}
}
