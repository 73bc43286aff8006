package service

import (
	"context"
	"testing"

	"github.com/prep-study/pronto/internal/constants"
	"github.com/prep-study/pronto/internal/dto"
	apperrors "github.com/prep-study/pronto/internal/errors"
	"github.com/prep-study/pronto/internal/model"
)

func newUserService(users *fakeUsers, roles *fakeRoles, cities *fakeLocations) *UserService {
	return NewUserService(users, roles, cities, testBadges())
}

func TestUserService_GetByID(t *testing.T) {
	role := studentRole()
	user := &model.User{Username: "student1", Email: "student1@example.com", Gems: 2500, Role: role}
	svc := newUserService(newFakeUsers(user), newFakeRoles(role), &fakeLocations{})

	res, err := svc.GetByID(context.Background(), user.ID)
	if err != nil {
		t.Fatalf("GetByID returned error: %v", err)
	}
	if res.Username != "student1" {
		t.Errorf("Expected student1, got %q", res.Username)
	}
	if res.Role != "Student" {
		t.Errorf("Expected role Student, got %q", res.Role)
	}
	if res.Badge != constants.BadgeSilver {
		t.Errorf("Expected Silver badge for 2500 gems, got %q", res.Badge)
	}

	if _, err := svc.GetByID(context.Background(), 999); err != apperrors.ErrUserNotFound {
		t.Errorf("Expected ErrUserNotFound, got %v", err)
	}
}

func TestUserService_BadgeThresholds(t *testing.T) {
	tests := []struct {
		gems int
		want string
	}{
		{gems: 0, want: ""},
		{gems: 999, want: ""},
		{gems: 1000, want: constants.BadgeBronze},
		{gems: 1999, want: constants.BadgeBronze},
		{gems: 2000, want: constants.BadgeSilver},
		{gems: 3000, want: constants.BadgeGold},
		{gems: 4000, want: constants.BadgeDiamond},
		{gems: 5000, want: constants.BadgeChampion},
		{gems: 99999, want: constants.BadgeChampion},
	}

	for _, tt := range tests {
		if got := badgeForGems(testBadges(), tt.gems); got != tt.want {
			t.Errorf("badgeForGems(%d) = %q, want %q", tt.gems, got, tt.want)
		}
	}
}

func TestUserService_GetAll(t *testing.T) {
	role := studentRole()
	active := &model.User{Username: "active1", IsActive: true, Role: role}
	inactive := &model.User{Username: "inactive1", IsActive: false, Role: role}
	svc := newUserService(newFakeUsers(active, inactive), newFakeRoles(role), &fakeLocations{})

	isActive := true
	res, total, pageTotal, err := svc.GetAll(context.Background(), 10, 0, "", dto.UserFilter{IsActive: &isActive})
	if err != nil {
		t.Fatalf("GetAll returned error: %v", err)
	}
	if total != 1 || len(res) != 1 {
		t.Fatalf("Expected 1 active user, got total=%d len=%d", total, len(res))
	}
	if pageTotal != 1 {
		t.Errorf("Expected 1 page, got %d", pageTotal)
	}
	if res[0].Username != "active1" {
		t.Errorf("Expected active1, got %q", res[0].Username)
	}
}

func TestUserService_GetAll_Pagination(t *testing.T) {
	role := studentRole()
	users := newFakeUsers(
		&model.User{Username: "u1", Role: role},
		&model.User{Username: "u2", Role: role},
		&model.User{Username: "u3", Role: role},
	)
	svc := newUserService(users, newFakeRoles(role), &fakeLocations{})

	res, total, pageTotal, err := svc.GetAll(context.Background(), 2, 2, "", dto.UserFilter{})
	if err != nil {
		t.Fatalf("GetAll returned error: %v", err)
	}
	if total != 3 {
		t.Errorf("Expected total 3, got %d", total)
	}
	if pageTotal != 2 {
		t.Errorf("Expected 2 pages, got %d", pageTotal)
	}
	if len(res) != 1 || res[0].Username != "u3" {
		t.Errorf("Expected the last page to hold u3, got %+v", res)
	}
}

func TestUserService_GetByEmail(t *testing.T) {
	role := studentRole()
	user := &model.User{Username: "student1", Email: "student1@example.com", Role: role}
	svc := newUserService(newFakeUsers(user), newFakeRoles(role), &fakeLocations{})

	res, err := svc.GetByEmail(context.Background(), "student1@example.com", "")
	if err != nil {
		t.Fatalf("GetByEmail returned error: %v", err)
	}
	if res.ID != user.ID {
		t.Errorf("Expected user %d, got %d", user.ID, res.ID)
	}

	// Role restriction matches.
	if _, err := svc.GetByEmail(context.Background(), "student1@example.com", "student"); err != nil {
		t.Errorf("Expected the role-restricted lookup to succeed, got %v", err)
	}
	// A role mismatch reads as not found.
	if _, err := svc.GetByEmail(context.Background(), "student1@example.com", "teacher"); err != apperrors.ErrUserNotFoundEmail {
		t.Errorf("Expected ErrUserNotFoundEmail on role mismatch, got %v", err)
	}
	if _, err := svc.GetByEmail(context.Background(), "ghost@example.com", ""); err != apperrors.ErrUserNotFoundEmail {
		t.Errorf("Expected ErrUserNotFoundEmail, got %v", err)
	}
}

func TestUserService_Update(t *testing.T) {
	role := studentRole()
	user := &model.User{Username: "student1", FirstName: "Old", Role: role}
	city := &model.City{Name: "Springfield", StateID: 1}
	city.ID = 3
	cities := &fakeLocations{cities: []*model.City{city}}
	svc := newUserService(newFakeUsers(user), newFakeRoles(role), cities)

	cityID := uint(3)
	res, err := svc.Update(context.Background(), user.ID, &dto.UpdateUserRequest{
		FirstName:    " New ",
		MobileNumber: "08123456789",
		CityID:       &cityID,
	})
	if err != nil {
		t.Fatalf("Update returned error: %v", err)
	}
	if res.FirstName != "New" {
		t.Errorf("Expected trimmed first name, got %q", res.FirstName)
	}
	if user.MobileNumber != "08123456789" {
		t.Errorf("Expected mobile number updated, got %q", user.MobileNumber)
	}
	if user.CityID == nil || *user.CityID != 3 {
		t.Errorf("Expected city 3, got %v", user.CityID)
	}
}

func TestUserService_Update_UnknownCity(t *testing.T) {
	role := studentRole()
	user := &model.User{Username: "student1", Role: role}
	svc := newUserService(newFakeUsers(user), newFakeRoles(role), &fakeLocations{})

	cityID := uint(99)
	if _, err := svc.Update(context.Background(), user.ID, &dto.UpdateUserRequest{CityID: &cityID}); err != apperrors.ErrCityNotFound {
		t.Errorf("Expected ErrCityNotFound, got %v", err)
	}
}

func TestUserService_Update_UnknownUser(t *testing.T) {
	svc := newUserService(newFakeUsers(), newFakeRoles(studentRole()), &fakeLocations{})
	if _, err := svc.Update(context.Background(), 42, &dto.UpdateUserRequest{FirstName: "X"}); err != apperrors.ErrUserNotFound {
		t.Errorf("Expected ErrUserNotFound, got %v", err)
	}
}

func TestUserService_SyncPermissionsFromRole(t *testing.T) {
	role := studentRole()
	user := &model.User{Username: "student1", RoleID: &role.ID}
	users := newFakeUsers(user)
	svc := newUserService(users, newFakeRoles(role), &fakeLocations{})

	if err := svc.SyncPermissionsFromRole(context.Background(), user.ID); err != nil {
		t.Fatalf("SyncPermissionsFromRole returned error: %v", err)
	}
	if got := users.permissionsByUser[user.ID]; len(got) != len(role.Permissions) {
		t.Errorf("Expected %d permissions, got %d", len(role.Permissions), len(got))
	}
}

func TestUserService_SyncPermissionsFromRole_NoRole(t *testing.T) {
	user := &model.User{Username: "student1"}
	svc := newUserService(newFakeUsers(user), newFakeRoles(studentRole()), &fakeLocations{})

	if err := svc.SyncPermissionsFromRole(context.Background(), user.ID); err != apperrors.ErrRoleNotFound {
		t.Errorf("Expected ErrRoleNotFound, got %v", err)
	}
}
