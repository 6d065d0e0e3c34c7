package services

import (
	"context"
	"net/http"
	"testing"

	"github.com/google/uuid"
	"github.com/joshua-takyi/rentyclub/internal/apperrors"
	"github.com/joshua-takyi/rentyclub/internal/models"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func newAdminService(profiles *fakeProfiles) *AdminService {
	return NewAdminService(
		profiles,
		newFakeSpaces(),
		newFakeBookings(),
		newFakeEvents(),
		NewProfilesService(profiles, nil, discardLogger()),
		discardLogger(),
	)
}

func TestAdminStats(t *testing.T) {
	profiles := newFakeProfiles()
	profiles.counts = map[string]int64{
		models.ProfileTable:  12,
		models.SpacesTable:   5,
		models.BookingsTable: 9,
		models.EventsTable:   2,
	}
	svc := newAdminService(profiles)

	stats, err := svc.Stats(context.Background(), actorFor(uuid.New(), models.RoleSuperAdmin))
	require.NoError(t, err)
	assert.Equal(t, &models.AdminStats{Users: 12, Spaces: 5, Bookings: 9, Events: 2}, stats)

	_, err = svc.Stats(context.Background(), actorFor(uuid.New(), models.RoleOwner))
	requireAppError(t, err, apperrors.CodeForbidden, http.StatusForbidden)

	_, err = svc.Stats(context.Background(), nil)
	requireAppError(t, err, apperrors.CodeUnauthorized, http.StatusUnauthorized)
}

func TestAdminSetRoleAndDelete(t *testing.T) {
	admin := uuid.New()
	target := uuid.New()
	profiles := newFakeProfiles(
		&models.Profile{ID: admin, Role: models.RoleSuperAdmin},
		&models.Profile{ID: target, Role: models.RoleUser},
	)
	svc := newAdminService(profiles)
	actor := actorFor(admin, models.RoleSuperAdmin)
	ctx := context.Background()

	p, err := svc.SetRole(ctx, actor, target, &models.RoleChange{Role: models.RoleOwner})
	require.NoError(t, err)
	assert.Equal(t, models.RoleOwner, p.Role)

	_, err = svc.SetRole(ctx, actor, target, &models.RoleChange{Role: "root"})
	requireAppError(t, err, apperrors.CodeValidation, http.StatusUnprocessableEntity)

	_, err = svc.SetRole(ctx, actor, admin, &models.RoleChange{Role: models.RoleUser})
	requireAppError(t, err, apperrors.CodeInvalidInput, http.StatusBadRequest)

	err = svc.DeleteUser(ctx, actor, admin)
	requireAppError(t, err, apperrors.CodeInvalidInput, http.StatusBadRequest)

	require.NoError(t, svc.DeleteUser(ctx, actor, target))
	assert.NotContains(t, profiles.profiles, target)

	err = svc.DeleteUser(ctx, actor, target)
	requireAppError(t, err, apperrors.CodeNotFound, http.StatusNotFound)
}

func TestAdminCreateUser(t *testing.T) {
	profiles := newFakeProfiles()
	svc := newAdminService(profiles)

	req := &NewUser{Role: models.RoleOwner}
	req.Email = "owner@example.com"
	req.Password = strongPassword

	p, err := svc.CreateUser(context.Background(), actorFor(uuid.New(), models.RoleSuperAdmin), req)
	require.NoError(t, err)
	assert.Equal(t, models.RoleOwner, p.Role)
	assert.Contains(t, profiles.profiles, p.ID)
}

func TestAdminListUsersPaging(t *testing.T) {
	svc := newAdminService(newFakeProfiles(&models.Profile{ID: uuid.New()}))
	actor := actorFor(uuid.New(), models.RoleSuperAdmin)

	users, total, err := svc.ListUsers(context.Background(), actor, 0, 0)
	require.NoError(t, err)
	assert.Len(t, users, 1)
	assert.Equal(t, 1, total)

	_, _, err = svc.ListUsers(context.Background(), actor, 0, MaxPageSize+1)
	requireAppError(t, err, apperrors.CodeInvalidInput, http.StatusBadRequest)

	_, _, err = svc.ListUsers(context.Background(), actor, -1, 10)
	requireAppError(t, err, apperrors.CodeInvalidInput, http.StatusBadRequest)
}
