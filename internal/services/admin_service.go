package services

import (
	"context"
	"log/slog"

	"github.com/google/uuid"
	"github.com/joshua-takyi/rentyclub/internal/apperrors"
	"github.com/joshua-takyi/rentyclub/internal/helpers"
	"github.com/joshua-takyi/rentyclub/internal/models"
	"golang.org/x/sync/errgroup"
)

// AdminService backs the super_admin panel. Every method checks the role.
type AdminService struct {
	profilesRepo models.ProfilesRepo
	spacesRepo   models.SpacesRepo
	bookingsRepo models.BookingsRepo
	eventsRepo   models.EventsRepo
	profiles     *ProfilesService
	logger       *slog.Logger
}

func NewAdminService(
	profilesRepo models.ProfilesRepo,
	spacesRepo models.SpacesRepo,
	bookingsRepo models.BookingsRepo,
	eventsRepo models.EventsRepo,
	profiles *ProfilesService,
	logger *slog.Logger,
) *AdminService {
	return &AdminService{
		profilesRepo: profilesRepo,
		spacesRepo:   spacesRepo,
		bookingsRepo: bookingsRepo,
		eventsRepo:   eventsRepo,
		profiles:     profiles,
		logger:       logger,
	}
}

// NewUser is the admin form for creating an account with a given role.
type NewUser struct {
	models.SignupRequest
	Role string `json:"role" validate:"omitempty,oneof=user owner super_admin"`
}

// Stats counts the main tables concurrently.
func (as *AdminService) Stats(ctx context.Context, actor *helpers.EnhancedClaims) (*models.AdminStats, error) {
	if err := requireAdmin(actor); err != nil {
		return nil, err
	}

	var stats models.AdminStats
	targets := []struct {
		table string
		dst   *int64
	}{
		{models.ProfileTable, &stats.Users},
		{models.SpacesTable, &stats.Spaces},
		{models.BookingsTable, &stats.Bookings},
		{models.EventsTable, &stats.Events},
	}

	g, gctx := errgroup.WithContext(ctx)
	for _, t := range targets {
		g.Go(func() error {
			n, err := as.profilesRepo.CountRows(gctx, t.table, actor.AccessToken)
			if err != nil {
				return err
			}
			*t.dst = n
			return nil
		})
	}
	if err := g.Wait(); err != nil {
		return nil, repoErr(err, "stats")
	}
	return &stats, nil
}

func (as *AdminService) ListUsers(ctx context.Context, actor *helpers.EnhancedClaims, offset, limit int) ([]*models.Profile, int, error) {
	if err := requireAdmin(actor); err != nil {
		return nil, 0, err
	}
	offset, limit, err := pageBounds(offset, limit)
	if err != nil {
		return nil, 0, err
	}
	rows, total, err := as.profilesRepo.ListProfiles(ctx, offset, limit, actor.AccessToken)
	if err != nil {
		return nil, 0, repoErr(err, "profiles")
	}
	return rows, total, nil
}

func (as *AdminService) ListSpaces(ctx context.Context, actor *helpers.EnhancedClaims, offset, limit int) ([]*models.Space, int, error) {
	if err := requireAdmin(actor); err != nil {
		return nil, 0, err
	}
	offset, limit, err := pageBounds(offset, limit)
	if err != nil {
		return nil, 0, err
	}
	rows, total, err := as.spacesRepo.ListSpaces(ctx, models.SpaceFilter{Offset: offset, Limit: limit})
	if err != nil {
		return nil, 0, repoErr(err, "spaces")
	}
	return rows, total, nil
}

func (as *AdminService) ListBookings(ctx context.Context, actor *helpers.EnhancedClaims, offset, limit int) ([]*models.Booking, int, error) {
	if err := requireAdmin(actor); err != nil {
		return nil, 0, err
	}
	offset, limit, err := pageBounds(offset, limit)
	if err != nil {
		return nil, 0, err
	}
	rows, total, err := as.bookingsRepo.ListAllBookings(ctx, offset, limit, actor.AccessToken)
	if err != nil {
		return nil, 0, repoErr(err, "bookings")
	}
	return rows, total, nil
}

func (as *AdminService) ListEvents(ctx context.Context, actor *helpers.EnhancedClaims, offset, limit int) ([]*models.Event, int, error) {
	if err := requireAdmin(actor); err != nil {
		return nil, 0, err
	}
	offset, limit, err := pageBounds(offset, limit)
	if err != nil {
		return nil, 0, err
	}
	rows, total, err := as.eventsRepo.ListEvents(ctx, "", offset, limit)
	if err != nil {
		return nil, 0, repoErr(err, "events")
	}
	return rows, total, nil
}

func (as *AdminService) ListRegistrations(ctx context.Context, actor *helpers.EnhancedClaims) ([]*models.EventBooking, error) {
	if err := requireAdmin(actor); err != nil {
		return nil, err
	}
	rows, err := as.eventsRepo.ListEventRegistrations(ctx, nil, actor.AccessToken)
	if err != nil {
		return nil, repoErr(err, "registrations")
	}
	return rows, nil
}

func (as *AdminService) SetRole(ctx context.Context, actor *helpers.EnhancedClaims, userID uuid.UUID, req *models.RoleChange) (*models.Profile, error) {
	if err := requireAdmin(actor); err != nil {
		return nil, err
	}
	if err := validate(req); err != nil {
		return nil, err
	}
	if userID == actor.UserID {
		return nil, apperrors.InvalidInput("you cannot change your own role")
	}
	p, err := as.profilesRepo.UpdateProfile(ctx, userID, map[string]interface{}{"role": req.Role}, actor.AccessToken)
	if err != nil {
		return nil, repoErr(err, "profile")
	}
	as.logger.Info("role changed", "user_id", userID, "role", req.Role, "by", actor.UserID)
	return p, nil
}

func (as *AdminService) DeleteUser(ctx context.Context, actor *helpers.EnhancedClaims, userID uuid.UUID) error {
	if err := requireAdmin(actor); err != nil {
		return err
	}
	if userID == uuid.Nil {
		return apperrors.InvalidInput("invalid user ID")
	}
	if userID == actor.UserID {
		return apperrors.InvalidInput("you cannot delete your own account")
	}
	if err := as.profilesRepo.DeleteProfile(ctx, userID, actor.AccessToken); err != nil {
		return repoErr(err, "profile")
	}
	as.logger.Info("user deleted", "user_id", userID, "by", actor.UserID)
	return nil
}

func (as *AdminService) CreateUser(ctx context.Context, actor *helpers.EnhancedClaims, req *NewUser) (*models.Profile, error) {
	if err := requireAdmin(actor); err != nil {
		return nil, err
	}
	if req == nil {
		return nil, apperrors.InvalidInput("request body is required")
	}
	if err := validate(req); err != nil {
		return nil, err
	}
	role := req.Role
	if role == "" {
		role = models.RoleUser
	}
	p, err := as.profiles.register(ctx, &req.SignupRequest, role, actor.AccessToken)
	if err != nil {
		return nil, err
	}
	as.logger.Info("user created by admin", "user_id", p.ID, "role", role, "by", actor.UserID)
	return p, nil
}
