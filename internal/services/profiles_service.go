package services

import (
	"context"
	"errors"
	"io"
	"log/slog"
	"strings"

	"github.com/google/uuid"
	"github.com/joshua-takyi/rentyclub/internal/apperrors"
	"github.com/joshua-takyi/rentyclub/internal/helpers"
	"github.com/joshua-takyi/rentyclub/internal/media"
	"github.com/joshua-takyi/rentyclub/internal/models"
)

const weakPasswordMsg = "password must be at least 8 characters and include upper and lower case letters, a digit and a symbol"

type ProfilesService struct {
	profilesRepo models.ProfilesRepo
	uploader     media.Uploader
	logger       *slog.Logger
}

func NewProfilesService(profilesRepo models.ProfilesRepo, uploader media.Uploader, logger *slog.Logger) *ProfilesService {
	return &ProfilesService{
		profilesRepo: profilesRepo,
		uploader:     uploader,
		logger:       logger,
	}
}

func authErr(err error) error {
	switch {
	case errors.Is(err, models.ErrInvalidCredentials):
		return apperrors.Unauthorized("incorrect email or password")
	case errors.Is(err, models.ErrEmailTaken):
		return apperrors.Conflict("an account with this email already exists")
	}
	return apperrors.Unavailable("authentication service error", err)
}

// register creates the auth user and its profile row.
func (ps *ProfilesService) register(ctx context.Context, req *models.SignupRequest, role, accessToken string) (*models.Profile, error) {
	req.Email = strings.ToLower(strings.TrimSpace(req.Email))
	req.FullName = strings.TrimSpace(req.FullName)
	if err := validate(req); err != nil {
		return nil, err
	}
	if !helpers.IsPasswordStrong(req.Password) {
		return nil, apperrors.Validation(weakPasswordMsg, map[string]any{"fields": map[string]string{"password": "strength"}})
	}

	id, err := ps.profilesRepo.SignUp(ctx, req)
	if err != nil {
		return nil, authErr(err)
	}

	profile := &models.Profile{
		ID:        id,
		Email:     req.Email,
		FullName:  req.FullName,
		AvatarPos: models.DefaultAvatarPos,
		Role:      role,
	}
	saved, err := ps.profilesRepo.UpsertProfile(ctx, profile, accessToken)
	if err != nil {
		// The auth user exists; the profile is created again on first login.
		ps.logger.Warn("failed to create profile after signup", "user_id", id, "error", err)
		return profile, nil
	}
	return saved, nil
}

func (ps *ProfilesService) SignUp(ctx context.Context, req *models.SignupRequest) (*models.Profile, error) {
	if req == nil {
		return nil, apperrors.InvalidInput("request body is required")
	}
	profile, err := ps.register(ctx, req, models.RoleUser, "")
	if err != nil {
		return nil, err
	}
	ps.logger.Info("user signed up", "user_id", profile.ID)
	return profile, nil
}

// Login authenticates and makes sure the user has a profile row.
func (ps *ProfilesService) Login(ctx context.Context, req *models.LoginRequest) (*models.AuthSession, error) {
	if req == nil {
		return nil, apperrors.InvalidInput("request body is required")
	}
	req.Email = strings.ToLower(strings.TrimSpace(req.Email))
	if err := validate(req); err != nil {
		return nil, err
	}
	session, err := ps.profilesRepo.SignIn(ctx, req.Email, req.Password)
	if err != nil {
		return nil, authErr(err)
	}

	if _, err := ps.profilesRepo.GetProfile(ctx, session.UserID, session.AccessToken); errors.Is(err, models.ErrNotFound) {
		_, err = ps.profilesRepo.UpsertProfile(ctx, &models.Profile{
			ID:        session.UserID,
			Email:     session.Email,
			AvatarPos: models.DefaultAvatarPos,
			Role:      models.RoleUser,
		}, session.AccessToken)
		if err != nil {
			ps.logger.Warn("failed to create missing profile", "user_id", session.UserID, "error", err)
		}
	}
	return session, nil
}

func (ps *ProfilesService) Refresh(ctx context.Context, refreshToken string) (*models.AuthSession, error) {
	if strings.TrimSpace(refreshToken) == "" {
		return nil, apperrors.Unauthorized("refresh token is required")
	}
	session, err := ps.profilesRepo.RefreshSession(ctx, refreshToken)
	if err != nil {
		return nil, apperrors.Unauthorized("session expired, please log in again")
	}
	return session, nil
}

func (ps *ProfilesService) Logout(ctx context.Context, accessToken string) error {
	if accessToken == "" {
		return nil
	}
	if err := ps.profilesRepo.SignOut(ctx, accessToken); err != nil {
		ps.logger.Warn("sign out failed", "error", err)
	}
	return nil
}

// Lookup loads the profile behind a validated token.
func (ps *ProfilesService) Lookup(ctx context.Context, userID uuid.UUID, accessToken string) (*models.Profile, error) {
	p, err := ps.profilesRepo.GetProfile(ctx, userID, accessToken)
	if err != nil {
		return nil, repoErr(err, "profile")
	}
	return p, nil
}

func (ps *ProfilesService) GetProfile(ctx context.Context, actor *helpers.EnhancedClaims) (*models.Profile, error) {
	if err := requireActor(actor); err != nil {
		return nil, err
	}
	return ps.Lookup(ctx, actor.UserID, actor.AccessToken)
}

func (ps *ProfilesService) UpdateProfile(ctx context.Context, actor *helpers.EnhancedClaims, upd *models.ProfileUpdate) (*models.Profile, error) {
	if err := requireActor(actor); err != nil {
		return nil, err
	}
	if err := validate(upd); err != nil {
		return nil, err
	}
	fields := upd.Fields()
	if len(fields) == 0 {
		return nil, apperrors.InvalidInput("no fields to update")
	}
	p, err := ps.profilesRepo.UpdateProfile(ctx, actor.UserID, fields, actor.AccessToken)
	if err != nil {
		return nil, repoErr(err, "profile")
	}
	return p, nil
}

// UploadAvatar stores a new avatar and points the profile at it.
func (ps *ProfilesService) UploadAvatar(ctx context.Context, actor *helpers.EnhancedClaims, filename, contentType string, body io.Reader) (*models.Profile, error) {
	if err := requireActor(actor); err != nil {
		return nil, err
	}
	url, err := upload(ctx, ps.uploader, media.Object{
		Folder:      media.AvatarFolder + "/" + actor.UserID.String(),
		Filename:    filename,
		ContentType: contentType,
		Body:        body,
		AccessToken: actor.AccessToken,
	})
	if err != nil {
		return nil, err
	}
	p, err := ps.profilesRepo.UpdateProfile(ctx, actor.UserID, map[string]interface{}{"avatar_url": url}, actor.AccessToken)
	if err != nil {
		return nil, repoErr(err, "profile")
	}
	return p, nil
}

func (ps *ProfilesService) ChangeEmail(ctx context.Context, actor *helpers.EnhancedClaims, req *models.EmailChange) error {
	if err := requireActor(actor); err != nil {
		return err
	}
	if req != nil {
		req.Email = strings.ToLower(strings.TrimSpace(req.Email))
	}
	if err := validate(req); err != nil {
		return err
	}
	if err := ps.profilesRepo.UpdateAuthEmail(ctx, req.Email, actor.AccessToken); err != nil {
		return authErr(err)
	}
	return nil
}

func (ps *ProfilesService) ChangePassword(ctx context.Context, actor *helpers.EnhancedClaims, req *models.PasswordChange) error {
	if err := requireActor(actor); err != nil {
		return err
	}
	if err := validate(req); err != nil {
		return err
	}
	if req.New != req.Confirm {
		return apperrors.Validation("passwords do not match", map[string]any{"fields": map[string]string{"confirm": "eqfield"}})
	}
	if !helpers.IsPasswordStrong(req.New) {
		return apperrors.Validation(weakPasswordMsg, map[string]any{"fields": map[string]string{"new": "strength"}})
	}
	if err := ps.profilesRepo.UpdateAuthPassword(ctx, req.New, actor.AccessToken); err != nil {
		return apperrors.Unavailable("failed to change password", err)
	}
	return nil
}
