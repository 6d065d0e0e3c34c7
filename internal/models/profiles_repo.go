package models

import (
	"context"
	"errors"
	"fmt"
	"strings"

	"github.com/google/uuid"
	"github.com/supabase-community/gotrue-go/types"
)

var (
	ErrEmailTaken         = errors.New("email already in use")
	ErrInvalidCredentials = errors.New("invalid email or password")
)

const profileColumns = "id,email,full_name,avatar_url,avatar_pos,birth_date,role,created_at"

type ProfilesRepo interface {
	SignUp(ctx context.Context, req *SignupRequest) (uuid.UUID, error)
	SignIn(ctx context.Context, email, password string) (*AuthSession, error)
	RefreshSession(ctx context.Context, refreshToken string) (*AuthSession, error)
	SignOut(ctx context.Context, accessToken string) error
	UpdateAuthEmail(ctx context.Context, email, accessToken string) error
	UpdateAuthPassword(ctx context.Context, password, accessToken string) error

	UpsertProfile(ctx context.Context, p *Profile, accessToken string) (*Profile, error)
	GetProfile(ctx context.Context, id uuid.UUID, accessToken string) (*Profile, error)
	UpdateProfile(ctx context.Context, id uuid.UUID, fields map[string]interface{}, accessToken string) (*Profile, error)
	ListProfiles(ctx context.Context, offset, limit int, accessToken string) ([]*Profile, int, error)
	DeleteProfile(ctx context.Context, id uuid.UUID, accessToken string) error
	CountRows(ctx context.Context, table, accessToken string) (int64, error)
}

// authError turns gotrue's free-text errors into something a user can read.
func authError(err error) error {
	msg := strings.ToLower(err.Error())
	switch {
	case strings.Contains(msg, "already registered"), strings.Contains(msg, "unique constraint"):
		return ErrEmailTaken
	case strings.Contains(msg, "invalid login credentials"), strings.Contains(msg, "invalid_grant"):
		return ErrInvalidCredentials
	}
	return err
}

func sessionFrom(res *types.TokenResponse) *AuthSession {
	return &AuthSession{
		AccessToken:  res.AccessToken,
		RefreshToken: res.RefreshToken,
		ExpiresIn:    res.ExpiresIn,
		UserID:       res.User.ID,
		Email:        res.User.Email,
	}
}

func (su *SupabaseRepo) SignUp(ctx context.Context, req *SignupRequest) (uuid.UUID, error) {
	res, err := su.supabaseClient.Auth.Signup(types.SignupRequest{
		Email:    req.Email,
		Password: req.Password,
		Data:     map[string]interface{}{"full_name": req.FullName},
	})
	if err != nil {
		return uuid.Nil, authError(err)
	}
	if res.User.ID == uuid.Nil {
		return uuid.Nil, ErrEmailTaken
	}
	return res.User.ID, nil
}

func (su *SupabaseRepo) SignIn(ctx context.Context, email, password string) (*AuthSession, error) {
	res, err := su.supabaseClient.Auth.SignInWithEmailPassword(email, password)
	if err != nil {
		return nil, authError(err)
	}
	return sessionFrom(res), nil
}

func (su *SupabaseRepo) RefreshSession(ctx context.Context, refreshToken string) (*AuthSession, error) {
	res, err := su.supabaseClient.Auth.RefreshToken(refreshToken)
	if err != nil {
		return nil, fmt.Errorf("failed to refresh token: %v", err)
	}
	return sessionFrom(res), nil
}

func (su *SupabaseRepo) SignOut(ctx context.Context, accessToken string) error {
	if err := su.supabaseClient.Auth.WithToken(accessToken).Logout(); err != nil {
		return fmt.Errorf("failed to sign out: %v", err)
	}
	return nil
}

func (su *SupabaseRepo) UpdateAuthEmail(ctx context.Context, email, accessToken string) error {
	_, err := su.supabaseClient.Auth.WithToken(accessToken).UpdateUser(types.UpdateUserRequest{
		Email: email,
	})
	if err != nil {
		return authError(err)
	}
	return nil
}

func (su *SupabaseRepo) UpdateAuthPassword(ctx context.Context, password, accessToken string) error {
	_, err := su.supabaseClient.Auth.WithToken(accessToken).UpdateUser(types.UpdateUserRequest{
		Password: &password,
	})
	if err != nil {
		return fmt.Errorf("failed to update password: %v", err)
	}
	return nil
}

func (su *SupabaseRepo) UpsertProfile(ctx context.Context, p *Profile, accessToken string) (*Profile, error) {
	client, err := su.client(accessToken)
	if err != nil {
		return nil, err
	}
	row := map[string]interface{}{
		"id":         p.ID,
		"email":      p.Email,
		"full_name":  p.FullName,
		"avatar_pos": p.AvatarPos,
		"role":       p.Role,
	}
	data, _, err := client.From(ProfileTable).
		Upsert(row, "id", "representation", "exact").
		Execute()
	if err != nil {
		return nil, fmt.Errorf("failed to upsert profile: %v", err)
	}
	return firstRow[Profile](data)
}

func (su *SupabaseRepo) GetProfile(ctx context.Context, id uuid.UUID, accessToken string) (*Profile, error) {
	if id == uuid.Nil {
		return nil, fmt.Errorf("invalid UUID")
	}
	client, err := su.client(accessToken)
	if err != nil {
		return nil, err
	}

	raw, status, err := client.From(ProfileTable).
		Select(profileColumns, "", false).
		Eq("id", id.String()).
		Execute()
	if err != nil {
		if status != 0 {
			return nil, fmt.Errorf("postgrest error: status=%d body=%s err=%v", status, string(raw), err)
		}
		return nil, fmt.Errorf("failed to get profile: %v", err)
	}
	return firstRow[Profile](raw)
}

func (su *SupabaseRepo) UpdateProfile(ctx context.Context, id uuid.UUID, fields map[string]interface{}, accessToken string) (*Profile, error) {
	if id == uuid.Nil {
		return nil, fmt.Errorf("invalid UUID")
	}
	if len(fields) == 0 {
		return nil, fmt.Errorf("no fields to update")
	}
	client, err := su.client(accessToken)
	if err != nil {
		return nil, err
	}

	raw, _, err := client.From(ProfileTable).
		Update(fields, "representation", "exact").
		Eq("id", id.String()).
		Execute()
	if err != nil {
		return nil, fmt.Errorf("failed to update profile: %v", err)
	}
	return firstRow[Profile](raw)
}

func (su *SupabaseRepo) ListProfiles(ctx context.Context, offset, limit int, accessToken string) ([]*Profile, int, error) {
	client, err := su.client(accessToken)
	if err != nil {
		return nil, 0, err
	}
	raw, count, err := client.From(ProfileTable).
		Select(profileColumns, "exact", false).
		Order("created_at", newestFirst).
		Range(offset, offset+limit-1, "").
		Execute()
	if err != nil {
		return nil, 0, fmt.Errorf("failed to list profiles: %v", err)
	}
	rows, err := decodeRows[Profile](raw)
	if err != nil {
		return nil, 0, err
	}
	return rows, int(count), nil
}

// DeleteProfile removes the profile row. The auth user stays behind; removing
// it needs the service role key.
func (su *SupabaseRepo) DeleteProfile(ctx context.Context, id uuid.UUID, accessToken string) error {
	if id == uuid.Nil {
		return fmt.Errorf("no valid UUID provided")
	}
	client, err := su.client(accessToken)
	if err != nil {
		return err
	}

	raw, _, err := client.From(ProfileTable).
		Delete("representation", "exact").
		Eq("id", id.String()).
		Execute()
	if err != nil {
		return fmt.Errorf("failed to delete profile: %v", err)
	}
	_, err = firstRow[Profile](raw)
	return err
}

// CountRows returns the exact row count of table visible to the caller.
func (su *SupabaseRepo) CountRows(ctx context.Context, table, accessToken string) (int64, error) {
	client, err := su.client(accessToken)
	if err != nil {
		return 0, err
	}
	_, count, err := client.From(table).Select("id", "exact", true).Execute()
	if err != nil {
		return 0, fmt.Errorf("failed to count %s: %v", table, err)
	}
	return count, nil
}
