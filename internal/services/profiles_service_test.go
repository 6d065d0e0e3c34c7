package services

import (
	"context"
	"errors"
	"net/http"
	"strings"
	"testing"

	"github.com/google/uuid"
	"github.com/joshua-takyi/rentyclub/internal/apperrors"
	"github.com/joshua-takyi/rentyclub/internal/media"
	"github.com/joshua-takyi/rentyclub/internal/models"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

const strongPassword = "Str0ng!pass"

func TestSignUp(t *testing.T) {
	repo := newFakeProfiles()
	svc := NewProfilesService(repo, nil, discardLogger())

	p, err := svc.SignUp(context.Background(), &models.SignupRequest{
		Email: " Ana@Example.com ", Password: strongPassword, FullName: " Ana ",
	})
	require.NoError(t, err)
	assert.Equal(t, "ana@example.com", p.Email)
	assert.Equal(t, "Ana", p.FullName)
	assert.Equal(t, models.RoleUser, p.Role)
	assert.Equal(t, models.DefaultAvatarPos, p.AvatarPos)
	assert.Contains(t, repo.profiles, p.ID)
}

func TestSignUp_Rejections(t *testing.T) {
	repo := newFakeProfiles()
	svc := NewProfilesService(repo, nil, discardLogger())
	ctx := context.Background()

	_, err := svc.SignUp(ctx, &models.SignupRequest{Email: "a@example.com", Password: "password1"})
	requireAppError(t, err, apperrors.CodeValidation, http.StatusUnprocessableEntity)

	_, err = svc.SignUp(ctx, &models.SignupRequest{Email: "not-an-email", Password: strongPassword})
	requireAppError(t, err, apperrors.CodeValidation, http.StatusUnprocessableEntity)

	repo.signErr = models.ErrEmailTaken
	_, err = svc.SignUp(ctx, &models.SignupRequest{Email: "a@example.com", Password: strongPassword})
	requireAppError(t, err, apperrors.CodeConflict, http.StatusConflict)
}

func TestLogin(t *testing.T) {
	id := uuid.New()
	repo := newFakeProfiles()
	repo.password = strongPassword
	repo.sessions["ana@example.com"] = &models.AuthSession{AccessToken: "at", RefreshToken: "rt", UserID: id, Email: "ana@example.com"}
	svc := NewProfilesService(repo, nil, discardLogger())
	ctx := context.Background()

	session, err := svc.Login(ctx, &models.LoginRequest{Email: "ANA@example.com", Password: strongPassword})
	require.NoError(t, err)
	assert.Equal(t, "at", session.AccessToken)
	// a missing profile row is created on first login
	assert.Contains(t, repo.profiles, id)

	_, err = svc.Login(ctx, &models.LoginRequest{Email: "ana@example.com", Password: "wrong"})
	requireAppError(t, err, apperrors.CodeUnauthorized, http.StatusUnauthorized)
	assert.Equal(t, "incorrect email or password", apperrors.As(err).Message)

	refreshed, err := svc.Refresh(ctx, "rt")
	require.NoError(t, err)
	assert.Equal(t, id, refreshed.UserID)

	_, err = svc.Refresh(ctx, "")
	requireAppError(t, err, apperrors.CodeUnauthorized, http.StatusUnauthorized)
}

func TestChangePassword(t *testing.T) {
	repo := newFakeProfiles()
	svc := NewProfilesService(repo, nil, discardLogger())
	actor := actorFor(uuid.New(), models.RoleUser)
	ctx := context.Background()

	err := svc.ChangePassword(ctx, actor, &models.PasswordChange{New: strongPassword, Confirm: "Different1!"})
	requireAppError(t, err, apperrors.CodeValidation, http.StatusUnprocessableEntity)

	err = svc.ChangePassword(ctx, actor, &models.PasswordChange{New: "weakpassword", Confirm: "weakpassword"})
	requireAppError(t, err, apperrors.CodeValidation, http.StatusUnprocessableEntity)

	require.NoError(t, svc.ChangePassword(ctx, actor, &models.PasswordChange{New: strongPassword, Confirm: strongPassword}))
	assert.Equal(t, strongPassword, repo.password)
}

func TestUpdateProfileAndAvatar(t *testing.T) {
	id := uuid.New()
	repo := newFakeProfiles(&models.Profile{ID: id, Email: "a@example.com", Role: models.RoleUser})
	up := &stubUploader{}
	svc := NewProfilesService(repo, up, discardLogger())
	actor := actorFor(id, models.RoleUser)
	ctx := context.Background()

	name := "Ana Pérez"
	p, err := svc.UpdateProfile(ctx, actor, &models.ProfileUpdate{FullName: &name})
	require.NoError(t, err)
	assert.Equal(t, name, p.FullName)

	_, err = svc.UpdateProfile(ctx, actor, &models.ProfileUpdate{})
	requireAppError(t, err, apperrors.CodeInvalidInput, http.StatusBadRequest)

	p, err = svc.UploadAvatar(ctx, actor, "me.png", "image/png", strings.NewReader("png"))
	require.NoError(t, err)
	require.Len(t, up.objects, 1)
	assert.Equal(t, media.AvatarFolder+"/"+id.String(), up.objects[0].Folder)
	assert.Equal(t, p.AvatarURL, "https://cdn.example.com/"+up.objects[0].Folder+"/me.png")
}

func TestUploadErrors(t *testing.T) {
	actor := actorFor(uuid.New(), models.RoleUser)
	ctx := context.Background()

	svc := NewProfilesService(newFakeProfiles(), &stubUploader{err: media.ErrUnsupportedType}, discardLogger())
	_, err := svc.UploadAvatar(ctx, actor, "doc.pdf", "application/pdf", strings.NewReader("x"))
	requireAppError(t, err, apperrors.CodeInvalidInput, http.StatusBadRequest)

	svc = NewProfilesService(newFakeProfiles(), &stubUploader{err: errors.New("boom")}, discardLogger())
	_, err = svc.UploadAvatar(ctx, actor, "a.png", "image/png", strings.NewReader("x"))
	requireAppError(t, err, apperrors.CodeUnavailable, http.StatusServiceUnavailable)

	svc = NewProfilesService(newFakeProfiles(), nil, discardLogger())
	_, err = svc.UploadAvatar(ctx, actor, "a.png", "image/png", strings.NewReader("x"))
	requireAppError(t, err, apperrors.CodeUnavailable, http.StatusServiceUnavailable)
}
