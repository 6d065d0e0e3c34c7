package services

import (
	"context"
	"errors"
	"fmt"
	"io"
	"log/slog"
	"strings"
	"time"

	"github.com/google/uuid"
	"github.com/joshua-takyi/rentyclub/internal/apperrors"
	"github.com/joshua-takyi/rentyclub/internal/helpers"
	"github.com/joshua-takyi/rentyclub/internal/media"
	"github.com/joshua-takyi/rentyclub/internal/models"
)

type SpacesService struct {
	spacesRepo models.SpacesRepo
	viewsRepo  models.SpaceViewsRepo
	geocoder   Geocoder
	uploader   media.Uploader
	maps       MapSettings
	logger     *slog.Logger
}

func NewSpacesService(spacesRepo models.SpacesRepo, viewsRepo models.SpaceViewsRepo, geocoder Geocoder, uploader media.Uploader, maps MapSettings, logger *slog.Logger) *SpacesService {
	return &SpacesService{
		spacesRepo: spacesRepo,
		viewsRepo:  viewsRepo,
		geocoder:   geocoder,
		uploader:   uploader,
		maps:       maps,
		logger:     logger,
	}
}

// ViewMeta identifies who looked at a space, for view analytics.
type ViewMeta struct {
	UserID    *uuid.UUID
	SessionID string
	IPAddress string
	UserAgent string
}

func (ss *SpacesService) ListSpaces(ctx context.Context, filter models.SpaceFilter) ([]*models.Space, int, error) {
	offset, limit, err := pageBounds(filter.Offset, filter.Limit)
	if err != nil {
		return nil, 0, err
	}
	filter.Offset, filter.Limit = offset, limit

	spaces, total, err := ss.spacesRepo.ListSpaces(ctx, filter)
	if err != nil {
		return nil, 0, repoErr(err, "spaces")
	}
	return spaces, total, nil
}

func (ss *SpacesService) MySpaces(ctx context.Context, actor *helpers.EnhancedClaims) ([]*models.Space, error) {
	if err := requireActor(actor); err != nil {
		return nil, err
	}
	spaces, _, err := ss.spacesRepo.ListSpaces(ctx, models.SpaceFilter{OwnerID: actor.UserID})
	if err != nil {
		return nil, repoErr(err, "spaces")
	}
	return spaces, nil
}

func (ss *SpacesService) getSpace(ctx context.Context, id uuid.UUID) (*models.Space, error) {
	if id == uuid.Nil {
		return nil, apperrors.InvalidInput("invalid space ID")
	}
	space, err := ss.spacesRepo.GetSpace(ctx, id)
	if err != nil {
		return nil, repoErr(err, "space")
	}
	return space, nil
}

// GetSpace returns the detail payload and records the view.
func (ss *SpacesService) GetSpace(ctx context.Context, id uuid.UUID, viewer ViewMeta) (*models.SpaceDetail, error) {
	space, err := ss.getSpace(ctx, id)
	if err != nil {
		return nil, err
	}

	ss.recordView(ctx, space, viewer)

	return &models.SpaceDetail{
		Space:   space,
		Gallery: space.Gallery(),
		Map:     ss.maps.ViewFor(space.Coordinates()),
	}, nil
}

func (ss *SpacesService) recordView(ctx context.Context, space *models.Space, viewer ViewMeta) {
	if ss.viewsRepo == nil || viewer.SessionID == "" {
		return
	}
	// The owner browsing their own listing is not a view.
	if viewer.UserID != nil && *viewer.UserID == space.OwnerID {
		return
	}
	view := &models.SpaceView{
		SpaceID:   space.ID.String(),
		OwnerID:   space.OwnerID.String(),
		SessionID: viewer.SessionID,
		IPAddress: viewer.IPAddress,
		UserAgent: viewer.UserAgent,
	}
	if viewer.UserID != nil {
		uid := viewer.UserID.String()
		view.UserID = &uid
	}
	if err := ss.viewsRepo.TrackSpaceView(ctx, view); err != nil {
		ss.logger.Warn("failed to track space view", "space_id", space.ID, "error", err)
	}
}

func (ss *SpacesService) CreateSpace(ctx context.Context, actor *helpers.EnhancedClaims, in *models.SpaceInput) (*models.Space, error) {
	if err := requireActor(actor); err != nil {
		return nil, err
	}
	if err := validate(in); err != nil {
		return nil, err
	}

	photos := in.Photos()
	if len(photos) == 0 {
		return nil, apperrors.Validation("at least one photo is required", map[string]any{"fields": map[string]string{"images": "required"}})
	}
	if len(photos) > models.MaxSpacePhotos {
		return nil, apperrors.Validation("too many photos", map[string]any{"max": models.MaxSpacePhotos})
	}

	spaceType := strings.TrimSpace(in.Type)
	if spaceType == "" {
		spaceType = models.DefaultSpaceType
	}
	location := strings.TrimSpace(in.Location)
	coords := locate(ctx, ss.geocoder, location, in.Lat, in.Lng, ss.maps.Center)

	space := &models.Space{
		ID:          uuid.New(),
		OwnerID:     actor.UserID,
		Title:       strings.TrimSpace(in.Title),
		Price:       in.Price,
		Type:        spaceType,
		Size:        in.Size,
		Location:    location,
		Image:       photos[0],
		Images:      photos,
		Description: in.Description,
		Lat:         coords.Latitude,
		Lng:         coords.Longitude,
		Amenities:   models.NormalizeAmenities(in.Amenities),
	}

	created, err := ss.spacesRepo.CreateSpace(ctx, space, actor.AccessToken)
	if err != nil {
		return nil, repoErr(err, "space")
	}
	ss.logger.Info("space created", "space_id", created.ID, "owner_id", actor.UserID)
	return created, nil
}

func (ss *SpacesService) UpdateSpace(ctx context.Context, actor *helpers.EnhancedClaims, id uuid.UUID, upd *models.SpaceUpdate) (*models.Space, error) {
	if err := requireActor(actor); err != nil {
		return nil, err
	}
	if err := validate(upd); err != nil {
		return nil, err
	}
	space, err := ss.getSpace(ctx, id)
	if err != nil {
		return nil, err
	}
	if !actor.CanManage(space.OwnerID) {
		return nil, apperrors.Forbidden("you can only edit your own spaces")
	}

	fields := upd.Fields()
	if upd.Location != nil && strings.TrimSpace(*upd.Location) != space.Location && (upd.Lat == nil || upd.Lng == nil) {
		coords := locate(ctx, ss.geocoder, strings.TrimSpace(*upd.Location), nil, nil, space.Coordinates())
		fields["lat"] = coords.Latitude
		fields["lng"] = coords.Longitude
	}
	if len(fields) == 0 {
		return nil, apperrors.InvalidInput("no fields to update")
	}

	updated, err := ss.spacesRepo.UpdateSpace(ctx, id, fields, actor.AccessToken)
	if err != nil {
		return nil, repoErr(err, "space")
	}
	return updated, nil
}

func (ss *SpacesService) DeleteSpace(ctx context.Context, actor *helpers.EnhancedClaims, id uuid.UUID) error {
	if err := requireActor(actor); err != nil {
		return err
	}
	space, err := ss.getSpace(ctx, id)
	if err != nil {
		return err
	}
	if !actor.CanManage(space.OwnerID) {
		return apperrors.Forbidden("you can only delete your own spaces")
	}
	if err := ss.spacesRepo.DeleteSpace(ctx, id, actor.AccessToken); err != nil {
		return repoErr(err, "space")
	}
	ss.logger.Info("space deleted", "space_id", id, "by", actor.UserID)
	return nil
}

// SpaceStats returns view analytics for one space, or for all of the
// caller's spaces when id is nil.
func (ss *SpacesService) SpaceStats(ctx context.Context, actor *helpers.EnhancedClaims, id uuid.UUID) (*models.ViewStats, error) {
	if err := requireActor(actor); err != nil {
		return nil, err
	}
	if ss.viewsRepo == nil {
		return nil, apperrors.Unavailable("analytics are not configured", nil)
	}
	if id == uuid.Nil {
		stats, err := ss.viewsRepo.GetOwnerViewStats(ctx, actor.UserID.String())
		if err != nil {
			return nil, repoErr(err, "view stats")
		}
		return stats, nil
	}

	space, err := ss.getSpace(ctx, id)
	if err != nil {
		return nil, err
	}
	if !actor.CanManage(space.OwnerID) {
		return nil, apperrors.Forbidden("you can only see stats of your own spaces")
	}
	stats, err := ss.viewsRepo.GetSpaceViewStats(ctx, id.String())
	if err != nil {
		return nil, repoErr(err, "view stats")
	}
	return stats, nil
}

const maxViewHistory = 100

// ViewHistory lists the most recent tracked views of a space, newest first.
func (ss *SpacesService) ViewHistory(ctx context.Context, actor *helpers.EnhancedClaims, id uuid.UUID, limit int) ([]*models.SpaceView, error) {
	if err := requireActor(actor); err != nil {
		return nil, err
	}
	if ss.viewsRepo == nil {
		return nil, apperrors.Unavailable("analytics are not configured", nil)
	}
	if limit <= 0 {
		limit = 20
	}
	if limit > maxViewHistory {
		return nil, apperrors.InvalidInput(fmt.Sprintf("limit must be at most %d", maxViewHistory))
	}
	space, err := ss.getSpace(ctx, id)
	if err != nil {
		return nil, err
	}
	if !actor.CanManage(space.OwnerID) {
		return nil, apperrors.Forbidden("you can only see stats of your own spaces")
	}
	views, err := ss.viewsRepo.GetSpaceViewHistory(ctx, id.String(), limit)
	if err != nil {
		return nil, repoErr(err, "view history")
	}
	return views, nil
}

// UploadPhoto stores one listing photo and returns its public URL.
func (ss *SpacesService) UploadPhoto(ctx context.Context, actor *helpers.EnhancedClaims, filename, contentType string, body io.Reader) (string, error) {
	if err := requireActor(actor); err != nil {
		return "", err
	}
	return upload(ctx, ss.uploader, media.Object{
		Folder:      media.SpacesFolder + "/" + actor.UserID.String(),
		Filename:    filename,
		ContentType: contentType,
		Body:        body,
		AccessToken: actor.AccessToken,
	})
}

const uploadTimeout = 30 * time.Second

func upload(ctx context.Context, u media.Uploader, obj media.Object) (string, error) {
	if u == nil {
		return "", apperrors.Unavailable("uploads are not configured", nil)
	}
	ctx, cancel := context.WithTimeout(ctx, uploadTimeout)
	defer cancel()

	url, err := u.Upload(ctx, obj)
	if err != nil {
		if errors.Is(err, media.ErrUnsupportedType) {
			return "", apperrors.InvalidInput(err.Error())
		}
		return "", apperrors.Unavailable("failed to upload image", err)
	}
	return url, nil
}
