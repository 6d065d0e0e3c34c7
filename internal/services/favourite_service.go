package services

import (
	"context"

	"github.com/google/uuid"
	"github.com/joshua-takyi/rentyclub/internal/apperrors"
	"github.com/joshua-takyi/rentyclub/internal/helpers"
	"github.com/joshua-takyi/rentyclub/internal/models"
)

type FavouriteService struct {
	favouritesRepo models.FavouriteRepo
	spacesRepo     models.SpacesRepo
	eventsRepo     models.EventsRepo
}

func NewFavouriteService(favouritesRepo models.FavouriteRepo, spacesRepo models.SpacesRepo, eventsRepo models.EventsRepo) *FavouriteService {
	return &FavouriteService{
		favouritesRepo: favouritesRepo,
		spacesRepo:     spacesRepo,
		eventsRepo:     eventsRepo,
	}
}

// AddToFavourites saves a space or event for the caller. The item must exist.
func (fs *FavouriteService) AddToFavourites(ctx context.Context, actor *helpers.EnhancedClaims, itemID uuid.UUID, req *models.FavouriteRequest) (*models.Favourite, error) {
	if err := requireActor(actor); err != nil {
		return nil, err
	}
	if err := validate(req); err != nil {
		return nil, err
	}
	if itemID == uuid.Nil {
		return nil, apperrors.InvalidInput("invalid item ID")
	}

	var err error
	switch req.ItemType {
	case models.FavouriteSpace:
		_, err = fs.spacesRepo.GetSpace(ctx, itemID)
	case models.FavouriteEvent:
		_, err = fs.eventsRepo.GetEvent(ctx, itemID)
	}
	if err != nil {
		return nil, repoErr(err, req.ItemType)
	}

	fav, err := fs.favouritesRepo.AddToFavourites(ctx, actor.UserID, itemID, req.ItemType)
	if err != nil {
		return nil, repoErr(err, "favourites")
	}
	return fav, nil
}

func (fs *FavouriteService) RemoveFromFavourites(ctx context.Context, actor *helpers.EnhancedClaims, itemID uuid.UUID) error {
	if err := requireActor(actor); err != nil {
		return err
	}
	if itemID == uuid.Nil {
		return apperrors.InvalidInput("invalid item ID")
	}
	return repoErr(fs.favouritesRepo.RemoveFromFavourites(ctx, actor.UserID, itemID), "favourite")
}

func (fs *FavouriteService) GetFavourites(ctx context.Context, actor *helpers.EnhancedClaims) (*models.Favourite, error) {
	if err := requireActor(actor); err != nil {
		return nil, err
	}
	fav, err := fs.favouritesRepo.GetFavourites(ctx, actor.UserID)
	if err != nil {
		return nil, repoErr(err, "favourites")
	}
	return fav, nil
}
