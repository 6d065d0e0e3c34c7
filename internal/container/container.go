package container

import (
	"log/slog"

	"github.com/cloudinary/cloudinary-go/v2"
	"github.com/go-redis/redis/v8"
	"github.com/joshua-takyi/rentyclub/internal/config"
	"github.com/joshua-takyi/rentyclub/internal/geocode"
	"github.com/joshua-takyi/rentyclub/internal/helpers"
	"github.com/joshua-takyi/rentyclub/internal/media"
	"github.com/joshua-takyi/rentyclub/internal/middleware"
	"github.com/joshua-takyi/rentyclub/internal/models"
	"github.com/joshua-takyi/rentyclub/internal/notify"
	"github.com/joshua-takyi/rentyclub/internal/services"
	"github.com/supabase-community/supabase-go"
	"go.mongodb.org/mongo-driver/mongo"
)

// Clients are the connections opened by main. Redis and Cloudinary are
// optional and may be nil.
type Clients struct {
	Supabase   *supabase.Client
	MongoDB    *mongo.Client
	Redis      *redis.Client
	Cloudinary *cloudinary.Cloudinary
}

// Container holds all application dependencies
type Container struct {
	Config    *config.Config
	Logger    *slog.Logger
	Publisher notify.Publisher
	Auth      *middleware.Authenticator

	ProfilesService   *services.ProfilesService
	SpacesService     *services.SpacesService
	BookingsService   *services.BookingsService
	EventsService     *services.EventsService
	MessagesService   *services.MessagesService
	FavouritesService *services.FavouriteService
	AdminService      *services.AdminService
	DashboardService  *services.DashboardService
}

// NewContainer creates a new dependency injection container
func NewContainer(cfg *config.Config, logger *slog.Logger, clients Clients, validator middleware.TokenValidator) *Container {
	supa := models.SupabaseNewRepo(clients.Supabase, cfg.SupabaseURL, cfg.SupabaseAnonKey)
	mongo := models.MongodbNewRepo(clients.MongoDB, cfg.MongoDBDatabase)

	geoOpts := []geocode.Option{}
	if clients.Redis != nil {
		geoOpts = append(geoOpts, geocode.WithCache(geocode.NewRedisCache(clients.Redis), geocode.DefaultCacheTTL))
	}
	geocoder := geocode.New(cfg.GeocoderURL, cfg.GeocoderUserAgent, logger, geoOpts...)

	publisher := newPublisher(cfg, logger)
	uploader := newUploader(cfg, clients.Cloudinary)
	maps := services.MapSettings{
		TileURL:     cfg.MapTileURL,
		Attribution: cfg.MapAttribution,
		Center:      models.Coordinates{Latitude: cfg.DefaultLat, Longitude: cfg.DefaultLng},
	}

	profiles := services.NewProfilesService(supa, uploader, logger)
	spaces := services.NewSpacesService(supa, mongo, geocoder, uploader, maps, logger)
	bookings := services.NewBookingsService(supa, supa, supa, mongo, publisher, logger, nil)
	events := services.NewEventsService(supa, geocoder, uploader, publisher, maps, logger, nil)

	return &Container{
		Config:    cfg,
		Logger:    logger,
		Publisher: publisher,
		Auth:      middleware.NewAuthenticator(validator, profiles, cfg.IsProduction(), logger),

		ProfilesService:   profiles,
		SpacesService:     spaces,
		BookingsService:   bookings,
		EventsService:     events,
		MessagesService:   services.NewMessagesService(supa, supa, publisher, logger),
		FavouritesService: services.NewFavouriteService(mongo, supa, supa),
		AdminService:      services.NewAdminService(supa, supa, supa, supa, profiles, logger),
		DashboardService:  services.NewDashboardService(profiles, spaces, bookings, events),
	}
}

// newPublisher falls back to a no-op publisher when Kafka is not configured.
func newPublisher(cfg *config.Config, logger *slog.Logger) notify.Publisher {
	if len(cfg.KafkaBrokers) == 0 {
		logger.Info("Kafka not configured, domain events disabled")
		return notify.NopPublisher{}
	}
	p, err := notify.NewKafkaPublisher(cfg.KafkaBrokers, cfg.KafkaTopic, logger)
	if err != nil {
		logger.Warn("Kafka publisher unavailable, domain events disabled", "error", err)
		return notify.NopPublisher{}
	}
	return p
}

func newUploader(cfg *config.Config, cld *cloudinary.Cloudinary) media.Uploader {
	if cfg.MediaBackend == config.MediaCloudinary && cld != nil {
		return media.NewCloudinaryUploader(cld)
	}
	return media.NewSupabaseStorage(cfg.SupabaseURL, cfg.SupabaseAnonKey, cfg.StorageBucket)
}

var _ middleware.TokenValidator = (*helpers.TokenValidator)(nil)
