package routes

import (
	"net/http"
	"time"

	"github.com/gin-contrib/cors"
	"github.com/gin-gonic/gin"
	"github.com/joshua-takyi/rentyclub/internal/container"
	"github.com/joshua-takyi/rentyclub/internal/handlers"
	"github.com/joshua-takyi/rentyclub/internal/middleware"
	"github.com/joshua-takyi/rentyclub/internal/models"
)

// SetupRoutes configures all routes with the dependency container
func SetupRoutes(c *container.Container) *gin.Engine {
	if c.Config.IsProduction() {
		gin.SetMode(gin.ReleaseMode)
	}
	secure := c.Config.IsProduction()

	r := gin.New()
	r.Use(cors.New(cors.Config{
		AllowOrigins:     c.Config.CORSOrigins,
		AllowMethods:     []string{"GET", "POST", "PUT", "DELETE", "OPTIONS", "PATCH"},
		AllowHeaders:     []string{"Origin", "Content-Type", "Authorization", "X-Request-ID"},
		ExposeHeaders:    []string{"Content-Length", "X-Request-ID"},
		AllowCredentials: true,
		MaxAge:           12 * time.Hour,
	}))

	r.Use(middleware.RequestID())
	r.Use(middleware.StructuredLogger(c.Logger))
	r.Use(middleware.ErrorHandler(c.Logger))
	r.Use(gin.Recovery())

	v1 := r.Group("/api/v1")
	v1.GET("/health", func(ctx *gin.Context) {
		ctx.JSON(http.StatusOK, gin.H{
			"status":  "OK",
			"service": "rentyclub-api",
		})
	})

	// public, with the caller attached when a session exists
	public := v1.Group("/")
	public.Use(c.Auth.Optional())
	{
		public.POST("/signup", handlers.SignUp(c.ProfilesService))
		public.POST("/login", handlers.Login(c.ProfilesService, secure))
		public.POST("/logout", handlers.Logout(c.ProfilesService, secure))

		public.GET("/spaces", handlers.ListSpaces(c.SpacesService))
		public.GET("/spaces/:id", handlers.GetSpace(c.SpacesService, secure))
		public.GET("/spaces/:id/quote", handlers.QuoteSpace(c.BookingsService))
		public.GET("/spaces/:id/availability", handlers.SpaceAvailability(c.BookingsService))
		public.GET("/spaces/:id/calendar", handlers.SpaceCalendar(c.BookingsService))

		public.GET("/events", handlers.ListEvents(c.EventsService))
		public.GET("/events/:id", handlers.GetEvent(c.EventsService))
		public.POST("/events/:id/registrations", handlers.RegisterForEvent(c.EventsService))
	}

	protected := v1.Group("/")
	protected.Use(c.Auth.Required())

	profile := protected.Group("/profile")
	{
		profile.GET("", handlers.GetProfile(c.ProfilesService))
		profile.PATCH("", handlers.UpdateProfile(c.ProfilesService))
		profile.POST("/avatar", handlers.UploadAvatar(c.ProfilesService))
		profile.PUT("/email", handlers.ChangeEmail(c.ProfilesService))
		profile.PUT("/password", handlers.ChangePassword(c.ProfilesService))
	}
	protected.GET("/dashboard", handlers.Dashboard(c.DashboardService))

	spaceRoutes := protected.Group("/spaces")
	{
		spaceRoutes.POST("", handlers.CreateSpace(c.SpacesService))
		spaceRoutes.GET("/mine", handlers.MySpaces(c.SpacesService))
		spaceRoutes.GET("/mine/stats", handlers.SpaceStats(c.SpacesService))
		spaceRoutes.PATCH("/:id", handlers.UpdateSpace(c.SpacesService))
		spaceRoutes.DELETE("/:id", handlers.DeleteSpace(c.SpacesService))
		spaceRoutes.GET("/:id/stats", handlers.SpaceStats(c.SpacesService))
		spaceRoutes.GET("/:id/views", handlers.SpaceViewHistory(c.SpacesService))
		spaceRoutes.POST("/:id/blackouts", handlers.CreateBlackout(c.BookingsService))
	}

	uploads := protected.Group("/uploads")
	{
		uploads.POST("/spaces", handlers.UploadSpacePhoto(c.SpacesService))
		uploads.POST("/events", handlers.UploadEventImage(c.EventsService))
	}

	bookingRoutes := protected.Group("/bookings")
	{
		bookingRoutes.POST("", handlers.CreateBooking(c.BookingsService))
		bookingRoutes.GET("/requests", handlers.ListBookingRequests(c.BookingsService))
		bookingRoutes.GET("/rentals", handlers.ListRentals(c.BookingsService))
		bookingRoutes.PATCH("/:id/status", handlers.UpdateBookingStatus(c.BookingsService))
	}
	protected.GET("/blackouts", handlers.ListBlackouts(c.BookingsService))
	protected.DELETE("/blackouts/:id", handlers.DeleteBlackout(c.BookingsService))

	eventRoutes := protected.Group("/events")
	{
		eventRoutes.POST("", handlers.CreateEvent(c.EventsService))
		eventRoutes.GET("/mine", handlers.MyEvents(c.EventsService))
		eventRoutes.GET("/registrations", handlers.OrganizerRegistrations(c.EventsService))
		eventRoutes.PATCH("/:id", handlers.UpdateEvent(c.EventsService))
		eventRoutes.DELETE("/:id", handlers.DeleteEvent(c.EventsService))
		eventRoutes.POST("/:id/inquiries", handlers.EventInquiry(c.MessagesService))
	}
	protected.GET("/registrations/mine", handlers.MyRegistrations(c.EventsService))
	protected.DELETE("/registrations/:id", handlers.CancelRegistration(c.EventsService))

	messageRoutes := protected.Group("/messages")
	{
		messageRoutes.GET("/threads", handlers.ListThreads(c.MessagesService))
		messageRoutes.POST("", handlers.SendMessage(c.MessagesService))
	}

	favRoutes := protected.Group("/favourites")
	{
		favRoutes.GET("", handlers.GetUserFavourites(c.FavouritesService))
		favRoutes.POST("/:id", handlers.AddToFavourites(c.FavouritesService))
		favRoutes.DELETE("/:id", handlers.RemoveFromFavourite(c.FavouritesService))
	}

	admin := protected.Group("/admin")
	admin.Use(middleware.RequireRole(models.RoleSuperAdmin))
	{
		admin.GET("/stats", handlers.AdminStats(c.AdminService))
		admin.GET("/users", handlers.AdminListUsers(c.AdminService))
		admin.POST("/users", handlers.AdminCreateUser(c.AdminService))
		admin.PATCH("/users/:id/role", handlers.AdminSetRole(c.AdminService))
		admin.DELETE("/users/:id", handlers.AdminDeleteUser(c.AdminService))
		admin.GET("/spaces", handlers.AdminListSpaces(c.AdminService))
		admin.GET("/bookings", handlers.AdminListBookings(c.AdminService))
		admin.GET("/events", handlers.AdminListEvents(c.AdminService))
		admin.GET("/registrations", handlers.AdminListRegistrations(c.AdminService))
	}

	return r
}
