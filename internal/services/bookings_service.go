package services

import (
	"context"
	"errors"
	"log/slog"
	"time"

	"github.com/google/uuid"
	"github.com/joshua-takyi/rentyclub/internal/apperrors"
	"github.com/joshua-takyi/rentyclub/internal/helpers"
	"github.com/joshua-takyi/rentyclub/internal/models"
	"github.com/joshua-takyi/rentyclub/internal/notify"
)

const maxAvailabilityWindow = 366

type BookingsService struct {
	bookingsRepo  models.BookingsRepo
	blackoutsRepo models.BlackoutsRepo
	spacesRepo    models.SpacesRepo
	locks         models.LockRepo
	publisher     notify.Publisher
	logger        *slog.Logger
	now           Clock
}

func NewBookingsService(
	bookingsRepo models.BookingsRepo,
	blackoutsRepo models.BlackoutsRepo,
	spacesRepo models.SpacesRepo,
	locks models.LockRepo,
	publisher notify.Publisher,
	logger *slog.Logger,
	now Clock,
) *BookingsService {
	if now == nil {
		now = time.Now
	}
	if publisher == nil {
		publisher = notify.NopPublisher{}
	}
	return &BookingsService{
		bookingsRepo:  bookingsRepo,
		blackoutsRepo: blackoutsRepo,
		spacesRepo:    spacesRepo,
		locks:         locks,
		publisher:     publisher,
		logger:        logger,
		now:           now,
	}
}

// AvailabilityView is the calendar payload for one space.
type AvailabilityView struct {
	SpaceID       uuid.UUID          `json:"space_id"`
	From          models.Date        `json:"from"`
	To            models.Date        `json:"to"`
	Today         models.Date        `json:"today"`
	Committed     []models.DateRange `json:"committed"`
	DisabledDates []models.Date      `json:"disabled_dates"`
}

type BlackoutInput struct {
	StartDate models.Date `json:"start_date"`
	EndDate   models.Date `json:"end_date"`
	Reason    string      `json:"reason" validate:"max=200"`
}

func (bs *BookingsService) space(ctx context.Context, id uuid.UUID) (*models.Space, error) {
	if id == uuid.Nil {
		return nil, apperrors.InvalidInput("invalid space ID")
	}
	s, err := bs.spacesRepo.GetSpace(ctx, id)
	if err != nil {
		return nil, repoErr(err, "space")
	}
	return s, nil
}

// availability loads every committed range of a space: approved and legacy
// blocked bookings plus blackouts.
func (bs *BookingsService) availability(ctx context.Context, spaceID uuid.UUID) (models.Availability, error) {
	bookings, err := bs.bookingsRepo.CommittedBookings(ctx, spaceID)
	if err != nil {
		return models.Availability{}, repoErr(err, "bookings")
	}
	blackouts, err := bs.blackoutsRepo.SpaceBlackouts(ctx, spaceID)
	if err != nil {
		return models.Availability{}, repoErr(err, "blackouts")
	}
	return models.BuildAvailability(bookings, blackouts), nil
}

func (bs *BookingsService) calculator(ctx context.Context, space *models.Space) (models.Calculator, error) {
	avail, err := bs.availability(ctx, space.ID)
	if err != nil {
		return models.Calculator{}, err
	}
	return models.Calculator{
		PricePerDay:  space.Price,
		Availability: avail,
		Today:        today(bs.now),
	}, nil
}

// withSpaceLock runs fn while holding the space's advisory lock.
func (bs *BookingsService) withSpaceLock(ctx context.Context, spaceID uuid.UUID, fn func() error) error {
	release, err := bs.locks.AcquireSpaceLock(ctx, spaceID)
	if errors.Is(err, models.ErrLockHeld) {
		return apperrors.Conflict("another booking for this space is being processed, try again")
	}
	if err != nil {
		return apperrors.Unavailable("failed to lock space", err)
	}
	defer release(context.WithoutCancel(ctx))
	return fn()
}

// Quote prices a candidate stay against the space's current calendar.
func (bs *BookingsService) Quote(ctx context.Context, spaceID uuid.UUID, start, end models.Date) (*models.Quote, error) {
	space, err := bs.space(ctx, spaceID)
	if err != nil {
		return nil, err
	}
	calc, err := bs.calculator(ctx, space)
	if err != nil {
		return nil, err
	}
	q, err := calc.Quote(start, end)
	if err != nil {
		return nil, quoteErr(err)
	}
	return q, nil
}

// Availability returns the committed ranges and disabled dates in a window.
// Days before today are always disabled for selection, but only committed
// days are listed.
func (bs *BookingsService) Availability(ctx context.Context, spaceID uuid.UUID, window models.DateRange) (*AvailabilityView, error) {
	if _, err := bs.space(ctx, spaceID); err != nil {
		return nil, err
	}
	now := today(bs.now)
	if window.From.IsZero() {
		window.From = now
	}
	if window.To.IsZero() {
		window.To = window.From.AddDays(89)
	}
	if !window.Valid() {
		return nil, apperrors.Validation(models.ErrInvalidDateRange.Error(), nil)
	}
	if window.Days() > maxAvailabilityWindow {
		return nil, apperrors.InvalidInput("availability window is limited to one year")
	}

	avail, err := bs.availability(ctx, spaceID)
	if err != nil {
		return nil, err
	}
	committed := []models.DateRange{}
	for _, r := range avail.Committed {
		if r.Overlaps(window) {
			committed = append(committed, r)
		}
	}
	return &AvailabilityView{
		SpaceID:       spaceID,
		From:          window.From,
		To:            window.To,
		Today:         now,
		Committed:     committed,
		DisabledDates: avail.DisabledDates(window),
	}, nil
}

// MonthCalendar flags every day of a month that is already committed.
func (bs *BookingsService) MonthCalendar(ctx context.Context, spaceID uuid.UUID, year int, month time.Month) (map[int]bool, error) {
	if month < time.January || month > time.December {
		return nil, apperrors.InvalidInput("month must be between 1 and 12")
	}
	if _, err := bs.space(ctx, spaceID); err != nil {
		return nil, err
	}
	avail, err := bs.availability(ctx, spaceID)
	if err != nil {
		return nil, err
	}
	return avail.CalendarSnapshot(year, month), nil
}

// CreateBooking prices the request on the server and inserts it as pending.
// Overlap is checked under the space lock, so two concurrent requests for
// the same dates cannot both get through.
func (bs *BookingsService) CreateBooking(ctx context.Context, actor *helpers.EnhancedClaims, req *models.BookingRequest) (*models.Booking, error) {
	if err := requireActor(actor); err != nil {
		return nil, err
	}
	if err := validate(req); err != nil {
		return nil, err
	}
	space, err := bs.space(ctx, req.SpaceID)
	if err != nil {
		return nil, err
	}
	if space.OwnerID == actor.UserID {
		return nil, apperrors.Forbidden("you cannot book your own space")
	}

	var created *models.Booking
	err = bs.withSpaceLock(ctx, space.ID, func() error {
		calc, err := bs.calculator(ctx, space)
		if err != nil {
			return err
		}
		quote, err := calc.Quote(req.StartDate, req.EndDate)
		if err != nil {
			return quoteErr(err)
		}

		booking := &models.Booking{
			ID:       uuid.New(),
			SpaceID:  space.ID,
			RenterID: actor.UserID,
			OwnerID:  space.OwnerID,
			Status:   models.BookingPending,
		}
		booking.ApplyQuote(quote)

		created, err = bs.bookingsRepo.CreateBooking(ctx, booking, actor.AccessToken)
		return repoErr(err, "booking")
	})
	if err != nil {
		return nil, err
	}

	bs.logger.Info("booking requested",
		"booking_id", created.ID,
		"space_id", created.SpaceID,
		"renter_id", created.RenterID,
		"total", created.TotalPrice,
	)
	notify.PublishLogged(ctx, bs.publisher, bs.logger, notify.Event{
		Type:    notify.BookingRequested,
		Key:     created.SpaceID.String(),
		Payload: created,
	})
	return created, nil
}

// ListRequests is the owner's inbox of booking requests.
func (bs *BookingsService) ListRequests(ctx context.Context, actor *helpers.EnhancedClaims) ([]*models.Booking, error) {
	if err := requireActor(actor); err != nil {
		return nil, err
	}
	rows, err := bs.bookingsRepo.ListOwnerBookings(ctx, actor.UserID, actor.AccessToken)
	if err != nil {
		return nil, repoErr(err, "bookings")
	}
	return rows, nil
}

func (bs *BookingsService) ListRentals(ctx context.Context, actor *helpers.EnhancedClaims) ([]*models.Booking, error) {
	if err := requireActor(actor); err != nil {
		return nil, err
	}
	rows, err := bs.bookingsRepo.ListRenterBookings(ctx, actor.UserID, actor.AccessToken)
	if err != nil {
		return nil, repoErr(err, "bookings")
	}
	return rows, nil
}

// UpdateStatus moves a booking through the lifecycle. Only the space owner
// or a super_admin may do it. Every transition runs under the space lock and
// only writes if the row still holds the status the guard checked.
func (bs *BookingsService) UpdateStatus(ctx context.Context, actor *helpers.EnhancedClaims, id uuid.UUID, to models.BookingStatus) (*models.Booking, error) {
	if err := requireActor(actor); err != nil {
		return nil, err
	}
	if !to.Valid() {
		return nil, apperrors.InvalidInput(models.ErrUnknownStatus.Error())
	}

	booking, err := bs.bookingsRepo.GetBooking(ctx, id, actor.AccessToken)
	if err != nil {
		return nil, repoErr(err, "booking")
	}
	if !actor.CanManage(booking.OwnerID) {
		return nil, apperrors.Forbidden("only the space owner can change this booking")
	}

	var (
		updated *models.Booking
		from    models.BookingStatus
	)
	err = bs.withSpaceLock(ctx, booking.SpaceID, func() error {
		current, err := bs.bookingsRepo.GetBooking(ctx, id, actor.AccessToken)
		if err != nil {
			return repoErr(err, "booking")
		}
		from = current.Status
		if !models.CanTransition(from, to) {
			return apperrors.InvalidTransition(string(from), string(to))
		}
		if to == models.BookingApproved {
			avail, err := bs.availability(ctx, current.SpaceID)
			if err != nil {
				return err
			}
			if _, taken := avail.Conflict(current.Range()); taken {
				return apperrors.Conflict(models.ErrDatesUnavailable.Error())
			}
		}
		updated, err = bs.bookingsRepo.UpdateBookingStatus(ctx, id, from, to, actor.AccessToken)
		if errors.Is(err, models.ErrStaleStatus) {
			return apperrors.Conflict("booking status changed, reload and try again")
		}
		return repoErr(err, "booking")
	})
	if err != nil {
		return nil, err
	}

	bs.logger.Info("booking status changed", "booking_id", id, "from", from, "to", to, "by", actor.UserID)
	notify.PublishLogged(ctx, bs.publisher, bs.logger, notify.Event{
		Type: notify.BookingStatusChanged,
		Key:  booking.SpaceID.String(),
		Payload: map[string]any{
			"booking_id": id,
			"space_id":   booking.SpaceID,
			"renter_id":  booking.RenterID,
			"from":       from,
			"to":         to,
		},
	})
	return updated, nil
}

// CreateBlackout takes a range of the space off the calendar. It may not
// cover dates already committed to a booking or another blackout.
func (bs *BookingsService) CreateBlackout(ctx context.Context, actor *helpers.EnhancedClaims, spaceID uuid.UUID, in *BlackoutInput) (*models.Blackout, error) {
	if err := requireActor(actor); err != nil {
		return nil, err
	}
	if err := validate(in); err != nil {
		return nil, err
	}
	space, err := bs.space(ctx, spaceID)
	if err != nil {
		return nil, err
	}
	if !actor.CanManage(space.OwnerID) {
		return nil, apperrors.Forbidden("you can only block dates of your own spaces")
	}

	r := models.DateRange{From: in.StartDate, To: in.EndDate}
	if !r.Valid() {
		return nil, apperrors.Validation(models.ErrInvalidDateRange.Error(), nil)
	}
	if r.To.Before(today(bs.now)) {
		return nil, apperrors.Validation(models.ErrDateInPast.Error(), nil)
	}

	var created *models.Blackout
	err = bs.withSpaceLock(ctx, spaceID, func() error {
		avail, err := bs.availability(ctx, spaceID)
		if err != nil {
			return err
		}
		if _, taken := avail.Conflict(r); taken {
			return apperrors.Conflict(models.ErrDatesUnavailable.Error())
		}
		created, err = bs.blackoutsRepo.CreateBlackout(ctx, &models.Blackout{
			ID:        uuid.New(),
			SpaceID:   spaceID,
			OwnerID:   space.OwnerID,
			StartDate: r.From,
			EndDate:   r.To,
			Reason:    in.Reason,
		}, actor.AccessToken)
		return repoErr(err, "blackout")
	})
	if err != nil {
		return nil, err
	}
	return created, nil
}

func (bs *BookingsService) ListBlackouts(ctx context.Context, actor *helpers.EnhancedClaims) ([]*models.Blackout, error) {
	if err := requireActor(actor); err != nil {
		return nil, err
	}
	rows, err := bs.blackoutsRepo.ListOwnerBlackouts(ctx, actor.UserID, actor.AccessToken)
	if err != nil {
		return nil, repoErr(err, "blackouts")
	}
	return rows, nil
}

func (bs *BookingsService) DeleteBlackout(ctx context.Context, actor *helpers.EnhancedClaims, id uuid.UUID) error {
	if err := requireActor(actor); err != nil {
		return err
	}
	b, err := bs.blackoutsRepo.GetBlackout(ctx, id, actor.AccessToken)
	if err != nil {
		return repoErr(err, "blackout")
	}
	if !actor.CanManage(b.OwnerID) {
		return apperrors.Forbidden("you can only release your own blackouts")
	}
	return repoErr(bs.blackoutsRepo.DeleteBlackout(ctx, id, actor.AccessToken), "blackout")
}

// ListAll is the admin view of every booking.
func (bs *BookingsService) ListAll(ctx context.Context, actor *helpers.EnhancedClaims, offset, limit int) ([]*models.Booking, int, error) {
	if err := requireAdmin(actor); err != nil {
		return nil, 0, err
	}
	offset, limit, err := pageBounds(offset, limit)
	if err != nil {
		return nil, 0, err
	}
	rows, total, err := bs.bookingsRepo.ListAllBookings(ctx, offset, limit, actor.AccessToken)
	if err != nil {
		return nil, 0, repoErr(err, "bookings")
	}
	return rows, total, nil
}
