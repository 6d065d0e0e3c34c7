package services

import (
	"context"
	"encoding/json"
	"net/http"
	"testing"
	"time"

	"github.com/google/uuid"
	"github.com/joshua-takyi/rentyclub/internal/apperrors"
	"github.com/joshua-takyi/rentyclub/internal/models"
	"github.com/joshua-takyi/rentyclub/internal/notify"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type bookingsFixture struct {
	svc       *BookingsService
	bookings  *fakeBookings
	blackouts *fakeBlackouts
	locks     *fakeLocks
	pub       *recordingPublisher
	space     *models.Space
	ownerID   uuid.UUID
	renterID  uuid.UUID
}

func newBookingsFixture(t *testing.T) *bookingsFixture {
	t.Helper()
	f := &bookingsFixture{
		bookings:  newFakeBookings(),
		blackouts: newFakeBlackouts(),
		locks:     newFakeLocks(),
		pub:       &recordingPublisher{},
		ownerID:   uuid.New(),
		renterID:  uuid.New(),
	}
	f.space = &models.Space{ID: uuid.New(), OwnerID: f.ownerID, Title: "Local Palermo", Price: 1000}
	f.svc = NewBookingsService(f.bookings, f.blackouts, newFakeSpaces(f.space), f.locks, f.pub, discardLogger(), testNow)
	return f
}

func (f *bookingsFixture) approved(start, end models.Date) *models.Booking {
	b := &models.Booking{
		ID: uuid.New(), SpaceID: f.space.ID, OwnerID: f.ownerID, RenterID: uuid.New(),
		StartDate: start, EndDate: end, Status: models.BookingApproved,
	}
	f.bookings.bookings[b.ID] = b
	return b
}

func requireAppError(t *testing.T, err error, code string, status int) {
	t.Helper()
	require.Error(t, err)
	appErr := apperrors.As(err)
	assert.Equal(t, code, appErr.Code, appErr.Message)
	assert.Equal(t, status, appErr.StatusCode())
}

func TestCreateBooking_IgnoresClientTotal(t *testing.T) {
	f := newBookingsFixture(t)

	body := `{"space_id":"` + f.space.ID.String() + `","start_date":"2026-03-02","end_date":"2026-03-08","total_price":1}`
	var req models.BookingRequest
	require.NoError(t, json.Unmarshal([]byte(body), &req))

	b, err := f.svc.CreateBooking(context.Background(), actorFor(f.renterID, models.RoleUser), &req)
	require.NoError(t, err)

	assert.Equal(t, models.BookingPending, b.Status)
	assert.Equal(t, f.ownerID, b.OwnerID)
	assert.Equal(t, f.renterID, b.RenterID)
	assert.Equal(t, 7, b.Days)
	assert.InDelta(t, 6545.0, b.TotalPrice, 1e-9)
	assert.False(t, f.locks.isHeld(f.space.ID), "lock must be released")
	assert.Equal(t, []string{notify.BookingRequested}, f.pub.types())
}

func TestCreateBooking_OverlapIsConflict(t *testing.T) {
	f := newBookingsFixture(t)
	f.approved(testToday.AddDays(5), testToday.AddDays(7))

	_, err := f.svc.CreateBooking(context.Background(), actorFor(f.renterID, models.RoleUser), &models.BookingRequest{
		SpaceID:   f.space.ID,
		StartDate: testToday.AddDays(7),
		EndDate:   testToday.AddDays(9),
	})
	requireAppError(t, err, apperrors.CodeConflict, http.StatusConflict)
	assert.Len(t, f.bookings.bookings, 1)
}

func TestCreateBooking_BlackoutIsConflict(t *testing.T) {
	f := newBookingsFixture(t)
	f.blackouts.blackouts[uuid.New()] = &models.Blackout{SpaceID: f.space.ID, StartDate: testToday.AddDays(1), EndDate: testToday.AddDays(1)}

	_, err := f.svc.CreateBooking(context.Background(), actorFor(f.renterID, models.RoleUser), &models.BookingRequest{
		SpaceID: f.space.ID, StartDate: testToday, EndDate: testToday.AddDays(3),
	})
	requireAppError(t, err, apperrors.CodeConflict, http.StatusConflict)
}

func TestCreateBooking_PendingDoesNotBlock(t *testing.T) {
	f := newBookingsFixture(t)
	actor := actorFor(f.renterID, models.RoleUser)
	req := &models.BookingRequest{SpaceID: f.space.ID, StartDate: testToday.AddDays(1), EndDate: testToday.AddDays(2)}

	_, err := f.svc.CreateBooking(context.Background(), actor, req)
	require.NoError(t, err)
	_, err = f.svc.CreateBooking(context.Background(), actor, req)
	require.NoError(t, err)
}

func TestCreateBooking_LockContention(t *testing.T) {
	f := newBookingsFixture(t)
	release, err := f.locks.AcquireSpaceLock(context.Background(), f.space.ID)
	require.NoError(t, err)
	defer release(context.Background())

	_, err = f.svc.CreateBooking(context.Background(), actorFor(f.renterID, models.RoleUser), &models.BookingRequest{
		SpaceID: f.space.ID, StartDate: testToday, EndDate: testToday.AddDays(1),
	})
	requireAppError(t, err, apperrors.CodeConflict, http.StatusConflict)
	assert.Empty(t, f.bookings.bookings)
}

func TestCreateBooking_Rejections(t *testing.T) {
	f := newBookingsFixture(t)
	ctx := context.Background()

	_, err := f.svc.CreateBooking(ctx, nil, &models.BookingRequest{SpaceID: f.space.ID})
	requireAppError(t, err, apperrors.CodeUnauthorized, http.StatusUnauthorized)

	_, err = f.svc.CreateBooking(ctx, actorFor(f.ownerID, models.RoleOwner), &models.BookingRequest{
		SpaceID: f.space.ID, StartDate: testToday, EndDate: testToday,
	})
	requireAppError(t, err, apperrors.CodeForbidden, http.StatusForbidden)

	_, err = f.svc.CreateBooking(ctx, actorFor(f.renterID, models.RoleUser), &models.BookingRequest{
		SpaceID: f.space.ID, StartDate: testToday.AddDays(-1), EndDate: testToday,
	})
	requireAppError(t, err, apperrors.CodeValidation, http.StatusUnprocessableEntity)

	_, err = f.svc.CreateBooking(ctx, actorFor(f.renterID, models.RoleUser), &models.BookingRequest{
		SpaceID: f.space.ID, StartDate: testToday.AddDays(3), EndDate: testToday,
	})
	requireAppError(t, err, apperrors.CodeValidation, http.StatusUnprocessableEntity)

	_, err = f.svc.CreateBooking(ctx, actorFor(f.renterID, models.RoleUser), &models.BookingRequest{
		SpaceID: uuid.New(), StartDate: testToday, EndDate: testToday,
	})
	requireAppError(t, err, apperrors.CodeNotFound, http.StatusNotFound)
}

func TestUpdateStatus_Transitions(t *testing.T) {
	f := newBookingsFixture(t)
	owner := actorFor(f.ownerID, models.RoleOwner)
	ctx := context.Background()

	b := &models.Booking{
		ID: uuid.New(), SpaceID: f.space.ID, OwnerID: f.ownerID, RenterID: f.renterID,
		StartDate: testToday.AddDays(1), EndDate: testToday.AddDays(2), Status: models.BookingPending,
	}
	f.bookings.bookings[b.ID] = b

	updated, err := f.svc.UpdateStatus(ctx, owner, b.ID, models.BookingRejected)
	require.NoError(t, err)
	assert.Equal(t, models.BookingRejected, updated.Status)

	_, err = f.svc.UpdateStatus(ctx, owner, b.ID, models.BookingPending)
	requireAppError(t, err, apperrors.CodeInvalidTransition, http.StatusConflict)

	updated, err = f.svc.UpdateStatus(ctx, owner, b.ID, models.BookingApproved)
	require.NoError(t, err)
	assert.Equal(t, models.BookingApproved, updated.Status)
	assert.False(t, f.locks.isHeld(f.space.ID))

	assert.Equal(t, []string{notify.BookingStatusChanged, notify.BookingStatusChanged}, f.pub.types())
}

func TestUpdateStatus_OnlyOwnerOrAdmin(t *testing.T) {
	f := newBookingsFixture(t)
	b := &models.Booking{ID: uuid.New(), SpaceID: f.space.ID, OwnerID: f.ownerID, RenterID: f.renterID,
		StartDate: testToday, EndDate: testToday, Status: models.BookingPending}
	f.bookings.bookings[b.ID] = b

	_, err := f.svc.UpdateStatus(context.Background(), actorFor(f.renterID, models.RoleUser), b.ID, models.BookingApproved)
	requireAppError(t, err, apperrors.CodeForbidden, http.StatusForbidden)

	_, err = f.svc.UpdateStatus(context.Background(), actorFor(uuid.New(), models.RoleSuperAdmin), b.ID, models.BookingApproved)
	assert.NoError(t, err)
}

func TestUpdateStatus_ApproveRechecksOverlap(t *testing.T) {
	f := newBookingsFixture(t)
	f.approved(testToday.AddDays(3), testToday.AddDays(4))
	pending := &models.Booking{ID: uuid.New(), SpaceID: f.space.ID, OwnerID: f.ownerID, RenterID: f.renterID,
		StartDate: testToday.AddDays(4), EndDate: testToday.AddDays(6), Status: models.BookingPending}
	f.bookings.bookings[pending.ID] = pending

	_, err := f.svc.UpdateStatus(context.Background(), actorFor(f.ownerID, models.RoleOwner), pending.ID, models.BookingApproved)
	requireAppError(t, err, apperrors.CodeConflict, http.StatusConflict)
	assert.Equal(t, models.BookingPending, f.bookings.bookings[pending.ID].Status)
}

// staleBookings serves a snapshot taken before another request moved the
// booking on.
type staleBookings struct {
	*fakeBookings
	snapshot *models.Booking
}

func (s *staleBookings) GetBooking(context.Context, uuid.UUID, string) (*models.Booking, error) {
	cp := *s.snapshot
	return &cp, nil
}

func TestUpdateStatus_StaleReadDoesNotOverwrite(t *testing.T) {
	f := newBookingsFixture(t)
	stored := f.approved(testToday.AddDays(2), testToday.AddDays(4))
	snapshot := *stored
	snapshot.Status = models.BookingPending

	repo := &staleBookings{fakeBookings: f.bookings, snapshot: &snapshot}
	svc := NewBookingsService(repo, f.blackouts, newFakeSpaces(f.space), f.locks, f.pub, discardLogger(), testNow)

	_, err := svc.UpdateStatus(context.Background(), actorFor(f.ownerID, models.RoleOwner), stored.ID, models.BookingRejected)
	requireAppError(t, err, apperrors.CodeConflict, http.StatusConflict)
	assert.Equal(t, models.BookingApproved, f.bookings.bookings[stored.ID].Status)
	assert.False(t, f.locks.isHeld(f.space.ID))
	assert.Empty(t, f.pub.types())
}

func TestUpdateStatus_LegacyBlockedIsFrozen(t *testing.T) {
	f := newBookingsFixture(t)
	b := f.approved(testToday, testToday)
	b.Status = models.BookingBlocked

	_, err := f.svc.UpdateStatus(context.Background(), actorFor(f.ownerID, models.RoleOwner), b.ID, models.BookingCancelled)
	requireAppError(t, err, apperrors.CodeInvalidTransition, http.StatusConflict)

	_, err = f.svc.UpdateStatus(context.Background(), actorFor(f.ownerID, models.RoleOwner), b.ID, models.BookingStatus("archived"))
	requireAppError(t, err, apperrors.CodeInvalidInput, http.StatusBadRequest)
}

func TestQuoteAndAvailability(t *testing.T) {
	f := newBookingsFixture(t)
	f.approved(testToday.AddDays(2), testToday.AddDays(3))
	ctx := context.Background()

	q, err := f.svc.Quote(ctx, f.space.ID, testToday.AddDays(4), testToday.AddDays(31))
	require.NoError(t, err)
	assert.Equal(t, 28, q.Days)
	assert.InDelta(t, 21560.0, q.Total, 1e-9)

	_, err = f.svc.Quote(ctx, f.space.ID, testToday, testToday.AddDays(2))
	requireAppError(t, err, apperrors.CodeConflict, http.StatusConflict)

	view, err := f.svc.Availability(ctx, f.space.ID, models.DateRange{From: testToday, To: testToday.AddDays(9)})
	require.NoError(t, err)
	assert.Equal(t, testToday, view.Today)
	assert.Len(t, view.Committed, 1)
	assert.Equal(t, []models.Date{testToday.AddDays(2), testToday.AddDays(3)}, view.DisabledDates)

	view, err = f.svc.Availability(ctx, f.space.ID, models.DateRange{})
	require.NoError(t, err)
	assert.Equal(t, testToday, view.From)
	assert.Equal(t, 90, models.DateRange{From: view.From, To: view.To}.Days())

	_, err = f.svc.Availability(ctx, f.space.ID, models.DateRange{From: testToday, To: testToday.AddDays(400)})
	requireAppError(t, err, apperrors.CodeInvalidInput, http.StatusBadRequest)
}

func TestBlackouts(t *testing.T) {
	f := newBookingsFixture(t)
	owner := actorFor(f.ownerID, models.RoleOwner)
	ctx := context.Background()
	f.approved(testToday.AddDays(10), testToday.AddDays(11))

	bo, err := f.svc.CreateBlackout(ctx, owner, f.space.ID, &BlackoutInput{
		StartDate: testToday.AddDays(1), EndDate: testToday.AddDays(3), Reason: "pintura",
	})
	require.NoError(t, err)
	assert.Equal(t, f.ownerID, bo.OwnerID)

	// the blackout now blocks renters
	_, err = f.svc.Quote(ctx, f.space.ID, testToday.AddDays(3), testToday.AddDays(4))
	requireAppError(t, err, apperrors.CodeConflict, http.StatusConflict)

	_, err = f.svc.CreateBlackout(ctx, owner, f.space.ID, &BlackoutInput{
		StartDate: testToday.AddDays(11), EndDate: testToday.AddDays(12),
	})
	requireAppError(t, err, apperrors.CodeConflict, http.StatusConflict)

	_, err = f.svc.CreateBlackout(ctx, actorFor(f.renterID, models.RoleUser), f.space.ID, &BlackoutInput{
		StartDate: testToday.AddDays(20), EndDate: testToday.AddDays(21),
	})
	requireAppError(t, err, apperrors.CodeForbidden, http.StatusForbidden)

	list, err := f.svc.ListBlackouts(ctx, owner)
	require.NoError(t, err)
	assert.Len(t, list, 1)

	err = f.svc.DeleteBlackout(ctx, actorFor(f.renterID, models.RoleUser), bo.ID)
	requireAppError(t, err, apperrors.CodeForbidden, http.StatusForbidden)

	require.NoError(t, f.svc.DeleteBlackout(ctx, owner, bo.ID))
	_, err = f.svc.Quote(ctx, f.space.ID, testToday.AddDays(3), testToday.AddDays(4))
	assert.NoError(t, err)
}

func TestListRequestsAndRentals(t *testing.T) {
	f := newBookingsFixture(t)
	ctx := context.Background()
	_, err := f.svc.CreateBooking(ctx, actorFor(f.renterID, models.RoleUser), &models.BookingRequest{
		SpaceID: f.space.ID, StartDate: testToday, EndDate: testToday,
	})
	require.NoError(t, err)
	legacy := f.approved(testToday.AddDays(5), testToday.AddDays(5))
	legacy.Status = models.BookingBlocked

	requests, err := f.svc.ListRequests(ctx, actorFor(f.ownerID, models.RoleOwner))
	require.NoError(t, err)
	assert.Len(t, requests, 1)

	rentals, err := f.svc.ListRentals(ctx, actorFor(f.renterID, models.RoleUser))
	require.NoError(t, err)
	assert.Len(t, rentals, 1)
}

func TestMonthCalendar(t *testing.T) {
	f := newBookingsFixture(t)
	f.approved(models.NewDate(2026, time.March, 30), models.NewDate(2026, time.April, 2))
	bo := &models.Blackout{
		ID: uuid.New(), SpaceID: f.space.ID, OwnerID: f.ownerID,
		StartDate: models.NewDate(2026, time.March, 10), EndDate: models.NewDate(2026, time.March, 10),
	}
	f.blackouts.blackouts[bo.ID] = bo

	cal, err := f.svc.MonthCalendar(context.Background(), f.space.ID, 2026, time.March)
	require.NoError(t, err)
	assert.Len(t, cal, 31)
	assert.True(t, cal[10])
	assert.False(t, cal[11])
	assert.True(t, cal[30])
	assert.True(t, cal[31])

	cal, err = f.svc.MonthCalendar(context.Background(), f.space.ID, 2026, time.April)
	require.NoError(t, err)
	assert.Len(t, cal, 30)
	assert.True(t, cal[2])
	assert.False(t, cal[3])

	_, err = f.svc.MonthCalendar(context.Background(), f.space.ID, 2026, 13)
	requireAppError(t, err, apperrors.CodeInvalidInput, http.StatusBadRequest)
}

func TestTodayIsUTCDay(t *testing.T) {
	// 22:00 in Buenos Aires is already the next day in UTC
	art := time.FixedZone("ART", -3*3600)
	clock := func() time.Time { return time.Date(2026, time.March, 1, 22, 0, 0, 0, art) }
	assert.Equal(t, models.NewDate(2026, time.March, 2), today(clock))

	space := &models.Space{ID: uuid.New(), OwnerID: uuid.New(), Price: 100}
	svc := NewBookingsService(newFakeBookings(), newFakeBlackouts(), newFakeSpaces(space), newFakeLocks(), nil, discardLogger(), clock)
	view, err := svc.Availability(context.Background(), space.ID, models.DateRange{})
	require.NoError(t, err)
	assert.Equal(t, models.NewDate(2026, time.March, 2), view.Today)
}
