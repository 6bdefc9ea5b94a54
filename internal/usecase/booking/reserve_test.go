package booking

import (
	"context"
	"errors"
	"sync"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	domain "github.com/dardif/lodging-api/internal/domain/booking"
	"github.com/dardif/lodging-api/internal/httperr"
	"github.com/dardif/lodging-api/internal/lock"
	"github.com/dardif/lodging-api/internal/models"
	"github.com/dardif/lodging-api/internal/payment"
	"github.com/dardif/lodging-api/internal/timezone"
)

// ======================================================
// FAKES
// ======================================================

type fakeRepo struct {
	mu         sync.Mutex
	buildings  map[uint]*models.Building
	apartments map[uint]*models.Apartment
	bookings   map[uint]*models.Booking
	blocked    map[uint]map[time.Time]uint // apartmentID -> dia -> bookingID
	nextID     uint
}

func newFakeRepo() *fakeRepo {
	return &fakeRepo{
		buildings:  make(map[uint]*models.Building),
		apartments: make(map[uint]*models.Apartment),
		bookings:   make(map[uint]*models.Booking),
		blocked:    make(map[uint]map[time.Time]uint),
	}
}

func (r *fakeRepo) GetBuildingByID(_ context.Context, id uint) (*models.Building, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	b, ok := r.buildings[id]
	if !ok {
		return nil, httperr.ErrBusiness(httperr.CodeBuildingNotFound)
	}
	cp := *b
	return &cp, nil
}

func (r *fakeRepo) GetApartmentByID(_ context.Context, id uint) (*models.Apartment, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	ap, ok := r.apartments[id]
	if !ok {
		return nil, httperr.ErrBusiness(httperr.CodeApartmentNotFound)
	}
	cp := *ap
	return &cp, nil
}

func (r *fakeRepo) Calendar(_ context.Context, apartmentID uint) (domain.Calendar, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	cal := domain.NewCalendar()
	for d := range r.blocked[apartmentID] {
		cal.Add(d)
	}
	return cal, nil
}

func (r *fakeRepo) CreateBooking(_ context.Context, bk *models.Booking, dates []time.Time) error {
	r.mu.Lock()
	defer r.mu.Unlock()

	days := r.blocked[bk.ApartmentID]
	if days == nil {
		days = make(map[time.Time]uint)
		r.blocked[bk.ApartmentID] = days
	}

	// re-checagem sob o lock, como o índice único faria no banco
	for _, d := range dates {
		if _, taken := days[d]; taken {
			return httperr.ErrBusiness(httperr.CodeDateConflict)
		}
	}

	r.nextID++
	bk.ID = r.nextID
	for _, d := range dates {
		days[d] = bk.ID
		bk.Dates = append(bk.Dates, models.BlockedDate{
			ApartmentID: bk.ApartmentID,
			BookingID:   bk.ID,
			Date:        d,
		})
	}

	cp := *bk
	r.bookings[bk.ID] = &cp
	return nil
}

func (r *fakeRepo) GetBookingByID(_ context.Context, id uint) (*models.Booking, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	bk, ok := r.bookings[id]
	if !ok {
		return nil, httperr.ErrBusiness(httperr.CodeBookingNotFound)
	}
	cp := *bk
	return &cp, nil
}

func (r *fakeRepo) UpdateBooking(_ context.Context, bk *models.Booking) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	cp := *bk
	r.bookings[bk.ID] = &cp
	return nil
}

func (r *fakeRepo) CompleteBooking(_ context.Context, bk *models.Booking) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	cp := *bk
	cp.Dates = append([]models.BlockedDate(nil), bk.Dates...)
	r.bookings[bk.ID] = &cp

	at := time.Now()
	if bk.CompletedAt != nil {
		at = *bk.CompletedAt
	}
	r.releaseLocked(bk.ID, at)
	return nil
}

func (r *fakeRepo) ReleaseDates(_ context.Context, bookingID uint) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.releaseLocked(bookingID, time.Now())
	return nil
}

// releaseLocked marca os dias como liberados sem apagar o histórico,
// como o repositório gorm faz com released_at.
func (r *fakeRepo) releaseLocked(bookingID uint, at time.Time) {
	for _, days := range r.blocked {
		for d, owner := range days {
			if owner == bookingID {
				delete(days, d)
			}
		}
	}
	if bk, ok := r.bookings[bookingID]; ok {
		for i := range bk.Dates {
			if bk.Dates[i].ReleasedAt == nil {
				bk.Dates[i].ReleasedAt = &at
			}
		}
	}
}

var _ domain.Repository = (*fakeRepo)(nil)

type fakePayments struct {
	info map[string]*payment.Info
}

func (f *fakePayments) Get(_ context.Context, id string) (*payment.Info, error) {
	if info, ok := f.info[id]; ok {
		return info, nil
	}
	return nil, httperr.ErrBusiness(httperr.CodePaymentMismatch)
}

// timeoutPayments simula o gateway estourando o prazo da consulta.
type timeoutPayments struct{}

func (timeoutPayments) Get(_ context.Context, _ string) (*payment.Info, error) {
	return nil, context.DeadlineExceeded
}

// keyLocker serializa por chave, como o lock Redis faz em produção.
type keyLocker struct {
	mu    sync.Mutex
	locks map[string]*sync.Mutex
}

func newKeyLocker() *keyLocker {
	return &keyLocker{locks: make(map[string]*sync.Mutex)}
}

func (l *keyLocker) Acquire(_ context.Context, key string) (func(), error) {
	l.mu.Lock()
	m, ok := l.locks[key]
	if !ok {
		m = &sync.Mutex{}
		l.locks[key] = m
	}
	l.mu.Unlock()

	m.Lock()
	return m.Unlock, nil
}

type deniedLocker struct{}

func (deniedLocker) Acquire(_ context.Context, _ string) (func(), error) {
	return nil, lock.ErrNotAcquired
}

// ======================================================
// FIXTURE
// ======================================================

type fixture struct {
	repo     *fakeRepo
	payments *fakePayments
	reserve  *Reserve
	checkIn  *CheckIn
	complete *Complete
	release  *ReleaseDates
}

func newFixture() *fixture {
	repo := newFakeRepo()
	repo.buildings[1] = &models.Building{ID: 1, Name: "Dar Annour"}
	repo.buildings[2] = &models.Building{ID: 2, Name: "Dar Salam"}
	repo.apartments[10] = &models.Apartment{ID: 10, BuildingID: 1, Number: 101, PricePerDay: 50}
	repo.apartments[20] = &models.Apartment{ID: 20, BuildingID: 2, Number: 201, PricePerDay: 80}

	payments := &fakePayments{info: map[string]*payment.Info{
		"pay-100":     {Status: payment.StatusApproved, Amount: 100},
		"pay-150":     {Status: payment.StatusApproved, Amount: 150},
		"pay-pending": {Status: "pending", Amount: 100},
	}}

	locks := newKeyLocker()

	return &fixture{
		repo:     repo,
		payments: payments,
		reserve:  NewReserve(repo, payments, locks, nil),
		checkIn:  NewCheckIn(repo, locks, nil),
		complete: NewComplete(repo, locks, nil),
		release:  NewReleaseDates(repo, nil),
	}
}

func futureDay(offset int) time.Time {
	return timezone.Day(time.Now().AddDate(0, 0, 7+offset))
}

func reserveInput(dates ...time.Time) ReserveInput {
	return ReserveInput{
		BuildingID:  1,
		ApartmentID: 10,
		UserID:      42,
		Dates:       dates,
		TotalPrice:  100,
		PaymentID:   "pay-100",
	}
}

// ======================================================
// RESERVE
// ======================================================

func TestReserveBlocksRequestedDates(t *testing.T) {
	f := newFixture()
	ctx := context.Background()

	d1, d2 := futureDay(0), futureDay(1)

	bk, err := f.reserve.Execute(ctx, reserveInput(d1, d2))
	require.NoError(t, err)

	assert.Equal(t, string(domain.StatusActive), bk.Status)
	assert.NotEmpty(t, bk.Reference)
	assert.Len(t, bk.Dates, 2)

	cal, err := f.repo.Calendar(ctx, 10)
	require.NoError(t, err)
	assert.True(t, cal.Contains(d1))
	assert.True(t, cal.Contains(d2))
	assert.Equal(t, 2, cal.Len())
}

func TestReserveConflictLeavesCalendarUnchanged(t *testing.T) {
	f := newFixture()
	ctx := context.Background()

	d1, d2, d3 := futureDay(0), futureDay(1), futureDay(2)

	_, err := f.reserve.Execute(ctx, reserveInput(d1, d2))
	require.NoError(t, err)

	_, err = f.reserve.Execute(ctx, reserveInput(d2, d3))
	assert.True(t, httperr.IsBusiness(err, httperr.CodeDateConflict))

	// nada do segundo pedido entrou no calendário
	cal, _ := f.repo.Calendar(ctx, 10)
	assert.Equal(t, 2, cal.Len())
	assert.False(t, cal.Contains(d3))
}

func TestReserveDuplicateDateRegardlessOfCalendar(t *testing.T) {
	f := newFixture()

	d := futureDay(0)
	_, err := f.reserve.Execute(context.Background(), reserveInput(d, d))
	assert.True(t, httperr.IsBusiness(err, httperr.CodeDuplicateDate))
}

func TestReserveEmptyDates(t *testing.T) {
	f := newFixture()

	_, err := f.reserve.Execute(context.Background(), reserveInput())
	assert.True(t, httperr.IsBusiness(err, httperr.CodeEmptyRequest))
}

func TestReservePastDate(t *testing.T) {
	f := newFixture()

	past := timezone.Day(time.Now().AddDate(0, 0, -3))
	_, err := f.reserve.Execute(context.Background(), reserveInput(past))
	assert.True(t, httperr.IsBusiness(err, httperr.CodePastDate))
}

func TestReserveBuildingNotFound(t *testing.T) {
	f := newFixture()

	in := reserveInput(futureDay(0))
	in.BuildingID = 99
	_, err := f.reserve.Execute(context.Background(), in)
	assert.True(t, httperr.IsBusiness(err, httperr.CodeBuildingNotFound))
}

func TestReserveApartmentNotFound(t *testing.T) {
	f := newFixture()

	in := reserveInput(futureDay(0))
	in.ApartmentID = 99
	_, err := f.reserve.Execute(context.Background(), in)
	assert.True(t, httperr.IsBusiness(err, httperr.CodeApartmentNotFound))
}

func TestReserveUnitNotInBuilding(t *testing.T) {
	f := newFixture()

	in := reserveInput(futureDay(0))
	in.ApartmentID = 20 // pertence ao prédio 2
	_, err := f.reserve.Execute(context.Background(), in)
	assert.True(t, httperr.IsBusiness(err, httperr.CodeUnitNotInBuilding))
}

func TestReservePaymentMismatch(t *testing.T) {
	f := newFixture()
	ctx := context.Background()

	in := reserveInput(futureDay(0))
	in.PaymentID = "pay-150" // valor não bate
	_, err := f.reserve.Execute(ctx, in)
	assert.True(t, httperr.IsBusiness(err, httperr.CodePaymentMismatch))

	in = reserveInput(futureDay(0))
	in.PaymentID = "pay-pending" // não aprovado
	_, err = f.reserve.Execute(ctx, in)
	assert.True(t, httperr.IsBusiness(err, httperr.CodePaymentMismatch))

	in = reserveInput(futureDay(0))
	in.PaymentID = "unknown"
	_, err = f.reserve.Execute(ctx, in)
	assert.True(t, httperr.IsBusiness(err, httperr.CodePaymentMismatch))

	// gate de pagamento não toca o calendário
	cal, _ := f.repo.Calendar(ctx, 10)
	assert.Equal(t, 0, cal.Len())
}

func TestReservePaymentTimeoutIsNotMismatch(t *testing.T) {
	f := newFixture()
	ctx := context.Background()
	reserve := NewReserve(f.repo, timeoutPayments{}, newKeyLocker(), nil)

	d := futureDay(0)
	_, err := reserve.Execute(ctx, reserveInput(d))

	// prazo estourado sobe como está: o cliente pode repetir,
	// não é veredito sobre o pagamento
	require.Error(t, err)
	assert.True(t, errors.Is(err, context.DeadlineExceeded))
	assert.False(t, httperr.IsBusiness(err, httperr.CodePaymentMismatch))

	cal, _ := f.repo.Calendar(ctx, 10)
	assert.Equal(t, 0, cal.Len())
}

func TestReserveLockUnavailable(t *testing.T) {
	f := newFixture()
	reserve := NewReserve(f.repo, f.payments, deniedLocker{}, nil)

	_, err := reserve.Execute(context.Background(), reserveInput(futureDay(0)))
	assert.True(t, httperr.IsBusiness(err, httperr.CodeConcurrencyConflict))
	assert.True(t, httperr.Retryable(err))
}

func TestReserveTwoUnitsIndependent(t *testing.T) {
	f := newFixture()
	ctx := context.Background()

	d := futureDay(0)

	_, err := f.reserve.Execute(ctx, reserveInput(d))
	require.NoError(t, err)

	in := ReserveInput{
		BuildingID:  2,
		ApartmentID: 20,
		UserID:      43,
		Dates:       []time.Time{d},
		TotalPrice:  100,
		PaymentID:   "pay-100",
	}
	_, err = f.reserve.Execute(ctx, in)
	require.NoError(t, err)
}

// ======================================================
// LIFECYCLE
// ======================================================

func TestCheckInThenCheckInAgain(t *testing.T) {
	f := newFixture()
	ctx := context.Background()

	bk, err := f.reserve.Execute(ctx, reserveInput(futureDay(0)))
	require.NoError(t, err)

	checked, err := f.checkIn.Execute(ctx, bk.ID, 1)
	require.NoError(t, err)
	assert.Equal(t, string(domain.StatusChecked), checked.Status)

	_, err = f.checkIn.Execute(ctx, bk.ID, 1)
	assert.True(t, httperr.IsBusiness(err, httperr.CodeAlreadyChecked))
}

func TestCheckInMissingBooking(t *testing.T) {
	f := newFixture()

	_, err := f.checkIn.Execute(context.Background(), 999, 1)
	assert.True(t, httperr.IsBusiness(err, httperr.CodeBookingNotFound))
}

func TestCompleteReleasesDates(t *testing.T) {
	f := newFixture()
	ctx := context.Background()

	d1, d2 := futureDay(0), futureDay(1)
	bk, err := f.reserve.Execute(ctx, reserveInput(d1, d2))
	require.NoError(t, err)

	done, err := f.complete.Execute(ctx, bk.ID, 1)
	require.NoError(t, err)
	assert.Equal(t, string(domain.StatusCompleted), done.Status)

	cal, _ := f.repo.Calendar(ctx, 10)
	assert.False(t, cal.Contains(d1))
	assert.False(t, cal.Contains(d2))
	assert.Equal(t, 0, cal.Len())
}

func TestCompletedBookingKeepsItsDates(t *testing.T) {
	f := newFixture()
	ctx := context.Background()

	d1, d2 := futureDay(0), futureDay(1)
	bk, err := f.reserve.Execute(ctx, reserveInput(d1, d2))
	require.NoError(t, err)

	_, err = f.complete.Execute(ctx, bk.ID, 1)
	require.NoError(t, err)

	// a reserva concluída ainda sabe quais dias ocupou
	stored, err := f.repo.GetBookingByID(ctx, bk.ID)
	require.NoError(t, err)
	require.Len(t, stored.Dates, 2)
	for _, bd := range stored.Dates {
		assert.NotNil(t, bd.ReleasedAt)
	}

	cal, _ := f.repo.Calendar(ctx, 10)
	assert.Equal(t, 0, cal.Len())
}

func TestCompleteFromCheckedAndCompleteTwice(t *testing.T) {
	f := newFixture()
	ctx := context.Background()

	bk, err := f.reserve.Execute(ctx, reserveInput(futureDay(0)))
	require.NoError(t, err)

	_, err = f.checkIn.Execute(ctx, bk.ID, 1)
	require.NoError(t, err)

	_, err = f.complete.Execute(ctx, bk.ID, 1)
	require.NoError(t, err)

	_, err = f.complete.Execute(ctx, bk.ID, 1)
	assert.True(t, httperr.IsBusiness(err, httperr.CodeAlreadyCompleted))
}

func TestReleaseDatesCascadeHook(t *testing.T) {
	f := newFixture()
	ctx := context.Background()

	d := futureDay(0)
	bk, err := f.reserve.Execute(ctx, reserveInput(d))
	require.NoError(t, err)

	require.NoError(t, f.release.Execute(ctx, bk.ID))

	cal, _ := f.repo.Calendar(ctx, 10)
	assert.False(t, cal.Contains(d))

	// liberar não apaga o vínculo da reserva com os dias
	stored, err := f.repo.GetBookingByID(ctx, bk.ID)
	require.NoError(t, err)
	require.Len(t, stored.Dates, 1)
	assert.NotNil(t, stored.Dates[0].ReleasedAt)
}

// ======================================================
// SCENARIO (reservar → conflito → concluir → reservar)
// ======================================================

func TestReserveCompleteRebookScenario(t *testing.T) {
	f := newFixture()
	ctx := context.Background()

	d1, d2, d3 := futureDay(0), futureDay(1), futureDay(2)

	first, err := f.reserve.Execute(ctx, reserveInput(d1, d2))
	require.NoError(t, err)

	cal, _ := f.repo.Calendar(ctx, 10)
	assert.Equal(t, 2, cal.Len())

	_, err = f.reserve.Execute(ctx, reserveInput(d2, d3))
	assert.True(t, httperr.IsBusiness(err, httperr.CodeDateConflict))

	_, err = f.complete.Execute(ctx, first.ID, 1)
	require.NoError(t, err)

	cal, _ = f.repo.Calendar(ctx, 10)
	assert.Equal(t, 0, cal.Len())

	_, err = f.reserve.Execute(ctx, reserveInput(d2, d3))
	require.NoError(t, err)

	cal, _ = f.repo.Calendar(ctx, 10)
	assert.True(t, cal.Contains(d2))
	assert.True(t, cal.Contains(d3))
}

// ======================================================
// CONCURRENCY
// ======================================================

func TestConcurrentReservesSameUnitExactlyOneWins(t *testing.T) {
	f := newFixture()
	ctx := context.Background()

	d1, d2 := futureDay(0), futureDay(1)

	var wg sync.WaitGroup
	errs := make([]error, 2)

	wg.Add(2)
	go func() {
		defer wg.Done()
		_, errs[0] = f.reserve.Execute(ctx, reserveInput(d1, d2))
	}()
	go func() {
		defer wg.Done()
		_, errs[1] = f.reserve.Execute(ctx, reserveInput(d2))
	}()
	wg.Wait()

	winners := 0
	for _, err := range errs {
		if err == nil {
			winners++
			continue
		}
		ok := httperr.IsBusiness(err, httperr.CodeDateConflict) ||
			httperr.IsBusiness(err, httperr.CodeConcurrencyConflict)
		assert.True(t, ok, "unexpected error: %v", err)
	}
	require.Equal(t, 1, winners)

	// o calendário contém exatamente os dias do vencedor
	cal, _ := f.repo.Calendar(ctx, 10)
	if errs[0] == nil {
		assert.Equal(t, 2, cal.Len())
		assert.True(t, cal.Contains(d1))
		assert.True(t, cal.Contains(d2))
	} else {
		assert.Equal(t, 1, cal.Len())
		assert.True(t, cal.Contains(d2))
	}
}
