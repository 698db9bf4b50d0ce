package reservations

import (
	"context"
	"io"
	"sync"
	"testing"
	"time"

	"github.com/google/uuid"
	"github.com/rs/zerolog"
	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/require"
	"gorm.io/driver/sqlite"
	"gorm.io/gorm"
	gormlogger "gorm.io/gorm/logger"

	"github.com/nmoreau/gatherly-backend/pkg/db"
	"github.com/nmoreau/gatherly-backend/pkg/db/models"
	"github.com/nmoreau/gatherly-backend/pkg/enums"
	pkgerrors "github.com/nmoreau/gatherly-backend/pkg/errors"
	"github.com/nmoreau/gatherly-backend/pkg/logger"
)

type recordingNotifier struct {
	mu   sync.Mutex
	sent int
}

func (r *recordingNotifier) Notify(enums.NotificationKind, string, map[string]string) bool {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.sent++
	return true
}

func (r *recordingNotifier) count() int {
	r.mu.Lock()
	defer r.mu.Unlock()
	return r.sent
}

type fixture struct {
	svc   *Service
	conn  *gorm.DB
	notif *recordingNotifier
	org   *models.Organization
}

func newFixture(t *testing.T) *fixture {
	t.Helper()

	dsn := "file:" + uuid.NewString() + "?mode=memory&cache=shared"
	conn, err := gorm.Open(sqlite.Open(dsn), &gorm.Config{
		Logger:         gormlogger.Default.LogMode(gormlogger.Silent),
		TranslateError: true,
	})
	require.NoError(t, err)
	require.NoError(t, conn.AutoMigrate(
		&models.Organization{},
		&models.Event{},
		&models.Ticket{},
	))

	sqlDB, err := conn.DB()
	require.NoError(t, err)
	sqlDB.SetMaxOpenConns(1)
	t.Cleanup(func() { sqlDB.Close() })

	client, err := db.NewWithConn(conn)
	require.NoError(t, err)
	log := logger.New(logger.Options{ServiceName: "test", Level: zerolog.ErrorLevel, Output: io.Discard})
	notif := &recordingNotifier{}

	org := &models.Organization{ID: uuid.New(), Name: "Orbit Events", OwnerID: uuid.New()}
	require.NoError(t, conn.Create(org).Error)

	return &fixture{
		svc:   NewService(client, notif, log),
		conn:  conn,
		notif: notif,
		org:   org,
	}
}

func (f *fixture) seedEvent(t *testing.T, status enums.EventStatus, maxTickets int, start time.Time) *models.Event {
	t.Helper()
	event := &models.Event{
		ID:             uuid.New(),
		OrganizationID: f.org.ID,
		Name:           "Launch Party",
		StartDate:      start,
		EndDate:        start.Add(3 * time.Hour),
		MaxTickets:     maxTickets,
		Price:          decimal.NewFromInt(10),
		Status:         status,
	}
	require.NoError(t, f.conn.Create(event).Error)
	return event
}

func requireCode(t *testing.T, err error, code pkgerrors.Code) {
	t.Helper()
	require.Error(t, err)
	appErr := pkgerrors.As(err)
	require.NotNil(t, appErr, "expected typed error, got %v", err)
	require.Equal(t, code, appErr.Code())
}

func future() time.Time {
	return time.Now().Add(48 * time.Hour).UTC().Truncate(time.Second)
}

func TestGetEventPublicView(t *testing.T) {
	ctx := context.Background()
	f := newFixture(t)
	event := f.seedEvent(t, enums.EventStatusScheduled, 50, future())

	got, err := f.svc.GetEvent(ctx, event.ID)
	require.NoError(t, err)
	require.Equal(t, event.ID, got.ID)
	require.Equal(t, "Orbit Events", got.Organizer)
	require.NotNil(t, got.TicketsRemaining)
	require.EqualValues(t, 50, *got.TicketsRemaining)
}

func TestGetEventUnlimitedCapacityOmitsRemaining(t *testing.T) {
	ctx := context.Background()
	f := newFixture(t)
	event := f.seedEvent(t, enums.EventStatusScheduled, 0, future())

	got, err := f.svc.GetEvent(ctx, event.ID)
	require.NoError(t, err)
	require.Nil(t, got.TicketsRemaining)
}

func TestGetEventHidesUnbookable(t *testing.T) {
	ctx := context.Background()
	f := newFixture(t)

	cancelled := f.seedEvent(t, enums.EventStatusCancelled, 10, future())
	_, err := f.svc.GetEvent(ctx, cancelled.ID)
	requireCode(t, err, pkgerrors.CodeNotFound)

	past := f.seedEvent(t, enums.EventStatusScheduled, 10, time.Now().Add(-96*time.Hour))
	_, err = f.svc.GetEvent(ctx, past.ID)
	requireCode(t, err, pkgerrors.CodeNotFound)

	// Booking closes at the start date, even while the event is running.
	started := f.seedEvent(t, enums.EventStatusScheduled, 10, time.Now().Add(-time.Hour))
	_, err = f.svc.GetEvent(ctx, started.ID)
	requireCode(t, err, pkgerrors.CodeNotFound)

	_, err = f.svc.GetEvent(ctx, uuid.New())
	requireCode(t, err, pkgerrors.CodeNotFound)
}

func TestBookIssuesTicket(t *testing.T) {
	ctx := context.Background()
	f := newFixture(t)
	event := f.seedEvent(t, enums.EventStatusScheduled, 10, future())

	res, err := f.svc.Book(ctx, event.ID, BookDTO{Email: "Guest@Example.com ", Name: "Guest"})
	require.NoError(t, err)
	require.Equal(t, event.ID, res.EventID)
	require.Equal(t, "guest@example.com", res.OwnerEmail)
	require.NotEqual(t, uuid.Nil, res.TicketID)
	require.Equal(t, 1, f.notif.count())

	got, err := f.svc.GetEvent(ctx, event.ID)
	require.NoError(t, err)
	require.EqualValues(t, 9, *got.TicketsRemaining)
}

func TestBookRejectsDuplicateEmail(t *testing.T) {
	ctx := context.Background()
	f := newFixture(t)
	event := f.seedEvent(t, enums.EventStatusScheduled, 10, future())

	_, err := f.svc.Book(ctx, event.ID, BookDTO{Email: "guest@example.com", Name: "Guest"})
	require.NoError(t, err)

	// Same email, different casing.
	_, err = f.svc.Book(ctx, event.ID, BookDTO{Email: "GUEST@example.com", Name: "Guest Again"})
	requireCode(t, err, pkgerrors.CodeConflict)
	require.Equal(t, 1, f.notif.count())
}

func TestBookEnforcesCapacity(t *testing.T) {
	ctx := context.Background()
	f := newFixture(t)
	event := f.seedEvent(t, enums.EventStatusScheduled, 2, future())

	_, err := f.svc.Book(ctx, event.ID, BookDTO{Email: "a@example.com", Name: "A"})
	require.NoError(t, err)
	_, err = f.svc.Book(ctx, event.ID, BookDTO{Email: "b@example.com", Name: "B"})
	require.NoError(t, err)

	_, err = f.svc.Book(ctx, event.ID, BookDTO{Email: "c@example.com", Name: "C"})
	requireCode(t, err, pkgerrors.CodeConflict)
}

func TestBookUnlimitedCapacity(t *testing.T) {
	ctx := context.Background()
	f := newFixture(t)
	event := f.seedEvent(t, enums.EventStatusScheduled, 0, future())

	for i, email := range []string{"a@example.com", "b@example.com", "c@example.com"} {
		_, err := f.svc.Book(ctx, event.ID, BookDTO{Email: email, Name: "Guest"})
		require.NoError(t, err, "booking %d", i)
	}
}

func TestBookUnbookableEvent(t *testing.T) {
	ctx := context.Background()
	f := newFixture(t)

	cancelled := f.seedEvent(t, enums.EventStatusCancelled, 10, future())
	_, err := f.svc.Book(ctx, cancelled.ID, BookDTO{Email: "x@example.com", Name: "X"})
	requireCode(t, err, pkgerrors.CodeNotFound)
}
