package invitations

import (
	"context"
	"io"
	"sync"
	"testing"

	"github.com/google/uuid"
	"github.com/rs/zerolog"
	"github.com/stretchr/testify/require"
	"gorm.io/driver/sqlite"
	"gorm.io/gorm"
	gormlogger "gorm.io/gorm/logger"

	"github.com/nmoreau/gatherly-backend/internal/memberships"
	"github.com/nmoreau/gatherly-backend/internal/organizations"
	"github.com/nmoreau/gatherly-backend/pkg/db"
	"github.com/nmoreau/gatherly-backend/pkg/db/models"
	"github.com/nmoreau/gatherly-backend/pkg/enums"
	pkgerrors "github.com/nmoreau/gatherly-backend/pkg/errors"
	"github.com/nmoreau/gatherly-backend/pkg/logger"
)

type recordingNotifier struct {
	mu   sync.Mutex
	sent []enums.NotificationKind
}

func (r *recordingNotifier) Notify(kind enums.NotificationKind, _ string, _ map[string]string) bool {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.sent = append(r.sent, kind)
	return true
}

func (r *recordingNotifier) count() int {
	r.mu.Lock()
	defer r.mu.Unlock()
	return len(r.sent)
}

type fixture struct {
	svc     *Service
	orgs    *organizations.Service
	conn    *gorm.DB
	notif   *recordingNotifier
	creator *models.User
	admin   *models.User
	staff   *models.User
	invitee *models.User
	org     *organizations.OrganizationDTO
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
		&models.User{},
		&models.Organization{},
		&models.Membership{},
		&models.Invitation{},
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

	f := &fixture{
		svc:   NewService(client, notif, log),
		orgs:  organizations.NewService(client, log),
		conn:  conn,
		notif: notif,
	}

	ctx := context.Background()
	f.creator = f.seedUser(t, "creator@example.com")
	f.admin = f.seedUser(t, "admin@example.com")
	f.staff = f.seedUser(t, "staff@example.com")
	f.invitee = f.seedUser(t, "invitee@example.com")

	org, err := f.orgs.Create(ctx, f.creator.ID, organizations.CreateOrganizationDTO{Name: "Orbit Events"})
	require.NoError(t, err)
	f.org = org

	repo := memberships.NewRepository(conn)
	_, err = repo.Create(ctx, f.admin.ID, org.ID, enums.MemberRoleAdmin)
	require.NoError(t, err)
	_, err = repo.Create(ctx, f.staff.ID, org.ID, enums.MemberRoleStaff)
	require.NoError(t, err)
	return f
}

func (f *fixture) seedUser(t *testing.T, email string) *models.User {
	t.Helper()
	user := &models.User{ID: uuid.New(), Email: email, Name: email}
	require.NoError(t, f.conn.Create(user).Error)
	return user
}

func requireCode(t *testing.T, err error, code pkgerrors.Code) {
	t.Helper()
	require.Error(t, err)
	appErr := pkgerrors.As(err)
	require.NotNil(t, appErr, "expected typed error, got %v", err)
	require.Equal(t, code, appErr.Code())
}

func TestInviteRoleMatrix(t *testing.T) {
	ctx := context.Background()
	f := newFixture(t)

	// Creator invites an admin.
	inv, err := f.svc.Invite(ctx, f.creator.ID, f.org.ID, InviteDTO{Email: f.invitee.Email, Role: enums.MemberRoleAdmin})
	require.NoError(t, err)
	require.Equal(t, f.invitee.ID, inv.UserID)
	require.Equal(t, enums.MemberRoleAdmin, inv.Role)
	require.Equal(t, 1, f.notif.count())

	// Admin invites staff.
	second := f.seedUser(t, "second@example.com")
	_, err = f.svc.Invite(ctx, f.admin.ID, f.org.ID, InviteDTO{Email: second.Email, Role: enums.MemberRoleStaff})
	require.NoError(t, err)

	// Admin cannot invite an admin.
	third := f.seedUser(t, "third@example.com")
	_, err = f.svc.Invite(ctx, f.admin.ID, f.org.ID, InviteDTO{Email: third.Email, Role: enums.MemberRoleAdmin})
	requireCode(t, err, pkgerrors.CodeForbidden)

	// Staff cannot invite at all.
	_, err = f.svc.Invite(ctx, f.staff.ID, f.org.ID, InviteDTO{Email: third.Email, Role: enums.MemberRoleStaff})
	requireCode(t, err, pkgerrors.CodeForbidden)

	// Outsiders cannot see the organization.
	outsider := f.seedUser(t, "outsider@example.com")
	_, err = f.svc.Invite(ctx, outsider.ID, f.org.ID, InviteDTO{Email: third.Email, Role: enums.MemberRoleStaff})
	requireCode(t, err, pkgerrors.CodeNotFound)

	// The creator role is never grantable by invitation.
	_, err = f.svc.Invite(ctx, f.creator.ID, f.org.ID, InviteDTO{Email: third.Email, Role: enums.MemberRoleCreator})
	requireCode(t, err, pkgerrors.CodeValidation)
}

func TestInviteConflicts(t *testing.T) {
	ctx := context.Background()
	f := newFixture(t)

	// Current members cannot be invited.
	_, err := f.svc.Invite(ctx, f.creator.ID, f.org.ID, InviteDTO{Email: f.staff.Email, Role: enums.MemberRoleStaff})
	requireCode(t, err, pkgerrors.CodeConflict)

	// Unknown email has no account.
	_, err = f.svc.Invite(ctx, f.creator.ID, f.org.ID, InviteDTO{Email: "ghost@example.com", Role: enums.MemberRoleStaff})
	requireCode(t, err, pkgerrors.CodeNotFound)

	// Duplicate of one's own pending invitation.
	_, err = f.svc.Invite(ctx, f.creator.ID, f.org.ID, InviteDTO{Email: f.invitee.Email, Role: enums.MemberRoleStaff})
	require.NoError(t, err)
	_, err = f.svc.Invite(ctx, f.creator.ID, f.org.ID, InviteDTO{Email: f.invitee.Email, Role: enums.MemberRoleStaff})
	requireCode(t, err, pkgerrors.CodeConflict)

	// A different inviter may still extend the same offer.
	_, err = f.svc.Invite(ctx, f.admin.ID, f.org.ID, InviteDTO{Email: f.invitee.Email, Role: enums.MemberRoleStaff})
	require.NoError(t, err)
}

func TestListForOrganizationManagerOnly(t *testing.T) {
	ctx := context.Background()
	f := newFixture(t)

	_, err := f.svc.Invite(ctx, f.creator.ID, f.org.ID, InviteDTO{Email: f.invitee.Email, Role: enums.MemberRoleStaff})
	require.NoError(t, err)

	list, err := f.svc.ListForOrganization(ctx, f.admin.ID, f.org.ID)
	require.NoError(t, err)
	require.Len(t, list, 1)
	require.Equal(t, f.invitee.Email, list[0].InviteeEmail)
	require.Equal(t, f.creator.Name, list[0].InviterName)

	_, err = f.svc.ListForOrganization(ctx, f.staff.ID, f.org.ID)
	requireCode(t, err, pkgerrors.CodeForbidden)

	_, err = f.svc.ListForOrganization(ctx, uuid.New(), f.org.ID)
	requireCode(t, err, pkgerrors.CodeNotFound)
}

func TestRespondAccept(t *testing.T) {
	ctx := context.Background()
	f := newFixture(t)

	inv, err := f.svc.Invite(ctx, f.creator.ID, f.org.ID, InviteDTO{Email: f.invitee.Email, Role: enums.MemberRoleStaff})
	require.NoError(t, err)

	require.NoError(t, f.svc.Respond(ctx, f.invitee.ID, inv.ID, true))

	role, err := memberships.NewRepository(f.conn).GetRole(ctx, f.invitee.ID, f.org.ID)
	require.NoError(t, err)
	require.Equal(t, enums.MemberRoleStaff, role)

	// The invitation row is gone.
	list, err := f.svc.ListForUser(ctx, f.invitee.ID)
	require.NoError(t, err)
	require.Empty(t, list)

	// Responding again is NotFound.
	err = f.svc.Respond(ctx, f.invitee.ID, inv.ID, true)
	requireCode(t, err, pkgerrors.CodeNotFound)
}

func TestRespondReject(t *testing.T) {
	ctx := context.Background()
	f := newFixture(t)

	inv, err := f.svc.Invite(ctx, f.creator.ID, f.org.ID, InviteDTO{Email: f.invitee.Email, Role: enums.MemberRoleStaff})
	require.NoError(t, err)

	require.NoError(t, f.svc.Respond(ctx, f.invitee.ID, inv.ID, false))

	_, err = memberships.NewRepository(f.conn).GetRole(ctx, f.invitee.ID, f.org.ID)
	require.ErrorIs(t, err, gorm.ErrRecordNotFound)
}

func TestRespondOnlyVisibleToInvitee(t *testing.T) {
	ctx := context.Background()
	f := newFixture(t)

	inv, err := f.svc.Invite(ctx, f.creator.ID, f.org.ID, InviteDTO{Email: f.invitee.Email, Role: enums.MemberRoleStaff})
	require.NoError(t, err)

	err = f.svc.Respond(ctx, f.staff.ID, inv.ID, true)
	requireCode(t, err, pkgerrors.CodeNotFound)
}

func TestRespondAcceptIdempotentWhenAlreadyMember(t *testing.T) {
	ctx := context.Background()
	f := newFixture(t)

	first, err := f.svc.Invite(ctx, f.creator.ID, f.org.ID, InviteDTO{Email: f.invitee.Email, Role: enums.MemberRoleStaff})
	require.NoError(t, err)
	second, err := f.svc.Invite(ctx, f.admin.ID, f.org.ID, InviteDTO{Email: f.invitee.Email, Role: enums.MemberRoleStaff})
	require.NoError(t, err)

	require.NoError(t, f.svc.Respond(ctx, f.invitee.ID, first.ID, true))
	// Accepting the second invitation after the membership exists resolves
	// the invitation without erroring.
	require.NoError(t, f.svc.Respond(ctx, f.invitee.ID, second.ID, true))

	list, err := f.svc.ListForUser(ctx, f.invitee.ID)
	require.NoError(t, err)
	require.Empty(t, list)
}

func TestRevoke(t *testing.T) {
	ctx := context.Background()
	f := newFixture(t)

	toAdmin, err := f.svc.Invite(ctx, f.creator.ID, f.org.ID, InviteDTO{Email: f.invitee.Email, Role: enums.MemberRoleAdmin})
	require.NoError(t, err)

	// Admins cannot revoke an admin invitation.
	err = f.svc.Revoke(ctx, f.admin.ID, f.org.ID, toAdmin.ID)
	requireCode(t, err, pkgerrors.CodeForbidden)

	require.NoError(t, f.svc.Revoke(ctx, f.creator.ID, f.org.ID, toAdmin.ID))

	err = f.svc.Revoke(ctx, f.creator.ID, f.org.ID, toAdmin.ID)
	requireCode(t, err, pkgerrors.CodeNotFound)

	// An invitation from another organization is invisible here.
	other := f.seedUser(t, "other-owner@example.com")
	otherOrg, err := f.orgs.Create(ctx, other.ID, organizations.CreateOrganizationDTO{Name: "Elsewhere"})
	require.NoError(t, err)
	foreign, err := f.svc.Invite(ctx, other.ID, otherOrg.ID, InviteDTO{Email: f.invitee.Email, Role: enums.MemberRoleStaff})
	require.NoError(t, err)

	err = f.svc.Revoke(ctx, f.creator.ID, f.org.ID, foreign.ID)
	requireCode(t, err, pkgerrors.CodeNotFound)
}

func TestListForUser(t *testing.T) {
	ctx := context.Background()
	f := newFixture(t)

	_, err := f.svc.Invite(ctx, f.creator.ID, f.org.ID, InviteDTO{Email: f.invitee.Email, Role: enums.MemberRoleStaff})
	require.NoError(t, err)

	list, err := f.svc.ListForUser(ctx, f.invitee.ID)
	require.NoError(t, err)
	require.Len(t, list, 1)
	require.Equal(t, f.org.ID, list[0].OrganizationID)
	require.Equal(t, "Orbit Events", list[0].OrganizationName)
	require.Equal(t, f.creator.Name, list[0].InviterName)

	none, err := f.svc.ListForUser(ctx, f.staff.ID)
	require.NoError(t, err)
	require.Empty(t, none)
}
