package memberships

import (
	"context"
	"testing"

	"github.com/google/uuid"
	"github.com/stretchr/testify/require"
	"gorm.io/driver/sqlite"
	"gorm.io/gorm"
	gormlogger "gorm.io/gorm/logger"

	"github.com/nmoreau/gatherly-backend/pkg/db"
	"github.com/nmoreau/gatherly-backend/pkg/db/models"
	"github.com/nmoreau/gatherly-backend/pkg/enums"
)

func newTestDB(t *testing.T) *gorm.DB {
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
	))

	t.Cleanup(func() {
		sqlDB, err := conn.DB()
		if err == nil {
			sqlDB.Close()
		}
	})
	return conn
}

func seedUser(t *testing.T, conn *gorm.DB, email string) *models.User {
	t.Helper()
	user := &models.User{ID: uuid.New(), Email: email, Name: "Test " + email}
	require.NoError(t, conn.Create(user).Error)
	return user
}

func seedOrganization(t *testing.T, conn *gorm.DB, owner uuid.UUID) *models.Organization {
	t.Helper()
	contact := "contact@example.com"
	org := &models.Organization{
		ID:           uuid.New(),
		Name:         "Org " + uuid.NewString()[:8],
		OwnerID:      owner,
		ContactEmail: &contact,
	}
	require.NoError(t, conn.Create(org).Error)
	return org
}

func TestRepositoryRoleLifecycle(t *testing.T) {
	ctx := context.Background()
	conn := newTestDB(t)
	repo := NewRepository(conn)

	user := seedUser(t, conn, "role@example.com")
	org := seedOrganization(t, conn, user.ID)

	_, err := repo.GetRole(ctx, user.ID, org.ID)
	require.ErrorIs(t, err, gorm.ErrRecordNotFound)

	_, err = repo.Create(ctx, user.ID, org.ID, enums.MemberRoleStaff)
	require.NoError(t, err)

	role, err := repo.GetRole(ctx, user.ID, org.ID)
	require.NoError(t, err)
	require.Equal(t, enums.MemberRoleStaff, role)

	require.NoError(t, repo.UpdateRole(ctx, user.ID, org.ID, enums.MemberRoleAdmin))
	role, err = repo.GetRole(ctx, user.ID, org.ID)
	require.NoError(t, err)
	require.Equal(t, enums.MemberRoleAdmin, role)

	require.NoError(t, repo.Delete(ctx, user.ID, org.ID))
	_, err = repo.GetRole(ctx, user.ID, org.ID)
	require.ErrorIs(t, err, gorm.ErrRecordNotFound)
}

func TestRepositoryCreateRejectsDuplicates(t *testing.T) {
	ctx := context.Background()
	conn := newTestDB(t)
	repo := NewRepository(conn)

	user := seedUser(t, conn, "dup@example.com")
	org := seedOrganization(t, conn, user.ID)

	_, err := repo.Create(ctx, user.ID, org.ID, enums.MemberRoleCreator)
	require.NoError(t, err)

	_, err = repo.Create(ctx, user.ID, org.ID, enums.MemberRoleStaff)
	require.Error(t, err)
	require.True(t, db.IsUniqueViolation(err))
}

func TestRepositoryCreateRejectsInvalidRole(t *testing.T) {
	ctx := context.Background()
	conn := newTestDB(t)
	repo := NewRepository(conn)

	_, err := repo.Create(ctx, uuid.New(), uuid.New(), enums.MemberRole("owner"))
	require.Error(t, err)
}

func TestRepositoryUpdateRoleMissingMembership(t *testing.T) {
	ctx := context.Background()
	conn := newTestDB(t)
	repo := NewRepository(conn)

	err := repo.UpdateRole(ctx, uuid.New(), uuid.New(), enums.MemberRoleStaff)
	require.ErrorIs(t, err, gorm.ErrRecordNotFound)
}

func TestRepositoryListMembers(t *testing.T) {
	ctx := context.Background()
	conn := newTestDB(t)
	repo := NewRepository(conn)

	creator := seedUser(t, conn, "creator@example.com")
	staff := seedUser(t, conn, "staff@example.com")
	org := seedOrganization(t, conn, creator.ID)
	other := seedOrganization(t, conn, creator.ID)

	_, err := repo.Create(ctx, creator.ID, org.ID, enums.MemberRoleCreator)
	require.NoError(t, err)
	_, err = repo.Create(ctx, staff.ID, org.ID, enums.MemberRoleStaff)
	require.NoError(t, err)
	_, err = repo.Create(ctx, creator.ID, other.ID, enums.MemberRoleCreator)
	require.NoError(t, err)

	members, err := repo.ListMembers(ctx, org.ID)
	require.NoError(t, err)
	require.Len(t, members, 2)

	byEmail := map[string]MemberDTO{}
	for _, m := range members {
		byEmail[m.Email] = m
	}
	require.Equal(t, enums.MemberRoleCreator, byEmail["creator@example.com"].Role)
	require.Equal(t, enums.MemberRoleStaff, byEmail["staff@example.com"].Role)
	require.Equal(t, staff.ID, byEmail["staff@example.com"].UserID)
}

func TestRepositoryListOrganizations(t *testing.T) {
	ctx := context.Background()
	conn := newTestDB(t)
	repo := NewRepository(conn)

	user := seedUser(t, conn, "multi@example.com")
	first := seedOrganization(t, conn, user.ID)
	second := seedOrganization(t, conn, user.ID)
	seedOrganization(t, conn, user.ID) // never joined

	_, err := repo.Create(ctx, user.ID, first.ID, enums.MemberRoleCreator)
	require.NoError(t, err)
	_, err = repo.Create(ctx, user.ID, second.ID, enums.MemberRoleAdmin)
	require.NoError(t, err)

	orgs, err := repo.ListOrganizations(ctx, user.ID)
	require.NoError(t, err)
	require.Len(t, orgs, 2)

	roles := map[uuid.UUID]enums.MemberRole{}
	for _, o := range orgs {
		roles[o.ID] = o.Role
	}
	require.Equal(t, enums.MemberRoleCreator, roles[first.ID])
	require.Equal(t, enums.MemberRoleAdmin, roles[second.ID])
}

func TestRepositoryGetOrganizationForMember(t *testing.T) {
	ctx := context.Background()
	conn := newTestDB(t)
	repo := NewRepository(conn)

	member := seedUser(t, conn, "member@example.com")
	outsider := seedUser(t, conn, "outsider@example.com")
	org := seedOrganization(t, conn, member.ID)

	_, err := repo.Create(ctx, member.ID, org.ID, enums.MemberRoleCreator)
	require.NoError(t, err)

	found, err := repo.GetOrganizationForMember(ctx, member.ID, org.ID)
	require.NoError(t, err)
	require.Equal(t, org.ID, found.ID)

	_, err = repo.GetOrganizationForMember(ctx, outsider.ID, org.ID)
	require.ErrorIs(t, err, gorm.ErrRecordNotFound)
}
