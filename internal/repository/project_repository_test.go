package repository

import (
	"testing"
	"time"

	"github.com/DATA-DOG/go-sqlmock"
	"github.com/stretchr/testify/require"
	"gorm.io/driver/postgres"
	"gorm.io/gorm"
	"gorm.io/gorm/logger"

	"github.com/itjee/jwp-pms-v1/internal/models"
)

func setupMockDB(t *testing.T) (*gorm.DB, sqlmock.Sqlmock) {
	t.Helper()

	sqlDB, mock, err := sqlmock.New()
	require.NoError(t, err)

	db, err := gorm.Open(postgres.New(postgres.Config{
		Conn:                 sqlDB,
		PreferSimpleProtocol: true,
	}), &gorm.Config{
		Logger: logger.Default.LogMode(logger.Silent),
	})
	require.NoError(t, err)

	t.Cleanup(func() {
		sqlDB.Close()
	})

	return db, mock
}

func expectProjectLock(mock sqlmock.Sqlmock, projectID uint64) {
	mock.ExpectQuery(`SELECT "id" FROM "projects" WHERE .*FOR UPDATE`).
		WillReturnRows(sqlmock.NewRows([]string{"id"}).AddRow(projectID))
}

func memberRow(id, projectID, userID uint64, role models.ProjectRole) *sqlmock.Rows {
	now := time.Now()
	return sqlmock.NewRows([]string{
		"id", "project_id", "user_id", "role", "is_active",
		"joined_at", "created_at", "updated_at",
	}).AddRow(id, projectID, userID, string(role), true, now, now, now)
}

func TestGormProjectRepository_RemoveMemberLocksProject(t *testing.T) {
	db, mock := setupMockDB(t)
	repo := NewProjectRepository(db)

	mock.ExpectBegin()
	// The project row must be read under a row lock on non-sqlite dialects;
	// the lock is what makes the owner-count check race-free.
	expectProjectLock(mock, 1)
	mock.ExpectQuery(`SELECT \* FROM "project_members" WHERE project_id`).
		WillReturnRows(memberRow(10, 1, 2, models.ProjectRoleDeveloper))
	mock.ExpectExec(`UPDATE "project_members" SET`).
		WillReturnResult(sqlmock.NewResult(0, 1))
	mock.ExpectCommit()

	err := repo.RemoveMember(1, 2)
	require.NoError(t, err)
	require.NoError(t, mock.ExpectationsWereMet())
}

func TestGormProjectRepository_RemoveMemberLastOwner(t *testing.T) {
	db, mock := setupMockDB(t)
	repo := NewProjectRepository(db)

	mock.ExpectBegin()
	expectProjectLock(mock, 1)
	mock.ExpectQuery(`SELECT \* FROM "project_members" WHERE project_id`).
		WillReturnRows(memberRow(10, 1, 2, models.ProjectRoleOwner))
	mock.ExpectQuery(`SELECT count\(\*\) FROM "project_members"`).
		WillReturnRows(sqlmock.NewRows([]string{"count"}).AddRow(1))
	mock.ExpectRollback()

	err := repo.RemoveMember(1, 2)
	require.ErrorIs(t, err, ErrLastProjectOwner)
	require.NoError(t, mock.ExpectationsWereMet())
}

func TestGormProjectRepository_RemoveMemberSecondOwnerAllowed(t *testing.T) {
	db, mock := setupMockDB(t)
	repo := NewProjectRepository(db)

	mock.ExpectBegin()
	expectProjectLock(mock, 1)
	mock.ExpectQuery(`SELECT \* FROM "project_members" WHERE project_id`).
		WillReturnRows(memberRow(10, 1, 2, models.ProjectRoleOwner))
	mock.ExpectQuery(`SELECT count\(\*\) FROM "project_members"`).
		WillReturnRows(sqlmock.NewRows([]string{"count"}).AddRow(2))
	mock.ExpectExec(`UPDATE "project_members" SET`).
		WillReturnResult(sqlmock.NewResult(0, 1))
	mock.ExpectCommit()

	err := repo.RemoveMember(1, 2)
	require.NoError(t, err)
	require.NoError(t, mock.ExpectationsWereMet())
}

func TestGormProjectRepository_RemoveMemberMissing(t *testing.T) {
	db, mock := setupMockDB(t)
	repo := NewProjectRepository(db)

	mock.ExpectBegin()
	expectProjectLock(mock, 1)
	mock.ExpectQuery(`SELECT \* FROM "project_members" WHERE project_id`).
		WillReturnRows(sqlmock.NewRows([]string{"id"}))
	mock.ExpectRollback()

	err := repo.RemoveMember(1, 2)
	require.ErrorIs(t, err, ErrMemberNotFound)
	require.NoError(t, mock.ExpectationsWereMet())
}
