package repository

import (
	"database/sql"
	"errors"
	"testing"
	"time"

	"github.com/DATA-DOG/go-sqlmock"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"

	"github.com/krishna2206/pharmanio-backend/internal/models"
)

func setupRosterRepo(t *testing.T) (*sql.DB, sqlmock.Sqlmock, *RosterRepository) {
	db, mock, err := sqlmock.New()
	require.NoError(t, err)

	logger := zap.NewNop()
	repo := NewRosterRepository(db, logger)

	return db, mock, repo
}

func testPeriod() models.ValidityPeriod {
	return models.ValidityPeriod{
		StartDate: time.Date(2025, time.January, 5, 0, 0, 0, 0, time.UTC),
		EndDate:   time.Date(2025, time.January, 11, 0, 0, 0, 0, time.UTC),
	}
}

func TestCurrent_Found(t *testing.T) {
	db, mock, repo := setupRosterRepo(t)
	defer db.Close()

	period := testPeriod()
	updatedAt := time.Date(2025, time.January, 5, 6, 0, 12, 0, time.UTC)

	rows := sqlmock.NewRows([]string{"id", "start_date", "end_date", "pharmacy_ids", "updated_at"}).
		AddRow(1, period.StartDate, period.EndDate, []byte(`[7,3,12]`), updatedAt)

	mock.ExpectQuery(`SELECT id, start_date, end_date, pharmacy_ids, updated_at`).
		WillReturnRows(rows)

	roster, err := repo.Current()

	require.NoError(t, err)
	require.NotNil(t, roster)
	assert.Equal(t, int64(1), roster.ID)
	assert.Equal(t, period.StartDate, roster.Period.StartDate)
	assert.Equal(t, period.EndDate, roster.Period.EndDate)
	assert.Equal(t, []int64{7, 3, 12}, roster.PharmacyIDs)
	assert.Equal(t, updatedAt, roster.UpdatedAt)

	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestCurrent_NoRosterYet(t *testing.T) {
	db, mock, repo := setupRosterRepo(t)
	defer db.Close()

	mock.ExpectQuery(`SELECT id, start_date, end_date, pharmacy_ids, updated_at`).
		WillReturnError(sql.ErrNoRows)

	roster, err := repo.Current()

	require.NoError(t, err)
	assert.Nil(t, roster)

	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestCurrent_MalformedIDSet(t *testing.T) {
	db, mock, repo := setupRosterRepo(t)
	defer db.Close()

	rows := sqlmock.NewRows([]string{"id", "start_date", "end_date", "pharmacy_ids", "updated_at"}).
		AddRow(1, testPeriod().StartDate, testPeriod().EndDate, []byte(`not-json`), time.Now())

	mock.ExpectQuery(`SELECT id, start_date, end_date, pharmacy_ids, updated_at`).
		WillReturnRows(rows)

	_, err := repo.Current()

	assert.Error(t, err)
	assert.Contains(t, err.Error(), "failed to unmarshal pharmacy ids")

	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestUpsert_CreatesWhenAbsent(t *testing.T) {
	db, mock, repo := setupRosterRepo(t)
	defer db.Close()

	period := testPeriod()

	mock.ExpectBegin()
	mock.ExpectQuery(`SELECT id FROM on_duty_pharmacies`).
		WillReturnError(sql.ErrNoRows)
	mock.ExpectExec(`INSERT INTO on_duty_pharmacies`).
		WithArgs(period.StartDate, period.EndDate, []byte(`[7,3]`), sqlmock.AnyArg()).
		WillReturnResult(sqlmock.NewResult(1, 1))
	mock.ExpectCommit()

	err := repo.Upsert(period, []int64{7, 3})

	require.NoError(t, err)
	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestUpsert_UpdatesFirstCreatedRow(t *testing.T) {
	db, mock, repo := setupRosterRepo(t)
	defer db.Close()

	period := testPeriod()

	mock.ExpectBegin()
	mock.ExpectQuery(`SELECT id FROM on_duty_pharmacies`).
		WillReturnRows(sqlmock.NewRows([]string{"id"}).AddRow(1))
	mock.ExpectExec(`UPDATE on_duty_pharmacies`).
		WithArgs(period.StartDate, period.EndDate, []byte(`[7,3]`), sqlmock.AnyArg(), int64(1)).
		WillReturnResult(sqlmock.NewResult(0, 1))
	mock.ExpectCommit()

	err := repo.Upsert(period, []int64{7, 3})

	require.NoError(t, err)
	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestUpsert_EmptyIDSetStoresEmptyArray(t *testing.T) {
	db, mock, repo := setupRosterRepo(t)
	defer db.Close()

	period := testPeriod()

	mock.ExpectBegin()
	mock.ExpectQuery(`SELECT id FROM on_duty_pharmacies`).
		WillReturnRows(sqlmock.NewRows([]string{"id"}).AddRow(1))
	mock.ExpectExec(`UPDATE on_duty_pharmacies`).
		WithArgs(period.StartDate, period.EndDate, []byte(`[]`), sqlmock.AnyArg(), int64(1)).
		WillReturnResult(sqlmock.NewResult(0, 1))
	mock.ExpectCommit()

	err := repo.Upsert(period, nil)

	require.NoError(t, err)
	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestUpsert_Idempotent(t *testing.T) {
	db, mock, repo := setupRosterRepo(t)
	defer db.Close()

	period := testPeriod()

	for i := 0; i < 2; i++ {
		mock.ExpectBegin()
		mock.ExpectQuery(`SELECT id FROM on_duty_pharmacies`).
			WillReturnRows(sqlmock.NewRows([]string{"id"}).AddRow(1))
		mock.ExpectExec(`UPDATE on_duty_pharmacies`).
			WithArgs(period.StartDate, period.EndDate, []byte(`[7,3]`), sqlmock.AnyArg(), int64(1)).
			WillReturnResult(sqlmock.NewResult(0, 1))
		mock.ExpectCommit()
	}

	// Reconciling the same inputs twice writes the same observable state.
	require.NoError(t, repo.Upsert(period, []int64{7, 3}))
	require.NoError(t, repo.Upsert(period, []int64{7, 3}))

	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestUpsert_UpdateErrorRollsBack(t *testing.T) {
	db, mock, repo := setupRosterRepo(t)
	defer db.Close()

	period := testPeriod()

	mock.ExpectBegin()
	mock.ExpectQuery(`SELECT id FROM on_duty_pharmacies`).
		WillReturnRows(sqlmock.NewRows([]string{"id"}).AddRow(1))
	mock.ExpectExec(`UPDATE on_duty_pharmacies`).
		WillReturnError(errors.New("disk full"))
	mock.ExpectRollback()

	err := repo.Upsert(period, []int64{7})

	assert.Error(t, err)
	assert.Contains(t, err.Error(), "failed to update roster")

	assert.NoError(t, mock.ExpectationsWereMet())
}
