package repositories

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/DATA-DOG/go-sqlmock"
	"github.com/Totarae/recommender/internal/model"
	"github.com/Totarae/recommender/internal/storage"
	"github.com/jackc/pgx/v5/pgconn"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

var (
	columns = []string{"id", "name", "youtube_link", "score", "created_at"}
	created = time.Date(2024, 5, 1, 12, 0, 0, 0, time.UTC)
)

const link = "https://www.youtube.com/watch?v=5NV6Rdv1a3I"

func newMock(t *testing.T) (*RecommendationRepository, sqlmock.Sqlmock) {
	t.Helper()
	db, mock, err := sqlmock.New()
	require.NoError(t, err)
	t.Cleanup(func() { db.Close() })
	return NewRecommendationRepository(db), mock
}

func TestCreate(t *testing.T) {
	repo, mock := newMock(t)

	mock.ExpectQuery("INSERT INTO recommendations").
		WithArgs("alice", link, sqlmock.AnyArg()).
		WillReturnRows(sqlmock.NewRows([]string{"id"}).AddRow(7))

	rec := &model.Recommendation{Name: "alice", YoutubeLink: link}
	require.NoError(t, repo.Create(context.Background(), rec))
	assert.Equal(t, int64(7), rec.ID)
	assert.Equal(t, 0, rec.Score)
	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestCreate_UniqueViolation(t *testing.T) {
	repo, mock := newMock(t)

	mock.ExpectQuery("INSERT INTO recommendations").
		WillReturnError(&pgconn.PgError{Code: "23505", Message: "duplicate key value violates unique constraint"})

	err := repo.Create(context.Background(), &model.Recommendation{Name: "alice", YoutubeLink: link})
	assert.ErrorIs(t, err, storage.ErrDuplicateName)
	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestGetByID(t *testing.T) {
	repo, mock := newMock(t)

	mock.ExpectQuery("SELECT id, name, youtube_link, score, created_at FROM recommendations WHERE id").
		WithArgs(int64(3)).
		WillReturnRows(sqlmock.NewRows(columns).AddRow(3, "alice", link, 4, created))

	rec, err := repo.GetByID(context.Background(), 3)
	require.NoError(t, err)
	assert.Equal(t, &model.Recommendation{ID: 3, Name: "alice", YoutubeLink: link, Score: 4, Created: created}, rec)
	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestFindByName_NotFound(t *testing.T) {
	repo, mock := newMock(t)

	mock.ExpectQuery("FROM recommendations WHERE name").
		WithArgs("nobody").
		WillReturnRows(sqlmock.NewRows(columns))

	_, err := repo.FindByName(context.Background(), "nobody")
	assert.ErrorIs(t, err, storage.ErrNotFound)
	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestApplyVote_Update(t *testing.T) {
	repo, mock := newMock(t)

	mock.ExpectBegin()
	mock.ExpectQuery("SELECT (.+) FROM recommendations WHERE id = \\$1 FOR UPDATE").
		WithArgs(int64(1)).
		WillReturnRows(sqlmock.NewRows(columns).AddRow(1, "alice", link, 2, created))
	mock.ExpectExec("UPDATE recommendations SET score").
		WithArgs(3, int64(1)).
		WillReturnResult(sqlmock.NewResult(0, 1))
	mock.ExpectCommit()

	res, err := repo.ApplyVote(context.Background(), 1, 1, model.ScoreFloor)
	require.NoError(t, err)
	assert.Equal(t, model.VoteResult{
		ID:    1,
		Score: 3,
		Recommendation: &model.Recommendation{
			ID: 1, Name: "alice", YoutubeLink: link, Score: 3, Created: created,
		},
	}, res)
	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestApplyVote_DeleteBelowFloor(t *testing.T) {
	repo, mock := newMock(t)

	mock.ExpectBegin()
	mock.ExpectQuery("SELECT (.+) FROM recommendations WHERE id = \\$1 FOR UPDATE").
		WithArgs(int64(1)).
		WillReturnRows(sqlmock.NewRows(columns).AddRow(1, "alice", link, -5, created))
	mock.ExpectExec("DELETE FROM recommendations").
		WithArgs(int64(1)).
		WillReturnResult(sqlmock.NewResult(0, 1))
	mock.ExpectCommit()

	res, err := repo.ApplyVote(context.Background(), 1, -1, model.ScoreFloor)
	require.NoError(t, err)
	assert.True(t, res.Removed)
	assert.Equal(t, -6, res.Score)
	assert.Nil(t, res.Recommendation)
	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestApplyVote_FloorIsInclusive(t *testing.T) {
	repo, mock := newMock(t)

	mock.ExpectBegin()
	mock.ExpectQuery("SELECT (.+) FROM recommendations WHERE id = \\$1 FOR UPDATE").
		WithArgs(int64(1)).
		WillReturnRows(sqlmock.NewRows(columns).AddRow(1, "alice", link, -4, created))
	mock.ExpectExec("UPDATE recommendations SET score").
		WithArgs(-5, int64(1)).
		WillReturnResult(sqlmock.NewResult(0, 1))
	mock.ExpectCommit()

	res, err := repo.ApplyVote(context.Background(), 1, -1, model.ScoreFloor)
	require.NoError(t, err)
	assert.False(t, res.Removed)
	assert.Equal(t, -5, res.Score)
	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestApplyVote_NotFound(t *testing.T) {
	repo, mock := newMock(t)

	mock.ExpectBegin()
	mock.ExpectQuery("SELECT (.+) FROM recommendations WHERE id = \\$1 FOR UPDATE").
		WithArgs(int64(9)).
		WillReturnRows(sqlmock.NewRows(columns))
	mock.ExpectRollback()

	_, err := repo.ApplyVote(context.Background(), 9, 1, model.ScoreFloor)
	assert.ErrorIs(t, err, storage.ErrNotFound)
	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestApplyVote_ExecErrorRollsBack(t *testing.T) {
	repo, mock := newMock(t)

	mock.ExpectBegin()
	mock.ExpectQuery("SELECT (.+) FROM recommendations WHERE id = \\$1 FOR UPDATE").
		WillReturnRows(sqlmock.NewRows(columns).AddRow(1, "alice", link, 0, created))
	mock.ExpectExec("UPDATE recommendations SET score").
		WillReturnError(errors.New("connection reset"))
	mock.ExpectRollback()

	_, err := repo.ApplyVote(context.Background(), 1, 1, model.ScoreFloor)
	assert.Error(t, err)
	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestTop(t *testing.T) {
	repo, mock := newMock(t)
	now := time.Now()

	mock.ExpectQuery("ORDER BY score DESC").
		WithArgs(2).
		WillReturnRows(sqlmock.NewRows(columns).
			AddRow(2, "b", link, 9, now).
			AddRow(1, "a", link, 3, now))

	recs, err := repo.Top(context.Background(), 2)
	require.NoError(t, err)
	require.Len(t, recs, 2)
	assert.Equal(t, int64(2), recs[0].ID)
	assert.Equal(t, int64(1), recs[1].ID)
	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestLatest_Empty(t *testing.T) {
	repo, mock := newMock(t)

	mock.ExpectQuery("ORDER BY id DESC").
		WithArgs(model.DefaultListLimit).
		WillReturnRows(sqlmock.NewRows(columns))

	recs, err := repo.Latest(context.Background(), model.DefaultListLimit)
	require.NoError(t, err)
	assert.NotNil(t, recs)
	assert.Empty(t, recs)
	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestRandom_NoRows(t *testing.T) {
	repo, mock := newMock(t)
	minScore := 11

	mock.ExpectQuery("ORDER BY random").
		WithArgs(sqlmock.AnyArg(), sqlmock.AnyArg()).
		WillReturnRows(sqlmock.NewRows(columns))

	_, err := repo.Random(context.Background(), model.ScoreRange{Min: &minScore})
	assert.ErrorIs(t, err, storage.ErrNotFound)
	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestPing(t *testing.T) {
	repo, mock := newMock(t)

	mock.ExpectExec("SELECT 1").WillReturnResult(sqlmock.NewResult(0, 0))

	assert.NoError(t, repo.Ping(context.Background()))
	assert.NoError(t, mock.ExpectationsWereMet())
}
