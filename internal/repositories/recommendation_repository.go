package repositories

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"time"

	"github.com/Totarae/recommender/internal/model"
	"github.com/Totarae/recommender/internal/storage"
	"github.com/jackc/pgx/v5/pgconn"
)

const uniqueViolation = "23505"

// RecommendationRepository хранит рекомендации в PostgreSQL.
type RecommendationRepository struct {
	DB *sql.DB
}

// NewRecommendationRepository создаёт новый экземпляр RecommendationRepository.
func NewRecommendationRepository(db *sql.DB) *RecommendationRepository {
	return &RecommendationRepository{DB: db}
}

// Create сохраняет рекомендацию с нулевым рейтингом.
// Нарушение уникального индекса по имени возвращается как storage.ErrDuplicateName.
func (r *RecommendationRepository) Create(ctx context.Context, rec *model.Recommendation) error {
	query := `INSERT INTO recommendations (name, youtube_link, score, created_at)
              VALUES ($1, $2, 0, $3)
              RETURNING id`

	if rec.Created.IsZero() {
		rec.Created = time.Now()
	}
	err := r.DB.QueryRowContext(ctx, query, rec.Name, rec.YoutubeLink, rec.Created).Scan(&rec.ID)
	if err != nil {
		var pgErr *pgconn.PgError
		if errors.As(err, &pgErr) && pgErr.Code == uniqueViolation {
			return storage.ErrDuplicateName
		}
		return fmt.Errorf("database insert error: %w", err)
	}
	rec.Score = 0
	return nil
}

// FindByName ищет рекомендацию по имени.
func (r *RecommendationRepository) FindByName(ctx context.Context, name string) (*model.Recommendation, error) {
	query := `SELECT id, name, youtube_link, score, created_at FROM recommendations WHERE name = $1`
	return r.queryOne(ctx, query, name)
}

// GetByID ищет рекомендацию по ID.
func (r *RecommendationRepository) GetByID(ctx context.Context, id int64) (*model.Recommendation, error) {
	query := `SELECT id, name, youtube_link, score, created_at FROM recommendations WHERE id = $1`
	return r.queryOne(ctx, query, id)
}

// ApplyVote меняет рейтинг в одной транзакции под блокировкой строки.
// Если новый рейтинг ниже floor, строка удаляется вместо обновления.
func (r *RecommendationRepository) ApplyVote(ctx context.Context, id int64, delta, floor int) (model.VoteResult, error) {
	tx, err := r.DB.BeginTx(ctx, nil)
	if err != nil {
		return model.VoteResult{}, fmt.Errorf("failed to begin transaction: %w", err)
	}
	defer tx.Rollback()

	rec := &model.Recommendation{}
	err = tx.QueryRowContext(ctx,
		`SELECT id, name, youtube_link, score, created_at FROM recommendations WHERE id = $1 FOR UPDATE`, id,
	).Scan(&rec.ID, &rec.Name, &rec.YoutubeLink, &rec.Score, &rec.Created)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return model.VoteResult{}, storage.ErrNotFound
		}
		return model.VoteResult{}, fmt.Errorf("failed to lock recommendation: %w", err)
	}

	rec.Score += delta
	result := model.VoteResult{ID: id, Score: rec.Score}
	if rec.Score < floor {
		result.Removed = true
		_, err = tx.ExecContext(ctx, `DELETE FROM recommendations WHERE id = $1`, id)
	} else {
		result.Recommendation = rec
		_, err = tx.ExecContext(ctx, `UPDATE recommendations SET score = $1 WHERE id = $2`, rec.Score, id)
	}
	if err != nil {
		return model.VoteResult{}, fmt.Errorf("failed to apply vote: %w", err)
	}

	if err := tx.Commit(); err != nil {
		return model.VoteResult{}, fmt.Errorf("failed to commit transaction: %w", err)
	}
	return result, nil
}

// Top возвращает до amount рекомендаций по убыванию рейтинга.
func (r *RecommendationRepository) Top(ctx context.Context, amount int) ([]model.Recommendation, error) {
	query := `SELECT id, name, youtube_link, score, created_at FROM recommendations
              ORDER BY score DESC, id ASC LIMIT $1`
	return r.queryMany(ctx, query, amount)
}

// Latest возвращает до limit последних рекомендаций.
func (r *RecommendationRepository) Latest(ctx context.Context, limit int) ([]model.Recommendation, error) {
	query := `SELECT id, name, youtube_link, score, created_at FROM recommendations
              ORDER BY id DESC LIMIT $1`
	return r.queryMany(ctx, query, limit)
}

// Random возвращает случайную рекомендацию с рейтингом из диапазона.
func (r *RecommendationRepository) Random(ctx context.Context, scores model.ScoreRange) (*model.Recommendation, error) {
	query := `SELECT id, name, youtube_link, score, created_at FROM recommendations
              WHERE ($1::int IS NULL OR score >= $1) AND ($2::int IS NULL OR score <= $2)
              ORDER BY random() LIMIT 1`
	return r.queryOne(ctx, query, nullableInt(scores.Min), nullableInt(scores.Max))
}

// Ping проверяет доступность базы данных.
func (r *RecommendationRepository) Ping(ctx context.Context) error {
	_, err := r.DB.ExecContext(ctx, "SELECT 1")
	return err
}

func (r *RecommendationRepository) queryOne(ctx context.Context, query string, args ...any) (*model.Recommendation, error) {
	rec := &model.Recommendation{}
	err := r.DB.QueryRowContext(ctx, query, args...).Scan(
		&rec.ID, &rec.Name, &rec.YoutubeLink, &rec.Score, &rec.Created,
	)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, storage.ErrNotFound
		}
		return nil, fmt.Errorf("database error: %w", err)
	}
	return rec, nil
}

func (r *RecommendationRepository) queryMany(ctx context.Context, query string, args ...any) ([]model.Recommendation, error) {
	rows, err := r.DB.QueryContext(ctx, query, args...)
	if err != nil {
		return nil, fmt.Errorf("failed to query recommendations: %w", err)
	}
	defer rows.Close()

	results := make([]model.Recommendation, 0)
	for rows.Next() {
		var rec model.Recommendation
		if err := rows.Scan(&rec.ID, &rec.Name, &rec.YoutubeLink, &rec.Score, &rec.Created); err != nil {
			return nil, fmt.Errorf("failed to scan row: %w", err)
		}
		results = append(results, rec)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("failed to iterate rows: %w", err)
	}
	return results, nil
}

func nullableInt(v *int) sql.NullInt32 {
	if v == nil {
		return sql.NullInt32{}
	}
	return sql.NullInt32{Int32: int32(*v), Valid: true}
}
