package service

import (
	"context"
	"errors"
	"fmt"
	"math/rand"

	"github.com/Totarae/recommender/internal/apperr"
	"github.com/Totarae/recommender/internal/model"
	"github.com/Totarae/recommender/internal/storage"
	"go.uber.org/zap"
)

//go:generate mockgen -destination=mocks/mock_repository.go -package=mocks . Repository

// Repository хранилище рекомендаций.
type Repository interface {
	Create(ctx context.Context, rec *model.Recommendation) error
	FindByName(ctx context.Context, name string) (*model.Recommendation, error)
	GetByID(ctx context.Context, id int64) (*model.Recommendation, error)
	ApplyVote(ctx context.Context, id int64, delta, floor int) (model.VoteResult, error)
	Top(ctx context.Context, amount int) ([]model.Recommendation, error)
	Latest(ctx context.Context, limit int) ([]model.Recommendation, error)
	Random(ctx context.Context, scores model.ScoreRange) (*model.Recommendation, error)
	Ping(ctx context.Context) error
}

const (
	msgDuplicateName = "Recommendations names must be unique"
	msgNotFound      = "Recommendation not found"

	// popularShare доля случайных выборок из популярных рекомендаций.
	popularShare = 0.7
	// popularScore порог рейтинга популярной рекомендации (строго больше).
	popularScore = 10
)

// RecommendationService реализует правила создания и голосования.
type RecommendationService struct {
	Repo   Repository
	Logger *zap.Logger
	// Float64 источник случайности для GetRandom, [0, 1).
	Float64 func() float64
}

func NewRecommendationService(repo Repository, logger *zap.Logger) *RecommendationService {
	return &RecommendationService{
		Repo:    repo,
		Logger:  logger,
		Float64: rand.Float64,
	}
}

// Create сохраняет новую рекомендацию. Имя должно быть уникальным среди существующих.
func (s *RecommendationService) Create(ctx context.Context, name, link string) (*model.Recommendation, error) {
	_, err := s.Repo.FindByName(ctx, name)
	switch {
	case err == nil:
		return nil, apperr.Conflict(msgDuplicateName)
	case !errors.Is(err, storage.ErrNotFound):
		return nil, fmt.Errorf("find by name: %w", err)
	}

	rec := &model.Recommendation{Name: name, YoutubeLink: link}
	if err := s.Repo.Create(ctx, rec); err != nil {
		if errors.Is(err, storage.ErrDuplicateName) {
			return nil, apperr.Conflict(msgDuplicateName)
		}
		return nil, fmt.Errorf("create: %w", err)
	}

	s.Logger.Info("recommendation created", zap.Int64("id", rec.ID), zap.String("name", rec.Name))
	return rec, nil
}

// Upvote увеличивает рейтинг на 1 и возвращает обновлённую рекомендацию.
func (s *RecommendationService) Upvote(ctx context.Context, id int64) (*model.Recommendation, error) {
	res, err := s.vote(ctx, id, +1)
	if err != nil {
		return nil, err
	}
	return res.Recommendation, nil
}

// Downvote уменьшает рейтинг на 1. Рекомендация с рейтингом ниже model.ScoreFloor удаляется.
func (s *RecommendationService) Downvote(ctx context.Context, id int64) (model.VoteResult, error) {
	res, err := s.vote(ctx, id, -1)
	if err != nil {
		return model.VoteResult{}, err
	}
	if res.Removed {
		s.Logger.Info("recommendation removed", zap.Int64("id", id), zap.Int("score", res.Score))
	}
	return res, nil
}

func (s *RecommendationService) vote(ctx context.Context, id int64, delta int) (model.VoteResult, error) {
	res, err := s.Repo.ApplyVote(ctx, id, delta, model.ScoreFloor)
	if err != nil {
		if errors.Is(err, storage.ErrNotFound) {
			return model.VoteResult{}, apperr.NotFound(msgNotFound)
		}
		return model.VoteResult{}, fmt.Errorf("vote %d: %w", id, err)
	}
	s.Logger.Debug("vote applied", zap.Int64("id", id), zap.Int("delta", delta), zap.Int("score", res.Score))
	return res, nil
}

// GetByID возвращает рекомендацию по ID.
func (s *RecommendationService) GetByID(ctx context.Context, id int64) (*model.Recommendation, error) {
	rec, err := s.Repo.GetByID(ctx, id)
	if err != nil {
		if errors.Is(err, storage.ErrNotFound) {
			return nil, apperr.NotFound(msgNotFound)
		}
		return nil, fmt.Errorf("get %d: %w", id, err)
	}
	return rec, nil
}

// GetRandom выбирает популярную рекомендацию (рейтинг > 10) с вероятностью 70%,
// иначе из диапазона [-5, 10]. Пустая группа заменяется выборкой из всех записей.
func (s *RecommendationService) GetRandom(ctx context.Context) (*model.Recommendation, error) {
	rec, err := s.Repo.Random(ctx, s.pickRange())
	if errors.Is(err, storage.ErrNotFound) {
		rec, err = s.Repo.Random(ctx, model.ScoreRange{})
	}
	if err != nil {
		if errors.Is(err, storage.ErrNotFound) {
			return nil, apperr.NotFound("No recommendations yet")
		}
		return nil, fmt.Errorf("random: %w", err)
	}
	return rec, nil
}

func (s *RecommendationService) pickRange() model.ScoreRange {
	if s.Float64() < popularShare {
		minScore := popularScore + 1
		return model.ScoreRange{Min: &minScore}
	}
	minScore, maxScore := model.ScoreFloor, popularScore
	return model.ScoreRange{Min: &minScore, Max: &maxScore}
}

// GetTop возвращает до amount рекомендаций по убыванию рейтинга.
func (s *RecommendationService) GetTop(ctx context.Context, amount int) ([]model.Recommendation, error) {
	if amount <= 0 {
		return nil, apperr.Validation("amount must be a positive integer")
	}
	recs, err := s.Repo.Top(ctx, amount)
	if err != nil {
		return nil, fmt.Errorf("top %d: %w", amount, err)
	}
	return recs, nil
}

// List возвращает последние рекомендации, не более model.DefaultListLimit.
func (s *RecommendationService) List(ctx context.Context) ([]model.Recommendation, error) {
	recs, err := s.Repo.Latest(ctx, model.DefaultListLimit)
	if err != nil {
		return nil, fmt.Errorf("list: %w", err)
	}
	return recs, nil
}

func (s *RecommendationService) Ping(ctx context.Context) error {
	if err := s.Repo.Ping(ctx); err != nil {
		s.Logger.Error("storage ping failed", zap.Error(err))
		return err
	}
	return nil
}
