package storage

import (
	"context"
	"math/rand"
	"sort"
	"sync"
	"time"

	"github.com/Totarae/recommender/internal/model"
)

// MemoryRepository потокобезопасное хранилище рекомендаций в памяти.
type MemoryRepository struct {
	mu     sync.RWMutex
	data   map[int64]model.Recommendation
	byName map[string]int64
	nextID int64
}

// NewMemoryRepository создаёт пустое хранилище.
func NewMemoryRepository() *MemoryRepository {
	return &MemoryRepository{
		data:   make(map[int64]model.Recommendation),
		byName: make(map[string]int64),
		nextID: 1,
	}
}

// Create сохраняет новую рекомендацию с нулевым рейтингом и присваивает ей ID.
func (r *MemoryRepository) Create(_ context.Context, rec *model.Recommendation) error {
	r.mu.Lock()
	defer r.mu.Unlock()

	if _, exists := r.byName[rec.Name]; exists {
		return ErrDuplicateName
	}

	rec.ID = r.nextID
	rec.Score = 0
	if rec.Created.IsZero() {
		rec.Created = time.Now()
	}
	r.nextID++

	r.data[rec.ID] = *rec
	r.byName[rec.Name] = rec.ID
	return nil
}

// FindByName ищет рекомендацию по имени.
func (r *MemoryRepository) FindByName(_ context.Context, name string) (*model.Recommendation, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()

	id, ok := r.byName[name]
	if !ok {
		return nil, ErrNotFound
	}
	rec := r.data[id]
	return &rec, nil
}

// GetByID ищет рекомендацию по ID.
func (r *MemoryRepository) GetByID(_ context.Context, id int64) (*model.Recommendation, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()

	rec, ok := r.data[id]
	if !ok {
		return nil, ErrNotFound
	}
	return &rec, nil
}

// ApplyVote изменяет рейтинг на delta. Если новый рейтинг ниже floor,
// запись удаляется, а рейтинг не сохраняется.
func (r *MemoryRepository) ApplyVote(_ context.Context, id int64, delta, floor int) (model.VoteResult, error) {
	r.mu.Lock()
	defer r.mu.Unlock()

	rec, ok := r.data[id]
	if !ok {
		return model.VoteResult{}, ErrNotFound
	}

	score := rec.Score + delta
	if score < floor {
		delete(r.data, id)
		delete(r.byName, rec.Name)
		return model.VoteResult{ID: id, Score: score, Removed: true}, nil
	}

	rec.Score = score
	r.data[id] = rec
	return model.VoteResult{ID: id, Score: score, Recommendation: &rec}, nil
}

// SetScore выставляет рейтинг напрямую. Используется для подготовки данных.
func (r *MemoryRepository) SetScore(id int64, score int) error {
	r.mu.Lock()
	defer r.mu.Unlock()

	rec, ok := r.data[id]
	if !ok {
		return ErrNotFound
	}
	rec.Score = score
	r.data[id] = rec
	return nil
}

// Top возвращает до amount записей по убыванию рейтинга.
func (r *MemoryRepository) Top(_ context.Context, amount int) ([]model.Recommendation, error) {
	all := r.snapshot()
	sort.Slice(all, func(i, j int) bool {
		if all[i].Score != all[j].Score {
			return all[i].Score > all[j].Score
		}
		return all[i].ID < all[j].ID
	})
	return limit(all, amount), nil
}

// Latest возвращает до n последних записей.
func (r *MemoryRepository) Latest(_ context.Context, n int) ([]model.Recommendation, error) {
	all := r.snapshot()
	sort.Slice(all, func(i, j int) bool { return all[i].ID > all[j].ID })
	return limit(all, n), nil
}

// Random возвращает случайную запись с рейтингом из диапазона.
func (r *MemoryRepository) Random(_ context.Context, scores model.ScoreRange) (*model.Recommendation, error) {
	var candidates []model.Recommendation
	for _, rec := range r.snapshot() {
		if scores.Contains(rec.Score) {
			candidates = append(candidates, rec)
		}
	}
	if len(candidates) == 0 {
		return nil, ErrNotFound
	}
	rec := candidates[rand.Intn(len(candidates))]
	return &rec, nil
}

// Ping всегда успешен.
func (r *MemoryRepository) Ping(context.Context) error {
	return nil
}

func (r *MemoryRepository) snapshot() []model.Recommendation {
	r.mu.RLock()
	defer r.mu.RUnlock()

	out := make([]model.Recommendation, 0, len(r.data))
	for _, rec := range r.data {
		out = append(out, rec)
	}
	return out
}

func limit(recs []model.Recommendation, n int) []model.Recommendation {
	if n >= 0 && len(recs) > n {
		return recs[:n]
	}
	return recs
}
