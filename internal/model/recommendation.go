package model

import "time"

const (
	// ScoreFloor минимальный допустимый рейтинг. Рекомендация, чей рейтинг
	// опускается строго ниже этого значения, удаляется.
	ScoreFloor = -5
	// DefaultListLimit количество последних рекомендаций в выдаче списка.
	DefaultListLimit = 10
)

// Recommendation представляет рекомендацию видео.
type Recommendation struct {
	ID          int64     `json:"id"`
	Name        string    `json:"name"`
	YoutubeLink string    `json:"youtubeLink"`
	Score       int       `json:"score"`
	Created     time.Time `json:"-"`
}

// VoteResult результат голосования за рекомендацию.
type VoteResult struct {
	ID      int64 `json:"id"`
	Score   int   `json:"score"`
	Removed bool  `json:"removed"`

	// Recommendation запись после голосования. Nil, если запись удалена.
	Recommendation *Recommendation `json:"-"`
}

// ScoreRange ограничивает рейтинг при случайной выборке. Nil-граница не проверяется.
type ScoreRange struct {
	Min *int
	Max *int
}

// Contains сообщает, попадает ли рейтинг в диапазон (границы включительно).
func (r ScoreRange) Contains(score int) bool {
	if r.Min != nil && score < *r.Min {
		return false
	}
	if r.Max != nil && score > *r.Max {
		return false
	}
	return true
}
