// Package validation проверяет входные данные до обращения к сервису.
package validation

import (
	"net/url"
	"regexp"
	"strconv"
	"strings"

	"github.com/Totarae/recommender/internal/apperr"
	"github.com/Totarae/recommender/internal/model"
)

var videoIDPattern = regexp.MustCompile(`^[A-Za-z0-9_-]{1,64}$`)

var watchHosts = map[string]bool{
	"youtube.com":     true,
	"www.youtube.com": true,
	"m.youtube.com":   true,
}

// ValidateCreate проверяет тело запроса на создание рекомендации и
// возвращает имя и ссылку.
func ValidateCreate(req model.CreateRecommendationRequest) (string, string, error) {
	name, ok := req.Name.(string)
	if !ok || name == "" {
		return "", "", apperr.Validation("name must be a non-empty string")
	}

	link, ok := req.YoutubeLink.(string)
	if !ok {
		return "", "", apperr.Validation("youtubeLink must be a string")
	}
	if !IsYoutubeLink(link) {
		return "", "", apperr.Validation("youtubeLink must be a youtube video link")
	}

	return name, link, nil
}

// IsYoutubeLink сообщает, является ли строка ссылкой на видео YouTube:
// youtube.com/watch?v=<id> или youtu.be/<id>.
func IsYoutubeLink(raw string) bool {
	u, err := url.Parse(raw)
	if err != nil || (u.Scheme != "http" && u.Scheme != "https") {
		return false
	}

	host := strings.ToLower(u.Hostname())
	switch {
	case watchHosts[host]:
		return u.Path == "/watch" && videoIDPattern.MatchString(u.Query().Get("v"))
	case host == "youtu.be":
		return videoIDPattern.MatchString(strings.TrimPrefix(u.Path, "/"))
	default:
		return false
	}
}

// ParseID разбирает идентификатор рекомендации из пути.
func ParseID(raw string) (int64, error) {
	id, err := strconv.ParseInt(raw, 10, 64)
	if err != nil || id <= 0 {
		return 0, apperr.Validation("id must be a positive integer")
	}
	return id, nil
}

// ParseAmount разбирает количество записей для топа.
func ParseAmount(raw string) (int, error) {
	amount, err := strconv.Atoi(raw)
	if err != nil || amount <= 0 {
		return 0, apperr.Validation("amount must be a positive integer")
	}
	return amount, nil
}
