package model

// CreateRecommendationRequest тело запроса на создание рекомендации.
// Поля не типизированы, чтобы неверные JSON-типы отсекались валидацией, а не декодером.
type CreateRecommendationRequest struct {
	Name        any `json:"name"`
	YoutubeLink any `json:"youtubeLink"`
}

// ErrorResponse тело ответа с ошибкой.
type ErrorResponse struct {
	Type    string `json:"type"`
	Message string `json:"message"`
}
