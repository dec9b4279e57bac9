package handlers

import (
	"context"
	"encoding/json"
	"net/http"

	"github.com/Totarae/recommender/internal/apperr"
	"github.com/Totarae/recommender/internal/model"
	"github.com/Totarae/recommender/internal/validation"
	"github.com/go-chi/chi/v5"
	"go.uber.org/zap"
)

// RecommendationService операции над рекомендациями, доступные через HTTP.
type RecommendationService interface {
	Create(ctx context.Context, name, link string) (*model.Recommendation, error)
	Upvote(ctx context.Context, id int64) (*model.Recommendation, error)
	Downvote(ctx context.Context, id int64) (model.VoteResult, error)
	GetByID(ctx context.Context, id int64) (*model.Recommendation, error)
	GetRandom(ctx context.Context) (*model.Recommendation, error)
	GetTop(ctx context.Context, amount int) ([]model.Recommendation, error)
	List(ctx context.Context) ([]model.Recommendation, error)
	Ping(ctx context.Context) error
}

// Handler обрабатывает HTTP-запросы к рекомендациям.
type Handler struct {
	Service RecommendationService
	Logger  *zap.Logger
}

func NewHandler(service RecommendationService, logger *zap.Logger) *Handler {
	return &Handler{Service: service, Logger: logger}
}

// CreateRecommendation обрабатывает POST /recommendations.
func (h *Handler) CreateRecommendation(res http.ResponseWriter, req *http.Request) {
	var body model.CreateRecommendationRequest
	if err := json.NewDecoder(req.Body).Decode(&body); err != nil {
		h.writeError(res, req, apperr.Validation("invalid JSON body"))
		return
	}

	name, link, err := validation.ValidateCreate(body)
	if err != nil {
		h.writeError(res, req, err)
		return
	}

	rec, err := h.Service.Create(req.Context(), name, link)
	if err != nil {
		h.writeError(res, req, err)
		return
	}
	h.writeJSON(res, http.StatusCreated, rec)
}

// Upvote обрабатывает POST /recommendations/{id}/upvote.
func (h *Handler) Upvote(res http.ResponseWriter, req *http.Request) {
	id, err := validation.ParseID(chi.URLParam(req, "id"))
	if err != nil {
		h.writeError(res, req, err)
		return
	}

	rec, err := h.Service.Upvote(req.Context(), id)
	if err != nil {
		h.writeError(res, req, err)
		return
	}
	h.writeJSON(res, http.StatusOK, rec)
}

// Downvote обрабатывает POST /recommendations/{id}/downvote.
func (h *Handler) Downvote(res http.ResponseWriter, req *http.Request) {
	id, err := validation.ParseID(chi.URLParam(req, "id"))
	if err != nil {
		h.writeError(res, req, err)
		return
	}

	result, err := h.Service.Downvote(req.Context(), id)
	if err != nil {
		h.writeError(res, req, err)
		return
	}
	h.writeJSON(res, http.StatusOK, result)
}

// GetRecommendation обрабатывает GET /recommendations/{id}.
func (h *Handler) GetRecommendation(res http.ResponseWriter, req *http.Request) {
	id, err := validation.ParseID(chi.URLParam(req, "id"))
	if err != nil {
		h.writeError(res, req, err)
		return
	}

	rec, err := h.Service.GetByID(req.Context(), id)
	if err != nil {
		h.writeError(res, req, err)
		return
	}
	h.writeJSON(res, http.StatusOK, rec)
}

// Random обрабатывает GET /recommendations/random.
func (h *Handler) Random(res http.ResponseWriter, req *http.Request) {
	rec, err := h.Service.GetRandom(req.Context())
	if err != nil {
		h.writeError(res, req, err)
		return
	}
	h.writeJSON(res, http.StatusOK, rec)
}

// Top обрабатывает GET /recommendations/top/{amount}.
func (h *Handler) Top(res http.ResponseWriter, req *http.Request) {
	amount, err := validation.ParseAmount(chi.URLParam(req, "amount"))
	if err != nil {
		h.writeError(res, req, err)
		return
	}

	recs, err := h.Service.GetTop(req.Context(), amount)
	if err != nil {
		h.writeError(res, req, err)
		return
	}
	h.writeJSON(res, http.StatusOK, nonNil(recs))
}

// List обрабатывает GET /recommendations.
func (h *Handler) List(res http.ResponseWriter, req *http.Request) {
	recs, err := h.Service.List(req.Context())
	if err != nil {
		h.writeError(res, req, err)
		return
	}
	h.writeJSON(res, http.StatusOK, nonNil(recs))
}

// NotFound отвечает 404 на неизвестный маршрут или метод.
func (h *Handler) NotFound(res http.ResponseWriter, req *http.Request) {
	h.writeError(res, req, apperr.NotFound("Not found"))
}

// Ping проверяет доступность хранилища.
func (h *Handler) Ping(res http.ResponseWriter, req *http.Request) {
	if err := h.Service.Ping(req.Context()); err != nil {
		http.Error(res, "storage unavailable", http.StatusInternalServerError)
		return
	}
	res.WriteHeader(http.StatusOK)
}

func (h *Handler) writeJSON(res http.ResponseWriter, status int, v any) {
	res.Header().Set("Content-Type", "application/json")
	res.WriteHeader(status)
	if err := json.NewEncoder(res).Encode(v); err != nil {
		h.Logger.Error("failed to encode response", zap.Error(err))
	}
}

func (h *Handler) writeError(res http.ResponseWriter, req *http.Request, err error) {
	status, typ := apperr.Classify(err)
	message := err.Error()
	if status == http.StatusInternalServerError {
		h.Logger.Error("request failed",
			zap.String("method", req.Method),
			zap.String("uri", req.RequestURI),
			zap.Error(err),
		)
		message = "internal server error"
	}
	h.writeJSON(res, status, model.ErrorResponse{Type: typ, Message: message})
}

func nonNil(recs []model.Recommendation) []model.Recommendation {
	if recs == nil {
		return []model.Recommendation{}
	}
	return recs
}
