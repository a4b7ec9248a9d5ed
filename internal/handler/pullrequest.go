package handler

import (
	"context"
	"encoding/json"
	"net/http"
	"strings"
	"time"

	"review-service/internal/app/middleware"
	"review-service/internal/domain"

	"go.uber.org/zap"
)

type prService interface {
	CreatePR(ctx context.Context, prID, prName, authorID string) (domain.PullRequest, error)
	MergePR(ctx context.Context, prID string) (domain.PullRequest, error)
	ReassignReviewer(ctx context.Context, prID, oldUserID string) (domain.PullRequest, string, error)
}

// PRHandler handles pull request HTTP requests
type PRHandler struct {
	service prService
	logger  *zap.Logger
}

func NewPRHandler(service prService, logger *zap.Logger) *PRHandler {
	return &PRHandler{
		service: service,
		logger:  logger,
	}
}

// PR DTOs matching the OpenAPI schema with snake_case

type CreatePRRequest struct {
	PullRequestID   string `json:"pull_request_id"`
	PullRequestName string `json:"pull_request_name"`
	AuthorID        string `json:"author_id"`
}

type MergePRRequest struct {
	PullRequestID string `json:"pull_request_id"`
}

type ReassignRequest struct {
	PullRequestID string `json:"pull_request_id"`
	OldUserID     string `json:"old_user_id"`
}

type PullRequestDTO struct {
	PullRequestID     string   `json:"pull_request_id"`
	PullRequestName   string   `json:"pull_request_name"`
	AuthorID          string   `json:"author_id"`
	AssignedReviewers []string `json:"assigned_reviewers"`
	Status            string   `json:"status"`
	CreatedAt         *string  `json:"createdAt,omitempty"`
	MergedAt          *string  `json:"mergedAt,omitempty"`
}

type prEnvelope struct {
	PR PullRequestDTO `json:"pr"`
}

type ReassignResponse struct {
	PR         PullRequestDTO `json:"pr"`
	ReplacedBy string         `json:"replaced_by"`
}

// CreatePR handles POST /pullRequest/create
func (h *PRHandler) CreatePR(w http.ResponseWriter, r *http.Request) {
	var req CreatePRRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		middleware.WriteErrorResponse(w, domain.ErrInvalidArgument, h.logger)
		return
	}

	req.PullRequestID = strings.TrimSpace(req.PullRequestID)
	req.PullRequestName = strings.TrimSpace(req.PullRequestName)
	req.AuthorID = strings.TrimSpace(req.AuthorID)
	if req.PullRequestID == "" || req.PullRequestName == "" || req.AuthorID == "" {
		middleware.WriteErrorResponse(w, domain.ErrInvalidArgument, h.logger)
		return
	}

	pr, err := h.service.CreatePR(r.Context(), req.PullRequestID, req.PullRequestName, req.AuthorID)
	if err != nil {
		middleware.WriteErrorResponse(w, err, h.logger)
		return
	}

	writeJSON(w, http.StatusCreated, prEnvelope{PR: mapPRToDTO(pr)}, h.logger)
}

// MergePR handles POST /pullRequest/merge
func (h *PRHandler) MergePR(w http.ResponseWriter, r *http.Request) {
	var req MergePRRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		middleware.WriteErrorResponse(w, domain.ErrInvalidArgument, h.logger)
		return
	}

	req.PullRequestID = strings.TrimSpace(req.PullRequestID)
	if req.PullRequestID == "" {
		middleware.WriteErrorResponse(w, domain.ErrInvalidArgument, h.logger)
		return
	}

	pr, err := h.service.MergePR(r.Context(), req.PullRequestID)
	if err != nil {
		middleware.WriteErrorResponse(w, err, h.logger)
		return
	}

	writeJSON(w, http.StatusOK, prEnvelope{PR: mapPRToDTO(pr)}, h.logger)
}

// ReassignReviewer handles POST /pullRequest/reassign
func (h *PRHandler) ReassignReviewer(w http.ResponseWriter, r *http.Request) {
	var req ReassignRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		middleware.WriteErrorResponse(w, domain.ErrInvalidArgument, h.logger)
		return
	}

	req.PullRequestID = strings.TrimSpace(req.PullRequestID)
	req.OldUserID = strings.TrimSpace(req.OldUserID)
	if req.PullRequestID == "" || req.OldUserID == "" {
		middleware.WriteErrorResponse(w, domain.ErrInvalidArgument, h.logger)
		return
	}

	pr, replacedBy, err := h.service.ReassignReviewer(r.Context(), req.PullRequestID, req.OldUserID)
	if err != nil {
		middleware.WriteErrorResponse(w, err, h.logger)
		return
	}

	writeJSON(w, http.StatusOK, ReassignResponse{
		PR:         mapPRToDTO(pr),
		ReplacedBy: replacedBy,
	}, h.logger)
}

func mapPRToDTO(pr domain.PullRequest) PullRequestDTO {
	dto := PullRequestDTO{
		PullRequestID:     pr.PullRequestID,
		PullRequestName:   pr.PullRequestName,
		AuthorID:          pr.AuthorID,
		AssignedReviewers: pr.AssignedReviewers,
		Status:            string(pr.Status),
	}
	if dto.AssignedReviewers == nil {
		dto.AssignedReviewers = []string{}
	}

	if !pr.CreatedAt.IsZero() {
		createdAt := pr.CreatedAt.Format(time.RFC3339)
		dto.CreatedAt = &createdAt
	}
	if pr.MergedAt != nil {
		mergedAt := pr.MergedAt.Format(time.RFC3339)
		dto.MergedAt = &mergedAt
	}

	return dto
}

func writeJSON(w http.ResponseWriter, status int, body any, logger *zap.Logger) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	if err := json.NewEncoder(w).Encode(body); err != nil {
		logger.Error("failed to encode response", zap.Error(err))
	}
}
