package handler

import (
	"context"
	"encoding/json"
	"net/http"
	"strings"

	"review-service/internal/app/middleware"
	"review-service/internal/domain"

	"go.uber.org/zap"
)

type userService interface {
	SetIsActive(ctx context.Context, userID string, isActive bool) (domain.User, error)
	GetReviewPullRequests(ctx context.Context, userID string) ([]domain.PullRequest, error)
	BulkDeactivateTeamMembers(ctx context.Context, teamName string, userIDs []string) (domain.BulkDeactivateResult, error)
}

// UserHandler handles user-related HTTP requests
type UserHandler struct {
	service userService
	logger  *zap.Logger
}

func NewUserHandler(service userService, logger *zap.Logger) *UserHandler {
	return &UserHandler{
		service: service,
		logger:  logger,
	}
}

type SetIsActiveRequest struct {
	UserID   string `json:"user_id"`
	IsActive bool   `json:"is_active"`
}

type UserDTO struct {
	UserID   string `json:"user_id"`
	Username string `json:"username"`
	TeamName string `json:"team_name"`
	IsActive bool   `json:"is_active"`
}

type userEnvelope struct {
	User UserDTO `json:"user"`
}

type PullRequestShort struct {
	PullRequestID   string `json:"pull_request_id"`
	PullRequestName string `json:"pull_request_name"`
	AuthorID        string `json:"author_id"`
	Status          string `json:"status"`
}

type getReviewResponse struct {
	UserID       string             `json:"user_id"`
	PullRequests []PullRequestShort `json:"pull_requests"`
}

type BulkDeactivateRequest struct {
	TeamName string   `json:"team_name"`
	UserIDs  []string `json:"user_ids"`
}

type BulkDeactivateResponse struct {
	TeamName             string `json:"team_name"`
	DeactivatedUsers     int    `json:"deactivated_users"`
	ReassignedReviewers  int    `json:"reassigned_reviewers"`
	AffectedPullRequests int    `json:"affected_pull_requests"`
}

// SetIsActive handles POST /users/setIsActive
func (h *UserHandler) SetIsActive(w http.ResponseWriter, r *http.Request) {
	var req SetIsActiveRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		middleware.WriteErrorResponse(w, domain.ErrInvalidArgument, h.logger)
		return
	}

	req.UserID = strings.TrimSpace(req.UserID)
	if req.UserID == "" {
		middleware.WriteErrorResponse(w, domain.ErrInvalidArgument, h.logger)
		return
	}

	user, err := h.service.SetIsActive(r.Context(), req.UserID, req.IsActive)
	if err != nil {
		middleware.WriteErrorResponse(w, err, h.logger)
		return
	}

	writeJSON(w, http.StatusOK, userEnvelope{User: mapUserToDTO(user)}, h.logger)
}

// GetReview handles GET /users/getReview?user_id=...
func (h *UserHandler) GetReview(w http.ResponseWriter, r *http.Request) {
	userID := strings.TrimSpace(r.URL.Query().Get("user_id"))
	if userID == "" {
		middleware.WriteErrorResponse(w, domain.ErrInvalidArgument, h.logger)
		return
	}

	prs, err := h.service.GetReviewPullRequests(r.Context(), userID)
	if err != nil {
		middleware.WriteErrorResponse(w, err, h.logger)
		return
	}

	result := make([]PullRequestShort, len(prs))
	for i, pr := range prs {
		result[i] = PullRequestShort{
			PullRequestID:   pr.PullRequestID,
			PullRequestName: pr.PullRequestName,
			AuthorID:        pr.AuthorID,
			Status:          string(pr.Status),
		}
	}

	writeJSON(w, http.StatusOK, getReviewResponse{
		UserID:       userID,
		PullRequests: result,
	}, h.logger)
}

// BulkDeactivate handles POST /team/deactivateUsers
func (h *UserHandler) BulkDeactivate(w http.ResponseWriter, r *http.Request) {
	var req BulkDeactivateRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		middleware.WriteErrorResponse(w, domain.ErrInvalidArgument, h.logger)
		return
	}

	req.TeamName = strings.TrimSpace(req.TeamName)
	if req.TeamName == "" {
		middleware.WriteErrorResponse(w, domain.ErrInvalidArgument, h.logger)
		return
	}

	result, err := h.service.BulkDeactivateTeamMembers(r.Context(), req.TeamName, req.UserIDs)
	if err != nil {
		middleware.WriteErrorResponse(w, err, h.logger)
		return
	}

	h.logger.Info("bulk deactivation applied",
		zap.String("team", result.TeamName),
		zap.Int("deactivated", result.DeactivatedUsers),
		zap.Int("reassigned", result.ReassignedReviewers),
		zap.Int("affected_prs", result.AffectedPullRequests),
	)

	writeJSON(w, http.StatusOK, BulkDeactivateResponse{
		TeamName:             result.TeamName,
		DeactivatedUsers:     result.DeactivatedUsers,
		ReassignedReviewers:  result.ReassignedReviewers,
		AffectedPullRequests: result.AffectedPullRequests,
	}, h.logger)
}

func mapUserToDTO(user domain.User) UserDTO {
	return UserDTO{
		UserID:   user.UserID,
		Username: user.Username,
		TeamName: user.TeamName,
		IsActive: user.IsActive,
	}
}
