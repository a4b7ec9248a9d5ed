package handler

import (
	"context"
	"encoding/json"
	"net/http"

	"review-service/internal/app/middleware"
	"review-service/internal/domain"

	"go.uber.org/zap"
)

type teamService interface {
	CreateTeam(ctx context.Context, teamName string, members []domain.User) (domain.Team, error)
	GetTeam(ctx context.Context, teamName string) (domain.Team, error)
}

// TeamHandler handles team-related HTTP requests
type TeamHandler struct {
	service teamService
	logger  *zap.Logger
}

func NewTeamHandler(service teamService, logger *zap.Logger) *TeamHandler {
	return &TeamHandler{
		service: service,
		logger:  logger,
	}
}

type TeamMemberDTO struct {
	UserID   string `json:"user_id"`
	Username string `json:"username"`
	IsActive bool   `json:"is_active"`
}

type TeamDTO struct {
	TeamName string          `json:"team_name"`
	Members  []TeamMemberDTO `json:"members"`
}

type teamEnvelope struct {
	Team TeamDTO `json:"team"`
}

// AddTeam handles POST /team/add
func (h *TeamHandler) AddTeam(w http.ResponseWriter, r *http.Request) {
	var req TeamDTO
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		middleware.WriteErrorResponse(w, domain.ErrInvalidArgument, h.logger)
		return
	}

	members := make([]domain.User, len(req.Members))
	for i, m := range req.Members {
		members[i] = domain.User{
			UserID:   m.UserID,
			Username: m.Username,
			TeamName: req.TeamName,
			IsActive: m.IsActive,
		}
	}

	createdTeam, err := h.service.CreateTeam(r.Context(), req.TeamName, members)
	if err != nil {
		middleware.WriteErrorResponse(w, err, h.logger)
		return
	}

	writeJSON(w, http.StatusCreated, teamEnvelope{Team: mapTeamToDTO(createdTeam)}, h.logger)
}

// GetTeam handles GET /team/get?team_name=...
func (h *TeamHandler) GetTeam(w http.ResponseWriter, r *http.Request) {
	teamName := r.URL.Query().Get("team_name")
	if teamName == "" {
		middleware.WriteErrorResponse(w, domain.ErrInvalidArgument, h.logger)
		return
	}

	team, err := h.service.GetTeam(r.Context(), teamName)
	if err != nil {
		middleware.WriteErrorResponse(w, err, h.logger)
		return
	}

	writeJSON(w, http.StatusOK, mapTeamToDTO(team), h.logger)
}

func mapTeamToDTO(team domain.Team) TeamDTO {
	members := make([]TeamMemberDTO, len(team.Members))
	for i, m := range team.Members {
		members[i] = TeamMemberDTO{
			UserID:   m.UserID,
			Username: m.Username,
			IsActive: m.IsActive,
		}
	}
	return TeamDTO{
		TeamName: team.TeamName,
		Members:  members,
	}
}
