package handler

import (
	"context"
	"net/http"

	"review-service/internal/app/middleware"

	"go.uber.org/zap"
)

type prStatsService interface {
	GetAssignmentStats(ctx context.Context) (map[string]int, map[string]int, error)
}

// StatsHandler handles statistics endpoints
type StatsHandler struct {
	prService prStatsService
	logger    *zap.Logger
}

func NewStatsHandler(prService prStatsService, logger *zap.Logger) *StatsHandler {
	return &StatsHandler{
		prService: prService,
		logger:    logger,
	}
}

type assignmentStatsResponse struct {
	ByUser map[string]int `json:"by_user"`
	ByPR   map[string]int `json:"by_pr"`
}

// GetAssignmentStats handles GET /stats/assignments
func (h *StatsHandler) GetAssignmentStats(w http.ResponseWriter, r *http.Request) {
	byUser, byPR, err := h.prService.GetAssignmentStats(r.Context())
	if err != nil {
		middleware.WriteErrorResponse(w, err, h.logger)
		return
	}

	writeJSON(w, http.StatusOK, assignmentStatsResponse{
		ByUser: byUser,
		ByPR:   byPR,
	}, h.logger)
}
