package pullrequest

import (
	"context"
	"strings"
	"time"

	"review-service/internal/db"
	"review-service/internal/domain"
	"review-service/internal/service/assignment"
)

type prRepository interface {
	CreatePR(ctx context.Context, pr domain.PullRequest) error
	GetPR(ctx context.Context, prID string) (domain.PullRequest, error)
	UpdatePR(ctx context.Context, pr domain.PullRequest) error
	AssignReviewers(ctx context.Context, prID string, reviewers []string) error
	ReplaceReviewer(ctx context.Context, prID, oldUserID, newUserID string) error
	PRExists(ctx context.Context, prID string) (bool, error)
	GetAssignmentStatsByUser(ctx context.Context) (map[string]int, error)
	GetAssignmentStatsByPR(ctx context.Context) (map[string]int, error)
}

type userRepository interface {
	GetUser(ctx context.Context, userID string) (domain.User, error)
	GetTeamMembers(ctx context.Context, teamName string) ([]domain.User, error)
}

// Service orchestrates pull request creation, merge and reassignment.
// Each operation runs inside a single transaction so no other actor can
// observe a PR without its reviewers or a half-applied swap.
type Service struct {
	prRepo         prRepository
	userRepo       userRepository
	transactor     db.Transactioner
	assignStrategy *assignment.Strategy
}

func NewService(
	prRepo prRepository,
	userRepo userRepository,
	transactor db.Transactioner,
	assignStrategy *assignment.Strategy,
) *Service {
	return &Service{
		prRepo:         prRepo,
		userRepo:       userRepo,
		transactor:     transactor,
		assignStrategy: assignStrategy,
	}
}

// CreatePR creates the PR and auto-assigns up to two reviewers from the
// author's team. Fewer than two reviewers, including zero, is valid.
func (s *Service) CreatePR(
	ctx context.Context,
	prID, prName, authorID string,
) (domain.PullRequest, error) {
	prID = strings.TrimSpace(prID)
	prName = strings.TrimSpace(prName)
	authorID = strings.TrimSpace(authorID)
	if prID == "" || prName == "" || authorID == "" {
		return domain.PullRequest{}, domain.ErrInvalidArgument
	}

	var pr domain.PullRequest
	err := s.transactor.Do(ctx, func(txCtx context.Context) error {
		exists, err := s.prRepo.PRExists(txCtx, prID)
		if err != nil {
			return err
		}
		if exists {
			return domain.ErrPRExists
		}

		author, err := s.userRepo.GetUser(txCtx, authorID)
		if err != nil {
			return err
		}

		// An author without a team gets an empty candidate pool.
		var members []domain.User
		if author.TeamName != "" {
			members, err = s.userRepo.GetTeamMembers(txCtx, author.TeamName)
			if err != nil {
				return err
			}
		}

		candidates := assignment.SelectCandidates(members, authorID)
		reviewerIDs := s.assignStrategy.SelectReviewers(candidates)

		pr = domain.NewPullRequest(prID, prName, authorID)
		pr.AssignedReviewers = reviewerIDs

		if err := s.prRepo.CreatePR(txCtx, pr); err != nil {
			return err
		}
		if len(reviewerIDs) > 0 {
			if err := s.prRepo.AssignReviewers(txCtx, prID, reviewerIDs); err != nil {
				return err
			}
		}
		return nil
	})
	if err != nil {
		return domain.PullRequest{}, err
	}

	return pr, nil
}

// MergePR marks the PR merged. Re-merging an already merged PR is a
// no-op that returns the current state; merged_at is set exactly once.
func (s *Service) MergePR(ctx context.Context, prID string) (domain.PullRequest, error) {
	prID = strings.TrimSpace(prID)
	if prID == "" {
		return domain.PullRequest{}, domain.ErrInvalidArgument
	}

	var pr domain.PullRequest
	err := s.transactor.Do(ctx, func(txCtx context.Context) error {
		var err error
		pr, err = s.prRepo.GetPR(txCtx, prID)
		if err != nil {
			return err
		}
		if pr.IsMerged() {
			return nil
		}
		pr.Merge(time.Now().UTC())
		return s.prRepo.UpdatePR(txCtx, pr)
	})
	if err != nil {
		return domain.PullRequest{}, err
	}

	return pr, nil
}

// ReassignReviewer replaces one reviewer with another from the outgoing
// reviewer's team, mutating the edge in place rather than re-creating it.
func (s *Service) ReassignReviewer(
	ctx context.Context,
	prID, oldUserID string,
) (domain.PullRequest, string, error) {
	prID = strings.TrimSpace(prID)
	oldUserID = strings.TrimSpace(oldUserID)
	if prID == "" || oldUserID == "" {
		return domain.PullRequest{}, "", domain.ErrInvalidArgument
	}

	var (
		pr        domain.PullRequest
		newUserID string
	)
	err := s.transactor.Do(ctx, func(txCtx context.Context) error {
		var err error
		pr, err = s.prRepo.GetPR(txCtx, prID)
		if err != nil {
			return err
		}

		oldUser, err := s.userRepo.GetUser(txCtx, oldUserID)
		if err != nil {
			return err
		}

		if pr.IsMerged() {
			return domain.ErrPRMerged
		}
		if !pr.IsReviewerAssigned(oldUserID) {
			return domain.ErrNotAssigned
		}

		var members []domain.User
		if oldUser.TeamName != "" {
			members, err = s.userRepo.GetTeamMembers(txCtx, oldUser.TeamName)
			if err != nil {
				return err
			}
		}

		// Exclude the author and everyone already on the PR; the outgoing
		// reviewer is among the latter, so it cannot be re-picked.
		exclude := append([]string{pr.AuthorID}, pr.AssignedReviewers...)
		candidates := assignment.SelectCandidates(members, exclude...)

		newUserID, err = s.assignStrategy.SelectReplacement(candidates)
		if err != nil {
			return err
		}

		if err := s.prRepo.ReplaceReviewer(txCtx, prID, oldUserID, newUserID); err != nil {
			return err
		}
		return pr.ReplaceReviewer(oldUserID, newUserID)
	})
	if err != nil {
		return domain.PullRequest{}, "", err
	}

	return pr, newUserID, nil
}

// GetAssignmentStats returns live-edge counts grouped by reviewer and by
// PR. Ids with no live edges are absent rather than reported as zero.
func (s *Service) GetAssignmentStats(ctx context.Context) (map[string]int, map[string]int, error) {
	byUser, err := s.prRepo.GetAssignmentStatsByUser(ctx)
	if err != nil {
		return nil, nil, err
	}

	byPR, err := s.prRepo.GetAssignmentStatsByPR(ctx)
	if err != nil {
		return nil, nil, err
	}

	return byUser, byPR, nil
}
