package user

import (
	"context"
	"errors"
	"strings"

	"review-service/internal/db"
	"review-service/internal/domain"
	"review-service/internal/service/assignment"
)

type userRepository interface {
	GetUser(ctx context.Context, userID string) (domain.User, error)
	UpdateUser(ctx context.Context, user domain.User) error
	GetUsersByIDs(ctx context.Context, userIDs []string) ([]domain.User, error)
	GetTeamMembers(ctx context.Context, teamName string) ([]domain.User, error)
	DeactivateUsers(ctx context.Context, userIDs []string) (int, error)
}

type prRepository interface {
	GetPRsByReviewer(ctx context.Context, userID string) ([]domain.PullRequest, error)
	GetOpenPRsByReviewers(ctx context.Context, userIDs []string) ([]domain.PullRequest, error)
	ReplaceReviewer(ctx context.Context, prID, oldUserID, newUserID string) error
	RemoveReviewer(ctx context.Context, prID string, userID string) error
}

type teamRepository interface {
	TeamExists(ctx context.Context, teamName string) (bool, error)
}

// Service handles user activity state and the bulk deactivation repair pass.
type Service struct {
	userRepo       userRepository
	prRepo         prRepository
	teamRepo       teamRepository
	transactor     db.Transactioner
	assignStrategy *assignment.Strategy
}

func NewService(
	userRepo userRepository,
	prRepo prRepository,
	teamRepo teamRepository,
	transactor db.Transactioner,
	assignStrategy *assignment.Strategy,
) *Service {
	return &Service{
		userRepo:       userRepo,
		prRepo:         prRepo,
		teamRepo:       teamRepo,
		transactor:     transactor,
		assignStrategy: assignStrategy,
	}
}

// SetIsActive updates the user's activity flag.
func (s *Service) SetIsActive(
	ctx context.Context,
	userID string,
	isActive bool,
) (domain.User, error) {
	userID = strings.TrimSpace(userID)
	if userID == "" {
		return domain.User{}, domain.ErrInvalidArgument
	}

	user, err := s.userRepo.GetUser(ctx, userID)
	if err != nil {
		return domain.User{}, err
	}

	user.SetIsActive(isActive)

	if err := s.userRepo.UpdateUser(ctx, user); err != nil {
		return domain.User{}, err
	}

	return user, nil
}

// GetReviewPullRequests returns every PR, any status, where the user
// currently holds a reviewer edge.
func (s *Service) GetReviewPullRequests(
	ctx context.Context,
	userID string,
) ([]domain.PullRequest, error) {
	userID = strings.TrimSpace(userID)
	if userID == "" {
		return nil, domain.ErrInvalidArgument
	}

	if _, err := s.userRepo.GetUser(ctx, userID); err != nil {
		return nil, err
	}

	return s.prRepo.GetPRsByReviewer(ctx, userID)
}

// BulkDeactivateTeamMembers deactivates the given team members and repairs
// review coverage on their OPEN PRs. Validation is strict: every id must
// resolve to a current member of the team or nothing is applied. The whole
// operation commits once.
func (s *Service) BulkDeactivateTeamMembers(
	ctx context.Context,
	teamName string,
	userIDs []string,
) (domain.BulkDeactivateResult, error) {
	teamName = strings.TrimSpace(teamName)
	if teamName == "" {
		return domain.BulkDeactivateResult{}, domain.ErrInvalidArgument
	}

	result := domain.BulkDeactivateResult{TeamName: teamName}
	if len(userIDs) == 0 {
		return result, nil
	}

	err := s.transactor.Do(ctx, func(txCtx context.Context) error {
		exists, err := s.teamRepo.TeamExists(txCtx, teamName)
		if err != nil {
			return err
		}
		if !exists {
			return domain.ErrNotFound
		}

		users, err := s.userRepo.GetUsersByIDs(txCtx, userIDs)
		if err != nil {
			return err
		}
		byID := make(map[string]domain.User, len(users))
		for _, u := range users {
			byID[u.UserID] = u
		}
		for _, id := range userIDs {
			u, ok := byID[id]
			if !ok || u.TeamName != teamName {
				return domain.ErrNotFound
			}
		}

		// Deactivate before computing candidates so that users going down
		// in this batch are never picked as replacements.
		result.DeactivatedUsers, err = s.userRepo.DeactivateUsers(txCtx, userIDs)
		if err != nil {
			return err
		}

		prs, err := s.prRepo.GetOpenPRsByReviewers(txCtx, userIDs)
		if err != nil {
			return err
		}
		if len(prs) == 0 {
			return nil
		}

		members, err := s.userRepo.GetTeamMembers(txCtx, teamName)
		if err != nil {
			return err
		}

		targets := make(map[string]struct{}, len(userIDs))
		for _, id := range userIDs {
			targets[id] = struct{}{}
		}

		affected := make(map[string]struct{})
		for i := range prs {
			pr := &prs[i]
			snapshot := append([]string(nil), pr.AssignedReviewers...)
			for _, reviewerID := range snapshot {
				if _, ok := targets[reviewerID]; !ok {
					continue
				}

				exclude := append([]string{pr.AuthorID}, pr.AssignedReviewers...)
				candidates := assignment.SelectCandidates(members, exclude...)

				newUserID, err := s.assignStrategy.SelectReplacement(candidates)
				switch {
				case err == nil:
					if err := s.prRepo.ReplaceReviewer(txCtx, pr.PullRequestID, reviewerID, newUserID); err != nil {
						return err
					}
					if err := pr.ReplaceReviewer(reviewerID, newUserID); err != nil {
						return err
					}
					result.ReassignedReviewers++
					result.Reassignments = append(result.Reassignments, domain.Reassignment{
						PullRequestID: pr.PullRequestID,
						OldUserID:     reviewerID,
						NewUserID:     newUserID,
					})
				case errors.Is(err, domain.ErrNoCandidate):
					// Nobody left to take the edge: drop it and leave the
					// PR with fewer reviewers.
					if err := s.prRepo.RemoveReviewer(txCtx, pr.PullRequestID, reviewerID); err != nil {
						return err
					}
					pr.RemoveReviewer(reviewerID)
				default:
					return err
				}

				affected[pr.PullRequestID] = struct{}{}
			}
		}

		result.AffectedPullRequests = len(affected)
		return nil
	})
	if err != nil {
		return domain.BulkDeactivateResult{}, err
	}

	return result, nil
}
