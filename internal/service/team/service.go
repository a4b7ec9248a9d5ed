package team

import (
	"context"
	"strings"

	"review-service/internal/db"
	"review-service/internal/domain"
)

type teamRepository interface {
	CreateTeam(ctx context.Context, team domain.Team) error
	GetTeam(ctx context.Context, teamName string) (domain.Team, error)
	TeamExists(ctx context.Context, teamName string) (bool, error)
}

type userRepository interface {
	CreateOrUpdateUser(ctx context.Context, user domain.User) error
}

// Service handles team onboarding and lookup.
type Service struct {
	teamRepo   teamRepository
	userRepo   userRepository
	transactor db.Transactioner
}

func NewService(
	teamRepo teamRepository,
	userRepo userRepository,
	transactor db.Transactioner,
) *Service {
	return &Service{
		teamRepo:   teamRepo,
		userRepo:   userRepo,
		transactor: transactor,
	}
}

// CreateTeam creates a team and upserts its members in one transaction.
// Members already known by user_id are moved onto this team.
func (s *Service) CreateTeam(
	ctx context.Context,
	teamName string,
	members []domain.User,
) (domain.Team, error) {
	teamName = strings.TrimSpace(teamName)
	if teamName == "" || len(members) == 0 {
		return domain.Team{}, domain.ErrInvalidArgument
	}

	for i := range members {
		members[i].UserID = strings.TrimSpace(members[i].UserID)
		members[i].Username = strings.TrimSpace(members[i].Username)

		if members[i].UserID == "" || members[i].Username == "" {
			return domain.Team{}, domain.ErrInvalidArgument
		}
		members[i].TeamName = teamName
	}

	team := domain.NewTeam(teamName, members)

	err := s.transactor.Do(ctx, func(txCtx context.Context) error {
		exists, err := s.teamRepo.TeamExists(txCtx, teamName)
		if err != nil {
			return err
		}
		if exists {
			return domain.ErrTeamExists
		}

		if err := s.teamRepo.CreateTeam(txCtx, team); err != nil {
			return err
		}

		for _, member := range members {
			if err := s.userRepo.CreateOrUpdateUser(txCtx, member); err != nil {
				return err
			}
		}
		return nil
	})
	if err != nil {
		return domain.Team{}, err
	}

	return team, nil
}

// GetTeam retrieves a team with its members.
func (s *Service) GetTeam(ctx context.Context, teamName string) (domain.Team, error) {
	teamName = strings.TrimSpace(teamName)
	if teamName == "" {
		return domain.Team{}, domain.ErrInvalidArgument
	}
	return s.teamRepo.GetTeam(ctx, teamName)
}
