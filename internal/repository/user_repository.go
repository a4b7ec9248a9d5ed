package repository

import (
	"context"
	"fmt"

	"review-service/internal/db"
	"review-service/internal/domain"

	"github.com/georgysavva/scany/v2/pgxscan"
)

type userRepository struct {
	BaseRepository
}

func NewUserRepository(cm db.EngineFactory) UserRepository {
	return &userRepository{
		BaseRepository: NewBaseRepository(cm),
	}
}

// CreateOrUpdateUser upserts a user. An existing user_id gets its name,
// activity and team membership overwritten.
func (r *userRepository) CreateOrUpdateUser(ctx context.Context, user domain.User) error {
	query := `
		INSERT INTO users (user_id, username, team_name, is_active, created_at, updated_at)
		VALUES ($1, $2, NULLIF($3, ''), $4, $5, $6)
		ON CONFLICT (user_id)
		DO UPDATE SET
			username = EXCLUDED.username,
			team_name = EXCLUDED.team_name,
			is_active = EXCLUDED.is_active,
			updated_at = EXCLUDED.updated_at
	`
	_, err := r.Engine(ctx).Exec(ctx, query,
		user.UserID, user.Username, user.TeamName, user.IsActive, user.CreatedAt, user.UpdatedAt)
	if err != nil {
		return fmt.Errorf("failed to create or update user: %w", err)
	}
	return nil
}

func (r *userRepository) UpdateUser(ctx context.Context, user domain.User) error {
	query := `
		UPDATE users
		SET username = $2, team_name = NULLIF($3, ''), is_active = $4, updated_at = $5
		WHERE user_id = $1
	`
	tag, err := r.Engine(ctx).Exec(ctx, query,
		user.UserID, user.Username, user.TeamName, user.IsActive, user.UpdatedAt)
	if err != nil {
		return fmt.Errorf("failed to update user: %w", err)
	}
	if tag.RowsAffected() == 0 {
		return domain.ErrNotFound
	}
	return nil
}

func (r *userRepository) GetUser(ctx context.Context, userID string) (domain.User, error) {
	query := `
		SELECT user_id, username, COALESCE(team_name, '') AS team_name, is_active, created_at, updated_at
		FROM users
		WHERE user_id = $1
	`
	var user domain.User
	err := pgxscan.Get(ctx, r.Engine(ctx), &user, query, userID)
	if err != nil {
		if pgxscan.NotFound(err) {
			return domain.User{}, domain.ErrNotFound
		}
		return domain.User{}, fmt.Errorf("failed to get user: %w", err)
	}
	return user, nil
}

func (r *userRepository) GetUsersByIDs(ctx context.Context, userIDs []string) ([]domain.User, error) {
	query := `
		SELECT user_id, username, COALESCE(team_name, '') AS team_name, is_active, created_at, updated_at
		FROM users
		WHERE user_id = ANY($1)
	`
	var users []domain.User
	err := pgxscan.Select(ctx, r.Engine(ctx), &users, query, userIDs)
	if err != nil {
		return nil, fmt.Errorf("failed to get users by ids: %w", err)
	}
	return users, nil
}

func (r *userRepository) GetTeamMembers(ctx context.Context, teamName string) ([]domain.User, error) {
	query := `
		SELECT user_id, username, COALESCE(team_name, '') AS team_name, is_active, created_at, updated_at
		FROM users
		WHERE team_name = $1
		ORDER BY username
	`
	var users []domain.User
	err := pgxscan.Select(ctx, r.Engine(ctx), &users, query, teamName)
	if err != nil {
		return nil, fmt.Errorf("failed to get team members: %w", err)
	}
	return users, nil
}

// DeactivateUsers flips is_active off for the given ids and returns the
// number of users that actually transitioned; already-inactive users are
// not counted.
func (r *userRepository) DeactivateUsers(ctx context.Context, userIDs []string) (int, error) {
	query := `
		UPDATE users
		SET is_active = FALSE, updated_at = now()
		WHERE user_id = ANY($1) AND is_active
	`
	tag, err := r.Engine(ctx).Exec(ctx, query, userIDs)
	if err != nil {
		return 0, fmt.Errorf("failed to deactivate users: %w", err)
	}
	return int(tag.RowsAffected()), nil
}
