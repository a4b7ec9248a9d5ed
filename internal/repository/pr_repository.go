package repository

import (
	"context"
	"errors"
	"fmt"

	"review-service/internal/db"
	"review-service/internal/domain"

	"github.com/georgysavva/scany/v2/pgxscan"
	"github.com/jackc/pgx/v5/pgconn"
)

const uniqueViolation = "23505"

type prRepository struct {
	BaseRepository
}

func NewPRRepository(cm db.EngineFactory) PRRepository {
	return &prRepository{
		BaseRepository: NewBaseRepository(cm),
	}
}

const prWithReviewersQuery = `
	SELECT p.pull_request_id,
	       p.pull_request_name,
	       p.author_id,
	       p.status,
	       p.created_at,
	       p.merged_at,
	       COALESCE(array_agg(r.reviewer_id ORDER BY r.id) FILTER (WHERE r.reviewer_id IS NOT NULL), '{}') AS assigned_reviewers
	FROM pull_requests p
	LEFT JOIN pr_reviewers r ON r.pull_request_id = p.pull_request_id
`

func (r *prRepository) CreatePR(ctx context.Context, pr domain.PullRequest) error {
	query := `
		INSERT INTO pull_requests (pull_request_id, pull_request_name, author_id, status, created_at, merged_at)
		VALUES ($1, $2, $3, $4, $5, $6)
	`
	_, err := r.Engine(ctx).Exec(ctx, query,
		pr.PullRequestID, pr.PullRequestName, pr.AuthorID, pr.Status, pr.CreatedAt, pr.MergedAt)
	if err != nil {
		var pgErr *pgconn.PgError
		if errors.As(err, &pgErr) && pgErr.Code == uniqueViolation {
			return domain.ErrPRExists
		}
		return fmt.Errorf("failed to create pull request: %w", err)
	}
	return nil
}

func (r *prRepository) GetPR(ctx context.Context, prID string) (domain.PullRequest, error) {
	query := prWithReviewersQuery + `
		WHERE p.pull_request_id = $1
		GROUP BY p.pull_request_id
	`
	var pr domain.PullRequest
	err := pgxscan.Get(ctx, r.Engine(ctx), &pr, query, prID)
	if err != nil {
		if pgxscan.NotFound(err) {
			return domain.PullRequest{}, domain.ErrNotFound
		}
		return domain.PullRequest{}, fmt.Errorf("failed to get pull request: %w", err)
	}
	return pr, nil
}

// UpdatePR persists status and merged_at; reviewer edges are managed
// through the dedicated edge methods.
func (r *prRepository) UpdatePR(ctx context.Context, pr domain.PullRequest) error {
	query := `
		UPDATE pull_requests
		SET status = $2, merged_at = $3
		WHERE pull_request_id = $1
	`
	tag, err := r.Engine(ctx).Exec(ctx, query, pr.PullRequestID, pr.Status, pr.MergedAt)
	if err != nil {
		return fmt.Errorf("failed to update pull request: %w", err)
	}
	if tag.RowsAffected() == 0 {
		return domain.ErrNotFound
	}
	return nil
}

func (r *prRepository) AssignReviewers(ctx context.Context, prID string, reviewers []string) error {
	query := `
		INSERT INTO pr_reviewers (pull_request_id, reviewer_id)
		VALUES ($1, $2)
	`
	for _, reviewerID := range reviewers {
		if _, err := r.Engine(ctx).Exec(ctx, query, prID, reviewerID); err != nil {
			return fmt.Errorf("failed to assign reviewer %s: %w", reviewerID, err)
		}
	}
	return nil
}

// ReplaceReviewer mutates the existing edge in place so the edge id
// survives the swap.
func (r *prRepository) ReplaceReviewer(ctx context.Context, prID, oldUserID, newUserID string) error {
	query := `
		UPDATE pr_reviewers
		SET reviewer_id = $3
		WHERE pull_request_id = $1 AND reviewer_id = $2
	`
	tag, err := r.Engine(ctx).Exec(ctx, query, prID, oldUserID, newUserID)
	if err != nil {
		return fmt.Errorf("failed to replace reviewer: %w", err)
	}
	if tag.RowsAffected() == 0 {
		return domain.ErrNotAssigned
	}
	return nil
}

func (r *prRepository) RemoveReviewer(ctx context.Context, prID string, userID string) error {
	query := `
		DELETE FROM pr_reviewers
		WHERE pull_request_id = $1 AND reviewer_id = $2
	`
	tag, err := r.Engine(ctx).Exec(ctx, query, prID, userID)
	if err != nil {
		return fmt.Errorf("failed to remove reviewer: %w", err)
	}
	if tag.RowsAffected() == 0 {
		return domain.ErrNotAssigned
	}
	return nil
}

// GetPRsByReviewer returns every PR, any status, where the user holds a
// live reviewer edge. Reviewer lists are not loaded for this short view.
func (r *prRepository) GetPRsByReviewer(ctx context.Context, userID string) ([]domain.PullRequest, error) {
	query := `
		SELECT p.pull_request_id, p.pull_request_name, p.author_id, p.status, p.created_at, p.merged_at
		FROM pull_requests p
		JOIN pr_reviewers r ON r.pull_request_id = p.pull_request_id
		WHERE r.reviewer_id = $1
		ORDER BY p.created_at
	`
	var prs []domain.PullRequest
	err := pgxscan.Select(ctx, r.Engine(ctx), &prs, query, userID)
	if err != nil {
		return nil, fmt.Errorf("failed to get pull requests by reviewer: %w", err)
	}
	return prs, nil
}

// GetOpenPRsByReviewers returns OPEN PRs that have at least one reviewer
// edge pointing at any of the given users, with full reviewer lists.
func (r *prRepository) GetOpenPRsByReviewers(ctx context.Context, userIDs []string) ([]domain.PullRequest, error) {
	query := prWithReviewersQuery + `
		WHERE p.status = 'OPEN'
		  AND EXISTS (
			SELECT 1 FROM pr_reviewers x
			WHERE x.pull_request_id = p.pull_request_id AND x.reviewer_id = ANY($1)
		  )
		GROUP BY p.pull_request_id
	`
	var prs []domain.PullRequest
	err := pgxscan.Select(ctx, r.Engine(ctx), &prs, query, userIDs)
	if err != nil {
		return nil, fmt.Errorf("failed to get open pull requests by reviewers: %w", err)
	}
	return prs, nil
}

func (r *prRepository) PRExists(ctx context.Context, prID string) (bool, error) {
	query := `
		SELECT EXISTS(SELECT 1 FROM pull_requests WHERE pull_request_id = $1)
	`
	var exists bool
	err := r.Engine(ctx).QueryRow(ctx, query, prID).Scan(&exists)
	if err != nil {
		return false, fmt.Errorf("failed to check pull request existence: %w", err)
	}
	return exists, nil
}

func (r *prRepository) GetAssignmentStatsByUser(ctx context.Context) (map[string]int, error) {
	query := `
		SELECT reviewer_id, COUNT(*) AS cnt
		FROM pr_reviewers
		GROUP BY reviewer_id
	`
	return r.statsQuery(ctx, query)
}

func (r *prRepository) GetAssignmentStatsByPR(ctx context.Context) (map[string]int, error) {
	query := `
		SELECT pull_request_id, COUNT(*) AS cnt
		FROM pr_reviewers
		GROUP BY pull_request_id
	`
	return r.statsQuery(ctx, query)
}

func (r *prRepository) statsQuery(ctx context.Context, query string) (map[string]int, error) {
	rows, err := r.Engine(ctx).Query(ctx, query)
	if err != nil {
		return nil, fmt.Errorf("failed to query assignment stats: %w", err)
	}
	defer rows.Close()

	stats := make(map[string]int)
	for rows.Next() {
		var id string
		var count int
		if err := rows.Scan(&id, &count); err != nil {
			return nil, fmt.Errorf("failed to scan assignment stats: %w", err)
		}
		stats[id] = count
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("failed to read assignment stats: %w", err)
	}
	return stats, nil
}
