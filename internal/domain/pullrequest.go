package domain

import "time"

type PRStatus string

const (
	PRStatusOpen   PRStatus = "OPEN"
	PRStatusMerged PRStatus = "MERGED"
)

// PullRequest is the aggregate the assignment engine works on. The
// reviewer list mirrors the pr_reviewers edges loaded for this PR.
type PullRequest struct {
	PullRequestID     string
	PullRequestName   string
	AuthorID          string
	Status            PRStatus
	AssignedReviewers []string
	CreatedAt         time.Time
	MergedAt          *time.Time
}

func NewPullRequest(prID, prName, authorID string) PullRequest {
	return PullRequest{
		PullRequestID:     prID,
		PullRequestName:   prName,
		AuthorID:          authorID,
		Status:            PRStatusOpen,
		AssignedReviewers: make([]string, 0),
		CreatedAt:         time.Now(),
	}
}

func (pr *PullRequest) IsMerged() bool {
	return pr.Status == PRStatusMerged
}

// Merge marks the PR merged. Calling it again is a no-op, so merged_at
// is set exactly once.
func (pr *PullRequest) Merge(at time.Time) {
	if pr.IsMerged() {
		return
	}
	pr.Status = PRStatusMerged
	pr.MergedAt = &at
}

func (pr *PullRequest) IsReviewerAssigned(userID string) bool {
	for _, rid := range pr.AssignedReviewers {
		if rid == userID {
			return true
		}
	}
	return false
}

// ReplaceReviewer swaps oldUserID for newUserID in place, keeping the
// reviewer's slot position.
func (pr *PullRequest) ReplaceReviewer(oldUserID, newUserID string) error {
	if pr.IsMerged() {
		return ErrPRMerged
	}
	for i, rid := range pr.AssignedReviewers {
		if rid == oldUserID {
			pr.AssignedReviewers[i] = newUserID
			return nil
		}
	}
	return ErrNotAssigned
}

// RemoveReviewer drops the reviewer's edge, used when no replacement exists.
func (pr *PullRequest) RemoveReviewer(userID string) {
	filtered := pr.AssignedReviewers[:0]
	for _, rid := range pr.AssignedReviewers {
		if rid != userID {
			filtered = append(filtered, rid)
		}
	}
	pr.AssignedReviewers = filtered
}
