package domain

// Reassignment captures a single reviewer swap for audit logging.
type Reassignment struct {
	PullRequestID string
	OldUserID     string
	NewUserID     string
}

// BulkDeactivateResult summarizes a bulk deactivation and its repair pass.
// DeactivatedUsers counts only active-to-inactive transitions; each PR is
// counted once in AffectedPullRequests no matter how many edges were touched.
type BulkDeactivateResult struct {
	TeamName             string
	DeactivatedUsers     int
	ReassignedReviewers  int
	AffectedPullRequests int
	Reassignments        []Reassignment
}
