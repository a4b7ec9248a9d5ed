package domain

import "errors"

// Sentinel errors for every recoverable condition the engine can raise.
// Anything else surfacing from the store is treated as internal.
var (
	// ErrNotFound - referenced team, user or pull request does not exist (404)
	ErrNotFound = errors.New("resource not found")

	// ErrTeamExists - team name already taken (400)
	ErrTeamExists = errors.New("team already exists")

	// ErrPRExists - pull request id already taken (409)
	ErrPRExists = errors.New("pull request already exists")

	// ErrPRMerged - mutation attempted on a merged pull request (409)
	ErrPRMerged = errors.New("cannot modify merged pull request")

	// ErrNotAssigned - user holds no reviewer edge on the pull request (409)
	ErrNotAssigned = errors.New("user is not assigned as reviewer")

	// ErrNoCandidate - replacement pool is empty (409)
	ErrNoCandidate = errors.New("no active candidate available for assignment")

	// ErrInvalidArgument - request failed outer validation (400)
	ErrInvalidArgument = errors.New("invalid argument")
)

type ErrorCode string

const (
	ErrorCodeTeamExists      ErrorCode = "TEAM_EXISTS"
	ErrorCodePRExists        ErrorCode = "PR_EXISTS"
	ErrorCodePRMerged        ErrorCode = "PR_MERGED"
	ErrorCodeNotAssigned     ErrorCode = "NOT_ASSIGNED"
	ErrorCodeNoCandidate     ErrorCode = "NO_CANDIDATE"
	ErrorCodeNotFound        ErrorCode = "NOT_FOUND"
	ErrorCodeInvalidArgument ErrorCode = "INVALID_ARGUMENT"
)

func GetErrorCode(err error) ErrorCode {
	switch {
	case errors.Is(err, ErrTeamExists):
		return ErrorCodeTeamExists
	case errors.Is(err, ErrPRExists):
		return ErrorCodePRExists
	case errors.Is(err, ErrPRMerged):
		return ErrorCodePRMerged
	case errors.Is(err, ErrNotAssigned):
		return ErrorCodeNotAssigned
	case errors.Is(err, ErrNoCandidate):
		return ErrorCodeNoCandidate
	case errors.Is(err, ErrNotFound):
		return ErrorCodeNotFound
	case errors.Is(err, ErrInvalidArgument):
		return ErrorCodeInvalidArgument
	default:
		return ""
	}
}

func GetHTTPStatus(err error) int {
	switch {
	case errors.Is(err, ErrNotFound):
		return 404
	case errors.Is(err, ErrTeamExists), errors.Is(err, ErrInvalidArgument):
		return 400
	case errors.Is(err, ErrPRExists), errors.Is(err, ErrPRMerged),
		errors.Is(err, ErrNotAssigned), errors.Is(err, ErrNoCandidate):
		return 409
	default:
		return 500
	}
}
