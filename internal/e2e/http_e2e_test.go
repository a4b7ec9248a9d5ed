package e2e

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"math/rand"
	"net/http"
	"net/http/httptest"
	"sort"
	"sync"
	"testing"
	"time"

	"review-service/internal/app/middleware"
	"review-service/internal/domain"
	"review-service/internal/handler"
	"review-service/internal/service/assignment"
	"review-service/internal/service/pullrequest"
	"review-service/internal/service/team"
	"review-service/internal/service/user"

	"go.uber.org/zap"
)

// memStore backs the in-memory repositories so the whole HTTP surface can
// be exercised without Postgres.
type memStore struct {
	mu    sync.Mutex
	teams map[string]time.Time
	users map[string]domain.User
	prs   map[string]domain.PullRequest
}

func newMemStore() *memStore {
	return &memStore{
		teams: make(map[string]time.Time),
		users: make(map[string]domain.User),
		prs:   make(map[string]domain.PullRequest),
	}
}

func clonePR(pr domain.PullRequest) domain.PullRequest {
	copied := pr
	copied.AssignedReviewers = append([]string(nil), pr.AssignedReviewers...)
	return copied
}

type memTeamRepo struct{ store *memStore }

func (r *memTeamRepo) CreateTeam(_ context.Context, t domain.Team) error {
	r.store.mu.Lock()
	defer r.store.mu.Unlock()
	if _, ok := r.store.teams[t.TeamName]; ok {
		return domain.ErrTeamExists
	}
	r.store.teams[t.TeamName] = time.Now()
	return nil
}

func (r *memTeamRepo) GetTeam(_ context.Context, teamName string) (domain.Team, error) {
	r.store.mu.Lock()
	defer r.store.mu.Unlock()
	createdAt, ok := r.store.teams[teamName]
	if !ok {
		return domain.Team{}, domain.ErrNotFound
	}

	members := make([]domain.User, 0)
	for _, u := range r.store.users {
		if u.TeamName == teamName {
			members = append(members, u)
		}
	}
	sort.Slice(members, func(i, j int) bool { return members[i].UserID < members[j].UserID })

	return domain.Team{TeamName: teamName, Members: members, CreatedAt: createdAt}, nil
}

func (r *memTeamRepo) TeamExists(_ context.Context, teamName string) (bool, error) {
	r.store.mu.Lock()
	defer r.store.mu.Unlock()
	_, ok := r.store.teams[teamName]
	return ok, nil
}

type memUserRepo struct{ store *memStore }

func (r *memUserRepo) CreateOrUpdateUser(_ context.Context, u domain.User) error {
	r.store.mu.Lock()
	defer r.store.mu.Unlock()
	r.store.users[u.UserID] = u
	return nil
}

func (r *memUserRepo) GetUser(_ context.Context, userID string) (domain.User, error) {
	r.store.mu.Lock()
	defer r.store.mu.Unlock()
	u, ok := r.store.users[userID]
	if !ok {
		return domain.User{}, domain.ErrNotFound
	}
	return u, nil
}

func (r *memUserRepo) UpdateUser(_ context.Context, u domain.User) error {
	r.store.mu.Lock()
	defer r.store.mu.Unlock()
	if _, ok := r.store.users[u.UserID]; !ok {
		return domain.ErrNotFound
	}
	r.store.users[u.UserID] = u
	return nil
}

func (r *memUserRepo) GetUsersByIDs(_ context.Context, userIDs []string) ([]domain.User, error) {
	r.store.mu.Lock()
	defer r.store.mu.Unlock()
	result := make([]domain.User, 0, len(userIDs))
	for _, id := range userIDs {
		if u, ok := r.store.users[id]; ok {
			result = append(result, u)
		}
	}
	return result, nil
}

func (r *memUserRepo) GetTeamMembers(_ context.Context, teamName string) ([]domain.User, error) {
	r.store.mu.Lock()
	defer r.store.mu.Unlock()
	result := make([]domain.User, 0)
	for _, u := range r.store.users {
		if u.TeamName == teamName {
			result = append(result, u)
		}
	}
	sort.Slice(result, func(i, j int) bool { return result[i].UserID < result[j].UserID })
	return result, nil
}

func (r *memUserRepo) DeactivateUsers(_ context.Context, userIDs []string) (int, error) {
	r.store.mu.Lock()
	defer r.store.mu.Unlock()
	count := 0
	for _, id := range userIDs {
		u, ok := r.store.users[id]
		if !ok || !u.IsActive {
			continue
		}
		u.IsActive = false
		r.store.users[id] = u
		count++
	}
	return count, nil
}

type memPRRepo struct{ store *memStore }

func (r *memPRRepo) CreatePR(_ context.Context, pr domain.PullRequest) error {
	r.store.mu.Lock()
	defer r.store.mu.Unlock()
	if _, ok := r.store.prs[pr.PullRequestID]; ok {
		return domain.ErrPRExists
	}
	r.store.prs[pr.PullRequestID] = clonePR(pr)
	return nil
}

func (r *memPRRepo) GetPR(_ context.Context, prID string) (domain.PullRequest, error) {
	r.store.mu.Lock()
	defer r.store.mu.Unlock()
	pr, ok := r.store.prs[prID]
	if !ok {
		return domain.PullRequest{}, domain.ErrNotFound
	}
	return clonePR(pr), nil
}

func (r *memPRRepo) UpdatePR(_ context.Context, pr domain.PullRequest) error {
	r.store.mu.Lock()
	defer r.store.mu.Unlock()
	stored, ok := r.store.prs[pr.PullRequestID]
	if !ok {
		return domain.ErrNotFound
	}
	stored.Status = pr.Status
	stored.MergedAt = pr.MergedAt
	r.store.prs[pr.PullRequestID] = stored
	return nil
}

func (r *memPRRepo) AssignReviewers(_ context.Context, prID string, reviewers []string) error {
	r.store.mu.Lock()
	defer r.store.mu.Unlock()
	pr, ok := r.store.prs[prID]
	if !ok {
		return domain.ErrNotFound
	}
	pr.AssignedReviewers = append(pr.AssignedReviewers, reviewers...)
	r.store.prs[prID] = pr
	return nil
}

func (r *memPRRepo) ReplaceReviewer(_ context.Context, prID, oldUserID, newUserID string) error {
	r.store.mu.Lock()
	defer r.store.mu.Unlock()
	pr, ok := r.store.prs[prID]
	if !ok {
		return domain.ErrNotFound
	}
	if err := pr.ReplaceReviewer(oldUserID, newUserID); err != nil {
		return err
	}
	r.store.prs[prID] = pr
	return nil
}

func (r *memPRRepo) RemoveReviewer(_ context.Context, prID string, userID string) error {
	r.store.mu.Lock()
	defer r.store.mu.Unlock()
	pr, ok := r.store.prs[prID]
	if !ok {
		return domain.ErrNotFound
	}
	if !pr.IsReviewerAssigned(userID) {
		return domain.ErrNotAssigned
	}
	pr.RemoveReviewer(userID)
	r.store.prs[prID] = pr
	return nil
}

func (r *memPRRepo) PRExists(_ context.Context, prID string) (bool, error) {
	r.store.mu.Lock()
	defer r.store.mu.Unlock()
	_, ok := r.store.prs[prID]
	return ok, nil
}

func (r *memPRRepo) GetPRsByReviewer(_ context.Context, userID string) ([]domain.PullRequest, error) {
	r.store.mu.Lock()
	defer r.store.mu.Unlock()
	result := make([]domain.PullRequest, 0)
	for _, pr := range r.store.prs {
		if pr.IsReviewerAssigned(userID) {
			result = append(result, clonePR(pr))
		}
	}
	return result, nil
}

func (r *memPRRepo) GetOpenPRsByReviewers(_ context.Context, userIDs []string) ([]domain.PullRequest, error) {
	r.store.mu.Lock()
	defer r.store.mu.Unlock()
	targets := make(map[string]struct{}, len(userIDs))
	for _, id := range userIDs {
		targets[id] = struct{}{}
	}
	result := make([]domain.PullRequest, 0)
	for _, pr := range r.store.prs {
		if pr.Status != domain.PRStatusOpen {
			continue
		}
		for _, rid := range pr.AssignedReviewers {
			if _, ok := targets[rid]; ok {
				result = append(result, clonePR(pr))
				break
			}
		}
	}
	return result, nil
}

func (r *memPRRepo) GetAssignmentStatsByUser(_ context.Context) (map[string]int, error) {
	r.store.mu.Lock()
	defer r.store.mu.Unlock()
	stats := make(map[string]int)
	for _, pr := range r.store.prs {
		for _, rid := range pr.AssignedReviewers {
			stats[rid]++
		}
	}
	return stats, nil
}

func (r *memPRRepo) GetAssignmentStatsByPR(_ context.Context) (map[string]int, error) {
	r.store.mu.Lock()
	defer r.store.mu.Unlock()
	stats := make(map[string]int)
	for _, pr := range r.store.prs {
		if len(pr.AssignedReviewers) > 0 {
			stats[pr.PullRequestID] = len(pr.AssignedReviewers)
		}
	}
	return stats, nil
}

type noopTransactor struct{}

func (noopTransactor) Do(ctx context.Context, f func(ctx context.Context) error) error {
	return f(ctx)
}

func newTestServer(t *testing.T) *httptest.Server {
	t.Helper()

	store := newMemStore()
	teamRepo := &memTeamRepo{store: store}
	userRepo := &memUserRepo{store: store}
	prRepo := &memPRRepo{store: store}

	log := zap.NewNop()
	strategy := assignment.NewStrategyWithSource(rand.NewSource(1))

	teamService := team.NewService(teamRepo, userRepo, noopTransactor{})
	userService := user.NewService(userRepo, prRepo, teamRepo, noopTransactor{}, strategy)
	prService := pullrequest.NewService(prRepo, userRepo, noopTransactor{}, strategy)

	teamHandler := handler.NewTeamHandler(teamService, log)
	userHandler := handler.NewUserHandler(userService, log)
	prHandler := handler.NewPRHandler(prService, log)
	statsHandler := handler.NewStatsHandler(prService, log)
	healthHandler := handler.NewHealthHandler()

	mux := http.NewServeMux()
	mux.HandleFunc("POST /team/add", teamHandler.AddTeam)
	mux.HandleFunc("GET /team/get", teamHandler.GetTeam)
	mux.HandleFunc("POST /team/deactivateUsers", userHandler.BulkDeactivate)
	mux.HandleFunc("POST /users/setIsActive", userHandler.SetIsActive)
	mux.HandleFunc("GET /users/getReview", userHandler.GetReview)
	mux.HandleFunc("POST /pullRequest/create", prHandler.CreatePR)
	mux.HandleFunc("POST /pullRequest/merge", prHandler.MergePR)
	mux.HandleFunc("POST /pullRequest/reassign", prHandler.ReassignReviewer)
	mux.HandleFunc("GET /stats/assignments", statsHandler.GetAssignmentStats)
	mux.HandleFunc("GET /health", healthHandler.Check)

	var h http.Handler = mux
	h = middleware.Logging(log)(h)
	h = middleware.RequestID()(h)
	h = middleware.Recovery(log)(h)

	server := httptest.NewServer(h)
	t.Cleanup(server.Close)
	return server
}

func postJSON(t *testing.T, server *httptest.Server, path string, body any, out any) int {
	t.Helper()

	payload, err := json.Marshal(body)
	if err != nil {
		t.Fatalf("marshal request: %v", err)
	}

	resp, err := http.Post(server.URL+path, "application/json", bytes.NewReader(payload))
	if err != nil {
		t.Fatalf("POST %s: %v", path, err)
	}
	defer resp.Body.Close()

	if out != nil {
		if err := json.NewDecoder(resp.Body).Decode(out); err != nil {
			t.Fatalf("decode response from %s: %v", path, err)
		}
	}
	return resp.StatusCode
}

func getJSON(t *testing.T, server *httptest.Server, path string, out any) int {
	t.Helper()

	resp, err := http.Get(server.URL + path)
	if err != nil {
		t.Fatalf("GET %s: %v", path, err)
	}
	defer resp.Body.Close()

	if out != nil {
		if err := json.NewDecoder(resp.Body).Decode(out); err != nil {
			t.Fatalf("decode response from %s: %v", path, err)
		}
	}
	return resp.StatusCode
}

type teamResponse struct {
	Team handler.TeamDTO `json:"team"`
}

type prResponse struct {
	PR handler.PullRequestDTO `json:"pr"`
}

type reassignResponse struct {
	PR         handler.PullRequestDTO `json:"pr"`
	ReplacedBy string                 `json:"replaced_by"`
}

type errorResponse struct {
	Error struct {
		Code    string `json:"code"`
		Message string `json:"message"`
	} `json:"error"`
}

func addTeam(t *testing.T, server *httptest.Server, teamName string, members []handler.TeamMemberDTO) {
	t.Helper()
	status := postJSON(t, server, "/team/add", handler.TeamDTO{TeamName: teamName, Members: members}, nil)
	if status != http.StatusCreated {
		t.Fatalf("POST /team/add %s: got status %d", teamName, status)
	}
}

func TestTeamLifecycle(t *testing.T) {
	server := newTestServer(t)

	members := []handler.TeamMemberDTO{
		{UserID: "u1", Username: "Alice", IsActive: true},
		{UserID: "u2", Username: "Bob", IsActive: true},
		{UserID: "u3", Username: "Charlie", IsActive: false},
	}

	var created teamResponse
	status := postJSON(t, server, "/team/add", handler.TeamDTO{TeamName: "backend", Members: members}, &created)
	if status != http.StatusCreated {
		t.Fatalf("expected 201, got %d", status)
	}
	if created.Team.TeamName != "backend" || len(created.Team.Members) != 3 {
		t.Fatalf("unexpected team in response: %+v", created.Team)
	}

	var dup errorResponse
	status = postJSON(t, server, "/team/add", handler.TeamDTO{TeamName: "backend", Members: members}, &dup)
	if status != http.StatusBadRequest || dup.Error.Code != "TEAM_EXISTS" {
		t.Fatalf("expected 400 TEAM_EXISTS, got %d %q", status, dup.Error.Code)
	}

	var fetched handler.TeamDTO
	status = getJSON(t, server, "/team/get?team_name=backend", &fetched)
	if status != http.StatusOK {
		t.Fatalf("expected 200, got %d", status)
	}
	if len(fetched.Members) != 3 {
		t.Fatalf("expected 3 members, got %+v", fetched.Members)
	}

	var missing errorResponse
	status = getJSON(t, server, "/team/get?team_name=ghost", &missing)
	if status != http.StatusNotFound || missing.Error.Code != "NOT_FOUND" {
		t.Fatalf("expected 404 NOT_FOUND, got %d %q", status, missing.Error.Code)
	}
}

func TestPullRequestLifecycle(t *testing.T) {
	server := newTestServer(t)

	addTeam(t, server, "backend", []handler.TeamMemberDTO{
		{UserID: "u1", Username: "Alice", IsActive: true},
		{UserID: "u2", Username: "Bob", IsActive: true},
		{UserID: "u3", Username: "Charlie", IsActive: true},
		{UserID: "u4", Username: "David", IsActive: true},
	})

	var created prResponse
	status := postJSON(t, server, "/pullRequest/create", handler.CreatePRRequest{
		PullRequestID:   "pr-1",
		PullRequestName: "Add search endpoint",
		AuthorID:        "u1",
	}, &created)
	if status != http.StatusCreated {
		t.Fatalf("expected 201, got %d", status)
	}
	if created.PR.Status != "OPEN" {
		t.Fatalf("expected OPEN status, got %q", created.PR.Status)
	}
	if len(created.PR.AssignedReviewers) != 2 {
		t.Fatalf("expected 2 reviewers, got %v", created.PR.AssignedReviewers)
	}
	for _, rid := range created.PR.AssignedReviewers {
		if rid == "u1" {
			t.Fatalf("author assigned as reviewer: %v", created.PR.AssignedReviewers)
		}
	}

	var dup errorResponse
	status = postJSON(t, server, "/pullRequest/create", handler.CreatePRRequest{
		PullRequestID:   "pr-1",
		PullRequestName: "Duplicate",
		AuthorID:        "u2",
	}, &dup)
	if status != http.StatusConflict || dup.Error.Code != "PR_EXISTS" {
		t.Fatalf("expected 409 PR_EXISTS, got %d %q", status, dup.Error.Code)
	}

	// Reassign one of the assigned reviewers; the replacement must come
	// from outside the current reviewer set and not be the author.
	oldReviewer := created.PR.AssignedReviewers[0]
	keptReviewer := created.PR.AssignedReviewers[1]

	var reassigned reassignResponse
	status = postJSON(t, server, "/pullRequest/reassign", handler.ReassignRequest{
		PullRequestID: "pr-1",
		OldUserID:     oldReviewer,
	}, &reassigned)
	if status != http.StatusOK {
		t.Fatalf("expected 200, got %d", status)
	}
	if len(reassigned.PR.AssignedReviewers) != 2 {
		t.Fatalf("reviewer count changed: %v", reassigned.PR.AssignedReviewers)
	}
	for _, rid := range reassigned.PR.AssignedReviewers {
		if rid == oldReviewer {
			t.Fatalf("old reviewer still assigned: %v", reassigned.PR.AssignedReviewers)
		}
	}
	if reassigned.PR.AssignedReviewers[0] != keptReviewer && reassigned.PR.AssignedReviewers[1] != keptReviewer {
		t.Fatalf("untouched reviewer was dropped: %v", reassigned.PR.AssignedReviewers)
	}
	if reassigned.ReplacedBy == "" || reassigned.ReplacedBy == "u1" || reassigned.ReplacedBy == oldReviewer {
		t.Fatalf("bad replacement %q", reassigned.ReplacedBy)
	}

	var notAssigned errorResponse
	status = postJSON(t, server, "/pullRequest/reassign", handler.ReassignRequest{
		PullRequestID: "pr-1",
		OldUserID:     oldReviewer,
	}, &notAssigned)
	if status != http.StatusConflict || notAssigned.Error.Code != "NOT_ASSIGNED" {
		t.Fatalf("expected 409 NOT_ASSIGNED, got %d %q", status, notAssigned.Error.Code)
	}

	var merged prResponse
	status = postJSON(t, server, "/pullRequest/merge", handler.MergePRRequest{PullRequestID: "pr-1"}, &merged)
	if status != http.StatusOK {
		t.Fatalf("expected 200, got %d", status)
	}
	if merged.PR.Status != "MERGED" || merged.PR.MergedAt == nil {
		t.Fatalf("merge not applied: %+v", merged.PR)
	}

	var mergedAgain prResponse
	status = postJSON(t, server, "/pullRequest/merge", handler.MergePRRequest{PullRequestID: "pr-1"}, &mergedAgain)
	if status != http.StatusOK {
		t.Fatalf("second merge expected 200, got %d", status)
	}
	if mergedAgain.PR.MergedAt == nil || *mergedAgain.PR.MergedAt != *merged.PR.MergedAt {
		t.Fatalf("merge is not idempotent: %v vs %v", mergedAgain.PR.MergedAt, merged.PR.MergedAt)
	}

	var afterMerge errorResponse
	status = postJSON(t, server, "/pullRequest/reassign", handler.ReassignRequest{
		PullRequestID: "pr-1",
		OldUserID:     keptReviewer,
	}, &afterMerge)
	if status != http.StatusConflict || afterMerge.Error.Code != "PR_MERGED" {
		t.Fatalf("expected 409 PR_MERGED, got %d %q", status, afterMerge.Error.Code)
	}

	var unknown errorResponse
	status = postJSON(t, server, "/pullRequest/merge", handler.MergePRRequest{PullRequestID: "ghost"}, &unknown)
	if status != http.StatusNotFound || unknown.Error.Code != "NOT_FOUND" {
		t.Fatalf("expected 404 NOT_FOUND, got %d %q", status, unknown.Error.Code)
	}
}

func TestGetReviewAndStats(t *testing.T) {
	server := newTestServer(t)

	// Author plus a single active teammate: reviewer assignment is
	// deterministic regardless of the shuffle.
	addTeam(t, server, "mobile", []handler.TeamMemberDTO{
		{UserID: "m1", Username: "Maya", IsActive: true},
		{UserID: "m2", Username: "Nikita", IsActive: true},
	})

	for i := 1; i <= 3; i++ {
		status := postJSON(t, server, "/pullRequest/create", handler.CreatePRRequest{
			PullRequestID:   fmt.Sprintf("pr-%d", i),
			PullRequestName: fmt.Sprintf("Change %d", i),
			AuthorID:        "m1",
		}, nil)
		if status != http.StatusCreated {
			t.Fatalf("create pr-%d: got status %d", i, status)
		}
	}

	var review struct {
		UserID       string                     `json:"user_id"`
		PullRequests []handler.PullRequestShort `json:"pull_requests"`
	}
	status := getJSON(t, server, "/users/getReview?user_id=m2", &review)
	if status != http.StatusOK {
		t.Fatalf("expected 200, got %d", status)
	}
	if len(review.PullRequests) != 3 {
		t.Fatalf("expected 3 PRs under review, got %+v", review.PullRequests)
	}

	var missing errorResponse
	status = getJSON(t, server, "/users/getReview?user_id=ghost", &missing)
	if status != http.StatusNotFound || missing.Error.Code != "NOT_FOUND" {
		t.Fatalf("expected 404 NOT_FOUND, got %d %q", status, missing.Error.Code)
	}

	var stats struct {
		ByUser map[string]int `json:"by_user"`
		ByPR   map[string]int `json:"by_pr"`
	}
	status = getJSON(t, server, "/stats/assignments", &stats)
	if status != http.StatusOK {
		t.Fatalf("expected 200, got %d", status)
	}
	if stats.ByUser["m2"] != 3 {
		t.Fatalf("expected m2 to hold 3 assignments, got %+v", stats.ByUser)
	}
	for i := 1; i <= 3; i++ {
		if stats.ByPR[fmt.Sprintf("pr-%d", i)] != 1 {
			t.Fatalf("unexpected per-PR stats: %+v", stats.ByPR)
		}
	}
}

func TestSetIsActiveEndpoint(t *testing.T) {
	server := newTestServer(t)

	addTeam(t, server, "backend", []handler.TeamMemberDTO{
		{UserID: "u1", Username: "Alice", IsActive: true},
	})

	var updated struct {
		User handler.UserDTO `json:"user"`
	}
	status := postJSON(t, server, "/users/setIsActive", handler.SetIsActiveRequest{UserID: "u1", IsActive: false}, &updated)
	if status != http.StatusOK {
		t.Fatalf("expected 200, got %d", status)
	}
	if updated.User.IsActive {
		t.Fatalf("expected inactive user: %+v", updated.User)
	}

	var missing errorResponse
	status = postJSON(t, server, "/users/setIsActive", handler.SetIsActiveRequest{UserID: "ghost", IsActive: true}, &missing)
	if status != http.StatusNotFound || missing.Error.Code != "NOT_FOUND" {
		t.Fatalf("expected 404 NOT_FOUND, got %d %q", status, missing.Error.Code)
	}
}

func TestBulkDeactivateEndpoint(t *testing.T) {
	server := newTestServer(t)

	// m3 starts inactive so the single PR deterministically lands on m2.
	addTeam(t, server, "mobile", []handler.TeamMemberDTO{
		{UserID: "m1", Username: "Maya", IsActive: true},
		{UserID: "m2", Username: "Nikita", IsActive: true},
		{UserID: "m3", Username: "Oleg", IsActive: false},
	})

	var created prResponse
	status := postJSON(t, server, "/pullRequest/create", handler.CreatePRRequest{
		PullRequestID:   "pr-1",
		PullRequestName: "Offline mode",
		AuthorID:        "m1",
	}, &created)
	if status != http.StatusCreated {
		t.Fatalf("expected 201, got %d", status)
	}
	if len(created.PR.AssignedReviewers) != 1 || created.PR.AssignedReviewers[0] != "m2" {
		t.Fatalf("expected reviewer m2, got %v", created.PR.AssignedReviewers)
	}

	// Bring m3 back so the repair pass has a replacement.
	if status := postJSON(t, server, "/users/setIsActive", handler.SetIsActiveRequest{UserID: "m3", IsActive: true}, nil); status != http.StatusOK {
		t.Fatalf("setIsActive m3: got status %d", status)
	}

	var result handler.BulkDeactivateResponse
	status = postJSON(t, server, "/team/deactivateUsers", handler.BulkDeactivateRequest{
		TeamName: "mobile",
		UserIDs:  []string{"m2"},
	}, &result)
	if status != http.StatusOK {
		t.Fatalf("expected 200, got %d", status)
	}
	if result.TeamName != "mobile" || result.DeactivatedUsers != 1 || result.ReassignedReviewers != 1 || result.AffectedPullRequests != 1 {
		t.Fatalf("unexpected bulk result: %+v", result)
	}

	var review struct {
		UserID       string                     `json:"user_id"`
		PullRequests []handler.PullRequestShort `json:"pull_requests"`
	}
	if status := getJSON(t, server, "/users/getReview?user_id=m3", &review); status != http.StatusOK {
		t.Fatalf("getReview m3: got status %d", status)
	}
	if len(review.PullRequests) != 1 || review.PullRequests[0].PullRequestID != "pr-1" {
		t.Fatalf("expected pr-1 reassigned to m3, got %+v", review.PullRequests)
	}

	// Foreign member id fails the whole batch.
	addTeam(t, server, "web", []handler.TeamMemberDTO{
		{UserID: "w1", Username: "Pasha", IsActive: true},
	})
	var rejected errorResponse
	status = postJSON(t, server, "/team/deactivateUsers", handler.BulkDeactivateRequest{
		TeamName: "mobile",
		UserIDs:  []string{"m3", "w1"},
	}, &rejected)
	if status != http.StatusNotFound || rejected.Error.Code != "NOT_FOUND" {
		t.Fatalf("expected 404 NOT_FOUND, got %d %q", status, rejected.Error.Code)
	}
}

func TestBulkDeactivateDrainsReviewerPool(t *testing.T) {
	server := newTestServer(t)

	addTeam(t, server, "infra", []handler.TeamMemberDTO{
		{UserID: "i1", Username: "Olya", IsActive: true},
		{UserID: "i2", Username: "Petya", IsActive: true},
		{UserID: "i3", Username: "Roma", IsActive: true},
	})

	var created prResponse
	if status := postJSON(t, server, "/pullRequest/create", handler.CreatePRRequest{
		PullRequestID:   "pr-1",
		PullRequestName: "Terraform cleanup",
		AuthorID:        "i1",
	}, &created); status != http.StatusCreated {
		t.Fatalf("create pr-1: got status %d", status)
	}
	if len(created.PR.AssignedReviewers) != 2 {
		t.Fatalf("expected 2 reviewers, got %v", created.PR.AssignedReviewers)
	}

	// Deactivating every possible reviewer leaves no candidates: both
	// edges are dropped, nothing is reassigned, the PR counts as affected.
	var result handler.BulkDeactivateResponse
	status := postJSON(t, server, "/team/deactivateUsers", handler.BulkDeactivateRequest{
		TeamName: "infra",
		UserIDs:  []string{"i2", "i3"},
	}, &result)
	if status != http.StatusOK {
		t.Fatalf("expected 200, got %d", status)
	}
	if result.DeactivatedUsers != 2 || result.ReassignedReviewers != 0 || result.AffectedPullRequests != 1 {
		t.Fatalf("unexpected bulk result: %+v", result)
	}

	for _, id := range []string{"i2", "i3"} {
		var review struct {
			UserID       string                     `json:"user_id"`
			PullRequests []handler.PullRequestShort `json:"pull_requests"`
		}
		if status := getJSON(t, server, "/users/getReview?user_id="+id, &review); status != http.StatusOK {
			t.Fatalf("getReview %s: got status %d", id, status)
		}
		if len(review.PullRequests) != 0 {
			t.Fatalf("expected %s to hold no edges, got %+v", id, review.PullRequests)
		}
	}
}

func TestHealthEndpoint(t *testing.T) {
	server := newTestServer(t)

	var health map[string]any
	status := getJSON(t, server, "/health", &health)
	if status != http.StatusOK {
		t.Fatalf("expected 200, got %d", status)
	}
	if health["status"] != "ok" {
		t.Fatalf("unexpected health payload: %+v", health)
	}
}
