package handlers

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
	"time"

	"github.com/arnavshah/meeting-rotation-api/pkg/auth"
	"github.com/arnavshah/meeting-rotation-api/pkg/config"
	"github.com/arnavshah/meeting-rotation-api/pkg/database"
	"github.com/arnavshah/meeting-rotation-api/pkg/metrics"
	"github.com/arnavshah/meeting-rotation-api/pkg/models"
	"github.com/arnavshah/meeting-rotation-api/pkg/scheduler"
	"github.com/arnavshah/meeting-rotation-api/pkg/slips"
	"github.com/gin-gonic/gin"
	"go.uber.org/zap"
	"golang.org/x/crypto/bcrypt"
)

func newTestRouter(t *testing.T) (*gin.Engine, *Handler) {
	t.Helper()
	gin.SetMode(gin.TestMode)

	db, err := database.Open(config.DatabaseConfig{Path: ":memory:"}, zap.NewNop())
	if err != nil {
		t.Fatalf("Open: %v", err)
	}
	store := database.NewStore(db)
	am := auth.NewManager(config.AuthConfig{
		JWTSecret:     "jwt-secret-for-tests",
		MasterSecret:  "master-secret-for-tests",
		AdminUsername: "admin",
		AdminPassword: "hunter22",
		TokenTTL:      time.Hour,
		BcryptCost:    bcrypt.MinCost,
	})
	if err := am.EnsureAdmin(context.Background(), store, zap.NewNop()); err != nil {
		t.Fatalf("EnsureAdmin: %v", err)
	}

	h := &Handler{
		Store:     store,
		Auth:      am,
		Scheduler: scheduler.NewScheduler(scheduler.DefaultConfig(), zap.NewNop()),
		Metrics:   metrics.New(),
		Logger:    zap.NewNop(),
	}
	return NewRouter(h), h
}

func workspaceKey(t *testing.T, h *Handler, ws string) string {
	t.Helper()
	key, err := h.Auth.GenerateKey(ws)
	if err != nil {
		t.Fatalf("GenerateKey: %v", err)
	}
	return key
}

func do(r http.Handler, method, path, token string, body any) *httptest.ResponseRecorder {
	var rd io.Reader
	if body != nil {
		b, _ := json.Marshal(body)
		rd = bytes.NewReader(b)
	}
	req := httptest.NewRequest(method, path, rd)
	if body != nil {
		req.Header.Set("Content-Type", "application/json")
	}
	if token != "" {
		req.Header.Set("Authorization", "Bearer "+token)
	}
	w := httptest.NewRecorder()
	r.ServeHTTP(w, req)
	return w
}

func decode(t *testing.T, w *httptest.ResponseRecorder, v any) {
	t.Helper()
	if err := json.Unmarshal(w.Body.Bytes(), v); err != nil {
		t.Fatalf("decode %q: %v", w.Body.String(), err)
	}
}

func names(prefix string, n int) []string {
	out := make([]string, n)
	for i := range out {
		out[i] = fmt.Sprintf("%s%d", prefix, i+1)
	}
	return out
}

func TestBanner(t *testing.T) {
	r, _ := newTestRouter(t)
	w := do(r, http.MethodGet, "/", "", nil)
	if w.Code != http.StatusOK {
		t.Fatalf("Expected 200, got %d", w.Code)
	}
	if w.Header().Get("X-Request-ID") == "" {
		t.Error("Expected X-Request-ID response header")
	}
}

func TestCORSPreflight(t *testing.T) {
	r, _ := newTestRouter(t)
	req := httptest.NewRequest(http.MethodOptions, "/api/rotate", nil)
	req.Header.Set("Origin", "http://localhost:5173")
	req.Header.Set("Access-Control-Request-Method", http.MethodPost)
	w := httptest.NewRecorder()
	r.ServeHTTP(w, req)

	if w.Code != http.StatusNoContent {
		t.Errorf("Expected 204 preflight, got %d", w.Code)
	}
	if got := w.Header().Get("Access-Control-Allow-Origin"); got != "*" {
		t.Errorf("Expected any origin allowed, got %q", got)
	}
}

func TestAdmin_LoginAndKeys(t *testing.T) {
	r, _ := newTestRouter(t)

	if w := do(r, http.MethodPost, "/admin/login", "", gin.H{"username": "admin", "password": "wrong"}); w.Code != http.StatusUnauthorized {
		t.Errorf("Expected 401 for bad password, got %d", w.Code)
	}

	w := do(r, http.MethodPost, "/admin/login", "", gin.H{"username": "admin", "password": "hunter22"})
	if w.Code != http.StatusOK {
		t.Fatalf("Expected 200 from login, got %d: %s", w.Code, w.Body.String())
	}
	var login struct {
		AccessToken string `json:"access_token"`
	}
	decode(t, w, &login)

	if w := do(r, http.MethodGet, "/admin/keys", "", nil); w.Code != http.StatusUnauthorized {
		t.Errorf("Expected 401 without token, got %d", w.Code)
	}

	w = do(r, http.MethodPost, "/admin/keys", login.AccessToken, gin.H{"name": "north", "rate_limit": 50})
	if w.Code != http.StatusOK {
		t.Fatalf("Expected 200 from key creation, got %d: %s", w.Code, w.Body.String())
	}
	var created struct {
		ID  uint   `json:"id"`
		Key string `json:"key"`
	}
	decode(t, w, &created)
	if !strings.HasPrefix(created.Key, "north.") {
		t.Errorf("Expected key scoped to north, got %s", created.Key)
	}

	w = do(r, http.MethodGet, "/admin/keys", login.AccessToken, nil)
	var listed struct {
		Keys []database.APIKey `json:"keys"`
	}
	decode(t, w, &listed)
	if len(listed.Keys) != 1 || listed.Keys[0].RateLimit != 50 {
		t.Errorf("Expected one key with limit 50, got %+v", listed.Keys)
	}
	if strings.Contains(w.Body.String(), created.Key) {
		t.Error("Key listing must not expose full keys")
	}

	path := fmt.Sprintf("/admin/keys/%d", created.ID)
	if w := do(r, http.MethodPut, path, login.AccessToken, gin.H{"rate_limit": 5}); w.Code != http.StatusOK {
		t.Errorf("Expected 200 from limit update, got %d", w.Code)
	}
	if w := do(r, http.MethodDelete, path, login.AccessToken, nil); w.Code != http.StatusOK {
		t.Errorf("Expected 200 from revoke, got %d", w.Code)
	}
	if w := do(r, http.MethodDelete, path, login.AccessToken, nil); w.Code != http.StatusNotFound {
		t.Errorf("Expected 404 revoking twice, got %d", w.Code)
	}
}

func TestAPIKeyMiddleware(t *testing.T) {
	r, h := newTestRouter(t)

	if w := do(r, http.MethodGet, "/api/lists", "", nil); w.Code != http.StatusUnauthorized {
		t.Errorf("Expected 401 without key, got %d", w.Code)
	}
	if w := do(r, http.MethodGet, "/api/lists", "north.deadbeef", nil); w.Code != http.StatusUnauthorized {
		t.Errorf("Expected 401 for forged key, got %d", w.Code)
	}
	if w := do(r, http.MethodGet, "/api/lists", workspaceKey(t, h, "north"), nil); w.Code != http.StatusOK {
		t.Errorf("Expected 200 for signed key, got %d", w.Code)
	}
}

func TestRotate_Stateless(t *testing.T) {
	r, h := newTestRouter(t)
	key := workspaceKey(t, h, "north")

	input := gin.H{
		"weeks": []gin.H{{"id": 1, "title": "W1"}, {"id": 2, "title": "W2"}, {"id": 3, "title": "W3"}},
		"participant_lists": map[string]models.RoleList{
			"chairmen": {Participants: []string{"A", "B", "C"}},
			"prayers":  {Participants: []string{"P1", "P2"}},
		},
	}
	w := do(r, http.MethodPost, "/api/rotate", key, input)
	if w.Code != http.StatusOK {
		t.Fatalf("Expected 200, got %d: %s", w.Code, w.Body.String())
	}
	var resp models.RotateResponse
	decode(t, w, &resp)

	for i, want := range []string{"A", "B", "C"} {
		if resp.Weeks[i].Chairman != want {
			t.Errorf("week %d: expected chairman %s, got %s", i+1, want, resp.Weeks[i].Chairman)
		}
	}
	if resp.Weeks[0].ID != "1" {
		t.Errorf("Expected numeric week id to round-trip as \"1\", got %q", resp.Weeks[0].ID)
	}
	if resp.RotationIndices["chairmen"] != 0 {
		t.Errorf("Expected chairmen cursor 0, got %d", resp.RotationIndices["chairmen"])
	}

	w = do(r, http.MethodGet, "/api/usage", key, nil)
	var usage struct {
		Totals struct {
			Requests int `json:"requests"`
			Weeks    int `json:"weeks"`
		} `json:"totals"`
	}
	decode(t, w, &usage)
	if usage.Totals.Requests != 1 || usage.Totals.Weeks != 3 {
		t.Errorf("Expected 1 request over 3 weeks, got %+v", usage.Totals)
	}

	w = do(r, http.MethodGet, "/metrics", "", nil)
	if !strings.Contains(w.Body.String(), `rotation_engine_runs_total{outcome="ok"} 1`) {
		t.Errorf("Expected the run to be counted, got %s", w.Body.String())
	}
}

func TestRotate_MissingList(t *testing.T) {
	r, h := newTestRouter(t)
	input := gin.H{
		"weeks":             []gin.H{{"id": 1, "title": "W1"}},
		"participant_lists": map[string]models.RoleList{"chairmen": {Participants: []string{"A"}}},
	}
	w := do(r, http.MethodPost, "/api/rotate", workspaceKey(t, h, "north"), input)
	if w.Code != http.StatusUnprocessableEntity {
		t.Fatalf("Expected 422, got %d", w.Code)
	}
	var body struct {
		MissingLists []string `json:"missing_lists"`
	}
	decode(t, w, &body)
	if len(body.MissingLists) != 1 || body.MissingLists[0] != "prayers" {
		t.Errorf("Expected missing prayers, got %v", body.MissingLists)
	}
}

func TestValidate(t *testing.T) {
	r, h := newTestRouter(t)
	key := workspaceKey(t, h, "north")
	lists := map[string]models.RoleList{
		"chairmen": {Participants: []string{"A"}},
		"prayers":  {Participants: []string{"P1", "P2"}},
	}

	tests := []struct {
		name      string
		weeks     []gin.H
		wantValid bool
	}{
		{"empty", []gin.H{}, false},
		{"duplicate ids", []gin.H{{"id": 1}, {"id": 1}}, false},
		{"missing paired list", []gin.H{{"id": 1, "sections": []gin.H{{"type": "tiegri", "items": []gin.H{{"participantList": "sisters", "isDouble": true}}}}}}, false},
		{"ok", []gin.H{{"id": 1, "openingPrayer": "P1", "closingPrayer": "P1"}}, true},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			w := do(r, http.MethodPost, "/api/validate", key, gin.H{"weeks": tt.weeks, "participant_lists": lists})
			var body struct {
				Valid      bool               `json:"valid"`
				Violations []models.Violation `json:"violations"`
			}
			decode(t, w, &body)
			if body.Valid != tt.wantValid {
				t.Fatalf("Expected valid=%v, got %s", tt.wantValid, w.Body.String())
			}
			if tt.wantValid {
				if len(body.Violations) != 1 || body.Violations[0].Rule != scheduler.RuleClosingOpening {
					t.Errorf("Expected one closing prayer violation, got %+v", body.Violations)
				}
			}
		})
	}
}

func TestValidate_TreatsPairedListsAsPairs(t *testing.T) {
	r, h := newTestRouter(t)
	lists := map[string]models.RoleList{
		"chairmen": {Participants: []string{"A", "B"}},
		"prayers":  {Participants: []string{"P1", "P2"}},
		"sisters":  {Participants: []string{"S1", "S2", "S3"}},
	}
	week := func(id int, chairman string) gin.H {
		return gin.H{
			"id": id, "chairman": chairman, "openingPrayer": "P1", "closingPrayer": "P2",
			"sections": []gin.H{{"type": "tiegri", "items": []gin.H{
				{"participantList": "sisters", "isDouble": false, "assignedName": "S1 / S2"},
			}}},
		}
	}

	w := do(r, http.MethodPost, "/api/validate", workspaceKey(t, h, "north"),
		gin.H{"weeks": []gin.H{week(1, "A"), week(2, "B")}, "participant_lists": lists})
	var body struct {
		Valid      bool               `json:"valid"`
		Violations []models.Violation `json:"violations"`
	}
	decode(t, w, &body)
	if !body.Valid {
		t.Fatalf("Expected valid input, got %s", w.Body.String())
	}
	found := false
	for _, v := range body.Violations {
		found = found || v.Rule == scheduler.RulePairRepeat
	}
	if !found {
		t.Errorf("Expected the repeated sisters pair to be reported, got %+v", body.Violations)
	}
}

func TestScheduleFlow(t *testing.T) {
	r, h := newTestRouter(t)
	key := workspaceKey(t, h, "north")

	lists := map[string]models.RoleList{
		"chairmen":          {Name: "Chairmen", Participants: names("C", 3)},
		"prayers":           {Name: "Prayers", Participants: names("P", 4)},
		"assignment1":       {Participants: names("T", 3)},
		"assignment2":       {Participants: names("G", 3)},
		"assignment3":       {Participants: names("R", 3)},
		"puonjruok_muma":    {Participants: names("E", 2)},
		"puonjruok_readers": {Participants: names("L", 2)},
		"sisters":           {Participants: names("S", 8)},
	}
	if w := do(r, http.MethodPut, "/api/lists", key, gin.H{"participant_lists": lists}); w.Code != http.StatusOK {
		t.Fatalf("Expected 200 from list upload, got %d: %s", w.Code, w.Body.String())
	}

	for i := 0; i < 2; i++ {
		w := do(r, http.MethodPost, "/api/schedule/weeks", key, gin.H{"start_date": "2026-03-02", "paired_items": 2})
		if w.Code != http.StatusCreated {
			t.Fatalf("Expected 201 adding week, got %d: %s", w.Code, w.Body.String())
		}
	}

	w := do(r, http.MethodPost, "/api/schedule/rotate", key, nil)
	if w.Code != http.StatusOK {
		t.Fatalf("Expected 200 from rotate, got %d: %s", w.Code, w.Body.String())
	}
	var resp models.RotateResponse
	decode(t, w, &resp)
	if len(resp.Violations) != 0 {
		t.Errorf("Expected a clean schedule, got %+v", resp.Violations)
	}
	if resp.Weeks[1].Date != "2026-03-09" {
		t.Errorf("Expected second week dated 2026-03-09, got %q", resp.Weeks[1].Date)
	}

	w = do(r, http.MethodGet, "/api/schedule", key, nil)
	var draft struct {
		Weeks []models.Week `json:"weeks"`
	}
	decode(t, w, &draft)
	if len(draft.Weeks) != 2 || draft.Weeks[0].Chairman == "" {
		t.Fatalf("Expected the rotated draft to be saved, got %+v", draft.Weeks)
	}

	w = do(r, http.MethodGet, "/api/schedule/slips", key, nil)
	var slipBody struct {
		Slips []slips.Slip `json:"slips"`
	}
	decode(t, w, &slipBody)
	if len(slipBody.Slips) != 4 {
		t.Fatalf("Expected 4 slips, got %d", len(slipBody.Slips))
	}
	for _, s := range slipBody.Slips {
		if s.Assistant == slips.NoAssistant {
			t.Errorf("Expected paired slips to carry an assistant, got %+v", s)
		}
	}

	w = do(r, http.MethodGet, "/api/schedule/export.xlsx", key, nil)
	if w.Code != http.StatusOK || w.Header().Get("Content-Type") != xlsxContentType {
		t.Errorf("Expected xlsx download, got %d %s", w.Code, w.Header().Get("Content-Type"))
	}

	w = do(r, http.MethodGet, "/api/schedule/calendar.ics", key, nil)
	if w.Code != http.StatusOK || strings.Count(w.Body.String(), "BEGIN:VEVENT") != 2 {
		t.Errorf("Expected a two-event calendar, got %d: %s", w.Code, w.Body.String())
	}

	w = do(r, http.MethodPost, "/api/history", key, gin.H{"title": "March"})
	if w.Code != http.StatusCreated {
		t.Fatalf("Expected 201 archiving, got %d: %s", w.Code, w.Body.String())
	}
	var rec models.HistoryRecord
	decode(t, w, &rec)
	if rec.ID == "" || rec.WeekCount != 2 || len(rec.AssignmentCounts) == 0 {
		t.Errorf("Unexpected archived record %+v", rec)
	}

	if w := do(r, http.MethodPost, "/api/schedule/rotate", key, nil); w.Code != http.StatusOK {
		t.Errorf("Expected rotation with history to succeed, got %d", w.Code)
	}

	if w := do(r, http.MethodDelete, "/api/schedule", key, nil); w.Code != http.StatusOK {
		t.Errorf("Expected 200 clearing draft, got %d", w.Code)
	}
	if w := do(r, http.MethodGet, "/api/schedule/export.xlsx", key, nil); w.Code != http.StatusNotFound {
		t.Errorf("Expected 404 exporting an empty draft, got %d", w.Code)
	}

	if w := do(r, http.MethodPost, "/api/history/"+rec.ID+"/load", key, nil); w.Code != http.StatusOK {
		t.Errorf("Expected 200 loading history, got %d", w.Code)
	}
	w = do(r, http.MethodGet, "/api/schedule", key, nil)
	decode(t, w, &draft)
	if len(draft.Weeks) != 2 {
		t.Errorf("Expected loaded draft of 2 weeks, got %d", len(draft.Weeks))
	}

	if w := do(r, http.MethodPut, "/api/history/"+rec.ID, key, gin.H{"title": "March (final)"}); w.Code != http.StatusOK {
		t.Errorf("Expected 200 updating history, got %d", w.Code)
	}
	if w := do(r, http.MethodDelete, "/api/history/"+rec.ID, key, nil); w.Code != http.StatusOK {
		t.Errorf("Expected 200 deleting history, got %d", w.Code)
	}
	if w := do(r, http.MethodGet, "/api/history/"+rec.ID, key, nil); w.Code != http.StatusNotFound {
		t.Errorf("Expected 404 after delete, got %d", w.Code)
	}
}

func TestWorkspacesAreIsolated(t *testing.T) {
	r, h := newTestRouter(t)
	north, south := workspaceKey(t, h, "north"), workspaceKey(t, h, "south")

	do(r, http.MethodPut, "/api/lists/chairmen", north, models.RoleList{Participants: []string{"A"}})

	w := do(r, http.MethodGet, "/api/lists", south, nil)
	var body struct {
		ParticipantLists map[string]models.RoleList `json:"participant_lists"`
		Stored           bool                       `json:"stored"`
	}
	decode(t, w, &body)
	if body.Stored || len(body.ParticipantLists["chairmen"].Participants) != 0 {
		t.Errorf("Expected south to see only the empty template, got %+v", body)
	}
	if w := do(r, http.MethodDelete, "/api/lists/chairmen", south, nil); w.Code != http.StatusNotFound {
		t.Errorf("Expected 404 deleting another workspace's list, got %d", w.Code)
	}
}
