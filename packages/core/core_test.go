package core

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"mime/multipart"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
	"time"

	authModels "pelada-api/packages/auth/models"
	authUtils "pelada-api/packages/auth/utils"
	"pelada-api/packages/core/api"
	"pelada-api/packages/core/models"
	"pelada-api/packages/core/storage"
	"pelada-api/packages/core/testdb"

	"github.com/gin-gonic/gin"
	"gorm.io/gorm"
)

type memoryUploader struct {
	objects map[string][]byte
	deleted []string
}

func (m *memoryUploader) Upload(ctx context.Context, key string, contentType string, reader io.Reader) (*storage.UploadResult, error) {
	data, err := io.ReadAll(reader)
	if err != nil {
		return nil, err
	}
	m.objects[key] = data
	return &storage.UploadResult{Key: key, Location: m.GetPublicURL(key)}, nil
}

func (m *memoryUploader) Delete(ctx context.Context, key string) error {
	delete(m.objects, key)
	m.deleted = append(m.deleted, key)
	return nil
}

func (m *memoryUploader) GetPublicURL(key string) string {
	return storage.JoinPublicURL("https://cdn.pelada.test", key)
}

func (m *memoryUploader) KeyFromURL(publicURL string) (string, bool) {
	return storage.KeyFromPublicURL("https://cdn.pelada.test", publicURL)
}

type envelope struct {
	Success bool            `json:"success"`
	Message string          `json:"message"`
	Data    json.RawMessage `json:"data"`
	Errors  json.RawMessage `json:"errors"`
}

type testServer struct {
	t      *testing.T
	router *gin.Engine
	db     *gorm.DB
}

func newTestServer(t *testing.T, uploader storage.FileUploader) *testServer {
	t.Helper()
	t.Setenv("JWT_SECRET", "core-test-secret")
	gin.SetMode(gin.TestMode)
	api.RegisterValidators()

	db := testdb.Open(t)
	r := gin.New()
	NewModule(db, Options{Uploader: uploader}).SetupRoutes(r)
	return &testServer{t: t, router: r, db: db}
}

func (s *testServer) token(user *authModels.User) string {
	s.t.Helper()
	token, err := authUtils.GenerateToken(*user)
	if err != nil {
		s.t.Fatalf("failed to sign token: %v", err)
	}
	return token
}

func (s *testServer) do(method, path, token string, body interface{}) (int, envelope) {
	s.t.Helper()

	var reader io.Reader
	if body != nil {
		raw, _ := json.Marshal(body)
		reader = bytes.NewReader(raw)
	}
	req := httptest.NewRequest(method, path, reader)
	req.Header.Set("Content-Type", "application/json")
	if token != "" {
		req.Header.Set("Authorization", "Bearer "+token)
	}
	return s.serve(req)
}

func (s *testServer) serve(req *http.Request) (int, envelope) {
	s.t.Helper()

	w := httptest.NewRecorder()
	s.router.ServeHTTP(w, req)

	var env envelope
	if err := json.Unmarshal(w.Body.Bytes(), &env); err != nil {
		s.t.Fatalf("failed to decode %s response %q: %v", req.URL.Path, w.Body.String(), err)
	}
	return w.Code, env
}

func decode(t *testing.T, raw json.RawMessage, out interface{}) {
	t.Helper()
	if err := json.Unmarshal(raw, out); err != nil {
		t.Fatalf("failed to decode data %s: %v", string(raw), err)
	}
}

type matchPayload struct {
	ID            uint               `json:"id"`
	Code          string             `json:"code"`
	Status        models.MatchStatus `json:"status"`
	WinningTeamID *uint              `json:"winning_team_id"`
	Capacity      int                `json:"capacity"`
	Participants  []struct {
		Player models.PlayerSummary `json:"player"`
	} `json:"participants"`
}

func TestMatchFlowOverHTTP(t *testing.T) {
	s := newTestServer(t, nil)

	type member struct {
		user   *authModels.User
		player *models.Player
		token  string
	}
	var squad []member
	for i := 0; i < 11; i++ {
		user, player := testdb.CreatePlayer(t, s.db, fmt.Sprintf("jogador%d", i))
		squad = append(squad, member{user: user, player: player, token: s.token(user)})
	}
	admin := squad[0]

	if status, _ := s.do(http.MethodGet, "/matches", "", nil); status != http.StatusUnauthorized {
		t.Fatalf("expected status 401 without token, got %d", status)
	}

	status, env := s.do(http.MethodPost, "/matches", admin.token, gin.H{
		"match_date":    time.Now().AddDate(0, 0, 2).Format("2006-01-02"),
		"match_time":    "21:00",
		"location":      "Society Vila Madalena",
		"players_count": "5vs5",
		"end_mode":      "goals",
	})
	if status != http.StatusUnprocessableEntity || !strings.Contains(string(env.Errors), "goal_limit") {
		t.Fatalf("expected goal_limit validation error, got %d %s", status, env.Errors)
	}

	status, env = s.do(http.MethodPost, "/matches", admin.token, gin.H{
		"match_date":    time.Now().AddDate(0, 0, 2).Format("2006-01-02"),
		"match_time":    "21:00",
		"location":      "Society Vila Madalena",
		"players_count": "5vs5",
		"end_mode":      "both",
		"goal_limit":    5,
		"time_limit":    90,
	})
	if status != http.StatusCreated {
		t.Fatalf("expected status 201, got %d: %s", status, env.Message)
	}
	var match matchPayload
	decode(t, env.Data, &match)
	if len(match.Code) != 6 || match.Status != models.MatchStatusWaiting || match.Capacity != 10 {
		t.Fatalf("unexpected match %+v", match)
	}
	matchPath := fmt.Sprintf("/matches/%d", match.ID)

	for _, m := range squad[:10] {
		status, env = s.do(http.MethodPost, "/matches/join", m.token, gin.H{"code": strings.ToLower(match.Code)})
		if status != http.StatusOK {
			t.Fatalf("player %d failed to join: %d %s", m.player.ID, status, env.Message)
		}
	}

	status, env = s.do(http.MethodPost, "/matches/join", squad[10].token, gin.H{"code": match.Code})
	if status != http.StatusBadRequest || !strings.Contains(string(env.Errors), "match is full") {
		t.Fatalf("expected a full match to be rejected, got %d %s", status, env.Errors)
	}

	if status, _ = s.do(http.MethodPost, matchPath+"/shuffle-teams", squad[1].token, nil); status != http.StatusForbidden {
		t.Fatalf("expected status 403 for a non admin shuffle, got %d", status)
	}

	status, env = s.do(http.MethodPost, matchPath+"/shuffle-teams", admin.token, nil)
	if status != http.StatusOK {
		t.Fatalf("expected status 200, got %d", status)
	}
	var shuffle models.ShuffleResult
	decode(t, env.Data, &shuffle)
	if len(shuffle.TeamA.Players) != 5 || len(shuffle.TeamB.Players) != 5 {
		t.Fatalf("expected 5 players per team, got %d and %d", len(shuffle.TeamA.Players), len(shuffle.TeamB.Players))
	}

	if status, _ = s.do(http.MethodPost, matchPath+"/start", admin.token, nil); status != http.StatusOK {
		t.Fatalf("expected start to succeed, got %d", status)
	}
	if status, _ = s.do(http.MethodPost, matchPath+"/start", admin.token, nil); status != http.StatusBadRequest {
		t.Fatalf("expected a second start to fail with 400, got %d", status)
	}

	scorer := shuffle.TeamA.Players[0].Player.ID
	for i := 0; i < 2; i++ {
		status, env = s.do(http.MethodPost, matchPath+"/events", admin.token, gin.H{"player_id": scorer, "event_type": "goal", "minute": 10 + i})
		if status != http.StatusCreated {
			t.Fatalf("expected status 201, got %d: %s", status, env.Message)
		}
	}
	status, _ = s.do(http.MethodPost, matchPath+"/events", admin.token, gin.H{"player_id": squad[10].player.ID, "event_type": "goal"})
	if status != http.StatusBadRequest {
		t.Fatalf("expected a non participant event to fail with 400, got %d", status)
	}
	status, _ = s.do(http.MethodPost, matchPath+"/events", admin.token, gin.H{"player_id": scorer, "event_type": "penalty"})
	if status != http.StatusUnprocessableEntity {
		t.Fatalf("expected an unknown event type to fail with 422, got %d", status)
	}

	status, env = s.do(http.MethodGet, matchPath+"/events?type=goal", admin.token, nil)
	var events []models.EventView
	decode(t, env.Data, &events)
	if status != http.StatusOK || len(events) != 2 {
		t.Fatalf("expected 2 goal events, got %d (%d)", len(events), status)
	}

	status, env = s.do(http.MethodPost, matchPath+"/finish", admin.token, nil)
	if status != http.StatusOK {
		t.Fatalf("expected finish to succeed, got %d", status)
	}
	decode(t, env.Data, &match)
	if match.Status != models.MatchStatusFinished || match.WinningTeamID == nil || *match.WinningTeamID != shuffle.TeamA.ID {
		t.Fatalf("expected team_a to win, got %+v", match)
	}

	status, env = s.do(http.MethodGet, fmt.Sprintf("/players/%d", scorer), "", nil)
	var player models.Player
	decode(t, env.Data, &player)
	if status != http.StatusOK || player.Goals != 2 || player.Wins != 1 || player.Matches != 1 {
		t.Fatalf("unexpected scorer career %+v", player)
	}

	status, env = s.do(http.MethodGet, fmt.Sprintf("/players/%d/rating-history", scorer), "", nil)
	var history []models.RatingHistoryEntry
	decode(t, env.Data, &history)
	if status != http.StatusOK || len(history) != 1 || history[0].MatchRating != 8 {
		t.Fatalf("unexpected rating history %+v", history)
	}

	if status, _ = s.do(http.MethodGet, "/matches/999", admin.token, nil); status != http.StatusNotFound {
		t.Fatalf("expected status 404, got %d", status)
	}
	if status, _ = s.do(http.MethodGet, "/matches/code/ZZZZZZ", admin.token, nil); status != http.StatusNotFound {
		t.Fatalf("expected status 404 for an unknown code, got %d", status)
	}

	status, env = s.do(http.MethodGet, "/stats", "", nil)
	var stats models.Stats
	decode(t, env.Data, &stats)
	if status != http.StatusOK || stats.TotalGoals != 2 || stats.MatchesByStatus[models.MatchStatusFinished] != 1 {
		t.Fatalf("unexpected stats %+v", stats)
	}
}

func TestCreateMatchWithoutPlayerProfile(t *testing.T) {
	s := newTestServer(t, nil)

	user := authModels.User{Email: "ghost@pelada.test", Name: "ghost", Password: "x"}
	s.db.Create(&user)

	status, env := s.do(http.MethodPost, "/matches", s.token(&user), gin.H{})
	if status != http.StatusBadRequest || env.Success {
		t.Fatalf("expected status 400 without a player profile, got %d", status)
	}
}

func TestPlayerEndpoints(t *testing.T) {
	s := newTestServer(t, nil)
	owner, player := testdb.CreatePlayer(t, s.db, "dono")
	other, _ := testdb.CreatePlayer(t, s.db, "outro")
	path := fmt.Sprintf("/players/%d", player.ID)

	if status, _ := s.do(http.MethodPut, path, s.token(other), gin.H{"name": "Hacker"}); status != http.StatusForbidden {
		t.Fatalf("expected status 403, got %d", status)
	}

	status, env := s.do(http.MethodPut, path, s.token(owner), gin.H{"nickname": "Dono da Bola"})
	var updated models.Player
	decode(t, env.Data, &updated)
	if status != http.StatusOK || updated.Nickname == nil || *updated.Nickname != "Dono da Bola" {
		t.Fatalf("unexpected update result %d %+v", status, updated)
	}

	status, env = s.do(http.MethodGet, "/players/me", s.token(owner), nil)
	var me models.Player
	decode(t, env.Data, &me)
	if status != http.StatusOK || me.ID != player.ID {
		t.Fatalf("expected my own player, got %d %+v", status, me)
	}

	if status, _ = s.do(http.MethodGet, "/players/abc", "", nil); status != http.StatusBadRequest {
		t.Fatalf("expected status 400 for a bad id, got %d", status)
	}
	if status, _ = s.do(http.MethodGet, "/players?page=0", "", nil); status != http.StatusBadRequest {
		t.Fatalf("expected status 400 for page 0, got %d", status)
	}
	if status, _ = s.do(http.MethodPost, "/players/me/avatar", s.token(owner), nil); status != http.StatusServiceUnavailable {
		t.Fatalf("expected status 503 without storage, got %d", status)
	}
}

func avatarRequest(t *testing.T, token string, content []byte) *http.Request {
	t.Helper()

	var body bytes.Buffer
	writer := multipart.NewWriter(&body)
	part, err := writer.CreateFormFile("image", "avatar.png")
	if err != nil {
		t.Fatalf("failed to build form: %v", err)
	}
	part.Write(content)
	writer.Close()

	req := httptest.NewRequest(http.MethodPost, "/players/me/avatar", &body)
	req.Header.Set("Content-Type", writer.FormDataContentType())
	req.Header.Set("Authorization", "Bearer "+token)
	return req
}

func TestUploadAvatar(t *testing.T) {
	uploader := &memoryUploader{objects: map[string][]byte{}}
	s := newTestServer(t, uploader)
	user, player := testdb.CreatePlayer(t, s.db, "vaidoso")
	token := s.token(user)

	png := append([]byte("\x89PNG\r\n\x1a\n"), make([]byte, 64)...)

	status, env := s.serve(avatarRequest(t, token, png))
	if status != http.StatusOK {
		t.Fatalf("expected status 200, got %d: %s", status, env.Message)
	}
	var first models.Player
	decode(t, env.Data, &first)
	if first.Image == nil || !strings.HasPrefix(*first.Image, fmt.Sprintf("https://cdn.pelada.test/avatars/%d/", player.ID)) {
		t.Fatalf("unexpected image url %v", first.Image)
	}

	status, env = s.serve(avatarRequest(t, token, png))
	if status != http.StatusOK {
		t.Fatalf("expected second upload to succeed, got %d", status)
	}
	if len(uploader.objects) != 1 || len(uploader.deleted) != 1 {
		t.Fatalf("expected the previous avatar to be deleted, got %d objects and %d deletions", len(uploader.objects), len(uploader.deleted))
	}

	status, env = s.serve(avatarRequest(t, token, []byte("just some text")))
	if status != http.StatusUnprocessableEntity || !strings.Contains(string(env.Errors), "image") {
		t.Fatalf("expected a non image to fail with 422, got %d", status)
	}
}
