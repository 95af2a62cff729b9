package auth

import (
	"bytes"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"testing"

	"pelada-api/packages/auth/models"
	"pelada-api/packages/core/api"
	coreModels "pelada-api/packages/core/models"
	"pelada-api/packages/core/testdb"

	"github.com/gin-gonic/gin"
	"gorm.io/gorm"
)

type recordingEmail struct {
	verifications []string
	resets        []string
}

func (r *recordingEmail) SendVerificationEmail(to, name, verifyURL string) error {
	r.verifications = append(r.verifications, verifyURL)
	return nil
}

func (r *recordingEmail) SendPasswordResetEmail(to, resetURL string) error {
	r.resets = append(r.resets, resetURL)
	return nil
}

type envelope struct {
	Success bool                `json:"success"`
	Message string              `json:"message"`
	Data    json.RawMessage     `json:"data"`
	Errors  map[string][]string `json:"errors"`
}

func setupRouter(t *testing.T) (*gin.Engine, *gorm.DB, *recordingEmail) {
	t.Helper()
	t.Setenv("JWT_SECRET", "test-secret")
	gin.SetMode(gin.TestMode)
	api.RegisterValidators()

	db := testdb.Open(t)
	mailer := &recordingEmail{}
	r := gin.New()
	NewModuleWithEmail(db, "http://pelada.test", mailer).SetupRoutes(r)
	return r, db, mailer
}

func doJSON(t *testing.T, r *gin.Engine, method, path string, body interface{}, token string) (*httptest.ResponseRecorder, envelope) {
	t.Helper()

	var reader *bytes.Reader
	if body != nil {
		raw, err := json.Marshal(body)
		if err != nil {
			t.Fatalf("failed to encode body: %v", err)
		}
		reader = bytes.NewReader(raw)
	} else {
		reader = bytes.NewReader(nil)
	}

	req := httptest.NewRequest(method, path, reader)
	req.Header.Set("Content-Type", "application/json")
	if token != "" {
		req.Header.Set("Authorization", "Bearer "+token)
	}
	w := httptest.NewRecorder()
	r.ServeHTTP(w, req)

	var env envelope
	if w.Body.Len() > 0 {
		if err := json.Unmarshal(w.Body.Bytes(), &env); err != nil {
			t.Fatalf("failed to decode response %q: %v", w.Body.String(), err)
		}
	}
	return w, env
}

func register(t *testing.T, r *gin.Engine, email, password string) models.AuthResponse {
	t.Helper()

	w, env := doJSON(t, r, http.MethodPost, "/auth/register", gin.H{
		"email":    email,
		"name":     "Zico",
		"password": password,
	}, "")
	if w.Code != http.StatusCreated {
		t.Fatalf("expected status 201, got %d: %s", w.Code, w.Body.String())
	}

	var resp models.AuthResponse
	if err := json.Unmarshal(env.Data, &resp); err != nil {
		t.Fatalf("failed to decode auth response: %v", err)
	}
	return resp
}

func TestRegisterCreatesUserAndPlayer(t *testing.T) {
	r, db, mailer := setupRouter(t)

	resp := register(t, r, "zico@pelada.test", "secret123")
	if resp.AccessToken == "" || resp.RefreshToken == "" || resp.TokenType != "Bearer" {
		t.Fatalf("expected a token pair, got %+v", resp.TokenResponse)
	}

	var player coreModels.Player
	if err := db.Where("user_id = ?", resp.User.ID).First(&player).Error; err != nil {
		t.Fatalf("expected a player profile: %v", err)
	}
	if player.Name != "Zico" || player.Matches != 0 || player.AverageRating != 0 {
		t.Fatalf("unexpected player %+v", player)
	}
	if len(mailer.verifications) != 1 {
		t.Fatalf("expected a verification email, got %d", len(mailer.verifications))
	}

	w, env := doJSON(t, r, http.MethodPost, "/auth/register", gin.H{
		"email":    "zico@pelada.test",
		"name":     "Other",
		"password": "secret123",
	}, "")
	if w.Code != http.StatusUnprocessableEntity || len(env.Errors["email"]) == 0 {
		t.Fatalf("expected duplicate email to fail with 422, got %d %v", w.Code, env.Errors)
	}
}

func TestRegisterValidation(t *testing.T) {
	r, _, _ := setupRouter(t)

	w, env := doJSON(t, r, http.MethodPost, "/auth/register", gin.H{
		"email":    "not-an-email",
		"password": "short",
	}, "")
	if w.Code != http.StatusUnprocessableEntity {
		t.Fatalf("expected status 422, got %d", w.Code)
	}
	for _, field := range []string{"email", "name", "password"} {
		if len(env.Errors[field]) == 0 {
			t.Fatalf("expected an error for %s, got %v", field, env.Errors)
		}
	}
}

func TestRegisterRollsBackWithoutPlayer(t *testing.T) {
	r, db, _ := setupRouter(t)
	if err := db.Migrator().DropTable(&coreModels.Player{}); err != nil {
		t.Fatalf("failed to drop players: %v", err)
	}

	w, _ := doJSON(t, r, http.MethodPost, "/auth/register", gin.H{
		"email":    "ghost@pelada.test",
		"name":     "Ghost",
		"password": "secret123",
	}, "")
	if w.Code != http.StatusInternalServerError {
		t.Fatalf("expected status 500, got %d", w.Code)
	}

	var users int64
	db.Model(&models.User{}).Count(&users)
	if users != 0 {
		t.Fatalf("expected the user insert to be rolled back, got %d users", users)
	}
}

func TestLoginAndProfile(t *testing.T) {
	r, _, _ := setupRouter(t)
	register(t, r, "socrates@pelada.test", "doutor123")

	w, _ := doJSON(t, r, http.MethodPost, "/auth/login", gin.H{"email": "socrates@pelada.test", "password": "wrong-pass"}, "")
	if w.Code != http.StatusUnauthorized {
		t.Fatalf("expected status 401, got %d", w.Code)
	}

	w, env := doJSON(t, r, http.MethodPost, "/auth/login", gin.H{"email": "Socrates@pelada.test", "password": "doutor123"}, "")
	if w.Code != http.StatusOK {
		t.Fatalf("expected status 200, got %d: %s", w.Code, w.Body.String())
	}
	var login models.AuthResponse
	json.Unmarshal(env.Data, &login)

	w, _ = doJSON(t, r, http.MethodGet, "/users/me", nil, "")
	if w.Code != http.StatusUnauthorized {
		t.Fatalf("expected status 401 without token, got %d", w.Code)
	}

	w, env = doJSON(t, r, http.MethodGet, "/users/me", nil, login.AccessToken)
	if w.Code != http.StatusOK {
		t.Fatalf("expected status 200, got %d", w.Code)
	}
	var profile struct {
		User   models.User        `json:"user"`
		Player *coreModels.Player `json:"player"`
	}
	json.Unmarshal(env.Data, &profile)
	if profile.User.Email != "socrates@pelada.test" || profile.Player == nil {
		t.Fatalf("unexpected profile %+v", profile)
	}
}

func TestRefreshRotatesToken(t *testing.T) {
	r, _, _ := setupRouter(t)
	resp := register(t, r, "falcao@pelada.test", "rei-de-roma")

	w, env := doJSON(t, r, http.MethodPost, "/auth/refresh", gin.H{"refresh_token": resp.RefreshToken}, "")
	if w.Code != http.StatusOK {
		t.Fatalf("expected status 200, got %d", w.Code)
	}
	var pair models.TokenResponse
	json.Unmarshal(env.Data, &pair)
	if pair.RefreshToken == "" || pair.RefreshToken == resp.RefreshToken {
		t.Fatalf("expected a rotated refresh token")
	}

	w, _ = doJSON(t, r, http.MethodPost, "/auth/refresh", gin.H{"refresh_token": resp.RefreshToken}, "")
	if w.Code != http.StatusUnauthorized {
		t.Fatalf("expected the old refresh token to be rejected, got %d", w.Code)
	}

	w, _ = doJSON(t, r, http.MethodPost, "/auth/logout", gin.H{"refresh_token": pair.RefreshToken}, "")
	if w.Code != http.StatusOK {
		t.Fatalf("expected logout to succeed, got %d", w.Code)
	}
	w, _ = doJSON(t, r, http.MethodPost, "/auth/refresh", gin.H{"refresh_token": pair.RefreshToken}, "")
	if w.Code != http.StatusUnauthorized {
		t.Fatalf("expected a revoked token to be rejected, got %d", w.Code)
	}
}

func TestVerifyEmail(t *testing.T) {
	r, db, _ := setupRouter(t)
	resp := register(t, r, "careca@pelada.test", "secret123")

	var user models.User
	db.First(&user, resp.User.ID)
	if user.VerificationToken == nil || user.IsVerified() {
		t.Fatalf("expected a pending verification")
	}

	w, _ := doJSON(t, r, http.MethodGet, "/auth/verify-email?token=nope", nil, "")
	if w.Code != http.StatusBadRequest {
		t.Fatalf("expected status 400 for an unknown token, got %d", w.Code)
	}

	w, _ = doJSON(t, r, http.MethodGet, "/auth/verify-email?token="+*user.VerificationToken, nil, "")
	if w.Code != http.StatusOK {
		t.Fatalf("expected status 200, got %d", w.Code)
	}
	db.First(&user, resp.User.ID)
	if !user.IsVerified() || user.VerificationToken != nil {
		t.Fatalf("expected the email to be verified")
	}
}

func TestPasswordResetFlow(t *testing.T) {
	r, db, mailer := setupRouter(t)
	register(t, r, "romario@pelada.test", "baixinho11")

	w, _ := doJSON(t, r, http.MethodPost, "/auth/reset-password/send-link", gin.H{
		"email":        "unknown@pelada.test",
		"callback_url": "http://app.pelada.test/reset/[token]",
	}, "")
	if w.Code != http.StatusOK || len(mailer.resets) != 0 {
		t.Fatalf("expected a silent success for unknown emails, got %d", w.Code)
	}

	doJSON(t, r, http.MethodPost, "/auth/reset-password/send-link", gin.H{
		"email":        "romario@pelada.test",
		"callback_url": "http://app.pelada.test/reset/[token]",
	}, "")
	if len(mailer.resets) != 1 {
		t.Fatalf("expected a reset email, got %d", len(mailer.resets))
	}

	var user models.User
	db.Where("email = ?", "romario@pelada.test").First(&user)
	if user.ResetToken == nil {
		t.Fatalf("expected a reset token to be stored")
	}
	if mailer.resets[0] != "http://app.pelada.test/reset/"+*user.ResetToken {
		t.Fatalf("unexpected reset url %s", mailer.resets[0])
	}

	w, _ = doJSON(t, r, http.MethodPost, "/auth/reset-password/confirm", gin.H{"token": *user.ResetToken, "new_password": "tetra1994"}, "")
	if w.Code != http.StatusOK {
		t.Fatalf("expected status 200, got %d", w.Code)
	}

	w, _ = doJSON(t, r, http.MethodPost, "/auth/login", gin.H{"email": "romario@pelada.test", "password": "tetra1994"}, "")
	if w.Code != http.StatusOK {
		t.Fatalf("expected login with the new password, got %d", w.Code)
	}
	w, _ = doJSON(t, r, http.MethodPost, "/auth/reset-password/confirm", gin.H{"token": *user.ResetToken, "new_password": "another123"}, "")
	if w.Code != http.StatusBadRequest {
		t.Fatalf("expected a used token to be rejected, got %d", w.Code)
	}
}

func TestChangePassword(t *testing.T) {
	r, _, _ := setupRouter(t)
	resp := register(t, r, "rivelino@pelada.test", "patada123")

	w, env := doJSON(t, r, http.MethodPost, "/auth/change-password", gin.H{"current_password": "wrong-one", "new_password": "elastico1"}, resp.AccessToken)
	if w.Code != http.StatusUnprocessableEntity || len(env.Errors["current_password"]) == 0 {
		t.Fatalf("expected status 422, got %d", w.Code)
	}

	w, _ = doJSON(t, r, http.MethodPost, "/auth/change-password", gin.H{"current_password": "patada123", "new_password": "elastico1"}, resp.AccessToken)
	if w.Code != http.StatusOK {
		t.Fatalf("expected status 200, got %d", w.Code)
	}

	w, _ = doJSON(t, r, http.MethodPost, "/auth/login", gin.H{"email": "rivelino@pelada.test", "password": "elastico1"}, "")
	if w.Code != http.StatusOK {
		t.Fatalf("expected login with the changed password, got %d", w.Code)
	}
}
