package handlers

import (
	"errors"
	"log/slog"
	"net/http"
	"net/url"
	"strings"
	"time"

	"pelada-api/packages/auth/middleware"
	"pelada-api/packages/auth/models"
	"pelada-api/packages/auth/services"
	"pelada-api/packages/auth/utils"
	"pelada-api/packages/core/api"
	coreModels "pelada-api/packages/core/models"
	coreServices "pelada-api/packages/core/services"

	"github.com/gin-gonic/gin"
	"gorm.io/gorm"
)

const passwordResetTTL = 2 * time.Hour

type AuthHandler struct {
	DB            *gorm.DB
	EmailService  services.EmailService
	PlayerService *coreServices.PlayerService
	AppURL        string
}

func NewAuthHandler(db *gorm.DB, playerService *coreServices.PlayerService, emailService services.EmailService, appURL string) *AuthHandler {
	return &AuthHandler{
		DB:            db,
		EmailService:  emailService,
		PlayerService: playerService,
		AppURL:        strings.TrimRight(appURL, "/"),
	}
}

// ProfileResponse is the authenticated user with its player profile.
type ProfileResponse struct {
	User   models.User        `json:"user"`
	Player *coreModels.Player `json:"player"`
}

// @Summary User Registration
// @Description Register a new user with its player profile and get JWT tokens
// @Tags auth
// @Accept json
// @Produce json
// @Param user body models.RegisterRequest true "User registration data"
// @Success 201 {object} coreModels.APIResponse{data=models.AuthResponse}
// @Failure 422 {object} coreModels.APIResponse
// @Failure 500 {object} coreModels.APIResponse
// @Router /auth/register [post]
func (h *AuthHandler) Register(c *gin.Context) {
	var req models.RegisterRequest
	if !api.BindJSON(c, &req) {
		return
	}
	email := strings.ToLower(strings.TrimSpace(req.Email))

	var existing int64
	if err := h.DB.WithContext(c.Request.Context()).Unscoped().Model(&models.User{}).Where("email = ?", email).Count(&existing).Error; err != nil {
		h.internalError(c, "failed to check email", err)
		return
	}
	if existing > 0 {
		api.FieldErrors(c, map[string][]string{"email": {"The email has already been taken."}})
		return
	}

	hashedPassword, err := utils.HashPassword(req.Password)
	if err != nil {
		h.internalError(c, "failed to hash password", err)
		return
	}
	verificationToken, err := utils.GenerateSecureToken()
	if err != nil {
		h.internalError(c, "failed to generate verification token", err)
		return
	}

	now := time.Now()
	user := models.User{
		Email:             email,
		Name:              strings.TrimSpace(req.Name),
		Password:          hashedPassword,
		VerificationToken: &verificationToken,
		LastLogin:         &now,
	}

	var player *coreModels.Player
	err = h.DB.WithContext(c.Request.Context()).Transaction(func(tx *gorm.DB) error {
		if err := tx.Create(&user).Error; err != nil {
			return err
		}
		created, err := h.PlayerService.CreatePlayerInTransaction(tx, user.ID, user.Name)
		if err != nil {
			return err
		}
		player = created
		return nil
	})
	if err != nil {
		if errors.Is(err, gorm.ErrDuplicatedKey) {
			api.FieldErrors(c, map[string][]string{"email": {"The email has already been taken."}})
			return
		}
		h.internalError(c, "failed to register user", err)
		return
	}

	slog.Info("user registered", "user_id", user.ID, "player_id", player.ID)
	h.sendVerification(user, verificationToken)

	tokenPair, err := utils.GenerateTokenPair(h.DB.WithContext(c.Request.Context()), user)
	if err != nil {
		h.internalError(c, "failed to generate tokens", err)
		return
	}

	api.Success(c, http.StatusCreated, "Registration successful", models.AuthResponse{
		TokenResponse: *tokenPair,
		User:          user,
	})
}

// @Summary User Login
// @Description Login with email and password to get JWT tokens
// @Tags auth
// @Accept json
// @Produce json
// @Param credentials body models.LoginRequest true "User login credentials"
// @Success 200 {object} coreModels.APIResponse{data=models.AuthResponse}
// @Failure 401 {object} coreModels.APIResponse
// @Failure 422 {object} coreModels.APIResponse
// @Router /auth/login [post]
func (h *AuthHandler) Login(c *gin.Context) {
	var req models.LoginRequest
	if !api.BindJSON(c, &req) {
		return
	}
	db := h.DB.WithContext(c.Request.Context())

	var user models.User
	if err := db.Where("email = ?", strings.ToLower(strings.TrimSpace(req.Email))).First(&user).Error; err != nil {
		api.Fail(c, http.StatusUnauthorized, "Invalid credentials", nil)
		return
	}
	if !utils.CheckPassword(req.Password, user.Password) {
		api.Fail(c, http.StatusUnauthorized, "Invalid credentials", nil)
		return
	}

	now := time.Now()
	user.LastLogin = &now
	if err := db.Model(&user).Update("last_login", now).Error; err != nil {
		h.internalError(c, "failed to update last login", err)
		return
	}

	tokenPair, err := utils.GenerateTokenPair(db, user)
	if err != nil {
		h.internalError(c, "failed to generate tokens", err)
		return
	}

	api.Success(c, http.StatusOK, "Login successful", models.AuthResponse{
		TokenResponse: *tokenPair,
		User:          user,
	})
}

// @Summary Get User Profile
// @Description Get the current user and its player profile
// @Tags user
// @Security BearerAuth
// @Produce json
// @Success 200 {object} coreModels.APIResponse{data=ProfileResponse}
// @Failure 401 {object} coreModels.APIResponse
// @Failure 404 {object} coreModels.APIResponse
// @Router /users/me [get]
func (h *AuthHandler) Profile(c *gin.Context) {
	userID, ok := middleware.GetUserID(c)
	if !ok {
		api.Fail(c, http.StatusUnauthorized, "Unauthorized", nil)
		return
	}

	var user models.User
	if err := h.DB.WithContext(c.Request.Context()).First(&user, userID).Error; err != nil {
		api.Fail(c, http.StatusNotFound, "User not found", nil)
		return
	}

	response := ProfileResponse{User: user}
	player, err := h.PlayerService.GetPlayerByUserID(c.Request.Context(), userID)
	switch {
	case err == nil:
		response.Player = player
	case !errors.Is(err, coreServices.ErrNoPlayerProfile):
		h.internalError(c, "failed to load player profile", err)
		return
	}

	api.Success(c, http.StatusOK, "Profile retrieved", response)
}

// @Summary Refresh Access Token
// @Description Get a new token pair using a refresh token. The refresh token is rotated.
// @Tags auth
// @Accept json
// @Produce json
// @Param refresh body models.RefreshTokenRequest true "Refresh token"
// @Success 200 {object} coreModels.APIResponse{data=models.TokenResponse}
// @Failure 401 {object} coreModels.APIResponse
// @Router /auth/refresh [post]
func (h *AuthHandler) RefreshToken(c *gin.Context) {
	var req models.RefreshTokenRequest
	if !api.BindJSON(c, &req) {
		return
	}
	db := h.DB.WithContext(c.Request.Context())

	tokenPair, user, err := utils.RefreshAccessToken(db, req.RefreshToken)
	if err != nil {
		if errors.Is(err, utils.ErrInvalidRefreshToken) {
			api.Fail(c, http.StatusUnauthorized, "Invalid refresh token", nil)
			return
		}
		h.internalError(c, "failed to refresh token", err)
		return
	}

	if err := db.Model(user).Update("last_login", time.Now()).Error; err != nil {
		slog.Warn("failed to update last login", "user_id", user.ID, "error", err)
	}

	api.Success(c, http.StatusOK, "Token refreshed", tokenPair)
}

// @Summary Logout
// @Description Revoke a refresh token
// @Tags auth
// @Accept json
// @Produce json
// @Param refresh body models.RefreshTokenRequest true "Refresh token to revoke"
// @Success 200 {object} coreModels.APIResponse
// @Router /auth/logout [post]
func (h *AuthHandler) Logout(c *gin.Context) {
	var req models.RefreshTokenRequest
	if !api.BindJSON(c, &req) {
		return
	}

	if err := utils.RevokeRefreshToken(h.DB.WithContext(c.Request.Context()), req.RefreshToken); err != nil {
		h.internalError(c, "failed to revoke token", err)
		return
	}

	api.Success(c, http.StatusOK, "Logged out successfully", nil)
}

// @Summary Logout from All Devices
// @Description Revoke every refresh token of the current user
// @Tags auth
// @Security BearerAuth
// @Produce json
// @Success 200 {object} coreModels.APIResponse
// @Failure 401 {object} coreModels.APIResponse
// @Router /auth/logout-all [post]
func (h *AuthHandler) LogoutAll(c *gin.Context) {
	userID, ok := middleware.GetUserID(c)
	if !ok {
		api.Fail(c, http.StatusUnauthorized, "Unauthorized", nil)
		return
	}

	if err := utils.RevokeAllUserTokens(h.DB.WithContext(c.Request.Context()), userID); err != nil {
		h.internalError(c, "failed to revoke tokens", err)
		return
	}

	api.Success(c, http.StatusOK, "Logged out from all devices", nil)
}

// @Summary Verify Email
// @Description Confirm an email address with the token sent at registration
// @Tags auth
// @Produce json
// @Param token query string true "Verification token"
// @Success 200 {object} coreModels.APIResponse
// @Failure 400 {object} coreModels.APIResponse
// @Router /auth/verify-email [get]
func (h *AuthHandler) VerifyEmail(c *gin.Context) {
	token := c.Query("token")
	if token == "" {
		api.Fail(c, http.StatusBadRequest, "Verification token is required", nil)
		return
	}
	db := h.DB.WithContext(c.Request.Context())

	var user models.User
	if err := db.Where("verification_token = ?", token).First(&user).Error; err != nil {
		api.Fail(c, http.StatusBadRequest, "Invalid verification token", nil)
		return
	}

	if err := db.Model(&user).Updates(map[string]interface{}{
		"email_verified_at":  time.Now(),
		"verification_token": nil,
	}).Error; err != nil {
		h.internalError(c, "failed to verify email", err)
		return
	}

	slog.Info("email verified", "user_id", user.ID)
	api.Success(c, http.StatusOK, "Email verified", nil)
}

// @Summary Resend Verification Email
// @Description Send a new verification link. Always succeeds to avoid leaking which emails exist.
// @Tags auth
// @Accept json
// @Produce json
// @Param request body models.EmailRequest true "Account email"
// @Success 200 {object} coreModels.APIResponse
// @Router /auth/email/verification-notification [post]
func (h *AuthHandler) ResendVerification(c *gin.Context) {
	var req models.EmailRequest
	if !api.BindJSON(c, &req) {
		return
	}
	db := h.DB.WithContext(c.Request.Context())
	const message = "If the account exists and is not verified, a new link was sent"

	var user models.User
	if err := db.Where("email = ?", strings.ToLower(strings.TrimSpace(req.Email))).First(&user).Error; err != nil || user.IsVerified() {
		api.Success(c, http.StatusOK, message, nil)
		return
	}

	token, err := utils.GenerateSecureToken()
	if err != nil {
		h.internalError(c, "failed to generate verification token", err)
		return
	}
	if err := db.Model(&user).Update("verification_token", token).Error; err != nil {
		h.internalError(c, "failed to store verification token", err)
		return
	}

	h.sendVerification(user, token)
	api.Success(c, http.StatusOK, message, nil)
}

// @Summary Send Password Reset Link
// @Description Email a password reset link. callback_url may contain [token].
// @Tags auth
// @Accept json
// @Produce json
// @Param request body models.PasswordResetRequest true "Password reset request"
// @Success 200 {object} coreModels.APIResponse
// @Router /auth/reset-password/send-link [post]
func (h *AuthHandler) SendPasswordResetLink(c *gin.Context) {
	var req models.PasswordResetRequest
	if !api.BindJSON(c, &req) {
		return
	}
	db := h.DB.WithContext(c.Request.Context())
	const message = "If the account exists, a reset link was sent"

	var user models.User
	if err := db.Where("email = ?", strings.ToLower(strings.TrimSpace(req.Email))).First(&user).Error; err != nil {
		api.Success(c, http.StatusOK, message, nil)
		return
	}

	// A pending link is not replaced until it expires.
	if user.ResetToken != nil && !user.IsPasswordRequestExpired(passwordResetTTL) {
		api.Success(c, http.StatusOK, message, nil)
		return
	}

	token, err := utils.GenerateSecureToken()
	if err != nil {
		h.internalError(c, "failed to generate reset token", err)
		return
	}
	if err := db.Model(&user).Updates(map[string]interface{}{
		"reset_token":           token,
		"password_requested_at": time.Now(),
	}).Error; err != nil {
		h.internalError(c, "failed to store reset token", err)
		return
	}

	if err := h.EmailService.SendPasswordResetEmail(user.Email, h.resetURL(req.CallbackURL, token)); err != nil {
		h.internalError(c, "failed to send password reset email", err)
		return
	}

	api.Success(c, http.StatusOK, message, nil)
}

// @Summary Confirm Password Reset
// @Description Set a new password with a reset token
// @Tags auth
// @Accept json
// @Produce json
// @Param request body models.PasswordResetConfirmRequest true "Password reset confirmation"
// @Success 200 {object} coreModels.APIResponse
// @Failure 400 {object} coreModels.APIResponse
// @Router /auth/reset-password/confirm [post]
func (h *AuthHandler) ConfirmPasswordReset(c *gin.Context) {
	var req models.PasswordResetConfirmRequest
	if !api.BindJSON(c, &req) {
		return
	}
	db := h.DB.WithContext(c.Request.Context())

	var user models.User
	if err := db.Where("reset_token = ?", req.Token).First(&user).Error; err != nil {
		api.Fail(c, http.StatusBadRequest, "Invalid or expired token", nil)
		return
	}
	if user.IsPasswordRequestExpired(passwordResetTTL) {
		api.Fail(c, http.StatusBadRequest, "Invalid or expired token", nil)
		return
	}

	hashedPassword, err := utils.HashPassword(req.NewPassword)
	if err != nil {
		h.internalError(c, "failed to hash password", err)
		return
	}

	if err := db.Model(&user).Updates(map[string]interface{}{
		"password":              hashedPassword,
		"reset_token":           nil,
		"password_requested_at": nil,
	}).Error; err != nil {
		h.internalError(c, "failed to update password", err)
		return
	}

	// Existing sessions must log in again.
	if err := utils.RevokeAllUserTokens(db, user.ID); err != nil {
		slog.Warn("failed to revoke tokens after password reset", "user_id", user.ID, "error", err)
	}

	api.Success(c, http.StatusOK, "Password has been reset", nil)
}

// @Summary Change Password
// @Description Change the password of the authenticated user
// @Tags auth
// @Security BearerAuth
// @Accept json
// @Produce json
// @Param request body models.ChangePasswordRequest true "Password change request"
// @Success 200 {object} coreModels.APIResponse
// @Failure 401 {object} coreModels.APIResponse
// @Failure 422 {object} coreModels.APIResponse
// @Router /auth/change-password [post]
func (h *AuthHandler) ChangePassword(c *gin.Context) {
	var req models.ChangePasswordRequest
	if !api.BindJSON(c, &req) {
		return
	}

	userID, ok := middleware.GetUserID(c)
	if !ok {
		api.Fail(c, http.StatusUnauthorized, "Unauthorized", nil)
		return
	}
	db := h.DB.WithContext(c.Request.Context())

	var user models.User
	if err := db.First(&user, userID).Error; err != nil {
		api.Fail(c, http.StatusUnauthorized, "User not found", nil)
		return
	}

	if !utils.CheckPassword(req.CurrentPassword, user.Password) {
		api.FieldErrors(c, map[string][]string{"current_password": {"The current password is incorrect."}})
		return
	}

	hashedPassword, err := utils.HashPassword(req.NewPassword)
	if err != nil {
		h.internalError(c, "failed to hash password", err)
		return
	}
	if err := db.Model(&user).Update("password", hashedPassword).Error; err != nil {
		h.internalError(c, "failed to update password", err)
		return
	}

	api.Success(c, http.StatusOK, "Password changed", nil)
}

func (h *AuthHandler) sendVerification(user models.User, token string) {
	verifyURL := h.AppURL + "/auth/verify-email?token=" + url.QueryEscape(token)
	if err := h.EmailService.SendVerificationEmail(user.Email, user.Name, verifyURL); err != nil {
		slog.Warn("failed to send verification email", "user_id", user.ID, "error", err)
	}
}

// resetURL puts the token into the client callback, either in place of a
// [token] marker or as a query parameter.
func (h *AuthHandler) resetURL(callback, token string) string {
	if strings.Contains(callback, "[token]") {
		return strings.ReplaceAll(callback, "[token]", url.QueryEscape(token))
	}
	separator := "?"
	if strings.Contains(callback, "?") {
		separator = "&"
	}
	return callback + separator + "token=" + url.QueryEscape(token)
}

func (h *AuthHandler) internalError(c *gin.Context, message string, err error) {
	slog.Error(message, "error", err, "path", c.FullPath())
	api.Fail(c, http.StatusInternalServerError, "Internal server error", nil)
}
