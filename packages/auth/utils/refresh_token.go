package utils

import (
	"crypto/rand"
	"encoding/hex"
	"errors"
	"time"

	"pelada-api/packages/auth/models"

	"gorm.io/gorm"
)

const (
	AccessTokenExpiry  = 15 * time.Minute
	RefreshTokenExpiry = 7 * 24 * time.Hour
)

var ErrInvalidRefreshToken = errors.New("invalid refresh token")

// GenerateTokenPair issues an access token and a fresh refresh token. Any
// refresh token the user already had is revoked.
func GenerateTokenPair(db *gorm.DB, user models.User) (*models.TokenResponse, error) {
	accessToken, err := GenerateToken(user)
	if err != nil {
		return nil, err
	}

	refreshTokenString, err := GenerateSecureToken()
	if err != nil {
		return nil, err
	}

	err = db.Transaction(func(tx *gorm.DB) error {
		if err := tx.Where("user_id = ?", user.ID).Delete(&models.RefreshToken{}).Error; err != nil {
			return err
		}
		return tx.Create(&models.RefreshToken{
			UserID:    user.ID,
			Token:     refreshTokenString,
			ExpiresAt: time.Now().Add(RefreshTokenExpiry),
		}).Error
	})
	if err != nil {
		return nil, err
	}

	return tokenResponse(accessToken, refreshTokenString), nil
}

// RefreshAccessToken exchanges a valid refresh token for a new pair. The
// refresh token is rotated.
func RefreshAccessToken(db *gorm.DB, refreshTokenString string) (*models.TokenResponse, *models.User, error) {
	var refreshToken models.RefreshToken
	if err := db.Preload("User").Where("token = ?", refreshTokenString).First(&refreshToken).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, nil, ErrInvalidRefreshToken
		}
		return nil, nil, err
	}

	if refreshToken.IsExpired() || refreshToken.User.ID == 0 {
		db.Delete(&refreshToken)
		return nil, nil, ErrInvalidRefreshToken
	}

	accessToken, err := GenerateToken(refreshToken.User)
	if err != nil {
		return nil, nil, err
	}

	rotated, err := GenerateSecureToken()
	if err != nil {
		return nil, nil, err
	}

	if err := db.Model(&refreshToken).Updates(map[string]interface{}{
		"token":      rotated,
		"expires_at": time.Now().Add(RefreshTokenExpiry),
	}).Error; err != nil {
		return nil, nil, err
	}

	user := refreshToken.User
	return tokenResponse(accessToken, rotated), &user, nil
}

func RevokeRefreshToken(db *gorm.DB, refreshTokenString string) error {
	return db.Where("token = ?", refreshTokenString).Delete(&models.RefreshToken{}).Error
}

func RevokeAllUserTokens(db *gorm.DB, userID uint) error {
	return db.Where("user_id = ?", userID).Delete(&models.RefreshToken{}).Error
}

// CleanExpiredTokens removes refresh tokens past their expiry and returns how
// many were deleted.
func CleanExpiredTokens(db *gorm.DB) (int64, error) {
	result := db.Where("expires_at < ?", time.Now()).Delete(&models.RefreshToken{})
	return result.RowsAffected, result.Error
}

// GenerateSecureToken returns 32 random bytes hex encoded.
func GenerateSecureToken() (string, error) {
	bytes := make([]byte, 32)
	if _, err := rand.Read(bytes); err != nil {
		return "", err
	}
	return hex.EncodeToString(bytes), nil
}

func tokenResponse(accessToken, refreshToken string) *models.TokenResponse {
	return &models.TokenResponse{
		AccessToken:  accessToken,
		RefreshToken: refreshToken,
		ExpiresIn:    int64(AccessTokenExpiry.Seconds()),
		TokenType:    "Bearer",
	}
}
