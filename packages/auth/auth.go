package auth

import (
	"pelada-api/packages/auth/handlers"
	"pelada-api/packages/auth/middleware"
	"pelada-api/packages/auth/services"
	coreServices "pelada-api/packages/core/services"

	"github.com/gin-gonic/gin"
	"gorm.io/gorm"
)

type Module struct {
	Handler *handlers.AuthHandler
}

func NewModule(db *gorm.DB, appURL string) *Module {
	return NewModuleWithEmail(db, appURL, services.NewEmailService())
}

func NewModuleWithEmail(db *gorm.DB, appURL string, emailService services.EmailService) *Module {
	playerService := coreServices.NewPlayerService(db)
	return &Module{
		Handler: handlers.NewAuthHandler(db, playerService, emailService, appURL),
	}
}

func (m *Module) SetupRoutes(r *gin.Engine) {
	auth := r.Group("/auth")
	{
		auth.POST("/register", m.Handler.Register)
		auth.POST("/login", m.Handler.Login)
		auth.POST("/refresh", m.Handler.RefreshToken)
		auth.POST("/logout", m.Handler.Logout)
		auth.POST("/logout-all", middleware.JWTMiddleware(), m.Handler.LogoutAll)
		auth.GET("/verify-email", m.Handler.VerifyEmail)
		auth.POST("/email/verification-notification", m.Handler.ResendVerification)
		auth.POST("/reset-password/send-link", m.Handler.SendPasswordResetLink)
		auth.POST("/reset-password/confirm", m.Handler.ConfirmPasswordReset)
		auth.POST("/change-password", middleware.JWTMiddleware(), m.Handler.ChangePassword)
	}

	users := r.Group("/users")
	users.Use(middleware.JWTMiddleware())
	{
		users.GET("/me", m.Handler.Profile)
	}
}

func JWTMiddleware() gin.HandlerFunc {
	return middleware.JWTMiddleware()
}

func GetUserID(c *gin.Context) (uint, bool) {
	return middleware.GetUserID(c)
}

func GetUserEmail(c *gin.Context) (string, bool) {
	return middleware.GetUserEmail(c)
}
