// Package testdb provides throwaway sqlite databases for package tests.
package testdb

import (
	"fmt"
	"testing"

	"pelada-api/config"
	"pelada-api/migrations"
	authModels "pelada-api/packages/auth/models"
	"pelada-api/packages/core/models"

	"gorm.io/gorm"
)

// Open returns a fresh in-memory database with the full schema.
func Open(t testing.TB) *gorm.DB {
	t.Helper()

	db, err := config.OpenDatabase(config.DatabaseConfig{Driver: "sqlite", URL: ":memory:"})
	if err != nil {
		t.Fatalf("failed to open test database: %v", err)
	}
	if err := migrations.AutoMigrateModels(db); err != nil {
		t.Fatalf("failed to migrate test database: %v", err)
	}

	t.Cleanup(func() {
		if sqlDB, err := db.DB(); err == nil {
			sqlDB.Close()
		}
	})
	return db
}

// CreatePlayer inserts a user and its player profile.
func CreatePlayer(t testing.TB, db *gorm.DB, name string) (*authModels.User, *models.Player) {
	t.Helper()

	user := authModels.User{
		Email:    fmt.Sprintf("%s@pelada.test", name),
		Name:     name,
		Password: "not-a-real-hash",
	}
	if err := db.Create(&user).Error; err != nil {
		t.Fatalf("failed to create user %s: %v", name, err)
	}

	player := models.Player{UserID: user.ID, Name: name}
	if err := db.Create(&player).Error; err != nil {
		t.Fatalf("failed to create player %s: %v", name, err)
	}
	return &user, &player
}

// CreatePlayers inserts n players named prefix1..prefixN.
func CreatePlayers(t testing.TB, db *gorm.DB, prefix string, n int) []*models.Player {
	t.Helper()

	players := make([]*models.Player, 0, n)
	for i := 1; i <= n; i++ {
		_, player := CreatePlayer(t, db, fmt.Sprintf("%s%d", prefix, i))
		players = append(players, player)
	}
	return players
}
