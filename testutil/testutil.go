// Package testutil provides throwaway databases for tests.
package testutil

import (
	"path/filepath"
	"testing"

	"github.com/nikhilsahni7/SurveyDesk/config"
	"github.com/nikhilsahni7/SurveyDesk/db"
	"github.com/nikhilsahni7/SurveyDesk/models"
	"gorm.io/gorm"
)

// SetupTestDB opens a fresh, migrated sqlite database that lives for the test.
func SetupTestDB(t *testing.T) *gorm.DB {
	t.Helper()

	dsn := filepath.Join(t.TempDir(), "test.db") + "?_foreign_keys=on"
	testDB, err := db.Open(config.DriverSQLite, dsn)
	if err != nil {
		t.Fatalf("Failed to open test database: %v", err)
	}
	if err := db.Migrate(testDB); err != nil {
		t.Fatalf("Failed to migrate test database: %v", err)
	}

	t.Cleanup(func() {
		if sqlDB, err := testDB.DB(); err == nil {
			sqlDB.Close()
		}
	})
	return testDB
}

// CreateUser inserts a user with the given email.
func CreateUser(t *testing.T, gdb *gorm.DB, email string) models.User {
	t.Helper()
	user := models.User{Email: email, Name: email}
	if err := gdb.Create(&user).Error; err != nil {
		t.Fatalf("Failed to create user: %v", err)
	}
	return user
}

// CreateSurvey inserts a survey owned by userID with the given status.
func CreateSurvey(t *testing.T, gdb *gorm.DB, userID uint, status models.SurveyStatus) models.Survey {
	t.Helper()
	survey := models.Survey{UserID: userID, Title: "Test Survey", Status: status}
	if err := gdb.Create(&survey).Error; err != nil {
		t.Fatalf("Failed to create survey: %v", err)
	}
	return survey
}
