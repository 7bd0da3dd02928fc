package auth

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"net/http"

	"github.com/nikhilsahni7/SurveyDesk/db"
	"github.com/nikhilsahni7/SurveyDesk/models"
	"gorm.io/gorm"
)

var googleUserInfoURL = "https://www.googleapis.com/oauth2/v2/userinfo"

type GoogleUserInfo struct {
	ID            string `json:"id"`
	Email         string `json:"email"`
	VerifiedEmail bool   `json:"verified_email"`
	Name          string `json:"name"`
	Picture       string `json:"picture"`
}

func GetGoogleUserInfo(ctx context.Context, client *http.Client, token string) (*models.User, error) {
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, googleUserInfoURL, nil)
	if err != nil {
		return nil, err
	}
	req.Header.Set("Authorization", "Bearer "+token)

	resp, err := client.Do(req)
	if err != nil {
		return nil, fmt.Errorf("failed getting user info: %w", err)
	}
	defer resp.Body.Close()
	if resp.StatusCode != http.StatusOK {
		return nil, fmt.Errorf("failed getting user info: %s", resp.Status)
	}

	var googleUser GoogleUserInfo
	if err = json.NewDecoder(resp.Body).Decode(&googleUser); err != nil {
		return nil, fmt.Errorf("failed decoding user info: %w", err)
	}

	user := &models.User{
		GoogleID: &googleUser.ID,
		Email:    googleUser.Email,
		Name:     googleUser.Name,
		Picture:  googleUser.Picture,
	}

	return user, nil
}

// CreateOrUpdateUser links a Google account to a user, matching by Google id
// first and by email second.
func CreateOrUpdateUser(user *models.User) error {
	var existingUser models.User
	result := db.DB.Where("google_id = ?", user.GoogleID).Or("email = ?", user.Email).First(&existingUser)
	if errors.Is(result.Error, gorm.ErrRecordNotFound) {
		if err := db.DB.Create(user).Error; err != nil {
			return fmt.Errorf("failed to create user: %w", err)
		}
		return nil
	}
	if result.Error != nil {
		return result.Error
	}

	existingUser.Name = user.Name
	existingUser.Email = user.Email
	existingUser.GoogleID = user.GoogleID
	existingUser.Picture = user.Picture
	if err := db.DB.Save(&existingUser).Error; err != nil {
		return fmt.Errorf("failed to update user: %w", err)
	}
	*user = existingUser
	return nil
}
