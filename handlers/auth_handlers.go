package handlers

import (
	"errors"
	"net/http"
	"net/mail"
	"strings"

	"github.com/nikhilsahni7/SurveyDesk/apperr"
	"github.com/nikhilsahni7/SurveyDesk/auth"
	"github.com/nikhilsahni7/SurveyDesk/config"
	"github.com/nikhilsahni7/SurveyDesk/db"
	"github.com/nikhilsahni7/SurveyDesk/log"
	"github.com/nikhilsahni7/SurveyDesk/models"
	"gorm.io/gorm"
)

const minPasswordLen = 8

// FrontendURL is where the browser lands after Google login and logout.
var FrontendURL = "http://localhost:3000"

func GoogleLoginHandler(w http.ResponseWriter, r *http.Request) {
	if config.GoogleOauthConfig == nil || config.GoogleOauthConfig.ClientID == "" || config.GoogleOauthConfig.ClientSecret == "" {
		log.Errorf("auth.google_config: client id or secret is empty")
		writeMessage(w, http.StatusInternalServerError, "OAuth configuration error")
		return
	}

	state := config.GenerateStateOauthCookie(w)
	http.Redirect(w, r, config.GoogleOauthConfig.AuthCodeURL(state), http.StatusTemporaryRedirect)
}

func GoogleCallbackHandler(w http.ResponseWriter, r *http.Request) {
	if err := config.VerifyStateOauthCookie(r); err != nil {
		log.Debugf("auth.google_state: %v", err)
		writeMessage(w, http.StatusBadRequest, "Invalid OAuth state")
		return
	}

	token, err := config.GoogleOauthConfig.Exchange(r.Context(), r.FormValue("code"))
	if err != nil {
		writeError(w, "auth.google_exchange", err)
		return
	}

	user, err := auth.GetGoogleUserInfo(r.Context(), config.GoogleOauthConfig.Client(r.Context(), token), token.AccessToken)
	if err != nil {
		writeError(w, "auth.google_userinfo", err)
		return
	}

	if err := auth.CreateOrUpdateUser(user); err != nil {
		writeError(w, "db.upsert_user", err)
		return
	}

	if err := auth.StartSession(w, r, user.ID); err != nil {
		writeError(w, "auth.session_save", err)
		return
	}

	http.Redirect(w, r, FrontendURL+"/dashboard", http.StatusSeeOther)
}

func RegisterHandler(w http.ResponseWriter, r *http.Request) {
	var input struct {
		Name     string `json:"name"`
		Email    string `json:"email"`
		Password string `json:"password"`
	}
	if !decodeJSON(w, r, &input) {
		return
	}

	input.Email = strings.TrimSpace(strings.ToLower(input.Email))
	switch {
	case strings.TrimSpace(input.Name) == "":
		writeError(w, "", apperr.Validation("name is required"))
		return
	case !validEmail(input.Email):
		writeError(w, "", apperr.Validation("a valid email is required"))
		return
	case len(input.Password) < minPasswordLen:
		writeError(w, "", apperr.Validation("password must be at least %d characters", minPasswordLen))
		return
	}

	if _, err := auth.GetUserByEmail(input.Email); err == nil {
		writeError(w, "", apperr.Validation("email is already registered"))
		return
	} else if !errors.Is(err, gorm.ErrRecordNotFound) {
		writeError(w, "db.select_user", err)
		return
	}

	user, err := auth.CreateUser(input.Email, strings.TrimSpace(input.Name), input.Password)
	if err != nil {
		writeError(w, "db.insert_user", err)
		return
	}

	if err := auth.StartSession(w, r, user.ID); err != nil {
		writeError(w, "auth.session_save", err)
		return
	}

	writeJSON(w, http.StatusCreated, user)
}

func LoginHandler(w http.ResponseWriter, r *http.Request) {
	var credentials struct {
		Email    string `json:"email"`
		Password string `json:"password"`
	}
	if !decodeJSON(w, r, &credentials) {
		return
	}

	user, err := auth.GetUserByEmail(strings.TrimSpace(strings.ToLower(credentials.Email)))
	if err != nil && !errors.Is(err, gorm.ErrRecordNotFound) {
		writeError(w, "db.select_user", err)
		return
	}
	if err != nil || !auth.CheckPasswordHash(credentials.Password, user.PasswordHash) {
		writeMessage(w, http.StatusUnauthorized, "Invalid credentials")
		return
	}

	if err := auth.StartSession(w, r, user.ID); err != nil {
		writeError(w, "auth.session_save", err)
		return
	}

	writeJSON(w, http.StatusOK, map[string]any{"message": "Login successful", "user": user})
}

func LogoutHandler(w http.ResponseWriter, r *http.Request) {
	if err := auth.ClearSession(w, r); err != nil {
		writeError(w, "auth.session_clear", err)
		return
	}
	writeMessage(w, http.StatusOK, "Logged out")
}

func GetCurrentUser(w http.ResponseWriter, r *http.Request) {
	var user models.User
	err := db.GetDB().WithContext(r.Context()).First(&user, callerID(r)).Error
	if errors.Is(err, gorm.ErrRecordNotFound) {
		writeError(w, "db.select_user", apperr.NotFound("user", callerID(r)))
		return
	}
	if err != nil {
		writeError(w, "db.select_user", err)
		return
	}
	writeJSON(w, http.StatusOK, user)
}

func validEmail(email string) bool {
	addr, err := mail.ParseAddress(email)
	return err == nil && addr.Address == email
}
