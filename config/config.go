package config

import (
	"crypto/rand"
	"encoding/base64"
	"errors"
	"fmt"
	"net/http"
	"os"
	"strings"
	"time"

	"github.com/joho/godotenv"
	"github.com/nikhilsahni7/SurveyDesk/log"
	"golang.org/x/oauth2"
	"golang.org/x/oauth2/google"
)

const (
	DriverPostgres = "postgres"
	DriverSQLite   = "sqlite"
)

type Config struct {
	Port           string
	DBDriver       string
	DatabaseURL    string
	SessionKey     string
	AllowedOrigins []string
	FrontendURL    string
	UploadPrefix   string
	Debug          bool
}

var (
	GoogleOauthConfig *oauth2.Config
)

// Load reads .env (when present) and the process environment.
func Load() (Config, error) {
	if err := godotenv.Load(); err != nil {
		log.Debugf("No .env file loaded: %v", err)
	}

	cfg := Config{
		Port:           getenv("PORT", "8080"),
		DBDriver:       getenv("DB_DRIVER", DriverPostgres),
		DatabaseURL:    os.Getenv("DATABASE_URL"),
		SessionKey:     os.Getenv("SESSION_KEY"),
		AllowedOrigins: strings.Split(getenv("ALLOWED_ORIGINS", "http://localhost:3000"), ","),
		FrontendURL:    getenv("FRONTEND_URL", "http://localhost:3000"),
		UploadPrefix:   getenv("UPLOAD_PREFIX", "uploads/"),
		Debug:          os.Getenv("DEBUG") == "true",
	}

	switch {
	case cfg.DBDriver != DriverPostgres && cfg.DBDriver != DriverSQLite:
		return cfg, fmt.Errorf("unsupported DB_DRIVER %q", cfg.DBDriver)
	case cfg.DatabaseURL == "" && cfg.DBDriver == DriverSQLite:
		cfg.DatabaseURL = "surveydesk.sqlite?_foreign_keys=on"
	case cfg.DatabaseURL == "":
		return cfg, errors.New("DATABASE_URL environment variable is not set")
	}
	if cfg.SessionKey == "" {
		return cfg, errors.New("SESSION_KEY environment variable is not set")
	}

	GoogleOauthConfig = &oauth2.Config{
		ClientID:     os.Getenv("GOOGLE_CLIENT_ID"),
		ClientSecret: os.Getenv("GOOGLE_CLIENT_SECRET"),
		RedirectURL:  getenv("GOOGLE_REDIRECT_URL", "http://localhost:"+cfg.Port+"/auth/google/callback"),
		Scopes: []string{
			"https://www.googleapis.com/auth/userinfo.email",
			"https://www.googleapis.com/auth/userinfo.profile",
		},
		Endpoint: google.Endpoint,
	}

	return cfg, nil
}

func (cfg Config) Addr() string {
	return ":" + cfg.Port
}

func getenv(key, fallback string) string {
	if v := os.Getenv(key); v != "" {
		return v
	}
	return fallback
}

func GenerateStateOauthCookie(w http.ResponseWriter) string {
	b := make([]byte, 16)
	rand.Read(b)
	state := base64.URLEncoding.EncodeToString(b)
	cookie := &http.Cookie{
		Name:     "oauthstate",
		Value:    state,
		Expires:  time.Now().Add(30 * time.Minute),
		HttpOnly: true,
		Path:     "/",
		SameSite: http.SameSiteLaxMode,
	}
	http.SetCookie(w, cookie)
	return state
}

func VerifyStateOauthCookie(r *http.Request) error {
	state := r.FormValue("state")
	cookie, err := r.Cookie("oauthstate")
	if err != nil {
		return err
	}
	if cookie.Value != state {
		return fmt.Errorf("invalid oauth state")
	}
	return nil
}
