package auth

import (
	"context"
	"encoding/json"
	"net/http"

	"github.com/antonlindstrom/pgstore"
	"github.com/gorilla/sessions"
	"github.com/nikhilsahni7/SurveyDesk/config"
	"github.com/nikhilsahni7/SurveyDesk/db"
	"github.com/nikhilsahni7/SurveyDesk/log"
	"github.com/nikhilsahni7/SurveyDesk/models"
	"golang.org/x/crypto/bcrypt"
)

const sessionName = "surveydesk-session"

type contextKey string

const userIDKey contextKey = "userID"

var (
	Store sessions.Store
)

// InitStore keeps sessions in postgres when that is the database, and in
// signed cookies otherwise.
func InitStore(cfg config.Config) {
	if cfg.DBDriver != config.DriverPostgres {
		Store = sessions.NewCookieStore([]byte(cfg.SessionKey))
		return
	}

	pg, err := pgstore.NewPGStore(cfg.DatabaseURL, []byte(cfg.SessionKey))
	if err != nil {
		log.Fatalf("Failed to initialize session store: %v", err)
	}
	Store = pg
}

func AuthMiddleware(next http.HandlerFunc) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		session, err := Store.Get(r, sessionName)
		if err != nil {
			log.Debugf("auth.session: %v", err)
		}
		if session == nil {
			unauthorized(w)
			return
		}
		if ok, _ := session.Values["authenticated"].(bool); !ok {
			unauthorized(w)
			return
		}
		userID, ok := session.Values["user_id"].(uint)
		if !ok {
			unauthorized(w)
			return
		}
		next.ServeHTTP(w, r.WithContext(WithUserID(r.Context(), userID)))
	}
}

func unauthorized(w http.ResponseWriter) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(http.StatusUnauthorized)
	json.NewEncoder(w).Encode(map[string]string{"message": "Unauthenticated"})
}

func WithUserID(ctx context.Context, userID uint) context.Context {
	return context.WithValue(ctx, userIDKey, userID)
}

// UserID returns the authenticated caller stored by AuthMiddleware.
func UserID(ctx context.Context) (uint, bool) {
	id, ok := ctx.Value(userIDKey).(uint)
	return id, ok && id != 0
}

// StartSession marks the request's session as authenticated for userID.
func StartSession(w http.ResponseWriter, r *http.Request, userID uint) error {
	session, err := Store.New(r, sessionName)
	if err != nil && session == nil {
		return err
	}
	session.Values["authenticated"] = true
	session.Values["user_id"] = userID
	return session.Save(r, w)
}

func ClearSession(w http.ResponseWriter, r *http.Request) error {
	session, _ := Store.Get(r, sessionName)
	if session == nil {
		return nil
	}
	session.Options.MaxAge = -1
	session.Values = make(map[interface{}]interface{})
	return session.Save(r, w)
}

func HashPassword(password string) (string, error) {
	bytes, err := bcrypt.GenerateFromPassword([]byte(password), bcrypt.DefaultCost)
	return string(bytes), err
}

func CheckPasswordHash(password, hash string) bool {
	err := bcrypt.CompareHashAndPassword([]byte(hash), []byte(password))
	return err == nil
}

func CreateUser(email, name, password string) (*models.User, error) {
	hashedPassword, err := HashPassword(password)
	if err != nil {
		return nil, err
	}

	user := &models.User{
		Email:        email,
		Name:         name,
		PasswordHash: hashedPassword,
	}

	if err := db.DB.Create(user).Error; err != nil {
		return nil, err
	}

	return user, nil
}

func GetUserByEmail(email string) (*models.User, error) {
	var user models.User
	if err := db.DB.Where("email = ?", email).First(&user).Error; err != nil {
		return nil, err
	}
	return &user, nil
}
