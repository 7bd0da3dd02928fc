package handlers

import (
	"encoding/json"
	"errors"
	"net/http"
	"strconv"

	"github.com/gorilla/mux"
	"github.com/nikhilsahni7/SurveyDesk/apperr"
	"github.com/nikhilsahni7/SurveyDesk/auth"
	"github.com/nikhilsahni7/SurveyDesk/codec"
	"github.com/nikhilsahni7/SurveyDesk/db"
	"github.com/nikhilsahni7/SurveyDesk/log"
	"github.com/nikhilsahni7/SurveyDesk/questions"
	"github.com/nikhilsahni7/SurveyDesk/responses"
	"github.com/nikhilsahni7/SurveyDesk/surveys"
)

// UploadPrefix is prepended to the names of uploaded files.
var UploadPrefix = codec.DefaultUploadPrefix

func questionStore() *questions.Store {
	return questions.NewStore(db.GetDB())
}

func aggregator() *responses.Aggregator {
	return responses.NewAggregator(db.GetDB(), codec.New(UploadPrefix))
}

func surveyService() *surveys.Service {
	return surveys.NewService(db.GetDB(), aggregator())
}

func writeJSON(w http.ResponseWriter, status int, v any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	if err := json.NewEncoder(w).Encode(v); err != nil {
		log.Warnf("http.encode: %v", err)
	}
}

func writeMessage(w http.ResponseWriter, status int, msg string) {
	writeJSON(w, status, map[string]string{"message": msg})
}

// writeError maps err onto a status. Errors outside apperr are logged under
// code and answered with a bare 500.
func writeError(w http.ResponseWriter, code string, err error) {
	switch {
	case errors.Is(err, apperr.ErrSurveyNotAvailable):
		writeMessage(w, http.StatusForbidden, "Survey is not available for responses")
	case errors.Is(err, apperr.ErrInvalidQuestionReference):
		writeMessage(w, http.StatusUnprocessableEntity, "Invalid question IDs provided")
	case errors.Is(err, apperr.ErrValidation):
		writeMessage(w, http.StatusUnprocessableEntity, err.Error())
	case errors.Is(err, apperr.ErrEmptyReorderRequest):
		writeMessage(w, http.StatusBadRequest, "No question IDs provided")
	case errors.Is(err, apperr.ErrNotFound):
		log.Debugf("%s: %v", code, err)
		writeMessage(w, http.StatusNotFound, "Not found")
	case errors.Is(err, apperr.ErrForbidden):
		writeMessage(w, http.StatusForbidden, "Forbidden")
	case errors.Is(err, apperr.ErrUnauthenticated):
		writeMessage(w, http.StatusUnauthorized, "Unauthenticated")
	default:
		log.Errorf("%s: %v", code, err)
		writeMessage(w, http.StatusInternalServerError, http.StatusText(http.StatusInternalServerError))
	}
}

func decodeJSON(w http.ResponseWriter, r *http.Request, v any) bool {
	if err := json.NewDecoder(r.Body).Decode(v); err != nil {
		log.Debugf("http.decode: %v", err)
		writeMessage(w, http.StatusBadRequest, "Invalid request body")
		return false
	}
	return true
}

func pathID(w http.ResponseWriter, r *http.Request, name string) (uint, bool) {
	id, err := strconv.ParseUint(mux.Vars(r)[name], 10, 64)
	if err != nil || id == 0 {
		writeMessage(w, http.StatusBadRequest, "Invalid "+name)
		return 0, false
	}
	return uint(id), true
}

func callerID(r *http.Request) uint {
	id, _ := auth.UserID(r.Context())
	return id
}
