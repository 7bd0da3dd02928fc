package handlers

import (
	"net/http"
	"strconv"

	"github.com/gorilla/mux"
	"github.com/nikhilsahni7/SurveyDesk/models"
	"github.com/nikhilsahni7/SurveyDesk/surveys"
)

func CreateSurvey(w http.ResponseWriter, r *http.Request) {
	var input surveys.Input
	if !decodeJSON(w, r, &input) {
		return
	}

	survey, err := surveyService().Create(r.Context(), callerID(r), input)
	if err != nil {
		writeError(w, "db.insert_survey", err)
		return
	}
	writeJSON(w, http.StatusCreated, survey)
}

// ListSurveys serves the caller's surveys, filtered by ?title= and ?status=,
// sorted by ?sort= and paged by ?page=.
func ListSurveys(w http.ResponseWriter, r *http.Request) {
	query := r.URL.Query()
	opts := surveys.ListOptions{
		Title:            query.Get("title"),
		Status:           models.SurveyStatus(query.Get("status")),
		Sort:             query.Get("sort"),
		IncludeQuestions: query.Get("include") == "questions",
	}
	if page := query.Get("page"); page != "" {
		n, err := strconv.Atoi(page)
		if err != nil {
			writeMessage(w, http.StatusBadRequest, "Invalid page")
			return
		}
		opts.Page = n
	}

	page, err := surveyService().List(r.Context(), callerID(r), opts)
	if err != nil {
		writeError(w, "db.select_surveys", err)
		return
	}
	writeJSON(w, http.StatusOK, page)
}

func GetSurvey(w http.ResponseWriter, r *http.Request) {
	id, ok := pathID(w, r, "id")
	if !ok {
		return
	}

	survey, err := surveyService().Get(r.Context(), callerID(r), id)
	if err != nil {
		writeError(w, "db.select_survey", err)
		return
	}
	writeJSON(w, http.StatusOK, survey)
}

func UpdateSurvey(w http.ResponseWriter, r *http.Request) {
	id, ok := pathID(w, r, "id")
	if !ok {
		return
	}
	var patch surveys.Patch
	if !decodeJSON(w, r, &patch) {
		return
	}

	survey, err := surveyService().Update(r.Context(), callerID(r), id, patch)
	if err != nil {
		writeError(w, "db.update_survey", err)
		return
	}
	writeJSON(w, http.StatusOK, survey)
}

func DeleteSurvey(w http.ResponseWriter, r *http.Request) {
	id, ok := pathID(w, r, "id")
	if !ok {
		return
	}

	if err := surveyService().Delete(r.Context(), callerID(r), id); err != nil {
		writeError(w, "db.delete_survey", err)
		return
	}
	writeMessage(w, http.StatusOK, "Survey deleted successfully")
}

func GetPublicSurvey(w http.ResponseWriter, r *http.Request) {
	id, ok := pathID(w, r, "id")
	if !ok {
		return
	}

	survey, err := surveyService().GetPublic(r.Context(), id)
	if err != nil {
		writeError(w, "db.select_public_survey", err)
		return
	}
	writeJSON(w, http.StatusOK, survey)
}

func AccessSurveyByLink(w http.ResponseWriter, r *http.Request) {
	survey, err := surveyService().GetByLink(r.Context(), mux.Vars(r)["linkID"])
	if err != nil {
		writeError(w, "db.select_survey_link", err)
		return
	}
	writeJSON(w, http.StatusOK, survey)
}
