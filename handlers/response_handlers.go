package handlers

import (
	"encoding/json"
	"net/http"

	"github.com/nikhilsahni7/SurveyDesk/log"
	"github.com/nikhilsahni7/SurveyDesk/responses"
)

type submission struct {
	RespondentID string                  `json:"respondent_id"`
	Answers      []responses.AnswerInput `json:"answers"`
}

// SubmitResponse records one respondent's answers to a published survey.
func SubmitResponse(w http.ResponseWriter, r *http.Request) {
	surveyID, ok := pathID(w, r, "id")
	if !ok {
		return
	}

	var input submission
	dec := json.NewDecoder(r.Body)
	dec.UseNumber()
	if err := dec.Decode(&input); err != nil {
		log.Debugf("http.decode: %v", err)
		writeMessage(w, http.StatusBadRequest, "Invalid request body")
		return
	}

	respondentID, err := aggregator().Record(r.Context(), surveyID, input.RespondentID, input.Answers)
	if err != nil {
		writeError(w, "db.insert_answers", err)
		return
	}

	TriggerWebhook(surveyID, respondentID, len(input.Answers))

	writeJSON(w, http.StatusCreated, map[string]string{
		"message":       "Response submitted successfully",
		"respondent_id": respondentID,
	})
}

func ListResponses(w http.ResponseWriter, r *http.Request) {
	surveyID, ok := pathID(w, r, "id")
	if !ok {
		return
	}

	grouped, err := aggregator().List(r.Context(), callerID(r), surveyID)
	if err != nil {
		writeError(w, "db.select_answers", err)
		return
	}
	writeJSON(w, http.StatusOK, grouped)
}
