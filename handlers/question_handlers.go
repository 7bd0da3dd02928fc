package handlers

import (
	"net/http"

	"github.com/nikhilsahni7/SurveyDesk/questions"
	"github.com/nikhilsahni7/SurveyDesk/questiontype"
)

func ListQuestionTypes(w http.ResponseWriter, r *http.Request) {
	writeJSON(w, http.StatusOK, questiontype.All())
}

func ListQuestions(w http.ResponseWriter, r *http.Request) {
	surveyID, ok := pathID(w, r, "id")
	if !ok {
		return
	}

	qs, err := questionStore().List(r.Context(), callerID(r), surveyID)
	if err != nil {
		writeError(w, "db.select_questions", err)
		return
	}
	writeJSON(w, http.StatusOK, qs)
}

func ListPublicQuestions(w http.ResponseWriter, r *http.Request) {
	surveyID, ok := pathID(w, r, "id")
	if !ok {
		return
	}

	qs, err := questionStore().ListPublic(r.Context(), surveyID)
	if err != nil {
		writeError(w, "db.select_public_questions", err)
		return
	}
	writeJSON(w, http.StatusOK, qs)
}

func CreateQuestion(w http.ResponseWriter, r *http.Request) {
	surveyID, ok := pathID(w, r, "id")
	if !ok {
		return
	}
	var input questions.Input
	if !decodeJSON(w, r, &input) {
		return
	}

	q, err := questionStore().Create(r.Context(), callerID(r), surveyID, input)
	if err != nil {
		writeError(w, "db.insert_question", err)
		return
	}
	writeJSON(w, http.StatusCreated, q)
}

func GetQuestion(w http.ResponseWriter, r *http.Request) {
	id, ok := pathID(w, r, "id")
	if !ok {
		return
	}

	q, err := questionStore().Get(r.Context(), callerID(r), id)
	if err != nil {
		writeError(w, "db.select_question", err)
		return
	}
	writeJSON(w, http.StatusOK, q)
}

func UpdateQuestion(w http.ResponseWriter, r *http.Request) {
	id, ok := pathID(w, r, "id")
	if !ok {
		return
	}
	var patch questions.Patch
	if !decodeJSON(w, r, &patch) {
		return
	}

	q, err := questionStore().Update(r.Context(), callerID(r), id, patch)
	if err != nil {
		writeError(w, "db.update_question", err)
		return
	}
	writeJSON(w, http.StatusOK, q)
}

func DeleteQuestion(w http.ResponseWriter, r *http.Request) {
	id, ok := pathID(w, r, "id")
	if !ok {
		return
	}

	if err := questionStore().Delete(r.Context(), callerID(r), id); err != nil {
		writeError(w, "db.delete_question", err)
		return
	}
	writeMessage(w, http.StatusOK, "Question deleted successfully")
}

func ReorderQuestions(w http.ResponseWriter, r *http.Request) {
	surveyID, ok := pathID(w, r, "id")
	if !ok {
		return
	}
	var input struct {
		QuestionIDs []uint `json:"question_ids"`
	}
	if !decodeJSON(w, r, &input) {
		return
	}

	result, err := questionStore().Reorder(r.Context(), callerID(r), surveyID, input.QuestionIDs)
	if err != nil {
		writeError(w, "db.reorder_questions", err)
		return
	}
	writeJSON(w, http.StatusOK, map[string]any{
		"message": "Questions reordered successfully",
		"updated": result.Updated,
		"skipped": result.Skipped,
	})
}
