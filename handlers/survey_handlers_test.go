package handlers

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/gorilla/mux"
	"github.com/nikhilsahni7/SurveyDesk/auth"
	"github.com/nikhilsahni7/SurveyDesk/db"
	"github.com/nikhilsahni7/SurveyDesk/models"
	"github.com/nikhilsahni7/SurveyDesk/testutil"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"gorm.io/gorm"
)

func newTestRouter() *mux.Router {
	router := mux.NewRouter()
	router.HandleFunc("/surveys", CreateSurvey).Methods("POST")
	router.HandleFunc("/surveys", ListSurveys).Methods("GET")
	router.HandleFunc("/surveys/{id}", GetSurvey).Methods("GET")
	router.HandleFunc("/surveys/{id}", UpdateSurvey).Methods("PUT")
	router.HandleFunc("/surveys/{id}", DeleteSurvey).Methods("DELETE")
	router.HandleFunc("/surveys/{id}/public", GetPublicSurvey).Methods("GET")
	router.HandleFunc("/surveys/{id}/questions", CreateQuestion).Methods("POST")
	router.HandleFunc("/surveys/{id}/responses", SubmitResponse).Methods("POST")
	router.HandleFunc("/surveys/{id}/responses", ListResponses).Methods("GET")
	router.HandleFunc("/s/{linkID}", AccessSurveyByLink).Methods("GET")
	return router
}

func newRequest(t *testing.T, method, path string, userID uint, body any) *http.Request {
	t.Helper()
	var buf bytes.Buffer
	if body != nil {
		require.NoError(t, json.NewEncoder(&buf).Encode(body))
	}
	req, err := http.NewRequest(method, path, &buf)
	require.NoError(t, err)
	if userID != 0 {
		req = req.WithContext(setUserIDContext(req.Context(), userID))
	}
	return req
}

func TestSurveyHandlers(t *testing.T) {
	testDB := testutil.SetupTestDB(t)
	db.DB = testDB
	router := newTestRouter()

	user := testutil.CreateUser(t, testDB, "test@example.com")
	other := testutil.CreateUser(t, testDB, "other@example.com")

	serve := func(req *http.Request) *httptest.ResponseRecorder {
		rr := httptest.NewRecorder()
		router.ServeHTTP(rr, req)
		return rr
	}

	t.Run("CreateSurvey", func(t *testing.T) {
		rr := serve(newRequest(t, "POST", "/surveys", user.ID, map[string]string{
			"title":       "Test Survey",
			"description": "This is a test survey",
		}))
		assert.Equal(t, http.StatusCreated, rr.Code)

		var created struct {
			ID     uint   `json:"id"`
			Title  string `json:"title"`
			Status string `json:"status"`
			Link   string `json:"link"`
		}
		require.NoError(t, json.Unmarshal(rr.Body.Bytes(), &created))
		assert.NotEmpty(t, created.ID)
		assert.Equal(t, "Test Survey", created.Title)
		assert.Equal(t, "draft", created.Status)
		assert.NotEmpty(t, created.Link)
	})

	t.Run("CreateSurveyRejects", func(t *testing.T) {
		rr := serve(newRequest(t, "POST", "/surveys", user.ID, map[string]string{"title": ""}))
		assert.Equal(t, http.StatusUnprocessableEntity, rr.Code)

		req, _ := http.NewRequest("POST", "/surveys", bytes.NewBufferString("{"))
		req = req.WithContext(setUserIDContext(req.Context(), user.ID))
		assert.Equal(t, http.StatusBadRequest, serve(req).Code)

		rr = serve(newRequest(t, "POST", "/surveys", 0, map[string]string{"title": "x"}))
		assert.Equal(t, http.StatusUnauthorized, rr.Code)
	})

	t.Run("ListSurveys", func(t *testing.T) {
		rr := serve(newRequest(t, "GET", "/surveys?sort=title", user.ID, nil))
		assert.Equal(t, http.StatusOK, rr.Code)

		var page struct {
			Data  []models.Survey `json:"data"`
			Total int             `json:"total"`
		}
		require.NoError(t, json.Unmarshal(rr.Body.Bytes(), &page))
		assert.Equal(t, 1, page.Total)
		assert.NotEmpty(t, page.Data)

		assert.Equal(t, http.StatusBadRequest, serve(newRequest(t, "GET", "/surveys?page=two", user.ID, nil)).Code)
		assert.Equal(t, http.StatusUnprocessableEntity, serve(newRequest(t, "GET", "/surveys?sort=secret", user.ID, nil)).Code)
	})

	t.Run("GetSurvey", func(t *testing.T) {
		survey := testutil.CreateSurvey(t, testDB, user.ID, models.StatusDraft)

		rr := serve(newRequest(t, "GET", fmt.Sprintf("/surveys/%d", survey.ID), user.ID, nil))
		assert.Equal(t, http.StatusOK, rr.Code)

		var retrieved models.Survey
		require.NoError(t, json.Unmarshal(rr.Body.Bytes(), &retrieved))
		assert.Equal(t, survey.ID, retrieved.ID)

		rr = serve(newRequest(t, "GET", fmt.Sprintf("/surveys/%d", survey.ID), other.ID, nil))
		assert.Equal(t, http.StatusForbidden, rr.Code)

		rr = serve(newRequest(t, "GET", "/surveys/99999", user.ID, nil))
		assert.Equal(t, http.StatusNotFound, rr.Code)

		rr = serve(newRequest(t, "GET", "/surveys/abc", user.ID, nil))
		assert.Equal(t, http.StatusBadRequest, rr.Code)
	})

	t.Run("UpdateSurvey", func(t *testing.T) {
		survey := testutil.CreateSurvey(t, testDB, user.ID, models.StatusDraft)

		rr := serve(newRequest(t, "PUT", fmt.Sprintf("/surveys/%d", survey.ID), user.ID, map[string]string{
			"title":       "Updated Test Survey",
			"description": "This is an updated test survey",
			"status":      "published",
		}))
		assert.Equal(t, http.StatusOK, rr.Code)

		var updated models.Survey
		require.NoError(t, json.Unmarshal(rr.Body.Bytes(), &updated))
		assert.Equal(t, "Updated Test Survey", updated.Title)
		assert.Equal(t, models.StatusPublished, updated.Status)

		rr = serve(newRequest(t, "GET", fmt.Sprintf("/surveys/%d/public", survey.ID), 0, nil))
		assert.Equal(t, http.StatusOK, rr.Code)
	})

	t.Run("DeleteSurvey", func(t *testing.T) {
		survey := testutil.CreateSurvey(t, testDB, user.ID, models.StatusDraft)

		rr := serve(newRequest(t, "DELETE", fmt.Sprintf("/surveys/%d", survey.ID), other.ID, nil))
		assert.Equal(t, http.StatusForbidden, rr.Code)

		rr = serve(newRequest(t, "DELETE", fmt.Sprintf("/surveys/%d", survey.ID), user.ID, nil))
		assert.Equal(t, http.StatusOK, rr.Code)

		var deleted models.Survey
		result := testDB.First(&deleted, survey.ID)
		assert.ErrorIs(t, result.Error, gorm.ErrRecordNotFound)
	})

	t.Run("SubmitResponse", func(t *testing.T) {
		survey := testutil.CreateSurvey(t, testDB, user.ID, models.StatusPublished)
		rr := serve(newRequest(t, "POST", fmt.Sprintf("/surveys/%d/questions", survey.ID), user.ID, map[string]any{
			"title":   "What is your favorite color?",
			"type":    "multiple_choice_single",
			"options": []string{"red", "blue", "green"},
		}))
		require.Equal(t, http.StatusCreated, rr.Code, rr.Body.String())
		var question models.Question
		require.NoError(t, json.Unmarshal(rr.Body.Bytes(), &question))

		rr = serve(newRequest(t, "POST", fmt.Sprintf("/surveys/%d/responses", survey.ID), 0, map[string]any{
			"respondent_id": "visitor-1",
			"answers":       []map[string]any{{"question_id": question.ID, "value": "blue"}},
		}))
		assert.Equal(t, http.StatusCreated, rr.Code)
		var submitted map[string]string
		require.NoError(t, json.Unmarshal(rr.Body.Bytes(), &submitted))
		assert.Equal(t, "visitor-1", submitted["respondent_id"])

		rr = serve(newRequest(t, "POST", fmt.Sprintf("/surveys/%d/responses", survey.ID), 0, map[string]any{
			"respondent_id": "visitor-2",
			"answers":       []map[string]any{{"question_id": question.ID, "value": nil}},
		}))
		assert.Equal(t, http.StatusUnprocessableEntity, rr.Code)

		draft := testutil.CreateSurvey(t, testDB, user.ID, models.StatusDraft)
		rr = serve(newRequest(t, "POST", fmt.Sprintf("/surveys/%d/responses", draft.ID), 0, map[string]any{
			"respondent_id": "visitor-1",
			"answers":       []map[string]any{{"question_id": question.ID, "value": "blue"}},
		}))
		assert.Equal(t, http.StatusForbidden, rr.Code)

		rr = serve(newRequest(t, "GET", fmt.Sprintf("/surveys/%d/responses", survey.ID), user.ID, nil))
		assert.Equal(t, http.StatusOK, rr.Code)
		var grouped []struct {
			RespondentID string `json:"respondent_id"`
			Answers      []struct {
				FormattedAnswer []string `json:"formatted_answer"`
			} `json:"answers"`
		}
		require.NoError(t, json.Unmarshal(rr.Body.Bytes(), &grouped))
		require.Len(t, grouped, 1)
		assert.Equal(t, []string{"blue"}, grouped[0].Answers[0].FormattedAnswer)
	})

	t.Run("AccessSurveyByLink", func(t *testing.T) {
		survey := testutil.CreateSurvey(t, testDB, user.ID, models.StatusPublished)
		link := models.SurveyLink{
			SurveyID: survey.ID,
			Link:     fmt.Sprintf("test-link-%d", survey.ID),
			IsActive: true,
		}
		require.NoError(t, testDB.Create(&link).Error)

		rr := serve(newRequest(t, "GET", "/s/"+link.Link, 0, nil))
		assert.Equal(t, http.StatusOK, rr.Code)

		var retrieved models.Survey
		require.NoError(t, json.Unmarshal(rr.Body.Bytes(), &retrieved))
		assert.Equal(t, survey.ID, retrieved.ID)

		rr = serve(newRequest(t, "GET", "/s/unknown-link", 0, nil))
		assert.Equal(t, http.StatusNotFound, rr.Code)
	})
}

func setUserIDContext(ctx context.Context, userID uint) context.Context {
	return auth.WithUserID(ctx, userID)
}
