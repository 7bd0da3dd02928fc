package handlers

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"net/http"
	"net/url"
	"strings"
	"sync"
	"time"

	"github.com/nikhilsahni7/SurveyDesk/apperr"
	"github.com/nikhilsahni7/SurveyDesk/auth"
	"github.com/nikhilsahni7/SurveyDesk/db"
	"github.com/nikhilsahni7/SurveyDesk/log"
	"github.com/nikhilsahni7/SurveyDesk/models"
	"gorm.io/gorm"
)

const EventResponseSubmitted = "response_submitted"

var (
	webhookClient = &http.Client{Timeout: 10 * time.Second}
	// deliveries counts in-flight webhook posts.
	deliveries sync.WaitGroup
)

type webhookInput struct {
	SurveyID uint   `json:"survey_id"`
	URL      string `json:"url"`
	Events   string `json:"events"`
	Secret   string `json:"secret"`
}

type webhookPayload struct {
	Event        string `json:"event"`
	SurveyID     uint   `json:"survey_id"`
	RespondentID string `json:"respondent_id"`
	Answers      int    `json:"answers"`
}

func CreateWebhook(w http.ResponseWriter, r *http.Request) {
	var input webhookInput
	if !decodeJSON(w, r, &input) {
		return
	}
	if err := validateWebhook(&input); err != nil {
		writeError(w, "", err)
		return
	}

	if _, err := auth.Authorize(r.Context(), db.GetDB(), callerID(r), input.SurveyID); err != nil {
		writeError(w, "db.select_survey", err)
		return
	}

	webhook := models.Webhook{
		UserID:   callerID(r),
		SurveyID: input.SurveyID,
		URL:      input.URL,
		Events:   input.Events,
		Secret:   input.Secret,
	}
	if err := db.GetDB().WithContext(r.Context()).Create(&webhook).Error; err != nil {
		writeError(w, "db.insert_webhook", err)
		return
	}
	writeJSON(w, http.StatusCreated, webhook)
}

func ListWebhooks(w http.ResponseWriter, r *http.Request) {
	webhooks := []models.Webhook{}
	err := db.GetDB().WithContext(r.Context()).
		Where("user_id = ?", callerID(r)).
		Order("id").
		Find(&webhooks).Error
	if err != nil {
		writeError(w, "db.select_webhooks", err)
		return
	}
	writeJSON(w, http.StatusOK, webhooks)
}

func UpdateWebhook(w http.ResponseWriter, r *http.Request) {
	id, ok := pathID(w, r, "id")
	if !ok {
		return
	}
	var input webhookInput
	if !decodeJSON(w, r, &input) {
		return
	}

	webhook, err := ownedWebhook(r.Context(), callerID(r), id)
	if err != nil {
		writeError(w, "db.select_webhook", err)
		return
	}

	input.SurveyID = webhook.SurveyID
	if err := validateWebhook(&input); err != nil {
		writeError(w, "", err)
		return
	}
	webhook.URL = input.URL
	webhook.Events = input.Events
	webhook.Secret = input.Secret

	if err := db.GetDB().WithContext(r.Context()).Save(webhook).Error; err != nil {
		writeError(w, "db.update_webhook", err)
		return
	}
	writeJSON(w, http.StatusOK, webhook)
}

func DeleteWebhook(w http.ResponseWriter, r *http.Request) {
	id, ok := pathID(w, r, "id")
	if !ok {
		return
	}

	webhook, err := ownedWebhook(r.Context(), callerID(r), id)
	if err != nil {
		writeError(w, "db.select_webhook", err)
		return
	}
	if err := db.GetDB().WithContext(r.Context()).Delete(webhook).Error; err != nil {
		writeError(w, "db.delete_webhook", err)
		return
	}
	writeMessage(w, http.StatusOK, "Webhook deleted successfully")
}

func ownedWebhook(ctx context.Context, userID, id uint) (*models.Webhook, error) {
	var webhook models.Webhook
	err := db.GetDB().WithContext(ctx).First(&webhook, id).Error
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return nil, apperr.NotFound("webhook", id)
	}
	if err != nil {
		return nil, err
	}
	if webhook.UserID != userID {
		return nil, apperr.ErrForbidden
	}
	return &webhook, nil
}

func validateWebhook(input *webhookInput) error {
	u, err := url.Parse(input.URL)
	if err != nil || (u.Scheme != "http" && u.Scheme != "https") || u.Host == "" {
		return apperr.Validation("url must be an absolute http(s) URL")
	}
	if strings.TrimSpace(input.Events) == "" {
		input.Events = EventResponseSubmitted
	}
	return nil
}

func subscribes(hook models.Webhook, event string) bool {
	for _, e := range strings.Split(hook.Events, ",") {
		if e = strings.TrimSpace(e); e == event || e == "*" {
			return true
		}
	}
	return false
}

// TriggerWebhook notifies the survey's webhooks of a submission. Posts run in
// the background; failures are only logged.
func TriggerWebhook(surveyID uint, respondentID string, answers int) {
	var webhooks []models.Webhook
	if err := db.GetDB().Where("survey_id = ?", surveyID).Find(&webhooks).Error; err != nil {
		log.Errorf("db.select_webhooks: %v", err)
		return
	}

	payload := webhookPayload{
		Event:        EventResponseSubmitted,
		SurveyID:     surveyID,
		RespondentID: respondentID,
		Answers:      answers,
	}
	for _, hook := range webhooks {
		if !subscribes(hook, EventResponseSubmitted) {
			continue
		}
		deliveries.Add(1)
		go func(hook models.Webhook) {
			defer deliveries.Done()
			if err := deliverWebhook(context.Background(), hook, payload); err != nil {
				log.Warnf("webhook.deliver %d: %v", hook.ID, err)
			}
		}(hook)
	}
}

// WaitWebhooks blocks until every pending webhook post has finished.
func WaitWebhooks() {
	deliveries.Wait()
}

func deliverWebhook(ctx context.Context, hook models.Webhook, payload webhookPayload) error {
	body, err := json.Marshal(payload)
	if err != nil {
		return err
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodPost, hook.URL, bytes.NewReader(body))
	if err != nil {
		return err
	}
	req.Header.Set("Content-Type", "application/json")
	req.Header.Set("X-Webhook-Secret", hook.Secret)

	resp, err := webhookClient.Do(req)
	if err != nil {
		return err
	}
	defer resp.Body.Close()
	if resp.StatusCode >= 300 {
		return fmt.Errorf("unexpected status %s", resp.Status)
	}
	log.Debugf("webhook.deliver %d: %s", hook.ID, resp.Status)
	return nil
}
