// Package responses records respondent submissions and groups stored answers
// back into responses.
package responses

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"unicode/utf8"

	"github.com/hashicorp/go-multierror"
	"github.com/nikhilsahni7/SurveyDesk/apperr"
	"github.com/nikhilsahni7/SurveyDesk/auth"
	"github.com/nikhilsahni7/SurveyDesk/codec"
	"github.com/nikhilsahni7/SurveyDesk/models"
	"gorm.io/gorm"
)

const maxRespondentIDLen = 255

type AnswerInput struct {
	QuestionID uint `json:"question_id"`
	Value      any  `json:"value"`
}

// Entry is a stored answer with its question and presentation value.
type Entry struct {
	models.Answer
	FormattedAnswer any `json:"formatted_answer"`
}

// Response is every answer one respondent gave to a survey.
type Response struct {
	RespondentID string  `json:"respondent_id"`
	Answers      []Entry `json:"answers"`
}

type Aggregator struct {
	db    *gorm.DB
	codec *codec.Codec
}

func NewAggregator(db *gorm.DB, c *codec.Codec) *Aggregator {
	if c == nil {
		c = codec.New("")
	}
	return &Aggregator{db: db, codec: c}
}

// Record stores one submission. Either every answer is written or none is.
func (a *Aggregator) Record(ctx context.Context, surveyID uint, respondentID string, answers []AnswerInput) (string, error) {
	var survey models.Survey
	err := a.db.WithContext(ctx).First(&survey, surveyID).Error
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return "", apperr.NotFound("survey", surveyID)
	}
	if err != nil {
		return "", err
	}
	if !survey.AcceptsResponses() {
		return "", apperr.ErrSurveyNotAvailable
	}

	respondentID = strings.TrimSpace(respondentID)
	switch {
	case respondentID == "":
		return "", apperr.Validation("respondent_id is required")
	case utf8.RuneCountInString(respondentID) > maxRespondentIDLen:
		return "", apperr.Validation("respondent_id may not be greater than %d characters", maxRespondentIDLen)
	case len(answers) == 0:
		return "", apperr.Validation("answers are required")
	}

	var questions []models.Question
	if err := a.db.WithContext(ctx).Where("survey_id = ?", surveyID).Find(&questions).Error; err != nil {
		return "", err
	}
	byID := make(map[uint]*models.Question, len(questions))
	for i := range questions {
		byID[questions[i].ID] = &questions[i]
	}

	for _, in := range answers {
		if _, ok := byID[in.QuestionID]; !ok {
			return "", fmt.Errorf("%w: question %d is not part of survey %d", apperr.ErrInvalidQuestionReference, in.QuestionID, surveyID)
		}
	}

	rows := make([]models.Answer, 0, len(answers))
	var errs *multierror.Error
	for _, in := range answers {
		q := byID[in.QuestionID]
		v, err := a.codec.Encode(q.Type, in.Value)
		if err != nil {
			errs = multierror.Append(errs, fmt.Errorf("question %d: %w", q.ID, err))
			continue
		}
		row := models.Answer{
			QuestionID:   q.ID,
			SurveyID:     q.SurveyID,
			RespondentID: respondentID,
		}
		codec.Apply(v, &row)
		rows = append(rows, row)
	}
	if err := errs.ErrorOrNil(); err != nil {
		return "", err
	}

	err = a.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		return tx.Create(&rows).Error
	})
	if err != nil {
		return "", err
	}
	return respondentID, nil
}

// List groups the survey's answers by respondent, in storage order.
func (a *Aggregator) List(ctx context.Context, callerID, surveyID uint) ([]Response, error) {
	if _, err := auth.Authorize(ctx, a.db, callerID, surveyID); err != nil {
		return nil, err
	}
	return a.ListBySurvey(ctx, surveyID)
}

func (a *Aggregator) ListBySurvey(ctx context.Context, surveyID uint) ([]Response, error) {
	var answers []models.Answer
	err := a.db.WithContext(ctx).
		Where("survey_id = ?", surveyID).
		Preload("Question").
		Order("id").
		Find(&answers).Error
	if err != nil {
		return nil, err
	}

	out := []Response{}
	index := make(map[string]int)
	for _, ans := range answers {
		entry := Entry{Answer: ans}
		if ans.Question != nil {
			entry.FormattedAnswer = codec.Display(&ans, ans.Question.Type)
		}

		i, ok := index[ans.RespondentID]
		if !ok {
			i = len(out)
			index[ans.RespondentID] = i
			out = append(out, Response{RespondentID: ans.RespondentID})
		}
		out[i].Answers = append(out[i].Answers, entry)
	}
	return out, nil
}

func (a *Aggregator) QuestionCount(ctx context.Context, surveyID uint) (int64, error) {
	var n int64
	err := a.db.WithContext(ctx).Model(&models.Question{}).Where("survey_id = ?", surveyID).Count(&n).Error
	return n, err
}

// ResponseCount counts distinct respondents, not answer rows.
func (a *Aggregator) ResponseCount(ctx context.Context, surveyID uint) (int64, error) {
	var n int64
	err := a.db.WithContext(ctx).
		Model(&models.Answer{}).
		Where("survey_id = ?", surveyID).
		Distinct("respondent_id").
		Count(&n).Error
	return n, err
}
