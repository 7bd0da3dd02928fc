// Package questions owns the ordered question list of each survey.
package questions

import (
	"context"
	"errors"
	"strings"
	"unicode/utf8"

	"github.com/nikhilsahni7/SurveyDesk/apperr"
	"github.com/nikhilsahni7/SurveyDesk/auth"
	"github.com/nikhilsahni7/SurveyDesk/models"
	"github.com/nikhilsahni7/SurveyDesk/questiontype"
	"gorm.io/datatypes"
	"gorm.io/gorm"
	"gorm.io/gorm/clause"
)

const (
	maxTitleLen       = 255
	maxDescriptionLen = 1000
	maxOptionLen      = 255
)

// Input carries the fields of a new question. A nil Order appends the
// question after the survey's last one.
type Input struct {
	Title           string         `json:"title"`
	Description     *string        `json:"description"`
	Type            string         `json:"type"`
	Options         []string       `json:"options"`
	ValidationRules map[string]any `json:"validation_rules"`
	IsRequired      bool           `json:"is_required"`
	Order           *int           `json:"order"`
}

// Patch carries the fields to change; nil fields are left as they are.
type Patch struct {
	Title           *string         `json:"title"`
	Description     *string         `json:"description"`
	Type            *string         `json:"type"`
	Options         *[]string       `json:"options"`
	ValidationRules *map[string]any `json:"validation_rules"`
	IsRequired      *bool           `json:"is_required"`
	Order           *int            `json:"order"`
}

type Store struct {
	db *gorm.DB
}

func NewStore(db *gorm.DB) *Store {
	return &Store{db: db}
}

// byPosition sorts by order, then by insertion.
var byPosition = clause.OrderBy{Columns: []clause.OrderByColumn{
	{Column: clause.Column{Name: "position"}},
	{Column: clause.Column{Name: "id"}},
}}

func (s *Store) Create(ctx context.Context, callerID, surveyID uint, in Input) (*models.Question, error) {
	if _, err := auth.Authorize(ctx, s.db, callerID, surveyID); err != nil {
		return nil, err
	}

	q := models.Question{
		SurveyID:    surveyID,
		Title:       strings.TrimSpace(in.Title),
		Description: in.Description,
		Type:        questiontype.Kind(in.Type),
		Options:     datatypes.JSONSlice[string](in.Options),
		IsRequired:  in.IsRequired,
	}
	if in.ValidationRules != nil {
		q.ValidationRules = datatypes.JSONMap(in.ValidationRules)
	}
	if in.Order != nil {
		q.Order = *in.Order
	}
	if err := validate(&q); err != nil {
		return nil, err
	}

	err := s.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		if in.Order == nil {
			next, err := nextOrder(tx, surveyID)
			if err != nil {
				return err
			}
			q.Order = next
		}
		return tx.Create(&q).Error
	})
	if err != nil {
		return nil, err
	}
	return &q, nil
}

// nextOrder is one past the highest order in the survey, or 1 for an empty survey.
func nextOrder(tx *gorm.DB, surveyID uint) (int, error) {
	var max int
	err := tx.Model(&models.Question{}).
		Where("survey_id = ?", surveyID).
		Select("COALESCE(MAX(position), 0)").
		Scan(&max).Error
	return max + 1, err
}

// List returns the survey's questions for its owner.
func (s *Store) List(ctx context.Context, callerID, surveyID uint) ([]models.Question, error) {
	if _, err := auth.Authorize(ctx, s.db, callerID, surveyID); err != nil {
		return nil, err
	}
	return s.ListBySurvey(ctx, surveyID)
}

// ListPublic returns the questions of a published survey.
func (s *Store) ListPublic(ctx context.Context, surveyID uint) ([]models.Question, error) {
	var survey models.Survey
	err := s.db.WithContext(ctx).First(&survey, surveyID).Error
	if errors.Is(err, gorm.ErrRecordNotFound) || (err == nil && !survey.AcceptsResponses()) {
		return nil, apperr.NotFound("survey", surveyID)
	}
	if err != nil {
		return nil, err
	}
	return s.ListBySurvey(ctx, surveyID)
}

// ListBySurvey returns questions ascending by order, ties in insertion order.
func (s *Store) ListBySurvey(ctx context.Context, surveyID uint) ([]models.Question, error) {
	questions := []models.Question{}
	err := s.db.WithContext(ctx).
		Where("survey_id = ?", surveyID).
		Clauses(byPosition).
		Find(&questions).Error
	return questions, err
}

// Get returns a question whose survey callerID owns.
func (s *Store) Get(ctx context.Context, callerID, questionID uint) (*models.Question, error) {
	var q models.Question
	err := s.db.WithContext(ctx).First(&q, questionID).Error
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return nil, apperr.NotFound("question", questionID)
	}
	if err != nil {
		return nil, err
	}
	if _, err := auth.Authorize(ctx, s.db, callerID, q.SurveyID); err != nil {
		return nil, err
	}
	return &q, nil
}

func (s *Store) Update(ctx context.Context, callerID, questionID uint, p Patch) (*models.Question, error) {
	q, err := s.Get(ctx, callerID, questionID)
	if err != nil {
		return nil, err
	}

	if p.Title != nil {
		q.Title = strings.TrimSpace(*p.Title)
	}
	if p.Description != nil {
		q.Description = p.Description
	}
	if p.Type != nil {
		q.Type = questiontype.Kind(*p.Type)
	}
	if p.Options != nil {
		q.Options = datatypes.JSONSlice[string](*p.Options)
	}
	if p.ValidationRules != nil {
		q.ValidationRules = datatypes.JSONMap(*p.ValidationRules)
	}
	if p.IsRequired != nil {
		q.IsRequired = *p.IsRequired
	}
	if p.Order != nil {
		q.Order = *p.Order
	}
	if err := validate(q); err != nil {
		return nil, err
	}

	if err := s.db.WithContext(ctx).Save(q).Error; err != nil {
		return nil, err
	}
	return q, nil
}

// Delete removes the question together with its answers.
func (s *Store) Delete(ctx context.Context, callerID, questionID uint) error {
	q, err := s.Get(ctx, callerID, questionID)
	if err != nil {
		return err
	}
	return s.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		if err := tx.Where("question_id = ?", q.ID).Delete(&models.Answer{}).Error; err != nil {
			return err
		}
		return tx.Delete(q).Error
	})
}

func validate(q *models.Question) error {
	d, err := questiontype.Lookup(string(q.Type))
	if err != nil {
		return err
	}
	switch {
	case q.Title == "":
		return apperr.Validation("question title is required")
	case utf8.RuneCountInString(q.Title) > maxTitleLen:
		return apperr.Validation("question title may not be greater than %d characters", maxTitleLen)
	case q.Description != nil && utf8.RuneCountInString(*q.Description) > maxDescriptionLen:
		return apperr.Validation("question description may not be greater than %d characters", maxDescriptionLen)
	case q.Order < 0:
		return apperr.Validation("order must be at least 0")
	case d.RequiresOptions && len(q.Options) == 0:
		return apperr.Validation("%s questions require options", d.Kind)
	}
	for _, opt := range q.Options {
		if utf8.RuneCountInString(opt) > maxOptionLen {
			return apperr.Validation("each option may not be greater than %d characters", maxOptionLen)
		}
	}
	return nil
}
