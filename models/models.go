package models

import (
	"time"

	"github.com/nikhilsahni7/SurveyDesk/questiontype"
	"gorm.io/datatypes"
	"gorm.io/gorm"
)

type Base struct {
	ID        uint           `gorm:"primaryKey" json:"id"`
	CreatedAt time.Time      `json:"created_at"`
	UpdatedAt time.Time      `json:"updated_at"`
	DeletedAt gorm.DeletedAt `gorm:"index" json:"-"`
}

type User struct {
	Base
	Email        string  `gorm:"uniqueIndex" json:"email"`
	Name         string  `json:"name"`
	GoogleID     *string `gorm:"uniqueIndex" json:"-"`
	Picture      string  `json:"picture,omitempty"`
	PasswordHash string  `json:"-"`
	Surveys      []Survey `json:"-"`
}

type SurveyStatus string

const (
	StatusDraft     SurveyStatus = "draft"
	StatusPublished SurveyStatus = "published"
	StatusClosed    SurveyStatus = "closed"
)

func (s SurveyStatus) Valid() bool {
	switch s {
	case StatusDraft, StatusPublished, StatusClosed:
		return true
	}
	return false
}

type Survey struct {
	Base
	UserID      uint         `gorm:"index" json:"user_id"`
	Title       string       `json:"title"`
	Description string       `json:"description"`
	Status      SurveyStatus `gorm:"default:draft;index" json:"status"`
	Questions   []Question   `gorm:"constraint:OnDelete:CASCADE" json:"questions,omitempty"`
	Answers     []Answer     `gorm:"constraint:OnDelete:CASCADE" json:"-"`
	Links       []SurveyLink `gorm:"constraint:OnDelete:CASCADE" json:"-"`
}

func (s *Survey) AcceptsResponses() bool {
	return s.Status == StatusPublished
}

type Question struct {
	Base
	SurveyID        uint                        `gorm:"index:idx_question_survey_position,priority:1" json:"survey_id"`
	Title           string                      `json:"title"`
	Description     *string                     `json:"description"`
	Type            questiontype.Kind           `gorm:"index" json:"type"`
	Options         datatypes.JSONSlice[string] `json:"options"`
	ValidationRules datatypes.JSONMap           `json:"validation_rules"`
	IsRequired      bool                        `json:"is_required"`
	// "order" is reserved in SQL.
	Order   int      `gorm:"column:position;index:idx_question_survey_position,priority:2" json:"order"`
	Answers []Answer `gorm:"constraint:OnDelete:CASCADE" json:"-"`
}

// Answer holds one respondent's value for one question. Exactly one value
// slot is populated, chosen by the question's type.
type Answer struct {
	Base
	QuestionID      uint                        `gorm:"index;index:idx_answer_question_respondent,priority:1" json:"question_id"`
	SurveyID        uint                        `gorm:"index;index:idx_answer_survey_respondent,priority:1" json:"survey_id"`
	RespondentID    string                      `gorm:"size:255;index:idx_answer_survey_respondent,priority:2;index:idx_answer_question_respondent,priority:2" json:"respondent_id"`
	TextAnswer      *string                     `json:"text_answer"`
	SelectedOptions datatypes.JSONSlice[string] `json:"selected_options"`
	RatingValue     *int                        `json:"rating_value"`
	BooleanAnswer   *bool                       `json:"boolean_answer"`
	DateAnswer      *datatypes.Date             `json:"date_answer"`
	TimeAnswer      *datatypes.Time             `json:"time_answer"`
	DatetimeAnswer  *time.Time                  `json:"datetime_answer"`
	FilePath        *string                     `json:"file_path"`
	FileName        *string                     `json:"file_name"`
	Question        *Question                   `gorm:"foreignKey:QuestionID" json:"question,omitempty"`
}

type SurveyLink struct {
	Base
	SurveyID uint   `gorm:"index" json:"survey_id"`
	Link     string `gorm:"uniqueIndex" json:"link"`
	IsActive bool   `json:"is_active"`
}

type Webhook struct {
	Base
	UserID   uint   `gorm:"index" json:"user_id"`
	SurveyID uint   `gorm:"index" json:"survey_id"`
	URL      string `json:"url"`
	Events   string `json:"events"`
	Secret   string `json:"secret,omitempty"`
}

// All lists every model in migration order.
func All() []interface{} {
	return []interface{}{
		&User{},
		&Survey{},
		&Question{},
		&Answer{},
		&SurveyLink{},
		&Webhook{},
	}
}
