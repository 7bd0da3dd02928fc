// Package surveys manages surveys on behalf of their owners.
package surveys

import (
	"context"
	"errors"
	"strings"
	"unicode/utf8"

	"github.com/google/uuid"
	"github.com/nikhilsahni7/SurveyDesk/apperr"
	"github.com/nikhilsahni7/SurveyDesk/auth"
	"github.com/nikhilsahni7/SurveyDesk/models"
	"github.com/nikhilsahni7/SurveyDesk/responses"
	"gorm.io/gorm"
	"gorm.io/gorm/clause"
)

const (
	maxTitleLen = 255
	PerPage     = 15
)

type Input struct {
	Title       string              `json:"title"`
	Description string              `json:"description"`
	Status      models.SurveyStatus `json:"status"`
}

type Patch struct {
	Title       *string              `json:"title"`
	Description *string              `json:"description"`
	Status      *models.SurveyStatus `json:"status"`
}

// View is a survey as presented to clients.
type View struct {
	models.Survey
	Link          string `json:"link,omitempty"`
	QuestionCount int64  `json:"question_count"`
	ResponseCount int64  `json:"response_count"`
}

type ListOptions struct {
	Title  string
	Status models.SurveyStatus
	// Sort is a column name, descending when prefixed with "-".
	Sort             string
	Page             int
	IncludeQuestions bool
}

type Page struct {
	Data        []View `json:"data"`
	CurrentPage int    `json:"current_page"`
	PerPage     int    `json:"per_page"`
	Total       int64  `json:"total"`
	LastPage    int    `json:"last_page"`
}

// likeEscaper makes LIKE match the title filter literally.
var likeEscaper = strings.NewReplacer(`\`, `\\`, "%", `\%`, "_", `\_`)

var sortable = map[string]bool{"created_at": true, "title": true, "updated_at": true}

type Service struct {
	db  *gorm.DB
	agg *responses.Aggregator
}

func NewService(db *gorm.DB, agg *responses.Aggregator) *Service {
	return &Service{db: db, agg: agg}
}

func (s *Service) Create(ctx context.Context, callerID uint, in Input) (*View, error) {
	if callerID == 0 {
		return nil, apperr.ErrUnauthenticated
	}
	survey := models.Survey{
		UserID:      callerID,
		Title:       strings.TrimSpace(in.Title),
		Description: in.Description,
		Status:      in.Status,
	}
	if survey.Status == "" {
		survey.Status = models.StatusDraft
	}
	if err := validate(&survey); err != nil {
		return nil, err
	}

	link := models.SurveyLink{Link: uuid.NewString(), IsActive: true}
	err := s.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		if err := tx.Create(&survey).Error; err != nil {
			return err
		}
		link.SurveyID = survey.ID
		return tx.Create(&link).Error
	})
	if err != nil {
		return nil, err
	}
	return &View{Survey: survey, Link: link.Link}, nil
}

func (s *Service) List(ctx context.Context, callerID uint, opts ListOptions) (*Page, error) {
	q := s.db.WithContext(ctx).Model(&models.Survey{}).Where("user_id = ?", callerID)
	if opts.Title != "" {
		q = q.Where(`LOWER(title) LIKE ? ESCAPE '\'`, "%"+likeEscaper.Replace(strings.ToLower(opts.Title))+"%")
	}
	if opts.Status != "" {
		q = q.Where("status = ?", opts.Status)
	}

	var total int64
	if err := q.Count(&total).Error; err != nil {
		return nil, err
	}

	sort := opts.Sort
	if sort == "" {
		sort = "-created_at"
	}
	desc := strings.HasPrefix(sort, "-")
	column := strings.TrimPrefix(sort, "-")
	if !sortable[column] {
		return nil, apperr.Validation("cannot sort by %q", column)
	}

	page := opts.Page
	if page < 1 {
		page = 1
	}

	q = q.Order(clause.OrderByColumn{Column: clause.Column{Name: column}, Desc: desc}).
		Order("id").
		Limit(PerPage).
		Offset((page - 1) * PerPage)
	if opts.IncludeQuestions {
		q = q.Preload("Questions", func(db *gorm.DB) *gorm.DB {
			return db.Order("position").Order("id")
		})
	}

	var surveys []models.Survey
	if err := q.Find(&surveys).Error; err != nil {
		return nil, err
	}

	out := &Page{
		Data:        make([]View, 0, len(surveys)),
		CurrentPage: page,
		PerPage:     PerPage,
		Total:       total,
		LastPage:    int((total + PerPage - 1) / PerPage),
	}
	if out.LastPage == 0 {
		out.LastPage = 1
	}
	for _, survey := range surveys {
		v, err := s.view(ctx, survey)
		if err != nil {
			return nil, err
		}
		out.Data = append(out.Data, *v)
	}
	return out, nil
}

func (s *Service) Get(ctx context.Context, callerID, surveyID uint) (*View, error) {
	survey, err := auth.Authorize(ctx, s.db, callerID, surveyID)
	if err != nil {
		return nil, err
	}
	return s.view(ctx, *survey)
}

// GetPublic returns a published survey with its questions.
func (s *Service) GetPublic(ctx context.Context, surveyID uint) (*View, error) {
	var survey models.Survey
	err := s.db.WithContext(ctx).
		Preload("Questions", func(db *gorm.DB) *gorm.DB {
			return db.Order("position").Order("id")
		}).
		First(&survey, surveyID).Error
	if errors.Is(err, gorm.ErrRecordNotFound) || (err == nil && !survey.AcceptsResponses()) {
		return nil, apperr.NotFound("survey", surveyID)
	}
	if err != nil {
		return nil, err
	}
	return s.view(ctx, survey)
}

// GetByLink resolves an active share link to its published survey.
func (s *Service) GetByLink(ctx context.Context, link string) (*View, error) {
	var surveyLink models.SurveyLink
	err := s.db.WithContext(ctx).Where("link = ? AND is_active = ?", link, true).First(&surveyLink).Error
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return nil, apperr.NotFound("survey link", link)
	}
	if err != nil {
		return nil, err
	}
	return s.GetPublic(ctx, surveyLink.SurveyID)
}

func (s *Service) Update(ctx context.Context, callerID, surveyID uint, p Patch) (*View, error) {
	survey, err := auth.Authorize(ctx, s.db, callerID, surveyID)
	if err != nil {
		return nil, err
	}
	if p.Title != nil {
		survey.Title = strings.TrimSpace(*p.Title)
	}
	if p.Description != nil {
		survey.Description = *p.Description
	}
	if p.Status != nil {
		survey.Status = *p.Status
	}
	if err := validate(survey); err != nil {
		return nil, err
	}
	if err := s.db.WithContext(ctx).Save(survey).Error; err != nil {
		return nil, err
	}
	return s.view(ctx, *survey)
}

// Delete removes the survey with its questions, answers and links.
func (s *Service) Delete(ctx context.Context, callerID, surveyID uint) error {
	survey, err := auth.Authorize(ctx, s.db, callerID, surveyID)
	if err != nil {
		return err
	}
	return s.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		for _, child := range []interface{}{&models.Answer{}, &models.Question{}, &models.SurveyLink{}, &models.Webhook{}} {
			if err := tx.Where("survey_id = ?", survey.ID).Delete(child).Error; err != nil {
				return err
			}
		}
		return tx.Delete(survey).Error
	})
}

func (s *Service) view(ctx context.Context, survey models.Survey) (*View, error) {
	v := &View{Survey: survey}
	var err error
	if v.QuestionCount, err = s.agg.QuestionCount(ctx, survey.ID); err != nil {
		return nil, err
	}
	if v.ResponseCount, err = s.agg.ResponseCount(ctx, survey.ID); err != nil {
		return nil, err
	}

	var link models.SurveyLink
	err = s.db.WithContext(ctx).Where("survey_id = ? AND is_active = ?", survey.ID, true).Limit(1).Find(&link).Error
	if err != nil {
		return nil, err
	}
	v.Link = link.Link
	return v, nil
}

func validate(survey *models.Survey) error {
	switch {
	case survey.Title == "":
		return apperr.Validation("survey title is required")
	case utf8.RuneCountInString(survey.Title) > maxTitleLen:
		return apperr.Validation("survey title may not be greater than %d characters", maxTitleLen)
	case !survey.Status.Valid():
		return apperr.Validation("invalid status %q", survey.Status)
	}
	return nil
}
