package auth

import (
	"context"
	"errors"

	"github.com/nikhilsahni7/SurveyDesk/apperr"
	"github.com/nikhilsahni7/SurveyDesk/models"
	"gorm.io/gorm"
)

// Owns is the single capability check for owner-only survey operations.
func Owns(callerID uint, survey *models.Survey) bool {
	return survey != nil && callerID != 0 && survey.UserID == callerID
}

// Authorize loads the survey and checks that callerID owns it.
func Authorize(ctx context.Context, gdb *gorm.DB, callerID uint, surveyID uint) (*models.Survey, error) {
	if callerID == 0 {
		return nil, apperr.ErrUnauthenticated
	}

	var survey models.Survey
	err := gdb.WithContext(ctx).First(&survey, surveyID).Error
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return nil, apperr.NotFound("survey", surveyID)
	}
	if err != nil {
		return nil, err
	}
	if !Owns(callerID, &survey) {
		return nil, apperr.ErrForbidden
	}
	return &survey, nil
}
