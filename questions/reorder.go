package questions

import (
	"context"

	"github.com/nikhilsahni7/SurveyDesk/apperr"
	"github.com/nikhilsahni7/SurveyDesk/auth"
	"github.com/nikhilsahni7/SurveyDesk/models"
	"gorm.io/gorm"
)

type ReorderResult struct {
	Updated []uint `json:"updated"`
	// Skipped holds ids that do not belong to the survey.
	Skipped []uint `json:"skipped"`
}

// Reorder gives the question at position i of ids the order i+1. Questions
// not named keep their order.
func (s *Store) Reorder(ctx context.Context, callerID, surveyID uint, ids []uint) (*ReorderResult, error) {
	if _, err := auth.Authorize(ctx, s.db, callerID, surveyID); err != nil {
		return nil, err
	}
	if len(ids) == 0 {
		return nil, apperr.ErrEmptyReorderRequest
	}

	res := &ReorderResult{Updated: []uint{}, Skipped: []uint{}}
	err := s.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		for i, id := range ids {
			result := tx.Model(&models.Question{}).
				Where("id = ? AND survey_id = ?", id, surveyID).
				Update("position", i+1)
			if result.Error != nil {
				return result.Error
			}
			if result.RowsAffected == 0 {
				res.Skipped = append(res.Skipped, id)
				continue
			}
			res.Updated = append(res.Updated, id)
		}
		return nil
	})
	if err != nil {
		return nil, err
	}
	return res, nil
}
