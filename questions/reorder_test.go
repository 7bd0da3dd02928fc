package questions

import (
	"context"
	"errors"
	"testing"

	"github.com/nikhilsahni7/SurveyDesk/apperr"
	"github.com/nikhilsahni7/SurveyDesk/models"
	"github.com/nikhilsahni7/SurveyDesk/testutil"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestReorder(t *testing.T) {
	testDB := testutil.SetupTestDB(t)
	owner := testutil.CreateUser(t, testDB, "owner@example.com")
	survey := testutil.CreateSurvey(t, testDB, owner.ID, models.StatusDraft)
	otherSurvey := testutil.CreateSurvey(t, testDB, owner.ID, models.StatusDraft)
	store := NewStore(testDB)
	ctx := context.Background()

	create := func(surveyID uint, title string) *models.Question {
		q, err := store.Create(ctx, owner.ID, surveyID, Input{Title: title, Type: "text_short"})
		require.NoError(t, err)
		return q
	}
	q1 := create(survey.ID, "q1")
	q2 := create(survey.ID, "q2")
	q3 := create(survey.ID, "q3")
	q4 := create(survey.ID, "q4")
	foreign := create(otherSurvey.ID, "foreign")

	t.Run("applies the given sequence", func(t *testing.T) {
		res, err := store.Reorder(ctx, owner.ID, survey.ID, []uint{q3.ID, q1.ID, q2.ID})
		require.NoError(t, err)
		assert.Equal(t, []uint{q3.ID, q1.ID, q2.ID}, res.Updated)
		assert.Empty(t, res.Skipped)

		qs, err := store.ListBySurvey(ctx, survey.ID)
		require.NoError(t, err)
		assert.Equal(t, []string{"q3", "q1", "q2", "q4"}, titles(qs))

		var unnamed models.Question
		require.NoError(t, testDB.First(&unnamed, q4.ID).Error)
		assert.Equal(t, 4, unnamed.Order, "questions not named keep their order")
	})

	t.Run("skips ids of other surveys", func(t *testing.T) {
		res, err := store.Reorder(ctx, owner.ID, survey.ID, []uint{foreign.ID, q4.ID})
		require.NoError(t, err)
		assert.Equal(t, []uint{foreign.ID}, res.Skipped)
		assert.Equal(t, []uint{q4.ID}, res.Updated)

		var untouched models.Question
		require.NoError(t, testDB.First(&untouched, foreign.ID).Error)
		assert.Equal(t, 1, untouched.Order)

		qs, err := store.ListBySurvey(ctx, survey.ID)
		require.NoError(t, err)
		// q4 and q1 now share order 2; ties fall back to insertion order.
		assert.Equal(t, []string{"q3", "q1", "q4", "q2"}, titles(qs))
	})

	t.Run("rejects an empty list", func(t *testing.T) {
		_, err := store.Reorder(ctx, owner.ID, survey.ID, nil)
		assert.True(t, errors.Is(err, apperr.ErrEmptyReorderRequest))
	})

	t.Run("owner only", func(t *testing.T) {
		other := testutil.CreateUser(t, testDB, "other@example.com")
		_, err := store.Reorder(ctx, other.ID, survey.ID, []uint{q1.ID})
		assert.True(t, errors.Is(err, apperr.ErrForbidden))

		_, err = store.Reorder(ctx, other.ID, survey.ID, nil)
		assert.True(t, errors.Is(err, apperr.ErrForbidden), "ownership is checked before the list")
	})
}
