package surveys

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"testing"

	"github.com/nikhilsahni7/SurveyDesk/apperr"
	"github.com/nikhilsahni7/SurveyDesk/models"
	"github.com/nikhilsahni7/SurveyDesk/questiontype"
	"github.com/nikhilsahni7/SurveyDesk/responses"
	"github.com/nikhilsahni7/SurveyDesk/testutil"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"gorm.io/gorm"
)

func newService(gdb *gorm.DB) *Service {
	return NewService(gdb, responses.NewAggregator(gdb, nil))
}

func TestCreateSurvey(t *testing.T) {
	testDB := testutil.SetupTestDB(t)
	owner := testutil.CreateUser(t, testDB, "owner@example.com")
	svc := newService(testDB)
	ctx := context.Background()

	v, err := svc.Create(ctx, owner.ID, Input{Title: " Customer feedback ", Description: "Q3"})
	require.NoError(t, err)
	assert.Equal(t, "Customer feedback", v.Title)
	assert.Equal(t, models.StatusDraft, v.Status)
	assert.NotEmpty(t, v.Link)

	var link models.SurveyLink
	require.NoError(t, testDB.Where("survey_id = ?", v.ID).First(&link).Error)
	assert.Equal(t, v.Link, link.Link)
	assert.True(t, link.IsActive)

	_, err = svc.Create(ctx, owner.ID, Input{Title: ""})
	assert.True(t, errors.Is(err, apperr.ErrValidation))

	_, err = svc.Create(ctx, owner.ID, Input{Title: "x", Status: "archived"})
	assert.True(t, errors.Is(err, apperr.ErrValidation))

	_, err = svc.Create(ctx, owner.ID, Input{Title: strings.Repeat("é", 255)})
	require.NoError(t, err)
	_, err = svc.Create(ctx, owner.ID, Input{Title: strings.Repeat("é", 256)})
	assert.True(t, errors.Is(err, apperr.ErrValidation))

	_, err = svc.Create(ctx, 0, Input{Title: "x"})
	assert.True(t, errors.Is(err, apperr.ErrUnauthenticated))
}

func TestListSurveys(t *testing.T) {
	testDB := testutil.SetupTestDB(t)
	owner := testutil.CreateUser(t, testDB, "owner@example.com")
	other := testutil.CreateUser(t, testDB, "other@example.com")
	svc := newService(testDB)
	ctx := context.Background()

	for i := 0; i < 17; i++ {
		status := models.StatusDraft
		if i%2 == 0 {
			status = models.StatusPublished
		}
		_, err := svc.Create(ctx, owner.ID, Input{Title: fmt.Sprintf("Survey %02d", i), Status: status})
		require.NoError(t, err)
	}
	_, err := svc.Create(ctx, other.ID, Input{Title: "Not mine"})
	require.NoError(t, err)

	page, err := svc.List(ctx, owner.ID, ListOptions{Sort: "title"})
	require.NoError(t, err)
	assert.EqualValues(t, 17, page.Total)
	assert.Equal(t, 2, page.LastPage)
	require.Len(t, page.Data, PerPage)
	assert.Equal(t, "Survey 00", page.Data[0].Title)

	page, err = svc.List(ctx, owner.ID, ListOptions{Sort: "-title", Page: 2})
	require.NoError(t, err)
	require.Len(t, page.Data, 2)
	assert.Equal(t, "Survey 01", page.Data[0].Title)
	assert.Equal(t, "Survey 00", page.Data[1].Title)

	page, err = svc.List(ctx, owner.ID, ListOptions{Status: models.StatusPublished})
	require.NoError(t, err)
	assert.EqualValues(t, 9, page.Total)

	page, err = svc.List(ctx, owner.ID, ListOptions{Title: "survey 1"})
	require.NoError(t, err)
	assert.EqualValues(t, 7, page.Total)

	_, err = svc.List(ctx, owner.ID, ListOptions{Sort: "password_hash"})
	assert.True(t, errors.Is(err, apperr.ErrValidation))
}

func TestListTitleFilterIsLiteral(t *testing.T) {
	testDB := testutil.SetupTestDB(t)
	owner := testutil.CreateUser(t, testDB, "owner@example.com")
	svc := newService(testDB)
	ctx := context.Background()

	for _, title := range []string{"100% satisfied", "100 satisfied", "room_a", "roomba", `C:	emp`} {
		_, err := svc.Create(ctx, owner.ID, Input{Title: title})
		require.NoError(t, err)
	}

	for filter, want := range map[string]string{"100%": "100% satisfied", "m_a": "room_a", `:	`: `C:	emp`} {
		page, err := svc.List(ctx, owner.ID, ListOptions{Title: filter})
		require.NoError(t, err)
		require.Len(t, page.Data, 1, filter)
		assert.Equal(t, want, page.Data[0].Title)
	}
}

func TestGetUpdateDelete(t *testing.T) {
	testDB := testutil.SetupTestDB(t)
	owner := testutil.CreateUser(t, testDB, "owner@example.com")
	other := testutil.CreateUser(t, testDB, "other@example.com")
	svc := newService(testDB)
	ctx := context.Background()

	created, err := svc.Create(ctx, owner.ID, Input{Title: "Event feedback"})
	require.NoError(t, err)
	q := models.Question{SurveyID: created.ID, Title: "Name", Type: questiontype.TextShort, Order: 1}
	require.NoError(t, testDB.Create(&q).Error)

	_, err = svc.Get(ctx, other.ID, created.ID)
	assert.True(t, errors.Is(err, apperr.ErrForbidden))
	_, err = svc.Get(ctx, owner.ID, 9999)
	assert.True(t, errors.Is(err, apperr.ErrNotFound))

	v, err := svc.Get(ctx, owner.ID, created.ID)
	require.NoError(t, err)
	assert.EqualValues(t, 1, v.QuestionCount)
	assert.Zero(t, v.ResponseCount)

	_, err = svc.GetPublic(ctx, created.ID)
	assert.True(t, errors.Is(err, apperr.ErrNotFound), "draft surveys are not public")

	published := models.StatusPublished
	v, err = svc.Update(ctx, owner.ID, created.ID, Patch{Status: &published})
	require.NoError(t, err)
	assert.Equal(t, models.StatusPublished, v.Status)

	public, err := svc.GetByLink(ctx, created.Link)
	require.NoError(t, err)
	assert.Equal(t, created.ID, public.ID)
	require.Len(t, public.Questions, 1)

	_, err = svc.GetByLink(ctx, "missing")
	assert.True(t, errors.Is(err, apperr.ErrNotFound))

	blank := ""
	_, err = svc.Update(ctx, owner.ID, created.ID, Patch{Title: &blank})
	assert.True(t, errors.Is(err, apperr.ErrValidation))

	_, err = responses.NewAggregator(testDB, nil).Record(ctx, created.ID, "r1", []responses.AnswerInput{{QuestionID: q.ID, Value: "Ann"}})
	require.NoError(t, err)

	assert.True(t, errors.Is(svc.Delete(ctx, other.ID, created.ID), apperr.ErrForbidden))
	require.NoError(t, svc.Delete(ctx, owner.ID, created.ID))

	for _, model := range []interface{}{&models.Question{}, &models.Answer{}, &models.SurveyLink{}} {
		var n int64
		require.NoError(t, testDB.Model(model).Where("survey_id = ?", created.ID).Count(&n).Error)
		assert.Zero(t, n)
	}
	_, err = svc.Get(ctx, owner.ID, created.ID)
	assert.True(t, errors.Is(err, apperr.ErrNotFound))
}
