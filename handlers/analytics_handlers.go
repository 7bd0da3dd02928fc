package handlers

import (
	"encoding/csv"
	"fmt"
	"net/http"

	"github.com/nikhilsahni7/SurveyDesk/codec"
	"github.com/nikhilsahni7/SurveyDesk/models"
	"github.com/nikhilsahni7/SurveyDesk/questiontype"
	"github.com/nikhilsahni7/SurveyDesk/responses"
)

type QuestionAnalytics struct {
	QuestionID   uint              `json:"question_id"`
	Title        string            `json:"title"`
	Type         questiontype.Kind `json:"type"`
	TypeLabel    string            `json:"type_label"`
	AnswerCount  int               `json:"answer_count"`
	OptionCounts map[string]int    `json:"option_counts,omitempty"`
	Average      *float64          `json:"average,omitempty"`
	YesCount     *int              `json:"yes_count,omitempty"`
	NoCount      *int              `json:"no_count,omitempty"`
	Answers      []any             `json:"answers,omitempty"`
}

type SurveyAnalytics struct {
	SurveyID       uint                `json:"survey_id"`
	TotalResponses int                 `json:"total_responses"`
	Questions      []QuestionAnalytics `json:"questions"`
}

func GetSurveyAnalytics(w http.ResponseWriter, r *http.Request) {
	surveyID, ok := pathID(w, r, "id")
	if !ok {
		return
	}

	grouped, err := aggregator().List(r.Context(), callerID(r), surveyID)
	if err != nil {
		writeError(w, "db.select_answers", err)
		return
	}
	qs, err := questionStore().ListBySurvey(r.Context(), surveyID)
	if err != nil {
		writeError(w, "db.select_questions", err)
		return
	}

	writeJSON(w, http.StatusOK, calculateAnalytics(surveyID, qs, grouped))
}

func calculateAnalytics(surveyID uint, qs []models.Question, grouped []responses.Response) SurveyAnalytics {
	out := SurveyAnalytics{
		SurveyID:       surveyID,
		TotalResponses: len(grouped),
		Questions:      make([]QuestionAnalytics, 0, len(qs)),
	}

	byQuestion := make(map[uint][]models.Answer)
	for _, resp := range grouped {
		for _, entry := range resp.Answers {
			byQuestion[entry.QuestionID] = append(byQuestion[entry.QuestionID], entry.Answer)
		}
	}

	for _, q := range qs {
		qa := QuestionAnalytics{QuestionID: q.ID, Title: q.Title, Type: q.Type, TypeLabel: q.Type.Label()}
		var sum, rated, yes, no int
		for i := range byQuestion[q.ID] {
			v := codec.Decode(&byQuestion[q.ID][i], q.Type)
			if v == nil {
				continue
			}
			qa.AnswerCount++

			switch v := v.(type) {
			case codec.Choices:
				if qa.OptionCounts == nil {
					qa.OptionCounts = make(map[string]int)
				}
				for _, opt := range v {
					qa.OptionCounts[opt]++
				}
			case codec.Rating:
				sum += int(v)
				rated++
			case codec.YesNo:
				if v {
					yes++
				} else {
					no++
				}
			default:
				qa.Answers = append(qa.Answers, v.Display())
			}
		}

		switch d, _ := q.Type.Descriptor(); d.Slot {
		case questiontype.SlotRating:
			if rated > 0 {
				avg := float64(sum) / float64(rated)
				qa.Average = &avg
			}
		case questiontype.SlotBoolean:
			qa.YesCount, qa.NoCount = &yes, &no
		}
		out.Questions = append(out.Questions, qa)
	}
	return out
}

// ExportSurveyData writes one CSV row per respondent with a column per
// question. A respondent who answered a question twice shows the latest answer.
func ExportSurveyData(w http.ResponseWriter, r *http.Request) {
	surveyID, ok := pathID(w, r, "id")
	if !ok {
		return
	}

	grouped, err := aggregator().List(r.Context(), callerID(r), surveyID)
	if err != nil {
		writeError(w, "db.select_answers", err)
		return
	}
	qs, err := questionStore().ListBySurvey(r.Context(), surveyID)
	if err != nil {
		writeError(w, "db.select_questions", err)
		return
	}

	w.Header().Set("Content-Type", "text/csv")
	w.Header().Set("Content-Disposition", fmt.Sprintf("attachment;filename=survey_%d_responses.csv", surveyID))

	csvWriter := csv.NewWriter(w)
	for _, row := range exportRows(qs, grouped) {
		if err := csvWriter.Write(row); err != nil {
			writeError(w, "csv.write", err)
			return
		}
	}
	csvWriter.Flush()
	if err := csvWriter.Error(); err != nil {
		writeError(w, "csv.flush", err)
	}
}

func exportRows(qs []models.Question, grouped []responses.Response) [][]string {
	header := []string{"Respondent ID", "Submitted At"}
	column := make(map[uint]int, len(qs))
	for i, q := range qs {
		header = append(header, q.Title)
		column[q.ID] = i + 2
	}

	rows := [][]string{header}
	for _, resp := range grouped {
		row := make([]string, len(header))
		row[0] = resp.RespondentID
		for _, entry := range resp.Answers {
			i, ok := column[entry.QuestionID]
			if !ok || entry.Question == nil {
				continue
			}
			row[i] = codec.DisplayString(&entry.Answer, entry.Question.Type)
			row[1] = entry.CreatedAt.UTC().Format(codec.DateTimeLayout)
		}
		rows = append(rows, row)
	}
	return rows
}
