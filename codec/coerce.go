package codec

import (
	"encoding/json"
	"math"
	"strconv"
	"strings"
	"time"

	"github.com/nikhilsahni7/SurveyDesk/apperr"
)

var (
	dateTimeLayouts = []string{
		DateTimeLayout,
		"2006-01-02 15:04",
		time.RFC3339Nano,
		"2006-01-02T15:04:05",
		"2006-01-02T15:04",
	}
	timeLayouts = []string{TimeLayout, "15:04:05"}
)

func isBlank(raw any) bool {
	switch v := raw.(type) {
	case nil:
		return true
	case string:
		return strings.TrimSpace(v) == ""
	case []any:
		return len(v) == 0
	case []string:
		return len(v) == 0
	}
	return false
}

func scalarString(raw any) (string, error) {
	switch v := raw.(type) {
	case string:
		return v, nil
	case json.Number:
		return v.String(), nil
	case float64:
		return strconv.FormatFloat(v, 'f', -1, 64), nil
	case int:
		return strconv.Itoa(v), nil
	case int64:
		return strconv.FormatInt(v, 10), nil
	case bool:
		return strconv.FormatBool(v), nil
	}
	return "", apperr.Validation("expected a single value, got %T", raw)
}

func asList(raw any) ([]any, bool) {
	switch v := raw.(type) {
	case []any:
		return v, true
	case []string:
		items := make([]any, len(v))
		for i, s := range v {
			items[i] = s
		}
		return items, true
	}
	return nil, false
}

func listChoices(items []any) (Choices, error) {
	out := make(Choices, 0, len(items))
	for _, item := range items {
		s, err := scalarString(item)
		if err != nil {
			return nil, err
		}
		out = append(out, s)
	}
	return out, nil
}

func toInt(raw any) (int, error) {
	switch v := raw.(type) {
	case int:
		return v, nil
	case int64:
		return int(v), nil
	case float64:
		if v != math.Trunc(v) || math.IsInf(v, 0) {
			return 0, apperr.Validation("rating must be a whole number, got %v", v)
		}
		if v < math.MinInt || v >= -math.MinInt {
			return 0, apperr.Validation("rating is out of range, got %v", v)
		}
		return int(v), nil
	case json.Number:
		if n, err := v.Int64(); err == nil && n >= math.MinInt && n <= math.MaxInt {
			return int(n), nil
		}
		return 0, apperr.Validation("rating must be a whole number, got %s", v)
	case string:
		n, err := strconv.Atoi(strings.TrimSpace(v))
		if err != nil {
			return 0, apperr.Validation("rating must be a whole number, got %q", v)
		}
		return n, nil
	}
	return 0, apperr.Validation("rating must be a whole number, got %T", raw)
}

func parseDate(raw any) (time.Time, error) {
	s, ok := raw.(string)
	if !ok {
		return time.Time{}, apperr.Validation("date must be a string")
	}
	s = strings.TrimSpace(s)
	if t, err := time.Parse(DateLayout, s); err == nil {
		return t, nil
	}
	t, err := parseDateTime(s)
	if err != nil {
		return time.Time{}, apperr.Validation("invalid date %q", s)
	}
	y, m, d := t.Date()
	return time.Date(y, m, d, 0, 0, 0, 0, time.UTC), nil
}

func parseTimeOfDay(raw any) (time.Duration, error) {
	s, ok := raw.(string)
	if !ok {
		return 0, apperr.Validation("time must be a string")
	}
	s = strings.TrimSpace(s)
	for _, layout := range timeLayouts {
		t, err := time.Parse(layout, s)
		if err != nil {
			continue
		}
		return time.Duration(t.Hour())*time.Hour +
			time.Duration(t.Minute())*time.Minute +
			time.Duration(t.Second())*time.Second, nil
	}
	return 0, apperr.Validation("invalid time %q", s)
}

func parseDateTime(raw any) (time.Time, error) {
	s, ok := raw.(string)
	if !ok {
		return time.Time{}, apperr.Validation("datetime must be a string")
	}
	s = strings.TrimSpace(s)
	for _, layout := range dateTimeLayouts {
		if t, err := time.Parse(layout, s); err == nil {
			return t.UTC(), nil
		}
	}
	return time.Time{}, apperr.Validation("invalid datetime %q", s)
}
