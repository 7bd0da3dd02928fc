// Package codec converts submitted answer values into the typed slot their
// question kind stores them in, and reads stored answers back for display.
//
// Value is a closed set: every variant lives in this package and the
// unexported apply method keeps other packages from adding more.
package codec

import (
	"fmt"
	"strings"
	"time"

	"github.com/nikhilsahni7/SurveyDesk/apperr"
	"github.com/nikhilsahni7/SurveyDesk/models"
	"github.com/nikhilsahni7/SurveyDesk/questiontype"
	"gorm.io/datatypes"
)

const (
	DateLayout     = "2006-01-02"
	TimeLayout     = "15:04"
	DateTimeLayout = "2006-01-02 15:04:05"

	DefaultUploadPrefix = "uploads/"
)

type Value interface {
	// Display returns the value in its presentation form.
	Display() any
	apply(a *models.Answer)
}

type (
	Text      string
	Choices   []string
	Rating    int
	YesNo     bool
	Date      time.Time
	TimeOfDay time.Duration
	DateTime  time.Time
	File      struct {
		Name string
		Path string
	}
)

func (v Text) Display() any { return string(v) }
func (v Text) apply(a *models.Answer) {
	s := string(v)
	a.TextAnswer = &s
}

func (v Choices) Display() any { return []string(v) }
func (v Choices) apply(a *models.Answer) {
	a.SelectedOptions = datatypes.JSONSlice[string](append([]string{}, v...))
}

func (v Rating) Display() any { return int(v) }
func (v Rating) apply(a *models.Answer) {
	n := int(v)
	a.RatingValue = &n
}

func (v YesNo) Display() any {
	if v {
		return "Yes"
	}
	return "No"
}
func (v YesNo) apply(a *models.Answer) {
	b := bool(v)
	a.BooleanAnswer = &b
}

func (v Date) Display() any { return time.Time(v).Format(DateLayout) }
func (v Date) apply(a *models.Answer) {
	d := datatypes.Date(time.Time(v))
	a.DateAnswer = &d
}

func (v TimeOfDay) Display() any {
	d := time.Duration(v)
	return fmt.Sprintf("%02d:%02d", int(d/time.Hour), int(d%time.Hour/time.Minute))
}
func (v TimeOfDay) apply(a *models.Answer) {
	d := time.Duration(v)
	t := datatypes.NewTime(int(d/time.Hour), int(d%time.Hour/time.Minute), int(d%time.Minute/time.Second), 0)
	a.TimeAnswer = &t
}

func (v DateTime) Display() any { return time.Time(v).Format(DateTimeLayout) }
func (v DateTime) apply(a *models.Answer) {
	t := time.Time(v)
	a.DatetimeAnswer = &t
}

func (v File) Display() any { return v.Name }
func (v File) apply(a *models.Answer) {
	name, path := v.Name, v.Path
	a.FileName = &name
	a.FilePath = &path
}

// Codec carries the settings that shape encoded values.
type Codec struct {
	UploadPrefix string
}

func New(uploadPrefix string) *Codec {
	if uploadPrefix == "" {
		uploadPrefix = DefaultUploadPrefix
	}
	return &Codec{UploadPrefix: uploadPrefix}
}

// Encode maps a raw submitted value onto the value variant for kind.
// raw is a value as produced by encoding/json (string, float64, json.Number,
// bool, []any) or a plain Go int/string slice.
func (c *Codec) Encode(kind questiontype.Kind, raw any) (Value, error) {
	if isBlank(raw) {
		return nil, apperr.Validation("value is required")
	}

	switch kind {
	case questiontype.TextShort, questiontype.TextLong:
		s, err := scalarString(raw)
		if err != nil {
			return nil, err
		}
		return Text(s), nil

	case questiontype.MultipleChoiceSingle, questiontype.Dropdown:
		if items, ok := asList(raw); ok {
			if len(items) != 1 {
				return nil, apperr.Validation("%s accepts exactly one choice, got %d", kind, len(items))
			}
			return listChoices(items)
		}
		s, err := scalarString(raw)
		if err != nil {
			return nil, err
		}
		return Choices{s}, nil

	case questiontype.MultipleChoiceMultiple, questiontype.Checkbox:
		if items, ok := asList(raw); ok {
			return listChoices(items)
		}
		s, err := scalarString(raw)
		if err != nil {
			return nil, err
		}
		return Choices{s}, nil

	case questiontype.RatingScale:
		n, err := toInt(raw)
		if err != nil {
			return nil, err
		}
		return Rating(n), nil

	case questiontype.YesNo:
		s, ok := raw.(string)
		return YesNo(ok && s == "yes"), nil

	case questiontype.Date:
		t, err := parseDate(raw)
		if err != nil {
			return nil, err
		}
		return Date(t), nil

	case questiontype.Time:
		d, err := parseTimeOfDay(raw)
		if err != nil {
			return nil, err
		}
		return TimeOfDay(d), nil

	case questiontype.DateTime:
		t, err := parseDateTime(raw)
		if err != nil {
			return nil, err
		}
		return DateTime(t), nil

	case questiontype.FileUpload:
		name, ok := raw.(string)
		if !ok {
			return nil, apperr.Validation("file name must be a string")
		}
		name = strings.TrimSpace(name)
		if name == "" || name == "." || name == ".." || strings.ContainsAny(name, `/\`) {
			return nil, apperr.Validation("invalid file name %q", name)
		}
		return File{Name: name, Path: c.UploadPrefix + name}, nil
	}

	return nil, fmt.Errorf("%w %q", apperr.ErrUnknownQuestionType, kind)
}

// Apply writes v into a, clearing every other value slot first.
func Apply(v Value, a *models.Answer) {
	a.TextAnswer = nil
	a.SelectedOptions = nil
	a.RatingValue = nil
	a.BooleanAnswer = nil
	a.DateAnswer = nil
	a.TimeAnswer = nil
	a.DatetimeAnswer = nil
	a.FilePath = nil
	a.FileName = nil
	v.apply(a)
}

// Decode reads the slot kind stores its values in. It returns nil when the
// slot is empty or kind is unknown.
func Decode(a *models.Answer, kind questiontype.Kind) Value {
	d, err := kind.Descriptor()
	if err != nil {
		return nil
	}

	switch d.Slot {
	case questiontype.SlotText:
		if a.TextAnswer != nil {
			return Text(*a.TextAnswer)
		}
	case questiontype.SlotOptions:
		if a.SelectedOptions != nil {
			return Choices(a.SelectedOptions)
		}
	case questiontype.SlotRating:
		if a.RatingValue != nil {
			return Rating(*a.RatingValue)
		}
	case questiontype.SlotBoolean:
		if a.BooleanAnswer != nil {
			return YesNo(*a.BooleanAnswer)
		}
	case questiontype.SlotDate:
		if a.DateAnswer != nil && !time.Time(*a.DateAnswer).IsZero() {
			return Date(time.Time(*a.DateAnswer))
		}
	case questiontype.SlotTime:
		if a.TimeAnswer != nil {
			return TimeOfDay(time.Duration(*a.TimeAnswer))
		}
	case questiontype.SlotDateTime:
		if a.DatetimeAnswer != nil && !a.DatetimeAnswer.IsZero() {
			return DateTime(a.DatetimeAnswer.UTC())
		}
	case questiontype.SlotFile:
		if a.FileName != nil {
			f := File{Name: *a.FileName}
			if a.FilePath != nil {
				f.Path = *a.FilePath
			}
			return f
		}
	}
	return nil
}

// Display returns the presentation value of a stored answer, or nil.
func Display(a *models.Answer, kind questiontype.Kind) any {
	v := Decode(a, kind)
	if v == nil {
		return nil
	}
	return v.Display()
}

// DisplayString flattens a display value for tabular output.
func DisplayString(a *models.Answer, kind questiontype.Kind) string {
	switch v := Display(a, kind).(type) {
	case nil:
		return ""
	case string:
		return v
	case []string:
		return strings.Join(v, "; ")
	default:
		return fmt.Sprint(v)
	}
}
