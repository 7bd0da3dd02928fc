// Package questiontype is the closed catalog of question kinds a survey can hold.
// Each kind carries its display label, whether it needs choice options, and the
// answer slot its values are stored in.
package questiontype

import (
	"fmt"

	"github.com/nikhilsahni7/SurveyDesk/apperr"
)

type Kind string

const (
	MultipleChoiceSingle   Kind = "multiple_choice_single"
	MultipleChoiceMultiple Kind = "multiple_choice_multiple"
	TextShort              Kind = "text_short"
	TextLong               Kind = "text_long"
	RatingScale            Kind = "rating_scale"
	YesNo                  Kind = "yes_no"
	Dropdown               Kind = "dropdown"
	Checkbox               Kind = "checkbox"
	Date                   Kind = "date"
	Time                   Kind = "time"
	DateTime               Kind = "datetime"
	FileUpload             Kind = "file_upload"
)

// Slot names the answer column a kind encodes to.
type Slot string

const (
	SlotText     Slot = "text"
	SlotOptions  Slot = "options"
	SlotRating   Slot = "rating"
	SlotBoolean  Slot = "boolean"
	SlotDate     Slot = "date"
	SlotTime     Slot = "time"
	SlotDateTime Slot = "datetime"
	SlotFile     Slot = "file"
)

type Descriptor struct {
	Kind            Kind   `json:"type"`
	Label           string `json:"label"`
	RequiresOptions bool   `json:"requires_options"`
	Slot            Slot   `json:"slot"`
}

var catalog = []Descriptor{
	{MultipleChoiceSingle, "Multiple Choice (Single)", true, SlotOptions},
	{MultipleChoiceMultiple, "Multiple Choice (Multiple)", true, SlotOptions},
	{TextShort, "Short Text", false, SlotText},
	{TextLong, "Long Text", false, SlotText},
	{RatingScale, "Rating Scale", false, SlotRating},
	{YesNo, "Yes/No", false, SlotBoolean},
	{Dropdown, "Dropdown", true, SlotOptions},
	{Checkbox, "Checkbox", true, SlotOptions},
	{Date, "Date", false, SlotDate},
	{Time, "Time", false, SlotTime},
	{DateTime, "Date & Time", false, SlotDateTime},
	{FileUpload, "File Upload", false, SlotFile},
}

var byKind = func() map[Kind]Descriptor {
	m := make(map[Kind]Descriptor, len(catalog))
	for _, d := range catalog {
		m[d.Kind] = d
	}
	return m
}()

// All returns the catalog in display order.
func All() []Descriptor {
	out := make([]Descriptor, len(catalog))
	copy(out, catalog)
	return out
}

// Lookup resolves a raw tag. Unknown tags are an error, never a default.
func Lookup(tag string) (Descriptor, error) {
	d, ok := byKind[Kind(tag)]
	if !ok {
		return Descriptor{}, fmt.Errorf("%w %q", apperr.ErrUnknownQuestionType, tag)
	}
	return d, nil
}

func (k Kind) Descriptor() (Descriptor, error) {
	return Lookup(string(k))
}

// Label returns the display name, or the raw tag for an unknown kind.
func (k Kind) Label() string {
	if d, ok := byKind[k]; ok {
		return d.Label
	}
	return string(k)
}

func (k Kind) RequiresOptions() bool {
	return byKind[k].RequiresOptions
}
