package validation

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

type brandingInput struct {
	Name           string `json:"name" validate:"required,min=2,max=120"`
	PrimaryColor   string `json:"primary_color" validate:"omitempty,hexcolor"`
	SecondaryColor string `json:"secondary_color" validate:"omitempty,hexcolor"`
	StartTime      string `json:"start_time" validate:"omitempty,datetime=15:04"`
	EventDate      string `json:"event_date" validate:"omitempty,datetime=2006-01-02"`
	Status         string `json:"status" validate:"omitempty,oneof=active inactive"`
	Grade          *int   `json:"grade" validate:"omitempty,gte=20,lte=80"`
}

func TestStruct_Valid(t *testing.T) {
	grade := 55
	in := brandingInput{
		Name:           "Riverside Hawks",
		PrimaryColor:   "#1A2B3C",
		SecondaryColor: "#FFFFFF",
		StartTime:      "18:30",
		EventDate:      "2026-04-01",
		Status:         "active",
		Grade:          &grade,
	}

	errs := Struct(&in)
	assert.Empty(t, errs)
}

func TestStruct_CollectsEveryFailure(t *testing.T) {
	grade := 95
	in := brandingInput{
		Name:         "X",
		PrimaryColor: "blue",
		StartTime:    "6pm",
		EventDate:    "04/01/2026",
		Status:       "archived",
		Grade:        &grade,
	}

	errs := Struct(&in)
	assert.Len(t, errs, 6)

	byPath := map[string]string{}
	for _, e := range errs {
		byPath[e.Path] = e.Message
	}

	assert.Equal(t, "name must be at least 2 characters", byPath["name"])
	assert.Equal(t, "primary_color must be a hex color such as #1A2B3C", byPath["primary_color"])
	assert.Equal(t, "start_time must match the format HH:MM", byPath["start_time"])
	assert.Equal(t, "event_date must match the format YYYY-MM-DD", byPath["event_date"])
	assert.Equal(t, "status must be one of: active, inactive", byPath["status"])
	assert.Equal(t, "grade must be less than or equal to 80", byPath["grade"])
}

func TestStruct_PathsUseJSONTags(t *testing.T) {
	in := brandingInput{}

	errs := Struct(&in)
	if assert.Len(t, errs, 1) {
		assert.Equal(t, "name", errs[0].Path)
		assert.Equal(t, "name is required", errs[0].Message)
	}
}

func TestStruct_OmitemptySkipsZeroValues(t *testing.T) {
	in := brandingInput{Name: "Riverside Hawks"}

	errs := Struct(&in)
	assert.Empty(t, errs)
}
