package roundutil

import "strings"

// ScheduleFields are the raw, user-supplied fields of a new round.
type ScheduleFields struct {
	Title     string
	Location  string
	Date      string
	Time      string
	CreatorID string
}

// RoundValidator defines the interface for round validation.
type RoundValidator interface {
	ValidateScheduleInput(input ScheduleFields) []string
}

// RoundValidatorImpl is the concrete implementation of the RoundValidator interface.
type RoundValidatorImpl struct{}

// NewRoundValidator creates a new instance of RoundValidatorImpl.
func NewRoundValidator() RoundValidator {
	return &RoundValidatorImpl{}
}

// ValidateScheduleInput reports every missing required field.
func (v *RoundValidatorImpl) ValidateScheduleInput(input ScheduleFields) []string {
	var errs []string

	if strings.TrimSpace(input.Title) == "" {
		errs = append(errs, "title cannot be empty")
	}
	if strings.TrimSpace(input.Location) == "" {
		errs = append(errs, "location cannot be empty")
	}
	if strings.TrimSpace(input.Date) == "" {
		errs = append(errs, "date cannot be empty")
	}
	if strings.TrimSpace(input.Time) == "" {
		errs = append(errs, "time cannot be empty")
	}
	if strings.TrimSpace(input.CreatorID) == "" {
		errs = append(errs, "creator cannot be empty")
	}

	return errs
}
