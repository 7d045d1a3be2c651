package roundutil

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestValidateScheduleInput(t *testing.T) {
	v := NewRoundValidator()

	tests := []struct {
		name  string
		input ScheduleFields
		want  []string
	}{
		{
			name:  "complete input",
			input: ScheduleFields{Title: "Weekly", Location: "Park", Date: "2025-06-01", Time: "18:00", CreatorID: "alice"},
			want:  nil,
		},
		{
			name:  "blank title and creator",
			input: ScheduleFields{Title: "  ", Location: "Park", Date: "2025-06-01", Time: "18:00"},
			want:  []string{"title cannot be empty", "creator cannot be empty"},
		},
		{
			name:  "everything missing",
			input: ScheduleFields{},
			want: []string{
				"title cannot be empty",
				"location cannot be empty",
				"date cannot be empty",
				"time cannot be empty",
				"creator cannot be empty",
			},
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.want, v.ValidateScheduleInput(tt.input))
		})
	}
}
