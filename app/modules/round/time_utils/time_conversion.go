package roundtime

import (
	"fmt"
	"regexp"
	"strings"
	"time"

	roundtypes "github.com/Black-And-White-Club/tcr-bot/app/shared/types/round"
	"github.com/olebedev/when"
	"github.com/olebedev/when/rules/common"
	"github.com/olebedev/when/rules/en"
)

// Parser normalizes user supplied round dates and times.
type Parser interface {
	// ParseDate returns the date as YYYY-MM-DD. Besides the canonical form it
	// accepts natural language ("tomorrow", "next friday") relative to now.
	ParseDate(input string, now time.Time) (string, error)
	// ParseTime returns the time as 24h HH:MM.
	ParseTime(input string) (string, error)
}

// TimeParser is the default Parser.
type TimeParser struct {
	w *when.Parser
}

// NewTimeParser creates a TimeParser with the English and common rule sets.
func NewTimeParser() *TimeParser {
	w := when.New(nil)
	w.Add(en.All...)
	w.Add(common.All...)
	return &TimeParser{w: w}
}

var _ Parser = (*TimeParser)(nil)

var (
	compactTime = regexp.MustCompile(`^(\d{1,2})(\d{2})\s*(am|pm)$`)
	numericDate = regexp.MustCompile(`^\d{4}-\d{1,2}-\d{1,2}$`)
)

var timeLayouts = []string{
	roundtypes.TimeLayout,
	"3:04PM",
	"3:04 PM",
	"3PM",
	"3 PM",
}

func (p *TimeParser) ParseDate(input string, now time.Time) (string, error) {
	input = strings.TrimSpace(input)
	if input == "" {
		return "", fmt.Errorf("date cannot be empty")
	}
	if d, err := time.Parse(roundtypes.DateLayout, input); err == nil {
		return d.Format(roundtypes.DateLayout), nil
	}
	if numericDate.MatchString(input) {
		return "", fmt.Errorf("invalid date %q", input)
	}

	r, err := p.w.Parse(strings.ToLower(input), now)
	if err != nil {
		return "", fmt.Errorf("could not parse date %q: %w", input, err)
	}
	if r == nil {
		return "", fmt.Errorf("could not recognize date %q, expected YYYY-MM-DD", input)
	}
	return r.Time.In(now.Location()).Format(roundtypes.DateLayout), nil
}

func (p *TimeParser) ParseTime(input string) (string, error) {
	input = strings.TrimSpace(input)
	if input == "" {
		return "", fmt.Errorf("time cannot be empty")
	}
	// "932am" -> "9:32am"
	normalized := compactTime.ReplaceAllString(strings.ToLower(input), "$1:$2$3")
	normalized = strings.ToUpper(normalized)

	for _, layout := range timeLayouts {
		if t, err := time.Parse(layout, normalized); err == nil {
			return t.Format(roundtypes.TimeLayout), nil
		}
	}
	return "", fmt.Errorf("could not recognize time %q, expected HH:MM", input)
}
