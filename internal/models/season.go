package models

import (
	"fmt"
	"regexp"
	"strconv"
	"time"
)

const (
	// DateLayout is used for dataset and prediction dates
	DateLayout = "2006-01-02"
	// SeasonStartLayout is the mm/dd/yyyy form used for season start dates
	SeasonStartLayout = "01/02/2006"

	// MinDaysIntoSeason is how far past the season start a range may begin.
	// Team stats are meaningless before a few games have been played.
	MinDaysIntoSeason = 3
)

var seasonLabelPattern = regexp.MustCompile(`^(\d{4})-(\d{2})$`)

// Season identifies an NBA season spanning two calendar years
type Season struct {
	Label string    // e.g. "2019-20"
	Start time.Time // first day of the regular season
}

// ParseSeason validates a "yyyy-yy" label and an "mm/dd/yyyy" start date
func ParseSeason(label, startDate string) (Season, error) {
	m := seasonLabelPattern.FindStringSubmatch(label)
	if m == nil {
		return Season{}, fmt.Errorf("%w: label %q must be in form yyyy-yy", ErrInvalidSeason, label)
	}

	firstYear, _ := strconv.Atoi(m[1])
	secondYear, _ := strconv.Atoi(m[2])
	if (firstYear+1)%100 != secondYear {
		return Season{}, fmt.Errorf("%w: label %q must span consecutive years", ErrInvalidSeason, label)
	}

	start, err := time.Parse(SeasonStartLayout, startDate)
	if err != nil {
		return Season{}, fmt.Errorf("%w: start date %q must be in form mm/dd/yyyy", ErrInvalidSeason, startDate)
	}
	if start.Year() != firstYear {
		return Season{}, fmt.Errorf("%w: start date %s is not in %d", ErrInvalidSeason, startDate, firstYear)
	}

	return Season{Label: label, Start: start}, nil
}

// StartDate formats the season start as mm/dd/yyyy
func (s Season) StartDate() string {
	return s.Start.Format(SeasonStartLayout)
}

// DateRange is a half-open interval of game dates: Start is included, End is not
type DateRange struct {
	Start time.Time
	End   time.Time
}

// NewDateRange builds a range from calendar components
func NewDateRange(startYear, startMonth, startDay, endYear, endMonth, endDay int) DateRange {
	return DateRange{
		Start: time.Date(startYear, time.Month(startMonth), startDay, 0, 0, 0, 0, time.UTC),
		End:   time.Date(endYear, time.Month(endMonth), endDay, 0, 0, 0, 0, time.UTC),
	}
}

// ParseDateRange parses two yyyy-mm-dd dates
func ParseDateRange(start, end string) (DateRange, error) {
	s, err := time.Parse(DateLayout, start)
	if err != nil {
		return DateRange{}, fmt.Errorf("%w: start %q must be in form yyyy-mm-dd", ErrInvalidDateRange, start)
	}
	e, err := time.Parse(DateLayout, end)
	if err != nil {
		return DateRange{}, fmt.Errorf("%w: end %q must be in form yyyy-mm-dd", ErrInvalidDateRange, end)
	}
	return DateRange{Start: s, End: e}, nil
}

// Validate checks the range is non-empty and starts far enough into the season
func (r DateRange) Validate(season Season) error {
	if !r.Start.Before(r.End) {
		return fmt.Errorf("%w: start %s is not before end %s", ErrInvalidDateRange,
			r.Start.Format(DateLayout), r.End.Format(DateLayout))
	}
	earliest := season.Start.AddDate(0, 0, MinDaysIntoSeason)
	if r.Start.Before(earliest) {
		return fmt.Errorf("%w: start %s must be at least %d days after season start %s", ErrInvalidDateRange,
			r.Start.Format(DateLayout), MinDaysIntoSeason, season.StartDate())
	}
	return nil
}

// Contains reports whether t falls in [Start, End)
func (r DateRange) Contains(t time.Time) bool {
	return !t.Before(r.Start) && t.Before(r.End)
}

func (r DateRange) String() string {
	return r.Start.Format(DateLayout) + ".." + r.End.Format(DateLayout)
}
