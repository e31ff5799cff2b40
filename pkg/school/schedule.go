package school

import (
	"time"

	"github.com/Sternrassler/neis-client/pkg/client"
)

// ScheduleCategory is SBTR_DD_SC_NM. Empty for regular school days.
type ScheduleCategory string

const (
	ScheduleDayOff  ScheduleCategory = "day_off"
	ScheduleHoliday ScheduleCategory = "holiday"
)

// Schedule is one SchoolSchedule row.
type Schedule struct {
	Year        int
	Name        string
	Description string
	Date        time.Time
	// Timing is TimingDay, TimingNight or empty.
	Timing   Timing
	Category ScheduleCategory

	// Grades[n] reports whether grade n takes part. Index 0 is unused.
	Grades [7]bool
}

// AppliesTo reports whether grade takes part in the event.
func (s Schedule) AppliesTo(grade int) bool {
	return grade >= 1 && grade < len(s.Grades) && s.Grades[grade]
}

var gradeEventFields = [...]string{
	1: "ONE_GRADE_EVENT_YN",
	2: "TW_GRADE_EVENT_YN",
	3: "THREE_GRADE_EVENT_YN",
	4: "FR_GRADE_EVENT_YN",
	5: "FIV_GRADE_EVENT_YN",
	6: "SIX_GRADE_EVENT_YN",
}

func mapSchedule(r *rowReader) Schedule {
	s := Schedule{
		Year:        r.integer("AY"),
		Name:        r.required("EVENT_NM"),
		Description: r.str("EVENT_CNTNT"),
		Date:        r.date("AA_YMD", false),
	}

	switch r.str("DGHT_CRSE_SC_NM") {
	case "주간":
		s.Timing = TimingDay
	case "야간":
		s.Timing = TimingNight
	}

	switch r.str("SBTR_DD_SC_NM") {
	case "휴업일":
		s.Category = ScheduleDayOff
	case "공휴일":
		s.Category = ScheduleHoliday
	}

	for grade := 1; grade < len(gradeEventFields); grade++ {
		s.Grades[grade] = r.yes(gradeEventFields[grade])
	}

	return s
}

// MapSchedules maps SchoolSchedule rows.
func MapSchedules(rows []client.Row) ([]Schedule, error) {
	return mapRows(client.ServiceSchedule, rows, mapSchedule)
}
