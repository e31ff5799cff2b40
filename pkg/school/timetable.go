package school

import (
	"time"

	"github.com/Sternrassler/neis-client/pkg/client"
)

// TimetableKind selects one of the per-level timetable services.
type TimetableKind string

const (
	TimetableElementary TimetableKind = "els"
	TimetableMiddle     TimetableKind = "mis"
	TimetableHigh       TimetableKind = "his"
	TimetableSpecial    TimetableKind = "sps"
)

// Service returns the hub service of the kind.
func (k TimetableKind) Service() (client.Service, bool) {
	switch k {
	case TimetableElementary:
		return client.ServiceTimetableE, true
	case TimetableMiddle:
		return client.ServiceTimetableM, true
	case TimetableHigh:
		return client.ServiceTimetableH, true
	case TimetableSpecial:
		return client.ServiceTimetableS, true
	default:
		return "", false
	}
}

// Timetable is one period of a class timetable.
type Timetable struct {
	Grade     int
	Semester  int
	Date      time.Time
	Period    int
	Subject   string
	Classroom string

	// Only the high and special services report these.
	Timing      Timing
	LectureRoom string
	Major       string
	Department  string
}

func mapTimetable(r *rowReader) Timetable {
	return Timetable{
		Grade:       r.integer("GRADE"),
		Semester:    r.integer("SEM"),
		Date:        r.date("ALL_TI_YMD", false),
		Period:      r.integer("PERIO"),
		Subject:     r.str("ITRT_CNTNT"),
		Classroom:   r.str("CLASS_NM"),
		Timing:      parseDayNight(r.str("DGHT_SC_NM")),
		LectureRoom: r.str("CLRM_NM"),
		Major:       r.str("DDDEP_NM"),
		Department:  r.str("ORD_SC_NM"),
	}
}

// MapTimetables maps rows of any timetable service.
func MapTimetables(service client.Service, rows []client.Row) ([]Timetable, error) {
	return mapRows(service, rows, mapTimetable)
}
