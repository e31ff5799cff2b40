package school

import "github.com/Sternrassler/neis-client/pkg/client"

// LectureRoom is one tiClrminfo row: a room used by the timetable.
type LectureRoom struct {
	Year       int
	Grade      int
	Semester   int
	Name       string
	Course     CourseType
	Timing     Timing
	Department string
}

// LectureRooms is a list of lecture rooms with selectors.
type LectureRooms []LectureRoom

// Semester returns the rooms used in semester n.
func (l LectureRooms) Semester(n int) LectureRooms {
	var out LectureRooms
	for _, room := range l {
		if room.Semester == n {
			out = append(out, room)
		}
	}
	return out
}

// Grade returns the rooms used by grade n.
func (l LectureRooms) Grade(n int) LectureRooms {
	var out LectureRooms
	for _, room := range l {
		if room.Grade == n {
			out = append(out, room)
		}
	}
	return out
}

func mapLectureRoom(r *rowReader) LectureRoom {
	return LectureRoom{
		Year:       r.integer("AY"),
		Grade:      r.integer("GRADE"),
		Semester:   r.integer("SEM"),
		Name:       r.required("CLRM_NM"),
		Course:     parseCourse(r.str("SCHUL_CRSE_SC_NM")),
		Timing:     parseDayNight(r.str("DGHT_SC_NM")),
		Department: r.str("DDDEP_NM"),
	}
}

// MapLectureRooms maps tiClrminfo rows.
func MapLectureRooms(rows []client.Row) (LectureRooms, error) {
	return mapRows(client.ServiceLectureRoom, rows, mapLectureRoom)
}
