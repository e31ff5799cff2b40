package main

import (
	"encoding/json"
	"fmt"
	"strconv"
	"strings"
	"time"

	"github.com/Sternrassler/neis-client/pkg/school"
	"github.com/jedib0t/go-pretty/v6/table"
)

// render writes v as indented JSON or tbl as a table, per the output setting.
func (a *app) render(v any, tbl table.Writer) error {
	if a.cfg.Output == "json" {
		enc := json.NewEncoder(a.out)
		enc.SetIndent("", "  ")
		return enc.Encode(v)
	}
	_, err := fmt.Fprintln(a.out, tbl.Render())
	return err
}

func newTable(header table.Row, rows int) table.Writer {
	t := table.NewWriter()
	t.SetStyle(table.StyleRounded)
	t.AppendHeader(header)
	t.AppendFooter(table.Row{fmt.Sprintf("%d rows", rows)})
	return t
}

func day(t time.Time) string {
	if t.IsZero() {
		return ""
	}
	return t.Format("2006-01-02")
}

func schoolTable(schools []school.SchoolInfo) table.Writer {
	t := newTable(table.Row{"Code", "Region", "Name", "Category", "Foundation", "Address"}, len(schools))
	for _, s := range schools {
		t.AppendRow(table.Row{s.Code, s.Region, s.Name, s.Category, s.Foundation, s.Address})
	}
	return t
}

func scheduleTable(schedules []school.Schedule) table.Writer {
	t := newTable(table.Row{"Date", "Event", "Category", "Grades"}, len(schedules))
	for _, s := range schedules {
		var grades []string
		for g := 1; g < len(s.Grades); g++ {
			if s.AppliesTo(g) {
				grades = append(grades, strconv.Itoa(g))
			}
		}
		t.AppendRow(table.Row{day(s.Date), s.Name, s.Category, strings.Join(grades, ",")})
	}
	return t
}

func mealTable(meals school.Meals) table.Writer {
	t := newTable(table.Row{"Date", "Meal", "Dishes", "Kcal"}, len(meals))
	for _, m := range meals {
		names := make([]string, len(m.Dishes))
		for i, d := range m.Dishes {
			names[i] = d.Name
		}
		t.AppendRow(table.Row{day(m.Date), m.Time, strings.Join(names, "\n"), m.Kcal})
	}
	return t
}

func classroomTable(rooms school.Classrooms) table.Writer {
	t := newTable(table.Row{"Year", "Grade", "Class", "Course", "Department"}, len(rooms))
	for _, r := range rooms {
		t.AppendRow(table.Row{r.Year, r.Grade, r.Name, r.Course, r.Department})
	}
	return t
}

func lectureRoomTable(rooms school.LectureRooms) table.Writer {
	t := newTable(table.Row{"Year", "Grade", "Semester", "Room", "Course"}, len(rooms))
	for _, r := range rooms {
		t.AppendRow(table.Row{r.Year, r.Grade, r.Semester, r.Name, r.Course})
	}
	return t
}

func timetableTable(periods []school.Timetable) table.Writer {
	t := newTable(table.Row{"Date", "Grade", "Class", "Period", "Subject"}, len(periods))
	for _, p := range periods {
		t.AppendRow(table.Row{day(p.Date), p.Grade, p.Classroom, p.Period, p.Subject})
	}
	return t
}

func departmentTable(departments []school.Department) table.Writer {
	t := newTable(table.Row{"Department", "Timing"}, len(departments))
	for _, d := range departments {
		t.AppendRow(table.Row{d.Name, d.Timing})
	}
	return t
}

func majorTable(majors []school.Major) table.Writer {
	t := newTable(table.Row{"Major", "Department", "Timing"}, len(majors))
	for _, m := range majors {
		t.AppendRow(table.Row{m.Name, m.Department, m.Timing})
	}
	return t
}
