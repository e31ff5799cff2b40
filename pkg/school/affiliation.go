package school

import (
	"fmt"

	"github.com/Sternrassler/neis-client/pkg/client"
)

// Department is one schoolAflcoInfo row: a course track of a high school.
type Department struct {
	Name   string
	Timing Timing
}

// Major is one schoolMajorInfo row.
type Major struct {
	Name       string
	Department string
	Timing     Timing
}

func mapDepartment(r *rowReader) Department {
	d := Department{Name: r.required("ORD_SC_NM")}

	switch v := r.str("DGHT_CRSE_SC_NM"); v {
	case "주간":
		d.Timing = TimingDay
	case "야간":
		d.Timing = TimingNight
	case "산업체특별":
		d.Timing = TimingIndustrySpecial
	default:
		r.fail("DGHT_CRSE_SC_NM", fmt.Errorf("unknown course timing %q", v))
	}

	return d
}

func mapMajor(r *rowReader) Major {
	return Major{
		Name:       r.required("DDDEP_NM"),
		Department: r.str("ORD_SC_NM"),
		Timing:     parseDayNight(r.str("DGHT_CRSE_SC_NM")),
	}
}

// MapDepartments maps schoolAflcoInfo rows.
func MapDepartments(rows []client.Row) ([]Department, error) {
	return mapRows(client.ServiceDepartment, rows, mapDepartment)
}

// MapMajors maps schoolMajorInfo rows.
func MapMajors(rows []client.Row) ([]Major, error) {
	return mapRows(client.ServiceMajor, rows, mapMajor)
}
