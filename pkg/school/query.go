package school

import (
	"time"

	"github.com/Sternrassler/neis-client/pkg/client"
)

// SchoolQuery selects schools by exactly one field. The caller decides
// which; a numeric-looking name is still a name.
type SchoolQuery struct {
	field string
	value string
}

// ByCode matches the standard school code (SD_SCHUL_CODE).
func ByCode(code string) SchoolQuery {
	return SchoolQuery{field: "SD_SCHUL_CODE", value: code}
}

// ByName matches the school name (SCHUL_NM).
func ByName(name string) SchoolQuery {
	return SchoolQuery{field: "SCHUL_NM", value: name}
}

// AnySchool applies no school filter.
func AnySchool() SchoolQuery {
	return SchoolQuery{}
}

func (q SchoolQuery) apply(p client.Params) {
	if q.field != "" {
		p[q.field] = q.value
	}
}

func (q SchoolQuery) String() string {
	if q.field == "" {
		return "any"
	}
	return q.field + "=" + q.value
}

type dateKind int

const (
	dateNone dateKind = iota
	dateOn
	dateRange
)

// DateFilter narrows a dated service to a day or a range of days.
type DateFilter struct {
	kind     dateKind
	from, to time.Time
}

// OnDate matches a single day.
func OnDate(day time.Time) DateFilter {
	return DateFilter{kind: dateOn, from: day}
}

// InMonth matches every day of the given month.
func InMonth(year int, month time.Month) DateFilter {
	first := time.Date(year, month, 1, 0, 0, 0, 0, time.UTC)
	return Between(first, first.AddDate(0, 1, -1))
}

// Between matches from..to inclusive.
func Between(from, to time.Time) DateFilter {
	return DateFilter{kind: dateRange, from: from, to: to}
}

// Unfiltered matches every date the service has.
func Unfiltered() DateFilter {
	return DateFilter{}
}

// dateFields names the day/from/to parameters of one dated service.
type dateFields struct {
	day, from, to string
}

var (
	scheduleDates  = dateFields{day: "AA_YMD", from: "AA_FROM_YMD", to: "AA_TO_YMD"}
	mealDates      = dateFields{day: "MLSV_YMD", from: "MLSV_FROM_YMD", to: "MLSV_TO_YMD"}
	timetableDates = dateFields{day: "ALL_TI_YMD", from: "TI_FROM_YMD", to: "TI_TO_YMD"}
)

func (f DateFilter) apply(p client.Params, fields dateFields) {
	switch f.kind {
	case dateOn:
		p[fields.day] = formatDate(f.from)
	case dateRange:
		p[fields.from] = formatDate(f.from)
		p[fields.to] = formatDate(f.to)
	}
}

func (f DateFilter) String() string {
	switch f.kind {
	case dateOn:
		return formatDate(f.from)
	case dateRange:
		return formatDate(f.from) + "-" + formatDate(f.to)
	default:
		return "any"
	}
}

func refParams(ref SchoolRef) client.Params {
	p := client.Params{"SD_SCHUL_CODE": ref.Code}
	if ref.Region.Specified() {
		p["ATPT_OFCDC_SC_CODE"] = string(ref.Region)
	}
	return p
}
