package main

import (
	"errors"
	"fmt"
	"time"

	"github.com/Sternrassler/neis-client/pkg/school"
	"github.com/spf13/cobra"
)

// refFlags identify one school.
type refFlags struct {
	code   string
	region string
}

func (f *refFlags) register(cmd *cobra.Command) {
	cmd.Flags().StringVarP(&f.code, "school", "s", "", "standard school code (SD_SCHUL_CODE)")
	cmd.Flags().StringVarP(&f.region, "region", "r", "", "office of education code or name, e.g. B10 or seoul")
	_ = cmd.MarkFlagRequired("school")
}

func (f *refFlags) ref() (school.SchoolRef, error) {
	region, err := parseRegion(f.region)
	if err != nil {
		return school.SchoolRef{}, err
	}
	return school.SchoolRef{Code: f.code, Region: region}, nil
}

func parseRegion(s string) (school.Region, error) {
	region, ok := school.ParseRegion(s)
	if !ok {
		return "", fmt.Errorf("unknown region %q", s)
	}
	return region, nil
}

// dateFlags select a day, a month or a range. At most one form may be used.
type dateFlags struct {
	date  string
	month string
	from  string
	to    string
}

func (f *dateFlags) register(cmd *cobra.Command) {
	cmd.Flags().StringVar(&f.date, "date", "", "single day (YYYY-MM-DD or YYYYMMDD)")
	cmd.Flags().StringVar(&f.month, "month", "", "whole month (YYYY-MM or YYYYMM)")
	cmd.Flags().StringVar(&f.from, "from", "", "range start, inclusive")
	cmd.Flags().StringVar(&f.to, "to", "", "range end, inclusive")
}

var (
	dayLayouts   = []string{"2006-01-02", "20060102"}
	monthLayouts = []string{"2006-01", "200601"}
)

func parseTime(s string, layouts []string) (time.Time, error) {
	for _, layout := range layouts {
		if t, err := time.Parse(layout, s); err == nil {
			return t, nil
		}
	}
	return time.Time{}, fmt.Errorf("cannot parse %q (want %s)", s, layouts[0])
}

func (f *dateFlags) filter() (school.DateFilter, error) {
	used := 0
	for _, set := range []bool{f.date != "", f.month != "", f.from != "" || f.to != ""} {
		if set {
			used++
		}
	}
	if used > 1 {
		return school.DateFilter{}, errors.New("use only one of --date, --month or --from/--to")
	}

	switch {
	case f.date != "":
		day, err := parseTime(f.date, dayLayouts)
		if err != nil {
			return school.DateFilter{}, fmt.Errorf("--date: %w", err)
		}
		return school.OnDate(day), nil

	case f.month != "":
		month, err := parseTime(f.month, monthLayouts)
		if err != nil {
			return school.DateFilter{}, fmt.Errorf("--month: %w", err)
		}
		return school.InMonth(month.Year(), month.Month()), nil

	case f.from != "" || f.to != "":
		if f.from == "" || f.to == "" {
			return school.DateFilter{}, errors.New("--from and --to must be given together")
		}
		from, err := parseTime(f.from, dayLayouts)
		if err != nil {
			return school.DateFilter{}, fmt.Errorf("--from: %w", err)
		}
		to, err := parseTime(f.to, dayLayouts)
		if err != nil {
			return school.DateFilter{}, fmt.Errorf("--to: %w", err)
		}
		if to.Before(from) {
			return school.DateFilter{}, errors.New("--to is before --from")
		}
		return school.Between(from, to), nil
	}

	return school.Unfiltered(), nil
}

func parseMealTime(s string) (school.MealTime, error) {
	switch s {
	case "":
		return 0, nil
	case "breakfast":
		return school.Breakfast, nil
	case "lunch":
		return school.Lunch, nil
	case "dinner":
		return school.Dinner, nil
	default:
		return 0, fmt.Errorf("unknown meal %q (want breakfast, lunch or dinner)", s)
	}
}

func parseTimetableKind(s string) (school.TimetableKind, error) {
	kind := school.TimetableKind(s)
	if _, ok := kind.Service(); !ok {
		return "", fmt.Errorf("unknown timetable kind %q (want els, mis, his or sps)", s)
	}
	return kind, nil
}
