package school

import (
	"encoding/json"
	"errors"
	"fmt"
	"strconv"
	"strings"
	"time"

	"github.com/Sternrassler/neis-client/pkg/client"
)

// ErrParse is returned when a row cannot be mapped to its record type.
var ErrParse = errors.New("failed to parse row")

const dateLayout = "20060102"

// rowReader reads typed fields from a raw row and collects every failure,
// so a single error reports all broken fields of a row.
type rowReader struct {
	row  client.Row
	errs []error
}

func (r *rowReader) fail(key string, err error) {
	r.errs = append(r.errs, fmt.Errorf("%s: %w", key, err))
}

// has reports whether key is present and not null.
func (r *rowReader) has(key string) bool {
	v, ok := r.row[key]
	return ok && v != nil
}

// str returns the field as a string; absent and null read as "".
func (r *rowReader) str(key string) string {
	switch v := r.row[key].(type) {
	case nil:
		return ""
	case string:
		return v
	case json.Number:
		return v.String()
	default:
		return fmt.Sprint(v)
	}
}

// required returns the field and records a failure when it is empty.
func (r *rowReader) required(key string) string {
	s := r.str(key)
	if s == "" {
		r.fail(key, errors.New("missing"))
	}
	return s
}

func (r *rowReader) integer(key string) int {
	s := strings.TrimSpace(r.required(key))
	if s == "" {
		return 0
	}
	n, err := strconv.Atoi(s)
	if err != nil {
		// Headcounts arrive as "752.0".
		f, ferr := strconv.ParseFloat(s, 64)
		if ferr != nil {
			r.fail(key, err)
			return 0
		}
		return int(f)
	}
	return n
}

// date parses a YYYYMMDD field. Optional fields yield the zero time.
func (r *rowReader) date(key string, optional bool) time.Time {
	s := strings.TrimSpace(r.str(key))
	if s == "" {
		if !optional {
			r.fail(key, errors.New("missing"))
		}
		return time.Time{}
	}
	t, err := time.Parse(dateLayout, s)
	if err != nil {
		r.fail(key, err)
		return time.Time{}
	}
	return t
}

func (r *rowReader) yes(key string) bool {
	return r.str(key) == "Y"
}

func (r *rowReader) err() error {
	if len(r.errs) == 0 {
		return nil
	}
	return errors.Join(r.errs...)
}

// mapRows maps every row with fn. Failures are reported per row index and
// joined under ErrParse.
func mapRows[T any](service client.Service, rows []client.Row, fn func(*rowReader) T) ([]T, error) {
	out := make([]T, 0, len(rows))
	var errs []error
	for i, row := range rows {
		r := &rowReader{row: row}
		rec := fn(r)
		if err := r.err(); err != nil {
			errs = append(errs, fmt.Errorf("%s row %d: %w", service, i, err))
			continue
		}
		out = append(out, rec)
	}
	if len(errs) > 0 {
		return nil, fmt.Errorf("%w: %w", ErrParse, errors.Join(errs...))
	}
	return out, nil
}

func formatDate(t time.Time) string {
	return t.Format(dateLayout)
}
