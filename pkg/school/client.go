package school

import (
	"context"
	"errors"
	"fmt"

	"github.com/Sternrassler/neis-client/pkg/client"
	"github.com/Sternrassler/neis-client/pkg/pagination"
	"github.com/rs/zerolog"
	"github.com/rs/zerolog/log"
)

// ErrUnsupportedKind is returned for timetable kinds the hub does not serve.
var ErrUnsupportedKind = errors.New("unsupported timetable kind")

// Client exposes one operation per hub service. It does not own the
// session; close that separately.
type Client struct {
	exec   *pagination.Executor
	logger zerolog.Logger
}

// New creates a facade over session.
func New(session pagination.PageFetcher, cfg pagination.Config) *Client {
	return NewWithExecutor(pagination.NewExecutor(session, cfg))
}

// NewWithExecutor creates a facade over an existing executor.
func NewWithExecutor(exec *pagination.Executor) *Client {
	return &Client{
		exec:   exec,
		logger: log.With().Str("component", "neis-school").Logger(),
	}
}

// Rows fetches raw rows of any service.
func (c *Client) Rows(ctx context.Context, service client.Service, params client.Params, hint int) ([]client.Row, error) {
	c.logger.Debug().
		Str("service", service.String()).
		Int("hint", hint).
		Msg("Fetching rows")

	return c.exec.Fetch(ctx, pagination.Query{Service: service, Params: params, Hint: hint})
}

// Schools lists the schools of region matching q. A hint of zero fetches
// every match.
func (c *Client) Schools(ctx context.Context, region Region, q SchoolQuery, hint int) ([]SchoolInfo, error) {
	params := client.Params{}
	if region.Specified() {
		params["ATPT_OFCDC_SC_CODE"] = string(region)
	}
	q.apply(params)

	rows, err := c.Rows(ctx, client.ServiceSchoolInfo, params, hint)
	if err != nil {
		return nil, err
	}
	return MapSchoolInfo(rows)
}

// School returns the school identified by ref.
func (c *Client) School(ctx context.Context, ref SchoolRef) (SchoolInfo, error) {
	schools, err := c.Schools(ctx, ref.Region, ByCode(ref.Code), 1)
	if err != nil {
		return SchoolInfo{}, err
	}
	return schools[0], nil
}

// Schedules returns the academic calendar of a school.
func (c *Client) Schedules(ctx context.Context, ref SchoolRef, f DateFilter) ([]Schedule, error) {
	params := refParams(ref)
	f.apply(params, scheduleDates)

	rows, err := c.Rows(ctx, client.ServiceSchedule, params, 0)
	if err != nil {
		return nil, err
	}
	return MapSchedules(rows)
}

// Meals returns the meal plans of a school.
func (c *Client) Meals(ctx context.Context, ref SchoolRef, f DateFilter) (Meals, error) {
	params := refParams(ref)
	f.apply(params, mealDates)

	rows, err := c.Rows(ctx, client.ServiceMeal, params, 0)
	if err != nil {
		return nil, err
	}
	return MapMeals(rows)
}

// Classrooms returns the classes of a school. Zero year or grade means all.
func (c *Client) Classrooms(ctx context.Context, ref SchoolRef, year, grade int) (Classrooms, error) {
	params := refParams(ref)
	if year > 0 {
		params.SetInt("AY", year)
	}
	if grade > 0 {
		params.SetInt("GRADE", grade)
	}

	rows, err := c.Rows(ctx, client.ServiceClassroom, params, 0)
	if err != nil {
		return nil, err
	}
	return MapClassrooms(rows)
}

// LectureRooms returns the rooms a school schedules lessons in. Zero
// filters mean all.
func (c *Client) LectureRooms(ctx context.Context, ref SchoolRef, year, grade, semester int) (LectureRooms, error) {
	params := refParams(ref)
	if year > 0 {
		params.SetInt("AY", year)
	}
	if grade > 0 {
		params.SetInt("GRADE", grade)
	}
	if semester > 0 {
		params.SetInt("SEM", semester)
	}

	rows, err := c.Rows(ctx, client.ServiceLectureRoom, params, 0)
	if err != nil {
		return nil, err
	}
	return MapLectureRooms(rows)
}

// Timetables returns timetable periods from the service of kind. Zero
// grade means all grades.
func (c *Client) Timetables(ctx context.Context, ref SchoolRef, kind TimetableKind, f DateFilter, grade int) ([]Timetable, error) {
	service, ok := kind.Service()
	if !ok {
		return nil, fmt.Errorf("%w: %q", ErrUnsupportedKind, kind)
	}

	params := refParams(ref)
	f.apply(params, timetableDates)
	if grade > 0 {
		params.SetInt("GRADE", grade)
	}

	rows, err := c.Rows(ctx, service, params, 0)
	if err != nil {
		return nil, err
	}
	return MapTimetables(service, rows)
}

// Departments returns the course tracks of a school.
func (c *Client) Departments(ctx context.Context, ref SchoolRef) ([]Department, error) {
	rows, err := c.Rows(ctx, client.ServiceDepartment, refParams(ref), 0)
	if err != nil {
		return nil, err
	}
	return MapDepartments(rows)
}

// Majors returns the majors of a school.
func (c *Client) Majors(ctx context.Context, ref SchoolRef) ([]Major, error) {
	rows, err := c.Rows(ctx, client.ServiceMajor, refParams(ref), 0)
	if err != nil {
		return nil, err
	}
	return MapMajors(rows)
}
