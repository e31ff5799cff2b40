package school

import (
	"context"
	"net/url"
	"testing"
	"time"

	"github.com/Sternrassler/neis-client/internal/testutil"
	"github.com/Sternrassler/neis-client/pkg/client"
	"github.com/Sternrassler/neis-client/pkg/pagination"
	"github.com/rs/zerolog"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

var seoulSci = SchoolRef{Code: "7010536", Region: RegionSeoul}

func newTestClient(t *testing.T, mock *testutil.MockNEIS) *Client {
	t.Helper()

	nop := zerolog.Nop()
	cfg := client.DefaultConfig("test-key")
	cfg.BaseURL = mock.URL()
	cfg.Logger = &nop

	session, err := client.New(cfg)
	require.NoError(t, err)
	t.Cleanup(func() { session.Close() })

	exec := pagination.NewExecutor(session, pagination.DefaultConfig()).WithLogger(nop)
	return NewWithExecutor(exec)
}

func lastRequest(t *testing.T, mock *testutil.MockNEIS) url.Values {
	t.Helper()
	requests := mock.Requests()
	require.NotEmpty(t, requests)
	return requests[len(requests)-1]
}

func schoolRow(code, name string) map[string]any {
	return map[string]any{
		"ATPT_OFCDC_SC_CODE": "B10",
		"SD_SCHUL_CODE":      code,
		"SCHUL_NM":           name,
		"SCHUL_KND_SC_NM":    "고등학교",
		"FOND_SC_NM":         "공립",
		"COEDU_SC_NM":        "남여공학",
	}
}

func TestClient_Schools(t *testing.T) {
	mock := testutil.NewMockNEIS()
	defer mock.Close()
	mock.SetDataset("schoolInfo", &testutil.Dataset{Rows: []map[string]any{
		schoolRow("7010536", "서울과학고등학교"),
		schoolRow("7010537", "서울고등학교"),
	}})

	c := newTestClient(t, mock)

	schools, err := c.Schools(context.Background(), RegionSeoul, ByName("서울"), 0)
	require.NoError(t, err)
	assert.Len(t, schools, 2)

	q := lastRequest(t, mock)
	assert.Equal(t, "B10", q.Get("ATPT_OFCDC_SC_CODE"))
	assert.Equal(t, "서울", q.Get("SCHUL_NM"))
	assert.Empty(t, q.Get("SD_SCHUL_CODE"))
}

func TestClient_SchoolsAnyRegion(t *testing.T) {
	mock := testutil.NewMockNEIS()
	defer mock.Close()
	mock.SetDataset("schoolInfo", &testutil.Dataset{Rows: []map[string]any{schoolRow("7010536", "a")}})

	c := newTestClient(t, mock)

	_, err := c.Schools(context.Background(), RegionUnspecified, AnySchool(), 0)
	require.NoError(t, err)

	q := lastRequest(t, mock)
	assert.False(t, q.Has("ATPT_OFCDC_SC_CODE"))
	assert.False(t, q.Has("SCHUL_NM"))
}

func TestClient_School(t *testing.T) {
	mock := testutil.NewMockNEIS()
	defer mock.Close()
	mock.SetDataset("schoolInfo", &testutil.Dataset{Rows: []map[string]any{
		schoolRow("7010536", "서울과학고등학교"),
	}})

	c := newTestClient(t, mock)

	info, err := c.School(context.Background(), seoulSci)
	require.NoError(t, err)
	assert.Equal(t, "서울과학고등학교", info.Name)
	assert.Equal(t, seoulSci, info.Ref())

	q := lastRequest(t, mock)
	assert.Equal(t, "7010536", q.Get("SD_SCHUL_CODE"))
	assert.Equal(t, "1", q.Get("pSize"), "a single expected row is requested as a one-row page")
}

func TestClient_SchoolNotFound(t *testing.T) {
	mock := testutil.NewMockNEIS()
	defer mock.Close()
	mock.SetDataset("schoolInfo", &testutil.Dataset{})

	c := newTestClient(t, mock)

	_, err := c.School(context.Background(), seoulSci)
	assert.ErrorIs(t, err, client.ErrNotFound)
}

func TestClient_Meals(t *testing.T) {
	mock := testutil.NewMockNEIS()
	defer mock.Close()
	mock.SetDataset("mealServiceDietInfo", &testutil.Dataset{Rows: []map[string]any{
		{"MMEAL_SC_CODE": "1", "MLSV_YMD": "20240304", "MLSV_FGR": "10", "DDISH_NM": "토스트"},
		{"MMEAL_SC_CODE": "2", "MLSV_YMD": "20240304", "MLSV_FGR": "10", "DDISH_NM": "비빔밥 (1.5.)"},
	}})

	c := newTestClient(t, mock)

	meals, err := c.Meals(context.Background(), seoulSci, OnDate(day(2024, time.March, 4)))
	require.NoError(t, err)
	require.Len(t, meals.Lunches(), 1)
	assert.Equal(t, "비빔밥", meals.Lunches()[0].Dishes[0].Name)

	q := lastRequest(t, mock)
	assert.Equal(t, "20240304", q.Get("MLSV_YMD"))
	assert.Equal(t, "B10", q.Get("ATPT_OFCDC_SC_CODE"))
	assert.False(t, q.Has("MLSV_FROM_YMD"))
}

func TestClient_SchedulesInMonth(t *testing.T) {
	mock := testutil.NewMockNEIS()
	defer mock.Close()
	mock.SetDataset("SchoolSchedule", &testutil.Dataset{Rows: []map[string]any{
		{"AY": "2024", "AA_YMD": "20240229", "EVENT_NM": "종업식"},
	}})

	c := newTestClient(t, mock)

	schedules, err := c.Schedules(context.Background(), seoulSci, InMonth(2024, time.February))
	require.NoError(t, err)
	assert.Len(t, schedules, 1)

	q := lastRequest(t, mock)
	assert.Equal(t, "20240201", q.Get("AA_FROM_YMD"))
	assert.Equal(t, "20240229", q.Get("AA_TO_YMD"))
	assert.False(t, q.Has("AA_YMD"))
}

func TestClient_Classrooms(t *testing.T) {
	mock := testutil.NewMockNEIS()
	defer mock.Close()
	mock.SetDataset("classInfo", &testutil.Dataset{Rows: []map[string]any{
		{"AY": "2024", "GRADE": "2", "CLASS_NM": "1"},
		{"AY": "2024", "GRADE": "2", "CLASS_NM": "2"},
	}})

	c := newTestClient(t, mock)

	rooms, err := c.Classrooms(context.Background(), seoulSci, 2024, 2)
	require.NoError(t, err)
	assert.Len(t, rooms, 2)

	q := lastRequest(t, mock)
	assert.Equal(t, "2024", q.Get("AY"))
	assert.Equal(t, "2", q.Get("GRADE"))
}

func TestClient_LectureRooms(t *testing.T) {
	mock := testutil.NewMockNEIS()
	defer mock.Close()
	mock.SetDataset("tiClrminfo", &testutil.Dataset{Rows: []map[string]any{
		{"AY": "2024", "GRADE": "1", "SEM": "2", "CLRM_NM": "과학실"},
	}})

	c := newTestClient(t, mock)

	rooms, err := c.LectureRooms(context.Background(), seoulSci, 0, 0, 2)
	require.NoError(t, err)
	assert.Len(t, rooms.Semester(2), 1)

	q := lastRequest(t, mock)
	assert.Equal(t, "2", q.Get("SEM"))
	assert.False(t, q.Has("AY"))
	assert.False(t, q.Has("GRADE"))
}

func TestClient_Timetables(t *testing.T) {
	mock := testutil.NewMockNEIS()
	defer mock.Close()
	mock.SetDataset("misTimetable", &testutil.Dataset{Rows: []map[string]any{
		{"GRADE": "1", "SEM": "1", "ALL_TI_YMD": "20240305", "PERIO": "1", "ITRT_CNTNT": "국어", "CLASS_NM": "1"},
		{"GRADE": "1", "SEM": "1", "ALL_TI_YMD": "20240305", "PERIO": "2", "ITRT_CNTNT": "수학", "CLASS_NM": "1"},
	}})

	c := newTestClient(t, mock)

	from, to := day(2024, time.March, 4), day(2024, time.March, 8)
	periods, err := c.Timetables(context.Background(), seoulSci, TimetableMiddle, Between(from, to), 1)
	require.NoError(t, err)
	require.Len(t, periods, 2)
	assert.Equal(t, "수학", periods[1].Subject)

	q := lastRequest(t, mock)
	assert.Equal(t, "20240304", q.Get("TI_FROM_YMD"))
	assert.Equal(t, "20240308", q.Get("TI_TO_YMD"))
	assert.Equal(t, "1", q.Get("GRADE"))
}

func TestClient_TimetablesUnsupportedKind(t *testing.T) {
	mock := testutil.NewMockNEIS()
	defer mock.Close()

	c := newTestClient(t, mock)

	_, err := c.Timetables(context.Background(), seoulSci, TimetableKind("kindergarten"), Unfiltered(), 0)
	assert.ErrorIs(t, err, ErrUnsupportedKind)
	assert.Zero(t, mock.GetRequestCount())
}

func TestClient_DepartmentsAndMajors(t *testing.T) {
	mock := testutil.NewMockNEIS()
	defer mock.Close()
	mock.SetDataset("schoolAflcoInfo", &testutil.Dataset{Rows: []map[string]any{
		{"DGHT_CRSE_SC_NM": "주간", "ORD_SC_NM": "일반계"},
	}})
	mock.SetDataset("schoolMajorInfo", &testutil.Dataset{Rows: []map[string]any{
		{"DGHT_CRSE_SC_NM": "주간", "ORD_SC_NM": "공업계", "DDDEP_NM": "기계과"},
		{"DGHT_CRSE_SC_NM": "주간", "ORD_SC_NM": "공업계", "DDDEP_NM": "전자과"},
	}})

	c := newTestClient(t, mock)
	ctx := context.Background()

	departments, err := c.Departments(ctx, seoulSci)
	require.NoError(t, err)
	assert.Equal(t, []Department{{Name: "일반계", Timing: TimingDay}}, departments)

	majors, err := c.Majors(ctx, seoulSci)
	require.NoError(t, err)
	assert.Len(t, majors, 2)
}

func TestClient_ParseErrorPropagates(t *testing.T) {
	mock := testutil.NewMockNEIS()
	defer mock.Close()
	mock.SetDataset("schoolAflcoInfo", &testutil.Dataset{Rows: []map[string]any{
		{"DGHT_CRSE_SC_NM": "???", "ORD_SC_NM": "일반계"},
	}})

	c := newTestClient(t, mock)

	_, err := c.Departments(context.Background(), seoulSci)
	assert.ErrorIs(t, err, ErrParse)
}

func TestClient_ServiceErrorPropagates(t *testing.T) {
	mock := testutil.NewMockNEIS()
	defer mock.Close()
	mock.SetDataset("classInfo", &testutil.Dataset{
		Rows:      testutil.NumberedRows(3),
		PageCodes: map[int]string{1: "ERROR-300"},
	})

	c := newTestClient(t, mock)

	_, err := c.Classrooms(context.Background(), seoulSci, 0, 0)
	var serviceErr *client.InternalServiceError
	require.ErrorAs(t, err, &serviceErr)
	assert.Equal(t, "ERROR-300", serviceErr.Code)
}

func TestDateFilter_String(t *testing.T) {
	assert.Equal(t, "any", Unfiltered().String())
	assert.Equal(t, "20240301", OnDate(day(2024, time.March, 1)).String())
	assert.Equal(t, "20240401-20240430", InMonth(2024, time.April).String())
	assert.Equal(t, "SD_SCHUL_CODE=1", ByCode("1").String())
	assert.Equal(t, "any", AnySchool().String())
}
