package main

import (
	"bytes"
	"context"
	"encoding/json"
	"io"
	"net/http"
	"net/http/httptest"
	"os"
	"path/filepath"
	"strings"
	"testing"
	"time"

	"github.com/Sternrassler/neis-client/internal/testutil"
	"github.com/Sternrassler/neis-client/pkg/client"
	"github.com/Sternrassler/neis-client/pkg/pagination"
	"github.com/Sternrassler/neis-client/pkg/school"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

// run executes the CLI against mock and returns stdout.
func run(t *testing.T, mock *testutil.MockNEIS, args ...string) (string, error) {
	t.Helper()

	var out bytes.Buffer
	root := newRootCmd(&out)
	root.SetErr(io.Discard)
	root.SetArgs(append([]string{
		"--api-key", "test-key",
		"--base-url", mock.URL(),
		"--cache", "none",
		"--log-level", "disabled",
	}, args...))

	err := root.ExecuteContext(context.Background())
	return out.String(), err
}

func TestLoadConfig_Defaults(t *testing.T) {
	t.Chdir(t.TempDir())

	cfg, err := loadConfig("", nil)
	require.NoError(t, err)

	assert.Equal(t, client.DefaultBaseURL, cfg.BaseURL)
	assert.Equal(t, "table", cfg.Output)
	assert.Equal(t, string(pagination.ModeConcurrent), cfg.Fetch.Mode)
	assert.Equal(t, 8, cfg.Fetch.Concurrency)
	assert.Equal(t, "memory", cfg.Cache.Backend)
	assert.Equal(t, 24*time.Hour, cfg.Cache.TTL)
	assert.True(t, cfg.Quota.Enabled)
	assert.Equal(t, 1, cfg.Retry.MaxAttempts)
}

func TestLoadConfig_FileAndEnv(t *testing.T) {
	dir := t.TempDir()
	path := filepath.Join(dir, "neis.yaml")
	require.NoError(t, os.WriteFile(path, []byte(`
api_key: from-file
timeout: 3s
fetch:
  mode: sequential
cache:
  backend: none
retry:
  max_attempts: 3
`), 0o600))

	t.Setenv("NEIS_API_KEY", "from-env")
	t.Setenv("NEIS_FETCH_CONCURRENCY", "2")

	cfg, err := loadConfig(path, nil)
	require.NoError(t, err)

	assert.Equal(t, "from-env", cfg.APIKey)
	assert.Equal(t, 3*time.Second, cfg.Timeout)
	assert.Equal(t, "sequential", cfg.Fetch.Mode)
	assert.Equal(t, 2, cfg.Fetch.Concurrency)
	assert.Equal(t, "none", cfg.Cache.Backend)

	sessionCfg := cfg.clientConfig()
	assert.Equal(t, "from-env", sessionCfg.APIKey)
	assert.Equal(t, 3, sessionCfg.Retry.MaxAttempts)
	assert.Equal(t, pagination.ModeSequential, cfg.fetchConfig().Mode)
}

func TestLoadConfig_MissingExplicitFile(t *testing.T) {
	_, err := loadConfig(filepath.Join(t.TempDir(), "absent.yaml"), nil)
	assert.Error(t, err)
}

func TestLoadConfig_Validation(t *testing.T) {
	tests := []struct {
		name string
		env  map[string]string
		want string
	}{
		{"bad mode", map[string]string{"NEIS_FETCH_MODE": "parallel"}, "unknown fetch mode"},
		{"bad concurrency", map[string]string{"NEIS_FETCH_CONCURRENCY": "0"}, "fetch.concurrency"},
		{"bad output", map[string]string{"NEIS_OUTPUT": "xml"}, "invalid output format"},
		{"redis without addr", map[string]string{"NEIS_CACHE_BACKEND": "redis"}, "requires redis.addr"},
		{"bad cache", map[string]string{"NEIS_CACHE_BACKEND": "disk"}, "invalid cache backend"},
		{"bad level", map[string]string{"NEIS_LOGGING_LEVEL": "loud"}, "unknown log level"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			t.Chdir(t.TempDir())
			for k, v := range tt.env {
				t.Setenv(k, v)
			}

			_, err := loadConfig("", nil)
			require.Error(t, err)
			assert.Contains(t, err.Error(), tt.want)
		})
	}
}

func TestDateFlags(t *testing.T) {
	tests := []struct {
		name    string
		flags   dateFlags
		want    string
		wantErr bool
	}{
		{"none", dateFlags{}, "any", false},
		{"date dashed", dateFlags{date: "2024-03-04"}, "20240304", false},
		{"date compact", dateFlags{date: "20240304"}, "20240304", false},
		{"month", dateFlags{month: "2024-02"}, "20240201-20240229", false},
		{"range", dateFlags{from: "2024-03-04", to: "20240308"}, "20240304-20240308", false},
		{"half range", dateFlags{from: "2024-03-04"}, "", true},
		{"reversed range", dateFlags{from: "2024-03-08", to: "2024-03-04"}, "", true},
		{"two forms", dateFlags{date: "2024-03-04", month: "2024-03"}, "", true},
		{"garbage", dateFlags{date: "yesterday"}, "", true},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got, err := tt.flags.filter()
			if tt.wantErr {
				assert.Error(t, err)
				return
			}
			require.NoError(t, err)
			assert.Equal(t, tt.want, got.String())
		})
	}
}

func TestParseHelpers(t *testing.T) {
	mt, err := parseMealTime("dinner")
	require.NoError(t, err)
	assert.Equal(t, school.Dinner, mt)

	_, err = parseMealTime("brunch")
	assert.Error(t, err)

	kind, err := parseTimetableKind("his")
	require.NoError(t, err)
	assert.Equal(t, school.TimetableHigh, kind)

	_, err = parseTimetableKind("kindergarten")
	assert.Error(t, err)

	_, err = parseRegion("Z99")
	assert.Error(t, err)
}

func TestSchoolCommand_JSON(t *testing.T) {
	mock := testutil.NewMockNEIS()
	defer mock.Close()
	mock.SetDataset("schoolInfo", &testutil.Dataset{Rows: []map[string]any{{
		"ATPT_OFCDC_SC_CODE": "B10",
		"SD_SCHUL_CODE":      "7010536",
		"SCHUL_NM":           "서울과학고등학교",
		"SCHUL_KND_SC_NM":    "고등학교",
	}}})

	out, err := run(t, mock, "-o", "json", "school", "--region", "seoul", "서울과학")
	require.NoError(t, err)

	var schools []school.SchoolInfo
	require.NoError(t, json.Unmarshal([]byte(out), &schools))
	require.Len(t, schools, 1)
	assert.Equal(t, "7010536", schools[0].Code)

	q := mock.Requests()[0]
	assert.Equal(t, "B10", q.Get("ATPT_OFCDC_SC_CODE"))
	assert.Equal(t, "서울과학", q.Get("SCHUL_NM"))
	assert.Equal(t, "test-key", q.Get("KEY"))
}

func TestMealCommand_Table(t *testing.T) {
	mock := testutil.NewMockNEIS()
	defer mock.Close()
	mock.SetDataset("mealServiceDietInfo", &testutil.Dataset{Rows: []map[string]any{
		{"MMEAL_SC_CODE": "1", "MLSV_YMD": "20240304", "MLSV_FGR": "10", "DDISH_NM": "토스트"},
		{"MMEAL_SC_CODE": "2", "MLSV_YMD": "20240304", "MLSV_FGR": "10", "DDISH_NM": "비빔밥 (1.5.)", "CAL_INFO": "700.1 Kcal"},
	}})

	out, err := run(t, mock, "meal", "--school", "7010536", "--date", "2024-03-04", "--time", "lunch")
	require.NoError(t, err)

	assert.Contains(t, out, "비빔밥")
	assert.NotContains(t, out, "토스트")
	assert.Contains(t, strings.ToLower(out), "1 rows")
	assert.Equal(t, "20240304", mock.Requests()[0].Get("MLSV_YMD"))
}

func TestTimetableCommand_ResolvesKind(t *testing.T) {
	mock := testutil.NewMockNEIS()
	defer mock.Close()
	mock.SetDataset("schoolInfo", &testutil.Dataset{Rows: []map[string]any{{
		"ATPT_OFCDC_SC_CODE": "B10",
		"SD_SCHUL_CODE":      "7010536",
		"SCHUL_NM":           "어느중학교",
		"SCHUL_KND_SC_NM":    "중학교",
	}}})
	mock.SetDataset("misTimetable", &testutil.Dataset{Rows: []map[string]any{
		{"GRADE": "1", "SEM": "1", "ALL_TI_YMD": "20240305", "PERIO": "1", "ITRT_CNTNT": "국어", "CLASS_NM": "1"},
	}})

	out, err := run(t, mock, "timetable", "--school", "7010536", "--region", "B10")
	require.NoError(t, err)
	assert.Contains(t, out, "국어")
	assert.Equal(t, 2, mock.GetRequestCount())
}

func TestCommand_NotFound(t *testing.T) {
	mock := testutil.NewMockNEIS()
	defer mock.Close()
	mock.SetDataset("schoolMajorInfo", &testutil.Dataset{})

	_, err := run(t, mock, "major", "--school", "7010536")
	assert.ErrorIs(t, err, client.ErrNotFound)
}

func TestCommand_MissingAPIKey(t *testing.T) {
	t.Chdir(t.TempDir())
	t.Setenv("NEIS_API_KEY", "")

	var out bytes.Buffer
	root := newRootCmd(&out)
	root.SetErr(io.Discard)
	root.SetArgs([]string{"--cache", "none", "--log-level", "disabled", "department", "--school", "1"})

	err := root.Execute()
	assert.ErrorIs(t, err, client.ErrAPIKeyMissing)
}

func TestServer_Wiring(t *testing.T) {
	mock := testutil.NewMockNEIS()
	defer mock.Close()
	mock.SetDataset("classInfo", &testutil.Dataset{Rows: testutil.NumberedRows(3)})

	t.Chdir(t.TempDir())
	cfg, err := loadConfig("", nil)
	require.NoError(t, err)
	cfg.APIKey = "test-key"
	cfg.BaseURL = mock.URL()

	a := &app{cfg: cfg, out: io.Discard}
	b, err := a.openBackend(context.Background())
	require.NoError(t, err)
	defer b.Close()

	session, err := client.New(a.sessionConfig(b))
	require.NoError(t, err)
	defer session.Close()

	srv := a.newServer(session, b)
	ts := httptest.NewServer(srv.Handler())
	defer ts.Close()

	resp, err := http.Get(ts.URL + "/v1/classInfo?SD_SCHUL_CODE=7010536")
	require.NoError(t, err)
	resp.Body.Close()
	assert.Equal(t, http.StatusOK, resp.StatusCode)

	resp, err = http.Get(ts.URL + "/ready")
	require.NoError(t, err)
	resp.Body.Close()
	assert.Equal(t, http.StatusOK, resp.StatusCode)

	session.Close()

	resp, err = http.Get(ts.URL + "/ready")
	require.NoError(t, err)
	resp.Body.Close()
	assert.Equal(t, http.StatusServiceUnavailable, resp.StatusCode)
}
