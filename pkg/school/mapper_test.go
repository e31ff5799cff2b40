package school

import (
	"encoding/json"
	"errors"
	"testing"
	"time"

	"github.com/Sternrassler/neis-client/pkg/client"
	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func day(y int, m time.Month, d int) time.Time {
	return time.Date(y, m, d, 0, 0, 0, 0, time.UTC)
}

func TestMapSchoolInfo(t *testing.T) {
	rows := []client.Row{{
		"ATPT_OFCDC_SC_CODE":        "B10",
		"SD_SCHUL_CODE":             "7010536",
		"SCHUL_NM":                  "서울과학고등학교",
		"ENG_SCHUL_NM":              "Seoul Science High School",
		"SCHUL_KND_SC_NM":           "고등학교",
		"FOND_SC_NM":                "공립",
		"JU_ORG_NM":                 "서울특별시교육청",
		"ORG_RDNZC":                 "03066",
		"ORG_RDNMA":                 "서울특별시 종로구 혜화로 63",
		"ORG_RDNDA":                 "/ 서울과학고등학교 (명륜1가)",
		"ORG_TELNO":                 "02-3673-9600",
		"HMPG_ADRES":                "http://sshs.hs.kr",
		"COEDU_SC_NM":               "남여공학",
		"ORG_FAXNO":                 "02-3673-9601",
		"HS_SC_NM":                  "특목고",
		"INDST_SPECL_CCCCL_EXST_YN": "N",
		"HS_GNRL_BUSNS_SC_NM":       "일반계",
		"SPCLY_PURPS_HS_ORD_NM":     "과학계열",
		"ENE_BFE_SEHF_SC_NM":        "전기",
		"DGHT_SC_NM":                "주간",
		"FOND_YMD":                  "19890227",
		"FOAS_MEMRD":                "19890302",
	}}

	schools, err := MapSchoolInfo(rows)
	require.NoError(t, err)
	require.Len(t, schools, 1)

	s := schools[0]
	assert.Equal(t, "7010536", s.Code)
	assert.Equal(t, RegionSeoul, s.Region)
	assert.Equal(t, FoundationPublic, s.Foundation)
	assert.Equal(t, CategoryHigh, s.Category)
	assert.Equal(t, HighSchoolNormal, s.HighSchoolCategory)
	assert.Equal(t, SubtypeSpecialPurpose, s.Subtype)
	assert.Equal(t, PurposeScience, s.Purpose)
	assert.Equal(t, TimingDay, s.Timing)
	assert.Equal(t, AdmissionEarly, s.AdmissionPeriod)
	assert.Equal(t, GenderMixed, s.Gender)
	assert.False(t, s.IndustrySupport)
	assert.Equal(t, "03066", s.ZipCode)
	assert.Equal(t, day(1989, time.February, 27), s.Founded)
	assert.Equal(t, day(1989, time.March, 2), s.Anniversary)
	assert.Equal(t, SchoolRef{Code: "7010536", Region: RegionSeoul}, s.Ref())
}

func TestMapSchoolInfo_Defaults(t *testing.T) {
	rows := []client.Row{{
		"ATPT_OFCDC_SC_CODE":    "J10",
		"SD_SCHUL_CODE":         "7530072",
		"SCHUL_NM":              "어느초등학교",
		"SCHUL_KND_SC_NM":       "초등학교",
		"FOND_SC_NM":            "국립",
		"HS_SC_NM":              nil,
		"SPCLY_PURPS_HS_ORD_NM": nil,
		"COEDU_SC_NM":           "여",
		"FOND_YMD":              "",
	}}

	schools, err := MapSchoolInfo(rows)
	require.NoError(t, err)

	s := schools[0]
	assert.Equal(t, FoundationUnspecified, s.Foundation)
	assert.Equal(t, CategoryElementary, s.Category)
	assert.Empty(t, s.HighSchoolCategory)
	assert.Empty(t, s.Subtype)
	assert.Empty(t, s.Purpose)
	assert.Equal(t, TimingBoth, s.Timing)
	assert.Equal(t, AdmissionBoth, s.AdmissionPeriod)
	assert.Equal(t, GenderGirlsOnly, s.Gender)
	assert.True(t, s.Founded.IsZero())
}

func TestSchoolCategory_TimetableKind(t *testing.T) {
	tests := []struct {
		category SchoolCategory
		want     TimetableKind
		ok       bool
	}{
		{CategoryElementary, TimetableElementary, true},
		{CategoryMiddle, TimetableMiddle, true},
		{CategoryHigh, TimetableHigh, true},
		{CategorySpecial, TimetableSpecial, true},
		{CategoryBroadcastHigh, TimetableHigh, true},
		{CategoryOther, "", false},
	}

	for _, tt := range tests {
		t.Run(string(tt.category), func(t *testing.T) {
			got, ok := tt.category.TimetableKind()
			assert.Equal(t, tt.want, got)
			assert.Equal(t, tt.ok, ok)
		})
	}
}

func TestMapSchedules(t *testing.T) {
	rows := []client.Row{{
		"AY":                   "2024",
		"AA_YMD":               "20240301",
		"EVENT_NM":             "삼일절",
		"EVENT_CNTNT":          "",
		"DGHT_CRSE_SC_NM":      "주간",
		"SBTR_DD_SC_NM":        "공휴일",
		"ONE_GRADE_EVENT_YN":   "Y",
		"TW_GRADE_EVENT_YN":    "Y",
		"THREE_GRADE_EVENT_YN": "N",
		"FR_GRADE_EVENT_YN":    "*",
		"FIV_GRADE_EVENT_YN":   "*",
		"SIX_GRADE_EVENT_YN":   "*",
	}}

	schedules, err := MapSchedules(rows)
	require.NoError(t, err)
	require.Len(t, schedules, 1)

	s := schedules[0]
	assert.Equal(t, 2024, s.Year)
	assert.Equal(t, "삼일절", s.Name)
	assert.Equal(t, day(2024, time.March, 1), s.Date)
	assert.Equal(t, TimingDay, s.Timing)
	assert.Equal(t, ScheduleHoliday, s.Category)
	assert.True(t, s.AppliesTo(1))
	assert.True(t, s.AppliesTo(2))
	assert.False(t, s.AppliesTo(3))
	assert.False(t, s.AppliesTo(0))
	assert.False(t, s.AppliesTo(7))
}

func TestMapMeals(t *testing.T) {
	rows := []client.Row{{
		"MMEAL_SC_CODE": "2",
		"MLSV_YMD":      "20240304",
		"MLSV_FGR":      "752.0",
		"DDISH_NM":      "현미밥 <br/>*쇠고기미역국 (5.6.13.16.)<br/>돈육장조림@ (1.5.6.10.13.)<br/>배추김치 (9.)",
		"ORPLC_INFO":    "쌀 : 국내산<br/>쇠고기(종류) : 국내산(한우)<br/>돼지고기 : 국내산",
		"CAL_INFO":      "650.6 Kcal",
		"NTR_INFO":      "탄수화물(g) : 95.9<br/>단백질(g) : 28.4<br/>비타민A(R.E) : 125.3",
	}}

	meals, err := MapMeals(rows)
	require.NoError(t, err)
	require.Len(t, meals, 1)

	m := meals[0]
	assert.Equal(t, Lunch, m.Time)
	assert.Equal(t, day(2024, time.March, 4), m.Date)
	assert.Equal(t, 752, m.Headcount)
	assert.InDelta(t, 650.6, m.Kcal, 1e-9)

	assert.Equal(t, []Dish{
		{Name: "현미밥"},
		{Name: "쇠고기미역국", Allergies: []Allergy{AllergySoybean, AllergyWheat, AllergySulfite, AllergyBeef}},
		{Name: "돈육장조림", Allergies: []Allergy{AllergyEgg, AllergySoybean, AllergyWheat, AllergyPork, AllergySulfite}},
		{Name: "배추김치", Allergies: []Allergy{AllergyShrimp}},
	}, m.Dishes)

	assert.Equal(t, []Nutrient{
		{Name: "탄수화물", Unit: "g", Value: 95.9},
		{Name: "단백질", Unit: "g", Value: 28.4},
		{Name: "비타민A", Unit: "R.E", Value: 125.3},
	}, m.Nutrients)

	assert.Equal(t, []Origin{
		{Ingredient: "쌀", Origin: "국내산"},
		{Ingredient: "쇠고기(종류)", Origin: "국내산(한우)"},
		{Ingredient: "돼지고기", Origin: "국내산"},
	}, m.Origins)
}

func TestMeals_Selectors(t *testing.T) {
	meals := Meals{{Time: Breakfast}, {Time: Lunch}, {Time: Dinner}, {Time: Lunch}}

	assert.Len(t, meals.Breakfasts(), 1)
	assert.Len(t, meals.Lunches(), 2)
	assert.Len(t, meals.Dinners(), 1)
	assert.Equal(t, "lunch", Lunch.String())
	assert.Equal(t, "pine_nut", AllergyPineNut.String())
}

func TestMapClassrooms(t *testing.T) {
	rows := []client.Row{
		{
			"AY":               "2024",
			"GRADE":            json.Number("1"),
			"CLASS_NM":         "3",
			"DDDEP_NM":         "",
			"SCHUL_CRSE_SC_NM": "고등학교",
			"ORD_SC_NM":        "공업계",
			"DGHT_CRSE_SC_NM":  "야간",
		},
		{
			"AY":               "2024",
			"GRADE":            "2",
			"CLASS_NM":         "",
			"SCHUL_CRSE_SC_NM": "유치원",
			"ORD_SC_NM":        "미상",
		},
	}

	rooms, err := MapClassrooms(rows)
	require.NoError(t, err)
	require.Len(t, rooms, 2)

	assert.Equal(t, 1, rooms[0].Grade)
	assert.Equal(t, "3", rooms[0].Name)
	assert.Equal(t, CourseHigh, rooms[0].Course)
	assert.Equal(t, DetailTechnical, rooms[0].CourseDetail)
	assert.Equal(t, TimingNight, rooms[0].Timing)

	// A missing class name is replaced by a generated identifier.
	_, err = uuid.Parse(rooms[1].Name)
	assert.NoError(t, err)
	assert.Equal(t, CoursePreschool, rooms[1].Course)
	assert.Empty(t, rooms[1].CourseDetail)
	assert.Empty(t, rooms[1].Timing)

	assert.Len(t, rooms.Grade(2), 1)
	assert.Empty(t, rooms.Grade(3))
}

func TestMapLectureRooms(t *testing.T) {
	rows := []client.Row{
		{"AY": "2024", "GRADE": "1", "SEM": "1", "CLRM_NM": "과학실", "SCHUL_CRSE_SC_NM": "고등학교", "DGHT_SC_NM": "주간"},
		{"AY": "2024", "GRADE": "1", "SEM": "2", "CLRM_NM": "음악실", "SCHUL_CRSE_SC_NM": "고등학교"},
	}

	rooms, err := MapLectureRooms(rows)
	require.NoError(t, err)

	assert.Equal(t, "과학실", rooms.Semester(1)[0].Name)
	assert.Len(t, rooms.Semester(2), 1)
	assert.Len(t, rooms.Grade(1), 2)
}

func TestMapTimetables(t *testing.T) {
	rows := []client.Row{{
		"GRADE":      "2",
		"SEM":        "1",
		"ALL_TI_YMD": "20240305",
		"PERIO":      "3",
		"ITRT_CNTNT": "수학Ⅰ",
		"CLASS_NM":   "4",
		"DGHT_SC_NM": "주간",
		"CLRM_NM":    "2학년 4반",
		"DDDEP_NM":   "",
		"ORD_SC_NM":  "일반계",
	}}

	periods, err := MapTimetables(client.ServiceTimetableH, rows)
	require.NoError(t, err)
	require.Len(t, periods, 1)

	p := periods[0]
	assert.Equal(t, 3, p.Period)
	assert.Equal(t, "수학Ⅰ", p.Subject)
	assert.Equal(t, day(2024, time.March, 5), p.Date)
	assert.Equal(t, TimingDay, p.Timing)
	assert.Equal(t, "2학년 4반", p.LectureRoom)
	assert.Equal(t, "일반계", p.Department)
}

func TestMapDepartmentsAndMajors(t *testing.T) {
	departments, err := MapDepartments([]client.Row{
		{"DGHT_CRSE_SC_NM": "주간", "ORD_SC_NM": "일반계"},
		{"DGHT_CRSE_SC_NM": "산업체특별", "ORD_SC_NM": "공업계"},
	})
	require.NoError(t, err)
	assert.Equal(t, []Department{
		{Name: "일반계", Timing: TimingDay},
		{Name: "공업계", Timing: TimingIndustrySpecial},
	}, departments)

	majors, err := MapMajors([]client.Row{{"DDDEP_NM": "기계과", "ORD_SC_NM": "공업계", "DGHT_CRSE_SC_NM": "주간"}})
	require.NoError(t, err)
	assert.Equal(t, []Major{{Name: "기계과", Department: "공업계", Timing: TimingDay}}, majors)
}

func TestMapRows_ParseErrors(t *testing.T) {
	_, err := MapDepartments([]client.Row{
		{"DGHT_CRSE_SC_NM": "주간", "ORD_SC_NM": "일반계"},
		{"DGHT_CRSE_SC_NM": "새벽", "ORD_SC_NM": ""},
	})

	require.Error(t, err)
	assert.True(t, errors.Is(err, ErrParse))
	assert.Contains(t, err.Error(), "row 1")
	assert.Contains(t, err.Error(), "ORD_SC_NM")
	assert.Contains(t, err.Error(), "DGHT_CRSE_SC_NM")
}

func TestMapMeals_BadNutrient(t *testing.T) {
	_, err := MapMeals([]client.Row{{
		"MMEAL_SC_CODE": "1",
		"MLSV_YMD":      "20240304",
		"MLSV_FGR":      "10",
		"DDISH_NM":      "밥",
		"NTR_INFO":      "탄수화물(g) : many",
	}})

	assert.ErrorIs(t, err, ErrParse)
}

func TestParseRegion(t *testing.T) {
	tests := []struct {
		in   string
		want Region
		ok   bool
	}{
		{"B10", RegionSeoul, true},
		{"b10", RegionSeoul, true},
		{"gyeonggi", RegionGyeonggi, true},
		{"Jeju", RegionJeju, true},
		{"", RegionUnspecified, true},
		{"NAN", RegionUnspecified, true},
		{"Z99", "", false},
	}

	for _, tt := range tests {
		t.Run(tt.in, func(t *testing.T) {
			got, ok := ParseRegion(tt.in)
			assert.Equal(t, tt.ok, ok)
			assert.Equal(t, tt.want, got)
		})
	}

	assert.Len(t, Regions(), 18)
	assert.Equal(t, "seoul", RegionSeoul.Name())
	assert.False(t, RegionUnspecified.Specified())
}
