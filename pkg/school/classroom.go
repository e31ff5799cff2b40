package school

import (
	"github.com/Sternrassler/neis-client/pkg/client"
	"github.com/google/uuid"
)

// CourseType is SCHUL_CRSE_SC_NM.
type CourseType string

const (
	CoursePreschool  CourseType = "preschool"
	CourseElementary CourseType = "elementary"
	CourseMiddle     CourseType = "middle"
	CourseHigh       CourseType = "high"
	CourseSpeciality CourseType = "speciality"
)

// DetailedCourseType is ORD_SC_NM. Empty when unrecognised.
type DetailedCourseType string

const (
	DetailNormal        DetailedCourseType = "normal"
	DetailVocational    DetailedCourseType = "vocational"
	DetailSpecialized   DetailedCourseType = "specialized"
	DetailInternational DetailedCourseType = "international"
	DetailBusiness      DetailedCourseType = "business"
	DetailCommerce      DetailedCourseType = "commerce"
	DetailTechnical     DetailedCourseType = "technical"
	DetailAgriculture   DetailedCourseType = "agriculture"
	DetailFisheries     DetailedCourseType = "fisheries"
	DetailIntegrated    DetailedCourseType = "integrated"
	DetailLanguage      DetailedCourseType = "language"
	DetailScience       DetailedCourseType = "science"
	DetailPhysical      DetailedCourseType = "physical"
	DetailArt           DetailedCourseType = "art"
	DetailAlternative   DetailedCourseType = "alternative"
	DetailTraining      DetailedCourseType = "training"
)

func parseDetailedCourse(s string) DetailedCourseType {
	switch s {
	case "일반계":
		return DetailNormal
	case "전문계":
		return DetailVocational
	case "특성화":
		return DetailSpecialized
	case "국제계":
		return DetailInternational
	case "가사실업계열", "가사실업계", "가사계":
		return DetailBusiness
	case "전자미디어계", "상업정보계열", "상업계", "직업":
		return DetailCommerce
	case "공업계열", "공업계":
		return DetailTechnical
	case "도시형첨단농업경영계열", "농생명산업계열", "농생명계", "농업계":
		return DetailAgriculture
	case "수산해양계":
		return DetailFisheries
	case "통합계":
		return DetailIntegrated
	case "외국어계":
		return DetailLanguage
	case "과학계":
		return DetailScience
	case "체육계":
		return DetailPhysical
	case "예술계":
		return DetailArt
	case "대안":
		return DetailAlternative
	case "공동실습소":
		return DetailTraining
	default:
		return ""
	}
}

func parseCourse(s string) CourseType {
	switch s {
	case "초등학교":
		return CourseElementary
	case "중학교":
		return CourseMiddle
	case "고등학교":
		return CourseHigh
	case "유치원":
		return CoursePreschool
	default:
		return CourseSpeciality
	}
}

func parseDayNight(s string) Timing {
	switch s {
	case "주간":
		return TimingDay
	case "야간":
		return TimingNight
	default:
		return ""
	}
}

// Classroom is one classInfo row.
type Classroom struct {
	Year  int
	Grade int
	// Name is CLASS_NM, or a generated UUID when the service leaves it empty.
	Name         string
	Department   string
	Course       CourseType
	CourseDetail DetailedCourseType
	Timing       Timing
}

// Classrooms is a list of classrooms with a grade selector.
type Classrooms []Classroom

// Grade returns the classrooms of grade n.
func (c Classrooms) Grade(n int) Classrooms {
	var out Classrooms
	for _, room := range c {
		if room.Grade == n {
			out = append(out, room)
		}
	}
	return out
}

func mapClassroom(r *rowReader) Classroom {
	name := r.str("CLASS_NM")
	if name == "" {
		name = uuid.NewString()
	}

	return Classroom{
		Year:         r.integer("AY"),
		Grade:        r.integer("GRADE"),
		Name:         name,
		Department:   r.str("DDDEP_NM"),
		Course:       parseCourse(r.str("SCHUL_CRSE_SC_NM")),
		CourseDetail: parseDetailedCourse(r.str("ORD_SC_NM")),
		Timing:       parseDayNight(r.str("DGHT_CRSE_SC_NM")),
	}
}

// MapClassrooms maps classInfo rows.
func MapClassrooms(rows []client.Row) (Classrooms, error) {
	return mapRows(client.ServiceClassroom, rows, mapClassroom)
}
