package school

import (
	"time"

	"github.com/Sternrassler/neis-client/pkg/client"
)

// FoundationType is the founding body of a school (FOND_SC_NM).
type FoundationType string

const (
	FoundationUnspecified FoundationType = "unspecified"
	FoundationPublic      FoundationType = "public"
	FoundationPrivate     FoundationType = "private"
)

// SchoolCategory is the school kind (SCHUL_KND_SC_NM).
type SchoolCategory string

const (
	CategoryElementary     SchoolCategory = "elementary"
	CategoryMiddle         SchoolCategory = "middle"
	CategoryHigh           SchoolCategory = "high"
	CategorySpecial        SchoolCategory = "special"
	CategoryBroadcastHigh  SchoolCategory = "broadcast_high"
	CategoryBroadcastMid   SchoolCategory = "broadcast_middle"
	CategoryMiscHigh       SchoolCategory = "misc_high"
	CategoryMiscMiddle     SchoolCategory = "misc_middle"
	CategoryMiscElementary SchoolCategory = "misc_elementary"
	CategoryOther          SchoolCategory = "other"
)

// TimetableKind returns the timetable service that covers this kind of
// school.
func (c SchoolCategory) TimetableKind() (TimetableKind, bool) {
	switch c {
	case CategoryElementary, CategoryMiscElementary:
		return TimetableElementary, true
	case CategoryMiddle, CategoryBroadcastMid, CategoryMiscMiddle:
		return TimetableMiddle, true
	case CategoryHigh, CategoryBroadcastHigh, CategoryMiscHigh:
		return TimetableHigh, true
	case CategorySpecial:
		return TimetableSpecial, true
	default:
		return "", false
	}
}

// HighSchoolCategory is HS_GNRL_BUSNS_SC_NM. Empty for non-high schools.
type HighSchoolCategory string

const (
	HighSchoolNormal     HighSchoolCategory = "normal"
	HighSchoolVocational HighSchoolCategory = "vocational"
)

// HighSchoolSubtype is HS_SC_NM. Empty when the service leaves it blank.
type HighSchoolSubtype string

const (
	SubtypeNormal         HighSchoolSubtype = "normal"
	SubtypeSpecialized    HighSchoolSubtype = "specialized"
	SubtypeSpecialPurpose HighSchoolSubtype = "special_purpose"
	SubtypeAutonomous     HighSchoolSubtype = "autonomous"
	SubtypeOther          HighSchoolSubtype = "other"
)

// SchoolPurpose is SPCLY_PURPS_HS_ORD_NM for special-purpose high schools.
type SchoolPurpose string

const (
	PurposeInternational SchoolPurpose = "international"
	PurposePhysical      SchoolPurpose = "physical"
	PurposeArt           SchoolPurpose = "art"
	PurposeScience       SchoolPurpose = "science"
	PurposeLanguage      SchoolPurpose = "language"
	PurposeIndustry      SchoolPurpose = "industry"
)

// Timing is a day or night course.
type Timing string

const (
	TimingDay             Timing = "day"
	TimingNight           Timing = "night"
	TimingBoth            Timing = "both"
	TimingIndustrySpecial Timing = "industry_special"
)

// AdmissionPeriod is ENE_BFE_SEHF_SC_NM.
type AdmissionPeriod string

const (
	AdmissionEarly AdmissionPeriod = "early"
	AdmissionLate  AdmissionPeriod = "late"
	AdmissionBoth  AdmissionPeriod = "both"
)

// GenderComposition is COEDU_SC_NM.
type GenderComposition string

const (
	GenderMixed     GenderComposition = "mixed"
	GenderBoysOnly  GenderComposition = "boys_only"
	GenderGirlsOnly GenderComposition = "girls_only"
)

// SchoolRef identifies a school for the per-school services.
type SchoolRef struct {
	Code   string
	Region Region
}

// SchoolInfo is one schoolInfo row.
type SchoolInfo struct {
	Code        string
	Name        string
	EnglishName string
	Region      Region

	Foundation         FoundationType
	Category           SchoolCategory
	HighSchoolCategory HighSchoolCategory
	Subtype            HighSchoolSubtype
	Purpose            SchoolPurpose
	Timing             Timing
	AdmissionPeriod    AdmissionPeriod
	Gender             GenderComposition
	IndustrySupport    bool

	Address       string
	AddressDetail string
	// ZipCode keeps leading zeros; empty when unknown.
	ZipCode      string
	Jurisdiction string
	Tel          string
	Fax          string
	Website      string

	Founded     time.Time
	Anniversary time.Time
}

// Ref returns the reference used by the per-school services.
func (s SchoolInfo) Ref() SchoolRef {
	return SchoolRef{Code: s.Code, Region: s.Region}
}

func mapSchoolInfo(r *rowReader) SchoolInfo {
	info := SchoolInfo{
		Code:          r.required("SD_SCHUL_CODE"),
		Name:          r.required("SCHUL_NM"),
		EnglishName:   r.str("ENG_SCHUL_NM"),
		Region:        Region(r.required("ATPT_OFCDC_SC_CODE")),
		Address:       r.str("ORG_RDNMA"),
		AddressDetail: r.str("ORG_RDNDA"),
		ZipCode:       r.str("ORG_RDNZC"),
		Jurisdiction:  r.str("JU_ORG_NM"),
		Tel:           r.str("ORG_TELNO"),
		Fax:           r.str("ORG_FAXNO"),
		Website:       r.str("HMPG_ADRES"),
		Founded:       r.date("FOND_YMD", true),
		Anniversary:   r.date("FOAS_MEMRD", true),

		IndustrySupport: r.yes("INDST_SPECL_CCCCL_EXST_YN"),
	}

	switch r.str("FOND_SC_NM") {
	case "공립":
		info.Foundation = FoundationPublic
	case "사립":
		info.Foundation = FoundationPrivate
	default:
		info.Foundation = FoundationUnspecified
	}

	switch r.str("SCHUL_KND_SC_NM") {
	case "초등학교":
		info.Category = CategoryElementary
	case "중학교":
		info.Category = CategoryMiddle
	case "고등학교":
		info.Category = CategoryHigh
	case "특수학교":
		info.Category = CategorySpecial
	case "방송통신고등학교":
		info.Category = CategoryBroadcastHigh
	case "방송통신중학교":
		info.Category = CategoryBroadcastMid
	case "각종학교(고)":
		info.Category = CategoryMiscHigh
	case "각종학교(중)":
		info.Category = CategoryMiscMiddle
	case "각종학교(초)":
		info.Category = CategoryMiscElementary
	default:
		info.Category = CategoryOther
	}

	switch r.str("HS_GNRL_BUSNS_SC_NM") {
	case "일반계":
		info.HighSchoolCategory = HighSchoolNormal
	case "전문계":
		info.HighSchoolCategory = HighSchoolVocational
	}

	if r.has("HS_SC_NM") {
		switch r.str("HS_SC_NM") {
		case "", "  ":
		case "일반고":
			info.Subtype = SubtypeNormal
		case "특성화고":
			info.Subtype = SubtypeSpecialized
		case "특목고":
			info.Subtype = SubtypeSpecialPurpose
		case "자율고":
			info.Subtype = SubtypeAutonomous
		default:
			info.Subtype = SubtypeOther
		}
	}

	if r.has("SPCLY_PURPS_HS_ORD_NM") {
		switch r.str("SPCLY_PURPS_HS_ORD_NM") {
		case "":
		case "국제계열":
			info.Purpose = PurposeInternational
		case "체육계열":
			info.Purpose = PurposePhysical
		case "예술계열":
			info.Purpose = PurposeArt
		case "과학계열":
			info.Purpose = PurposeScience
		case "외국어계열":
			info.Purpose = PurposeLanguage
		default:
			info.Purpose = PurposeIndustry
		}
	}

	switch r.str("DGHT_SC_NM") {
	case "주간":
		info.Timing = TimingDay
	case "야간":
		info.Timing = TimingNight
	default:
		info.Timing = TimingBoth
	}

	switch r.str("ENE_BFE_SEHF_SC_NM") {
	case "전기":
		info.AdmissionPeriod = AdmissionEarly
	case "후기":
		info.AdmissionPeriod = AdmissionLate
	default:
		info.AdmissionPeriod = AdmissionBoth
	}

	switch r.str("COEDU_SC_NM") {
	case "남여공학":
		info.Gender = GenderMixed
	case "남":
		info.Gender = GenderBoysOnly
	default:
		info.Gender = GenderGirlsOnly
	}

	return info
}

// MapSchoolInfo maps schoolInfo rows.
func MapSchoolInfo(rows []client.Row) ([]SchoolInfo, error) {
	return mapRows(client.ServiceSchoolInfo, rows, mapSchoolInfo)
}
