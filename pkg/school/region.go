package school

import "strings"

// Region is a metropolitan or provincial office of education
// (ATPT_OFCDC_SC_CODE).
type Region string

const (
	RegionUnspecified Region = "NAN"
	RegionSeoul       Region = "B10"
	RegionBusan       Region = "C10"
	RegionDaegu       Region = "D10"
	RegionIncheon     Region = "E10"
	RegionGwangju     Region = "F10"
	RegionDaejeon     Region = "G10"
	RegionUlsan       Region = "H10"
	RegionSejong      Region = "I10"
	RegionGyeonggi    Region = "J10"
	RegionGangwon     Region = "K10"
	RegionChungbuk    Region = "M10"
	RegionChungnam    Region = "N10"
	RegionJeonbuk     Region = "P10"
	RegionJeonnam     Region = "Q10"
	RegionGyeongbuk   Region = "R10"
	RegionGyeongnam   Region = "S10"
	RegionJeju        Region = "T10"
	RegionForeign     Region = "V10"
)

var regionNames = map[Region]string{
	RegionSeoul:     "seoul",
	RegionBusan:     "busan",
	RegionDaegu:     "daegu",
	RegionIncheon:   "incheon",
	RegionGwangju:   "gwangju",
	RegionDaejeon:   "daejeon",
	RegionUlsan:     "ulsan",
	RegionSejong:    "sejong",
	RegionGyeonggi:  "gyeonggi",
	RegionGangwon:   "gangwon",
	RegionChungbuk:  "chungbuk",
	RegionChungnam:  "chungnam",
	RegionJeonbuk:   "jeonbuk",
	RegionJeonnam:   "jeonnam",
	RegionGyeongbuk: "gyeongbuk",
	RegionGyeongnam: "gyeongnam",
	RegionJeju:      "jeju",
	RegionForeign:   "foreign",
}

// Regions lists every concrete region, in code order.
func Regions() []Region {
	return []Region{
		RegionSeoul, RegionBusan, RegionDaegu, RegionIncheon, RegionGwangju,
		RegionDaejeon, RegionUlsan, RegionSejong, RegionGyeonggi, RegionGangwon,
		RegionChungbuk, RegionChungnam, RegionJeonbuk, RegionJeonnam,
		RegionGyeongbuk, RegionGyeongnam, RegionJeju, RegionForeign,
	}
}

// ParseRegion accepts a code ("B10") or an English name ("seoul").
// The empty string and "NAN" yield RegionUnspecified.
func ParseRegion(s string) (Region, bool) {
	if s == "" || Region(s) == RegionUnspecified {
		return RegionUnspecified, true
	}
	lower := strings.ToLower(s)
	for region, name := range regionNames {
		if string(region) == strings.ToUpper(s) || name == lower {
			return region, true
		}
	}
	return "", false
}

// Name returns the English name of the region.
func (r Region) Name() string {
	if name, ok := regionNames[r]; ok {
		return name
	}
	return "unspecified"
}

// Specified reports whether r narrows a query.
func (r Region) Specified() bool {
	return r != "" && r != RegionUnspecified
}
