package client

import (
	"sort"
	"strconv"
	"strings"
)

// DefaultBaseURL is the root of the NEIS open-data hub.
const DefaultBaseURL = "https://open.neis.go.kr/hub/"

// Page size ceilings for the hub's two rate tiers.
const (
	// MaxPageSizeAuthenticated is the largest pSize the hub accepts with a key.
	MaxPageSizeAuthenticated = 1000

	// MaxPageSizeAnonymous is the sample-tier ceiling used without a key.
	MaxPageSizeAnonymous = 5
)

// Service identifies one hub endpoint. The value doubles as the envelope key
// of a successful response.
type Service string

const (
	ServiceSchoolInfo  Service = "schoolInfo"
	ServiceSchedule    Service = "SchoolSchedule"
	ServiceMeal        Service = "mealServiceDietInfo"
	ServiceClassroom   Service = "classInfo"
	ServiceLectureRoom Service = "tiClrminfo"
	ServiceTimetableE  Service = "elsTimetable"
	ServiceTimetableM  Service = "misTimetable"
	ServiceTimetableH  Service = "hisTimetable"
	ServiceTimetableS  Service = "spsTimetable"
	ServiceDepartment  Service = "schoolAflcoInfo"
	ServiceMajor       Service = "schoolMajorInfo"
)

// Services lists every endpoint the client knows about.
func Services() []Service {
	return []Service{
		ServiceSchoolInfo,
		ServiceSchedule,
		ServiceMeal,
		ServiceClassroom,
		ServiceLectureRoom,
		ServiceTimetableE,
		ServiceTimetableM,
		ServiceTimetableH,
		ServiceTimetableS,
		ServiceDepartment,
		ServiceMajor,
	}
}

// ParseService resolves an endpoint name. Unknown names are rejected.
func ParseService(name string) (Service, bool) {
	for _, s := range Services() {
		if string(s) == name {
			return s, true
		}
	}
	return "", false
}

// String returns the endpoint path segment.
func (s Service) String() string {
	return string(s)
}

// Params holds entity-specific filter fields. They are opaque to the client
// and passed through verbatim.
type Params map[string]string

// SetInt stores an integer filter value.
func (p Params) SetInt(key string, value int) {
	p[key] = strconv.Itoa(value)
}

// Clone returns an independent copy.
func (p Params) Clone() Params {
	out := make(Params, len(p))
	for k, v := range p {
		out[k] = v
	}
	return out
}

// Filters returns a copy of p without the names the session sets itself.
func (p Params) Filters() Params {
	out := make(Params, len(p))
	for k, v := range p {
		if !IsReservedParam(k) {
			out[k] = v
		}
	}
	return out
}

// IsReservedParam reports whether name is one of the request parameters the
// session owns (KEY, Type, pIndex, pSize). The hub matches them
// case-insensitively.
func IsReservedParam(name string) bool {
	switch strings.ToUpper(name) {
	case "KEY", "TYPE", "PINDEX", "PSIZE":
		return true
	}
	return false
}

// Keys returns the parameter names in sorted order.
func (p Params) Keys() []string {
	keys := make([]string, 0, len(p))
	for k := range p {
		keys = append(keys, k)
	}
	sort.Strings(keys)
	return keys
}

// PageRequest is a single HTTP call against a service.
type PageRequest struct {
	Service Service
	Params  Params

	// Index is 1-based.
	Index int
	Size  int
}

// DerivePageSize returns the page-size ceiling for the tier implied by apiKey.
func DerivePageSize(apiKey string) int {
	if apiKey == "" {
		return MaxPageSizeAnonymous
	}
	return MaxPageSizeAuthenticated
}
