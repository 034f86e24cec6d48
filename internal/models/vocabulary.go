package models

import "strings"

// AttendanceStatus represents the status recorded for a student on a day.
type AttendanceStatus string

const (
	AttendanceStatusPresent   AttendanceStatus = "PRESENT"
	AttendanceStatusAbsent    AttendanceStatus = "ABSENT"
	AttendanceStatusTardy     AttendanceStatus = "TARDY"
	AttendanceStatusLeftEarly AttendanceStatus = "LEFT_EARLY"
)

// attendanceCycle is the tap order; it wraps after LEFT_EARLY.
var attendanceCycle = []AttendanceStatus{
	AttendanceStatusPresent,
	AttendanceStatusAbsent,
	AttendanceStatusTardy,
	AttendanceStatusLeftEarly,
}

// AttendanceStatuses lists every supported status in cycle order.
func AttendanceStatuses() []AttendanceStatus {
	out := make([]AttendanceStatus, len(attendanceCycle))
	copy(out, attendanceCycle)
	return out
}

// Valid returns true when the status is a supported value.
func (s AttendanceStatus) Valid() bool {
	for _, candidate := range attendanceCycle {
		if s == candidate {
			return true
		}
	}
	return false
}

// Next advances the status one step. An unknown or empty status starts the cycle at PRESENT.
func (s AttendanceStatus) Next() AttendanceStatus {
	for i, candidate := range attendanceCycle {
		if s == candidate {
			return attendanceCycle[(i+1)%len(attendanceCycle)]
		}
	}
	return AttendanceStatusPresent
}

// Label renders the status for prompts, e.g. "LEFT EARLY".
func (s AttendanceStatus) Label() string {
	return strings.ReplaceAll(string(s), "_", " ")
}

// ParseAttendanceStatus normalises raw input, falling back to PRESENT for unknown values.
func ParseAttendanceStatus(raw string) AttendanceStatus {
	status := AttendanceStatus(strings.ToUpper(strings.TrimSpace(raw)))
	if status.Valid() {
		return status
	}
	return AttendanceStatusPresent
}

// PerformanceColor is a stored lap rating.
type PerformanceColor string

const (
	PerformanceGreen  PerformanceColor = "GREEN"
	PerformanceYellow PerformanceColor = "YELLOW"
	PerformanceRed    PerformanceColor = "RED"
)

// Valid returns true when the color is a supported value.
func (c PerformanceColor) Valid() bool {
	switch c {
	case PerformanceGreen, PerformanceYellow, PerformanceRed:
		return true
	default:
		return false
	}
}

// ParsePerformanceColor normalises raw input, falling back to GREEN for unknown values.
func ParsePerformanceColor(raw string) PerformanceColor {
	color := PerformanceColor(strings.ToUpper(strings.TrimSpace(raw)))
	if color.Valid() {
		return color
	}
	return PerformanceGreen
}

// Rating is either unset (no stored record) or set to a color.
type Rating struct {
	Color PerformanceColor
	Set   bool
}

// Unrated is the rating represented by the absence of a record.
func Unrated() Rating {
	return Rating{}
}

// Rated wraps a stored color.
func Rated(color PerformanceColor) Rating {
	return Rating{Color: color, Set: true}
}

// Next advances unrated → GREEN → YELLOW → RED → unrated.
func (r Rating) Next() Rating {
	if !r.Set {
		return Rated(PerformanceGreen)
	}
	switch r.Color {
	case PerformanceGreen:
		return Rated(PerformanceYellow)
	case PerformanceYellow:
		return Rated(PerformanceRed)
	default:
		return Unrated()
	}
}

// String returns the color or an empty string when unrated.
func (r Rating) String() string {
	if !r.Set {
		return ""
	}
	return string(r.Color)
}

// CategoryFlag names one of the independent student attributes.
type CategoryFlag string

const (
	CategoryML     CategoryFlag = "ml"
	CategoryMLNew  CategoryFlag = "mlNew"
	CategoryIEP504 CategoryFlag = "iep504"
	CategoryEC     CategoryFlag = "ec"
	CategoryCA     CategoryFlag = "ca"
	CategoryHIIT   CategoryFlag = "hiit"
)

// Badge is the presentation of a flag or level on a desk.
type Badge struct {
	Label string `json:"label"`
	Color string `json:"color"`
}

var categoryBadges = map[CategoryFlag]Badge{
	CategoryML:     {Label: "ML", Color: "#9ecae1"},
	CategoryMLNew:  {Label: "ML", Color: "repeating-linear-gradient(45deg,#9ecae1,#9ecae1 3px,#ffffff 3px,#ffffff 6px)"},
	CategoryIEP504: {Label: "I", Color: "#f5a9b8"},
	CategoryEC:     {Label: "EC", Color: "#f7d774"},
	CategoryCA:     {Label: "CA", Color: "#ffffff"},
	CategoryHIIT:   {Label: "H", Color: "#b18ad8"},
}

// CategoryFlags lists all flags in display order.
func CategoryFlags() []CategoryFlag {
	return []CategoryFlag{CategoryML, CategoryMLNew, CategoryIEP504, CategoryEC, CategoryCA, CategoryHIIT}
}

// Valid reports whether the flag is known.
func (f CategoryFlag) Valid() bool {
	_, ok := categoryBadges[f]
	return ok
}

// Badge returns the flag's badge.
func (f CategoryFlag) Badge() Badge {
	return categoryBadges[f]
}

// ProficiencyLevel is the EOG level. The empty value means none.
type ProficiencyLevel string

const (
	ProficiencyNone  ProficiencyLevel = ""
	ProficiencyFive  ProficiencyLevel = "FIVE"
	ProficiencyFour  ProficiencyLevel = "FOUR"
	ProficiencyThree ProficiencyLevel = "THREE"
	ProficiencyNP    ProficiencyLevel = "NP"
)

// Rank orders levels FIVE > FOUR > THREE > NP > none.
func (p ProficiencyLevel) Rank() int {
	switch p {
	case ProficiencyFive:
		return 4
	case ProficiencyFour:
		return 3
	case ProficiencyThree:
		return 2
	case ProficiencyNP:
		return 1
	default:
		return 0
	}
}

// ParseProficiencyLevel returns none for unknown values.
func ParseProficiencyLevel(raw string) ProficiencyLevel {
	level := ProficiencyLevel(strings.ToUpper(strings.TrimSpace(raw)))
	if level.Rank() > 0 {
		return level
	}
	return ProficiencyNone
}

// Badge returns the desk badge, ok=false for none.
func (p ProficiencyLevel) Badge() (Badge, bool) {
	switch p {
	case ProficiencyFive:
		return Badge{Label: "5", Color: "#1f4c8f"}, true
	case ProficiencyFour:
		return Badge{Label: "4", Color: "#4caf50"}, true
	case ProficiencyThree:
		return Badge{Label: "3", Color: "#f2994a"}, true
	case ProficiencyNP:
		return Badge{Label: "NP", Color: "#e74c3c"}, true
	default:
		return Badge{}, false
	}
}
