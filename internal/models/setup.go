package models

// SetupCounts feeds the setup status gate.
type SetupCounts struct {
	BlocksCount   int `db:"blocks_count" json:"blocksCount"`
	StudentsCount int `db:"students_count" json:"studentsCount"`
	DesksCount    int `db:"desks_count" json:"desksCount"`
	LapsCount     int `db:"laps_count" json:"lapsCount"`
}

// SetupStep is one stage of classroom setup.
type SetupStep string

const (
	SetupStepBlocks    SetupStep = "blocks"
	SetupStepStudents  SetupStep = "students"
	SetupStepSeating   SetupStep = "seating"
	SetupStepLaps      SetupStep = "laps"
	SetupStepReporting SetupStep = "reporting"
)
