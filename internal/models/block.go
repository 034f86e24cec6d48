package models

import (
	"fmt"
	"time"
)

// Block is a scheduled class period owned by a school year.
type Block struct {
	ID           string    `db:"id" json:"id"`
	SchoolYearID string    `db:"school_year_id" json:"school_year_id"`
	Number       int       `db:"block_number" json:"number"`
	Name         string    `db:"block_name" json:"name"`
	Archived     bool      `db:"archived" json:"archived"`
	CreatedAt    time.Time `db:"created_at" json:"created_at"`
	UpdatedAt    time.Time `db:"updated_at" json:"updated_at"`
}

// Label renders "Block <number> · <name>".
func (b Block) Label() string {
	return fmt.Sprintf("Block %d · %s", b.Number, b.Name)
}
