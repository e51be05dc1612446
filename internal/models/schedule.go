package models

import (
	"github.com/go-playground/validator/v10"
)

// Schedule is a practice session slot for a team. Date is the unix
// timestamp of the session day, Starts/Ends are "15:04" wall-clock strings.
type Schedule struct {
	ID        int64  `db:"id" json:"id"`
	TeamID    int64  `db:"team_id" json:"team_id" validate:"required"`
	Date      int64  `db:"date" json:"date" validate:"required"`
	Starts    string `db:"starts" json:"starts" validate:"required"`
	Ends      string `db:"ends" json:"ends" validate:"required"`
	Location  string `db:"location" json:"location,omitempty"`
	Notes     string `db:"notes" json:"notes,omitempty"`
	CreatedBy int64  `db:"created_by" json:"created_by"`
}

func (s *Schedule) Validate() error {
	validate := validator.New()
	return validate.Struct(s)
}
