package models

import (
	"github.com/go-playground/validator/v10"
)

// Team is a subject-scoped cohort of students preparing for the contest.
type Team struct {
	ID         int64  `db:"id" json:"id"`
	Name       string `db:"name" json:"name" validate:"required"`
	Subject    string `db:"subject" json:"subject" validate:"required"`
	GradeLevel string `db:"grade_level" json:"grade_level,omitempty"`
	CreatedAt  int64  `db:"created_at" json:"created_at"`
}

func (t *Team) Validate() error {
	validate := validator.New()
	return validate.Struct(t)
}

// TeamDetail is a team plus its roster, the shape the list endpoints return.
type TeamDetail struct {
	Team
	Members []Member `json:"members"`
}

// Member is a roster entry binding an account to a team. RosterID doubles
// as the login handle of the provisioned account; the handle keeps it
// unique across accounts, while roster rows only require it unique per
// team so one account can sit on several teams.
type Member struct {
	ID          int64  `db:"id" json:"id"`
	TeamID      int64  `db:"team_id" json:"team_id"`
	AccountID   int64  `db:"account_id" json:"account_id"`
	DisplayName string `db:"display_name" json:"display_name" validate:"required"`
	RosterID    string `db:"roster_id" json:"roster_id" validate:"required"`
	Contact     string `db:"contact" json:"contact,omitempty"`
	CreatedAt   int64  `db:"created_at" json:"created_at"`
}

func (m *Member) Validate() error {
	validate := validator.New()
	return validate.Struct(m)
}

// MemberDetail carries the team context needed for permission checks.
type MemberDetail struct {
	Member
	TeamName string `db:"team_name" json:"team_name"`
	Subject  string `db:"subject" json:"subject"`
}
