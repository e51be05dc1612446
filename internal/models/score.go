package models

import (
	"time"

	"github.com/go-playground/validator/v10"
)

// Score is a single test result recorded for a roster member. RawScore and
// MaxScore keep the original scale; consumers normalize onto 0..10 via
// access.Pct. ExamDate is a unix timestamp, zero when the exam date was not
// supplied, in which case CreatedAt stands in for grouping.
type Score struct {
	ID         int64   `db:"id" json:"id"`
	MemberID   int64   `db:"member_id" json:"member_id" validate:"required"`
	Label      string  `db:"label" json:"label" validate:"required"`
	RawScore   float64 `db:"raw_score" json:"raw_score"`
	MaxScore   float64 `db:"max_score" json:"max_score"`
	ExamDate   int64   `db:"exam_date" json:"exam_date,omitempty"`
	Notes      string  `db:"notes" json:"notes,omitempty"`
	RecordedBy int64   `db:"recorded_by" json:"recorded_by"`
	CreatedAt  int64   `db:"created_at" json:"created_at"`
}

func (s *Score) Validate() error {
	validate := validator.New()
	return validate.Struct(s)
}

// EffectiveTime is the instant used for month/year grouping: the exam date
// when known, the recording time otherwise.
func (s *Score) EffectiveTime() time.Time {
	if s.ExamDate > 0 {
		return time.Unix(s.ExamDate, 0).UTC()
	}
	return time.Unix(s.CreatedAt, 0).UTC()
}

// ScoreDetail is a score joined with its member and team, the unit the
// visibility filter and the statistics aggregator operate on.
type ScoreDetail struct {
	Score
	MemberName      string `db:"member_name" json:"member_name"`
	MemberAccountID int64  `db:"member_account_id" json:"member_account_id"`
	TeamID          int64  `db:"team_id" json:"team_id"`
	TeamName        string `db:"team_name" json:"team_name"`
	Subject         string `db:"subject" json:"subject"`
}

// SubjectTeacher identifies the teacher responsible for a score's subject,
// attached to score reads as a lookup join.
type SubjectTeacher struct {
	Name  string `json:"name"`
	Email string `json:"email"`
}

type ScoreView struct {
	ScoreDetail
	SubjectTeacher *SubjectTeacher `json:"subject_teacher,omitempty"`
}
