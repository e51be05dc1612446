package models

import (
	"github.com/go-playground/validator/v10"
)

// Evaluation is a free-text remark about a roster member, same ownership
// shape as Score: belongs to a member, authored by an account, removed when
// the member is removed.
type Evaluation struct {
	ID        int64  `db:"id" json:"id"`
	MemberID  int64  `db:"member_id" json:"member_id" validate:"required"`
	Content   string `db:"content" json:"content" validate:"required"`
	CreatedBy int64  `db:"created_by" json:"created_by"`
	CreatedAt int64  `db:"created_at" json:"created_at"`
}

func (e *Evaluation) Validate() error {
	validate := validator.New()
	return validate.Struct(e)
}
