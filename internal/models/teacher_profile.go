package models

import (
	"github.com/go-playground/validator/v10"
)

// TeacherProfile describes a subject teacher. AccountID links the profile
// to its login account when one exists, zero otherwise.
type TeacherProfile struct {
	ID        int64  `db:"id" json:"id"`
	FullName  string `db:"full_name" json:"full_name" validate:"required"`
	Subject   string `db:"subject" json:"subject" validate:"required"`
	Email     string `db:"email" json:"email" validate:"required,email"`
	Phone     string `db:"phone" json:"phone,omitempty"`
	AccountID int64  `db:"account_id" json:"account_id,omitempty"`
}

func (p *TeacherProfile) Validate() error {
	validate := validator.New()
	return validate.Struct(p)
}
