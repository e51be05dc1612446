package models

import (
	"github.com/go-playground/validator/v10"
)

type Role string

const (
	RoleAdmin   Role = "admin"
	RoleTeacher Role = "teacher"
	RoleStudent Role = "student"
)

// Account is a login identity. Subject is set only for teacher accounts
// and is empty otherwise.
type Account struct {
	ID           int64  `db:"id" json:"id"`
	DisplayName  string `db:"display_name" json:"display_name" validate:"required"`
	Handle       string `db:"handle" json:"handle" validate:"required"`
	PasswordHash string `db:"password_hash" json:"-"`
	Role         Role   `db:"role" json:"role" validate:"required,oneof=admin teacher student"`
	Subject      string `db:"subject" json:"subject,omitempty"`
	CreatedAt    int64  `db:"created_at" json:"created_at"`
}

func (a *Account) Validate() error {
	validate := validator.New()
	return validate.Struct(a)
}

// Actor is the authenticated (account, role, subject) triple attached to
// every request by the session layer. The core never reads ambient state:
// permission checks always take the triple explicitly.
type Actor struct {
	AccountID int64  `json:"account_id"`
	Role      Role   `json:"role"`
	Subject   string `json:"subject,omitempty"`
}
