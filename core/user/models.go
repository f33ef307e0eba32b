package user

import (
	"time"

	"github.com/go-playground/validator/v10"
	"github.com/volatiletech/null/v8"
	"golang.org/x/crypto/bcrypt"

	"github.com/trezcool/darasa/core"
)

// Role is closed: a User is either a teacher or a student.
type Role string

const (
	RoleTeacher Role = "teacher"
	RoleStudent Role = "student"
)

var AllRoles = []Role{RoleTeacher, RoleStudent}

func (r Role) Valid() bool {
	return r == RoleTeacher || r == RoleStudent
}

func (r Role) String() string { return string(r) }

type User struct {
	ID             int         `json:"id" db:"id"`
	Username       string      `json:"username" db:"username"`
	PasswordHash   []byte      `json:"-" db:"password"`
	Role           Role        `json:"role" db:"role"`
	FullName       null.String `json:"fullName" db:"full_name"`
	ProfilePicture null.String `json:"profilePicture" db:"profile_picture"`
	Email          null.String `json:"email" db:"email"`
	CreatedAt      time.Time   `json:"createdAt" db:"created_at"` // UTC
}

func (u *User) SetPassword(pwd string) error {
	hash, err := bcrypt.GenerateFromPassword([]byte(pwd), bcrypt.DefaultCost)
	if err != nil {
		return err
	}
	u.PasswordHash = hash
	return nil
}

func (u *User) CheckPassword(pwd string) error {
	return bcrypt.CompareHashAndPassword(u.PasswordHash, []byte(pwd))
}

func (u User) IsTeacher() bool { return u.Role == RoleTeacher }
func (u User) IsStudent() bool { return u.Role == RoleStudent }

// DisplayName is the full name when set, the username otherwise.
func (u User) DisplayName() string {
	if u.FullName.Valid && u.FullName.String != "" {
		return u.FullName.String
	}
	return u.Username
}

// NewUser contains information needed to register a new User.
type NewUser struct {
	Username string `json:"username" validate:"required,min=3,max=50,alphanum_"`
	Password string `json:"password" validate:"required"`
	Role     Role   `json:"role" validate:"role"`
	FullName string `json:"fullName" validate:"max=100"`
	Email    string `json:"email" validate:"omitempty,email"`
}

func (nu *NewUser) Validate(validate *validator.Validate) error {
	nu.Username = core.CleanString(nu.Username, true /* lower */)
	nu.FullName = core.CleanString(nu.FullName)
	nu.Email = core.CleanString(nu.Email, true /* lower */)
	if nu.Role == "" {
		nu.Role = RoleStudent
	}
	return validate.Struct(nu)
}

// UpdateProfile defines what a User may change about themselves. The role is never updatable.
type UpdateProfile struct {
	FullName       *string `json:"fullName" validate:"omitempty,max=100"`
	ProfilePicture *string `json:"profilePicture" validate:"omitempty,url"`
	Email          *string `json:"email" validate:"omitempty,email"`
}

func (up *UpdateProfile) Validate(validate *validator.Validate) error {
	clean := func(s *string, lower bool) {
		if s != nil {
			*s = core.CleanString(*s, lower)
		}
	}
	clean(up.FullName, false)
	clean(up.ProfilePicture, false)
	clean(up.Email, true)
	return validate.Struct(up)
}

type Credentials struct {
	Username string `json:"username" validate:"required"`
	Password string `json:"password" validate:"required"`
}

func (c *Credentials) Validate(validate *validator.Validate) error {
	c.Username = core.CleanString(c.Username, true /* lower */)
	return validate.Struct(c)
}

type GetFilter struct {
	ID       int
	Username string
}

// nullString maps "" to NULL.
func nullString(s string) null.String {
	return null.NewString(s, s != "")
}
