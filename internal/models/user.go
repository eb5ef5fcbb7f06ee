package models

import "time"

// UserType enumerates the three roles in the onboarding chain.
type UserType string

const (
	UserTypeSuperAdmin UserType = "SuperAdmin"
	UserTypeTeacher    UserType = "Teacher"
	UserTypeStudent    UserType = "Student"
)

// Valid reports whether the value is one of the known roles.
func (t UserType) Valid() bool {
	switch t {
	case UserTypeSuperAdmin, UserTypeTeacher, UserTypeStudent:
		return true
	}
	return false
}

// User is an identity record scoped to an institute. InstituteName is the
// tenant key and is stored lowercased; comparisons against it are therefore
// exact. A Teacher or Student record starts life pre-registered and inactive
// until its owner claims it through signup.
type User struct {
	ID                     string    `json:"id"`
	FirstName              string    `json:"firstName"`
	LastName               string    `json:"lastName"`
	Email                  string    `json:"email"`
	PasswordHash           string    `json:"passwordHash,omitempty"`
	UserType               UserType  `json:"userType"`
	InstituteName          string    `json:"instituteName"`
	IsActivated            bool      `json:"isActivated"`
	IsPreRegisteredByAdmin bool      `json:"isPreRegisteredByAdmin"`
	CreatedAt              time.Time `json:"createdAt"`
}

// Sanitized returns a copy with the credential field stripped, safe to hand
// back to callers.
func (u User) Sanitized() User {
	u.PasswordHash = ""
	return u
}

// IsStaff reports whether the user may manage students and assignments.
func (u User) IsStaff() bool {
	return u.UserType == UserTypeTeacher || u.UserType == UserTypeSuperAdmin
}

// SignupRequest carries a signup or account-claim submission.
type SignupRequest struct {
	FirstName       string   `json:"firstName" validate:"required"`
	LastName        string   `json:"lastName"`
	Email           string   `json:"email" validate:"required,email"`
	Password        string   `json:"password"`
	ConfirmPassword string   `json:"confirmPassword"`
	UserType        UserType `json:"userType" validate:"required"`
	InstituteName   string   `json:"instituteName"`
}

// LoginRequest holds credentials for authenticating a user.
type LoginRequest struct {
	Email         string `json:"email" validate:"required,email"`
	Password      string `json:"password" validate:"required"`
	InstituteName string `json:"instituteName" validate:"required"`
}

// AddUserRequest carries the pre-registration payload used by staff when
// adding a student, and by a SuperAdmin when adding a teacher.
type AddUserRequest struct {
	FirstName string `json:"firstName" validate:"required"`
	LastName  string `json:"lastName"`
	Email     string `json:"email" validate:"required,email"`
}
