package models

import "time"

// User mirrors the 'users' table. Accounts are owned by the external
// authentication system; this service only reads them.
type User struct {
	ID        int64     `json:"id" db:"id" example:"1"`
	Email     string    `json:"email" db:"email" example:"teacher@school.edu"`
	FirstName string    `json:"firstName" db:"first_name" example:"Anna"`
	LastName  string    `json:"lastName" db:"last_name" example:"Petrova"`
	Role      Role      `json:"role" db:"role" example:"TEACHER"`
	CreatedAt time.Time `json:"createdAt" db:"created_at"`
}

// FullName joins first and last name.
func (u *User) FullName() string {
	if u == nil {
		return ""
	}
	if u.LastName == "" {
		return u.FirstName
	}
	return u.FirstName + " " + u.LastName
}
