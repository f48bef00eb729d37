package models

import "time"

// Course represents a course created by an administrator.
type Course struct {
	ID          int64     `json:"id" db:"id"`
	Title       string    `json:"title" db:"title"`
	Description *string   `json:"description,omitempty" db:"description"` // Nullable
	TeacherID   *int64    `json:"teacherId,omitempty" db:"teacher_id"`    // Nullable until a teacher is assigned
	CreatedAt   time.Time `json:"createdAt" db:"created_at"`
	UpdatedAt   time.Time `json:"updatedAt" db:"updated_at"`

	// Relations (populated when needed)
	Teacher *User `json:"teacher,omitempty"`
}

// IsTaughtBy reports whether the course is assigned to the given teacher.
func (c *Course) IsTaughtBy(teacherID int64) bool {
	return c != nil && c.TeacherID != nil && *c.TeacherID == teacherID
}
