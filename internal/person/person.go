package person

import (
	"time"
)

// Role represents the set of possible user roles.
// @Description user role type: "student", "teacher" or "admin"
type Role string

const (
	// Student is a subject whose face is enrolled and scanned
	Student Role = "student"
	// Teacher supervises and owns groups
	Teacher Role = "teacher"
	// Admin manages the appliance
	Admin Role = "admin"
)

func (r Role) Valid() bool {
	switch r {
	case Student, Teacher, Admin:
		return true
	default:
		return false
	}
}

// Person represents a user in the system.
// swagger:model PersonResponse
// @Description person model
// @Property user_id     body string true "externally assigned identifier"
// @Property name        body string true "display name"
// @Property role        body string true "user role"
// @Property created_at  body string true "record creation timestamp"
type Person struct {
	// UserID is stable and immutable once created
	UserID    string    `json:"user_id" gorm:"column:user_id;primaryKey"`
	Name      string    `json:"name" gorm:"column:name;not null"`
	Role      Role      `json:"role" gorm:"column:role;default:'student'"`
	CreatedAt time.Time `json:"created_at" gorm:"column:created_at"`
}

func (Person) TableName() string {
	return "users"
}

// NewPerson initializes a new Person, defaulting to the student role.
func NewPerson(userID, name string, role Role) *Person {
	if role == "" {
		role = Student
	}
	return &Person{
		UserID: userID,
		Name:   name,
		Role:   role,
	}
}
