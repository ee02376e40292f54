package group

import "time"

// Group is a class owned by a teacher. Deleting the owner deletes the group.
// @Description group model
type Group struct {
	GroupID   uint      `json:"group_id" gorm:"column:group_id;primaryKey;autoIncrement"`
	Name      string    `json:"name" gorm:"column:name;not null"`
	TeacherID string    `json:"teacher_id" gorm:"column:teacher_id;not null"`
	CreatedAt time.Time `json:"created_at" gorm:"column:created_at"`
}

func (Group) TableName() string {
	return "groups"
}
