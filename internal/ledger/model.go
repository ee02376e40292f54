package ledger

import "time"

type Status string

const (
	Present Status = "present"
	Absent  Status = "absent"
)

// Event is one attendance mark. The calendar date used for uniqueness is
// derived by the database from Timestamp and is not part of the model.
// @Description attendance event
type Event struct {
	AttendanceID uint      `json:"attendance_id" gorm:"column:attendance_id;primaryKey;autoIncrement"`
	StudentID    string    `json:"student_id" gorm:"column:student_id;not null"`
	GroupID      uint      `json:"group_id" gorm:"column:group_id;not null"`
	Timestamp    time.Time `json:"timestamp" gorm:"column:timestamp;not null"`
	Status       Status    `json:"status" gorm:"column:status;not null;default:present"`
}

func (Event) TableName() string {
	return "attendance"
}

// Record is an Event joined with the subject's display name.
type Record struct {
	AttendanceID uint      `json:"attendance_id"`
	StudentID    string    `json:"student_id"`
	Name         string    `json:"name"`
	GroupID      uint      `json:"group_id"`
	Timestamp    time.Time `json:"timestamp"`
	Status       Status    `json:"status"`
}

// DayCount is the number of marks on one calendar day.
type DayCount struct {
	Day   string `json:"day"`
	Count int    `json:"count"`
}

// Result is the outcome of RecordIfAbsent.
type Result int

const (
	Recorded Result = iota + 1
	AlreadyPresent
)

func (r Result) String() string {
	switch r {
	case Recorded:
		return "recorded"
	case AlreadyPresent:
		return "already_present"
	default:
		return "unknown"
	}
}

// Period selects a window of records ending now.
type Period string

const (
	Daily  Period = "daily"
	Weekly Period = "weekly"
	All    Period = "all"
)

func (p Period) Valid() bool {
	switch p {
	case Daily, Weekly, All:
		return true
	}
	return false
}
