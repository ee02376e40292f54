package utils

import (
	"fmt"

	"gorm.io/gorm"
)

// Tables and columns follow the fixed storage contract shared with the
// dashboard. attendance_date is generated by the database from "timestamp" and
// is never written by the application.
var postgresSchema = []string{
	`CREATE TABLE IF NOT EXISTS users (
		user_id VARCHAR(64) PRIMARY KEY,
		name VARCHAR(255) NOT NULL,
		role VARCHAR(16) NOT NULL DEFAULT 'student' CHECK (role IN ('student', 'teacher', 'admin')),
		created_at TIMESTAMP NOT NULL DEFAULT now()
	)`,
	`CREATE TABLE IF NOT EXISTS "groups" (
		group_id SERIAL PRIMARY KEY,
		name VARCHAR(255) NOT NULL,
		teacher_id VARCHAR(64) NOT NULL REFERENCES users(user_id) ON DELETE CASCADE,
		created_at TIMESTAMP NOT NULL DEFAULT now()
	)`,
	`CREATE TABLE IF NOT EXISTS attendance (
		attendance_id SERIAL PRIMARY KEY,
		student_id VARCHAR(64) NOT NULL REFERENCES users(user_id) ON DELETE CASCADE,
		group_id INTEGER NOT NULL REFERENCES "groups"(group_id) ON DELETE CASCADE,
		"timestamp" TIMESTAMP NOT NULL DEFAULT now(),
		status VARCHAR(16) NOT NULL DEFAULT 'present' CHECK (status IN ('present', 'absent')),
		attendance_date DATE GENERATED ALWAYS AS (("timestamp")::date) STORED,
		CONSTRAINT uq_attendance_student_group_date UNIQUE (student_id, group_id, attendance_date)
	)`,
}

var sqliteSchema = []string{
	`CREATE TABLE IF NOT EXISTS users (
		user_id TEXT PRIMARY KEY,
		name TEXT NOT NULL,
		role TEXT NOT NULL DEFAULT 'student' CHECK (role IN ('student', 'teacher', 'admin')),
		created_at DATETIME NOT NULL DEFAULT CURRENT_TIMESTAMP
	)`,
	`CREATE TABLE IF NOT EXISTS "groups" (
		group_id INTEGER PRIMARY KEY AUTOINCREMENT,
		name TEXT NOT NULL,
		teacher_id TEXT NOT NULL REFERENCES users(user_id) ON DELETE CASCADE,
		created_at DATETIME NOT NULL DEFAULT CURRENT_TIMESTAMP
	)`,
	`CREATE TABLE IF NOT EXISTS attendance (
		attendance_id INTEGER PRIMARY KEY AUTOINCREMENT,
		student_id TEXT NOT NULL REFERENCES users(user_id) ON DELETE CASCADE,
		group_id INTEGER NOT NULL REFERENCES "groups"(group_id) ON DELETE CASCADE,
		"timestamp" DATETIME NOT NULL DEFAULT CURRENT_TIMESTAMP,
		status TEXT NOT NULL DEFAULT 'present' CHECK (status IN ('present', 'absent')),
		attendance_date TEXT GENERATED ALWAYS AS (substr("timestamp", 1, 10)) STORED,
		CONSTRAINT uq_attendance_student_group_date UNIQUE (student_id, group_id, attendance_date)
	)`,
}

// Migrate applies the schema idempotently for the connected dialect.
func Migrate(db *gorm.DB) error {
	var statements []string
	switch name := db.Dialector.Name(); name {
	case "postgres":
		statements = postgresSchema
	case "sqlite":
		statements = sqliteSchema
	default:
		return fmt.Errorf("no schema for dialect %q", name)
	}

	return db.Transaction(func(tx *gorm.DB) error {
		for _, stmt := range statements {
			if err := tx.Exec(stmt).Error; err != nil {
				return fmt.Errorf("apply schema: %w", err)
			}
		}
		return nil
	})
}
