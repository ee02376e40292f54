package ledger

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/jackc/pgx/v5/pgconn"
	"gorm.io/gorm"
)

var (
	// ErrStorageFailure wraps every write failure other than the uniqueness
	// constraint on (student_id, group_id, attendance_date).
	ErrStorageFailure       = errors.New("attendance storage failure")
	ErrUnresponsiveDatabase = errors.New("error occured during reading attendance table")
)

type LedgerRepository interface {
	// RecordIfAbsent inserts a present mark stamped at. The database decides
	// whether the mark is new; the caller never checks first.
	RecordIfAbsent(ctx context.Context, studentID string, groupID uint, at time.Time) (Result, error)
	List(ctx context.Context, since time.Time) ([]Record, error)
	ListEvents(ctx context.Context, since time.Time) ([]Event, error)
	CountByDay(ctx context.Context, since time.Time) ([]DayCount, error)
}

type ledgerRepository struct {
	db *gorm.DB
}

func NewLedgerRepository(db *gorm.DB) LedgerRepository {
	return &ledgerRepository{db: db}
}

func (r *ledgerRepository) RecordIfAbsent(ctx context.Context, studentID string, groupID uint, at time.Time) (Result, error) {
	ev := &Event{
		StudentID: studentID,
		GroupID:   groupID,
		Timestamp: at,
		Status:    Present,
	}
	err := r.db.WithContext(ctx).Create(ev).Error
	switch {
	case err == nil:
		return Recorded, nil
	case isUniqueViolation(err):
		return AlreadyPresent, nil
	default:
		return 0, fmt.Errorf("%w: %v", ErrStorageFailure, err)
	}
}

func (r *ledgerRepository) List(ctx context.Context, since time.Time) ([]Record, error) {
	var records []Record
	q := r.db.WithContext(ctx).
		Table("attendance AS a").
		Select(`a.attendance_id, a.student_id, u.name, a.group_id, a."timestamp", a.status`).
		Joins("JOIN users AS u ON u.user_id = a.student_id").
		Order(`a."timestamp" DESC`)
	if !since.IsZero() {
		q = q.Where(`a."timestamp" >= ?`, since)
	}
	if err := q.Scan(&records).Error; err != nil {
		return nil, ErrUnresponsiveDatabase
	}
	return records, nil
}

func (r *ledgerRepository) ListEvents(ctx context.Context, since time.Time) ([]Event, error) {
	var events []Event
	q := r.db.WithContext(ctx).Order("attendance_id")
	if !since.IsZero() {
		q = q.Where(`"timestamp" >= ?`, since)
	}
	if err := q.Find(&events).Error; err != nil {
		return nil, ErrUnresponsiveDatabase
	}
	return events, nil
}

func (r *ledgerRepository) CountByDay(ctx context.Context, since time.Time) ([]DayCount, error) {
	var counts []DayCount
	err := r.db.WithContext(ctx).
		Model(&Event{}).
		Select(`CAST(attendance_date AS TEXT) AS day, COUNT(*) AS count`).
		Where(`"timestamp" >= ?`, since).
		Group("attendance_date").
		Order("attendance_date").
		Scan(&counts).Error
	if err != nil {
		return nil, ErrUnresponsiveDatabase
	}
	return counts, nil
}

func isUniqueViolation(err error) bool {
	if errors.Is(err, gorm.ErrDuplicatedKey) {
		return true
	}
	var pgErr *pgconn.PgError
	if errors.As(err, &pgErr) && pgErr.Code == "23505" {
		return true
	}
	return strings.Contains(err.Error(), "UNIQUE constraint failed")
}
