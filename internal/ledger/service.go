package ledger

import (
	"bytes"
	"context"
	"encoding/csv"
	"errors"
	"strconv"
	"time"

	"go.uber.org/zap"
)

const (
	timestampLayout = "2006-01-02 15:04:05"
	dayLayout       = "2006-01-02"
	statsWindowDays = 30
)

var ErrInvalidPeriod = errors.New("period must be daily, weekly or all")

type LedgerService interface {
	// Record marks studentID present in groupID for the current local day.
	Record(ctx context.Context, studentID string, groupID uint) (Result, error)
	Records(ctx context.Context, period Period) ([]Record, error)
	ExportCSV(ctx context.Context, period Period) ([]byte, error)
	DailyCounts(ctx context.Context) ([]DayCount, error)
}

type ledgerService struct {
	repo   LedgerRepository
	loc    *time.Location
	logger *zap.Logger
	now    func() time.Time
}

func NewLedgerService(repo LedgerRepository, loc *time.Location, logger *zap.Logger) LedgerService {
	if loc == nil {
		loc = time.Local
	}
	return &ledgerService{
		repo:   repo,
		loc:    loc,
		logger: logger,
		now:    time.Now,
	}
}

// WallClock expresses t as the appliance's local wall clock labelled UTC.
// Timestamps are stored this way so the database derives the same calendar
// date the operator sees, whatever the server time zone is.
func WallClock(t time.Time, loc *time.Location) time.Time {
	w := t.In(loc)
	return time.Date(w.Year(), w.Month(), w.Day(), w.Hour(), w.Minute(), w.Second(), w.Nanosecond(), time.UTC).
		Truncate(time.Microsecond)
}

func (s *ledgerService) today() time.Time {
	w := WallClock(s.now(), s.loc)
	return time.Date(w.Year(), w.Month(), w.Day(), 0, 0, 0, 0, time.UTC)
}

func (s *ledgerService) Record(ctx context.Context, studentID string, groupID uint) (Result, error) {
	res, err := s.repo.RecordIfAbsent(ctx, studentID, groupID, WallClock(s.now(), s.loc))
	if err != nil {
		s.logger.Error("attendance write failed",
			zap.String("student_id", studentID),
			zap.Uint("group_id", groupID),
			zap.Error(err))
		return 0, err
	}
	s.logger.Info("attendance resolved",
		zap.String("student_id", studentID),
		zap.Uint("group_id", groupID),
		zap.Stringer("result", res))
	return res, nil
}

func (s *ledgerService) since(period Period) (time.Time, error) {
	switch period {
	case Daily:
		return s.today(), nil
	case Weekly:
		return s.today().AddDate(0, 0, -6), nil
	case All, "":
		return time.Time{}, nil
	default:
		return time.Time{}, ErrInvalidPeriod
	}
}

func (s *ledgerService) Records(ctx context.Context, period Period) ([]Record, error) {
	since, err := s.since(period)
	if err != nil {
		return nil, err
	}
	records, err := s.repo.List(ctx, since)
	if err != nil {
		s.logger.Error("failed to list attendance", zap.String("period", string(period)), zap.Error(err))
		return nil, err
	}
	return records, nil
}

func (s *ledgerService) ExportCSV(ctx context.Context, period Period) ([]byte, error) {
	since, err := s.since(period)
	if err != nil {
		return nil, err
	}
	events, err := s.repo.ListEvents(ctx, since)
	if err != nil {
		s.logger.Error("failed to export attendance", zap.Error(err))
		return nil, err
	}

	var buf bytes.Buffer
	w := csv.NewWriter(&buf)
	_ = w.Write([]string{"id", "student_id", "timestamp", "status"})
	for _, ev := range events {
		_ = w.Write([]string{
			strconv.FormatUint(uint64(ev.AttendanceID), 10),
			ev.StudentID,
			ev.Timestamp.UTC().Format(timestampLayout),
			string(ev.Status),
		})
	}
	w.Flush()
	if err := w.Error(); err != nil {
		return nil, err
	}
	return buf.Bytes(), nil
}

// DailyCounts returns one entry per day for the last 30 days, oldest first,
// including days without any marks.
func (s *ledgerService) DailyCounts(ctx context.Context) ([]DayCount, error) {
	start := s.today().AddDate(0, 0, -(statsWindowDays - 1))
	rows, err := s.repo.CountByDay(ctx, start)
	if err != nil {
		s.logger.Error("failed to count attendance", zap.Error(err))
		return nil, err
	}
	byDay := make(map[string]int, len(rows))
	for _, r := range rows {
		if len(r.Day) >= len(dayLayout) {
			byDay[r.Day[:len(dayLayout)]] = r.Count
		}
	}

	out := make([]DayCount, 0, statsWindowDays)
	for i := 0; i < statsWindowDays; i++ {
		day := start.AddDate(0, 0, i).Format(dayLayout)
		out = append(out, DayCount{Day: day, Count: byDay[day]})
	}
	return out, nil
}
