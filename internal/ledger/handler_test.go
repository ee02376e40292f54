package ledger

import (
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
	"time"

	"github.com/gin-gonic/gin"
	"go.uber.org/zap"
)

func TestLedgerHandler(t *testing.T) {
	gin.SetMode(gin.TestMode)
	db := newTestDB(t)
	groupID := seed(t, db)
	now := time.Date(2026, 3, 10, 12, 0, 0, 0, time.UTC)
	if _, err := NewLedgerRepository(db).RecordIfAbsent(context.Background(), "S001", groupID, now); err != nil {
		t.Fatal(err)
	}

	router := gin.New()
	NewLedgerHandler(router.Group("/api/v1"), newTestService(t, db, now), zap.NewNop())
	get := func(path string) *httptest.ResponseRecorder {
		w := httptest.NewRecorder()
		router.ServeHTTP(w, httptest.NewRequest(http.MethodGet, path, nil))
		return w
	}

	w := get("/api/v1/attendance/records")
	if w.Code != http.StatusOK {
		t.Fatalf("records status = %d", w.Code)
	}
	var records []Record
	if err := json.Unmarshal(w.Body.Bytes(), &records); err != nil {
		t.Fatal(err)
	}
	if len(records) != 1 || records[0].Name != "Grace" {
		t.Errorf("records = %+v", records)
	}

	if w := get("/api/v1/attendance/records?period=yearly"); w.Code != http.StatusBadRequest {
		t.Errorf("bad period status = %d, want 400", w.Code)
	}

	w = get("/api/v1/attendance/records.csv")
	if w.Code != http.StatusOK || !strings.HasPrefix(w.Body.String(), "id,student_id,timestamp,status") {
		t.Errorf("csv = %d %q", w.Code, w.Body)
	}
	if !strings.Contains(w.Header().Get("Content-Disposition"), "attendance.csv") {
		t.Errorf("Content-Disposition = %q", w.Header().Get("Content-Disposition"))
	}

	w = get("/api/v1/attendance/stats")
	var stats StatsResponse
	if err := json.Unmarshal(w.Body.Bytes(), &stats); err != nil {
		t.Fatal(err)
	}
	if len(stats.Dates) != statsWindowDays || len(stats.Counts) != statsWindowDays {
		t.Fatalf("stats lengths = %d/%d", len(stats.Dates), len(stats.Counts))
	}
	if stats.Dates[statsWindowDays-1] != "2026-03-10" || stats.Counts[statsWindowDays-1] != 1 {
		t.Errorf("last day = %s/%d", stats.Dates[statsWindowDays-1], stats.Counts[statsWindowDays-1])
	}
}
