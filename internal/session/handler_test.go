package session

import (
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"

	"github.com/gin-gonic/gin"
	"github.com/mehmetcc/face-attendance-service/internal/recognition"
	"go.uber.org/zap"
)

func TestSessionHandler(t *testing.T) {
	gin.SetMode(gin.TestMode)
	rec := &scriptedRecognizer{
		cands:   []recognition.Candidate{{Label: "S001", Confidence: 0.9}},
		entered: make(chan struct{}, 1),
		unblock: make(chan struct{}),
	}
	f := newFixture(t, rec, nil)
	router := gin.New()
	NewSessionHandler(router.Group("/api/v1"), f.machine, zap.NewNop())

	do := func(method, path, body string) *httptest.ResponseRecorder {
		req := httptest.NewRequest(method, path, strings.NewReader(body))
		if body != "" {
			req.Header.Set("Content-Type", "application/json")
		}
		w := httptest.NewRecorder()
		router.ServeHTTP(w, req)
		return w
	}

	if w := do(http.MethodGet, "/api/v1/attendance/session/result", ""); !strings.Contains(w.Body.String(), `"status":"none"`) {
		t.Errorf("fresh result = %s, want none", w.Body)
	}

	w := do(http.MethodPost, "/api/v1/attendance/session", `{"group_id":7}`)
	if w.Code != http.StatusAccepted {
		t.Fatalf("start status = %d, body %s", w.Code, w.Body)
	}
	var started StartResult
	if err := json.Unmarshal(w.Body.Bytes(), &started); err != nil {
		t.Fatal(err)
	}
	if started.Status != "aligning" || started.GroupID != 7 {
		t.Errorf("start = %+v", started)
	}

	<-rec.entered
	if w := do(http.MethodPost, "/api/v1/attendance/session", ""); w.Code != http.StatusConflict {
		t.Errorf("second start status = %d, want 409", w.Code)
	}
	if w := do(http.MethodPost, "/api/v1/attendance/session", "{"); w.Code != http.StatusBadRequest {
		t.Errorf("malformed start status = %d, want 400", w.Code)
	}
	close(rec.unblock)
	f.machine.Wait()

	w = do(http.MethodGet, "/api/v1/attendance/session/result", "")
	var out Outcome
	if err := json.Unmarshal(w.Body.Bytes(), &out); err != nil {
		t.Fatal(err)
	}
	if out.Status != StatusSuccess || out.StudentID != "S001" || out.Name != "Grace" {
		t.Errorf("result = %+v", out)
	}

	w = do(http.MethodGet, "/api/v1/attendance/session", "")
	var v View
	if err := json.Unmarshal(w.Body.Bytes(), &v); err != nil {
		t.Fatal(err)
	}
	if v.Phase != Idle.String() {
		t.Errorf("phase after completion = %q, want %q", v.Phase, Idle.String())
	}
}
