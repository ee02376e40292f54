package person_test

import (
	"context"
	"encoding/json"
	"errors"
	"net/http"
	"net/http/httptest"
	"path/filepath"
	"strings"
	"testing"

	"github.com/gin-gonic/gin"
	"github.com/mehmetcc/face-attendance-service/internal/person"
	"github.com/mehmetcc/face-attendance-service/internal/utils"
	"go.uber.org/zap"
)

func newService(t *testing.T) person.PersonService {
	t.Helper()
	db, err := utils.InitDatabase(&utils.DatabaseConfig{
		Driver:     "sqlite",
		SQLitePath: filepath.Join(t.TempDir(), "persons.db"),
	})
	if err != nil {
		t.Fatalf("InitDatabase() error = %v", err)
	}
	if err := utils.Migrate(db); err != nil {
		t.Fatalf("Migrate() error = %v", err)
	}
	t.Cleanup(func() {
		if sqlDB, err := db.DB(); err == nil {
			sqlDB.Close()
		}
	})
	return person.NewPersonService(person.NewPersonRepository(db), zap.NewNop())
}

func TestCreatePerson(t *testing.T) {
	svc := newService(t)
	ctx := context.Background()

	p, err := svc.CreatePerson(ctx, "", "  Grace  ", "")
	if err != nil {
		t.Fatalf("CreatePerson() error = %v", err)
	}
	if !strings.HasPrefix(p.UserID, "S") {
		t.Errorf("generated id = %q, want S<millis>", p.UserID)
	}
	if p.Name != "Grace" || p.Role != person.Student {
		t.Errorf("person = %+v", p)
	}

	got, err := svc.ReadPersonByID(ctx, p.UserID)
	if err != nil {
		t.Fatalf("ReadPersonByID() error = %v", err)
	}
	if got.Name != "Grace" {
		t.Errorf("Name = %q", got.Name)
	}
}

func TestCreatePersonRejects(t *testing.T) {
	svc := newService(t)
	ctx := context.Background()
	if _, err := svc.CreatePerson(ctx, "T001", "Ada", person.Teacher); err != nil {
		t.Fatal(err)
	}

	tests := []struct {
		name   string
		id     string
		person string
		role   person.Role
		want   error
	}{
		{"blank name", "S010", "   ", "", person.ErrInvalidName},
		{"unknown role", "S011", "Alan", "janitor", person.ErrInvalidRole},
		{"path in id", "../etc", "Alan", "", person.ErrInvalidID},
		{"duplicate id", "T001", "Ada again", person.Teacher, person.ErrPersonAlreadyExists},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, err := svc.CreatePerson(ctx, tt.id, tt.person, tt.role)
			if !errors.Is(err, tt.want) {
				t.Fatalf("CreatePerson() error = %v, want %v", err, tt.want)
			}
		})
	}
}

func TestListAndDeletePersons(t *testing.T) {
	svc := newService(t)
	ctx := context.Background()
	for _, p := range []struct {
		id   string
		role person.Role
	}{{"T001", person.Teacher}, {"S001", person.Student}, {"S002", person.Student}} {
		if _, err := svc.CreatePerson(ctx, p.id, "name "+p.id, p.role); err != nil {
			t.Fatal(err)
		}
	}

	students, err := svc.ListPersons(ctx, person.Student)
	if err != nil {
		t.Fatalf("ListPersons() error = %v", err)
	}
	if len(students) != 2 {
		t.Errorf("students = %d, want 2", len(students))
	}

	if err := svc.DeletePerson(ctx, "S001"); err != nil {
		t.Fatalf("DeletePerson() error = %v", err)
	}
	if _, err := svc.ReadPersonByID(ctx, "S001"); !errors.Is(err, person.ErrPersonNotFound) {
		t.Errorf("ReadPersonByID() after delete error = %v", err)
	}
	if err := svc.DeletePerson(ctx, "S001"); !errors.Is(err, person.ErrPersonNotFound) {
		t.Errorf("second DeletePerson() error = %v", err)
	}
}

func TestValidateID(t *testing.T) {
	for _, id := range []string{"S001", "t-7", "a_b"} {
		if err := person.ValidateID(id); err != nil {
			t.Errorf("ValidateID(%q) = %v", id, err)
		}
	}
	for _, id := range []string{"", "a/b", "a b", strings.Repeat("x", 65)} {
		if err := person.ValidateID(id); err == nil {
			t.Errorf("ValidateID(%q) = nil", id)
		}
	}
}

func TestPersonHandler(t *testing.T) {
	gin.SetMode(gin.TestMode)
	router := gin.New()
	person.NewPersonHandler(router.Group("/api/v1"), newService(t), zap.NewNop())

	do := func(method, path, body string) *httptest.ResponseRecorder {
		req := httptest.NewRequest(method, path, strings.NewReader(body))
		req.Header.Set("Content-Type", "application/json")
		w := httptest.NewRecorder()
		router.ServeHTTP(w, req)
		return w
	}

	w := do(http.MethodPost, "/api/v1/persons", `{"user_id":"S001","name":"Grace"}`)
	if w.Code != http.StatusCreated {
		t.Fatalf("create status = %d, body %s", w.Code, w.Body)
	}
	var resp person.EnrollResponse
	if err := json.Unmarshal(w.Body.Bytes(), &resp); err != nil {
		t.Fatal(err)
	}
	if resp.Status != "success" || resp.StudentID != "S001" {
		t.Errorf("response = %+v", resp)
	}

	if w := do(http.MethodPost, "/api/v1/persons", `{"user_id":"S001","name":"Grace"}`); w.Code != http.StatusConflict {
		t.Errorf("duplicate status = %d, want 409", w.Code)
	}
	if w := do(http.MethodPost, "/api/v1/persons", `{"user_id":"S002"}`); w.Code != http.StatusBadRequest {
		t.Errorf("missing name status = %d, want 400", w.Code)
	}
	if w := do(http.MethodGet, "/api/v1/persons/S001", ""); w.Code != http.StatusOK {
		t.Errorf("get status = %d, want 200", w.Code)
	}
	if w := do(http.MethodGet, "/api/v1/persons/S999", ""); w.Code != http.StatusNotFound {
		t.Errorf("missing status = %d, want 404", w.Code)
	}
	if w := do(http.MethodGet, "/api/v1/persons?role=janitor", ""); w.Code != http.StatusBadRequest {
		t.Errorf("bad role status = %d, want 400", w.Code)
	}
}
