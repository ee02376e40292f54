package authentication

import (
	"bytes"
	"context"
	"errors"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/mehmetcc/face-attendance-service/internal/person"
	"github.com/mehmetcc/face-attendance-service/internal/utils"
	"go.uber.org/zap"
)

const testSecret = "test-secret"

func newService(t *testing.T, password string) AuthenticationService {
	t.Helper()
	svc, err := NewAuthenticationService("admin", password, NewRevocationStore(), zap.NewNop(), testSecret, time.Hour)
	if err != nil {
		t.Fatalf("NewAuthenticationService() error = %v", err)
	}
	return svc
}

func TestLogin(t *testing.T) {
	svc := newService(t, "correct horse")
	ctx := context.Background()

	tests := []struct {
		name     string
		user     string
		password string
		wantErr  error
	}{
		{"valid", "admin", "correct horse", nil},
		{"wrong password", "admin", "battery staple", ErrInvalidCredentials},
		{"wrong user", "root", "correct horse", ErrInvalidCredentials},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			token, err := svc.Login(ctx, tt.user, tt.password)
			if !errors.Is(err, tt.wantErr) {
				t.Fatalf("Login() error = %v, want %v", err, tt.wantErr)
			}
			if tt.wantErr != nil {
				return
			}
			claims, err := svc.Verify(token)
			if err != nil {
				t.Fatalf("Verify() error = %v", err)
			}
			if claims.Subject != "admin" || claims.Role != person.Admin {
				t.Errorf("claims = %+v", claims)
			}
		})
	}
}

func TestLoginDisabledWithoutPassword(t *testing.T) {
	if _, err := newService(t, "").Login(context.Background(), "admin", ""); !errors.Is(err, ErrAdminDisabled) {
		t.Errorf("Login() error = %v, want ErrAdminDisabled", err)
	}
}

func TestLogoutRevokesToken(t *testing.T) {
	svc := newService(t, "pw")
	token, err := svc.Login(context.Background(), "admin", "pw")
	if err != nil {
		t.Fatalf("Login() error = %v", err)
	}
	if err := svc.Logout(context.Background(), token); err != nil {
		t.Fatalf("Logout() error = %v", err)
	}
	if _, err := svc.Verify(token); !errors.Is(err, ErrInvalidToken) {
		t.Errorf("Verify() after logout error = %v, want ErrInvalidToken", err)
	}
}

func TestAdminMiddleware(t *testing.T) {
	gin.SetMode(gin.TestMode)
	svc := newService(t, "pw")
	adminToken, _ := svc.Login(context.Background(), "admin", "pw")
	teacherToken, _ := utils.IssueAccessToken("T001", person.Teacher, testSecret, time.Hour)

	r := gin.New()
	admin := r.Group("/admin", AuthMiddleware(svc, zap.NewNop()), RoleMiddleware(person.Admin, zap.NewNop()))
	admin.GET("/ping", func(c *gin.Context) { c.Status(http.StatusOK) })

	tests := []struct {
		name   string
		header string
		want   int
	}{
		{"missing header", "", http.StatusUnauthorized},
		{"malformed header", "Token abc", http.StatusUnauthorized},
		{"garbage token", "Bearer abc", http.StatusUnauthorized},
		{"wrong role", "Bearer " + teacherToken, http.StatusForbidden},
		{"admin", "Bearer " + adminToken, http.StatusOK},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			req := httptest.NewRequest(http.MethodGet, "/admin/ping", nil)
			if tt.header != "" {
				req.Header.Set("Authorization", tt.header)
			}
			rr := httptest.NewRecorder()
			r.ServeHTTP(rr, req)
			if rr.Code != tt.want {
				t.Errorf("status = %d, want %d", rr.Code, tt.want)
			}
		})
	}
}

func TestLoginHandler(t *testing.T) {
	gin.SetMode(gin.TestMode)
	r := gin.New()
	NewAuthHandler(r.Group("/api/v1"), newService(t, "pw"), zap.NewNop())

	for _, tt := range []struct {
		body string
		want int
	}{
		{`{"username":"admin","password":"pw"}`, http.StatusOK},
		{`{"username":"admin","password":"nope"}`, http.StatusUnauthorized},
		{`{"username":"admin"}`, http.StatusBadRequest},
	} {
		req := httptest.NewRequest(http.MethodPost, "/api/v1/admin/login", bytes.NewBufferString(tt.body))
		req.Header.Set("Content-Type", "application/json")
		rr := httptest.NewRecorder()
		r.ServeHTTP(rr, req)
		if rr.Code != tt.want {
			t.Errorf("POST %s status = %d, want %d", tt.body, rr.Code, tt.want)
		}
	}
}
