package authentication

import (
	"context"
	"crypto/subtle"
	"errors"
	"time"

	"github.com/mehmetcc/face-attendance-service/internal/person"
	"github.com/mehmetcc/face-attendance-service/internal/utils"
	"go.uber.org/zap"
	"golang.org/x/crypto/bcrypt"
)

var (
	ErrInvalidCredentials = errors.New("invalid username or password")
	ErrLoginFailed        = errors.New("login failed")
	ErrInvalidToken       = errors.New("invalid access token")
	ErrAdminDisabled      = errors.New("admin password not configured")
)

type AuthenticationService interface {
	Login(ctx context.Context, username, password string) (accessToken string, err error)
	Logout(ctx context.Context, accessToken string) error
	Verify(accessToken string) (*utils.AccessClaims, error)
}

type authenticationService struct {
	username       string
	passwordHash   []byte
	revocations    RevocationStore
	logger         *zap.Logger
	accessSecret   string
	accessTokenTTL time.Duration
}

// NewAuthenticationService hashes the configured admin password once so the
// plain text is not kept around. An empty password disables admin login.
func NewAuthenticationService(
	username, password string,
	revocations RevocationStore,
	logger *zap.Logger,
	accessSecret string,
	accessTTL time.Duration,
) (AuthenticationService, error) {
	var hash []byte
	if password != "" {
		var err error
		hash, err = bcrypt.GenerateFromPassword([]byte(password), bcrypt.DefaultCost)
		if err != nil {
			return nil, err
		}
	} else {
		logger.Warn("ADMIN_PASSWORD not set, admin endpoints are locked")
	}
	return &authenticationService{
		username:       username,
		passwordHash:   hash,
		revocations:    revocations,
		logger:         logger,
		accessSecret:   accessSecret,
		accessTokenTTL: accessTTL,
	}, nil
}

func (a *authenticationService) Login(ctx context.Context, username, password string) (string, error) {
	if a.passwordHash == nil {
		return "", ErrAdminDisabled
	}
	userOK := subtle.ConstantTimeCompare([]byte(username), []byte(a.username)) == 1
	passOK := bcrypt.CompareHashAndPassword(a.passwordHash, []byte(password)) == nil
	if !userOK || !passOK {
		a.logger.Warn("admin login rejected", zap.String("username", username))
		return "", ErrInvalidCredentials
	}

	accessJWT, err := utils.IssueAccessToken(a.username, person.Admin, a.accessSecret, a.accessTokenTTL)
	if err != nil {
		a.logger.Error("failed to issue access token", zap.Error(err))
		return "", ErrLoginFailed
	}
	a.logger.Info("admin logged in", zap.String("username", username))
	return accessJWT, nil
}

func (a *authenticationService) Verify(accessToken string) (*utils.AccessClaims, error) {
	claims, err := utils.ParseAccessToken(accessToken, a.accessSecret)
	if err != nil {
		return nil, ErrInvalidToken
	}
	if a.revocations.Revoked(claims.ID) {
		return nil, ErrInvalidToken
	}
	return claims, nil
}

func (a *authenticationService) Logout(ctx context.Context, accessToken string) error {
	claims, err := a.Verify(accessToken)
	if err != nil {
		return err
	}
	until := time.Now().Add(a.accessTokenTTL)
	if claims.ExpiresAt != nil {
		until = claims.ExpiresAt.Time
	}
	a.revocations.Revoke(claims.ID, until)
	return nil
}
