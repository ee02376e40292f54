package person

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"time"

	"go.uber.org/zap"
)

var (
	ErrInvalidName = errors.New("name required")
	ErrInvalidRole = errors.New("invalid role")
	ErrInvalidID   = errors.New("invalid user id")
)

const maxIDLength = 64

type PersonService interface {
	CreatePerson(ctx context.Context, userID, name string, role Role) (*Person, error)
	ReadPersonByID(ctx context.Context, id string) (*Person, error)
	ListPersons(ctx context.Context, role Role) ([]Person, error)
	DeletePerson(ctx context.Context, id string) error
}

type personService struct {
	repo   PersonRepository
	logger *zap.Logger
	now    func() time.Time
}

func NewPersonService(repo PersonRepository, logger *zap.Logger) PersonService {
	return &personService{
		repo:   repo,
		logger: logger,
		now:    time.Now,
	}
}

/** CREATE */
func (s *personService) CreatePerson(ctx context.Context, userID, name string, role Role) (*Person, error) {
	name = strings.TrimSpace(name)
	if name == "" {
		return nil, ErrInvalidName
	}
	if role != "" && !role.Valid() {
		s.logger.Warn("invalid role", zap.String("role", string(role)))
		return nil, ErrInvalidRole
	}

	userID = strings.TrimSpace(userID)
	if userID == "" {
		userID = fmt.Sprintf("S%d", s.now().UnixMilli())
	}
	if err := ValidateID(userID); err != nil {
		return nil, err
	}

	person := NewPerson(userID, name, role)
	if err := s.repo.Create(ctx, person); err != nil {
		s.logger.Error("failed to create person in repository", zap.String("user_id", userID), zap.Error(err))
		return nil, err
	}
	s.logger.Info("person enrolled", zap.String("user_id", userID), zap.String("role", string(person.Role)))
	return person, nil
}

// ValidateID rejects identifiers that cannot double as a dataset directory name.
func ValidateID(id string) error {
	if id == "" || len(id) > maxIDLength {
		return ErrInvalidID
	}
	for _, c := range id {
		ok := ('a' <= c && c <= 'z') || ('A' <= c && c <= 'Z') || ('0' <= c && c <= '9') || c == '-' || c == '_'
		if !ok {
			return ErrInvalidID
		}
	}
	return nil
}

/** READ */
func (s *personService) ReadPersonByID(ctx context.Context, id string) (*Person, error) {
	person, err := s.repo.ReadByID(ctx, id)
	if err != nil {
		if !errors.Is(err, ErrPersonNotFound) {
			s.logger.Error("failed to get person by ID", zap.String("user_id", id), zap.Error(err))
		}
		return nil, err
	}
	return person, nil
}

func (s *personService) ListPersons(ctx context.Context, role Role) ([]Person, error) {
	if role != "" && !role.Valid() {
		return nil, ErrInvalidRole
	}
	persons, err := s.repo.List(ctx, role)
	if err != nil {
		s.logger.Error("failed to list persons", zap.String("role", string(role)), zap.Error(err))
		return nil, err
	}
	return persons, nil
}

/** DELETE */
func (s *personService) DeletePerson(ctx context.Context, id string) error {
	if err := s.repo.Delete(ctx, id); err != nil {
		s.logger.Error("failed to delete person", zap.String("user_id", id), zap.Error(err))
		return err
	}
	return nil
}
