package group

import (
	"context"
	"errors"
	"strings"

	"github.com/mehmetcc/face-attendance-service/internal/person"
	"go.uber.org/zap"
)

var (
	ErrInvalidName  = errors.New("group name required")
	ErrOwnerMissing = errors.New("owner not found")
	ErrOwnerRole    = errors.New("owner must be a teacher")
)

type GroupService interface {
	CreateGroup(ctx context.Context, name, teacherID string) (*Group, error)
	ReadGroupByID(ctx context.Context, id uint) (*Group, error)
	ListGroups(ctx context.Context, teacherID string) ([]Group, error)
	DeleteGroup(ctx context.Context, id uint) error
}

type groupService struct {
	repo    GroupRepository
	persons person.PersonService
	logger  *zap.Logger
}

func NewGroupService(repo GroupRepository, persons person.PersonService, logger *zap.Logger) GroupService {
	return &groupService{repo: repo, persons: persons, logger: logger}
}

func (s *groupService) CreateGroup(ctx context.Context, name, teacherID string) (*Group, error) {
	name = strings.TrimSpace(name)
	if name == "" {
		return nil, ErrInvalidName
	}
	owner, err := s.persons.ReadPersonByID(ctx, teacherID)
	if errors.Is(err, person.ErrPersonNotFound) {
		return nil, ErrOwnerMissing
	}
	if err != nil {
		return nil, err
	}
	if owner.Role != person.Teacher {
		return nil, ErrOwnerRole
	}

	g := &Group{Name: name, TeacherID: teacherID}
	if err := s.repo.Create(ctx, g); err != nil {
		s.logger.Error("failed to create group", zap.String("teacher_id", teacherID), zap.Error(err))
		return nil, err
	}
	s.logger.Info("group created", zap.Uint("group_id", g.GroupID), zap.String("teacher_id", teacherID))
	return g, nil
}

func (s *groupService) ReadGroupByID(ctx context.Context, id uint) (*Group, error) {
	g, err := s.repo.ReadByID(ctx, id)
	if err != nil && !errors.Is(err, ErrGroupNotFound) {
		s.logger.Error("failed to get group", zap.Uint("group_id", id), zap.Error(err))
	}
	return g, err
}

func (s *groupService) ListGroups(ctx context.Context, teacherID string) ([]Group, error) {
	groups, err := s.repo.List(ctx, teacherID)
	if err != nil {
		s.logger.Error("failed to list groups", zap.Error(err))
		return nil, err
	}
	return groups, nil
}

func (s *groupService) DeleteGroup(ctx context.Context, id uint) error {
	if err := s.repo.Delete(ctx, id); err != nil {
		s.logger.Error("failed to delete group", zap.Uint("group_id", id), zap.Error(err))
		return err
	}
	return nil
}
