package group

import (
	"context"
	"errors"

	"gorm.io/gorm"
)

var (
	ErrGroupNotFound        = errors.New("group not found")
	ErrGroupNotCreated      = errors.New("group not created")
	ErrGroupNotDeleted      = errors.New("group not deleted")
	ErrUnresponsiveDatabase = errors.New("error occured during reading groups table")
)

type GroupRepository interface {
	Create(ctx context.Context, group *Group) error
	ReadByID(ctx context.Context, id uint) (*Group, error)
	List(ctx context.Context, teacherID string) ([]Group, error)
	Delete(ctx context.Context, id uint) error
}

type groupRepository struct {
	db *gorm.DB
}

func NewGroupRepository(db *gorm.DB) GroupRepository {
	return &groupRepository{db: db}
}

func (r *groupRepository) Create(ctx context.Context, group *Group) error {
	if err := r.db.WithContext(ctx).Create(group).Error; err != nil {
		return ErrGroupNotCreated
	}
	return nil
}

func (r *groupRepository) ReadByID(ctx context.Context, id uint) (*Group, error) {
	var group Group
	err := r.db.WithContext(ctx).First(&group, "group_id = ?", id).Error
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return nil, ErrGroupNotFound
	}
	if err != nil {
		return nil, ErrUnresponsiveDatabase
	}
	return &group, nil
}

func (r *groupRepository) List(ctx context.Context, teacherID string) ([]Group, error) {
	var groups []Group
	q := r.db.WithContext(ctx).Order("group_id")
	if teacherID != "" {
		q = q.Where("teacher_id = ?", teacherID)
	}
	if err := q.Find(&groups).Error; err != nil {
		return nil, ErrUnresponsiveDatabase
	}
	return groups, nil
}

func (r *groupRepository) Delete(ctx context.Context, id uint) error {
	res := r.db.WithContext(ctx).Where("group_id = ?", id).Delete(&Group{})
	if res.Error != nil {
		return ErrGroupNotDeleted
	}
	if res.RowsAffected == 0 {
		return ErrGroupNotFound
	}
	return nil
}
