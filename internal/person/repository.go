package person

import (
	"context"
	"errors"
	"strings"

	"github.com/jackc/pgx/v5/pgconn"
	"gorm.io/gorm"
)

var (
	ErrPersonAlreadyExists  = errors.New("person already exists")
	ErrPersonNotFound       = errors.New("person not found")
	ErrPersonNotCreated     = errors.New("person not created")
	ErrPersonNotDeleted     = errors.New("person not deleted")
	ErrUnresponsiveDatabase = errors.New("error occured during reading users table")
)

type PersonRepository interface {
	Create(ctx context.Context, person *Person) error
	ReadByID(ctx context.Context, id string) (*Person, error)
	List(ctx context.Context, role Role) ([]Person, error)
	Delete(ctx context.Context, id string) error
}

type personRepository struct {
	db *gorm.DB
}

func NewPersonRepository(db *gorm.DB) PersonRepository {
	return &personRepository{db: db}
}

func (p *personRepository) Create(ctx context.Context, person *Person) error {
	err := p.db.WithContext(ctx).Create(person).Error
	if err != nil {
		if isDuplicateKey(err) {
			return ErrPersonAlreadyExists
		}
		return ErrPersonNotCreated
	}
	return nil
}

func (p *personRepository) ReadByID(ctx context.Context, id string) (*Person, error) {
	var person Person
	err := p.db.WithContext(ctx).
		Where("user_id = ?", id).
		First(&person).
		Error

	if errors.Is(err, gorm.ErrRecordNotFound) {
		return nil, ErrPersonNotFound
	}
	if err != nil {
		return nil, ErrUnresponsiveDatabase
	}
	return &person, nil
}

func (p *personRepository) List(ctx context.Context, role Role) ([]Person, error) {
	var persons []Person
	q := p.db.WithContext(ctx).Order("created_at DESC")
	if role != "" {
		q = q.Where("role = ?", role)
	}
	if err := q.Find(&persons).Error; err != nil {
		return nil, ErrUnresponsiveDatabase
	}
	return persons, nil
}

// Delete removes the person; group memberships and attendance history go with
// it through the ON DELETE CASCADE foreign keys.
func (p *personRepository) Delete(ctx context.Context, id string) error {
	res := p.db.WithContext(ctx).
		Where("user_id = ?", id).
		Delete(&Person{})
	if res.Error != nil {
		return ErrPersonNotDeleted
	}
	if res.RowsAffected == 0 {
		return ErrPersonNotFound
	}
	return nil
}

func isDuplicateKey(err error) bool {
	if errors.Is(err, gorm.ErrDuplicatedKey) {
		return true
	}
	var pgErr *pgconn.PgError
	if errors.As(err, &pgErr) && pgErr.Code == "23505" {
		return true
	}
	return strings.Contains(err.Error(), "UNIQUE constraint failed")
}
