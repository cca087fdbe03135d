package storage

import (
	"context"
	"errors"
	"time"

	"github.com/VadymBoyko/PW-HW14/internal/models"
)

// ErrNotFound indicates a record does not exist or is not owned by the caller.
var ErrNotFound = errors.New("record not found")

// ErrAlreadyExists indicates a uniqueness conflict.
var ErrAlreadyExists = errors.New("record already exists")

// UserStore captures user persistence operations needed by handlers.
type UserStore interface {
	CreateUser(ctx context.Context, user models.User) (models.User, error)
	FindByEmail(ctx context.Context, email string) (models.User, error)
	FindByID(ctx context.Context, id int64) (models.User, error)
	// UpdateRefreshToken overwrites the stored refresh token; an empty value
	// clears it, revoking the current one.
	UpdateRefreshToken(ctx context.Context, id int64, token string) error
	ConfirmEmail(ctx context.Context, email string) error
	UpdateAvatar(ctx context.Context, id int64, url string) (models.User, error)
}

// ContactStore captures contact persistence operations. Every method takes
// the owning user's id; rows belonging to other users are invisible.
type ContactStore interface {
	List(ctx context.Context, userID int64) ([]models.Contact, error)
	GetByID(ctx context.Context, userID, contactID int64) (models.Contact, error)
	GetByEmail(ctx context.Context, userID int64, email string) (models.Contact, error)
	SearchByFirstName(ctx context.Context, userID int64, firstname string) ([]models.Contact, error)
	SearchByLastName(ctx context.Context, userID int64, lastname string) ([]models.Contact, error)
	NextWeekBirthdays(ctx context.Context, userID int64, now time.Time) ([]models.Contact, error)
	Create(ctx context.Context, contact models.Contact) (models.Contact, error)
	Update(ctx context.Context, contact models.Contact) (models.Contact, error)
	Delete(ctx context.Context, userID, contactID int64) (models.Contact, error)
}
