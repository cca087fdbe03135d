package postgres

import (
	"context"
	"database/sql"
	"fmt"
	"time"

	"github.com/VadymBoyko/PW-HW14/internal/dbx"
	"github.com/VadymBoyko/PW-HW14/internal/models"
	"github.com/VadymBoyko/PW-HW14/internal/storage"
)

// Ensure ContactStore satisfies the storage.ContactStore interface at compile time.
var _ storage.ContactStore = (*ContactStore)(nil)

// ContactStore provides Postgres-backed persistence for contacts. Every query
// filters by the owning user's id, so rows of other users behave as absent.
type ContactStore struct {
	db *sql.DB
}

const contactColumns = `id, firstname, lastname, email, phone, birthday, notes, user_id, created_at, updated_at`

// List returns all contacts owned by the user.
func (s *ContactStore) List(ctx context.Context, userID int64) ([]models.Contact, error) {
	query := `SELECT ` + contactColumns + ` FROM contacts WHERE user_id = $1 ORDER BY id`
	return s.queryContacts(ctx, s.db, query, userID)
}

// GetByID returns the contact with the given id if the user owns it.
func (s *ContactStore) GetByID(ctx context.Context, userID, contactID int64) (models.Contact, error) {
	query := `SELECT ` + contactColumns + ` FROM contacts WHERE id = $1 AND user_id = $2`
	return scanContact(s.db.QueryRowContext(ctx, query, contactID, userID))
}

// GetByEmail returns the user's contact with the given email,
// case-insensitively.
func (s *ContactStore) GetByEmail(ctx context.Context, userID int64, email string) (models.Contact, error) {
	query := `SELECT ` + contactColumns + ` FROM contacts WHERE email ILIKE $1 AND user_id = $2`
	return scanContact(s.db.QueryRowContext(ctx, query, email, userID))
}

// SearchByFirstName returns the user's contacts whose first name matches the
// term case-insensitively.
func (s *ContactStore) SearchByFirstName(ctx context.Context, userID int64, firstname string) ([]models.Contact, error) {
	query := `SELECT ` + contactColumns + ` FROM contacts WHERE firstname ILIKE $1 AND user_id = $2 ORDER BY id`
	return s.queryContacts(ctx, s.db, query, firstname, userID)
}

// SearchByLastName returns the user's contacts whose last name matches the
// term case-insensitively.
func (s *ContactStore) SearchByLastName(ctx context.Context, userID int64, lastname string) ([]models.Contact, error) {
	query := `SELECT ` + contactColumns + ` FROM contacts WHERE lastname ILIKE $1 AND user_id = $2 ORDER BY id`
	return s.queryContacts(ctx, s.db, query, lastname, userID)
}

// NextWeekBirthdays returns contacts whose birthday month-day falls within
// the next 7 days from now, inclusive on both ends. The comparison is textual
// on 'MM-DD', so a window spanning the year end (late December into January)
// matches nothing past December 31. Known limitation, kept as observed
// behavior of the service this replaces.
func (s *ContactStore) NextWeekBirthdays(ctx context.Context, userID int64, now time.Time) ([]models.Contact, error) {
	query := `SELECT ` + contactColumns + ` FROM contacts
		WHERE user_id = $1
		AND to_char(birthday, 'MM-DD') >= $2
		AND to_char(birthday, 'MM-DD') <= $3
		ORDER BY id`
	from := now.Format("01-02")
	to := now.AddDate(0, 0, 7).Format("01-02")
	return s.queryContacts(ctx, s.db, query, userID, from, to)
}

// Create inserts a contact for its owner and returns the stored row with
// generated id and timestamps.
func (s *ContactStore) Create(ctx context.Context, contact models.Contact) (models.Contact, error) {
	query := `
		INSERT INTO contacts (firstname, lastname, email, phone, birthday, notes, user_id)
		VALUES ($1, $2, $3, $4, $5, $6, $7)
		RETURNING ` + contactColumns
	row := s.db.QueryRowContext(ctx, query,
		contact.FirstName, contact.LastName, contact.Email, contact.Phone,
		contact.Birthday, contact.Notes, contact.UserID)
	return scanContact(row)
}

// Update replaces the mutable fields of the contact identified by
// contact.ID/contact.UserID and refreshes updated_at. The ownership check and
// the write run in one transaction.
func (s *ContactStore) Update(ctx context.Context, contact models.Contact) (models.Contact, error) {
	var updated models.Contact
	err := dbx.WithTx(ctx, s.db, func(ctx context.Context, tx dbx.DBTX) error {
		check := `SELECT id FROM contacts WHERE id = $1 AND user_id = $2 FOR UPDATE`
		var id int64
		if err := tx.QueryRowContext(ctx, check, contact.ID, contact.UserID).Scan(&id); err != nil {
			return mapRowError(err)
		}

		query := `
			UPDATE contacts
			SET firstname = $3, lastname = $4, email = $5, phone = $6,
			    birthday = $7, notes = $8, updated_at = NOW()
			WHERE id = $1 AND user_id = $2
			RETURNING ` + contactColumns
		row := tx.QueryRowContext(ctx, query,
			contact.ID, contact.UserID,
			contact.FirstName, contact.LastName, contact.Email, contact.Phone,
			contact.Birthday, contact.Notes)
		var err error
		updated, err = scanContact(row)
		return err
	})
	if err != nil {
		return models.Contact{}, err
	}
	return updated, nil
}

// Delete removes the contact if the user owns it and returns the deleted row.
func (s *ContactStore) Delete(ctx context.Context, userID, contactID int64) (models.Contact, error) {
	var deleted models.Contact
	err := dbx.WithTx(ctx, s.db, func(ctx context.Context, tx dbx.DBTX) error {
		get := `SELECT ` + contactColumns + ` FROM contacts WHERE id = $1 AND user_id = $2 FOR UPDATE`
		var err error
		deleted, err = scanContact(tx.QueryRowContext(ctx, get, contactID, userID))
		if err != nil {
			return err
		}
		_, err = tx.ExecContext(ctx, `DELETE FROM contacts WHERE id = $1 AND user_id = $2`, contactID, userID)
		if err != nil {
			return fmt.Errorf("db error: %w", err)
		}
		return nil
	})
	if err != nil {
		return models.Contact{}, err
	}
	return deleted, nil
}

func (s *ContactStore) queryContacts(ctx context.Context, db dbx.DBTX, query string, args ...any) ([]models.Contact, error) {
	rows, err := db.QueryContext(ctx, query, args...)
	if err != nil {
		return nil, fmt.Errorf("db error: %w", err)
	}
	defer rows.Close()

	contacts := []models.Contact{}
	for rows.Next() {
		var c models.Contact
		if err := rows.Scan(&c.ID, &c.FirstName, &c.LastName, &c.Email, &c.Phone,
			&c.Birthday, &c.Notes, &c.UserID, &c.CreatedAt, &c.UpdatedAt); err != nil {
			return nil, fmt.Errorf("db error: %w", err)
		}
		contacts = append(contacts, c)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("db error: %w", err)
	}
	return contacts, nil
}

func scanContact(row *sql.Row) (models.Contact, error) {
	var c models.Contact
	err := row.Scan(&c.ID, &c.FirstName, &c.LastName, &c.Email, &c.Phone,
		&c.Birthday, &c.Notes, &c.UserID, &c.CreatedAt, &c.UpdatedAt)
	if err != nil {
		return models.Contact{}, mapRowError(err)
	}
	return c, nil
}
