package dto

import (
	"errors"
	"strings"
	"time"
	"unicode/utf8"

	"github.com/VadymBoyko/PW-HW14/internal/models"
)

// ContactRequest carries the mutable contact fields for create and update.
type ContactRequest struct {
	FirstName string `json:"firstname"`
	LastName  string `json:"lastname"`
	Email     string `json:"email"`
	Phone     string `json:"phone"`
	Birthday  string `json:"birthday"`
	Notes     string `json:"notes"`
}

// ContactResponse mirrors a contact row plus the derived birthday countdown.
type ContactResponse struct {
	ID                 int64     `json:"id"`
	FirstName          string    `json:"firstname"`
	LastName           string    `json:"lastname"`
	Email              string    `json:"email"`
	Phone              string    `json:"phone"`
	Birthday           string    `json:"birthday"`
	Notes              string    `json:"notes"`
	DaysToNextBirthday int       `json:"days_to_next_birthday"`
	CreatedAt          time.Time `json:"created_at"`
	UpdatedAt          time.Time `json:"updated_at"`
}

const birthdayLayout = "2006-01-02"

// Validate checks contact field constraints; ParseBirthday reports the same
// format error, so callers validate first and parse after.
func (r ContactRequest) Validate() error {
	if strings.TrimSpace(r.FirstName) == "" {
		return errors.New("firstname is required")
	}
	if utf8.RuneCountInString(strings.TrimSpace(r.LastName)) < 2 {
		return errors.New("lastname must be at least 2 characters")
	}
	if err := validateEmail(r.Email); err != nil {
		return err
	}
	if strings.TrimSpace(r.Phone) == "" {
		return errors.New("phone is required")
	}
	if _, err := r.ParseBirthday(); err != nil {
		return err
	}
	return nil
}

// ParseBirthday parses the wire birthday as a calendar date.
func (r ContactRequest) ParseBirthday() (time.Time, error) {
	t, err := time.Parse(birthdayLayout, strings.TrimSpace(r.Birthday))
	if err != nil {
		return time.Time{}, errors.New("birthday must be a YYYY-MM-DD date")
	}
	return t, nil
}

// ToModel converts a validated request into a contact owned by userID.
func (r ContactRequest) ToModel(userID int64) (models.Contact, error) {
	birthday, err := r.ParseBirthday()
	if err != nil {
		return models.Contact{}, err
	}
	return models.Contact{
		FirstName: strings.TrimSpace(r.FirstName),
		LastName:  strings.TrimSpace(r.LastName),
		Email:     strings.TrimSpace(r.Email),
		Phone:     strings.TrimSpace(r.Phone),
		Birthday:  birthday,
		Notes:     r.Notes,
		UserID:    userID,
	}, nil
}

// NewContactResponse converts a contact row, deriving the birthday countdown
// from now.
func NewContactResponse(c models.Contact, now time.Time) ContactResponse {
	return ContactResponse{
		ID:                 c.ID,
		FirstName:          c.FirstName,
		LastName:           c.LastName,
		Email:              c.Email,
		Phone:              c.Phone,
		Birthday:           c.Birthday.Format(birthdayLayout),
		Notes:              c.Notes,
		DaysToNextBirthday: c.DaysToNextBirthday(now),
		CreatedAt:          c.CreatedAt,
		UpdatedAt:          c.UpdatedAt,
	}
}

// NewContactListResponse converts a slice of rows with a shared now.
func NewContactListResponse(contacts []models.Contact, now time.Time) []ContactResponse {
	out := make([]ContactResponse, 0, len(contacts))
	for _, c := range contacts {
		out = append(out, NewContactResponse(c, now))
	}
	return out
}
