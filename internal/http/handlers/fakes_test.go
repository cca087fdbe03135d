package handlers

import (
	"context"
	"net/http"
	"strings"
	"sync"
	"time"

	"github.com/VadymBoyko/PW-HW14/internal/middleware"
	"github.com/VadymBoyko/PW-HW14/internal/models"
	"github.com/VadymBoyko/PW-HW14/internal/storage"
)

// fakeUserStore is an in-memory storage.UserStore.
type fakeUserStore struct {
	mu     sync.Mutex
	nextID int64
	users  map[int64]models.User
}

func newFakeUserStore() *fakeUserStore {
	return &fakeUserStore{users: make(map[int64]models.User)}
}

func (f *fakeUserStore) CreateUser(_ context.Context, user models.User) (models.User, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	for _, u := range f.users {
		if strings.EqualFold(u.Email, user.Email) {
			return models.User{}, storage.ErrAlreadyExists
		}
	}
	f.nextID++
	user.ID = f.nextID
	f.users[user.ID] = user
	return user, nil
}

func (f *fakeUserStore) FindByEmail(_ context.Context, email string) (models.User, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	for _, u := range f.users {
		if u.Email == email {
			return u, nil
		}
	}
	return models.User{}, storage.ErrNotFound
}

func (f *fakeUserStore) FindByID(_ context.Context, id int64) (models.User, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	u, ok := f.users[id]
	if !ok {
		return models.User{}, storage.ErrNotFound
	}
	return u, nil
}

func (f *fakeUserStore) UpdateRefreshToken(_ context.Context, id int64, token string) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	u, ok := f.users[id]
	if !ok {
		return storage.ErrNotFound
	}
	u.RefreshToken = token
	f.users[id] = u
	return nil
}

func (f *fakeUserStore) ConfirmEmail(_ context.Context, email string) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	for id, u := range f.users {
		if u.Email == email {
			u.Confirmed = true
			f.users[id] = u
			return nil
		}
	}
	return storage.ErrNotFound
}

func (f *fakeUserStore) UpdateAvatar(_ context.Context, id int64, url string) (models.User, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	u, ok := f.users[id]
	if !ok {
		return models.User{}, storage.ErrNotFound
	}
	u.Avatar = url
	f.users[id] = u
	return u, nil
}

// fakeContactStore is an in-memory storage.ContactStore with the same
// scoping and matching semantics as the Postgres implementation.
type fakeContactStore struct {
	mu       sync.Mutex
	nextID   int64
	contacts map[int64]models.Contact
	now      func() time.Time
}

func newFakeContactStore() *fakeContactStore {
	return &fakeContactStore{contacts: make(map[int64]models.Contact), now: time.Now}
}

func (f *fakeContactStore) List(_ context.Context, userID int64) ([]models.Contact, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	out := []models.Contact{}
	for id := int64(1); id <= f.nextID; id++ {
		if c, ok := f.contacts[id]; ok && c.UserID == userID {
			out = append(out, c)
		}
	}
	return out, nil
}

func (f *fakeContactStore) GetByID(_ context.Context, userID, contactID int64) (models.Contact, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	c, ok := f.contacts[contactID]
	if !ok || c.UserID != userID {
		return models.Contact{}, storage.ErrNotFound
	}
	return c, nil
}

func (f *fakeContactStore) GetByEmail(_ context.Context, userID int64, email string) (models.Contact, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	for _, c := range f.contacts {
		if c.UserID == userID && strings.EqualFold(c.Email, email) {
			return c, nil
		}
	}
	return models.Contact{}, storage.ErrNotFound
}

func (f *fakeContactStore) SearchByFirstName(_ context.Context, userID int64, firstname string) ([]models.Contact, error) {
	return f.search(userID, func(c models.Contact) bool {
		return strings.EqualFold(c.FirstName, firstname)
	})
}

func (f *fakeContactStore) SearchByLastName(_ context.Context, userID int64, lastname string) ([]models.Contact, error) {
	return f.search(userID, func(c models.Contact) bool {
		return strings.EqualFold(c.LastName, lastname)
	})
}

func (f *fakeContactStore) NextWeekBirthdays(_ context.Context, userID int64, now time.Time) ([]models.Contact, error) {
	from := now.Format("01-02")
	to := now.AddDate(0, 0, 7).Format("01-02")
	return f.search(userID, func(c models.Contact) bool {
		day := c.Birthday.Format("01-02")
		return day >= from && day <= to
	})
}

func (f *fakeContactStore) Create(_ context.Context, contact models.Contact) (models.Contact, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.nextID++
	contact.ID = f.nextID
	now := f.now()
	contact.CreatedAt = now
	contact.UpdatedAt = now
	f.contacts[contact.ID] = contact
	return contact, nil
}

func (f *fakeContactStore) Update(_ context.Context, contact models.Contact) (models.Contact, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	existing, ok := f.contacts[contact.ID]
	if !ok || existing.UserID != contact.UserID {
		return models.Contact{}, storage.ErrNotFound
	}
	contact.CreatedAt = existing.CreatedAt
	contact.UpdatedAt = f.now()
	f.contacts[contact.ID] = contact
	return contact, nil
}

func (f *fakeContactStore) Delete(_ context.Context, userID, contactID int64) (models.Contact, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	c, ok := f.contacts[contactID]
	if !ok || c.UserID != userID {
		return models.Contact{}, storage.ErrNotFound
	}
	delete(f.contacts, contactID)
	return c, nil
}

func (f *fakeContactStore) search(userID int64, match func(models.Contact) bool) ([]models.Contact, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	out := []models.Contact{}
	for id := int64(1); id <= f.nextID; id++ {
		if c, ok := f.contacts[id]; ok && c.UserID == userID && match(c) {
			out = append(out, c)
		}
	}
	return out, nil
}

// withTestUser bypasses the auth guard, injecting the user directly.
func withTestUser(user models.User) func(http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			next.ServeHTTP(w, r.WithContext(middleware.WithUser(r.Context(), user)))
		})
	}
}

// fakeMailer records confirmation sends.
type fakeMailer struct {
	mu    sync.Mutex
	sends []string
}

func (f *fakeMailer) SendConfirmation(_ context.Context, email, _, _ string) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.sends = append(f.sends, email)
	return nil
}
