package handlers

import (
	"encoding/json"
	"errors"
	"log/slog"
	"net/http"
	"strconv"
	"time"

	"github.com/VadymBoyko/PW-HW14/internal/http/respond"
	"github.com/VadymBoyko/PW-HW14/internal/middleware"
	"github.com/VadymBoyko/PW-HW14/internal/models"
	"github.com/VadymBoyko/PW-HW14/internal/models/dto"
	"github.com/VadymBoyko/PW-HW14/internal/storage"
)

// ContactsHandler owns the address-book endpoints. Every route expects an
// authenticated user in the request context; all store calls are scoped to
// that user's id.
type ContactsHandler struct {
	contacts storage.ContactStore
	now      func() time.Time
}

// NewContactsHandler constructs the handler.
func NewContactsHandler(contacts storage.ContactStore) *ContactsHandler {
	return &ContactsHandler{contacts: contacts, now: time.Now}
}

// Register attaches contact routes to the mux behind the auth guard.
func (h *ContactsHandler) Register(mux *http.ServeMux, guard func(http.Handler) http.Handler) {
	routes := map[string]http.HandlerFunc{
		"GET /api/contacts/{$}":                               h.handleList,
		"POST /api/contacts/{$}":                              h.handleCreate,
		"GET /api/contacts/{id}":                              h.handleGet,
		"PUT /api/contacts/{id}":                              h.handleUpdate,
		"DELETE /api/contacts/{id}":                           h.handleDelete,
		"GET /api/contacts/search_by_firstname/{firstname}":   h.handleSearchByFirstName,
		"GET /api/contacts/search_by_lastname/{lastname}":     h.handleSearchByLastName,
		"GET /api/contacts/next_week_birthday/{$}":            h.handleNextWeekBirthdays,
	}
	for pattern, fn := range routes {
		mux.Handle(pattern, guard(fn))
	}
}

func (h *ContactsHandler) handleList(w http.ResponseWriter, r *http.Request) {
	user, ok := middleware.UserFromContext(r.Context())
	if !ok {
		respond.Error(w, http.StatusUnauthorized, "not authenticated")
		return
	}
	contacts, err := h.contacts.List(r.Context(), user.ID)
	if err != nil {
		slog.Error("list contacts", "error", err)
		respond.Error(w, http.StatusInternalServerError, "failed to list contacts")
		return
	}
	respond.JSON(w, http.StatusOK, dto.NewContactListResponse(contacts, h.now()))
}

func (h *ContactsHandler) handleGet(w http.ResponseWriter, r *http.Request) {
	user, contactID, ok := h.userAndID(w, r)
	if !ok {
		return
	}
	contact, err := h.contacts.GetByID(r.Context(), user.ID, contactID)
	if err != nil {
		h.respondStoreError(w, err, "get contact")
		return
	}
	respond.JSON(w, http.StatusOK, dto.NewContactResponse(contact, h.now()))
}

func (h *ContactsHandler) handleSearchByFirstName(w http.ResponseWriter, r *http.Request) {
	user, ok := middleware.UserFromContext(r.Context())
	if !ok {
		respond.Error(w, http.StatusUnauthorized, "not authenticated")
		return
	}
	contacts, err := h.contacts.SearchByFirstName(r.Context(), user.ID, r.PathValue("firstname"))
	if err != nil {
		slog.Error("search contacts by firstname", "error", err)
		respond.Error(w, http.StatusInternalServerError, "failed to search contacts")
		return
	}
	respond.JSON(w, http.StatusOK, dto.NewContactListResponse(contacts, h.now()))
}

func (h *ContactsHandler) handleSearchByLastName(w http.ResponseWriter, r *http.Request) {
	user, ok := middleware.UserFromContext(r.Context())
	if !ok {
		respond.Error(w, http.StatusUnauthorized, "not authenticated")
		return
	}
	contacts, err := h.contacts.SearchByLastName(r.Context(), user.ID, r.PathValue("lastname"))
	if err != nil {
		slog.Error("search contacts by lastname", "error", err)
		respond.Error(w, http.StatusInternalServerError, "failed to search contacts")
		return
	}
	respond.JSON(w, http.StatusOK, dto.NewContactListResponse(contacts, h.now()))
}

func (h *ContactsHandler) handleNextWeekBirthdays(w http.ResponseWriter, r *http.Request) {
	user, ok := middleware.UserFromContext(r.Context())
	if !ok {
		respond.Error(w, http.StatusUnauthorized, "not authenticated")
		return
	}
	now := h.now()
	contacts, err := h.contacts.NextWeekBirthdays(r.Context(), user.ID, now)
	if err != nil {
		slog.Error("next week birthdays", "error", err)
		respond.Error(w, http.StatusInternalServerError, "failed to query birthdays")
		return
	}
	respond.JSON(w, http.StatusOK, dto.NewContactListResponse(contacts, now))
}

func (h *ContactsHandler) handleCreate(w http.ResponseWriter, r *http.Request) {
	user, ok := middleware.UserFromContext(r.Context())
	if !ok {
		respond.Error(w, http.StatusUnauthorized, "not authenticated")
		return
	}
	contact, ok := h.decodeContact(w, r, user)
	if !ok {
		return
	}

	// Per-user uniqueness check mirrors the store's case-insensitive match.
	if _, err := h.contacts.GetByEmail(r.Context(), user.ID, contact.Email); err == nil {
		respond.Error(w, http.StatusConflict, "contact with this email already exists")
		return
	} else if !errors.Is(err, storage.ErrNotFound) {
		slog.Error("create contact: email check", "error", err)
		respond.Error(w, http.StatusInternalServerError, "failed to create contact")
		return
	}

	created, err := h.contacts.Create(r.Context(), contact)
	if err != nil {
		slog.Error("create contact", "error", err)
		respond.Error(w, http.StatusInternalServerError, "failed to create contact")
		return
	}
	respond.JSON(w, http.StatusCreated, dto.NewContactResponse(created, h.now()))
}

func (h *ContactsHandler) handleUpdate(w http.ResponseWriter, r *http.Request) {
	user, contactID, ok := h.userAndID(w, r)
	if !ok {
		return
	}
	contact, ok := h.decodeContact(w, r, user)
	if !ok {
		return
	}
	contact.ID = contactID

	updated, err := h.contacts.Update(r.Context(), contact)
	if err != nil {
		h.respondStoreError(w, err, "update contact")
		return
	}
	respond.JSON(w, http.StatusOK, dto.NewContactResponse(updated, h.now()))
}

func (h *ContactsHandler) handleDelete(w http.ResponseWriter, r *http.Request) {
	user, contactID, ok := h.userAndID(w, r)
	if !ok {
		return
	}
	if _, err := h.contacts.Delete(r.Context(), user.ID, contactID); err != nil {
		h.respondStoreError(w, err, "delete contact")
		return
	}
	respond.JSON(w, http.StatusNoContent, nil)
}

func (h *ContactsHandler) userAndID(w http.ResponseWriter, r *http.Request) (models.User, int64, bool) {
	user, ok := middleware.UserFromContext(r.Context())
	if !ok {
		respond.Error(w, http.StatusUnauthorized, "not authenticated")
		return models.User{}, 0, false
	}
	id, err := strconv.ParseInt(r.PathValue("id"), 10, 64)
	if err != nil || id < 1 {
		respond.Error(w, http.StatusBadRequest, "invalid contact id")
		return models.User{}, 0, false
	}
	return user, id, true
}

func (h *ContactsHandler) decodeContact(w http.ResponseWriter, r *http.Request, user models.User) (models.Contact, bool) {
	var req dto.ContactRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		respond.Error(w, http.StatusBadRequest, "invalid JSON payload")
		return models.Contact{}, false
	}
	if err := req.Validate(); err != nil {
		respond.Error(w, http.StatusBadRequest, err.Error())
		return models.Contact{}, false
	}
	contact, err := req.ToModel(user.ID)
	if err != nil {
		respond.Error(w, http.StatusBadRequest, err.Error())
		return models.Contact{}, false
	}
	return contact, true
}

func (h *ContactsHandler) respondStoreError(w http.ResponseWriter, err error, op string) {
	if errors.Is(err, storage.ErrNotFound) {
		respond.Error(w, http.StatusNotFound, "not found")
		return
	}
	slog.Error(op, "error", err)
	respond.Error(w, http.StatusInternalServerError, "failed to "+op)
}
