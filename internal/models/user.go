package models

// User captures application-facing fields for an authenticated identity.
// RefreshToken holds the single currently valid refresh token for the user;
// storing a new value invalidates the previous one.
type User struct {
	ID           int64  `json:"id"`
	Username     string `json:"username"`
	Email        string `json:"email"`
	PasswordHash string `json:"-"`
	RefreshToken string `json:"-"`
	Avatar       string `json:"avatar"`
	Confirmed    bool   `json:"confirmed"`
}
