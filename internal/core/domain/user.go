package domain

import "time"

// Token is a single login session held by a user.
type Token struct {
	Token string `json:"token"`
}

// User models an account owner. Password hash, tokens and avatar never leave
// the process in serialized form.
type User struct {
	ID           string    `json:"_id"`
	Name         string    `json:"name"`
	Email        string    `json:"email"`
	Age          int       `json:"age"`
	PasswordHash string    `json:"-"`
	Tokens       []Token   `json:"-"`
	Avatar       []byte    `json:"-"`
	CreatedAt    time.Time `json:"createdAt"`
	UpdatedAt    time.Time `json:"updatedAt"`
}

// HasToken reports whether token is one of the user's live sessions.
func (u *User) HasToken(token string) bool {
	if token == "" {
		return false
	}
	for _, t := range u.Tokens {
		if t.Token == token {
			return true
		}
	}
	return false
}
