package models

import "time"

// Session is the credential set persisted between requests.
// The zero value means "logged out".
type Session struct {
	AccessToken  string
	RefreshToken string
	Role         string
}

// HasToken reports whether an access token is present.
func (s Session) HasToken() bool {
	return s.AccessToken != ""
}

// TokenPair is the body returned by the login, register and refresh endpoints.
// Some backend versions name the access token "token".
type TokenPair struct {
	AccessToken  string `json:"accessToken"`
	Token        string `json:"token,omitempty"`
	RefreshToken string `json:"refreshToken,omitempty"`
}

// Access returns the access token under either of its field names.
func (p TokenPair) Access() string {
	if p.AccessToken != "" {
		return p.AccessToken
	}
	return p.Token
}

// SessionInfo is what can be read locally from an access token without
// asking the server.
type SessionInfo struct {
	Subject   string
	Role      string
	ExpiresAt time.Time
}

// Expired reports whether the token's exp claim is in the past relative to now.
// Tokens without an exp claim never expire locally.
func (i SessionInfo) Expired(now time.Time) bool {
	return !i.ExpiresAt.IsZero() && now.After(i.ExpiresAt)
}
