// Package common contains shared constants and sentinel errors used across
// Babel Edit client components.
package common

// Header names used on outbound requests.
const (
	AuthorizationHeaderName = "Authorization"
	RequestIDHeaderName     = "X-Request-ID"
	BearerPrefix            = "Bearer "
)

// Cookie names shared by the storefront backend and the credential stores.
const (
	AccessTokenCookieName  = "accessToken"
	RefreshTokenCookieName = "refreshToken"
	RoleCookieName         = "userRole"
)
