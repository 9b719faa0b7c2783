package credentials

import (
	"context"
	"fmt"
	"net/http"
	"net/http/cookiejar"
	"net/url"
	"time"

	"github.com/dmitrijs2005/babeledit/internal/client/models"
	"github.com/dmitrijs2005/babeledit/internal/common"
)

// DefaultCookieMaxAge is how long session cookies live unless configured.
const DefaultCookieMaxAge = 7 * 24 * time.Hour

// CookieStore keeps the session as cookies in a jar scoped to the API URL.
//
// Cookies are written with Path=/ and SameSite=Lax. The Secure flag is only
// set in production: a Secure cookie is never sent over plain HTTP, which
// would break local development against http://localhost.
//
// The jar is meant to be shared with the http.Client (see Jar), so cookies the
// backend sets itself travel with every request as well.
type CookieStore struct {
	jar    http.CookieJar
	url    *url.URL
	secure bool
	maxAge time.Duration
	now    func() time.Time
}

type CookieOption func(*CookieStore)

// WithSecure toggles the Secure attribute. Pass true only for HTTPS deployments.
func WithSecure(secure bool) CookieOption {
	return func(s *CookieStore) { s.secure = secure }
}

// WithMaxAge overrides DefaultCookieMaxAge. Non-positive values are ignored.
func WithMaxAge(d time.Duration) CookieOption {
	return func(s *CookieStore) {
		if d > 0 {
			s.maxAge = d
		}
	}
}

// WithJar makes the store write into an existing jar.
func WithJar(jar http.CookieJar) CookieOption {
	return func(s *CookieStore) { s.jar = jar }
}

func withCookieClock(now func() time.Time) CookieOption {
	return func(s *CookieStore) { s.now = now }
}

func NewCookieStore(apiURL string, opts ...CookieOption) (*CookieStore, error) {
	u, err := url.Parse(apiURL)
	if err != nil {
		return nil, fmt.Errorf("invalid api url: %w", err)
	}
	if u.Host == "" {
		return nil, fmt.Errorf("invalid api url %q: missing host", apiURL)
	}

	s := &CookieStore{url: u, maxAge: DefaultCookieMaxAge, now: time.Now}
	for _, o := range opts {
		o(s)
	}

	if s.jar == nil {
		jar, err := cookiejar.New(nil)
		if err != nil {
			return nil, err
		}
		s.jar = jar
	}
	return s, nil
}

// Jar exposes the underlying jar so an http.Client can share it.
func (s *CookieStore) Jar() http.CookieJar {
	return s.jar
}

func (s *CookieStore) Get(ctx context.Context) (models.Session, error) {
	var sess models.Session
	for _, c := range s.jar.Cookies(s.url) {
		switch c.Name {
		case common.AccessTokenCookieName:
			sess.AccessToken = c.Value
		case common.RefreshTokenCookieName:
			sess.RefreshToken = c.Value
		case common.RoleCookieName:
			sess.Role = c.Value
		}
	}
	return sess, nil
}

func (s *CookieStore) Set(ctx context.Context, sess models.Session) error {
	s.jar.SetCookies(s.url, []*http.Cookie{
		s.cookie(common.AccessTokenCookieName, sess.AccessToken),
		s.cookie(common.RefreshTokenCookieName, sess.RefreshToken),
		s.cookie(common.RoleCookieName, sess.Role),
	})
	return nil
}

func (s *CookieStore) Clear(ctx context.Context) error {
	return s.Set(ctx, models.Session{})
}

// cookie builds a session cookie. An empty value produces a deletion cookie.
func (s *CookieStore) cookie(name, value string) *http.Cookie {
	c := &http.Cookie{
		Name:     name,
		Value:    value,
		Path:     "/",
		SameSite: http.SameSiteLaxMode,
		Secure:   s.secure,
	}
	if value == "" {
		c.MaxAge = -1
		return c
	}
	c.Expires = s.now().Add(s.maxAge)
	return c
}
