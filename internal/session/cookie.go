package session

import (
	"net/http"
	"time"

	"github.com/golang-jwt/jwt/v5"

	"calmate-web/internal/model"
)

// CookieCodec writes and reads the signed browser cookie. The cookie carries
// only the session id; the upstream token never leaves the server.
type CookieCodec struct {
	name   string
	secret []byte
	ttl    time.Duration
	secure bool
}

func NewCookieCodec(name string, secret string, ttl time.Duration, secure bool) *CookieCodec {
	return &CookieCodec{name: name, secret: []byte(secret), ttl: ttl, secure: secure}
}

func (c *CookieCodec) Issue(w http.ResponseWriter, sessionID string) error {
	now := time.Now().UTC()
	token := jwt.NewWithClaims(jwt.SigningMethodHS256, jwt.MapClaims{
		"sub": sessionID,
		"iat": now.Unix(),
		"exp": now.Add(c.ttl).Unix(),
	})

	signed, err := token.SignedString(c.secret)
	if err != nil {
		return err
	}

	http.SetCookie(w, &http.Cookie{
		Name:     c.name,
		Value:    signed,
		Path:     "/",
		MaxAge:   int(c.ttl.Seconds()),
		HttpOnly: true,
		Secure:   c.secure,
		SameSite: http.SameSiteLaxMode,
	})

	return nil
}

// Read returns the session id from the request cookie. A missing, malformed,
// or expired cookie yields ErrSessionNotFound; the caller treats all of those
// as "no persisted token".
func (c *CookieCodec) Read(r *http.Request) (string, error) {
	cookie, err := r.Cookie(c.name)
	if err != nil {
		return "", model.ErrSessionNotFound
	}

	parsed, err := jwt.Parse(cookie.Value, func(token *jwt.Token) (interface{}, error) {
		if _, ok := token.Method.(*jwt.SigningMethodHMAC); !ok {
			return nil, model.ErrSessionNotFound
		}
		return c.secret, nil
	})
	if err != nil || !parsed.Valid {
		return "", model.ErrSessionNotFound
	}

	claims, ok := parsed.Claims.(jwt.MapClaims)
	if !ok {
		return "", model.ErrSessionNotFound
	}

	sessionID, _ := claims["sub"].(string)
	if sessionID == "" {
		return "", model.ErrSessionNotFound
	}

	return sessionID, nil
}

func (c *CookieCodec) Clear(w http.ResponseWriter) {
	http.SetCookie(w, &http.Cookie{
		Name:     c.name,
		Value:    "",
		Path:     "/",
		MaxAge:   -1,
		HttpOnly: true,
		Secure:   c.secure,
		SameSite: http.SameSiteLaxMode,
	})
}
