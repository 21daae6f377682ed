package http

import (
	"crypto/hmac"
	"crypto/sha256"
	"encoding/base64"
	"encoding/json"
	"errors"
	"fmt"
	"net/http"
	"strings"
	"time"

	"github.com/gin-gonic/gin"

	"github.com/garyjia/billed/internal/domain/entity"
)

const (
	// UserCookieName holds the signed session user
	UserCookieName = "user"
	sessionMaxAge  = 7 * 24 * time.Hour
)

// ErrInvalidSession is returned for a missing, malformed or tampered cookie
var ErrInvalidSession = errors.New("invalid session")

// SessionCodec signs the {type, email} user record kept in the user cookie
type SessionCodec struct {
	secret []byte
	secure bool
}

// NewSessionCodec creates a codec signing with secret
func NewSessionCodec(secret string, secure bool) *SessionCodec {
	return &SessionCodec{secret: []byte(secret), secure: secure}
}

// Encode serializes and signs user
func (s *SessionCodec) Encode(user entity.User) (string, error) {
	payload, err := json.Marshal(user)
	if err != nil {
		return "", fmt.Errorf("failed to encode session: %w", err)
	}
	body := base64.RawURLEncoding.EncodeToString(payload)
	return body + "." + s.sign(body), nil
}

// Decode verifies and parses a cookie value
func (s *SessionCodec) Decode(value string) (entity.User, error) {
	body, sig, ok := strings.Cut(value, ".")
	if !ok || !hmac.Equal([]byte(sig), []byte(s.sign(body))) {
		return entity.User{}, ErrInvalidSession
	}

	payload, err := base64.RawURLEncoding.DecodeString(body)
	if err != nil {
		return entity.User{}, ErrInvalidSession
	}

	var user entity.User
	if err := json.Unmarshal(payload, &user); err != nil {
		return entity.User{}, ErrInvalidSession
	}
	if !user.Valid() {
		return entity.User{}, ErrInvalidSession
	}
	return user, nil
}

func (s *SessionCodec) sign(body string) string {
	mac := hmac.New(sha256.New, s.secret)
	mac.Write([]byte(body))
	return base64.RawURLEncoding.EncodeToString(mac.Sum(nil))
}

// Write stores user in the response cookie
func (s *SessionCodec) Write(c *gin.Context, user entity.User) error {
	value, err := s.Encode(user)
	if err != nil {
		return err
	}
	c.SetSameSite(http.SameSiteStrictMode)
	c.SetCookie(UserCookieName, value, int(sessionMaxAge.Seconds()), "/", "", s.secure, true)
	return nil
}

// Read returns the session user of the request
func (s *SessionCodec) Read(c *gin.Context) (entity.User, error) {
	value, err := c.Cookie(UserCookieName)
	if err != nil {
		return entity.User{}, ErrInvalidSession
	}
	return s.Decode(value)
}

// Clear removes the session cookie
func (s *SessionCodec) Clear(c *gin.Context) {
	c.SetSameSite(http.SameSiteStrictMode)
	c.SetCookie(UserCookieName, "", -1, "/", "", s.secure, true)
}
