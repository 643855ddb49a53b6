// Package tokens signs and parses the access and refresh JWTs of a session.
package tokens

import (
	"errors"
	"fmt"
	"time"

	"github.com/golang-jwt/jwt/v5"
	"github.com/google/uuid"

	"github.com/Skotchmaster/videotube/internal/models"
)

const (
	typeAccess  = "access"
	typeRefresh = "refresh"
)

var (
	ErrInvalid = errors.New("invalid token")
	ErrConfig  = errors.New("token issuer misconfigured")
)

type AccessClaims struct {
	Email    string `json:"email"`
	Username string `json:"username"`
	FullName string `json:"fullName"`
	Type     string `json:"typ"`
	jwt.RegisteredClaims
}

type RefreshClaims struct {
	Type string `json:"typ"`
	jwt.RegisteredClaims
}

type Config struct {
	AccessSecret  []byte
	RefreshSecret []byte
	AccessTTL     time.Duration
	RefreshTTL    time.Duration
	// Now defaults to time.Now.
	Now func() time.Time
}

type Issuer struct {
	cfg Config
}

// Issued is a signed token and the moment it stops being valid.
type Issued struct {
	Token     string
	ExpiresAt time.Time
}

func NewIssuer(cfg Config) (*Issuer, error) {
	if len(cfg.AccessSecret) == 0 || len(cfg.RefreshSecret) == 0 {
		return nil, fmt.Errorf("%w: missing secret", ErrConfig)
	}
	if string(cfg.AccessSecret) == string(cfg.RefreshSecret) {
		return nil, fmt.Errorf("%w: access and refresh secrets must differ", ErrConfig)
	}
	if cfg.AccessTTL <= 0 || cfg.RefreshTTL <= 0 {
		return nil, fmt.Errorf("%w: invalid TTL", ErrConfig)
	}
	if cfg.Now == nil {
		cfg.Now = time.Now
	}
	return &Issuer{cfg: cfg}, nil
}

func (i *Issuer) AccessTTL() time.Duration  { return i.cfg.AccessTTL }
func (i *Issuer) RefreshTTL() time.Duration { return i.cfg.RefreshTTL }

func (i *Issuer) IssueAccess(u *models.User) (Issued, error) {
	now := i.cfg.Now()
	exp := now.Add(i.cfg.AccessTTL)
	claims := AccessClaims{
		Email:    u.Email,
		Username: u.Username,
		FullName: u.FullName,
		Type:     typeAccess,
		RegisteredClaims: jwt.RegisteredClaims{
			Subject:   u.ID.String(),
			IssuedAt:  jwt.NewNumericDate(now),
			ExpiresAt: jwt.NewNumericDate(exp),
		},
	}
	return sign(claims, i.cfg.AccessSecret, exp)
}

// IssueRefresh carries only the subject; the jti makes every refresh token
// distinct even when two are minted within the same second.
func (i *Issuer) IssueRefresh(u *models.User) (Issued, error) {
	now := i.cfg.Now()
	exp := now.Add(i.cfg.RefreshTTL)
	claims := RefreshClaims{
		Type: typeRefresh,
		RegisteredClaims: jwt.RegisteredClaims{
			ID:        uuid.NewString(),
			Subject:   u.ID.String(),
			IssuedAt:  jwt.NewNumericDate(now),
			ExpiresAt: jwt.NewNumericDate(exp),
		},
	}
	return sign(claims, i.cfg.RefreshSecret, exp)
}

func sign(claims jwt.Claims, secret []byte, exp time.Time) (Issued, error) {
	signed, err := jwt.NewWithClaims(jwt.SigningMethodHS256, claims).SignedString(secret)
	if err != nil {
		return Issued{}, fmt.Errorf("sign token: %w", err)
	}
	return Issued{Token: signed, ExpiresAt: exp}, nil
}

func (i *Issuer) parserOptions() []jwt.ParserOption {
	return []jwt.ParserOption{
		jwt.WithValidMethods([]string{jwt.SigningMethodHS256.Alg()}),
		jwt.WithTimeFunc(i.cfg.Now),
		jwt.WithExpirationRequired(),
	}
}

// ParseAccess verifies signature, expiry and token type and returns the
// subject user id.
func (i *Issuer) ParseAccess(raw string) (uuid.UUID, *AccessClaims, error) {
	var claims AccessClaims
	if _, err := jwt.ParseWithClaims(raw, &claims, keyFunc(i.cfg.AccessSecret), i.parserOptions()...); err != nil {
		return uuid.Nil, nil, fmt.Errorf("%w: %w", ErrInvalid, err)
	}
	if claims.Type != typeAccess {
		return uuid.Nil, nil, fmt.Errorf("%w: not an access token", ErrInvalid)
	}
	id, err := subject(claims.Subject)
	if err != nil {
		return uuid.Nil, nil, err
	}
	return id, &claims, nil
}

func (i *Issuer) ParseRefresh(raw string) (uuid.UUID, error) {
	var claims RefreshClaims
	if _, err := jwt.ParseWithClaims(raw, &claims, keyFunc(i.cfg.RefreshSecret), i.parserOptions()...); err != nil {
		return uuid.Nil, fmt.Errorf("%w: %w", ErrInvalid, err)
	}
	if claims.Type != typeRefresh {
		return uuid.Nil, fmt.Errorf("%w: not a refresh token", ErrInvalid)
	}
	return subject(claims.Subject)
}

func keyFunc(secret []byte) jwt.Keyfunc {
	return func(t *jwt.Token) (interface{}, error) {
		if _, ok := t.Method.(*jwt.SigningMethodHMAC); !ok {
			return nil, fmt.Errorf("unexpected signature method: %v", t.Header["alg"])
		}
		return secret, nil
	}
}

func subject(sub string) (uuid.UUID, error) {
	id, err := uuid.Parse(sub)
	if err != nil {
		return uuid.Nil, fmt.Errorf("%w: bad subject", ErrInvalid)
	}
	return id, nil
}
