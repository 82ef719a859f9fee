// Package auth verifies credentials and issues and resolves bearer tokens.
package auth

import (
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/golang-jwt/jwt/v5"
	"github.com/zulandar/shiftboard/internal/apperr"
	"github.com/zulandar/shiftboard/internal/identity"
	"github.com/zulandar/shiftboard/internal/models"
	"golang.org/x/crypto/bcrypt"
	"gorm.io/gorm"
)

// hashCost is the bcrypt work factor. Tests lower it.
var hashCost = bcrypt.DefaultCost

// HashPassword returns the bcrypt hash of password.
func HashPassword(password string) (string, error) {
	if password == "" {
		return "", apperr.Invalid("password is required")
	}
	b, err := bcrypt.GenerateFromPassword([]byte(password), hashCost)
	if err != nil {
		return "", fmt.Errorf("auth: hash password: %w", err)
	}
	return string(b), nil
}

// CheckPassword reports whether password matches hash.
func CheckPassword(hash, password string) bool {
	return bcrypt.CompareHashAndPassword([]byte(hash), []byte(password)) == nil
}

// Claims are the token claims. Tokens carry no expiry; a token stays valid
// until the user is deleted or the signing secret changes.
type Claims struct {
	Role models.Role `json:"role"`
	Name string      `json:"name"`
	jwt.RegisteredClaims
}

// Authenticator checks credentials against the user table and signs tokens.
type Authenticator struct {
	db     *gorm.DB
	secret []byte
}

// New returns an Authenticator signing with secret.
func New(db *gorm.DB, secret string) (*Authenticator, error) {
	if secret == "" {
		return nil, errors.New("auth: signing secret is required")
	}
	return &Authenticator{db: db, secret: []byte(secret)}, nil
}

// Authenticate verifies sapID and password against a live user.
func (a *Authenticator) Authenticate(sapID, password string) (identity.Principal, error) {
	sapID = strings.TrimSpace(sapID)
	if sapID == "" || password == "" {
		return identity.Principal{}, fmt.Errorf("auth: missing credentials: %w", apperr.ErrUnauthorized)
	}
	u, err := a.liveUser(sapID)
	if err != nil {
		return identity.Principal{}, err
	}
	if !CheckPassword(u.Password, password) {
		return identity.Principal{}, fmt.Errorf("auth: invalid credentials: %w", apperr.ErrUnauthorized)
	}
	return principalOf(u), nil
}

// IssueToken signs an HS256 token for p.
func (a *Authenticator) IssueToken(p identity.Principal) (string, error) {
	claims := Claims{
		Role: p.Role,
		Name: p.Name,
		RegisteredClaims: jwt.RegisteredClaims{
			Subject:  p.SapID,
			IssuedAt: jwt.NewNumericDate(time.Now()),
		},
	}
	tok, err := jwt.NewWithClaims(jwt.SigningMethodHS256, claims).SignedString(a.secret)
	if err != nil {
		return "", fmt.Errorf("auth: sign token: %w", err)
	}
	return tok, nil
}

// ResolveToken verifies a token and re-loads its user, so deleted users and
// changed roles take effect immediately.
func (a *Authenticator) ResolveToken(token string) (identity.Principal, error) {
	var claims Claims
	_, err := jwt.ParseWithClaims(token, &claims, func(t *jwt.Token) (any, error) {
		if _, ok := t.Method.(*jwt.SigningMethodHMAC); !ok {
			return nil, fmt.Errorf("unexpected signing method %v", t.Header["alg"])
		}
		return a.secret, nil
	})
	if err != nil {
		return identity.Principal{}, fmt.Errorf("auth: invalid token: %w", apperr.ErrUnauthorized)
	}
	if claims.Subject == "" {
		return identity.Principal{}, fmt.Errorf("auth: token has no subject: %w", apperr.ErrUnauthorized)
	}
	u, err := a.liveUser(claims.Subject)
	if err != nil {
		return identity.Principal{}, err
	}
	return principalOf(u), nil
}

func (a *Authenticator) liveUser(sapID string) (*models.User, error) {
	var u models.User
	if err := a.db.Where("sap_id = ?", sapID).First(&u).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, fmt.Errorf("auth: unknown user: %w", apperr.ErrUnauthorized)
		}
		return nil, fmt.Errorf("auth: load user %s: %w", sapID, err)
	}
	return &u, nil
}

func principalOf(u *models.User) identity.Principal {
	return identity.Principal{SapID: u.SapID, Name: u.Name, Role: u.Role}
}
