package token

import (
	"errors"
	"time"

	"account-admin-svc/src/internal/models"

	"github.com/golang-jwt/jwt/v5"
	"github.com/sirupsen/logrus"
)

const TypeBearer = "bearer"

// Claims binds the account email (subject), expiry and role flag.
type Claims struct {
	IsAdmin bool `json:"is_admin"`
	jwt.RegisteredClaims
}

// Issued is a signed token together with its expiry instant.
type Issued struct {
	Token     string
	ExpiresAt time.Time
}

// Service signs and validates bearer tokens. User and admin tokens use
// separate secrets so a leaked user secret cannot mint admin tokens.
type Service struct {
	userSecret  []byte
	adminSecret []byte
	ttl         time.Duration
	now         func() time.Time
}

func NewService(userSecret, adminSecret string, ttl time.Duration) *Service {
	return &Service{
		userSecret:  []byte(userSecret),
		adminSecret: []byte(adminSecret),
		ttl:         ttl,
		now:         time.Now,
	}
}

func (s *Service) IssueUser(email string) (*Issued, error) {
	return s.issue(email, false)
}

func (s *Service) IssueAdmin(email string) (*Issued, error) {
	return s.issue(email, true)
}

func (s *Service) issue(email string, isAdmin bool) (*Issued, error) {
	now := s.now()
	expiresAt := now.Add(s.ttl)
	claims := &Claims{
		IsAdmin: isAdmin,
		RegisteredClaims: jwt.RegisteredClaims{
			Subject:   email,
			IssuedAt:  jwt.NewNumericDate(now),
			ExpiresAt: jwt.NewNumericDate(expiresAt),
		},
	}

	signed, err := jwt.NewWithClaims(jwt.SigningMethodHS256, claims).SignedString(s.secret(isAdmin))
	if err != nil {
		return nil, err
	}
	return &Issued{Token: signed, ExpiresAt: expiresAt}, nil
}

// VerifyUser returns the subject email of a valid user token.
func (s *Service) VerifyUser(tokenString string) (string, error) {
	claims, err := s.verify(tokenString, false)
	if err != nil {
		return "", err
	}
	return claims.Subject, nil
}

// VerifyAdmin returns the subject email of a valid admin token.
func (s *Service) VerifyAdmin(tokenString string) (string, error) {
	claims, err := s.verify(tokenString, true)
	if err != nil {
		return "", err
	}
	if !claims.IsAdmin {
		logrus.Warn("Admin token is missing the admin role flag")
		return "", models.ErrUnauthenticated
	}
	return claims.Subject, nil
}

// verify collapses every failure into models.ErrUnauthenticated; the reason is only logged.
func (s *Service) verify(tokenString string, admin bool) (*Claims, error) {
	token, err := jwt.ParseWithClaims(tokenString, &Claims{}, func(token *jwt.Token) (interface{}, error) {
		if _, ok := token.Method.(*jwt.SigningMethodHMAC); !ok {
			return nil, errors.New("invalid signing method")
		}
		return s.secret(admin), nil
	},
		jwt.WithValidMethods([]string{jwt.SigningMethodHS256.Alg()}),
		jwt.WithExpirationRequired(),
		jwt.WithTimeFunc(s.now),
	)
	if err != nil {
		logrus.WithError(err).WithField("admin", admin).Debug("Token validation failed")
		return nil, models.ErrUnauthenticated
	}

	claims, ok := token.Claims.(*Claims)
	if !ok || !token.Valid || claims.Subject == "" {
		return nil, models.ErrUnauthenticated
	}
	return claims, nil
}

func (s *Service) secret(admin bool) []byte {
	if admin {
		return s.adminSecret
	}
	return s.userSecret
}
