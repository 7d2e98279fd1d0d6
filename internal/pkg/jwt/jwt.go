package jwt

import (
	"errors"
	"sync"
	"time"

	"github.com/go-chi/jwtauth/v5"
	"github.com/lestrrat-go/jwx/v2/jwt"
)

// Roles carried in the "role" claim.
const (
	RoleOwner    = "owner"
	RoleAdmin    = "admin"
	RoleManager  = "manager"
	RoleEmployee = "employee"
)

const (
	tokenTypeAccess = "access"
	tokenTypeSSE    = "sse"
)

var ErrInvalidTokenType = errors.New("invalid token type")

// Claims is the identity carried by an access token. Tokens are issued by
// the platform's auth service; this service only verifies them.
type Claims struct {
	UserID    string
	CompanyID string
	Role      string
}

// IsAdmin reports whether the role may manage company holidays.
func (c Claims) IsAdmin() bool {
	return c.Role == RoleOwner || c.Role == RoleAdmin
}

type Service interface {
	GenerateAccessToken(claims Claims) (token string, expiresAt int64, err error)
	GenerateSSEToken(claims Claims) (token string, expiresIn int, err error)
	ValidateSSEToken(tokenString string) (Claims, error)
	JWTAuth() *jwtauth.JWTAuth
	RevokeToken(token string, expiresAt time.Time)
	IsTokenRevoked(token string) bool
}

type JWTService struct {
	accessTokenExpiration time.Duration
	sseTokenExpiration    time.Duration
	tokenAuth             *jwtauth.JWTAuth
	revokedTokens         map[string]time.Time
	mu                    sync.RWMutex
	now                   func() time.Time
}

func (j *JWTService) JWTAuth() *jwtauth.JWTAuth {
	return j.tokenAuth
}

func NewJWTService(secretKey string, accessTokenExpiration string, sseTokenExpiration time.Duration) (*JWTService, error) {
	accessExp, err := time.ParseDuration(accessTokenExpiration)
	if err != nil {
		return nil, err
	}
	if sseTokenExpiration <= 0 {
		sseTokenExpiration = 5 * time.Minute
	}

	return &JWTService{
		accessTokenExpiration: accessExp,
		sseTokenExpiration:    sseTokenExpiration,
		tokenAuth:             jwtauth.New("HS256", []byte(secretKey), nil, jwt.WithAcceptableSkew(30*time.Second)),
		revokedTokens:         make(map[string]time.Time),
		now:                   time.Now,
	}, nil
}

func (j *JWTService) encode(claims Claims, tokenType string, ttl time.Duration) (string, int64, error) {
	expiresAt := j.now().Add(ttl).Unix()

	_, tokenString, err := j.tokenAuth.Encode(map[string]interface{}{
		"user_id":    claims.UserID,
		"company_id": claims.CompanyID,
		"role":       claims.Role,
		"type":       tokenType,
		"exp":        expiresAt,
	})
	return tokenString, expiresAt, err
}

// GenerateAccessToken issues an access token. Used by tests and local
// tooling; production tokens come from the auth service.
func (j *JWTService) GenerateAccessToken(claims Claims) (token string, expiresAt int64, err error) {
	return j.encode(claims, tokenTypeAccess, j.accessTokenExpiration)
}

// GenerateSSEToken generates a short-lived token for SSE connections, which
// cannot send an Authorization header from the browser.
func (j *JWTService) GenerateSSEToken(claims Claims) (token string, expiresIn int, err error) {
	token, _, err = j.encode(claims, tokenTypeSSE, j.sseTokenExpiration)
	if err != nil {
		return "", 0, err
	}
	return token, int(j.sseTokenExpiration.Seconds()), nil
}

// ValidateSSEToken validates an SSE token and returns its claims
func (j *JWTService) ValidateSSEToken(tokenString string) (Claims, error) {
	if j.IsTokenRevoked(tokenString) {
		return Claims{}, jwt.ErrInvalidJWT()
	}

	token, err := jwtauth.VerifyToken(j.tokenAuth, tokenString)
	if err != nil {
		return Claims{}, err
	}

	if tokenType, _ := token.Get("type"); tokenType != tokenTypeSSE {
		return Claims{}, ErrInvalidTokenType
	}

	claims, err := ClaimsFromMap(token.PrivateClaims())
	if err != nil {
		return Claims{}, err
	}
	return claims, nil
}

// ClaimsFromMap reads Claims from decoded JWT claims.
func ClaimsFromMap(m map[string]interface{}) (Claims, error) {
	userID, _ := m["user_id"].(string)
	if userID == "" {
		return Claims{}, jwt.ErrInvalidJWT()
	}
	companyID, _ := m["company_id"].(string)
	role, _ := m["role"].(string)

	return Claims{UserID: userID, CompanyID: companyID, Role: role}, nil
}

// RevokeToken blocks token until expiresAt.
func (j *JWTService) RevokeToken(token string, expiresAt time.Time) {
	j.mu.Lock()
	defer j.mu.Unlock()

	now := j.now()
	for t, exp := range j.revokedTokens {
		if exp.Before(now) {
			delete(j.revokedTokens, t)
		}
	}
	j.revokedTokens[token] = expiresAt
}

func (j *JWTService) IsTokenRevoked(token string) bool {
	j.mu.RLock()
	defer j.mu.RUnlock()
	_, revoked := j.revokedTokens[token]
	return revoked
}
