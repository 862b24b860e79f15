package middleware

import (
	"errors"
	"fmt"
	"net/http"
	"strings"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/golang-jwt/jwt/v5"

	"github.com/jengzang/ecogo-motion/pkg/response"
)

// DeviceIDKey is the context key holding the authenticated device ID
const DeviceIDKey = "device_id"

var (
	// ErrMissingToken is returned when no bearer token was sent
	ErrMissingToken = errors.New("missing bearer token")
	// ErrInvalidToken is returned when the token fails validation
	ErrInvalidToken = errors.New("invalid token")
)

// Claims are the JWT claims carried by device tokens
type Claims struct {
	DeviceID string `json:"device_id"`
	jwt.RegisteredClaims
}

// Authenticator validates HS256 device tokens
type Authenticator struct {
	secret []byte
	issuer string
}

// NewAuthenticator creates an authenticator for secret
func NewAuthenticator(secret, issuer string) *Authenticator {
	return &Authenticator{secret: []byte(secret), issuer: issuer}
}

// IssueToken signs a token for deviceID valid for ttl. cmd/devicetoken uses
// it to provision devices.
func (a *Authenticator) IssueToken(deviceID string, ttl time.Duration) (string, error) {
	now := time.Now()
	claims := &Claims{
		DeviceID: deviceID,
		RegisteredClaims: jwt.RegisteredClaims{
			Issuer:    a.issuer,
			Subject:   deviceID,
			IssuedAt:  jwt.NewNumericDate(now),
			NotBefore: jwt.NewNumericDate(now),
			ExpiresAt: jwt.NewNumericDate(now.Add(ttl)),
		},
	}
	signed, err := jwt.NewWithClaims(jwt.SigningMethodHS256, claims).SignedString(a.secret)
	if err != nil {
		return "", fmt.Errorf("sign token: %w", err)
	}
	return signed, nil
}

// Validate parses tokenString and returns its claims
func (a *Authenticator) Validate(tokenString string) (*Claims, error) {
	token, err := jwt.ParseWithClaims(tokenString, &Claims{}, func(t *jwt.Token) (interface{}, error) {
		if _, ok := t.Method.(*jwt.SigningMethodHMAC); !ok {
			return nil, fmt.Errorf("unexpected signing method: %v", t.Header["alg"])
		}
		return a.secret, nil
	}, jwt.WithIssuer(a.issuer))
	if err != nil {
		return nil, fmt.Errorf("%w: %v", ErrInvalidToken, err)
	}

	claims, ok := token.Claims.(*Claims)
	if !ok || !token.Valid || claims.DeviceID == "" {
		return nil, ErrInvalidToken
	}
	return claims, nil
}

// Auth authenticates bearer tokens. When required is false requests
// without a valid token pass through unauthenticated.
func Auth(a *Authenticator, required bool) gin.HandlerFunc {
	return func(c *gin.Context) {
		claims, err := a.fromRequest(c)
		if err != nil {
			if required {
				response.Error(c, http.StatusUnauthorized, "unauthorized", err)
				return
			}
			c.Next()
			return
		}

		c.Set(DeviceIDKey, claims.DeviceID)
		c.Next()
	}
}

// DeviceID returns the authenticated device ID, if any
func DeviceID(c *gin.Context) (string, bool) {
	v, ok := c.Get(DeviceIDKey)
	if !ok {
		return "", false
	}
	id, ok := v.(string)
	return id, ok
}

func (a *Authenticator) fromRequest(c *gin.Context) (*Claims, error) {
	header := c.GetHeader("Authorization")
	if header == "" {
		return nil, ErrMissingToken
	}

	parts := strings.SplitN(header, " ", 2)
	if len(parts) != 2 || parts[0] != "Bearer" || parts[1] == "" {
		return nil, ErrMissingToken
	}
	return a.Validate(parts[1])
}
