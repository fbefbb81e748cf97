package middleware

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"strings"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/golang-jwt/jwt/v5"
	"github.com/google/uuid"

	"warden.dev/warden/internal/domain"
	apperrors "warden.dev/warden/internal/pkg/errors"
)

var (
	// ErrJWTSigningKeyMissing is returned when no key is configured to verify tokens.
	ErrJWTSigningKeyMissing = errors.New("jwt signing key is not configured")
	// ErrTokenRevoked is returned for tokens whose ID has been revoked.
	ErrTokenRevoked = errors.New("token has been revoked")
)

// JWTClaims defines custom JWT claims for warden sessions.
type JWTClaims struct {
	UserID      string   `json:"user_id"`
	Username    string   `json:"username"`
	Roles       []string `json:"roles"`
	Permissions []string `json:"permissions"`
	jwt.RegisteredClaims
}

// Viewer converts claims into the policy viewer. Roles and permissions both act as subjects.
func (c *JWTClaims) Viewer() domain.Viewer {
	subjects := make([]string, 0, len(c.Roles)+len(c.Permissions))
	subjects = append(subjects, c.Roles...)
	subjects = append(subjects, c.Permissions...)
	return domain.Viewer{UserID: c.UserID, Username: c.Username, Roles: subjects}
}

// RevocationChecker reports whether a token ID has been revoked.
type RevocationChecker interface {
	IsRevoked(ctx context.Context, tokenID string) (bool, error)
}

// JWTConfig holds JWT signing and verification configuration.
type JWTConfig struct {
	SigningKey []byte
	// VerificationKeys are accepted in addition to SigningKey, for key rotation.
	VerificationKeys  [][]byte
	Issuer            string
	ExpiresIn         time.Duration
	CookieName        string
	RevocationChecker RevocationChecker
}

// GenerateToken creates a signed JWT for the given user.
func GenerateToken(cfg JWTConfig, userID, username string, roles, permissions []string) (string, time.Time, error) {
	now := time.Now()
	expiresAt := now.Add(cfg.ExpiresIn)

	claims := JWTClaims{
		UserID:      userID,
		Username:    username,
		Roles:       roles,
		Permissions: permissions,
		RegisteredClaims: jwt.RegisteredClaims{
			ID:        uuid.Must(uuid.NewV7()).String(),
			Issuer:    cfg.Issuer,
			Subject:   userID,
			ExpiresAt: jwt.NewNumericDate(expiresAt),
			NotBefore: jwt.NewNumericDate(now),
			IssuedAt:  jwt.NewNumericDate(now),
		},
	}

	token := jwt.NewWithClaims(jwt.SigningMethodHS256, claims)
	tokenString, err := token.SignedString(cfg.SigningKey)
	if err != nil {
		return "", time.Time{}, fmt.Errorf("sign token: %w", err)
	}
	return tokenString, expiresAt, nil
}

// ValidateToken parses and verifies a token against the signing key and every
// verification key, then consults the revocation checker when one is set.
func (cfg JWTConfig) ValidateToken(ctx context.Context, tokenString string) (*JWTClaims, error) {
	opts := []jwt.ParserOption{jwt.WithValidMethods([]string{jwt.SigningMethodHS256.Alg()})}
	if cfg.Issuer != "" {
		opts = append(opts, jwt.WithIssuer(cfg.Issuer))
	}

	keys := cfg.verificationKeys()
	if len(keys) == 0 {
		keys = [][]byte{nil}
	}

	var claims *JWTClaims
	var err error
	for _, key := range keys {
		claims, err = parseWithKey(tokenString, key, opts)
		if err == nil || !errors.Is(err, jwt.ErrTokenSignatureInvalid) {
			break
		}
	}
	if err != nil {
		return nil, fmt.Errorf("parse token: %w", err)
	}

	if cfg.RevocationChecker != nil && claims.ID != "" {
		revoked, err := cfg.RevocationChecker.IsRevoked(ctx, claims.ID)
		if err != nil {
			return nil, fmt.Errorf("check token revocation: %w", err)
		}
		if revoked {
			return nil, ErrTokenRevoked
		}
	}
	return claims, nil
}

func (cfg JWTConfig) verificationKeys() [][]byte {
	var keys [][]byte
	if len(cfg.SigningKey) > 0 {
		keys = append(keys, cfg.SigningKey)
	}
	for _, k := range cfg.VerificationKeys {
		if len(k) > 0 {
			keys = append(keys, k)
		}
	}
	return keys
}

func parseWithKey(tokenString string, key []byte, opts []jwt.ParserOption) (*JWTClaims, error) {
	claims := &JWTClaims{}
	token, err := jwt.ParseWithClaims(tokenString, claims, func(token *jwt.Token) (interface{}, error) {
		if _, ok := token.Method.(*jwt.SigningMethodHMAC); !ok {
			return nil, fmt.Errorf("unexpected signing method: %v", token.Header["alg"])
		}
		if len(key) == 0 {
			return nil, ErrJWTSigningKeyMissing
		}
		return key, nil
	}, opts...)
	if err != nil {
		return nil, err
	}
	if !token.Valid {
		return nil, jwt.ErrTokenInvalidClaims
	}
	return claims, nil
}

// JWTAuth returns a Gin middleware that validates the session token from the
// Bearer header or the session cookie and stores the viewer in context.
func JWTAuth(cfg JWTConfig) gin.HandlerFunc {
	return func(c *gin.Context) {
		tokenString, err := extractToken(c, cfg.CookieName)
		if err != nil {
			abortUnauthorized(c, apperrors.CodeAuthFailed, err.Error())
			return
		}

		claims, err := cfg.ValidateToken(c.Request.Context(), tokenString)
		if err != nil {
			if errors.Is(err, jwt.ErrTokenExpired) {
				abortUnauthorized(c, apperrors.CodeTokenExpired, "token expired")
				return
			}
			abortUnauthorized(c, apperrors.CodeTokenInvalid, "invalid token")
			return
		}

		viewer := claims.Viewer()
		c.Set("user_id", claims.UserID)
		c.Set("username", claims.Username)
		c.Set("roles", claims.Roles)
		c.Set("permissions", claims.Permissions)
		c.Request = c.Request.WithContext(SetViewer(c.Request.Context(), viewer))

		c.Next()
	}
}

func extractToken(c *gin.Context, cookieName string) (string, error) {
	if authHeader := c.GetHeader("Authorization"); authHeader != "" {
		parts := strings.SplitN(authHeader, " ", 2)
		if len(parts) != 2 || !strings.EqualFold(parts[0], "Bearer") || strings.TrimSpace(parts[1]) == "" {
			return "", errors.New("invalid authorization header format")
		}
		return strings.TrimSpace(parts[1]), nil
	}
	if cookieName != "" {
		if v, err := c.Cookie(cookieName); err == nil && v != "" {
			return v, nil
		}
	}
	return "", errors.New("missing authorization header")
}

func abortUnauthorized(c *gin.Context, code, message string) {
	c.AbortWithStatusJSON(http.StatusUnauthorized, gin.H{
		"code":    code,
		"message": message,
	})
}
