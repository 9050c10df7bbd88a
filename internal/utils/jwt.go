package utils // utils provides token issuing, verification and hashing helpers

import (
	"crypto/rand"
	"crypto/sha256"
	"encoding/hex"
	"errors"
	"strconv"
	"time"

	"github.com/golang-jwt/jwt/v5"

	"github.com/iliyamo/studio-project-hub/internal/model"
)

// Verification failures collapse into exactly two cases so callers can
// tell a client to re-login (invalid) apart from one that may silently
// refresh (expired).
var (
	ErrTokenExpired = errors.New("token expired")
	ErrTokenInvalid = errors.New("token invalid")
)

// refreshTokenType discriminates refresh tokens inside their claims, on
// top of the separate signing secret.
const refreshTokenType = "refresh"

// TokenConfig carries everything needed to mint and verify both token
// classes. Access and refresh tokens are signed with distinct secrets
// and bound to an issuer/audience pair, so a leaked refresh secret
// cannot mint access tokens and tokens from another deployment are
// rejected outright.
type TokenConfig struct {
	AccessSecret  string
	RefreshSecret string
	Issuer        string
	Audience      string
	AccessTTL     time.Duration
	RefreshTTL    time.Duration
}

// AccessClaims is the payload of a short-lived access token.
type AccessClaims struct {
	UserID    uint64     `json:"user_id"`
	Email     string     `json:"email"`
	Role      model.Role `json:"role"`
	FirstName string     `json:"first_name"`
	LastName  string     `json:"last_name"`
	jwt.RegisteredClaims
}

// RefreshClaims is the payload of a long-lived refresh token. It stays
// minimal on purpose: the live user record is re-read on every refresh.
type RefreshClaims struct {
	UserID    uint64 `json:"user_id"`
	TokenType string `json:"token_type"`
	jwt.RegisteredClaims
}

// SignedToken pairs a serialized JWT with its expiry instant.
type SignedToken struct {
	Token string
	Exp   time.Time
}

// NewAccessToken signs an HS256 access token for the user.
func NewAccessToken(cfg TokenConfig, u model.User) (SignedToken, error) {
	now := time.Now().UTC()
	exp := now.Add(cfg.AccessTTL)
	claims := AccessClaims{
		UserID:           u.ID,
		Email:            u.Email,
		Role:             u.Role,
		FirstName:        u.FirstName,
		LastName:         u.LastName,
		RegisteredClaims: registered(cfg, u.ID, now, exp),
	}
	signed, err := jwt.NewWithClaims(jwt.SigningMethodHS256, claims).SignedString([]byte(cfg.AccessSecret))
	if err != nil {
		return SignedToken{}, err
	}
	return SignedToken{Token: signed, Exp: exp}, nil
}

// NewRefreshToken signs an HS256 refresh token for the user id. The raw
// string goes back to the client; the server keeps only its SHA-256
// hash (see HashRefreshRaw).
func NewRefreshToken(cfg TokenConfig, userID uint64) (SignedToken, error) {
	now := time.Now().UTC()
	exp := now.Add(cfg.RefreshTTL)
	// A random jti keeps two same-second logins from minting identical
	// tokens, which would collide in the session table.
	jti, err := randomHex(16)
	if err != nil {
		return SignedToken{}, err
	}
	reg := registered(cfg, userID, now, exp)
	reg.ID = jti
	claims := RefreshClaims{
		UserID:           userID,
		TokenType:        refreshTokenType,
		RegisteredClaims: reg,
	}
	signed, err := jwt.NewWithClaims(jwt.SigningMethodHS256, claims).SignedString([]byte(cfg.RefreshSecret))
	if err != nil {
		return SignedToken{}, err
	}
	return SignedToken{Token: signed, Exp: exp}, nil
}

func registered(cfg TokenConfig, userID uint64, now, exp time.Time) jwt.RegisteredClaims {
	return jwt.RegisteredClaims{
		Subject:   strconv.FormatUint(userID, 10),
		Issuer:    cfg.Issuer,
		Audience:  jwt.ClaimStrings{cfg.Audience},
		ExpiresAt: jwt.NewNumericDate(exp),
		IssuedAt:  jwt.NewNumericDate(now),
	}
}

// ParseAccessToken verifies raw against the access secret and the
// configured issuer/audience. It returns ErrTokenExpired past expiry
// and ErrTokenInvalid for every other failure.
func ParseAccessToken(cfg TokenConfig, raw string) (*AccessClaims, error) {
	claims := &AccessClaims{}
	if err := parseInto(raw, cfg.AccessSecret, cfg, claims); err != nil {
		return nil, err
	}
	return claims, nil
}

// ParseRefreshToken verifies raw against the refresh secret and checks
// the token_type discriminator, so an access token can never pass as a
// refresh token even if the secrets were ever shared.
func ParseRefreshToken(cfg TokenConfig, raw string) (*RefreshClaims, error) {
	claims := &RefreshClaims{}
	if err := parseInto(raw, cfg.RefreshSecret, cfg, claims); err != nil {
		return nil, err
	}
	if claims.TokenType != refreshTokenType {
		return nil, ErrTokenInvalid
	}
	return claims, nil
}

func parseInto(raw, secret string, cfg TokenConfig, claims jwt.Claims) error {
	tok, err := jwt.ParseWithClaims(raw, claims,
		func(t *jwt.Token) (interface{}, error) {
			if _, ok := t.Method.(*jwt.SigningMethodHMAC); !ok {
				return nil, ErrTokenInvalid
			}
			return []byte(secret), nil
		},
		jwt.WithValidMethods([]string{jwt.SigningMethodHS256.Alg()}),
		jwt.WithIssuer(cfg.Issuer),
		jwt.WithAudience(cfg.Audience),
	)
	if err != nil {
		if errors.Is(err, jwt.ErrTokenExpired) {
			return ErrTokenExpired
		}
		return ErrTokenInvalid
	}
	if !tok.Valid {
		return ErrTokenInvalid
	}
	return nil
}

// HashRefreshRaw returns the SHA-256 hash of a raw refresh token as a
// hex string. Session lookups always go through this hash, never the
// raw value.
func HashRefreshRaw(raw string) string {
	sum := sha256.Sum256([]byte(raw))
	return hex.EncodeToString(sum[:])
}

func randomHex(n int) (string, error) {
	buf := make([]byte, n)
	if _, err := rand.Read(buf); err != nil {
		return "", err
	}
	return hex.EncodeToString(buf), nil
}
