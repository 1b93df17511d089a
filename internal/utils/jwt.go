package utils // package utils provides helper functions for token creation and hashing

import (
    "crypto/rand"
    "crypto/sha256"
    "encoding/hex"
    "errors"
    "strconv"
    "time"

    "github.com/golang-jwt/jwt/v5"
)

// AccessToken is a signed HS256 JWT and its expiry.
type AccessToken struct {
    Token string
    Exp   time.Time
}

// RefreshToken is the raw value handed to the client.  Only its SHA-256
// hash is persisted.
type RefreshToken struct {
    Raw string
    Exp time.Time
}

// Claims is the access token payload.  Subject carries the user id as a
// decimal string.
type Claims struct {
    Email string `json:"email"`
    Role  string `json:"role"`
    jwt.RegisteredClaims
}

// UserID parses the subject back into a numeric id.
func (c *Claims) UserID() (uint64, error) {
    return strconv.ParseUint(c.Subject, 10, 64)
}

var ErrInvalidToken = errors.New("invalid token")

// NewAccessToken builds and signs an HS256 JWT for a user.
func NewAccessToken(secret string, userID uint64, email, role string, ttlMin int) (AccessToken, error) {
    now := time.Now().UTC()
    exp := now.Add(time.Duration(ttlMin) * time.Minute)
    claims := Claims{
        Email: email,
        Role:  role,
        RegisteredClaims: jwt.RegisteredClaims{
            Subject:   strconv.FormatUint(userID, 10),
            IssuedAt:  jwt.NewNumericDate(now),
            ExpiresAt: jwt.NewNumericDate(exp),
        },
    }
    signed, err := jwt.NewWithClaims(jwt.SigningMethodHS256, claims).SignedString([]byte(secret))
    if err != nil {
        return AccessToken{}, err
    }
    return AccessToken{Token: signed, Exp: exp}, nil
}

// ParseAccessToken verifies signature, algorithm and expiry.
func ParseAccessToken(secret, raw string) (*Claims, error) {
    claims := &Claims{}
    tok, err := jwt.ParseWithClaims(raw, claims, func(t *jwt.Token) (interface{}, error) {
        return []byte(secret), nil
    }, jwt.WithValidMethods([]string{jwt.SigningMethodHS256.Alg()}), jwt.WithExpirationRequired())
    if err != nil || !tok.Valid {
        return nil, ErrInvalidToken
    }
    if _, err := claims.UserID(); err != nil {
        return nil, ErrInvalidToken
    }
    return claims, nil
}

// NewRefreshToken returns a random 96 hex char token valid for ttlDays.
func NewRefreshToken(ttlDays int) (RefreshToken, error) {
    raw, err := randomHex(48)
    if err != nil {
        return RefreshToken{}, err
    }
    return RefreshToken{
        Raw: raw,
        Exp: time.Now().UTC().Add(time.Duration(ttlDays) * 24 * time.Hour),
    }, nil
}

// HashRefreshRaw returns the hex SHA-256 of a raw refresh token.
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
