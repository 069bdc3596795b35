package api

import (
	"context"
	"crypto/rand"
	"errors"
	"fmt"
	"net/http"
	"strings"
	"time"

	"github.com/golang-jwt/jwt/v5"
	"github.com/wricardo/scrabble-duel/game/engine"
)

// TokenTTL is how long a player token stays valid
const TokenTTL = 24 * time.Hour

var ErrInvalidToken = errors.New("invalid token")

type playerClaims struct {
	Name string `json:"name"`
	jwt.RegisteredClaims
}

// Auth signs and checks player tokens. Players are anonymous: a token only
// binds a generated player id to a display name.
type Auth struct {
	secret []byte
	now    func() time.Time
}

// NewAuth creates an Auth signing with secret. An empty secret is replaced
// by random bytes.
func NewAuth(secret string) (*Auth, error) {
	key := []byte(secret)
	if len(key) == 0 {
		key = make([]byte, 32)
		if _, err := rand.Read(key); err != nil {
			return nil, fmt.Errorf("generate token secret: %w", err)
		}
	}
	return &Auth{secret: key, now: time.Now}, nil
}

// Issue signs a token for a player
func (a *Auth) Issue(playerID, name string) (string, error) {
	now := a.now()
	token := jwt.NewWithClaims(jwt.SigningMethodHS256, playerClaims{
		Name: name,
		RegisteredClaims: jwt.RegisteredClaims{
			Subject:   playerID,
			IssuedAt:  jwt.NewNumericDate(now),
			ExpiresAt: jwt.NewNumericDate(now.Add(TokenTTL)),
		},
	})
	return token.SignedString(a.secret)
}

// Verify returns the player a token was issued to
func (a *Auth) Verify(token string) (string, string, error) {
	var claims playerClaims
	parsed, err := jwt.ParseWithClaims(token, &claims, func(t *jwt.Token) (any, error) {
		return a.secret, nil
	}, jwt.WithValidMethods([]string{jwt.SigningMethodHS256.Alg()}), jwt.WithTimeFunc(a.now))
	if err != nil || !parsed.Valid {
		return "", "", fmt.Errorf("%w: %v", ErrInvalidToken, err)
	}
	if claims.Subject == "" {
		return "", "", fmt.Errorf("%w: missing subject", ErrInvalidToken)
	}
	return claims.Subject, claims.Name, nil
}

type playerKey struct{}

// requirePlayer rejects requests without a valid bearer token and stores
// the player in the request context
func (a *Auth) requirePlayer(next http.HandlerFunc) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		header := r.Header.Get("Authorization")
		token, ok := strings.CutPrefix(header, "Bearer ")
		if !ok || token == "" {
			respondError(w, http.StatusUnauthorized, "missing bearer token")
			return
		}
		id, name, err := a.Verify(token)
		if err != nil {
			respondError(w, http.StatusUnauthorized, err.Error())
			return
		}
		ctx := context.WithValue(r.Context(), playerKey{}, engine.Identity{ID: id, Name: name})
		next(w, r.WithContext(ctx))
	}
}

// playerFrom returns the player stored by requirePlayer
func playerFrom(ctx context.Context) engine.Identity {
	id, _ := ctx.Value(playerKey{}).(engine.Identity)
	return id
}
