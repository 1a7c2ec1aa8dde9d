package config

import (
	"crypto/rsa"
	"errors"
	"fmt"
	"time"

	"github.com/golang-jwt/jwt/v5"
)

const defaultTokenLifetime = time.Hour * 24 * 30

var ErrKeyMismatch = errors.New("JWT public key does not match the private key")

type JWT struct {
	publicKey     *rsa.PublicKey
	privateKey    *rsa.PrivateKey
	signingMethod jwt.SigningMethod
	tokenLifetime time.Duration
}

// PlayerClaims identify a registered player. Anonymous games carry none.
type PlayerClaims struct {
	PlayerID int64  `json:"player_id"`
	Username string `json:"username"`
	jwt.RegisteredClaims
}

func NewPlayerClaims(playerID int64, username string) *PlayerClaims {
	return &PlayerClaims{
		PlayerID: playerID,
		Username: username,
	}
}

func NewJWT() (*JWT, error) {
	privatePEM, err := readSecret("JWT_PRIVATE_KEY")
	if err != nil {
		return nil, err
	}
	privateKey, err := jwt.ParseRSAPrivateKeyFromPEM([]byte(privatePEM))
	if err != nil {
		return nil, fmt.Errorf("unable to parse JWT private key: %w", err)
	}

	publicPEM, err := readSecret("JWT_PUBLIC_KEY")
	if err != nil {
		return nil, err
	}
	publicKey, err := jwt.ParseRSAPublicKeyFromPEM([]byte(publicPEM))
	if err != nil {
		return nil, fmt.Errorf("unable to parse JWT public key: %w", err)
	}

	if !privateKey.PublicKey.Equal(publicKey) {
		return nil, ErrKeyMismatch
	}

	lifetimeHours, err := lookupInt("JWT_LIFETIME_HOURS", 0)
	if err != nil {
		return nil, err
	}

	return NewJWTWithKeys(privateKey, publicKey, time.Duration(lifetimeHours)*time.Hour), nil
}

// NewJWTWithKeys builds a signer from already parsed keys. A zero lifetime
// selects the 30 day default.
func NewJWTWithKeys(privateKey *rsa.PrivateKey, publicKey *rsa.PublicKey, lifetime time.Duration) *JWT {
	if lifetime <= 0 {
		lifetime = defaultTokenLifetime
	}
	return &JWT{
		privateKey:    privateKey,
		publicKey:     publicKey,
		signingMethod: jwt.SigningMethodRS256,
		tokenLifetime: lifetime,
	}
}

func (j *JWT) Lifetime() time.Duration {
	return j.tokenLifetime
}

func (j *JWT) Sign(claims *PlayerClaims) (string, error) {
	now := time.Now()
	claims.IssuedAt = jwt.NewNumericDate(now)
	claims.ExpiresAt = jwt.NewNumericDate(now.Add(j.tokenLifetime))
	return jwt.NewWithClaims(j.signingMethod, claims).SignedString(j.privateKey)
}

func (j *JWT) ParsePlayerClaims(tokenString string) (*PlayerClaims, error) {
	token, err := jwt.ParseWithClaims(
		tokenString,
		&PlayerClaims{},
		func(t *jwt.Token) (any, error) {
			return j.publicKey, nil
		},
		jwt.WithValidMethods([]string{j.signingMethod.Alg()}),
	)
	if err != nil {
		return nil, err
	}
	claims, ok := token.Claims.(*PlayerClaims)
	if !ok {
		return nil, fmt.Errorf("malformed claims")
	}
	return claims, nil
}
