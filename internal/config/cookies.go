package config

import (
	"fmt"
	"net/http"
	"os"
	"strings"
	"time"
)

const (
	authCookie = "auth"
	signCookie = "sign"
)

// Cookies splits a player token over two cookies: the readable header and
// payload in "auth", the signature in the http-only "sign".
type Cookies struct {
	Domain   string
	Secure   bool
	SameSite http.SameSite
	jwt      *JWT
}

func parseSameSite(s string) http.SameSite {
	switch strings.ToUpper(s) {
	case "DEFAULT":
		return http.SameSiteDefaultMode
	case "LAX":
		return http.SameSiteLaxMode
	case "NONE":
		return http.SameSiteNoneMode
	default:
		return http.SameSiteStrictMode
	}
}

func NewCookies(jwt *JWT) (*Cookies, error) {
	domain, ok := os.LookupEnv("COOKIES_DOMAIN")
	if !ok {
		return nil, fmt.Errorf("COOKIES_DOMAIN env variable is not set")
	}

	secure, err := lookupBool("COOKIES_SECURE", true)
	if err != nil {
		return nil, err
	}

	return &Cookies{
		Domain:   domain,
		Secure:   secure,
		SameSite: parseSameSite(os.Getenv("COOKIES_SAMESITE")),
		jwt:      jwt,
	}, nil
}

func (c *Cookies) set(w http.ResponseWriter, name, value string, httpOnly bool, expires time.Time, maxAge int) {
	http.SetCookie(w, &http.Cookie{
		Name:     name,
		Path:     "/",
		Value:    value,
		Expires:  expires,
		MaxAge:   maxAge,
		HttpOnly: httpOnly,
		Domain:   c.Domain,
		Secure:   c.Secure,
		SameSite: c.SameSite,
	})
}

func (c *Cookies) Clear(w http.ResponseWriter) {
	c.set(w, authCookie, "delete", false, time.Time{}, -1)
	c.set(w, signCookie, "delete", true, time.Time{}, -1)
}

// Refresh signs claims anew and writes both cookies.
func (c *Cookies) Refresh(w http.ResponseWriter, claims *PlayerClaims) error {
	token, err := c.jwt.Sign(claims)
	if err != nil {
		return fmt.Errorf("unable to sign token: %w", err)
	}
	parts := strings.Split(token, ".")
	if len(parts) != 3 {
		return fmt.Errorf("malformed JWT token generated")
	}
	expires := time.Now().Add(c.jwt.Lifetime())
	c.set(w, authCookie, parts[0]+"."+parts[1], false, expires, 0)
	c.set(w, signCookie, parts[2], true, expires, 0)
	return nil
}

func (c *Cookies) ParsePlayerClaims(r *http.Request) (*PlayerClaims, error) {
	auth, err := r.Cookie(authCookie)
	if err != nil {
		return nil, err
	}
	sign, err := r.Cookie(signCookie)
	if err != nil {
		return nil, err
	}
	return c.jwt.ParsePlayerClaims(auth.Value + "." + sign.Value)
}
