package main

import (
	"errors"
	"fmt"
	"net/http"
	"slices"
	"strings"

	"github.com/golang-jwt/jwt/v5"
	"github.com/nickyhof/SnapDB/core"
)

// AuthConfig configures bearer token authentication. A nil config leaves
// the API open and every commit uses the server identity.
type AuthConfig struct {
	// JWTSecret is the shared secret for HS256 JWT validation.
	JWTSecret string

	// Issuer is the expected "iss" claim in JWTs (optional).
	Issuer string

	// Audience is the expected "aud" claim in JWTs (optional).
	Audience string

	// NameClaim is the JWT claim for user's name (default: "name").
	NameClaim string

	// EmailClaim is the JWT claim for user's email (default: "email").
	EmailClaim string
}

// validateJWT validates a JWT token and extracts identity claims.
func (config *AuthConfig) validateJWT(tokenString string) (core.Identity, error) {
	nameClaim := config.NameClaim
	if nameClaim == "" {
		nameClaim = "name"
	}
	emailClaim := config.EmailClaim
	if emailClaim == "" {
		emailClaim = "email"
	}

	options := []jwt.ParserOption{jwt.WithValidMethods([]string{"HS256", "HS384", "HS512"})}
	if config.Issuer != "" {
		options = append(options, jwt.WithIssuer(config.Issuer))
	}

	token, err := jwt.Parse(tokenString, func(token *jwt.Token) (any, error) {
		if config.JWTSecret == "" {
			return nil, errors.New("no JWT secret configured")
		}
		return []byte(config.JWTSecret), nil
	}, options...)
	if err != nil {
		return core.Identity{}, fmt.Errorf("invalid token: %w", err)
	}

	claims, ok := token.Claims.(jwt.MapClaims)
	if !ok || !token.Valid {
		return core.Identity{}, errors.New("invalid token claims")
	}

	if config.Audience != "" {
		audiences, _ := claims.GetAudience()
		if !slices.Contains(audiences, config.Audience) {
			return core.Identity{}, fmt.Errorf("invalid audience: expected %s", config.Audience)
		}
	}

	name, _ := claims[nameClaim].(string)
	email, _ := claims[emailClaim].(string)
	if name == "" && email == "" {
		return core.Identity{}, fmt.Errorf("token missing identity claims (%s or %s)", nameClaim, emailClaim)
	}

	return core.Identity{Name: name, Email: email}, nil
}

// bearerToken extracts the token of an "Authorization: Bearer <token>"
// header.
func bearerToken(r *http.Request) (string, error) {
	header := r.Header.Get("Authorization")
	if header == "" {
		return "", errors.New("missing Authorization header")
	}

	scheme, token, found := strings.Cut(header, " ")
	if !found || !strings.EqualFold(scheme, "Bearer") || strings.TrimSpace(token) == "" {
		return "", errors.New("invalid Authorization header: expected Bearer <token>")
	}
	return strings.TrimSpace(token), nil
}

// authenticate resolves the identity that commits made by r are attributed
// to.
func (s *Server) authenticate(r *http.Request) (core.Identity, error) {
	if s.authConfig == nil {
		return s.identity, nil
	}

	token, err := bearerToken(r)
	if err != nil {
		return core.Identity{}, err
	}
	return s.authConfig.validateJWT(token)
}
