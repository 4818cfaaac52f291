package services

import (
	"fmt"
	"time"

	"github.com/golang-jwt/jwt/v5"

	"github.com/meetlinkapp/meetlink/pkg/internal/config"
	"github.com/meetlinkapp/meetlink/pkg/internal/models"
)

const (
	videoTokenValidFor = time.Hour
	// Issued-at is backdated to tolerate clock drift between us and
	// the video service's verifier.
	videoTokenClockSkew = 60 * time.Second
)

type VideoGrant struct {
	RoomJoin bool   `json:"roomJoin"`
	Room     string `json:"room,omitempty"`
}

type VideoTokenClaims struct {
	Video VideoGrant `json:"video"`
	Name  string     `json:"name,omitempty"`
	jwt.RegisteredClaims
}

// EncodeVideoToken mints the short-lived credential an identity
// presents to the video service. The identity must be authenticated;
// there is no retry path, the caller re-authenticates instead.
func EncodeVideoToken(user models.Identity, room string) (string, error) {
	if !user.Authenticated() {
		return "", ErrUnauthenticated
	}

	key, err := config.VideoAPIKey()
	if err != nil {
		return "", err
	}
	secret, err := config.VideoAPISecret()
	if err != nil {
		return "", err
	}

	now := time.Now()
	claims := VideoTokenClaims{
		Video: VideoGrant{
			RoomJoin: true,
			Room:     room,
		},
		Name: user.Name,
		RegisteredClaims: jwt.RegisteredClaims{
			Issuer:    key,
			Subject:   user.ID,
			IssuedAt:  jwt.NewNumericDate(now.Add(-videoTokenClockSkew)),
			NotBefore: jwt.NewNumericDate(now.Add(-videoTokenClockSkew)),
			ExpiresAt: jwt.NewNumericDate(now.Add(videoTokenValidFor)),
		},
	}

	token := jwt.NewWithClaims(jwt.SigningMethodHS256, claims)
	tks, err := token.SignedString([]byte(secret))
	if err != nil {
		return "", fmt.Errorf("failed to sign token: %v", err)
	}
	return tks, nil
}

// ParseVideoToken verifies one of our own tokens. The video service
// does its own verification when the client joins; this side is for
// inspecting issued credentials.
func ParseVideoToken(tk string) (VideoTokenClaims, error) {
	var claims VideoTokenClaims
	secret, err := config.VideoAPISecret()
	if err != nil {
		return claims, err
	}

	token, err := jwt.ParseWithClaims(tk, &claims, func(token *jwt.Token) (interface{}, error) {
		if _, ok := token.Method.(*jwt.SigningMethodHMAC); !ok {
			return nil, fmt.Errorf("unexpected signing method: %v", token.Method)
		}
		return []byte(secret), nil
	})
	if err != nil {
		return claims, err
	}
	if !token.Valid {
		return claims, fmt.Errorf("invalid token")
	}
	return claims, nil
}
