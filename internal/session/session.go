// Package session reads the identity of the signed in user from the session
// token issued by the backend.
package session

import (
	"errors"
	"fmt"
	"strings"

	"github.com/golang-jwt/jwt/v5"
)

var ErrNoToken = errors.New("no session token")

const idClaim = "id"

// Session is the token the client authenticates with. The signature is
// checked by the backend; the client only reads the claims.
type Session struct {
	Token string

	viewerID string
}

// New parses token and remembers the user id it carries.
func New(token string) (*Session, error) {
	token = strings.TrimSpace(strings.TrimPrefix(strings.TrimSpace(token), "Bearer "))
	if token == "" {
		return nil, ErrNoToken
	}

	viewerID, err := ViewerID(token)
	if err != nil {
		return nil, err
	}

	return &Session{Token: token, viewerID: viewerID}, nil
}

// ViewerID implements core.Viewer.
func (s *Session) ViewerID() string {
	if s == nil {
		return ""
	}
	return s.viewerID
}

// ViewerID extracts the "id" claim of token without verifying it.
func ViewerID(token string) (string, error) {
	claims := jwt.MapClaims{}
	if _, _, err := jwt.NewParser().ParseUnverified(token, claims); err != nil {
		return "", fmt.Errorf("malformed session token: %w", err)
	}

	id, ok := claims[idClaim].(string)
	if !ok || id == "" {
		return "", fmt.Errorf("malformed session token: missing %q claim", idClaim)
	}
	return id, nil
}
