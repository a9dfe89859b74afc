// Package auth checks admin credentials sent with HTTP Basic authentication.
package auth

import (
	"crypto/subtle"
	"encoding/base64"
	"errors"
	"strings"

	"github.com/Domenick1991/tourdesk/internal/apperr"
)

// UnauthorizedMessage is the only message clients ever see, whatever check
// failed.
const UnauthorizedMessage = "Unauthorized"

var (
	errMissingHeader = errors.New("missing authorization header")
	errWrongScheme   = errors.New("authorization scheme is not Basic")
	errBadEncoding   = errors.New("credentials are not valid base64")
	errNoSeparator   = errors.New("credentials have no colon separator")
	errMismatch      = errors.New("username or password mismatch")
)

type BasicAuthenticator struct {
	user     []byte
	password []byte
}

func NewBasicAuthenticator(user, password string) *BasicAuthenticator {
	return &BasicAuthenticator{user: []byte(user), password: []byte(password)}
}

// Authenticate validates an Authorization header value. Every failure is an
// *apperr.Error of kind Unauthorized with the same message; the specific
// reason is kept in Err for server-side logging.
func (a *BasicAuthenticator) Authenticate(header string) error {
	user, password, err := parseBasic(header)
	if err != nil {
		return apperr.Wrap(apperr.KindUnauthorized, UnauthorizedMessage, err)
	}

	userOK := subtle.ConstantTimeCompare([]byte(user), a.user) == 1
	passOK := subtle.ConstantTimeCompare([]byte(password), a.password) == 1
	if !userOK || !passOK {
		return apperr.Wrap(apperr.KindUnauthorized, UnauthorizedMessage, errMismatch)
	}
	return nil
}

func parseBasic(header string) (string, string, error) {
	if header == "" {
		return "", "", errMissingHeader
	}

	const prefix = "Basic "
	if len(header) < len(prefix) || !strings.EqualFold(header[:len(prefix)], prefix) {
		return "", "", errWrongScheme
	}

	decoded, err := base64.StdEncoding.DecodeString(strings.TrimSpace(header[len(prefix):]))
	if err != nil {
		return "", "", errBadEncoding
	}

	user, password, ok := strings.Cut(string(decoded), ":")
	if !ok {
		return "", "", errNoSeparator
	}
	return user, password, nil
}
