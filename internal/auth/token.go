package auth

import (
	"time"

	"github.com/golang-jwt/jwt/v4"
	"github.com/pkg/errors"
)

var ErrTokenExpired = errors.New("token expired")

// TokenInfo holds what can be read from a user token without verifying it.
// The service issues opaque tokens too, in which case Opaque is set and
// nothing else is known.
type TokenInfo struct {
	Opaque    bool
	Username  string
	ExpiresAt *time.Time
}

// InspectToken reads the claims of a JWT user token. Signatures are checked
// by the service only.
func InspectToken(token string) (*TokenInfo, error) {
	if token == "" {
		return nil, errors.New("empty token")
	}

	parsed, _, err := new(jwt.Parser).ParseUnverified(token, jwt.MapClaims{})
	if err != nil {
		return &TokenInfo{Opaque: true}, nil
	}
	claims, ok := parsed.Claims.(jwt.MapClaims)
	if !ok {
		return nil, errors.Errorf("malformed token claims")
	}

	info := &TokenInfo{}
	for _, key := range []string{"user", "username", "sub"} {
		if v, ok := claims[key].(string); ok && v != "" {
			info.Username = v
			break
		}
	}
	if exp, ok := claims["exp"].(float64); ok {
		expTime := time.Unix(int64(exp), 0)
		info.ExpiresAt = &expTime
	}
	return info, nil
}

// CheckToken fails with ErrTokenExpired when the token carries an exp claim
// in the past.
func CheckToken(token string, now time.Time) (*TokenInfo, error) {
	info, err := InspectToken(token)
	if err != nil {
		return nil, errors.Wrap(err, "failed to inspect user token")
	}
	if info.ExpiresAt != nil && !now.Before(*info.ExpiresAt) {
		return info, errors.Wrapf(ErrTokenExpired, "expired at %s", info.ExpiresAt.Format(time.RFC3339))
	}
	return info, nil
}
