package auth

import (
	"log/slog"
	"strings"

	"github.com/golang-jwt/jwt/v5"
	"github.com/pkg/errors"
)

// SignatureHeader carries the HS256 token signed with the shared secret.
const SignatureHeader = "x-dt-signature"

// ErrInvalidSignature is the only failure Verify reports. Malformed tokens,
// unexpected algorithms and wrong secrets are deliberately indistinguishable.
var ErrInvalidSignature = errors.New("invalid signature")

// Verifier checks request signatures against the shared secret.
// It is safe for concurrent use.
type Verifier struct {
	key    []byte
	parser *jwt.Parser
	log    *slog.Logger
}

// NewVerifier returns a Verifier that accepts only HS256 tokens signed with secret.
// Claims are not validated; the token payload may be an empty object.
func NewVerifier(secret string, logger *slog.Logger) *Verifier {
	if logger == nil {
		logger = slog.Default()
	}
	return &Verifier{
		key: []byte(secret),
		parser: jwt.NewParser(
			jwt.WithValidMethods([]string{jwt.SigningMethodHS256.Alg()}),
			jwt.WithoutClaimsValidation(),
		),
		log: logger,
	}
}

// Verify returns nil when token is a valid HS256 token for the configured secret.
func (v *Verifier) Verify(token string) error {
	token = strings.TrimSpace(token)
	if token == "" {
		return v.fail()
	}

	_, err := v.parser.Parse(token, func(*jwt.Token) (any, error) {
		return v.key, nil
	})
	if err != nil {
		return v.fail()
	}
	return nil
}

// The token and the request body are never logged.
func (v *Verifier) fail() error {
	v.log.Error("invalid signature")
	return ErrInvalidSignature
}

// Sign produces an HS256 token over claims. A nil claims map signs an empty object.
func Sign(secret string, claims map[string]any) (string, error) {
	if secret == "" {
		return "", errors.New("auth: signing secret is required")
	}
	if claims == nil {
		claims = map[string]any{}
	}
	token, err := jwt.NewWithClaims(jwt.SigningMethodHS256, jwt.MapClaims(claims)).SignedString([]byte(secret))
	if err != nil {
		return "", errors.Wrap(err, "auth: sign token")
	}
	return token, nil
}
