// AngelaMos | 2026
// codec.go

package session

import (
	"crypto/ecdsa"
	"crypto/elliptic"
	"crypto/rand"
	"encoding/json"
	"fmt"
	"os"
	"strconv"
	"time"

	"github.com/google/uuid"
	"github.com/lestrrat-go/jwx/v3/jwa"
	"github.com/lestrrat-go/jwx/v3/jwk"
	"github.com/lestrrat-go/jwx/v3/jwt"

	"github.com/pierkoo/flasktaskr/internal/config"
	"github.com/pierkoo/flasktaskr/internal/core"
)

const (
	claimAuthenticated = "auth"
	claimRole          = "role"
	claimFlashes       = "flashes"
)

// Codec signs sessions into ES256 JWTs and verifies them back.
type Codec struct {
	privateKey jwk.Key
	publicKey  jwk.Key
	issuer     string
	audience   string
}

func NewCodec(cfg config.SessionConfig) (*Codec, error) {
	privateKeyPEM, err := os.ReadFile(cfg.PrivateKeyPath)
	if err != nil {
		return nil, fmt.Errorf("read private key: %w", err)
	}

	privateKey, err := jwk.ParseKey(privateKeyPEM, jwk.WithPEM(true))
	if err != nil {
		return nil, fmt.Errorf("parse private key: %w", err)
	}

	if setErr := privateKey.Set(jwk.AlgorithmKey, jwa.ES256()); setErr != nil {
		return nil, fmt.Errorf("set algorithm: %w", setErr)
	}

	publicKey, err := privateKey.PublicKey()
	if err != nil {
		return nil, fmt.Errorf("derive public key: %w", err)
	}

	return &Codec{
		privateKey: privateKey,
		publicKey:  publicKey,
		issuer:     cfg.Issuer,
		audience:   cfg.Audience,
	}, nil
}

// GenerateKeyPair writes a fresh P-256 key pair in PEM form.
func GenerateKeyPair(privateKeyPath, publicKeyPath string) error {
	privateKey, err := ecdsa.GenerateKey(elliptic.P256(), rand.Reader)
	if err != nil {
		return fmt.Errorf("generate key: %w", err)
	}

	jwkPrivate, err := jwk.Import(privateKey)
	if err != nil {
		return fmt.Errorf("import private key: %w", err)
	}

	keyID := uuid.New().String()[:8]
	if setErr := jwkPrivate.Set(jwk.KeyIDKey, keyID); setErr != nil {
		return fmt.Errorf("set key id: %w", setErr)
	}

	privatePEM, err := jwk.Pem(jwkPrivate)
	if err != nil {
		return fmt.Errorf("encode private key: %w", err)
	}

	if writeErr := os.WriteFile(privateKeyPath, privatePEM, 0o600); writeErr != nil {
		return fmt.Errorf("write private key: %w", writeErr)
	}

	jwkPublic, err := jwkPrivate.PublicKey()
	if err != nil {
		return fmt.Errorf("derive public key: %w", err)
	}

	publicPEM, err := jwk.Pem(jwkPublic)
	if err != nil {
		return fmt.Errorf("encode public key: %w", err)
	}

	//nolint:gosec // G306: public key is intentionally world-readable
	if writeErr := os.WriteFile(publicKeyPath, publicPEM, 0o644); writeErr != nil {
		return fmt.Errorf("write public key: %w", writeErr)
	}

	return nil
}

func (c *Codec) Encode(s *Session, expiresAt time.Time) (string, error) {
	flashes, err := json.Marshal(s.Flashes)
	if err != nil {
		return "", fmt.Errorf("encode flashes: %w", err)
	}

	now := time.Now()
	builder := jwt.NewBuilder().
		JwtID(s.ID).
		Issuer(c.issuer).
		Audience([]string{c.audience}).
		IssuedAt(now).
		Expiration(expiresAt).
		Claim(claimAuthenticated, s.Authenticated).
		Claim(claimFlashes, string(flashes))

	if s.Authenticated {
		builder = builder.
			Subject(strconv.FormatInt(s.UserID, 10)).
			Claim(claimRole, s.Role)
	}

	token, err := builder.Build()
	if err != nil {
		return "", fmt.Errorf("build session token: %w", err)
	}

	signed, err := jwt.Sign(token, jwt.WithKey(jwa.ES256(), c.privateKey))
	if err != nil {
		return "", fmt.Errorf("sign session token: %w", err)
	}

	return string(signed), nil
}

func (c *Codec) Decode(value string) (*Session, error) {
	token, err := jwt.Parse(
		[]byte(value),
		jwt.WithKey(jwa.ES256(), c.publicKey),
		jwt.WithValidate(true),
		jwt.WithIssuer(c.issuer),
		jwt.WithAudience(c.audience),
	)
	if err != nil {
		return nil, fmt.Errorf("decode session: %w", core.ErrSessionInvalid)
	}

	id, ok := token.JwtID()
	if !ok || id == "" {
		return nil, fmt.Errorf("decode session: missing id: %w", core.ErrSessionInvalid)
	}

	s := &Session{ID: id}

	var flashes string
	if err := token.Get(claimFlashes, &flashes); err == nil && flashes != "" {
		if err := json.Unmarshal([]byte(flashes), &s.Flashes); err != nil {
			return nil, fmt.Errorf("decode flashes: %w", core.ErrSessionInvalid)
		}
	}

	var authenticated bool
	if err := token.Get(claimAuthenticated, &authenticated); err != nil ||
		!authenticated {
		return s, nil
	}

	subject, ok := token.Subject()
	if !ok || subject == "" {
		return nil, fmt.Errorf("decode session: missing subject: %w", core.ErrSessionInvalid)
	}

	userID, err := strconv.ParseInt(subject, 10, 64)
	if err != nil {
		return nil, fmt.Errorf("decode session: bad subject: %w", core.ErrSessionInvalid)
	}

	var role string
	if err := token.Get(claimRole, &role); err != nil {
		return nil, fmt.Errorf("decode session: missing role: %w", core.ErrSessionInvalid)
	}

	s.Authenticated = true
	s.UserID = userID
	s.Role = role

	return s, nil
}
