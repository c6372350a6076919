// Package authprovider is the credential sign-in collaborator. Passwords are
// bcrypt hashes in the "credentials" collection keyed by email; sessions are
// HS256 tokens whose ids can be revoked on sign-out.
//
// Every failure is an *apperr.Error with an "auth/..." code so errmsg can
// present it.
package authprovider

import (
	"context"
	"errors"
	"fmt"
	"net/mail"
	"strings"
	"time"

	"github.com/dalemusser/wardwatch/internal/app/docstore"
	"github.com/dalemusser/wardwatch/internal/app/system/apperr"
	"github.com/dalemusser/wardwatch/internal/app/system/normalize"
	"github.com/dalemusser/wardwatch/internal/app/system/ratelimit"
	"github.com/golang-jwt/jwt/v5"
	"github.com/google/uuid"
	"go.mongodb.org/mongo-driver/bson"
	"go.uber.org/zap"
	"golang.org/x/crypto/bcrypt"
)

// Collection holds credentials.
const Collection = "credentials"

// MinPasswordLength is the shortest accepted password.
const MinPasswordLength = 6

const issuer = "wardwatch"

// Failure codes.
const (
	CodeInvalidCredential = "auth/invalid-credential"
	CodeInvalidEmail      = "auth/invalid-email"
	CodeTooManyRequests   = "auth/too-many-requests"
	CodeNetwork           = "auth/network-request-failed"
	CodeEmailInUse        = "auth/email-already-in-use"
	CodeWeakPassword      = "auth/weak-password"
	CodeMissingEmail      = "auth/missing-email"
	CodeMissingPassword   = "auth/missing-password"
	CodeTokenExpired      = "auth/user-token-expired"
)

// Identity is an authenticated principal.
type Identity struct {
	UID       string
	Email     string
	Token     string
	ExpiresAt time.Time
}

// Config configures a Provider.
type Config struct {
	Secret     []byte
	TokenTTL   time.Duration
	BcryptCost int
	// Limiter throttles sign-in attempts per email. Nil disables throttling.
	Limiter *ratelimit.Limiter
	// Revocations records signed-out token ids. Defaults to an in-memory list.
	Revocations Revocations
	// Now is the clock; defaults to time.Now.
	Now func() time.Time
}

// Provider implements sign-up, sign-in, sign-out and token verification.
type Provider struct {
	ds  docstore.Store
	cfg Config
	log *zap.Logger
}

type credential struct {
	Email     string    `bson:"_id"`
	UID       string    `bson:"uid"`
	Hash      string    `bson:"hash"`
	CreatedAt time.Time `bson:"createdAt"`
}

type claims struct {
	Email string `json:"email"`
	jwt.RegisteredClaims
}

// New validates cfg and builds a Provider.
func New(ds docstore.Store, cfg Config, logger *zap.Logger) (*Provider, error) {
	if len(cfg.Secret) == 0 {
		return nil, errors.New("authprovider: token secret is empty")
	}
	if cfg.TokenTTL <= 0 {
		cfg.TokenTTL = 24 * time.Hour
	}
	if cfg.BcryptCost == 0 {
		cfg.BcryptCost = bcrypt.DefaultCost
	}
	if cfg.Revocations == nil {
		cfg.Revocations = NewMemoryRevocations()
	}
	if cfg.Now == nil {
		cfg.Now = time.Now
	}
	if logger == nil {
		logger = zap.NewNop()
	}
	return &Provider{ds: ds, cfg: cfg, log: logger}, nil
}

// Revocations exposes the revocation list, e.g. for periodic sweeping.
func (p *Provider) Revocations() Revocations { return p.cfg.Revocations }

func fail(code string, err error) *apperr.Error {
	return apperr.Collaborator(code, err)
}

func checkEmail(raw string) (string, error) {
	email := normalize.Email(raw)
	if email == "" {
		return "", fail(CodeMissingEmail, nil)
	}
	addr, err := mail.ParseAddress(email)
	if err != nil || addr.Address != email || !strings.Contains(email[strings.LastIndex(email, "@")+1:], ".") {
		return "", fail(CodeInvalidEmail, err)
	}
	return email, nil
}

// SignUp creates a credential and returns a signed-in identity.
func (p *Provider) SignUp(ctx context.Context, email, password string) (Identity, error) {
	email, err := checkEmail(email)
	if err != nil {
		return Identity{}, err
	}
	if password == "" {
		return Identity{}, fail(CodeMissingPassword, nil)
	}
	if len(password) < MinPasswordLength {
		return Identity{}, fail(CodeWeakPassword, nil)
	}
	hash, err := bcrypt.GenerateFromPassword([]byte(password), p.cfg.BcryptCost)
	if err != nil {
		return Identity{}, fail(CodeWeakPassword, err)
	}
	cred := credential{
		Email:     email,
		UID:       uuid.NewString(),
		Hash:      string(hash),
		CreatedAt: p.cfg.Now().UTC(),
	}
	if _, err := p.ds.Create(ctx, Collection, cred); err != nil {
		if apperr.CodeOf(err) == "already-exists" {
			return Identity{}, fail(CodeEmailInUse, err)
		}
		return Identity{}, p.storeErr("sign up", err)
	}
	return p.issue(cred.UID, email)
}

// SignIn checks a password and returns an identity.
func (p *Provider) SignIn(ctx context.Context, email, password string) (Identity, error) {
	email, err := checkEmail(email)
	if err != nil {
		return Identity{}, err
	}
	if password == "" {
		return Identity{}, fail(CodeMissingPassword, nil)
	}
	if !p.cfg.Limiter.Allow(email) {
		return Identity{}, fail(CodeTooManyRequests, nil)
	}

	cred, err := p.lookup(ctx, email)
	if err != nil {
		return Identity{}, err
	}
	if bcrypt.CompareHashAndPassword([]byte(cred.Hash), []byte(password)) != nil {
		return Identity{}, fail(CodeInvalidCredential, nil)
	}
	p.cfg.Limiter.Reset(email)
	return p.issue(cred.UID, email)
}

// SignOut revokes the identity's token until it would have expired.
func (p *Provider) SignOut(ctx context.Context, id Identity) error {
	c, err := p.parse(id.Token, jwt.WithoutClaimsValidation())
	if err != nil {
		return err
	}
	if c.ExpiresAt == nil || !c.ExpiresAt.After(p.cfg.Now()) {
		return nil
	}
	if err := p.cfg.Revocations.Revoke(ctx, c.ID, c.ExpiresAt.Time); err != nil {
		return p.storeErr("sign out", err)
	}
	return nil
}

// Verify checks a token's signature, expiry and revocation.
func (p *Provider) Verify(ctx context.Context, token string) (Identity, error) {
	c, err := p.parse(token)
	if err != nil {
		return Identity{}, err
	}
	revoked, err := p.cfg.Revocations.Revoked(ctx, c.ID)
	if err != nil {
		return Identity{}, p.storeErr("verify", err)
	}
	if revoked {
		return Identity{}, fail(CodeTokenExpired, errors.New("token revoked"))
	}
	id := Identity{UID: c.Subject, Email: c.Email, Token: token}
	if c.ExpiresAt != nil {
		id.ExpiresAt = c.ExpiresAt.Time
	}
	return id, nil
}

// UIDFor returns the identity id registered for email.
func (p *Provider) UIDFor(ctx context.Context, email string) (string, error) {
	email, err := checkEmail(email)
	if err != nil {
		return "", err
	}
	cred, err := p.lookup(ctx, email)
	if err != nil {
		return "", err
	}
	return cred.UID, nil
}

// SetPassword creates the credential or replaces its password. It is used
// for provisioning admins and does not go through the sign-in limiter.
func (p *Provider) SetPassword(ctx context.Context, email, password string) (Identity, error) {
	email, err := checkEmail(email)
	if err != nil {
		return Identity{}, err
	}
	if len(password) < MinPasswordLength {
		return Identity{}, fail(CodeWeakPassword, nil)
	}
	hash, err := bcrypt.GenerateFromPassword([]byte(password), p.cfg.BcryptCost)
	if err != nil {
		return Identity{}, fail(CodeWeakPassword, err)
	}
	cred, err := p.lookup(ctx, email)
	switch {
	case err == nil:
		if err := p.ds.Update(ctx, Collection, email, bson.M{"hash": string(hash)}); err != nil {
			return Identity{}, p.storeErr("set password", err)
		}
		return p.issue(cred.UID, email)
	case apperr.CodeOf(err) == CodeInvalidCredential:
		return p.SignUp(ctx, email, password)
	}
	return Identity{}, err
}

func (p *Provider) lookup(ctx context.Context, email string) (credential, error) {
	rec, err := p.ds.Get(ctx, Collection, email)
	if errors.Is(err, apperr.ErrNotFound) {
		return credential{}, fail(CodeInvalidCredential, nil)
	}
	if err != nil {
		return credential{}, p.storeErr("lookup", err)
	}
	var cred credential
	if err := docstore.Decode(rec, &cred); err != nil {
		return credential{}, p.storeErr("lookup", err)
	}
	return cred, nil
}

func (p *Provider) issue(uid, email string) (Identity, error) {
	now := p.cfg.Now()
	exp := now.Add(p.cfg.TokenTTL)
	tok := jwt.NewWithClaims(jwt.SigningMethodHS256, claims{
		Email: email,
		RegisteredClaims: jwt.RegisteredClaims{
			Issuer:    issuer,
			Subject:   uid,
			ID:        uuid.NewString(),
			IssuedAt:  jwt.NewNumericDate(now),
			ExpiresAt: jwt.NewNumericDate(exp),
		},
	})
	signed, err := tok.SignedString(p.cfg.Secret)
	if err != nil {
		return Identity{}, fmt.Errorf("authprovider: sign token: %w", err)
	}
	return Identity{UID: uid, Email: email, Token: signed, ExpiresAt: exp.Truncate(time.Second)}, nil
}

func (p *Provider) parse(token string, extra ...jwt.ParserOption) (*claims, error) {
	if strings.TrimSpace(token) == "" {
		return nil, fail(CodeInvalidCredential, errors.New("empty token"))
	}
	opts := append([]jwt.ParserOption{
		jwt.WithValidMethods([]string{jwt.SigningMethodHS256.Alg()}),
		jwt.WithIssuer(issuer),
		jwt.WithTimeFunc(p.cfg.Now),
	}, extra...)
	var c claims
	_, err := jwt.ParseWithClaims(token, &c, func(*jwt.Token) (any, error) {
		return p.cfg.Secret, nil
	}, opts...)
	if errors.Is(err, jwt.ErrTokenExpired) {
		return nil, fail(CodeTokenExpired, err)
	}
	if err != nil {
		return nil, fail(CodeInvalidCredential, err)
	}
	return &c, nil
}

// storeErr logs a backing-store failure and reports it as a network error.
func (p *Provider) storeErr(op string, err error) error {
	p.log.Warn("auth provider store failure", zap.String("op", op), zap.Error(err))
	return fail(CodeNetwork, err)
}
