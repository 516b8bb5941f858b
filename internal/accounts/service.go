// Package accounts implements user signup, login and OTP confirmation over
// the content store's users and otp_codes tables.
package accounts

import (
	"context"
	"crypto/sha256"
	"encoding/hex"
	"errors"
	"fmt"
	"math/big"
	"strconv"
	"time"

	"github.com/rs/zerolog"

	"github.com/pricekart/compare-service/internal/contentstore"
	"github.com/pricekart/compare-service/internal/pkg/cuid2"
)

var (
	// ErrMobileTaken is returned by SignUp when the mobile number already
	// has an account.
	ErrMobileTaken = errors.New("mobile number already registered")

	// ErrInvalidCredentials is returned by Login when no account matches the
	// mobile/password pair.
	ErrInvalidCredentials = errors.New("invalid mobile number or password")

	// ErrOTPInvalid is returned by ConfirmOTP for wrong, expired or unknown
	// codes. Callers get no more detail than that on purpose.
	ErrOTPInvalid = errors.New("invalid or expired otp")
)

// DefaultOTPTTL is how long a dispatched OTP stays confirmable.
const DefaultOTPTTL = 10 * time.Minute

// User is an account row as the API exposes it. The password hash never
// leaves this package.
type User struct {
	ID        int64  `json:"id"`
	Name      string `json:"name"`
	Mobile    string `json:"mobile"`
	IsPremium bool   `json:"is_premium"`
}

// Config carries the account service knobs.
type Config struct {
	// OTPTTL bounds code validity. Zero means DefaultOTPTTL.
	OTPTTL time.Duration
}

// Service implements the account operations.
type Service struct {
	store  contentstore.Store
	otpTTL time.Duration
	log    zerolog.Logger

	// Overridable in tests.
	now     func() time.Time
	newCode func() (string, error)
}

// NewService wires an account service over the content store.
func NewService(store contentstore.Store, cfg Config, logger *zerolog.Logger) *Service {
	ttl := cfg.OTPTTL
	if ttl <= 0 {
		ttl = DefaultOTPTTL
	}
	return &Service{
		store:   store,
		otpTTL:  ttl,
		log:     logger.With().Str("component", "accounts").Logger(),
		now:     time.Now,
		newCode: randomCode,
	}
}

// SignUp creates an account. The password is stored as a SHA-256 hex digest.
func (s *Service) SignUp(ctx context.Context, name, mobile, password string) (*User, error) {
	existing, err := s.store.Select(ctx, contentstore.TableUsers, map[string]any{"mobile": mobile})
	if err != nil {
		return nil, fmt.Errorf("checking mobile: %w", err)
	}
	if len(existing) > 0 {
		return nil, ErrMobileTaken
	}

	row, err := s.store.Insert(ctx, contentstore.TableUsers, map[string]any{
		"name":          name,
		"mobile":        mobile,
		"password_hash": hashSecret(password),
		"is_premium":    false,
	})
	if err != nil {
		return nil, fmt.Errorf("creating user: %w", err)
	}

	user := rowToUser(row)
	s.log.Info().Int64("user_id", user.ID).Msg("User signed up")
	return user, nil
}

// Login returns the account matching the mobile/password pair.
func (s *Service) Login(ctx context.Context, mobile, password string) (*User, error) {
	rows, err := s.store.Select(ctx, contentstore.TableUsers, map[string]any{
		"mobile":        mobile,
		"password_hash": hashSecret(password),
	})
	if err != nil {
		return nil, fmt.Errorf("looking up user: %w", err)
	}
	if len(rows) == 0 {
		return nil, ErrInvalidCredentials
	}
	return rowToUser(rows[0]), nil
}

// hashSecret hex-encodes the SHA-256 digest of a secret, the storage form of
// both passwords and OTP codes.
func hashSecret(secret string) string {
	sum := sha256.Sum256([]byte(secret))
	return hex.EncodeToString(sum[:])
}

// randomCode draws a uniform 6-digit OTP code.
func randomCode() (string, error) {
	n, err := cuid2.RandomBigInt(big.NewInt(900000))
	if err != nil {
		return "", err
	}
	return strconv.FormatInt(n.Int64()+100000, 10), nil
}

// rowToUser maps a users row to the API shape, tolerating driver-dependent
// integer widths.
func rowToUser(row map[string]any) *User {
	u := &User{}
	switch id := row["id"].(type) {
	case int64:
		u.ID = id
	case int32:
		u.ID = int64(id)
	case int:
		u.ID = int64(id)
	}
	if name, ok := row["name"].(string); ok {
		u.Name = name
	}
	if mobile, ok := row["mobile"].(string); ok {
		u.Mobile = mobile
	}
	if premium, ok := row["is_premium"].(bool); ok {
		u.IsPremium = premium
	}
	return u
}
