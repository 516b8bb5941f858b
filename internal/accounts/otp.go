package accounts

import (
	"context"
	"fmt"
	"time"

	"github.com/pricekart/compare-service/internal/contentstore"
	"github.com/pricekart/compare-service/internal/pkg/cuid2"
)

// SendOTP generates a fresh code for the mobile number and stores its hash.
// Any earlier code for the same number is replaced. There is no SMS gateway
// wired up; dispatch is logged and the code is only ever stored hashed.
func (s *Service) SendOTP(ctx context.Context, mobile string) error {
	code, err := s.newCode()
	if err != nil {
		return fmt.Errorf("generating otp: %w", err)
	}

	if _, err := s.store.Delete(ctx, contentstore.TableOTPCodes, map[string]any{"mobile": mobile}); err != nil {
		return fmt.Errorf("replacing otp: %w", err)
	}

	expires := s.now().Add(s.otpTTL)
	_, err = s.store.Insert(ctx, contentstore.TableOTPCodes, map[string]any{
		"id":         cuid2.GeneratePrefixedId("otp", cuid2.PrefixedIdOptions{TimeSortable: true}),
		"mobile":     mobile,
		"code_hash":  hashSecret(code),
		"expires_at": expires,
	})
	if err != nil {
		return fmt.Errorf("storing otp: %w", err)
	}

	s.log.Info().Str("mobile", maskMobile(mobile)).Time("expires_at", expires).Msg("OTP dispatched")
	return nil
}

// ConfirmOTP checks a code and consumes it on success. Wrong, unknown and
// expired codes all come back as ErrOTPInvalid.
func (s *Service) ConfirmOTP(ctx context.Context, mobile, code string) error {
	rows, err := s.store.Select(ctx, contentstore.TableOTPCodes, map[string]any{
		"mobile":    mobile,
		"code_hash": hashSecret(code),
	})
	if err != nil {
		return fmt.Errorf("looking up otp: %w", err)
	}
	if len(rows) == 0 {
		return ErrOTPInvalid
	}

	row := rows[0]
	expires, ok := rowTime(row["expires_at"])
	if !ok || s.now().After(expires) {
		return ErrOTPInvalid
	}

	if _, err := s.store.Delete(ctx, contentstore.TableOTPCodes, map[string]any{"id": row["id"]}); err != nil {
		return fmt.Errorf("consuming otp: %w", err)
	}
	s.log.Info().Str("mobile", maskMobile(mobile)).Msg("OTP confirmed")
	return nil
}

func rowTime(v any) (time.Time, bool) {
	t, ok := v.(time.Time)
	return t, ok
}

// maskMobile keeps only the trailing digits in logs.
func maskMobile(mobile string) string {
	if len(mobile) <= 4 {
		return "****"
	}
	return "******" + mobile[len(mobile)-4:]
}
