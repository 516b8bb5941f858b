// Package jobs runs the service's background maintenance: sweeping expired
// OTP rows out of the content store on a ticker.
package jobs

import (
	"context"
	"time"

	"github.com/rs/zerolog"

	"github.com/pricekart/compare-service/internal/contentstore"
)

// OTPCleanupConfig holds configuration for the OTP sweep job.
type OTPCleanupConfig struct {
	Interval time.Duration // how often to sweep
	Enabled  bool
}

// DefaultOTPCleanupConfig returns the default sweep configuration.
func DefaultOTPCleanupConfig() OTPCleanupConfig {
	return OTPCleanupConfig{
		Interval: 10 * time.Minute,
		Enabled:  true,
	}
}

// CleanupManager manages background cleanup jobs.
type CleanupManager struct {
	config OTPCleanupConfig
	store  contentstore.Store
	logger zerolog.Logger
	ctx    context.Context
	cancel context.CancelFunc

	otpCleanupDone chan struct{}

	// now is overridable in tests.
	now func() time.Time
}

// NewCleanupManager creates a new cleanup manager.
func NewCleanupManager(store contentstore.Store, config OTPCleanupConfig, logger *zerolog.Logger) *CleanupManager {
	ctx, cancel := context.WithCancel(context.Background())

	return &CleanupManager{
		config:         config,
		store:          store,
		logger:         logger.With().Str("component", "jobs").Logger(),
		ctx:            ctx,
		cancel:         cancel,
		otpCleanupDone: make(chan struct{}),
		now:            time.Now,
	}
}

// Start begins the background cleanup jobs.
func (cm *CleanupManager) Start() {
	if !cm.config.Enabled {
		cm.logger.Info().Msg("Cleanup jobs are disabled, not starting")
		close(cm.otpCleanupDone)
		return
	}

	cm.logger.Info().
		Dur("otp_interval", cm.config.Interval).
		Msg("Starting cleanup manager")

	go cm.runOTPCleanup()
}

// Stop gracefully stops the cleanup jobs.
func (cm *CleanupManager) Stop() {
	cm.logger.Info().Msg("Stopping cleanup manager...")
	cm.cancel()

	select {
	case <-cm.otpCleanupDone:
		cm.logger.Debug().Msg("OTP cleanup job stopped")
	case <-time.After(5 * time.Second):
		cm.logger.Warn().Msg("OTP cleanup job did not stop gracefully")
	}

	cm.logger.Info().Msg("Cleanup manager stopped")
}

// runOTPCleanup sweeps expired OTP rows periodically.
func (cm *CleanupManager) runOTPCleanup() {
	defer close(cm.otpCleanupDone)

	ticker := time.NewTicker(cm.config.Interval)
	defer ticker.Stop()

	// Run once immediately on startup.
	cm.cleanupExpiredOTPs()

	for {
		select {
		case <-cm.ctx.Done():
			return
		case <-ticker.C:
			cm.cleanupExpiredOTPs()
		}
	}
}

// cleanupExpiredOTPs deletes every otp_codes row whose expiry has passed.
func (cm *CleanupManager) cleanupExpiredOTPs() {
	start := time.Now()
	cm.logger.Debug().Msg("Running OTP cleanup job")

	deleted, err := cm.sweepExpiredOTPs(cm.ctx)
	if err != nil {
		cm.logger.Error().Err(err).Msg("Failed to cleanup expired OTP codes")
		return
	}

	duration := time.Since(start)
	if deleted > 0 {
		cm.logger.Info().
			Int("deleted", deleted).
			Dur("duration", duration).
			Msg("Cleaned up expired OTP codes")
	} else {
		cm.logger.Debug().
			Dur("duration", duration).
			Msg("No expired OTP codes to clean up")
	}
}

// sweepExpiredOTPs walks the otp_codes table and removes rows past their
// expiry. The store contract only filters on equality, so expiry is judged
// here; the table never outgrows a handful of in-flight codes.
func (cm *CleanupManager) sweepExpiredOTPs(ctx context.Context) (int, error) {
	rows, err := cm.store.Select(ctx, contentstore.TableOTPCodes, nil)
	if err != nil {
		return 0, err
	}

	now := cm.now()
	deleted := 0
	for _, row := range rows {
		expires, ok := row["expires_at"].(time.Time)
		if ok && expires.After(now) {
			continue
		}
		// Rows with a malformed expiry are swept too.
		n, err := cm.store.Delete(ctx, contentstore.TableOTPCodes, map[string]any{"id": row["id"]})
		if err != nil {
			return deleted, err
		}
		deleted += int(n)
	}
	return deleted, nil
}
