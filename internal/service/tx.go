package service

import (
	"context"
	"fmt"
	"time"

	"github.com/Eursukkul/event-booking/internal/repository"
	"github.com/sirupsen/logrus"
	"gorm.io/gorm"
)

const (
	DefaultMaxRetries = 3
	retryBackoff      = 25 * time.Millisecond
)

type txRunner interface {
	WithTx(ctx context.Context, fn func(tx *gorm.DB) error) error
}

// runTx runs fn in a transaction, re-running it on serialization failures and deadlocks.
func runTx(ctx context.Context, db txRunner, maxRetries int, log logrus.FieldLogger, fn func(tx *gorm.DB) error) error {
	if maxRetries < 1 {
		maxRetries = 1
	}

	var err error
	for attempt := 1; attempt <= maxRetries; attempt++ {
		err = db.WithTx(ctx, fn)
		if err == nil || !repository.IsRetryable(err) {
			return err
		}

		log.WithError(err).WithField("attempt", attempt).Warn("transaction conflict")
		if attempt == maxRetries {
			break
		}

		select {
		case <-ctx.Done():
			return ctx.Err()
		case <-time.After(time.Duration(attempt) * retryBackoff):
		}
	}
	return fmt.Errorf("%w: %v", ErrConflict, err)
}
