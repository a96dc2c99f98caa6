package service

import (
	"context"
	"errors"
	"fmt"
	"time"

	"gorm.io/gorm"

	"github.com/Skotchmaster/menushare/internal/logging"
	"github.com/Skotchmaster/menushare/internal/mykafka"
	"github.com/Skotchmaster/menushare/internal/repo"
)

var (
	ErrValidation   = errors.New("validation")   // 400
	ErrUnauthorized = errors.New("unauthorized") // 401
	ErrForbidden    = errors.New("forbidden")    // 403
	ErrNotFound     = errors.New("not found")    // 404
	ErrConflict     = errors.New("conflict")     // 409
)

const publishTimeout = 2 * time.Second

// storeErr maps repository failures onto service errors. Constraint details
// stay in the log.
func storeErr(ctx context.Context, err error, what string) error {
	switch {
	case err == nil:
		return nil
	case errors.Is(err, gorm.ErrRecordNotFound):
		return fmt.Errorf("%w: %s", ErrNotFound, what)
	case errors.Is(err, repo.ErrDuplicate), errors.Is(err, repo.ErrForeignKey):
		logging.FromContext(ctx).Warn("constraint_violation", "what", what, "error", err)
		return fmt.Errorf("%w: %s", ErrConflict, what)
	}
	return err
}

func publish(ctx context.Context, p mykafka.Publisher, topic, key string, event map[string]any) {
	if p == nil {
		return
	}
	ctx, cancel := context.WithTimeout(ctx, publishTimeout)
	defer cancel()
	if err := p.PublishEvent(ctx, topic, key, event); err != nil {
		logging.FromContext(ctx).Warn("publish_error", "topic", topic, "type", event["type"], "error", err)
	}
}
