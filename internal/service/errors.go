package service

import (
	"context"
	"errors"
	"fmt"

	"github.com/specialistvlad/learngrid/internal/apperr"
	"github.com/specialistvlad/learngrid/internal/ctxlog"
	"github.com/specialistvlad/learngrid/internal/metrics"
)

// classify maps errors from the workflow package and other plain failures
// onto the taxonomy. Known kinds and context errors pass through.
func classify(err error) error {
	if err == nil || apperr.IsKnown(err) ||
		errors.Is(err, context.Canceled) || errors.Is(err, context.DeadlineExceeded) {
		return err
	}
	return fmt.Errorf("%w: %w", apperr.ErrValidation, err)
}

// fail logs storage failures at error level and returns err unchanged.
func fail(ctx context.Context, op string, err error) error {
	if errors.Is(err, apperr.ErrStorage) {
		ctxlog.FromContext(ctx).Error("Storage operation failed.", "op", op, "error", err)
	}
	return err
}

// rejectReason labels a failed edge insertion for metrics.
func rejectReason(err error) string {
	switch {
	case errors.Is(err, apperr.ErrCircularDependency):
		return metrics.ReasonCycle
	case errors.Is(err, apperr.ErrConflict):
		return metrics.ReasonConflict
	case errors.Is(err, apperr.ErrNotFound):
		return metrics.ReasonNotFound
	case errors.Is(err, apperr.ErrValidation):
		return metrics.ReasonValidation
	default:
		return metrics.ReasonStorage
	}
}
