package services

import (
	"context"
	"errors"

	"litshop/internal/domain"
)

// storeErr classifies a failure coming back from the store. Cancellation and
// deadlines pass through untouched; everything else is ErrStoreUnavailable.
func storeErr(err error) error {
	if err == nil {
		return nil
	}
	if errors.Is(err, context.Canceled) || errors.Is(err, context.DeadlineExceeded) {
		return err
	}
	return domain.Unavailable(err)
}
