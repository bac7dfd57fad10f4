package cassandra

import (
	"context"
	"errors"
	"fmt"

	"github.com/gocql/gocql"

	"github.com/heartmarshall/user-registry/internal/domain"
)

// mapError converts gocql errors to domain errors.
// context.DeadlineExceeded and context.Canceled are NOT mapped; they pass through.
func mapError(err error, op string) error {
	if err == nil {
		return nil
	}

	if errors.Is(err, context.DeadlineExceeded) || errors.Is(err, context.Canceled) {
		return fmt.Errorf("%s: %w", op, err)
	}

	var reqErr gocql.RequestError
	if errors.As(err, &reqErr) {
		if reqErr.Code() == gocql.ErrCodeUnavailable {
			return fmt.Errorf("%s: %w: %s", op, domain.ErrConnectivity, reqErr.Message())
		}
		return fmt.Errorf("%s: %w: %s", op, domain.ErrStoreProtocol, reqErr.Message())
	}

	// No hosts, no connections, dial failures and driver timeouts.
	return fmt.Errorf("%s: %w: %v", op, domain.ErrConnectivity, err)
}
