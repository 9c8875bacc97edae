package briqclient

import (
	"context"
	"fmt"

	"github.com/elusion/briq-go/pkg/briq"
)

// SessionFunc is the body of a Session.
type SessionFunc func(ctx context.Context, client briq.Client) error

// Session creates a client from config, opens it, runs fn and closes the
// client on every exit path, including a panic in fn. A failure to close is
// logged and only returned when fn itself succeeded.
func Session(ctx context.Context, config *briq.Config, fn SessionFunc) error {
	c, err := New(config)
	if err != nil {
		return err
	}

	return Run(ctx, c, config.Logger, fn)
}

// Run is Session for an existing unopened client. logger may be nil.
func Run(ctx context.Context, client briq.Client, logger briq.Logger, fn SessionFunc) (err error) {
	err = client.Open(ctx)
	if err != nil {
		return fmt.Errorf("opening session: %w", err)
	}

	defer func() {
		closeErr := client.Close()
		if closeErr == nil {
			return
		}

		if logger != nil {
			fields := map[string]interface{}{"error": closeErr.Error()}
			if err != nil {
				fields["original_error"] = err.Error()
			}

			logger.Error("Failed to release session", fields)
		}

		if err == nil {
			err = closeErr
		}
	}()

	return fn(ctx, client)
}
