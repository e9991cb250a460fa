// Copyright 2025 Poiesic Systems
//
// Licensed under the Apache License, Version 2.0 (the "License");
// you may not use this file except in compliance with the License.
// You may obtain a copy of the License at
//
//     http://www.apache.org/licenses/LICENSE-2.0
//
// Unless required by applicable law or agreed to in writing, software
// distributed under the License is distributed on an "AS IS" BASIS,
// WITHOUT WARRANTIES OR CONDITIONS OF ANY KIND, either express or implied.
// See the License for the specific language governing permissions and
// limitations under the License.


package pipeline

import (
	"context"
	"log/slog"
	"time"
)

// retryEmbed runs an embedding call up to maxAttempts times, doubling the
// delay after each failed attempt starting from baseDelay. Transient provider
// failures are expected during long runs, so attempts are logged at debug
// level on the pipeline's logger. Returns the error from the final attempt
// when every attempt fails, or the context error if cancelled.
func retryEmbed(ctx context.Context, logger *slog.Logger, call func() error, maxAttempts int, baseDelay time.Duration) error {
	if maxAttempts <= 0 {
		return ErrInvalidMaxAttempts
	}

	delay := baseDelay
	var lastErr error
	for attempt := 1; attempt <= maxAttempts; attempt++ {
		if err := ctx.Err(); err != nil {
			return err
		}

		lastErr = call()
		if lastErr == nil {
			if attempt > 1 {
				logger.Debug("embedding call recovered", "attempt", attempt)
			}
			return nil
		}
		if attempt == maxAttempts {
			break
		}
		logger.Debug("embedding call failed, backing off",
			"attempt", attempt,
			"max_attempts", maxAttempts,
			"delay", delay,
			"err", lastErr)

		timer := time.NewTimer(delay)
		select {
		case <-ctx.Done():
			timer.Stop()
			return ctx.Err()
		case <-timer.C:
		}
		delay *= 2
	}

	return lastErr
}
