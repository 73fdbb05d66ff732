package app

import (
	"context"

	"armonia/internal/logger"
)

// evaluateAfterWrite triggers a pass once an activity write has succeeded. The
// write is never rolled back, so a failed pass is logged and reported as a nil
// result; the next write or an explicit evaluation catches up.
func evaluateAfterWrite(ctx context.Context, ev Evaluator, log *logger.Logger, userID string) *ProgressResult {
	if ev == nil {
		return nil
	}
	res, err := ev.Evaluate(ctx, userID)
	if err != nil {
		log.Warn("progress evaluation after write failed", "user_id", userID, "error", err)
		return nil
	}
	return res
}
