package app

import (
	"context"
	"time"

	log "github.com/sirupsen/logrus"
)

// postForwards posts every archived forward not yet on matrix, oldest first.
func (fc *ForwardCollab) postForwards(ctx context.Context) bool {
	forwards, ok := fc.dbHandler.GetMatrixReadyForwards(ctx)
	if !ok {
		return false
	}
	for _, forward := range forwards {
		if ctx.Err() != nil {
			return false
		}
		ok, eventId := fc.matrixHandler.PostForward(forward)
		if !ok {
			return false
		}
		// unmarked forwards get posted again on the next run
		if !fc.dbHandler.UpdateForwardMatrixId(ctx, forward.ID, eventId) {
			return false
		}
	}
	if len(forwards) > 0 {
		log.Infof("Posted %v forwards to matrix", len(forwards))
	}
	return true
}

func (fc *ForwardCollab) setupMatrixNotificationsStage() {
	work := func(ctx context.Context) bool {
		if !fc.matrixHandler.Enabled() {
			return true
		}
		if IsRetry(ctx) {
			log.Infof("Retrying to post forwards to matrix...")
		}
		return fc.postForwards(ctx)
	}
	fc.MatrixNotificationStage = NewStage(
		"MatrixNotification", nil, work, 30*time.Second,
		true, // post what is left from previous runs
	)
}
