package worker

import (
	"context"

	"github.com/TrulyKing03/AVERTROX-QUEST-SYSTEM/internal/globalevent"
	"github.com/TrulyKing03/AVERTROX-QUEST-SYSTEM/internal/logger"
	"github.com/TrulyKing03/AVERTROX-QUEST-SYSTEM/internal/progress"
	"github.com/TrulyKing03/AVERTROX-QUEST-SYSTEM/internal/quest"
)

// ResetSweepJob runs the quest reset pipeline over every loaded profile. The
// scheduler enqueues it on the pool at a fixed cadence; the engine itself
// decides per category whether anything is due.
type ResetSweepJob struct {
	Quests quest.Service
	Store  *progress.Store
}

func (j *ResetSweepJob) Process(ctx context.Context) error {
	var firstErr error
	for _, playerID := range j.Store.LoadedIDs() {
		if err := j.Quests.ProcessResets(ctx, playerID, true); err != nil {
			logger.FromContext(ctx).Error(LogMsgResetSweepFailed,
				"player_id", playerID, "error", err)
			if firstErr == nil {
				firstErr = err
			}
		}
	}
	return firstErr
}

// EventTickJob drives the global event state machine.
type EventTickJob struct {
	Events globalevent.Service
}

func (j *EventTickJob) Process(ctx context.Context) error {
	if err := j.Events.Tick(ctx); err != nil {
		logger.FromContext(ctx).Error(LogMsgEventTickFailed, "error", err)
		return err
	}
	return nil
}
