package quest

import (
	"context"

	"github.com/TrulyKing03/AVERTROX-QUEST-SYSTEM/internal/domain"
	"github.com/TrulyKing03/AVERTROX-QUEST-SYSTEM/internal/logger"
)

// LogRewardSink is the standalone-mode payout: it records the grant and leaves
// delivery to whatever consumes the claimed event on the bus. Deployments that
// embed the engine next to a game server replace it with a real adapter.
type LogRewardSink struct{}

func (LogRewardSink) Grant(ctx context.Context, playerID string, quest *domain.Quest, reward domain.ClaimedReward) error {
	logger.FromContext(ctx).Info("Reward granted",
		"player_id", playerID,
		"quest_id", quest.ID,
		"xp", reward.XP,
		"money", reward.Money,
		"items", len(reward.Items))
	return nil
}
