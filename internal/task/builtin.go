package task

import (
	"strings"

	"github.com/TrulyKing03/AVERTROX-QUEST-SYSTEM/internal/domain"
)

// CollectBlocks matches item-collect actions, optionally filtered by material.
// An empty Material matches any collected item.
type CollectBlocks struct {
	Material string
}

func (t *CollectBlocks) Matches(action domain.Action) bool {
	if action.Type != domain.ActionCollect {
		return false
	}
	return t.Material == "" || strings.EqualFold(t.Material, action.Material)
}

func (t *CollectBlocks) ProgressAmount(action domain.Action) int {
	return defaultAmount(action)
}

// KillMobs matches mob-kill actions, optionally filtered by entity type.
type KillMobs struct {
	Entity string
}

func (t *KillMobs) Matches(action domain.Action) bool {
	if action.Type != domain.ActionMobKill {
		return false
	}
	return t.Entity == "" || strings.EqualFold(t.Entity, action.Entity)
}

func (t *KillMobs) ProgressAmount(action domain.Action) int {
	return defaultAmount(action)
}

// MineOres matches block-break actions. With a material filter it matches
// exactly; without one it falls back to an "is an ore" name heuristic.
type MineOres struct {
	Material string
}

func (t *MineOres) Matches(action domain.Action) bool {
	if action.Type != domain.ActionBlockBreak {
		return false
	}
	target := strings.ToUpper(action.Material)
	if target == "" {
		return false
	}
	if t.Material != "" {
		return t.Material == target
	}
	return isOre(target)
}

func (t *MineOres) ProgressAmount(action domain.Action) int {
	return defaultAmount(action)
}

func isOre(material string) bool {
	return strings.HasSuffix(material, "_ORE") || material == "ANCIENT_DEBRIS" || material == "STONE"
}

// CraftItems matches item-craft actions, optionally filtered by material.
type CraftItems struct {
	Material string
}

func (t *CraftItems) Matches(action domain.Action) bool {
	if action.Type != domain.ActionCraft {
		return false
	}
	return t.Material == "" || strings.EqualFold(t.Material, action.Material)
}

func (t *CraftItems) ProgressAmount(action domain.Action) int {
	return defaultAmount(action)
}

// VisitCoordinates matches move actions inside a sphere around a point,
// using a squared-distance test. Progress is always 1 per qualifying move.
type VisitCoordinates struct {
	World   string
	X, Y, Z float64
	Radius  float64
}

func (t *VisitCoordinates) Matches(action domain.Action) bool {
	if action.Type != domain.ActionMove || action.Position == nil {
		return false
	}
	pos := action.Position
	if !strings.EqualFold(pos.World, t.World) {
		return false
	}
	dx := pos.X - t.X
	dy := pos.Y - t.Y
	dz := pos.Z - t.Z
	return dx*dx+dy*dy+dz*dz <= t.Radius*t.Radius
}

func (t *VisitCoordinates) ProgressAmount(domain.Action) int {
	return 1
}

// ExternalSource matches external progress actions on a source key. It backs
// recordExternalProgress and custom task types registered by integrations.
type ExternalSource struct {
	SourceKey string
}

func (t *ExternalSource) Matches(action domain.Action) bool {
	if action.Type != domain.ActionExternal {
		return false
	}
	return strings.EqualFold(t.SourceKey, action.ExternalKey)
}

func (t *ExternalSource) ProgressAmount(action domain.Action) int {
	return defaultAmount(action)
}

func defaultAmount(action domain.Action) int {
	if action.Amount < 1 {
		return 1
	}
	return action.Amount
}
