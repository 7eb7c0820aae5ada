package domain

// ActionType identifies the gameplay verb an Action describes.
type ActionType string

const (
	ActionBlockBreak ActionType = "block_break"
	ActionCollect    ActionType = "item_collect"
	ActionMobKill    ActionType = "mob_kill"
	ActionCraft      ActionType = "item_craft"
	ActionMove       ActionType = "player_move"
	ActionExternal   ActionType = "external"
)

// Position is a world coordinate attached to location-bearing actions.
type Position struct {
	World string  `json:"world"`
	X     float64 `json:"x"`
	Y     float64 `json:"y"`
	Z     float64 `json:"z"`
}

// Action is the small vocabulary quest matchers are evaluated against. The
// game-engine adapter translates raw hooks into these; Amount is always >= 1.
type Action struct {
	Type        ActionType `json:"type"`
	Material    string     `json:"material,omitempty"`
	Entity      string     `json:"entity,omitempty"`
	Position    *Position  `json:"position,omitempty"`
	Amount      int        `json:"amount"`
	ExternalKey string     `json:"external_key,omitempty"`
}

func newAction(t ActionType, amount int) Action {
	if amount < 1 {
		amount = 1
	}
	return Action{Type: t, Amount: amount}
}

// BlockBreakAction describes breaking a block of the given material.
func BlockBreakAction(material string, amount int, pos *Position) Action {
	a := newAction(ActionBlockBreak, amount)
	a.Material = material
	a.Position = pos
	return a
}

// CollectAction describes picking up an item of the given material.
func CollectAction(material string, amount int, pos *Position) Action {
	a := newAction(ActionCollect, amount)
	a.Material = material
	a.Position = pos
	return a
}

// MobKillAction describes killing one entity of the given type.
func MobKillAction(entity string, pos *Position) Action {
	a := newAction(ActionMobKill, 1)
	a.Entity = entity
	a.Position = pos
	return a
}

// CraftAction describes crafting an item of the given material.
func CraftAction(material string, amount int) Action {
	a := newAction(ActionCraft, amount)
	a.Material = material
	return a
}

// MoveAction describes a player arriving at a position.
func MoveAction(pos Position) Action {
	a := newAction(ActionMove, 1)
	a.Position = &pos
	return a
}

// ExternalAction synthesizes a generic action from an external progress
// source, matched by custom task types on the source key.
func ExternalAction(sourceKey string, amount int) Action {
	a := newAction(ActionExternal, amount)
	a.ExternalKey = sourceKey
	return a
}
