// Package task implements the closed set of quest objective matchers and the
// registry that builds them from definition data.
package task

import (
	"fmt"
	"strings"
	"sync"

	"github.com/TrulyKing03/AVERTROX-QUEST-SYSTEM/internal/domain"
)

// Built-in task type keys.
const (
	TypeCollectBlocks    = "COLLECT_BLOCKS"
	TypeKillMobs         = "KILL_MOBS"
	TypeMineOres         = "MINE_ORES"
	TypeCraftItems       = "CRAFT_ITEMS"
	TypeVisitCoordinates = "VISIT_COORDINATES"
	TypeExternal         = "EXTERNAL"
)

// Factory builds a Matcher from the raw task section of a quest definition.
type Factory func(section map[string]any) (domain.Matcher, error)

// Registry maps uppercase task type keys to factories. Registering a
// duplicate key overwrites; unknown keys are a load-time error in the catalog.
type Registry struct {
	mu        sync.RWMutex
	factories map[string]Factory
}

// NewRegistry returns a registry pre-populated with the built-in task kinds.
func NewRegistry() *Registry {
	r := &Registry{factories: make(map[string]Factory)}
	r.registerBuiltins()
	return r
}

// Register adds a factory under the given key (uppercased). Blank keys and
// nil factories are ignored.
func (r *Registry) Register(key string, factory Factory) {
	key = strings.ToUpper(strings.TrimSpace(key))
	if key == "" || factory == nil {
		return
	}
	r.mu.Lock()
	r.factories[key] = factory
	r.mu.Unlock()
}

// Has reports whether a task type key is registered.
func (r *Registry) Has(key string) bool {
	r.mu.RLock()
	defer r.mu.RUnlock()
	_, ok := r.factories[strings.ToUpper(strings.TrimSpace(key))]
	return ok
}

// Create builds a matcher from a task section. The section's "task_type"
// selects the factory; an unregistered type is an error so the catalog can
// skip the quest at load time instead of failing at runtime.
func (r *Registry) Create(section map[string]any) (domain.Matcher, error) {
	if len(section) == 0 {
		return nil, fmt.Errorf("%w: empty task section", domain.ErrDefinitionInvalid)
	}
	key := strings.ToUpper(strings.TrimSpace(asString(section["task_type"])))
	r.mu.RLock()
	factory, ok := r.factories[key]
	r.mu.RUnlock()
	if !ok {
		return nil, fmt.Errorf("%w: unknown task type %q", domain.ErrDefinitionInvalid, key)
	}
	return factory(section)
}

func (r *Registry) registerBuiltins() {
	r.Register(TypeCollectBlocks, func(section map[string]any) (domain.Matcher, error) {
		return &CollectBlocks{Material: materialFilter(section)}, nil
	})
	r.Register(TypeKillMobs, func(section map[string]any) (domain.Matcher, error) {
		return &KillMobs{Entity: strings.ToUpper(asString(section["entity"]))}, nil
	})
	r.Register(TypeMineOres, func(section map[string]any) (domain.Matcher, error) {
		return &MineOres{Material: materialFilter(section)}, nil
	})
	r.Register(TypeCraftItems, func(section map[string]any) (domain.Matcher, error) {
		return &CraftItems{Material: materialFilter(section)}, nil
	})
	r.Register(TypeVisitCoordinates, func(section map[string]any) (domain.Matcher, error) {
		radius := asFloat(section["radius"], 5)
		if radius < 1 {
			radius = 1
		}
		world := asString(section["world"])
		if world == "" {
			world = "world"
		}
		return &VisitCoordinates{
			World:  world,
			X:      asFloat(section["x"], 0),
			Y:      asFloat(section["y"], 64),
			Z:      asFloat(section["z"], 0),
			Radius: radius,
		}, nil
	})
	r.Register(TypeExternal, func(section map[string]any) (domain.Matcher, error) {
		source := strings.ToUpper(asString(section["source"]))
		if source == "" {
			return nil, fmt.Errorf("%w: external task without source", domain.ErrDefinitionInvalid)
		}
		return &ExternalSource{SourceKey: source}, nil
	})
}

func materialFilter(section map[string]any) string {
	return strings.ToUpper(asString(section["material"]))
}

func asString(raw any) string {
	if raw == nil {
		return ""
	}
	return strings.TrimSpace(fmt.Sprintf("%v", raw))
}

func asFloat(raw any, fallback float64) float64 {
	switch v := raw.(type) {
	case float64:
		return v
	case float32:
		return float64(v)
	case int:
		return float64(v)
	case int64:
		return float64(v)
	case nil:
		return fallback
	default:
		var f float64
		if _, err := fmt.Sscanf(fmt.Sprintf("%v", v), "%g", &f); err != nil {
			return fallback
		}
		return f
	}
}
