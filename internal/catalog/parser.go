package catalog

import (
	"context"
	"fmt"
	"strconv"
	"strings"

	"github.com/go-playground/validator/v10"
	"golang.org/x/text/cases"
	"golang.org/x/text/language"

	"github.com/TrulyKing03/AVERTROX-QUEST-SYSTEM/internal/domain"
	"github.com/TrulyKing03/AVERTROX-QUEST-SYSTEM/internal/logger"
	"github.com/TrulyKing03/AVERTROX-QUEST-SYSTEM/internal/task"
)

// Parser turns opaque definition field maps (as produced by the storage
// layer's definition loaders) into typed catalog entries. Offending
// definitions are skipped and logged; the rest of the catalog loads normally.
type Parser struct {
	tasks             *task.Registry
	validate          *validator.Validate
	defaultPermission string
}

// NewParser creates a parser bound to a task registry. defaultPermission is
// applied to quests that do not set their own.
func NewParser(tasks *task.Registry, defaultPermission string) *Parser {
	return &Parser{
		tasks:             tasks,
		validate:          validator.New(),
		defaultPermission: defaultPermission,
	}
}

// questDefinition is the validated shape of a raw quest section. Title is
// optional; a missing title is derived from the id.
type questDefinition struct {
	ID       string `validate:"required"`
	Category string `validate:"required"`
	Title    string
	Target   int `validate:"gte=1"`
}

// eventDefinition is the validated shape of a raw event section.
type eventDefinition struct {
	ID              string `validate:"required"`
	Name            string `validate:"required"`
	DurationMinutes int    `validate:"gte=1"`
}

// ParseQuests builds a quest list from raw sections keyed by definition id.
// Invalid sections are dropped with a warning.
func (p *Parser) ParseQuests(ctx context.Context, sections map[string]map[string]any) []*domain.Quest {
	log := logger.FromContext(ctx)

	quests := make([]*domain.Quest, 0, len(sections))
	for key, section := range sections {
		quest, err := p.parseQuest(section)
		if err != nil {
			log.Warn("Skipping quest definition", "key", key, "error", err)
			continue
		}
		quests = append(quests, quest)
	}
	return quests
}

func (p *Parser) parseQuest(section map[string]any) (*domain.Quest, error) {
	if len(section) == 0 {
		return nil, fmt.Errorf("%w: empty section", domain.ErrDefinitionInvalid)
	}

	taskSection, _ := section["task"].(map[string]any)
	if taskSection == nil {
		return nil, fmt.Errorf("%w: missing task section", domain.ErrDefinitionInvalid)
	}

	def := questDefinition{
		ID:       asString(section["id"]),
		Category: asString(section["type"]),
		Title:    asString(section["title"]),
		Target:   int(asFloat(taskSection["target"], asFloat(section["target"], 1))),
	}
	if err := p.validate.Struct(def); err != nil {
		return nil, fmt.Errorf("%w: %v", domain.ErrDefinitionInvalid, err)
	}
	if def.Title == "" {
		def.Title = titleFromID(def.ID)
	}

	category, ok := domain.ParseCategory(def.Category)
	if !ok {
		return nil, fmt.Errorf("%w: unknown category %q", domain.ErrDefinitionInvalid, def.Category)
	}

	taskType := strings.ToUpper(asString(taskSection["task_type"]))
	matcher, err := p.tasks.Create(taskSection)
	if err != nil {
		return nil, err
	}

	permission := p.defaultPermission
	if raw, ok := section["permission"]; ok {
		permission = asString(raw)
	}

	return &domain.Quest{
		ID:          def.ID,
		Category:    category,
		Title:       def.Title,
		Description: asString(section["description"]),
		TaskType:    taskType,
		Target:      def.Target,
		Reward:      parseReward(section["rewards"]),
		Repeatable:  asBool(section["repeatable"], true),
		Permission:  permission,
		Task:        matcher,
	}, nil
}

// ParseEvents builds a global event list from raw sections keyed by id.
// Invalid sections are dropped with a warning; invalid effects are dropped
// individually without discarding the event.
func (p *Parser) ParseEvents(ctx context.Context, sections map[string]map[string]any) []*domain.GlobalEvent {
	log := logger.FromContext(ctx)

	events := make([]*domain.GlobalEvent, 0, len(sections))
	for key, section := range sections {
		event, err := p.parseEvent(ctx, section)
		if err != nil {
			log.Warn("Skipping event definition", "key", key, "error", err)
			continue
		}
		events = append(events, event)
	}
	return events
}

func (p *Parser) parseEvent(ctx context.Context, section map[string]any) (*domain.GlobalEvent, error) {
	if len(section) == 0 {
		return nil, fmt.Errorf("%w: empty section", domain.ErrDefinitionInvalid)
	}

	def := eventDefinition{
		ID:              asString(section["id"]),
		Name:            asString(section["name"]),
		DurationMinutes: int(asFloat(section["duration_minutes"], 30)),
	}
	if err := p.validate.Struct(def); err != nil {
		return nil, fmt.Errorf("%w: %v", domain.ErrDefinitionInvalid, err)
	}

	log := logger.FromContext(ctx)
	var effects []domain.Effect
	if rawList, ok := section["effects"].([]any); ok {
		for _, raw := range rawList {
			effectSection, ok := raw.(map[string]any)
			if !ok {
				continue
			}
			effect, err := parseEffect(effectSection)
			if err != nil {
				log.Warn("Skipping event effect", "event", def.ID, "error", err)
				continue
			}
			effects = append(effects, effect)
		}
	}

	return &domain.GlobalEvent{
		ID:              def.ID,
		Name:            def.Name,
		Description:     asString(section["description"]),
		DurationMinutes: def.DurationMinutes,
		Effects:         effects,
		Enabled:         asBool(section["enabled"], true),
	}, nil
}

func parseEffect(section map[string]any) (domain.Effect, error) {
	typeRaw := asString(section["type"])
	effectType, ok := domain.ParseEffectType(typeRaw)
	if !ok {
		return domain.Effect{}, fmt.Errorf("%w: unknown effect type %q", domain.ErrDefinitionInvalid, typeRaw)
	}

	effect := domain.Effect{Type: effectType, Value: asFloat(section["value"], 1)}
	if effectType == domain.EffectPotion {
		potion := strings.ToUpper(asString(section["potion"]))
		if potion == "" {
			return domain.Effect{}, fmt.Errorf("%w: potion effect without potion name", domain.ErrDefinitionInvalid)
		}
		effect.Potion = potion
		if amp := int(asFloat(section["amplifier"], 0)); amp > 0 {
			effect.Amplifier = amp
		}
	}
	return effect, nil
}

func parseReward(raw any) domain.Reward {
	section, ok := raw.(map[string]any)
	if !ok {
		return domain.Reward{}
	}
	reward := domain.Reward{
		XP:    maxZero(asFloat(section["xp"], 0)),
		Money: maxZero(asFloat(section["money"], 0)),
	}
	if items, ok := section["items"].([]any); ok {
		for _, item := range items {
			if spec, ok := parseItemSpec(asString(item)); ok {
				reward.Items = append(reward.Items, spec)
			}
		}
	}
	return reward
}

// parseItemSpec decodes "MATERIAL:amount"; a bare material means amount 1.
func parseItemSpec(raw string) (domain.ItemSpec, bool) {
	raw = strings.TrimSpace(raw)
	if raw == "" {
		return domain.ItemSpec{}, false
	}
	material, amountRaw, found := strings.Cut(raw, ":")
	spec := domain.ItemSpec{Material: strings.ToUpper(strings.TrimSpace(material)), Amount: 1}
	if spec.Material == "" {
		return domain.ItemSpec{}, false
	}
	if found {
		amount, err := strconv.Atoi(strings.TrimSpace(amountRaw))
		if err != nil || amount < 1 {
			return domain.ItemSpec{}, false
		}
		spec.Amount = amount
	}
	return spec, true
}

// titleFromID turns a snake_case id into a display title, e.g. "mine_iron"
// becomes "Mine Iron".
func titleFromID(id string) string {
	return cases.Title(language.English).String(strings.ReplaceAll(id, "_", " "))
}

func maxZero(v float64) float64 {
	if v < 0 {
		return 0
	}
	return v
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
	case string:
		f, err := strconv.ParseFloat(strings.TrimSpace(v), 64)
		if err != nil {
			return fallback
		}
		return f
	default:
		return fallback
	}
}

func asBool(raw any, fallback bool) bool {
	switch v := raw.(type) {
	case bool:
		return v
	case string:
		parsed, err := strconv.ParseBool(strings.TrimSpace(v))
		if err != nil {
			return fallback
		}
		return parsed
	default:
		return fallback
	}
}
