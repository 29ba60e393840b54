package services

import (
	"context"
	_ "embed"
	"encoding/json"
	"fmt"
	"os"
	"strings"
	"time"

	"github.com/google/uuid"
	"gopkg.in/yaml.v3"
	"gorm.io/datatypes"

	"github.com/yungbote/learnqueue-backend/internal/data/repos"
	types "github.com/yungbote/learnqueue-backend/internal/domain"
	"github.com/yungbote/learnqueue-backend/internal/platform/dbctx"
	"github.com/yungbote/learnqueue-backend/internal/platform/logger"
)

//go:embed badge_rules.yaml
var defaultBadgeRulesYAML []byte

type yamlBadgeRules struct {
	Version int             `yaml:"version"`
	Rules   []yamlBadgeRule `yaml:"rules"`
}

type yamlBadgeRule struct {
	Code        string         `yaml:"code"`
	Name        string         `yaml:"name"`
	Description string         `yaml:"description"`
	Type        string         `yaml:"type"`
	Threshold   int            `yaml:"threshold"`
	Active      *bool          `yaml:"active"`
	Criteria    map[string]any `yaml:"criteria"`
}

var knownBadgeRuleTypes = map[string]bool{
	types.BadgeRuleDailyStreak:   true,
	types.BadgeRuleThemePercent:  true,
	types.BadgeRuleCoursePercent: true,
	types.BadgeRuleSolvedTasks:   true,
}

// LoadBadgeRules reads rule definitions from path, or from the embedded defaults when
// path is empty.
func LoadBadgeRules(path string) ([]*types.BadgeRule, error) {
	raw := defaultBadgeRulesYAML
	if path = strings.TrimSpace(path); path != "" {
		b, err := os.ReadFile(path)
		if err != nil {
			return nil, fmt.Errorf("read badge rules: %w", err)
		}
		raw = b
	}
	return ParseBadgeRules(raw)
}

func ParseBadgeRules(raw []byte) ([]*types.BadgeRule, error) {
	var doc yamlBadgeRules
	if err := yaml.Unmarshal(raw, &doc); err != nil {
		return nil, fmt.Errorf("parse badge rules: %w", err)
	}
	now := time.Now().UTC()
	seen := map[string]bool{}
	out := make([]*types.BadgeRule, 0, len(doc.Rules))
	for i, r := range doc.Rules {
		code := strings.TrimSpace(r.Code)
		if code == "" {
			return nil, fmt.Errorf("badge rule %d: missing code", i)
		}
		if seen[code] {
			return nil, fmt.Errorf("badge rule %q: duplicate code", code)
		}
		seen[code] = true
		ruleType := strings.TrimSpace(r.Type)
		if !knownBadgeRuleTypes[ruleType] {
			return nil, fmt.Errorf("badge rule %q: unknown type %q", code, ruleType)
		}
		if r.Threshold <= 0 {
			return nil, fmt.Errorf("badge rule %q: threshold must be positive", code)
		}
		active := true
		if r.Active != nil {
			active = *r.Active
		}
		var criteria datatypes.JSON
		if len(r.Criteria) > 0 {
			b, err := json.Marshal(r.Criteria)
			if err != nil {
				return nil, fmt.Errorf("badge rule %q: criteria: %w", code, err)
			}
			criteria = datatypes.JSON(b)
		}
		name := strings.TrimSpace(r.Name)
		if name == "" {
			name = code
		}
		out = append(out, &types.BadgeRule{
			ID:          uuid.New(),
			Code:        code,
			Name:        name,
			Description: strings.TrimSpace(r.Description),
			Type:        ruleType,
			Threshold:   r.Threshold,
			Active:      active,
			Criteria:    criteria,
			CreatedAt:   now,
			UpdatedAt:   now,
		})
	}
	return out, nil
}

// SeedBadgeRules upserts the rule set by code. Existing rule ids are preserved.
func SeedBadgeRules(ctx context.Context, log *logger.Logger, rules repos.BadgeRuleRepo, path string) (int, error) {
	rows, err := LoadBadgeRules(path)
	if err != nil {
		return 0, err
	}
	if err := rules.UpsertByCode(dbctx.Context{Ctx: ctx}, rows); err != nil {
		return 0, fmt.Errorf("upsert badge rules: %w", err)
	}
	if log != nil {
		src := path
		if strings.TrimSpace(src) == "" {
			src = "embedded"
		}
		log.Info("badge rules seeded", "count", len(rows), "source", src)
	}
	return len(rows), nil
}
