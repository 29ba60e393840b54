package services

import (
	"context"
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/yungbote/learnqueue-backend/internal/data/repos"
	repotest "github.com/yungbote/learnqueue-backend/internal/data/repos/testutil"
	types "github.com/yungbote/learnqueue-backend/internal/domain"
	"github.com/yungbote/learnqueue-backend/internal/platform/dbctx"
)

func TestParseBadgeRulesEmbeddedDefaults(t *testing.T) {
	rules, err := LoadBadgeRules("")
	if err != nil {
		t.Fatalf("LoadBadgeRules: %v", err)
	}
	if len(rules) == 0 {
		t.Fatalf("embedded rules: want some got none")
	}
	byType := map[string]int{}
	for _, r := range rules {
		if !r.Active || r.Threshold <= 0 {
			t.Fatalf("embedded rule %s: %+v", r.Code, r)
		}
		byType[r.Type]++
	}
	for _, kind := range []string{types.BadgeRuleDailyStreak, types.BadgeRuleThemePercent, types.BadgeRuleCoursePercent, types.BadgeRuleSolvedTasks} {
		if byType[kind] == 0 {
			t.Fatalf("embedded rules missing type %s", kind)
		}
	}
}

func TestParseBadgeRulesRejectsBadInput(t *testing.T) {
	cases := map[string]string{
		"unknown type": "rules:\n  - code: a\n    type: nope\n    threshold: 1\n",
		"duplicate":    "rules:\n  - code: a\n    type: daily_streak\n    threshold: 1\n  - code: a\n    type: daily_streak\n    threshold: 2\n",
		"threshold":    "rules:\n  - code: a\n    type: daily_streak\n    threshold: 0\n",
		"missing code": "rules:\n  - type: daily_streak\n    threshold: 1\n",
		"not yaml":     "rules: [",
	}
	for name, raw := range cases {
		if _, err := ParseBadgeRules([]byte(raw)); err == nil {
			t.Fatalf("%s: want error", name)
		}
	}
}

func TestParseBadgeRulesCriteriaAndInactive(t *testing.T) {
	raw := `
rules:
  - code: pinned
    type: course_percent
    threshold: 80
    active: false
    criteria:
      course_id: 6f1c2a52-9a41-4a53-9f55-1b8f5d1f0c11
`
	rules, err := ParseBadgeRules([]byte(raw))
	if err != nil {
		t.Fatalf("ParseBadgeRules: %v", err)
	}
	if len(rules) != 1 || rules[0].Active || rules[0].Name != "pinned" {
		t.Fatalf("parsed rule: %+v", rules)
	}
	if !strings.Contains(string(rules[0].Criteria), "6f1c2a52-9a41-4a53-9f55-1b8f5d1f0c11") {
		t.Fatalf("criteria: %s", rules[0].Criteria)
	}
}

func TestSeedBadgeRulesIsStableAcrossRuns(t *testing.T) {
	db := repotest.DB(t)
	log := repotest.Logger(t)
	ctx := context.Background()
	rulesRepo := repos.NewBadgeRuleRepo(db, log)

	path := filepath.Join(t.TempDir(), "rules.yaml")
	write := func(threshold string) {
		body := "rules:\n  - code: streak_x\n    name: Streak\n    type: daily_streak\n    threshold: " + threshold + "\n"
		if err := os.WriteFile(path, []byte(body), 0o600); err != nil {
			t.Fatalf("write rules: %v", err)
		}
	}

	write("3")
	if n, err := SeedBadgeRules(ctx, log, rulesRepo, path); err != nil || n != 1 {
		t.Fatalf("first seed: n=%d err=%v", n, err)
	}
	first, err := rulesRepo.GetByCode(dbctx.Context{Ctx: ctx}, "streak_x")
	if err != nil || first == nil {
		t.Fatalf("GetByCode: %v %v", first, err)
	}

	write("5")
	if _, err := SeedBadgeRules(ctx, log, rulesRepo, path); err != nil {
		t.Fatalf("second seed: %v", err)
	}
	second, err := rulesRepo.GetByCode(dbctx.Context{Ctx: ctx}, "streak_x")
	if err != nil || second == nil {
		t.Fatalf("GetByCode after reseed: %v %v", second, err)
	}
	if second.ID != first.ID || second.Threshold != 5 {
		t.Fatalf("reseed: want id=%s threshold=5 got id=%s threshold=%d", first.ID, second.ID, second.Threshold)
	}

	if _, err := SeedBadgeRules(ctx, log, rulesRepo, filepath.Join(t.TempDir(), "missing.yaml")); err == nil {
		t.Fatalf("missing file: want error")
	}
}
