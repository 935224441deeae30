// Package enforcement installs quota guard rules as MySQL triggers on
// the panel's users table. Rebuilds are drop-then-create so the
// installed body always matches the latest pass exactly.
package enforcement

import (
	"context"
	"fmt"

	"gorm.io/gorm"

	"marzhelp/internal/domain/quota"
	apperrors "marzhelp/internal/shared/errors"
	"marzhelp/internal/shared/utils/setutil"
)

// Trigger names per rule family. The panel database is shared with
// other tooling, so the names are part of the installation contract
// and must stay stable.
const (
	hardBlockInsertTrigger      = "user_creation_traffic"
	hardBlockUpdateTrigger      = "user_update_traffic"
	trafficOverageInsertTrigger = "prevent_insert_traffic"
	trafficOverageUpdateTrigger = "prevent_update_traffic"
	userOverageInsertTrigger    = "cron_prevent_user_creation"
)

func triggerNames(kind quota.PolicyKind) []string {
	switch kind {
	case quota.PolicyHardBlock:
		return []string{hardBlockInsertTrigger, hardBlockUpdateTrigger}
	case quota.PolicyTrafficOverage:
		return []string{trafficOverageInsertTrigger, trafficOverageUpdateTrigger}
	case quota.PolicyUserOverage:
		return []string{userOverageInsertTrigger}
	}
	return nil
}

// TriggerRuleStore implements quota.RuleStore against the panel
// database.
type TriggerRuleStore struct {
	db *gorm.DB
}

// NewTriggerRuleStore creates a rule store over the panel database.
func NewTriggerRuleStore(panelDB *gorm.DB) *TriggerRuleStore {
	return &TriggerRuleStore{db: panelDB}
}

// Members reads back the tenants currently covered by a rule family by
// parsing the installed trigger body. An absent trigger yields the
// empty set.
func (s *TriggerRuleStore) Members(ctx context.Context, kind quota.PolicyKind) (*setutil.UintSet, error) {
	names := triggerNames(kind)
	if len(names) == 0 {
		return setutil.NewUintSet(), nil
	}

	body, err := s.triggerBody(ctx, names[0])
	if err != nil {
		return nil, err
	}
	if body == "" {
		return setutil.NewUintSet(), nil
	}

	if kind == quota.PolicyTrafficOverage {
		return parseCapMembers(body), nil
	}
	return parseMemberList(body), nil
}

// Apply brings one rule family in line with the desired rule. All
// triggers of the family are dropped first; non-empty rules are then
// recreated from scratch, so applying the same rule twice converges on
// the same installed state.
func (s *TriggerRuleStore) Apply(ctx context.Context, rule quota.PolicyRule) error {
	for _, name := range triggerNames(rule.Kind) {
		if err := s.exec(ctx, fmt.Sprintf("DROP TRIGGER IF EXISTS %s", name)); err != nil {
			return err
		}
	}
	if rule.Empty() {
		return nil
	}

	var statements []string
	switch rule.Kind {
	case quota.PolicyHardBlock:
		statements = renderHardBlockTriggers(rule.Members)
	case quota.PolicyTrafficOverage:
		statements = renderTrafficOverageTriggers(rule.Caps)
	case quota.PolicyUserOverage:
		statements = renderUserOverageTrigger(rule.Members)
	default:
		return apperrors.NewValidationError("unknown rule kind", string(rule.Kind))
	}

	for _, stmt := range statements {
		if err := s.exec(ctx, stmt); err != nil {
			return err
		}
	}
	return nil
}

func (s *TriggerRuleStore) exec(ctx context.Context, stmt string) error {
	if err := s.db.WithContext(ctx).Exec(stmt).Error; err != nil {
		return apperrors.NewUnavailableError("failed to install enforcement rule", err.Error())
	}
	return nil
}

func (s *TriggerRuleStore) triggerBody(ctx context.Context, name string) (string, error) {
	var body string
	err := s.db.WithContext(ctx).
		Raw(`SELECT ACTION_STATEMENT FROM information_schema.TRIGGERS
			WHERE TRIGGER_SCHEMA = DATABASE() AND TRIGGER_NAME = ?`, name).
		Scan(&body).Error
	if err != nil {
		return "", apperrors.NewUnavailableError("failed to read enforcement rule", err.Error())
	}
	return body, nil
}
