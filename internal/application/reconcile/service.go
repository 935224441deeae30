// Package reconcile orchestrates the periodic quota reconciliation
// pass: usage aggregation, status transitions, warning ladders, and
// enforcement rule rebuilds.
package reconcile

import (
	"context"
	"fmt"
	"strconv"
	"time"

	"marzhelp/internal/domain/quota"
	"marzhelp/internal/infrastructure/i18n"
	"marzhelp/internal/shared/biztime"
	apperrors "marzhelp/internal/shared/errors"
	"marzhelp/internal/shared/logger"
	"marzhelp/internal/shared/utils/setutil"
)

// Capacity warnings fire while this many user slots or fewer remain.
const capacityWarnSlots = 5

// Service runs reconciliation passes over all tenants.
type Service struct {
	admins     quota.AdminRepository
	settings   quota.SettingsRepository
	aggregator *Aggregator
	archive    quota.UsageArchiveRepository
	rules      quota.RuleStore
	cache      quota.SnapshotCache
	notifier   Notifier
	owners     []string
	language   i18n.Language
	logger     logger.Interface
}

// NewService wires a reconciliation service. cache may be nil when no
// snapshot cache is configured.
func NewService(
	admins quota.AdminRepository,
	settings quota.SettingsRepository,
	usage quota.UsageRepository,
	archive quota.UsageArchiveRepository,
	rules quota.RuleStore,
	notifier Notifier,
	cache quota.SnapshotCache,
	owners []string,
	language i18n.Language,
	log logger.Interface,
) *Service {
	return &Service{
		admins:     admins,
		settings:   settings,
		aggregator: NewAggregator(usage),
		archive:    archive,
		rules:      rules,
		cache:      cache,
		notifier:   notifier,
		owners:     owners,
		language:   language,
		logger:     log,
	}
}

// tenantOutcome is what one tenant's reconciliation contributes to the
// end-of-pass rule rebuild.
type tenantOutcome struct {
	admin    *quota.Admin
	settings *quota.Settings
	snapshot quota.UsageSnapshot
	status   quota.Status
	// limited is the live user-count check against the configured
	// ceiling, derived from the snapshot rather than the status record.
	limited bool
}

// RunTick executes one full reconciliation pass. Tenant failures are
// isolated: a tenant that cannot be reconciled is logged and skipped,
// and the rule rebuild proceeds from the tenants that succeeded.
func (s *Service) RunTick(ctx context.Context) error {
	now := biztime.Now()

	admins, err := s.admins.List(ctx)
	if err != nil {
		return err
	}

	outcomes := make([]*tenantOutcome, 0, len(admins))
	for _, admin := range admins {
		outcome, err := s.reconcileTenant(ctx, admin, now)
		if err != nil {
			if apperrors.IsNotFoundError(err) {
				s.logger.Debugw("tenant has no quota settings, skipping",
					"admin_id", admin.ID(), "username", admin.Username())
				continue
			}
			s.logger.Errorw("tenant reconciliation failed",
				"admin_id", admin.ID(), "username", admin.Username(), "error", err)
			continue
		}
		outcomes = append(outcomes, outcome)
	}

	s.rebuildRules(ctx, outcomes)
	s.cacheSnapshots(ctx, outcomes)
	return nil
}

func (s *Service) reconcileTenant(ctx context.Context, admin *quota.Admin, now time.Time) (*tenantOutcome, error) {
	settings, err := s.settings.FindByAdminID(ctx, admin.ID())
	if err != nil {
		return nil, err
	}

	snapshot, err := s.aggregator.BuildSnapshot(ctx, admin.ID(), settings.Mode(), now)
	if err != nil {
		return nil, err
	}

	status := settings.Status()
	var transitions []*quota.Transition

	expired := settings.IsExpired(now)
	if tr := status.ApplyTime(expired); tr != nil {
		transitions = append(transitions, tr)
	}

	total := settings.TotalTraffic()
	exhausted := total != nil && snapshot.Remaining(*total) <= 0
	if tr := status.ApplyData(exhausted); tr != nil {
		transitions = append(transitions, tr)
	}

	limit := settings.UserLimit()
	limited := limit != nil && snapshot.ActiveUsers >= *limit

	// The status document is persisted before any notification goes
	// out, as one unit. If the write fails the tenant is retried whole
	// on the next pass and nothing is announced early.
	if len(transitions) > 0 {
		if err := s.settings.UpdateStatus(ctx, admin.ID(), status); err != nil {
			return nil, err
		}
		settings.SetStatus(status)
		for _, tr := range transitions {
			msg := s.transitionMessage(admin, tr)
			// Breaches carry the renew action; recoveries are plain.
			var choices []Choice
			if tr.To != quota.StateActive {
				choices = []Choice{{
					Label: i18n.RenewChoiceLabel(s.language),
					Data:  fmt.Sprintf("panel:renew:%d", admin.ID()),
				}}
			}
			s.notifyOwners(ctx, msg, choices)
		}
	}

	s.runTrafficLadder(ctx, admin, settings, snapshot, total)
	s.runExpiryLadder(ctx, admin, settings, now)

	return &tenantOutcome{
		admin:    admin,
		settings: settings,
		snapshot: snapshot,
		status:   status,
		limited:  limited,
	}, nil
}

func (s *Service) transitionMessage(admin *quota.Admin, tr *quota.Transition) string {
	username := admin.Username()
	id := admin.ID()
	if tr.Dimension == quota.DimensionTime {
		if tr.To == quota.StateExpired {
			return i18n.PanelExpired(s.language, username, id)
		}
		return i18n.PanelRenewed(s.language, username, id)
	}
	if tr.To == quota.StateExhausted {
		return i18n.TrafficExhausted(s.language, username, id)
	}
	return i18n.TrafficRecovered(s.language, username, id)
}

// runTrafficLadder advances the remaining-traffic warning ladder. The
// cursor moves only after the warning is actually delivered, so a
// failed send retries on the next pass.
func (s *Service) runTrafficLadder(ctx context.Context, admin *quota.Admin, settings *quota.Settings, snapshot quota.UsageSnapshot, total *quota.GBValue) {
	if total == nil {
		return
	}
	remaining := snapshot.Remaining(*total)
	threshold, fire, reset := quota.NextTrafficWarning(remaining, settings.TrafficWarningCursor())

	switch {
	case reset:
		if err := s.settings.UpdateTrafficWarningCursor(ctx, admin.ID(), nil); err != nil {
			s.logger.Errorw("failed to reset traffic warning cursor",
				"admin_id", admin.ID(), "error", err)
		}
	case fire:
		msg := i18n.TrafficWarning(s.language, admin.Username(), threshold, remaining.String())
		if !s.notifyTenant(ctx, admin, msg) {
			return
		}
		if err := s.settings.UpdateTrafficWarningCursor(ctx, admin.ID(), &threshold); err != nil {
			s.logger.Errorw("failed to advance traffic warning cursor",
				"admin_id", admin.ID(), "error", err)
		}
	}
}

// runExpiryLadder advances the expiry countdown ladder with the same
// deliver-before-advance rule as the traffic ladder.
func (s *Service) runExpiryLadder(ctx context.Context, admin *quota.Admin, settings *quota.Settings, now time.Time) {
	daysLeft := settings.DaysLeft(now)
	if daysLeft == nil {
		return
	}
	days, fire, reset := quota.NextExpiryWarning(*daysLeft, settings.ExpiryWarningTimestamp(), now)

	switch {
	case reset:
		if err := s.settings.UpdateExpiryWarningTimestamp(ctx, admin.ID(), nil); err != nil {
			s.logger.Errorw("failed to reset expiry warning timestamp",
				"admin_id", admin.ID(), "error", err)
		}
	case fire:
		msg := i18n.ExpiryWarning(s.language, admin.Username(), days)
		if !s.notifyTenant(ctx, admin, msg) {
			return
		}
		sentAt := now
		if err := s.settings.UpdateExpiryWarningTimestamp(ctx, admin.ID(), &sentAt); err != nil {
			s.logger.Errorw("failed to advance expiry warning timestamp",
				"admin_id", admin.ID(), "error", err)
		}
	}
}

// notifyOwners delivers one message to every configured owner, with an
// optional set of inline actions. It reports true only when every
// delivery succeeded; an empty owner list counts as undelivered so
// ladder cursors do not advance past a warning nobody received.
func (s *Service) notifyOwners(ctx context.Context, text string, choices []Choice) bool {
	if len(s.owners) == 0 {
		return false
	}
	ok := true
	for _, owner := range s.owners {
		var err error
		if len(choices) > 0 {
			err = s.notifier.SendWithChoices(ctx, owner, text, choices)
		} else {
			err = s.notifier.Send(ctx, owner, text)
		}
		if err != nil {
			s.logger.Errorw("failed to notify owner",
				"recipient", owner, "error", err)
			ok = false
		}
	}
	return ok
}

// notifyTenant delivers a message to the tenant's own contact, falling
// back to the owner list for tenants with no contact bound. The result
// gates ladder cursor advancement.
func (s *Service) notifyTenant(ctx context.Context, admin *quota.Admin, text string) bool {
	chatID := admin.TelegramID()
	if chatID == nil {
		return s.notifyOwners(ctx, text, nil)
	}
	if err := s.notifier.Send(ctx, strconv.FormatInt(*chatID, 10), text); err != nil {
		s.logger.Errorw("failed to notify tenant",
			"admin_id", admin.ID(), "error", err)
		return false
	}
	return true
}

// rebuildRules derives the three enforcement rule families from this
// pass's outcomes and installs them.
func (s *Service) rebuildRules(ctx context.Context, outcomes []*tenantOutcome) {
	// Hard block membership is the control surface's doing: the users
	// flag is set there, this pass only projects it into the rule.
	hardBlocked := setutil.NewUintSet()
	caps := make(map[uint]int64)
	for _, o := range outcomes {
		if o.status.UsersBlocked() {
			hardBlocked.Add(o.admin.ID())
		}
		if o.settings.Mode() == quota.ModeCreated && o.status.Data == quota.StateExhausted {
			if budget := o.settings.TotalTrafficBytes(); budget != nil {
				caps[o.admin.ID()] = *budget
			}
		}
	}

	if err := s.rules.Apply(ctx, quota.NewHardBlockRule(hardBlocked)); err != nil {
		s.logger.Errorw("failed to rebuild hard block rule", "error", err)
	}
	if err := s.rules.Apply(ctx, quota.NewTrafficOverageRule(caps)); err != nil {
		s.logger.Errorw("failed to rebuild traffic overage rule", "error", err)
	}

	// User overage membership is additive across passes: tenants join
	// when limited and leave only once their user count clears, even if
	// they were added by an earlier pass we no longer remember.
	members, err := s.rules.Members(ctx, quota.PolicyUserOverage)
	if err != nil {
		s.logger.Errorw("failed to read user overage membership", "error", err)
		members = setutil.NewUintSet()
	}
	var newlyLimited []*tenantOutcome
	for _, o := range outcomes {
		if o.limited {
			if !members.Contains(o.admin.ID()) {
				newlyLimited = append(newlyLimited, o)
			}
			members.Add(o.admin.ID())
		} else {
			members.Remove(o.admin.ID())
		}
	}
	if err := s.rules.Apply(ctx, quota.NewUserOverageRule(members)); err != nil {
		s.logger.Errorw("failed to rebuild user overage rule", "error", err)
	}

	// A tenant entering the blocked set is told once, on entry.
	for _, o := range newlyLimited {
		msg := i18n.UserLimitExceeded(s.language, o.admin.Username())
		if chat := o.admin.TelegramID(); chat != nil {
			if err := s.notifier.Send(ctx, strconv.FormatInt(*chat, 10), msg); err != nil {
				s.logger.Errorw("failed to notify tenant",
					"admin_id", o.admin.ID(), "error", err)
			}
		}
		s.notifyOwners(ctx, msg, nil)
	}
}

func (s *Service) cacheSnapshots(ctx context.Context, outcomes []*tenantOutcome) {
	if s.cache == nil {
		return
	}
	for _, o := range outcomes {
		if err := s.cache.Put(ctx, o.snapshot); err != nil {
			s.logger.Warnw("failed to cache snapshot",
				"admin_id", o.admin.ID(), "error", err)
		}
	}
}

// SendCapacityWarnings sends the daily heads-up to tenants that are
// close to their user limit.
func (s *Service) SendCapacityWarnings(ctx context.Context) error {
	now := biztime.Now()

	admins, err := s.admins.List(ctx)
	if err != nil {
		return err
	}

	for _, admin := range admins {
		settings, err := s.settings.FindByAdminID(ctx, admin.ID())
		if err != nil {
			if !apperrors.IsNotFoundError(err) {
				s.logger.Errorw("failed to load settings for capacity warning",
					"admin_id", admin.ID(), "error", err)
			}
			continue
		}
		limit := settings.UserLimit()
		if limit == nil {
			continue
		}

		snapshot, err := s.aggregator.BuildSnapshot(ctx, admin.ID(), settings.Mode(), now)
		if err != nil {
			s.logger.Errorw("failed to build snapshot for capacity warning",
				"admin_id", admin.ID(), "error", err)
			continue
		}

		slotsLeft := *limit - snapshot.ActiveUsers
		if slotsLeft < 1 || slotsLeft > capacityWarnSlots {
			continue
		}

		remaining := "∞"
		if total := settings.TotalTraffic(); total != nil {
			remaining = snapshot.Remaining(*total).String()
		}
		s.notifyTenant(ctx, admin, i18n.CapacityWarning(s.language, admin.Username(), slotsLeft, remaining))
	}
	return nil
}

// ArchiveUsage appends a usage sample per configured tenant for
// historical charting.
func (s *Service) ArchiveUsage(ctx context.Context) error {
	now := biztime.Now()

	admins, err := s.admins.List(ctx)
	if err != nil {
		return err
	}

	for _, admin := range admins {
		settings, err := s.settings.FindByAdminID(ctx, admin.ID())
		if err != nil {
			if !apperrors.IsNotFoundError(err) {
				s.logger.Errorw("failed to load settings for usage archive",
					"admin_id", admin.ID(), "error", err)
			}
			continue
		}

		snapshot, err := s.aggregator.BuildSnapshot(ctx, admin.ID(), settings.Mode(), now)
		if err != nil {
			s.logger.Errorw("failed to build snapshot for usage archive",
				"admin_id", admin.ID(), "error", err)
			continue
		}

		if err := s.archive.Append(ctx, admin.ID(), snapshot.UsedTraffic, now); err != nil {
			s.logger.Errorw("failed to archive usage sample",
				"admin_id", admin.ID(), "error", err)
		}
	}
	return nil
}
