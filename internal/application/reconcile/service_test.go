package reconcile

import (
	"context"
	"fmt"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"marzhelp/internal/domain/quota"
	"marzhelp/internal/infrastructure/i18n"
	"marzhelp/internal/shared/logger"
	"marzhelp/internal/shared/utils/setutil"
)

const gb = int64(1073741824)

type fakeAdminRepo struct {
	admins []*quota.Admin
}

func (f *fakeAdminRepo) List(_ context.Context) ([]*quota.Admin, error) {
	return f.admins, nil
}

func (f *fakeAdminRepo) FindByID(_ context.Context, id uint) (*quota.Admin, error) {
	for _, a := range f.admins {
		if a.ID() == id {
			return a, nil
		}
	}
	return nil, quota.NewAdminNotFoundError(id)
}

type settingsRow struct {
	total         *int64
	expiry        *time.Time
	limit         *int
	mode          quota.AccountingMode
	status        quota.Status
	trafficCursor *int
	expirySentAt  *time.Time
}

type fakeSettingsRepo struct {
	rows         map[uint]*settingsRow
	statusWrites int
}

func (f *fakeSettingsRepo) FindByAdminID(_ context.Context, adminID uint) (*quota.Settings, error) {
	row, ok := f.rows[adminID]
	if !ok {
		return nil, quota.NewSettingsNotFoundError(adminID)
	}
	return quota.ReconstructSettings(adminID, row.total, row.expiry, row.limit,
		row.mode, row.status, row.trafficCursor, row.expirySentAt)
}

func (f *fakeSettingsRepo) UpdateStatus(_ context.Context, adminID uint, status quota.Status) error {
	f.rows[adminID].status = status
	f.statusWrites++
	return nil
}

func (f *fakeSettingsRepo) UpdateTrafficWarningCursor(_ context.Context, adminID uint, threshold *int) error {
	f.rows[adminID].trafficCursor = threshold
	return nil
}

func (f *fakeSettingsRepo) UpdateExpiryWarningTimestamp(_ context.Context, adminID uint, at *time.Time) error {
	f.rows[adminID].expirySentAt = at
	return nil
}

type fakeUsageRepo struct {
	usedBytes    map[uint]int64
	createdBytes map[uint]int64
	counts       map[uint]quota.UserCounts
}

func (f *fakeUsageRepo) UsedTrafficBytes(_ context.Context, adminID uint) (int64, error) {
	return f.usedBytes[adminID], nil
}

func (f *fakeUsageRepo) CreatedTrafficBytes(_ context.Context, adminID uint) (int64, error) {
	return f.createdBytes[adminID], nil
}

func (f *fakeUsageRepo) CountUsers(_ context.Context, adminID uint) (quota.UserCounts, error) {
	return f.counts[adminID], nil
}

type archiveEntry struct {
	adminID uint
	used    quota.GBValue
}

type fakeArchiveRepo struct {
	entries []archiveEntry
}

func (f *fakeArchiveRepo) Append(_ context.Context, adminID uint, used quota.GBValue, _ time.Time) error {
	f.entries = append(f.entries, archiveEntry{adminID: adminID, used: used})
	return nil
}

type fakeRuleStore struct {
	applied map[quota.PolicyKind]quota.PolicyRule
}

func newFakeRuleStore() *fakeRuleStore {
	return &fakeRuleStore{applied: make(map[quota.PolicyKind]quota.PolicyRule)}
}

func (f *fakeRuleStore) Members(_ context.Context, kind quota.PolicyKind) (*setutil.UintSet, error) {
	rule, ok := f.applied[kind]
	if !ok || rule.Members == nil {
		return setutil.NewUintSet(), nil
	}
	return setutil.NewUintSet(rule.Members.Sorted()...), nil
}

func (f *fakeRuleStore) Apply(_ context.Context, rule quota.PolicyRule) error {
	f.applied[rule.Kind] = rule
	return nil
}

type sentMessage struct {
	recipient string
	text      string
	choices   int
}

type fakeNotifier struct {
	sent    []sentMessage
	failing bool
}

func (f *fakeNotifier) Send(_ context.Context, recipient string, text string) error {
	if f.failing {
		return fmt.Errorf("delivery failed")
	}
	f.sent = append(f.sent, sentMessage{recipient: recipient, text: text})
	return nil
}

func (f *fakeNotifier) SendWithChoices(_ context.Context, recipient string, text string, choices []Choice) error {
	if f.failing {
		return fmt.Errorf("delivery failed")
	}
	f.sent = append(f.sent, sentMessage{recipient: recipient, text: text, choices: len(choices)})
	return nil
}

func int64Ptr(v int64) *int64 { return &v }
func intPtr(v int) *int       { return &v }

type fixture struct {
	service  *Service
	admins   *fakeAdminRepo
	settings *fakeSettingsRepo
	usage    *fakeUsageRepo
	archive  *fakeArchiveRepo
	rules    *fakeRuleStore
	notifier *fakeNotifier
}

func newFixture(owners []string) *fixture {
	f := &fixture{
		admins: &fakeAdminRepo{},
		settings: &fakeSettingsRepo{
			rows: make(map[uint]*settingsRow),
		},
		usage: &fakeUsageRepo{
			usedBytes:    make(map[uint]int64),
			createdBytes: make(map[uint]int64),
			counts:       make(map[uint]quota.UserCounts),
		},
		archive:  &fakeArchiveRepo{},
		rules:    newFakeRuleStore(),
		notifier: &fakeNotifier{},
	}
	f.service = NewService(f.admins, f.settings, f.usage, f.archive, f.rules,
		f.notifier, nil, owners, i18n.LanguageEN, logger.NewLogger())
	return f
}

func (f *fixture) addTenant(id uint, chatID int64, row *settingsRow) {
	f.admins.admins = append(f.admins.admins,
		quota.ReconstructAdmin(id, fmt.Sprintf("admin%d", id), &chatID))
	if row != nil {
		if row.mode == "" {
			row.mode = quota.ModeUsed
		}
		if row.status == (quota.Status{}) {
			row.status = quota.DefaultStatus()
		}
		f.settings.rows[id] = row
	}
}

func TestRunTickNotifiesExhaustionOnce(t *testing.T) {
	f := newFixture([]string{"9"})
	f.addTenant(41, 100, &settingsRow{total: int64Ptr(10 * gb)})
	f.usage.usedBytes[41] = 11 * gb

	require.NoError(t, f.service.RunTick(context.Background()))

	require.Len(t, f.notifier.sent, 1)
	assert.Equal(t, "9", f.notifier.sent[0].recipient)
	assert.Contains(t, f.notifier.sent[0].text, "used up its traffic")
	// The message must identify the panel by name and id.
	assert.Contains(t, f.notifier.sent[0].text, "admin41")
	assert.Contains(t, f.notifier.sent[0].text, "(ID 41)")
	// Breach notifications carry the renew action.
	assert.Equal(t, 1, f.notifier.sent[0].choices)
	assert.Equal(t, quota.StateExhausted, f.settings.rows[41].status.Data)
	assert.Equal(t, 1, f.settings.statusWrites)

	// Same state again: no new transition, no new notification.
	require.NoError(t, f.service.RunTick(context.Background()))
	assert.Len(t, f.notifier.sent, 1)
	assert.Equal(t, 1, f.settings.statusWrites)
}

func TestRunTickNotifiesRecovery(t *testing.T) {
	f := newFixture([]string{"9"})
	f.addTenant(1, 100, &settingsRow{
		total:  int64Ptr(400 * gb),
		status: quota.Status{Time: quota.StateActive, Data: quota.StateExhausted, Users: quota.StateActive},
	})
	f.usage.usedBytes[1] = 50 * gb

	require.NoError(t, f.service.RunTick(context.Background()))

	require.Len(t, f.notifier.sent, 1)
	assert.Contains(t, f.notifier.sent[0].text, "has traffic again")
	// Recoveries are plain messages with no inline actions.
	assert.Equal(t, 0, f.notifier.sent[0].choices)
	assert.Equal(t, quota.StateActive, f.settings.rows[1].status.Data)
}

func TestRunTickSkipsTenantsWithoutSettings(t *testing.T) {
	f := newFixture([]string{"9"})
	f.addTenant(1, 100, nil)
	f.addTenant(2, 200, &settingsRow{total: int64Ptr(10 * gb)})
	f.usage.usedBytes[2] = 11 * gb

	require.NoError(t, f.service.RunTick(context.Background()))

	// Only the configured tenant produced activity.
	require.Len(t, f.notifier.sent, 1)
	assert.Contains(t, f.notifier.sent[0].text, "admin2")
}

func TestTrafficWarningCursorAdvancesOnlyOnDelivery(t *testing.T) {
	f := newFixture(nil)
	// 400 GB allowance, 150 GB used: remaining 250 sits in the 300 band.
	f.addTenant(1, 100, &settingsRow{total: int64Ptr(400 * gb)})
	f.usage.usedBytes[1] = 150 * gb

	f.notifier.failing = true
	require.NoError(t, f.service.RunTick(context.Background()))
	assert.Nil(t, f.settings.rows[1].trafficCursor, "cursor advanced despite failed delivery")

	f.notifier.failing = false
	require.NoError(t, f.service.RunTick(context.Background()))
	require.NotNil(t, f.settings.rows[1].trafficCursor)
	assert.Equal(t, 300, *f.settings.rows[1].trafficCursor)
	require.Len(t, f.notifier.sent, 1)
	assert.Contains(t, f.notifier.sent[0].text, "below 300 GB")

	// Cursor set: the same band stays quiet.
	require.NoError(t, f.service.RunTick(context.Background()))
	assert.Len(t, f.notifier.sent, 1)
}

func TestTrafficLadderResetsAboveTopThreshold(t *testing.T) {
	f := newFixture(nil)
	f.addTenant(1, 100, &settingsRow{
		total:         int64Ptr(500 * gb),
		trafficCursor: intPtr(300),
	})
	f.usage.usedBytes[1] = 10 * gb

	require.NoError(t, f.service.RunTick(context.Background()))

	assert.Nil(t, f.settings.rows[1].trafficCursor)
	assert.Empty(t, f.notifier.sent)
}

func TestExpiryWarningFiresAndRecordsTimestamp(t *testing.T) {
	f := newFixture(nil)
	expiry := time.Now().Add(5 * 24 * time.Hour)
	f.addTenant(1, 100, &settingsRow{expiry: &expiry})

	require.NoError(t, f.service.RunTick(context.Background()))

	require.Len(t, f.notifier.sent, 1)
	assert.Contains(t, f.notifier.sent[0].text, "expires in 7 days")
	require.NotNil(t, f.settings.rows[1].expirySentAt)

	// The 7-day rung never fires twice in one countdown.
	require.NoError(t, f.service.RunTick(context.Background()))
	assert.Len(t, f.notifier.sent, 1)
}

func TestExpiredTenantIsDeactivated(t *testing.T) {
	f := newFixture([]string{"9"})
	expiry := time.Now().Add(-24 * time.Hour)
	f.addTenant(1, 100, &settingsRow{expiry: &expiry})

	require.NoError(t, f.service.RunTick(context.Background()))

	require.Len(t, f.notifier.sent, 1)
	assert.Equal(t, "9", f.notifier.sent[0].recipient)
	assert.Contains(t, f.notifier.sent[0].text, "has expired")
	assert.Equal(t, quota.StateExpired, f.settings.rows[1].status.Time)
}

func TestHardBlockProjectsExternallyDisabledTenants(t *testing.T) {
	f := newFixture(nil)
	f.addTenant(1, 100, &settingsRow{
		status: quota.Status{Time: quota.StateActive, Data: quota.StateActive, Users: quota.StateDisabled},
	})
	f.addTenant(2, 200, &settingsRow{})

	require.NoError(t, f.service.RunTick(context.Background()))

	rule := f.rules.applied[quota.PolicyHardBlock]
	assert.True(t, rule.Members.Contains(1))
	assert.False(t, rule.Members.Contains(2))
	// The flag belongs to the control surface: no transition, no message.
	assert.Empty(t, f.notifier.sent)
	assert.Equal(t, quota.StateDisabled, f.settings.rows[1].status.Users)
}

func TestCreatedModeOverageBuildsCapRule(t *testing.T) {
	f := newFixture(nil)
	f.addTenant(1, 100, &settingsRow{
		total: int64Ptr(100 * gb),
		mode:  quota.ModeCreated,
	})
	f.usage.createdBytes[1] = 120 * gb

	require.NoError(t, f.service.RunTick(context.Background()))

	rule := f.rules.applied[quota.PolicyTrafficOverage]
	require.NotNil(t, rule.Caps)
	assert.Equal(t, 100*gb, rule.Caps[1])
}

func TestUserOverageMembershipIsAdditive(t *testing.T) {
	f := newFixture(nil)
	// Tenant 2 is at its limit; tenant 9 was blocked by an earlier pass
	// and is not part of this one.
	f.addTenant(2, 200, &settingsRow{limit: intPtr(5)})
	f.usage.counts[2] = quota.UserCounts{Total: 5, Active: 5}
	f.rules.applied[quota.PolicyUserOverage] = quota.NewUserOverageRule(setutil.NewUintSet(9))

	require.NoError(t, f.service.RunTick(context.Background()))

	rule := f.rules.applied[quota.PolicyUserOverage]
	assert.True(t, rule.Members.Contains(2), "limited tenant not added")
	assert.True(t, rule.Members.Contains(9), "unrelated member dropped")

	// Entering the set announces the block once, to the tenant chat.
	require.Len(t, f.notifier.sent, 1)
	assert.Equal(t, "200", f.notifier.sent[0].recipient)
	assert.Contains(t, f.notifier.sent[0].text, "user limit")

	// Tenant 2 frees a slot: it leaves the set, tenant 9 stays.
	f.usage.counts[2] = quota.UserCounts{Total: 3, Active: 3}
	require.NoError(t, f.service.RunTick(context.Background()))

	rule = f.rules.applied[quota.PolicyUserOverage]
	assert.False(t, rule.Members.Contains(2))
	assert.True(t, rule.Members.Contains(9))
	assert.Len(t, f.notifier.sent, 1)
}

func TestNotificationsFanOutToOwners(t *testing.T) {
	f := newFixture([]string{"555", "556"})
	f.addTenant(1, 100, &settingsRow{total: int64Ptr(10 * gb)})
	f.usage.usedBytes[1] = 11 * gb

	require.NoError(t, f.service.RunTick(context.Background()))

	// The transition goes to every owner; the tenant chat stays quiet.
	require.Len(t, f.notifier.sent, 2)
	assert.Equal(t, "555", f.notifier.sent[0].recipient)
	assert.Equal(t, "556", f.notifier.sent[1].recipient)
}

func TestLadderWarningFallsBackToOwners(t *testing.T) {
	f := newFixture([]string{"9"})
	// No Telegram contact bound to the tenant.
	f.admins.admins = append(f.admins.admins, quota.ReconstructAdmin(1, "admin1", nil))
	f.settings.rows[1] = &settingsRow{
		total:  int64Ptr(400 * gb),
		mode:   quota.ModeUsed,
		status: quota.DefaultStatus(),
	}
	f.usage.usedBytes[1] = 150 * gb

	require.NoError(t, f.service.RunTick(context.Background()))

	require.Len(t, f.notifier.sent, 1)
	assert.Equal(t, "9", f.notifier.sent[0].recipient)
	assert.Contains(t, f.notifier.sent[0].text, "below 300 GB")
	require.NotNil(t, f.settings.rows[1].trafficCursor)
	assert.Equal(t, 300, *f.settings.rows[1].trafficCursor)
}

func TestLadderCursorHoldsWithNoReachableRecipient(t *testing.T) {
	f := newFixture(nil)
	// No tenant contact and no owners: the warning has nowhere to go and
	// must stay due for the next pass.
	f.admins.admins = append(f.admins.admins, quota.ReconstructAdmin(1, "admin1", nil))
	f.settings.rows[1] = &settingsRow{
		total:  int64Ptr(400 * gb),
		mode:   quota.ModeUsed,
		status: quota.DefaultStatus(),
	}
	f.usage.usedBytes[1] = 150 * gb

	require.NoError(t, f.service.RunTick(context.Background()))

	assert.Empty(t, f.notifier.sent)
	assert.Nil(t, f.settings.rows[1].trafficCursor, "cursor advanced with no delivery attempted")
}

func TestSendCapacityWarnings(t *testing.T) {
	f := newFixture(nil)
	f.addTenant(1, 100, &settingsRow{limit: intPtr(10), total: int64Ptr(50 * gb)})
	f.addTenant(2, 200, &settingsRow{limit: intPtr(10)})
	f.usage.counts[1] = quota.UserCounts{Total: 8, Active: 7} // 3 slots left, warn
	f.usage.counts[2] = quota.UserCounts{Total: 3, Active: 2} // 8 slots left, quiet
	f.usage.usedBytes[1] = 20 * gb

	require.NoError(t, f.service.SendCapacityWarnings(context.Background()))

	require.Len(t, f.notifier.sent, 1)
	assert.Equal(t, "100", f.notifier.sent[0].recipient)
	assert.Contains(t, f.notifier.sent[0].text, "3 user slots")
	assert.Contains(t, f.notifier.sent[0].text, "30.00 GB")
}

func TestArchiveUsage(t *testing.T) {
	f := newFixture(nil)
	f.addTenant(1, 100, &settingsRow{total: int64Ptr(50 * gb)})
	f.addTenant(2, 200, nil) // unconfigured: no sample
	f.usage.usedBytes[1] = 15 * gb

	require.NoError(t, f.service.ArchiveUsage(context.Background()))

	require.Len(t, f.archive.entries, 1)
	assert.Equal(t, uint(1), f.archive.entries[0].adminID)
	assert.Equal(t, quota.GBValue(15), f.archive.entries[0].used)
}
