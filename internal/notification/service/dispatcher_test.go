package service

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/bwmarrin/snowflake"
	"github.com/haulmatic/fleetguard/internal/clock"
	notificationdomain "github.com/haulmatic/fleetguard/internal/notification/domain"
	"github.com/haulmatic/fleetguard/internal/ratelimit"
	userdomain "github.com/haulmatic/fleetguard/internal/user/domain"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"
	"gorm.io/gorm"
)

type fakeNotificationRepo struct {
	records map[snowflake.ID]*notificationdomain.Notification
}

func newFakeNotificationRepo() *fakeNotificationRepo {
	return &fakeNotificationRepo{records: map[snowflake.ID]*notificationdomain.Notification{}}
}

func (r *fakeNotificationRepo) Insert(_ context.Context, _ *gorm.DB, n *notificationdomain.Notification) error {
	cp := *n
	r.records[n.ID] = &cp
	return nil
}

func (r *fakeNotificationRepo) MarkSent(_ context.Context, _ *gorm.DB, id snowflake.ID, resendID string, at time.Time) error {
	rec, ok := r.records[id]
	if !ok {
		return notificationdomain.ErrNotificationNotFound
	}
	rec.Status = notificationdomain.StatusSent
	if resendID != "" {
		rec.ResendID = &resendID
	}
	rec.SentAt = &at
	rec.UpdatedAt = at
	return nil
}

func (r *fakeNotificationRepo) MarkFailed(_ context.Context, _ *gorm.DB, id snowflake.ID, reason string, at time.Time) error {
	rec, ok := r.records[id]
	if !ok {
		return notificationdomain.ErrNotificationNotFound
	}
	rec.Status = notificationdomain.StatusFailed
	rec.FailureReason = &reason
	rec.UpdatedAt = at
	return nil
}

func (r *fakeNotificationRepo) UpdateStatusByResendID(_ context.Context, _ *gorm.DB, resendID string, status notificationdomain.Status, reason *string, at time.Time) (bool, error) {
	for _, rec := range r.records {
		if rec.ResendID != nil && *rec.ResendID == resendID {
			rec.Status = status
			rec.FailureReason = reason
			rec.UpdatedAt = at
			return true, nil
		}
	}
	return false, nil
}

func (r *fakeNotificationRepo) ExistsWithInterval(_ context.Context, _ *gorm.DB, userID, vehicleID snowflake.ID, typ notificationdomain.Type, days int) (bool, error) {
	for _, rec := range r.records {
		if rec.UserID == userID && rec.VehicleID == vehicleID && rec.Type == typ &&
			rec.Status != notificationdomain.StatusFailed &&
			rec.DaysBeforeExpiry != nil && *rec.DaysBeforeExpiry == days {
			return true, nil
		}
	}
	return false, nil
}

func (r *fakeNotificationRepo) ExistsSince(_ context.Context, _ *gorm.DB, userID, vehicleID snowflake.ID, typ notificationdomain.Type, cutoff time.Time) (bool, error) {
	for _, rec := range r.records {
		if rec.UserID == userID && rec.VehicleID == vehicleID && rec.Type == typ &&
			rec.Status != notificationdomain.StatusFailed && rec.CreatedAt.After(cutoff) {
			return true, nil
		}
	}
	return false, nil
}

func (r *fakeNotificationRepo) only(t *testing.T) *notificationdomain.Notification {
	t.Helper()
	require.Len(t, r.records, 1)
	for _, rec := range r.records {
		return rec
	}
	return nil
}

type fakeSender struct {
	id    string
	err   error
	calls int
}

func (f *fakeSender) send() (string, error) {
	f.calls++
	if f.err != nil {
		return "", f.err
	}
	return f.id, nil
}

func (f *fakeSender) Send(_ context.Context, _ []string, _, _ string) (string, error) {
	return f.send()
}

type fakeSMSSender struct{ fakeSender }

func (f *fakeSMSSender) Send(_ context.Context, _, _ string) (string, error) {
	return f.send()
}

type fakePushSender struct{ fakeSender }

func (f *fakePushSender) Send(_ context.Context, _, _, _ string) (string, error) {
	return f.send()
}

type dispatcherFixture struct {
	dispatcher *Dispatcher
	repo       *fakeNotificationRepo
	clock      *clock.FakeClock
	email      *fakeSender
	sms        *fakeSMSSender
}

func newDispatcherFixture(t *testing.T) *dispatcherFixture {
	t.Helper()

	fc := clock.NewFakeClock(time.Date(2024, 7, 1, 6, 0, 0, 0, time.UTC))
	node, err := snowflake.NewNode(7)
	require.NoError(t, err)

	repo := newFakeNotificationRepo()
	emailProv := &fakeSender{id: "re-001"}
	smsProv := &fakeSMSSender{fakeSender{id: "sm-001"}}

	d := &Dispatcher{
		log:      zap.NewNop(),
		genID:    node,
		clock:    fc,
		repo:     repo,
		limiter:  ratelimit.NewLocalBucket(fc),
		email:    emailProv,
		sms:      smsProv,
		whatsapp: &fakeSMSSender{fakeSender{id: "wa-001"}},
		push:     &fakePushSender{fakeSender{id: "pu-001"}},
	}
	// Back off by advancing the fake clock instead of sleeping.
	d.sleep = func(_ context.Context, wait time.Duration) error {
		fc.Advance(wait + time.Second)
		return nil
	}

	return &dispatcherFixture{dispatcher: d, repo: repo, clock: fc, email: emailProv, sms: smsProv}
}

func reachableUser() userdomain.User {
	return userdomain.User{
		ID:             snowflake.ID(101),
		Email:          "owner@example.com",
		Phone:          "+94771234567",
		DeviceToken:    "tok-1",
		NotifyEmail:    true,
		NotifySMS:      true,
		NotifyWhatsApp: true,
		NotifyPush:     true,
		Active:         true,
	}
}

func taxReminderDelivery(channel notificationdomain.Channel) notificationdomain.Delivery {
	days := 7
	return notificationdomain.Delivery{
		User:             reachableUser(),
		VehicleID:        snowflake.ID(202),
		Type:             notificationdomain.TypeTaxExpiryReminder,
		Channel:          channel,
		DaysBeforeExpiry: &days,
		Message: notificationdomain.Message{
			Subject: "Tax expires in 7 days",
			Body:    "Revenue licence for LB-1001 expires on 2024-07-08.",
		},
	}
}

func TestDispatchSendsAndRecords(t *testing.T) {
	fx := newDispatcherFixture(t)

	outcome, err := fx.dispatcher.Dispatch(context.Background(), taxReminderDelivery(notificationdomain.ChannelEmail))
	require.NoError(t, err)
	assert.Equal(t, notificationdomain.OutcomeSent, outcome)
	assert.Equal(t, 1, fx.email.calls)

	rec := fx.repo.only(t)
	assert.Equal(t, notificationdomain.StatusSent, rec.Status)
	require.NotNil(t, rec.ResendID)
	assert.Equal(t, "re-001", *rec.ResendID)
	require.NotNil(t, rec.DaysBeforeExpiry)
	assert.Equal(t, 7, *rec.DaysBeforeExpiry)
	require.NotNil(t, rec.SentAt)
}

func TestDispatchSkipsWhenNotOptedIn(t *testing.T) {
	fx := newDispatcherFixture(t)

	delivery := taxReminderDelivery(notificationdomain.ChannelSMS)
	delivery.User.NotifySMS = false

	outcome, err := fx.dispatcher.Dispatch(context.Background(), delivery)
	require.NoError(t, err)
	assert.Equal(t, notificationdomain.OutcomeSkipped, outcome)
	assert.Empty(t, fx.repo.records)
	assert.Zero(t, fx.sms.calls)
}

func TestDispatchSkipsWhenContactMissing(t *testing.T) {
	fx := newDispatcherFixture(t)

	delivery := taxReminderDelivery(notificationdomain.ChannelEmail)
	delivery.User.Email = ""

	outcome, err := fx.dispatcher.Dispatch(context.Background(), delivery)
	require.NoError(t, err)
	assert.Equal(t, notificationdomain.OutcomeSkipped, outcome)
	assert.Empty(t, fx.repo.records)
}

func TestDispatchDryRunWritesNothing(t *testing.T) {
	fx := newDispatcherFixture(t)

	delivery := taxReminderDelivery(notificationdomain.ChannelEmail)
	delivery.DryRun = true

	outcome, err := fx.dispatcher.Dispatch(context.Background(), delivery)
	require.NoError(t, err)
	assert.Equal(t, notificationdomain.OutcomeSent, outcome)
	assert.Empty(t, fx.repo.records)
	assert.Zero(t, fx.email.calls)
}

func TestDispatchSMSBacksOffThenSends(t *testing.T) {
	fx := newDispatcherFixture(t)
	ctx := context.Background()

	first, err := fx.dispatcher.Dispatch(ctx, taxReminderDelivery(notificationdomain.ChannelSMS))
	require.NoError(t, err)
	require.Equal(t, notificationdomain.OutcomeSent, first)

	// The second send exhausts the per-minute budget and must wait out
	// the refill before the provider is called again.
	second, err := fx.dispatcher.Dispatch(ctx, taxReminderDelivery(notificationdomain.ChannelSMS))
	require.NoError(t, err)
	assert.Equal(t, notificationdomain.OutcomeSent, second)
	assert.Equal(t, 2, fx.sms.calls)
	assert.Len(t, fx.repo.records, 2)
}

func TestDispatchRateLimitExhaustionFails(t *testing.T) {
	fx := newDispatcherFixture(t)
	ctx := context.Background()

	// Pin the clock so backoff never earns a token back.
	fx.dispatcher.sleep = func(context.Context, time.Duration) error { return nil }

	first, err := fx.dispatcher.Dispatch(ctx, taxReminderDelivery(notificationdomain.ChannelSMS))
	require.NoError(t, err)
	require.Equal(t, notificationdomain.OutcomeSent, first)

	second, err := fx.dispatcher.Dispatch(ctx, taxReminderDelivery(notificationdomain.ChannelSMS))
	require.NoError(t, err)
	assert.Equal(t, notificationdomain.OutcomeFailed, second)
	assert.Equal(t, 1, fx.sms.calls)

	var failed *notificationdomain.Notification
	for _, rec := range fx.repo.records {
		if rec.Status == notificationdomain.StatusFailed {
			failed = rec
		}
	}
	require.NotNil(t, failed)
	require.NotNil(t, failed.FailureReason)
	assert.Equal(t, ratelimit.ErrRateLimited.Error(), *failed.FailureReason)
}

func TestDispatchProviderFailureRecorded(t *testing.T) {
	fx := newDispatcherFixture(t)
	fx.email.err = errors.New("gateway timeout")

	outcome, err := fx.dispatcher.Dispatch(context.Background(), taxReminderDelivery(notificationdomain.ChannelEmail))
	require.NoError(t, err)
	assert.Equal(t, notificationdomain.OutcomeFailed, outcome)

	rec := fx.repo.only(t)
	assert.Equal(t, notificationdomain.StatusFailed, rec.Status)
	require.NotNil(t, rec.FailureReason)
	assert.Equal(t, "gateway timeout", *rec.FailureReason)
	assert.Nil(t, rec.ResendID)
}

func TestHandleProviderEventMarksDelivered(t *testing.T) {
	fx := newDispatcherFixture(t)
	ctx := context.Background()

	_, err := fx.dispatcher.Dispatch(ctx, taxReminderDelivery(notificationdomain.ChannelEmail))
	require.NoError(t, err)

	require.NoError(t, fx.dispatcher.HandleProviderEvent(ctx, "email.delivered", "re-001"))
	rec := fx.repo.only(t)
	assert.Equal(t, notificationdomain.StatusDelivered, rec.Status)
}

func TestHandleProviderEventBounceMarksFailed(t *testing.T) {
	fx := newDispatcherFixture(t)
	ctx := context.Background()

	_, err := fx.dispatcher.Dispatch(ctx, taxReminderDelivery(notificationdomain.ChannelEmail))
	require.NoError(t, err)

	require.NoError(t, fx.dispatcher.HandleProviderEvent(ctx, "email.bounced", "re-001"))
	rec := fx.repo.only(t)
	assert.Equal(t, notificationdomain.StatusFailed, rec.Status)
	require.NotNil(t, rec.FailureReason)
	assert.Equal(t, "email.bounced", *rec.FailureReason)
}

func TestHandleProviderEventUnknownIDIsIgnored(t *testing.T) {
	fx := newDispatcherFixture(t)

	err := fx.dispatcher.HandleProviderEvent(context.Background(), "email.delivered", "no-such-id")
	assert.NoError(t, err)
}
