package service

import (
	"context"
	"time"

	"github.com/bwmarrin/snowflake"
	"github.com/haulmatic/fleetguard/internal/clock"
	notificationdomain "github.com/haulmatic/fleetguard/internal/notification/domain"
	"github.com/haulmatic/fleetguard/internal/providers/email"
	"github.com/haulmatic/fleetguard/internal/providers/push"
	"github.com/haulmatic/fleetguard/internal/providers/sms"
	"github.com/haulmatic/fleetguard/internal/providers/whatsapp"
	"github.com/haulmatic/fleetguard/internal/ratelimit"
	userdomain "github.com/haulmatic/fleetguard/internal/user/domain"
	"go.uber.org/fx"
	"go.uber.org/zap"
	"gorm.io/gorm"
)

// smsRetryBudget bounds how many times a rate-limited SMS send is
// re-attempted before it is marked failed.
const smsRetryBudget = 3

type Params struct {
	fx.In

	DB       *gorm.DB
	Log      *zap.Logger
	GenID    *snowflake.Node
	Clock    clock.Clock
	Repo     notificationdomain.Repository
	Limiter  ratelimit.Limiter
	Email    email.Provider
	SMS      sms.Provider
	WhatsApp whatsapp.Provider
	Push     push.Provider
}

type Dispatcher struct {
	db       *gorm.DB
	log      *zap.Logger
	genID    *snowflake.Node
	clock    clock.Clock
	repo     notificationdomain.Repository
	limiter  ratelimit.Limiter
	email    email.Provider
	sms      sms.Provider
	whatsapp whatsapp.Provider
	push     push.Provider

	// sleep is swapped out in tests.
	sleep func(ctx context.Context, d time.Duration) error
}

func NewDispatcher(p Params) notificationdomain.Dispatcher {
	return &Dispatcher{
		db:       p.DB,
		log:      p.Log.Named("notification.dispatcher"),
		genID:    p.GenID,
		clock:    p.Clock,
		repo:     p.Repo,
		limiter:  p.Limiter,
		email:    p.Email,
		sms:      p.SMS,
		whatsapp: p.WhatsApp,
		push:     p.Push,
		sleep:    sleepContext,
	}
}

func sleepContext(ctx context.Context, d time.Duration) error {
	timer := time.NewTimer(d)
	defer timer.Stop()
	select {
	case <-ctx.Done():
		return ctx.Err()
	case <-timer.C:
		return nil
	}
}

func (d *Dispatcher) Dispatch(ctx context.Context, delivery notificationdomain.Delivery) (notificationdomain.Outcome, error) {
	contact, ok := channelContact(delivery.User, delivery.Channel)
	if !ok {
		// Opt-out or missing contact field is a silent no-op.
		d.log.Debug("recipient not reachable on channel",
			zap.Int64("user_id", int64(delivery.User.ID)),
			zap.String("channel", string(delivery.Channel)),
		)
		return notificationdomain.OutcomeSkipped, nil
	}

	if delivery.DryRun {
		d.log.Info("dry run, would send notification",
			zap.Int64("user_id", int64(delivery.User.ID)),
			zap.Int64("vehicle_id", int64(delivery.VehicleID)),
			zap.String("type", string(delivery.Type)),
			zap.String("channel", string(delivery.Channel)),
		)
		return notificationdomain.OutcomeSent, nil
	}

	now := d.clock.Now()
	record := notificationdomain.Notification{
		ID:               d.genID.Generate(),
		UserID:           delivery.User.ID,
		VehicleID:        delivery.VehicleID,
		TaxPeriodID:      delivery.TaxPeriodID,
		ExemptionID:      delivery.ExemptionID,
		Type:             delivery.Type,
		Channel:          delivery.Channel,
		Status:           notificationdomain.StatusPending,
		DaysBeforeExpiry: delivery.DaysBeforeExpiry,
		CreatedAt:        now,
		UpdatedAt:        now,
	}
	if err := d.repo.Insert(ctx, d.db, &record); err != nil {
		return notificationdomain.OutcomeFailed, err
	}

	externalID, sendErr := d.sendWithBudget(ctx, delivery.Channel, contact, delivery.Message)
	if sendErr != nil {
		d.log.Warn("notification delivery failed",
			zap.Int64("user_id", int64(delivery.User.ID)),
			zap.Int64("vehicle_id", int64(delivery.VehicleID)),
			zap.String("channel", string(delivery.Channel)),
			zap.Error(sendErr),
		)
		if err := d.repo.MarkFailed(ctx, d.db, record.ID, sendErr.Error(), d.clock.Now()); err != nil {
			return notificationdomain.OutcomeFailed, err
		}
		return notificationdomain.OutcomeFailed, nil
	}

	if err := d.repo.MarkSent(ctx, d.db, record.ID, externalID, d.clock.Now()); err != nil {
		return notificationdomain.OutcomeFailed, err
	}
	return notificationdomain.OutcomeSent, nil
}

// sendWithBudget applies the channel's rate budget, then calls the
// provider. SMS re-attempts with backoff while the budget allows.
func (d *Dispatcher) sendWithBudget(ctx context.Context, channel notificationdomain.Channel, contact string, msg notificationdomain.Message) (string, error) {
	key, rate, burst := channelBudget(channel)

	attempts := 1
	if channel == notificationdomain.ChannelSMS {
		attempts = smsRetryBudget
	}

	for attempt := 1; ; attempt++ {
		res, err := d.limiter.Allow(ctx, key, rate, burst)
		if err != nil {
			return "", err
		}
		if res.Allowed {
			break
		}
		if attempt >= attempts {
			return "", ratelimit.ErrRateLimited
		}
		d.log.Info("send rate limited, backing off",
			zap.String("channel", string(channel)),
			zap.Duration("retry_after", res.RetryAfter),
			zap.Int("attempt", attempt),
		)
		if err := d.sleep(ctx, res.RetryAfter); err != nil {
			return "", err
		}
	}

	switch channel {
	case notificationdomain.ChannelEmail:
		return d.email.Send(ctx, []string{contact}, msg.Subject, msg.Body)
	case notificationdomain.ChannelSMS:
		return d.sms.Send(ctx, contact, msg.Body)
	case notificationdomain.ChannelWhatsApp:
		return d.whatsapp.Send(ctx, contact, msg.Body)
	case notificationdomain.ChannelPush:
		return d.push.Send(ctx, contact, msg.Subject, msg.Body)
	default:
		return "", nil
	}
}

func (d *Dispatcher) HandleProviderEvent(ctx context.Context, eventType, externalID string) error {
	if externalID == "" {
		d.log.Info("provider event without message id", zap.String("event", eventType))
		return nil
	}

	status := notificationdomain.StatusDelivered
	var reason *string
	switch eventType {
	case "email.delivered", "delivered":
	case "email.bounced", "email.failed", "failed":
		status = notificationdomain.StatusFailed
		r := eventType
		reason = &r
	default:
		d.log.Info("ignoring provider event",
			zap.String("event", eventType),
			zap.String("external_id", externalID),
		)
		return nil
	}

	matched, err := d.repo.UpdateStatusByResendID(ctx, d.db, externalID, status, reason, d.clock.Now())
	if err != nil {
		return err
	}
	if !matched {
		// Senders must not be retried into failure over an unknown id.
		d.log.Info("provider event for unknown message id",
			zap.String("event", eventType),
			zap.String("external_id", externalID),
		)
	}
	return nil
}

func channelContact(user userdomain.User, channel notificationdomain.Channel) (string, bool) {
	switch channel {
	case notificationdomain.ChannelEmail:
		return user.Email, user.NotifyEmail && user.Email != ""
	case notificationdomain.ChannelSMS:
		return user.Phone, user.NotifySMS && user.Phone != ""
	case notificationdomain.ChannelWhatsApp:
		return user.Phone, user.NotifyWhatsApp && user.Phone != ""
	case notificationdomain.ChannelPush:
		return user.DeviceToken, user.NotifyPush && user.DeviceToken != ""
	default:
		return "", false
	}
}

func channelBudget(channel notificationdomain.Channel) (string, float64, int) {
	if channel == notificationdomain.ChannelSMS {
		return ratelimit.SMSKey, ratelimit.SMSRate, ratelimit.SMSBurst
	}
	return ratelimit.GenericKey, ratelimit.GenericRate, ratelimit.GenericBurst
}
