package scheduler

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/bwmarrin/snowflake"
	activitydomain "github.com/haulmatic/fleetguard/internal/activity/domain"
	exemptiondomain "github.com/haulmatic/fleetguard/internal/exemption/domain"
	notificationdomain "github.com/haulmatic/fleetguard/internal/notification/domain"
	obsmetrics "github.com/haulmatic/fleetguard/internal/observability/metrics"
	"github.com/haulmatic/fleetguard/internal/status"
	taxdomain "github.com/haulmatic/fleetguard/internal/tax/domain"
	vehicledomain "github.com/haulmatic/fleetguard/internal/vehicle/domain"
	"go.uber.org/zap"
)

// TaxRemindersJob walks the active fleet and notifies every opted-in user
// whose vehicles are expiring, expired or in penalty. Reminders fire on
// exact interval matches and dedup on (user, vehicle, type, interval);
// expired and penalty notices re-fire once per cooldown window.
func (s *Scheduler) TaxRemindersJob(ctx context.Context) error {
	ctx, run, _ := s.ensureJobRun(ctx, JobTaxReminders)
	cfg := s.reminders.Current()
	now := s.clock.Now()

	vehicles, err := s.vehicleRepo.FindActiveVehicles(ctx, s.db, s.vehicleScope)
	if err != nil {
		return err
	}
	if len(vehicles) == 0 {
		return nil
	}

	ids := make([]snowflake.ID, 0, len(vehicles))
	for _, v := range vehicles {
		ids = append(ids, v.ID)
	}
	periods, err := s.taxRepo.FindLatestForVehicles(ctx, s.db, ids)
	if err != nil {
		return err
	}

	recipients, err := s.userSvc.ReminderRecipients(ctx, s.cfg.UserScope)
	if err != nil {
		return err
	}
	if len(recipients) == 0 {
		return nil
	}

	var errs error
	for _, vehicle := range vehicles {
		period, ok := periods[vehicle.ID]
		if !ok {
			continue
		}
		st := status.TaxWith(period.EndDate, now, cfg.WarningWindowDays, cfg.PenaltyGraceDays)

		var (
			typ      notificationdomain.Type
			interval *int
		)
		switch st.State {
		case status.TaxValid:
			continue
		case status.TaxExpiringSoon:
			if !containsInt(cfg.IntervalDays, st.DaysRemaining) {
				continue
			}
			typ = notificationdomain.TypeTaxExpiryReminder
			d := st.DaysRemaining
			interval = &d
		case status.TaxExpired:
			typ = notificationdomain.TypeTaxExpired
			zero := 0
			interval = &zero
		case status.TaxPenalty:
			typ = notificationdomain.TypeTaxPenalty
		}

		msg := taxMessage(vehicle, period, st)
		channels := []notificationdomain.Channel{notificationdomain.ChannelEmail}
		if st.State == status.TaxExpired || st.State == status.TaxPenalty {
			channels = append(channels, notificationdomain.ChannelSMS)
		}

		for _, user := range recipients {
			dup, err := s.alreadyNotified(ctx, user.ID, vehicle.ID, typ, interval, cfg.ExpiredCooldownHrs, now)
			if err != nil {
				s.logItemError(run, JobTaxReminders, err, zap.String("vehicle_id", vehicle.ID.String()))
				errs = errors.Join(errs, err)
				continue
			}
			if dup {
				s.countOutcome(run, notificationdomain.OutcomeSkipped)
				continue
			}

			for _, channel := range channels {
				periodID := period.ID
				outcome, err := s.dispatcher.Dispatch(ctx, notificationdomain.Delivery{
					User:             user,
					VehicleID:        vehicle.ID,
					TaxPeriodID:      &periodID,
					Type:             typ,
					Channel:          channel,
					DaysBeforeExpiry: interval,
					Message:          msg,
					DryRun:           s.cfg.DryRun,
				})
				if err != nil {
					s.logItemError(run, JobTaxReminders, err,
						zap.String("vehicle_id", vehicle.ID.String()),
						zap.String("user_id", user.ID.String()),
					)
					errs = errors.Join(errs, err)
					continue
				}
				s.countOutcome(run, outcome)
			}
		}
	}
	return errs
}

// ExemptionRemindersJob notifies opted-in users ahead of exemption expiry
// on the same interval list as tax reminders. Dedup is persisted per
// (user, vehicle, type, interval), so re-running the job on the same day
// cannot double-send.
func (s *Scheduler) ExemptionRemindersJob(ctx context.Context) error {
	ctx, run, _ := s.ensureJobRun(ctx, JobExemptionReminders)
	cfg := s.reminders.Current()
	now := s.clock.Now()

	exemptions, err := s.exemptionRepo.FindActive(ctx, s.db, s.vehicleScope)
	if err != nil {
		return err
	}
	if len(exemptions) == 0 {
		return nil
	}

	recipients, err := s.userSvc.ReminderRecipients(ctx, s.cfg.UserScope)
	if err != nil {
		return err
	}
	if len(recipients) == 0 {
		return nil
	}

	var errs error
	for _, exemption := range exemptions {
		days := status.DaysBetween(now, exemption.EndDate)
		if !containsInt(cfg.IntervalDays, days) {
			continue
		}
		msg := exemptionMessage(exemption, days)

		for _, user := range recipients {
			dup, err := s.query.SentWithInterval(ctx, user.ID, exemption.VehicleID,
				notificationdomain.TypeExemptionExpiryReminder, days)
			if err != nil {
				s.logItemError(run, JobExemptionReminders, err, zap.String("exemption_id", exemption.ID.String()))
				errs = errors.Join(errs, err)
				continue
			}
			if dup {
				s.countOutcome(run, notificationdomain.OutcomeSkipped)
				continue
			}

			exemptionID := exemption.ID
			d := days
			outcome, err := s.dispatcher.Dispatch(ctx, notificationdomain.Delivery{
				User:             user,
				VehicleID:        exemption.VehicleID,
				ExemptionID:      &exemptionID,
				Type:             notificationdomain.TypeExemptionExpiryReminder,
				Channel:          notificationdomain.ChannelEmail,
				DaysBeforeExpiry: &d,
				Message:          msg,
				DryRun:           s.cfg.DryRun,
			})
			if err != nil {
				s.logItemError(run, JobExemptionReminders, err,
					zap.String("exemption_id", exemption.ID.String()),
					zap.String("user_id", user.ID.String()),
				)
				errs = errors.Join(errs, err)
				continue
			}
			s.countOutcome(run, outcome)
		}
	}
	return errs
}

// ExpiredExemptionsJob closes active exemptions whose end date has passed.
// ended_at is backdated to the end date so reports see the real expiry
// instant, not the sweep time.
func (s *Scheduler) ExpiredExemptionsJob(ctx context.Context) error {
	ctx, run, _ := s.ensureJobRun(ctx, JobExpiredExemptions)
	now := s.clock.Now()

	expired, err := s.exemptionRepo.FindExpiredActive(ctx, s.db, now)
	if err != nil {
		return err
	}

	var errs error
	for _, exemption := range expired {
		if s.cfg.DryRun {
			s.log.Info("dry run, would close expired exemption",
				zap.String("exemption_id", exemption.ID.String()),
				zap.String("vehicle_id", exemption.VehicleID.String()),
				zap.Time("end_date", exemption.EndDate),
			)
			run.skippedCount++
			continue
		}

		closed, err := s.exemptionRepo.CloseOut(ctx, s.db, exemption.ID,
			exemptiondomain.StatusEnded, exemption.EndDate, now)
		if err != nil {
			s.logItemError(run, JobExpiredExemptions, err, zap.String("exemption_id", exemption.ID.String()))
			errs = errors.Join(errs, err)
			continue
		}
		if !closed {
			// Another run got there first.
			run.skippedCount++
			continue
		}
		run.closedCount++
		obsmetrics.Scheduler().IncExemptionClosed()

		// Activity failures never roll back the close.
		_ = s.activitySvc.Record(ctx, activitydomain.Entry{
			Action:     "exemption.expired",
			TargetType: "exemption",
			TargetID:   exemption.ID.String(),
			VehicleID:  exemption.VehicleID,
			Metadata: map[string]any{
				"end_date": exemption.EndDate.Format(time.DateOnly),
			},
		})
	}
	return errs
}

func (s *Scheduler) alreadyNotified(
	ctx context.Context,
	userID, vehicleID snowflake.ID,
	typ notificationdomain.Type,
	interval *int,
	cooldownHrs int,
	now time.Time,
) (bool, error) {
	if typ == notificationdomain.TypeTaxExpiryReminder {
		return s.query.SentWithInterval(ctx, userID, vehicleID, typ, *interval)
	}
	cutoff := now.Add(-time.Duration(cooldownHrs) * time.Hour)
	return s.query.SentSince(ctx, userID, vehicleID, typ, cutoff)
}

func taxMessage(vehicle vehicledomain.Vehicle, period taxdomain.TaxPeriod, st status.TaxStatus) notificationdomain.Message {
	endDate := period.EndDate.Format(time.DateOnly)
	switch st.State {
	case status.TaxExpiringSoon:
		return notificationdomain.Message{
			Subject: fmt.Sprintf("Revenue licence for %s expires in %d days", vehicle.RegistrationNo, st.DaysRemaining),
			Body: fmt.Sprintf("The revenue licence for vehicle %s expires on %s. Renew before the due date to avoid penalties.",
				vehicle.RegistrationNo, endDate),
		}
	case status.TaxExpired:
		return notificationdomain.Message{
			Subject: fmt.Sprintf("Revenue licence for %s has expired", vehicle.RegistrationNo),
			Body: fmt.Sprintf("The revenue licence for vehicle %s expired on %s. Renew now to avoid a penalty.",
				vehicle.RegistrationNo, endDate),
		}
	default:
		return notificationdomain.Message{
			Subject: fmt.Sprintf("Revenue licence for %s is overdue with penalty", vehicle.RegistrationNo),
			Body: fmt.Sprintf("The revenue licence for vehicle %s expired on %s and is now in the penalty window. Renewal will incur a penalty payment.",
				vehicle.RegistrationNo, endDate),
		}
	}
}

func exemptionMessage(exemption exemptiondomain.Exemption, days int) notificationdomain.Message {
	return notificationdomain.Message{
		Subject: fmt.Sprintf("Tax exemption ends in %d days", days),
		Body: fmt.Sprintf("The tax exemption (%s) for vehicle %s ends on %s. Arrange a new tax period before it lapses.",
			exemption.Reason, exemption.VehicleID.String(), exemption.EndDate.Format(time.DateOnly)),
	}
}

func containsInt(values []int, want int) bool {
	for _, v := range values {
		if v == want {
			return true
		}
	}
	return false
}
