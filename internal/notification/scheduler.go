// Package notification schedules per-milestone email reminders and delivers
// them from a periodic background sweep.
package notification

import (
	"context"
	"time"

	"github.com/iidmage/backoffice/internal/calendar"
	types "github.com/iidmage/backoffice/internal/types/commande"
	notiftypes "github.com/iidmage/backoffice/internal/types/notification"
)

// Reminders fire at 08:00 local time.
const fireHour = 8

// Repository is the notification-row store the scheduler and sweep share.
type Repository interface {
	ReplacePending(ctx context.Context, commandeID string, kinds []types.MilestoneKind, rows []notiftypes.Notification) error
	DeletePending(ctx context.Context, commandeID string, kinds []types.MilestoneKind) error
	ListDue(ctx context.Context, now time.Time, limit int) ([]notiftypes.Notification, error)
	MarkSent(ctx context.Context, id int64, at time.Time, note string) error
	MarkFailed(ctx context.Context, id int64, at time.Time, errText string) error
}

type Scheduler struct {
	repo Repository
	now  func() time.Time
}

func NewScheduler(repo Repository) *Scheduler {
	return &Scheduler{repo: repo, now: time.Now}
}

// Recreate replaces every pending email reminder of the commande with a fresh
// set derived from the given milestone dates: upcoming (2 business days
// before), due (same day) and overdue (1 business day after), each at 08:00.
// Candidates not strictly in the future are dropped, which is what makes the
// call idempotent and safe to run on every date edit.
func (s *Scheduler) Recreate(ctx context.Context, commandeID string, dates types.MilestoneDates, actorEmail string) error {
	now := s.now()

	var actor *string
	if actorEmail != "" {
		actor = &actorEmail
	}

	var rows []notiftypes.Notification
	for _, kind := range types.Kinds {
		date := dates.For(kind)
		if date == nil {
			continue
		}
		base := calendar.DateOnly(*date)

		candidates := []time.Time{
			calendar.AtHour(calendar.SubBusinessDays(base, 2), fireHour),
			calendar.AtHour(base, fireHour),
			calendar.AtHour(calendar.AddBusinessDays(base, 1), fireHour),
		}
		for _, dueAt := range candidates {
			if !dueAt.After(now) {
				continue
			}
			rows = append(rows, notiftypes.Notification{
				CommandeID: commandeID,
				Kind:       kind,
				Channel:    notiftypes.ChannelEmail,
				DueAt:      dueAt,
				Status:     notiftypes.StatusPending,
				ActorEmail: actor,
			})
		}
	}

	return s.repo.ReplacePending(ctx, commandeID, types.Kinds, rows)
}

// CancelKinds drops pending reminders for milestones that just completed.
func (s *Scheduler) CancelKinds(ctx context.Context, commandeID string, kinds []types.MilestoneKind) error {
	return s.repo.DeletePending(ctx, commandeID, kinds)
}
