package notification

import (
	"context"
	"database/sql"
	"errors"
	"time"

	"go.uber.org/zap"

	types "github.com/iidmage/backoffice/internal/types/commande"
	notiftypes "github.com/iidmage/backoffice/internal/types/notification"
)

// Error text on a FAILED row is bounded so a chatty SMTP server cannot bloat
// the table.
const maxErrorLen = 500

// CommandeSource is the read side the sweep needs; the missing-row case is
// signalled with sql.ErrNoRows.
type CommandeSource interface {
	GetCommande(ctx context.Context, id string) (*types.Commande, error)
}

// Sweeper delivers due reminders. One sweep tick processes its whole batch
// sequentially before the next tick, keeping outbound SMTP to a single
// connection and admin inbox ordering roughly chronological.
type Sweeper struct {
	repo        Repository
	commandes   CommandeSource
	mailer      Mailer
	adminEmail  string
	frontendURL string
	batch       int
	log         *zap.Logger
	now         func() time.Time
}

func NewSweeper(repo Repository, commandes CommandeSource, mailer Mailer, adminEmail, frontendURL string, batch int, log *zap.Logger) *Sweeper {
	if batch <= 0 {
		batch = 25
	}
	return &Sweeper{
		repo:        repo,
		commandes:   commandes,
		mailer:      mailer,
		adminEmail:  adminEmail,
		frontendURL: frontendURL,
		batch:       batch,
		log:         log,
		now:         time.Now,
	}
}

// Run sweeps on a fixed interval until the context is cancelled.
func (sw *Sweeper) Run(ctx context.Context, interval time.Duration) {
	ticker := time.NewTicker(interval)
	defer ticker.Stop()

	sw.log.Info("notification sweeper started", zap.Duration("interval", interval))
	for {
		select {
		case <-ctx.Done():
			sw.log.Info("notification sweeper stopped")
			return
		case <-ticker.C:
			sw.Sweep(ctx)
		}
	}
}

// Sweep processes one batch of due reminders. Row failures are recorded on
// the row and never abort the batch.
func (sw *Sweeper) Sweep(ctx context.Context) {
	due, err := sw.repo.ListDue(ctx, sw.now(), sw.batch)
	if err != nil {
		sw.log.Error("list due notifications", zap.Error(err))
		return
	}
	for _, n := range due {
		sw.process(ctx, n)
	}
}

func (sw *Sweeper) process(ctx context.Context, n notiftypes.Notification) {
	now := sw.now()

	c, err := sw.commandes.GetCommande(ctx, n.CommandeID)
	if errors.Is(err, sql.ErrNoRows) {
		sw.markFailed(ctx, n, now, "commande not found")
		return
	}
	if err != nil {
		sw.markFailed(ctx, n, now, "load commande: "+err.Error())
		return
	}

	// Race with a concurrent completion: work is done, the reminder is stale.
	if c.MilestoneDoneAt(n.Kind) != nil {
		if err := sw.repo.MarkSent(ctx, n.ID, now, "skipped (already done)"); err != nil {
			sw.log.Error("mark notification skipped", zap.Int64("id", n.ID), zap.Error(err))
		}
		return
	}

	actor := ""
	if n.ActorEmail != nil {
		actor = *n.ActorEmail
	}
	to := uniqEmails(sw.adminEmail, actor)

	subject, text, html := reminderEmail(sw.frontendURL, c, n.Kind, n.DueAt)
	if err := sw.mailer.Send(to, subject, text, html); err != nil {
		sw.markFailed(ctx, n, now, err.Error())
		return
	}
	if err := sw.repo.MarkSent(ctx, n.ID, now, ""); err != nil {
		sw.log.Error("mark notification sent", zap.Int64("id", n.ID), zap.Error(err))
	}
}

func (sw *Sweeper) markFailed(ctx context.Context, n notiftypes.Notification, at time.Time, errText string) {
	if len(errText) > maxErrorLen {
		errText = errText[:maxErrorLen]
	}
	if err := sw.repo.MarkFailed(ctx, n.ID, at, errText); err != nil {
		sw.log.Error("mark notification failed", zap.Int64("id", n.ID), zap.Error(err))
	}
}
