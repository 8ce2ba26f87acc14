package notification

import (
	"go.uber.org/zap"

	types "github.com/iidmage/backoffice/internal/types/commande"
)

// AdminNotifier sends best-effort courtesy emails to the admin (and acting
// user) when a commande is created or meaningfully updated. Delivery runs
// detached from the request; failures are logged and never propagated.
type AdminNotifier struct {
	mailer      Mailer
	adminEmail  string
	frontendURL string
	log         *zap.Logger
}

func NewAdminNotifier(mailer Mailer, adminEmail, frontendURL string, log *zap.Logger) *AdminNotifier {
	return &AdminNotifier{mailer: mailer, adminEmail: adminEmail, frontendURL: frontendURL, log: log}
}

func (a *AdminNotifier) CommandeCreated(c *types.Commande, actorEmail string) {
	subject, text, html := adminEmail(a.frontendURL, changeCreated, c, "", nil)
	a.send(c.ID, actorEmail, subject, text, html)
}

func (a *AdminNotifier) CommandeUpdated(before, after *types.Commande, actorEmail string) {
	// Only email when something worth reading changed.
	sameEtat := before.Etat == after.Etat
	samePose := formatDateShort(before.DatePose) == formatDateShort(after.DatePose)
	if sameEtat && samePose {
		return
	}
	subject, text, html := adminEmail(a.frontendURL, changeUpdated, after, before.Etat, before.DatePose)
	a.send(after.ID, actorEmail, subject, text, html)
}

func (a *AdminNotifier) send(commandeID, actorEmail, subject, text, html string) {
	to := uniqEmails(a.adminEmail, actorEmail)
	if len(to) == 0 {
		return
	}
	go func() {
		if err := a.mailer.Send(to, subject, text, html); err != nil {
			a.log.Warn("admin email", zap.String("commande", commandeID), zap.Error(err))
		}
	}()
}
