package notification

import (
	"fmt"
	"net/url"
	"strings"
	"time"

	"github.com/iidmage/backoffice/internal/calendar"
	types "github.com/iidmage/backoffice/internal/types/commande"
)

func shortID(id string) string {
	if len(id) > 8 {
		return id[:8]
	}
	return id
}

func formatDateShort(t *time.Time) string {
	if t == nil {
		return "—"
	}
	return t.Format("2006-01-02")
}

func commandeURL(base, id string) string {
	return strings.TrimRight(base, "/") + "/commandes/" + url.PathEscape(id)
}

func refName(r *types.Ref) string {
	if r == nil {
		return "—"
	}
	return r.Name
}

func strOr(s *string) string {
	if s == nil || *s == "" {
		return "—"
	}
	return *s
}

// urgencyPrefix wires the reminder wording to the milestone's stored date
// rather than anything baked into the notification row: a reminder firing
// before the milestone date is "Proche", on the day "Aujourd'hui", after it
// "En retard".
func urgencyPrefix(dueAt time.Time, milestoneDate *time.Time) string {
	if milestoneDate == nil {
		return "Rappel"
	}
	switch diff := calendar.DaysBetween(*milestoneDate, dueAt); {
	case diff < 0:
		return "Proche"
	case diff > 0:
		return "En retard"
	default:
		return "Aujourd'hui"
	}
}

// reminderEmail renders the milestone reminder in both plain text and HTML.
func reminderEmail(frontendURL string, c *types.Commande, kind types.MilestoneKind, dueAt time.Time) (subject, text, html string) {
	prefix := urgencyPrefix(dueAt, c.MilestoneDate(kind))
	kindLabel := kind.Label()
	client := refName(c.Client)
	poseur := refName(c.Poseur)
	product := strOr(c.Product)
	due := dueAt.Format("2006-01-02")
	link := commandeURL(frontendURL, c.ID)

	subject = fmt.Sprintf("%s %s — %s (#%s)", prefix, kindLabel, client, shortID(c.ID))
	text = fmt.Sprintf("Rappel: %s\nDate: %s\n\nClient: %s\nProduit: %s\nPoseur: %s\nLien: %s",
		kindLabel, due, client, product, poseur, link)
	html = fmt.Sprintf(`<div style="font-family:system-ui,sans-serif;line-height:1.4">
  <p><b>%s: %s</b></p>
  <p><b>Date:</b> %s</p>
  <p><b>Client:</b> %s<br/><b>Produit:</b> %s<br/><b>Poseur:</b> %s</p>
  <p><a href="%s">Ouvrir la commande</a></p>
</div>`, prefix, kindLabel, due, client, product, poseur, link)
	return subject, text, html
}

type changeKind string

const (
	changeCreated changeKind = "CREATED"
	changeUpdated changeKind = "UPDATED"
)

// adminEmail renders the create/update courtesy email sent to the admin.
func adminEmail(frontendURL string, kind changeKind, c *types.Commande, etatBefore types.Etat, datePoseBefore *time.Time) (subject, text, html string) {
	base := "Nouvelle commande"
	if kind == changeUpdated {
		base = "Commande mise à jour"
	}
	client := refName(c.Client)
	link := commandeURL(frontendURL, c.ID)

	subject = fmt.Sprintf("%s — %s (#%s)", base, client, shortID(c.ID))
	text = fmt.Sprintf("%s\n\nClient: %s\nProduit: %s\nPoseur: %s\nÉtat: %s\nDate de pose: %s\nLien: %s",
		base, client, strOr(c.Product), refName(c.Poseur), c.Etat, formatDateShort(c.DatePose), link)

	var changes string
	if kind == changeUpdated {
		var items []string
		if etatBefore != c.Etat {
			items = append(items, fmt.Sprintf("<li><b>État:</b> %s → %s</li>", etatBefore, c.Etat))
		}
		if formatDateShort(datePoseBefore) != formatDateShort(c.DatePose) {
			items = append(items, fmt.Sprintf("<li><b>Date de pose:</b> %s → %s</li>",
				formatDateShort(datePoseBefore), formatDateShort(c.DatePose)))
		}
		if len(items) > 0 {
			changes = "<p><b>Changements</b></p><ul>" + strings.Join(items, "") + "</ul>"
		}
	}

	html = fmt.Sprintf(`<div style="font-family:system-ui,sans-serif;line-height:1.4">
  <p><b>%s</b></p>
  <p><b>Client:</b> %s<br/><b>Produit:</b> %s<br/><b>Poseur:</b> %s<br/><b>État:</b> %s<br/><b>Date de pose:</b> %s</p>
  <p><a href="%s">Ouvrir la commande</a></p>
  %s
</div>`, base, client, strOr(c.Product), refName(c.Poseur), c.Etat, formatDateShort(c.DatePose), link, changes)
	return subject, text, html
}
