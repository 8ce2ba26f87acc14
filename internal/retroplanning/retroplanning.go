// Package retroplanning derives the upstream milestone dates of a commande by
// walking backward from its installation (pose) date in business days.
package retroplanning

import (
	"errors"
	"time"

	"github.com/iidmage/backoffice/internal/calendar"
	"github.com/iidmage/backoffice/internal/types/commande"
)

var ErrNoPoseDate = errors.New("date_pose is required for retroplanning")

// Default total lead time in business days when no explicit order date pins
// the start of the schedule.
const defaultLeadBusinessDays = 15

type Plan struct {
	DateCommande   time.Time
	DateProduction time.Time
	DateExpedition time.Time
	DateLivraison  time.Time
}

// Compute builds the backward schedule. Expedition and livraison stay pinned
// close to the pose date; production starts the business day after the order
// date, so extra lead time (an explicit order date far before pose) stretches
// the production window instead of delaying its start.
func Compute(datePose time.Time, dateCommande *time.Time) Plan {
	pose := calendar.DateOnly(datePose)

	cmd := calendar.SubBusinessDays(pose, defaultLeadBusinessDays)
	if dateCommande != nil {
		cmd = calendar.DateOnly(*dateCommande)
	}

	return Plan{
		DateCommande:   cmd,
		DateProduction: calendar.ToBusinessDayForward(calendar.AddBusinessDays(cmd, 1)),
		DateExpedition: calendar.SubBusinessDays(pose, 2),
		DateLivraison:  calendar.SubBusinessDays(pose, 1),
	}
}

// Apply recomputes the schedule for c and merges it in place. A field is
// replaced when overwrite is set or when it was empty; populated fields are
// otherwise preserved. Planning mode is forced to AUTO.
func Apply(c *commande.Commande, overwrite bool) error {
	if c.DatePose == nil {
		return ErrNoPoseDate
	}
	plan := Compute(*c.DatePose, c.DateCommande)

	c.PlanningType = commande.PlanningAuto
	if overwrite || c.DateCommande == nil {
		c.DateCommande = &plan.DateCommande
	}
	if overwrite || c.DateProduction == nil {
		c.DateProduction = &plan.DateProduction
	}
	if overwrite || c.DateExpedition == nil {
		c.DateExpedition = &plan.DateExpedition
	}
	if overwrite || c.DateLivraison == nil {
		c.DateLivraison = &plan.DateLivraison
	}
	return nil
}
