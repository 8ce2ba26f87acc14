package commande

import (
	"time"

	"github.com/iidmage/backoffice/internal/calendar"
	types "github.com/iidmage/backoffice/internal/types/commande"
)

// Derivation of the displayed state lives here and only here. List, detail
// and calendar views must all go through DisplayEtat/LatenessFor so they can
// never disagree about a commande's status. A milestone counts as finished
// only through its done_* timestamp, never because its date has passed.

// DeriveEtat computes the operational state from done-timestamps,
// most-advanced first, falling back to the production date's presence.
func DeriveEtat(c *types.Commande) types.Etat {
	switch {
	case c.DonePoseAt != nil:
		return types.EtatPosee
	case c.DoneLivraisonAt != nil:
		return types.EtatAPoser
	case c.DoneExpeditionAt != nil:
		return types.EtatLivree
	case c.DoneProductionAt != nil:
		return types.EtatAExpedier
	case c.DateProduction != nil:
		return types.EtatEnProduction
	default:
		return types.EtatAPlanifier
	}
}

// DisplayEtat is the authoritative status: billing states stored explicitly
// always win, everything else follows the milestones.
func DisplayEtat(c *types.Commande) types.Etat {
	if c.Etat.IsBilling() {
		return c.Etat
	}
	return DeriveEtat(c)
}

type Lateness string

const (
	LatenessOverdue Lateness = "OVERDUE"
	LatenessToday   Lateness = "TODAY"
	LatenessNone    Lateness = ""
)

// LatenessFor classifies only the milestone matching the displayed state,
// and only while that milestone's own timestamp is unset.
func LatenessFor(c *types.Commande, today time.Time) Lateness {
	base := DisplayEtat(c)
	if base.IsBilling() {
		return LatenessNone
	}
	if c.DonePoseAt != nil {
		return LatenessNone
	}

	var kind types.MilestoneKind
	switch base {
	case types.EtatEnProduction:
		kind = types.KindProduction
	case types.EtatAExpedier:
		kind = types.KindExpedition
	case types.EtatLivree:
		kind = types.KindLivraison
	case types.EtatAPoser:
		kind = types.KindPose
	default:
		return LatenessNone
	}

	due := c.MilestoneDate(kind)
	if due == nil || c.MilestoneDoneAt(kind) != nil {
		return LatenessNone
	}
	switch diff := calendar.DaysBetween(today, *due); {
	case diff < 0:
		return LatenessOverdue
	case diff == 0:
		return LatenessToday
	default:
		return LatenessNone
	}
}

// MilestoneStatus is the per-milestone classification used by the calendar
// view coloring.
type MilestoneStatus string

const (
	StatusDone     MilestoneStatus = "DONE"
	StatusOverdue  MilestoneStatus = "OVERDUE"
	StatusDueToday MilestoneStatus = "DUE_TODAY"
	StatusUpcoming MilestoneStatus = "UPCOMING"
	StatusPlanned  MilestoneStatus = "PLANNED"
)

func hasOverduePrerequisite(c *types.Commande, kind types.MilestoneKind, today time.Time) bool {
	for _, prereq := range kind.Prerequisites() {
		due := c.MilestoneDate(prereq)
		if due == nil || c.MilestoneDoneAt(prereq) != nil {
			continue
		}
		if calendar.DaysBetween(today, *due) < 0 {
			return true
		}
	}
	return false
}

// StatusFor classifies one milestone of a commande at day granularity.
// An overdue prerequisite only propagates when the milestone itself is due
// today or earlier; otherwise far-future milestones would show as late just
// because an upstream stage slipped.
func StatusFor(c *types.Commande, kind types.MilestoneKind, now time.Time) MilestoneStatus {
	due := c.MilestoneDate(kind)
	if due == nil {
		return StatusPlanned
	}
	if c.MilestoneDoneAt(kind) != nil {
		return StatusDone
	}

	diff := calendar.DaysBetween(now, *due)
	if diff < 0 && hasOverduePrerequisite(c, kind, now) {
		return StatusOverdue
	}
	switch {
	case diff < 0:
		return StatusOverdue
	case diff == 0:
		return StatusDueToday
	case diff <= 2:
		return StatusUpcoming
	default:
		return StatusPlanned
	}
}
