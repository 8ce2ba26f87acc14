package retroplanning

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"

	"github.com/iidmage/backoffice/internal/calendar"
	"github.com/iidmage/backoffice/internal/types/commande"
)

func day(y int, m time.Month, d int) time.Time {
	return time.Date(y, m, d, 12, 0, 0, 0, time.Local)
}

func TestComputeOffsets(t *testing.T) {
	// Friday, 2024-06-21. No holidays nearby.
	pose := day(2024, time.June, 21)
	plan := Compute(pose, nil)

	assert.True(t, calendar.SameDay(calendar.SubBusinessDays(pose, 1), plan.DateLivraison))
	assert.True(t, calendar.SameDay(calendar.SubBusinessDays(pose, 2), plan.DateExpedition))
	assert.True(t, calendar.SameDay(calendar.SubBusinessDays(pose, 15), plan.DateCommande))
	assert.True(t, calendar.SameDay(
		calendar.ToBusinessDayForward(calendar.AddBusinessDays(plan.DateCommande, 1)),
		plan.DateProduction,
	))

	// Thursday/Friday right before a Friday pose.
	assert.True(t, calendar.SameDay(day(2024, time.June, 20), plan.DateLivraison))
	assert.True(t, calendar.SameDay(day(2024, time.June, 19), plan.DateExpedition))
}

func TestComputeExplicitCommandeStretchesProduction(t *testing.T) {
	pose := day(2024, time.June, 21)
	early := day(2024, time.April, 2)
	plan := Compute(pose, &early)

	assert.True(t, calendar.SameDay(early, plan.DateCommande))
	// Production still starts right after the order date, not near the pose.
	assert.True(t, calendar.SameDay(day(2024, time.April, 3), plan.DateProduction))
	// Shipping/delivery stay pinned to the pose.
	assert.True(t, calendar.SameDay(day(2024, time.June, 20), plan.DateLivraison))
}

func TestApplyRequiresPoseDate(t *testing.T) {
	c := &commande.Commande{}
	assert.ErrorIs(t, Apply(c, true), ErrNoPoseDate)
}

func TestApplyPreservesPopulatedFields(t *testing.T) {
	pose := day(2024, time.June, 21)
	pinned := day(2024, time.June, 10)
	c := &commande.Commande{
		DatePose:       &pose,
		DateExpedition: &pinned,
	}
	assert.NoError(t, Apply(c, false))

	assert.True(t, calendar.SameDay(pinned, *c.DateExpedition))
	assert.NotNil(t, c.DateLivraison)
	assert.NotNil(t, c.DateCommande)
	assert.NotNil(t, c.DateProduction)
	assert.Equal(t, commande.PlanningAuto, c.PlanningType)
}

func TestApplyOverwriteReplacesEverything(t *testing.T) {
	pose := day(2024, time.June, 21)
	stale := day(2023, time.January, 2)
	c := &commande.Commande{
		DatePose:       &pose,
		DateExpedition: &stale,
		DateLivraison:  &stale,
		DateProduction: &stale,
	}
	assert.NoError(t, Apply(c, true))

	assert.True(t, calendar.SameDay(day(2024, time.June, 19), *c.DateExpedition))
	assert.True(t, calendar.SameDay(day(2024, time.June, 20), *c.DateLivraison))
	assert.False(t, calendar.SameDay(stale, *c.DateProduction))
}
