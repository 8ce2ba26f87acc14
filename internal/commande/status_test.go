package commande

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"

	types "github.com/iidmage/backoffice/internal/types/commande"
)

func day(y int, m time.Month, d int) time.Time {
	return time.Date(y, m, d, 12, 0, 0, 0, time.Local)
}

func dptr(t time.Time) *time.Time { return &t }

func TestDeriveEtat(t *testing.T) {
	now := day(2024, time.June, 17)

	tests := []struct {
		name string
		c    types.Commande
		want types.Etat
	}{
		{"no dates at all", types.Commande{}, types.EtatAPlanifier},
		{"production planned", types.Commande{DateProduction: dptr(now)}, types.EtatEnProduction},
		{"production done", types.Commande{DoneProductionAt: dptr(now)}, types.EtatAExpedier},
		{"expedition done", types.Commande{DoneExpeditionAt: dptr(now)}, types.EtatLivree},
		{"livraison done", types.Commande{DoneLivraisonAt: dptr(now)}, types.EtatAPoser},
		{"pose done", types.Commande{DonePoseAt: dptr(now)}, types.EtatPosee},
		{
			// самый поздний done выигрывает, даже если ранние пустые
			"pose done without earlier timestamps",
			types.Commande{DonePoseAt: dptr(now), DateProduction: dptr(now)},
			types.EtatPosee,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.want, DeriveEtat(&tt.c))
		})
	}
}

func TestDisplayEtatBillingSticky(t *testing.T) {
	now := day(2024, time.June, 17)

	c := types.Commande{Etat: types.EtatFacturee, DonePoseAt: dptr(now)}
	assert.Equal(t, types.EtatFacturee, DisplayEtat(&c))

	// FACTURE_A_ENVOYER остаётся даже без единого done-этапа
	c = types.Commande{Etat: types.EtatFactureAEnvoyer}
	assert.Equal(t, types.EtatFactureAEnvoyer, DisplayEtat(&c))

	// обычный явный etat перекрывается производным
	c = types.Commande{Etat: types.EtatEnProduction, DonePoseAt: dptr(now)}
	assert.Equal(t, types.EtatPosee, DisplayEtat(&c))
}

func TestLateness(t *testing.T) {
	// понедельник 17 июня 2024
	today := day(2024, time.June, 17)

	t.Run("shipping due yesterday is overdue", func(t *testing.T) {
		c := types.Commande{
			DoneProductionAt: dptr(day(2024, time.June, 10)),
			DateExpedition:   dptr(day(2024, time.June, 14)),
		}
		assert.Equal(t, types.EtatAExpedier, DisplayEtat(&c))
		assert.Equal(t, LatenessOverdue, LatenessFor(&c, today))
	})

	t.Run("due today", func(t *testing.T) {
		c := types.Commande{
			DoneProductionAt: dptr(day(2024, time.June, 10)),
			DateExpedition:   dptr(today),
		}
		assert.Equal(t, LatenessToday, LatenessFor(&c, today))
	})

	t.Run("due in the future", func(t *testing.T) {
		c := types.Commande{
			DoneProductionAt: dptr(day(2024, time.June, 10)),
			DateExpedition:   dptr(day(2024, time.June, 20)),
		}
		assert.Equal(t, LatenessNone, LatenessFor(&c, today))
	})

	t.Run("billing state never late", func(t *testing.T) {
		c := types.Commande{
			Etat:           types.EtatFacturee,
			DateExpedition: dptr(day(2024, time.June, 10)),
		}
		assert.Equal(t, LatenessNone, LatenessFor(&c, today))
	})

	t.Run("pose done never late", func(t *testing.T) {
		c := types.Commande{
			DonePoseAt: dptr(day(2024, time.June, 10)),
			DatePose:   dptr(day(2024, time.June, 10)),
		}
		assert.Equal(t, LatenessNone, LatenessFor(&c, today))
	})

	t.Run("no date for current milestone", func(t *testing.T) {
		c := types.Commande{DoneProductionAt: dptr(day(2024, time.June, 10))}
		assert.Equal(t, LatenessNone, LatenessFor(&c, today))
	})
}

func TestStatusFor(t *testing.T) {
	today := day(2024, time.June, 17)

	t.Run("no due date", func(t *testing.T) {
		c := types.Commande{}
		assert.Equal(t, StatusPlanned, StatusFor(&c, types.KindPose, today))
	})

	t.Run("done wins over overdue", func(t *testing.T) {
		c := types.Commande{
			DatePose:   dptr(day(2024, time.June, 10)),
			DonePoseAt: dptr(day(2024, time.June, 10)),
		}
		assert.Equal(t, StatusDone, StatusFor(&c, types.KindPose, today))
	})

	t.Run("past due", func(t *testing.T) {
		c := types.Commande{DatePose: dptr(day(2024, time.June, 14))}
		assert.Equal(t, StatusOverdue, StatusFor(&c, types.KindPose, today))
	})

	t.Run("due today", func(t *testing.T) {
		c := types.Commande{DatePose: dptr(today)}
		assert.Equal(t, StatusDueToday, StatusFor(&c, types.KindPose, today))
	})

	t.Run("within two days", func(t *testing.T) {
		c := types.Commande{DatePose: dptr(day(2024, time.June, 19))}
		assert.Equal(t, StatusUpcoming, StatusFor(&c, types.KindPose, today))
	})

	t.Run("far future", func(t *testing.T) {
		c := types.Commande{DatePose: dptr(day(2024, time.July, 10))}
		assert.Equal(t, StatusPlanned, StatusFor(&c, types.KindPose, today))
	})

	t.Run("overdue prerequisite does not taint a future milestone", func(t *testing.T) {
		c := types.Commande{
			DateProduction: dptr(day(2024, time.June, 10)), // в прошлом, не закрыто
			DatePose:       dptr(day(2024, time.July, 10)),
		}
		assert.Equal(t, StatusPlanned, StatusFor(&c, types.KindPose, today))
		assert.Equal(t, StatusOverdue, StatusFor(&c, types.KindProduction, today))
	})
}
