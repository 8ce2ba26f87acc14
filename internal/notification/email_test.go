package notification

import (
	"strings"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"

	types "github.com/iidmage/backoffice/internal/types/commande"
)

func TestUrgencyPrefix(t *testing.T) {
	milestone := day(2024, time.June, 21)

	tests := []struct {
		name  string
		dueAt time.Time
		want  string
	}{
		{"before the milestone", at(2024, time.June, 19, 8), "Proche"},
		{"on the day", at(2024, time.June, 21, 8), "Aujourd'hui"},
		{"after the milestone", at(2024, time.June, 24, 8), "En retard"},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.want, urgencyPrefix(tt.dueAt, &milestone))
		})
	}

	t.Run("no milestone date", func(t *testing.T) {
		assert.Equal(t, "Rappel", urgencyPrefix(at(2024, time.June, 21, 8), nil))
	})
}

func TestReminderEmailContent(t *testing.T) {
	pose := day(2024, time.June, 21)
	c := &types.Commande{
		ID:       "0b7f2a33-1111-2222-3333-444455556666",
		DatePose: &pose,
		Client:   &types.Ref{ID: "cl-1", Name: "Dupont SARL"},
	}

	subject, text, html := reminderEmail("http://localhost:3000", c, types.KindPose, at(2024, time.June, 21, 8))

	assert.Contains(t, subject, "Aujourd'hui Pose")
	assert.Contains(t, subject, "Dupont SARL")
	assert.Contains(t, subject, "#0b7f2a33")
	assert.Contains(t, text, "http://localhost:3000/commandes/"+c.ID)
	assert.True(t, strings.Contains(html, "Ouvrir la commande"))
}
