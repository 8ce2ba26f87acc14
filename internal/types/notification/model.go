package notification

import (
	"time"

	"github.com/iidmage/backoffice/internal/types/commande"
)

type Status string

const (
	StatusPending Status = "PENDING"
	StatusSent    Status = "SENT"
	StatusFailed  Status = "FAILED"
)

type Channel string

const ChannelEmail Channel = "EMAIL"

type Notification struct {
	ID         int64                  `db:"id" json:"id"`
	CommandeID string                 `db:"commande_id" json:"commandeId"`
	Kind       commande.MilestoneKind `db:"kind" json:"kind"`
	Channel    Channel                `db:"channel" json:"channel"`
	DueAt      time.Time              `db:"due_at" json:"dueAt"`
	Status     Status                 `db:"status" json:"status"`
	SentAt     *time.Time             `db:"sent_at" json:"sentAt,omitempty"`
	LastError  *string                `db:"last_error" json:"lastError,omitempty"`
	ActorEmail *string                `db:"actor_email" json:"actorEmail,omitempty"`
}
