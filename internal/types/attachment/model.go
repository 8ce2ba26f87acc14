package attachment

import "time"

type Attachment struct {
	ID         string    `db:"id" json:"id"`
	CommandeID string    `db:"commande_id" json:"commandeId"`
	Type       string    `db:"type" json:"type"`
	URL        string    `db:"url" json:"url"`
	UploadedBy *string   `db:"uploaded_by" json:"uploadedBy,omitempty"`
	CreatedAt  time.Time `db:"created_at" json:"createdAt"`
}
