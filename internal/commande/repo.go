package commande

import (
	"context"
	"time"

	types "github.com/iidmage/backoffice/internal/types/commande"
)

type CommandeRepository interface {
	CreateCommande(ctx context.Context, c *types.Commande) error
	GetCommande(ctx context.Context, id string) (*types.Commande, error)
	ListCommandes(ctx context.Context) ([]types.Commande, error)
	// UpdateCommande writes every mutable field of c, guarded by the
	// updated_at value the caller read. A concurrent write in between makes
	// the guard miss and the call returns storage.ErrStaleWrite.
	UpdateCommande(ctx context.Context, c *types.Commande, expectedUpdatedAt time.Time) error
	// DeleteCommande removes the commande with its notifications and
	// attachment rows in one transaction.
	DeleteCommande(ctx context.Context, id string) error
}
