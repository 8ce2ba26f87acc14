package client

import (
	"context"

	"github.com/iidmage/backoffice/internal/types/client"
)

type ClientRepository interface {
	CreateClient(ctx context.Context, c *client.Client) error
	GetClient(ctx context.Context, id string) (*client.Client, error)
	ListClients(ctx context.Context) ([]client.Client, error)
	UpdateClient(ctx context.Context, c *client.Client) error
	DeleteClient(ctx context.Context, id string) error
	CountCommandesByClient(ctx context.Context, clientID string) (int, error)
}
