package storage

import (
	"context"
	"errors"
	"time"

	"github.com/iidmage/backoffice/internal/types/attachment"
	"github.com/iidmage/backoffice/internal/types/client"
	"github.com/iidmage/backoffice/internal/types/commande"
	"github.com/iidmage/backoffice/internal/types/notification"
	"github.com/iidmage/backoffice/internal/types/poseur"
	"github.com/iidmage/backoffice/internal/types/user"
)

// ErrStaleWrite means an optimistic updated_at guard missed: the row changed
// between read and write. Callers retry by re-reading.
var ErrStaleWrite = errors.New("stale write: commande was modified concurrently")

// UserRepository отвечает за операции над пользователями.
type UserRepository interface {
	CreateUser(ctx context.Context, u *user.User) error
	FindUserByEmail(ctx context.Context, email string) (*user.User, error)
	GetUser(ctx context.Context, id string) (*user.User, error)
	ListUsers(ctx context.Context, offset, limit int) ([]user.User, int, error)
	UpdateUser(ctx context.Context, u *user.User) error
	DeleteUser(ctx context.Context, id string) error
}

// ClientRepository отвечает за клиентов.
type ClientRepository interface {
	CreateClient(ctx context.Context, c *client.Client) error
	GetClient(ctx context.Context, id string) (*client.Client, error)
	ListClients(ctx context.Context) ([]client.Client, error)
	UpdateClient(ctx context.Context, c *client.Client) error
	DeleteClient(ctx context.Context, id string) error
	CountCommandesByClient(ctx context.Context, clientID string) (int, error)
}

// PoseurRepository отвечает за монтажников.
type PoseurRepository interface {
	CreatePoseur(ctx context.Context, p *poseur.Poseur) error
	GetPoseur(ctx context.Context, id string) (*poseur.Poseur, error)
	ListPoseurs(ctx context.Context) ([]poseur.Poseur, error)
	UpdatePoseur(ctx context.Context, p *poseur.Poseur) error
	DeletePoseur(ctx context.Context, id string) error
	CountCommandesByPoseur(ctx context.Context, poseurID string) (int, error)
}

// CommandeRepository отвечает за заказы.
type CommandeRepository interface {
	CreateCommande(ctx context.Context, c *commande.Commande) error
	GetCommande(ctx context.Context, id string) (*commande.Commande, error)
	ListCommandes(ctx context.Context) ([]commande.Commande, error)
	UpdateCommande(ctx context.Context, c *commande.Commande, expectedUpdatedAt time.Time) error
	DeleteCommande(ctx context.Context, id string) error
}

// NotificationRepository отвечает за напоминания по этапам.
type NotificationRepository interface {
	ReplacePending(ctx context.Context, commandeID string, kinds []commande.MilestoneKind, rows []notification.Notification) error
	DeletePending(ctx context.Context, commandeID string, kinds []commande.MilestoneKind) error
	ListDue(ctx context.Context, now time.Time, limit int) ([]notification.Notification, error)
	MarkSent(ctx context.Context, id int64, at time.Time, note string) error
	MarkFailed(ctx context.Context, id int64, at time.Time, errText string) error
}

// AttachmentRepository отвечает за фото-вложения.
type AttachmentRepository interface {
	CreateAttachment(ctx context.Context, a *attachment.Attachment) error
	ListAttachmentsByCommande(ctx context.Context, commandeID string) ([]attachment.Attachment, error)
}

// Storage объединяет все репозитории.
type Storage interface {
	UserRepository
	ClientRepository
	PoseurRepository
	CommandeRepository
	NotificationRepository
	AttachmentRepository

	// Для управления соединением
	Ping(ctx context.Context) error
	Close() error
}
