package user

import "time"

type Role string

const (
	RoleOwner    Role = "OWNER"
	RoleManager  Role = "MANAGER"
	RolePoseur   Role = "POSEUR"
	RoleReadonly Role = "READONLY"
)

func (r Role) Valid() bool {
	switch r {
	case RoleOwner, RoleManager, RolePoseur, RoleReadonly:
		return true
	}
	return false
}

// CanWrite says whether the role may mutate commandes and clients.
// Неизвестная или пустая роль никогда не пишет.
func (r Role) CanWrite() bool {
	return r == RoleOwner || r == RoleManager
}

// CanManage gates user/poseur administration.
func (r Role) CanManage() bool {
	return r == RoleOwner || r == RoleManager
}

type User struct {
	ID           string    `db:"id" json:"id"`
	Email        string    `db:"email" json:"email"`
	Name         string    `db:"name" json:"name"`
	Phone        *string   `db:"phone" json:"phone,omitempty"`
	Role         Role      `db:"role" json:"role"`
	PasswordHash string    `db:"password_hash" json:"-"`
	CreatedAt    time.Time `db:"created_at" json:"createdAt"`
}
