package client

type Client struct {
	ID       string  `db:"id" json:"id"`
	Name     string  `db:"name" json:"name"`
	Email    *string `db:"email" json:"email,omitempty"`
	Phone    *string `db:"phone" json:"phone,omitempty"`
	Address  *string `db:"address" json:"address,omitempty"`
	Notes    *string `db:"notes" json:"notes,omitempty"`
	Favorite bool    `db:"favorite" json:"favorite"`
}
