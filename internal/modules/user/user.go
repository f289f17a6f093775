package user

import "time"

// Role is the authorization role of an account.
type Role string

const (
	RoleAdmin Role = "admin"
	RoleSales Role = "sales"
)

func (r Role) Valid() bool { return r == RoleAdmin || r == RoleSales }

// User is an admin or sales account.
type User struct {
	ID           int64     `json:"id" db:"id"`
	Username     string    `json:"username" db:"username"`
	Email        string    `json:"email" db:"email"`
	PasswordHash string    `json:"-" db:"password_hash"`
	Role         Role      `json:"role" db:"role"`
	Approved     bool      `json:"approved" db:"approved"`
	IsActive     bool      `json:"is_active" db:"is_active"`
	CreatedAt    time.Time `json:"created_at" db:"created_at"`
}

func (u *User) IsAdmin() bool { return u.Role == RoleAdmin }

// RegisterRequest is the self-registration payload.
type RegisterRequest struct {
	Username string `json:"username"`
	Email    string `json:"email"`
	Password string `json:"password"`
	Role     string `json:"role"`
}

// AdminSeed holds the credentials of the account created on first boot.
type AdminSeed struct {
	Username string
	Email    string
	Password string
}
