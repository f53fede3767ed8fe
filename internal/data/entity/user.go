package entity

type User struct {
	Base
	Email        string `db:"email"`
	Name         string `db:"name"`
	PasswordHash string `db:"password_hash"`
	Role         string `db:"role"` // "user" or "admin"
}
