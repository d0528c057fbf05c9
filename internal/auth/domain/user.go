package domain

import "time"

type User struct {
	ID           string
	Email        string
	Name         string
	PasswordHash string  // argon2id PHC encoded, never the plaintext
	Role         Role
	CompanyID    *string // nullable: admins and publishers have no company
	CreatedAt    time.Time
	UpdatedAt    time.Time
}

type Company struct {
	ID        string
	Name      string
	Country   string
	CreatedAt time.Time
	UpdatedAt time.Time
}
