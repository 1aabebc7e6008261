// internal/domain/user.go
package domain

import "time"

// User represents an account holder of the transfer service.
type User struct {
	ID                   int64     `db:"id" json:"id"`                                         // Primary key, BIGSERIAL in DB
	FullName             string    `db:"full_name" json:"full_name"`                           // Display name
	Email                string    `db:"email" json:"email"`                                   // Unique
	PasswordHash         string    `db:"password_hash" json:"-"`                               // bcrypt hash, never serialized
	PhoneNumber          string    `db:"phone_number" json:"phone_number"`                     // Nigerian mobile format
	VirtualAccountNumber *string   `db:"virtual_account_number" json:"virtual_account_number"` // Nullable, unique once set
	VirtualAccountBank   *string   `db:"virtual_account_bank" json:"virtual_account_bank"`     // Set together with VirtualAccountNumber
	CreatedAt            time.Time `db:"created_at" json:"created_at"`                         // Timestamp of creation
	UpdatedAt            time.Time `db:"updated_at" json:"updated_at"`                         // Timestamp of last update
}

// NewUser creates a new User instance without a virtual account.
func NewUser(fullName, email, passwordHash, phoneNumber string) *User {
	now := time.Now().UTC()
	return &User{
		FullName:     fullName,
		Email:        email,
		PasswordHash: passwordHash,
		PhoneNumber:  phoneNumber,
		CreatedAt:    now,
		UpdatedAt:    now,
	}
}

// HasVirtualAccount reports whether a virtual account has been issued to the user.
func (u *User) HasVirtualAccount() bool {
	return u.VirtualAccountNumber != nil && *u.VirtualAccountNumber != ""
}

// SetVirtualAccount assigns the account number and issuing bank together.
func (u *User) SetVirtualAccount(accountNumber, bankName string) {
	u.VirtualAccountNumber = &accountNumber
	u.VirtualAccountBank = &bankName
	u.UpdatedAt = time.Now().UTC()
}
