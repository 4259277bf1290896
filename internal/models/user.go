// Package models contains the domain model of a registered user, covering
// account data, the password hash and the creation date. Used by the business
// logic and the storage layer.
package models

import "time"

// User represents a registered user of the system.
type User struct {
	UUID         string     // Unique user identifier
	Email        string     // E-mail address, alert notifications go here
	Username     string     // Unique login name
	PasswordHash string     // bcrypt hash of the password
	Role         string     // "admin" or "user"
	CreatedAt    *time.Time // Registration timestamp
}
