// Package models defines the server-side persistence types.
package models

import "time"

type User struct {
	ID            string
	Email         string
	DisplayName   string
	Salt          []byte
	Verifier      []byte
	EmailVerified bool
	CreatedAt     time.Time
}
