package model

// User is the locally persisted identity, stored JSON-encoded under the
// "user" key.  Stored values may predate schema changes, so readers must
// treat malformed payloads as "no identity" rather than an error.
type User struct {
	ID    string `json:"id"`
	Email string `json:"email"`
	Name  string `json:"name"`
	Role  string `json:"role"`
}
