package domain

// User carries the author display fields resolved from the caller's identity.
type User struct {
	Id    UserId `json:"id"`
	Name  string `json:"name"`
	Image string `json:"image,omitempty"`
}
