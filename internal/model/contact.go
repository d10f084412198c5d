package model

// Contact represents a row in the `contacts` table.  Every contact
// belongs to exactly one user via OwnerID; repository queries always
// filter on it so contacts are invisible to anyone but their owner.
//
// Fields:
//  ID       – primary key identifier of the contact.
//  OwnerID  – references users.id of the owning user.
//  Name     – display name, required.
//  Email    – contact email address, required.
//  Phone    – phone number, required.
//  Favorite – whether the owner marked the contact as a favorite.
type Contact struct {
	ID       uint64 `json:"id"`
	OwnerID  uint64 `json:"owner"`
	Name     string `json:"name"`
	Email    string `json:"email"`
	Phone    string `json:"phone"`
	Favorite bool   `json:"favorite"`
}
