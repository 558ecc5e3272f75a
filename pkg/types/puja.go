package types

import "time"

type Puja struct {
	ID                string    `db:"id" json:"id"`
	Name              string    `db:"name" json:"name"`
	Slug              string    `db:"slug" json:"slug"`
	Description       *string   `db:"description" json:"description,omitempty"`
	SuggestedDonation int64     `db:"suggested_donation" json:"suggestedDonation"`
	DisplayOrder      int       `db:"display_order" json:"displayOrder"`
	IsActive          bool      `db:"is_active" json:"isActive"`
	CreatedAt         time.Time `db:"created_at" json:"createdAt"`
	UpdatedAt         time.Time `db:"updated_at" json:"updatedAt"`
}
