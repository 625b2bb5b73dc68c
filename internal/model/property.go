package model

import "time"

type Property struct {
	ID        string    `json:"id"`
	Name      string    `json:"name"`
	PhotoURL  *string   `json:"photo_url"`
	CreatedAt time.Time `json:"created_at"`
	UpdatedAt time.Time `json:"updated_at"`
}

// PropertyUpdate carries a partial update. Nil fields are left untouched;
// an explicit JSON null is not distinguished from an absent field.
type PropertyUpdate struct {
	Name     *string `json:"name"`
	PhotoURL *string `json:"photo_url"`
}
