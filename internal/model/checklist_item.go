package model

import "time"

// ChecklistItem is one node of a property's checklist tree. ParentID is nil
// for root-level items and otherwise references another item of the same
// property.
type ChecklistItem struct {
	ID         string    `json:"id"`
	PropertyID string    `json:"property_id"`
	ParentID   *string   `json:"parent_id"`
	Title      string    `json:"title"`
	IsFolder   bool      `json:"is_folder"`
	CreatedAt  time.Time `json:"created_at"`
	UpdatedAt  time.Time `json:"updated_at"`
}

// ChecklistItemUpdate carries a partial update. Nil fields are left
// untouched; an explicit JSON null is not distinguished from an absent field.
type ChecklistItemUpdate struct {
	Title    *string `json:"title"`
	IsFolder *bool   `json:"is_folder"`
}
