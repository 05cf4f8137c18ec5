package domain

import "time"

type Item struct {
	ID          string
	Title       string
	Description string
	Price       int64 // cents
	Image       string
	LargeImage  string
	OwnerID     string
	CreatedAt   time.Time
	UpdatedAt   time.Time
}

// OwnedBy reports whether userID created the item.
func (i Item) OwnedBy(userID string) bool {
	return userID != "" && i.OwnerID == userID
}

// ItemUpdate is a partial update; nil fields are left untouched.
type ItemUpdate struct {
	Title       *string
	Description *string
	Price       *int64
	Image       *string
	LargeImage  *string
}

func (u ItemUpdate) IsEmpty() bool {
	return u.Title == nil && u.Description == nil && u.Price == nil && u.Image == nil && u.LargeImage == nil
}

// Apply returns a copy of item with the update's fields set.
func (u ItemUpdate) Apply(item Item) Item {
	if u.Title != nil {
		item.Title = *u.Title
	}
	if u.Description != nil {
		item.Description = *u.Description
	}
	if u.Price != nil {
		item.Price = *u.Price
	}
	if u.Image != nil {
		item.Image = *u.Image
	}
	if u.LargeImage != nil {
		item.LargeImage = *u.LargeImage
	}
	return item
}
