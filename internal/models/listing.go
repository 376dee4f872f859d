package models

import (
	"fmt"
	"time"
)

// ListingKind distinguishes the three kinds of listings a user can publish.
type ListingKind string

const (
	KindDonation ListingKind = "donation"
	KindService  ListingKind = "service"
	KindHelp     ListingKind = "help"
)

// ListingKinds is the fixed ordering used when merging listings across kinds.
var ListingKinds = []ListingKind{KindDonation, KindService, KindHelp}

// ParseListingKind converts a request parameter into a ListingKind.
func ParseListingKind(s string) (ListingKind, error) {
	switch ListingKind(s) {
	case KindDonation, KindService, KindHelp:
		return ListingKind(s), nil
	}
	return "", fmt.Errorf("unknown listing kind %q", s)
}

// Listing represents a published donation, offered service, or help request.
// All three kinds share one table; each listing store instance is scoped to a
// single kind. UserID is the owner and never changes after creation.
type Listing struct {
	ID          string      `json:"id" gorm:"primaryKey;type:varchar(36)" validate:"omitempty,uuid"`
	Kind        ListingKind `json:"kind" gorm:"index;type:varchar(16)"`
	Title       string      `json:"title" gorm:"type:varchar(200)"`
	Description string      `json:"description" gorm:"type:text"`
	Location    string      `json:"location" gorm:"type:varchar(200)"`
	Contact     string      `json:"contact,omitempty" gorm:"type:varchar(200)"` // empty for donations
	Image       string      `json:"image,omitempty" gorm:"type:varchar(200)"`  // sanitized filename in the upload dir, empty if none
	CreatedAt   time.Time   `json:"created_at"`
	UserID      string      `json:"user_id" gorm:"index;type:varchar(36)"`
}

// ListingFields carries the user-editable fields of a listing. Updates apply
// these as a whole-record replace.
type ListingFields struct {
	Title       string `json:"title" form:"title" validate:"required,min=1,max=200"`
	Description string `json:"description" form:"description" validate:"required,min=1"`
	Location    string `json:"location" form:"location" validate:"required,min=1,max=200"`
	Contact     string `json:"contact" form:"contact" validate:"omitempty,max=200"`
}

// SearchResult is one row of the cross-kind search: the listing's display
// fields tagged with its kind plus the owner's username.
type SearchResult struct {
	Kind        ListingKind `json:"kind"`
	ID          string      `json:"id"`
	Title       string      `json:"title"`
	Description string      `json:"description"`
	Location    string      `json:"location"`
	Contact     string      `json:"contact,omitempty"`
	Image       string      `json:"image,omitempty"`
	Username    string      `json:"username"`
	CreatedAt   time.Time   `json:"created_at"`
}
