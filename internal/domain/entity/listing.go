package entity

import "time"

const (
	ListingStatusActive   = "active"
	ListingStatusSwapped  = "swapped"
	ListingStatusArchived = "archived"
)

type Listing struct {
	ID               string `json:"id" firestore:"id"`
	OwnerUID         string `json:"owner_uid" firestore:"ownerUid"`
	Title            string `json:"title" firestore:"title"`
	Fragrance        string `json:"fragrance" firestore:"fragrance"`
	Brand            string `json:"brand" firestore:"brand"`
	ImageURL         string `json:"image_url,omitempty" firestore:"imageURL,omitempty"`
	PercentRemaining int    `json:"percent_remaining" firestore:"percentRemaining"`
	Status           string `json:"status" firestore:"status"`

	// Denormalized owner attributes, maintained by the tier-propagation job.
	// Must always equal the corresponding fields on the owner's user record.
	OwnerIsPremium    bool `json:"owner_is_premium" firestore:"ownerIsPremium"`
	OwnerIsIdVerified bool `json:"owner_is_id_verified" firestore:"ownerIsIdVerified"`
	OwnerPriority     int  `json:"owner_priority" firestore:"ownerPriority"`

	CreatedAt time.Time `json:"created_at" firestore:"createdAt"`
	UpdatedAt time.Time `json:"updated_at" firestore:"updatedAt"`
}
