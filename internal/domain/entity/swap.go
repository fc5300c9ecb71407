package entity

import "time"

const (
	SwapStatusRequested       = "requested"
	SwapStatusAccepted        = "accepted"
	SwapStatusShipmentPending = "shipment_pending"
	SwapStatusCompleted       = "completed"
	SwapStatusCancelled       = "cancelled"
	SwapStatusRejected        = "rejected"
)

const (
	SwapDecisionCancel = "cancel"
	SwapDecisionReject = "reject"
)

// PartySnapshot is the denormalized view of a participant copied onto the swap
// at creation time, so messages and transitions render without a user lookup.
type PartySnapshot struct {
	UID              string `json:"uid" firestore:"uid"`
	Username         string `json:"username" firestore:"username"`
	PhotoURL         string `json:"photo_url,omitempty" firestore:"photoURL,omitempty"`
	IsPremium        bool   `json:"is_premium" firestore:"isPremium"`
	IsIdVerified     bool   `json:"is_id_verified" firestore:"isIdVerified"`
	FormattedAddress string `json:"formatted_address,omitempty" firestore:"formattedAddress,omitempty"`
}

// ListingSnapshot is the denormalized view of a listing at swap creation time.
type ListingSnapshot struct {
	ID               string `json:"id" firestore:"id"`
	Title            string `json:"title" firestore:"title"`
	Fragrance        string `json:"fragrance" firestore:"fragrance"`
	Brand            string `json:"brand" firestore:"brand"`
	ImageURL         string `json:"image_url,omitempty" firestore:"imageURL,omitempty"`
	PercentRemaining int    `json:"percent_remaining" firestore:"percentRemaining"`
}

type Swap struct {
	ID               string          `json:"id" firestore:"id"`
	Status           string          `json:"status" firestore:"status"`
	OfferedBy        PartySnapshot   `json:"offered_by" firestore:"offeredBy"`
	RequestedFrom    PartySnapshot   `json:"requested_from" firestore:"requestedFrom"`
	OfferedListing   ListingSnapshot `json:"offered_listing" firestore:"offeredListing"`
	RequestedListing ListingSnapshot `json:"requested_listing" firestore:"requestedListing"`

	// Participants duplicates the two party UIDs for array-contains queries.
	Participants []string `json:"participants" firestore:"participants"`

	AddressConfirmation    map[string]bool      `json:"address_confirmation" firestore:"addressConfirmation"`
	ShipmentStatus         map[string]bool      `json:"shipment_status" firestore:"shipmentStatus"`
	TrackingNumbers        map[string]string    `json:"tracking_numbers,omitempty" firestore:"trackingNumbers,omitempty"`
	ConfirmationTimestamps map[string]time.Time `json:"confirmation_timestamps,omitempty" firestore:"confirmationTimestamps,omitempty"`

	CreatedAt time.Time `json:"created_at" firestore:"createdAt"`
	UpdatedAt time.Time `json:"updated_at" firestore:"updatedAt"`
}

func (s *Swap) IsParticipant(uid string) bool {
	return uid == s.OfferedBy.UID || uid == s.RequestedFrom.UID
}

// OtherPartyUID returns the counterparty UID, or empty if uid is not a participant.
func (s *Swap) OtherPartyUID(uid string) string {
	switch uid {
	case s.OfferedBy.UID:
		return s.RequestedFrom.UID
	case s.RequestedFrom.UID:
		return s.OfferedBy.UID
	}
	return ""
}

// IsTerminal reports whether the swap admits no further transitions.
func (s *Swap) IsTerminal() bool {
	switch s.Status {
	case SwapStatusCompleted, SwapStatusCancelled, SwapStatusRejected:
		return true
	}
	return false
}

func (s *Swap) BothAddressesConfirmed() bool {
	return s.AddressConfirmation[s.OfferedBy.UID] && s.AddressConfirmation[s.RequestedFrom.UID]
}

func (s *Swap) BothShipmentsConfirmed() bool {
	return s.ShipmentStatus[s.OfferedBy.UID] && s.ShipmentStatus[s.RequestedFrom.UID]
}
