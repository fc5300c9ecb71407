package entity

import "time"

const (
	MessageTypeStandard        = "standard"
	MessageTypeSwapRequest     = "swap_request"
	MessageTypeSwapAccepted    = "swap_accepted"
	MessageTypePendingShipment = "pending_shipment"
	MessageTypeSwapCompleted   = "swap_completed"
)

// System messages live at fixed document IDs inside a swap's messages
// sub-collection. Fixed identity is what lets a conditional create resolve the
// race between two parties confirming at the same moment: at most one document
// can ever exist per ID. The request message keeps its ID when it is retyped to
// swap_accepted.
const (
	RequestMessageID         = "system-request"
	PendingShipmentMessageID = "system-pending-shipment"
	CompletedMessageID       = "system-completed"
)

// SwapEventSnapshot is embedded on typed messages so a lifecycle event can be
// rendered or replayed without a secondary swap lookup.
type SwapEventSnapshot struct {
	OfferedBy        PartySnapshot   `json:"offered_by" firestore:"offeredBy"`
	RequestedFrom    PartySnapshot   `json:"requested_from" firestore:"requestedFrom"`
	OfferedListing   ListingSnapshot `json:"offered_listing" firestore:"offeredListing"`
	RequestedListing ListingSnapshot `json:"requested_listing" firestore:"requestedListing"`
}

type Message struct {
	ID             string             `json:"id" firestore:"id"`
	SwapID         string             `json:"swap_id" firestore:"swapId"`
	Type           string             `json:"type" firestore:"type"`
	Text           string             `json:"text,omitempty" firestore:"text,omitempty"`
	SenderUID      string             `json:"sender_uid" firestore:"senderUid"`
	SenderUsername string             `json:"sender_username" firestore:"senderUsername"`
	ReadBy         []string           `json:"read_by" firestore:"readBy"`
	Hidden         bool               `json:"hidden,omitempty" firestore:"hidden,omitempty"`
	Snapshot       *SwapEventSnapshot `json:"snapshot,omitempty" firestore:"snapshot,omitempty"`
	CreatedAt      time.Time          `json:"created_at" firestore:"createdAt"`
}

func (m *Message) ReadByUser(uid string) bool {
	for _, reader := range m.ReadBy {
		if reader == uid {
			return true
		}
	}
	return false
}

// UnreadBy reports whether uid still has this message outstanding: uid is not
// the sender and has not read it.
func (m *Message) UnreadBy(uid string) bool {
	return m.SenderUID != uid && !m.ReadByUser(uid)
}
