package entity

import "time"

type User struct {
	ID               string `json:"id" firestore:"id"`
	Email            string `json:"email" firestore:"email"`
	Username         string `json:"username" firestore:"username"`
	PhotoURL         string `json:"photo_url,omitempty" firestore:"photoURL,omitempty"`
	FormattedAddress string `json:"formatted_address,omitempty" firestore:"formattedAddress,omitempty"`
	FCMToken         string `json:"fcm_token,omitempty" firestore:"fcmToken,omitempty"`

	IsPremium    bool `json:"is_premium" firestore:"isPremium"`
	IsIdVerified bool `json:"is_id_verified" firestore:"isIdVerified"`

	// Aggregate counters. Interactive paths adjust these opportunistically;
	// the reconciliation jobs are the source of truth of last resort.
	UnreadMessagesCount int      `json:"unread_messages_count" firestore:"unreadMessagesCount"`
	MonthlySwapCount    int      `json:"monthly_swap_count" firestore:"monthlySwapCount"`
	UnreadConversations []string `json:"unread_conversations" firestore:"unreadConversations"`

	CountsCheckedAt time.Time `json:"counts_checked_at,omitempty" firestore:"countsCheckedAt,omitempty"`
	CreatedAt       time.Time `json:"created_at" firestore:"createdAt"`
	UpdatedAt       time.Time `json:"updated_at" firestore:"updatedAt"`
}

// PriorityRank orders listing owners for display:
// premium and verified > verified > premium > neither.
func (u *User) PriorityRank() int {
	switch {
	case u.IsPremium && u.IsIdVerified:
		return 3
	case u.IsIdVerified:
		return 2
	case u.IsPremium:
		return 1
	}
	return 0
}
