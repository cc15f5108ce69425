package domain

import "time"

// Subscription es una arista dirigida subscriber -> channel entre dos usuarios.
type Subscription struct {
	ID           string    `json:"_id" bson:"_id"`
	SubscriberID string    `json:"subscriber" bson:"subscriber"`
	ChannelID    string    `json:"channel" bson:"channel"`
	CreatedAt    time.Time `json:"createdAt" bson:"createdAt"`
	UpdatedAt    time.Time `json:"updatedAt" bson:"updatedAt"`
}
