package domain

import "time"

// User es el registro de cuenta. PasswordHash y RefreshToken nunca salen en JSON.
type User struct {
	ID           string    `json:"_id" bson:"_id"`
	Username     string    `json:"username" bson:"username"`
	Email        string    `json:"email" bson:"email"`
	FullName     string    `json:"fullname" bson:"fullname"`
	Avatar       string    `json:"avatar" bson:"avatar"`
	CoverImage   string    `json:"coverImage" bson:"coverImage"`
	PasswordHash string    `json:"-" bson:"password"`
	RefreshToken string    `json:"-" bson:"refreshToken,omitempty"`
	CreatedAt    time.Time `json:"createdAt" bson:"createdAt"`
	UpdatedAt    time.Time `json:"updatedAt" bson:"updatedAt"`
}

// Public devuelve una copia sin campos secretos.
func (u User) Public() User {
	u.PasswordHash = ""
	u.RefreshToken = ""
	return u
}

// ChannelProfile es la vista publica de un canal (usuario) con sus contadores.
type ChannelProfile struct {
	User
	SubscribersCount          int64 `json:"subscribersCount"`
	ChannelsSubscribedToCount int64 `json:"channelsSubscribedToCount"`
	IsSubscribed              bool  `json:"isSubscribed"`
}

// ChannelStats agrupa los contadores cacheables de un canal.
type ChannelStats struct {
	SubscribersCount          int64 `json:"subscribers"`
	ChannelsSubscribedToCount int64 `json:"subscribed_to"`
}
