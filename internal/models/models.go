package models

import "time"

// User represents an account within the ClipTube platform. The password hash
// and refresh token never leave the service; responses carry PublicUser.
type User struct {
	ID            string
	Username      string
	Email         string
	FullName      string
	Password      string
	AvatarURL     string
	CoverImageURL string
	RefreshToken  string
	CreatedAt     time.Time
	UpdatedAt     time.Time
}

// Public returns the externally visible view of the user.
func (u User) Public() PublicUser {
	return PublicUser{
		ID:            u.ID,
		Username:      u.Username,
		Email:         u.Email,
		FullName:      u.FullName,
		AvatarURL:     u.AvatarURL,
		CoverImageURL: u.CoverImageURL,
		CreatedAt:     u.CreatedAt,
		UpdatedAt:     u.UpdatedAt,
	}
}

// PublicUser is the response shape for user records, with credentials stripped.
type PublicUser struct {
	ID            string    `json:"id"`
	Username      string    `json:"username"`
	Email         string    `json:"email"`
	FullName      string    `json:"fullName"`
	AvatarURL     string    `json:"avatar"`
	CoverImageURL string    `json:"coverImage"`
	CreatedAt     time.Time `json:"createdAt"`
	UpdatedAt     time.Time `json:"updatedAt"`
}

// OwnerSummary is the embedded owner view attached to listed resources.
type OwnerSummary struct {
	ID        string `json:"id"`
	Username  string `json:"username"`
	FullName  string `json:"fullName"`
	AvatarURL string `json:"avatar"`
}

// Video is an uploaded video with its hosted file locations.
type Video struct {
	ID           string       `json:"id"`
	OwnerID      string       `json:"ownerId"`
	VideoURL     string       `json:"videoFile"`
	ThumbnailURL string       `json:"thumbnail"`
	Title        string       `json:"title"`
	Description  string       `json:"description"`
	Duration     float64      `json:"duration"`
	IsPublished  bool         `json:"isPublished"`
	CreatedAt    time.Time    `json:"createdAt"`
	UpdatedAt    time.Time    `json:"updatedAt"`
	Owner        OwnerSummary `json:"owner"`
}

// Comment is attached to a single video.
type Comment struct {
	ID        string       `json:"id"`
	VideoID   string       `json:"videoId"`
	OwnerID   string       `json:"ownerId"`
	Content   string       `json:"content"`
	CreatedAt time.Time    `json:"createdAt"`
	UpdatedAt time.Time    `json:"updatedAt"`
	Owner     OwnerSummary `json:"owner"`
}

// MaxTweetLength bounds tweet content.
const MaxTweetLength = 400

// Tweet is a short free-standing post.
type Tweet struct {
	ID        string       `json:"id"`
	OwnerID   string       `json:"ownerId"`
	Content   string       `json:"content"`
	CreatedAt time.Time    `json:"createdAt"`
	UpdatedAt time.Time    `json:"updatedAt"`
	Owner     OwnerSummary `json:"owner"`
}

// Like marks exactly one of a video, comment, or tweet as liked by a user.
type Like struct {
	ID        string    `json:"id"`
	LikedBy   string    `json:"likedBy"`
	VideoID   string    `json:"videoId,omitempty"`
	CommentID string    `json:"commentId,omitempty"`
	TweetID   string    `json:"tweetId,omitempty"`
	CreatedAt time.Time `json:"createdAt"`
}

// Subscription links a subscriber to a channel (both users).
type Subscription struct {
	ID           string    `json:"id"`
	SubscriberID string    `json:"subscriberId"`
	ChannelID    string    `json:"channelId"`
	CreatedAt    time.Time `json:"createdAt"`
}

// Playlist is an ordered, de-duplicated collection of videos.
type Playlist struct {
	ID          string    `json:"id"`
	OwnerID     string    `json:"ownerId"`
	Name        string    `json:"name"`
	Description string    `json:"description"`
	CreatedAt   time.Time `json:"createdAt"`
	UpdatedAt   time.Time `json:"updatedAt"`
	Videos      []Video   `json:"videos"`
}

// ChannelProfile is the public channel view with subscription counts.
type ChannelProfile struct {
	ID                string `json:"id"`
	Username          string `json:"username"`
	FullName          string `json:"fullName"`
	AvatarURL         string `json:"avatar"`
	CoverImageURL     string `json:"coverImage"`
	SubscribersCount  int    `json:"subscribersCount"`
	SubscribedToCount int    `json:"subscribedToCount"`
	IsSubscribed      bool   `json:"isSubscribed"`
}

// ChannelStats aggregates dashboard figures for a channel.
type ChannelStats struct {
	TotalSubscribers int `json:"totalSubscribers"`
	TotalVideos      int `json:"totalVideos"`
	TotalLikes       int `json:"totalLikes"`
}

// WatchEntry is one row of a user's watch history.
type WatchEntry struct {
	Video     Video     `json:"video"`
	WatchedAt time.Time `json:"watchedAt"`
}
