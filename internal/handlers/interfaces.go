package handlers

import (
	"context"
	"io"

	"github.com/cliptube/backend/internal/auth"
	"github.com/cliptube/backend/internal/models"
	"github.com/cliptube/backend/internal/repositories"
)

// UserStore captures the persistence operations required by the user handlers.
type UserStore interface {
	Create(ctx context.Context, user models.User) error
	FindByID(ctx context.Context, id string) (models.User, error)
	FindByEmail(ctx context.Context, email string) (models.User, error)
	FindByUsername(ctx context.Context, username string) (models.User, error)
	SetRefreshToken(ctx context.Context, userID, token string) error
	SetPassword(ctx context.Context, userID, passwordHash string) error
	UpdateAccount(ctx context.Context, userID, fullName, email string) (models.User, error)
	SetImage(ctx context.Context, userID, column, url string) (models.User, error)
	ChannelProfile(ctx context.Context, username, viewerID string) (models.ChannelProfile, error)
	RecordWatch(ctx context.Context, userID, videoID string) error
	WatchHistory(ctx context.Context, userID string, params repositories.ListParams) ([]models.WatchEntry, int, error)
}

// TokenManager issues and verifies the bearer credentials for sessions.
type TokenManager interface {
	IssuePair(userID string) (auth.TokenPair, error)
	VerifyRefreshToken(token string) (string, error)
}

// VideoStore captures persistence for videos.
type VideoStore interface {
	Create(ctx context.Context, video models.Video) error
	FindByID(ctx context.Context, id string) (models.Video, error)
	List(ctx context.Context, params repositories.ListParams, filter repositories.VideoFilter) ([]models.Video, int, error)
	Update(ctx context.Context, video models.Video) (models.Video, error)
	Delete(ctx context.Context, id string) error
	TogglePublish(ctx context.Context, id string) (models.Video, error)
}

// CommentStore captures persistence for comments.
type CommentStore interface {
	Create(ctx context.Context, comment models.Comment) error
	FindByID(ctx context.Context, id string) (models.Comment, error)
	ListForVideo(ctx context.Context, videoID string, params repositories.ListParams) ([]models.Comment, int, error)
	UpdateContent(ctx context.Context, id, content string) (models.Comment, error)
	Delete(ctx context.Context, id string) error
}

// TweetStore captures persistence for tweets.
type TweetStore interface {
	Create(ctx context.Context, tweet models.Tweet) error
	FindByID(ctx context.Context, id string) (models.Tweet, error)
	List(ctx context.Context, params repositories.ListParams, ownerID string) ([]models.Tweet, int, error)
	UpdateContent(ctx context.Context, id, content string) (models.Tweet, error)
	Delete(ctx context.Context, id string) error
}

// LikeStore captures the atomic like toggles and liked-video listing.
type LikeStore interface {
	ToggleVideo(ctx context.Context, userID, videoID string) (bool, error)
	ToggleComment(ctx context.Context, userID, commentID string) (bool, error)
	ToggleTweet(ctx context.Context, userID, tweetID string) (bool, error)
	ListLikedVideos(ctx context.Context, userID string, params repositories.ListParams) ([]models.Video, int, error)
}

// SubscriptionStore captures the subscription toggle and listings.
type SubscriptionStore interface {
	Toggle(ctx context.Context, subscriberID, channelID string) (bool, error)
	ListSubscribers(ctx context.Context, channelID string, params repositories.ListParams) ([]models.OwnerSummary, int, error)
	ListSubscribedChannels(ctx context.Context, subscriberID string, params repositories.ListParams) ([]models.OwnerSummary, int, error)
}

// PlaylistStore captures persistence for playlists.
type PlaylistStore interface {
	Create(ctx context.Context, playlist models.Playlist) error
	FindByID(ctx context.Context, id string) (models.Playlist, error)
	ListForUser(ctx context.Context, ownerID string, params repositories.ListParams) ([]models.Playlist, int, error)
	Update(ctx context.Context, id, name, description string) (models.Playlist, error)
	Delete(ctx context.Context, id string) error
	AddVideo(ctx context.Context, playlistID, videoID string) error
	RemoveVideo(ctx context.Context, playlistID, videoID string) error
	IsVideoSaved(ctx context.Context, ownerID, videoID string) (bool, error)
}

// DashboardStore serves channel aggregates.
type DashboardStore interface {
	ChannelStats(ctx context.Context, channelID string) (models.ChannelStats, error)
}

// MediaStorage hosts uploaded files and returns their public URLs.
type MediaStorage interface {
	Save(ctx context.Context, name string, r io.Reader) (string, error)
	Delete(ctx context.Context, url string) error
}

// Pinger reports backend connectivity for health checks.
type Pinger interface {
	Ping(ctx context.Context) error
}
