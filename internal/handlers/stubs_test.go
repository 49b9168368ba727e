package handlers

import (
	"bytes"
	"context"
	"io"
	"net/http"
	"sort"
	"strings"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/google/uuid"

	"github.com/cliptube/backend/internal/middleware"
	"github.com/cliptube/backend/internal/models"
	"github.com/cliptube/backend/internal/repositories"
)

// withURLParams attaches chi path parameters so handler methods can be
// exercised without a full router.
func withURLParams(r *http.Request, params map[string]string) *http.Request {
	rctx := chi.NewRouteContext()
	for key, value := range params {
		rctx.URLParams.Add(key, value)
	}
	return r.WithContext(context.WithValue(r.Context(), chi.RouteCtxKey, rctx))
}

func asUser(r *http.Request, user models.User) *http.Request {
	return r.WithContext(middleware.WithUser(r.Context(), user))
}

func newID() string { return uuid.NewString() }

type stubUserStore struct {
	users   map[string]models.User
	watched map[string][]models.WatchEntry
}

func newStubUserStore() *stubUserStore {
	return &stubUserStore{
		users:   make(map[string]models.User),
		watched: make(map[string][]models.WatchEntry),
	}
}

func (s *stubUserStore) Create(_ context.Context, user models.User) error {
	for _, existing := range s.users {
		if existing.Username == user.Username || existing.Email == user.Email {
			return repositories.ErrConflict
		}
	}
	s.users[user.ID] = user
	return nil
}

func (s *stubUserStore) FindByID(_ context.Context, id string) (models.User, error) {
	user, ok := s.users[id]
	if !ok {
		return models.User{}, repositories.ErrNotFound
	}
	return user, nil
}

func (s *stubUserStore) FindByEmail(_ context.Context, email string) (models.User, error) {
	for _, user := range s.users {
		if user.Email == email {
			return user, nil
		}
	}
	return models.User{}, repositories.ErrNotFound
}

func (s *stubUserStore) FindByUsername(_ context.Context, username string) (models.User, error) {
	for _, user := range s.users {
		if user.Username == username {
			return user, nil
		}
	}
	return models.User{}, repositories.ErrNotFound
}

func (s *stubUserStore) SetRefreshToken(_ context.Context, userID, token string) error {
	user, ok := s.users[userID]
	if !ok {
		return repositories.ErrNotFound
	}
	user.RefreshToken = token
	s.users[userID] = user
	return nil
}

func (s *stubUserStore) SetPassword(_ context.Context, userID, passwordHash string) error {
	user, ok := s.users[userID]
	if !ok {
		return repositories.ErrNotFound
	}
	user.Password = passwordHash
	s.users[userID] = user
	return nil
}

func (s *stubUserStore) UpdateAccount(_ context.Context, userID, fullName, email string) (models.User, error) {
	for id, existing := range s.users {
		if id != userID && existing.Email == email {
			return models.User{}, repositories.ErrConflict
		}
	}
	user, ok := s.users[userID]
	if !ok {
		return models.User{}, repositories.ErrNotFound
	}
	user.FullName = fullName
	user.Email = email
	s.users[userID] = user
	return user, nil
}

func (s *stubUserStore) SetImage(_ context.Context, userID, column, url string) (models.User, error) {
	user, ok := s.users[userID]
	if !ok {
		return models.User{}, repositories.ErrNotFound
	}
	if column == "cover_image_url" {
		user.CoverImageURL = url
	} else {
		user.AvatarURL = url
	}
	s.users[userID] = user
	return user, nil
}

func (s *stubUserStore) ChannelProfile(_ context.Context, username, viewerID string) (models.ChannelProfile, error) {
	user, err := s.FindByUsername(nil, username)
	if err != nil {
		return models.ChannelProfile{}, err
	}
	return models.ChannelProfile{
		ID:       user.ID,
		Username: user.Username,
		FullName: user.FullName,
	}, nil
}

func (s *stubUserStore) RecordWatch(_ context.Context, userID, videoID string) error {
	s.watched[userID] = append(s.watched[userID], models.WatchEntry{
		Video:     models.Video{ID: videoID},
		WatchedAt: time.Now(),
	})
	return nil
}

func (s *stubUserStore) WatchHistory(_ context.Context, userID string, params repositories.ListParams) ([]models.WatchEntry, int, error) {
	entries := s.watched[userID]
	return entries, len(entries), nil
}

type stubVideoStore struct {
	videos map[string]models.Video
}

func newStubVideoStore() *stubVideoStore {
	return &stubVideoStore{videos: make(map[string]models.Video)}
}

func (s *stubVideoStore) Create(_ context.Context, video models.Video) error {
	s.videos[video.ID] = video
	return nil
}

func (s *stubVideoStore) FindByID(_ context.Context, id string) (models.Video, error) {
	video, ok := s.videos[id]
	if !ok {
		return models.Video{}, repositories.ErrNotFound
	}
	return video, nil
}

func (s *stubVideoStore) List(_ context.Context, params repositories.ListParams, filter repositories.VideoFilter) ([]models.Video, int, error) {
	var matched []models.Video
	for _, video := range s.videos {
		if filter.OwnerID != "" && video.OwnerID != filter.OwnerID {
			continue
		}
		if filter.PublishedOnly && !video.IsPublished {
			continue
		}
		if params.Query != "" && !strings.Contains(strings.ToLower(video.Title), strings.ToLower(params.Query)) {
			continue
		}
		matched = append(matched, video)
	}
	sort.Slice(matched, func(i, j int) bool { return matched[i].ID < matched[j].ID })

	total := len(matched)
	start := (params.Page - 1) * params.Limit
	if start > total {
		start = total
	}
	end := start + params.Limit
	if end > total {
		end = total
	}
	return matched[start:end], total, nil
}

func (s *stubVideoStore) Update(_ context.Context, video models.Video) (models.Video, error) {
	if _, ok := s.videos[video.ID]; !ok {
		return models.Video{}, repositories.ErrNotFound
	}
	s.videos[video.ID] = video
	return video, nil
}

func (s *stubVideoStore) Delete(_ context.Context, id string) error {
	if _, ok := s.videos[id]; !ok {
		return repositories.ErrNotFound
	}
	delete(s.videos, id)
	return nil
}

func (s *stubVideoStore) TogglePublish(_ context.Context, id string) (models.Video, error) {
	video, ok := s.videos[id]
	if !ok {
		return models.Video{}, repositories.ErrNotFound
	}
	video.IsPublished = !video.IsPublished
	s.videos[id] = video
	return video, nil
}

type stubCommentStore struct {
	comments map[string]models.Comment
}

func newStubCommentStore() *stubCommentStore {
	return &stubCommentStore{comments: make(map[string]models.Comment)}
}

func (s *stubCommentStore) Create(_ context.Context, comment models.Comment) error {
	s.comments[comment.ID] = comment
	return nil
}

func (s *stubCommentStore) FindByID(_ context.Context, id string) (models.Comment, error) {
	comment, ok := s.comments[id]
	if !ok {
		return models.Comment{}, repositories.ErrNotFound
	}
	return comment, nil
}

func (s *stubCommentStore) ListForVideo(_ context.Context, videoID string, params repositories.ListParams) ([]models.Comment, int, error) {
	var matched []models.Comment
	for _, comment := range s.comments {
		if comment.VideoID == videoID {
			matched = append(matched, comment)
		}
	}
	return matched, len(matched), nil
}

func (s *stubCommentStore) UpdateContent(_ context.Context, id, content string) (models.Comment, error) {
	comment, ok := s.comments[id]
	if !ok {
		return models.Comment{}, repositories.ErrNotFound
	}
	comment.Content = content
	s.comments[id] = comment
	return comment, nil
}

func (s *stubCommentStore) Delete(_ context.Context, id string) error {
	if _, ok := s.comments[id]; !ok {
		return repositories.ErrNotFound
	}
	delete(s.comments, id)
	return nil
}

type stubTweetStore struct {
	tweets map[string]models.Tweet
}

func newStubTweetStore() *stubTweetStore {
	return &stubTweetStore{tweets: make(map[string]models.Tweet)}
}

func (s *stubTweetStore) Create(_ context.Context, tweet models.Tweet) error {
	s.tweets[tweet.ID] = tweet
	return nil
}

func (s *stubTweetStore) FindByID(_ context.Context, id string) (models.Tweet, error) {
	tweet, ok := s.tweets[id]
	if !ok {
		return models.Tweet{}, repositories.ErrNotFound
	}
	return tweet, nil
}

func (s *stubTweetStore) List(_ context.Context, params repositories.ListParams, ownerID string) ([]models.Tweet, int, error) {
	var matched []models.Tweet
	for _, tweet := range s.tweets {
		if ownerID != "" && tweet.OwnerID != ownerID {
			continue
		}
		matched = append(matched, tweet)
	}
	return matched, len(matched), nil
}

func (s *stubTweetStore) UpdateContent(_ context.Context, id, content string) (models.Tweet, error) {
	tweet, ok := s.tweets[id]
	if !ok {
		return models.Tweet{}, repositories.ErrNotFound
	}
	tweet.Content = content
	s.tweets[id] = tweet
	return tweet, nil
}

func (s *stubTweetStore) Delete(_ context.Context, id string) error {
	if _, ok := s.tweets[id]; !ok {
		return repositories.ErrNotFound
	}
	delete(s.tweets, id)
	return nil
}

type stubLikeStore struct {
	videoLikes map[string]map[string]bool
}

func newStubLikeStore() *stubLikeStore {
	return &stubLikeStore{videoLikes: make(map[string]map[string]bool)}
}

func (s *stubLikeStore) ToggleVideo(_ context.Context, userID, videoID string) (bool, error) {
	if s.videoLikes[videoID] == nil {
		s.videoLikes[videoID] = make(map[string]bool)
	}
	if s.videoLikes[videoID][userID] {
		delete(s.videoLikes[videoID], userID)
		return false, nil
	}
	s.videoLikes[videoID][userID] = true
	return true, nil
}

func (s *stubLikeStore) ToggleComment(ctx context.Context, userID, commentID string) (bool, error) {
	return s.ToggleVideo(ctx, userID, commentID)
}

func (s *stubLikeStore) ToggleTweet(ctx context.Context, userID, tweetID string) (bool, error) {
	return s.ToggleVideo(ctx, userID, tweetID)
}

func (s *stubLikeStore) ListLikedVideos(_ context.Context, userID string, params repositories.ListParams) ([]models.Video, int, error) {
	var liked []models.Video
	for videoID, likers := range s.videoLikes {
		if likers[userID] {
			liked = append(liked, models.Video{ID: videoID})
		}
	}
	return liked, len(liked), nil
}

type stubSubscriptionStore struct {
	subs map[string]map[string]bool
}

func newStubSubscriptionStore() *stubSubscriptionStore {
	return &stubSubscriptionStore{subs: make(map[string]map[string]bool)}
}

func (s *stubSubscriptionStore) Toggle(_ context.Context, subscriberID, channelID string) (bool, error) {
	if subscriberID == channelID {
		return false, repositories.ErrConflict
	}
	if s.subs[channelID] == nil {
		s.subs[channelID] = make(map[string]bool)
	}
	if s.subs[channelID][subscriberID] {
		delete(s.subs[channelID], subscriberID)
		return false, nil
	}
	s.subs[channelID][subscriberID] = true
	return true, nil
}

func (s *stubSubscriptionStore) ListSubscribers(_ context.Context, channelID string, params repositories.ListParams) ([]models.OwnerSummary, int, error) {
	var subscribers []models.OwnerSummary
	for subscriberID := range s.subs[channelID] {
		subscribers = append(subscribers, models.OwnerSummary{ID: subscriberID})
	}
	return subscribers, len(subscribers), nil
}

func (s *stubSubscriptionStore) ListSubscribedChannels(_ context.Context, subscriberID string, params repositories.ListParams) ([]models.OwnerSummary, int, error) {
	var channels []models.OwnerSummary
	for channelID, subscribers := range s.subs {
		if subscribers[subscriberID] {
			channels = append(channels, models.OwnerSummary{ID: channelID})
		}
	}
	return channels, len(channels), nil
}

type stubPlaylistStore struct {
	playlists map[string]models.Playlist
	members   map[string]map[string]bool
}

func newStubPlaylistStore() *stubPlaylistStore {
	return &stubPlaylistStore{
		playlists: make(map[string]models.Playlist),
		members:   make(map[string]map[string]bool),
	}
}

func (s *stubPlaylistStore) Create(_ context.Context, playlist models.Playlist) error {
	s.playlists[playlist.ID] = playlist
	return nil
}

func (s *stubPlaylistStore) FindByID(_ context.Context, id string) (models.Playlist, error) {
	playlist, ok := s.playlists[id]
	if !ok {
		return models.Playlist{}, repositories.ErrNotFound
	}
	playlist.Videos = []models.Video{}
	for videoID := range s.members[id] {
		playlist.Videos = append(playlist.Videos, models.Video{ID: videoID})
	}
	return playlist, nil
}

func (s *stubPlaylistStore) ListForUser(_ context.Context, ownerID string, params repositories.ListParams) ([]models.Playlist, int, error) {
	var matched []models.Playlist
	for _, playlist := range s.playlists {
		if playlist.OwnerID == ownerID {
			matched = append(matched, playlist)
		}
	}
	return matched, len(matched), nil
}

func (s *stubPlaylistStore) Update(_ context.Context, id, name, description string) (models.Playlist, error) {
	playlist, ok := s.playlists[id]
	if !ok {
		return models.Playlist{}, repositories.ErrNotFound
	}
	playlist.Name = name
	playlist.Description = description
	s.playlists[id] = playlist
	return playlist, nil
}

func (s *stubPlaylistStore) Delete(_ context.Context, id string) error {
	if _, ok := s.playlists[id]; !ok {
		return repositories.ErrNotFound
	}
	delete(s.playlists, id)
	delete(s.members, id)
	return nil
}

func (s *stubPlaylistStore) AddVideo(_ context.Context, playlistID, videoID string) error {
	if _, ok := s.playlists[playlistID]; !ok {
		return repositories.ErrNotFound
	}
	if s.members[playlistID] == nil {
		s.members[playlistID] = make(map[string]bool)
	}
	if s.members[playlistID][videoID] {
		return repositories.ErrConflict
	}
	s.members[playlistID][videoID] = true
	return nil
}

func (s *stubPlaylistStore) RemoveVideo(_ context.Context, playlistID, videoID string) error {
	if !s.members[playlistID][videoID] {
		return repositories.ErrNotFound
	}
	delete(s.members[playlistID], videoID)
	return nil
}

func (s *stubPlaylistStore) IsVideoSaved(_ context.Context, ownerID, videoID string) (bool, error) {
	for playlistID, videos := range s.members {
		if s.playlists[playlistID].OwnerID == ownerID && videos[videoID] {
			return true, nil
		}
	}
	return false, nil
}

type stubDashboardStore struct {
	stats models.ChannelStats
}

func (s stubDashboardStore) ChannelStats(_ context.Context, channelID string) (models.ChannelStats, error) {
	return s.stats, nil
}

type stubMedia struct {
	saved   []string
	deleted []string
	baseURL string
}

func (s *stubMedia) Save(_ context.Context, name string, r io.Reader) (string, error) {
	var buf bytes.Buffer
	if _, err := io.Copy(&buf, r); err != nil {
		return "", err
	}
	s.saved = append(s.saved, name)
	base := s.baseURL
	if base == "" {
		base = "https://media.test"
	}
	return base + "/" + name, nil
}

func (s *stubMedia) Delete(_ context.Context, url string) error {
	s.deleted = append(s.deleted, url)
	return nil
}
