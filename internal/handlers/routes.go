package handlers

import (
	"log/slog"
	"net/http"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/go-chi/cors"

	"github.com/cliptube/backend/internal/middleware"
)

// Dependencies collects the wired services the router needs.
type Dependencies struct {
	Logger *slog.Logger

	Users         UserStore
	Videos        VideoStore
	Comments      CommentStore
	Tweets        TweetStore
	Likes         LikeStore
	Subscriptions SubscriptionStore
	Playlists     PlaylistStore
	Dashboard     DashboardStore

	Tokens        TokenManager
	TokenVerifier middleware.TokenVerifier
	Media         MediaStorage
	DB            Pinger

	AuthLimiter   RateLimiter
	CookieSecure  bool
	CORSOrigin    string
	UploadTimeout time.Duration
}

// NewRouter builds the full /api/v1 route tree.
func NewRouter(deps Dependencies) http.Handler {
	userHandler := UserHandler{
		Users:         deps.Users,
		Tokens:        deps.Tokens,
		Media:         deps.Media,
		AuthLimiter:   deps.AuthLimiter,
		CookieSecure:  deps.CookieSecure,
		UploadTimeout: deps.UploadTimeout,
	}
	videoHandler := VideoHandler{
		Videos:        deps.Videos,
		Users:         deps.Users,
		Media:         deps.Media,
		UploadTimeout: deps.UploadTimeout,
	}
	commentHandler := CommentHandler{Comments: deps.Comments}
	tweetHandler := TweetHandler{Tweets: deps.Tweets}
	likeHandler := LikeHandler{Likes: deps.Likes}
	subscriptionHandler := SubscriptionHandler{Subscriptions: deps.Subscriptions}
	playlistHandler := PlaylistHandler{Playlists: deps.Playlists}
	dashboardHandler := DashboardHandler{Dashboard: deps.Dashboard, Videos: deps.Videos}
	healthHandler := HealthHandler{DB: deps.DB}

	requireAuth := middleware.RequireAuth(deps.TokenVerifier, deps.Users)
	optionalAuth := middleware.OptionalAuth(deps.TokenVerifier, deps.Users)

	r := chi.NewRouter()
	r.Use(middleware.RequestLogger(deps.Logger))

	origins := []string{"*"}
	credentials := false
	if deps.CORSOrigin != "" && deps.CORSOrigin != "*" {
		origins = []string{deps.CORSOrigin}
		credentials = true
	}
	r.Use(cors.Handler(cors.Options{
		AllowedOrigins:   origins,
		AllowedMethods:   []string{http.MethodGet, http.MethodPost, http.MethodPatch, http.MethodPut, http.MethodDelete, http.MethodOptions},
		AllowedHeaders:   []string{"Accept", "Authorization", "Content-Type"},
		AllowCredentials: credentials,
		MaxAge:           300,
	}))

	r.Route("/api/v1", func(r chi.Router) {
		r.Get("/healthcheck", healthHandler.Check)

		r.Route("/users", func(r chi.Router) {
			r.Post("/register", userHandler.Register)
			r.Post("/login", userHandler.Login)
			r.Post("/refresh-token", userHandler.Refresh)

			r.With(optionalAuth).Get("/c/{username}", userHandler.ChannelProfile)

			r.Group(func(r chi.Router) {
				r.Use(requireAuth)
				r.Post("/logout", userHandler.Logout)
				r.Post("/change-password", userHandler.ChangePassword)
				r.Get("/current-user", userHandler.CurrentUser)
				r.Patch("/update-account", userHandler.UpdateAccount)
				r.Patch("/avatar", userHandler.UpdateAvatar)
				r.Patch("/cover-image", userHandler.UpdateCoverImage)
				r.Get("/history", userHandler.WatchHistory)
			})
		})

		r.Route("/video", func(r chi.Router) {
			r.With(optionalAuth).Get("/", videoHandler.List)
			r.With(optionalAuth).Get("/{videoId}", videoHandler.Get)

			r.Group(func(r chi.Router) {
				r.Use(requireAuth)
				r.Post("/", videoHandler.Publish)
				r.Patch("/{videoId}", videoHandler.Update)
				r.Delete("/{videoId}", videoHandler.Delete)
				r.Patch("/toggle/publish/{videoId}", videoHandler.TogglePublish)
			})
		})

		r.Route("/comments", func(r chi.Router) {
			r.Get("/{videoId}", commentHandler.ListForVideo)

			r.Group(func(r chi.Router) {
				r.Use(requireAuth)
				r.Post("/{videoId}", commentHandler.Create)
				r.Patch("/c/{commentId}", commentHandler.Update)
				r.Delete("/c/{commentId}", commentHandler.Delete)
			})
		})

		r.Route("/tweets", func(r chi.Router) {
			r.Get("/", tweetHandler.List)
			r.Get("/user/{userId}", tweetHandler.ListForUser)

			r.Group(func(r chi.Router) {
				r.Use(requireAuth)
				r.Post("/", tweetHandler.Create)
				r.Patch("/{tweetId}", tweetHandler.Update)
				r.Delete("/{tweetId}", tweetHandler.Delete)
			})
		})

		r.Route("/likes", func(r chi.Router) {
			r.Use(requireAuth)
			r.Post("/toggle/v/{videoId}", likeHandler.ToggleVideo)
			r.Post("/toggle/c/{commentId}", likeHandler.ToggleComment)
			r.Post("/toggle/t/{tweetId}", likeHandler.ToggleTweet)
			r.Get("/videos", likeHandler.ListLikedVideos)
		})

		r.Route("/subscriptions", func(r chi.Router) {
			r.Get("/u/{channelId}", subscriptionHandler.ListSubscribers)

			r.Group(func(r chi.Router) {
				r.Use(requireAuth)
				r.Post("/c/{channelId}", subscriptionHandler.Toggle)
				r.Get("/c/{channelId}", subscriptionHandler.ListSubscribedChannels)
			})
		})

		r.Route("/playlist", func(r chi.Router) {
			r.Get("/{playlistId}", playlistHandler.Get)
			r.Get("/user/{userId}", playlistHandler.ListForUser)

			r.Group(func(r chi.Router) {
				r.Use(requireAuth)
				r.Post("/", playlistHandler.Create)
				r.Patch("/{playlistId}", playlistHandler.Update)
				r.Delete("/{playlistId}", playlistHandler.Delete)
				r.Patch("/add/{videoId}/{playlistId}", playlistHandler.AddVideo)
				r.Patch("/remove/{videoId}/{playlistId}", playlistHandler.RemoveVideo)
				r.Get("/video/{videoId}", playlistHandler.SavedStatus)
			})
		})

		r.Route("/dashboard", func(r chi.Router) {
			r.Use(requireAuth)
			r.Get("/stats", dashboardHandler.Stats)
			r.Get("/videos", dashboardHandler.ListVideos)
		})
	})

	return r
}
