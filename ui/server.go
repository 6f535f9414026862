package ui

import (
	"context"
	"net/http"

	"github.com/gin-gonic/gin"

	"seodash/adapters/excel"
	"seodash/domain/searchdata"
	"seodash/internal"
	"seodash/internal/errors"
	"seodash/internal/store"
	"seodash/ports"
)

// SearchConsole is the signed-in Search Console session used by the API
type SearchConsole interface {
	ports.ReportFetcher
	Configured() bool
	Authenticated() bool
	AuthCodeURL() string
	Exchange(ctx context.Context, state, code string) error
	SignOut()
}

// NotificationFeed is the notifier whose history is exposed over HTTP
type NotificationFeed interface {
	ports.Notifier
	Recent() []ports.Notification
}

// Dependencies wires the server to the application components
type Dependencies struct {
	Store          *store.Store
	Ingestor       *excel.Ingestor
	Notifications  NotificationFeed
	SearchConsole  SearchConsole
	MaxUploadBytes int64
	Logger         *internal.Logger
}

// Server represents the dashboard's HTTP API
type Server struct {
	router *gin.Engine

	store          *store.Store
	ingestor       *excel.Ingestor
	notifications  NotificationFeed
	searchConsole  SearchConsole
	maxUploadBytes int64
	logger         *internal.Logger
}

// NewServer creates a new web server instance with all routes registered
func NewServer(deps Dependencies) *Server {
	logger := deps.Logger
	if logger == nil {
		logger = internal.DefaultLogger
	}

	s := &Server{
		router:         gin.Default(),
		store:          deps.Store,
		ingestor:       deps.Ingestor,
		notifications:  deps.Notifications,
		searchConsole:  deps.SearchConsole,
		maxUploadBytes: deps.MaxUploadBytes,
		logger:         logger.WithComponent("HTTP"),
	}

	s.setupRoutes()
	return s
}

// Handler exposes the router for an http.Server or tests
func (s *Server) Handler() http.Handler {
	return s.router
}

func (s *Server) setupRoutes() {
	api := s.router.Group("/api")
	{
		api.GET("/status", s.handleStatus)
		api.POST("/reports/upload", s.limitBody(), s.handleUpload)
		api.GET("/records", s.handleRecords)
		api.DELETE("/records", s.handleClear)
		api.GET("/summary", s.handleSummary)
		api.GET("/top", s.handleTop)
		api.GET("/declining", s.handleDeclining)
		api.GET("/notifications", s.handleNotifications)

		sc := api.Group("/searchconsole", s.requireSearchConsole())
		sc.GET("/sites", s.handleListSites)
		sc.POST("/fetch", s.handleFetchReport)
	}

	auth := s.router.Group("/auth/google", s.requireSearchConsole())
	{
		auth.GET("/login", s.handleLogin)
		auth.GET("/callback", s.handleCallback)
		auth.POST("/logout", s.handleLogout)
	}

	s.router.GET("/help", s.handleHelpIndex)
	s.router.GET("/help/:page", s.handleHelpPage)
}

func (s *Server) handleStatus(c *gin.Context) {
	authenticated := false
	if s.searchConsole != nil {
		authenticated = s.searchConsole.Authenticated()
	}

	c.JSON(http.StatusOK, gin.H{
		"loaded":        s.store.Loaded(),
		"count":         s.store.Len(),
		"categories":    s.store.Categories(),
		"authenticated": authenticated,
	})
}

// respondError writes err as JSON with the status matching its code
func (s *Server) respondError(c *gin.Context, err error, message string) {
	if errors.GetCode(err) == "UNKNOWN" {
		err = errors.FromDomain(err, message)
	}
	status := errors.HTTPStatus(err)
	if status >= http.StatusInternalServerError {
		s.logger.Error("%s %s: %v", c.Request.Method, c.FullPath(), err)
	} else {
		s.logger.Debug("%s %s: %v", c.Request.Method, c.FullPath(), err)
	}

	c.JSON(status, gin.H{
		"error":  message,
		"code":   errors.GetCode(err),
		"detail": err.Error(),
	})
}

// categoryParam reads ?category=, falling back to def when absent
func categoryParam(c *gin.Context, def searchdata.Category) (searchdata.Category, error) {
	raw := c.Query("category")
	if raw == "" {
		return def, nil
	}
	category, err := searchdata.ParseCategory(raw)
	if err != nil {
		return "", errors.InvalidInput(err.Error())
	}
	return category, nil
}
