package ui

import (
	"fmt"
	"net/http"

	"github.com/gin-gonic/gin"

	"seodash/internal/errors"
	"seodash/ports"
)

func (s *Server) handleLogin(c *gin.Context) {
	c.Redirect(http.StatusFound, s.searchConsole.AuthCodeURL())
}

func (s *Server) handleCallback(c *gin.Context) {
	if reason := c.Query("error"); reason != "" {
		s.notify(c, ports.NotificationError, "Google sign in failed")
		s.respondError(c, errors.Unauthorized("consent denied: "+reason), "Google sign in failed")
		return
	}

	if err := s.searchConsole.Exchange(c.Request.Context(), c.Query("state"), c.Query("code")); err != nil {
		s.notify(c, ports.NotificationError, "Google sign in failed")
		s.respondError(c, err, "Google sign in failed")
		return
	}

	s.notify(c, ports.NotificationSuccess, "Connected to Google Search Console")
	c.JSON(http.StatusOK, gin.H{"authenticated": true})
}

func (s *Server) handleLogout(c *gin.Context) {
	s.searchConsole.SignOut()
	s.notify(c, ports.NotificationSuccess, "Signed out from Google")
	c.JSON(http.StatusOK, gin.H{"authenticated": false})
}

func (s *Server) handleListSites(c *gin.Context) {
	sites, err := s.searchConsole.ListSites(c.Request.Context())
	if err != nil {
		s.notify(c, ports.NotificationError, "Failed to fetch your Search Console properties")
		s.respondError(c, err, "Failed to fetch your Search Console properties")
		return
	}
	c.JSON(http.StatusOK, gin.H{"sites": sites})
}

// handleFetchReport pulls a report from the API and replaces the stored records
func (s *Server) handleFetchReport(c *gin.Context) {
	var req ports.ReportRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		s.respondError(c, errors.InvalidInput(err.Error()), "Invalid report request")
		return
	}

	ctx := c.Request.Context()
	records, err := s.searchConsole.FetchReport(ctx, req)
	if err != nil {
		s.notify(c, ports.NotificationError, "Failed to fetch Search Console data")
		s.respondError(c, err, "Failed to fetch Search Console data")
		return
	}

	if err := s.store.SetRecords(ctx, records); err != nil {
		s.notify(c, ports.NotificationInfo, "Search Console returned no rows for this range")
		s.respondError(c, err, "Search Console returned no rows")
		return
	}

	s.notify(c, ports.NotificationSuccess, fmt.Sprintf("Successfully imported %d records from Search Console", len(records)))
	c.JSON(http.StatusOK, gin.H{
		"message": "Report fetched",
		"site":    req.SiteURL,
		"count":   len(records),
	})
}

func (s *Server) notify(c *gin.Context, level ports.NotificationLevel, message string) {
	if s.notifications == nil {
		return
	}
	s.notifications.Notify(c.Request.Context(), level, message)
}
