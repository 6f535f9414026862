package ui

import (
	stderrors "errors"
	"fmt"
	"net/http"
	"strconv"
	"time"

	"github.com/gin-gonic/gin"

	"seodash/adapters/excel"
	"seodash/domain/core"
	"seodash/domain/searchdata"
	"seodash/internal/errors"
	"seodash/ports"
)

const defaultTopLimit = 10

// handleUpload ingests a Search Console export and replaces the stored records
func (s *Server) handleUpload(c *gin.Context) {
	file, header, err := c.Request.FormFile("report")
	if err != nil {
		var tooLarge *http.MaxBytesError
		if stderrors.As(err, &tooLarge) {
			s.respondError(c, core.NewDecodeError("upload", err), "File exceeds the upload limit")
			return
		}
		s.respondError(c, errors.InvalidInput("multipart field \"report\" is required"), "No file uploaded")
		return
	}
	defer file.Close()

	if s.maxUploadBytes > 0 && header.Size > s.maxUploadBytes {
		err := fmt.Errorf("file size (%.1f MB) exceeds the %.0fMB limit", float64(header.Size)/(1024*1024), float64(s.maxUploadBytes)/(1024*1024))
		s.respondError(c, core.NewDecodeError(header.Filename, err), "File exceeds the upload limit")
		return
	}

	ctx := c.Request.Context()
	records, err := s.ingestor.Ingest(ctx, excel.Upload{Filename: header.Filename, Content: file})
	if err != nil {
		s.respondError(c, err, "Failed to import "+header.Filename)
		return
	}

	if err := s.store.SetRecords(ctx, records); err != nil {
		s.respondError(c, err, "Failed to store the imported records")
		return
	}

	c.JSON(http.StatusOK, gin.H{
		"message":    "Report imported",
		"filename":   header.Filename,
		"count":      len(records),
		"categories": searchdata.CountByCategory(records),
	})
}

func (s *Server) handleRecords(c *gin.Context) {
	if c.Query("category") == "" {
		c.JSON(http.StatusOK, gin.H{"records": s.store.Records()})
		return
	}

	category, err := categoryParam(c, "")
	if err != nil {
		s.respondError(c, err, "Invalid category")
		return
	}
	c.JSON(http.StatusOK, gin.H{
		"category": category,
		"records":  s.store.ByCategory(category),
	})
}

func (s *Server) handleClear(c *gin.Context) {
	s.store.Clear(c.Request.Context())
	s.notify(c, ports.NotificationInfo, "Data cleared")
	c.JSON(http.StatusOK, gin.H{"message": "Data cleared"})
}

func (s *Server) handleSummary(c *gin.Context) {
	category, err := categoryParam(c, searchdata.CategoryQuery)
	if err != nil {
		s.respondError(c, err, "Invalid category")
		return
	}

	c.JSON(http.StatusOK, gin.H{
		"category": category,
		"summary":  searchdata.Summarize(s.store.ByCategory(category)),
	})
}

func (s *Server) handleTop(c *gin.Context) {
	category, err := categoryParam(c, searchdata.CategoryQuery)
	if err != nil {
		s.respondError(c, err, "Invalid category")
		return
	}

	limit := defaultTopLimit
	if raw := c.Query("limit"); raw != "" {
		limit, err = strconv.Atoi(raw)
		if err != nil || limit <= 0 {
			s.respondError(c, errors.InvalidInput("limit must be a positive integer"), "Invalid limit")
			return
		}
	}

	c.JSON(http.StatusOK, gin.H{
		"category": category,
		"records":  searchdata.TopByClicks(s.store.Records(), category, limit),
	})
}

// handleDeclining compares query positions before and after ?split=YYYY-MM-DD
func (s *Server) handleDeclining(c *gin.Context) {
	split := c.Query("split")
	if _, err := time.Parse("2006-01-02", split); err != nil {
		s.respondError(c, errors.InvalidInput("split must be YYYY-MM-DD"), "Invalid split date")
		return
	}

	previous, current := searchdata.SplitByDate(s.store.ByCategory(searchdata.CategoryQuery), split)
	declines := searchdata.Declining(previous, current)

	c.JSON(http.StatusOK, gin.H{
		"split":    split,
		"previous": len(previous),
		"current":  len(current),
		"keywords": declines,
	})
}

func (s *Server) handleNotifications(c *gin.Context) {
	notifications := []ports.Notification{}
	if s.notifications != nil {
		notifications = s.notifications.Recent()
	}
	c.JSON(http.StatusOK, gin.H{"notifications": notifications})
}
