package ui

import (
	"html/template"
	"net/http"

	"github.com/gin-gonic/gin"

	"seodash/internal/help"
)

var helpTemplate = template.Must(template.New("help").Parse(`<!DOCTYPE html>
<html lang="en">
<head><meta charset="utf-8"><title>{{.Title}}</title></head>
<body>
<nav>{{range .Pages}}<a href="/help/{{.}}">{{.}}</a> {{end}}</nav>
<main>{{.Body}}</main>
</body>
</html>`))

func (s *Server) handleHelpIndex(c *gin.Context) {
	c.JSON(http.StatusOK, gin.H{"pages": help.Names()})
}

// handleHelpPage renders a help page as HTML, or JSON when asked for it
func (s *Server) handleHelpPage(c *gin.Context) {
	page, err := help.Render(c.Param("page"))
	if err != nil {
		s.respondError(c, err, "Help page not found")
		return
	}

	if c.NegotiateFormat(gin.MIMEHTML, gin.MIMEJSON) == gin.MIMEJSON {
		c.JSON(http.StatusOK, page)
		return
	}

	c.Status(http.StatusOK)
	c.Header("Content-Type", "text/html; charset=utf-8")
	err = helpTemplate.Execute(c.Writer, map[string]interface{}{
		"Title": page.Title,
		"Pages": help.Names(),
		// already sanitized by the help package
		"Body": template.HTML(page.HTML),
	})
	if err != nil {
		s.logger.Error("Rendering help page %s: %v", page.Name, err)
	}
}
