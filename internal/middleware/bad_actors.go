package middleware

import (
	"strings"

	"github.com/gin-gonic/gin"
)

var badPaths = []string{
	".env", "php", "mysql", "cgi-bin", "index.jsp", "wp-login.php",
	"wp-admin", "xmlrpc.php", "config.php", "passwd", "shadow", "backup",
	"bin/bash", "bin/sh", "cmd.exe", "powershell", "actuator", "geoserver",
	"manager/html", "web-console", "login.do", "favicon.ico",
}

// BlockBadActorsMiddleware drops the scanner noise that hits any
// internet-facing API before it reaches a handler.
func BlockBadActorsMiddleware() gin.HandlerFunc {
	return func(c *gin.Context) {
		requestPath := c.Request.URL.Path

		for _, path := range badPaths {
			if strings.Contains(requestPath, path) {
				c.JSON(403, gin.H{"error": "Forbidden"})
				c.Abort()
				return
			}
		}
		c.Next()
	}
}
