package main

import (
	"errors"
	"net/http"

	"github.com/gin-gonic/gin"

	"github.com/contractsync/backend/config"
	"github.com/contractsync/backend/p21"
)

// erpTestConnectionHandler probes the P21 OData metadata endpoint. A missing
// base URL is a configuration problem (503); a transport failure is a
// connectivity problem (502). Any HTTP response from the feed counts as
// reachable and is reported as-is.
func erpTestConnectionHandler(app *application) gin.HandlerFunc {
	return func(c *gin.Context) {
		client := p21.NewClient("", "")
		result, err := client.TestConnection(c.Request.Context())
		if err != nil {
			if errors.Is(err, p21.ErrNotConfigured) {
				c.JSON(http.StatusServiceUnavailable, gin.H{"error": "P21 OData base URL is not configured"})
				return
			}
			config.LogError(app.logger, "erp.go", "erpTestConnectionHandler", "metadata probe", nil, err)
			c.JSON(http.StatusBadGateway, gin.H{"error": "P21 OData feed is unreachable"})
			return
		}
		c.JSON(http.StatusOK, result)
	}
}
