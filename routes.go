package main

import (
	"net/http"

	"github.com/gin-gonic/gin"
	"github.com/google/uuid"

	"github.com/contractsync/backend/utils"
)

const tenantHeaderName = "X-Tenant-ID"

const tenantIDKey = "tenantId"

// tenantMiddleware requires a well-formed X-Tenant-ID header and puts the
// parsed id into both the gin context and the request context (for the DB
// tenant guard). Malformed headers are rejected before any handler or DB work.
func tenantMiddleware() gin.HandlerFunc {
	return func(c *gin.Context) {
		raw := c.GetHeader(tenantHeaderName)
		tenantId, err := uuid.Parse(raw)
		if err != nil {
			c.AbortWithStatusJSON(http.StatusBadRequest, gin.H{"error": "invalid X-Tenant-ID"})
			return
		}
		c.Set(tenantIDKey, tenantId)
		c.Request = c.Request.WithContext(utils.SetTenantIdInContext(c.Request.Context(), tenantId.String()))
		c.Next()
	}
}

func tenantFrom(c *gin.Context) uuid.UUID {
	v, _ := c.Get(tenantIDKey)
	id, _ := v.(uuid.UUID)
	return id
}

// pathID parses the :id path param; a malformed id is a 400.
func pathID(c *gin.Context) (uuid.UUID, bool) {
	id, err := uuid.Parse(c.Param("id"))
	if err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "invalid id"})
		return uuid.Nil, false
	}
	return id, true
}

// listOptions reads limit/offset query params; bad values fall back to
// defaults rather than erroring.
func listOptions(c *gin.Context) utils.ListOptions {
	type query struct {
		Limit  int `form:"limit"`
		Offset int `form:"offset"`
	}
	var q query
	_ = c.ShouldBindQuery(&q)
	return utils.ListOptions{Limit: q.Limit, Offset: q.Offset}
}

func registerRoutes(r *gin.Engine, app *application) {
	r.GET("/health", func(c *gin.Context) {
		c.JSON(http.StatusOK, gin.H{"status": "ok"})
	})
	r.GET("/healthz", func(c *gin.Context) { c.Status(http.StatusNoContent) })

	v1 := r.Group("/api/v1")

	// Tenant administration and the ERP probe are not tenant-scoped.
	v1.POST("/tenants", createTenantHandler(app))
	v1.GET("/tenants/:id", getTenantHandler(app))
	v1.GET("/erp/test-connection", erpTestConnectionHandler(app))

	scoped := v1.Group("")
	scoped.Use(tenantMiddleware())

	scoped.POST("/vendor-files/upload", uploadVendorFileHandler(app))
	scoped.GET("/vendor-files", listVendorFilesHandler(app))
	scoped.GET("/vendor-files/:id", getVendorFileHandler(app))
	scoped.GET("/vendor-files/:id/download-url", vendorFileDownloadURLHandler(app))
	scoped.POST("/vendor-files/:id/import", importVendorFileHandler(app))

	scoped.POST("/vendor-contracts", createVendorContractHandler(app))
	scoped.GET("/vendor-contracts", listVendorContractsHandler(app))
	scoped.GET("/vendor-contracts/:id", getVendorContractHandler(app))
	scoped.POST("/vendor-contract-lines", createVendorContractLineHandler(app))
	scoped.GET("/vendor-contract-lines", listVendorContractLinesHandler(app))

	scoped.POST("/reconciliation-runs", createReconciliationRunHandler(app))
	scoped.GET("/reconciliation-runs", listReconciliationRunsHandler(app))
	scoped.GET("/reconciliation-runs/:id", getReconciliationRunHandler(app))

	scoped.GET("/exceptions", listExceptionsHandler(app))
	scoped.PATCH("/exceptions/:id", updateExceptionHandler(app))
}
