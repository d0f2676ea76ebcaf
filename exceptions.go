package main

import (
	"errors"
	"net/http"

	"github.com/gin-gonic/gin"

	"github.com/contractsync/backend/config"
	"github.com/contractsync/backend/models"
	"github.com/contractsync/backend/utils"
)

func listExceptionsHandler(app *application) gin.HandlerFunc {
	return func(c *gin.Context) {
		tenantId := tenantFrom(c)
		exceptions, err := utils.FetchAllModels[models.ReconciliationException](c.Request.Context(), app.DB(), tenantId, "created_at", listOptions(c))
		if err != nil {
			config.LogError(app.logger, "exceptions.go", "listExceptionsHandler", "list exceptions", tenantId.String(), err)
			c.JSON(http.StatusInternalServerError, gin.H{"error": "could not list exceptions"})
			return
		}
		c.JSON(http.StatusOK, exceptions)
	}
}

// exceptionUpdateColumns maps a status update onto columns. message is only
// written when supplied: an absent message leaves the stored one intact, and
// gorm's autoUpdateTime advances updated_at on every update either way.
func exceptionUpdateColumns(req models.ExceptionStatusUpdate) map[string]interface{} {
	updates := map[string]interface{}{"status": req.Status}
	if req.Message != "" {
		updates["message"] = req.Message
	}
	return updates
}

// updateExceptionHandler moves an exception through its review lifecycle.
// status is required; message is optional and leaves the stored message
// untouched when absent. updated_at advances on every successful update.
func updateExceptionHandler(app *application) gin.HandlerFunc {
	return func(c *gin.Context) {
		tenantId := tenantFrom(c)
		id, ok := pathID(c)
		if !ok {
			return
		}

		var req models.ExceptionStatusUpdate
		if err := c.ShouldBindJSON(&req); err != nil {
			c.JSON(http.StatusBadRequest, gin.H{"error": "status is required"})
			return
		}
		if !models.ValidExceptionStatus(req.Status) {
			c.JSON(http.StatusBadRequest, gin.H{"error": "status must be open, acknowledged, resolved or dismissed"})
			return
		}

		ctx := c.Request.Context()
		db := app.DB()

		if err := utils.ValidateResourceId[models.ReconciliationException](ctx, db, tenantId, id); err != nil {
			if errors.Is(err, utils.ErrorRecordNotFound) {
				c.JSON(http.StatusNotFound, gin.H{"error": "exception not found"})
				return
			}
			config.LogError(app.logger, "exceptions.go", "updateExceptionHandler", "validate exception", id.String(), err)
			c.JSON(http.StatusInternalServerError, gin.H{"error": "could not fetch exception"})
			return
		}

		if err := db.WithContext(ctx).Model(&models.ReconciliationException{}).
			Where("id = ? AND tenant_id = ?", id, tenantId).
			Updates(exceptionUpdateColumns(req)).Error; err != nil {
			config.LogError(app.logger, "exceptions.go", "updateExceptionHandler", "update exception", id.String(), err)
			c.JSON(http.StatusInternalServerError, gin.H{"error": "could not update exception"})
			return
		}

		updated, err := utils.FetchModel[models.ReconciliationException](ctx, db, tenantId, id)
		if err != nil {
			config.LogError(app.logger, "exceptions.go", "updateExceptionHandler", "refetch exception", id.String(), err)
			c.JSON(http.StatusInternalServerError, gin.H{"error": "could not fetch exception"})
			return
		}
		c.JSON(http.StatusOK, updated)
	}
}
