package main

import (
	"errors"
	"net/http"

	"github.com/gin-gonic/gin"

	"github.com/contractsync/backend/config"
	"github.com/contractsync/backend/models"
	"github.com/contractsync/backend/utils"
)

// createReconciliationRunHandler records a queued run for the dispatcher to
// pick up. The response is the queued row; callers poll GET by id for the
// terminal status.
func createReconciliationRunHandler(app *application) gin.HandlerFunc {
	return func(c *gin.Context) {
		tenantId := tenantFrom(c)

		var req models.NewReconciliationRun
		if err := c.ShouldBindJSON(&req); err != nil {
			c.JSON(http.StatusBadRequest, gin.H{"error": "vendor_contract_id is required"})
			return
		}
		if req.RunType != "" && !models.ValidRunType(req.RunType) {
			c.JSON(http.StatusBadRequest, gin.H{"error": "run_type must be manual, scheduled or retry"})
			return
		}

		ctx := c.Request.Context()
		db := app.DB()

		if err := utils.ValidateResourceId[models.VendorContract](ctx, db, tenantId, req.VendorContractId); err != nil {
			if errors.Is(err, utils.ErrorRecordNotFound) {
				c.JSON(http.StatusNotFound, gin.H{"error": "vendor contract not found"})
				return
			}
			config.LogError(app.logger, "reconciliation.go", "createReconciliationRunHandler", "validate contract", req.VendorContractId.String(), err)
			c.JSON(http.StatusInternalServerError, gin.H{"error": "could not validate vendor contract"})
			return
		}

		run := models.ReconciliationRun{
			TenantId:         tenantId,
			VendorContractId: req.VendorContractId,
			RunType:          req.RunType,
			Status:           models.RunStatusQueued,
		}
		if err := db.WithContext(ctx).Create(&run).Error; err != nil {
			config.LogError(app.logger, "reconciliation.go", "createReconciliationRunHandler", "create run", req.VendorContractId.String(), err)
			c.JSON(http.StatusInternalServerError, gin.H{"error": "could not create reconciliation run"})
			return
		}
		c.JSON(http.StatusCreated, run)
	}
}

func listReconciliationRunsHandler(app *application) gin.HandlerFunc {
	return func(c *gin.Context) {
		tenantId := tenantFrom(c)
		runs, err := utils.FetchAllModels[models.ReconciliationRun](c.Request.Context(), app.DB(), tenantId, "created_at", listOptions(c))
		if err != nil {
			config.LogError(app.logger, "reconciliation.go", "listReconciliationRunsHandler", "list runs", tenantId.String(), err)
			c.JSON(http.StatusInternalServerError, gin.H{"error": "could not list reconciliation runs"})
			return
		}
		c.JSON(http.StatusOK, runs)
	}
}

func getReconciliationRunHandler(app *application) gin.HandlerFunc {
	return func(c *gin.Context) {
		tenantId := tenantFrom(c)
		id, ok := pathID(c)
		if !ok {
			return
		}
		run, err := utils.FetchModel[models.ReconciliationRun](c.Request.Context(), app.DB(), tenantId, id)
		if err != nil {
			if errors.Is(err, utils.ErrorRecordNotFound) {
				c.JSON(http.StatusNotFound, gin.H{"error": "reconciliation run not found"})
				return
			}
			config.LogError(app.logger, "reconciliation.go", "getReconciliationRunHandler", "fetch run", id.String(), err)
			c.JSON(http.StatusInternalServerError, gin.H{"error": "could not fetch reconciliation run"})
			return
		}
		c.JSON(http.StatusOK, run)
	}
}
