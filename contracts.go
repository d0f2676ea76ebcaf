package main

import (
	"errors"
	"net/http"

	"github.com/gin-gonic/gin"

	"github.com/contractsync/backend/config"
	"github.com/contractsync/backend/models"
	"github.com/contractsync/backend/utils"
)

func createVendorContractHandler(app *application) gin.HandlerFunc {
	return func(c *gin.Context) {
		tenantId := tenantFrom(c)

		var req models.NewVendorContract
		if err := c.ShouldBindJSON(&req); err != nil {
			c.JSON(http.StatusBadRequest, gin.H{"error": "vendor_file_id, contract_number and vendor_name are required"})
			return
		}

		ctx := c.Request.Context()
		db := app.DB()

		// The referenced file must exist under the caller's tenant. A foreign
		// tenant's file looks absent, never forbidden.
		if err := utils.ValidateResourceId[models.VendorFile](ctx, db, tenantId, req.VendorFileId); err != nil {
			if errors.Is(err, utils.ErrorRecordNotFound) {
				c.JSON(http.StatusNotFound, gin.H{"error": "vendor file not found"})
				return
			}
			config.LogError(app.logger, "contracts.go", "createVendorContractHandler", "validate vendor file", req.VendorFileId.String(), err)
			c.JSON(http.StatusInternalServerError, gin.H{"error": "could not validate vendor file"})
			return
		}

		contract := models.VendorContract{
			TenantId:       tenantId,
			VendorFileId:   req.VendorFileId,
			ContractNumber: req.ContractNumber,
			VendorName:     req.VendorName,
			EffectiveStart: req.EffectiveStart,
			EffectiveEnd:   req.EffectiveEnd,
		}
		if err := db.WithContext(ctx).Create(&contract).Error; err != nil {
			config.LogError(app.logger, "contracts.go", "createVendorContractHandler", "create contract", req.ContractNumber, err)
			c.JSON(http.StatusInternalServerError, gin.H{"error": "could not create vendor contract"})
			return
		}
		c.JSON(http.StatusCreated, contract)
	}
}

func listVendorContractsHandler(app *application) gin.HandlerFunc {
	return func(c *gin.Context) {
		tenantId := tenantFrom(c)
		contracts, err := utils.FetchAllModels[models.VendorContract](c.Request.Context(), app.DB(), tenantId, "created_at", listOptions(c))
		if err != nil {
			config.LogError(app.logger, "contracts.go", "listVendorContractsHandler", "list contracts", tenantId.String(), err)
			c.JSON(http.StatusInternalServerError, gin.H{"error": "could not list vendor contracts"})
			return
		}
		c.JSON(http.StatusOK, contracts)
	}
}

func getVendorContractHandler(app *application) gin.HandlerFunc {
	return func(c *gin.Context) {
		tenantId := tenantFrom(c)
		id, ok := pathID(c)
		if !ok {
			return
		}
		contract, err := utils.FetchModel[models.VendorContract](c.Request.Context(), app.DB(), tenantId, id)
		if err != nil {
			if errors.Is(err, utils.ErrorRecordNotFound) {
				c.JSON(http.StatusNotFound, gin.H{"error": "vendor contract not found"})
				return
			}
			config.LogError(app.logger, "contracts.go", "getVendorContractHandler", "fetch contract", id.String(), err)
			c.JSON(http.StatusInternalServerError, gin.H{"error": "could not fetch vendor contract"})
			return
		}
		c.JSON(http.StatusOK, contract)
	}
}

func createVendorContractLineHandler(app *application) gin.HandlerFunc {
	return func(c *gin.Context) {
		tenantId := tenantFrom(c)

		var req models.NewVendorContractLine
		if err := c.ShouldBindJSON(&req); err != nil {
			c.JSON(http.StatusBadRequest, gin.H{"error": "vendor_contract_id, vendor_item_number, vendor_uom and a decimal contract_price are required"})
			return
		}

		ctx := c.Request.Context()
		db := app.DB()

		if err := utils.ValidateResourceId[models.VendorContract](ctx, db, tenantId, req.VendorContractId); err != nil {
			if errors.Is(err, utils.ErrorRecordNotFound) {
				c.JSON(http.StatusNotFound, gin.H{"error": "vendor contract not found"})
				return
			}
			config.LogError(app.logger, "contracts.go", "createVendorContractLineHandler", "validate contract", req.VendorContractId.String(), err)
			c.JSON(http.StatusInternalServerError, gin.H{"error": "could not validate vendor contract"})
			return
		}

		price, err := utils.ParseDecimal(req.ContractPrice)
		if err != nil {
			c.JSON(http.StatusBadRequest, gin.H{"error": "contract_price must be a decimal string"})
			return
		}

		line := models.VendorContractLine{
			TenantId:          tenantId,
			VendorContractId:  req.VendorContractId,
			VendorItemNumber:  req.VendorItemNumber,
			VendorUom:         req.VendorUom,
			VendorDescription: req.VendorDescription,
			ContractPrice:     price,
			Currency:          req.Currency,
			EffectiveStart:    req.EffectiveStart,
			EffectiveEnd:      req.EffectiveEnd,
		}
		if err := db.WithContext(ctx).Create(&line).Error; err != nil {
			config.LogError(app.logger, "contracts.go", "createVendorContractLineHandler", "create line", req.VendorItemNumber, err)
			c.JSON(http.StatusInternalServerError, gin.H{"error": "could not create contract line"})
			return
		}
		c.JSON(http.StatusCreated, line)
	}
}

func listVendorContractLinesHandler(app *application) gin.HandlerFunc {
	return func(c *gin.Context) {
		tenantId := tenantFrom(c)
		lines, err := utils.FetchAllModels[models.VendorContractLine](c.Request.Context(), app.DB(), tenantId, "created_at", listOptions(c))
		if err != nil {
			config.LogError(app.logger, "contracts.go", "listVendorContractLinesHandler", "list lines", tenantId.String(), err)
			c.JSON(http.StatusInternalServerError, gin.H{"error": "could not list contract lines"})
			return
		}
		c.JSON(http.StatusOK, lines)
	}
}
