package main

import (
	"errors"
	"net/http"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/google/uuid"
	"gorm.io/gorm"

	"github.com/contractsync/backend/config"
	"github.com/contractsync/backend/ingest"
	"github.com/contractsync/backend/models"
	"github.com/contractsync/backend/utils"
)

const downloadURLExpiry = 15 * time.Minute

// uploadVendorFileHandler accepts a multipart upload (`file` + `vendor_name`),
// streams the bytes to the storage provider under a fresh object key, and
// records the VendorFile row. Content is not validated and identical bytes
// uploaded twice produce two rows with distinct keys.
func uploadVendorFileHandler(app *application) gin.HandlerFunc {
	return func(c *gin.Context) {
		tenantId := tenantFrom(c)

		vendorName := c.PostForm("vendor_name")
		if vendorName == "" {
			c.JSON(http.StatusBadRequest, gin.H{"error": "vendor_name is required"})
			return
		}

		fileHeader, err := c.FormFile("file")
		if err != nil {
			c.JSON(http.StatusBadRequest, gin.H{"error": "file is required"})
			return
		}

		src, err := fileHeader.Open()
		if err != nil {
			c.JSON(http.StatusBadRequest, gin.H{"error": "cannot read uploaded file"})
			return
		}
		defer src.Close()

		objectKey := utils.NewObjectKey(fileHeader.Filename)
		if err := utils.SaveObject(c.Request.Context(), objectKey, src); err != nil {
			config.LogError(app.logger, "uploads.go", "uploadVendorFileHandler", "save object", objectKey, err)
			c.JSON(http.StatusBadGateway, gin.H{"error": "could not store file"})
			return
		}

		record := models.VendorFile{
			TenantId:   tenantId,
			VendorName: vendorName,
			Filename:   fileHeader.Filename,
			ObjectKey:  objectKey,
			FileType:   utils.FileTypeFromName(fileHeader.Filename),
			Status:     models.VendorFileStatusUploaded,
		}
		if err := app.DB().WithContext(c.Request.Context()).Create(&record).Error; err != nil {
			config.LogError(app.logger, "uploads.go", "uploadVendorFileHandler", "create vendor file", objectKey, err)
			c.JSON(http.StatusInternalServerError, gin.H{"error": "could not record vendor file"})
			return
		}

		c.JSON(http.StatusCreated, record)
	}
}

func listVendorFilesHandler(app *application) gin.HandlerFunc {
	return func(c *gin.Context) {
		tenantId := tenantFrom(c)
		files, err := utils.FetchAllModels[models.VendorFile](c.Request.Context(), app.DB(), tenantId, "uploaded_at", listOptions(c))
		if err != nil {
			config.LogError(app.logger, "uploads.go", "listVendorFilesHandler", "list vendor files", tenantId.String(), err)
			c.JSON(http.StatusInternalServerError, gin.H{"error": "could not list vendor files"})
			return
		}
		c.JSON(http.StatusOK, files)
	}
}

func getVendorFileHandler(app *application) gin.HandlerFunc {
	return func(c *gin.Context) {
		tenantId := tenantFrom(c)
		id, ok := pathID(c)
		if !ok {
			return
		}
		file, err := utils.FetchModel[models.VendorFile](c.Request.Context(), app.DB(), tenantId, id)
		if err != nil {
			if errors.Is(err, utils.ErrorRecordNotFound) {
				c.JSON(http.StatusNotFound, gin.H{"error": "vendor file not found"})
				return
			}
			config.LogError(app.logger, "uploads.go", "getVendorFileHandler", "fetch vendor file", id.String(), err)
			c.JSON(http.StatusInternalServerError, gin.H{"error": "could not fetch vendor file"})
			return
		}
		c.JSON(http.StatusOK, file)
	}
}

// vendorFileDownloadURLHandler returns a time-limited URL for the stored
// object: a V4 signed URL on GCS, a plain access URL on the local provider.
func vendorFileDownloadURLHandler(app *application) gin.HandlerFunc {
	return func(c *gin.Context) {
		tenantId := tenantFrom(c)
		id, ok := pathID(c)
		if !ok {
			return
		}
		file, err := utils.FetchModel[models.VendorFile](c.Request.Context(), app.DB(), tenantId, id)
		if err != nil {
			if errors.Is(err, utils.ErrorRecordNotFound) {
				c.JSON(http.StatusNotFound, gin.H{"error": "vendor file not found"})
				return
			}
			config.LogError(app.logger, "uploads.go", "vendorFileDownloadURLHandler", "fetch vendor file", id.String(), err)
			c.JSON(http.StatusInternalServerError, gin.H{"error": "could not fetch vendor file"})
			return
		}

		if utils.GetStorageProvider() == utils.StorageProviderGCS {
			signed, err := utils.SignDownload(c.Request.Context(), file.ObjectKey, downloadURLExpiry)
			if err != nil {
				config.LogError(app.logger, "uploads.go", "vendorFileDownloadURLHandler", "sign url", file.ObjectKey, err)
				c.JSON(http.StatusBadGateway, gin.H{"error": "could not sign download url"})
				return
			}
			c.JSON(http.StatusOK, signed)
			return
		}

		c.JSON(http.StatusOK, utils.SignedDownload{
			DownloadURL: utils.BuildObjectAccessURL(file.ObjectKey),
			ObjectKey:   file.ObjectKey,
			ExpiresAt:   time.Now().Add(downloadURLExpiry),
		})
	}
}

type importVendorFileRequest struct {
	VendorContractId uuid.UUID `json:"vendor_contract_id" binding:"required"`
}

type importVendorFileResponse struct {
	VendorFileId     uuid.UUID                   `json:"vendor_file_id"`
	VendorContractId uuid.UUID                   `json:"vendor_contract_id"`
	LinesImported    int                         `json:"lines_imported"`
	Lines            []models.VendorContractLine `json:"lines"`
}

// importVendorFileHandler parses a stored price list (xlsx or csv) into
// contract lines under the given contract. All rows land in one transaction;
// any bad row rejects the whole import with its row number, and the file row
// flips to imported only on success.
func importVendorFileHandler(app *application) gin.HandlerFunc {
	return func(c *gin.Context) {
		tenantId := tenantFrom(c)
		id, ok := pathID(c)
		if !ok {
			return
		}

		var req importVendorFileRequest
		if err := c.ShouldBindJSON(&req); err != nil {
			c.JSON(http.StatusBadRequest, gin.H{"error": "vendor_contract_id is required"})
			return
		}

		// Imports fan out into parse + batched insert; worth a span of their own.
		ctx, span := tracer.Start(c.Request.Context(), "vendor-file.import")
		defer span.End()
		db := app.DB()

		file, err := utils.FetchModel[models.VendorFile](ctx, db, tenantId, id)
		if err != nil {
			if errors.Is(err, utils.ErrorRecordNotFound) {
				c.JSON(http.StatusNotFound, gin.H{"error": "vendor file not found"})
				return
			}
			config.LogError(app.logger, "uploads.go", "importVendorFileHandler", "fetch vendor file", id.String(), err)
			c.JSON(http.StatusInternalServerError, gin.H{"error": "could not fetch vendor file"})
			return
		}

		if err := utils.ValidateResourceId[models.VendorContract](ctx, db, tenantId, req.VendorContractId); err != nil {
			if errors.Is(err, utils.ErrorRecordNotFound) {
				c.JSON(http.StatusNotFound, gin.H{"error": "vendor contract not found"})
				return
			}
			config.LogError(app.logger, "uploads.go", "importVendorFileHandler", "validate contract", req.VendorContractId.String(), err)
			c.JSON(http.StatusInternalServerError, gin.H{"error": "could not validate vendor contract"})
			return
		}

		obj, err := utils.OpenObject(ctx, file.ObjectKey)
		if err != nil {
			config.LogError(app.logger, "uploads.go", "importVendorFileHandler", "open object", file.ObjectKey, err)
			c.JSON(http.StatusBadGateway, gin.H{"error": "could not read stored file"})
			return
		}
		defer obj.Close()

		rows, rowErrs, err := ingest.ParsePriceList(obj, file.FileType)
		if err != nil {
			if errors.Is(err, ingest.ErrUnsupportedFileType) {
				c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
				return
			}
			c.JSON(http.StatusBadRequest, gin.H{"error": "could not parse price list: " + err.Error()})
			return
		}
		if len(rowErrs) > 0 {
			msgs := make([]string, 0, len(rowErrs))
			for _, re := range rowErrs {
				msgs = append(msgs, re.Error())
			}
			c.JSON(http.StatusBadRequest, gin.H{"error": "price list has invalid rows", "rows": msgs})
			return
		}

		lines := make([]models.VendorContractLine, 0, len(rows))
		for _, row := range rows {
			currency := row.Currency
			if currency == "" {
				currency = "USD"
			}
			lines = append(lines, models.VendorContractLine{
				TenantId:          tenantId,
				VendorContractId:  req.VendorContractId,
				VendorItemNumber:  row.ItemNumber,
				VendorUom:         row.UOM,
				VendorDescription: row.Description,
				ContractPrice:     row.Price,
				Currency:          currency,
				RawPayload:        row.Raw,
			})
		}

		err = db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
			if len(lines) > 0 {
				if err := tx.CreateInBatches(lines, 100).Error; err != nil {
					return err
				}
			}
			return tx.Model(&models.VendorFile{}).
				Where("id = ? AND tenant_id = ?", file.ID, tenantId).
				Update("status", models.VendorFileStatusImported).Error
		})
		if err != nil {
			config.LogError(app.logger, "uploads.go", "importVendorFileHandler", "import transaction", file.ID.String(), err)
			c.JSON(http.StatusInternalServerError, gin.H{"error": "could not import price list"})
			return
		}

		c.JSON(http.StatusCreated, importVendorFileResponse{
			VendorFileId:     file.ID,
			VendorContractId: req.VendorContractId,
			LinesImported:    len(lines),
			Lines:            lines,
		})
	}
}
