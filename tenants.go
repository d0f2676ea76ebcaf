package main

import (
	"errors"
	"net/http"

	"github.com/gin-gonic/gin"
	"gorm.io/gorm"

	"github.com/contractsync/backend/config"
	"github.com/contractsync/backend/models"
)

func createTenantHandler(app *application) gin.HandlerFunc {
	return func(c *gin.Context) {
		var req models.NewTenant
		if err := c.ShouldBindJSON(&req); err != nil {
			c.JSON(http.StatusBadRequest, gin.H{"error": "name is required"})
			return
		}

		tenant := models.Tenant{Name: req.Name}
		if err := app.DB().WithContext(c.Request.Context()).Create(&tenant).Error; err != nil {
			config.LogError(app.logger, "tenants.go", "createTenantHandler", "create tenant", req.Name, err)
			c.JSON(http.StatusInternalServerError, gin.H{"error": "could not create tenant"})
			return
		}
		c.JSON(http.StatusCreated, tenant)
	}
}

func getTenantHandler(app *application) gin.HandlerFunc {
	return func(c *gin.Context) {
		id, ok := pathID(c)
		if !ok {
			return
		}

		var tenant models.Tenant
		err := app.DB().WithContext(c.Request.Context()).Where("id = ?", id).First(&tenant).Error
		if err != nil {
			if errors.Is(err, gorm.ErrRecordNotFound) {
				c.JSON(http.StatusNotFound, gin.H{"error": "tenant not found"})
				return
			}
			config.LogError(app.logger, "tenants.go", "getTenantHandler", "fetch tenant", id.String(), err)
			c.JSON(http.StatusInternalServerError, gin.H{"error": "could not fetch tenant"})
			return
		}
		c.JSON(http.StatusOK, tenant)
	}
}
