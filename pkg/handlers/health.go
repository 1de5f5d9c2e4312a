package handlers

import (
	"net/http"

	"github.com/gin-gonic/gin"
	"github.com/staubi82/KlipZ/pkg/db"
)

func HealthCheck(c *gin.Context) {
	if err := db.DB.Ping(); err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{
			"status":   "down",
			"database": err.Error(),
		})
		return
	}
	c.JSON(http.StatusOK, gin.H{
		"status":  "ok",
		"message": "KlipZ API is running",
	})
}
