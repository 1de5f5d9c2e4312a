package handlers

import (
	"net/http"

	"github.com/gin-gonic/gin"
	log "github.com/sirupsen/logrus"
	"github.com/staubi82/KlipZ/pkg/db"
	"github.com/staubi82/KlipZ/pkg/db/queries"
	"github.com/staubi82/KlipZ/pkg/utils"
)

type ProfileRequest struct {
	Username string `json:"username"`
	Email    string `json:"email"`
	Bio      string `json:"bio"`
	Avatar   string `json:"avatar"`
}

// GetProfile returns the single owner profile, or an empty one if never saved.
func GetProfile(c *gin.Context) {
	profile, err := queries.GetProfile()
	if err != nil {
		log.Errorf("GetProfile: %v", err)
		utils.ResponseWithError(c, http.StatusInternalServerError, "Failed to load profile", nil)
		return
	}
	if profile == nil {
		c.JSON(http.StatusOK, ProfileRequest{})
		return
	}
	c.JSON(http.StatusOK, ProfileRequest{
		Username: profile.Username,
		Email:    profile.Email,
		Bio:      profile.Bio,
		Avatar:   profile.Avatar,
	})
}

// SaveProfile creates or replaces the owner profile.
func SaveProfile(c *gin.Context) {
	var req ProfileRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		log.Debugf("SaveProfile: Invalid request body: %v", err)
		utils.ResponseWithError(c, http.StatusBadRequest, "Invalid request body", err)
		return
	}
	if req.Username == "" || req.Email == "" {
		utils.ResponseWithError(c, http.StatusBadRequest, "Username and email are required.", nil)
		return
	}

	err := queries.SaveProfile(&db.Profile{
		Username: req.Username,
		Email:    req.Email,
		Bio:      req.Bio,
		Avatar:   req.Avatar,
	})
	if err != nil {
		log.Errorf("SaveProfile: %v", err)
		utils.ResponseWithError(c, http.StatusInternalServerError, "Failed to save profile", nil)
		return
	}

	utils.ResponseWithMessage(c, http.StatusOK, "Profile saved")
}
