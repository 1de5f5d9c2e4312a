package handlers

import (
	"database/sql"
	"net/http"
	"strconv"
	"strings"

	"github.com/gin-gonic/gin"
	log "github.com/sirupsen/logrus"
	"github.com/staubi82/KlipZ/pkg/db/queries"
	"github.com/staubi82/KlipZ/pkg/utils"
)

type CreateCategoryRequest struct {
	Name string `json:"name" binding:"required"`
}

func ListCategories(c *gin.Context) {
	categories, err := queries.ListCategories()
	if err != nil {
		log.Errorf("ListCategories: %v", err)
		utils.ResponseWithError(c, http.StatusInternalServerError, "Failed to list categories", nil)
		return
	}
	c.JSON(http.StatusOK, categories)
}

func CreateCategory(c *gin.Context) {
	var req CreateCategoryRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		log.Debugf("CreateCategory: Invalid request body: %v", err)
		utils.ResponseWithError(c, http.StatusBadRequest, "Invalid request body", err)
		return
	}

	name := strings.TrimSpace(req.Name)
	if name == "" {
		utils.ResponseWithError(c, http.StatusBadRequest, "Category name must not be empty", nil)
		return
	}

	existing, err := queries.FindCategoryByName(name)
	if err != nil {
		log.Errorf("CreateCategory: %v", err)
		utils.ResponseWithError(c, http.StatusInternalServerError, "Failed to check category existence", nil)
		return
	}
	if existing != nil {
		utils.ResponseWithError(c, http.StatusConflict, "Category already exists", nil)
		return
	}

	category, err := queries.CreateCategory(name)
	if err != nil {
		log.Errorf("CreateCategory: %v", err)
		utils.ResponseWithError(c, http.StatusInternalServerError, "Failed to create category", nil)
		return
	}

	log.Infof("Category %q created (ID: %d)", category.Name, category.ID)
	c.JSON(http.StatusCreated, category)
}

// DeleteCategory blanks the label on matching videos and removes the category
// row. Videos are never deleted with their category.
func DeleteCategory(c *gin.Context) {
	id, err := strconv.ParseInt(c.Param("id"), 10, 64)
	if err != nil {
		utils.ResponseWithError(c, http.StatusBadRequest, "Invalid category ID", nil)
		return
	}

	if err := queries.DeleteCategory(id); err != nil {
		if err == sql.ErrNoRows {
			utils.ResponseWithError(c, http.StatusNotFound, "Category not found", nil)
			return
		}
		log.Errorf("DeleteCategory: %v", err)
		utils.ResponseWithError(c, http.StatusInternalServerError, "Failed to delete category", nil)
		return
	}

	utils.ResponseWithMessage(c, http.StatusOK, "Category deleted")
}
