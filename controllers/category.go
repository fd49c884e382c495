package controllers

import (
	"encoding/json"
	"net/http"

	"github.com/gorilla/mux"
	"go.uber.org/zap"

	"go-marketplace/services"
)

// CategoryController handles category requests.
type CategoryController struct {
	catalog *services.CatalogService
	log     *zap.SugaredLogger
}

// NewCategoryController creates a new CategoryController.
func NewCategoryController(catalog *services.CatalogService, log *zap.SugaredLogger) *CategoryController {
	return &CategoryController{catalog: catalog, log: log}
}

// GetCategories retrieves all categories.
func (cc *CategoryController) GetCategories(w http.ResponseWriter, r *http.Request) {
	categories, err := cc.catalog.Categories(r.Context())
	if err != nil {
		writeError(w, cc.log, err)
		return
	}
	writeJSON(w, http.StatusOK, categories)
}

// GetCategoryByID retrieves a category with its derived subcategory list.
func (cc *CategoryController) GetCategoryByID(w http.ResponseWriter, r *http.Request) {
	id, ok := pathID(mux.Vars(r), "id")
	if !ok {
		writeErrorMessage(w, http.StatusBadRequest, "Invalid category ID")
		return
	}

	category, err := cc.catalog.Category(r.Context(), id)
	if err != nil {
		writeError(w, cc.log, err)
		return
	}
	writeJSON(w, http.StatusOK, category)
}

// CreateCategory adds a category (administrator only).
func (cc *CategoryController) CreateCategory(w http.ResponseWriter, r *http.Request) {
	var in services.CategoryInput
	if err := json.NewDecoder(r.Body).Decode(&in); err != nil {
		writeErrorMessage(w, http.StatusBadRequest, "Invalid input")
		return
	}

	category, err := cc.catalog.CreateCategory(r.Context(), in)
	if err != nil {
		writeError(w, cc.log, err)
		return
	}
	writeJSON(w, http.StatusCreated, category)
}

// UpdateCategory updates a category (administrator only).
func (cc *CategoryController) UpdateCategory(w http.ResponseWriter, r *http.Request) {
	id, ok := pathID(mux.Vars(r), "id")
	if !ok {
		writeErrorMessage(w, http.StatusBadRequest, "Invalid category ID")
		return
	}

	var in services.CategoryInput
	if err := json.NewDecoder(r.Body).Decode(&in); err != nil {
		writeErrorMessage(w, http.StatusBadRequest, "Invalid input")
		return
	}

	category, err := cc.catalog.UpdateCategory(r.Context(), id, in)
	if err != nil {
		writeError(w, cc.log, err)
		return
	}
	writeJSON(w, http.StatusOK, category)
}

// DeleteCategory removes a category and its direct subcategories
// (administrator only).
func (cc *CategoryController) DeleteCategory(w http.ResponseWriter, r *http.Request) {
	id, ok := pathID(mux.Vars(r), "id")
	if !ok {
		writeErrorMessage(w, http.StatusBadRequest, "Invalid category ID")
		return
	}

	if err := cc.catalog.DeleteCategory(r.Context(), id); err != nil {
		writeError(w, cc.log, err)
		return
	}
	writeJSON(w, http.StatusOK, "Category deleted")
}
