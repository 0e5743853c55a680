package controllers

import (
	"context"
	"net/http"
	"time"

	"github.com/gorilla/mux"
	"go.uber.org/zap"

	"medstore/models"
	"medstore/services"
)

// CategoryService is what CategoryController needs from the catalog
type CategoryService interface {
	ListCategories(ctx context.Context) ([]models.Category, error)
	CategoryByName(ctx context.Context, name string) (*models.Category, error)
	CreateCategory(ctx context.Context, in services.CategoryInput) (*models.Category, error)
	UpdateCategory(ctx context.Context, id string, in services.CategoryInput) (*models.Category, error)
	DeleteCategory(ctx context.Context, id string) error
}

type CategoryController struct {
	base
	categories CategoryService
}

func NewCategoryController(categories CategoryService, logger *zap.Logger, timeout time.Duration) *CategoryController {
	return &CategoryController{base: newBase(logger, timeout), categories: categories}
}

func (cc *CategoryController) GetCategories(w http.ResponseWriter, r *http.Request) {
	ctx, cancel := cc.requestContext(r)
	defer cancel()

	categories, err := cc.categories.ListCategories(ctx)
	if err != nil {
		cc.fromError(w, r, "list categories", err)
		return
	}
	cc.ok(w, "", categories)
}

func (cc *CategoryController) GetCategoryByName(w http.ResponseWriter, r *http.Request) {
	ctx, cancel := cc.requestContext(r)
	defer cancel()

	category, err := cc.categories.CategoryByName(ctx, mux.Vars(r)["name"])
	if err != nil {
		cc.fromError(w, r, "get category", err)
		return
	}
	cc.ok(w, "", category)
}

func (cc *CategoryController) CreateCategory(w http.ResponseWriter, r *http.Request) {
	var in services.CategoryInput
	if !cc.decode(w, r, &in) {
		return
	}

	ctx, cancel := cc.requestContext(r)
	defer cancel()

	category, err := cc.categories.CreateCategory(ctx, in)
	if err != nil {
		cc.fromError(w, r, "create category", err)
		return
	}
	cc.respond(w, http.StatusCreated, Response{Message: "Category created successfully", Data: category})
}

func (cc *CategoryController) UpdateCategory(w http.ResponseWriter, r *http.Request) {
	var in services.CategoryInput
	if !cc.decode(w, r, &in) {
		return
	}

	ctx, cancel := cc.requestContext(r)
	defer cancel()

	category, err := cc.categories.UpdateCategory(ctx, mux.Vars(r)["id"], in)
	if err != nil {
		cc.fromError(w, r, "update category", err)
		return
	}
	cc.ok(w, "Category updated successfully", category)
}

func (cc *CategoryController) DeleteCategory(w http.ResponseWriter, r *http.Request) {
	ctx, cancel := cc.requestContext(r)
	defer cancel()

	if err := cc.categories.DeleteCategory(ctx, mux.Vars(r)["id"]); err != nil {
		cc.fromError(w, r, "delete category", err)
		return
	}
	cc.ok(w, "Category deleted successfully", nil)
}
