package controllers

import (
	"errors"
	"strconv"

	"restaurant/entity"
	"restaurant/pkg/resp"
	"restaurant/services"

	"github.com/gin-gonic/gin"
	"github.com/shopspring/decimal"
	"go.uber.org/zap"
)

type CategoryView struct {
	ID          uint   `json:"id"`
	Name        string `json:"name"`
	Description string `json:"description"`
	ImageURL    string `json:"image_url"`
}

type MenuItemView struct {
	ID              uint            `json:"id"`
	Name            string          `json:"name"`
	Description     string          `json:"description"`
	Price           decimal.Decimal `json:"price"`
	ImageURL        string          `json:"image_url"`
	CategoryID      uint            `json:"category_id"`
	IsAvailable     bool            `json:"is_available"`
	PreparationTime int             `json:"preparation_time"`
	Ingredients     string          `json:"ingredients"`
	Allergens       string          `json:"allergens"`
}

func NewMenuItemView(m *entity.MenuItem) MenuItemView {
	return MenuItemView{
		ID: m.ID, Name: m.Name, Description: m.Description, Price: m.Price,
		ImageURL: m.ImageURL, CategoryID: m.CategoryID, IsAvailable: m.IsAvailable,
		PreparationTime: m.PreparationTime, Ingredients: m.Ingredients, Allergens: m.Allergens,
	}
}

type MenuController struct {
	Svc *services.MenuService
	Log *zap.Logger
}

func NewMenuController(s *services.MenuService, log *zap.Logger) *MenuController {
	return &MenuController{Svc: s, Log: log}
}

// GET /menu/categories
func (ctl *MenuController) Categories(c *gin.Context) {
	cats, err := ctl.Svc.Categories(c.Request.Context())
	if err != nil {
		resp.ServerError(c, ctl.Log, "Failed to fetch categories", err)
		return
	}
	out := make([]CategoryView, 0, len(cats))
	for _, cat := range cats {
		out = append(out, CategoryView{ID: cat.ID, Name: cat.Name, Description: cat.Description, ImageURL: cat.ImageURL})
	}
	resp.OK(c, out)
}

// GET /menu/items
func (ctl *MenuController) Items(c *gin.Context) {
	items, err := ctl.Svc.Items(c.Request.Context())
	if err != nil {
		resp.ServerError(c, ctl.Log, "Failed to fetch menu items", err)
		return
	}
	out := make([]MenuItemView, 0, len(items))
	for i := range items {
		out = append(out, NewMenuItemView(&items[i]))
	}
	resp.OK(c, out)
}

// GET /menu/items/:id
func (ctl *MenuController) Item(c *gin.Context) {
	id, err := strconv.ParseUint(c.Param("id"), 10, 64)
	if err != nil {
		resp.BadRequest(c, "invalid id")
		return
	}
	item, err := ctl.Svc.Item(c.Request.Context(), uint(id))
	switch {
	case err == nil:
		resp.OK(c, NewMenuItemView(item))
	case errors.Is(err, services.ErrMenuItemNotFound):
		resp.NotFound(c, err.Error())
	default:
		resp.ServerError(c, ctl.Log, "Failed to fetch menu item", err)
	}
}
