package handler

import (
	"net/http"

	"github.com/labstack/echo/v4"
	"github.com/labstack/gommon/log"

	"backoffice/internal/service"
)

// MenuHandler bundles the navigation tree endpoints.
type MenuHandler struct {
	svc service.MenuService
}

// NewMenuHandler creates a new menu handler.
func NewMenuHandler(svc service.MenuService) *MenuHandler {
	return &MenuHandler{svc: svc}
}

// MenuRequest represents a menu create/update request. Active is a pointer so
// an omitted flag falls back to the schema default of true.
type MenuRequest struct {
	Name       string   `json:"name" validate:"required,max=255"`
	ParentID   *uint    `json:"parent_id"`
	RouteOrURL string   `json:"route_or_url" validate:"max=255"`
	Icon       *string  `json:"icon"`
	Active     *bool    `json:"active"`
	Position   int      `json:"position"`
	Routes     []string `json:"routes"`
}

func (r MenuRequest) input() service.MenuInput {
	active := true
	if r.Active != nil {
		active = *r.Active
	}
	return service.MenuInput{
		Name:       r.Name,
		ParentID:   r.ParentID,
		RouteOrURL: r.RouteOrURL,
		Icon:       r.Icon,
		Active:     active,
		Position:   r.Position,
		Routes:     r.Routes,
	}
}

// Tree godoc
// @Summary Navigation forest in render order
// @Tags menus
// @Produce json
// @Security BearerAuth
// @Success 200 {array} service.MenuNode
// @Failure 500 {object} errors.ErrorResponse
// @Router /menus [get]
func (h *MenuHandler) Tree(c echo.Context) error {
	forest, err := h.svc.Tree(c.Request().Context())
	if err != nil {
		return respondError(c, err)
	}
	return c.JSON(http.StatusOK, forest)
}

// CreateMenu godoc
// @Summary Create a navigation node
// @Tags menus
// @Accept json
// @Produce json
// @Security BearerAuth
// @Param request body MenuRequest true "Menu data"
// @Success 201 {object} model.Menu
// @Failure 400 {object} errors.ErrorResponse
// @Failure 422 {object} errors.ErrorResponse
// @Router /menus [post]
func (h *MenuHandler) CreateMenu(c echo.Context) error {
	var req MenuRequest
	if err := c.Bind(&req); err != nil {
		return echo.NewHTTPError(http.StatusBadRequest, "invalid request body")
	}
	if err := c.Validate(&req); err != nil {
		return echo.NewHTTPError(http.StatusBadRequest, err.Error())
	}

	menu, err := h.svc.CreateMenu(c.Request().Context(), req.input())
	if err != nil {
		c.Logger().Errorj(log.JSON{"message": "creating menu", "name": req.Name, "error": err.Error()})
		return respondError(c, err)
	}

	c.Logger().Infoj(log.JSON{"message": "creating menu", "id": menu.ID})
	return c.JSON(http.StatusCreated, menu)
}

// UpdateMenu godoc
// @Summary Update a navigation node
// @Tags menus
// @Accept json
// @Produce json
// @Security BearerAuth
// @Param id path int true "Menu ID"
// @Param request body MenuRequest true "Menu data"
// @Success 200 {object} model.Menu
// @Failure 400 {object} errors.ErrorResponse
// @Failure 404 {object} errors.ErrorResponse
// @Failure 422 {object} errors.ErrorResponse
// @Router /menus/{id} [put]
func (h *MenuHandler) UpdateMenu(c echo.Context) error {
	id, err := pathID(c)
	if err != nil {
		return err
	}

	var req MenuRequest
	if err := c.Bind(&req); err != nil {
		return echo.NewHTTPError(http.StatusBadRequest, "invalid request body")
	}
	if err := c.Validate(&req); err != nil {
		return echo.NewHTTPError(http.StatusBadRequest, err.Error())
	}

	menu, err := h.svc.UpdateMenu(c.Request().Context(), id, req.input())
	if err != nil {
		c.Logger().Errorj(log.JSON{"message": "updating menu", "id": id, "error": err.Error()})
		return respondError(c, err)
	}

	c.Logger().Infoj(log.JSON{"message": "updating menu", "id": menu.ID})
	return c.JSON(http.StatusOK, menu)
}

// DeleteMenu godoc
// @Summary Delete a navigation node; its children become roots
// @Tags menus
// @Produce json
// @Security BearerAuth
// @Param id path int true "Menu ID"
// @Success 200 {object} Flash
// @Failure 404 {object} errors.ErrorResponse
// @Router /menus/{id} [delete]
func (h *MenuHandler) DeleteMenu(c echo.Context) error {
	id, err := pathID(c)
	if err != nil {
		return err
	}

	if err := h.svc.DeleteMenu(c.Request().Context(), id); err != nil {
		c.Logger().Errorj(log.JSON{"message": "deleting menu", "id": id, "error": err.Error()})
		return respondError(c, err)
	}

	c.Logger().Infoj(log.JSON{"message": "deleting menu", "id": id})
	return c.JSON(http.StatusOK, successFlash("menu has been deleted"))
}
