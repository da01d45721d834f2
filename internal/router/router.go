package router

import (
	"net/http"

	"github.com/go-playground/validator/v10"
	echojwt "github.com/labstack/echo-jwt/v4"
	"github.com/labstack/echo/v4"
	"github.com/labstack/echo/v4/middleware"
	echoSwagger "github.com/swaggo/echo-swagger"

	"backoffice/internal/config"
	"backoffice/internal/handler"
)

// Register wires routes and middleware.
func Register(
	e *echo.Echo,
	cfg *config.Config,
	authHandler *handler.AuthHandler,
	userHandler *handler.UserHandler,
	menuHandler *handler.MenuHandler,
) {
	e.Use(middleware.Logger())
	e.Use(middleware.Recover())

	e.Validator = &CustomValidator{validator: validator.New()}

	e.GET("/healthz", func(c echo.Context) error {
		return c.String(http.StatusOK, "ok")
	})

	e.GET("/swagger/*", echoSwagger.WrapHandler)

	api := e.Group("/api")

	// Public routes
	api.POST("/auth/login", authHandler.Login)
	api.POST("/auth/refresh", authHandler.Refresh)
	api.POST("/auth/logout", authHandler.Logout)

	// Secured routes (require JWT authentication)
	secured := api.Group("", echojwt.WithConfig(echojwt.Config{
		SigningKey:  []byte(cfg.JWTSecret),
		TokenLookup: "header:" + echo.HeaderAuthorization,
	}))

	// User management
	secured.GET("/users", userHandler.ListUsers)
	secured.GET("/users/stats", userHandler.Stats)
	secured.POST("/users", userHandler.CreateUser)
	secured.PUT("/users/:id", userHandler.UpdateUser)
	secured.DELETE("/users/:id", userHandler.DeleteUser)
	secured.PUT("/users/:id/restore", userHandler.RestoreUser)
	secured.POST("/users/:id/password", userHandler.ResetPassword)
	secured.GET("/users/:id/permissions", userHandler.EffectivePermissions)
	secured.POST("/users/toggle-role", userHandler.ToggleRole)
	secured.POST("/users/toggle-permission", userHandler.TogglePermission)

	// Grantables for the index page selects
	secured.GET("/roles", userHandler.ListRoles)
	secured.GET("/permissions", userHandler.ListPermissions)

	// Navigation tree
	secured.GET("/menus", menuHandler.Tree)
	secured.POST("/menus", menuHandler.CreateMenu)
	secured.PUT("/menus/:id", menuHandler.UpdateMenu)
	secured.DELETE("/menus/:id", menuHandler.DeleteMenu)
}

// CustomValidator wraps validator for Echo.
type CustomValidator struct {
	validator *validator.Validate
}

// Validate implements echo.Validator interface.
func (cv *CustomValidator) Validate(i interface{}) error {
	return cv.validator.Struct(i)
}
