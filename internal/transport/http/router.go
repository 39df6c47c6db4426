package httpserver

import (
	"github.com/labstack/echo/v4"
	"gorm.io/gorm"

	"github.com/minhtran205/fashion-shop/internal/handlers"
	"github.com/minhtran205/fashion-shop/internal/handlers/cart"
	auth "github.com/minhtran205/fashion-shop/internal/middleware/auth"
)

type Deps struct {
	DB               *gorm.DB
	JWTSecret        []byte
	AuthHandler      *handlers.AuthHandler
	UserHandler      *handlers.UserHandler
	ProductHandler   *handlers.ProductHandler
	CategoryHandler  *handlers.CategoryHandler
	CartHandler      *cart.CartHandler
	OrderHandler     *handlers.OrderHandler
	DashboardHandler *handlers.DashboardHandler
	SearchHandler    *handlers.SearchHandler
}

func Register(e *echo.Echo, d *Deps) {
	e.GET("/health/live", func(c echo.Context) error { return c.NoContent(200) })
	e.GET("/health/ready", func(c echo.Context) error { return c.NoContent(200) })

	api := e.Group("/api")

	login := auth.RequireLogin(d.DB, d.JWTSecret)

	authGroup := api.Group("/auth")
	authGroup.POST("/register", d.AuthHandler.Register)
	authGroup.POST("/login", d.AuthHandler.Login)

	users := api.Group("/users", login)
	users.GET("/profile", d.UserHandler.GetProfile)
	users.PUT("/profile", d.UserHandler.UpdateProfile)

	categories := api.Group("/categories")
	categories.GET("", d.CategoryHandler.GetCategories)
	categories.POST("", d.CategoryHandler.CreateCategory, login, auth.AdminOnly)
	categories.PUT("/:id", d.CategoryHandler.UpdateCategory, login, auth.AdminOnly)
	categories.DELETE("/:id", d.CategoryHandler.DeleteCategory, login, auth.AdminOnly)

	products := api.Group("/products")
	products.GET("", d.ProductHandler.GetProducts)
	products.GET("/:id", d.ProductHandler.GetProduct)
	products.POST("/:id/reviews", d.ProductHandler.CreateReview, login)
	products.POST("", d.ProductHandler.CreateProduct, login, auth.AdminOnly)
	products.PUT("/:id", d.ProductHandler.UpdateProduct, login, auth.AdminOnly)
	products.DELETE("/:id", d.ProductHandler.DeleteProduct, login, auth.AdminOnly)

	if d.SearchHandler != nil {
		api.GET("/search", d.SearchHandler.Search)
	}

	cartGroup := api.Group("/cart", login)
	cartGroup.GET("", d.CartHandler.GetCart)
	cartGroup.POST("", d.CartHandler.AddToCart)
	cartGroup.PUT("", d.CartHandler.UpdateCartItem)
	cartGroup.DELETE("/:id", d.CartHandler.RemoveFromCart)

	orders := api.Group("/orders", login)
	orders.POST("", d.OrderHandler.CreateOrder)
	orders.GET("/my-orders", d.OrderHandler.GetMyOrders)
	orders.GET("", d.OrderHandler.GetAllOrders, auth.AdminOnly)
	orders.PUT("/:id", d.OrderHandler.UpdateStatus, auth.AdminOnly)
	orders.PUT("/:id/cancel", d.OrderHandler.CancelOrder)

	api.GET("/dashboard", d.DashboardHandler.GetStats, login, auth.AdminOnly)
}
