package router

import (
	"time"

	"github.com/gin-gonic/gin"
	"golang.org/x/time/rate"

	"github.com/danuarts/takeout-app/controllers"
	"github.com/danuarts/takeout-app/hub"
	"github.com/danuarts/takeout-app/middlewares"
	"github.com/danuarts/takeout-app/models"
	"github.com/danuarts/takeout-app/services"
	"github.com/danuarts/takeout-app/store"
)

func SetupRouter(s *store.GormStore, svc *services.OrderService, h *hub.Hub) *gin.Engine {
	r := gin.New()
	r.Use(gin.Recovery())
	r.Use(middlewares.CORSMiddlewares())
	r.Use(middlewares.SecurityHeaders())
	r.Use(middlewares.LoggerMiddleware())

	// Credential endpoints are rate limited, the rest of the API is not.
	authLimiter := middlewares.NewIPRateLimiter(rate.Every(time.Second), 10)

	userCtrl := controllers.NewUserController(s)
	cartCtrl := controllers.NewCartController(s)
	addressCtrl := controllers.NewAddressController(s)
	orderCtrl := controllers.NewOrderController(svc)
	adminCtrl := controllers.NewAdminOrderController(svc)
	paymentCtrl := controllers.NewPaymentController(svc)
	notifCtrl := controllers.NewNotificationController(h)

	r.GET("/ping", func(c *gin.Context) {
		c.JSON(200, gin.H{"message": "pong"})
	})

	r.POST("/register", authLimiter.Handler(), userCtrl.Register)
	r.POST("/login", authLimiter.Handler(), userCtrl.Login)

	// Inbound gateway callback, authenticated by the provider contract
	// rather than a user session.
	r.POST("/notify/payment", paymentCtrl.PaymentCallback)

	user := r.Group("/user")
	user.Use(middlewares.AuthMiddleware())
	{
		user.POST("/cart", cartCtrl.AddEntry)
		user.GET("/cart", cartCtrl.ListEntries)
		user.DELETE("/cart", cartCtrl.Clean)

		user.POST("/addresses", addressCtrl.CreateAddress)
		user.GET("/addresses", addressCtrl.ListAddresses)

		user.POST("/orders", orderCtrl.SubmitOrder)
		user.POST("/orders/payment", orderCtrl.RequestPayment)
		user.GET("/orders", orderCtrl.GetHistoryOrders)
		user.GET("/orders/:order_id", orderCtrl.GetOrderByID)
		user.PUT("/orders/:order_id/cancel", orderCtrl.CancelOrder)
		user.GET("/orders/:order_id/reminder", orderCtrl.RemindOrder)
		user.POST("/orders/:order_id/repetition", orderCtrl.RepeatOrder)
	}

	admin := r.Group("/admin")
	admin.Use(middlewares.AuthMiddleware(), middlewares.RequireRole(models.RoleAdmin))
	{
		admin.GET("/orders", adminCtrl.SearchOrders)
		admin.GET("/orders/statistics", adminCtrl.GetOrderStatistics)
		admin.GET("/orders/:order_id", adminCtrl.GetOrder)
		admin.PUT("/orders/:order_id/confirm", adminCtrl.ConfirmOrder)
		admin.PUT("/orders/:order_id/rejection", adminCtrl.RejectOrder)
		admin.PUT("/orders/:order_id/cancel", adminCtrl.CancelOrder)
		admin.PUT("/orders/:order_id/delivery", adminCtrl.DispatchOrder)
		admin.PUT("/orders/:order_id/complete", adminCtrl.CompleteOrder)

		admin.GET("/ws", notifCtrl.Subscribe)
	}

	return r
}
