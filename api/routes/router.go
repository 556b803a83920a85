package routes

import (
	"net/http"

	"github.com/go-chi/chi/v5"

	"github.com/tahanancrafts/marketplace-backend/api/controllers"
	"github.com/tahanancrafts/marketplace-backend/api/middleware"
	checkoutsvc "github.com/tahanancrafts/marketplace-backend/internal/checkout"
	deliverysvc "github.com/tahanancrafts/marketplace-backend/internal/delivery"
	"github.com/tahanancrafts/marketplace-backend/internal/notifications"
	"github.com/tahanancrafts/marketplace-backend/internal/orders"
	"github.com/tahanancrafts/marketplace-backend/pkg/config"
	"github.com/tahanancrafts/marketplace-backend/pkg/db"
	"github.com/tahanancrafts/marketplace-backend/pkg/logger"
	"github.com/tahanancrafts/marketplace-backend/pkg/redis"
)

// NewRouter wires every HTTP surface: health probes, the courier webhook
// and the authenticated buyer and artisan APIs.
func NewRouter(
	cfg *config.Config,
	logg *logger.Logger,
	dbP db.Pinger,
	redisP redis.Pinger,
	checkoutService checkoutsvc.Service,
	ordersService orders.Service,
	deliveryService deliverysvc.Service,
	notificationsService notifications.Service,
) http.Handler {
	r := chi.NewRouter()
	r.Use(
		middleware.Recoverer(logg),
		middleware.RequestID(logg),
		middleware.Logging(logg),
	)

	r.Route("/health", func(r chi.Router) {
		r.Get("/live", controllers.HealthLive(cfg))
		r.Get("/ready", controllers.HealthReady(cfg, logg, dbP, redisP))
	})

	r.Route("/api/v1/webhooks", func(r chi.Router) {
		r.Post("/courier", controllers.CourierWebhook(deliveryService, logg))
	})

	r.Route("/api/v1", func(r chi.Router) {
		r.Use(middleware.Auth(cfg.JWT, logg))

		r.Post("/checkout", controllers.Checkout(checkoutService, logg))

		r.Route("/orders", func(r chi.Router) {
			r.Get("/", controllers.ListOrders(ordersService, logg))
			r.Get("/{orderId}", controllers.OrderDetail(ordersService, logg))
			r.Post("/{orderId}/payment-proofs", controllers.UploadPaymentProof(ordersService, logg))
			r.Post("/{orderId}/cancel", controllers.CancelOrder(ordersService, logg))
			r.Post("/{orderId}/confirm-received", controllers.ConfirmReceived(ordersService, logg))
			r.Post("/{orderId}/refund", controllers.RequestRefund(ordersService, logg))
			r.Post("/{orderId}/items/{itemId}/review", controllers.MarkItemReviewed(ordersService, logg))
		})

		r.Route("/notifications", func(r chi.Router) {
			r.Get("/", controllers.ListNotifications(notificationsService, logg))
			r.Get("/unread-count", controllers.UnreadCount(notificationsService, logg))
			r.Post("/{notificationId}/read", controllers.MarkNotificationRead(notificationsService, logg))
		})

		r.Route("/artisan", func(r chi.Router) {
			r.Use(middleware.RequireArtisan(logg))
			r.Route("/orders", func(r chi.Router) {
				r.Get("/", controllers.ListArtisanOrders(ordersService, logg))
				r.Get("/{orderId}", controllers.OrderDetail(ordersService, logg))
				r.Post("/{orderId}/verify-payment", controllers.VerifyPayment(ordersService, logg))
				r.Post("/{orderId}/refund", controllers.ResolveRefund(ordersService, logg))
				r.Post("/{orderId}/delivery", controllers.BookDelivery(deliveryService, logg))
			})
		})
	})

	return r
}
