package transport

import (
	"net/http"

	"github.com/go-chi/chi/v5"
	"github.com/go-chi/chi/v5/middleware"
	"github.com/jackc/pgx/v5/pgxpool"
	"github.com/redis/go-redis/v9"

	"github.com/suburp/storefront/internal/auth"
	"github.com/suburp/storefront/internal/cart"
	"github.com/suburp/storefront/internal/checkout"
	handler "github.com/suburp/storefront/internal/handler/http"
	"github.com/suburp/storefront/internal/notify"
	"github.com/suburp/storefront/internal/order"
	"github.com/suburp/storefront/internal/product"
	"github.com/suburp/storefront/internal/user"
)

// NewRouter wires repositories, services and handlers onto a chi router.
func NewRouter(pool *pgxpool.Pool, redisClient *redis.Client, sender notify.Sender) *chi.Mux {
	carts := cart.NewStore(cart.NewRedisStorage(redisClient))
	sessions := auth.NewRedisSessionStore(redisClient)

	orderRepo := order.NewRepository(pool)
	orderSvc := order.NewService(orderRepo, sender)
	productSvc := product.NewService(product.NewRepository(pool))
	userSvc := user.NewService(user.NewRepository(pool))
	checkoutSvc := checkout.NewService(carts, orderRepo)

	cartHandler := handler.NewCartHandler(carts, productSvc)
	checkoutHandler := handler.NewCheckoutHandler(checkoutSvc)
	orderHandler := handler.NewOrderHandler(orderSvc)
	productHandler := handler.NewProductHandler(productSvc)
	authHandler := handler.NewAuthHandler(userSvc, sessions)
	userHandler := handler.NewUserHandler(userSvc)

	r := chi.NewRouter()
	r.Use(middleware.Recoverer)
	r.Use(auth.ResolveIdentity(sessions))
	r.Use(auth.EnsureCartSession)

	r.Get("/health", func(w http.ResponseWriter, r *http.Request) {
		_, _ = w.Write([]byte("OK"))
	})

	authHandler.RegisterRoutes(r)
	cartHandler.RegisterRoutes(r)
	checkoutHandler.RegisterRoutes(r)
	productHandler.RegisterRoutes(r)

	r.Group(func(r chi.Router) {
		r.Use(auth.RequireAuth)
		orderHandler.RegisterRoutes(r)
	})

	r.Route("/admin", func(r chi.Router) {
		r.Use(auth.RequireAdmin)
		orderHandler.RegisterAdminRoutes(r)
		productHandler.RegisterAdminRoutes(r)
		userHandler.RegisterAdminRoutes(r)
	})

	return r
}
