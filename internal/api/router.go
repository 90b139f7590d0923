package api

import (
	"moneybase/internal/cache"      // Query cache
	"moneybase/internal/domain"     // Operation types
	"moneybase/internal/ledger"     // Ledger service
	"moneybase/internal/middleware" // Custom middleware
	"time"                          // Time durations

	"github.com/gin-gonic/gin"                                // Gin web framework
	"github.com/prometheus/client_golang/prometheus/promhttp" // /metrics handler
	"gorm.io/gorm"                                            // GORM ORM library
)

// Deps are the collaborators the HTTP layer is built from
type Deps struct {
	DB        *gorm.DB        // Ledger store, also used by auth
	Ledger    *ledger.Service // Wallet and operation service
	Cache     cache.Store     // Query cache
	CachePing pinger          // Optional health check for the cache
	CacheTTL  time.Duration   // TTL of every cached read
	JWTSecret string          // JWT secret key
	JWTTTL    time.Duration   // Access token lifetime
}

// NewRouter wires every route onto a fresh gin engine
func NewRouter(d Deps) *gin.Engine {
	registerValidators()
	r := gin.New()
	r.Use(middleware.RequestLogger(), gin.Recovery(), middleware.Metrics())

	r.GET("/metrics", gin.WrapH(promhttp.Handler())) // Prometheus exposition
	r.GET("/healthz", HealthHandler(d.Ledger, d.CachePing))

	// Auth routes
	auth := r.Group("/auth")
	auth.POST("/register", RegisterHandler(d.DB, d.Cache))
	auth.POST("/jwt/login", LoginHandler(d.DB, d.JWTSecret, d.JWTTTL))

	// Everything below needs an active, authenticated user
	protected := []gin.HandlerFunc{middleware.JWTAuthMiddleware(d.JWTSecret), middleware.CurrentUserMiddleware(d.DB)}

	// Wallet routes plus the legacy account variant
	for _, n := range []Noun{WalletNoun, AccountNoun} {
		g := r.Group("/"+n.Name, protected...)
		g.POST("/create_"+n.Name, CreateWalletHandler(d.Ledger, d.Cache, n))
		g.GET("/get_"+n.Name+"s", GetWalletsHandler(d.Ledger, d.Cache, d.CacheTTL))
		g.POST("/change_"+n.Name, ChangeWalletHandler(d.Ledger, d.Cache, n))
		g.POST("/delete_"+n.Name, DeleteWalletHandler(d.Ledger, d.Cache, n))
	}

	// Operation routes
	ops := r.Group("/operation", protected...)
	ops.POST("/add_operation", AddOperationHandler(d.Ledger, d.Cache))
	ops.POST("/delete_operation", DeleteOperationHandler(d.Ledger, d.Cache))
	ops.GET("/get_all_operations", ListOperationsHandler(d.Ledger, d.Cache, d.CacheTTL, ledger.OperationFilter{}))
	ops.GET("/get_category_operations", CategoryOperationsHandler(d.Ledger, d.Cache, d.CacheTTL))
	ops.GET("/get_all_profit_operations", ListOperationsHandler(d.Ledger, d.Cache, d.CacheTTL, ledger.OperationFilter{Type: domain.Profit}))
	ops.GET("/get_all_loss_operations", ListOperationsHandler(d.Ledger, d.Cache, d.CacheTTL, ledger.OperationFilter{Type: domain.Loss}))
	ops.GET("/get_profit_and_loss", ProfitAndLossHandler(d.Ledger, d.Cache, d.CacheTTL))

	// Superuser routes
	admin := r.Group("/admin", append(protected, middleware.SuperuserOnlyMiddleware())...)
	admin.GET("/users", ListUsersHandler(d.Ledger, d.Cache, d.CacheTTL))
	admin.GET("/operations", ListAllOperationsHandler(d.Ledger, d.Cache, d.CacheTTL))

	return r
}
