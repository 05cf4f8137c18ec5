package http

import (
	"log/slog"
	"net/http"
	"time"

	"github.com/aussiebroadwan/storefront/internal/storefront/service"
	"github.com/aussiebroadwan/storefront/internal/storefront/store"
	"github.com/aussiebroadwan/storefront/pkg/httpx"
	"github.com/aussiebroadwan/storefront/pkg/slogx"

	_ "github.com/aussiebroadwan/storefront/api/storefront" // Swagger docs
	httpSwagger "github.com/swaggo/http-swagger"
)

// Router holds shared dependencies for HTTP handlers.
type Router struct {
	Mux         *http.ServeMux
	middlewares []httpx.Middleware

	cookie       httpx.SessionCookie
	limits       httpx.RateLimits
	buildVersion string
	startTime    time.Time
	logger       *slog.Logger

	store             store.Store
	Sessions          *service.SessionService
	AccountService    *service.AccountService
	ResetService      *service.ResetService
	PermissionService *service.PermissionService
	ItemService       *service.ItemService
	BootstrapService  *service.BootstrapService
	ImageService      *service.ImageService
}

func NewRouter(
	sessions *service.SessionService,
	cookie httpx.SessionCookie,
	limits httpx.RateLimits,
	buildVersion string,
	st store.Store,
	logger *slog.Logger,
) *Router {
	r := &Router{
		Mux:          http.NewServeMux(),
		Sessions:     sessions,
		cookie:       cookie,
		limits:       limits,
		buildVersion: buildVersion,
		startTime:    time.Now(),
		store:        st,
		logger:       logger,
	}

	// Logging first so the session middleware sees the request logger
	r.middlewares = []httpx.Middleware{
		slogx.HTTPMiddleware(r.logger),
		httpx.SessionAuthn(r.Sessions, r.cookie),
	}

	return r
}

func (r *Router) ApplyRoutes() {
	r.registerAccounts()
	r.registerReset()
	r.registerUsers()
	r.registerItems()
	r.registerSystem()
	r.registerBootstrap()

	r.Mux.Handle("/swagger/", httpSwagger.Handler())
}

// ServeHTTP implements http.Handler for Router and applies the global middleware chain.
//
//	@title			Storefront API
//	@version		0.1.0
//	@description	Accounts, password reset, permissions and items for the storefront.
//	@description
//	@description	Sessions are HS256 JWTs carried in the HttpOnly "token" cookie.
//
//	@contact.name	AussieBroadWAN Team
//	@contact.url	https://github.com/aussiebroadwan/storefront
//
//	@license.name	MIT
//	@license.url	https://opensource.org/licenses/MIT
//
//	@host			localhost:8080
//	@BasePath		/
//
//	@schemes		http https
//
//	@securityDefinitions.apikey	SessionCookie
//	@in							cookie
//	@name						token
//	@description				Session JWT set by signup, signin and reset-password.
func (r *Router) ServeHTTP(w http.ResponseWriter, req *http.Request) {
	httpx.Chain(r.Mux, r.middlewares...).ServeHTTP(w, req)
}

func (r *Router) registerAccounts() {
	h := &AccountsHandler{AccountService: r.AccountService, Cookie: r.cookie}

	// Credential endpoints - strict, signin keyed on the email too
	r.Mux.Handle("POST /v1/signup",
		httpx.Chain(http.HandlerFunc(h.HandleSignup),
			httpx.RateLimitByIP(r.limits.Strict),
		),
	)
	r.Mux.Handle("POST /v1/signin",
		httpx.Chain(http.HandlerFunc(h.HandleSignin),
			httpx.RateLimitByIPAndJSONField(r.limits.Strict, "email"),
		),
	)
	r.Mux.Handle("POST /v1/signout",
		httpx.Chain(http.HandlerFunc(h.HandleSignout),
			httpx.RateLimitByIP(r.limits.Lenient),
		),
	)
	r.Mux.Handle("GET /v1/me",
		httpx.Chain(http.HandlerFunc(h.HandleMe),
			httpx.RateLimitByUser(r.limits.Lenient),
		),
	)
}

func (r *Router) registerReset() {
	h := &ResetHandler{ResetService: r.ResetService, Sessions: r.Sessions, Cookie: r.cookie}

	// POST /request-reset - strict by IP + email so one address can't be spammed
	r.Mux.Handle("POST /v1/request-reset",
		httpx.Chain(http.HandlerFunc(h.HandleRequestReset),
			httpx.RateLimitByIPAndJSONField(r.limits.Strict, "email"),
		),
	)
	// POST /reset-password - strict by IP (token guessing)
	r.Mux.Handle("POST /v1/reset-password",
		httpx.Chain(http.HandlerFunc(h.HandleResetPassword),
			httpx.RateLimitByIP(r.limits.Strict),
		),
	)
}

func (r *Router) registerUsers() {
	h := &UsersHandler{PermissionService: r.PermissionService}

	r.Mux.Handle("GET /v1/users",
		httpx.Chain(http.HandlerFunc(h.HandleList),
			httpx.RateLimitByUser(r.limits.Lenient),
		),
	)
	r.Mux.Handle("PUT /v1/users/{id}/permissions",
		httpx.Chain(http.HandlerFunc(h.HandleUpdatePermissions),
			httpx.RateLimitByUser(r.limits.Moderate),
		),
	)
}

func (r *Router) registerItems() {
	h := &ItemsHandler{ItemService: r.ItemService}
	images := &ImagesHandler{ImageService: r.ImageService}

	// Reads are public
	r.Mux.Handle("GET /v1/items",
		httpx.Chain(http.HandlerFunc(h.HandleList),
			httpx.RateLimitByIP(r.limits.Lenient),
		),
	)
	r.Mux.Handle("GET /v1/items/{id}",
		httpx.Chain(http.HandlerFunc(h.HandleGet),
			httpx.RateLimitByIP(r.limits.Lenient),
		),
	)

	// Mutations - moderate by user
	r.Mux.Handle("POST /v1/items",
		httpx.Chain(http.HandlerFunc(h.HandleCreate),
			httpx.RateLimitByUser(r.limits.Moderate),
		),
	)
	r.Mux.Handle("PATCH /v1/items/{id}",
		httpx.Chain(http.HandlerFunc(h.HandleUpdate),
			httpx.RateLimitByUser(r.limits.Moderate),
		),
	)
	r.Mux.Handle("DELETE /v1/items/{id}",
		httpx.Chain(http.HandlerFunc(h.HandleDelete),
			httpx.RateLimitByUser(r.limits.Moderate),
		),
	)
	r.Mux.Handle("POST /v1/items/images",
		httpx.Chain(images,
			httpx.RateLimitByUser(r.limits.Moderate),
		),
	)
}

func (r *Router) registerSystem() {
	// Health check endpoints - monitoring systems may poll frequently
	r.Mux.Handle("GET /livez",
		httpx.Chain(LivezHandler(r.startTime, r.buildVersion),
			httpx.RateLimitByIP(r.limits.Lenient),
		),
	)
	r.Mux.Handle("GET /readyz",
		httpx.Chain(ReadyzHandler(r.startTime, r.buildVersion, r.store),
			httpx.RateLimitByIP(r.limits.Lenient),
		),
	)
}

func (r *Router) registerBootstrap() {
	// POST /bootstrap - strict rate limit by IP (one-time setup endpoint)
	h := &BootstrapHandler{BootstrapService: r.BootstrapService}
	r.Mux.Handle("POST /v1/bootstrap",
		httpx.Chain(h,
			httpx.RateLimitByIP(r.limits.Strict),
		),
	)
}
