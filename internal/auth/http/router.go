package http

import (
	"errors"
	"log/slog"
	"net/http"
	"time"

	"github.com/tradepost/tradepost-auth/internal/auth/domain"
	"github.com/tradepost/tradepost-auth/internal/auth/metrics"
	"github.com/tradepost/tradepost-auth/internal/auth/service"
	"github.com/tradepost/tradepost-auth/internal/auth/store"
	"github.com/tradepost/tradepost-auth/pkg/httpx"
	"github.com/tradepost/tradepost-auth/pkg/jwtx"
	"github.com/tradepost/tradepost-auth/pkg/slogx"

	_ "github.com/tradepost/tradepost-auth/api/auth" // Swagger docs
	httpSwagger "github.com/swaggo/http-swagger"
)

// Router holds shared dependencies for HTTP handlers.
type Router struct {
	Mux         *http.ServeMux
	middlewares []httpx.Middleware

	verifier     jwtx.Verifier
	issuer       string
	buildVersion string
	startTime    time.Time
	logger       *slog.Logger
	maxBodyBytes int64

	store                store.Store
	TokenService         *service.TokenService
	UserService          *service.UserService
	PasswordResetService *service.PasswordResetService
	MembershipService    *service.MembershipService
	SecurityService      *service.SecurityService
}

func NewRouter(
	verifier jwtx.Verifier,
	issuer, buildVersion string,
	st store.Store,
	logger *slog.Logger,
	maxBodyBytes int64,
) *Router {
	if maxBodyBytes <= 0 {
		maxBodyBytes = httpx.DefaultMaxBodyBytes
	}
	r := &Router{
		Mux:          http.NewServeMux(),
		verifier:     verifier,
		issuer:       issuer,
		buildVersion: buildVersion,
		startTime:    time.Now(),
		store:        st,
		logger:       logger,
		maxBodyBytes: maxBodyBytes,
	}

	// Set default middleware chain
	r.middlewares = []httpx.Middleware{
		slogx.HTTPMiddleware(r.logger),
		metrics.Instrument(),
	}

	return r
}

func (r *Router) ApplyRoutes() {
	r.registerAuth()
	r.registerMemberships()
	r.registerRFQ()
	r.registerSystem()

	r.Mux.Handle("/swagger/", httpSwagger.Handler())
}

// ServeHTTP implements http.Handler for Router and applies the global middleware chain.
//
//	@title			Tradepost Authentication Service API
//	@version		0.1.0
//	@description	Authentication and request-authorization service for the Tradepost B2B marketplace:
//	@description	account registration, login, token refresh, password reset and role-gated
//	@description	membership administration.
//	@description
//	@description				All tokens are stateless HS256 JWTs scoped to a single flow (session, refresh, reset).
//
//	@contact.name				Tradepost Platform Team
//	@contact.url				https://github.com/tradepost/tradepost-auth
//
//	@license.name				MIT
//	@license.url				https://opensource.org/licenses/MIT
//
//	@host						localhost:8080
//	@BasePath					/
//
//	@schemes					http https
//
//	@securityDefinitions.apikey	BearerAuth
//	@in							header
//	@name						Authorization
//	@description				JWT session token. Format: "Bearer {token}".
func (r *Router) ServeHTTP(w http.ResponseWriter, req *http.Request) {
	httpx.Chain(r.Mux, r.middlewares...).ServeHTTP(w, req)
}

func (r *Router) registerAuth() {
	registerHandler := &RegisterHandler{UserService: r.UserService}
	r.Mux.Handle("POST /v1/auth/register",
		httpx.Chain(registerHandler,
			httpx.RateLimitByIP(httpx.StrictLimit),
			httpx.MaxBodyBytes(r.maxBodyBytes),
		),
	)

	// The per-identity attempt limiter runs inside TokenService, before any
	// password hashing; the IP throttle here only sheds bulk traffic.
	loginHandler := &LoginHandler{TokenService: r.TokenService}
	r.Mux.Handle("POST /v1/auth/login",
		httpx.Chain(loginHandler,
			httpx.RateLimitByIP(httpx.StrictLimit),
			httpx.MaxBodyBytes(r.maxBodyBytes),
		),
	)

	refreshHandler := &RefreshHandler{TokenService: r.TokenService}
	r.Mux.Handle("POST /v1/auth/refresh",
		httpx.Chain(refreshHandler,
			httpx.RateLimitByIP(httpx.StrictLimit),
			httpx.MaxBodyBytes(r.maxBodyBytes),
		),
	)

	resetHandler := &PasswordResetHandler{ResetService: r.PasswordResetService}
	r.Mux.Handle("POST /v1/auth/password-reset/request",
		httpx.Chain(http.HandlerFunc(resetHandler.HandleRequest),
			httpx.RateLimitByIP(httpx.StrictLimit),
			httpx.MaxBodyBytes(r.maxBodyBytes),
		),
	)
	r.Mux.Handle("POST /v1/auth/password-reset/confirm",
		httpx.Chain(http.HandlerFunc(resetHandler.HandleConfirm),
			httpx.RateLimitByIP(httpx.StrictLimit),
			httpx.MaxBodyBytes(r.maxBodyBytes),
		),
	)

	meHandler := &UserInfoHandler{UserService: r.UserService}
	r.Mux.Handle("GET /v1/auth/me",
		httpx.Chain(meHandler,
			httpx.AuthnMiddleware(r.verifier, r.onTokenReject),
			httpx.RateLimitByIP(httpx.ModerateLimit),
		),
	)
}

func (r *Router) registerMemberships() {
	h := &MembershipsHandler{MembershipService: r.MembershipService}

	r.Mux.Handle("POST /v1/memberships/applications",
		httpx.Chain(http.HandlerFunc(h.HandleApply),
			httpx.AuthnMiddleware(r.verifier, r.onTokenReject),
			httpx.RequireRole(r.onRoleDenied, string(domain.RoleBuyer), string(domain.RoleSupplier)),
			httpx.RateLimitByIP(httpx.ModerateLimit),
			httpx.MaxBodyBytes(r.maxBodyBytes),
		),
	)

	r.Mux.Handle("GET /v1/memberships/applications",
		httpx.Chain(http.HandlerFunc(h.HandleList),
			httpx.AuthnMiddleware(r.verifier, r.onTokenReject),
			httpx.RequireRole(r.onRoleDenied, string(domain.RoleAdmin)),
			httpx.RateLimitByIP(httpx.ModerateLimit),
		),
	)

	r.Mux.Handle("POST /v1/memberships/applications/{id}/decision",
		httpx.Chain(http.HandlerFunc(h.HandleDecide),
			httpx.AuthnMiddleware(r.verifier, r.onTokenReject),
			httpx.RequireRole(r.onRoleDenied, string(domain.RoleAdmin)),
			httpx.RateLimitByIP(httpx.ModerateLimit),
			httpx.MaxBodyBytes(r.maxBodyBytes),
		),
	)
}

func (r *Router) registerRFQ() {
	h := &RFQHandler{}

	r.Mux.Handle("POST /v1/rfq/responses",
		httpx.Chain(http.HandlerFunc(h.HandleSubmit),
			httpx.AuthnMiddleware(r.verifier, r.onTokenReject),
			httpx.RequireRole(r.onRoleDenied, string(domain.RoleSupplier), string(domain.RoleAdmin)),
			httpx.RateLimitByIP(httpx.ModerateLimit),
			httpx.MaxBodyBytes(r.maxBodyBytes),
		),
	)
}

func (r *Router) registerSystem() {
	r.Mux.Handle("GET /livez",
		httpx.Chain(LivezHandler(r.startTime, r.buildVersion),
			httpx.RateLimitByIP(httpx.PublicLimit),
		),
	)
	r.Mux.Handle("GET /readyz",
		httpx.Chain(ReadyzHandler(r.startTime, r.buildVersion, r.store, r.verifier),
			httpx.RateLimitByIP(httpx.PublicLimit),
		),
	)
	r.Mux.Handle("GET /metrics",
		httpx.Chain(metrics.Handler(),
			httpx.RateLimitByIP(httpx.PublicLimit),
		),
	)
}

// onTokenReject records rejected bearer tokens in the security event log.
func (r *Router) onTokenReject(req *http.Request, err error) {
	evType := domain.EventTokenInvalid
	if errors.Is(err, jwtx.ErrExpired) {
		evType = domain.EventTokenExpired
	}
	r.SecurityService.Record(req.Context(), evType,
		httpx.IPKeyExtractor(req), nil, map[string]any{
			"path": req.URL.Path,
		})
}

// onRoleDenied records authenticated principals hitting routes their role
// does not permit.
func (r *Router) onRoleDenied(req *http.Request, _ error) {
	var userID *string
	role := ""
	if claims, ok := httpx.ClaimsFromContext(req.Context()); ok {
		userID = &claims.Subject
		role = claims.Role
	}
	r.SecurityService.Record(req.Context(), domain.EventAuthorizationFailure,
		httpx.IPKeyExtractor(req), userID, map[string]any{
			"path": req.URL.Path,
			"role": role,
		})
}
