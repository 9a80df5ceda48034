package handlers

import (
	"time"

	_ "storyhouse/docs"
	"storyhouse/internal/logger"
	"storyhouse/internal/service"

	"github.com/gin-gonic/gin"

	swaggerFiles "github.com/swaggo/files"
	ginSwagger "github.com/swaggo/gin-swagger"
)

const (
	defaultSessionTTL  = 12 * time.Hour
	defaultRememberTTL = 30 * 24 * time.Hour
)

// Options tunes the browser session cookie.
type Options struct {
	SessionTTL    time.Duration
	RememberTTL   time.Duration
	SecureCookies bool
}

func (o Options) withDefaults() Options {
	if o.SessionTTL <= 0 {
		o.SessionTTL = defaultSessionTTL
	}
	if o.RememberTTL <= 0 {
		o.RememberTTL = defaultRememberTTL
	}
	return o
}

// Handler wires HTTP layer to services and logging.
type Handler struct {
	services *service.Service
	log      *logger.Logger
	opts     Options
}

// NewHandler constructs a new HTTP handler with dependencies.
func NewHandler(services *service.Service, log *logger.Logger, opts Options) *Handler {
	registerValidators()
	return &Handler{services: services, log: log, opts: opts.withDefaults()}
}

// InitRoutes builds and returns the Gin router with all routes registered.
func (h *Handler) InitRoutes() *gin.Engine {
	router := gin.New()
	router.Use(h.requestLogger, gin.CustomRecovery(h.recoverPanic), h.loadSession)
	router.SetHTMLTemplate(mustParseTemplates())
	router.NoRoute(h.notFound)

	router.GET("/swagger/*any", ginSwagger.WrapHandler(swaggerFiles.Handler))

	// Health endpoint
	router.GET("/health", h.health)

	h.registerPublicRoutes(router)
	h.registerAuthRoutes(router)
	h.registerMemberRoutes(router)
	h.registerAPIRoutes(router)

	return router
}

func (h *Handler) registerPublicRoutes(r *gin.Engine) {
	r.GET("/", h.index)
	r.GET("/story/:slug", h.readStory)
	r.GET("/author/:username", h.authorProfile)
}

func (h *Handler) registerAuthRoutes(r *gin.Engine) {
	r.GET("/login", h.loginPage)
	r.POST("/login", h.login)
	r.GET("/logout", h.logout)
	r.GET("/register", h.registerPage)
	r.POST("/register", h.register)
}

// registerMemberRoutes mounts pages that need a signed-in user.
func (h *Handler) registerMemberRoutes(r *gin.Engine) {
	member := r.Group("/", h.requireLogin)
	{
		member.GET("/dashboard", h.dashboard)
		member.GET("/write", h.writePage)
		member.POST("/write", h.writeStory)
		member.GET("/edit/:id", h.editPage)
		member.POST("/edit/:id", h.editStory)
		member.GET("/delete/:id", h.deleteStory)
		member.GET("/profile", h.profilePage)
		member.POST("/profile", h.updateProfile)
		member.POST("/profile/delete", h.deleteAccount)
		member.GET("/ws/editor", h.editorConnect)
	}
}

func (h *Handler) registerAPIRoutes(r *gin.Engine) {
	api := r.Group("/api")
	{
		api.POST("/auth/token", h.issueAPIToken)
		api.GET("/stories", h.apiListStories)
		api.GET("/stories/:slug", h.apiGetStory)
		api.GET("/authors/:username", h.apiGetAuthor)
	}

	me := api.Group("/me", h.userIdMiddleware)
	{
		me.GET("/stories", h.apiMyStories)
	}
}
