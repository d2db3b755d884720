package router

import (
	"net/http"
	"time"

	"github.com/gin-gonic/gin"
	"go.uber.org/zap"

	"school-health/config"
	"school-health/internal/api/handler"
	"school-health/internal/api/middleware"
	"school-health/internal/model"
	"school-health/internal/realtime"
	"school-health/pkg/jwt"
	"school-health/pkg/metrics"
	"school-health/pkg/redis"
)

// Deps 路由依赖；Redis、Blacklist、Metrics、WS 均可为 nil
type Deps struct {
	Handler   *handler.Handler
	JWT       *jwt.Manager
	Redis     *redis.Client
	Blacklist middleware.Blacklist
	Metrics   *metrics.Metrics
	WS        *realtime.Handler
	// Ready 状态是否已从存储加载，用于 /health
	Ready func() bool
}

// Setup 初始化并返回 Gin 路由引擎
func Setup(cfg *config.Config, d Deps, logger *zap.Logger) (*gin.Engine, error) {
	gin.SetMode(gin.ReleaseMode)

	if err := handler.RegisterValidators(); err != nil {
		return nil, err
	}

	r := gin.New()
	h := d.Handler

	// ── 全局中间件 ──
	r.Use(gin.Recovery())
	r.Use(middleware.RequestID())
	r.Use(middleware.Logger(logger))
	r.Use(middleware.SecurityHeaders())
	r.Use(middleware.CORS(cfg.Server.CORS.AllowOrigins))
	if d.Metrics != nil {
		r.Use(d.Metrics.Middleware())
	}

	// ── 健康检查 / 指标 ──
	r.GET("/health", func(c *gin.Context) {
		if d.Ready != nil && !d.Ready() {
			c.JSON(http.StatusServiceUnavailable, gin.H{"status": "loading"})
			return
		}
		c.JSON(http.StatusOK, gin.H{"status": "ok"})
	})
	if d.Metrics != nil {
		r.GET("/metrics", gin.WrapH(d.Metrics.Handler()))
	}

	auth := middleware.JWTAuth(d.JWT, d.Blacklist)
	admin := middleware.RoleAuth(string(model.RoleAdmin))

	if d.WS != nil {
		r.GET("/ws", auth, d.WS.Connect)
	}

	// ── API v1 ──
	v1 := r.Group("/api/v1")
	v1.Use(middleware.BodyLimit(cfg.Server.MaxBodyBytes))
	{
		// 认证模块（无需认证）
		v1.POST("/auth/login", middleware.RateLimit(d.Redis, cfg.Auth.LoginRateLimit, time.Minute), h.Auth.Login)

		// 需要认证的路由
		authorized := v1.Group("")
		authorized.Use(auth)
		{
			authorized.POST("/auth/logout", h.Auth.Logout)
			authorized.GET("/auth/me", h.Auth.Me)

			// 学校模块
			schools := authorized.Group("/schools")
			{
				schools.GET("", h.School.ListSchools)
				schools.GET("/:id", h.School.GetSchool)
				schools.POST("", admin, h.School.CreateSchool)
				schools.PUT("/:id", admin, h.School.UpdateSchool)
				schools.DELETE("/:id", admin, h.School.DeleteSchool)
			}

			// 学年模块
			years := authorized.Group("/school-years")
			{
				years.GET("", h.SchoolYear.ListYears)
				years.GET("/current", h.SchoolYear.CurrentYear)
				years.POST("", admin, h.SchoolYear.CreateYear)
				years.PUT("/:id", admin, h.SchoolYear.RenameYear)
				years.PUT("/:id/current", admin, h.SchoolYear.SetCurrent)
				years.PUT("/:id/lock", admin, h.SchoolYear.Lock)
				years.PUT("/:id/unlock", admin, h.SchoolYear.Unlock)
				years.DELETE("/:id", admin, h.SchoolYear.DeleteYear)
			}

			// 动态字段模块
			fields := authorized.Group("/fields")
			{
				fields.GET("", h.Field.ListFields)
				fields.POST("", admin, h.Field.CreateField)
				fields.PUT("/:id", admin, h.Field.UpdateField)
				fields.DELETE("/:id", admin, h.Field.DeleteField)
			}

			// 用户模块
			users := authorized.Group("/users", admin)
			{
				users.GET("", h.User.ListUsers)
				users.GET("/:id", h.User.GetUser)
				users.POST("", h.User.CreateUser)
				users.PUT("/:id", h.User.UpdateUser)
				users.DELETE("/:id", h.User.DeleteUser)
			}

			// 健康档案模块（学校范围由 Service 层校验）
			records := authorized.Group("/records/:schoolId/:yearId")
			{
				records.GET("", h.Record.GetRecord)
				records.POST("/edit", h.Record.BeginEdit)
				records.PUT("/fields/:name", h.Record.SetField)
				records.POST("/attachments", h.Record.Attach)
				records.GET("/attachments/:id", h.Record.DownloadAttachment)
				records.DELETE("/attachments/:id", h.Record.RemoveAttachment)
				records.POST("/save", h.Record.Save)
				records.POST("/cancel", h.Record.Cancel)
			}

			// 报表 / 导出 / 首页
			authorized.GET("/reports/tabular", h.Report.Tabular)
			authorized.GET("/reports/compare", h.Report.Compare)
			authorized.GET("/export/report", h.Export.ExportReport)
			authorized.GET("/dashboard", h.Dashboard.Get)

			// 系统维护
			authorized.POST("/system/reset", admin, h.System.Reset)
		}
	}

	return r, nil
}
