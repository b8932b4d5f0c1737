package router

import (
	"fmt"
	"sort"
	"strings"

	"github.com/Mik3xTreezy/Vault-Lab-sub001/internal/authz"
	"github.com/Mik3xTreezy/Vault-Lab-sub001/internal/cache"
	"github.com/Mik3xTreezy/Vault-Lab-sub001/internal/config"
	adminhandlers "github.com/Mik3xTreezy/Vault-Lab-sub001/internal/http/handlers/admin"
	publichandlers "github.com/Mik3xTreezy/Vault-Lab-sub001/internal/http/handlers/public"
	"github.com/Mik3xTreezy/Vault-Lab-sub001/internal/http/response"
	"github.com/Mik3xTreezy/Vault-Lab-sub001/internal/logger"
	"github.com/Mik3xTreezy/Vault-Lab-sub001/internal/provider"

	"github.com/gin-gonic/gin"
)

// SetupRouter 初始化路由
func SetupRouter(cfg *config.Config, c *provider.Container) *gin.Engine {
	log := logger.L
	if log == nil {
		log = logger.Init(cfg.Server.Mode, cfg.Log.ToLoggerOptions())
	}
	r := gin.New()

	// 初始化 Handler（按前台/后台分组）
	publicHandler := publichandlers.New(c)
	adminHandler := adminhandlers.New(c)
	redisPrefix := strings.TrimSpace(cfg.Redis.Prefix)
	if redisPrefix == "" {
		redisPrefix = "vl"
	}
	redisClient := cache.Client()
	loginRule := RateLimitRule{
		Prefix:        fmt.Sprintf("%s:rate:login", redisPrefix),
		WindowSeconds: cfg.Security.LoginRateLimit.WindowSeconds,
		MaxRequests:   cfg.Security.LoginRateLimit.MaxAttempts,
		BlockSeconds:  cfg.Security.LoginRateLimit.BlockSeconds,
		MessageKey:    "error.login_too_many",
	}
	adminLoginRule := RateLimitRule{
		Prefix:        fmt.Sprintf("%s:rate:admin_login", redisPrefix),
		WindowSeconds: cfg.Security.LoginRateLimit.WindowSeconds,
		MaxRequests:   cfg.Security.LoginRateLimit.MaxAttempts,
		BlockSeconds:  cfg.Security.LoginRateLimit.BlockSeconds,
		MessageKey:    "error.login_too_many",
	}
	clickRule := RateLimitRule{
		Prefix:        fmt.Sprintf("%s:rate:click", redisPrefix),
		WindowSeconds: cfg.Security.ClickRateLimit.WindowSeconds,
		MaxRequests:   cfg.Security.ClickRateLimit.MaxAttempts,
		BlockSeconds:  cfg.Security.ClickRateLimit.BlockSeconds,
		MessageKey:    "error.too_many_requests",
	}
	postbackRule := RateLimitRule{
		Prefix:        fmt.Sprintf("%s:rate:postback", redisPrefix),
		WindowSeconds: cfg.Security.PostbackRateLimit.WindowSeconds,
		MaxRequests:   cfg.Security.PostbackRateLimit.MaxAttempts,
		BlockSeconds:  cfg.Security.PostbackRateLimit.BlockSeconds,
		MessageKey:    "error.too_many_requests",
	}

	// 中间件
	r.Use(gin.Recovery())
	r.Use(RequestIDMiddleware())
	r.Use(LoggerMiddleware(log))
	r.Use(CORSMiddleware(cfg.CORS))

	// API 路由组
	apiV1 := r.Group("/api/v1")
	{
		// 公开接口
		public := apiV1.Group("/public")
		{
			public.GET("/config", publicHandler.GetConfig)
		}

		// 点击与回调（广告网络侧，无需鉴权）
		apiV1.POST("/clicks", RateLimitMiddleware(redisClient, clickRule, KeyByIP), publicHandler.RecordClick)
		apiV1.GET("/click", RateLimitMiddleware(redisClient, clickRule, KeyByIP), publicHandler.ClickRedirect)
		apiV1.GET("/postback", RateLimitMiddleware(redisClient, postbackRule, KeyByIP), publicHandler.HandlePostback)
		apiV1.POST("/postback", RateLimitMiddleware(redisClient, postbackRule, KeyByIP), publicHandler.HandlePostback)

		// 用户认证接口
		auth := apiV1.Group("/auth")
		{
			auth.POST("/register", publicHandler.UserRegister)
			auth.POST("/login", RateLimitMiddleware(redisClient, loginRule, KeyByIPAndJSONField("email")), publicHandler.UserLogin)
		}

		// 用户接口（需鉴权）
		user := apiV1.Group("")
		user.Use(UserJWTAuthMiddleware(cfg.UserJWT.SecretKey, c.UserRepo))
		{
			user.GET("/me", publicHandler.GetCurrentUser)
			user.PUT("/me/profile", publicHandler.UpdateUserProfile)
			user.PUT("/me/password", publicHandler.ChangeUserPassword)
			user.GET("/me/balance", publicHandler.GetMyBalance)
			user.GET("/me/transactions", publicHandler.ListMyTransactions)
			user.GET("/me/revenue-events", publicHandler.ListMyRevenueEvents)
			user.GET("/me/referrals", publicHandler.ListMyReferrals)
			user.GET("/me/commissions", publicHandler.ListMyCommissions)
			user.GET("/me/withdrawals", publicHandler.ListMyWithdrawals)
			user.POST("/me/withdrawals", publicHandler.CreateWithdrawal)
			user.GET("/me/lockers", publicHandler.ListMyLockers)
			user.POST("/me/lockers", publicHandler.CreateMyLocker)
		}

		// 管理员接口
		admin := apiV1.Group("/admin")
		{
			// 登录接口（无需鉴权）
			admin.POST("/login", RateLimitMiddleware(redisClient, adminLoginRule, KeyByIP), adminHandler.AdminLogin)

			// 需要鉴权的接口
			authorized := admin.Use(JWTAuthMiddleware(cfg.JWT.SecretKey, c.AdminRepo), AdminRBACMiddleware(c.AuthzService))
			{
				// 任务管理
				authorized.GET("/tasks", adminHandler.GetAdminTasks)
				authorized.GET("/tasks/:id", adminHandler.GetAdminTask)
				authorized.POST("/tasks", adminHandler.CreateTask)
				authorized.PUT("/tasks/:id", adminHandler.UpdateTask)
				authorized.DELETE("/tasks/:id", adminHandler.DeleteTask)

				// Locker 管理
				authorized.GET("/lockers", adminHandler.GetAdminLockers)
				authorized.GET("/lockers/:id", adminHandler.GetAdminLocker)
				authorized.POST("/lockers", adminHandler.CreateLocker)
				authorized.PUT("/lockers/:id", adminHandler.UpdateLocker)
				authorized.DELETE("/lockers/:id", adminHandler.DeleteLocker)

				// 费率规则管理
				authorized.GET("/rate-rules", adminHandler.GetAdminRateRules)
				authorized.POST("/rate-rules", adminHandler.UpsertRateRules)

				// 用户管理
				authorized.GET("/users", adminHandler.GetAdminUsers)
				authorized.GET("/users/:id", adminHandler.GetAdminUser)
				authorized.PATCH("/users/:id/status", adminHandler.UpdateAdminUserStatus)
				authorized.PATCH("/users/batch-status", adminHandler.BatchUpdateAdminUserStatus)

				// 点击与回调审计
				authorized.GET("/clicks", adminHandler.GetAdminClicks)
				authorized.GET("/postback-audits", adminHandler.GetAdminPostbackAudits)

				// 收益事件与流水
				authorized.GET("/revenue-events", adminHandler.GetAdminRevenueEvents)
				authorized.POST("/revenue-events/manual", adminHandler.ManualCredit)
				authorized.GET("/ledger/transactions", adminHandler.GetAdminLedgerTransactions)
				authorized.POST("/ledger/reconcile", adminHandler.ReconcileLedger)

				// 提现管理
				authorized.GET("/withdrawals", adminHandler.GetAdminWithdrawals)
				authorized.GET("/withdrawals/:id", adminHandler.GetAdminWithdrawal)
				authorized.POST("/withdrawals/:id/review", adminHandler.ReviewWithdrawal)

				// 设置管理
				authorized.GET("/settings", adminHandler.GetSettings)
				authorized.PUT("/settings", adminHandler.UpdateSettings)
				authorized.GET("/settings/payout", adminHandler.GetPayoutSettings)
				authorized.PUT("/settings/payout", adminHandler.UpdatePayoutSettings)
				authorized.PUT("/password", adminHandler.UpdateAdminPassword) // 修改密码

				// 权限管理
				authorized.GET("/authz/me", adminHandler.GetAuthzMe)
				authorized.GET("/authz/roles", adminHandler.ListAuthzRoles)
				authorized.GET("/authz/admins", adminHandler.ListAuthzAdmins)
				authorized.GET("/authz/audit-logs", adminHandler.ListAuthzAuditLogs)
				authorized.POST("/authz/admins", adminHandler.CreateAuthzAdmin)
				authorized.PUT("/authz/admins/:id", adminHandler.UpdateAuthzAdmin)
				authorized.DELETE("/authz/admins/:id", adminHandler.DeleteAuthzAdmin)
				authorized.GET("/authz/permissions/catalog", func(ctx *gin.Context) {
					response.Success(ctx, buildAdminPermissionCatalog(r))
				})
				authorized.POST("/authz/roles", adminHandler.CreateAuthzRole)
				authorized.DELETE("/authz/roles/:role", adminHandler.DeleteAuthzRole)
				authorized.GET("/authz/roles/:role/policies", adminHandler.GetAuthzRolePolicies)
				authorized.POST("/authz/policies", adminHandler.GrantAuthzPolicy)
				authorized.DELETE("/authz/policies", adminHandler.RevokeAuthzPolicy)
				authorized.GET("/authz/admins/:id/roles", adminHandler.GetAuthzAdminRoles)
				authorized.PUT("/authz/admins/:id/roles", adminHandler.SetAuthzAdminRoles)
			}
		}
	}

	// 健康检查
	r.GET("/health", func(c *gin.Context) {
		c.JSON(200, gin.H{"status": "ok"})
	})

	return r
}

type adminPermissionCatalogItem struct {
	Module     string `json:"module"`
	Method     string `json:"method"`
	Object     string `json:"object"`
	Permission string `json:"permission"`
}

func buildAdminPermissionCatalog(engine *gin.Engine) []adminPermissionCatalogItem {
	if engine == nil {
		return []adminPermissionCatalogItem{}
	}

	routes := engine.Routes()
	seen := make(map[string]struct{}, len(routes))
	items := make([]adminPermissionCatalogItem, 0, len(routes))

	for _, item := range routes {
		method := strings.ToUpper(strings.TrimSpace(item.Method))
		if method == "" || method == "OPTIONS" || method == "HEAD" {
			continue
		}
		if !strings.HasPrefix(item.Path, "/api/v1/admin/") {
			continue
		}
		if item.Path == "/api/v1/admin/login" {
			continue
		}
		object := authz.NormalizeObject(item.Path)
		permission := method + ":" + object
		if _, exists := seen[permission]; exists {
			continue
		}
		seen[permission] = struct{}{}
		items = append(items, adminPermissionCatalogItem{
			Module:     deriveAdminPermissionModule(object),
			Method:     method,
			Object:     object,
			Permission: permission,
		})
	}

	sort.Slice(items, func(i, j int) bool {
		if items[i].Module == items[j].Module {
			if items[i].Object == items[j].Object {
				return items[i].Method < items[j].Method
			}
			return items[i].Object < items[j].Object
		}
		return items[i].Module < items[j].Module
	})

	return items
}

func deriveAdminPermissionModule(object string) string {
	normalized := strings.TrimPrefix(strings.TrimSpace(object), "/")
	if normalized == "" {
		return "system"
	}
	segments := strings.Split(normalized, "/")
	if len(segments) <= 1 {
		return segments[0]
	}
	if segments[0] != "admin" {
		return segments[0]
	}
	if segments[1] == "authz" {
		return "authz"
	}
	return segments[1]
}
