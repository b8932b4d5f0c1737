package provider

import (
	"github.com/Mik3xTreezy/Vault-Lab-sub001/internal/authz"
	"github.com/Mik3xTreezy/Vault-Lab-sub001/internal/cache"
	"github.com/Mik3xTreezy/Vault-Lab-sub001/internal/config"
	"github.com/Mik3xTreezy/Vault-Lab-sub001/internal/logger"
	"github.com/Mik3xTreezy/Vault-Lab-sub001/internal/models"
	"github.com/Mik3xTreezy/Vault-Lab-sub001/internal/queue"
	"github.com/Mik3xTreezy/Vault-Lab-sub001/internal/repository"
	"github.com/Mik3xTreezy/Vault-Lab-sub001/internal/service"
)

// Container 依赖注入容器
type Container struct {
	Config      *config.Config
	QueueClient *queue.Client

	// Repositories
	AdminRepo         repository.AdminRepository
	UserRepo          repository.UserRepository
	TaskRepo          repository.TaskRepository
	LockerRepo        repository.LockerRepository
	ClickRepo         repository.ClickRepository
	RateRuleRepo      repository.RateRuleRepository
	RevenueEventRepo  repository.RevenueEventRepository
	LedgerRepo        repository.LedgerRepository
	ReferralRepo      repository.ReferralRepository
	WithdrawalRepo    repository.WithdrawalRepository
	PostbackAuditRepo repository.PostbackAuditRepository
	SettingRepo       repository.SettingRepository
	AuthzAuditRepo    repository.AuthzAuditLogRepository

	// Services
	AuthzService      *authz.Service
	AuthzAuditService *service.AuthzAuditService
	AuthService       *service.AuthService
	UserAuthService   *service.UserAuthService
	SettingService    *service.SettingService
	TaskService       *service.TaskService
	LockerService     *service.LockerService
	RateService       *service.RateService
	ClickService      *service.ClickService
	LedgerService     *service.LedgerService
	ReferralService   *service.ReferralService
	PostbackService   *service.PostbackService
	WithdrawalService *service.WithdrawalService
	CorrelationSigner *service.CorrelationSigner
}

// NewContainer 初始化容器
func NewContainer(cfg *config.Config) *Container {
	// 初始化缓存
	if err := cache.InitRedis(&cfg.Redis); err != nil {
		logger.Warnw("provider_init_redis_failed", "error", err)
	}

	// 初始化队列客户端
	var queueClient *queue.Client
	if cfg.Queue.Enabled {
		qc, err := queue.NewClient(&cfg.Queue)
		if err != nil {
			logger.Errorw("provider_init_queue_client_failed", "error", err)
		} else {
			queueClient = qc
		}
	}

	c := &Container{
		Config:      cfg,
		QueueClient: queueClient,
	}

	// 1. 初始化 Repositories
	c.initRepositories()

	// 2. 初始化 Services
	c.initServices()

	return c
}

func (c *Container) initRepositories() {
	db := models.DB
	c.AdminRepo = repository.NewAdminRepository(db)
	c.UserRepo = repository.NewUserRepository(db)
	c.TaskRepo = repository.NewTaskRepository(db)
	c.LockerRepo = repository.NewLockerRepository(db)
	c.ClickRepo = repository.NewClickRepository(db)
	c.RateRuleRepo = repository.NewRateRuleRepository(db)
	c.RevenueEventRepo = repository.NewRevenueEventRepository(db)
	c.LedgerRepo = repository.NewLedgerRepository(db)
	c.ReferralRepo = repository.NewReferralRepository(db)
	c.WithdrawalRepo = repository.NewWithdrawalRepository(db)
	c.PostbackAuditRepo = repository.NewPostbackAuditRepository(db)
	c.SettingRepo = repository.NewSettingRepository(db)
	c.AuthzAuditRepo = repository.NewAuthzAuditLogRepository(db)
}

func (c *Container) initServices() {
	authzService, err := authz.NewService(models.DB)
	if err != nil {
		logger.Errorw("provider_init_authz_failed", "error", err)
		panic(err)
	}
	c.AuthzService = authzService
	if err := c.AuthzService.BootstrapBuiltinRoles(); err != nil {
		logger.Errorw("provider_bootstrap_builtin_roles_failed", "error", err)
		panic(err)
	}

	c.AuthzAuditService = service.NewAuthzAuditService(c.AuthzAuditRepo)
	c.SettingService = service.NewSettingService(c.SettingRepo)
	c.CorrelationSigner = service.NewCorrelationSigner(
		c.Config.Tracking.CorrelationSecret,
		c.Config.Tracking.CorrelationExpireHours,
	)

	c.AuthService = service.NewAuthService(c.Config, c.AdminRepo)
	c.LedgerService = service.NewLedgerService(c.LedgerRepo)
	c.ReferralService = service.NewReferralService(c.ReferralRepo, c.UserRepo, c.LedgerService, c.SettingService)
	c.UserAuthService = service.NewUserAuthService(c.Config, c.UserRepo, c.ReferralService)
	c.TaskService = service.NewTaskService(c.TaskRepo, c.RateRuleRepo)
	c.LockerService = service.NewLockerService(c.LockerRepo, c.UserRepo)
	c.RateService = service.NewRateService(c.RateRuleRepo, c.TaskRepo, c.Config.Tracking.RateRuleCacheTTLSeconds)
	c.ClickService = service.NewClickService(c.Config, c.ClickRepo, c.TaskRepo, c.LockerRepo, c.CorrelationSigner)
	c.PostbackService = service.NewPostbackService(
		c.ClickRepo,
		c.RevenueEventRepo,
		c.PostbackAuditRepo,
		c.LedgerService,
		c.ReferralService,
		c.RateService,
		c.CorrelationSigner,
		c.QueueClient,
	)
	c.WithdrawalService = service.NewWithdrawalService(c.WithdrawalRepo, c.LedgerService, c.SettingService, c.QueueClient)
}
