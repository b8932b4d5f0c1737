package constants

// 设备类型常量
const (
	DeviceDesktop = "desktop"
	DeviceMobile  = "mobile"
	DeviceTablet  = "tablet"
	DeviceUnknown = "unknown"
)

// 国家分层常量
const (
	CountryTier1 = "tier1"
	CountryTier2 = "tier2"
	CountryTier3 = "tier3"
)

// 任务状态常量
const (
	TaskStatusActive   = "active"
	TaskStatusPaused   = "paused"
	TaskStatusArchived = "archived"
)

// Locker 状态常量
const (
	LockerStatusActive   = "active"
	LockerStatusDisabled = "disabled"
)

// 收益事件来源常量
const (
	RevenueSourcePostback = "postback"
	RevenueSourceManual   = "manual"
)

// 回调审计结果常量
const (
	PostbackAuditCredited           = "credited"
	PostbackAuditDuplicate          = "duplicate"
	PostbackAuditInvalidCorrelation = "invalid_correlation"
	PostbackAuditZeroRate           = "zero_rate"
)

// 账变类型常量
const (
	LedgerTxnTypeRevenue            = "revenue"
	LedgerTxnTypeReferralCommission = "referral_commission"
	LedgerTxnTypeWithdrawReserve    = "withdraw_reserve"
	LedgerTxnTypeWithdrawRefund     = "withdraw_refund"
	LedgerTxnTypeAdminAdjust        = "admin_adjust"
)

// 账变方向常量
const (
	LedgerTxnDirectionIn  = "in"
	LedgerTxnDirectionOut = "out"
)

// 推荐关系状态常量
const (
	ReferralStatusPending  = "pending"
	ReferralStatusActive   = "active"
	ReferralStatusInactive = "inactive"
)

// 提现状态常量
const (
	WithdrawalStatusPending  = "pending"
	WithdrawalStatusApproved = "approved"
	WithdrawalStatusRejected = "rejected"
)

// 提现审核动作常量
const (
	WithdrawalActionApprove = "approve"
	WithdrawalActionReject  = "reject"
)

// 用户状态常量
const (
	UserStatusActive   = "active"
	UserStatusDisabled = "disabled"
)

// 队列常量
const (
	QueueDefault           = "default"
	TaskPostbackAuditFlush = "postback:audit_flush"
	TaskWithdrawalNotify   = "withdrawal:notify"
)

// 缓存默认配置常量
const (
	RedisPrefixDefault = "vl"
	CacheKeyRateRule   = "rate_rule"
)

// 设置键常量
const (
	SettingKeyPayoutConfig = "payout_config"
	SettingKeySiteConfig   = "site_config"
)

// 币种常量
const (
	SiteCurrencyDefault = "USD"
)

// 站点语言常量
const (
	LocaleZhCN = "zh-CN"
	LocaleEnUS = "en-US"
)

// 支持的站点语言顺序（含回退顺序）
var SupportedLocales = []string{LocaleEnUS, LocaleZhCN}

// 回调关联参数常量
const (
	PostbackParamClickID = "click_id"
	PostbackParamSub1    = "sub1"
	PostbackParamToken   = "token"
)
