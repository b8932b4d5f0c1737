package repository

import "time"

// UserListFilter 查询用户列表的过滤条件
type UserListFilter struct {
	Page          int
	PageSize      int
	Keyword       string
	Status        string
	CreatedFrom   *time.Time
	CreatedTo     *time.Time
	LastLoginFrom *time.Time
	LastLoginTo   *time.Time
}

// TaskListFilter 查询任务列表的过滤条件
type TaskListFilter struct {
	Page     int
	PageSize int
	Keyword  string
	Status   string
}

// LockerListFilter 查询 Locker 列表的过滤条件
type LockerListFilter struct {
	Page        int
	PageSize    int
	PublisherID uint
	Status      string
	Keyword     string
}

// ClickListFilter 查询点击记录列表的过滤条件
type ClickListFilter struct {
	Page        int
	PageSize    int
	TaskID      uint
	LockerID    uint
	PublisherID uint
	Device      string
	Country     string
	CreatedFrom *time.Time
	CreatedTo   *time.Time
}

// RateRuleListFilter 查询费率规则列表的过滤条件
type RateRuleListFilter struct {
	Page    int
	PageSize int
	TaskID  uint
	Device  string
	Country string
}

// RevenueEventListFilter 查询收益事件列表的过滤条件
type RevenueEventListFilter struct {
	Page        int
	PageSize    int
	PublisherID uint
	TaskID      uint
	Source      string
	CreatedFrom *time.Time
	CreatedTo   *time.Time
}

// LedgerTransactionListFilter 查询余额流水列表的过滤条件
type LedgerTransactionListFilter struct {
	Page        int
	PageSize    int
	UserID      uint
	Type        string
	Direction   string
	CreatedFrom *time.Time
	CreatedTo   *time.Time
}

// LedgerAccountListFilter 查询余额账户列表的过滤条件
type LedgerAccountListFilter struct {
	Page     int
	PageSize int
	UserID   uint
}

// ReferralCommissionListFilter 查询推荐佣金列表的过滤条件
type ReferralCommissionListFilter struct {
	Page       int
	PageSize   int
	ReferralID uint
	ReferrerID uint
}

// WithdrawalListFilter 查询提现申请列表的过滤条件
type WithdrawalListFilter struct {
	Page          int
	PageSize      int
	UserID        uint
	Status        string
	WithdrawalNo  string
	RequestedFrom *time.Time
	RequestedTo   *time.Time
}

// PostbackAuditListFilter 查询回调审计列表的过滤条件
type PostbackAuditListFilter struct {
	Page        int
	PageSize    int
	Result      string
	Keyword     string
	CreatedFrom *time.Time
	CreatedTo   *time.Time
}

// AuthzAuditLogListFilter 查询权限审计日志的过滤条件
type AuthzAuditLogListFilter struct {
	Page            int
	PageSize        int
	OperatorAdminID uint
	TargetAdminID   uint
	Action          string
	Role            string
	Object          string
	Method          string
	CreatedFrom     *time.Time
	CreatedTo       *time.Time
}
