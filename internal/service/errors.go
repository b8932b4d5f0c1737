package service

import "errors"

// 业务哨兵错误，handler 层据此映射响应码与 i18n 文案
var (
	// 通用
	ErrNotFound       = errors.New("record not found")
	ErrUserNotFound   = errors.New("user not found")
	ErrUserDisabled   = errors.New("user disabled")
	ErrTaskNotFound   = errors.New("task not found")
	ErrLockerNotFound = errors.New("locker not found")

	// 认证
	ErrInvalidCredentials = errors.New("invalid credentials")
	ErrInvalidEmail       = errors.New("invalid email")
	ErrInvalidPassword    = errors.New("invalid password")
	ErrWeakPassword       = errors.New("weak password")
	ErrEmailExists        = errors.New("email already registered")

	// 点击与回调
	ErrInvalidCorrelation = errors.New("invalid correlation")
	ErrInvalidAmount      = errors.New("invalid amount")
	ErrDuplicateEvent     = errors.New("duplicate revenue event")

	// 账本
	ErrAccountCreateFailed     = errors.New("balance account create failed")
	ErrAccountUpdateFailed     = errors.New("balance account update failed")
	ErrTransactionCreateFailed = errors.New("balance transaction create failed")
	ErrInsufficientFunds       = errors.New("insufficient funds")

	// 推荐
	ErrAlreadyReferred     = errors.New("user already referred")
	ErrReferralCodeInvalid = errors.New("referral code invalid")
	ErrReferralSelf        = errors.New("cannot refer self")
	ErrReferralNotFound    = errors.New("referral not found")

	// 提现
	ErrBelowMinimum                 = errors.New("amount below minimum withdrawal")
	ErrWithdrawalMonthlyCapExceeded = errors.New("monthly withdrawal cap exceeded")
	ErrWithdrawalNotFound           = errors.New("withdrawal not found")
	ErrWithdrawalAlreadyReviewed    = errors.New("withdrawal already reviewed")

	// 配置
	ErrPayoutConfigInvalid = errors.New("payout config invalid")
	ErrSiteConfigInvalid   = errors.New("site config invalid")
	ErrRateRuleInvalid     = errors.New("rate rule invalid")
)
