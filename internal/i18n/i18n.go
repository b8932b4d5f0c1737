package i18n

import (
	"fmt"
	"strings"

	"github.com/Mik3xTreezy/Vault-Lab-sub001/internal/constants"

	"github.com/gin-gonic/gin"
)

// DefaultLocale 默认语言
const DefaultLocale = constants.LocaleEnUS

var catalogs = map[string]map[string]string{
	constants.LocaleEnUS: {
		"error.bad_request":            "invalid request",
		"error.internal":               "internal error",
		"error.not_found":              "resource not found",
		"error.unauthorized":           "unauthorized",
		"error.forbidden":              "permission denied",
		"error.save_failed":            "save failed",
		"error.jwt_secret_missing":     "auth is not configured",
		"error.auth_header_missing":    "authorization header missing",
		"error.auth_header_invalid":    "authorization header invalid",
		"error.token_invalid":          "token invalid",
		"error.token_revoked":          "token revoked",
		"error.rate_limited":           "too many requests, retry in %d seconds",
		"error.rate_limit_unavailable": "rate limiter unavailable",
		"error.login_too_many":         "too many login attempts, try again later",
		"error.too_many_requests":      "too many requests, try again later",

		"error.admin_login_invalid":          "username or password incorrect",
		"error.admin_id_invalid":             "admin id invalid",
		"error.admin_id_type_invalid":        "admin id invalid",
		"error.admin_username_invalid":       "admin username invalid",
		"error.admin_username_exists":        "admin username already exists",
		"error.admin_create_failed":          "failed to create admin",
		"error.admin_update_failed":          "failed to update admin",
		"error.admin_delete_failed":          "failed to delete admin",
		"error.admin_delete_self_forbidden":  "cannot delete your own account",
		"error.admin_delete_protected":       "cannot delete protected admin",
		"error.admin_delete_last_forbidden":  "cannot delete the last admin",

		"error.login_invalid":    "email or password incorrect",
		"error.login_failed":     "login failed",
		"error.register_failed":  "register failed",
		"error.email_invalid":    "email invalid",
		"error.email_exists":     "email already registered",
		"error.user_disabled":    "account disabled",
		"error.invalid_credentials": "email or password incorrect",

		"error.password_weak":            "password too weak",
		"error.password_old_invalid":     "old password incorrect",
		"error.password_min_length":      "password must be at least %d characters",
		"error.password_require_upper":   "password must contain an uppercase letter",
		"error.password_require_lower":   "password must contain a lowercase letter",
		"error.password_require_number":  "password must contain a number",
		"error.password_require_special": "password must contain a special character",

		"error.user_fetch_failed":    "failed to fetch users",
		"error.user_not_found":       "user not found",
		"error.user_update_failed":   "failed to update user",
		"error.user_status_invalid":  "user status invalid",
		"error.user_id_invalid":      "user id invalid",
		"error.user_id_type_invalid": "user id invalid",

		"error.config_fetch_failed": "failed to fetch config",

		"error.task_fetch_failed":  "failed to fetch tasks",
		"error.task_not_found":     "task not found",
		"error.task_create_failed": "failed to create task",
		"error.task_update_failed": "failed to update task",
		"error.task_delete_failed": "failed to delete task",

		"error.locker_fetch_failed":  "failed to fetch lockers",
		"error.locker_not_found":     "locker not found",
		"error.locker_create_failed": "failed to create locker",
		"error.locker_update_failed": "failed to update locker",
		"error.locker_delete_failed": "failed to delete locker",

		"error.rate_rule_fetch_failed": "failed to fetch rate rules",
		"error.rate_rule_invalid":      "rate rule payload invalid",
		"error.rate_rule_save_failed":  "failed to save rate rules",

		"error.click_fetch_failed":            "failed to fetch clicks",
		"error.click_record_failed":           "failed to record click",
		"error.postback_failed":               "failed to process postback",
		"error.postback_correlation_invalid":  "postback correlation invalid",
		"error.invalid_correlation":           "postback correlation invalid",
		"error.postback_audit_fetch_failed":   "failed to fetch postback audits",

		"error.revenue_fetch_failed":     "failed to fetch revenue events",
		"error.revenue_event_duplicate":  "conversion already credited",
		"error.duplicate_event":          "conversion already credited",
		"error.manual_credit_failed":     "failed to credit revenue",
		"error.amount_invalid":           "amount invalid",
		"error.invalid_amount":           "amount invalid",

		"error.balance_fetch_failed":     "failed to fetch balance",
		"error.transaction_fetch_failed": "failed to fetch transactions",
		"error.reconcile_failed":         "failed to reconcile ledger",

		"error.referral_fetch_failed":  "failed to fetch referrals",
		"error.already_referred":       "account already has a referrer",
		"error.referral_code_invalid":  "referral code invalid",
		"error.referral_self":          "cannot refer yourself",

		"error.insufficient_funds":           "insufficient balance",
		"error.below_minimum":                "amount below withdrawal minimum",
		"error.withdrawal_amount_invalid":    "withdrawal amount invalid",
		"error.withdrawal_below_minimum":     "amount below withdrawal minimum",
		"error.withdrawal_monthly_cap":       "monthly withdrawal limit reached",
		"error.withdrawal_create_failed":     "failed to create withdrawal",
		"error.withdrawal_fetch_failed":      "failed to fetch withdrawals",
		"error.withdrawal_not_found":         "withdrawal not found",
		"error.withdrawal_reviewed":          "withdrawal already reviewed",
		"error.withdrawal_already_reviewed":  "withdrawal already reviewed",
		"error.withdrawal_review_failed":     "failed to review withdrawal",
		"error.withdrawal_action_invalid":    "withdrawal action invalid",

		"error.settings_fetch_failed":  "failed to fetch settings",
		"error.settings_save_failed":   "failed to save settings",
		"error.payout_config_invalid":  "payout config invalid",
	},
	constants.LocaleZhCN: {
		"error.bad_request":            "请求参数有误",
		"error.internal":               "服务内部错误",
		"error.not_found":              "资源不存在",
		"error.unauthorized":           "未授权",
		"error.forbidden":              "没有操作权限",
		"error.save_failed":            "保存失败",
		"error.jwt_secret_missing":     "鉴权未配置",
		"error.auth_header_missing":    "缺少鉴权头",
		"error.auth_header_invalid":    "鉴权头格式不正确",
		"error.token_invalid":          "登录凭证无效",
		"error.token_revoked":          "登录凭证已失效",
		"error.rate_limited":           "请求过于频繁，请 %d 秒后重试",
		"error.rate_limit_unavailable": "限流服务不可用",
		"error.login_too_many":         "登录尝试过于频繁，请稍后再试",
		"error.too_many_requests":      "请求过于频繁，请稍后再试",

		"error.admin_login_invalid":          "用户名或密码不正确",
		"error.admin_id_invalid":             "管理员 ID 无效",
		"error.admin_id_type_invalid":        "管理员 ID 无效",
		"error.admin_username_invalid":       "管理员用户名无效",
		"error.admin_username_exists":        "管理员用户名已存在",
		"error.admin_create_failed":          "创建管理员失败",
		"error.admin_update_failed":          "更新管理员失败",
		"error.admin_delete_failed":          "删除管理员失败",
		"error.admin_delete_self_forbidden":  "不能删除当前登录账号",
		"error.admin_delete_protected":       "不能删除受保护的管理员",
		"error.admin_delete_last_forbidden":  "不能删除最后一个管理员",

		"error.login_invalid":       "邮箱或密码不正确",
		"error.login_failed":        "登录失败",
		"error.register_failed":     "注册失败",
		"error.email_invalid":       "邮箱格式不正确",
		"error.email_exists":        "邮箱已被注册",
		"error.user_disabled":       "账号已被禁用",
		"error.invalid_credentials": "邮箱或密码不正确",

		"error.password_weak":            "密码强度不足",
		"error.password_old_invalid":     "原密码不正确",
		"error.password_min_length":      "密码长度至少 %d 位",
		"error.password_require_upper":   "密码需包含大写字母",
		"error.password_require_lower":   "密码需包含小写字母",
		"error.password_require_number":  "密码需包含数字",
		"error.password_require_special": "密码需包含特殊字符",

		"error.user_fetch_failed":    "获取用户失败",
		"error.user_not_found":       "用户不存在",
		"error.user_update_failed":   "更新用户失败",
		"error.user_status_invalid":  "用户状态无效",
		"error.user_id_invalid":      "用户 ID 无效",
		"error.user_id_type_invalid": "用户 ID 无效",

		"error.config_fetch_failed": "获取配置失败",

		"error.task_fetch_failed":  "获取任务失败",
		"error.task_not_found":     "任务不存在",
		"error.task_create_failed": "创建任务失败",
		"error.task_update_failed": "更新任务失败",
		"error.task_delete_failed": "删除任务失败",

		"error.locker_fetch_failed":  "获取 Locker 失败",
		"error.locker_not_found":     "Locker 不存在",
		"error.locker_create_failed": "创建 Locker 失败",
		"error.locker_update_failed": "更新 Locker 失败",
		"error.locker_delete_failed": "删除 Locker 失败",

		"error.rate_rule_fetch_failed": "获取费率规则失败",
		"error.rate_rule_invalid":      "费率规则数据无效",
		"error.rate_rule_save_failed":  "保存费率规则失败",

		"error.click_fetch_failed":           "获取点击记录失败",
		"error.click_record_failed":          "记录点击失败",
		"error.postback_failed":              "处理回调失败",
		"error.postback_correlation_invalid": "回调关联信息无效",
		"error.invalid_correlation":          "回调关联信息无效",
		"error.postback_audit_fetch_failed":  "获取回调审计失败",

		"error.revenue_fetch_failed":    "获取收益事件失败",
		"error.revenue_event_duplicate": "该转化已入账",
		"error.duplicate_event":         "该转化已入账",
		"error.manual_credit_failed":    "人工补单失败",
		"error.amount_invalid":          "金额无效",
		"error.invalid_amount":          "金额无效",

		"error.balance_fetch_failed":     "获取余额失败",
		"error.transaction_fetch_failed": "获取流水失败",
		"error.reconcile_failed":         "对账失败",

		"error.referral_fetch_failed": "获取推荐记录失败",
		"error.already_referred":      "账号已绑定推荐人",
		"error.referral_code_invalid": "推荐码无效",
		"error.referral_self":         "不能推荐自己",

		"error.insufficient_funds":          "余额不足",
		"error.below_minimum":               "金额低于最低提现额",
		"error.withdrawal_amount_invalid":   "提现金额无效",
		"error.withdrawal_below_minimum":    "金额低于最低提现额",
		"error.withdrawal_monthly_cap":      "本月提现次数已达上限",
		"error.withdrawal_create_failed":    "创建提现申请失败",
		"error.withdrawal_fetch_failed":     "获取提现申请失败",
		"error.withdrawal_not_found":        "提现申请不存在",
		"error.withdrawal_reviewed":         "提现申请已审核",
		"error.withdrawal_already_reviewed": "提现申请已审核",
		"error.withdrawal_review_failed":    "审核提现申请失败",
		"error.withdrawal_action_invalid":   "审核动作无效",

		"error.settings_fetch_failed": "获取设置失败",
		"error.settings_save_failed":  "保存设置失败",
		"error.payout_config_invalid": "结算配置无效",
	},
}

// T 按语言取文案，缺失时回退默认语言，再回退 key 本身
func T(locale, key string) string {
	if catalog, ok := catalogs[locale]; ok {
		if msg, ok := catalog[key]; ok {
			return msg
		}
	}
	if msg, ok := catalogs[DefaultLocale][key]; ok {
		return msg
	}
	return key
}

// Sprintf 取文案并格式化
func Sprintf(locale, key string, args ...interface{}) string {
	return fmt.Sprintf(T(locale, key), args...)
}

// ResolveLocale 解析请求语言（query locale > Accept-Language > 默认）
func ResolveLocale(c *gin.Context) string {
	if c == nil {
		return DefaultLocale
	}
	if locale := normalizeLocale(c.Query("locale")); locale != "" {
		return locale
	}
	accept := c.GetHeader("Accept-Language")
	for _, part := range strings.Split(accept, ",") {
		lang := strings.TrimSpace(strings.SplitN(part, ";", 2)[0])
		if locale := normalizeLocale(lang); locale != "" {
			return locale
		}
	}
	return DefaultLocale
}

func normalizeLocale(raw string) string {
	raw = strings.TrimSpace(raw)
	if raw == "" {
		return ""
	}
	lower := strings.ToLower(raw)
	for _, supported := range constants.SupportedLocales {
		if strings.EqualFold(supported, raw) {
			return supported
		}
	}
	switch {
	case strings.HasPrefix(lower, "zh"):
		return constants.LocaleZhCN
	case strings.HasPrefix(lower, "en"):
		return constants.LocaleEnUS
	}
	return ""
}
