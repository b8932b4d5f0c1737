package service

import (
	"strings"
	"time"

	"github.com/golang-jwt/jwt/v5"
)

// CorrelationClaims 点击关联令牌声明，随跳转链接下发给广告主，
// 回调缺失 click_id 时作为兜底身份来源
type CorrelationClaims struct {
	ClickID     string `json:"click_id"`
	TaskID      uint   `json:"task_id"`
	LockerID    uint   `json:"locker_id"`
	PublisherID uint   `json:"publisher_id"`
	jwt.RegisteredClaims
}

// CorrelationSigner 关联令牌签发与校验
type CorrelationSigner struct {
	secret      []byte
	expireHours int
}

// NewCorrelationSigner 创建关联令牌签发器
func NewCorrelationSigner(secret string, expireHours int) *CorrelationSigner {
	if expireHours <= 0 {
		expireHours = 72
	}
	return &CorrelationSigner{
		secret:      []byte(secret),
		expireHours: expireHours,
	}
}

// Sign 签发关联令牌
func (s *CorrelationSigner) Sign(clickID string, taskID, lockerID, publisherID uint) (string, error) {
	now := time.Now()
	claims := CorrelationClaims{
		ClickID:     clickID,
		TaskID:      taskID,
		LockerID:    lockerID,
		PublisherID: publisherID,
		RegisteredClaims: jwt.RegisteredClaims{
			ExpiresAt: jwt.NewNumericDate(now.Add(time.Duration(s.expireHours) * time.Hour)),
			IssuedAt:  jwt.NewNumericDate(now),
			NotBefore: jwt.NewNumericDate(now),
		},
	}

	token := jwt.NewWithClaims(jwt.SigningMethodHS256, claims)
	return token.SignedString(s.secret)
}

// Parse 校验并解析关联令牌，签名不合法或过期返回 ErrInvalidCorrelation
func (s *CorrelationSigner) Parse(tokenString string) (*CorrelationClaims, error) {
	tokenString = strings.TrimSpace(tokenString)
	if tokenString == "" {
		return nil, ErrInvalidCorrelation
	}

	parser := jwt.NewParser(jwt.WithValidMethods([]string{jwt.SigningMethodHS256.Alg()}))
	token, err := parser.ParseWithClaims(tokenString, &CorrelationClaims{}, func(token *jwt.Token) (interface{}, error) {
		return s.secret, nil
	})
	if err != nil {
		return nil, ErrInvalidCorrelation
	}

	claims, ok := token.Claims.(*CorrelationClaims)
	if !ok || !token.Valid {
		return nil, ErrInvalidCorrelation
	}
	if claims.ClickID == "" || claims.TaskID == 0 || claims.PublisherID == 0 {
		return nil, ErrInvalidCorrelation
	}
	return claims, nil
}
