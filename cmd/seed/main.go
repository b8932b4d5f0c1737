package main

import (
	"fmt"
	"log"

	"github.com/Mik3xTreezy/Vault-Lab-sub001/internal/config"
	"github.com/Mik3xTreezy/Vault-Lab-sub001/internal/constants"
	"github.com/Mik3xTreezy/Vault-Lab-sub001/internal/logger"
	"github.com/Mik3xTreezy/Vault-Lab-sub001/internal/models"

	"github.com/shopspring/decimal"
	"golang.org/x/crypto/bcrypt"
)

func main() {
	// 连接数据库
	cfg := config.Load()
	logger.Init(cfg.Server.Mode, cfg.Log.ToLoggerOptions())
	stdLog := logger.StdLogger()
	if err := models.InitDB(cfg.Database.Driver, cfg.Database.DSN, models.DBPoolConfig{
		MaxOpenConns:           cfg.Database.Pool.MaxOpenConns,
		MaxIdleConns:           cfg.Database.Pool.MaxIdleConns,
		ConnMaxLifetimeSeconds: cfg.Database.Pool.ConnMaxLifetimeSeconds,
		ConnMaxIdleTimeSeconds: cfg.Database.Pool.ConnMaxIdleTimeSeconds,
	}); err != nil {
		stdLog.Fatalf("Failed to connect database: %v", err)
	}

	// 自动迁移
	if err := models.AutoMigrate(); err != nil {
		stdLog.Fatalf("Failed to migrate database: %v", err)
	}

	// 演示发布者账号
	demoUsers := []struct {
		Email        string
		DisplayName  string
		ReferralCode string
		Password     string
	}{
		{Email: "alice@example.com", DisplayName: "Alice", ReferralCode: "ALICE1", Password: "Demo@Pass123"},
		{Email: "bob@example.com", DisplayName: "Bob", ReferralCode: "BOB001", Password: "Demo@Pass123"},
	}

	userIDs := map[string]uint{}
	for _, du := range demoUsers {
		var existing models.User
		if err := models.DB.Where("email = ?", du.Email).First(&existing).Error; err == nil {
			stdLog.Printf("User already exists: %s", du.Email)
			userIDs[du.Email] = existing.ID
			continue
		}
		hash, err := bcrypt.GenerateFromPassword([]byte(du.Password), bcrypt.DefaultCost)
		if err != nil {
			stdLog.Printf("Failed to hash password for %s: %v", du.Email, err)
			continue
		}
		user := models.User{
			Email:        du.Email,
			PasswordHash: string(hash),
			DisplayName:  du.DisplayName,
			ReferralCode: du.ReferralCode,
			Status:       constants.UserStatusActive,
		}
		if err := models.DB.Create(&user).Error; err != nil {
			stdLog.Printf("Failed to create user %s: %v", du.Email, err)
			continue
		}
		stdLog.Printf("Created user: %s", du.Email)
		userIDs[du.Email] = user.ID
	}

	// 演示广告任务（含各 Tier 兜底 CPM）
	tasks := []models.Task{
		{
			Title:         "Install Puzzle Quest",
			AdvertiserURL: "https://tracking.example-network.com/puzzle-quest?click_id={click_id}",
			Tier1CPM:      models.NewMoneyFromDecimal(decimal.NewFromFloat(8.50)),
			Tier2CPM:      models.NewMoneyFromDecimal(decimal.NewFromFloat(4.20)),
			Tier3CPM:      models.NewMoneyFromDecimal(decimal.NewFromFloat(1.10)),
			Status:        constants.TaskStatusActive,
		},
		{
			Title:         "Survey: Shopping Habits",
			AdvertiserURL: "https://tracking.example-network.com/survey-shopping?click_id={click_id}",
			Tier1CPM:      models.NewMoneyFromDecimal(decimal.NewFromFloat(12.00)),
			Tier2CPM:      models.NewMoneyFromDecimal(decimal.NewFromFloat(6.00)),
			Tier3CPM:      models.NewMoneyFromDecimal(decimal.NewFromFloat(2.00)),
			Status:        constants.TaskStatusActive,
		},
		{
			Title:         "Free Trial: Cloud Storage",
			AdvertiserURL: "https://tracking.example-network.com/cloud-trial?click_id={click_id}",
			Tier1CPM:      models.NewMoneyFromDecimal(decimal.NewFromFloat(20.00)),
			Tier2CPM:      models.NewMoneyFromDecimal(decimal.NewFromFloat(9.00)),
			Tier3CPM:      models.NewMoneyFromDecimal(decimal.NewFromFloat(3.50)),
			Status:        constants.TaskStatusPaused,
		},
	}

	taskIDs := map[string]uint{}
	for _, task := range tasks {
		var existing models.Task
		if err := models.DB.Where("title = ?", task.Title).First(&existing).Error; err == nil {
			stdLog.Printf("Task already exists: %s", task.Title)
			taskIDs[task.Title] = existing.ID
			continue
		}
		if err := models.DB.Create(&task).Error; err != nil {
			stdLog.Printf("Failed to create task %s: %v", task.Title, err)
			continue
		}
		stdLog.Printf("Created task: %s", task.Title)
		taskIDs[task.Title] = task.ID
	}

	// 精确维度 CPM 规则（设备×国家×任务）
	puzzleID := taskIDs["Install Puzzle Quest"]
	surveyID := taskIDs["Survey: Shopping Habits"]
	if puzzleID != 0 && surveyID != 0 {
		rules := []models.RateRule{
			{Device: constants.DeviceMobile, Country: "US", TaskID: puzzleID, CPM: models.NewMoneyFromDecimal(decimal.NewFromFloat(10.00))},
			{Device: constants.DeviceDesktop, Country: "US", TaskID: puzzleID, CPM: models.NewMoneyFromDecimal(decimal.NewFromFloat(7.50))},
			{Device: constants.DeviceMobile, Country: "GB", TaskID: surveyID, CPM: models.NewMoneyFromDecimal(decimal.NewFromFloat(11.00))},
			{Device: constants.DeviceMobile, Country: "IN", TaskID: surveyID, CPM: models.NewMoneyFromDecimal(decimal.NewFromFloat(1.80))},
		}
		for _, rule := range rules {
			var existing models.RateRule
			if err := models.DB.Where("device = ? AND country = ? AND task_id = ?", rule.Device, rule.Country, rule.TaskID).First(&existing).Error; err == nil {
				existing.CPM = rule.CPM
				if err := models.DB.Save(&existing).Error; err != nil {
					stdLog.Printf("Failed to update rate rule %s/%s/%d: %v", rule.Device, rule.Country, rule.TaskID, err)
				}
				continue
			}
			if err := models.DB.Create(&rule).Error; err != nil {
				stdLog.Printf("Failed to create rate rule %s/%s/%d: %v", rule.Device, rule.Country, rule.TaskID, err)
				continue
			}
			stdLog.Printf("Created rate rule: %s/%s task=%d cpm=%s", rule.Device, rule.Country, rule.TaskID, rule.CPM.String())
		}
	}

	// 演示 Locker 页面
	if aliceID := userIDs["alice@example.com"]; aliceID != 0 {
		lockers := []models.Locker{
			{PublisherID: aliceID, Title: "Premium Download Hub", Status: constants.LockerStatusActive},
			{PublisherID: aliceID, Title: "Exclusive Content Gate", Status: constants.LockerStatusActive},
		}
		for _, locker := range lockers {
			var existing models.Locker
			if err := models.DB.Where("publisher_id = ? AND title = ?", locker.PublisherID, locker.Title).First(&existing).Error; err == nil {
				stdLog.Printf("Locker already exists: %s", locker.Title)
				continue
			}
			if err := models.DB.Create(&locker).Error; err != nil {
				stdLog.Printf("Failed to create locker %s: %v", locker.Title, err)
				continue
			}
			stdLog.Printf("Created locker: %s", locker.Title)
		}
	}

	// 提现与分成配置
	payoutData := map[string]interface{}{
		"min_withdraw_amount": 50.0,
		"monthly_withdrawals": 3,
		"referral_rate":       0.05,
		"currency":            constants.SiteCurrencyDefault,
		"withdraw_methods":    []string{"paypal", "usdt_trc20", "bank_transfer"},
	}
	upsertSetting(stdLog, constants.SettingKeyPayoutConfig, payoutData)

	// 站点配置
	siteData := map[string]interface{}{
		"contact": map[string]string{
			"telegram": "https://t.me/vaultlab",
			"email":    "support@vaultlab.example.com",
		},
	}
	upsertSetting(stdLog, constants.SettingKeySiteConfig, siteData)

	fmt.Println("\n✅ Seed data created successfully!")
	fmt.Println("Summary:")
	fmt.Println("- 2 Publishers (alice@example.com / bob@example.com, password Demo@Pass123)")
	fmt.Println("- 3 Tasks with tier fallback CPMs")
	fmt.Println("- 4 Exact rate rules (device x country x task)")
	fmt.Println("- 2 Lockers for alice")
	fmt.Println("- Payout and site configuration")
}

func upsertSetting(stdLog *log.Logger, key string, data map[string]interface{}) {
	var setting models.Setting
	if err := models.DB.Where("key = ?", key).First(&setting).Error; err != nil {
		setting = models.Setting{
			Key:       key,
			ValueJSON: models.JSON(data),
		}
		if err := models.DB.Create(&setting).Error; err != nil {
			stdLog.Printf("Failed to create setting %s: %v", key, err)
			return
		}
		stdLog.Println("Created setting: " + key)
		return
	}
	setting.ValueJSON = models.JSON(data)
	if err := models.DB.Save(&setting).Error; err != nil {
		stdLog.Printf("Failed to update setting %s: %v", key, err)
		return
	}
	stdLog.Println("Updated setting: " + key)
}
