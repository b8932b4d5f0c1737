package worker

import (
	"context"
	"errors"
	"time"

	"github.com/Mik3xTreezy/Vault-Lab-sub001/internal/config"
	"github.com/Mik3xTreezy/Vault-Lab-sub001/internal/logger"
	"github.com/Mik3xTreezy/Vault-Lab-sub001/internal/queue"

	"github.com/hibiken/asynq"
)

const reconcileIntervalDefault = time.Hour

// Service 异步队列服务
type Service struct {
	name              string
	server            *asynq.Server
	mux               *asynq.ServeMux
	consumer          *Consumer
	reconcileInterval time.Duration
}

// NewService 创建异步队列服务
func NewService(cfg *config.Config, consumer *Consumer) (*Service, error) {
	if cfg == nil || !cfg.Queue.Enabled {
		return nil, errors.New("queue disabled")
	}
	if consumer == nil {
		return nil, errors.New("consumer is nil")
	}
	opt, serverCfg := queue.BuildServerConfig(&cfg.Queue)
	server := asynq.NewServer(opt, serverCfg)
	mux := asynq.NewServeMux()
	consumer.Register(mux)

	interval := reconcileIntervalDefault
	if cfg.Worker.ReconcileIntervalMinutes > 0 {
		interval = time.Duration(cfg.Worker.ReconcileIntervalMinutes) * time.Minute
	}
	return &Service{
		name:              "worker",
		server:            server,
		mux:               mux,
		consumer:          consumer,
		reconcileInterval: interval,
	}, nil
}

// Name 服务名称
func (s *Service) Name() string {
	if s == nil || s.name == "" {
		return "worker"
	}
	return s.name
}

// Start 启动服务
func (s *Service) Start(ctx context.Context) error {
	if s == nil || s.server == nil || s.mux == nil {
		return errors.New("worker not initialized")
	}
	if s.consumer != nil && s.consumer.LedgerService != nil {
		go s.runLedgerReconcileLoop(ctx)
	}
	return s.server.Run(s.mux)
}

// Stop 停止服务
func (s *Service) Stop(ctx context.Context) error {
	if s == nil || s.server == nil {
		return nil
	}
	_ = ctx
	s.server.Shutdown()
	return nil
}

// runLedgerReconcileLoop 周期性核对物化余额与流水合计
func (s *Service) runLedgerReconcileLoop(ctx context.Context) {
	if s == nil || s.consumer == nil || s.consumer.LedgerService == nil {
		return
	}
	runOnce := func() {
		mismatches, err := s.consumer.LedgerService.ReconcileAll(0)
		if err != nil {
			logger.Warnw("worker_ledger_reconcile_failed", "error", err)
			return
		}
		if len(mismatches) > 0 {
			logger.Errorw("worker_ledger_reconcile_mismatch", "count", len(mismatches))
		}
	}
	runOnce()

	ticker := time.NewTicker(s.reconcileInterval)
	defer ticker.Stop()
	for {
		select {
		case <-ctx.Done():
			return
		case <-ticker.C:
			runOnce()
		}
	}
}
