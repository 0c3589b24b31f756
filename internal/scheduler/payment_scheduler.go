package scheduler

import (
	"context"

	"github.com/robfig/cron/v3"
	"github.com/vastrakart/vastrakart-backend/internal/app/service"
	"github.com/vastrakart/vastrakart-backend/pkg/logger"
)

// PaymentScheduler periodically settles prepaid orders stuck awaiting
// payment, covering buyers who never return from the gateway redirect.
type PaymentScheduler struct {
	cron           *cron.Cron
	paymentService service.PaymentService
}

func NewPaymentScheduler(paymentService service.PaymentService) *PaymentScheduler {
	return &PaymentScheduler{
		cron:           cron.New(),
		paymentService: paymentService,
	}
}

func (s *PaymentScheduler) Start() error {
	_, err := s.cron.AddFunc("*/2 * * * *", func() {
		logger.Debug("Starting pending payment reconciliation sweep", nil)

		if err := s.paymentService.ReconcilePendingPayments(context.Background()); err != nil {
			logger.Error("Pending payment reconciliation failed", err)
			return
		}
	})
	if err != nil {
		logger.Error("Failed to register payment reconciliation job", err)
		return err
	}

	s.cron.Start()
	logger.Info("Payment reconciliation scheduler started (every 2 minutes)", nil)
	return nil
}

func (s *PaymentScheduler) Stop() {
	logger.Info("Stopping payment reconciliation scheduler...", nil)
	s.cron.Stop()
}
