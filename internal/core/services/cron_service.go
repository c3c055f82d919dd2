package services

import (
	"context"
	"log"
	"time"

	"libraryhub/internal/config"

	"github.com/robfig/cron/v3"
)

const jobTimeout = 10 * time.Minute

// CronService runs the scheduled circulation jobs for every tenant
type CronService struct {
	circulation *CirculationService
	auth        *AuthService
	cfg         config.CirculationConfig
	cron        *cron.Cron
}

// NewCronService creates a new cron service
func NewCronService(circulation *CirculationService, auth *AuthService, cfg config.CirculationConfig) *CronService {
	return &CronService{
		circulation: circulation,
		auth:        auth,
		cfg:         cfg,
		cron:        cron.New(cron.WithChain(cron.SkipIfStillRunning(cron.DefaultLogger))),
	}
}

// Start registers the jobs and starts the scheduler. An empty schedule
// disables its job.
func (s *CronService) Start() error {
	if s.cfg.OverdueCron != "" {
		if _, err := s.cron.AddFunc(s.cfg.OverdueCron, s.withTimeout(s.RunOverdueRefresh)); err != nil {
			return err
		}
	}

	if s.cfg.ReconcileCron != "" {
		if _, err := s.cron.AddFunc(s.cfg.ReconcileCron, s.withTimeout(s.RunReconciliation)); err != nil {
			return err
		}
	}

	s.cron.Start()
	log.Printf("🚀 CronService started [overdue=%q reconcile=%q]", s.cfg.OverdueCron, s.cfg.ReconcileCron)
	return nil
}

// Stop waits for running jobs to finish
func (s *CronService) Stop() {
	<-s.cron.Stop().Done()
	log.Println("🛑 CronService stopped")
}

func (s *CronService) withTimeout(job func(ctx context.Context)) func() {
	return func() {
		ctx, cancel := context.WithTimeout(context.Background(), jobTimeout)
		defer cancel()
		job(ctx)
	}
}

// RunOverdueRefresh persists overdue status and fines for every tenant
func (s *CronService) RunOverdueRefresh(ctx context.Context) {
	tenants, err := s.circulation.Tenants(ctx)
	if err != nil {
		log.Printf("❌ Overdue refresh: cannot list schools: %v", err)
		return
	}

	total := 0
	for _, school := range tenants {
		n, err := s.circulation.RefreshOverdue(ctx, school)
		if err != nil {
			log.Printf("❌ Overdue refresh [%s]: %v", school, err)
			continue
		}
		total += n
	}

	log.Printf("✅ Overdue refresh finished: %d loans updated across %d schools", total, len(tenants))
}

// RunReconciliation removes orphaned loans then restores availability for
// every tenant, and purges expired refresh tokens
func (s *CronService) RunReconciliation(ctx context.Context) {
	tenants, err := s.circulation.Tenants(ctx)
	if err != nil {
		log.Printf("❌ Reconciliation: cannot list schools: %v", err)
		return
	}

	for _, school := range tenants {
		if ctx.Err() != nil {
			log.Printf("⚠️ Reconciliation interrupted: %v", ctx.Err())
			return
		}
		if _, err := s.circulation.CleanupOrphanedLoans(ctx, school, "cron"); err != nil {
			log.Printf("❌ Cleanup [%s]: %v", school, err)
		}
		if _, err := s.circulation.RestoreAvailability(ctx, school, "cron"); err != nil {
			log.Printf("❌ Restore [%s]: %v", school, err)
		}
	}

	if s.auth != nil {
		if n, err := s.auth.PurgeExpiredTokens(ctx); err != nil {
			log.Printf("❌ Token purge: %v", err)
		} else if n > 0 {
			log.Printf("✅ Purged %d expired refresh tokens", n)
		}
	}
}
