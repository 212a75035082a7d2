package filestore

import (
	"context"
	"log"
	"time"

	"github.com/robfig/cron/v3"
)

// ReapOnce removes staged uploads that were never committed or discarded.
func ReapOnce(ctx context.Context, st Store, ttl time.Duration) {
	n, err := st.ReapStaged(ctx, time.Now().Add(-ttl))
	if err != nil {
		log.Printf("[STAGING-REAPER] error: %v", err)
		return
	}
	if n > 0 {
		log.Printf("[STAGING-REAPER] removed %d staged files older than %s", n, ttl)
	}
}

// StartReaper schedules ReapOnce; the caller stops the returned cron on shutdown.
func StartReaper(st Store, schedule string, ttl time.Duration) (*cron.Cron, error) {
	c := cron.New(cron.WithChain(cron.SkipIfStillRunning(cron.DefaultLogger)))
	_, err := c.AddFunc(schedule, func() {
		ctx, cancel := context.WithTimeout(context.Background(), 4*time.Minute)
		defer cancel()
		ReapOnce(ctx, st, ttl)
	})
	if err != nil {
		return nil, err
	}
	c.Start()
	log.Printf("[STAGING-REAPER] started schedule=%q ttl=%s", schedule, ttl)
	return c, nil
}
