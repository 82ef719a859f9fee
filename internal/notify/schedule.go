package notify

import (
	"context"
	"fmt"
	"log"
	"time"

	"github.com/robfig/cron/v3"
)

// cronParser uses standard 5-field cron expressions (minute, hour, dom, month, dow).
var cronParser = cron.NewParser(cron.Minute | cron.Hour | cron.Dom | cron.Month | cron.Dow)

// NextRun returns the first fire time of expr after from.
func NextRun(expr string, from time.Time) (time.Time, error) {
	sched, err := cronParser.Parse(expr)
	if err != nil {
		return time.Time{}, fmt.Errorf("notify: schedule %q: %w", expr, err)
	}
	return sched.Next(from), nil
}

// Schedule runs job on the cron expression until ctx is cancelled. Times are
// evaluated in UTC, matching shift dates. Schedule blocks; the in-flight job
// is allowed to finish before it returns.
func Schedule(ctx context.Context, expr string, job func(context.Context)) error {
	c := cron.New(cron.WithParser(cronParser), cron.WithLocation(time.UTC))
	if _, err := c.AddFunc(expr, func() { job(ctx) }); err != nil {
		return fmt.Errorf("notify: schedule %q: %w", expr, err)
	}

	c.Start()
	log.Printf("notify: digest scheduled %q", expr)

	<-ctx.Done()
	<-c.Stop().Done()
	return nil
}
