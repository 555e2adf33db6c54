package jobs

import (
	"context"
	"log"
	"time"

	"leadflow/internal/services"
)

// requalifyBatchLimit caps how many leads one run re-queues
const requalifyBatchLimit = 25

// RequalifyStaleLeadsJob re-queues qualification for leads that never got a
// score and have not been touched since the cutoff. This is best-effort: a
// run that misses leads picks them up on the next interval.
type RequalifyStaleLeadsJob struct {
	leads    *services.LeadService
	workflow *services.WorkflowService
	interval time.Duration
	maxAge   time.Duration
}

// NewRequalifyStaleLeadsJob creates the stale-lead requalification job
func NewRequalifyStaleLeadsJob(leads *services.LeadService, workflow *services.WorkflowService, interval, maxAge time.Duration) *RequalifyStaleLeadsJob {
	return &RequalifyStaleLeadsJob{
		leads:    leads,
		workflow: workflow,
		interval: interval,
		maxAge:   maxAge,
	}
}

// Name implements Job
func (j *RequalifyStaleLeadsJob) Name() string {
	return "requalify_stale_leads"
}

// Interval implements Job
func (j *RequalifyStaleLeadsJob) Interval() time.Duration {
	return j.interval
}

// Run implements Job
func (j *RequalifyStaleLeadsJob) Run(ctx context.Context) error {
	cutoff := time.Now().Add(-j.maxAge)

	stale, err := j.leads.ListStale(ctx, cutoff, requalifyBatchLimit)
	if err != nil {
		return err
	}
	if len(stale) == 0 {
		return nil
	}

	log.Printf("🔄 [REQUALIFY] Re-queuing qualification for %d stale leads", len(stale))
	for _, lead := range stale {
		j.workflow.ScheduleQualification(lead, "")
	}
	return nil
}
