package service

import (
	"context"
	"fmt"
	"log"

	"github.com/robfig/cron/v3"
)

// Job is a unit of background work. An empty Schedule registers the job for
// on-demand runs only.
type Job interface {
	Name() string
	Schedule() string
	Execute(ctx context.Context) error
}

// Scheduler runs registered jobs on their cron schedules.
type Scheduler struct {
	cron *cron.Cron
	jobs []Job
}

func NewScheduler() *Scheduler {
	return &Scheduler{
		cron: cron.New(),
		jobs: make([]Job, 0),
	}
}

func (s *Scheduler) Register(job Job) error {
	if schedule := job.Schedule(); schedule != "" {
		_, err := s.cron.AddFunc(schedule, func() {
			log.Printf("⏰ [%s] Starting scheduled job...", job.Name())
			if err := job.Execute(context.Background()); err != nil {
				log.Printf("❌ [%s] Job failed: %v", job.Name(), err)
				return
			}
			log.Printf("✅ [%s] Job completed", job.Name())
		})
		if err != nil {
			return fmt.Errorf("failed to schedule %s: %w", job.Name(), err)
		}
		log.Printf("📅 [%s] Scheduled with cron: %s", job.Name(), schedule)
	}

	s.jobs = append(s.jobs, job)
	return nil
}

func (s *Scheduler) Start() {
	s.cron.Start()
	log.Printf("🚀 Scheduler started with %d jobs", len(s.jobs))
}

// Stop waits for running jobs to finish.
func (s *Scheduler) Stop() {
	<-s.cron.Stop().Done()
	log.Println("🛑 Scheduler stopped")
}

// Run executes the named job immediately.
func (s *Scheduler) Run(ctx context.Context, name string) error {
	for _, job := range s.jobs {
		if job.Name() == name {
			return job.Execute(ctx)
		}
	}
	return fmt.Errorf("job %q is not registered", name)
}

func (s *Scheduler) Jobs() []string {
	names := make([]string, len(s.jobs))
	for i, job := range s.jobs {
		names[i] = job.Name()
	}
	return names
}
