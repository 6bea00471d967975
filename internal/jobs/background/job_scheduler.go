package background

import (
	"context"
	"log"
	"sync"
	"time"

	"sandwichworks/internal/caching"
	"sandwichworks/internal/jobs"

	"github.com/go-co-op/gocron/v2"
)

// JobScheduler manages periodic background jobs
type JobScheduler struct {
	scheduler  gocron.Scheduler
	alertSvc   *jobs.StockAlertService
	cacheSvc   caching.CacheService
	jobHandles map[string]gocron.Job
	mu         sync.RWMutex
}

// NewJobScheduler creates a new job scheduler
func NewJobScheduler(alertSvc *jobs.StockAlertService, cacheSvc caching.CacheService) *JobScheduler {
	scheduler, err := gocron.NewScheduler()
	if err != nil {
		log.Fatalf("Failed to create scheduler: %v", err)
	}

	js := &JobScheduler{
		scheduler:  scheduler,
		alertSvc:   alertSvc,
		cacheSvc:   cacheSvc,
		jobHandles: make(map[string]gocron.Job),
	}

	js.registerJobs()

	return js
}

// Start starts the job scheduler
func (js *JobScheduler) Start() error {
	log.Printf("Starting background job scheduler")
	js.scheduler.Start()
	return nil
}

// Stop stops the job scheduler
func (js *JobScheduler) Stop() error {
	log.Printf("Stopping background job scheduler")
	return js.scheduler.Shutdown()
}

// registerJobs registers all background jobs
func (js *JobScheduler) registerJobs() {
	// Low stock alerts - every 30 minutes
	alertsJob, err := js.scheduler.NewJob(
		gocron.DurationJob(30*time.Minute),
		gocron.NewTask(js.alertSvc.ScheduledLowStockCheck, context.Background()),
		gocron.WithName("stock-alerts"),
		gocron.WithSingletonMode(gocron.LimitModeReschedule),
	)
	if err != nil {
		log.Printf("Failed to create stock alerts job: %v", err)
	} else {
		js.jobHandles["stock-alerts"] = alertsJob
	}

	// Cache health check - every hour
	cacheJob, err := js.scheduler.NewJob(
		gocron.DurationJob(1*time.Hour),
		gocron.NewTask(js.checkCacheHealth),
		gocron.WithName("cache-health"),
	)
	if err != nil {
		log.Printf("Failed to create cache health job: %v", err)
	} else {
		js.jobHandles["cache-health"] = cacheJob
	}

	log.Printf("Registered %d background jobs", len(js.jobHandles))
}

// checkCacheHealth pings Redis so cache outages show up in the logs
// before a request hits the fallback path.
func (js *JobScheduler) checkCacheHealth() error {
	ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()

	if err := js.cacheSvc.Ping(ctx); err != nil {
		log.Printf("Cache health check failed: %v", err)
		return err
	}

	log.Printf("Cache health check passed")
	return nil
}

// AddJob adds a custom job to the scheduler
func (js *JobScheduler) AddJob(name string, interval time.Duration, taskFn interface{}, params ...interface{}) error {
	js.mu.Lock()
	defer js.mu.Unlock()

	job, err := js.scheduler.NewJob(
		gocron.DurationJob(interval),
		gocron.NewTask(taskFn, params...),
		gocron.WithName(name),
	)

	if err != nil {
		return err
	}

	js.jobHandles[name] = job
	log.Printf("Added custom job: %s", name)
	return nil
}

// RemoveJob removes a job from the scheduler
func (js *JobScheduler) RemoveJob(name string) error {
	js.mu.Lock()
	defer js.mu.Unlock()

	if job, exists := js.jobHandles[name]; exists {
		err := js.scheduler.RemoveJob(job.ID())
		delete(js.jobHandles, name)
		return err
	}

	return nil
}

// GetJobStatus returns information about scheduled jobs
func (js *JobScheduler) GetJobStatus() map[string]interface{} {
	js.mu.RLock()
	defer js.mu.RUnlock()

	status := make(map[string]interface{})
	status["total_jobs"] = len(js.jobHandles)
	names := make([]string, 0, len(js.jobHandles))

	for name := range js.jobHandles {
		names = append(names, name)
	}

	status["jobs"] = names

	return status
}
