package cron

import (
	"time"

	"github.com/gofiber/fiber/v2/log"
	"github.com/robfig/cron/v3"
	"github.com/sahilchouksey/campus-records/model"
	"gorm.io/gorm"
)

// Config tunes the scheduled jobs
type Config struct {
	IDCardDir       string
	IDCardRetention time.Duration
	LogRetention    time.Duration
}

// CronManager manages all scheduled cron jobs
type CronManager struct {
	cron   *cron.Cron
	db     *gorm.DB
	config Config
	now    func() time.Time
}

// NewCronManager creates a new cron manager
func NewCronManager(db *gorm.DB, config Config) *CronManager {
	if config.IDCardRetention <= 0 {
		config.IDCardRetention = 24 * time.Hour
	}
	if config.LogRetention <= 0 {
		config.LogRetention = 90 * 24 * time.Hour
	}

	// Create cron with seconds precision
	c := cron.New(cron.WithSeconds())

	return &CronManager{
		cron:   c,
		db:     db,
		config: config,
		now:    time.Now,
	}
}

// Start starts all cron jobs
func (m *CronManager) Start() error {
	log.Info("[CRON] Starting cron jobs...")

	// Register all jobs
	if err := m.registerJobs(); err != nil {
		return err
	}

	// Start the cron scheduler
	m.cron.Start()

	log.Info("[CRON] Cron jobs started successfully")
	return nil
}

// Stop stops all cron jobs and waits for running ones to finish
func (m *CronManager) Stop() {
	log.Info("[CRON] Stopping cron jobs...")
	ctx := m.cron.Stop()
	<-ctx.Done()
	log.Info("[CRON] Cron jobs stopped")
}

// registerJobs registers all cron jobs with their schedules
func (m *CronManager) registerJobs() error {
	jobs := []struct {
		spec string
		name string
		fn   func() (string, error)
	}{
		// Every 30 minutes: remove stale generated ID cards
		{spec: "0 */30 * * * *", name: "purge_id_cards", fn: m.PurgeIDCards},
		// Every hour: report record counts
		{spec: "0 0 * * * *", name: "record_counts", fn: m.ReportRecordCounts},
		// Daily at 2 AM: drop old job logs
		{spec: "0 0 2 * * *", name: "cleanup_old_data", fn: m.CleanupOldData},
	}

	for _, job := range jobs {
		job := job
		if _, err := m.cron.AddFunc(job.spec, func() { m.RunJob(job.name, job.fn) }); err != nil {
			return err
		}
	}

	log.Infof("[CRON] Registered %d cron jobs", len(jobs))
	return nil
}

// RunJob executes fn and records the outcome in cron_job_logs
func (m *CronManager) RunJob(jobName string, fn func() (string, error)) {
	entry := m.logJobStart(jobName)

	message, err := fn()
	if err != nil {
		m.logJobError(entry, err)
		return
	}
	m.logJobComplete(entry, message)
}

// logJobStart logs the start of a cron job
func (m *CronManager) logJobStart(jobName string) *model.CronJobLog {
	started := m.now()
	log.Infof("[CRON] Starting job: %s at %s", jobName, started.Format(time.RFC3339))

	entry := &model.CronJobLog{
		JobName:   jobName,
		Status:    "running",
		StartedAt: started,
	}
	if err := m.db.Create(entry).Error; err != nil {
		log.Warnf("[CRON] Failed to record start of %s: %v", jobName, err)
	}
	return entry
}

// logJobComplete logs successful completion of a cron job
func (m *CronManager) logJobComplete(entry *model.CronJobLog, message string) {
	log.Infof("[CRON] Completed job: %s - %s", entry.JobName, message)
	m.finish(entry, map[string]interface{}{
		"status":  "completed",
		"message": message,
	})
}

// logJobError logs a cron job error
func (m *CronManager) logJobError(entry *model.CronJobLog, err error) {
	log.Errorf("[CRON] Error in job: %s - %v", entry.JobName, err)
	m.finish(entry, map[string]interface{}{
		"status":    "failed",
		"error_msg": err.Error(),
	})
}

func (m *CronManager) finish(entry *model.CronJobLog, updates map[string]interface{}) {
	if entry.ID == 0 {
		return
	}
	completed := m.now()
	updates["completed_at"] = completed
	updates["duration"] = completed.Sub(entry.StartedAt).Milliseconds()

	if err := m.db.Model(&model.CronJobLog{}).Where("id = ?", entry.ID).Updates(updates).Error; err != nil {
		log.Warnf("[CRON] Failed to record end of %s: %v", entry.JobName, err)
	}
}
