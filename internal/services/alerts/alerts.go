// Package alerts raises expiry and deadline alerts from the thresholds in
// default_alert_settings. A sweep runs on a cron schedule and can be
// triggered on demand.
package alerts

import (
	"context"
	"fmt"
	"log/slog"
	"sort"
	"sync"
	"time"

	"github.com/robfig/cron/v3"
	"gorm.io/gorm"
	"gorm.io/gorm/clause"

	"privacy-guard/internal/models"
)

// DSARs in these states no longer need a response.
var closedDsarStatuses = []string{"Completed", "Rejected"}

type SweepResult struct {
	Evaluated int `json:"evaluated"`
	Raised    int `json:"raised"`
}

type Service struct {
	db     *gorm.DB
	logger *slog.Logger
	now    func() time.Time

	scheduler *cron.Cron
	entryID   cron.EntryID
	mutex     sync.Mutex
}

type Option func(*Service)

func WithLogger(l *slog.Logger) Option {
	return func(s *Service) { s.logger = l }
}

func WithClock(now func() time.Time) Option {
	return func(s *Service) { s.now = now }
}

func New(db *gorm.DB, opts ...Option) *Service {
	s := &Service{
		db:     db,
		logger: slog.Default(),
		now:    time.Now,
	}
	for _, opt := range opts {
		opt(s)
	}
	s.logger = s.logger.With("component", "alerts")
	return s
}

// Start schedules the sweep with a standard cron expression or descriptor
// such as "@hourly".
func (s *Service) Start(schedule string) error {
	s.mutex.Lock()
	defer s.mutex.Unlock()

	if s.scheduler != nil {
		return fmt.Errorf("alert scheduler already started")
	}

	scheduler := cron.New()
	entryID, err := scheduler.AddFunc(schedule, s.runScheduled)
	if err != nil {
		return fmt.Errorf("schedule alert sweep %q: %w", schedule, err)
	}

	s.scheduler = scheduler
	s.entryID = entryID
	scheduler.Start()
	s.logger.Info("alert scheduler started", "schedule", schedule)
	return nil
}

// Stop halts the scheduler and returns a context that is done once any
// running sweep has finished.
func (s *Service) Stop() context.Context {
	s.mutex.Lock()
	defer s.mutex.Unlock()

	if s.scheduler == nil {
		ctx, cancel := context.WithCancel(context.Background())
		cancel()
		return ctx
	}
	ctx := s.scheduler.Stop()
	s.scheduler = nil
	return ctx
}

// NextRun reports when the scheduled sweep fires next.
func (s *Service) NextRun() (time.Time, bool) {
	s.mutex.Lock()
	defer s.mutex.Unlock()

	if s.scheduler == nil {
		return time.Time{}, false
	}
	return s.scheduler.Entry(s.entryID).Next, true
}

func (s *Service) runScheduled() {
	result, err := s.Sweep(context.Background())
	if err != nil {
		s.logger.Error("scheduled alert sweep failed", "error", err)
		return
	}
	if result.Raised > 0 {
		s.logger.Info("scheduled alert sweep", "evaluated", result.Evaluated, "raised", result.Raised)
	}
}

// Sweep compares tracked dates against every enabled threshold and records
// new alerts. Alerts already raised are not raised again. Before
// installation there are no thresholds and the sweep does nothing.
func (s *Service) Sweep(ctx context.Context) (SweepResult, error) {
	db := s.db.WithContext(ctx)
	var result SweepResult

	if !db.Migrator().HasTable(&models.DefaultAlertSetting{}) {
		return result, nil
	}

	var settings []models.DefaultAlertSetting
	if err := db.Where("is_enabled = ?", true).Find(&settings).Error; err != nil {
		return result, fmt.Errorf("load alert settings: %w", err)
	}
	byType := groupThresholds(settings)
	if len(byType) == 0 {
		return result, nil
	}

	targets, err := s.loadTargets(db, byType)
	if err != nil {
		return result, err
	}

	now := s.now().UTC()
	for _, target := range targets {
		result.Evaluated++

		setting, ok := tightestThreshold(byType[target.alertType], daysUntil(now, target.dueAt))
		if !ok {
			continue
		}

		alert := models.Alert{
			AlertType:     target.alertType,
			SubjectID:     target.subjectID,
			Subject:       target.subject,
			ThresholdDays: setting.ThresholdDays,
			DueAt:         target.dueAt.UTC(),
			Message:       describe(target, now),
			Channels:      setting.NotificationMethods,
		}
		res := db.Clauses(clause.OnConflict{DoNothing: true}).Create(&alert)
		if res.Error != nil {
			return result, fmt.Errorf("record %s alert for %s: %w", target.alertType, target.subject, res.Error)
		}
		if res.RowsAffected > 0 {
			result.Raised++
			s.logger.Info("alert raised",
				"type", alert.AlertType,
				"subject", alert.Subject,
				"threshold_days", alert.ThresholdDays,
				"channels", []string(alert.Channels))
		}
	}

	return result, nil
}

// List returns the most recent alerts first.
func (s *Service) List(ctx context.Context, limit int) ([]models.Alert, error) {
	if limit <= 0 {
		limit = 100
	}
	var alerts []models.Alert
	err := s.db.WithContext(ctx).Order("created_at desc, id desc").Limit(limit).Find(&alerts).Error
	return alerts, err
}

type target struct {
	alertType string
	subjectID string
	subject   string
	dueAt     time.Time
}

func (s *Service) loadTargets(db *gorm.DB, byType map[string][]models.DefaultAlertSetting) ([]target, error) {
	var targets []target

	_, ssl := byType[models.AlertSSLExpiry]
	_, reg := byType[models.AlertDomainExpiry]
	if ssl || reg {
		var domains []models.Domain
		if err := db.Find(&domains).Error; err != nil {
			return nil, fmt.Errorf("load domains: %w", err)
		}
		for _, d := range domains {
			if ssl && d.SSLExpiresAt != nil {
				targets = append(targets, target{models.AlertSSLExpiry, d.ID, d.Name, *d.SSLExpiresAt})
			}
			if reg && d.DomainExpiresAt != nil {
				targets = append(targets, target{models.AlertDomainExpiry, d.ID, d.Name, *d.DomainExpiresAt})
			}
		}
	}

	if _, ok := byType[models.AlertDsarDeadline]; ok {
		var dsars []models.DsarRequest
		if err := db.Where("status NOT IN ?", closedDsarStatuses).Find(&dsars).Error; err != nil {
			return nil, fmt.Errorf("load dsar requests: %w", err)
		}
		for _, d := range dsars {
			targets = append(targets, target{models.AlertDsarDeadline, d.ID, d.RequesterName, d.DueDate})
		}
	}

	return targets, nil
}

// groupThresholds buckets settings by alert type, smallest threshold first.
func groupThresholds(settings []models.DefaultAlertSetting) map[string][]models.DefaultAlertSetting {
	byType := make(map[string][]models.DefaultAlertSetting)
	for _, setting := range settings {
		if setting.ThresholdDays < 0 {
			continue
		}
		byType[setting.AlertType] = append(byType[setting.AlertType], setting)
	}
	for _, list := range byType {
		sort.Slice(list, func(i, j int) bool { return list[i].ThresholdDays < list[j].ThresholdDays })
	}
	return byType
}

// tightestThreshold picks the smallest threshold that daysLeft has
// reached. Overdue dates match the smallest threshold.
func tightestThreshold(sorted []models.DefaultAlertSetting, daysLeft int) (models.DefaultAlertSetting, bool) {
	for _, setting := range sorted {
		if daysLeft <= setting.ThresholdDays {
			return setting, true
		}
	}
	return models.DefaultAlertSetting{}, false
}

// daysUntil counts whole days from now to due, negative once due has
// passed.
func daysUntil(now, due time.Time) int {
	const day = 24 * time.Hour
	d := due.Sub(now)
	if d < 0 {
		return -int((-d + day - 1) / day)
	}
	return int(d / day)
}

func describe(t target, now time.Time) string {
	days := daysUntil(now, t.dueAt)
	var what string
	switch t.alertType {
	case models.AlertSSLExpiry:
		what = "SSL certificate for " + t.subject
	case models.AlertDomainExpiry:
		what = "Domain registration for " + t.subject
	case models.AlertDsarDeadline:
		what = "DSAR from " + t.subject
	default:
		what = t.subject
	}
	if days < 0 {
		return fmt.Sprintf("%s is overdue (was due %s)", what, t.dueAt.Format("2006-01-02"))
	}
	return fmt.Sprintf("%s is due in %d day(s) on %s", what, days, t.dueAt.Format("2006-01-02"))
}
