// Package installer bootstraps a Privacy Guard database: it creates the
// reference and default-configuration tables, seeds them, optionally adds
// demo records, and marks the installation complete. Every mutating
// operation runs in a single transaction.
package installer

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"strings"
	"sync"
	"time"

	"gorm.io/gorm"
	"gorm.io/gorm/clause"

	"privacy-guard/internal/models"
)

// Step names, in execution order.
const (
	StepEnsureTables   = "ensure_tables"
	StepReferenceData  = "reference_data"
	StepDefaultConfigs = "default_configurations"
	StepSampleData     = "sample_data"
	StepMarkInstalled  = "mark_installed"
)

var ErrInvalidAdmin = errors.New("admin user requires an email address")

// AdminUser is the identity that owns generated sample records.
type AdminUser struct {
	Email     string `json:"email"`
	FirstName string `json:"first_name"`
	LastName  string `json:"last_name"`
}

type Options struct {
	IncludeSampleData bool       `json:"include_sample_data"`
	AdminUser         *AdminUser `json:"admin_user,omitempty"`
}

type InstallDetails struct {
	Steps              []string  `json:"steps"`
	IncludedSampleData bool      `json:"included_sample_data"`
	InstalledAt        time.Time `json:"installed_at"`
}

type InstallResult struct {
	Success bool            `json:"success"`
	Message string          `json:"message"`
	Details *InstallDetails `json:"details,omitempty"`
}

type RemovalResult struct {
	Success      bool   `json:"success"`
	Message      string `json:"message"`
	RemovedCount int64  `json:"removed_count"`
}

type ResetResult struct {
	Success bool   `json:"success"`
	Message string `json:"message"`
}

type Service struct {
	db       *gorm.DB
	notifier Notifier
	logger   *slog.Logger
	now      func() time.Time

	// mu serializes mutating operations within this process.
	mu sync.Mutex
}

type Option func(*Service)

func WithNotifier(n Notifier) Option {
	return func(s *Service) { s.notifier = n }
}

func WithLogger(l *slog.Logger) Option {
	return func(s *Service) { s.logger = l }
}

func WithClock(now func() time.Time) Option {
	return func(s *Service) { s.now = now }
}

func New(db *gorm.DB, opts ...Option) *Service {
	s := &Service{
		db:       db,
		notifier: nopNotifier{},
		logger:   slog.Default(),
		now:      time.Now,
	}
	for _, opt := range opts {
		opt(s)
	}
	s.logger = s.logger.With("component", "installer")
	return s
}

type step struct {
	name string
	run  func(tx *gorm.DB) error
}

func (s *Service) installSteps(opts Options, installedAt time.Time) []step {
	steps := []step{
		{StepEnsureTables, EnsureTables},
		{StepReferenceData, SeedReferenceData},
		{StepDefaultConfigs, SetupDefaultConfigurations},
	}
	if opts.IncludeSampleData {
		steps = append(steps, step{StepSampleData, func(tx *gorm.DB) error {
			return GenerateSampleData(tx, opts.AdminUser, installedAt)
		}})
	}
	return append(steps, step{StepMarkInstalled, func(tx *gorm.DB) error {
		return markInstalled(tx, installedAt)
	}})
}

// PerformInstallation runs every installation step in one transaction.
// Either all steps commit or none do; the completion flag is written last.
// On failure the returned result describes the error, which is also
// returned.
func (s *Service) PerformInstallation(ctx context.Context, opts Options) (*InstallResult, error) {
	if opts.AdminUser != nil && strings.TrimSpace(opts.AdminUser.Email) == "" {
		return &InstallResult{Success: false, Message: ErrInvalidAdmin.Error()}, ErrInvalidAdmin
	}

	s.mu.Lock()
	defer s.mu.Unlock()

	installedAt := s.now().UTC()
	steps := s.installSteps(opts, installedAt)
	ran := make([]string, 0, len(steps))

	s.logger.Info("installation started", "sample_data", opts.IncludeSampleData)

	err := s.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		for _, st := range steps {
			s.notifier.Notify(Event{Type: EventStepStarted, Step: st.name})
			if err := st.run(tx); err != nil {
				return fmt.Errorf("%s: %w", st.name, err)
			}
			ran = append(ran, st.name)
			s.notifier.Notify(Event{Type: EventStepCompleted, Step: st.name})
		}
		return nil
	})
	if err != nil {
		s.logger.Error("installation failed", "error", err)
		s.notifier.Notify(Event{Type: EventInstallFailed, Message: err.Error()})
		return &InstallResult{
			Success: false,
			Message: "Installation failed: " + err.Error(),
		}, err
	}

	s.logger.Info("installation completed", "steps", ran)
	s.notifier.Notify(Event{Type: EventInstallCompleted, Message: "Installation completed"})

	return &InstallResult{
		Success: true,
		Message: "Installation completed successfully",
		Details: &InstallDetails{
			Steps:              ran,
			IncludedSampleData: opts.IncludeSampleData,
			InstalledAt:        installedAt,
		},
	}, nil
}

func markInstalled(tx *gorm.DB, at time.Time) error {
	flag := models.InstallationSetting{
		Key:       models.InstallationCompleteKey,
		Value:     "true",
		CreatedAt: at,
		UpdatedAt: at,
	}
	return tx.Clauses(clause.OnConflict{
		Columns:   []clause.Column{{Name: "key"}},
		DoUpdates: clause.AssignmentColumns([]string{"value", "updated_at"}),
	}).Create(&flag).Error
}
