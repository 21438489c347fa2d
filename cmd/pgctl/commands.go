package main

import (
	"errors"
	"fmt"
	"io"
	"log/slog"
	"time"

	"github.com/go-extras/cobraflags"
	"github.com/joho/godotenv"
	"github.com/spf13/cobra"

	"privacy-guard/internal/config"
	"privacy-guard/internal/database"
	"privacy-guard/internal/models"
	"privacy-guard/internal/services/installer"
)

const (
	adminEmailFlag     = "admin-email"
	adminFirstNameFlag = "admin-first-name"
	adminLastNameFlag  = "admin-last-name"
)

var adminFlags = map[string]cobraflags.Flag{
	adminEmailFlag: &cobraflags.StringFlag{
		Name:  adminEmailFlag,
		Value: "",
		Usage: "Email of the user who owns the sample records (defaults to a generated sample owner)",
	},
	adminFirstNameFlag: &cobraflags.StringFlag{
		Name:  adminFirstNameFlag,
		Value: "",
		Usage: "First name of the sample data owner",
	},
	adminLastNameFlag: &cobraflags.StringFlag{
		Name:  adminLastNameFlag,
		Value: "",
		Usage: "Last name of the sample data owner",
	},
}

// consoleNotifier prints installation progress as it happens.
type consoleNotifier struct {
	w io.Writer
}

func (n consoleNotifier) Notify(e installer.Event) {
	switch e.Type {
	case installer.EventStepStarted:
		fmt.Fprintf(n.w, "  -> %s\n", e.Step)
	case installer.EventInstallFailed:
		fmt.Fprintf(n.w, "  !! %s\n", e.Message)
	}
}

// openInstaller connects to the configured store and returns an installer
// bound to it. The returned func closes the connection.
func openInstaller(out io.Writer) (*installer.Service, func(), error) {
	_ = godotenv.Load()

	cfg, err := config.Load(configFile)
	if err != nil {
		return nil, nil, fmt.Errorf("load config: %w", err)
	}

	db, err := database.Connect(cfg.Database)
	if err != nil {
		return nil, nil, fmt.Errorf("connect database: %w", err)
	}
	closeDB := func() { _ = database.Close(db) }

	if err := database.AutoMigrate(db, models.Operational()...); err != nil {
		closeDB()
		return nil, nil, fmt.Errorf("migrate database: %w", err)
	}

	svc := installer.New(db,
		installer.WithNotifier(consoleNotifier{w: out}),
		installer.WithLogger(slog.New(slog.NewTextHandler(io.Discard, nil))),
	)
	return svc, closeDB, nil
}

func newStatusCommand() *cobra.Command {
	return &cobra.Command{
		Use:   "status",
		Short: "Show what the installation has set up",
		RunE: func(cmd *cobra.Command, _ []string) error {
			svc, closeDB, err := openInstaller(cmd.OutOrStdout())
			if err != nil {
				return err
			}
			defer closeDB()

			printStatus(cmd.OutOrStdout(), svc.CheckStatus(cmd.Context()))
			return nil
		},
	}
}

func printStatus(w io.Writer, status installer.Status) {
	fmt.Fprintf(w, "Installed:               %t\n", status.IsInstalled)
	fmt.Fprintf(w, "Reference data:          %t\n", status.HasReferenceData)
	fmt.Fprintf(w, "Default configurations:  %t\n", status.HasDefaultConfigurations)
	fmt.Fprintf(w, "Sample data:             %t\n", status.SampleDataExists)
	if status.InstallationDate != nil {
		fmt.Fprintf(w, "Installed at:            %s\n", status.InstallationDate.Format(time.RFC3339))
	}
}

func newInstallCommand() *cobra.Command {
	var sampleData bool

	cmd := &cobra.Command{
		Use:   "install",
		Short: "Create tables, seed reference data and default configurations",
		Long: `Run the full installation in a single transaction.

With --sample-data a demonstration data set is generated as well. The sample
records are owned by the user named with --admin-email, which is created or
updated as needed.`,
		RunE: func(cmd *cobra.Command, _ []string) error {
			svc, closeDB, err := openInstaller(cmd.OutOrStdout())
			if err != nil {
				return err
			}
			defer closeDB()

			opts := installer.Options{IncludeSampleData: sampleData}
			if email := adminFlags[adminEmailFlag].GetString(); email != "" {
				opts.AdminUser = &installer.AdminUser{
					Email:     email,
					FirstName: adminFlags[adminFirstNameFlag].GetString(),
					LastName:  adminFlags[adminLastNameFlag].GetString(),
				}
			}

			fmt.Fprintln(cmd.OutOrStdout(), "Installing Privacy Guard")
			result, err := svc.PerformInstallation(cmd.Context(), opts)
			if err != nil {
				return err
			}
			fmt.Fprintln(cmd.OutOrStdout(), result.Message)
			return nil
		},
	}

	cmd.Flags().BoolVar(&sampleData, "sample-data", false, "Generate demonstration records")
	cobraflags.RegisterMap(cmd, adminFlags)
	return cmd
}

func newRemoveSampleDataCommand() *cobra.Command {
	return &cobra.Command{
		Use:   "remove-sample-data",
		Short: "Delete every record flagged as sample data",
		RunE: func(cmd *cobra.Command, _ []string) error {
			svc, closeDB, err := openInstaller(cmd.OutOrStdout())
			if err != nil {
				return err
			}
			defer closeDB()

			result, err := svc.RemoveSampleData(cmd.Context())
			if err != nil {
				return err
			}
			fmt.Fprintf(cmd.OutOrStdout(), "%s (%d rows)\n", result.Message, result.RemovedCount)
			return nil
		},
	}
}

var errResetNotConfirmed = errors.New("reset drops the reference and default configuration tables; rerun with --yes to confirm")

func newResetCommand() *cobra.Command {
	var confirmed bool

	cmd := &cobra.Command{
		Use:   "reset",
		Short: "Drop reference and default configuration tables and clear the installed flag",
		RunE: func(cmd *cobra.Command, _ []string) error {
			if !confirmed {
				return errResetNotConfirmed
			}

			svc, closeDB, err := openInstaller(cmd.OutOrStdout())
			if err != nil {
				return err
			}
			defer closeDB()

			result, err := svc.ResetInstallation(cmd.Context())
			if err != nil {
				return err
			}
			fmt.Fprintln(cmd.OutOrStdout(), result.Message)
			return nil
		},
	}

	cmd.Flags().BoolVar(&confirmed, "yes", false, "Confirm the reset")
	return cmd
}
