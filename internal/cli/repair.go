package cli

import (
	"context"

	"github.com/spf13/cobra"
	"go.uber.org/zap"

	"quizhub-service/internal/app"
	"quizhub-service/internal/config"
	"quizhub-service/internal/logging"
)

// NewRepairCmd reconciles quiz and user back-references with stored results.
func NewRepairCmd(configPath *string) *cobra.Command {
	return &cobra.Command{
		Use:   "repair",
		Short: "Relink result back-references and delete orphaned results",
		RunE: func(cmd *cobra.Command, args []string) error {
			return runRepair(cmd.Context(), *configPath)
		},
	}
}

func runRepair(ctx context.Context, configPath string) error {
	if ctx == nil {
		ctx = context.Background()
	}
	cfg, err := config.Load(configPath)
	if err != nil {
		return err
	}
	log, err := logging.New(logging.Options{Level: cfg.Log.Level, File: cfg.Log.File})
	if err != nil {
		return err
	}
	defer func() { _ = log.Sync() }()

	st, err := openStores(ctx, cfg, log)
	if err != nil {
		return err
	}
	defer st.close()

	service := app.NewQuizService(st.quizzes, st.results, st.users, app.WithLogger(log.Named("repair")))
	report, err := service.Repair(ctx)
	if err != nil {
		return err
	}
	log.Info("repair complete", zap.Int("checked", report.Checked), zap.Int("relinked", report.Relinked), zap.Int("orphans", report.Orphans))
	return nil
}
