package main

import (
	"aspireedge/internal/config"
	"aspireedge/internal/logging"
	"aspireedge/internal/repository"
	"aspireedge/internal/seed"
	"context"
	_ "embed"
	"fmt"
	"os"
	"time"

	"github.com/spf13/cobra"
	"go.mongodb.org/mongo-driver/mongo"
	"go.mongodb.org/mongo-driver/mongo/options"
	"go.uber.org/zap"
)

//go:embed career_quiz.yaml
var defaultFixture []byte

func main() {
	if err := newRootCommand().Execute(); err != nil {
		fmt.Fprintf(os.Stderr, "Error: %v\n", err)
		os.Exit(1)
	}
}

func newRootCommand() *cobra.Command {
	cmd := &cobra.Command{
		Use:          "seed",
		Short:        "Load quiz definitions and their questions into MongoDB",
		SilenceUsage: true,
	}
	cmd.AddCommand(newApplyCommand())
	cmd.AddCommand(newValidateCommand())
	return cmd
}

func newApplyCommand() *cobra.Command {
	var file string
	cmd := &cobra.Command{
		Use:   "apply",
		Short: "Upsert a fixture (defaults to the bundled career quiz)",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			fixture, err := loadFixture(file)
			if err != nil {
				return err
			}
			return apply(cmd.Context(), fixture)
		},
	}
	cmd.Flags().StringVarP(&file, "file", "f", "", "YAML fixture to load")
	return cmd
}

func newValidateCommand() *cobra.Command {
	var file string
	cmd := &cobra.Command{
		Use:   "validate",
		Short: "Check a fixture without touching the database",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			fixture, err := loadFixture(file)
			if err != nil {
				return err
			}
			fmt.Fprintf(cmd.OutOrStdout(), "%s: %d questions, %d opening, %d default flow, %d main bank\n",
				fixture.Quiz.ID, len(fixture.Questions), len(fixture.Quiz.Opening),
				len(fixture.Quiz.DefaultFlow), len(fixture.Quiz.MainBank))
			return nil
		},
	}
	cmd.Flags().StringVarP(&file, "file", "f", "", "YAML fixture to check")
	return cmd
}

func loadFixture(file string) (*seed.Fixture, error) {
	data := defaultFixture
	if file != "" {
		var err error
		if data, err = os.ReadFile(file); err != nil {
			return nil, fmt.Errorf("read fixture: %w", err)
		}
	}
	return seed.Parse(data)
}

func apply(parent context.Context, fixture *seed.Fixture) error {
	cfg := config.Load()
	logger, err := logging.New(cfg.LogLevel)
	if err != nil {
		return fmt.Errorf("build logger: %w", err)
	}
	defer logger.Sync()

	ctx, cancel := context.WithTimeout(parent, 30*time.Second)
	defer cancel()

	client, err := mongo.Connect(ctx, options.Client().ApplyURI(cfg.MongoURI))
	if err != nil {
		return fmt.Errorf("connect to MongoDB: %w", err)
	}
	defer client.Disconnect(context.Background())

	db := client.Database(cfg.MongoDatabase)
	if err := repository.EnsureQuestionIndexes(ctx, db); err != nil {
		return err
	}
	sum, err := seed.Apply(ctx, fixture, repository.NewQuizRepo(db), repository.NewQuestionRepo(db))
	if err != nil {
		return fmt.Errorf("seed: %w", err)
	}

	logger.Info("Seeded quiz",
		zap.String("quizId", fixture.Quiz.ID),
		zap.Int("questionsCreated", sum.Created),
		zap.Int("questionsUpdated", sum.Updated))
	return nil
}
