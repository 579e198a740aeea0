package main

import (
	"log"

	redis "github.com/redis/go-redis/v9"
	"github.com/spf13/cobra"
	"go.uber.org/zap"

	"github.com/typetrace/typetrace/internal/astdiff"
	"github.com/typetrace/typetrace/internal/classify"
	"github.com/typetrace/typetrace/internal/data"
	"github.com/typetrace/typetrace/internal/queue"
	"github.com/typetrace/typetrace/internal/service"
	"github.com/typetrace/typetrace/pkg/config"
	"github.com/typetrace/typetrace/pkg/github"
	"github.com/typetrace/typetrace/pkg/gitrepo"
)

var rootCmd = &cobra.Command{
	Use:           "typetrace",
	Short:         "Monitors tracked repositories for type-annotation changes and runs the survey workflow",
	SilenceUsage:  true,
	SilenceErrors: true,
}

func init() {
	rootCmd.AddCommand(serveCmd, workerCmd, trackCmd, vacuumCmd, statsCmd)
}

// app bundles everything a subcommand may need.
type app struct {
	cfg       config.Config
	log       *zap.SugaredLogger
	stores    service.Stores
	queue     *queue.Queue
	intake    *service.Intake
	evaluator *service.Evaluator
	processor *service.CommentProcessor
	notifier  *service.Notifier
}

func buildApp() *app {
	cfg := config.Load()

	logger, err := zap.NewProduction()
	if err != nil {
		log.Fatalf("Failed to initialize logger: %v", err)
	}
	sugar := logger.Sugar()

	// Initialize the database
	db := data.InitDB()
	stores := service.Stores{
		Projects:    data.NewGormProjectStore(db),
		Commits:     data.NewGormCommitStore(db),
		Committers:  data.NewGormCommitterStore(db),
		Memberships: data.NewGormMembershipStore(db),
		Responses:   data.NewGormResponseStore(db),
	}

	redisClient := redis.NewClient(&redis.Options{Addr: cfg.RedisAddr, DB: cfg.RedisDB})
	jobQueue := queue.New(redisClient, sugar, queue.Options{
		MaxAttempts: cfg.MaxAttempts,
		BaseDelay:   cfg.RetryBaseWait,
		MaxDelay:    cfg.RetryMaxWait,
	})

	gh := github.NewGitHubClient(cfg.GitHubToken)
	repos := gitrepo.NewManager(cfg.DataDir)
	extractor := astdiff.NewExtractor(cfg.DiffTool, sugar)
	classifier := classify.NewClassifier()

	notifier := service.NewNotifier(stores, gh, cfg.BotName, cfg.ContactCooldown, sugar)
	evaluator := service.NewEvaluator(stores, repos, gh, extractor, classifier, notifier, jobQueue, sugar)
	processor := service.NewCommentProcessor(stores, gh, jobQueue, cfg.BotName, sugar)
	intake := service.NewIntake(stores, gh, repos, jobQueue, sugar)

	return &app{
		cfg:       cfg,
		log:       sugar,
		stores:    stores,
		queue:     jobQueue,
		intake:    intake,
		evaluator: evaluator,
		processor: processor,
		notifier:  notifier,
	}
}
