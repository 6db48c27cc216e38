package cmd

import (
	"fmt"
	"io"

	"github.com/sirupsen/logrus"
	"github.com/spf13/cobra"

	"github.com/abhisek/amcprep/internal/config"
	"github.com/abhisek/amcprep/internal/logging"
	"github.com/abhisek/amcprep/internal/store"
)

var rootCmd = &cobra.Command{
	Use:   "amcprep",
	Short: "Terminal practice for AMC math contests",
	Long: `amcprep serves AMC-style multiple-choice problems at your level, records
every attempt and can ask an AI tutor to explain a problem step by step.

Configuration is read from the environment and from a .env file:
  AMCPREP_DB              SQLite database path
  AMCPREP_PROBLEMS_DIR    problem bank (default ./problems)
  AMCPREP_REQUIRE_INVITE  require an invitation code to register (default true)
  AMCPREP_LOG_FILE        log file (default next to the database)
  AMCPREP_LOG_LEVEL       log level (default info)
  AMCPREP_LEVEL_WINDOW    recent attempts scored per level (default 5)
  AMCPREP_LEVEL_THRESHOLD correct answers a level must exceed (default 3)
  AMCPREP_LLM_PROVIDER    gemini, anthropic, openai or openrouter
  AMCPREP_LLM_TIMEOUT     limit for one AI request (default 90s)
  GEMINI_API_KEY, ANTHROPIC_API_KEY, OPENAI_API_KEY or OPENROUTER_API_KEY
                          enable AI explanations`,
	SilenceUsage: true,
	PersistentPreRunE: func(cmd *cobra.Command, args []string) error {
		path, _ := cmd.Flags().GetString("env-file")
		return config.Load(path, cmd.Flags().Changed("env-file"))
	},
	RunE: func(cmd *cobra.Command, args []string) error {
		return runApp(cmd)
	},
}

func Execute() error {
	return rootCmd.Execute()
}

func init() {
	rootCmd.PersistentFlags().String("db", "", "Path to SQLite database file (overrides AMCPREP_DB env var)")
	rootCmd.PersistentFlags().String("env-file", config.DefaultEnvFile, "Environment file to load")
	rootCmd.PersistentFlags().String("problems", "", "Problem bank directory (overrides AMCPREP_PROBLEMS_DIR env var)")

	rootCmd.AddCommand(userCmd)
	rootCmd.AddCommand(inviteCmd)
	rootCmd.AddCommand(progressCmd)
	rootCmd.AddCommand(explainCmd)
	rootCmd.AddCommand(latexCmd)
	rootCmd.AddCommand(problemsCmd)
	rootCmd.AddCommand(llmCmd)
	rootCmd.AddCommand(versionCmd)
}

// env is what a command gets after configuration, logging and the
// database are set up.
type env struct {
	cfg     config.App
	log     *logrus.Logger
	store   *store.Store
	closers []io.Closer
}

// setup resolves configuration from flags and the environment, starts
// logging and opens the database.
func setup(cmd *cobra.Command) (*env, error) {
	dbPath, _ := cmd.Flags().GetString("db")
	problemsDir, _ := cmd.Flags().GetString("problems")

	cfg, err := config.FromEnv(config.Overrides{DBPath: dbPath, ProblemsDir: problemsDir})
	if err != nil {
		return nil, fmt.Errorf("load configuration: %w", err)
	}

	log, logCloser, err := logging.Setup(cfg.Logging)
	if err != nil {
		return nil, fmt.Errorf("set up logging: %w", err)
	}

	st, err := store.Open(cfg.DBPath)
	if err != nil {
		logCloser.Close()
		return nil, fmt.Errorf("open store: %w", err)
	}

	log.WithFields(logrus.Fields{
		"command": cmd.CommandPath(),
		"db":      cfg.DBPath,
	}).Debug("starting")

	return &env{
		cfg:     cfg,
		log:     log,
		store:   st,
		closers: []io.Closer{st, logCloser},
	}, nil
}

// Close releases the database and the log file.
func (e *env) Close() {
	for _, c := range e.closers {
		c.Close()
	}
}
