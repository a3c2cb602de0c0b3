package main

import (
	"bufio"
	"fmt"
	"os"
	"strings"

	"github.com/spf13/cobra"

	"github.com/jordan/career-advisor/internal/advisor"
	"github.com/jordan/career-advisor/internal/config"
	"github.com/jordan/career-advisor/internal/store"
)

var (
	adviseFlow string
	adviseNoDB bool
)

var adviseCmd = &cobra.Command{
	Use:   "advise",
	Short: "Run an interactive advisory session in the terminal",
	Long: `Drive a career-transition or learning-path conversation from the terminal.
Type "exit" to end the session; a finished session is saved for later.`,
	RunE: runAdvise,
}

func init() {
	adviseCmd.Flags().StringVar(&adviseFlow, "flow", "career", `Conversation flow: "career" or "learning"`)
	adviseCmd.Flags().BoolVar(&adviseNoDB, "no-db", false, "Run without a database (nothing is persisted across runs)")
	rootCmd.AddCommand(adviseCmd)
}

func runAdvise(cmd *cobra.Command, _ []string) error {
	ctx := cmd.Context()

	var (
		cfg *config.Config
		st  store.Store
		err error
	)
	if adviseNoDB {
		cfg, err = offlineConfig()
		if err != nil {
			return err
		}
		st = store.NewMemory()
	} else {
		cfg, err = config.Load()
		if err != nil {
			return err
		}
	}

	a, err := buildApp(ctx, cfg, st)
	if err != nil {
		return fmt.Errorf("failed to wire service: %w", err)
	}
	defer a.close()

	var turn func(input string) string
	var save func() error
	switch adviseFlow {
	case "career":
		sess := advisor.NewTransitionSession()
		fmt.Println(sess.Greeting())
		turn = func(input string) string { return a.orch.TransitionTurn(ctx, sess, input) }
		save = func() error { return a.orch.SaveSnapshot(ctx, sess) }
	case "learning":
		sess := advisor.NewLearningSession()
		fmt.Println(sess.Greeting())
		turn = func(input string) string { return a.orch.LearningTurn(ctx, sess, input) }
		save = func() error { return a.orch.SaveSnapshot(ctx, sess) }
	default:
		return fmt.Errorf("unknown flow %q (use \"career\" or \"learning\")", adviseFlow)
	}

	scanner := bufio.NewScanner(os.Stdin)
	scanner.Buffer(make([]byte, 0, 64*1024), 1024*1024) // pasted resumes are long
	for {
		fmt.Print("> ")
		if !scanner.Scan() {
			break
		}
		input := strings.TrimSpace(scanner.Text())
		if input == "exit" || input == "quit" {
			break
		}
		fmt.Println(turn(input))
	}

	if err := save(); err != nil {
		fmt.Fprintf(os.Stderr, "Warning: could not save session: %v\n", err)
	}
	fmt.Println("Goodbye! Your finished session is saved; come back anytime.")
	return scanner.Err()
}

// offlineConfig builds a configuration for database-less sessions.
// GEMINI_API_KEY is still required.
func offlineConfig() (*config.Config, error) {
	cfg := &config.Config{
		Port:        config.DefaultPort,
		DatabaseURL: "unused",
		Pool: config.PoolConfig{
			MaxConnections: config.DefaultPoolMaxConnections,
			AcquireTimeout: config.DefaultPoolAcquireTimeout,
			ConnectionTTL:  config.DefaultPoolConnectionTTL,
		},
		LLM: config.LLMConfig{
			APIKey:             os.Getenv("GEMINI_API_KEY"),
			Models:             config.DefaultModels,
			MaxRetriesPerModel: config.DefaultMaxRetriesPerModel,
		},
		Search: config.SearchConfig{
			Endpoint:     os.Getenv("SEARCH_ENDPOINT"),
			APIKey:       os.Getenv("SEARCH_API_KEY"),
			DefaultLimit: config.DefaultSearchLimit,
		},
		HistoryMaxRecent: config.DefaultHistoryMaxRecent,
		LogLevel:         os.Getenv("LOG_LEVEL"),
		LogFormat:        os.Getenv("LOG_FORMAT"),
	}
	if cfg.LLM.APIKey == "" {
		return nil, fmt.Errorf("config error: GEMINI_API_KEY is required")
	}
	return cfg, nil
}
