package main

import (
	"context"
	"encoding/json"
	"fmt"
	"log/slog"
	"net/http"
	"os"
	"strings"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/go-chi/chi/v5/middleware"
	"github.com/spf13/cobra"
	"github.com/spf13/viper"

	"github.com/pavelanni/grader/internal/handler"
	"github.com/pavelanni/grader/internal/llm"
	"github.com/pavelanni/grader/internal/service"
	"github.com/pavelanni/grader/internal/store"
)

func main() {
	if err := rootCmd().Execute(); err != nil {
		os.Exit(1)
	}
}

func rootCmd() *cobra.Command {
	root := &cobra.Command{
		Use:   "grader",
		Short: "LLM-assisted assignment grader",
		Long: "Grader extracts question/answer items from answer keys and student\n" +
			"submissions with an LLM, grades each submission against the key, and\n" +
			"writes a spreadsheet report.",
	}

	pf := root.PersistentFlags()
	pf.String("db", "grader.db", "SQLite database path")
	pf.String("llm-url", "http://localhost:11434/v1", "OpenAI-compatible API base URL")
	pf.String("llm-key", "ollama", "API key for LLM")
	pf.String("llm-model", "llama3.2", "LLM model name")
	pf.String("report-dir", ".", "Directory for grading reports")
	pf.Duration("batch-delay", 1500*time.Millisecond, "Pause between batch files")
	pf.String("log-level", "info", "Log level (debug, info, warn, error)")
	pf.String("log-format", "text", "Log format (text, json)")

	root.AddCommand(
		serveCmd(),
		templateCmd(),
		submissionCmd(),
		batchCmd(),
		gradeCmd(),
	)
	return root
}

func serveCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "serve",
		Short: "Start the HTTP grading API",
		RunE:  runServe,
	}
	cmd.Flags().StringP("addr", "a", ":8080", "HTTP listen address")
	return cmd
}

func templateCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "template",
		Short: "Manage answer key templates",
	}
	cmd.AddCommand(
		&cobra.Command{
			Use:   "save FILE",
			Short: "Save an answer key file as a template",
			Args:  cobra.ExactArgs(1),
			RunE: func(cmd *cobra.Command, args []string) error {
				return withService(cmd, func(ctx context.Context, svc *service.Service) (any, error) {
					id, err := svc.SaveTemplate(ctx, args[0])
					if err != nil {
						return nil, err
					}
					return map[string]string{"template_id": id}, nil
				})
			},
		},
		&cobra.Command{
			Use:   "analyze TEMPLATE_ID",
			Short: "Extract the answer key structure of a saved template",
			Args:  cobra.ExactArgs(1),
			RunE: func(cmd *cobra.Command, args []string) error {
				return withService(cmd, func(ctx context.Context, svc *service.Service) (any, error) {
					return svc.AnalyzeTemplate(ctx, args[0])
				})
			},
		},
	)
	return cmd
}

func submissionCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "submission",
		Short: "Manage student submissions",
	}
	cmd.AddCommand(
		&cobra.Command{
			Use:   "upload TEMPLATE_ID FILE",
			Short: "Upload a student file against a template",
			Args:  cobra.ExactArgs(2),
			RunE: func(cmd *cobra.Command, args []string) error {
				return withService(cmd, func(ctx context.Context, svc *service.Service) (any, error) {
					id, err := svc.UploadSubmission(ctx, args[0], args[1])
					if err != nil {
						return nil, err
					}
					return map[string]string{"submission_id": id}, nil
				})
			},
		},
		&cobra.Command{
			Use:   "extract SUBMISSION_ID",
			Short: "Extract the answers of an uploaded submission",
			Args:  cobra.ExactArgs(1),
			RunE: func(cmd *cobra.Command, args []string) error {
				return withService(cmd, func(ctx context.Context, svc *service.Service) (any, error) {
					return svc.ExtractSubmission(ctx, args[0])
				})
			},
		},
		&cobra.Command{
			Use:   "list",
			Short: "List all stored submissions",
			Args:  cobra.NoArgs,
			RunE: func(cmd *cobra.Command, args []string) error {
				return withService(cmd, func(ctx context.Context, svc *service.Service) (any, error) {
					summaries, counts, err := svc.ListSubmissions(ctx)
					if err != nil {
						return nil, err
					}
					return map[string]any{"summary": counts, "submissions": summaries}, nil
				})
			},
		},
	)
	return cmd
}

func batchCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "batch TEMPLATE_ID FOLDER",
		Short: "Upload and extract every assignment file in a folder",
		Args:  cobra.ExactArgs(2),
		RunE: func(cmd *cobra.Command, args []string) error {
			return withService(cmd, func(ctx context.Context, svc *service.Service) (any, error) {
				return svc.BatchProcess(ctx, args[0], args[1])
			})
		},
	}
}

func gradeCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "grade TEMPLATE_ID",
		Short: "Grade all extracted submissions and write the report",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			return withService(cmd, func(ctx context.Context, svc *service.Service) (any, error) {
				path, err := svc.GradeAll(ctx, args[0])
				if err != nil {
					return nil, err
				}
				return map[string]string{"report_path": path}, nil
			})
		},
	}
}

func setupLogging(v *viper.Viper) {
	var logLevel slog.Level
	switch strings.ToLower(v.GetString("log-level")) {
	case "debug":
		logLevel = slog.LevelDebug
	case "warn":
		logLevel = slog.LevelWarn
	case "error":
		logLevel = slog.LevelError
	default:
		logLevel = slog.LevelInfo
	}
	handlerOpts := &slog.HandlerOptions{Level: logLevel}
	var logHandler slog.Handler
	switch strings.ToLower(v.GetString("log-format")) {
	case "json":
		logHandler = slog.NewJSONHandler(os.Stderr, handlerOpts)
	default:
		logHandler = slog.NewTextHandler(os.Stderr, handlerOpts)
	}
	slog.SetDefault(slog.New(logHandler))
}

// viperForCmd binds a command's flags and environment to a fresh viper instance.
func viperForCmd(cmd *cobra.Command) *viper.Viper {
	v := viper.New()
	_ = v.BindPFlags(cmd.Flags())

	v.SetEnvPrefix("GRADER")
	v.SetEnvKeyReplacer(strings.NewReplacer("-", "_"))
	v.AutomaticEnv()

	v.SetConfigName("grader")
	v.AddConfigPath(".")
	v.AddConfigPath("$HOME/.config/grader")
	v.AddConfigPath("/etc/grader")
	if err := v.ReadInConfig(); err != nil {
		if _, ok := err.(viper.ConfigFileNotFoundError); !ok {
			slog.Warn("error reading config file", "error", err)
		}
	} else {
		slog.Info("loaded config file", "path", v.ConfigFileUsed())
	}

	return v
}

// newService builds the store, LLM client, and service from flags.
// The caller closes the returned store.
func newService(v *viper.Viper) (*service.Service, *store.Store, *llm.Client, error) {
	db, err := store.New(v.GetString("db"))
	if err != nil {
		return nil, nil, nil, fmt.Errorf("open database: %w", err)
	}

	llmClient := llm.New(
		v.GetString("llm-url"),
		v.GetString("llm-key"),
		v.GetString("llm-model"),
	)

	svc := service.New(db, llmClient, service.Config{
		ReportDir:  v.GetString("report-dir"),
		BatchDelay: v.GetDuration("batch-delay"),
	})
	return svc, db, llmClient, nil
}

// withService runs one CLI operation and prints its result as JSON.
func withService(cmd *cobra.Command, fn func(context.Context, *service.Service) (any, error)) error {
	v := viperForCmd(cmd)
	setupLogging(v)

	svc, db, _, err := newService(v)
	if err != nil {
		return err
	}
	defer db.Close()

	result, err := fn(cmd.Context(), svc)
	if err != nil {
		return err
	}

	data, err := json.MarshalIndent(result, "", "  ")
	if err != nil {
		return fmt.Errorf("marshal result: %w", err)
	}
	fmt.Println(string(data))
	return nil
}

func runServe(cmd *cobra.Command, _ []string) error {
	v := viperForCmd(cmd)
	setupLogging(v)

	svc, db, llmClient, err := newService(v)
	if err != nil {
		return err
	}
	defer db.Close()

	// Verify the extraction endpoint before accepting work.
	if err := llmClient.Ping(cmd.Context()); err != nil {
		slog.Warn("LLM endpoint unreachable, extraction operations will fail until it recovers",
			"url", v.GetString("llm-url"), "error", err)
	} else {
		slog.Info("LLM endpoint OK", "url", v.GetString("llm-url"), "model", v.GetString("llm-model"))
	}

	h := handler.New(svc)

	r := chi.NewRouter()
	r.Use(middleware.Logger)
	r.Use(middleware.Recoverer)
	h.Routes(r)

	addr := v.GetString("addr")
	slog.Info("starting server",
		"addr", addr,
		"db", v.GetString("db"),
		"model", v.GetString("llm-model"),
		"llm_url", v.GetString("llm-url"),
		"report_dir", v.GetString("report-dir"),
	)
	return http.ListenAndServe(addr, r)
}
