package main

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"log/slog"
	"net/http"
	"os"
	"os/signal"
	"strings"
	"syscall"
	"time"

	"pocketclinic/internal/config"
	"pocketclinic/internal/core"
	httpserver "pocketclinic/internal/http"
	"pocketclinic/internal/llm"
	"pocketclinic/internal/sms"

	"github.com/spf13/cobra"
)

var (
	version    = "0.1.0"
	configPath string
)

func main() {
	root := &cobra.Command{
		Use:           "pocketclinic",
		Short:         "PocketClinic: symptom triage and SMS referral service",
		SilenceUsage:  true,
		SilenceErrors: true,
	}
	root.PersistentFlags().StringVarP(&configPath, "config", "c", "", "path to a YAML config file (environment variables override it)")

	root.AddCommand(serveCmd())
	root.AddCommand(triageCmd())
	root.AddCommand(initCmd())

	if err := root.ExecuteContext(context.Background()); err != nil {
		fmt.Fprintln(os.Stderr, "error:", err)
		os.Exit(1)
	}
}

// setup loads configuration and builds the pipeline.  Collaborator clients
// are constructed once here and shared by every request.
func setup() (config.Config, *slog.Logger, *core.Pipeline, error) {
	cfg, err := config.Load(configPath)
	if err != nil {
		return cfg, nil, nil, err
	}
	level, _ := cfg.SlogLevel()
	logger := slog.New(slog.NewTextHandler(os.Stderr, &slog.HandlerOptions{Level: level}))

	var sender core.Sender
	if cfg.HasSMSCredentials() {
		tw, err := sms.NewTwilioSender(cfg.Twilio.AccountSID, cfg.Twilio.AuthToken, cfg.Twilio.From)
		if err != nil {
			return cfg, nil, nil, err
		}
		sender = tw
		logger.Info("twilio dispatch enabled", "from", cfg.Twilio.From)
	} else {
		logger.Warn("twilio credentials not set, dispatch will be simulated")
	}

	pipeline := core.NewPipeline(
		core.NewReferralComposer(cfg.Referral.TeleconsultURL),
		core.NewDispatchGateway(sender, logger),
		logger,
	)
	if cfg.HasLLM() {
		client := llm.NewOpenAIClient(llm.Options{
			APIKey:          cfg.OpenAI.APIKey,
			BaseURL:         cfg.OpenAI.BaseURL,
			ChatModel:       cfg.OpenAI.ChatModel,
			TranscribeModel: cfg.OpenAI.TranscribeModel,
		})
		pipeline.Transcriber = client
		if cfg.Analysis.UseLLM {
			pipeline.Analyzer = core.NewAnalyzer(client)
		}
		if cfg.Referral.LLMPhrasing {
			pipeline.Phraser = core.NewPhraser(client)
		}
	} else {
		logger.Warn("OPENAI_API_KEY not set, using keyword extraction only and no audio support")
	}
	return cfg, logger, pipeline, nil
}

func serveCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "serve",
		Short: "Run the HTTP API",
		RunE: func(cmd *cobra.Command, args []string) error {
			cfg, logger, pipeline, err := setup()
			if err != nil {
				return err
			}
			s := &http.Server{
				Addr:              cfg.Server.Addr,
				Handler:           httpserver.NewServer(pipeline, logger, version),
				ReadHeaderTimeout: 5 * time.Second,
			}

			ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
			defer stop()
			errCh := make(chan error, 1)
			go func() {
				logger.Info("listening", "addr", cfg.Server.Addr)
				if err := s.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
					errCh <- err
				}
				close(errCh)
			}()

			select {
			case err := <-errCh:
				return err
			case <-ctx.Done():
			}
			logger.Info("shutting down")
			shutdownCtx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
			defer cancel()
			return s.Shutdown(shutdownCtx)
		},
	}
}

func triageCmd() *cobra.Command {
	var (
		text     string
		phone    string
		symptoms []string
		audio    string
	)
	cmd := &cobra.Command{
		Use:   "triage",
		Short: "Run one report through the pipeline and print the result as JSON",
		RunE: func(cmd *cobra.Command, args []string) error {
			_, _, pipeline, err := setup()
			if err != nil {
				return err
			}
			req := core.Request{PhoneNumber: phone, Text: text, Symptoms: symptoms}
			if text == "" && len(args) > 0 {
				req.Text = strings.Join(args, " ")
			}
			if audio != "" {
				data, err := os.ReadFile(audio)
				if err != nil {
					return err
				}
				req.Audio = &core.Audio{Filename: audio, Data: data}
			}
			report, err := pipeline.Process(cmd.Context(), req)
			if err != nil {
				return err
			}
			enc := json.NewEncoder(cmd.OutOrStdout())
			enc.SetIndent("", "  ")
			return enc.Encode(report)
		},
	}
	cmd.Flags().StringVarP(&text, "text", "t", "", "symptom description")
	cmd.Flags().StringVarP(&phone, "phone", "p", "", "destination phone number in E.164 format")
	cmd.Flags().StringSliceVarP(&symptoms, "symptom", "s", nil, "symptom token (repeatable)")
	cmd.Flags().StringVarP(&audio, "audio", "a", "", "path to a voice note")
	return cmd
}

func initCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "init [path]",
		Short: "Write a config file with default values",
		Args:  cobra.MaximumNArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			path := "pocketclinic.yaml"
			if len(args) == 1 {
				path = args[0]
			}
			if _, err := os.Stat(path); err == nil {
				return fmt.Errorf("%s already exists", path)
			}
			if err := config.Save(path, config.Defaults()); err != nil {
				return err
			}
			fmt.Fprintln(cmd.OutOrStdout(), "wrote", path)
			return nil
		},
	}
}
