package main

import (
	"context"
	"errors"
	"fmt"
	"io"
	"os"

	"github.com/spf13/cobra"

	"ChatGPT/internal/backend"
	"ChatGPT/internal/chatbot"
	"ChatGPT/internal/config"
	"ChatGPT/internal/telemetry"
	"ChatGPT/internal/terminal"
)

// app carries the process streams and the few knobs tests replace
type app struct {
	stdin  io.Reader
	stdout io.Writer
	stderr io.Writer

	configDir func() (string, error)
	endpoint  string
	indicator chatbot.Indicator
	term      *terminal.Terminal

	setAPIKey    bool
	deleteConfig bool
}

func newApp(stdin io.Reader, stdout, stderr io.Writer) *app {
	a := &app{
		stdin:     stdin,
		stdout:    stdout,
		stderr:    stderr,
		configDir: config.DefaultDir,
		indicator: chatbot.Immediate{},
	}
	if f, ok := stderr.(*os.File); ok {
		a.indicator = terminal.NewIndicator(f)
	}
	a.term = terminal.New(stdin, stdout)
	return a
}

func (a *app) rootCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:           "chatgpt [prompt]",
		Short:         "Chat with an OpenAI model from the terminal",
		Long:          "chatgpt sends the running conversation to the OpenAI chat completions API and prints each reply.",
		Args:          cobra.MaximumNArgs(1),
		Version:       version,
		SilenceUsage:  true,
		SilenceErrors: true,
		RunE: func(cmd *cobra.Command, args []string) error {
			var prompt string
			if len(args) == 1 {
				prompt = args[0]
			}
			return a.run(cmd.Context(), prompt)
		},
	}
	cmd.SetVersionTemplate(fmt.Sprintf("chatgpt %s (commit: %s)\n", version, commit))
	cmd.SetIn(a.stdin)
	cmd.SetOut(a.stdout)
	cmd.SetErr(a.stderr)

	cmd.Flags().BoolVarP(&a.setAPIKey, "set-openai-api-key", "s", false, "Set new openai api key")
	cmd.Flags().BoolVarP(&a.deleteConfig, "delete-config", "d", false, "Delete config file")
	return cmd
}

func (a *app) run(ctx context.Context, prompt string) error {
	dir, err := a.configDir()
	if err != nil {
		return err
	}
	cfg, err := config.New(dir)
	if err != nil {
		return err
	}

	if a.setAPIKey {
		return a.askForAPIKey(cfg)
	}

	if a.deleteConfig {
		if err := cfg.Delete(); err != nil {
			return err
		}
		a.term.Info("deleted config %q", cfg.Path)
		return nil
	}

	if err := cfg.Load(); err != nil {
		return err
	}

	logger, logFile, err := telemetry.InitLogger(cfg.LogDir)
	if err != nil {
		return fmt.Errorf("failed to initialize logger: %w", err)
	}
	defer logFile.Close()

	tracer, meter, shutdown, err := telemetry.InitTelemetry(ctx, cfg.LogDir, version)
	if err != nil {
		return fmt.Errorf("failed to initialize telemetry: %w", err)
	}
	defer shutdown()

	if !cfg.HasAPIKey() {
		if err := a.askForAPIKey(cfg); err != nil {
			return err
		}
	}

	client := backend.NewClient(cfg.OpenAIAPIKey, logger, tracer, meter)
	if a.endpoint != "" {
		client.Endpoint = a.endpoint
	}

	bot := chatbot.NewChatBot(client, a.term, a.indicator, terminal.Renderer{}, a.stdout, logger)
	err = bot.Run(ctx, prompt)
	if errors.Is(err, io.EOF) {
		logger.Info("input closed, ending session", "messages", bot.Session().Len())
		return nil
	}
	return err
}

func (a *app) askForAPIKey(cfg *config.Config) error {
	key, err := a.term.ReadSecret("enter your openai api key", config.ValidateAPIKey)
	if err != nil {
		return err
	}
	if err := cfg.SaveAPIKey(key); err != nil {
		return err
	}
	a.term.Info("stored openai api key in %q", cfg.Path)
	return nil
}
