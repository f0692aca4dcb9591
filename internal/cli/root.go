package cli

import (
	"context"
	"errors"
	"os"
	"strings"

	"github.com/ZanzyTHEbar/errbuilder-go"
	"github.com/mattn/go-isatty"
	"github.com/rs/zerolog"
	"github.com/rs/zerolog/log"
	"github.com/spf13/cobra"
	"github.com/spf13/viper"

	"mdmctl/internal/app"
)

// version is set at build time via ldflags.
var version = "dev"

const envPrefix = "MDMCTL"

type RootConfig struct {
	ConfigFile   string
	LogLevel     string
	ServerURL    string
	Username     string
	Password     string
	Backend      string
	RecordsDir   string
	TimeoutSec   int
	Retries      int
	RetryDelayMs int
	RateLimit    float64
}

// newAppService builds the service for one command invocation from the
// resolved connection settings.
var newAppService = func(cmd *cobra.Command) (app.Service, error) {
	return app.NewService(app.ServiceConfig{
		Backend:      viper.GetString("backend"),
		ServerURL:    viper.GetString("server_url"),
		Username:     viper.GetString("username"),
		Password:     viper.GetString("password"),
		RecordsDir:   viper.GetString("records_dir"),
		TimeoutSec:   viper.GetInt("timeout_sec"),
		Retries:      viper.GetInt("retries"),
		RetryDelayMs: viper.GetInt("retry_delay_ms"),
		RateLimit:    viper.GetFloat64("rate_limit"),
		PromptIn:     cmd.InOrStdin(),
		PromptOut:    cmd.ErrOrStderr(),
	})
}

func Execute(ctx context.Context) int {
	root := newRootCommand()
	if err := root.ExecuteContext(ctx); err != nil {
		log.Error().Err(err).Msg(errorMessage(err))
		return exitCodeForError(err)
	}
	return 0
}

func newRootCommand() *cobra.Command {
	cfg := RootConfig{}
	cmd := &cobra.Command{
		Use:           "mdmctl",
		Short:         "Query, filter and edit device-management records",
		Version:       version,
		SilenceErrors: true,
		SilenceUsage:  true,
		PersistentPreRunE: func(cmd *cobra.Command, _ []string) error {
			if err := initConfig(cfg.ConfigFile); err != nil {
				return err
			}
			setupLogging(viper.GetString("log_level"))
			return nil
		},
	}
	flags := cmd.PersistentFlags()
	flags.StringVar(&cfg.ConfigFile, "config", "", "Config file path")
	flags.StringVar(&cfg.LogLevel, "log-level", "info", "Log level")
	flags.StringVar(&cfg.ServerURL, "server-url", "", "Device-management server URL")
	flags.StringVar(&cfg.Username, "username", "", "API username")
	flags.StringVar(&cfg.Password, "password", "", "API password")
	flags.StringVar(&cfg.Backend, "backend", "http", "Record store backend (http|file)")
	flags.StringVar(&cfg.RecordsDir, "records-dir", "", "Records directory for the file backend")
	flags.IntVar(&cfg.TimeoutSec, "timeout", 60, "HTTP timeout in seconds")
	flags.IntVar(&cfg.Retries, "retries", 3, "HTTP retries after the first attempt for idempotent requests (0 disables)")
	flags.IntVar(&cfg.RetryDelayMs, "retry-delay-ms", 200, "Base retry delay in milliseconds")
	flags.Float64Var(&cfg.RateLimit, "rate-limit", 0, "Maximum requests per second (0 disables)")
	_ = viper.BindPFlag("log_level", flags.Lookup("log-level"))
	_ = viper.BindPFlag("server_url", flags.Lookup("server-url"))
	_ = viper.BindPFlag("username", flags.Lookup("username"))
	_ = viper.BindPFlag("password", flags.Lookup("password"))
	_ = viper.BindPFlag("backend", flags.Lookup("backend"))
	_ = viper.BindPFlag("records_dir", flags.Lookup("records-dir"))
	_ = viper.BindPFlag("timeout_sec", flags.Lookup("timeout"))
	_ = viper.BindPFlag("retries", flags.Lookup("retries"))
	_ = viper.BindPFlag("retry_delay_ms", flags.Lookup("retry-delay-ms"))
	_ = viper.BindPFlag("rate_limit", flags.Lookup("rate-limit"))

	cmd.AddCommand(newListCommand())
	cmd.AddCommand(newInfoCommand())
	cmd.AddCommand(newNewCommand())
	cmd.AddCommand(newUpdateCommand())
	cmd.AddCommand(newDeleteCommand())
	cmd.AddCommand(newUploadCommand())
	cmd.AddCommand(newVersionsCommand())
	return cmd
}

func initConfig(configFile string) error {
	viper.SetEnvPrefix(envPrefix)
	viper.AutomaticEnv()

	if configFile != "" {
		viper.SetConfigFile(configFile)
		if err := viper.ReadInConfig(); err != nil {
			return errbuilder.New().
				WithCode(errbuilder.CodeInvalidArgument).
				WithMsg("failed to read config file").
				WithCause(err)
		}
		return nil
	}

	viper.SetConfigName("mdmctl")
	viper.SetConfigType("yaml")
	viper.AddConfigPath(".")
	viper.AddConfigPath("$HOME/.config/mdmctl")
	// A missing default config file is fine.
	_ = viper.ReadInConfig()
	return nil
}

// setupLogging sends logs to stderr so stdout only carries command output.
func setupLogging(level string) {
	writer := zerolog.ConsoleWriter{
		Out:     os.Stderr,
		NoColor: !isatty.IsTerminal(os.Stderr.Fd()),
	}
	log.Logger = log.Output(writer)
	switch level {
	case "debug":
		zerolog.SetGlobalLevel(zerolog.DebugLevel)
	case "warn":
		zerolog.SetGlobalLevel(zerolog.WarnLevel)
	case "error":
		zerolog.SetGlobalLevel(zerolog.ErrorLevel)
	default:
		zerolog.SetGlobalLevel(zerolog.InfoLevel)
	}
}

// exitCodeForError maps every failure, usage errors included, to 1.
func exitCodeForError(err error) int {
	if err == nil {
		return 0
	}
	return 1
}

func errorMessage(err error) string {
	var builder *errbuilder.ErrBuilder
	if errors.As(err, &builder) && strings.TrimSpace(builder.Msg) != "" {
		return builder.Msg
	}
	return err.Error()
}
