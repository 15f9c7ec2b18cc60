package main

import (
	"context"
	"errors"
	"fmt"
	"os"

	"dynipupdater/constant"
	"dynipupdater/internal/app"
	"dynipupdater/internal/firewall"
	"dynipupdater/internal/logbuffer"
	"dynipupdater/internal/publicip"
	"dynipupdater/models"
	dynipupdaterAPI "dynipupdater/pkg/dynipupdater-api"

	"github.com/rs/zerolog"
	"github.com/rs/zerolog/log"
	"github.com/spf13/cobra"
)

var (
	configPath string
	logLevel   string
)

// exitCode lets a command finish without an error message but with a
// non-zero status, used when some rules failed.
type exitCode int

func (e exitCode) Error() string {
	return fmt.Sprintf("exit status %d", int(e))
}

func main() {
	logs := logbuffer.New(500)
	log.Logger = log.Output(zerolog.MultiLevelWriter(zerolog.ConsoleWriter{Out: os.Stderr}, logs))

	rootCmd := &cobra.Command{
		Use:           "dynipupdater",
		Short:         "Open AWS security group ports for this machine's public IP while running",
		SilenceUsage:  true,
		SilenceErrors: true,
		RunE: func(cmd *cobra.Command, args []string) error {
			return runService(cmd, logs)
		},
	}
	rootCmd.PersistentFlags().StringVarP(&configPath, "config", "c", "", "config file (default "+app.DefaultConfigPath+")")
	rootCmd.PersistentFlags().StringVar(&logLevel, "log-level", "", "log level: trace, debug, info, warn, error")
	rootCmd.AddCommand(runCmd(logs), openCmd(), closeCmd(), statusCmd(), ipCmd(), serveIPCmd(), versionCmd())

	if err := rootCmd.Execute(); err != nil {
		var code exitCode
		if errors.As(err, &code) {
			os.Exit(int(code))
		}
		log.Error().Err(err).Msg("failed")
		os.Exit(1)
	}
}

func runCmd(logs *logbuffer.Buffer) *cobra.Command {
	cmd := &cobra.Command{
		Use:   "run",
		Short: "Open the ports, wait for a signal or an API close request, then close them",
		RunE: func(cmd *cobra.Command, args []string) error {
			return runService(cmd, logs)
		},
	}
	cmd.Flags().StringVar(&pidFilePath, "pid-file", pidFileLocation, "PID file guarding against a second instance")
	return cmd
}

func openCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "open",
		Short: "Open the ports and leave them open",
		RunE: func(cmd *cobra.Command, args []string) error {
			core, _, err := prepare(cmd.Context(), true)
			if err != nil {
				return err
			}
			results, err := core.Open(cmd.Context())
			if err != nil {
				return err
			}
			printOpen(cmd.OutOrStdout(), core, results)
			return failedExit(results)
		},
	}
}

func closeCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "close",
		Short: "Close the ports, through the running instance if there is one",
		RunE: func(cmd *cobra.Command, args []string) error {
			cfg, err := loadConfig()
			if err != nil {
				return err
			}
			if cfg.App.HTTPAPI.Enabled {
				results, err := remoteClose(cmd.Context(), cfg.App.HTTPAPI)
				if err == nil {
					printClose(cmd.OutOrStdout(), results)
					return failedExit(results)
				}
				if !errors.Is(err, dynipupdaterAPI.ErrUnreachable) {
					return err
				}
				log.Debug().Err(err).Msg("no running instance, closing directly")
			}
			core, err := build(cmd.Context(), cfg, true)
			if err != nil {
				return err
			}
			results, err := core.Close(cmd.Context())
			if err != nil {
				return err
			}
			printClose(cmd.OutOrStdout(), results)
			return failedExit(results)
		},
	}
}

func ipCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "ip",
		Short: "Print the public IP reported by the configured IPServer",
		RunE: func(cmd *cobra.Command, args []string) error {
			core, _, err := prepare(cmd.Context(), false)
			if err != nil {
				return err
			}
			ip, err := core.ResolvePublicIP(cmd.Context())
			if err != nil {
				return err
			}
			fmt.Fprintln(cmd.OutOrStdout(), ip)
			return nil
		},
	}
}

func versionCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "version",
		Short: "Print version information",
		Run: func(cmd *cobra.Command, args []string) {
			fmt.Fprintf(cmd.OutOrStdout(), "dynipupdater %s (%s)\n", constant.Version, constant.Commit)
		},
	}
}

// prepare loads the configuration and builds the app. withAPI=false skips
// the EC2 client for commands that never touch security groups.
func prepare(ctx context.Context, withAPI bool) (*app.App, models.Config, error) {
	cfg, err := loadConfig()
	if err != nil {
		return nil, cfg, err
	}
	core, err := build(ctx, cfg, withAPI)
	return core, cfg, err
}

func loadConfig() (models.Config, error) {
	cfg, err := app.LoadConfig(configPath, nil)
	if err != nil {
		return cfg, err
	}
	if logLevel != "" {
		cfg.App.LogLevel = logLevel
	}
	app.SetupLogging(cfg.App.LogLevel)
	return cfg, nil
}

func build(ctx context.Context, cfg models.Config, withAPI bool) (*app.App, error) {
	if ctx == nil {
		ctx = context.Background()
	}
	var api firewall.IngressAPI
	if withAPI {
		client, err := firewall.NewEC2(ctx, cfg.App.AWS.Region, cfg.App.AWS.Profile)
		if err != nil {
			return nil, err
		}
		api = client
	}
	return app.New(cfg, publicip.New(), api), nil
}

func failedExit(results []models.RuleChangeResult) error {
	if models.AnyFailed(results) {
		return exitCode(2)
	}
	return nil
}
