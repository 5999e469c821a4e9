package main // Entry point package

import (
    "os"

    "github.com/rs/zerolog"
    "github.com/spf13/cobra"

    "github.com/iliyamo/lab-seat-scheduler/internal/config"
)

func main() {
    if err := rootCmd().Execute(); err != nil {
        os.Exit(1)
    }
}

func rootCmd() *cobra.Command {
    var envFile string
    root := &cobra.Command{
        Use:           "labseat",
        Short:         "Lab seat arrangement and scheduling service",
        SilenceUsage:  true,
        SilenceErrors: false,
        PersistentPreRunE: func(cmd *cobra.Command, _ []string) error {
            return config.LoadDotEnv(envFile)
        },
    }
    root.PersistentFlags().StringVar(&envFile, "env-file", ".env", "dotenv file to load before reading the environment")
    root.AddCommand(serveCmd(), migrateCmd(), seedCmd(), tokenCmd())
    return root
}

// newLogger writes human-readable output in development and JSON elsewhere.
func newLogger(cfg config.Config) zerolog.Logger {
    zerolog.TimeFieldFormat = zerolog.TimeFormatUnixMs
    if cfg.IsDev() {
        return zerolog.New(zerolog.ConsoleWriter{Out: os.Stdout, TimeFormat: "15:04:05"}).
            Level(zerolog.DebugLevel).With().Timestamp().Logger()
    }
    return zerolog.New(os.Stdout).Level(zerolog.InfoLevel).With().Timestamp().Logger()
}
