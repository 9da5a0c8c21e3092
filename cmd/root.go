package cmd

import (
	"context"
	"errors"
	"fmt"
	"io"
	"log/slog"
	"os"
	"os/signal"
	"syscall"

	"registro/config"
	"registro/ctxlog"

	"github.com/spf13/cobra"
	"github.com/spf13/viper"
)

var (
	cfgFile string
	cfg     config.Config
)

// errRejected marks a submission the server answered with an error body.
// The message has already been shown, so Execute does not print it again.
var errRejected = errors.New("registration rejected")

var rootCmd = &cobra.Command{
	Use:   "registro",
	Short: "Submit client registrations to the quotation service",
	Long: `registro sends the client registration form to the quotation service
API as JSON and reports whether the registration was accepted.

Use "registro submit" for a single scripted submission or
"registro interactive" to fill the form in the terminal.`,
	SilenceUsage:      true,
	SilenceErrors:     true,
	PersistentPreRunE: initConfig,
}

// Execute adds all child commands to the root command and sets flags appropriately.
// This is called by main.main(). It only needs to happen once to the rootCmd.
func Execute() {
	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	err := rootCmd.ExecuteContext(ctx)
	stop()
	if err != nil {
		if !errors.Is(err, errRejected) {
			fmt.Fprintln(os.Stderr, "Error:", err)
		}
		os.Exit(1)
	}
}

func init() {
	rootCmd.PersistentFlags().StringVarP(&cfgFile, "config", "c", "", "config file (default: ./registro.yaml)")
	rootCmd.PersistentFlags().String("endpoint", "", "registration endpoint URL")
	rootCmd.PersistentFlags().Bool("debug", false, "enable debug logging")
	rootCmd.PersistentFlags().String("log-level", "", "log level: debug, info, warn or error")
	rootCmd.PersistentFlags().String("log-file", "", "write logs to this file")

	_ = viper.BindPFlag("endpoint", rootCmd.PersistentFlags().Lookup("endpoint"))
	_ = viper.BindPFlag("debug", rootCmd.PersistentFlags().Lookup("debug"))
	_ = viper.BindPFlag("log_level", rootCmd.PersistentFlags().Lookup("log-level"))
	_ = viper.BindPFlag("log_file", rootCmd.PersistentFlags().Lookup("log-file"))

	rootCmd.AddCommand(submitCmd, interactiveCmd)
}

func initConfig(cmd *cobra.Command, args []string) error {
	if err := config.LoadDotEnv(".env"); err != nil {
		return err
	}
	loaded, err := config.Load(viper.GetViper(), cfgFile)
	if err != nil {
		return err
	}
	cfg = loaded
	return nil
}

// newLogger returns a logger writing to w, or to the configured log file
// when one is set. The returned cleanup closes that file.
func newLogger(w io.Writer) (*slog.Logger, func(), error) {
	cleanup := func() {}
	if cfg.LogFile != "" {
		f, err := os.OpenFile(cfg.LogFile, os.O_APPEND|os.O_CREATE|os.O_WRONLY, 0o644)
		if err != nil {
			return nil, nil, fmt.Errorf("opening log file: %w", err)
		}
		w = f
		cleanup = func() { _ = f.Close() }
	}
	logger, err := ctxlog.New(cfg.LogLevel(), cfg.LogFormat, w)
	if err != nil {
		cleanup()
		return nil, nil, err
	}
	return logger, cleanup, nil
}
