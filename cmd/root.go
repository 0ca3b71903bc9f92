/*
Copyright © 2025 Mathias Djärv <mathias.djarv@allbinary.se>
*/
package cmd

import (
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"strings"

	comport "github.com/allbin/go-comport"
	"github.com/spf13/cobra"
	"github.com/spf13/viper"
	"go.uber.org/zap"
)

var cfgFile string

// rootCmd represents the base command when called without any subcommands
var rootCmd = &cobra.Command{
	Use:   "comport",
	Short: "Inspect and talk to serial COM ports",
	Long: `comport opens serial devices in raw mode and exposes the link settings,
modem control lines and a buffered receive path from the command line.

Link settings are taken from flags, COMPORT_* environment variables or an
optional comport.yaml, in that order of precedence:

  baud: 115200
  byte-size: 8
  stop-bits: 1
  parity: none
  timeout: 500ms`,
	SilenceUsage: true,
}

// Execute adds all child commands to the root command and sets flags appropriately.
func Execute() {
	if err := rootCmd.Execute(); err != nil {
		os.Exit(1)
	}
}

func init() {
	cobra.OnInitialize(initConfig)

	defaults := comport.DefaultConfig()
	flags := rootCmd.PersistentFlags()
	flags.StringVar(&cfgFile, "config", "", "config file (default ./comport.yaml, then $XDG_CONFIG_HOME/comport/comport.yaml)")
	flags.IntP("baud", "b", defaults.BaudRate, "Baud rate")
	flags.Int("byte-size", int(defaults.ByteSize), "Data bits per character (5-8)")
	flags.Int("stop-bits", int(defaults.StopBits), "Stop bits (1 or 2)")
	flags.StringP("parity", "p", "none", "Parity: none, odd, even, mark, space")
	flags.DurationP("timeout", "w", defaults.WaitTimeout, "Wait timeout for buffered reads (1ms-10s)")
	flags.BoolP("verbose", "v", false, "Log port activity to stderr")

	cobra.CheckErr(viper.BindPFlags(flags))
}

func initConfig() {
	if cfgFile != "" {
		viper.SetConfigFile(cfgFile)
	} else {
		viper.SetConfigName("comport")
		viper.SetConfigType("yaml")
		viper.AddConfigPath(".")
		if dir, err := os.UserConfigDir(); err == nil {
			viper.AddConfigPath(filepath.Join(dir, "comport"))
		}
	}

	viper.SetEnvPrefix("comport")
	viper.SetEnvKeyReplacer(strings.NewReplacer("-", "_"))
	viper.AutomaticEnv()

	if err := viper.ReadInConfig(); err != nil {
		var notFound viper.ConfigFileNotFoundError
		if cfgFile != "" || !errors.As(err, &notFound) {
			fmt.Fprintf(os.Stderr, "Error reading config: %v\n", err)
			os.Exit(1)
		}
	}
}

func newLogger() *zap.SugaredLogger {
	if !viper.GetBool("verbose") {
		return zap.NewNop().Sugar()
	}
	logger, err := zap.NewDevelopment()
	if err != nil {
		return zap.NewNop().Sugar()
	}
	return logger.Sugar().Named("comport")
}

// portOptions turns the resolved flag/env/config values into port options.
func portOptions() ([]comport.Option, error) {
	parity, err := comport.ParseParity(strings.ToLower(viper.GetString("parity")))
	if err != nil {
		return nil, err
	}
	return []comport.Option{
		comport.WithBaudRate(viper.GetInt("baud")),
		comport.WithByteSize(comport.ByteSize(viper.GetInt("byte-size"))),
		comport.WithStopBits(comport.StopBits(viper.GetInt("stop-bits"))),
		comport.WithParity(parity),
		comport.WithWaitTimeout(viper.GetDuration("timeout")),
		comport.WithLogger(newLogger()),
	}, nil
}

func openPort(path string) (*comport.Port, error) {
	opts, err := portOptions()
	if err != nil {
		return nil, err
	}
	port, err := comport.New(opts...)
	if err != nil {
		return nil, err
	}
	if err := port.Open(path); err != nil {
		return nil, err
	}
	return port, nil
}

func openBuffered(path string) (*comport.BufferedPort, error) {
	opts, err := portOptions()
	if err != nil {
		return nil, err
	}
	port, err := comport.NewBuffered(opts...)
	if err != nil {
		return nil, err
	}
	if err := port.Open(path); err != nil {
		return nil, err
	}
	return port, nil
}

// linkSummary renders the settings the driver reports back, e.g. "57600 8N2".
func linkSummary(port *comport.Port) (string, error) {
	baud, err := port.BaudRate()
	if err != nil {
		return "", err
	}
	size, err := port.ByteSize()
	if err != nil {
		return "", err
	}
	parity, err := port.Parity()
	if err != nil {
		return "", err
	}
	stop, err := port.StopBits()
	if err != nil {
		return "", err
	}
	return fmt.Sprintf("%d %d%s%d", baud, size, parity, stop), nil
}
