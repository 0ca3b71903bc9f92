/*
Copyright © 2025 Mathias Djärv <mathias.djarv@allbinary.se>
*/
package cmd

import (
	"fmt"
	"os"
	"strings"

	comport "github.com/allbin/go-comport"
	"github.com/spf13/cobra"
)

// signalsCmd represents the signals command
var signalsCmd = &cobra.Command{
	Use:   "signals <port>",
	Short: "Display current modem signal states",
	Long: `Take a snapshot of the modem control lines.

Examples:
  comport signals /dev/ttyUSB0

Signal meanings:
  CTS - Clear To Send (input)
  DSR - Data Set Ready (input)
  RI  - Ring Indicator (input)
  DCD - Data Carrier Detect (input)
  RTS - Request To Send (output)
  DTR - Data Terminal Ready (output)

The output lines are only reported by drivers that expose them.`,
	Args: cobra.ExactArgs(1),
	Run: func(cmd *cobra.Command, args []string) {
		port, err := openPort(args[0])
		if err != nil {
			fmt.Fprintf(os.Stderr, "Error opening port: %v\n", err)
			os.Exit(1)
		}
		defer port.Close()

		lines, err := port.ModemLines()
		if err != nil {
			fmt.Fprintf(os.Stderr, "Error reading modem signals: %v\n", err)
			os.Exit(1)
		}

		fmt.Printf("Modem Signals for %s:\n\n", port.Name())
		fmt.Print(formatModemLines(lines))
	},
}

func formatModemLines(lines comport.ModemSignals) string {
	var sb strings.Builder
	fmt.Fprintf(&sb, "  CTS (Clear To Send):       %s\n", formatSignalState(lines.CTS))
	fmt.Fprintf(&sb, "  DSR (Data Set Ready):      %s\n", formatSignalState(lines.DSR))
	fmt.Fprintf(&sb, "  RI  (Ring Indicator):      %s\n", formatSignalState(lines.RI))
	fmt.Fprintf(&sb, "  DCD (Data Carrier Detect): %s\n", formatSignalState(lines.DCD))
	fmt.Fprintf(&sb, "  RTS (Request To Send):     %s\n", formatSignalState(lines.RTS))
	fmt.Fprintf(&sb, "  DTR (Data Terminal Ready): %s\n", formatSignalState(lines.DTR))
	return sb.String()
}

func formatSignalState(state bool) string {
	if state {
		return "HIGH"
	}
	return "LOW"
}

func parseSignalState(state string) (bool, error) {
	switch strings.ToLower(state) {
	case "high", "on", "true", "1":
		return true, nil
	case "low", "off", "false", "0":
		return false, nil
	default:
		return false, fmt.Errorf("invalid state: %s (valid: high, low, on, off, true, false, 1, 0)", state)
	}
}

func init() {
	rootCmd.AddCommand(signalsCmd)
}
