/*
Copyright © 2025 Mathias Djärv <mathias.djarv@allbinary.se>
*/
package cmd

import (
	"context"
	"fmt"
	"os"
	"os/signal"
	"strings"
	"syscall"
	"time"

	comport "github.com/allbin/go-comport"
	"github.com/spf13/cobra"
)

var (
	watchSignals  []string
	watchInterval time.Duration
)

// watchCmd represents the watch command
var watchCmd = &cobra.Command{
	Use:   "watch <port>",
	Short: "Report modem signal changes",
	Long: `Poll the modem input lines and print every change. Press Ctrl+C to stop.

Examples:
  comport watch /dev/ttyUSB0
  comport watch /dev/ttyUSB0 --signals cts,dsr --interval 5ms

Available signals: cts, dsr, ri, dcd`,
	Args: cobra.ExactArgs(1),
	Run: func(cmd *cobra.Command, args []string) {
		selected, err := parseSignalSet(watchSignals)
		if err != nil {
			fmt.Fprintf(os.Stderr, "Error parsing signals: %v\n", err)
			os.Exit(1)
		}

		port, err := openBuffered(args[0])
		if err != nil {
			fmt.Fprintf(os.Stderr, "Error opening port: %v\n", err)
			os.Exit(1)
		}
		defer port.Close()

		ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
		defer stop()

		last, err := port.ModemLines()
		if err != nil {
			fmt.Fprintf(os.Stderr, "Error reading initial signals: %v\n", err)
			port.Close()
			os.Exit(1)
		}

		fmt.Printf("Watching %s on %s, Ctrl+C to stop\n", strings.Join(watchSignals, ", "), port.Name())
		printSignals("Initial state", last, selected)

		for ctx.Err() == nil {
			port.Wait(watchInterval)
			current, err := port.ModemLines()
			if err != nil {
				fmt.Fprintf(os.Stderr, "Error reading signals: %v\n", err)
				port.Close()
				os.Exit(1)
			}
			if changed := changedSignals(last, current, selected); len(changed) > 0 {
				printSignals("Signal change", current, changed)
			}
			last = current
		}
		fmt.Println("Stopping watch...")
	},
}

type signalSet map[string]bool

func parseSignalSet(names []string) (signalSet, error) {
	set := signalSet{}
	for _, name := range names {
		switch name = strings.ToLower(strings.TrimSpace(name)); name {
		case "cts", "dsr", "ri", "dcd":
			set[name] = true
		default:
			return nil, fmt.Errorf("unknown signal: %s (valid: cts, dsr, ri, dcd)", name)
		}
	}
	if len(set) == 0 {
		return signalSet{"cts": true, "dsr": true, "ri": true, "dcd": true}, nil
	}
	return set, nil
}

func inputLines(lines comport.ModemSignals) map[string]bool {
	return map[string]bool{"cts": lines.CTS, "dsr": lines.DSR, "ri": lines.RI, "dcd": lines.DCD}
}

// changedSignals returns the selected input lines that differ.
func changedSignals(before, after comport.ModemSignals, selected signalSet) signalSet {
	b, a := inputLines(before), inputLines(after)
	changed := signalSet{}
	for name := range selected {
		if b[name] != a[name] {
			changed[name] = true
		}
	}
	return changed
}

func printSignals(prefix string, lines comport.ModemSignals, which signalSet) {
	fmt.Printf("[%s] %s:\n", time.Now().Format("15:04:05.000"), prefix)
	state := inputLines(lines)
	for _, name := range []string{"cts", "dsr", "ri", "dcd"} {
		if which[name] {
			fmt.Printf("  %-4s %s\n", strings.ToUpper(name)+":", formatSignalState(state[name]))
		}
	}
	fmt.Println()
}

func init() {
	rootCmd.AddCommand(watchCmd)

	watchCmd.Flags().StringSliceVarP(&watchSignals, "signals", "s", []string{"cts", "dsr", "ri", "dcd"},
		"Signals to watch (comma-separated: cts,dsr,ri,dcd)")
	watchCmd.Flags().DurationVarP(&watchInterval, "interval", "i", 10*time.Millisecond,
		"Polling interval")
}
