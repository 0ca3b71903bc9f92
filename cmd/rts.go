/*
Copyright © 2025 Mathias Djärv <mathias.djarv@allbinary.se>
*/
package cmd

import (
	"fmt"
	"os"

	comport "github.com/allbin/go-comport"
	"github.com/spf13/cobra"
)

// rtsCmd represents the rts command
var rtsCmd = &cobra.Command{
	Use:   "rts <port> <state>",
	Short: "Control RTS (Request To Send) signal",
	Long: `Drive the RTS (Request To Send) line.

Examples:
  comport rts /dev/ttyUSB0 high
  comport rts /dev/ttyUSB0 off

Valid states: high, low, on, off, true, false, 1, 0`,
	Args: cobra.ExactArgs(2),
	Run: func(cmd *cobra.Command, args []string) {
		setLine(args[0], args[1], "RTS", (*comport.Port).SetRTS, func(l comport.ModemSignals) bool { return l.RTS })
	},
}

// setLine opens the port, drives one output line and reads it back.
func setLine(path, stateArg, name string, set func(*comport.Port, bool) error, get func(comport.ModemSignals) bool) {
	state, err := parseSignalState(stateArg)
	if err != nil {
		fmt.Fprintf(os.Stderr, "Error: %v\n", err)
		os.Exit(1)
	}

	port, err := openPort(path)
	if err != nil {
		fmt.Fprintf(os.Stderr, "Error opening port: %v\n", err)
		os.Exit(1)
	}
	defer port.Close()

	if err := set(port, state); err != nil {
		fmt.Fprintf(os.Stderr, "Error setting %s: %v\n", name, err)
		port.Close()
		os.Exit(1)
	}

	lines, err := port.ModemLines()
	if err != nil {
		fmt.Fprintf(os.Stderr, "Warning: could not verify %s state: %v\n", name, err)
		lines = comport.ModemSignals{RTS: state, DTR: state}
	}
	fmt.Printf("%s set to %s on %s\n", name, formatSignalState(get(lines)), path)
}

func init() {
	rootCmd.AddCommand(rtsCmd)
}
