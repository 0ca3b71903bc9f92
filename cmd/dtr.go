/*
Copyright © 2025 Mathias Djärv <mathias.djarv@allbinary.se>
*/
package cmd

import (
	comport "github.com/allbin/go-comport"
	"github.com/spf13/cobra"
)

// dtrCmd represents the dtr command
var dtrCmd = &cobra.Command{
	Use:   "dtr <port> <state>",
	Short: "Control DTR (Data Terminal Ready) signal",
	Long: `Drive the DTR (Data Terminal Ready) line.

Many boards wire DTR to their reset pin, so toggling it low and high again
restarts the attached device.

Examples:
  comport dtr /dev/ttyUSB0 high
  comport dtr /dev/ttyACM0 low

Valid states: high, low, on, off, true, false, 1, 0`,
	Args: cobra.ExactArgs(2),
	Run: func(cmd *cobra.Command, args []string) {
		setLine(args[0], args[1], "DTR", (*comport.Port).SetDTR, func(l comport.ModemSignals) bool { return l.DTR })
	},
}

func init() {
	rootCmd.AddCommand(dtrCmd)
}
