/*
Copyright © 2025 Mathias Djärv <mathias.djarv@allbinary.se>
*/
package cmd

import (
	"fmt"
	"os"

	"github.com/spf13/cobra"
)

// flushCmd represents the flush command
var flushCmd = &cobra.Command{
	Use:   "flush <port>",
	Short: "Discard pending input and output",
	Long: `Discard data the driver holds for the port.

Without flags both directions are flushed.

Examples:
  comport flush /dev/ttyUSB0
  comport flush /dev/ttyUSB0 --input`,
	Args: cobra.ExactArgs(1),
	Run: func(cmd *cobra.Command, args []string) {
		in, _ := cmd.Flags().GetBool("input")
		out, _ := cmd.Flags().GetBool("output")
		if !in && !out {
			in, out = true, true
		}

		port, err := openPort(args[0])
		if err != nil {
			fmt.Fprintf(os.Stderr, "Error opening port: %v\n", err)
			os.Exit(1)
		}
		defer port.Close()

		pending, err := port.InQueue()
		if err != nil {
			pending = 0
		}
		if err := port.Flush(in, out); err != nil {
			fmt.Fprintf(os.Stderr, "Error flushing: %v\n", err)
			port.Close()
			os.Exit(1)
		}

		if in {
			fmt.Printf("Discarded %d pending input bytes on %s\n", pending, port.Name())
		} else {
			fmt.Printf("Flushed output on %s\n", port.Name())
		}
	},
}

func init() {
	rootCmd.AddCommand(flushCmd)

	flushCmd.Flags().BoolP("input", "i", false, "Flush the receive queue")
	flushCmd.Flags().BoolP("output", "o", false, "Flush the transmit queue")
}
