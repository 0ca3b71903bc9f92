/*
Copyright © 2025 Mathias Djärv <mathias.djarv@allbinary.se>
*/
package cmd

import (
	"errors"
	"fmt"
	"os"
	"time"

	comport "github.com/allbin/go-comport"
	"github.com/allbin/go-comport/internal/hexfmt"
	"github.com/spf13/cobra"
)

// expectCmd represents the expect command
var expectCmd = &cobra.Command{
	Use:   "expect <port>",
	Short: "Send a request and wait for the reply",
	Long: `Optionally send a payload, then wait for the reply to either reach a byte
count or to start with a pattern.

The wait is bounded by --timeout. A reply that diverges from the pattern ends
the wait immediately. Whatever was received is printed in both cases.

Examples:
  comport expect /dev/ttyUSB0 --send "AT" --newline --pattern "OK"
  comport expect /dev/ttyUSB0 --send "02 06 00 03" --hex --count 8 --timeout 500ms
  comport expect /dev/ttyACM0 --pattern "READY" --flush`,
	Args: cobra.ExactArgs(1),
	Run: func(cmd *cobra.Command, args []string) {
		send, _ := cmd.Flags().GetString("send")
		pattern, _ := cmd.Flags().GetString("pattern")
		count, _ := cmd.Flags().GetInt("count")
		hexMode, _ := cmd.Flags().GetBool("hex")
		addNewline, _ := cmd.Flags().GetBool("newline")
		flush, _ := cmd.Flags().GetBool("flush")
		delay, _ := cmd.Flags().GetDuration("delay")

		if pattern == "" && count <= 0 {
			fmt.Fprintln(os.Stderr, "Error: one of --pattern or --count is required")
			os.Exit(1)
		}

		var want []byte
		if pattern != "" {
			var err error
			if want, err = buildPayload(pattern, hexMode, false); err != nil {
				fmt.Fprintf(os.Stderr, "Invalid pattern: %v\n", err)
				os.Exit(1)
			}
		}

		port, err := openBuffered(args[0])
		if err != nil {
			fmt.Fprintf(os.Stderr, "Error opening port: %v\n", err)
			os.Exit(1)
		}
		defer port.Close()

		if flush {
			if err := port.Flush(true, true); err != nil {
				fmt.Fprintf(os.Stderr, "Error flushing: %v\n", err)
				port.Close()
				os.Exit(1)
			}
		}

		if send != "" {
			payload, err := buildPayload(send, hexMode, addNewline)
			if err != nil {
				fmt.Fprintf(os.Stderr, "Invalid data: %v\n", err)
				port.Close()
				os.Exit(1)
			}
			if err := port.Transmit(payload); err != nil {
				fmt.Fprintf(os.Stderr, "Error sending: %v\n", err)
				port.Close()
				os.Exit(1)
			}
		}
		if delay > 0 {
			port.Wait(delay)
		}

		err = awaitReply(port, want, count)
		printReply(port.Buffer(), hexMode)
		if err != nil {
			fmt.Fprintf(os.Stderr, "%s %v\n", errorStyle.Render("✗"), err)
			port.Close()
			os.Exit(1)
		}
	},
}

// awaitReply waits for the pattern when one is given and for count bytes
// otherwise.
func awaitReply(port *comport.BufferedPort, pattern []byte, count int) error {
	start := time.Now()
	var err error
	if len(pattern) > 0 {
		err = port.BufferWaitPattern(pattern)
	} else {
		err = port.BufferWait(count)
	}

	switch {
	case err == nil:
		fmt.Printf("%s Reply after %s\n", successStyle.Render("✓"), time.Since(start).Round(time.Millisecond))
		return nil
	case errors.Is(err, comport.ErrTimeout):
		return fmt.Errorf("no complete reply within %s (%d bytes received)", port.WaitTimeout(), port.Len())
	case errors.Is(err, comport.ErrPatternMismatch):
		return fmt.Errorf("reply does not start with %q", pattern)
	default:
		return err
	}
}

func printReply(data []byte, hexMode bool) {
	if len(data) == 0 {
		return
	}
	if hexMode {
		fmt.Println(hexfmt.Dump(data))
		return
	}
	fmt.Println(hexfmt.Printable(data))
}

func init() {
	rootCmd.AddCommand(expectCmd)

	expectCmd.Flags().StringP("send", "s", "", "Payload to transmit before waiting")
	expectCmd.Flags().String("pattern", "", "Wait until the reply starts with this")
	expectCmd.Flags().IntP("count", "c", 0, "Wait until at least this many bytes arrived")
	expectCmd.Flags().BoolP("hex", "x", false, "Payload and pattern are hexadecimal")
	expectCmd.Flags().BoolP("newline", "n", false, "Add newline character to the payload")
	expectCmd.Flags().Bool("flush", false, "Discard stale input and output before sending")
	expectCmd.Flags().Duration("delay", 0, "Pause between sending and waiting")
}
