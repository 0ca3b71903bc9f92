/*
Copyright © 2025 Mathias Djärv <mathias.djarv@allbinary.se>
*/
package cmd

import (
	"fmt"
	"os"
	"strconv"
	"time"

	comport "github.com/allbin/go-comport"
	"github.com/allbin/go-comport/internal/tui/models"
	tea "github.com/charmbracelet/bubbletea"
	"github.com/spf13/cobra"
)

// monitorCmd represents the monitor command
var monitorCmd = &cobra.Command{
	Use:   "monitor <port>",
	Short: "Interactive terminal for a serial port",
	Long: `Open a full screen terminal that shows received data as hex and ASCII and
sends what you type.

Keys (normal mode):
  i        insert mode, type a line and press Enter to send
  tab      switch between ASCII and HEX input
  h / a    toggle the hex and ASCII columns
  f        flush the port
  r / d    toggle RTS / DTR
  c        clear the log
  ?        help
  q        quit

Examples:
  comport monitor /dev/ttyUSB0 --baud 115200 --stop-bits 1
  comport monitor /dev/ttyACM0 --line-ending "\r\n"`,
	Args: cobra.ExactArgs(1),
	Run: func(cmd *cobra.Command, args []string) {
		interval, _ := cmd.Flags().GetDuration("poll")
		lineEnding, _ := cmd.Flags().GetString("line-ending")
		if interval < comport.Tick {
			fmt.Fprintf(os.Stderr, "Error: --poll must be at least %v\n", comport.Tick)
			os.Exit(1)
		}

		port, err := openBuffered(args[0])
		if err != nil {
			fmt.Fprintf(os.Stderr, "Error opening port: %v\n", err)
			os.Exit(1)
		}
		defer port.Close()

		link, err := linkSummary(port.Port)
		if err != nil {
			fmt.Fprintf(os.Stderr, "Error reading settings: %v\n", err)
			port.Close()
			os.Exit(1)
		}

		m := models.NewMonitor(port, link, unescape(lineEnding), interval)
		if _, err := tea.NewProgram(m, tea.WithAltScreen()).Run(); err != nil {
			fmt.Fprintf(os.Stderr, "Error: %v\n", err)
			port.Close()
			os.Exit(1)
		}
	},
}

// unescape turns the literal \r, \n and \t a shell passes through into
// bytes. Anything that is not a valid Go escape is used as typed.
func unescape(s string) string {
	if u, err := strconv.Unquote(`"` + s + `"`); err == nil {
		return u
	}
	return s
}

func init() {
	rootCmd.AddCommand(monitorCmd)

	monitorCmd.Flags().Duration("poll", 10*time.Millisecond, "Receive polling interval")
	monitorCmd.Flags().StringP("line-ending", "l", `\n`, "Appended to ASCII lines (\\n, \\r\\n, empty)")
}
