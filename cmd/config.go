/*
Copyright © 2025 Mathias Djärv <mathias.djarv@allbinary.se>
*/
package cmd

import (
	"errors"
	"fmt"
	"os"
	"strconv"

	comport "github.com/allbin/go-comport"
	"github.com/spf13/cobra"
)

// configCmd represents the config command
var configCmd = &cobra.Command{
	Use:   "config <port>",
	Short: "Apply link settings and show what the driver reports back",
	Long: `Open the port with the configured link settings and print the values
read back from the driver.

The readback is what the hardware actually runs at: a custom baud rate is
reported as the rate the divisor produces, which may differ from the one
requested.

Examples:
  comport config /dev/ttyUSB0
  comport config /dev/ttyUSB0 --baud 31250 --stop-bits 1
  COMPORT_PARITY=even comport config /dev/ttyS0`,
	Args: cobra.ExactArgs(1),
	Run: func(cmd *cobra.Command, args []string) {
		table, err := showConfig(args[0])
		if err != nil {
			fmt.Fprintf(os.Stderr, "Error: %v\n", err)
			os.Exit(1)
		}
		fmt.Println(table)
	},
}

// showConfig opens path with the configured settings and renders the
// readback. The port is closed on every path.
func showConfig(path string) (string, error) {
	port, err := openPort(path)
	if err != nil {
		return "", fmt.Errorf("opening port: %w", err)
	}
	defer port.Close()

	props, err := settingsProperties(port)
	if err != nil {
		return "", fmt.Errorf("reading settings: %w", err)
	}
	return propertyTable(port.Name(), props), nil
}

func settingsProperties(port *comport.Port) ([]property, error) {
	summary, err := linkSummary(port)
	if err != nil {
		return nil, err
	}
	baud, err := port.BaudRate()
	if err != nil {
		return nil, err
	}

	props := []property{
		{"Link", summary},
		{"Baud rate", strconv.Itoa(baud)},
		{"HW buffer in", optionalCount(port.HWBufferInSize())},
		{"HW buffer out", optionalCount(port.HWBufferOutSize())},
		{"Input queue", optionalCount(port.InQueue())},
		{"Output queue", optionalCount(port.OutQueue())},
	}
	return props, nil
}

func optionalCount(n int, err error) string {
	switch {
	case errors.Is(err, comport.ErrUnsupported):
		return "n/a"
	case err != nil:
		return "error: " + err.Error()
	default:
		return strconv.Itoa(n)
	}
}

func init() {
	rootCmd.AddCommand(configCmd)
}
