/*
Copyright © 2025 Mathias Djärv <mathias.djarv@allbinary.se>
*/
package cmd

import (
	"bufio"
	"fmt"
	"io"
	"os"
	"strings"

	"github.com/allbin/go-comport/internal/hexfmt"
	"github.com/charmbracelet/lipgloss"
	"github.com/spf13/cobra"
)

var (
	infoStyle    = lipgloss.NewStyle().Foreground(lipgloss.Color("99")).Bold(true)
	successStyle = lipgloss.NewStyle().Foreground(lipgloss.Color("40")).Bold(true)
	errorStyle   = lipgloss.NewStyle().Foreground(lipgloss.Color("196")).Bold(true)
)

// sendCmd represents the send command
var sendCmd = &cobra.Command{
	Use:   "send [data] <port>",
	Short: "Send data to a serial port",
	Long: `Send data to a serial port.

Data can be provided as:
- Command line argument: comport send "Hello World" /dev/ttyUSB0
- From stdin (pipe): echo "test data" | comport send /dev/ttyUSB0
- Interactive mode: comport send /dev/ttyUSB0 (prompts for input)

The whole payload is handed to the driver in one write; a partial write is
reported as an error.

Example usage:
  comport send "AT+GMR" /dev/ttyUSB0 --newline
  comport send --hex "02 06 00 03" /dev/ttyUSB0 --baud 115200`,
	Args: cobra.RangeArgs(1, 2),
	Run: func(cmd *cobra.Command, args []string) {
		var data, portPath string
		if len(args) == 1 {
			portPath = args[0]
			var err error
			data, err = readPayload()
			if err != nil {
				fmt.Fprintf(os.Stderr, "Error reading from stdin: %v\n", err)
				os.Exit(1)
			}
		} else {
			data, portPath = args[0], args[1]
		}

		addNewline, _ := cmd.Flags().GetBool("newline")
		hexMode, _ := cmd.Flags().GetBool("hex")

		payload, err := buildPayload(data, hexMode, addNewline)
		if err != nil {
			fmt.Fprintf(os.Stderr, "Invalid data: %v\n", err)
			os.Exit(1)
		}

		if err := sendData(portPath, payload); err != nil {
			fmt.Fprintf(os.Stderr, "%s %v\n", errorStyle.Render("✗"), err)
			os.Exit(1)
		}
	},
}

func init() {
	rootCmd.AddCommand(sendCmd)

	sendCmd.Flags().BoolP("newline", "n", false, "Add newline character to the end of data")
	sendCmd.Flags().BoolP("hex", "x", false, "Interpret data as hexadecimal (e.g., '48656c6c6f' for 'Hello')")
}

// readPayload takes piped stdin if there is any and prompts otherwise.
func readPayload() (string, error) {
	stat, err := os.Stdin.Stat()
	if err != nil || stat.Mode()&os.ModeCharDevice != 0 {
		fmt.Print(infoStyle.Render("Enter data to send: "))
		scanner := bufio.NewScanner(os.Stdin)
		if scanner.Scan() {
			return scanner.Text(), nil
		}
		return "", scanner.Err()
	}
	stdinData, err := io.ReadAll(os.Stdin)
	if err != nil {
		return "", err
	}
	return strings.TrimRight(string(stdinData), "\r\n"), nil
}

func buildPayload(data string, hexMode, addNewline bool) ([]byte, error) {
	if hexMode {
		return hexfmt.Parse(data)
	}
	if addNewline {
		data += "\n"
	}
	return []byte(data), nil
}

func sendData(portPath string, payload []byte) error {
	fmt.Printf("%s Opening %s...\n", infoStyle.Render("⚡"), portPath)

	port, err := openPort(portPath)
	if err != nil {
		return err
	}
	defer port.Close()

	summary, err := linkSummary(port)
	if err != nil {
		return err
	}
	fmt.Printf("%s Connected at %s\n", successStyle.Render("✓"), summary)

	if err := port.Transmit(payload); err != nil {
		return fmt.Errorf("failed to send data: %w", err)
	}

	fmt.Printf("%s Sent %d bytes\n", successStyle.Render("✓"), len(payload))
	fmt.Printf("%s Data: %s\n", infoStyle.Render("📋"), hexfmt.Preview(payload, 50))
	return nil
}
