/*
Copyright © 2025 Mathias Djärv <mathias.djarv@allbinary.se>
*/
package cmd

import (
	"fmt"
	"os"
	"strings"

	comport "github.com/allbin/go-comport"
	"github.com/charmbracelet/lipgloss"
	"github.com/spf13/cobra"
)

// listCmd represents the list command
var listCmd = &cobra.Command{
	Use:   "list",
	Short: "List available serial ports",
	Long: `List the serial devices found under /dev.

USB adapters (ttyUSB*, ttyACM*), on-board UARTs (ttyS*) and the common SoC
UARTs (ttyAMA*, ttymxc*, ttyO*, ttySAC*, ttyTHS*) are included. Virtual
terminals and pseudo-terminals are not.

Examples:
  comport list
  comport list --filter usb --table`,
	Run: func(cmd *cobra.Command, args []string) {
		ports, err := comport.ListPorts()
		if err != nil {
			fmt.Fprintf(os.Stderr, "Error listing ports: %v\n", err)
			os.Exit(1)
		}

		filterType, _ := cmd.Flags().GetString("filter")
		tableFormat, _ := cmd.Flags().GetBool("table")

		infos := filterPorts(ports, filterType)
		if len(infos) == 0 {
			if filterType != "" && filterType != "all" {
				fmt.Printf("No serial ports found matching filter: %s\n", filterType)
			} else {
				fmt.Println("No serial ports found")
			}
			return
		}

		if tableFormat {
			renderPortTable(infos)
		} else {
			for _, info := range infos {
				fmt.Println(info.Path)
			}
		}
	},
}

func init() {
	rootCmd.AddCommand(listCmd)

	listCmd.Flags().StringP("filter", "f", "", "Filter by port type: usb, standard, soc, all")
	listCmd.Flags().BoolP("table", "t", false, "Display output in a styled table format")
}

// filterPorts resolves each path and keeps the ones of the requested kind.
func filterPorts(ports []string, filterType string) []*comport.PortInfo {
	var filtered []*comport.PortInfo
	for _, port := range ports {
		info, err := comport.GetPortInfo(port)
		if err != nil {
			continue
		}
		if matchesFilter(info.Name, filterType) {
			filtered = append(filtered, info)
		}
	}
	return filtered
}

func matchesFilter(name, filterType string) bool {
	name = strings.ToLower(name)
	switch strings.ToLower(filterType) {
	case "", "all":
		return true
	case "usb":
		return strings.HasPrefix(name, "ttyusb") || strings.HasPrefix(name, "ttyacm")
	case "standard":
		return portType(name) == "Standard Serial"
	case "soc":
		return !strings.HasPrefix(name, "ttyusb") && !strings.HasPrefix(name, "ttyacm") &&
			portType(name) != "Standard Serial"
	default:
		return false
	}
}

func renderPortTable(infos []*comport.PortInfo) {
	fmt.Printf("Found %d serial port(s):\n\n", len(infos))

	const (
		portWidth   = 14
		typeWidth   = 16
		driverWidth = 12
		idWidth     = 10
	)

	headerStyle := lipgloss.NewStyle().
		Bold(true).
		Foreground(lipgloss.Color("99")).
		Border(lipgloss.NormalBorder(), false, false, true, false).
		BorderForeground(lipgloss.Color("240"))
	cellStyle := lipgloss.NewStyle().PaddingRight(2)
	dimStyle := lipgloss.NewStyle().Foreground(lipgloss.Color("243"))

	header := fmt.Sprintf("%-*s %-*s %-*s %-*s %s",
		portWidth, "Port",
		typeWidth, "Type",
		driverWidth, "Driver",
		idWidth, "VID:PID",
		"Product")
	fmt.Println(headerStyle.Render(header))

	for _, info := range infos {
		ids := "-"
		if info.VendorID != "" {
			ids = info.VendorID + ":" + info.ProductID
		}
		product := info.Product
		if product == "" {
			product = dimStyle.Render(info.Description)
		}
		row := fmt.Sprintf("%-*s %-*s %-*s %-*s %s",
			portWidth, info.Name,
			typeWidth, portType(info.Name),
			driverWidth, orDash(info.Driver),
			idWidth, ids,
			product)
		fmt.Println(cellStyle.Render(row))
	}
}

func orDash(s string) string {
	if s == "" {
		return "-"
	}
	return s
}

// portType returns a short classification derived from the device name
func portType(name string) string {
	name = strings.ToLower(name)
	switch {
	case strings.HasPrefix(name, "ttyusb"):
		return "USB Serial"
	case strings.HasPrefix(name, "ttyacm"):
		return "USB CDC/ACM"
	case strings.HasPrefix(name, "ttyama"):
		return "ARM Serial"
	case strings.HasPrefix(name, "ttymxc"):
		return "i.MX Serial"
	case strings.HasPrefix(name, "ttysac"):
		return "Samsung Serial"
	case strings.HasPrefix(name, "ttyths"):
		return "Tegra Serial"
	case strings.HasPrefix(name, "ttyo"):
		return "OMAP Serial"
	case strings.HasPrefix(name, "ttys"):
		return "Standard Serial"
	default:
		return "Serial Port"
	}
}
