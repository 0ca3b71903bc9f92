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

// infoCmd represents the info command
var infoCmd = &cobra.Command{
	Use:   "info <port>",
	Short: "Display detailed information about a serial port",
	Long: `Display what sysfs knows about a serial device.

For USB adapters this includes the vendor/product IDs, the manufacturer and
product strings and the serial number. The port is not opened.

Examples:
  comport info /dev/ttyUSB0
  comport info /dev/ttyACM0`,
	Args: cobra.ExactArgs(1),
	Run: func(cmd *cobra.Command, args []string) {
		info, err := comport.GetPortInfo(args[0])
		if err != nil {
			fmt.Fprintf(os.Stderr, "Error getting port info: %v\n", err)
			os.Exit(1)
		}
		fmt.Println(propertyTable(info.Path, infoProperties(info)))
	},
}

func infoProperties(info *comport.PortInfo) []property {
	props := []property{
		{"Name", info.Name},
		{"Description", info.Description},
		{"Type", portType(info.Name)},
	}
	optional := []property{
		{"Driver", info.Driver},
		{"Vendor ID", info.VendorID},
		{"Product ID", info.ProductID},
		{"Manufacturer", info.Manufacturer},
		{"Product", info.Product},
		{"Serial", info.SerialNumber},
	}
	for _, p := range optional {
		if p.value != "" {
			props = append(props, p)
		}
	}
	return props
}

func init() {
	rootCmd.AddCommand(infoCmd)
}
