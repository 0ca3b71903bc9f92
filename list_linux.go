package comport

import (
	"os"
	"path/filepath"
	"regexp"
	"sort"
	"strings"
)

// Locations scanned for devices, replaceable in tests
var (
	devDir    = "/dev"
	sysTTYDir = "/sys/class/tty"
)

// Device names that belong to serial hardware
var serialPatterns = []*regexp.Regexp{
	regexp.MustCompile(`^ttyUSB\d+$`), // USB serial adapters
	regexp.MustCompile(`^ttyACM\d+$`), // USB CDC/ACM devices
	regexp.MustCompile(`^ttyS\d+$`),   // Standard serial ports
	regexp.MustCompile(`^ttyAMA\d+$`), // ARM/Raspberry Pi serial
	regexp.MustCompile(`^ttymxc\d+$`), // i.MX serial ports
	regexp.MustCompile(`^ttyO\d+$`),   // OMAP serial ports
	regexp.MustCompile(`^ttySAC\d+$`), // Samsung serial ports
	regexp.MustCompile(`^ttyTHS\d+$`), // Tegra serial ports
}

// isSerialName reports whether a /dev entry name looks like a serial port.
// Virtual terminals, the console and pseudo-terminals never match.
func isSerialName(name string) bool {
	for _, pattern := range serialPatterns {
		if pattern.MatchString(name) {
			return true
		}
	}
	return false
}

// ListPorts returns the serial devices present on the system, sorted by path
func ListPorts() ([]string, error) {
	entries, err := os.ReadDir(devDir)
	if err != nil {
		return nil, err
	}

	var ports []string
	for _, entry := range entries {
		if !isSerialName(entry.Name()) {
			continue
		}
		fullPath := filepath.Join(devDir, entry.Name())
		if isCharacterDevice(fullPath) {
			ports = append(ports, fullPath)
		}
	}

	sort.Strings(ports)
	return ports, nil
}

// isCharacterDevice checks if the given path is a character device
func isCharacterDevice(path string) bool {
	info, err := os.Stat(path)
	if err != nil {
		return false
	}
	return info.Mode()&os.ModeCharDevice != 0
}

// GetPortInfo returns detailed information about a specific port
func GetPortInfo(portPath string) (*PortInfo, error) {
	if !isCharacterDevice(portPath) {
		return nil, ErrDeviceNotFound
	}

	name := filepath.Base(portPath)
	info := &PortInfo{
		Name:        name,
		Path:        portPath,
		Description: getPortDescription(name),
	}
	enrichSysfsInfo(info)
	return info, nil
}

// getPortDescription provides human-readable descriptions for different port types
func getPortDescription(name string) string {
	switch {
	case strings.HasPrefix(name, "ttyUSB"):
		return "USB Serial Port"
	case strings.HasPrefix(name, "ttyACM"):
		return "USB CDC/ACM Device"
	case strings.HasPrefix(name, "ttyAMA"):
		return "ARM Serial Port"
	case strings.HasPrefix(name, "ttymxc"):
		return "i.MX Serial Port"
	case strings.HasPrefix(name, "ttySAC"):
		return "Samsung Serial Port"
	case strings.HasPrefix(name, "ttyTHS"):
		return "Tegra Serial Port"
	case strings.HasPrefix(name, "ttyO"):
		return "OMAP Serial Port"
	case strings.HasPrefix(name, "ttyS"):
		return "Standard Serial Port"
	default:
		return "Serial Port"
	}
}

// enrichSysfsInfo fills in the driver and, for USB devices, the descriptor
// strings found by walking up from /sys/class/tty/<name>/device. Missing
// attributes are left empty.
func enrichSysfsInfo(info *PortInfo) {
	dev, err := filepath.EvalSymlinks(filepath.Join(sysTTYDir, info.Name, "device"))
	if err != nil {
		return
	}

	if driver, err := filepath.EvalSymlinks(filepath.Join(dev, "driver")); err == nil {
		info.Driver = filepath.Base(driver)
	}

	// The USB device node sits a level or two above the tty interface.
	for dir := dev; dir != "/" && dir != "."; dir = filepath.Dir(dir) {
		vendor := readSysfsAttr(dir, "idVendor")
		if vendor == "" {
			continue
		}
		info.VendorID = vendor
		info.ProductID = readSysfsAttr(dir, "idProduct")
		info.Manufacturer = readSysfsAttr(dir, "manufacturer")
		info.Product = readSysfsAttr(dir, "product")
		info.SerialNumber = readSysfsAttr(dir, "serial")
		return
	}
}

func readSysfsAttr(dir, name string) string {
	data, err := os.ReadFile(filepath.Join(dir, name))
	if err != nil {
		return ""
	}
	return strings.TrimSpace(string(data))
}
