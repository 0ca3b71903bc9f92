//go:build !linux

package comport

// ListPorts is only implemented on Linux
func ListPorts() ([]string, error) {
	return nil, ErrUnsupported
}

// GetPortInfo is only implemented on Linux
func GetPortInfo(string) (*PortInfo, error) {
	return nil, ErrUnsupported
}
