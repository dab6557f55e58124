package serial

import (
	"fmt"
	"sort"
	"strings"

	"go.bug.st/serial/enumerator"
)

// PortInfo describes a serial port found on the host.
type PortInfo struct {
	Name         string
	IsUSB        bool
	VID          string
	PID          string
	SerialNumber string
	Product      string
}

// String renders the port for pickers, e.g. "/dev/ttyACM0 (USB 2e8a:000a Pico)".
func (p PortInfo) String() string {
	if !p.IsUSB {
		return p.Name
	}
	desc := fmt.Sprintf("USB %s:%s", strings.ToLower(p.VID), strings.ToLower(p.PID))
	if p.Product != "" {
		desc += " " + p.Product
	}
	return fmt.Sprintf("%s (%s)", p.Name, desc)
}

// ListPorts enumerates the serial ports of the host. USB CDC devices, which is
// how boards usually show up, are listed first; the rest follow by name.
func ListPorts() ([]PortInfo, error) {
	details, err := enumerator.GetDetailedPortsList()
	if err != nil {
		return nil, fmt.Errorf("enumerate ports: %w", err)
	}
	ports := make([]PortInfo, 0, len(details))
	for _, d := range details {
		ports = append(ports, PortInfo{
			Name:         d.Name,
			IsUSB:        d.IsUSB,
			VID:          d.VID,
			PID:          d.PID,
			SerialNumber: d.SerialNumber,
			Product:      d.Product,
		})
	}
	SortPorts(ports)
	return ports, nil
}

// SortPorts orders ports the way ListPorts returns them.
func SortPorts(ports []PortInfo) {
	sort.SliceStable(ports, func(i, j int) bool {
		if ports[i].IsUSB != ports[j].IsUSB {
			return ports[i].IsUSB
		}
		return ports[i].Name < ports[j].Name
	})
}
