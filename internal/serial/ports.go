package serial

import (
	"go.bug.st/serial/enumerator"
)

// PortInfo holds details about a serial port.
type PortInfo struct {
	Name         string
	IsUSB        bool
	VID          string
	PID          string
	SerialNumber string
}

// ListPorts returns available serial ports.
func ListPorts() ([]PortInfo, error) {
	ports, err := enumerator.GetDetailedPortsList()
	if err != nil {
		return nil, err
	}

	var result []PortInfo
	for _, p := range ports {
		result = append(result, PortInfo{
			Name:         p.Name,
			IsUSB:        p.IsUSB,
			VID:          p.VID,
			PID:          p.PID,
			SerialNumber: p.SerialNumber,
		})
	}
	return result, nil
}

// Find returns the port with the given device name, if present. The ports
// page uses it to show USB metadata for the address the IDE reports.
func Find(address string) (PortInfo, bool) {
	ports, err := ListPorts()
	if err != nil {
		return PortInfo{}, false
	}
	for _, p := range ports {
		if p.Name == address {
			return p, true
		}
	}
	return PortInfo{}, false
}

// Describe renders a short human-readable label for a port.
func (p PortInfo) Describe() string {
	if !p.IsUSB {
		return p.Name
	}
	s := p.Name + " (USB " + p.VID + ":" + p.PID
	if p.SerialNumber != "" {
		s += " " + p.SerialNumber
	}
	return s + ")"
}
