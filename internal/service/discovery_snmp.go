package service

import (
	"context"
	"fmt"
	"strings"

	"github.com/gosnmp/gosnmp"
)

// Quick-identification OIDs: system name, system description and the
// Host-Resources device description most printers populate with their
// model string
const (
	oidSysName     = "1.3.6.1.2.1.1.5.0"
	oidSysDescr    = "1.3.6.1.2.1.1.1.0"
	oidDeviceDescr = "1.3.6.1.2.1.25.3.2.1.3.1"
)

// snmpIdentify asks a discovered host for its name and model over SNMP.
// Discovery treats failures as "no enrichment", not as a dead host.
func (s *DiscoveryService) snmpIdentify(ctx context.Context, ip string) (name string, model string, err error) {
	community := s.cfg.SNMPCommunity
	if community == "" {
		community = "public"
	}

	client := &gosnmp.GoSNMP{
		Target:    ip,
		Port:      161,
		Community: community,
		Version:   gosnmp.Version2c,
		Timeout:   s.cfg.SNMPTimeout,
		Retries:   1,
		Context:   ctx,
	}

	if err := client.Connect(); err != nil {
		return "", "", fmt.Errorf("snmp connect %s: %w", ip, err)
	}
	defer client.Conn.Close()

	result, err := client.Get([]string{oidSysName, oidSysDescr, oidDeviceDescr})
	if err != nil {
		return "", "", fmt.Errorf("snmp get %s: %w", ip, err)
	}

	var sysDescr string
	for _, pdu := range result.Variables {
		value := pduString(pdu)
		if value == "" {
			continue
		}
		switch pdu.Name {
		case "." + oidSysName:
			name = value
		case "." + oidSysDescr:
			sysDescr = value
		case "." + oidDeviceDescr:
			model = value
		}
	}

	if model == "" {
		model = sysDescr
	}

	return name, model, nil
}

func pduString(pdu gosnmp.SnmpPDU) string {
	switch pdu.Type {
	case gosnmp.OctetString:
		if b, ok := pdu.Value.([]byte); ok {
			return strings.TrimSpace(string(b))
		}
	}
	if s, ok := pdu.Value.(string); ok {
		return strings.TrimSpace(s)
	}
	return ""
}
