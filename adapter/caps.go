package adapter

import (
	"fmt"
	"sort"
	"strings"

	"github.com/ftl/rigproxy/pkg/protocol"

	"github.com/ftl/adatadapter/caps"
)

func dumpCapsResponse(c *caps.Capabilities, version string) protocol.Response {
	return protocol.Response{
		Command: "dump_caps",
		Data:    []string{dumpCaps(c, version)},
		Keys:    []string{""},
		Result:  "0",
	}
}

func dumpCaps(c *caps.Capabilities, version string) string {
	b := new(strings.Builder)
	backendVersion := c.BackendVersion
	if backendVersion == "" {
		backendVersion = version
	}
	modes := strings.Join(c.Modes, " ")
	vfos := strings.Join(c.VFOs, " ")

	fmt.Fprintf(b, "Caps dump for model: 1\n")
	fmt.Fprintf(b, "Model name:\t%s\n", c.Model)
	fmt.Fprintf(b, "Mfg name:\t%s\n", c.Manufacturer)
	fmt.Fprintf(b, "Backend version:\t%s\n", backendVersion)
	fmt.Fprintf(b, "Backend copyright:\tMIT\n")
	fmt.Fprintf(b, "Backend status:\tStable\n")
	fmt.Fprintf(b, "Rig type:\tTransceiver\n")
	fmt.Fprintf(b, "PTT type:\tRig capable\n")
	fmt.Fprintf(b, "DCD type:\tNone\n")
	fmt.Fprintf(b, "Port type:\tRS-232\n")
	fmt.Fprintf(b, "Has targetable VFO: N\n")
	fmt.Fprintf(b, "Has async data support: N\n")
	// levels and functions of the radio are not served by the adapter
	fmt.Fprintf(b, "Get functions: \n")
	fmt.Fprintf(b, "Set functions: \n")
	fmt.Fprintf(b, "Get level: \n")
	fmt.Fprintf(b, "Set level: \n")
	fmt.Fprintf(b, "Mode list: %s \n", modes)
	fmt.Fprintf(b, "VFO list: %s \n", vfos)

	for i, r := range c.TXRanges {
		fmt.Fprintf(b, "TX ranges #%d:\n", i+1)
		fmt.Fprintf(b, "\t%.0f Hz - %.0f Hz\n", r.From, r.To)
		fmt.Fprintf(b, "\t\tVFO list: %s \n", vfos)
		fmt.Fprintf(b, "\t\tMode list: %s \n", modes)
		fmt.Fprintf(b, "\t\tLow power: %d W, High power: %d W\n", r.LowPower, r.HighPower)
	}
	for i, r := range c.RXRanges {
		fmt.Fprintf(b, "RX ranges #%d:\n", i+1)
		fmt.Fprintf(b, "\t%.0f Hz - %.0f Hz\n", r.From, r.To)
		fmt.Fprintf(b, "\t\tVFO list: %s \n", vfos)
		fmt.Fprintf(b, "\t\tMode list: %s \n", modes)
	}

	filtered := make([]string, 0, len(c.Filters))
	for mode := range c.Filters {
		filtered = append(filtered, mode)
	}
	sort.Strings(filtered)
	fmt.Fprintf(b, "Bandwidths:\n")
	for _, mode := range filtered {
		f := c.Filters[mode]
		fmt.Fprintf(b, "\t%s\tNormal: %s,\tNarrow: %s,\tWide: %s\n", mode, formatBandwidth(f.Normal), formatBandwidth(f.Narrow), formatBandwidth(f.Wide))
	}

	fmt.Fprintf(b, "Has Open:\tY\n")
	fmt.Fprintf(b, "Has Close:\tY\n")
	for _, can := range []string{"Frequency", "Mode", "VFO", "PTT"} {
		fmt.Fprintf(b, "Can set %s:\tY\n", can)
		fmt.Fprintf(b, "Can get %s:\tY\n", can)
	}
	fmt.Fprintf(b, "Can set Split VFO:\tN\n")
	fmt.Fprintf(b, "Can get Split VFO:\tY\n")
	for _, can := range []string{"Func", "Level"} {
		fmt.Fprintf(b, "Can set %s:\tN\n", can)
		fmt.Fprintf(b, "Can get %s:\tN\n", can)
	}
	fmt.Fprintf(b, "Can get Info:\tY\n")
	fmt.Fprintf(b, "\nOverall backend warnings: 0\n")
	return b.String()
}

func formatBandwidth(hz int) string {
	if hz >= 1000 {
		return fmt.Sprintf("%.4f kHz", float64(hz)/1000)
	}
	return fmt.Sprintf("%d.0 Hz", hz)
}
