package cmd

import (
	"fmt"
	"log"
	"strings"

	"github.com/spf13/cobra"

	"github.com/ftl/adatadapter/transport"
)

var infoCmd = &cobra.Command{
	Use:   "info",
	Short: "Print the identification and the current state of the radio",
	Run:   info,
}

var portsCmd = &cobra.Command{
	Use:   "ports",
	Short: "List the serial ports of this machine",
	Run:   ports,
}

func init() {
	rootCmd.AddCommand(infoCmd, portsCmd)
}

func info(cmd *cobra.Command, args []string) {
	session, err := openSession()
	if err != nil {
		log.Fatal(err)
	}
	defer closeSession(session)

	identity, err := session.Identity()
	if err != nil {
		log.Fatal(err)
	}
	fmt.Printf("Model:     %s\n", session.Capabilities().Model)
	fmt.Printf("ID code:   %s\n", identity.IDCode)
	fmt.Printf("Serial:    %s\n", identity.SerialNumber)
	fmt.Printf("Firmware:  %s\n", identity.FirmwareVersion)
	fmt.Printf("Hardware:  %s\n", identity.HardwareVersion)
	fmt.Printf("GUI:       %s\n", identity.GUIVersion)
	fmt.Printf("Options:   %s\n", identity.Options)
	fmt.Printf("Callsign:  %s\n", identity.Callsign)
	fmt.Printf("Levels:    %s\n", strings.Join(session.Capabilities().LevelNames(), " "))
	fmt.Printf("Functions: %s\n", strings.Join(session.Capabilities().Functions, " "))

	frequency, err := session.Frequency()
	if err != nil {
		log.Printf("cannot read the frequency: %v", err)
	} else {
		fmt.Printf("Frequency: %.0f Hz\n", frequency)
		fmt.Printf("TX range:  %t\n", session.Capabilities().CanTransmit(frequency))
	}
	mode, width, err := session.Mode()
	if err != nil {
		log.Printf("cannot read the mode: %v", err)
	} else {
		fmt.Printf("Mode:      %s %d Hz\n", mode, width)
	}
	vfo, err := session.VFO()
	if err != nil {
		log.Printf("cannot read the VFO: %v", err)
	} else {
		fmt.Printf("VFO:       %s\n", vfo)
	}
	ptt, err := session.PTT()
	if err != nil {
		log.Printf("cannot read the PTT: %v", err)
	} else {
		fmt.Printf("PTT:       %t\n", ptt)
	}
}

func ports(cmd *cobra.Command, args []string) {
	names, err := transport.Ports()
	if err != nil {
		log.Fatal(err)
	}
	if len(names) == 0 {
		fmt.Println("no serial ports found")
		return
	}
	for _, name := range names {
		fmt.Println(name)
	}
}
