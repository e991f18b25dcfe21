//go:build windows
// +build windows

package cmd

import (
	"fmt"
	"log"
	"os"
	"path/filepath"
	"strconv"
	"strings"

	"github.com/spf13/cobra"

	"github.com/ftl/adatadapter/adapter"

	"golang.org/x/sys/windows/svc"
	"golang.org/x/sys/windows/svc/eventlog"
	"golang.org/x/sys/windows/svc/mgr"
)

// see https://cs.opensource.google/go/x/sys/+/0f9fa26a:windows/svc/example/install.go

const serviceName = "adatadapter"

var serviceCmd = &cobra.Command{
	Use:   "service",
	Short: "Run the ADAT adapter as Windows service (must not be used on the command line)",
	Run:   service,
}

var installCmd = &cobra.Command{
	Use:   "install",
	Short: "Install the ADAT adapter as Windows service",
	Run:   install,
}

var uninstallCmd = &cobra.Command{
	Use:   "uninstall",
	Short: "Uninstall the Windows service",
	Run:   uninstall,
}

func init() {
	rootCmd.AddCommand(serviceCmd, installCmd, uninstallCmd)
}

func service(cmd *cobra.Command, args []string) {
	log.Printf("ADAT-Hamlib Adapter %s", cmd.Version)

	runningAsService, err := svc.IsWindowsService()
	if !runningAsService || err != nil {
		log.Fatalf("not running as Windows service, do not use the 'service' command on the command line!")
	}
	log.Print("running as Windows service")

	err = svc.Run(serviceName, &serviceHandler{version: cmd.Version})
	if err != nil {
		log.Printf("the %s service failed: %v", serviceName, err)
	}
}

// serviceArgs returns the command line the service is started with.
func serviceArgs() []string {
	result := []string{
		"service",
		"-l", *rootFlags.localAddress,
		"--cmd_delay", rootFlags.commandDelay.String(),
		"--open_delay", rootFlags.openDelay.String(),
		"--close_delay", rootFlags.closeDelay.String(),
		"--read_timeout", rootFlags.readTimeout.String(),
	}
	switch {
	case *rootFlags.simulate:
		result = append(result, "--simulate")
	case *rootFlags.tcpAddress != "":
		result = append(result, "--tcp", *rootFlags.tcpAddress)
	default:
		result = append(result, "-p", *rootFlags.port, "-b", strconv.Itoa(*rootFlags.baudRate))
	}
	if *rootFlags.capsFile != "" {
		result = append(result, "--caps", *rootFlags.capsFile)
	}
	if *rootFlags.logFile != "" {
		result = append(result, "--log_file", *rootFlags.logFile)
	}
	if *rootFlags.traceHamlib {
		result = append(result, "--trace_hamlib")
	}
	if *rootFlags.traceCAT {
		result = append(result, "--trace_cat")
	}
	return result
}

func install(cmd *cobra.Command, args []string) {
	log.Printf("ADAT-Hamlib Adapter %s", cmd.Version)
	log.Print("installing adatadapter as Windows service")

	if *rootFlags.port == "" && *rootFlags.tcpAddress == "" && !*rootFlags.simulate {
		log.Fatal("no radio given, use --port, --tcp, or --simulate")
	}

	serviceFilename, err := exePath()
	if err != nil {
		log.Fatal(err)
	}
	commandLine := serviceArgs()

	serviceConfig := mgr.Config{
		StartType:   mgr.StartAutomatic,
		DisplayName: "ADAT-Hamlib Adapter",
		Description: "Run the ADAT-Hamlib adapter as a windows service",
	}

	log.Printf("service command: %s %s", serviceFilename, strings.Join(commandLine, " "))

	services, err := mgr.Connect()
	if err != nil {
		log.Fatal(err)
	}
	defer services.Disconnect()

	service, err := services.OpenService(serviceName)
	if err == nil {
		service.Close()
		log.Fatalf("the %s service already exists", serviceName)
	}

	service, err = services.CreateService(serviceName, serviceFilename, serviceConfig, commandLine...)
	if err != nil {
		log.Fatal(err)
	}
	defer service.Close()

	err = eventlog.InstallAsEventCreate(serviceName, eventlog.Error|eventlog.Warning|eventlog.Info)
	if err != nil {
		service.Delete()
		log.Fatalf("cannot setup log for the %s service: %v", serviceName, err)
	}
	log.Print("the adatadapter Windows service was sucessfully installed")
}

func uninstall(cmd *cobra.Command, args []string) {
	log.Printf("ADAT-Hamlib Adapter %s", cmd.Version)
	log.Print("uninstalling the adatadapter Windows service")

	services, err := mgr.Connect()
	if err != nil {
		log.Fatal(err)
	}
	defer services.Disconnect()

	service, err := services.OpenService(serviceName)
	if err != nil {
		log.Fatalf("the %s Windows service is currently not installed: %v", serviceName, err)
	}
	defer service.Close()

	err = service.Delete()
	if err != nil {
		log.Fatal(err)
	}

	err = eventlog.Remove(serviceName)
	if err != nil {
		log.Fatalf("cannot remove log for the %s service: %v", serviceName, err)
	}
	log.Print("the adatadapter Windows service was sucessfully uninstalled")
}

func exePath() (string, error) {
	prog := os.Args[0]
	p, err := filepath.Abs(prog)
	if err != nil {
		return "", err
	}
	fi, err := os.Stat(p)
	if err == nil {
		if !fi.Mode().IsDir() {
			return p, nil
		}
		err = fmt.Errorf("%s is directory", p)
	}
	if filepath.Ext(p) == "" {
		p += ".exe"
		fi, err := os.Stat(p)
		if err == nil {
			if !fi.Mode().IsDir() {
				return p, nil
			}
			err = fmt.Errorf("%s is directory", p)
		}
	}
	return "", err
}

type serviceHandler struct {
	version string
}

func (s *serviceHandler) Execute(args []string, requests <-chan svc.ChangeRequest, changes chan<- svc.Status) (ssec bool, errno uint32) {
	const cmdsAccepted = svc.AcceptStop | svc.AcceptShutdown
	changes <- svc.Status{State: svc.StartPending}

	session, err := openSession()
	if err != nil {
		log.Printf("starting the adapter failed: %v", err)
		return true, 1
	}
	defer closeSession(session)

	done := make(chan struct{})
	adapter, err := adapter.Listen(*rootFlags.localAddress, session, done, *rootFlags.traceHamlib, s.version)
	if err != nil {
		log.Printf("starting the adapter failed: %v", err)
		return true, 2
	}

	stopped := waitFor(adapter)
	changes <- svc.Status{State: svc.Running, Accepts: cmdsAccepted}
	for {
		select {
		case c := <-requests:
			switch c.Cmd {
			case svc.Interrogate:
				changes <- c.CurrentStatus
			case svc.Stop, svc.Shutdown:
				changes <- svc.Status{State: svc.StopPending}
				close(done)
				adapter.Wait()
				return
			default:
				log.Printf("unexpected control request #%d", c)
			}
		case <-stopped:
			log.Print("the adapter stopped")
			return true, 3
		}
	}
}

func waitFor(a *adapter.Adapter) <-chan struct{} {
	result := make(chan struct{})
	go func() {
		a.Wait()
		close(result)
	}()
	return result
}
