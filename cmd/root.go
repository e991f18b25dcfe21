package cmd

import (
	"fmt"
	"log"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/spf13/cobra"
	"gopkg.in/natefinch/lumberjack.v2"

	"github.com/ftl/adatadapter/adapter"
	"github.com/ftl/adatadapter/adat"
	"github.com/ftl/adatadapter/caps"
	"github.com/ftl/adatadapter/cat"
	"github.com/ftl/adatadapter/sim"
	"github.com/ftl/adatadapter/transport"
)

var version = "develop"

var rootFlags = struct {
	localAddress *string
	port         *string
	baudRate     *int
	tcpAddress   *string
	capsFile     *string
	simulate     *bool
	traceHamlib  *bool
	traceCAT     *bool
	logFile      *string
	commandDelay *time.Duration
	openDelay    *time.Duration
	closeDelay   *time.Duration
	readTimeout  *time.Duration
}{}

var rootCmd = &cobra.Command{
	Use:              "adatadapter",
	Short:            "An adapter to connect Hamlib clients to an ADAT ADT-200A.",
	Version:          version,
	PersistentPreRun: setupLogging,
	Run:              root,
}

func Execute() {
	if err := rootCmd.Execute(); err != nil {
		fmt.Println(err)
		os.Exit(1)
	}
}

func init() {
	timing := cat.DefaultTiming()
	flags := rootCmd.PersistentFlags()
	rootFlags.localAddress = flags.StringP("listen", "l", "localhost:4532", "listen on this local address for Hamlib clients")
	rootFlags.port = flags.StringP("port", "p", "", "the serial port of the radio")
	rootFlags.baudRate = flags.IntP("baud", "b", transport.DefaultBaudRate, "the baud rate of the serial port")
	rootFlags.tcpAddress = flags.String("tcp", "", "reach the radio through a serial-to-network bridge at host:port instead of a local serial port")
	rootFlags.capsFile = flags.String("caps", "", "load the radio capabilities from this YAML file")
	rootFlags.simulate = flags.Bool("simulate", false, "use a simulated radio")
	rootFlags.traceHamlib = flags.Bool("trace_hamlib", false, "trace the Hamlib communication")
	rootFlags.traceCAT = flags.Bool("trace_cat", false, "trace the CAT communication with the radio")
	rootFlags.logFile = flags.String("log_file", "", "write the log into this file instead of stderr")
	rootFlags.commandDelay = flags.Duration("cmd_delay", timing.CommandDelay, "the delay after each CAT command")
	rootFlags.openDelay = flags.Duration("open_delay", timing.OpenDelay, "the delay after opening the port")
	rootFlags.closeDelay = flags.Duration("close_delay", timing.CloseDelay, "the delay after closing the port")
	rootFlags.readTimeout = flags.Duration("read_timeout", timing.ReadTimeout, "the time to wait for a reply of the radio")
}

func setupLogging(cmd *cobra.Command, args []string) {
	if *rootFlags.logFile == "" {
		return
	}
	log.SetOutput(&lumberjack.Logger{
		Filename:   *rootFlags.logFile,
		MaxSize:    10,
		MaxBackups: 3,
		MaxAge:     28,
	})
}

func root(cmd *cobra.Command, args []string) {
	log.Printf("ADAT-Hamlib Adapter %s", cmd.Version)
	if *rootFlags.traceHamlib {
		log.Print("hamlib tracing enabled")
	}

	session, err := openSession()
	if err != nil {
		log.Fatal(err)
	}
	defer closeSession(session)

	done := make(chan struct{})
	adapter, err := adapter.Listen(*rootFlags.localAddress, session, done, *rootFlags.traceHamlib, cmd.Version)
	if err != nil {
		log.Print(err)
		return
	}
	log.Printf("listening for Hamlib clients on %s", adapter.Addr())

	go handleCancelation(done)
	adapter.Wait()
}

func handleCancelation(done chan<- struct{}) {
	signals := make(chan os.Signal, 1)
	signal.Notify(signals, os.Interrupt, syscall.SIGTERM)
	<-signals
	log.Print("shutting down")
	close(done)
}

func timing() cat.Timing {
	return cat.Timing{
		CommandDelay: *rootFlags.commandDelay,
		OpenDelay:    *rootFlags.openDelay,
		CloseDelay:   *rootFlags.closeDelay,
		ReadTimeout:  *rootFlags.readTimeout,
	}
}

func newTransport() (cat.Transport, error) {
	switch {
	case *rootFlags.simulate:
		log.Print("using a simulated radio")
		return sim.New(), nil
	case *rootFlags.tcpAddress != "":
		log.Printf("connecting to the radio through %s", *rootFlags.tcpAddress)
		return transport.NewTCP(*rootFlags.tcpAddress), nil
	case *rootFlags.port != "":
		log.Printf("connecting to the radio on %s", *rootFlags.port)
		return transport.NewSerial(*rootFlags.port, *rootFlags.baudRate), nil
	default:
		return nil, fmt.Errorf("no radio given, use --port, --tcp, or --simulate")
	}
}

func openSession() (*adat.Session, error) {
	var capabilities *caps.Capabilities
	if *rootFlags.capsFile != "" {
		var err error
		capabilities, err = caps.Load(*rootFlags.capsFile)
		if err != nil {
			return nil, err
		}
	}

	t, err := newTransport()
	if err != nil {
		return nil, err
	}

	var tracer cat.Tracer
	if *rootFlags.traceCAT {
		log.Print("CAT tracing enabled")
		tracer = cat.NewTracer(log.Default())
	}

	session := adat.New(t, capabilities, timing(), tracer)
	err = session.Open()
	if err != nil {
		return nil, fmt.Errorf("cannot open the radio: %w", err)
	}
	return session, nil
}

func closeSession(session *adat.Session) {
	err := session.Close()
	if err != nil {
		log.Printf("cannot close the radio: %v", err)
	}
}
