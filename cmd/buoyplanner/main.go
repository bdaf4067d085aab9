package main

import (
	"context"
	"fmt"
	"io"
	"log/slog"
	"os"
	"os/signal"
	"strings"
	"time"

	"github.com/joho/godotenv"
	"github.com/riadevigo/buoyplanner/internal/config"
	"github.com/riadevigo/buoyplanner/internal/logging"
	intOtel "github.com/riadevigo/buoyplanner/internal/otel"
	"github.com/rs/zerolog"
	sdklog "go.opentelemetry.io/otel/sdk/log"
)

var (
	CurrentVersion string = "0.0.1"
	BuildDate      string = "unknown"

	AppName string = "buoyplanner"
)

var (
	SessionStartTime time.Time = time.Now()

	LogFilePath string
	LogFile     *os.File

	SlogManager  *logging.SlogManager
	Logger       *slog.Logger
	StoreLogger  zerolog.Logger
	OTelProvider *intOtel.Provider

	graylogWriter io.Writer
)

func main() {
	args := os.Args[1:]
	if len(args) == 0 {
		usage()
		os.Exit(2)
	}

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt)
	defer stop()

	setup()
	defer teardown()

	a, err := newApp(ctx)
	if err != nil {
		fmt.Fprintln(os.Stderr, "startup failed:", err)
		teardown()
		os.Exit(1)
	}

	err = a.run(ctx, strings.ToLower(args[0]), args[1:])
	a.close()
	if err != nil {
		fmt.Fprintln(os.Stderr, "error:", err)
		teardown()
		os.Exit(1)
	}
}

// setup loads the environment and config, then brings up logging and
// telemetry. Failures here degrade to defaults instead of aborting.
func setup() {
	SlogManager = logging.NewSlogManager()
	SlogManager.Setup(os.Stderr, "warn", nil)
	Logger = SlogManager.Logger()

	if err := godotenv.Load(); err != nil && !os.IsNotExist(err) {
		Logger.Warn("Failed to read .env file", "error", err)
	}

	configDir := os.Getenv("BUOYPLANNER_CONFIG_DIR")
	if configDir == "" {
		configDir = "."
	}
	if err := config.Load(configDir); err != nil {
		Logger.Warn("Failed to load config, using defaults!", "error", err)
	}

	logsDir := config.GetString("logsDir")
	if err := os.MkdirAll(logsDir, 0755); err != nil {
		Logger.Error("Failed to create logs directory", "error", err, "path", logsDir)
	}

	LogFilePath = logging.LogFilePath(logsDir, AppName, SessionStartTime)
	if _, err := os.Stat(LogFilePath); err == nil {
		os.Rename(LogFilePath, LogFilePath+".old")
	}

	var err error
	LogFile, err = os.OpenFile(LogFilePath, os.O_RDWR|os.O_CREATE|os.O_APPEND, 0666)
	if err != nil {
		Logger.Error("Failed to create/open log file!", "error", err, "path", LogFilePath)
		LogFile = nil
	}

	var logOut io.Writer = os.Stderr
	if LogFile != nil {
		logOut = LogFile
	}

	gl := config.GetGraylogConfig()
	if gl.Enabled {
		w, err := logging.NewGraylogWriter(gl.Address, AppName)
		if err != nil {
			Logger.Warn("Graylog disabled", "error", err)
		} else {
			graylogWriter = w
		}
	}

	otelCfg := config.GetOTelConfig()
	if otelCfg.Enabled {
		OTelProvider, err = intOtel.New(intOtel.FromConfig(otelCfg, logOut))
		if err != nil {
			Logger.Error("Failed to initialize OTel provider", "error", err)
		} else {
			Logger.Info("OTel provider initialized", "file", LogFilePath, "endpoint", otelCfg.Endpoint)
		}
	}

	var otelLogProvider *sdklog.LoggerProvider
	if OTelProvider != nil {
		otelLogProvider = OTelProvider.LoggerProvider()
	}

	opts := []logging.Option{
		logging.WithServiceName(otelCfg.ServiceName),
		logging.WithOTelLevel(otelCfg.LogLevel),
		logging.WithContext(func() []slog.Attr {
			return []slog.Attr{slog.Duration("uptime", time.Since(SessionStartTime).Round(time.Millisecond))}
		}),
	}
	if graylogWriter != nil {
		opts = append(opts, logging.WithGraylog(graylogWriter, gl.Level))
	}
	level := config.GetString("logLevel")
	SlogManager.Setup(logOut, level, otelLogProvider, opts...)
	Logger = SlogManager.Logger().With("version", CurrentVersion)

	StoreLogger = logging.NewZerolog(logOut, level, graylogWriter)
}

func teardown() {
	ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()

	if err := SlogManager.Flush(ctx); err != nil {
		fmt.Fprintln(os.Stderr, "log flush failed:", err)
	}
	if OTelProvider != nil {
		if err := OTelProvider.Shutdown(ctx); err != nil {
			fmt.Fprintln(os.Stderr, "otel shutdown failed:", err)
		}
		OTelProvider = nil
	}
	if c, ok := graylogWriter.(io.Closer); ok {
		c.Close()
		graylogWriter = nil
	}
	if LogFile != nil {
		LogFile.Close()
		LogFile = nil
	}
}

func usage() {
	fmt.Fprintf(os.Stderr, `%s %s (built %s)

Usage: %s <command> [arguments]

Commands:
  routes                          list the race courses
  resolve <route>                 print the path of a course
  animate <route>                 run the course animation and print the map as GeoJSON
  locate                          locate the device and show it on the map
  convert <deg> <min> <N|S|E|W>   convert degrees and decimal minutes to decimal degrees
  list [route]                    list the waypoints shown for a course
  add <name> <deg> <min> <N|S> <deg> <min> <E|W> [description]
                                  add a waypoint for this session
  share <name> <file.png>         write a QR code with the waypoint's geo: URI
  ask <question>                  ask the maritime assistant
`, AppName, CurrentVersion, BuildDate, AppName)
}
