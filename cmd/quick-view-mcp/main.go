package main

import (
	"fmt"
	"io"
	"log"
	"os"

	"github.com/spf13/pflag"

	"github.com/ironsheep/quick-view-mcp/internal/config"
	"github.com/ironsheep/quick-view-mcp/internal/preview"
	"github.com/ironsheep/quick-view-mcp/internal/server"
)

// Version information - set by ldflags during build
var (
	Version   = "dev"
	BuildTime = "unknown"
	GitCommit = "unknown"
)

func main() {
	pflag.Usage = func() {
		fmt.Fprintf(os.Stderr, "quick-view-mcp - MCP server for image and colour previews\n\n")
		fmt.Fprintf(os.Stderr, "Usage: quick-view-mcp [options]\n\n")
		fmt.Fprintf(os.Stderr, "Options:\n")
		pflag.PrintDefaults()
		fmt.Fprintf(os.Stderr, "\nEnvironment variables:\n")
		fmt.Fprintf(os.Stderr, "  %s=<file>     Settings file (JSON)\n", config.EnvSettings)
		fmt.Fprintf(os.Stderr, "  %s=debug     Enable debug logging\n", config.EnvLogLevel)
		fmt.Fprintf(os.Stderr, "\nThis server communicates via MCP protocol over stdin/stdout.\n")
		fmt.Fprintf(os.Stderr, "Configure it in your editor's MCP client.\n")
	}

	settingsFlag := pflag.StringP("settings", "s", "", "Settings file (JSON); overrides "+config.EnvSettings)
	debugFlag := pflag.BoolP("debug", "d", false, "Enable debug logging")
	versionFlag := pflag.BoolP("version", "v", false, "Print version information")
	helpFlag := pflag.BoolP("help", "h", false, "Print this help message")
	pflag.Parse()

	if *helpFlag {
		pflag.Usage()
		return
	}

	if *versionFlag {
		fmt.Printf("quick-view-mcp %s\n", Version)
		fmt.Printf("  Build time: %s\n", BuildTime)
		fmt.Printf("  Git commit: %s\n", GitCommit)
		return
	}

	// Configure logging to stderr (stdout is for MCP protocol)
	log.SetOutput(os.Stderr)
	log.SetFlags(log.Ldate | log.Ltime | log.Lshortfile)

	settings, err := config.Load(*settingsFlag)
	if err != nil {
		log.Fatalf("Configuration error: %v", err)
	}

	// Preview failures are routine; only report them when debugging
	previewLog := log.New(io.Discard, "", 0)
	if *debugFlag || config.Debug() {
		previewLog = log.Default()
		log.Printf("Quick View MCP Server v%s (built %s, commit %s)", Version, BuildTime, GitCommit)
		log.Printf("Converters: %v, timeout %s", settings.Converters(), settings.Timeout())
	}

	o := preview.New(preview.Options{Settings: settings, Logger: previewLog})
	srv := server.New(server.Options{
		Orchestrator: o,
		Logger:       log.Default(),
		Version:      Version,
	})
	if err := srv.Run(); err != nil {
		log.Fatalf("Server error: %v", err)
	}
}
