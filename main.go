package main

import (
	"flag"
	"log"
	"net/http"
	"os"

	"github.com/foomo/logseq-mcp/logseq"
	mcpserver "github.com/foomo/logseq-mcp/mcp"
	"github.com/foomo/logseq-mcp/service"
	"github.com/mark3labs/mcp-go/server"
	"go.uber.org/zap"
)

func main() {
	// Define command line flags
	stdioMode := flag.Bool("stdio", true, "Run in stdio mode")
	httpAddr := flag.String("http", "", "HTTP server address (e.g., ':8080')")
	endpoint := flag.String("endpoint", "/mcp", "HTTP endpoint path for the MCP transport")
	flag.Parse()

	logger, err := zap.NewProduction()
	if err != nil {
		log.Fatal(err)
	}
	defer func() { _ = logger.Sync() }()

	client := logseq.New(
		os.Getenv("LOGSEQ_URL"),
		os.Getenv("LOGSEQ_API_KEY"),
		logseq.WithLogger(logger),
	)
	svc := service.NewService(client, logger)
	s := mcpserver.NewServer(svc)

	if *httpAddr != "" {
		// Start the HTTP server with the SSE endpoints mounted next to
		// the MCP transport
		log.Printf("Starting MCP server on HTTP address: %s", *httpAddr)
		handler := mcpserver.NewMcpHTTPSSEServer(logger, s, svc, *endpoint, nil)
		if err := http.ListenAndServe(*httpAddr, handler); err != nil {
			log.Fatal(err)
		}
		os.Exit(0)
	}
	// Start the stdio server
	if *stdioMode {
		log.Println("Starting MCP server in stdio mode...")
	} else {
		log.Println("Starting MCP server in stdio mode (default)...")
	}
	if err := server.ServeStdio(s); err != nil {
		log.Fatal(err)
	}
}
