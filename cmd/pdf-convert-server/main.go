package main

import (
	"flag"
	"net/http"
	"os"

	"github.com/joho/godotenv"

	"github.com/swairshah/zotero-mcp-server/internal/convert"
	"github.com/swairshah/zotero-mcp-server/internal/logger"
)

// The conversion service runs standalone, so it reads only its own settings
// rather than the full server configuration.
func main() {
	_ = godotenv.Load()

	defaultAddr := os.Getenv("PDF_CONVERT_ADDR")
	if defaultAddr == "" {
		defaultAddr = ":8877"
	}
	addr := flag.String("addr", defaultAddr, "listen address")
	flag.Parse()

	log, err := logger.NewLogger(logger.LogConfig{Output: "stderr"})
	if err != nil {
		panic(err)
	}

	srv := convert.NewServer(convert.TextConverter{}, log)

	log.Info("pdf-convert-server listening on %s", *addr)
	if err := http.ListenAndServe(*addr, srv); err != nil {
		log.Fatal("Server failed: %v", err)
	}
}
