package main

import (
	"context"
	"flag"
	"fmt"
	"os"
	"time"

	"github.com/swairshah/zotero-mcp-server/internal/convert"
	"github.com/swairshah/zotero-mcp-server/internal/logger"
)

// pdf-convert turns a PDF into markdown, either by uploading it to a running
// pdf-convert-server or, with no -server flag, by converting locally.
func main() {
	server := flag.String("server", os.Getenv("PDF_CONVERT_URL"), "base URL of a pdf-convert-server (empty converts locally)")
	output := flag.String("output", "", "write markdown here instead of stdout")
	timeout := flag.Duration("timeout", 10*time.Minute, "give up after this long")
	flag.Parse()

	if flag.NArg() != 1 {
		fmt.Fprintln(os.Stderr, "usage: pdf-convert [flags] <paper.pdf>")
		flag.PrintDefaults()
		os.Exit(2)
	}

	data, err := os.ReadFile(flag.Arg(0))
	if err != nil {
		fmt.Fprintf(os.Stderr, "pdf-convert: %v\n", err)
		os.Exit(1)
	}

	ctx, cancel := context.WithTimeout(context.Background(), *timeout)
	defer cancel()

	var text string
	if *server != "" {
		text, err = convertRemote(ctx, *server, data)
	} else {
		text, err = convert.TextConverter{}.Convert(ctx, data)
	}
	if err != nil {
		fmt.Fprintf(os.Stderr, "pdf-convert: %v\n", err)
		os.Exit(1)
	}

	if *output != "" {
		if err := os.WriteFile(*output, []byte(text), 0o644); err != nil {
			fmt.Fprintf(os.Stderr, "pdf-convert: %v\n", err)
			os.Exit(1)
		}
		return
	}
	fmt.Println(text)
}

func convertRemote(ctx context.Context, baseURL string, data []byte) (string, error) {
	log, err := logger.NewLogger(logger.LogConfig{Output: "stderr", Level: "warn"})
	if err != nil {
		return "", err
	}

	client := convert.NewClient(baseURL)
	callID, err := client.Submit(ctx, data)
	if err != nil {
		return "", err
	}
	log.Debug("Submitted conversion job %s", callID)

	return client.Wait(ctx, callID, 2*time.Second)
}
