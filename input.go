package main

import (
	"fmt"
	"io"
	"os"

	"github.com/metcalfc/zoom/internal/reader"
)

// loadInput reads the document named by args, or stdin when no file is
// given. An interactive stdin yields an empty document to type or paste
// into.
func loadInput(args []string, stdin io.Reader, interactive bool) (*reader.Source, error) {
	if len(args) > 0 {
		filename := args[0]
		src, err := reader.Load(filename)
		if err != nil {
			return nil, fmt.Errorf("failed to read file '%s': %w", filename, err)
		}
		return src, nil
	}
	if interactive {
		return reader.FromText("untitled", ""), nil
	}
	data, err := io.ReadAll(stdin)
	if err != nil {
		return nil, fmt.Errorf("failed to read stdin: %w", err)
	}
	return reader.FromText("stdin", string(data)), nil
}

func stdinIsTerminal() bool {
	stat, err := os.Stdin.Stat()
	if err != nil {
		return true
	}
	return stat.Mode()&os.ModeCharDevice != 0
}
