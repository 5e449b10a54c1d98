// Package writers resolves a log output name to a writer.
package writers

import (
	"errors"
	"fmt"
	"io"
	"os"
	"path/filepath"
	"strings"
)

// ErrUnsupportedOutput is returned for output strings that name neither a
// standard stream nor a local file.
var ErrUnsupportedOutput = errors.New("unsupported output format")

// WriterType represents the type of writer to create
type WriterType string

const (
	WriterTypeStdout WriterType = "stdout"
	WriterTypeStderr WriterType = "stderr"
	WriterTypeFile   WriterType = "file"
)

// stream wraps a process stream so closing it leaves the stream open.
type stream struct{ io.Writer }

func (stream) Close() error { return nil }

// CreateWriter returns a writer for output. Supported forms:
//   - "stdout" or "" writes to os.Stdout
//   - "stderr" writes to os.Stderr
//   - "file:///var/log/host.log" or "/var/log/host.log" appends to a file,
//     creating parent directories as needed
func CreateWriter(output string) (io.WriteCloser, error) {
	switch ParseWriterType(output) {
	case WriterTypeStdout:
		return stream{os.Stdout}, nil
	case WriterTypeStderr:
		return stream{os.Stderr}, nil
	}

	if strings.HasPrefix(output, "file://") {
		return createFileWriter(strings.TrimPrefix(output, "file://"))
	}
	if isFilePath(output) {
		return createFileWriter(output)
	}
	return nil, fmt.Errorf("%w: %s", ErrUnsupportedOutput, output)
}

// isFilePath reports whether path looks like a local file path
func isFilePath(path string) bool {
	if strings.Contains(path, "://") {
		return false
	}
	return strings.ContainsAny(path, `/\`) || filepath.Ext(path) == ".log"
}

func createFileWriter(filePath string) (io.WriteCloser, error) {
	dir := filepath.Dir(filePath)
	if dir != "." && dir != "/" {
		if err := os.MkdirAll(dir, 0o755); err != nil {
			return nil, fmt.Errorf("failed to create directory %s: %w", dir, err)
		}
	}

	file, err := os.OpenFile(filePath, os.O_CREATE|os.O_WRONLY|os.O_APPEND, 0o644)
	if err != nil {
		return nil, fmt.Errorf("failed to open file %s: %w", filePath, err)
	}
	return file, nil
}

// ParseWriterType determines the writer type from an output string
func ParseWriterType(output string) WriterType {
	switch output {
	case "", "stdout":
		return WriterTypeStdout
	case "stderr":
		return WriterTypeStderr
	default:
		return WriterTypeFile
	}
}
