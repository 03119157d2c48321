package common

import (
	"fmt"
	"os"
	"path/filepath"

	"github.com/ternarybob/arbor"
	"github.com/ternarybob/arbor/models"
)

const logTimeFormat = "15:04:05"

// InitLogger builds the arbor logger from the logging configuration. Writers
// are attached per configured output; an unwritable log directory downgrades
// file output to a warning rather than failing startup.
func InitLogger(config *Config) arbor.ILogger {
	logger := arbor.NewLogger()

	for _, output := range config.Logging.Output {
		switch output {
		case "file":
			path, err := logFilePath()
			if err != nil {
				fmt.Printf("Warning: file logging disabled: %v\n", err)
				continue
			}
			logger = logger.WithFileWriter(models.WriterConfiguration{
				Type:       models.LogWriterTypeFile,
				FileName:   path,
				TimeFormat: logTimeFormat,
				MaxSize:    100 * 1024 * 1024,
				MaxBackups: 3,
				OutputType: models.OutputFormatLogfmt,
			})
		case "stdout", "console":
			logger = logger.WithConsoleWriter(models.WriterConfiguration{
				Type:       models.LogWriterTypeConsole,
				TimeFormat: logTimeFormat,
				OutputType: models.OutputFormatLogfmt,
			})
		}
	}

	return logger.WithLevelFromString(config.Logging.Level)
}

// logFilePath resolves logs/verdict.log next to the executable, creating the
// directory if needed.
func logFilePath() (string, error) {
	execPath, err := os.Executable()
	if err != nil {
		return "", fmt.Errorf("resolve executable path: %w", err)
	}
	logsDir := filepath.Join(filepath.Dir(execPath), "logs")
	if err := os.MkdirAll(logsDir, 0755); err != nil {
		return "", fmt.Errorf("create logs directory: %w", err)
	}
	return filepath.Join(logsDir, "verdict.log"), nil
}
