package config

import (
	"io"
	"log"
	"os"
	"path/filepath"
)

// LogWriter is the writer used for application and database logs.
var LogWriter io.Writer = os.Stdout

// LogFilePath returns the path to the API log file, LOG_FILE when set.
func LogFilePath() string {
	if p := os.Getenv("LOG_FILE"); p != "" {
		return p
	}
	return filepath.Join("logs", "complaint-api.log")
}

// InitLogging tees the standard logger into the log file. The caller closes the returned file.
func InitLogging() *os.File {
	if err := os.MkdirAll(filepath.Dir(LogFilePath()), os.ModePerm); err != nil {
		log.Printf("Warning: Failed to create logs directory: %v", err)
	}

	logFile, err := os.OpenFile(LogFilePath(), os.O_CREATE|os.O_WRONLY|os.O_APPEND, 0o644)
	if err != nil {
		log.Printf("Warning: Failed to open log file: %v", err)
		LogWriter = os.Stdout
		log.SetOutput(LogWriter)
		return nil
	}

	LogWriter = io.MultiWriter(os.Stdout, logFile)
	log.SetOutput(LogWriter)
	return logFile
}
