package logger

import (
	"io"
	"log"
	"os"
)

var (
	InfoLogger  *log.Logger
	ErrorLogger *log.Logger
)

// Init sets up the named loggers. Output goes to stdout/stderr and, when
// LOG_FILE is set, is duplicated into that file.
func Init() {
	infoOut := io.Writer(os.Stdout)
	errOut := io.Writer(os.Stderr)

	if path := os.Getenv("LOG_FILE"); path != "" {
		f, err := os.OpenFile(path, os.O_APPEND|os.O_CREATE|os.O_WRONLY, 0o644)
		if err != nil {
			log.Printf("logger: cannot open %s: %v", path, err)
		} else {
			infoOut = io.MultiWriter(os.Stdout, f)
			errOut = io.MultiWriter(os.Stderr, f)
		}
	}

	InfoLogger = log.New(infoOut, "INFO: ", log.Ldate|log.Ltime|log.Lshortfile)
	ErrorLogger = log.New(errOut, "ERROR: ", log.Ldate|log.Ltime|log.Lshortfile)
}
