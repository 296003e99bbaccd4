package logger

import (
	"fmt"
	"os"
	"path/filepath"
	"time"

	"github.com/sirupsen/logrus"
)

type UTCFormatter struct {
	logrus.Formatter
}

func (u UTCFormatter) Format(e *logrus.Entry) ([]byte, error) {
	e.Time = e.Time.UTC()
	return u.Formatter.Format(e)
}

// Init configures the global logrus logger used across the tool.
// Output goes to stderr unless logToFile is set, in which case a
// timestamped file is created under the logs directory.
func Init(verbose, logToFile bool) error {
	logrus.SetFormatter(UTCFormatter{&logrus.TextFormatter{}})

	if verbose {
		logrus.SetLevel(logrus.DebugLevel)
	}

	if !logToFile {
		return nil
	}

	logsDir := "logs"
	if err := os.MkdirAll(logsDir, 0755); err != nil {
		return fmt.Errorf("cannot create logs directory %q: %v", logsDir, err)
	}

	fileName := filepath.Join(logsDir, fmt.Sprintf("logfile-%s.log", time.Now().UTC().Format("020120061504")))
	file, err := os.OpenFile(fileName, os.O_CREATE|os.O_WRONLY|os.O_APPEND, 0666)
	if err != nil {
		return fmt.Errorf("cannot open log file %q: %v", fileName, err)
	}
	logrus.SetOutput(file)

	return nil
}
