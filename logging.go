package vkrs

import (
	"fmt"
	"io"
	"log"
	"os"
	"path/filepath"

	"github.com/cockroachdb/errors"
)

//CoreLogger splits renderer output into info, warning and error streams. They can share one
//writer or go to separate append-only files next to each other.
type CoreLogger struct {
	info_log  *log.Logger
	warn_log  *log.Logger
	error_log *log.Logger
	files     []*os.File
}

const logFlags = log.Ldate | log.Ltime | log.Lshortfile

func NewCoreLogger(w io.Writer) *CoreLogger {
	return &CoreLogger{
		info_log:  log.New(w, "INFO: ", logFlags),
		warn_log:  log.New(w, "WARNING: ", logFlags),
		error_log: log.New(w, "ERROR: ", logFlags),
	}
}

//Opens info_log.txt, warn_log.txt and error_log.txt under dir
func NewFileLogger(dir string) (*CoreLogger, error) {
	var core CoreLogger
	open := func(name string) (*os.File, error) {
		file, err := os.OpenFile(filepath.Join(dir, name), os.O_APPEND|os.O_CREATE|os.O_WRONLY, 0666)
		if err != nil {
			return nil, errors.Wrapf(err, "open log %s", name)
		}
		core.files = append(core.files, file)
		return file, nil
	}

	info_file, err := open("info_log.txt")
	if err != nil {
		core.Close()
		return nil, err
	}
	warn_file, err := open("warn_log.txt")
	if err != nil {
		core.Close()
		return nil, err
	}
	error_file, err := open("error_log.txt")
	if err != nil {
		core.Close()
		return nil, err
	}

	core.info_log = log.New(info_file, "INFO: ", logFlags)
	core.warn_log = log.New(warn_file, "WARNING: ", logFlags)
	core.error_log = log.New(error_file, "ERROR: ", logFlags)
	return &core, nil
}

//Discards everything, used when no logger is supplied
func NopLogger() *CoreLogger {
	return NewCoreLogger(io.Discard)
}

func (l *CoreLogger) Infof(format string, args ...interface{}) {
	l.info_log.Output(2, fmt.Sprintf(format, args...))
}

func (l *CoreLogger) Warnf(format string, args ...interface{}) {
	l.warn_log.Output(2, fmt.Sprintf(format, args...))
}

func (l *CoreLogger) Errorf(format string, args ...interface{}) {
	l.error_log.Output(2, fmt.Sprintf(format, args...))
}

func (l *CoreLogger) Close() {
	for _, f := range l.files {
		f.Close()
	}
	l.files = nil
}
