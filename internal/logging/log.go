// Copyright (C) 2020 Markus L. Noga
//
// This program is free software: you can redistribute it and/or modify
// it under the terms of the GNU General Public License as published by
// the Free Software Foundation, either version 3 of the License, or
// (at your option) any later version.
//
// This program is distributed in the hope that it will be useful,
// but WITHOUT ANY WARRANTY; without even the implied warranty of
// MERCHANTABILITY or FITNESS FOR A PARTICULAR PURPOSE.  See the
// GNU General Public License for more details.
//
// You should have received a copy of the GNU General Public License
// along with this program.  If not, see <https://www.gnu.org/licenses/>.

package logging

import (
	"bufio"
	"io"
	"os"

	"github.com/rs/zerolog"
)

// Singleton logger. Writes human-readable lines to the console (stderr, so stdout
// carries only results), and optionally JSON lines to a file.

// The optional additional file to log into
var logFile   *bufio.Writer
var logFileOS *os.File

var console io.Writer = zerolog.ConsoleWriter{Out: os.Stderr, TimeFormat: "15:04:05"}
var level     zerolog.Level = zerolog.InfoLevel

// The process-wide logger
var Log zerolog.Logger = newLogger()

func newLogger() zerolog.Logger {
	var w io.Writer=console
	if logFile!=nil {
		w=zerolog.MultiLevelWriter(console, logFile)
	}
	return New(w, level)
}

// Returns a leveled, timestamped logger writing to the given writer
func New(w io.Writer, lvl zerolog.Level) zerolog.Logger {
	return zerolog.New(w).Level(lvl).With().Timestamp().Logger()
}

// Sets the minimum level of the process-wide logger
func SetLevel(lvl zerolog.Level) {
	level=lvl
	Log=newLogger()
}

// Enables logging to file
func LogAlsoToFile(fileName string) (err error) {
	if logFile!=nil {
		if err=logFile.Flush(); err!=nil { return err }
		if err=logFileOS.Close(); err!=nil { return err }
	}
	logFileOS, err=os.OpenFile(fileName, os.O_CREATE | os.O_TRUNC | os.O_WRONLY, 0666)
	if err!=nil {
		logFile, logFileOS=nil, nil
		return err
	}
	logFile=bufio.NewWriter(logFileOS)
	Log=newLogger()
	return nil
}

func LogFatal(err error, msg string) {
	Log.Error().Err(err).Msg(msg)
	LogSync()
	os.Exit(1)
}

func LogFatalf(format string, args ...interface{}) {
	Log.Error().Msgf(format, args...)
	LogSync()
	os.Exit(1)
}

func LogSync() {
	if logFile==nil { return }
	logFile.Flush()
	logFileOS.Sync()
}
