// This defines a command-line utility that splits the tracks of a standard
// MIDI file into one file per monophonic voice, and percussion tracks into
// separate drum and cymbal files.
package main

import (
	"bufio"
	"flag"
	"fmt"
	"io"
	"os"
	"path/filepath"
	"strconv"
	"strings"

	"github.com/pkg/errors"
	"github.com/sirupsen/logrus"
	midi "github.com/yalue/midi_voice_split"
)

// Reads one line from the user, after printing the prompt.
func prompt(in *bufio.Reader, text string) string {
	fmt.Print(text)
	line, _ := in.ReadString('\n')
	return strings.TrimSpace(line)
}

// Removes a pair of double quotes surrounding a path, which is what some file
// browsers produce when copying a path.
func unquotePath(s string) string {
	if (len(s) >= 2) && strings.HasPrefix(s, "\"") &&
		strings.HasSuffix(s, "\"") {
		return s[1 : len(s)-1]
	}
	return s
}

// Opens the run log in the executable's directory, falling back to the
// directory containing the input file.
func openLogFile(name, inputPath string) (*os.File, error) {
	var dirs []string
	exe, e := os.Executable()
	if e == nil {
		dirs = append(dirs, filepath.Dir(exe))
	}
	dirs = append(dirs, filepath.Dir(inputPath))
	var lastErr error
	for _, dir := range dirs {
		f, e := os.Create(filepath.Join(dir, name))
		if e == nil {
			return f, nil
		}
		lastErr = e
	}
	return nil, errors.Wrap(lastErr, "couldn't create run log")
}

func newLogger(out io.Writer, config *midi.Config) *logrus.Logger {
	log := logrus.New()
	log.SetOutput(out)
	log.SetLevel(config.Level())
	log.SetFormatter(&logrus.TextFormatter{
		DisableColors:    true,
		DisableTimestamp: true,
	})
	return log
}

// Prints the user-facing message for an error that ended the run. The error
// itself has already been logged by the Separator.
func reportError(e error) {
	switch errors.Cause(e) {
	case midi.ErrInputNotFound:
		fmt.Fprintf(os.Stderr, "File not found.\n")
	case midi.ErrUnreadableMIDI:
		fmt.Fprintf(os.Stderr, "Failed to read MIDI.\n")
	case midi.ErrInvalidTrack:
		fmt.Fprintf(os.Stderr, "Invalid track.\n")
	default:
		fmt.Fprintf(os.Stderr, "%s\n", e)
	}
}

func run() int {
	var inputPath, modeString, configPath, logFileName string
	var track int
	flag.StringVar(&inputPath, "input_file", "", "The .mid file to split. "+
		"Prompted for if not set.")
	flag.StringVar(&modeString, "mode", "", "1 to split a single track, "+
		"anything else to split all tracks. Prompted for if not set.")
	flag.IntVar(&track, "track", -1, "The track to split in single-track "+
		"mode. Prompted for if not set.")
	flag.StringVar(&configPath, "config", "", "An optional YAML config file.")
	flag.StringVar(&logFileName, "log_file", "", "Overrides the name of the "+
		"run log file.")
	flag.Parse()

	config := midi.DefaultConfig()
	if configPath != "" {
		var e error
		config, e = midi.LoadConfig(configPath)
		if e != nil {
			fmt.Fprintf(os.Stderr, "Couldn't load %s: %s\n", configPath, e)
			return 1
		}
	}
	if logFileName != "" {
		config.LogFileName = logFileName
	}

	stdin := bufio.NewReader(os.Stdin)
	if inputPath == "" {
		inputPath = prompt(stdin, "Enter full path to a MIDI file (.mid): ")
	}
	inputPath = unquotePath(inputPath)

	output := io.Writer(os.Stdout)
	logFile, e := openLogFile(config.LogFileName, inputPath)
	if e != nil {
		fmt.Fprintf(os.Stderr, "%s\n", e)
	} else {
		defer logFile.Close()
		output = io.MultiWriter(os.Stdout, logFile)
	}
	log := newLogger(output, config)
	log.Info("=== MIDI Voice Separation ===")
	if logFile != nil {
		log.Infof("Log: %s", logFile.Name())
	}

	// The track list is logged here, before the user is asked to pick one.
	separator := midi.NewSeparator(config, log)
	input, e := separator.Load(inputPath)
	if e != nil {
		reportError(e)
		return 1
	}

	if modeString == "" {
		modeString = prompt(stdin, "\nSplit a single track or all tracks?\n"+
			"  1 = Single selected track\n"+
			"  2 = All tracks (includes drum split)\n"+
			"Choose 1 or 2: ")
	}
	mode := midi.ParseMode(modeString)
	if (mode == midi.SingleTrack) && (track < 0) {
		answer := prompt(stdin, fmt.Sprintf("Enter the track number to "+
			"split (0-%d): ", len(input.Tracks)-1))
		track, e = strconv.Atoi(answer)
		if e != nil {
			fmt.Fprintf(os.Stderr, "Invalid track.\n")
			log.WithError(e).Error("Invalid track selected")
			return 1
		}
	}
	log.Infof("Mode: %s", mode)

	summary, e := separator.Split(input, mode, track)
	if e != nil {
		reportError(e)
		return 1
	}
	for label, e := range summary.Failed {
		log.WithError(e).Warnf("Not written: %s", label)
	}
	return 0
}

func main() {
	os.Exit(run())
}
