// This defines a command-line utility for gathering information about
// instruments used by MIDI files, and about how many voice files the splitter
// would produce for them.
package main

import (
	"flag"
	"fmt"
	"os"
	"path/filepath"
	"runtime"

	"github.com/pkg/errors"
	midi "github.com/yalue/midi_voice_split"
)

// Keeps track of our accumulated counts for each instrument.
type instrumentStats struct {
	// One value per MIDI instrument: the number of tracks whose guessed
	// program was that instrument.
	trackCounts [128]uint64
	// One value per MIDI instrument: the total number of voices found in the
	// tracks using that instrument.
	voiceCounts [128]uint64
	// Tracks with notes but no program change on their main channel.
	unknownTracks uint64
	// One value per percussion note: the number of times it was played on
	// channel 10 (index 9).
	percussionEventCounts [128]uint64
}

// Dumps the totals for each instrument that was used to stdout.
func (s *instrumentStats) printInfo() {
	for i := 0; i < 128; i++ {
		if s.trackCounts[i] == 0 {
			continue
		}
		fmt.Printf("Instrument %d (%s): %d tracks, %d voices.\n", i,
			midi.ProgramName(i), s.trackCounts[i], s.voiceCounts[i])
	}
	fmt.Printf("Tracks with an unknown instrument: %d\n", s.unknownTracks)
	for i := 0; i < 128; i++ {
		if s.percussionEventCounts[i] == 0 {
			continue
		}
		kind := "drum"
		if midi.IsCymbal(uint8(i)) {
			kind = "cymbal"
		}
		fmt.Printf("Percussion note %d (%s): %d events.\n", i, kind,
			s.percussionEventCounts[i])
	}
}

// Adds the tracks in the named MIDI file to the running totals. Returns an
// error if one occurs.
func (s *instrumentStats) addFile(name string) error {
	_, tracks, e := midi.LoadTracks(name)
	if e != nil {
		return errors.Wrap(e, "failed loading file")
	}
	infos := midi.ScanTrackInfo(tracks)
	for i, events := range tracks {
		notes, _ := midi.ExtractNoteSpans(events)
		if len(notes) == 0 {
			continue
		}
		if infos[i].HasChannel10 {
			for _, n := range notes {
				if n.Channel == midi.PercussionChannel {
					s.percussionEventCounts[n.Pitch]++
				}
			}
			continue
		}
		program := infos[i].ProgramGuess
		if program < 0 {
			s.unknownTracks++
			continue
		}
		s.trackCounts[program]++
		s.voiceCounts[program] += uint64(len(midi.AssignVoices(notes)))
	}
	return nil
}

func run() int {
	var baseDir string
	flag.StringVar(&baseDir, "dir", "", "The directory to scan for .mid files")
	flag.Parse()
	if baseDir == "" {
		fmt.Println("A base directory must be specified. " +
			"Run with -help for usage.")
		return 1
	}
	filenames, e := filepath.Glob(filepath.Join(baseDir, "*.mid"))
	if e != nil {
		fmt.Printf("Failed looking up MIDI files in dir %s: %s\n", baseDir, e)
		return 1
	}
	if len(filenames) <= 0 {
		fmt.Printf("Didn't find any MIDI (.mid) files in dir %s.\n", baseDir)
		return 1
	}
	stats := &instrumentStats{}
	for i, name := range filenames {
		fmt.Printf("Scanning file %d/%d: %s\n", i+1, len(filenames), name)
		e = stats.addFile(name)
		if e != nil {
			fmt.Printf("Failed analyzing file %s: %s\n", name, e)
		}
		runtime.GC()
	}
	stats.printInfo()
	return 0
}

func main() {
	os.Exit(run())
}
