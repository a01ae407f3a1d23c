// This defines a command-line utility for viewing standard MIDI files (SMF,
// usually with a ".mid" extension), and for previewing how the voice splitter
// would divide up their tracks.
package main

import (
	"flag"
	"fmt"
	"os"

	midi "github.com/yalue/midi_voice_split"
)

// Prints how many voices or drum buckets the track would be split into.
func printSplitPreview(events []midi.RawEvent, info *midi.TrackInfo) {
	notes, channels := midi.ExtractNoteSpans(events)
	if info.HasChannel10 {
		drums, cymbals := midi.SplitDrums(notes)
		fmt.Printf("  %d drum notes, %d cymbal notes\n", len(drums),
			len(cymbals))
		return
	}
	voices := midi.AssignVoices(notes)
	fmt.Printf("  %d notes on %d channel(s), %d voice(s)\n", len(notes),
		channels.Count(), len(voices))
	for i, v := range voices {
		fmt.Printf("    Voice %d: %d notes\n", i+1, len(v))
	}
}

func run() int {
	var filename string
	var dumpEvents, preview bool
	flag.StringVar(&filename, "input_file", "", "The .mid file to open.")
	flag.BoolVar(&dumpEvents, "dump_events", false, "If set, print a list of "+
		"all events in the file to stdout.")
	flag.BoolVar(&preview, "preview_split", false, "If set, print the "+
		"number of voices each track would be split into.")
	flag.Parse()
	if filename == "" {
		fmt.Printf("Invalid arguments. Run with -help for more information.\n")
		return 1
	}
	inputFile, e := os.Open(filename)
	if e != nil {
		fmt.Printf("Couldn't open %s: %s\n", filename, e)
		return 1
	}
	defer inputFile.Close()
	smf, e := midi.ParseSMFFile(inputFile)
	if e != nil {
		fmt.Printf("Couldn't parse %s: %s\n", filename, e)
		return 1
	}
	tracks, e := smf.AbsoluteTracks()
	if e != nil {
		fmt.Printf("Couldn't read the events in %s: %s\n", filename, e)
		return 1
	}
	fmt.Printf("Parsed %s OK. Contains %d tracks. Time division: %s.\n",
		filename, len(smf.Tracks), smf.Division)
	meta := midi.CollectGlobalMeta(tracks)
	fmt.Printf("%d tempo, time signature or key signature events.\n",
		len(meta))
	infos := midi.ScanTrackInfo(tracks)
	for i, events := range tracks {
		info := &infos[i]
		name := ""
		if info.Name != "" {
			name = fmt.Sprintf(", name %q", info.Name)
		}
		fmt.Printf("Track %d (%d events%s): %s\n", i, info.EventCount, name,
			info.InstrumentLabel())
		if preview {
			printSplitPreview(events, info)
		}
		if dumpEvents {
			for j, ev := range events {
				fmt.Printf("  %d. Tick %d: %s\n", j, ev.Tick, ev.Data)
			}
		}
	}
	return 0
}

func main() {
	os.Exit(run())
}
