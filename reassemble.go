package midi

// This file contains code for building the split output files.

import (
	"bufio"
	"os"
	"path/filepath"

	"github.com/pkg/errors"
)

// The note-off velocity used when none is configured.
const DefaultNoteOffVelocity = 0x40

// Builds a single-track file containing the global meta-events, the channel
// automation and a note-on/note-off pair for each note, in that order of
// insertion. The track is sorted by time, and ends with an end-of-track event
// one tick after its latest event.
func BuildOutputFile(division TimeDivision, meta, automation []RawEvent,
	notes []NoteSpan, noteOffVelocity uint8) *SMFFile {
	events := make([]RawEvent, 0, len(meta)+len(automation)+2*len(notes)+1)
	lastTick := uint32(0)
	add := func(tick uint32, data RawMessage) {
		events = append(events, RawEvent{
			Tick: tick,
			Data: data,
		})
		if tick > lastTick {
			lastTick = tick
		}
	}
	for _, ev := range meta {
		add(ev.Tick, ev.Data)
	}
	for _, ev := range automation {
		add(ev.Tick, ev.Data)
	}
	for _, n := range notes {
		add(n.StartTick, NoteOnMessage(n.Channel, n.Pitch, n.Velocity))
		add(n.EndTick, NoteOffMessage(n.Channel, n.Pitch, noteOffVelocity))
	}
	add(lastTick+1, EndOfTrackMessage())
	return &SMFFile{
		Division: division,
		Tracks:   []*SMFTrack{NewSMFTrack(events)},
	}
}

// Writes f to the given path, creating its directory if necessary.
func WriteOutputFile(path string, f *SMFFile) error {
	e := os.MkdirAll(filepath.Dir(path), 0755)
	if e != nil {
		return errors.Wrapf(e, "couldn't create directory for %s", path)
	}
	file, e := os.Create(path)
	if e != nil {
		return errors.Wrapf(e, "couldn't create %s", path)
	}
	w := bufio.NewWriter(file)
	e = f.WriteToFile(w)
	if e == nil {
		e = w.Flush()
	}
	closeErr := file.Close()
	if e != nil {
		return errors.Wrapf(e, "failed writing %s", path)
	}
	if closeErr != nil {
		return errors.Wrapf(closeErr, "failed closing %s", path)
	}
	return nil
}
