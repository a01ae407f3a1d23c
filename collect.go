package midi

// This file contains code for gathering the events that every split file
// needs besides its notes: the song's tempo, time and key signatures, and the
// controller settings of the channels a track plays on.

import (
	"sort"
)

// Returns every tempo, time signature and key signature event from all of the
// tracks, sorted by time. Events on the same tick keep the order they were
// found in, and repeated events are all kept.
func CollectGlobalMeta(tracks [][]RawEvent) []RawEvent {
	var toReturn []RawEvent
	for _, track := range tracks {
		for _, ev := range track {
			if ev.Data.IsGlobalMeta() {
				toReturn = append(toReturn, ev)
			}
		}
	}
	sort.SliceStable(toReturn, func(i, j int) bool {
		return toReturn[i].Tick < toReturn[j].Tick
	})
	return toReturn
}

// Returns the control-change, program-change, channel-pressure and pitch-bend
// events from a track that are on one of the given channels. The events keep
// their original order and times.
func CollectAutomation(events []RawEvent, channels ChannelSet) []RawEvent {
	var toReturn []RawEvent
	for _, ev := range events {
		if !ev.Data.IsAutomation() {
			continue
		}
		channel, _ := ev.Data.Channel()
		if channels.Contains(channel) {
			toReturn = append(toReturn, ev)
		}
	}
	return toReturn
}

// Summarizes a single track of an input file.
type TrackInfo struct {
	// The track's position in the file, starting at 0.
	Index int
	// The number of events in the track, including the end-of-track event.
	EventCount int
	// Set if any channel message in the track is on channel 10 (index 9).
	HasChannel10 bool
	// The last program set on the channel with the most note-ons, or -1 if
	// that channel had no program change.
	ProgramGuess int
	// The text of the first track name meta-event, if there is one.
	Name string
}

// Returns a description of the track's instrument, for logging.
func (t *TrackInfo) InstrumentLabel() string {
	if t.HasChannel10 {
		return "Percussion (Ch10)"
	}
	return ProgramName(t.ProgramGuess)
}

// Returns a name suitable for the split files' names: the sanitized General
// MIDI name of the guessed program, or "Instrument" if it's unknown.
func (t *TrackInfo) InstrumentFileName() string {
	if t.ProgramGuess < 0 {
		return "Instrument"
	}
	return SanitizeFileName(ProgramName(t.ProgramGuess))
}

// Computes a TrackInfo for each of the given tracks.
func ScanTrackInfo(tracks [][]RawEvent) []TrackInfo {
	toReturn := make([]TrackInfo, len(tracks))
	for i, track := range tracks {
		toReturn[i] = scanTrack(i, track)
	}
	return toReturn
}

func scanTrack(index int, events []RawEvent) TrackInfo {
	toReturn := TrackInfo{
		Index:        index,
		EventCount:   len(events),
		ProgramGuess: -1,
	}
	haveName := false
	var lastProgram [16]int
	for i := range lastProgram {
		lastProgram[i] = -1
	}
	var noteOnCounts [16]int
	for _, ev := range events {
		if !haveName && ev.Data.IsMetaType(MetaTrackName) {
			if data, ok := ev.Data.MetaData(); ok {
				toReturn.Name = string(data)
				haveName = true
			}
			continue
		}
		channel, ok := ev.Data.Channel()
		if !ok {
			continue
		}
		if channel == PercussionChannel {
			toReturn.HasChannel10 = true
		}
		if _, program, ok := ev.Data.ProgramChange(); ok {
			lastProgram[channel] = int(program)
		}
		if _, _, _, ok := ev.Data.NoteOn(); ok {
			noteOnCounts[channel]++
		}
	}
	// Ties go to the lowest channel.
	bestChannel := -1
	bestCount := 0
	for c, count := range noteOnCounts {
		if count > bestCount {
			bestChannel = c
			bestCount = count
		}
	}
	if bestChannel >= 0 {
		toReturn.ProgramGuess = lastProgram[bestChannel]
	}
	return toReturn
}
