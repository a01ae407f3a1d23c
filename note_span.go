package midi

// This file contains code for turning a track's note-on and note-off events
// into complete notes.

import (
	"fmt"
	"sort"
)

// A complete note: the time it starts and stops, along with its pitch,
// velocity and channel. EndTick is always greater than StartTick.
type NoteSpan struct {
	StartTick uint32
	EndTick   uint32
	Pitch     uint8
	Velocity  uint8
	Channel   uint8
}

func (n *NoteSpan) String() string {
	return fmt.Sprintf("Channel %d: %s, ticks %d-%d, velocity = %d",
		n.Channel, MIDINote(n.Pitch), n.StartTick, n.EndTick, n.Velocity)
}

// Returns true if the two notes' [StartTick, EndTick) ranges intersect.
func (n *NoteSpan) Overlaps(other *NoteSpan) bool {
	return (n.StartTick < other.EndTick) && (other.StartTick < n.EndTick)
}

// A set of the 16 MIDI channels.
type ChannelSet uint16

func (s *ChannelSet) Add(channel uint8) {
	*s |= 1 << (channel & 0xf)
}

func (s ChannelSet) Contains(channel uint8) bool {
	return (channel <= 0xf) && ((s & (1 << channel)) != 0)
}

// Returns the number of channels in the set.
func (s ChannelSet) Count() int {
	count := 0
	for i := uint8(0); i < 16; i++ {
		if s.Contains(i) {
			count++
		}
	}
	return count
}

// A note-on that hasn't been matched with a note-off yet.
type pendingNote struct {
	tick     uint32
	velocity uint8
}

// Pairs up the note-on and note-off events in a single track, which must be
// in order of non-decreasing tick. Notes waiting for a note-off are kept in a
// stack per channel and pitch, so a note-off closes the most recent matching
// note-on: if a pitch is struck again before it's released, the first note-off
// ends the second note. A note-off that arrives on the same tick as its
// note-on ends the note one tick later, so notes never have zero length.
// Note-offs without a note-on are ignored, and notes never turned off are
// dropped.
//
// The returned notes are sorted by start time, with higher pitches first for
// notes starting on the same tick. The returned ChannelSet contains every
// channel on which a note was started.
func ExtractNoteSpans(events []RawEvent) ([]NoteSpan, ChannelSet) {
	var channels ChannelSet
	pending := make(map[uint16][]pendingNote)
	var toReturn []NoteSpan
	for _, ev := range events {
		if channel, note, velocity, ok := ev.Data.NoteOn(); ok {
			channels.Add(channel)
			key := uint16(channel)<<8 | uint16(note)
			pending[key] = append(pending[key], pendingNote{
				tick:     ev.Tick,
				velocity: velocity,
			})
			continue
		}
		channel, note, _, ok := ev.Data.NoteOff()
		if !ok {
			continue
		}
		key := uint16(channel)<<8 | uint16(note)
		stack := pending[key]
		if len(stack) == 0 {
			continue
		}
		on := stack[len(stack)-1]
		pending[key] = stack[:len(stack)-1]
		endTick := ev.Tick
		if endTick <= on.tick {
			endTick = on.tick + 1
		}
		toReturn = append(toReturn, NoteSpan{
			StartTick: on.tick,
			EndTick:   endTick,
			Pitch:     note,
			Velocity:  on.velocity,
			Channel:   channel,
		})
	}
	sort.SliceStable(toReturn, func(i, j int) bool {
		a, b := &toReturn[i], &toReturn[j]
		if a.StartTick != b.StartTick {
			return a.StartTick < b.StartTick
		}
		return a.Pitch > b.Pitch
	})
	return toReturn, channels
}
