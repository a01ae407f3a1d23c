package midi

// This file contains predicates for classifying raw MIDI messages. None of
// them modify the message, and a message too short for the type it claims to
// be simply doesn't match.

import (
	"bytes"
)

// A message along with the absolute time, in ticks, at which it occurs.
type RawEvent struct {
	Tick uint32
	Data RawMessage
}

// Returns true if the message is a channel-voice message (status 0x80 through
// 0xef).
func (m RawMessage) IsChannelMessage() bool {
	return (len(m) > 0) && (m[0] >= 0x80) && (m[0] <= 0xef)
}

// Returns the high nibble of the status byte, or 0 for an empty message.
func (m RawMessage) StatusType() uint8 {
	if len(m) == 0 {
		return 0
	}
	return m[0] & 0xf0
}

// Returns the channel of a channel-voice message. The second return value is
// false if this isn't a channel-voice message.
func (m RawMessage) Channel() (uint8, bool) {
	if !m.IsChannelMessage() {
		return 0, false
	}
	return m[0] & 0xf, true
}

// Returns the channel, note and velocity of a note-on message with a nonzero
// velocity.
func (m RawMessage) NoteOn() (channel, note, velocity uint8, ok bool) {
	if (len(m) < 3) || ((m[0] & 0xf0) != 0x90) || (m[2] == 0) {
		return 0, 0, 0, false
	}
	return m[0] & 0xf, m[1], m[2], true
}

// Returns the channel, note and velocity of a note-off message. A note-on with
// a velocity of 0 counts as a note-off, with a velocity of 0.
func (m RawMessage) NoteOff() (channel, note, velocity uint8, ok bool) {
	if len(m) < 3 {
		return 0, 0, 0, false
	}
	switch m[0] & 0xf0 {
	case 0x80:
		return m[0] & 0xf, m[1], m[2], true
	case 0x90:
		if m[2] == 0 {
			return m[0] & 0xf, m[1], 0, true
		}
	}
	return 0, 0, 0, false
}

// Returns the channel and program number of a program-change message.
func (m RawMessage) ProgramChange() (channel, program uint8, ok bool) {
	if (len(m) < 2) || ((m[0] & 0xf0) != 0xc0) {
		return 0, 0, false
	}
	return m[0] & 0xf, m[1], true
}

// Returns true for the channel messages that make up a channel's "setup":
// control changes, program changes, channel pressure and pitch bends.
func (m RawMessage) IsAutomation() bool {
	if !m.IsChannelMessage() {
		return false
	}
	switch m[0] & 0xf0 {
	case 0xb0, 0xc0, 0xd0, 0xe0:
		return true
	}
	return false
}

// Returns true if the message is a meta-event.
func (m RawMessage) IsMeta() bool {
	return (len(m) > 0) && (m[0] == 0xff)
}

// Returns the meta-event type byte.
func (m RawMessage) MetaType() (uint8, bool) {
	if (len(m) < 2) || (m[0] != 0xff) {
		return 0, false
	}
	return m[1], true
}

// Returns the payload of a meta-event, without its type or length. Returns
// false if the message isn't a meta-event or its stated length doesn't match
// the available data.
func (m RawMessage) MetaData() ([]byte, bool) {
	if _, ok := m.MetaType(); !ok {
		return nil, false
	}
	r := bytes.NewReader(m[2:])
	length, e := ReadVariableInt(r)
	if e != nil {
		return nil, false
	}
	start := len(m) - r.Len()
	if uint32(len(m)-start) != length {
		return nil, false
	}
	return m[start:], true
}

// Returns true if the message is a meta-event of the given type.
func (m RawMessage) IsMetaType(eventType uint8) bool {
	t, ok := m.MetaType()
	return ok && (t == eventType)
}

// Returns true if the message is an end-of-track meta-event.
func (m RawMessage) IsEndOfTrack() bool {
	return m.IsMetaType(MetaEndOfTrack)
}

// Returns true for the meta-events that describe the timing and key of the
// whole song: tempo, time signature and key signature.
func (m RawMessage) IsGlobalMeta() bool {
	t, ok := m.MetaType()
	if !ok {
		return false
	}
	return (t == MetaSetTempo) || (t == MetaTimeSignature) ||
		(t == MetaKeySignature)
}
