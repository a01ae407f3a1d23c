package midi

// This file contains human-readable descriptions of raw MIDI messages, used by
// smf_tool and by the splitter's log output.

import (
	"fmt"
)

// Meta-event types this package cares about.
const (
	MetaSequenceNumber = 0x00
	MetaTrackName      = 0x03
	MetaChannelPrefix  = 0x20
	MetaEndOfTrack     = 0x2f
	MetaSetTempo       = 0x51
	MetaSMPTEOffset    = 0x54
	MetaTimeSignature  = 0x58
	MetaKeySignature   = 0x59
)

// Holds a MIDI note value. The values corresponding to keys on a standard
// keyboard are 21 (A0) through 108 (C8).
type MIDINote uint8

func (n MIDINote) String() string {
	if (n < 21) || (n > 108) {
		return fmt.Sprintf("MIDI note %d", uint8(n))
	}
	notes := [...]string{"A", "A#", "B", "C", "C#", "D", "D#", "E", "F",
		"F#", "G", "G#"}
	index := (int(n) - 21) % 12
	octave := (int(n) - 12) / 12
	return fmt.Sprintf("%s%d", notes[index], octave)
}

func channelTypeName(status byte) string {
	switch status & 0xf0 {
	case 0x80:
		return "note-off"
	case 0x90:
		return "note-on"
	case 0xa0:
		return "aftertouch"
	case 0xb0:
		return "control-change"
	case 0xc0:
		return "program-change"
	case 0xd0:
		return "channel-pressure"
	case 0xe0:
		return "pitch-bend"
	}
	return fmt.Sprintf("status 0x%02x", status)
}

func (m RawMessage) String() string {
	if len(m) == 0 {
		return "Empty message"
	}
	switch {
	case m[0] == 0xff:
		return describeMetaEvent(m)
	case (m[0] == 0xf0) || (m[0] == 0xf7):
		return fmt.Sprintf("System exclusive message. %d bytes: % x.",
			len(m)-1, []byte(m[1:]))
	case (m[0] >= 0x80) && (m[0] <= 0xef):
		return describeChannelMessage(m)
	}
	return fmt.Sprintf("Unknown message: % x", []byte(m))
}

func describeChannelMessage(m RawMessage) string {
	if len(m) != channelDataLength(m[0])+1 {
		return fmt.Sprintf("Malformed %s message: % x",
			channelTypeName(m[0]), []byte(m))
	}
	c := fmt.Sprintf("Channel %d: ", m[0]&0xf)
	switch m[0] & 0xf0 {
	case 0x80:
		return c + fmt.Sprintf("%s off, velocity = %d", MIDINote(m[1]), m[2])
	case 0x90:
		return c + fmt.Sprintf("%s on, velocity = %d", MIDINote(m[1]), m[2])
	case 0xa0:
		return c + fmt.Sprintf("%s aftertouch pressure %d", MIDINote(m[1]),
			m[2])
	case 0xb0:
		return c + describeControlChange(m[1], m[2])
	case 0xc0:
		name := "unknown"
		if int(m[1]) < len(GMInstrumentNames) {
			name = GMInstrumentNames[m[1]]
		}
		return c + fmt.Sprintf("program change to %d (%s)", m[1], name)
	case 0xd0:
		return c + fmt.Sprintf("Set channel pressure to %d", m[1])
	}
	value := uint16(m[2])<<7 | uint16(m[1])
	return c + fmt.Sprintf("Pitch bend value %d", value)
}

// Controllers 120 through 127 are channel-mode messages.
func describeControlChange(controller, value uint8) string {
	switch controller {
	case 120:
		return fmt.Sprintf("All sound off (v = %d)", value)
	case 121:
		return fmt.Sprintf("Reset all controllers (v = %d)", value)
	case 122:
		tmp := "off"
		if value == 127 {
			tmp = "on"
		} else if value != 0 {
			tmp = fmt.Sprintf("unknown setting %d", value)
		}
		return fmt.Sprintf("Local control %s", tmp)
	case 123:
		return fmt.Sprintf("All notes off (v = %d)", value)
	case 124:
		return fmt.Sprintf("Omni mode off (v = %d)", value)
	case 125:
		return fmt.Sprintf("Omni mode on (v = %d)", value)
	case 126:
		return fmt.Sprintf("Mono mode on (v = %d)", value)
	case 127:
		return fmt.Sprintf("Poly mode on (v = %d)", value)
	}
	return fmt.Sprintf("Control change, controller number %d, value %d",
		controller, value)
}

func describeMetaEvent(m RawMessage) string {
	eventType, ok := m.MetaType()
	if !ok {
		return fmt.Sprintf("Malformed meta-event: % x", []byte(m))
	}
	data, ok := m.MetaData()
	if !ok {
		return fmt.Sprintf("Truncated meta-event of type 0x%02x", eventType)
	}
	switch {
	case (eventType == MetaSequenceNumber) && (len(data) == 2):
		return fmt.Sprintf("Sequence number: %d", uint16(data[0])<<8|
			uint16(data[1]))
	case (eventType >= 0x01) && (eventType <= 0x0f):
		return describeTextEvent(eventType, data)
	case (eventType == MetaChannelPrefix) && (len(data) == 1):
		return fmt.Sprintf("Channel prefix: %d", data[0])
	case eventType == MetaEndOfTrack:
		return "End of track"
	case (eventType == MetaSetTempo) && (len(data) == 3):
		t := uint32(data[0])<<16 | uint32(data[1])<<8 | uint32(data[2])
		bpm := float32(0)
		if t != 0 {
			bpm = 60000000.0 / float32(t)
		}
		return fmt.Sprintf("Set tempo to %d us/quarter note (%f BPM)", t,
			bpm)
	case (eventType == MetaSMPTEOffset) && (len(data) == 5):
		// The fractional frames specifies hundredths of a frame.
		frame := float32(data[3]) + float32(data[4])/100.0
		return fmt.Sprintf("SMPTE offset: %d:%d:%d, %f frames", data[0],
			data[1], data[2], frame)
	case (eventType == MetaTimeSignature) && (len(data) == 4):
		base := uint32(1) << uint32(data[1]&0x1f)
		return fmt.Sprintf("Time signature: %d/%d time, %d clocks per "+
			"metronome tick, %d 32nd notes per notated quarter note", data[0],
			base, data[2], data[3])
	case (eventType == MetaKeySignature) && (len(data) == 2):
		return describeKeySignature(int8(data[0]), data[1] == 1)
	}
	return fmt.Sprintf("Meta-event type 0x%02x, size: %d bytes", eventType,
		len(data))
}

func describeTextEvent(eventType uint8, data []byte) string {
	var name string
	switch eventType {
	case 0x1:
		name = "Generic text event"
	case 0x2:
		name = "Copyright notice"
	case 0x3:
		name = "Track/sequence name"
	case 0x4:
		name = "Instrument name"
	case 0x5:
		name = "Lyric"
	case 0x6:
		name = "Marker"
	case 0x7:
		name = "Cue point"
	default:
		name = fmt.Sprintf("Unknown text event type %d", eventType)
	}
	return fmt.Sprintf("%s: %s", name, data)
}

// Negative counts are flats, positive counts are sharps.
func describeKeySignature(sf int8, isMinor bool) string {
	tmp := "sharps or flats"
	if sf < 0 {
		sf = -sf
		tmp = "flat"
	} else if sf > 0 {
		tmp = "sharp"
	}
	if sf > 1 {
		tmp += "s"
	}
	mm := "major"
	if isMinor {
		mm = "minor"
	}
	return fmt.Sprintf("Key signature: %d %s, %s key", sf, tmp, mm)
}
