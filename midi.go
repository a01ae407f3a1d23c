// This package defines a library for reading and writing standard MIDI files,
// and for splitting their tracks into monophonic voices and drum buckets. The
// voice_split directory contains the command-line interface for the splitter;
// smf_tool and instrument_stats are smaller inspection utilities.
package midi

import (
	"bytes"
	"fmt"
	"io"
)

// Reads and returns the next byte from r.
func readByte(r io.Reader) (uint8, error) {
	tmp := []uint8{0}
	_, e := io.ReadFull(r, tmp)
	return tmp[0], e
}

// Reads a MIDI-format variable int (up to 0x0fffffff). Returns an error if one
// occurs, including if the int being read is larger than 0x0fffffff. Will
// return an io.EOF error if and only if the io.EOF occurs when attempting to
// read the first byte of the integer.
func ReadVariableInt(r io.Reader) (uint32, error) {
	toReturn := uint32(0)
	for i := 0; i < 4; i++ {
		b, e := readByte(r)
		if e != nil {
			if i == 0 {
				// Make sure io.EOF gets propagated up here.
				return 0, e
			}
			return 0, fmt.Errorf("Failed reading full integer: %s", e)
		}
		toReturn |= uint32(b & 0x7f)
		if (b & 0x80) == 0 {
			break
		}
		toReturn = toReturn << 7
		if i == 3 {
			return 0, fmt.Errorf("Invalid variable-length integer: highest " +
				"bit not clear on byte 4")
		}
	}
	return toReturn, nil
}

// Writes a MIDI-format variable int (up to 0x0fffffff) to the given output
// stream. Returns an error if one occurs, including if the integer is invalid.
func WriteVariableInt(w io.Writer, n uint32) error {
	if n > 0x0fffffff {
		return fmt.Errorf("Integer 0x%08x is too large for a MIDI int", n)
	}
	// Collect 7-bit groups starting from the least significant one, then emit
	// them in reverse with the continuation bit set on all but the last.
	var groups [4]byte
	count := 0
	for {
		groups[count] = uint8(n & 0x7f)
		count++
		n = n >> 7
		if n == 0 {
			break
		}
	}
	toWrite := make([]byte, 0, count)
	for i := count - 1; i >= 0; i-- {
		b := groups[i]
		if i != 0 {
			b |= 0x80
		}
		toWrite = append(toWrite, b)
	}
	_, e := w.Write(toWrite)
	return e
}

// A basic interface that all MIDI messages support.
type MIDIMessage interface {
	// A string representation of the event.
	String() string
	// Returns the underlying bytes for this message, as it would be written to
	// an SMF file. Requires a running status byte, which will be updated if
	// necessary.
	SMFData(runningStatus *byte) ([]byte, error)
}

// Holds a complete MIDI message exactly as it appears in an SMF track, with
// the status byte always present (running status is expanded when parsing).
// Meta-events are stored as 0xff, type, variable-length size, data. SysEx
// messages are stored as 0xf0 or 0xf7, variable-length size, data.
type RawMessage []byte

// Returns the number of data bytes following a channel message's status
// byte, or -1 if status isn't a channel message status.
func channelDataLength(status byte) int {
	switch status & 0xf0 {
	case 0x80, 0x90, 0xa0, 0xb0, 0xe0:
		return 2
	case 0xc0, 0xd0:
		return 1
	}
	return -1
}

// Writes the message, omitting the status byte of channel messages when it
// matches the running status. Meta and sysex messages clear running status.
func (m RawMessage) SMFData(runningStatus *byte) ([]byte, error) {
	if len(m) == 0 {
		return nil, fmt.Errorf("Can't write an empty MIDI message")
	}
	status := m[0]
	if (status < 0x80) || (status >= 0xf0) {
		if (status != 0xff) && (status != 0xf0) && (status != 0xf7) {
			return nil, fmt.Errorf("Status byte 0x%02x not supported in SMF "+
				"tracks", status)
		}
		*runningStatus = 0
		return []byte(m), nil
	}
	if len(m) != channelDataLength(status)+1 {
		return nil, fmt.Errorf("Bad length for channel message with status "+
			"0x%02x: %d bytes", status, len(m))
	}
	for _, b := range m[1:] {
		if b > 0x7f {
			return nil, fmt.Errorf("Invalid data byte 0x%02x in channel "+
				"message", b)
		}
	}
	if status == *runningStatus {
		return []byte(m[1:]), nil
	}
	*runningStatus = status
	return []byte(m), nil
}

// Returns a note-on message. Values are masked into their valid ranges.
func NoteOnMessage(channel, note, velocity uint8) RawMessage {
	return RawMessage{0x90 | (channel & 0xf), note & 0x7f, velocity & 0x7f}
}

// Returns a note-off message (status 0x8n, never a 0-velocity note-on).
func NoteOffMessage(channel, note, velocity uint8) RawMessage {
	return RawMessage{0x80 | (channel & 0xf), note & 0x7f, velocity & 0x7f}
}

// Returns a meta-event message with the given type and data.
func MetaMessage(eventType uint8, data []byte) (RawMessage, error) {
	var toReturn bytes.Buffer
	toReturn.WriteByte(0xff)
	toReturn.WriteByte(eventType)
	e := WriteVariableInt(&toReturn, uint32(len(data)))
	if e != nil {
		return nil, fmt.Errorf("Failed writing meta-event length: %s", e)
	}
	toReturn.Write(data)
	return RawMessage(toReturn.Bytes()), nil
}

// Returns an end-of-track meta-event.
func EndOfTrackMessage() RawMessage {
	return RawMessage{0xff, MetaEndOfTrack, 0}
}

// Reads the next system exclusive message from the given input stream. The
// first byte (F0 or F7) must have already been read, and must be passed in as
// the firstByte argument. A SysEx message may be split into packets, where
// only the last F7 packet ends with 0xf7, so no terminator is required.
func parseSystemExclusiveMessage(r io.Reader, firstByte byte) (RawMessage,
	error) {
	length, e := ReadVariableInt(r)
	if e != nil {
		return nil, fmt.Errorf("Couldn't read SysEx message length: %s", e)
	}
	data := make([]byte, length)
	_, e = io.ReadFull(r, data)
	if e != nil {
		return nil, fmt.Errorf("Couldn't read SysEx message data: %s", e)
	}
	var toReturn bytes.Buffer
	toReturn.WriteByte(firstByte)
	WriteVariableInt(&toReturn, length)
	toReturn.Write(data)
	return RawMessage(toReturn.Bytes()), nil
}

// Parses a meta-event message in an SMF file. Assumes the 0xff byte at the
// start of the message has already been consumed.
func parseMetaEvent(r io.Reader) (RawMessage, error) {
	eventType, e := readByte(r)
	if e != nil {
		return nil, fmt.Errorf("Failed reading meta-event type: %s", e)
	}
	eventLength, e := ReadVariableInt(r)
	if e != nil {
		return nil, fmt.Errorf("Failed reading meta-event length: %s", e)
	}
	eventData := make([]byte, eventLength)
	_, e = io.ReadFull(r, eventData)
	if e != nil {
		return nil, fmt.Errorf("Failed reading meta-event data: %s", e)
	}
	if (eventType == MetaEndOfTrack) && (eventLength != 0) {
		return nil, fmt.Errorf("Bad end-of-track meta-event length: %d",
			eventLength)
	}
	return MetaMessage(eventType, eventData)
}

func parseChannelMessage(r io.Reader, firstByte byte, runningStatus *byte) (
	RawMessage, error) {
	status := firstByte
	// Use the running status if the first byte is not a status byte.
	if (status & 0x80) == 0 {
		status = *runningStatus
	} else {
		// We got a new status byte, so update the running status.
		*runningStatus = status
	}
	// If "status" is not a status byte, then neither the first byte nor the
	// running status indicated a valid status.
	if (status & 0x80) == 0 {
		return nil, fmt.Errorf("Can't parse a channel message without a " +
			"valid status or running status")
	}
	dataLength := channelDataLength(status)
	if dataLength < 0 {
		return nil, fmt.Errorf("Status 0x%02x is not a channel message",
			status)
	}
	toReturn := make(RawMessage, 1, dataLength+1)
	toReturn[0] = status
	// If the first byte was a status byte, then it has already been processed,
	// otherwise we were using running status and the first byte is data.
	if firstByte <= 0x7f {
		toReturn = append(toReturn, firstByte)
	}
	for len(toReturn) < (dataLength + 1) {
		b, e := readByte(r)
		if e != nil {
			return nil, fmt.Errorf("Failed reading data byte %d of %s: %s",
				len(toReturn), channelTypeName(status), e)
		}
		if b > 0x7f {
			return nil, fmt.Errorf("Invalid data byte 0x%02x in %s", b,
				channelTypeName(status))
		}
		toReturn = append(toReturn, b)
	}
	return toReturn, nil
}

// Parses and returns the MIDI message at the start of r. Requires a running
// status byte that may be modified by calling this function. If a running
// status is not set, then runningStatus must be zero.
func ReadSMFMessage(r io.Reader, runningStatus *byte) (RawMessage, error) {
	firstByte, e := readByte(r)
	if e != nil {
		return nil, fmt.Errorf("Failed reading start of MIDI message: %s", e)
	}
	if (firstByte == 0xf0) || (firstByte == 0xf7) {
		// Sysex messages reset running status.
		*runningStatus = 0
		return parseSystemExclusiveMessage(r, firstByte)
	}
	if firstByte == 0xff {
		// Meta-events also reset running status.
		*runningStatus = 0
		return parseMetaEvent(r)
	}
	if (firstByte & 0xf0) == 0xf0 {
		// System common and real-time messages never appear in SMF tracks.
		return nil, fmt.Errorf("Status byte 0x%02x not supported in SMF "+
			"tracks", firstByte)
	}
	return parseChannelMessage(r, firstByte, runningStatus)
}
