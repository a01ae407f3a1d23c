package midi

import (
	"bytes"
	"testing"
)

// This SMF file is defined in the midi specification, in the section on SMF
// files.
var specExampleFile = []byte{
	// MThd
	0x4d, 0x54, 0x68, 0x64,
	// Chunk length
	0, 0, 0, 6,
	// Format 1
	0, 1,
	// Four tracks,
	0, 4,
	// 96 ticks per quarter note
	0, 0x60,
	// Track chunk for the time signature/tempo track, starting with the
	// MTrk:
	0x4d, 0x54, 0x72, 0x6b,
	// Chunk length:
	0, 0, 0, 0x14,
	// Time signature, with delta-time
	0, 0xff, 0x58, 4, 4, 2, 0x18, 8,
	// Tempo
	0, 0xff, 0x51, 3, 7, 0xa1, 0x20,
	// End of track
	0x83, 0, 0xff, 0x2f, 0,
	// The first music track, starting with MTrk
	0x4d, 0x54, 0x72, 0x6b,
	// The chunk length
	0, 0, 0, 0x10,
	// Change program for channel 0 to 5.
	0, 0xc0, 5,
	// Note 0x4c on, at time delta, setting running status.
	0x81, 0x40, 0x90, 0x4c, 0x20,
	// Note off, using running status for note on, but velocity=0
	0x81, 0x40, 0x4c, 0,
	// End of track.
	0, 0xff, 0x2f, 0,
	// Track chunk for second music track, starting with MTrk:
	0x4d, 0x54, 0x72, 0x6b,
	// Chunk length
	0, 0, 0, 0xf,
	// Program change for channel 1, to 0x2e
	0, 0xc1, 0x2e,
	// Note 0x43 on
	0x60, 0x91, 0x43, 0x40,
	// Note 0x43 off, using running status.
	0x82, 0x20, 0x43, 0,
	// End of track
	0, 0xff, 0x2f, 0,
	// The third track, starting with MTrk:
	0x4d, 0x54, 0x72, 0x6b,
	// Chunk length
	0, 0, 0, 0x15,
	// Program change for channel 2 to 0x46.
	0, 0xc2, 0x46,
	// Note 0x30 on
	0, 0x92, 0x30, 0x60,
	// Note 0x3c on, using running status
	0, 0x3c, 0x60,
	// Note 0x30 off, using running status
	0x83, 0, 0x30, 0,
	// Note 0x3c off, using running status
	0, 0x3c, 0,
	// End of track
	0, 0xff, 0x2f, 0,
}

func TestParseSMFFile(t *testing.T) {
	r := bytes.NewReader(specExampleFile)
	smfFile, e := ParseSMFFile(r)
	if e != nil {
		t.Logf("Failed parsing SMF file: %s\n", e)
		t.FailNow()
	}
	if len(smfFile.Tracks) != 4 {
		t.Logf("Expected 4 SMF file tracks, got %d\n", len(smfFile.Tracks))
		t.FailNow()
	}
	if smfFile.Division.TicksPerQuarterNote() != 96 {
		t.Logf("Got wrong time division: %s\n", smfFile.Division)
		t.FailNow()
	}
	for trackNumber, track := range smfFile.Tracks {
		t.Logf("Track %d, %d messages:\n", trackNumber, len(track.Messages))
		for i := range track.Messages {
			t.Logf("  %d. Time-delta %d: %s\n", i+1, track.TimeDeltas[i],
				track.Messages[i].String())
		}
	}
	// This simple file should match exactly when we re-write it, since it uses
	// running status and doesn't do anything odd.
	var outputFile bytes.Buffer
	e = smfFile.WriteToFile(&outputFile)
	if e != nil {
		t.Logf("Failed writing SMF file: %s\n", e)
		t.FailNow()
	}
	outputData := outputFile.Bytes()
	if len(outputData) != len(specExampleFile) {
		t.Logf("Got incorrect output file length: expected %d, got %d\n",
			len(specExampleFile), len(outputData))
		t.FailNow()
	}
	for i := range outputData {
		if outputData[i] != specExampleFile[i] {
			t.Logf("Written data doesn't match original file at byte %d: "+
				"got 0x%02x, expected 0x%02x\n", i, outputData[i],
				specExampleFile[i])
			t.FailNow()
		}
	}
}

func TestAbsoluteEvents(t *testing.T) {
	smfFile, e := ParseSMFFile(bytes.NewReader(specExampleFile))
	if e != nil {
		t.Logf("Failed parsing SMF file: %s\n", e)
		t.FailNow()
	}
	tracks, e := smfFile.AbsoluteTracks()
	if e != nil {
		t.Logf("Failed getting absolute events: %s\n", e)
		t.FailNow()
	}
	// The third track's note-ons are both at 0, and both note-offs are 3
	// quarter notes later.
	expectedTicks := []uint32{0, 0, 0, 384, 384, 384}
	track := tracks[3]
	if len(track) != len(expectedTicks) {
		t.Logf("Expected %d events in track 3, got %d\n", len(expectedTicks),
			len(track))
		t.FailNow()
	}
	for i, ev := range track {
		if ev.Tick != expectedTicks[i] {
			t.Logf("Event %d (%s) at tick %d, expected %d\n", i, ev.Data,
				ev.Tick, expectedTicks[i])
			t.FailNow()
		}
	}
	// Running status must have been expanded into a complete message.
	if !bytes.Equal(track[2].Data, RawMessage{0x92, 0x3c, 0x60}) {
		t.Logf("Got wrong bytes for running-status note: % x\n",
			[]byte(track[2].Data))
		t.FailNow()
	}
}

func TestParseSkipsUnknownChunks(t *testing.T) {
	data := []byte{
		0x4d, 0x54, 0x68, 0x64, 0, 0, 0, 6, 0, 0, 0, 1, 0, 0x60,
		// An unknown chunk that must be skipped.
		'X', 'Y', 'Z', 'W', 0, 0, 0, 3, 1, 2, 3,
		0x4d, 0x54, 0x72, 0x6b, 0, 0, 0, 4,
		0, 0xff, 0x2f, 0,
	}
	smfFile, e := ParseSMFFile(bytes.NewReader(data))
	if e != nil {
		t.Logf("Failed parsing file with an unknown chunk: %s\n", e)
		t.FailNow()
	}
	if len(smfFile.Tracks) != 1 || len(smfFile.Tracks[0].Messages) != 1 {
		t.Logf("Got wrong content after skipping the unknown chunk\n")
		t.FailNow()
	}
	data[0] = 'X'
	_, e = ParseSMFFile(bytes.NewReader(data))
	if e == nil {
		t.Logf("Didn't get an error for a bad header chunk type\n")
		t.FailNow()
	}
}

func TestSysExPacketsRoundTrip(t *testing.T) {
	data := []byte{
		0x4d, 0x54, 0x68, 0x64, 0, 0, 0, 6, 0, 0, 0, 1, 0, 0x60,
		0x4d, 0x54, 0x72, 0x6b, 0, 0, 0, 0x16,
		// First SysEx packet, without a terminating 0xf7
		0, 0xf0, 0x03, 0x43, 0x12, 0x00,
		// Continuation packet
		0x10, 0xf7, 0x02, 0x07, 0xf7,
		0, 0x90, 0x3c, 0x40,
		0x60, 0x3c, 0,
		0, 0xff, 0x2f, 0,
	}
	smfFile, e := ParseSMFFile(bytes.NewReader(data))
	if e != nil {
		t.Logf("Failed parsing file with SysEx packets: %s\n", e)
		t.FailNow()
	}
	tracks, e := smfFile.AbsoluteTracks()
	if e != nil {
		t.Logf("Failed getting absolute events: %s\n", e)
		t.FailNow()
	}
	if !bytes.Equal(tracks[0][1].Data, RawMessage{0xf7, 0x02, 0x07, 0xf7}) ||
		(tracks[0][1].Tick != 0x10) {
		t.Logf("Got wrong continuation packet: % x at %d\n",
			[]byte(tracks[0][1].Data), tracks[0][1].Tick)
		t.FailNow()
	}
	notes, _ := ExtractNoteSpans(tracks[0])
	if len(notes) != 1 || notes[0].StartTick != 0x10 {
		t.Logf("The note after the SysEx packets wasn't read: %v\n", notes)
		t.FailNow()
	}
	var output bytes.Buffer
	e = smfFile.WriteToFile(&output)
	if e != nil {
		t.Logf("Failed writing file with SysEx packets: %s\n", e)
		t.FailNow()
	}
	if !bytes.Equal(output.Bytes(), data) {
		t.Logf("Written file differs from the input: % x\n", output.Bytes())
		t.FailNow()
	}
}

// A MIDIMessage that isn't stored as raw bytes.
type textMessage string

func (m textMessage) String() string {
	return string(m)
}

func (m textMessage) SMFData(runningStatus *byte) ([]byte, error) {
	*runningStatus = 0
	return append([]byte{0xff, 0x01, byte(len(m))}, []byte(m)...), nil
}

func TestAbsoluteEventsRejectsOtherMessages(t *testing.T) {
	track := &SMFTrack{
		Messages:   []MIDIMessage{textMessage("x"), EndOfTrackMessage()},
		TimeDeltas: []uint32{0, 0},
	}
	_, e := track.AbsoluteEvents()
	if e == nil {
		t.Logf("Didn't get an error for a message that isn't raw bytes\n")
		t.FailNow()
	}
	t.Logf("Got expected error: %s\n", e)
}

func TestNewSMFTrackEndOfTrack(t *testing.T) {
	// Out of order, with two end-of-track events, neither of which is last.
	events := []RawEvent{
		{Tick: 50, Data: NoteOffMessage(0, 60, 0x40)},
		{Tick: 10, Data: EndOfTrackMessage()},
		{Tick: 0, Data: NoteOnMessage(0, 60, 100)},
		{Tick: 20, Data: EndOfTrackMessage()},
		{Tick: 0, Data: RawMessage{0xb0, 7, 100}},
	}
	track := NewSMFTrack(events)
	abs, e := track.AbsoluteEvents()
	if e != nil {
		t.Logf("Failed getting absolute events: %s\n", e)
		t.FailNow()
	}
	if len(abs) != 4 {
		t.Logf("Expected 4 events, got %d\n", len(abs))
		t.FailNow()
	}
	// Events on the same tick keep their order.
	if !bytes.Equal(abs[0].Data, NoteOnMessage(0, 60, 100)) ||
		!bytes.Equal(abs[1].Data, RawMessage{0xb0, 7, 100}) {
		t.Logf("Events at tick 0 were reordered: %s, %s\n", abs[0].Data,
			abs[1].Data)
		t.FailNow()
	}
	last := abs[len(abs)-1]
	if !last.Data.IsEndOfTrack() || last.Tick != 50 {
		t.Logf("Expected end of track at tick 50, got %s at %d\n", last.Data,
			last.Tick)
		t.FailNow()
	}

	// Without any end-of-track event, one is added after the last event.
	track = NewSMFTrack(events[:1])
	if len(track.Messages) != 2 || track.TimeDeltas[1] != 1 {
		t.Logf("Didn't get a synthesized end of track one tick later\n")
		t.FailNow()
	}
	if !track.Messages[1].(RawMessage).IsEndOfTrack() {
		t.Logf("The last message isn't an end of track: %s\n",
			track.Messages[1])
		t.FailNow()
	}
}
