package midi

import (
	"bytes"
	"testing"
)

func TestNoteClassification(t *testing.T) {
	_, _, _, ok := RawMessage{0x93, 60, 0}.NoteOn()
	if ok {
		t.Logf("A note-on with velocity 0 was classified as a note-on\n")
		t.FailNow()
	}
	channel, note, velocity, ok := RawMessage{0x93, 60, 0}.NoteOff()
	if !ok || channel != 3 || note != 60 || velocity != 0 {
		t.Logf("A note-on with velocity 0 wasn't classified as a note-off\n")
		t.FailNow()
	}
	channel, note, velocity, ok = RawMessage{0x9f, 61, 90}.NoteOn()
	if !ok || channel != 15 || note != 61 || velocity != 90 {
		t.Logf("Got wrong note-on: %d %d %d %v\n", channel, note, velocity,
			ok)
		t.FailNow()
	}
	_, _, velocity, ok = RawMessage{0x80, 61, 33}.NoteOff()
	if !ok || velocity != 33 {
		t.Logf("Didn't classify a note-off correctly\n")
		t.FailNow()
	}
	// Too short for the claimed type, so not a match.
	_, _, _, ok = RawMessage{0x90, 61}.NoteOn()
	if ok {
		t.Logf("A truncated note-on was classified as a note-on\n")
		t.FailNow()
	}
	_, _, _, ok = RawMessage{0x80}.NoteOff()
	if ok {
		t.Logf("A truncated note-off was classified as a note-off\n")
		t.FailNow()
	}
	_, _, ok = RawMessage{0xc0}.ProgramChange()
	if ok {
		t.Logf("A truncated program change was classified as one\n")
		t.FailNow()
	}
	channel, program, ok := RawMessage{0xc9, 12}.ProgramChange()
	if !ok || channel != 9 || program != 12 {
		t.Logf("Didn't classify a program change correctly\n")
		t.FailNow()
	}
}

func TestChannelAndMetaClassification(t *testing.T) {
	automation := []RawMessage{
		{0xb1, 7, 100},
		{0xc1, 5},
		{0xd1, 64},
		{0xe1, 0, 64},
	}
	for _, m := range automation {
		if !m.IsAutomation() || !m.IsChannelMessage() {
			t.Logf("%s wasn't classified as automation\n", m)
			t.FailNow()
		}
	}
	notAutomation := []RawMessage{
		NoteOnMessage(1, 60, 100),
		{0xa1, 60, 10},
		EndOfTrackMessage(),
		{0xf0, 0x01, 0xf7},
		{},
	}
	for _, m := range notAutomation {
		if m.IsAutomation() {
			t.Logf("%s was classified as automation\n", m)
			t.FailNow()
		}
	}
	if (RawMessage{0xf0, 0x01, 0xf7}).IsChannelMessage() {
		t.Logf("A SysEx message was classified as a channel message\n")
		t.FailNow()
	}
	tempo := RawMessage{0xff, 0x51, 0x03, 0x07, 0xa1, 0x20}
	if !tempo.IsMeta() || !tempo.IsGlobalMeta() || tempo.IsEndOfTrack() {
		t.Logf("Tempo event misclassified\n")
		t.FailNow()
	}
	data, ok := tempo.MetaData()
	if !ok || !bytes.Equal(data, []byte{0x07, 0xa1, 0x20}) {
		t.Logf("Got wrong tempo payload: % x\n", data)
		t.FailNow()
	}
	name, e := MetaMessage(MetaTrackName, []byte("Piano"))
	if e != nil {
		t.Logf("Failed creating a track name: %s\n", e)
		t.FailNow()
	}
	if name.IsGlobalMeta() || !name.IsMetaType(MetaTrackName) {
		t.Logf("Track name misclassified\n")
		t.FailNow()
	}
	// A stated length that doesn't match the data.
	_, ok = RawMessage{0xff, 0x03, 0x05, 'a'}.MetaData()
	if ok {
		t.Logf("Got payload for a meta-event with a bad length\n")
		t.FailNow()
	}
	if _, ok = (RawMessage{0xff}).MetaType(); ok {
		t.Logf("Got a meta type from a truncated meta-event\n")
		t.FailNow()
	}
}
