package midi

import (
	"testing"
)

func TestSplitDrums(t *testing.T) {
	notes, _ := ExtractNoteSpans([]RawEvent{
		on(0, 9, 36, 100),
		on(0, 9, 49, 100),
		on(0, 0, 49, 100),
		off(10, 9, 36),
		off(10, 9, 49),
		off(10, 0, 49),
	})
	drums, cymbals := SplitDrums(notes)
	if len(drums) != 1 || drums[0].Pitch != 36 {
		t.Logf("Expected the kick in the drums bucket, got %d drums\n",
			len(drums))
		t.FailNow()
	}
	if len(cymbals) != 1 || cymbals[0].Pitch != 49 ||
		cymbals[0].Channel != 9 {
		t.Logf("Expected the crash in the cymbals bucket, got %d cymbals\n",
			len(cymbals))
		t.FailNow()
	}
}

func TestSplitDrumsPartition(t *testing.T) {
	var notes []NoteSpan
	for pitch := 0; pitch < 128; pitch++ {
		notes = append(notes, NoteSpan{
			StartTick: uint32(pitch),
			EndTick:   uint32(pitch) + 1,
			Pitch:     uint8(pitch),
			Channel:   PercussionChannel,
		})
	}
	drums, cymbals := SplitDrums(notes)
	if len(drums)+len(cymbals) != len(notes) {
		t.Logf("Lost notes: %d drums + %d cymbals != %d\n", len(drums),
			len(cymbals), len(notes))
		t.FailNow()
	}
	if len(cymbals) != 10 {
		t.Logf("Expected 10 cymbal notes, got %d\n", len(cymbals))
		t.FailNow()
	}
	for _, n := range cymbals {
		if !IsCymbal(n.Pitch) {
			t.Logf("Note %d isn't a cymbal\n", n.Pitch)
			t.FailNow()
		}
	}
	for _, n := range drums {
		if IsCymbal(n.Pitch) {
			t.Logf("Cymbal %d ended up with the drums\n", n.Pitch)
			t.FailNow()
		}
	}
}
