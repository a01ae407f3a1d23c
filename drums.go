package midi

// The channel used for percussion by General MIDI ("channel 10").
const PercussionChannel = 9

// General MIDI percussion notes played on cymbals: hi-hats, crashes, rides,
// the Chinese cymbal and the splash.
var cymbalNotes = map[uint8]bool{
	42: true,
	44: true,
	46: true,
	49: true,
	51: true,
	52: true,
	53: true,
	55: true,
	57: true,
	59: true,
}

// Returns true if the percussion note is one of the General MIDI cymbals.
func IsCymbal(pitch uint8) bool {
	return cymbalNotes[pitch]
}

// Splits the percussion notes from a list of notes into cymbals and every
// other drum. Notes on channels other than the percussion channel are left
// out. The notes keep their relative order, and are not split into voices.
func SplitDrums(notes []NoteSpan) (drums, cymbals []NoteSpan) {
	for _, n := range notes {
		if n.Channel != PercussionChannel {
			continue
		}
		if IsCymbal(n.Pitch) {
			cymbals = append(cymbals, n)
		} else {
			drums = append(drums, n)
		}
	}
	return drums, cymbals
}
