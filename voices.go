package midi

// This file contains the code for splitting a track's notes into voices: lists
// of notes where no two notes sound at the same time.

import (
	"math"
	"sort"
)

// Splits notes into voices, where no voice contains two overlapping notes. The
// notes must be sorted the way ExtractNoteSpans sorts them.
//
// Notes are handled in groups sharing a start tick. A voice is free for a
// group if its latest note has ended by the group's start. Within a group,
// higher notes go first, each taking the earliest-created free voice, and a
// new voice is created whenever none are free. Finally, voices are ordered by
// their average pitch, highest first. The order of voices with the same
// average pitch is the order in which they were created.
//
// Returns nil if there are no notes.
func AssignVoices(notes []NoteSpan) [][]NoteSpan {
	var lanes [][]NoteSpan
	var free []int
	for start := 0; start < len(notes); {
		end := start + 1
		for (end < len(notes)) &&
			(notes[end].StartTick == notes[start].StartTick) {
			end++
		}
		group := make([]NoteSpan, end-start)
		copy(group, notes[start:end])
		sort.SliceStable(group, func(i, j int) bool {
			return group[i].Pitch > group[j].Pitch
		})
		tick := group[0].StartTick
		free = free[:0]
		for i, lane := range lanes {
			if lane[len(lane)-1].EndTick <= tick {
				free = append(free, i)
			}
		}
		for _, n := range group {
			if len(free) == 0 {
				lanes = append(lanes, []NoteSpan{n})
				continue
			}
			lanes[free[0]] = append(lanes[free[0]], n)
			free = free[1:]
		}
		start = end
	}
	sort.SliceStable(lanes, func(i, j int) bool {
		return averagePitch(lanes[i]) > averagePitch(lanes[j])
	})
	return lanes
}

// Returns the mean pitch of the notes, or negative infinity if there are none.
func averagePitch(notes []NoteSpan) float64 {
	if len(notes) == 0 {
		return math.Inf(-1)
	}
	sum := 0.0
	for i := range notes {
		sum += float64(notes[i].Pitch)
	}
	return sum / float64(len(notes))
}
