package midi

// This file contains the code that drives a voice separation run: loading the
// input, deciding which tracks to split, naming and writing the outputs.

import (
	"fmt"
	"os"
	"path/filepath"
	"strings"
	"unicode"

	"github.com/pkg/errors"
	"github.com/sirupsen/logrus"
)

// Errors that end a run before any output is written. Use errors.Cause to
// compare against these.
var (
	ErrInputNotFound  = errors.New("input file not found")
	ErrUnreadableMIDI = errors.New("failed to read MIDI")
	ErrInvalidTrack   = errors.New("invalid track")
)

// Selects which tracks a run splits.
type Mode int

const (
	// Split one chosen track, writing beside the input file.
	SingleTrack Mode = 1
	// Split every track, writing to a new directory beside the input file.
	AllTracks Mode = 2
)

// Converts the user's answer to a Mode: "1" selects a single track, and
// anything else splits all tracks.
func ParseMode(s string) Mode {
	if strings.TrimSpace(s) == "1" {
		return SingleTrack
	}
	return AllTracks
}

func (m Mode) String() string {
	if m == SingleTrack {
		return "single track"
	}
	return "all tracks"
}

// Keeps letters, digits, '-', '_' and spaces, replacing everything else with
// '_'. Leading and trailing spaces and underscores are removed. Returns
// "Instrument" if nothing is left.
func SanitizeFileName(s string) string {
	var b strings.Builder
	for _, c := range s {
		if (c < 0x80) && (unicode.IsLetter(c) || unicode.IsDigit(c) ||
			(c == '-') || (c == '_') || (c == ' ')) {
			b.WriteRune(c)
		} else {
			b.WriteByte('_')
		}
	}
	toReturn := strings.Trim(b.String(), " _")
	if toReturn == "" {
		return "Instrument"
	}
	return toReturn
}

// Reports what a run produced.
type Summary struct {
	OutputDir string
	// Paths of the files written successfully.
	Written []string
	// Labels of the outputs that couldn't be written, with their errors.
	Failed map[string]error
	// Indices of tracks skipped because they had no notes.
	SkippedTracks []int
}

func (s *Summary) fail(label string, e error) {
	if s.Failed == nil {
		s.Failed = make(map[string]error)
	}
	s.Failed[label] = e
}

// Splits MIDI files into voices and drum buckets.
type Separator struct {
	Config *Config
	Log    logrus.FieldLogger
}

func NewSeparator(config *Config, log logrus.FieldLogger) *Separator {
	if config == nil {
		config = DefaultConfig()
	}
	return &Separator{
		Config: config,
		Log:    log,
	}
}

// The parsed input of a run, shared read-only by every output.
type separation struct {
	*Separator
	division TimeDivision
	tracks   [][]RawEvent
	meta     []RawEvent
	baseName string
	outDir   string
	summary  *Summary
}

// Loads and parses the MIDI file at path, returning its tracks with absolute
// times.
func LoadTracks(path string) (TimeDivision, [][]RawEvent, error) {
	f, e := os.Open(path)
	if e != nil {
		if os.IsNotExist(e) {
			return 0, nil, errors.Wrap(ErrInputNotFound, path)
		}
		return 0, nil, errors.Wrapf(ErrUnreadableMIDI, "%s: %s", path, e)
	}
	defer f.Close()
	smf, e := ParseSMFFile(f)
	if e != nil {
		return 0, nil, errors.Wrapf(ErrUnreadableMIDI, "%s: %s", path, e)
	}
	tracks, e := smf.AbsoluteTracks()
	if e != nil {
		return 0, nil, errors.Wrapf(ErrUnreadableMIDI, "%s: %s", path, e)
	}
	return smf.Division, tracks, nil
}

// A MIDI file loaded for splitting, along with its per-track scan.
type Input struct {
	Path     string
	Division TimeDivision
	Tracks   [][]RawEvent
	Infos    []TrackInfo
}

// Loads the file at inputPath and logs a summary of each of its tracks.
// Failures are logged as well as returned.
func (s *Separator) Load(inputPath string) (*Input, error) {
	division, tracks, e := LoadTracks(inputPath)
	if e != nil {
		s.Log.WithError(e).Error("Failed to read input")
		return nil, e
	}
	s.Log.Infof("Input file: %s", inputPath)
	s.Log.Infof("Time division: %s", division)
	s.Log.Infof("Tracks: %d", len(tracks))
	infos := ScanTrackInfo(tracks)
	for i := range infos {
		info := &infos[i]
		entry := s.Log.WithFields(logrus.Fields{
			"track":  info.Index,
			"events": info.EventCount,
		})
		if info.Name != "" {
			entry = entry.WithField("name", info.Name)
		}
		entry.Info(info.InstrumentLabel())
	}
	return &Input{
		Path:     inputPath,
		Division: division,
		Tracks:   tracks,
		Infos:    infos,
	}, nil
}

// Splits the file at inputPath. In SingleTrack mode, track selects the track
// to split; it's ignored otherwise. Returns an error only for problems with
// the input. Outputs that fail to be written are logged and listed in the
// returned Summary, and don't stop the remaining outputs.
func (s *Separator) Run(inputPath string, mode Mode, track int) (*Summary,
	error) {
	input, e := s.Load(inputPath)
	if e != nil {
		return nil, e
	}
	return s.Split(input, mode, track)
}

// Splits an input returned by Load. Behaves like Run otherwise.
func (s *Separator) Split(input *Input, mode Mode, track int) (*Summary,
	error) {
	tracks, infos := input.Tracks, input.Infos
	if (mode == SingleTrack) && ((track < 0) || (track >= len(tracks))) {
		e := errors.Wrapf(ErrInvalidTrack, "track %d of %d", track,
			len(tracks))
		s.Log.WithError(e).Error("Invalid track selected")
		return nil, e
	}

	inputPath := input.Path
	dir := filepath.Dir(inputPath)
	baseName := strings.TrimSuffix(filepath.Base(inputPath),
		filepath.Ext(inputPath))
	outDir := dir
	if mode == AllTracks {
		outDir = filepath.Join(dir, baseName+s.Config.SplitFolderSuffix)
		s.Log.Infof("Output folder: %s", outDir)
	}
	run := &separation{
		Separator: s,
		division:  input.Division,
		tracks:    tracks,
		meta:      CollectGlobalMeta(tracks),
		baseName:  baseName,
		outDir:    outDir,
		summary:   &Summary{OutputDir: outDir},
	}
	s.Log.Infof("Global metas copied: %d", len(run.meta))

	if mode == SingleTrack {
		s.Log.Infof("Selected track: %d", track)
		run.splitTrack(&infos[track])
	} else {
		for i := range infos {
			if infos[i].EventCount <= 0 {
				continue
			}
			run.splitTrack(&infos[i])
		}
	}
	s.Log.WithFields(logrus.Fields{
		"written": len(run.summary.Written),
		"failed":  len(run.summary.Failed),
	}).Info("Done")
	return run.summary, nil
}

func (r *separation) splitTrack(info *TrackInfo) {
	log := r.Log.WithField("track", info.Index)
	if info.HasChannel10 {
		log.Info("Processing track (drums)")
		r.splitDrumTrack(info, log)
		return
	}
	log.Info("Processing track (inst)")
	notes, channels := ExtractNoteSpans(r.tracks[info.Index])
	log.WithField("channels", channels.Count()).Infof("Notes found: %d",
		len(notes))
	if len(notes) == 0 {
		log.Info("No notes, skip")
		r.summary.SkippedTracks = append(r.summary.SkippedTracks, info.Index)
		return
	}
	voices := AssignVoices(notes)
	log.Infof("Voices: %d", len(voices))
	automation := CollectAutomation(r.tracks[info.Index], channels)
	instrument := info.InstrumentFileName()
	for i, voice := range voices {
		label := fmt.Sprintf("voice%d", i+1)
		voiceLog := log.WithField("label", label)
		if len(voice) == 0 {
			voiceLog.Info("Empty voice, skip")
			continue
		}
		name := fmt.Sprintf("%s-track%d-%s-%s.mid", r.baseName, info.Index,
			instrument, label)
		r.writeOutput(voiceLog, label, name, automation, voice)
	}
}

func (r *separation) splitDrumTrack(info *TrackInfo, log logrus.FieldLogger) {
	notes, _ := ExtractNoteSpans(r.tracks[info.Index])
	drums, cymbals := SplitDrums(notes)
	log.WithFields(logrus.Fields{
		"drums":   len(drums),
		"cymbals": len(cymbals),
	}).Infof("Notes found: %d", len(notes))
	var channels ChannelSet
	channels.Add(PercussionChannel)
	automation := CollectAutomation(r.tracks[info.Index], channels)
	buckets := []struct {
		label string
		notes []NoteSpan
	}{
		{"drums", drums},
		{"cymbals", cymbals},
	}
	for _, bucket := range buckets {
		bucketLog := log.WithField("label", bucket.label)
		if len(bucket.notes) == 0 {
			bucketLog.Info("No notes, skip")
			continue
		}
		name := fmt.Sprintf("%s-track%d-%s.mid", r.baseName, info.Index,
			bucket.label)
		r.writeOutput(bucketLog, bucket.label, name, automation, bucket.notes)
	}
}

func (r *separation) writeOutput(log logrus.FieldLogger, label, name string,
	automation []RawEvent, notes []NoteSpan) {
	out := BuildOutputFile(r.division, r.meta, automation, notes,
		r.Config.NoteOffVelocity)
	track := out.Tracks[0]
	log.WithFields(logrus.Fields{
		"notes":      len(notes),
		"automation": len(automation),
		"events":     len(track.Messages),
	}).Debug("Built output track")
	path := filepath.Join(r.outDir, name)
	e := WriteOutputFile(path, out)
	if e != nil {
		log.WithError(e).Error("Write failed, continuing")
		r.summary.fail(fmt.Sprintf("%s (%s)", label, name), e)
		return
	}
	log.Infof("Wrote: %s", path)
	r.summary.Written = append(r.summary.Written, path)
}
