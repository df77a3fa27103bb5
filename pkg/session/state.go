package session

import (
	"sync"
	"time"

	"github.com/google/uuid"
)

// maxActions bounds the action log.
const maxActions = 500

// Action is a notable session event (anomaly raised, step failure).
type Action struct {
	Time    time.Time `json:"time"`
	Message string    `json:"message"`
}

type eyeData struct {
	mu      sync.Mutex
	log     []GazeDirection
	counts  map[GazeDirection]int
	blinks  int
	samples int
}

type headData struct {
	mu      sync.Mutex
	counts  map[TiltDirection]int
	samples int
}

type audioData struct {
	mu          sync.Mutex
	noiseLevels []float64
	sum         float64
	peak        float64
	samples     int
	anomaly     bool
}

type meta struct {
	mu          sync.Mutex
	id          string
	startedAt   time.Time
	lastCycleAt time.Time
	cycles      int
	actions     []Action
}

// State is the aggregation record of a monitoring session.
// All growth is monotonic until Reset.
type State struct {
	eye   eyeData
	head  headData
	audio audioData
	meta  meta

	now func() time.Time
}

// New creates a fresh session state.
func New() *State {
	s := &State{now: time.Now}
	s.Reset()
	return s
}

// Reset reinitializes the state for a new session.
func (s *State) Reset() {
	s.eye.mu.Lock()
	s.eye.log = nil
	s.eye.counts = make(map[GazeDirection]int, len(GazeDirections))
	for _, d := range GazeDirections {
		s.eye.counts[d] = 0
	}
	s.eye.blinks = 0
	s.eye.samples = 0
	s.eye.mu.Unlock()

	s.head.mu.Lock()
	s.head.counts = make(map[TiltDirection]int, len(TiltDirections))
	for _, d := range TiltDirections {
		s.head.counts[d] = 0
	}
	s.head.samples = 0
	s.head.mu.Unlock()

	s.audio.mu.Lock()
	s.audio.noiseLevels = nil
	s.audio.sum = 0
	s.audio.peak = 0
	s.audio.samples = 0
	s.audio.anomaly = false
	s.audio.mu.Unlock()

	s.meta.mu.Lock()
	s.meta.id = uuid.NewString()
	s.meta.startedAt = s.now()
	s.meta.lastCycleAt = time.Time{}
	s.meta.cycles = 0
	s.meta.actions = nil
	s.meta.mu.Unlock()
}

// ID returns the session identifier.
func (s *State) ID() string {
	s.meta.mu.Lock()
	defer s.meta.mu.Unlock()
	return s.meta.id
}

// RecordGaze records one gaze sample. Labels outside the fixed set are
// recorded as unknown. blink increments the blink proxy counter.
func (s *State) RecordGaze(dir GazeDirection, blink bool) {
	if !dir.Valid() {
		dir = GazeUnknown
	}

	s.eye.mu.Lock()
	defer s.eye.mu.Unlock()

	s.eye.log = append(s.eye.log, dir)
	s.eye.samples++
	s.eye.counts[dir]++
	if blink {
		s.eye.blinks++
	}
}

// RecordTilt records one head pose sample. Labels outside the fixed set are
// recorded as neutral.
func (s *State) RecordTilt(dir TiltDirection) {
	if !dir.Valid() {
		dir = TiltNeutral
	}

	s.head.mu.Lock()
	defer s.head.mu.Unlock()

	s.head.samples++
	s.head.counts[dir]++
}

// RecordAudio records one audio sample. The whole update happens under the
// audio lock. Returns true if this sample raised the anomaly flag for the
// first time.
func (s *State) RecordAudio(rms float64, label AudioLabel) bool {
	if rms < 0 {
		rms = 0
	}

	s.audio.mu.Lock()
	defer s.audio.mu.Unlock()

	s.audio.noiseLevels = append(s.audio.noiseLevels, rms)
	s.audio.sum += rms
	s.audio.peak = max(s.audio.peak, rms)
	s.audio.samples++

	raised := false
	if label == AudioVoice && !s.audio.anomaly {
		s.audio.anomaly = true
		raised = true
	}
	return raised
}

// MarkCycle records the completion of one pipeline cycle.
func (s *State) MarkCycle() {
	s.meta.mu.Lock()
	defer s.meta.mu.Unlock()
	s.meta.cycles++
	s.meta.lastCycleAt = s.now()
}

// LogAction appends a message to the action log, dropping the oldest entry
// once the log is full.
func (s *State) LogAction(msg string) {
	s.meta.mu.Lock()
	defer s.meta.mu.Unlock()

	s.meta.actions = append(s.meta.actions, Action{Time: s.now(), Message: msg})
	if len(s.meta.actions) > maxActions {
		s.meta.actions = s.meta.actions[len(s.meta.actions)-maxActions:]
	}
}
