// Package coordinator owns one interactive translation session.
//
// A single goroutine (Run) holds the session state and processes events:
// user actions posted by a view and completions posted by worker goroutines.
// Nothing else mutates state. Views observe immutable Snapshots through
// Updates, which always holds the latest one.
//
// Detect, translate and speak requests each run on their own goroutine,
// bounded by a weighted semaphore. Completions carry the sequence number
// they were issued with; anything issued before the most recent edit, swap
// or clear is dropped on arrival.
package coordinator

import (
	"context"
	"log/slog"
	"strings"
	"sync"
	"time"

	"golang.org/x/sync/semaphore"

	"github.com/nadzzz/parley/internal/config"
	"github.com/nadzzz/parley/internal/detector"
	"github.com/nadzzz/parley/internal/language"
	"github.com/nadzzz/parley/internal/message"
)

// Status and label texts shown to the user.
const (
	LabelPlaceholder = "Detecting language..."
	LabelUnknown     = "Unknown"

	StatusReady          = "Ready"
	StatusDetecting      = "Detecting language..."
	StatusDetected       = "Language detected"
	StatusNotDetected    = "Could not detect language"
	StatusTranslating    = "Translating..."
	StatusTranslated     = "Translation complete"
	StatusTranslateError = "Translation failed"
	StatusAudioRequested = "Playing audio..."
	StatusAudioPlaying   = "Audio playing..."
	StatusAudioFailed    = "Audio playback failed"
)

// Capabilities is what a view may ask of a session.
type Capabilities interface {
	DetectLanguage(text string)
	Translate()
	Swap()
	Speak(text, languageCode string)
}

// Collaborators are the external services a session drives.
type Collaborators interface {
	Languages() *language.Catalog
	Detect(ctx context.Context, text string) *language.Detection
	Translate(ctx context.Context, text, target, source string) message.TranslationResult
	Speak(ctx context.Context, text, lang string) bool
	IsPlaying() bool
	StopAudio()
}

// AudioState is the speak state machine.
type AudioState int

const (
	AudioIdle AudioState = iota
	AudioRequesting
	AudioPlaying
)

func (a AudioState) String() string {
	switch a {
	case AudioRequesting:
		return "requesting"
	case AudioPlaying:
		return "playing"
	default:
		return "idle"
	}
}

// Snapshot is an immutable copy of the session state.
type Snapshot struct {
	SourceText       string
	TargetText       string
	DetectedLabel    string
	LastDetectedCode string
	TargetCode       string
	TargetIndex      int
	Status           string
	Audio            AudioState
	IsAudioPlaying   bool

	// SourceRevision increases whenever the session itself replaces the
	// source text (swap), so views know to overwrite their editor.
	SourceRevision uint64
}

// Coordinator runs one session.
type Coordinator struct {
	collab  Collaborators
	catalog *language.Catalog
	cfg     config.CoordinatorConfig
	sem     *semaphore.Weighted

	events  chan func()
	updates chan Snapshot
	done    chan struct{}
	ctx     context.Context
	wg      sync.WaitGroup
	initial Snapshot

	// Everything below is owned by the Run goroutine.
	state    Snapshot
	timer    *time.Timer
	timerGen uint64

	detectSeq    uint64
	translateSeq uint64
	floor        uint64
	appliedSeq   uint64
	speakSeq     uint64
}

var _ Capabilities = (*Coordinator)(nil)

// New creates a session over collab. Call Run to start it.
func New(collab Collaborators, cfg config.CoordinatorConfig) *Coordinator {
	catalog := collab.Languages()
	target := language.Normalize(cfg.DefaultTarget)
	if !catalog.Contains(target) {
		target = "en"
	}

	c := &Coordinator{
		collab:  collab,
		catalog: catalog,
		cfg:     cfg,
		sem:     semaphore.NewWeighted(cfg.MaxInFlight),
		events:  make(chan func(), 64),
		updates: make(chan Snapshot, 1),
		done:    make(chan struct{}),
		ctx:     context.Background(),
	}
	c.state = Snapshot{
		DetectedLabel: LabelPlaceholder,
		TargetCode:    target,
		TargetIndex:   catalog.Index(target),
		Status:        StatusReady,
	}
	c.initial = c.state
	return c
}

// Initial returns the state the session starts in, before Run publishes.
func (c *Coordinator) Initial() Snapshot { return c.initial }

// Catalog returns the session's language catalog.
func (c *Coordinator) Catalog() *language.Catalog { return c.catalog }

// Updates delivers the latest snapshot after every change. Only the most
// recent undelivered snapshot is kept.
func (c *Coordinator) Updates() <-chan Snapshot { return c.updates }

// Run processes events until ctx is cancelled. Outstanding requests are
// cancelled and waited for before it returns.
func (c *Coordinator) Run(ctx context.Context) error {
	ctx, cancel := context.WithCancel(ctx)
	defer cancel()
	c.ctx = ctx

	c.publish()
	for {
		select {
		case <-ctx.Done():
			close(c.done)
			if c.timer != nil {
				c.timer.Stop()
			}
			cancel()
			c.wg.Wait()
			return ctx.Err()
		case ev := <-c.events:
			ev()
			c.publish()
		}
	}
}

// post queues fn for the Run goroutine. It is dropped once Run has exited.
func (c *Coordinator) post(fn func()) {
	select {
	case c.events <- fn:
	case <-c.done:
	}
}

func (c *Coordinator) publish() {
	snap := c.state
	select {
	case c.updates <- snap:
		return
	default:
	}
	select {
	case <-c.updates:
	default:
	}
	select {
	case c.updates <- snap:
	default:
	}
}

// --- view actions ---

// SetSourceText records an edit of the source text and restarts the debounce.
func (c *Coordinator) SetSourceText(text string) {
	c.post(func() { c.onSourceEdited(text) })
}

// DetectLanguage detects the language of text now, cancelling any pending
// debounce.
func (c *Coordinator) DetectLanguage(text string) {
	c.post(func() {
		c.cancelTimer()
		c.detect(text)
	})
}

// Translate translates the current source text into the selected target.
func (c *Coordinator) Translate() {
	c.post(c.translate)
}

// Swap exchanges source and target text, targets the last detected language
// and re-detects. It does nothing until a language has been detected.
func (c *Coordinator) Swap() {
	c.post(c.swap)
}

// Speak synthesizes and plays text in languageCode.
func (c *Coordinator) Speak(text, languageCode string) {
	c.post(func() { c.speak(text, languageCode) })
}

// SpeakSource reads the source text in its detected language.
func (c *Coordinator) SpeakSource() {
	c.post(func() { c.speak(c.state.SourceText, c.state.LastDetectedCode) })
}

// SpeakTarget reads the translation in the target language.
func (c *Coordinator) SpeakTarget() {
	c.post(func() { c.speak(c.state.TargetText, c.state.TargetCode) })
}

// SetTarget selects a catalog language as target and re-translates.
// Unknown codes are ignored.
func (c *Coordinator) SetTarget(code string) {
	c.post(func() {
		code := language.Normalize(code)
		if !c.catalog.Contains(code) {
			slog.Debug("ignoring unknown target language", "code", code)
			return
		}
		c.state.TargetCode = code
		c.state.TargetIndex = c.catalog.Index(code)
		c.translate()
	})
}

// StopAudio stops playback and returns to Ready.
func (c *Coordinator) StopAudio() {
	c.post(func() {
		c.speakSeq++
		c.state.Audio = AudioIdle
		c.state.IsAudioPlaying = false
		c.state.Status = StatusReady
		c.spawn(func(ctx context.Context) { c.collab.StopAudio() })
	})
}

// --- handlers, Run goroutine only ---

func (c *Coordinator) onSourceEdited(text string) {
	c.state.SourceText = text
	c.cancelTimer()
	c.detectSeq++
	c.floor = c.translateSeq + 1

	if strings.TrimSpace(text) == "" {
		c.state.DetectedLabel = LabelPlaceholder
		c.state.LastDetectedCode = ""
		c.state.TargetText = ""
		return
	}

	c.timerGen++
	gen := c.timerGen
	c.timer = time.AfterFunc(c.cfg.Debounce, func() {
		c.post(func() {
			if gen != c.timerGen {
				return
			}
			c.timer = nil
			c.detect(c.state.SourceText)
		})
	})
}

func (c *Coordinator) cancelTimer() {
	if c.timer != nil {
		c.timer.Stop()
		c.timer = nil
	}
	c.timerGen++
}

func (c *Coordinator) detect(text string) {
	c.detectSeq++
	seq := c.detectSeq

	text = strings.TrimSpace(text)
	if text == "" {
		c.state.DetectedLabel = LabelPlaceholder
		return
	}
	c.state.Status = StatusDetecting

	if detector.TooShort(text) {
		c.applyDetection(seq, nil)
		return
	}

	c.spawn(func(ctx context.Context) {
		var det *language.Detection
		if c.acquire(ctx) {
			det = c.collab.Detect(ctx, text)
			c.sem.Release(1)
		}
		c.post(func() { c.applyDetection(seq, det) })
	})
}

func (c *Coordinator) applyDetection(seq uint64, det *language.Detection) {
	if seq != c.detectSeq {
		slog.Debug("dropping stale detection", "seq", seq, "current", c.detectSeq)
		return
	}
	if det == nil || !c.catalog.Contains(det.Code) {
		c.state.DetectedLabel = LabelUnknown
		c.state.LastDetectedCode = ""
		c.state.Status = StatusNotDetected
		return
	}
	c.state.DetectedLabel = det.Name
	c.state.LastDetectedCode = det.Code
	c.state.Status = StatusDetected
	c.translate()
}

func (c *Coordinator) translate() {
	text := strings.TrimSpace(c.state.SourceText)
	if text == "" {
		c.floor = c.translateSeq + 1
		c.state.TargetText = ""
		return
	}

	c.translateSeq++
	seq := c.translateSeq
	target := c.state.TargetCode
	source := c.state.LastDetectedCode
	if source == "" {
		source = message.AutoDetect
	}
	c.state.Status = StatusTranslating

	c.spawn(func(ctx context.Context) {
		var res message.TranslationResult
		if c.acquire(ctx) {
			res = c.collab.Translate(ctx, text, target, source)
			c.sem.Release(1)
		} else {
			res = message.Failed(text, "too many requests in flight")
		}
		c.post(func() { c.applyTranslation(seq, res) })
	})
}

func (c *Coordinator) applyTranslation(seq uint64, res message.TranslationResult) {
	if seq < c.floor || seq <= c.appliedSeq {
		slog.Debug("dropping stale translation", "seq", seq, "floor", c.floor, "applied", c.appliedSeq)
		return
	}
	c.appliedSeq = seq
	if res.Success {
		c.state.TargetText = res.TranslatedText
		c.state.Status = StatusTranslated
		return
	}
	c.state.TargetText = "Error: " + res.ErrorMessage()
	c.state.Status = StatusTranslateError
}

func (c *Coordinator) swap() {
	if c.state.LastDetectedCode == "" {
		return
	}
	c.cancelTimer()
	c.floor = c.translateSeq + 1

	c.state.SourceText, c.state.TargetText = c.state.TargetText, c.state.SourceText
	c.state.SourceRevision++
	if i := c.catalog.Index(c.state.LastDetectedCode); i >= 0 {
		c.state.TargetCode = c.state.LastDetectedCode
		c.state.TargetIndex = i
	}
	c.detect(c.state.SourceText)
}

func (c *Coordinator) speak(text, lang string) {
	text = strings.TrimSpace(text)
	if text == "" || lang == "" {
		return
	}

	c.speakSeq++
	seq := c.speakSeq
	c.state.Audio = AudioRequesting
	c.state.Status = StatusAudioRequested

	c.spawn(func(ctx context.Context) {
		ok := false
		if c.acquire(ctx) {
			ok = c.collab.Speak(ctx, text, lang)
			c.sem.Release(1)
		}
		c.post(func() { c.applySpeak(seq, ok) })
	})
}

func (c *Coordinator) applySpeak(seq uint64, ok bool) {
	if seq != c.speakSeq {
		return
	}
	if !ok {
		c.state.Audio = AudioIdle
		c.state.IsAudioPlaying = false
		c.state.Status = StatusAudioFailed
		return
	}
	c.state.Audio = AudioPlaying
	c.state.IsAudioPlaying = true
	c.state.Status = StatusAudioPlaying
	c.schedulePoll(seq)
}

func (c *Coordinator) schedulePoll(seq uint64) {
	time.AfterFunc(c.cfg.PollInterval, func() {
		c.post(func() { c.checkPlayback(seq) })
	})
}

func (c *Coordinator) checkPlayback(seq uint64) {
	if seq != c.speakSeq || c.state.Audio != AudioPlaying {
		return
	}
	if c.collab.IsPlaying() {
		c.schedulePoll(seq)
		return
	}
	c.state.Audio = AudioIdle
	c.state.IsAudioPlaying = false
	c.state.Status = StatusReady
}

// spawn runs fn on a tracked worker goroutine.
func (c *Coordinator) spawn(fn func(ctx context.Context)) {
	ctx := c.ctx
	c.wg.Add(1)
	go func() {
		defer c.wg.Done()
		fn(ctx)
	}()
}

// acquire waits for a request slot for at most the queue timeout.
func (c *Coordinator) acquire(ctx context.Context) bool {
	ctx, cancel := context.WithTimeout(ctx, c.cfg.QueueTimeout)
	defer cancel()
	if err := c.sem.Acquire(ctx, 1); err != nil {
		slog.Warn("no free request slot", "error", err)
		return false
	}
	return true
}
