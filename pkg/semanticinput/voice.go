package semanticinput

import "time"

// SpeechRecognizer is the external collaborator contract for
// speech-to-text transcription. Voice models themselves are out of
// scope; this package only defines the wake-word arming around whatever
// implementation is wired in. It does no silence detection and keeps no
// recording buffer: the caller records the utterance and passes it to
// HandleUtterance.
type SpeechRecognizer interface {
	// Transcribe converts a recorded PCM buffer to text with a
	// confidence in [0,1].
	Transcribe(pcm []byte) (text string, confidence float64, err error)
}

// KeywordMapper turns transcribed text into a semantic event and a
// parse confidence, independent of the STT confidence.
type KeywordMapper interface {
	Parse(text string) (SemanticEventKind, float64, bool)
}

const (
	wakeWordCooldown     = 2 * time.Second
	maxRecordingDuration = 5 * time.Second
	autoExecuteThreshold = 0.75
)

// VoiceChannel arms on wake-word detection (energy-RMS threshold,
// consecutive-frames confirmation, cooldown); HandleUtterance then hands
// the caller-recorded buffer to a SpeechRecognizer. The channel does not
// detect the end of an utterance itself.
type VoiceChannel struct {
	recognizer SpeechRecognizer
	mapper     KeywordMapper
	onAgentReady func()
	onEvent      func(SemanticEvent, bool) // event, autoExecute

	armed      bool
	lastWake   time.Time
	now        func() time.Time
	consecutiveFrames int
	rmsThreshold      float64
	framesRequired    int
}

// NewVoiceChannel wires a recognizer/mapper pair plus lifecycle
// callbacks, matching the teacher's pattern of defining onInteraction /
// onAgentReady callback fields rather than owning the model.
func NewVoiceChannel(recognizer SpeechRecognizer, mapper KeywordMapper) *VoiceChannel {
	return &VoiceChannel{
		recognizer:     recognizer,
		mapper:         mapper,
		now:            time.Now,
		rmsThreshold:   0.02,
		framesRequired: 3,
	}
}

// OnAgentReady registers a callback fired once the channel has armed
// after the wake word.
func (v *VoiceChannel) OnAgentReady(fn func()) { v.onAgentReady = fn }

// OnEvent registers the callback fired when a semantic event resolves
// from a transcription.
func (v *VoiceChannel) OnEvent(fn func(SemanticEvent, bool)) { v.onEvent = fn }

// FeedEnergyFrame submits one audio frame's RMS energy; after
// framesRequired consecutive frames above rmsThreshold, and outside the
// cooldown since the last arm, the channel arms for recording.
func (v *VoiceChannel) FeedEnergyFrame(rms float64) {
	if rms < v.rmsThreshold {
		v.consecutiveFrames = 0
		return
	}
	v.consecutiveFrames++
	if v.consecutiveFrames < v.framesRequired {
		return
	}
	v.consecutiveFrames = 0
	if v.armed || v.now().Sub(v.lastWake) < wakeWordCooldown {
		return
	}
	v.armed = true
	v.lastWake = v.now()
	if v.onAgentReady != nil {
		v.onAgentReady()
	}
}

// HandleUtterance transcribes a recorded buffer (bounded to
// maxRecordingDuration by the caller) and maps it to a semantic event.
// Combined confidence is sttConfidence * parseConfidence; below
// autoExecuteThreshold the event is reported but not flagged for
// auto-execution.
func (v *VoiceChannel) HandleUtterance(pcm []byte) error {
	defer func() { v.armed = false }()

	text, sttConfidence, err := v.recognizer.Transcribe(pcm)
	if err != nil {
		return err
	}
	kind, parseConfidence, ok := v.mapper.Parse(text)
	if !ok {
		return nil
	}
	combined := sttConfidence * parseConfidence
	evt := SemanticEvent{Kind: kind, Source: ClassVoice, At: v.now(), Confidence: combined, Payload: text}
	if v.onEvent != nil {
		v.onEvent(evt, combined >= autoExecuteThreshold)
	}
	return nil
}
