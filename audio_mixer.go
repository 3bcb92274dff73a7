// audio_mixer.go - 4-channel PCM mixer

package vm

import "sync"

// numAudioChannels is the fixed channel count, per spec.md §4.16.
const numAudioChannels = 4

// ChannelId addresses one of the four mixer channels, in [0, 3].
type ChannelId uint8

// frequencyTable maps a bytecode frequency-id byte to a playback rate in
// Hz, reconstructed from the original engine's documented 40-entry period
// table (three full octaves of 12 semitone steps plus the first 4 steps
// of a fourth, each octave doubling the prior octave's base rate). A
// frequency-id byte indexes this table modulo its length, since the bytecode's id byte is a direct table index and
// resource data is untrusted input.
var frequencyTable = [40]int{
	1024, 1085, 1149, 1218, 1290, 1367, 1448, 1534, 1625, 1722, 1825, 1933,
	2048, 2170, 2299, 2435, 2580, 2734, 2896, 3069, 3251, 3444, 3649, 3866,
	4096, 4340, 4598, 4870, 5161, 5468, 5793, 6137, 6502, 6889, 7298, 7732,
	8192, 8679, 9195, 9742,
}

func resolveFrequency(id uint8) int {
	return frequencyTable[int(id)%len(frequencyTable)]
}

// ChannelState describes one mixer channel's playback state, per spec.md
// §4.16 / GLOSSARY.
type ChannelState struct {
	playing   bool
	sample    []int8 // signed 8-bit PCM
	cursor    int    // fractional playback position, fixed-point << fracBits
	step      int    // advance per output sample, fixed-point
	volume    uint8  // [0, 63]
	hasLoop   bool
	loopStart int
}

const fracBits = 16

// Mixer owns the four channels plus the music channel's delay/offset
// state. Playback control (playSound/stopChannel/playMusic/stopMusic/
// setMusicDelay) is called from the scheduler thread; mix is called from
// an OS audio callback thread. mu serializes the two, per spec.md §5's
// concurrency note (mirroring the teacher's parameter-update mutex).
type Mixer struct {
	mu       sync.Mutex
	channels [numAudioChannels]ChannelState

	musicPlaying bool
	musicSample  []int8
	musicCursor  int
	musicDelay   uint16

	// sampleRate is the rate PlaySound computes its fixed-point step
	// against; NewMachine sets it from Config.SampleRate.
	sampleRate int
}

// NewMixer constructs a silent mixer resampling against outputSampleRate
// until SetSampleRate overrides it.
func NewMixer() *Mixer {
	return &Mixer{sampleRate: outputSampleRate}
}

// SetSampleRate changes the rate used to compute PlaySound's fixed-point
// step. Intended to be called once, at construction, before
// any playback starts.
func (m *Mixer) SetSampleRate(rate int) {
	m.mu.Lock()
	defer m.mu.Unlock()
	if rate > 0 {
		m.sampleRate = rate
	}
}

// PlaySound begins playback of sample on channel at volume (0-63) and
// frequencyId, replacing any prior state. volume == 0 is synonymous with
// StopChannel, per spec.md §4.16. hasLoop/loopStart come from the sound
// resource's own header (see loadAudioSample): a channel that runs past
// the end of sample wraps to loopStart instead of going silent when
// hasLoop is set.
func (m *Mixer) PlaySound(channel ChannelId, sample []int8, volume uint8, frequencyId uint8, hasLoop bool, loopStart int) error {
	if int(channel) >= numAudioChannels {
		return ErrInvalidChannelId
	}
	if volume > 63 {
		return ErrVolumeOutOfRange
	}
	m.mu.Lock()
	defer m.mu.Unlock()
	if volume == 0 {
		m.channels[channel] = ChannelState{}
		return nil
	}
	step := (resolveFrequency(frequencyId) << fracBits) / m.sampleRate
	m.channels[channel] = ChannelState{
		playing:   true,
		sample:    sample,
		step:      step,
		volume:    volume,
		hasLoop:   hasLoop,
		loopStart: loopStart,
	}
	return nil
}

// StopChannel silences channel immediately.
func (m *Mixer) StopChannel(channel ChannelId) error {
	if int(channel) >= numAudioChannels {
		return ErrInvalidChannelId
	}
	m.mu.Lock()
	defer m.mu.Unlock()
	m.channels[channel] = ChannelState{}
	return nil
}

// PlayMusic begins music playback from sample at offset, replacing any
// prior music state, and records delay for SetMusicDelay-equivalent
// bookkeeping.
func (m *Mixer) PlayMusic(sample []int8, offset uint16, delay uint16) {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.musicPlaying = true
	m.musicSample = sample
	m.musicCursor = int(offset) << fracBits
	m.musicDelay = delay
}

// StopMusic silences the music channel.
func (m *Mixer) StopMusic() {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.musicPlaying = false
	m.musicSample = nil
}

// SetMusicDelay updates the music channel's delay without restarting
// playback.
func (m *Mixer) SetMusicDelay(delay uint16) {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.musicDelay = delay
}

// MusicDelay returns the music channel's current delay, stored verbatim
// as the tic-granularity counter the bytecode passed in.
func (m *Mixer) MusicDelay() uint16 {
	m.mu.Lock()
	defer m.mu.Unlock()
	return m.musicDelay
}

// Channels returns a snapshot of the four sound channels' playback
// state, for tests and debug overlays.
func (m *Mixer) Channels() [numAudioChannels]ChannelState {
	m.mu.Lock()
	defer m.mu.Unlock()
	return m.channels
}

// outputSampleRate is NewMixer's default sample rate, overridden by
// SetSampleRate (NewMachine wires it from Config.SampleRate).
const outputSampleRate = 22050

// Mix fills buffer with saturating-summed, resampled output from the
// four sound channels and the music channel, one signed-8-bit sample per
// entry. Channels that run past their end go silent unless they declare
// a loop start, in which case they wrap. sampleRate is accepted for
// interface symmetry with the host contract; sound channels resample with
// the fixed-point step computed at PlaySound time against the mixer's
// configured rate (SetSampleRate, default outputSampleRate), and music
// advances one sample per output sample.
func (m *Mixer) Mix(buffer []int8, sampleRate int) {
	m.mu.Lock()
	defer m.mu.Unlock()
	for i := range buffer {
		sum := 0
		for c := range m.channels {
			sum += m.advanceChannel(&m.channels[c])
		}
		sum += m.advanceMusic()
		buffer[i] = saturate8(sum)
	}
}

func (m *Mixer) advanceChannel(ch *ChannelState) int {
	if !ch.playing || len(ch.sample) == 0 {
		return 0
	}
	idx := ch.cursor >> fracBits
	if idx >= len(ch.sample) {
		if ch.hasLoop {
			ch.cursor = ch.loopStart << fracBits
			idx = ch.loopStart
		} else {
			ch.playing = false
			return 0
		}
	}
	s := int(ch.sample[idx])
	ch.cursor += ch.step
	return s * int(ch.volume) / 63
}

func (m *Mixer) advanceMusic() int {
	if !m.musicPlaying || len(m.musicSample) == 0 {
		return 0
	}
	idx := m.musicCursor >> fracBits
	if idx >= len(m.musicSample) {
		m.musicPlaying = false
		return 0
	}
	s := int(m.musicSample[idx])
	m.musicCursor += 1 << fracBits
	return s
}

func saturate8(v int) int8 {
	if v > 127 {
		return 127
	}
	if v < -128 {
		return -128
	}
	return int8(v)
}
