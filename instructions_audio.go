// instructions_audio.go - ControlMusic/ControlSound instruction execution

package vm

// musicDelaySentinel marks a decoded ControlMusic instruction as a plain
// setMusicDelay call rather than a play/stop; see decodeControlMusic.
const musicDelaySentinel = 0xFFFF

// executeControlMusic dispatches ControlMusic's three sub-operations,
// per spec.md §4.16: resource id 0 stops music, a sentinel offset sets
// the delay without touching playback, otherwise it (re)starts playback.
func executeControlMusic(m *Machine, ins Instruction) error {
	switch {
	case ins.Offset == musicDelaySentinel:
		m.Mixer.SetMusicDelay(ins.Delay)
		return nil
	case ins.ResourceId == 0:
		m.Mixer.StopMusic()
		return nil
	default:
		sample, err := m.loadAudioSample(ins.ResourceId)
		if err != nil {
			return err
		}
		m.Mixer.PlayMusic(sample.pcm, ins.Offset, ins.Delay)
		return nil
	}
}

// executeControlSound dispatches ControlSound's play/stop sub-operations.
// A stop is recognised by Volume having been set to the sentinel 0xFF by
// decodeControlSound (a real volume is bounded to [0, 63]).
func executeControlSound(m *Machine, ins Instruction) error {
	if ins.Volume == 0xFF {
		return m.Mixer.StopChannel(ins.ChannelId)
	}
	sample, err := m.loadAudioSample(ins.ResourceId)
	if err != nil {
		return err
	}
	return m.Mixer.PlaySound(ins.ChannelId, sample.pcm, ins.Volume, ins.FrequencyId, sample.hasLoop, sample.loopStart)
}

// audioSampleHeaderSize is the sound resource's fixed header: a
// big-endian u16 sample length (in words) followed by a big-endian u16
// loop length (in words), then 4 unused bytes, per the original archive's
// sound-bank layout.
const audioSampleHeaderSize = 8

// audioSample is decoded PCM plus the loop-start position carried by the
// sound resource's own header.
type audioSample struct {
	pcm       []int8
	hasLoop   bool
	loopStart int
}

// loadAudioSample resolves id to a decoded sound sample, loading it into
// resource memory on first use and reusing the resident buffer on
// subsequent plays. A non-zero loop length in the resource's header means
// the channel plays the full body once, then repeats only the trailing
// loopLength bytes forever.
func (m *Machine) loadAudioSample(id ResourceId) (audioSample, error) {
	data, ok := m.Resources.ResourceLocation(id)
	if !ok {
		loaded, err := m.Resources.LoadIndividualResource(id)
		if err != nil {
			return audioSample{}, err
		}
		data = loaded.Data
	}
	if len(data) < audioSampleHeaderSize {
		return audioSample{}, ErrTruncatedData
	}
	length := int(data[0])<<9 | int(data[1])<<1     // length-in-words * 2
	loopLength := int(data[2])<<9 | int(data[3])<<1 // loopLength-in-words * 2
	body := data[audioSampleHeaderSize:]
	if length+loopLength > len(body) {
		return audioSample{}, ErrTruncatedData
	}

	samples := make([]int8, length+loopLength)
	for i, b := range body[:length+loopLength] {
		samples[i] = int8(b)
	}
	return audioSample{
		pcm:       samples,
		hasLoop:   loopLength != 0,
		loopStart: length,
	}, nil
}
