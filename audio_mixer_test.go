package vm

import "testing"

func TestPlaySoundThenMix(t *testing.T) {
	m := NewMixer()
	sample := []int8{100, 100, 100, 100}
	if err := m.PlaySound(0, sample, 63, 0x3C, false, 0); err != nil {
		t.Fatalf("PlaySound: %v", err)
	}
	buf := make([]int8, 4)
	m.Mix(buf, outputSampleRate)
	if buf[0] == 0 {
		t.Fatalf("expected non-zero output, got all zero: %v", buf)
	}
}

func TestPlaySoundZeroVolumeStops(t *testing.T) {
	m := NewMixer()
	sample := []int8{100, 100}
	if err := m.PlaySound(0, sample, 63, 0x3C, false, 0); err != nil {
		t.Fatalf("PlaySound: %v", err)
	}
	if err := m.PlaySound(0, sample, 0, 0x3C, false, 0); err != nil {
		t.Fatalf("PlaySound(volume=0): %v", err)
	}
	buf := make([]int8, 4)
	m.Mix(buf, outputSampleRate)
	for _, s := range buf {
		if s != 0 {
			t.Fatalf("volume 0 should silence channel, got %v", buf)
		}
	}
}

func TestPlaySoundInvalidChannel(t *testing.T) {
	m := NewMixer()
	if err := m.PlaySound(4, nil, 10, 0, false, 0); err != ErrInvalidChannelId {
		t.Fatalf("got %v, want ErrInvalidChannelId", err)
	}
}

func TestPlaySoundVolumeOutOfRange(t *testing.T) {
	m := NewMixer()
	if err := m.PlaySound(0, []int8{1}, 64, 0, false, 0); err != ErrVolumeOutOfRange {
		t.Fatalf("got %v, want ErrVolumeOutOfRange", err)
	}
}

func TestChannelRunsPastEndGoesSilent(t *testing.T) {
	m := NewMixer()
	if err := m.PlaySound(0, []int8{50}, 63, 0x3C, false, 0); err != nil {
		t.Fatalf("PlaySound: %v", err)
	}
	buf := make([]int8, 8)
	m.Mix(buf, outputSampleRate)
	if m.channels[0].playing {
		t.Fatalf("channel should have stopped after exhausting its sample")
	}
}

func TestStopChannelSilences(t *testing.T) {
	m := NewMixer()
	if err := m.PlaySound(1, []int8{100}, 63, 0x3C, false, 0); err != nil {
		t.Fatalf("PlaySound: %v", err)
	}
	if err := m.StopChannel(1); err != nil {
		t.Fatalf("StopChannel: %v", err)
	}
	if m.channels[1].playing {
		t.Fatalf("StopChannel should clear playing state")
	}
}

func TestPlayMusicAndStop(t *testing.T) {
	m := NewMixer()
	m.PlayMusic([]int8{10, 20, 30}, 0, 100)
	if !m.musicPlaying {
		t.Fatalf("PlayMusic should start music playback")
	}
	m.StopMusic()
	if m.musicPlaying {
		t.Fatalf("StopMusic should stop music playback")
	}
}

func TestSaturate8(t *testing.T) {
	if saturate8(200) != 127 {
		t.Fatalf("saturate8(200) = %d, want 127", saturate8(200))
	}
	if saturate8(-200) != -128 {
		t.Fatalf("saturate8(-200) = %d, want -128", saturate8(-200))
	}
	if saturate8(5) != 5 {
		t.Fatalf("saturate8(5) = %d, want 5", saturate8(5))
	}
}
