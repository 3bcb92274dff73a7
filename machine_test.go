package vm

import "testing"

func validPaletteBytes() []byte {
	return make([]byte, numPalettes*colorsPerPalette*2)
}

// buildMachineTestRepo wires up resources for intro-cinematic (whose
// bytecode schedules gameplay1) and gameplay1 itself, plus a free-standing
// sound resource at id 42 for the ControlResources dispatch scenario.
func buildMachineTestRepo(introBytecode []byte) *MemoryRepository {
	intro := gamePartTable[PartIntroCinematic]
	gameplay1 := gamePartTable[PartGameplay1]

	size := 0x70
	descriptors := make([]ResourceDescriptor, size)
	blobs := make([][]byte, size)

	place := func(id ResourceId, kind ResourceKind, data []byte) {
		descriptors[id] = uncompressedDescriptor(kind, data)
		blobs[id] = data
	}
	place(intro.bytecode, ResourceKindBytecode, introBytecode)
	place(intro.palettes, ResourceKindPalettes, validPaletteBytes())
	place(intro.polygons, ResourceKindPolygons, []byte{})

	place(gameplay1.bytecode, ResourceKindBytecode, []byte{byte(opYield)})
	place(gameplay1.palettes, ResourceKindPalettes, validPaletteBytes())
	place(gameplay1.polygons, ResourceKindPolygons, []byte{})

	// 8-byte sound header (length=4 words, loopLength=0) + 8 bytes of PCM.
	place(42, ResourceKindSoundOrEmpty, []byte{
		0, 4, 0, 0, 0, 0, 0, 0,
		10, 20, 30, 40, 50, 60, 70, 80,
	})

	return NewMemoryRepository(descriptors, blobs)
}

func TestScenarioIntroSchedulesGameplay1(t *testing.T) {
	introBytecode := []byte{
		byte(opControlResources), byte(PartGameplay1),
		byte(opYield),
	}
	repo := buildMachineTestRepo(introBytecode)
	m := NewMachine(repo, nil, nil, nil, Config{}, PartIntroCinematic)

	for i := 0; i < 10_000; i++ {
		if err := m.RunTic(Input{}); err != nil {
			t.Fatalf("RunTic: %v", err)
		}
		if m.scheduledPart != nil && *m.scheduledPart == PartGameplay1 {
			return
		}
	}
	t.Fatalf("gameplay1 was never scheduled within budget")
}

func TestScenarioKillAndYield(t *testing.T) {
	introBytecode := []byte{
		byte(opControlThreads), 1, 63, byte(ControlThreadsResume),
		byte(opKill),
	}
	repo := buildMachineTestRepo(introBytecode)
	m := NewMachine(repo, nil, nil, nil, Config{}, PartIntroCinematic)

	if err := m.RunTic(Input{}); err != nil {
		t.Fatalf("RunTic: %v", err)
	}
	if m.Threads.IsRunnable(0) {
		t.Fatalf("thread 0 should be inactive after Kill")
	}
	if err := m.RunTic(Input{}); err != nil {
		t.Fatalf("RunTic (tic 2): %v", err)
	}
	for id := ThreadId(1); id <= 63; id++ {
		th := m.Threads.threads[id]
		if th.hasScheduledPause {
			t.Fatalf("thread %d should have its scheduled-pause cleared by tic 2", id)
		}
	}
}

func TestScenarioOverflowArithmetic(t *testing.T) {
	introBytecode := []byte{
		byte(opRegisterSet), 0, 0x7F, 0xFF,
		byte(opRegisterAddConstant), 0, 0x00, 0x01,
		byte(opYield),
	}
	repo := buildMachineTestRepo(introBytecode)
	m := NewMachine(repo, nil, nil, nil, Config{}, PartIntroCinematic)

	if err := m.RunTic(Input{}); err != nil {
		t.Fatalf("RunTic: %v", err)
	}
	if m.Registers.Get(0) != -32768 {
		t.Fatalf("got %d, want -32768", m.Registers.Get(0))
	}
}

func TestScenarioShortBranchJumpIfNotZero(t *testing.T) {
	introBytecode := []byte{
		byte(opRegisterSet), 0, 0x00, 0x03, // addr 0
		byte(opJumpIfNotZero), 0, 0x00, 0x04, // addr 4 (L)
		byte(opYield), // addr 8
	}
	repo := buildMachineTestRepo(introBytecode)
	m := NewMachine(repo, nil, nil, nil, Config{}, PartIntroCinematic)

	if err := m.RunTic(Input{}); err != nil {
		t.Fatalf("RunTic: %v", err)
	}
	if m.Registers.Get(0) != 0 {
		t.Fatalf("r0 = %d, want 0", m.Registers.Get(0))
	}
	if !m.Threads.IsRunnable(0) {
		t.Fatalf("thread should still be active/running after a Yield")
	}
}

func TestScenarioControlResourcesDispatch(t *testing.T) {
	introBytecode := []byte{byte(opYield)}
	repo := buildMachineTestRepo(introBytecode)
	m := NewMachine(repo, nil, nil, nil, Config{}, PartIntroCinematic)
	if err := m.RunTic(Input{}); err != nil {
		t.Fatalf("RunTic: %v", err)
	}

	if _, err := m.Resources.LoadIndividualResource(42); err != nil {
		t.Fatalf("LoadIndividualResource(42): %v", err)
	}
	if err := m.controlResources(0); err != nil {
		t.Fatalf("controlResources(0): %v", err)
	}
	if _, ok := m.Resources.ResourceLocation(42); ok {
		t.Fatalf("resource 42 should have been evicted by ControlResources(0)")
	}

	if err := m.controlResources(ResourceId(PartGameplay1)); err != nil {
		t.Fatalf("controlResources(gameplay1): %v", err)
	}
	if m.scheduledPart == nil || *m.scheduledPart != PartGameplay1 {
		t.Fatalf("expected gameplay1 scheduled, got %+v", m.scheduledPart)
	}

	if err := m.controlResources(42); err != nil {
		t.Fatalf("controlResources(42): %v", err)
	}
	if _, ok := m.Resources.ResourceLocation(42); !ok {
		t.Fatalf("resource 42 should be resident after controlResources(42)")
	}
}

func TestScenarioPasswordScreenGate(t *testing.T) {
	introBytecode := []byte{byte(opYield)}
	repo := buildMachineTestRepo(introBytecode)

	m := NewMachine(repo, nil, nil, nil, Config{}, PartIntroCinematic)
	if err := m.RunTic(Input{ShowPasswordScreen: true}); err != nil {
		t.Fatalf("RunTic: %v", err)
	}
	if m.scheduledPart == nil || *m.scheduledPart != PartPasswordEntry {
		t.Fatalf("expected password-entry scheduled from intro-cinematic, got %+v", m.scheduledPart)
	}

	m2 := NewMachine(repo, nil, nil, nil, Config{}, PartIntroCinematic)
	m2.currentPart = PartCopyProtection
	m2.hasCurrentPart = true
	m2.scheduledPart = nil
	m2.applyInput(Input{ShowPasswordScreen: true})
	if m2.scheduledPart != nil {
		t.Fatalf("copy-protection should never schedule the password screen, got %+v", m2.scheduledPart)
	}
}

func TestApplyInputSetsAllInputsBit7ForAction(t *testing.T) {
	repo := buildMachineTestRepo([]byte{byte(opYield)})
	m := NewMachine(repo, nil, nil, nil, Config{}, PartIntroCinematic)
	m.applyInput(Input{Action: true, Up: true})
	got := m.Registers.Get(RegisterAllInputs)
	if got&0x80 == 0 {
		t.Fatalf("RegisterAllInputs = %#x, want bit 7 set for action", got)
	}
	if got&0x01 == 0 {
		t.Fatalf("RegisterAllInputs = %#x, want bit 0 set for up", got)
	}
}

func TestApplyInputLastPressedCharacterGatedToPasswordScreen(t *testing.T) {
	repo := buildMachineTestRepo([]byte{byte(opYield)})
	m := NewMachine(repo, nil, nil, nil, Config{}, PartIntroCinematic)
	m.hasCurrentPart = true
	m.currentPart = PartIntroCinematic
	m.applyInput(Input{LastPressedCharacter: 'a'})
	if got := m.Registers.Get(RegisterLastPressedCharacter); got != 0 {
		t.Fatalf("expected no write outside the password-entry part, got %d", got)
	}

	m.currentPart = PartPasswordEntry
	m.applyInput(Input{LastPressedCharacter: 'a'})
	if got := m.Registers.Get(RegisterLastPressedCharacter); got != int16('A') {
		t.Fatalf("expected upper-cased 'A' (%d), got %d", 'A', got)
	}
}

func TestRunTicThreadStalled(t *testing.T) {
	introBytecode := []byte{
		byte(opJump), 0x00, 0x00, // infinite loop at address 0
	}
	repo := buildMachineTestRepo(introBytecode)
	m := NewMachine(repo, nil, nil, nil, Config{MaxInstructionsPerTic: 10}, PartIntroCinematic)
	if err := m.RunTic(Input{}); err != ErrThreadStalled {
		t.Fatalf("got %v, want ErrThreadStalled", err)
	}
}
