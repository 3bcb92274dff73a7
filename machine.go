// machine.go - Machine aggregate and the per-tic scheduler loop

package vm

// Machine owns every subsystem and drives one tic at a time, per
// spec.md §4.14.
type Machine struct {
	Registers Registers
	Threads   *ThreadTable
	Video     *VideoModel
	Palettes  *PaletteSelector
	Mixer     *Mixer
	Resources *ResourceMemory
	Strings   StringTable

	host   Host
	logger Logger
	config Config

	currentPart    GamePart
	hasCurrentPart bool
	scheduledPart  *GamePart
}

// NewMachine constructs a Machine backed by repo, with part scheduled to
// load on the first RunTic call.
func NewMachine(repo ResourceRepository, strings StringTable, host Host, logger Logger, config Config, initialPart GamePart) *Machine {
	if host == nil {
		host = discardHost{}
	}
	if logger == nil {
		logger = discardLogger{}
	}
	m := &Machine{
		Threads:   NewThreadTable(),
		Video:     NewVideoModel(host),
		Mixer:     NewMixer(),
		Resources: NewResourceMemory(repo),
		Strings:   strings,
		host:      host,
		logger:    logger,
		config:    config,
	}
	m.Mixer.SetSampleRate(config.sampleRate())
	part := config.startPart(initialPart)
	m.scheduledPart = &part
	return m
}

// RunTic executes one scheduler tic, per spec.md §4.14:
//  1. Load a scheduled game part, if any, resetting thread state.
//  2. Apply the input snapshot to the well-known input registers.
//  3. Apply every thread's deferred scheduled state.
//  4. Run each runnable thread, in id order, up to the instruction budget.
func (m *Machine) RunTic(input Input) error {
	if m.scheduledPart != nil {
		if err := m.loadGamePartNow(*m.scheduledPart); err != nil {
			return err
		}
		m.scheduledPart = nil
	}

	m.applyInput(input)
	m.Threads.ApplyScheduled()

	budget := m.config.maxInstructionsPerTic()
	for id := ThreadId(0); id < numThreads; id++ {
		if !m.Threads.IsRunnable(id) {
			continue
		}
		if err := m.runThread(id, budget); err != nil {
			return err
		}
	}
	return nil
}

// loadGamePartNow loads part's resources, resets every thread to the
// spec's reset step, and reparses the palette resource.
func (m *Machine) loadGamePartNow(part GamePart) error {
	resources, err := m.Resources.LoadGamePart(part)
	if err != nil {
		return err
	}
	m.Threads.resetToGamePartStart()
	m.currentPart = part
	m.hasCurrentPart = true

	palettes, err := ParsePalettes(resources.Palettes)
	if err != nil {
		return err
	}
	m.Palettes = NewPaletteSelector(palettes)
	return nil
}

// applyInput maps the per-tic input snapshot onto the well-known input
// registers, per spec.md §6, and schedules the password-entry part when
// requested and allowed.
func (m *Machine) applyInput(input Input) {
	r := &m.Registers

	action := int16(0)
	if input.Action {
		action = 1
	}
	r.Set(RegisterActionInput, action)

	updown := int16(0)
	if input.Up {
		updown = -1
	} else if input.Down {
		updown = 1
	}
	r.Set(RegisterUpDownInput, updown)

	leftright := int16(0)
	if input.Left {
		leftright = -1
	} else if input.Right {
		leftright = 1
	}
	r.Set(RegisterLeftRightInput, leftright)

	var movement int16
	if input.Up {
		movement |= 1 << 0
	}
	if input.Down {
		movement |= 1 << 1
	}
	if input.Left {
		movement |= 1 << 2
	}
	if input.Right {
		movement |= 1 << 3
	}
	r.Set(RegisterMovementInputs, movement)

	all := movement
	if input.Action {
		all |= 1 << 7
	}
	r.Set(RegisterAllInputs, all)

	if m.hasCurrentPart && m.currentPart == PartPasswordEntry {
		c := input.LastPressedCharacter
		if c >= 'a' && c <= 'z' {
			c -= 'a' - 'A'
		}
		r.Set(RegisterLastPressedCharacter, int16(c))
	}

	if input.ShowPasswordScreen && m.hasCurrentPart && m.currentPart.allowsPasswordScreen() {
		part := PartPasswordEntry
		m.scheduledPart = &part
	}
}

// runThread executes id's current program starting at its stored
// address until it yields, deactivates, or exhausts budget.
func (m *Machine) runThread(id ThreadId, budget int) error {
	gamePart, ok := m.Resources.CurrentGamePart()
	if !ok {
		return ErrInvalidAddress
	}
	cursor := newProgramCursor(gamePart.Bytecode)
	cursor.counter = m.Threads.Addr(id)
	stack := m.Threads.Stack(id)

	for executed := 0; ; executed++ {
		if executed >= budget {
			return ErrThreadStalled
		}
		ins, err := DecodeInstruction(&cursor)
		if err != nil {
			return err
		}
		act, err := m.executeOne(ins, &cursor, stack, id)
		if err != nil {
			return err
		}
		switch act {
		case actionYield:
			m.Threads.StoreCursor(id, cursor.counter)
			return nil
		case actionDeactivate:
			return nil
		}
	}
}

// executeOne dispatches a decoded instruction to its subsystem executor.
func (m *Machine) executeOne(ins Instruction, cursor *programCursor, stack *callStack, id ThreadId) (action, error) {
	switch ins.Kind {
	case InsRegisterSet, InsRegisterCopy, InsRegisterAdd, InsRegisterAddConstant,
		InsRegisterSubtract, InsRegisterAnd, InsRegisterOr, InsRegisterShiftLeft, InsRegisterShiftRight:
		executeRegister(&m.Registers, ins)
		return actionContinue, nil

	case InsJump, InsCall, InsReturn, InsJumpConditional, InsJumpIfNotZero,
		InsYield, InsKill, InsActivateThread, InsControlThreads, InsControlResources:
		return executeControl(m, ins, cursor, stack, id)

	case InsControlMusic:
		return actionContinue, executeControlMusic(m, ins)

	case InsControlSound:
		return actionContinue, executeControlSound(m, ins)

	case InsSelectPalette, InsSelectVideoBuffer, InsFillVideoBuffer, InsCopyVideoBuffer,
		InsRenderVideoBuffer, InsDrawBackgroundPolygon, InsDrawSpritePolygon, InsDrawString:
		return actionContinue, executeVideo(m, ins)
	}
	return actionContinue, nil
}
