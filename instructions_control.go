// instructions_control.go - Control-flow and thread/resource-control instructions

package vm

// action is what an executed instruction tells the scheduler to do next,
// per spec.md §4.13 ("Action ∈ {continue, yield-thread, deactivate-thread}").
type action int

const (
	actionContinue action = iota
	actionYield
	actionDeactivate
)

// executeControl applies one control-flow, thread-control, or
// resource-control instruction. cursor is the current thread's program
// cursor; stack is that thread's call stack; m.Threads is the shared
// 64-entry table; id is the thread currently executing.
func executeControl(m *Machine, ins Instruction, cursor *programCursor, stack *callStack, id ThreadId) (action, error) {
	switch ins.Kind {
	case InsJump:
		return actionContinue, cursor.jump(ins.Addr)

	case InsCall:
		if err := stack.push(cursor.counter); err != nil {
			return actionContinue, err
		}
		return actionContinue, cursor.jump(ins.Addr)

	case InsReturn:
		addr, err := stack.pop()
		if err != nil {
			return actionContinue, err
		}
		return actionContinue, cursor.jump(addr)

	case InsJumpConditional:
		taken, err := evaluateCompare(&m.Registers, ins)
		if err != nil {
			return actionContinue, err
		}
		if taken {
			return actionContinue, cursor.jump(ins.Addr)
		}
		return actionContinue, nil

	case InsJumpIfNotZero:
		if m.Registers.DecrementAndCheckZero(ins.Src) {
			return actionContinue, cursor.jump(ins.Addr)
		}
		return actionContinue, nil

	case InsYield:
		return actionYield, nil

	case InsKill:
		m.Threads.Kill(id)
		return actionDeactivate, nil

	case InsActivateThread:
		return actionContinue, m.Threads.ScheduleActivate(ins.ThreadId, ins.Addr)

	case InsControlThreads:
		return actionContinue, m.Threads.ScheduleControl(ins.FirstThread, ins.LastThread, ins.ControlThreadsOp)

	case InsControlResources:
		return actionContinue, m.controlResources(ins.ResourceId)
	}
	return actionContinue, nil
}

// evaluateCompare resolves JumpConditional's right-hand operand and
// applies CompareOp against the named register.
func evaluateCompare(regs *Registers, ins Instruction) (bool, error) {
	lhs := regs.Get(ins.CompareReg)
	var rhs int16
	if ins.Operand.isRegister {
		rhs = regs.Get(ins.Operand.register)
	} else {
		rhs = ins.Operand.immediate
	}
	switch ins.CompareOp {
	case CompareEqual:
		return lhs == rhs, nil
	case CompareNotEqual:
		return lhs != rhs, nil
	case CompareGreater:
		return lhs > rhs, nil
	case CompareGreaterOrEqual:
		return lhs >= rhs, nil
	case CompareLess:
		return lhs < rhs, nil
	case CompareLessOrEqual:
		return lhs <= rhs, nil
	}
	return false, nil
}

// controlResources implements ControlResources(id) per spec.md §4.13:
// id 0 unloads every individual resource; a known game-part id schedules
// that part for the next tic's prelude; any other id loads that single
// resource immediately, blitting bitmap resources into video buffer 0.
func (m *Machine) controlResources(id ResourceId) error {
	if id == 0 {
		m.Resources.UnloadAllResources()
		return nil
	}
	if part, ok := gamePartForId(id); ok {
		m.scheduledPart = &part
		return nil
	}
	loaded, err := m.Resources.LoadIndividualResource(id)
	if err != nil {
		return err
	}
	if loaded.Kind == ResourceKindBitmap {
		m.Video.LoadBitmap(loaded.Data)
	}
	return nil
}
