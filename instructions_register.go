// instructions_register.go - Register-family instruction execution

package vm

// executeRegister applies one of the nine register instructions to regs.
// Every variant is a pure mutation; none can fail.
func executeRegister(regs *Registers, ins Instruction) {
	switch ins.Kind {
	case InsRegisterSet:
		regs.Set(ins.Dest, ins.Imm16)
	case InsRegisterCopy:
		regs.Set(ins.Dest, regs.Get(ins.Src))
	case InsRegisterAdd:
		regs.Add(ins.Dest, ins.Src)
	case InsRegisterAddConstant:
		regs.AddConstant(ins.Dest, ins.Imm16)
	case InsRegisterSubtract:
		regs.Subtract(ins.Dest, ins.Src)
	case InsRegisterAnd:
		regs.And(ins.Dest, ins.ImmU16)
	case InsRegisterOr:
		regs.Or(ins.Dest, ins.ImmU16)
	case InsRegisterShiftLeft:
		regs.ShiftLeft(ins.Dest, ins.ShiftBy)
	case InsRegisterShiftRight:
		regs.ShiftRight(ins.Dest, ins.ShiftBy)
	}
}
