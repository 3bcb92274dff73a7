// cursor.go - Byte-addressable program cursor

package vm

// programCursor walks a bytecode slice with typed, width-advancing reads.
type programCursor struct {
	bytecode []byte
	counter  int
}

func newProgramCursor(bytecode []byte) programCursor {
	return programCursor{bytecode: bytecode}
}

// isAtEnd reports whether the counter has reached the end of the program.
func (c *programCursor) isAtEnd() bool {
	return c.counter == len(c.bytecode)
}

// u8 reads one byte and advances the counter by 1.
func (c *programCursor) u8() (byte, error) {
	if c.counter >= len(c.bytecode) {
		return 0, ErrEndOfProgram
	}
	b := c.bytecode[c.counter]
	c.counter++
	return b, nil
}

// u16 reads a big-endian unsigned 16-bit value and advances by 2.
func (c *programCursor) u16() (uint16, error) {
	if c.counter+2 > len(c.bytecode) {
		return 0, ErrEndOfProgram
	}
	v := uint16(c.bytecode[c.counter])<<8 | uint16(c.bytecode[c.counter+1])
	c.counter += 2
	return v, nil
}

// i16 reads a big-endian signed 16-bit value and advances by 2.
func (c *programCursor) i16() (int16, error) {
	v, err := c.u16()
	if err != nil {
		return 0, err
	}
	return int16(v), nil
}

// jump sets the counter to addr. Fails with ErrInvalidAddress if
// addr >= len(bytecode).
func (c *programCursor) jump(addr int) error {
	if addr < 0 || addr >= len(c.bytecode) {
		return ErrInvalidAddress
	}
	c.counter = addr
	return nil
}
