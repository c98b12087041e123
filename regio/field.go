package regio

// Field is a bit field inside a 32-bit register.
type Field struct {
	Shift uint8
	Width uint8
}

// Word covers a whole register.
var Word = Field{Shift: 0, Width: 32}

// Bit returns a single-bit field.
func Bit(n uint8) Field {
	return Field{Shift: n, Width: 1}
}

// Mask returns the field's bits in register position.
func (f Field) Mask() uint32 {
	if f.Width >= 32 {
		return ^uint32(0) << f.Shift
	}
	return ((uint32(1) << f.Width) - 1) << f.Shift
}

// Read extracts the field from a register value.
func (f Field) Read(reg uint32) uint32 {
	return (reg & f.Mask()) >> f.Shift
}

// Write returns reg with the field replaced by value. Bits of value beyond the field width
// are dropped.
func (f Field) Write(reg, value uint32) uint32 {
	return (reg &^ f.Mask()) | ((value << f.Shift) & f.Mask())
}

// Set returns reg with every bit of the field set.
func (f Field) Set(reg uint32) uint32 {
	return reg | f.Mask()
}

// Clear returns reg with every bit of the field cleared.
func (f Field) Clear(reg uint32) uint32 {
	return reg &^ f.Mask()
}

// Fits reports whether value can be stored in the field without truncation.
func (f Field) Fits(value uint32) bool {
	return value <= f.Mask()>>f.Shift
}
