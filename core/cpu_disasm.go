package core

import "fmt"

// disassemble produces a single best-effort disassembly line for the
// opcode at addr, for StepCyclesDebug's callback. It decodes the
// mnemonic and operand bytes but not symbolic addressing (no label
// table is available to the core).
func disassemble(bus *Bus, addr uint16) string {
	opcode := bus.Read(addr)
	entry := mnemonics[opcode]
	switch entry.length {
	case 1:
		return fmt.Sprintf("%04X: %02X        %s", addr, opcode, entry.name)
	case 2:
		op := bus.Read(addr + 1)
		return fmt.Sprintf("%04X: %02X %02X     %s $%02X", addr, opcode, op, entry.name, op)
	default:
		lo := bus.Read(addr + 1)
		hi := bus.Read(addr + 2)
		return fmt.Sprintf("%04X: %02X %02X %02X  %s $%02X%02X", addr, opcode, lo, hi, entry.name, hi, lo)
	}
}

type mnemonicEntry struct {
	name   string
	length uint8
}

// mnemonics gives each opcode byte a display name and operand length,
// spanning both NMOS undocumented slots (shown as their documented
// behavior per §4.1, e.g. "NOP") and 65C02 additions (BRA/STZ/PHX/...).
var mnemonics = [256]mnemonicEntry{
	0x00: {"BRK", 1}, 0x01: {"ORA", 2}, 0x04: {"TSB", 2}, 0x05: {"ORA", 2},
	0x06: {"ASL", 2}, 0x08: {"PHP", 1}, 0x09: {"ORA", 2}, 0x0A: {"ASL", 1},
	0x0C: {"TSB", 3}, 0x0D: {"ORA", 3}, 0x0E: {"ASL", 3}, 0x10: {"BPL", 2},
	0x11: {"ORA", 2}, 0x12: {"ORA", 2}, 0x14: {"TRB", 2}, 0x15: {"ORA", 2},
	0x16: {"ASL", 2}, 0x18: {"CLC", 1}, 0x19: {"ORA", 3}, 0x1A: {"INC", 1},
	0x1C: {"TRB", 3}, 0x1D: {"ORA", 3}, 0x1E: {"ASL", 3}, 0x20: {"JSR", 3},
	0x21: {"AND", 2}, 0x24: {"BIT", 2}, 0x25: {"AND", 2}, 0x26: {"ROL", 2},
	0x28: {"PLP", 1}, 0x29: {"AND", 2}, 0x2A: {"ROL", 1}, 0x2C: {"BIT", 3},
	0x2D: {"AND", 3}, 0x2E: {"ROL", 3}, 0x30: {"BMI", 2}, 0x31: {"AND", 2},
	0x32: {"AND", 2}, 0x34: {"BIT", 2}, 0x35: {"AND", 2}, 0x36: {"ROL", 2},
	0x38: {"SEC", 1}, 0x39: {"AND", 3}, 0x3A: {"DEC", 1}, 0x3C: {"BIT", 3},
	0x3D: {"AND", 3}, 0x3E: {"ROL", 3}, 0x40: {"RTI", 1}, 0x41: {"EOR", 2},
	0x45: {"EOR", 2}, 0x46: {"LSR", 2}, 0x48: {"PHA", 1}, 0x49: {"EOR", 2},
	0x4A: {"LSR", 1}, 0x4C: {"JMP", 3}, 0x4D: {"EOR", 3}, 0x4E: {"LSR", 3},
	0x50: {"BVC", 2}, 0x51: {"EOR", 2}, 0x52: {"EOR", 2}, 0x55: {"EOR", 2},
	0x56: {"LSR", 2}, 0x58: {"CLI", 1}, 0x59: {"EOR", 3}, 0x5A: {"PHY", 1},
	0x5D: {"EOR", 3}, 0x5E: {"LSR", 3}, 0x60: {"RTS", 1}, 0x61: {"ADC", 2},
	0x64: {"STZ", 2}, 0x65: {"ADC", 2}, 0x66: {"ROR", 2}, 0x68: {"PLA", 1},
	0x69: {"ADC", 2}, 0x6A: {"ROR", 1}, 0x6C: {"JMP", 3}, 0x6D: {"ADC", 3},
	0x6E: {"ROR", 3}, 0x70: {"BVS", 2}, 0x71: {"ADC", 2}, 0x72: {"ADC", 2},
	0x74: {"STZ", 2}, 0x75: {"ADC", 2}, 0x76: {"ROR", 2}, 0x78: {"SEI", 1},
	0x79: {"ADC", 3}, 0x7A: {"PLY", 1}, 0x7C: {"JMP", 3}, 0x7D: {"ADC", 3},
	0x7E: {"ROR", 3}, 0x80: {"BRA", 2}, 0x81: {"STA", 2}, 0x84: {"STY", 2},
	0x85: {"STA", 2}, 0x86: {"STX", 2}, 0x88: {"DEY", 1}, 0x89: {"BIT", 2},
	0x8A: {"TXA", 1}, 0x8C: {"STY", 3}, 0x8D: {"STA", 3}, 0x8E: {"STX", 3},
	0x90: {"BCC", 2}, 0x91: {"STA", 2}, 0x92: {"STA", 2}, 0x94: {"STY", 2},
	0x95: {"STA", 2}, 0x96: {"STX", 2}, 0x98: {"TYA", 1}, 0x99: {"STA", 3},
	0x9A: {"TXS", 1}, 0x9C: {"STZ", 3}, 0x9D: {"STA", 3}, 0x9E: {"STZ", 3},
	0xA0: {"LDY", 2}, 0xA1: {"LDA", 2}, 0xA2: {"LDX", 2}, 0xA4: {"LDY", 2},
	0xA5: {"LDA", 2}, 0xA6: {"LDX", 2}, 0xA8: {"TAY", 1}, 0xA9: {"LDA", 2},
	0xAA: {"TAX", 1}, 0xAC: {"LDY", 3}, 0xAD: {"LDA", 3}, 0xAE: {"LDX", 3},
	0xB0: {"BCS", 2}, 0xB1: {"LDA", 2}, 0xB2: {"LDA", 2}, 0xB4: {"LDY", 2},
	0xB5: {"LDA", 2}, 0xB6: {"LDX", 2}, 0xB8: {"CLV", 1}, 0xB9: {"LDA", 3},
	0xBA: {"TSX", 1}, 0xBC: {"LDY", 3}, 0xBD: {"LDA", 3}, 0xBE: {"LDX", 3},
	0xC0: {"CPY", 2}, 0xC1: {"CMP", 2}, 0xC4: {"CPY", 2}, 0xC5: {"CMP", 2},
	0xC6: {"DEC", 2}, 0xC8: {"INY", 1}, 0xC9: {"CMP", 2}, 0xCA: {"DEX", 1},
	0xCC: {"CPY", 3}, 0xCD: {"CMP", 3}, 0xCE: {"DEC", 3}, 0xD0: {"BNE", 2},
	0xD1: {"CMP", 2}, 0xD2: {"CMP", 2}, 0xD5: {"CMP", 2}, 0xD6: {"DEC", 2},
	0xD8: {"CLD", 1}, 0xD9: {"CMP", 3}, 0xDA: {"PHX", 1}, 0xDD: {"CMP", 3},
	0xDE: {"DEC", 3}, 0xE0: {"CPX", 2}, 0xE1: {"SBC", 2}, 0xE4: {"CPX", 2},
	0xE5: {"SBC", 2}, 0xE6: {"INC", 2}, 0xE8: {"INX", 1}, 0xE9: {"SBC", 2},
	0xEA: {"NOP", 1}, 0xEC: {"CPX", 3}, 0xED: {"SBC", 3}, 0xEE: {"INC", 3},
	0xF0: {"BEQ", 2}, 0xF1: {"SBC", 2}, 0xF2: {"SBC", 2}, 0xF5: {"SBC", 2},
	0xF6: {"INC", 2}, 0xF8: {"SED", 1}, 0xF9: {"SBC", 3}, 0xFA: {"PLX", 1},
	0xFD: {"SBC", 3}, 0xFE: {"INC", 3},
}

func init() {
	for i := range mnemonics {
		if mnemonics[i].name == "" {
			mnemonics[i] = mnemonicEntry{"NOP", 1}
		}
	}
}
