package cpu

import (
	"testing"

	"github.com/stretchr/testify/assert"

	"github.com/jonathan-gaul/rexta/isa"
)

// FuzzCpu feeds arbitrary byte images to the simulator. Whatever the bytes,
// the CPU must end every step in a defined state and never panic.
func FuzzCpu(f *testing.F) {
	f.Add([]byte{}, uint16(0))
	f.Add([]byte{0x02}, uint16(0))
	f.Add([]byte{0x30, 0x00, 0x0a, 0x02}, uint16(0))
	f.Add([]byte{0xff, 0xff, 0xff}, uint16(0))
	f.Add([]byte{0x53, 0x00, 0x00}, uint16(0xfffd))
	f.Add([]byte{0x50}, uint16(0xffff))

	f.Fuzz(func(t *testing.T, image []byte, sp uint16) {
		assert := assert.New(t)

		cpu := NewCpu(isa.Rexta16())
		cpu.Sp = uint32(sp)

		if len(image) > len(cpu.Mem) {
			image = image[:len(cpu.Mem)]
		}

		err := cpu.Load(image, 0)
		assert.NoError(err)

		// Bound the run; arbitrary images may loop forever.
		for range 10000 {
			halted, err := cpu.Step()
			if halted || err != nil {
				break
			}
		}

		switch cpu.State {
		case STATE_RUNNING, STATE_HALTED, STATE_FAULTED:
			// pass
		default:
			t.Fatalf("undefined state %v", cpu.State)
		}

		assert.True(cpu.Pc <= cpu.Variant.MemSize)
	})
}
