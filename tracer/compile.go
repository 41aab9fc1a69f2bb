package tracer

import (
	"encoding/binary"
	"errors"
	"fmt"

	"github.com/gogpu/naga"
)

var errMisalignedSPIRV = errors.New("tracer: SPIR-V output is not a whole number of words")

// Compile WGSL source into SPIR-V words.
func CompileSPIRV(src string) ([]uint32, error) {
	spirvBytes, err := naga.Compile(src)
	if err != nil {
		return nil, fmt.Errorf("tracer: could not compile shader: %w", err)
	}
	return spirvWords(spirvBytes)
}

// SPIR-V is a stream of little-endian 32-bit words.
func spirvWords(spirvBytes []byte) ([]uint32, error) {
	if len(spirvBytes)%4 != 0 {
		return nil, errMisalignedSPIRV
	}

	words := make([]uint32, len(spirvBytes)/4)
	for i := range words {
		words[i] = binary.LittleEndian.Uint32(spirvBytes[i*4:])
	}
	return words, nil
}
