package pipeline

import (
	"io"
	"os"

	"github.com/cockroachdb/errors"
	"github.com/vkngwrapper/bringup/gpuerr"
	"golang.org/x/sync/errgroup"
)

// GrowthPolicy controls the read buffer used for shader binaries: it starts at Initial
// bytes and its capacity is multiplied by Factor every time it fills up.
type GrowthPolicy struct {
	Initial int
	Factor  int
}

var DefaultGrowth = GrowthPolicy{Initial: 1024, Factor: 2}

func (g GrowthPolicy) valid() bool {
	return g.Initial > 0 && g.Factor > 1
}

// ShaderBinaries are the raw SPIR-V files for the two programmable stages.
type ShaderBinaries struct {
	Vertex   []byte
	Fragment []byte
}

// ReadShaderBinary reads r to EOF. The returned slice's capacity reflects the growth
// policy.
func ReadShaderBinary(r io.Reader, growth GrowthPolicy) ([]byte, error) {
	if !growth.valid() {
		return nil, errors.Newf("invalid growth policy %+v", growth)
	}

	buffer := make([]byte, 0, growth.Initial)
	for {
		if len(buffer) == cap(buffer) {
			grown := make([]byte, len(buffer), cap(buffer)*growth.Factor)
			copy(grown, buffer)
			buffer = grown
		}

		n, err := r.Read(buffer[len(buffer):cap(buffer)])
		buffer = buffer[:len(buffer)+n]
		if err == io.EOF {
			return buffer, nil
		}
		if err != nil {
			return nil, gpuerr.FileIOf(err, "read shader binary after %d bytes", len(buffer))
		}
	}
}

func LoadShaderBinary(path string, growth GrowthPolicy) ([]byte, error) {
	file, err := os.Open(path)
	if err != nil {
		return nil, gpuerr.FileIOf(err, "open shader %s", path)
	}
	defer file.Close()

	binary, err := ReadShaderBinary(file, growth)
	if err != nil {
		return nil, errors.Wrapf(err, "shader %s", path)
	}
	return binary, nil
}

// LoadShaderBinaries reads both stage files concurrently.
func LoadShaderBinaries(vertexPath, fragmentPath string, growth GrowthPolicy) (ShaderBinaries, error) {
	var binaries ShaderBinaries
	var group errgroup.Group

	group.Go(func() error {
		var err error
		binaries.Vertex, err = LoadShaderBinary(vertexPath, growth)
		return err
	})
	group.Go(func() error {
		var err error
		binaries.Fragment, err = LoadShaderBinary(fragmentPath, growth)
		return err
	})

	if err := group.Wait(); err != nil {
		return ShaderBinaries{}, err
	}
	return binaries, nil
}

// Bytecode packs a SPIR-V binary into little-endian 32-bit words.
func Bytecode(b []byte) ([]uint32, error) {
	if len(b) == 0 || len(b)%4 != 0 {
		return nil, errors.Mark(errors.Newf("shader binary length %d is not a positive multiple of 4", len(b)), gpuerr.ErrFileIO)
	}

	byteCode := make([]uint32, len(b)/4)
	for i := 0; i < len(byteCode); i++ {
		byteIndex := i * 4
		byteCode[i] = 0
		byteCode[i] |= uint32(b[byteIndex])
		byteCode[i] |= uint32(b[byteIndex+1]) << 8
		byteCode[i] |= uint32(b[byteIndex+2]) << 16
		byteCode[i] |= uint32(b[byteIndex+3]) << 24
	}

	return byteCode, nil
}
