// Package meshio reads and writes STL surfaces as kernel meshes.
package meshio

import (
	"bufio"
	"bytes"
	"encoding/binary"
	"errors"
	"fmt"
	"io"
	"math"
	"strconv"
	"strings"

	"github.com/chazu/urdfkit/pkg/kernel"
	"github.com/go-gl/mathgl/mgl64"
)

const (
	headerSize = 80
	recordSize = 4*3*4 + 2 // normal, three vertices, attribute count
)

// ErrTruncated is returned for a binary STL shorter than its triangle
// count promises.
var ErrTruncated = errors.New("meshio: truncated binary STL")

// ReadSTL reads a binary or ASCII STL. Identical vertices are shared so
// the result is an indexed mesh; normals are not carried over since the
// engine derives orientation from winding.
func ReadSTL(r io.Reader) (*kernel.Mesh, error) {
	data, err := io.ReadAll(r)
	if err != nil {
		return nil, fmt.Errorf("meshio: read: %w", err)
	}
	if isBinary(data) {
		return readBinary(data)
	}
	if bytes.HasPrefix(bytes.TrimLeft(data, " \t\r\n"), []byte("solid")) {
		return readASCII(data)
	}
	return readBinary(data)
}

// isBinary trusts the triangle count when it matches the payload size,
// since binary headers may themselves start with "solid".
func isBinary(data []byte) bool {
	if len(data) < headerSize+4 {
		return false
	}
	n := binary.LittleEndian.Uint32(data[headerSize:])
	return uint64(len(data)) == uint64(headerSize+4)+uint64(n)*recordSize
}

type builder struct {
	mesh  *kernel.Mesh
	index map[[3]float64]uint32
}

func newBuilder(name string) *builder {
	return &builder{
		mesh:  &kernel.Mesh{PartName: name},
		index: make(map[[3]float64]uint32),
	}
}

func (b *builder) vertex(v [3]float64) {
	i, ok := b.index[v]
	if !ok {
		i = uint32(len(b.mesh.Vertices) / 3)
		b.mesh.Vertices = append(b.mesh.Vertices, v[0], v[1], v[2])
		b.index[v] = i
	}
	b.mesh.Indices = append(b.mesh.Indices, i)
}

func readBinary(data []byte) (*kernel.Mesh, error) {
	if len(data) < headerSize+4 {
		return nil, ErrTruncated
	}
	name := strings.TrimRight(string(data[:headerSize]), " \x00")
	n := int(binary.LittleEndian.Uint32(data[headerSize:]))
	body := data[headerSize+4:]
	if len(body) < n*recordSize {
		return nil, fmt.Errorf("%w: %d triangles need %d bytes, have %d", ErrTruncated, n, n*recordSize, len(body))
	}

	b := newBuilder(name)
	for t := 0; t < n; t++ {
		rec := body[t*recordSize:]
		for v := 0; v < 3; v++ {
			var p [3]float64
			for c := 0; c < 3; c++ {
				const start = 3 * 4 // skip normal
				p[c] = float64(math.Float32frombits(binary.LittleEndian.Uint32(rec[start+12*v+4*c:])))
			}
			b.vertex(p)
		}
	}
	return b.mesh, nil
}

func readASCII(data []byte) (*kernel.Mesh, error) {
	sc := bufio.NewScanner(bytes.NewReader(data))
	sc.Buffer(make([]byte, 64*1024), 1024*1024)
	var b *builder
	line := 0
	for sc.Scan() {
		line++
		fields := strings.Fields(sc.Text())
		if len(fields) == 0 {
			continue
		}
		switch fields[0] {
		case "solid":
			if b == nil {
				b = newBuilder(strings.Join(fields[1:], " "))
			}
		case "vertex":
			if b == nil {
				b = newBuilder("")
			}
			if len(fields) != 4 {
				return nil, fmt.Errorf("meshio: line %d: vertex wants 3 coordinates", line)
			}
			var p [3]float64
			for c := 0; c < 3; c++ {
				x, err := strconv.ParseFloat(fields[c+1], 64)
				if err != nil {
					return nil, fmt.Errorf("meshio: line %d: %w", line, err)
				}
				p[c] = x
			}
			b.vertex(p)
		}
	}
	if err := sc.Err(); err != nil {
		return nil, fmt.Errorf("meshio: scan: %w", err)
	}
	if b == nil {
		return nil, fmt.Errorf("meshio: no solid found")
	}
	return b.mesh, nil
}

// WriteSTL writes m as binary STL with face normals derived from winding.
// Cells that are not triangles are skipped.
func WriteSTL(w io.Writer, m *kernel.Mesh) error {
	tris := m.Triangles()
	var header [headerSize]byte
	copy(header[:], m.PartName)

	bw := bufio.NewWriter(w)
	if _, err := bw.Write(header[:]); err != nil {
		return err
	}
	if err := binary.Write(bw, binary.LittleEndian, uint32(len(tris))); err != nil {
		return err
	}
	var rec [recordSize]byte
	for _, t := range tris {
		put := func(off int, v mgl64.Vec3) {
			for c := 0; c < 3; c++ {
				binary.LittleEndian.PutUint32(rec[off+4*c:], math.Float32bits(float32(v[c])))
			}
		}
		put(0, t.Normal())
		for v := 0; v < 3; v++ {
			put(12+12*v, t[v])
		}
		if _, err := bw.Write(rec[:]); err != nil {
			return err
		}
	}
	return bw.Flush()
}
