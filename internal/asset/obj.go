//Package asset turns files on disk into the mesh and texture data the renderer uploads
package asset

import (
	"bufio"
	"io"
	"os"
	"strconv"
	"strings"

	"github.com/andewx/vkrs"
	"github.com/cockroachdb/errors"
	"github.com/go-gl/mathgl/mgl32"
)

var white = mgl32.Vec3{1, 1, 1}

//A face corner: position and texture coordinate index, both already zero based. uv is -1 when absent.
type corner struct {
	pos int
	uv  int
}

type objDecoder struct {
	line      int
	positions []mgl32.Vec3
	uvs       []mgl32.Vec2
	unique    map[corner]uint32
	mesh      vkrs.MeshData
}

//ParseOBJ reads positions, texture coordinates and faces of a Wavefront OBJ stream. Faces with more
//than three corners are split into a fan. Every distinct position/uv pair becomes one vertex with a
//white color, v is flipped so the first texel row is the top of the image.
func ParseOBJ(r io.Reader) (vkrs.MeshData, error) {
	dec := objDecoder{unique: map[corner]uint32{}}
	scanner := bufio.NewScanner(r)
	for scanner.Scan() {
		dec.line++
		if err := dec.parseLine(scanner.Text()); err != nil {
			return vkrs.MeshData{}, errors.Mark(errors.Wrapf(err, "obj line %d", dec.line), vkrs.ErrInvalidModel)
		}
	}
	if err := scanner.Err(); err != nil {
		return vkrs.MeshData{}, errors.Wrap(err, "read obj")
	}
	if len(dec.mesh.Indices) == 0 {
		return vkrs.MeshData{}, errors.Mark(errors.New("obj has no faces"), vkrs.ErrInvalidModel)
	}
	return dec.mesh, nil
}

func LoadOBJ(path string) (vkrs.MeshData, error) {
	file, err := os.Open(path)
	if err != nil {
		return vkrs.MeshData{}, errors.Wrapf(err, "open mesh %s", path)
	}
	defer file.Close()
	mesh, err := ParseOBJ(file)
	if err != nil {
		return vkrs.MeshData{}, errors.Wrapf(err, "mesh %s", path)
	}
	return mesh, nil
}

func (dec *objDecoder) parseLine(line string) error {
	fields := strings.Fields(line)
	if len(fields) == 0 || strings.HasPrefix(fields[0], "#") {
		return nil
	}
	switch fields[0] {
	case "v":
		v, err := parseFloats(fields[1:], 3)
		if err != nil {
			return err
		}
		dec.positions = append(dec.positions, mgl32.Vec3{v[0], v[1], v[2]})
	case "vt":
		v, err := parseFloats(fields[1:], 2)
		if err != nil {
			return err
		}
		dec.uvs = append(dec.uvs, mgl32.Vec2{v[0], 1 - v[1]})
	case "f":
		return dec.parseFace(fields[1:])
	}
	//Normals, groups, materials and smoothing are not used
	return nil
}

func parseFloats(fields []string, n int) ([]float32, error) {
	if len(fields) < n {
		return nil, errors.Newf("expected %d values, got %d", n, len(fields))
	}
	out := make([]float32, n)
	for i := 0; i < n; i++ {
		val, err := strconv.ParseFloat(fields[i], 32)
		if err != nil {
			return nil, err
		}
		out[i] = float32(val)
	}
	return out, nil
}

//OBJ indices are one based, negative values count back from the last element read so far
func resolveIndex(field string, count int) (int, error) {
	idx, err := strconv.Atoi(field)
	if err != nil {
		return 0, err
	}
	switch {
	case idx > 0 && idx <= count:
		return idx - 1, nil
	case idx < 0 && -idx <= count:
		return count + idx, nil
	}
	return 0, errors.Newf("index %d out of range for %d elements", idx, count)
}

func (dec *objDecoder) parseCorner(field string) (corner, error) {
	parts := strings.Split(field, "/")
	pos, err := resolveIndex(parts[0], len(dec.positions))
	if err != nil {
		return corner{}, err
	}
	c := corner{pos: pos, uv: -1}
	if len(parts) > 1 && parts[1] != "" {
		if c.uv, err = resolveIndex(parts[1], len(dec.uvs)); err != nil {
			return corner{}, err
		}
	}
	return c, nil
}

func (dec *objDecoder) vertex(c corner) uint32 {
	if idx, ok := dec.unique[c]; ok {
		return idx
	}
	v := vkrs.Vertex{Pos: dec.positions[c.pos], Color: white}
	if c.uv >= 0 {
		v.UV = dec.uvs[c.uv]
	}
	idx := uint32(len(dec.mesh.Vertices))
	dec.mesh.Vertices = append(dec.mesh.Vertices, v)
	dec.unique[c] = idx
	return idx
}

func (dec *objDecoder) parseFace(fields []string) error {
	if len(fields) < 3 {
		return errors.Newf("face with %d corners", len(fields))
	}
	indices := make([]uint32, len(fields))
	for i, field := range fields {
		c, err := dec.parseCorner(field)
		if err != nil {
			return err
		}
		indices[i] = dec.vertex(c)
	}
	for i := 1; i+1 < len(indices); i++ {
		dec.mesh.Indices = append(dec.mesh.Indices, indices[0], indices[i], indices[i+1])
	}
	return nil
}
