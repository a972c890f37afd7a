package asset

import (
	"bytes"
	"image"
	"image/color"
	"image/png"
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/andewx/vkrs"
	"github.com/cockroachdb/errors"
	"github.com/go-gl/mathgl/mgl32"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

const quad = `# unit quad
v 0 0 0
v 1 0 0
v 1 1 0
v 0 1 0
vt 0 0
vt 1 0
vt 1 1
vt 0 1
vn 0 0 1
f 1/1/1 2/2/1 3/3/1 4/4/1
`

func TestParseOBJQuadFan(t *testing.T) {
	mesh, err := ParseOBJ(strings.NewReader(quad))
	require.NoError(t, err)

	assert.Len(t, mesh.Vertices, 4)
	assert.Equal(t, []uint32{0, 1, 2, 0, 2, 3}, mesh.Indices)
	for _, v := range mesh.Vertices {
		assert.Equal(t, mgl32.Vec3{1, 1, 1}, v.Color)
	}
	//v is flipped
	assert.Equal(t, mgl32.Vec2{0, 1}, mesh.Vertices[0].UV)
	assert.Equal(t, mgl32.Vec2{1, 0}, mesh.Vertices[2].UV)
}

func TestParseOBJDedupesSharedCorners(t *testing.T) {
	src := `v 0 0 0
v 1 0 0
v 1 1 0
v 0 1 0
f 1 2 3
f 1 3 4
`
	mesh, err := ParseOBJ(strings.NewReader(src))
	require.NoError(t, err)
	assert.Len(t, mesh.Vertices, 4)
	assert.Equal(t, []uint32{0, 1, 2, 0, 2, 3}, mesh.Indices)
}

func TestParseOBJSamePositionDifferentUV(t *testing.T) {
	src := `v 0 0 0
v 1 0 0
v 1 1 0
vt 0 0
vt 1 1
f 1/1 2/1 3/1
f 1/2 2/1 3/1
`
	mesh, err := ParseOBJ(strings.NewReader(src))
	require.NoError(t, err)
	assert.Len(t, mesh.Vertices, 4)
	assert.Equal(t, []uint32{0, 1, 2, 3, 1, 2}, mesh.Indices)
}

func TestParseOBJNegativeIndices(t *testing.T) {
	src := `v 0 0 0
v 1 0 0
v 1 1 0
f -3 -2 -1
`
	mesh, err := ParseOBJ(strings.NewReader(src))
	require.NoError(t, err)
	assert.Equal(t, []uint32{0, 1, 2}, mesh.Indices)
	assert.Equal(t, mgl32.Vec3{1, 1, 0}, mesh.Vertices[2].Pos)
}

func TestParseOBJErrors(t *testing.T) {
	cases := map[string]string{
		"no faces":     "v 0 0 0\n",
		"out of range": "v 0 0 0\nf 1 2 3\n",
		"short face":   "v 0 0 0\nv 1 0 0\nf 1 2\n",
		"bad float":    "v 0 x 0\n",
		"short vertex": "v 0 0\n",
		"bad index":    "v 0 0 0\nv 1 0 0\nv 1 1 0\nf 1 a 3\n",
		"missing uv":   "v 0 0 0\nv 1 0 0\nv 1 1 0\nf 1/1 2/1 3/1\n",
		"zero index":   "v 0 0 0\nv 1 0 0\nv 1 1 0\nf 0 1 2\n",
	}
	for name, src := range cases {
		t.Run(name, func(t *testing.T) {
			_, err := ParseOBJ(strings.NewReader(src))
			require.Error(t, err)
			assert.True(t, errors.Is(err, vkrs.ErrInvalidModel))
		})
	}
}

func checker() *image.NRGBA {
	img := image.NewNRGBA(image.Rect(0, 0, 2, 2))
	img.Set(0, 0, color.NRGBA{255, 0, 0, 255})
	img.Set(1, 0, color.NRGBA{0, 255, 0, 255})
	img.Set(0, 1, color.NRGBA{0, 0, 255, 255})
	img.Set(1, 1, color.NRGBA{255, 255, 255, 128})
	return img
}

func TestDecodeTexturePNG(t *testing.T) {
	var buf bytes.Buffer
	require.NoError(t, png.Encode(&buf, checker()))

	tex, err := DecodeTexture(&buf)
	require.NoError(t, err)
	assert.Equal(t, uint32(2), tex.Width)
	assert.Equal(t, uint32(2), tex.Height)
	assert.Equal(t, []byte{
		255, 0, 0, 255, 0, 255, 0, 255,
		0, 0, 255, 255, 255, 255, 255, 128,
	}, tex.Pixels)
}

func TestToTextureSubImage(t *testing.T) {
	sub := checker().SubImage(image.Rect(1, 1, 2, 2))
	tex := ToTexture(sub)
	assert.Equal(t, uint32(1), tex.Width)
	assert.Equal(t, []byte{255, 255, 255, 128}, tex.Pixels)
}

func TestDecodeTextureGarbage(t *testing.T) {
	_, err := DecodeTexture(strings.NewReader("not an image"))
	require.Error(t, err)
	assert.True(t, errors.Is(err, vkrs.ErrInvalidModel))
}

func TestLoaderCaches(t *testing.T) {
	dir := t.TempDir()
	mesh_path := filepath.Join(dir, "quad.obj")
	tex_path := filepath.Join(dir, "checker.png")
	require.NoError(t, os.WriteFile(mesh_path, []byte(quad), 0644))

	var buf bytes.Buffer
	require.NoError(t, png.Encode(&buf, checker()))
	require.NoError(t, os.WriteFile(tex_path, buf.Bytes(), 0644))

	loader, err := NewLoader(4)
	require.NoError(t, err)

	cfg := vkrs.ModelConfig{Mesh: mesh_path, Texture: tex_path}
	mesh, tex, err := loader.Model(cfg)
	require.NoError(t, err)
	assert.Len(t, mesh.Indices, 6)
	assert.Equal(t, uint32(2), tex.Width)
	assert.Equal(t, 2, loader.Decodes())

	_, _, err = loader.Model(cfg)
	require.NoError(t, err)
	assert.Equal(t, 2, loader.Decodes())

	loader.Purge()
	_, err = loader.Mesh(mesh_path)
	require.NoError(t, err)
	assert.Equal(t, 3, loader.Decodes())
}

func TestLoaderMissingFile(t *testing.T) {
	loader, err := NewLoader(1)
	require.NoError(t, err)
	_, err = loader.Texture(filepath.Join(t.TempDir(), "missing.png"))
	assert.Error(t, err)
	assert.Equal(t, 0, loader.Decodes())
}
