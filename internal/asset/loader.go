package asset

import (
	"github.com/andewx/vkrs"
	"github.com/cockroachdb/errors"
	lru "github.com/hashicorp/golang-lru/v2"
)

//Loader caches decoded meshes and textures by path so several models sharing a file decode it once
type Loader struct {
	meshes   *lru.Cache[string, vkrs.MeshData]
	textures *lru.Cache[string, vkrs.TextureData]
	decodes  int
}

func NewLoader(size int) (*Loader, error) {
	meshes, err := lru.New[string, vkrs.MeshData](size)
	if err != nil {
		return nil, errors.Wrap(err, "mesh cache")
	}
	textures, err := lru.New[string, vkrs.TextureData](size)
	if err != nil {
		return nil, errors.Wrap(err, "texture cache")
	}
	return &Loader{meshes: meshes, textures: textures}, nil
}

func (l *Loader) Mesh(path string) (vkrs.MeshData, error) {
	if mesh, ok := l.meshes.Get(path); ok {
		return mesh, nil
	}
	mesh, err := LoadOBJ(path)
	if err != nil {
		return vkrs.MeshData{}, err
	}
	l.decodes++
	l.meshes.Add(path, mesh)
	return mesh, nil
}

func (l *Loader) Texture(path string) (vkrs.TextureData, error) {
	if tex, ok := l.textures.Get(path); ok {
		return tex, nil
	}
	tex, err := LoadTexture(path)
	if err != nil {
		return vkrs.TextureData{}, err
	}
	l.decodes++
	l.textures.Add(path, tex)
	return tex, nil
}

//Model loads the mesh and texture a model entry of the config names
func (l *Loader) Model(cfg vkrs.ModelConfig) (vkrs.MeshData, vkrs.TextureData, error) {
	mesh, err := l.Mesh(cfg.Mesh)
	if err != nil {
		return vkrs.MeshData{}, vkrs.TextureData{}, err
	}
	tex, err := l.Texture(cfg.Texture)
	if err != nil {
		return vkrs.MeshData{}, vkrs.TextureData{}, err
	}
	return mesh, tex, nil
}

//Decodes counts files actually read from disk
func (l *Loader) Decodes() int {
	return l.decodes
}

func (l *Loader) Purge() {
	l.meshes.Purge()
	l.textures.Purge()
}
