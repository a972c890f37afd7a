package asset

import (
	"image"
	_ "image/jpeg"
	_ "image/png"
	"io"
	"os"

	"github.com/andewx/vkrs"
	"github.com/cockroachdb/errors"
	_ "golang.org/x/image/bmp"
	"golang.org/x/image/draw"
	_ "golang.org/x/image/tiff"
	_ "golang.org/x/image/webp"
)

//DecodeTexture decodes any registered image format into tightly packed straight alpha RGBA8
func DecodeTexture(r io.Reader) (vkrs.TextureData, error) {
	img, _, err := image.Decode(r)
	if err != nil {
		return vkrs.TextureData{}, errors.Mark(errors.Wrap(err, "decode texture"), vkrs.ErrInvalidModel)
	}
	return ToTexture(img), nil
}

//ToTexture copies img into an RGBA8 buffer whose first row is the top of the image
func ToTexture(img image.Image) vkrs.TextureData {
	bounds := img.Bounds()
	rgba, ok := img.(*image.NRGBA)
	if !ok || rgba.Stride != 4*bounds.Dx() || bounds.Min != (image.Point{}) {
		rgba = image.NewNRGBA(image.Rect(0, 0, bounds.Dx(), bounds.Dy()))
		draw.Draw(rgba, rgba.Bounds(), img, bounds.Min, draw.Src)
	}
	return vkrs.TextureData{
		Width:  uint32(bounds.Dx()),
		Height: uint32(bounds.Dy()),
		Pixels: rgba.Pix[:4*bounds.Dx()*bounds.Dy()],
	}
}

func LoadTexture(path string) (vkrs.TextureData, error) {
	file, err := os.Open(path)
	if err != nil {
		return vkrs.TextureData{}, errors.Wrapf(err, "open texture %s", path)
	}
	defer file.Close()
	tex, err := DecodeTexture(file)
	if err != nil {
		return vkrs.TextureData{}, errors.Wrapf(err, "texture %s", path)
	}
	return tex, nil
}
