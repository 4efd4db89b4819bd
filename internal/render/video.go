package render

import (
	"bytes"
	"fmt"
	"image"
	"image/color/palette"
	"image/draw"
	"image/gif"
	"image/jpeg"
	"os"

	"github.com/icza/mjpeg"
)

// WriteGIF encodes frames to an animated GIF. delay is the per-frame delay
// in hundredths of a second.
func WriteGIF(path string, frames []image.Image, delay int) error {
	if len(frames) == 0 {
		return fmt.Errorf("no frames to encode")
	}

	out := &gif.GIF{}
	for _, img := range frames {
		bounds := img.Bounds()
		paletted := image.NewPaletted(bounds, palette.Plan9)
		draw.Draw(paletted, bounds, img, bounds.Min, draw.Src)
		out.Image = append(out.Image, paletted)
		out.Delay = append(out.Delay, delay)
	}

	f, err := os.Create(path)
	if err != nil {
		return fmt.Errorf("create gif: %w", err)
	}
	defer f.Close()

	if err := gif.EncodeAll(f, out); err != nil {
		return fmt.Errorf("encode gif: %w", err)
	}
	return nil
}

// WriteAVI encodes frames to a motion-JPEG AVI at the given frame rate.
func WriteAVI(path string, frames []image.Image, fps int32) error {
	if len(frames) == 0 {
		return fmt.Errorf("no frames to encode")
	}

	bounds := frames[0].Bounds()
	aw, err := mjpeg.New(path, int32(bounds.Dx()), int32(bounds.Dy()), fps)
	if err != nil {
		return fmt.Errorf("create avi writer: %w", err)
	}

	var buf bytes.Buffer
	opts := &jpeg.Options{Quality: 75}
	for _, img := range frames {
		buf.Reset()
		if err := jpeg.Encode(&buf, img, opts); err != nil {
			aw.Close()
			return fmt.Errorf("encode frame: %w", err)
		}
		if err := aw.AddFrame(buf.Bytes()); err != nil {
			aw.Close()
			return fmt.Errorf("add frame: %w", err)
		}
	}
	return aw.Close()
}
