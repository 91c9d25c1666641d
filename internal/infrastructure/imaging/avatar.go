// Package imaging normalizes uploaded avatars.
package imaging

import (
	"bytes"
	"fmt"
	"image"
	"image/jpeg"

	"golang.org/x/image/draw"

	"github.com/otenet/task-manager/internal/core/domain"
)

const (
	AvatarSize    = 250
	avatarQuality = 85
)

// AvatarProcessor decodes a JPEG, crops it to a centered square and scales it
// to AvatarSize x AvatarSize.
type AvatarProcessor struct {
	size int
}

func NewAvatarProcessor() *AvatarProcessor {
	return &AvatarProcessor{size: AvatarSize}
}

func (p *AvatarProcessor) Process(raw []byte) ([]byte, error) {
	src, err := jpeg.Decode(bytes.NewReader(raw))
	if err != nil {
		return nil, domain.NewValidationError("avatar", "please upload a valid jpeg image")
	}

	dst := image.NewRGBA(image.Rect(0, 0, p.size, p.size))
	draw.CatmullRom.Scale(dst, dst.Bounds(), src, squareCrop(src.Bounds()), draw.Src, nil)

	var buf bytes.Buffer
	if err := jpeg.Encode(&buf, dst, &jpeg.Options{Quality: avatarQuality}); err != nil {
		return nil, fmt.Errorf("encode avatar: %w", err)
	}
	return buf.Bytes(), nil
}

// squareCrop returns the largest square centered in b.
func squareCrop(b image.Rectangle) image.Rectangle {
	w, h := b.Dx(), b.Dy()
	side := min(w, h)
	x0 := b.Min.X + (w-side)/2
	y0 := b.Min.Y + (h-side)/2
	return image.Rect(x0, y0, x0+side, y0+side)
}
