package video

import (
	"bytes"
	"context"
	"errors"
	"fmt"
	"image"
	"image/draw"
	"io"
	"os/exec"
)

// Params описывают выходной поток.
type Params struct {
	Width, Height int
	FPS           int
	Encoder       string
	Quality       int
	// Release (если задан) получает каждый кадр после записи,
	// чтобы вызывающий мог вернуть его в пул.
	Release func(*image.RGBA)
}

type Encoder interface {
	Encode(ctx context.Context, frames <-chan *image.RGBA, path string, p Params) error
}

// FFmpegEncoder передает raw RGBA кадры в ffmpeg через stdin.
type FFmpegEncoder struct {
	// Binary по умолчанию "ffmpeg".
	Binary string
}

// Encode пишет кадры, пока канал не закроется. Кадр с размером, отличным
// от Params, отклоняется. При ошибке канал дочитывается до конца, чтобы
// производитель не блокировался.
func (e *FFmpegEncoder) Encode(ctx context.Context, frames <-chan *image.RGBA, path string, p Params) error {
	if p.Width <= 0 || p.Height <= 0 || p.FPS <= 0 {
		drain(frames, p.Release)
		return fmt.Errorf("invalid output %dx%d @ %d fps", p.Width, p.Height, p.FPS)
	}

	bin := e.Binary
	if bin == "" {
		bin = "ffmpeg"
	}
	cmd := exec.CommandContext(ctx, bin, BuildArgs(path, p)...)
	var out bytes.Buffer
	cmd.Stdout = &out
	cmd.Stderr = &out

	stdin, err := cmd.StdinPipe()
	if err != nil {
		drain(frames, p.Release)
		return fmt.Errorf("stdin pipe error: %w", err)
	}
	if err := cmd.Start(); err != nil {
		drain(frames, p.Release)
		return fmt.Errorf("ffmpeg start error: %w", err)
	}

	// Запись raw RGBA данных
	var writeErr error
	for img := range frames {
		if writeErr == nil {
			writeErr = writeFrame(stdin, img, p)
		}
		if p.Release != nil {
			p.Release(img)
		}
	}
	stdin.Close()

	if err := cmd.Wait(); err != nil {
		return fmt.Errorf("ffmpeg wait error: %w\n%s", err, out.String())
	}
	return writeErr
}

// BuildArgs возвращает аргументы ffmpeg для raw RGBA потока из stdin.
func BuildArgs(path string, p Params) []string {
	args := []string{
		"-y",
		"-f", "rawvideo",
		"-pixel_format", "rgba",
		"-video_size", fmt.Sprintf("%dx%d", p.Width, p.Height),
		"-framerate", fmt.Sprintf("%d", p.FPS),
		"-i", "-",
		"-pix_fmt", "yuv420p",
		"-c:v", encoderName(p.Encoder),
	}
	// Качество в зависимости от энкодера
	args = append(args, QualityArgs(p.Encoder, p.Quality)...)
	return append(args, "-movflags", "+faststart", path)
}

func encoderName(name string) string {
	if name == "" {
		return "libx264"
	}
	return name
}

// QualityArgs переводит единое значение качества в параметр конкретного энкодера.
func QualityArgs(encoder string, quality int) []string {
	switch encoder {
	case "h264_videotoolbox":
		// VideoToolbox часто не поддерживает -q:v напрямую на всех версиях. Используем битрейт.
		return []string{"-b:v", fmt.Sprintf("%dk", quality*100)} // кбит/с. 75 -> 7.5Мбит/с
	case "h264_nvenc":
		return []string{"-cq", fmt.Sprintf("%d", quality)}
	default: // libx264
		return []string{"-crf", fmt.Sprintf("%d", quality), "-preset", "medium"}
	}
}

// DefaultQuality - разумное качество по умолчанию для каждого энкодера.
func DefaultQuality(encoder string) int {
	switch encoder {
	case "h264_videotoolbox":
		return 75
	case "h264_nvenc":
		return 28
	default:
		return 23
	}
}

var ErrFrameSize = errors.New("frame size mismatch")

func writeFrame(w io.Writer, img *image.RGBA, p Params) error {
	if img == nil {
		return fmt.Errorf("%w: nil frame", ErrFrameSize)
	}
	b := img.Bounds()
	if b.Dx() != p.Width || b.Dy() != p.Height {
		return fmt.Errorf("%w: got %dx%d, want %dx%d", ErrFrameSize, b.Dx(), b.Dy(), p.Width, p.Height)
	}
	return writeRawRGBA(w, img)
}

func writeRawRGBA(w io.Writer, img image.Image) error {
	bounds := img.Bounds()
	rgba, ok := img.(*image.RGBA)
	if !ok || rgba.Stride != bounds.Dx()*4 || rgba.Rect.Min.X != 0 || rgba.Rect.Min.Y != 0 {
		rgba = image.NewRGBA(image.Rect(0, 0, bounds.Dx(), bounds.Dy()))
		draw.Draw(rgba, rgba.Bounds(), img, bounds.Min, draw.Src)
	}
	_, err := w.Write(rgba.Pix)
	return err
}

func drain(frames <-chan *image.RGBA, release func(*image.RGBA)) {
	for img := range frames {
		if release != nil {
			release(img)
		}
	}
}
