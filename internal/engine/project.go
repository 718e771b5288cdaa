package engine

import (
	"context"
	"fmt"
	"image"
	"math"
	"os"
	"path/filepath"
	"time"

	"golang.org/x/sync/errgroup"

	"github.com/ivlev/scrollreel/internal/config"
	"github.com/ivlev/scrollreel/internal/renderer"
	"github.com/ivlev/scrollreel/internal/system"
	"github.com/ivlev/scrollreel/internal/video"
)

// Tour описывает сценарий прокрутки: нужное смещение в каждый момент времени.
type Tour interface {
	Duration() time.Duration
	ScrollAt(t time.Duration) float64
}

// Rasterizer рисует захваченный кадр. Должен быть безопасен для
// параллельного вызова с разными буферами.
type Rasterizer interface {
	Rasterize(dst *image.RGBA, f renderer.Frame) error
}

// Project рендерит тур по смонтированной странице в видео.
type Project struct {
	Config   *config.Config
	Driver   *Driver
	Tour     Tour
	Renderer Rasterizer
	Encoder  video.Encoder

	// Frames - количество кадров, записанных последним Run.
	Frames int
}

func NewProject(cfg *config.Config, d *Driver, tour Tour, r Rasterizer, enc video.Encoder) *Project {
	return &Project{
		Config:   cfg,
		Driver:   d,
		Tour:     tour,
		Renderer: r,
		Encoder:  enc,
	}
}

// FrameCount возвращает число кадров для длительности d при fps (минимум один).
func FrameCount(d time.Duration, fps int) int {
	if fps <= 0 {
		return 0
	}
	n := int(math.Ceil(d.Seconds() * float64(fps)))
	if n < 1 {
		n = 1
	}
	return n
}

// Run симулирует тур покадрово в вызывающей горутине, растеризует каждую
// пачку захваченных кадров параллельно и отдает их энкодеру по порядку.
func (p *Project) Run(ctx context.Context) error {
	startTime := time.Now()
	cfg := p.Config

	total := FrameCount(p.Tour.Duration(), cfg.FPS)
	if total == 0 {
		return fmt.Errorf("некорректный FPS: %d", cfg.FPS)
	}
	workers := cfg.Workers
	if workers <= 0 {
		workers = system.Workers(cfg.Width, cfg.Height)
	}

	fmt.Println("--- [PROJECT: SCROLL REEL] ---")
	fmt.Printf("[*] Длительность тура: %.2fs | Кадров: %d\n", p.Tour.Duration().Seconds(), total)
	fmt.Printf("[*] Разрешение: %dx%d @ %d FPS | Потоки: %d\n", cfg.Width, cfg.Height, cfg.FPS, workers)
	fmt.Println("-----------------------------")

	// Энкодер читает кадры в отдельной горутине
	ctx, cancel := context.WithCancel(ctx)
	defer cancel()

	frames := make(chan *image.RGBA, workers)
	encodeErr := make(chan error, 1)
	go func() {
		encodeErr <- p.Encoder.Encode(ctx, frames, cfg.OutputVideo, video.Params{
			Width:   cfg.Width,
			Height:  cfg.Height,
			FPS:     cfg.FPS,
			Encoder: cfg.VideoEncoder,
			Quality: cfg.Quality,
			Release: system.PutImage,
		})
	}()

	smooth := NewSmoother(cfg.Lerp)
	bounds := image.Rect(0, 0, cfg.Width, cfg.Height)
	step := time.Second / time.Duration(cfg.FPS)
	batch := workers * 2

	var simTime, rasterTime time.Duration
	renderErr := func() error {
		defer close(frames)
		captures := make([]renderer.Frame, 0, batch)
		images := make([]*image.RGBA, batch)

		for start := 0; start < total; start += batch {
			// 1. Симуляция: движок однопоточный, поэтому строго по порядку
			simStart := time.Now()
			captures = captures[:0]
			for i := start; i < total && i < start+batch; i++ {
				t := time.Duration(i) * step
				p.Driver.Tick(t, smooth.Step(p.Tour.ScrollAt(t)))
				captures = append(captures, p.Driver.Capture())
			}
			simTime += time.Since(simStart)

			// 2. Растеризация пачки параллельно
			rasterStart := time.Now()
			g, gctx := errgroup.WithContext(ctx)
			g.SetLimit(workers)
			for j := range captures {
				j := j
				g.Go(func() error {
					if err := gctx.Err(); err != nil {
						return err
					}
					img := system.GetImage(bounds)
					if err := p.Renderer.Rasterize(img, captures[j]); err != nil {
						system.PutImage(img)
						return fmt.Errorf("кадр %d: %w", start+j, err)
					}
					images[j] = img
					return nil
				})
			}
			if err := g.Wait(); err != nil {
				// Возвращаем уже готовые буферы в пул
				for j := range captures {
					if images[j] != nil {
						system.PutImage(images[j])
						images[j] = nil
					}
				}
				return err
			}
			rasterTime += time.Since(rasterStart)

			// 3. Отправка в энкодер с сохранением порядка
			for j := range captures {
				select {
				case frames <- images[j]:
					images[j] = nil
				case <-ctx.Done():
					for k := j; k < len(captures); k++ {
						system.PutImage(images[k])
						images[k] = nil
					}
					return ctx.Err()
				}
			}
			p.Frames = start + len(captures)
			if p.Frames%(cfg.FPS*5) < batch || p.Frames == total {
				fmt.Printf("[>] Ready: %d/%d\n", p.Frames, total)
			}
		}
		return nil
	}()
	if renderErr != nil {
		cancel()
	}
	if err := <-encodeErr; err != nil && renderErr == nil {
		return fmt.Errorf("ошибка кодирования: %w", err)
	}
	if renderErr != nil {
		return fmt.Errorf("ошибка рендеринга: %w", renderErr)
	}

	if cfg.ShowStats {
		p.report(time.Since(startTime), simTime, rasterTime)
	}
	return nil
}

func (p *Project) report(totalTime, simTime, rasterTime time.Duration) {
	cfg := p.Config
	fps := float64(p.Frames) / totalTime.Seconds()
	fmt.Printf(
		"--- [PERFORMANCE REPORT] ---\n"+
			"Build: %s\n"+
			"Total Time: %.2fs\n"+
			"Simulation: %.2fs\n"+
			"Rasterizing (CPU): %.2fs\n"+
			"Pool allocations: %d\n"+
			"Effective FPS: %.2f\n"+
			"----------------------------\n",
		cfg.BuildVersion, totalTime.Seconds(), simTime.Seconds(), rasterTime.Seconds(), system.Allocations(), fps,
	)

	logEntry := fmt.Sprintf("[%s] Build: %s | Scenario: %s | Frames: %d | Total: %.2fs | Raster: %.2fs | FPS: %.2f\n",
		time.Now().Format("2006-01-02 15:04:05"),
		cfg.BuildVersion,
		filepath.Base(cfg.ScenarioPath),
		p.Frames,
		totalTime.Seconds(),
		rasterTime.Seconds(),
		fps,
	)
	f, err := os.OpenFile("benchmark.log", os.O_APPEND|os.O_CREATE|os.O_WRONLY, 0644)
	if err != nil {
		fmt.Printf("[!] Не удалось записать benchmark.log: %v\n", err)
		return
	}
	f.WriteString(logEntry)
	f.Close()
}
