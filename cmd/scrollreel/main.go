package main

import (
	"context"
	"flag"
	"fmt"
	"log"
	"os"
	"os/signal"
	"path/filepath"
	"time"

	"github.com/ivlev/scrollreel/internal/config"
	"github.com/ivlev/scrollreel/internal/director"
	"github.com/ivlev/scrollreel/internal/engine"
	"github.com/ivlev/scrollreel/internal/renderer"
	"github.com/ivlev/scrollreel/internal/server"
	"github.com/ivlev/scrollreel/internal/source"
	"github.com/ivlev/scrollreel/internal/system"
	"github.com/ivlev/scrollreel/internal/video"
)

// version is set with -ldflags "-X main.version=...".
var version = "dev"

const (
	qrAssetSize = 512
	slidePad    = 8
)

func main() {
	// Увеличиваем лимиты системы (для macOS/Linux)
	system.InitResourceLimits()

	for _, d := range []string{"input/pdf", "output", director.ScenarioDir} {
		os.MkdirAll(d, 0755)
	}

	cfg := config.Default()
	cfg.BuildVersion = version
	if err := cfg.LoadEnv(); err != nil {
		log.Printf("[!] %v", err)
	}

	flag.StringVar(&cfg.ScenarioPath, "scenario", "", "Путь к YAML сценарию (по умолчанию: самый свежий в scenarios/)")
	flag.BoolVar(&cfg.GenerateScenario, "generate-scenario", false, "Записать сценарий по умолчанию и выйти")
	flag.StringVar(&cfg.ScenarioOutput, "scenario-output", "", "Куда записать сгенерированный сценарий")
	flag.StringVar(&cfg.OutputVideo, "output", "", "Путь к видео (если пусто, генерируется автоматически в output/)")
	flag.StringVar(&cfg.SlidesPath, "slides", "", "PDF или папка с изображениями для слайдов кейсов (по умолчанию: самый свежий PDF в input/pdf/)")
	flag.IntVar(&cfg.Width, "width", cfg.Width, "Ширина")
	flag.IntVar(&cfg.Height, "height", cfg.Height, "Высота")
	flag.IntVar(&cfg.FPS, "fps", cfg.FPS, "FPS")
	flag.IntVar(&cfg.Workers, "workers", 0, "Потоки растеризации (0 - по ядрам и памяти)")
	flag.IntVar(&cfg.DPI, "dpi", cfg.DPI, "DPI для PDF слайдов")
	flag.StringVar(&cfg.Preset, "preset", "", "Пресет формата: 16:9, 9:16 (Shorts/TikTok), 4:5 (Instagram)")
	flag.IntVar(&cfg.Quality, "quality", 0, "Качество видео (0 - авто, x264: CRF 1-51, VideoToolbox: битрейт = Q*100кбит/с)")
	flag.Float64Var(&cfg.Lerp, "lerp", cfg.Lerp, "Сглаживание прокрутки за кадр (1 - без сглаживания)")
	flag.Float64Var(&cfg.Dwell, "dwell", cfg.Dwell, "Пауза на каждой секции (сек)")
	flag.Float64Var(&cfg.ScrollSpeed, "speed", cfg.ScrollSpeed, "Скорость прокрутки между секциями (px/сек)")
	flag.BoolVar(&cfg.ReducedMotion, "reduced-motion", false, "Режим уменьшенного движения")
	flag.BoolVar(&cfg.CoarsePointer, "coarse-pointer", false, "Сенсорный указатель (вдвое меньше частиц)")
	flag.Int64Var(&cfg.Seed, "seed", cfg.Seed, "Зерно фоновых частиц")
	flag.BoolVar(&cfg.ShowStats, "stats", false, "Вывести отчет о производительности")
	flag.BoolVar(&cfg.Serve, "serve", false, "Запустить сервер предпросмотра вместо рендера видео")
	flag.StringVar(&cfg.Addr, "addr", cfg.Addr, "Адрес сервера предпросмотра")
	flag.Parse()

	cfg.ApplyPreset()
	if err := cfg.Validate(); err != nil {
		log.Fatalf("[-] Ошибка конфигурации: %v", err)
	}

	if cfg.GenerateScenario {
		path := cfg.ScenarioOutput
		if path == "" {
			path = director.GenerateScenarioPath(director.ScenarioDir)
		}
		if err := director.WriteScenario(director.DefaultScenario(), path); err != nil {
			log.Fatalf("[-] Ошибка записи сценария: %v", err)
		}
		fmt.Printf("[+++] Сценарий записан: %s\n", path)
		return
	}

	sc := loadScenario(cfg)
	page, err := director.Build(sc)
	if err != nil {
		log.Fatalf("[-] Ошибка сборки страницы: %v", err)
	}
	d := engine.NewDriver(page.Stage, page.Prefs())
	teardown, err := page.Mount(d)
	if err != nil {
		log.Fatalf("[-] Ошибка монтирования: %v", err)
	}
	defer teardown()
	d.Tick(0, 0)
	fmt.Printf("[*] Секций: %d | Слушателей: %d | Высота документа: %.0fpx\n",
		len(page.Sections), d.Registry().Total(), page.Stage.DocumentHeight())

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt)
	defer stop()

	r, err := renderer.New(14)
	if err != nil {
		log.Fatalf("[-] Ошибка инициализации рендерера: %v", err)
	}
	loadSlides(ctx, cfg, r)
	for key, content := range page.QRCodes {
		img, err := renderer.QRCode(content, qrAssetSize)
		if err != nil {
			log.Printf("[!] QR %s: %v", key, err)
			continue
		}
		r.SetAsset(key, img)
	}

	if cfg.Serve {
		fmt.Printf("[>] Сервер предпросмотра: http://localhost%s\n", cfg.Addr)
		srv := server.New(page, d, r, contactURL(page, cfg))
		if err := srv.Run(cfg.Addr); err != nil {
			log.Fatalf("[-] Ошибка сервера: %v", err)
		}
		return
	}

	tour := director.NewDirector(cfg.ScrollSpeed, cfg.Dwell).PlanTour(page.Stage, page.Scenario.Sections)
	fmt.Printf("[*] Тур: %d остановок, %.1fs\n", len(tour.Keys), tour.Duration().Seconds())

	if cfg.OutputVideo == "" {
		timestamp := time.Now().Format("2006-01-02_15-04-05")
		cfg.OutputVideo = filepath.Join("output", fmt.Sprintf("scrollreel_%s.mp4", timestamp))
	}
	cfg.VideoEncoder = system.GetBestH264Encoder()
	if cfg.VideoEncoder != "libx264" {
		fmt.Printf("[*] Обнаружено аппаратное ускорение: %s\n", cfg.VideoEncoder)
	}
	if cfg.Quality == 0 {
		cfg.Quality = video.DefaultQuality(cfg.VideoEncoder)
	}

	project := engine.NewProject(cfg, d, tour, r, &video.FFmpegEncoder{})
	if err := project.Run(ctx); err != nil {
		log.Fatalf("[-] Ошибка проекта: %v", err)
	}

	fmt.Printf("[+++] Успех! Результат: %s\n", cfg.OutputVideo)
}

// loadScenario reads the requested scenario, else the newest one in
// scenarios/, else the built-in page. Command-line preferences override
// the file.
func loadScenario(cfg *config.Config) *director.Scenario {
	path := cfg.ScenarioPath
	if path == "" {
		if latest, err := director.FindLatestScenario(director.ScenarioDir); err == nil {
			path = latest
		}
	}

	var sc *director.Scenario
	if path == "" {
		fmt.Println("[*] Сценарий не найден, используется страница по умолчанию")
		sc = director.DefaultScenario()
	} else {
		var err error
		sc, err = director.ReadScenario(path)
		if err != nil {
			log.Fatalf("[-] Ошибка чтения сценария: %v", err)
		}
		fmt.Printf("[*] Выбран сценарий: %s\n", path)
	}

	// Layout happens in CSS pixels at the scenario width; the height
	// follows the output aspect.
	if sc.Viewport.Width > 0 {
		sc.Viewport.Height = sc.Viewport.Width * float64(cfg.Height) / float64(cfg.Width)
	}
	if cfg.ReducedMotion {
		sc.ReducedMotion = true
	}
	if cfg.CoarsePointer {
		sc.Pointer = "coarse"
	}
	if sc.Seed == 0 {
		sc.Seed = cfg.Seed
	}
	for i := range sc.Sections {
		if sc.Sections[i].Kind == director.KindContact && sc.Sections[i].URL == "" {
			sc.Sections[i].URL = cfg.ContactURL
		}
	}
	return sc
}

// loadSlides rasterizes the slide deck into renderer assets. Without a
// deck the case studies draw placeholders.
func loadSlides(ctx context.Context, cfg *config.Config, r *renderer.Renderer) {
	path := cfg.SlidesPath
	if path == "" {
		latest, err := system.FindLatest("input/pdf", system.PDFExtensions...)
		if err != nil {
			log.Printf("[!] Слайды не найдены, используются заглушки")
			return
		}
		path = latest
	}
	src, err := source.Open(path)
	if err != nil {
		log.Printf("[!] Ошибка открытия слайдов: %v", err)
		return
	}
	defer src.Close()

	pages, err := source.LoadDeck(ctx, src, cfg.DPI, 0, cfg.Workers)
	if err != nil {
		log.Printf("[!] Ошибка загрузки слайдов: %v", err)
		return
	}
	for i, img := range pages {
		r.SetAsset(source.AssetKey(i), source.Trim(img, slidePad))
	}
	fmt.Printf("[*] Загружено слайдов: %d из %s\n", len(pages), path)
}

func contactURL(page *director.Page, cfg *config.Config) string {
	for _, sec := range page.Scenario.Sections {
		if sec.Kind == director.KindContact && sec.URL != "" {
			return sec.URL
		}
	}
	return cfg.ContactURL
}
