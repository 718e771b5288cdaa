package system

import (
	"fmt"
	"log"
	"os"
	"os/exec"
	"path/filepath"
	"runtime"
	"strings"
	"syscall"
	"time"

	"github.com/shirou/gopsutil/v3/cpu"
	"github.com/shirou/gopsutil/v3/mem"
)

// InitResourceLimits поднимает лимит открытых файлов до 2048 (или до
// максимума системы).
func InitResourceLimits() {
	var rLimit syscall.Rlimit
	err := syscall.Getrlimit(syscall.RLIMIT_NOFILE, &rLimit)
	if err != nil {
		log.Printf("[!] Не удалось получить лимит файлов: %v", err)
		return
	}

	rLimit.Cur = 2048
	if rLimit.Cur > rLimit.Max {
		rLimit.Cur = rLimit.Max
	}

	if err := syscall.Setrlimit(syscall.RLIMIT_NOFILE, &rLimit); err != nil {
		log.Printf("[!] Не удалось установить лимит файлов: %v", err)
	}
}

var (
	PDFExtensions   = []string{".pdf"}
	ImageExtensions = []string{".jpg", ".jpeg", ".png"}
	YAMLExtensions  = []string{".yaml", ".yml"}
)

// FindLatest возвращает самый свежий по дате изменения файл в dir
// с одним из указанных расширений.
func FindLatest(dir string, extensions ...string) (string, error) {
	files, err := os.ReadDir(dir)
	if err != nil {
		return "", err
	}

	var latestFile string
	var latestTime time.Time
	for _, f := range files {
		if f.IsDir() || !hasExtension(f.Name(), extensions) {
			continue
		}
		info, err := f.Info()
		if err != nil {
			continue
		}
		if latestFile == "" || info.ModTime().After(latestTime) {
			latestTime = info.ModTime()
			latestFile = filepath.Join(dir, f.Name())
		}
	}

	if latestFile == "" {
		return "", fmt.Errorf("в папке %s не найдено файлов %v", dir, extensions)
	}
	return latestFile, nil
}

func hasExtension(name string, extensions []string) bool {
	lower := strings.ToLower(name)
	for _, ext := range extensions {
		if strings.HasSuffix(lower, ext) {
			return true
		}
	}
	return false
}

// frameBudget - сколько буферов кадра может занимать один кадр в работе,
// с запасом под кэш масштабированных ассетов.
const frameBudget = 3

// Workers подбирает размер пула растеризации: по одному потоку на
// физическое ядро, но так, чтобы кадры в работе помещались в четверть
// доступной памяти. Если систему опросить не удалось, берем GOMAXPROCS.
func Workers(width, height int) int {
	n := runtime.GOMAXPROCS(0)
	if cores, err := cpu.Counts(false); err == nil && cores > 0 {
		n = cores
	}
	if vm, err := mem.VirtualMemory(); err == nil && width > 0 && height > 0 {
		// RGBA: 4 байта на пиксель
		perFrame := uint64(width) * uint64(height) * 4 * frameBudget
		if limit := int(vm.Available / 4 / perFrame); limit < n {
			n = limit
		}
	}
	if n < 1 {
		n = 1
	}
	return n
}

// HostInfo - однострочное описание машины для отчета о производительности.
func HostInfo() string {
	model := runtime.GOARCH
	if infos, err := cpu.Info(); err == nil && len(infos) > 0 {
		model = infos[0].ModelName
	}
	total := "?"
	if vm, err := mem.VirtualMemory(); err == nil {
		total = fmt.Sprintf("%.1fGB", float64(vm.Total)/(1<<30))
	}
	return fmt.Sprintf("%s | %s RAM", model, total)
}

// GetBestH264Encoder спрашивает у ffmpeg список энкодеров и выбирает лучший.
func GetBestH264Encoder() string {
	out, err := exec.Command("ffmpeg", "-hide_banner", "-encoders").CombinedOutput()
	if err != nil {
		return "libx264"
	}
	return pickEncoder(string(out))
}

// Приоритеты:
// 1. MacOS (VideoToolbox)
// 2. NVIDIA (NVENC)
// 3. Software (libx264)
func pickEncoder(list string) string {
	for _, name := range []string{"h264_videotoolbox", "h264_nvenc"} {
		if strings.Contains(list, name) {
			return name
		}
	}
	return "libx264"
}
