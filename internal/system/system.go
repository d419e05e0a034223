package system

import (
	"fmt"
	"log"
	"os"
	"os/exec"
	"path/filepath"
	"sort"
	"strings"
	"syscall"

	"github.com/shirou/gopsutil/v3/cpu"
	"github.com/shirou/gopsutil/v3/mem"
)

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

	err = syscall.Setrlimit(syscall.RLIMIT_NOFILE, &rLimit)
	if err != nil {
		log.Printf("[!] Не удалось установить лимит файлов: %v", err)
	} else {
		fmt.Printf("[*] Системный лимит открытых файлов увеличен до %d\n", rLimit.Cur)
	}
}

// FindPoems returns the markdown/text poem files of a directory sorted by
// name, so the batch order (and the numeric slug prefix) is stable.
func FindPoems(dir string) ([]string, error) {
	files, err := os.ReadDir(dir)
	if err != nil {
		return nil, err
	}

	var paths []string
	for _, f := range files {
		if f.IsDir() {
			continue
		}
		name := strings.ToLower(f.Name())
		if strings.HasSuffix(name, ".md") || strings.HasSuffix(name, ".txt") {
			paths = append(paths, filepath.Join(dir, f.Name()))
		}
	}
	sort.Strings(paths)

	if len(paths) == 0 {
		return nil, fmt.Errorf("в папке %s не найдено файлов стихотворений (*.md, *.txt)", dir)
	}
	return paths, nil
}

// GetAudioDuration asks ffprobe for the container duration. Используется как
// перекрёстная проверка собранной WAV-дорожки перед муксом.
func GetAudioDuration(path string) (float64, error) {
	cmd := exec.Command("ffprobe", "-v", "error", "-show_entries", "format=duration", "-of", "default=noprint_wrappers=1:nokey=1", path)
	out, err := cmd.CombinedOutput()
	if err != nil {
		return 0, err
	}

	var duration float64
	_, err = fmt.Sscanf(strings.TrimSpace(string(out)), "%f", &duration)
	if err != nil {
		return 0, err
	}

	return duration, nil
}

func GetBestH264Encoder() (string, string) {
	// Приоритеты:
	// 1. MacOS (VideoToolbox)
	// 2. NVIDIA (NVENC)
	// 3. Software (libx264)

	encoders := []struct {
		name string
		args string
	}{
		{"h264_videotoolbox", ""},
		{"h264_nvenc", ""},
	}

	for _, enc := range encoders {
		cmd := exec.Command("ffmpeg", "-encoders")
		out, err := cmd.CombinedOutput()
		if err == nil && strings.Contains(string(out), enc.name) {
			return enc.name, enc.args
		}
	}

	return "libx264", ""
}

// ReportResources logs available memory and CPU count once per batch: on
// small VPS-ах пакетный рендер упирается именно в память.
func ReportResources() {
	vm, err := mem.VirtualMemory()
	if err != nil {
		log.Printf("[!] Не удалось получить информацию о памяти: %v", err)
		return
	}
	counts, err := cpu.Counts(true)
	if err != nil {
		counts = 0
	}
	fmt.Printf("[*] Ресурсы: %.1f GB свободно из %.1f GB | CPU: %d\n",
		float64(vm.Available)/1e9, float64(vm.Total)/1e9, counts)
	if vm.Available < 1<<30 {
		log.Printf("[!] Меньше 1 GB свободной памяти: рендер 1080x1920 может не пройти")
	}
}
