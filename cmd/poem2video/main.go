package main

import (
	"flag"
	"fmt"
	"log"
	"os"

	"github.com/ivlev/poem2video/internal/config"
	"github.com/ivlev/poem2video/internal/engine"
	"github.com/ivlev/poem2video/internal/system"
)

// cliValues holds the parsed flag values; applyCLI overlays them onto the
// config only for flags the user actually passed, so yaml-пресет не
// затирается значениями по умолчанию.
type cliValues struct {
	input, output string
	format        string
	palette       string
	direction     string
	image         string
	tts           string
	model, voice  string
	lang          string
	qr            string
	fps           int
	particles     int
	quality       int
	fontSize      float64
	fade          float64
	pause         float64
	noZoom        bool
	noSparkles    bool
	batchTTS      bool
	stats         bool
	seed          int64
}

func applyCLI(cfg *config.Config, v cliValues, isSet func(string) bool) error {
	if isSet("input") {
		cfg.InputDir = v.input
	}
	if isSet("output") {
		cfg.OutputDir = v.output
	}
	if isSet("format") {
		switch v.format {
		case "vertical":
			cfg.Width, cfg.Height = 1080, 1920
		case "horizontal":
			cfg.Width, cfg.Height = 1920, 1080
		default:
			return fmt.Errorf("неизвестный формат: %s", v.format)
		}
	}
	if isSet("fps") {
		cfg.FPS = v.fps
	}
	if isSet("palette") {
		cfg.Palette = v.palette
	}
	if isSet("direction") {
		cfg.Direction = v.direction
	}
	if isSet("image") {
		cfg.ImagePath = v.image
	}
	if isSet("no-zoom") && v.noZoom {
		cfg.ZoomEnabled = false
	}
	if isSet("particles") {
		cfg.Particles = v.particles
	}
	if isSet("no-sparkles") && v.noSparkles {
		cfg.Sparkles = false
	}
	if isSet("font-size") {
		cfg.FontSize = v.fontSize
	}
	if isSet("fade") {
		cfg.FadeDuration = v.fade
	}
	if isSet("pause") {
		cfg.PauseDuration = v.pause
	}
	if isSet("tts") {
		cfg.TTSBackend = v.tts
	}
	if isSet("tts-model") {
		cfg.TTSModel = v.model
	}
	if isSet("tts-voice") {
		cfg.TTSVoice = v.voice
	}
	if isSet("lang") {
		cfg.ForceLang = v.lang
	}
	if isSet("batch-tts") {
		cfg.BatchTTS = v.batchTTS
	}
	if isSet("qr") {
		cfg.SourceURL = v.qr
	}
	if isSet("quality") {
		cfg.Quality = v.quality
	}
	if isSet("stats") {
		cfg.ShowStats = v.stats
	}
	if isSet("seed") {
		cfg.Seed = v.seed
	}
	return nil
}

func main() {
	// Увеличиваем лимиты системы (для macOS/Linux)
	system.InitResourceLimits()

	cfg := config.Default()
	var v cliValues

	flag.StringVar(&v.input, "input", cfg.InputDir, "Папка со стихотворениями (*.md, *.txt)")
	flag.StringVar(&v.output, "output", cfg.OutputDir, "Папка для готовых роликов")
	presetFilePtr := flag.String("preset-file", "", "YAML-пресет с настройками (переопределяется флагами)")
	savePresetPtr := flag.String("save-preset", "", "Сохранить итоговые настройки в YAML и выйти")
	flag.StringVar(&v.format, "format", "vertical", "Формат: vertical (1080x1920), horizontal (1920x1080)")
	flag.IntVar(&v.fps, "fps", cfg.FPS, "FPS")
	flag.StringVar(&v.palette, "palette", cfg.Palette, "Палитра градиента или random")
	flag.StringVar(&v.direction, "direction", cfg.Direction, "Направление градиента: vertical, horizontal, diagonal, radial, spiral")
	flag.StringVar(&v.image, "image", "", "Картинка или PDF как подложка вместо градиента")
	flag.BoolVar(&v.noZoom, "no-zoom", false, "Отключить панораму Ken Burns")
	flag.IntVar(&v.particles, "particles", cfg.Particles, "Количество частиц (0 - отключить)")
	flag.BoolVar(&v.noSparkles, "no-sparkles", false, "Отключить вспышки-блёстки")
	flag.Float64Var(&v.fontSize, "font-size", cfg.FontSize, "Размер шрифта субтитров")
	flag.Float64Var(&v.fade, "fade", cfg.FadeDuration, "Длительность появления/угасания строки (сек)")
	flag.Float64Var(&v.pause, "pause", cfg.PauseDuration, "Пауза на пустой строке (сек)")
	flag.StringVar(&v.tts, "tts", cfg.TTSBackend, "Движок озвучки: piper, espeak, say")
	flag.StringVar(&v.model, "tts-model", "", "Модель piper (.onnx)")
	flag.StringVar(&v.voice, "tts-voice", "", "Голос движка озвучки")
	flag.StringVar(&v.lang, "lang", "", "Язык текста (по умолчанию определяется автоматически)")
	flag.BoolVar(&v.batchTTS, "batch-tts", false, "Пакетный синтез всех строк одним вызовом движка")
	flag.StringVar(&v.qr, "qr", "", "URL для QR-водяного знака (пусто - без QR)")
	flag.IntVar(&v.quality, "quality", 0, "Качество видео (0 - авто, x264: CRF, VideoToolbox: битрейт = Q*100кбит/с)")
	flag.BoolVar(&v.stats, "stats", false, "Показать статистику ресурсов и времени")
	flag.Int64Var(&v.seed, "seed", 0, "Seed генератора (0 - случайный)")

	flag.Parse()

	if *presetFilePtr != "" {
		if err := config.LoadPreset(*presetFilePtr, cfg); err != nil {
			log.Fatalf("[-] Ошибка пресета: %v", err)
		}
		fmt.Printf("[*] Загружен пресет: %s\n", *presetFilePtr)
	}

	// Флаги поверх пресета: только те, что заданы явно
	passed := map[string]bool{}
	flag.Visit(func(f *flag.Flag) { passed[f.Name] = true })
	if err := applyCLI(cfg, v, func(name string) bool { return passed[name] }); err != nil {
		log.Fatalf("[-] Ошибка параметров: %v", err)
	}

	encoderName, _ := system.GetBestH264Encoder()
	if encoderName != "libx264" {
		fmt.Printf("[*] Обнаружено аппаратное ускорение: %s\n", encoderName)
	}
	cfg.VideoEncoder = encoderName

	if cfg.Quality == 0 {
		switch encoderName {
		case "h264_videotoolbox":
			cfg.Quality = 75 // Хорошее качество для VideoToolbox
		case "h264_nvenc":
			cfg.Quality = 28 // Эквивалент CRF для NVENC
		default:
			cfg.Quality = 23 // Стандартный CRF для x264
		}
	}

	if *savePresetPtr != "" {
		if err := config.SavePreset(*savePresetPtr, cfg); err != nil {
			log.Fatalf("[-] Ошибка сохранения пресета: %v", err)
		}
		fmt.Printf("[+++] Пресет сохранён: %s\n", *savePresetPtr)
		return
	}

	if err := cfg.Validate(); err != nil {
		log.Fatalf("[-] Ошибка конфигурации: %v", err)
	}

	// Создаем нужные директории, если их нет
	os.MkdirAll(cfg.InputDir, 0755)
	os.MkdirAll(cfg.OutputDir, 0755)

	jobs, err := engine.NewBatch(cfg).Run()
	if err != nil {
		log.Fatalf("[-] Ошибка пакета: %v", err)
	}

	for _, j := range jobs {
		if j.Err != nil {
			fmt.Printf("[!] Не удалось: %s (%v)\n", j.Path, j.Err)
		}
	}
}
