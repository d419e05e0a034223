// Package engine ведёт стихотворение через конвейер: разбор, синтез речи,
// таймлайн, композитинг. Пакетный прогон продолжается при отказе отдельного
// стихотворения и печатает сводку в конце.
package engine

import (
	"fmt"
	"log"
	"math"
	"math/rand"
	"os"
	"path/filepath"
	"time"

	"github.com/ivlev/poem2video/internal/background"
	"github.com/ivlev/poem2video/internal/compositor"
	"github.com/ivlev/poem2video/internal/config"
	"github.com/ivlev/poem2video/internal/poem"
	"github.com/ivlev/poem2video/internal/segmenter"
	"github.com/ivlev/poem2video/internal/source"
	"github.com/ivlev/poem2video/internal/system"
	"github.com/ivlev/poem2video/internal/tts"
)

// State is a pipeline stage of one poem.
type State string

const (
	StateParsed       State = "parsed"
	StateSegmented    State = "segmented"
	StateSynthesizing State = "synthesizing"
	StateTimelined    State = "timelined"
	StateCompositing  State = "compositing"
	StateWritten      State = "written"
	StateFailed       State = "failed"
)

// Job tracks one poem through the pipeline.
type Job struct {
	Index   int
	Path    string
	Title   string
	State   State
	OutPath string
	Err     error
}

func (j *Job) setState(s State) {
	j.State = s
	log.Printf("[*] [%d] %s: %s", j.Index, filepath.Base(j.Path), s)
}

// Batch renders every poem of the input directory.
type Batch struct {
	Config *config.Config
	Cache  *tts.Cache
	rng    *rand.Rand
}

// NewBatch prepares a batch run. Seed 0 means wall-clock seeding; фиксированный
// seed даёт воспроизводимые фоны и частицы.
func NewBatch(cfg *config.Config) *Batch {
	seed := cfg.Seed
	if seed == 0 {
		seed = time.Now().UnixNano()
	}
	return &Batch{
		Config: cfg,
		Cache:  tts.NewCache(),
		rng:    rand.New(rand.NewSource(seed)),
	}
}

// Run processes all poems. A failed poem is reported and skipped; the batch
// fails only when nothing was produced.
func (b *Batch) Run() ([]*Job, error) {
	start := time.Now()
	system.ReportResources()

	paths, err := system.FindPoems(b.Config.InputDir)
	if err != nil {
		return nil, err
	}
	if err := os.MkdirAll(b.Config.OutputDir, 0755); err != nil {
		return nil, err
	}

	fmt.Printf("[*] Найдено стихотворений: %d | Движок TTS: %s\n", len(paths), b.Config.TTSBackend)

	jobs := make([]*Job, 0, len(paths))
	ok := 0
	for i, path := range paths {
		job := &Job{Index: i + 1, Path: path}
		jobs = append(jobs, job)

		if err := b.renderPoem(job); err != nil {
			job.State = StateFailed
			job.Err = err
			log.Printf("[!] [%d] %s: %v", job.Index, filepath.Base(path), err)
			continue
		}
		ok++
		fmt.Printf("[+++] [%d/%d] Готово: %s\n", job.Index, len(paths), job.OutPath)
	}

	failed := len(jobs) - ok
	fmt.Printf("[*] Пакет завершён за %.1fs: успешно %d, с ошибками %d\n",
		time.Since(start).Seconds(), ok, failed)

	if ok == 0 {
		return jobs, fmt.Errorf("ни одно стихотворение не было отрендерено")
	}
	return jobs, nil
}

// renderPoem drives one poem through every stage. Каталог фрагментов
// удаляется при любом исходе.
func (b *Batch) renderPoem(job *Job) error {
	cfg := b.Config

	p, err := poem.Parse(job.Path)
	if err != nil {
		return fmt.Errorf("разбор: %w", err)
	}
	job.Title = p.Title
	job.setState(StateParsed)

	lang := cfg.ForceLang
	if lang == "" {
		lang = poem.DetectLanguage(p.Body)
	}

	job.setState(StateSegmented)
	synth, err := b.Cache.Get(tts.Options{
		Backend: cfg.TTSBackend,
		Lang:    lang,
		Model:   cfg.TTSModel,
		Voice:   cfg.TTSVoice,
	})
	if err != nil {
		return fmt.Errorf("движок TTS: %w", err)
	}

	fragDir, err := os.MkdirTemp("", "poem2video_")
	if err != nil {
		return err
	}
	defer os.RemoveAll(fragDir)

	job.setState(StateSynthesizing)
	trackPath := filepath.Join(fragDir, "track.wav")
	segments, err := segmenter.Synthesize(p.Body, synth, fragDir, trackPath, segmenter.Options{
		PauseDuration: cfg.PauseDuration,
		Batch:         cfg.BatchTTS,
	})
	if err != nil {
		return err
	}
	job.setState(StateTimelined)

	total := segmenter.TotalDuration(segments)
	if probed, err := system.GetAudioDuration(trackPath); err == nil {
		if math.Abs(probed-total) > 0.1 {
			log.Printf("[!] [%d] Расхождение длительностей: таймлайн %.2fs, ffprobe %.2fs",
				job.Index, total, probed)
		}
	}

	backdrop, err := source.Resolve(source.Options{
		ImagePath: cfg.ImagePath,
		Palette:   cfg.Palette,
		Direction: background.Direction(cfg.Direction),
		Width:     cfg.Width,
		Height:    cfg.Height,
		Zoom:      zoomOf(cfg),
		Rand:      b.rng,
	})
	if err != nil {
		return fmt.Errorf("подложка: %w", err)
	}

	job.setState(StateCompositing)
	outPath := filepath.Join(cfg.OutputDir, outputName(job.Index, p.Title))
	spec := compositor.Spec{
		Width:        cfg.Width,
		Height:       cfg.Height,
		FPS:          cfg.FPS,
		Title:        p.Title,
		Author:       p.Author,
		FontSize:     cfg.FontSize,
		FadeDuration: cfg.FadeDuration,
		ZoomEnabled:  cfg.ZoomEnabled,
		Particles:    cfg.Particles,
		Sparkles:     cfg.Sparkles,
		QRURL:        cfg.SourceURL,
		Encoder:      cfg.VideoEncoder,
		Quality:      cfg.Quality,
		Seed:         b.rng.Int63(),
	}
	if err := compositor.Compose(trackPath, segments, spec, backdrop.Image, outPath); err != nil {
		return err
	}

	job.OutPath = outPath
	job.setState(StateWritten)
	return nil
}

// outputName is the video file name for the poem at 1-based batch position idx.
func outputName(idx int, title string) string {
	return poem.BaseName(idx, title) + ".mp4"
}

func zoomOf(cfg *config.Config) float64 {
	if !cfg.ZoomEnabled {
		return 1
	}
	return cfg.ZoomFactor
}
