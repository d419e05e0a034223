// Package compositor собирает финальный ролик: послойные кадры (подложка с
// панорамой Ken Burns, частицы, заголовок, субтитры с fade, QR) подаются
// сырыми RGBA-данными на stdin ffmpeg и муксятся с дорожкой озвучки.
package compositor

import (
	"bytes"
	"fmt"
	"image"
	"io"
	"os"
	"os/exec"

	"golang.org/x/sync/errgroup"

	"github.com/ivlev/poem2video/internal/segmenter"
)

// Compose renders the full video for one poem. On any failure the partial
// output file is removed: downstream uploaders must never see broken mp4.
func Compose(audioPath string, timeline []segmenter.Segment, spec Spec, backdrop *image.RGBA, outPath string) error {
	r, err := newFrameRenderer(spec, backdrop, timeline)
	if err != nil {
		return err
	}
	defer r.release()

	args := buildMuxArgs(audioPath, spec, r.total, outPath)
	cmd := exec.Command("ffmpeg", args...)

	stdin, err := cmd.StdinPipe()
	if err != nil {
		return fmt.Errorf("stdin pipe: %w", err)
	}
	stderr, err := cmd.StderrPipe()
	if err != nil {
		return fmt.Errorf("stderr pipe: %w", err)
	}

	if err := cmd.Start(); err != nil {
		return fmt.Errorf("запуск ffmpeg: %w", err)
	}

	var g errgroup.Group
	var ffmpegLog bytes.Buffer

	g.Go(func() error {
		defer stdin.Close()
		frames := r.frameCount()
		for n := 0; n < frames; n++ {
			frame := r.renderFrame(n)
			if _, err := stdin.Write(frame.Pix); err != nil {
				// ffmpeg мог упасть и закрыть pipe; причина будет в stderr
				return fmt.Errorf("кадр %d/%d: %w", n+1, frames, err)
			}
		}
		return nil
	})

	g.Go(func() error {
		_, err := io.Copy(&ffmpegLog, stderr)
		return err
	})

	writeErr := g.Wait()
	waitErr := cmd.Wait()

	if waitErr != nil {
		os.Remove(outPath)
		return fmt.Errorf("ffmpeg: %v\n%s", waitErr, ffmpegLog.String())
	}
	if writeErr != nil {
		os.Remove(outPath)
		return writeErr
	}
	return nil
}

// buildMuxArgs forms the ffmpeg invocation: raw frames on stdin, narration as
// the second input, per-encoder quality flags.
func buildMuxArgs(audioPath string, spec Spec, total float64, outPath string) []string {
	args := []string{
		"-y",
		"-f", "rawvideo",
		"-pixel_format", "rgba",
		"-video_size", fmt.Sprintf("%dx%d", spec.Width, spec.Height),
		"-framerate", fmt.Sprintf("%d", spec.FPS),
		"-i", "-",
		"-i", audioPath,
		"-t", fmt.Sprintf("%f", total),
		"-c:v", spec.Encoder,
	}

	// Качество в зависимости от энкодера
	switch spec.Encoder {
	case "h264_videotoolbox":
		bitrate := spec.Quality * 100
		args = append(args, "-b:v", fmt.Sprintf("%dk", bitrate))
	case "h264_nvenc":
		args = append(args, "-cq", fmt.Sprintf("%d", spec.Quality))
	default: // libx264
		args = append(args, "-crf", fmt.Sprintf("%d", spec.Quality), "-preset", "medium")
	}

	args = append(args,
		"-c:a", "aac",
		"-b:a", "192k",
		"-pix_fmt", "yuv420p",
		"-shortest",
		outPath,
	)
	return args
}
