package compositor

import (
	"fmt"
	"image"
	"image/color"
	"image/draw"

	"github.com/skip2/go-qrcode"

	"github.com/ivlev/poem2video/internal/particles"
	"github.com/ivlev/poem2video/internal/segmenter"
	"github.com/ivlev/poem2video/internal/system"
	"github.com/ivlev/poem2video/internal/textrender"
)

// Spec describes one render: frame geometry plus the overlay content.
type Spec struct {
	Width  int
	Height int
	FPS    int

	Title  string
	Author string

	FontSize     float64
	FontPaths    []string
	FadeDuration float64

	ZoomEnabled bool
	Particles   int
	Sparkles    bool
	QRURL       string

	Encoder string
	Quality int
	Seed    int64
}

// subtitle is a pre-rendered text layer with its slot on the timeline.
type subtitle struct {
	img      *image.RGBA
	start    float64
	duration float64
}

// frameRenderer produces frames in presentation order. Слои текста и QR
// растеризуются один раз, по кадрам меняются только смещение Ken Burns,
// частицы и альфа субтитров.
type frameRenderer struct {
	spec     Spec
	backdrop *image.RGBA
	total    float64

	overlay *particles.FrameSource
	header  *image.RGBA
	subs    []subtitle
	qr      *image.RGBA
	frame   *image.RGBA
}

func newFrameRenderer(spec Spec, backdrop *image.RGBA, timeline []segmenter.Segment) (*frameRenderer, error) {
	total := segmenter.TotalDuration(timeline)
	if total <= 0 {
		return nil, fmt.Errorf("пустой таймлайн")
	}
	bb := backdrop.Bounds()
	if bb.Dx() < spec.Width || bb.Dy() < spec.Height {
		return nil, fmt.Errorf("подложка %dx%d меньше кадра %dx%d",
			bb.Dx(), bb.Dy(), spec.Width, spec.Height)
	}

	// Кадровый буфер берётся из пула и возвращается в release(): в пакетном
	// режиме все ролики одного размера делят один буфер.
	r := &frameRenderer{
		spec:     spec,
		backdrop: backdrop,
		total:    total,
		frame:    system.GetImage(image.Rect(0, 0, spec.Width, spec.Height)),
	}

	if spec.Particles > 0 {
		sim := particles.NewSimulation(spec.Width, spec.Height, spec.Particles, spec.Sparkles, spec.Seed)
		r.overlay = particles.NewFrameSource(sim, spec.FPS)
	}

	header := spec.Title
	if spec.Author != "" {
		header = fmt.Sprintf("%s — %s", spec.Title, spec.Author)
	}
	if header != "" {
		r.header = textrender.Render(header, spec.Width, spec.Height, textrender.Options{
			FontSize:  spec.FontSize * 0.55,
			FontPaths: spec.FontPaths,
			VAlign:    textrender.Top,
			Shadow:    true,
			MaxLines:  2,
		})
	}

	for _, seg := range timeline {
		if seg.Text == "" {
			continue
		}
		img := textrender.Render(seg.Text, spec.Width, spec.Height, textrender.Options{
			FontSize:  spec.FontSize,
			FontPaths: spec.FontPaths,
			VAlign:    textrender.Bottom,
			Shadow:    true,
			Stroke:    true,
			MaxLines:  4,
		})
		r.subs = append(r.subs, subtitle{img: img, start: seg.Start, duration: seg.Duration})
	}

	if spec.QRURL != "" {
		qr, err := qrcode.New(spec.QRURL, qrcode.Medium)
		if err != nil {
			return nil, fmt.Errorf("QR для %q: %w", spec.QRURL, err)
		}
		qr.DisableBorder = true
		size := spec.Width / 9
		if size < 48 {
			size = 48
		}
		src := qr.Image(size)
		dst := image.NewRGBA(image.Rect(0, 0, size, size))
		draw.Draw(dst, dst.Bounds(), src, src.Bounds().Min, draw.Src)
		r.qr = dst
	}

	return r, nil
}

// release returns the frame buffer to the shared pool.
func (r *frameRenderer) release() {
	system.PutImage(r.frame)
	r.frame = nil
}

// frameCount returns how many frames the video needs to cover the narration.
func (r *frameRenderer) frameCount() int {
	n := int(r.total*float64(r.spec.FPS)) + 1
	if n < 1 {
		n = 1
	}
	return n
}

// renderFrame composites frame n in place. The returned image is reused
// between calls: the caller must consume it before the next call.
func (r *frameRenderer) renderFrame(n int) *image.RGBA {
	t := float64(n) / float64(r.spec.FPS)
	progress := t / r.total
	if progress > 1 {
		progress = 1
	}

	// Ken Burns: панорама снизу вверх по раздутой подложке с плавным
	// разгоном и торможением камеры.
	bb := r.backdrop.Bounds()
	offX := (bb.Dx() - r.spec.Width) / 2
	offY := bb.Dy() - r.spec.Height
	if r.spec.ZoomEnabled {
		offY = int(lerp(float64(offY), 0, easeInOutCubic(progress)))
	} else {
		offY /= 2
	}
	draw.Draw(r.frame, r.frame.Bounds(), r.backdrop,
		bb.Min.Add(image.Pt(offX, offY)), draw.Src)

	if r.overlay != nil {
		r.overlay.FrameInto(n, r.frame)
	}

	if r.header != nil {
		draw.Draw(r.frame, r.frame.Bounds(), r.header, image.Point{}, draw.Over)
	}

	for _, sub := range r.subs {
		alpha := FadeAlpha(t, sub.start, sub.duration, r.spec.FadeDuration)
		if alpha <= 0 {
			continue
		}
		mask := image.NewUniform(color.Alpha{A: uint8(alpha*255 + 0.5)})
		draw.DrawMask(r.frame, r.frame.Bounds(), sub.img, image.Point{}, mask, image.Point{}, draw.Over)
	}

	if r.qr != nil {
		qb := r.qr.Bounds()
		margin := 24
		pos := image.Rect(
			r.spec.Width-qb.Dx()-margin,
			r.spec.Height-qb.Dy()-margin,
			r.spec.Width-margin,
			r.spec.Height-margin,
		)
		draw.Draw(r.frame, pos, r.qr, qb.Min, draw.Over)
	}

	return r.frame
}
