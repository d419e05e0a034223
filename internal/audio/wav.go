// Package audio реализует минимальный ввод-вывод WAV (16-bit PCM),
// достаточный для пауз, измерения длительностей и склейки фрагментов.
package audio

import (
	"encoding/binary"
	"fmt"
	"os"
	"path/filepath"
)

// DefaultSampleRate для генерируемых файлов тишины.
const DefaultSampleRate = 22050

// Format describes a decoded PCM stream.
type Format struct {
	SampleRate    int
	Channels      int
	BitsPerSample int
}

// Clip is decoded 16-bit PCM data plus its format.
type Clip struct {
	Format Format
	Data   []byte // raw little-endian PCM frames
}

// Duration returns the clip length in seconds.
func (c *Clip) Duration() float64 {
	bytesPerSecond := c.Format.SampleRate * c.Format.Channels * c.Format.BitsPerSample / 8
	if bytesPerSecond == 0 {
		return 0
	}
	return float64(len(c.Data)) / float64(bytesPerSecond)
}

// WriteSilence writes a mono 16-bit PCM WAV of zeros with the given duration.
func WriteSilence(path string, duration float64, sampleRate int) error {
	if sampleRate <= 0 {
		sampleRate = DefaultSampleRate
	}
	frames := int(duration * float64(sampleRate))
	clip := &Clip{
		Format: Format{SampleRate: sampleRate, Channels: 1, BitsPerSample: 16},
		Data:   make([]byte, frames*2),
	}
	return WriteFile(path, clip)
}

// WriteFile encodes a clip as a RIFF/WAVE file.
func WriteFile(path string, clip *Clip) error {
	if err := os.MkdirAll(filepath.Dir(path), 0755); err != nil {
		return err
	}

	f := clip.Format
	blockAlign := f.Channels * f.BitsPerSample / 8
	byteRate := f.SampleRate * blockAlign
	dataLen := len(clip.Data)

	buf := make([]byte, 0, 44+dataLen)
	buf = append(buf, "RIFF"...)
	buf = binary.LittleEndian.AppendUint32(buf, uint32(36+dataLen))
	buf = append(buf, "WAVE"...)
	buf = append(buf, "fmt "...)
	buf = binary.LittleEndian.AppendUint32(buf, 16)
	buf = binary.LittleEndian.AppendUint16(buf, 1) // PCM
	buf = binary.LittleEndian.AppendUint16(buf, uint16(f.Channels))
	buf = binary.LittleEndian.AppendUint32(buf, uint32(f.SampleRate))
	buf = binary.LittleEndian.AppendUint32(buf, uint32(byteRate))
	buf = binary.LittleEndian.AppendUint16(buf, uint16(blockAlign))
	buf = binary.LittleEndian.AppendUint16(buf, uint16(f.BitsPerSample))
	buf = append(buf, "data"...)
	buf = binary.LittleEndian.AppendUint32(buf, uint32(dataLen))
	buf = append(buf, clip.Data...)

	return os.WriteFile(path, buf, 0644)
}

// ReadFile decodes a RIFF/WAVE file with PCM data.
func ReadFile(path string) (*Clip, error) {
	raw, err := os.ReadFile(path)
	if err != nil {
		return nil, err
	}
	if len(raw) < 12 || string(raw[0:4]) != "RIFF" || string(raw[8:12]) != "WAVE" {
		return nil, fmt.Errorf("%s: не WAV-файл", path)
	}

	var clip Clip
	pos := 12
	haveFmt := false
	for pos+8 <= len(raw) {
		id := string(raw[pos : pos+4])
		size := int(binary.LittleEndian.Uint32(raw[pos+4 : pos+8]))
		body := pos + 8
		if body+size > len(raw) {
			size = len(raw) - body
		}

		switch id {
		case "fmt ":
			if size < 16 {
				return nil, fmt.Errorf("%s: усечённый fmt-чанк", path)
			}
			audioFormat := binary.LittleEndian.Uint16(raw[body : body+2])
			if audioFormat != 1 {
				return nil, fmt.Errorf("%s: поддерживается только PCM, формат %d", path, audioFormat)
			}
			clip.Format.Channels = int(binary.LittleEndian.Uint16(raw[body+2 : body+4]))
			clip.Format.SampleRate = int(binary.LittleEndian.Uint32(raw[body+4 : body+8]))
			clip.Format.BitsPerSample = int(binary.LittleEndian.Uint16(raw[body+14 : body+16]))
			haveFmt = true
		case "data":
			clip.Data = append([]byte(nil), raw[body:body+size]...)
		}

		// Чанки выровнены по чётному смещению.
		if size%2 != 0 {
			size++
		}
		pos = body + size
	}

	if !haveFmt {
		return nil, fmt.Errorf("%s: нет fmt-чанка", path)
	}
	if clip.Data == nil {
		return nil, fmt.Errorf("%s: нет data-чанка", path)
	}
	return &clip, nil
}

// Duration reads only enough of the file to report its length in seconds.
// The measured value is authoritative for subtitle timing.
func Duration(path string) (float64, error) {
	clip, err := ReadFile(path)
	if err != nil {
		return 0, err
	}
	return clip.Duration(), nil
}

// Concat concatenates WAV fragments in order into a single file. All
// fragments must share one format; mismatched rates are an error rather than
// a silent resample.
func Concat(paths []string, outPath string) error {
	if len(paths) == 0 {
		return fmt.Errorf("нет фрагментов для склейки")
	}

	var out *Clip
	for _, p := range paths {
		clip, err := ReadFile(p)
		if err != nil {
			return fmt.Errorf("чтение фрагмента %s: %w", p, err)
		}
		if out == nil {
			out = &Clip{Format: clip.Format}
		} else if clip.Format != out.Format {
			return fmt.Errorf("фрагмент %s: формат %+v не совпадает с %+v", p, clip.Format, out.Format)
		}
		out.Data = append(out.Data, clip.Data...)
	}

	return WriteFile(outPath, out)
}
