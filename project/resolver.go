package project

import (
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"sync"

	daw "github.com/cwbudde/algo-daw"
	"github.com/cwbudde/algo-daw/clip"
	"github.com/cwbudde/algo-daw/dsp/resample"
	"github.com/cwbudde/algo-daw/export"
	"github.com/cwbudde/algo-daw/track"
)

// SourceResolver supplies the samples of an audio source.
type SourceResolver interface {
	Resolve(src Source) (*clip.AudioSource, error)
}

// MapResolver serves sources that already live in memory, keyed by ID.
type MapResolver map[string]*clip.AudioSource

// Resolve implements SourceResolver.
func (m MapResolver) Resolve(src Source) (*clip.AudioSource, error) {
	if a, ok := m[src.ID]; ok {
		return a, nil
	}

	return nil, fmt.Errorf("project: audio source %q: %w", src.ID, daw.ErrNotFound)
}

// CollectSources returns the audio sources referenced by tracks.
func CollectSources(tracks []*track.Track) MapResolver {
	m := MapResolver{}
	for _, t := range tracks {
		for _, c := range t.Clips {
			if a, ok := c.Source.(*clip.AudioSource); ok {
				m[a.SourceID()] = a
			}
		}
	}

	return m
}

// Resolvers tries each resolver in turn and returns the first hit.
type Resolvers []SourceResolver

// Resolve implements SourceResolver.
func (rs Resolvers) Resolve(src Source) (*clip.AudioSource, error) {
	var errs []error
	for _, r := range rs {
		a, err := r.Resolve(src)
		if err == nil {
			return a, nil
		}
		errs = append(errs, err)
	}

	if len(errs) == 0 {
		return nil, fmt.Errorf("project: audio source %q: %w", src.ID, daw.ErrNotFound)
	}

	return nil, errors.Join(errs...)
}

// FileResolver loads WAV sources from paths relative to Dir and converts
// them to SampleRate. Each source is loaded once.
type FileResolver struct {
	Dir        string
	SampleRate float64

	mu    sync.Mutex
	cache map[string]*clip.AudioSource
}

// NewFileResolver returns a resolver for the project file at projectPath.
func NewFileResolver(projectPath string, sampleRate float64) *FileResolver {
	return &FileResolver{Dir: filepath.Dir(projectPath), SampleRate: sampleRate}
}

// Resolve implements SourceResolver.
func (r *FileResolver) Resolve(src Source) (*clip.AudioSource, error) {
	if src.Path == "" {
		return nil, fmt.Errorf("project: audio source %q has no file: %w", src.ID, daw.ErrNotFound)
	}

	r.mu.Lock()
	defer r.mu.Unlock()

	if a, ok := r.cache[src.ID]; ok {
		return a, nil
	}

	path := filepath.FromSlash(src.Path)
	if !filepath.IsAbs(path) {
		path = filepath.Join(r.Dir, path)
	}

	buf, rate, err := export.ReadWAVFile(path)
	if err != nil {
		return nil, fmt.Errorf("project: audio source %q: %w", src.ID, err)
	}

	if r.SampleRate > 0 && rate != r.SampleRate {
		conv, err := resample.NewConverter(rate, r.SampleRate, resample.WithQuality(resample.QualityBest))
		if err != nil {
			return nil, err
		}
		buf = conv.Buffer(buf)
		rate = r.SampleRate
	}

	a, err := clip.NewAudioSource(src.ID, rate, buf)
	if err != nil {
		return nil, fmt.Errorf("project: audio source %q: %w", src.ID, err)
	}

	if r.cache == nil {
		r.cache = map[string]*clip.AudioSource{}
	}
	r.cache[src.ID] = a

	return a, nil
}

// StoreSources writes every in-memory audio source of p as a float WAV
// file into subdir next to the project file and points the clips at it.
// Sources that already have a path are left alone.
func StoreSources(p *Project, projectPath, subdir string, sources MapResolver) error {
	dir := filepath.Join(filepath.Dir(projectPath), subdir)
	if err := os.MkdirAll(dir, 0o755); err != nil {
		return fmt.Errorf("project: %w", err)
	}

	written := map[string]string{}

	for ti := range p.Tracks {
		for ci := range p.Tracks[ti].Clips {
			src := &p.Tracks[ti].Clips[ci].Source
			if src.Kind != SourceAudio || src.Path != "" {
				continue
			}

			if path, ok := written[src.ID]; ok {
				src.Path = path
				continue
			}

			a, err := sources.Resolve(*src)
			if err != nil {
				return err
			}

			name := src.ID + ".wav"
			if err := export.WriteWAVFile(filepath.Join(dir, name), a.Buffer(), a.SampleRate(), export.WithEncoding(export.Float32)); err != nil {
				return err
			}

			src.Path = filepath.ToSlash(filepath.Join(subdir, name))
			written[src.ID] = src.Path
		}
	}

	return nil
}
