package engine

import (
	"context"
	"errors"
	"log/slog"
	"time"

	"golang.org/x/sync/errgroup"

	"github.com/ivlev/frames2ascii/internal/artifact"
	"github.com/ivlev/frames2ascii/internal/ascii"
	"github.com/ivlev/frames2ascii/internal/config"
	"github.com/ivlev/frames2ascii/internal/logging"
	"github.com/ivlev/frames2ascii/internal/source"
	"github.com/ivlev/frames2ascii/internal/system"
)

// RenderProject converts one ordered batch of frame images into a playback
// artifact. A run is all-or-nothing: any failing frame aborts the batch and
// nothing is written.
type RenderProject struct {
	Config config.RenderConfig
	Source source.Source
	Log    *slog.Logger
	// Build is reported with the performance stats.
	Build string
}

type Result struct {
	Frames  int
	Output  string
	Format  string
	Elapsed time.Duration
}

// NewRenderProject wires a project. src may be nil, in which case frames are
// discovered from cfg.Input when the project runs.
func NewRenderProject(cfg config.RenderConfig, src source.Source, log *slog.Logger) *RenderProject {
	return &RenderProject{
		Config: cfg,
		Source: src,
		Log:    logging.OrDiscard(log),
	}
}

func (p *RenderProject) Run(ctx context.Context) (*Result, error) {
	startTime := time.Now()
	log := logging.OrDiscard(p.Log)

	format, err := p.Config.ResolveFormat()
	if err != nil {
		return nil, &StageError{Stage: StageConfig, Err: err}
	}

	playback, err := p.Render(ctx)
	if err != nil {
		return nil, err
	}

	if err := artifact.WriteFile(p.Config.Output, playback, format); err != nil {
		return nil, &StageError{Stage: StageOutput, Path: p.Config.Output, Err: err}
	}

	res := &Result{
		Frames:  len(playback.Frames),
		Output:  p.Config.Output,
		Format:  format,
		Elapsed: time.Since(startTime),
	}

	if p.Config.ShowStats {
		attrs := []any{
			"build", p.Build,
			"frames", res.Frames,
			"elapsed", res.Elapsed.Round(time.Millisecond),
			"fps", float64(res.Frames) / res.Elapsed.Seconds(),
		}
		if rss, err := system.ProcessRSS(); err == nil {
			attrs = append(attrs, "rss_mb", rss>>20)
		}
		log.Info("performance report", attrs...)
	}
	return res, nil
}

// Render validates the configuration and renders every frame in source
// order without touching the output location.
func (p *RenderProject) Render(ctx context.Context) (artifact.Playback, error) {
	log := logging.OrDiscard(p.Log)

	if err := p.Config.Validate(); err != nil {
		return artifact.Playback{}, &StageError{Stage: StageConfig, Err: err}
	}
	palette, err := ascii.NewPalette(p.Config.Palette)
	if err != nil {
		return artifact.Playback{}, &StageError{Stage: StageConfig, Err: err}
	}
	if p.Config.Invert {
		palette = palette.Reversed()
	}
	renderer := ascii.Renderer{Palette: palette, VerticalScale: p.Config.VerticalScale}

	src := p.Source
	if src == nil {
		imgSrc, err := source.NewImageSource(p.Config.Input)
		if err != nil {
			return artifact.Playback{}, &StageError{Stage: StageInput, Path: p.Config.Input, Err: err}
		}
		src = imgSrc
		defer src.Close()
	}

	frameCount := src.FrameCount()
	if frameCount == 0 {
		return artifact.Playback{}, &StageError{Stage: StageInput, Path: p.Config.Input, Err: source.ErrNoFrames}
	}

	workers := p.Config.Workers
	if workers == 0 {
		workers = system.DefaultWorkers()
	}
	if workers > frameCount {
		workers = frameCount
	}

	attrs := []any{
		"frames", frameCount,
		"workers", workers,
		"palette", palette.String(),
		"vertical_scale", p.Config.VerticalScale,
	}
	if w, h, err := src.GetFrameDimensions(0); err == nil {
		attrs = append(attrs, "columns", w, "rows", ascii.TargetHeight(h, p.Config.VerticalScale))
	}
	log.Info("rendering frames", attrs...)

	// Кадры рендерятся параллельно, результат кладем по индексу
	frames := make([]string, frameCount)
	g, gctx := errgroup.WithContext(ctx)
	g.SetLimit(workers)

	for i := 0; i < frameCount; i++ {
		g.Go(func() error {
			if err := gctx.Err(); err != nil {
				return err
			}
			path := src.FramePath(i)
			img, err := src.DecodeFrame(i)
			if err != nil {
				return &StageError{Stage: StageInput, Path: path, Err: err}
			}
			frames[i] = renderer.Render(img)
			log.Debug("frame ready", "index", i+1, "total", frameCount, "path", path)
			return nil
		})
	}

	// Любая ошибка отменяет весь пакет, частичный результат не пишем
	if err := g.Wait(); err != nil {
		var stageErr *StageError
		if errors.As(err, &stageErr) {
			return artifact.Playback{}, stageErr
		}
		return artifact.Playback{}, &StageError{Stage: StageRender, Err: err}
	}

	return artifact.Playback{FPS: p.Config.FPS, Frames: frames}, nil
}
