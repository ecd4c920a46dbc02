package engine

import "fmt"

// Stage names the step of a run that failed.
type Stage string

const (
	StageConfig Stage = "config"
	StageInput  Stage = "input"
	StageRender Stage = "render"
	StageOutput Stage = "output"
)

// StageError records which stage and, when known, which file failed.
type StageError struct {
	Stage Stage
	Path  string
	Err   error
}

func (e *StageError) Error() string {
	if e.Path != "" {
		return fmt.Sprintf("%s %s: %v", e.Stage, e.Path, e.Err)
	}
	return fmt.Sprintf("%s: %v", e.Stage, e.Err)
}

func (e *StageError) Unwrap() error {
	return e.Err
}
