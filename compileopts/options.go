// Package compileopts holds the compiler's run-time configuration: which
// pipeline stage to stop at, and whether to emit debug output. Options can
// be built from CLI flags or decoded from a TOML project file.
package compileopts

import (
	"os"

	"github.com/BurntSushi/toml"
	"github.com/pkg/errors"
)

// Stage names a point in the five-stage pipeline. The zero value is
// StageFull, so a zero-value Options runs the complete pipeline.
type Stage int

const (
	StageFull Stage = iota
	StageLex
	StageParse
	StageValidate
	StageTacky
	StageCodegen
)

var stageNames = map[Stage]string{
	StageFull:     "full",
	StageLex:      "lex",
	StageParse:    "parse",
	StageValidate: "validate",
	StageTacky:    "tacky",
	StageCodegen:  "codegen",
}

func (s Stage) String() string {
	if name, ok := stageNames[s]; ok {
		return name
	}
	return "unknown"
}

// Options configures a single compilation.
type Options struct {
	// Stage is the pipeline stage the compiler stops after; see the
	// Stage* constants. Never decoded from TOML — it is a per-invocation
	// CLI concern, not a persisted project setting.
	Stage Stage `toml:"-"`

	// Debug controls whether the compiler prints the token count to
	// stderr after lexing. The AST, TACKY and assembly IR are not printed.
	Debug bool `toml:"debug"`
}

// Default returns the Options used when no project config file and no
// stage-stopping flag are given: run the full pipeline, no debug output.
func Default() Options {
	return Options{Stage: StageFull, Debug: false}
}

// Load reads project-level defaults from path, a TOML file, layering them
// over Default(). A missing file is not an error; Load returns the
// defaults unchanged.
func Load(path string) (Options, error) {
	opts := Default()
	if _, err := os.Stat(path); os.IsNotExist(err) {
		return opts, nil
	}
	if _, err := toml.DecodeFile(path, &opts); err != nil {
		return Options{}, errors.Wrapf(err, "loading config %s", path)
	}
	return opts, nil
}
