package curriculum

import (
	"bytes"
	"embed"
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"slices"
	"strings"

	"cuelang.org/go/cue"
	"cuelang.org/go/cue/cuecontext"
	cueerrors "cuelang.org/go/cue/errors"
	"cuelang.org/go/cue/token"
	"gopkg.in/yaml.v3"
)

//go:embed schema.cue
var schemaSource []byte

//go:embed builtin/*.yaml
var builtinFS embed.FS

// ErrUnknownCurriculum is returned by Builtin and Resolve for a name that
// is neither a built-in curriculum nor an existing file.
var ErrUnknownCurriculum = errors.New("curriculum: unknown curriculum")

// LoadError carries the source position of a curriculum file error when
// one is known.
type LoadError struct {
	Field   string
	Message string
	Pos     token.Pos
}

func (e *LoadError) Error() string {
	if e.Pos.IsValid() {
		return fmt.Sprintf("%s:%d:%d: %s: %s",
			e.Pos.Filename(), e.Pos.Line(), e.Pos.Column(),
			e.Field, e.Message)
	}
	return fmt.Sprintf("%s: %s", e.Field, e.Message)
}

// Load reads a curriculum file. The format is chosen by extension:
// .yaml/.yml or .cue.
func Load(path string) (*Curriculum, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("read curriculum: %w", err)
	}
	switch strings.ToLower(filepath.Ext(path)) {
	case ".yaml", ".yml":
		return ParseYAML(data)
	case ".cue":
		return ParseCUE(path, data)
	default:
		return nil, fmt.Errorf("curriculum %s: unsupported extension (want .yaml, .yml or .cue)", path)
	}
}

// ParseYAML decodes a curriculum from YAML. Unknown fields are rejected.
func ParseYAML(data []byte) (*Curriculum, error) {
	var c Curriculum
	dec := yaml.NewDecoder(bytes.NewReader(data))
	dec.KnownFields(true)
	if err := dec.Decode(&c); err != nil {
		return nil, fmt.Errorf("parse curriculum yaml: %w", err)
	}
	if err := c.Prepare(); err != nil {
		return nil, fmt.Errorf("curriculum %q: %w", c.Name, err)
	}
	return &c, nil
}

// ParseCUE compiles a curriculum written in CUE and unifies it with the
// embedded #Curriculum schema before decoding. filename is used only for
// error positions.
func ParseCUE(filename string, data []byte) (*Curriculum, error) {
	ctx := cuecontext.New()
	schema := ctx.CompileBytes(schemaSource, cue.Filename("schema.cue"))
	if err := schema.Err(); err != nil {
		return nil, fmt.Errorf("compile curriculum schema: %w", err)
	}

	v := ctx.CompileBytes(data, cue.Filename(filename))
	if err := v.Err(); err != nil {
		return nil, formatCUEError(err)
	}
	v = schema.LookupPath(cue.ParsePath("#Curriculum")).Unify(v)
	if err := v.Validate(cue.Concrete(true)); err != nil {
		return nil, formatCUEError(err)
	}

	var c Curriculum
	if err := v.Decode(&c); err != nil {
		return nil, formatCUEError(err)
	}
	if err := c.Prepare(); err != nil {
		return nil, fmt.Errorf("curriculum %q: %w", c.Name, err)
	}
	return &c, nil
}

// Builtin returns one of the embedded curricula by name.
func Builtin(name string) (*Curriculum, error) {
	data, err := builtinFS.ReadFile("builtin/" + name + ".yaml")
	if err != nil {
		return nil, fmt.Errorf("%w: %q", ErrUnknownCurriculum, name)
	}
	return ParseYAML(data)
}

// BuiltinNames lists the embedded curricula, sorted.
func BuiltinNames() []string {
	entries, err := builtinFS.ReadDir("builtin")
	if err != nil {
		return nil
	}
	names := make([]string, 0, len(entries))
	for _, e := range entries {
		names = append(names, strings.TrimSuffix(e.Name(), ".yaml"))
	}
	slices.Sort(names)
	return names
}

// Resolve accepts either a built-in name or a path to a curriculum file.
func Resolve(nameOrPath string) (*Curriculum, error) {
	if slices.Contains(BuiltinNames(), nameOrPath) {
		return Builtin(nameOrPath)
	}
	if _, err := os.Stat(nameOrPath); err != nil {
		if errors.Is(err, os.ErrNotExist) {
			return nil, fmt.Errorf("%w: %q", ErrUnknownCurriculum, nameOrPath)
		}
		return nil, fmt.Errorf("stat curriculum: %w", err)
	}
	return Load(nameOrPath)
}

// formatCUEError returns the first CUE error with its position attached.
func formatCUEError(err error) error {
	errs := cueerrors.Errors(err)
	if len(errs) == 0 {
		return err
	}
	first := errs[0]
	if positions := cueerrors.Positions(first); len(positions) > 0 {
		return &LoadError{
			Field:   "cue",
			Message: first.Error(),
			Pos:     positions[0],
		}
	}
	return err
}
