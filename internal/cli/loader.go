package cli

import (
	"errors"
	"fmt"
	"os"
	"path/filepath"

	"cuelang.org/go/cue"
	"cuelang.org/go/cue/cuecontext"
	"cuelang.org/go/cue/load"
	"cuelang.org/go/cue/token"

	"github.com/roach88/sif/internal/ast"
	"github.com/roach88/sif/internal/compiler"
)

// Error codes shared by all commands.
const (
	ErrCodeGeneric     = "E001" // Generic/unknown error
	ErrCodeScanError   = "E002" // Directory scan error
	ErrCodeNoFiles     = "E003" // No CUE files found
	ErrCodeLoadFailed  = "E004" // CUE load failed
	ErrCodeNotFound    = "E005" // Path not found
	ErrCodeBuildFailed = "E006" // CUE build failed
	ErrCodeDatabase    = "E007" // Store open or query failed

	ErrCodeCompile     = "E101" // Program does not decode
	ErrCodeNoProgram   = "E102" // No program value in the sources
	ErrCodeTranslation = "E301" // A member failed to translate
	ErrCodeReplay      = "E302" // Replay differs from the log
	ErrCodeRunNotFound = "E303" // Unknown run ID
)

// LoadResult is a loaded source program.
type LoadResult struct {
	Program   *ast.Program
	Source    string // path as given on the command line
	FileCount int
}

// LoadError is a loading failure with an error code and, when known, the
// CUE position.
type LoadError struct {
	Code    string
	Message string
	Pos     token.Pos
}

func (e *LoadError) Error() string {
	if e.Pos.IsValid() {
		return fmt.Sprintf("%s:%d:%d: %s: %s", e.Pos.Filename(), e.Pos.Line(), e.Pos.Column(), e.Code, e.Message)
	}
	return fmt.Sprintf("%s: %s", e.Code, e.Message)
}

// LoadProgram loads a program from a .cue file or from a directory whose
// CUE files form one instance. Either way the program is the top-level
// `program` value.
func LoadProgram(path string) (*LoadResult, error) {
	info, err := os.Stat(path)
	if os.IsNotExist(err) {
		return nil, &LoadError{Code: ErrCodeNotFound, Message: fmt.Sprintf("program not found: %s", path)}
	}
	if err != nil {
		return nil, &LoadError{Code: ErrCodeNotFound, Message: fmt.Sprintf("error accessing program: %v", err)}
	}

	if !info.IsDir() {
		prog, err := compiler.LoadFile(path)
		if err != nil {
			return nil, convertCompileError(err)
		}
		return &LoadResult{Program: prog, Source: path, FileCount: 1}, nil
	}

	cueFiles, err := FindCUEFiles(path)
	if err != nil {
		return nil, &LoadError{Code: ErrCodeScanError, Message: fmt.Sprintf("error scanning directory: %v", err)}
	}
	if len(cueFiles) == 0 {
		return nil, &LoadError{Code: ErrCodeNoFiles, Message: fmt.Sprintf("no CUE files found in %s", path)}
	}

	instances := load.Instances([]string{"."}, &load.Config{Dir: path})
	if len(instances) == 0 {
		return nil, &LoadError{Code: ErrCodeLoadFailed, Message: "no CUE instances loaded"}
	}
	inst := instances[0]
	if inst.Err != nil {
		return nil, &LoadError{Code: ErrCodeLoadFailed, Message: fmt.Sprintf("loading CUE files: %v", inst.Err)}
	}

	value := cuecontext.New().BuildInstance(inst)
	if err := value.Err(); err != nil {
		return nil, &LoadError{Code: ErrCodeBuildFailed, Message: fmt.Sprintf("building CUE value: %v", err)}
	}
	pv := value.LookupPath(cue.ParsePath("program"))
	if !pv.Exists() {
		return nil, &LoadError{Code: ErrCodeNoProgram, Message: fmt.Sprintf("no program found in %s", path)}
	}
	prog, err := compiler.CompileProgram(pv)
	if err != nil {
		return nil, convertCompileError(err)
	}
	return &LoadResult{Program: prog, Source: path, FileCount: len(cueFiles)}, nil
}

// FindCUEFiles returns the .cue files directly in dir. CUE instances do not
// span subdirectories.
func FindCUEFiles(dir string) ([]string, error) {
	entries, err := os.ReadDir(dir)
	if err != nil {
		return nil, err
	}
	var files []string
	for _, e := range entries {
		if !e.IsDir() && filepath.Ext(e.Name()) == ".cue" {
			files = append(files, filepath.Join(dir, e.Name()))
		}
	}
	return files, nil
}

func convertCompileError(err error) *LoadError {
	var compileErr *compiler.CompileError
	if errors.As(err, &compileErr) {
		code := ErrCodeCompile
		if compileErr.Field == "program" {
			code = ErrCodeNoProgram
		}
		return &LoadError{Code: code, Message: compileErr.Message, Pos: compileErr.Pos}
	}
	return &LoadError{Code: ErrCodeGeneric, Message: err.Error()}
}

// loadOrFail loads a program, reporting failure through f.
func loadOrFail(f *OutputFormatter, path string) (*LoadResult, error) {
	res, err := LoadProgram(path)
	if err == nil {
		f.VerboseLog("Loaded %d function(s) from %d CUE file(s) in %s",
			len(res.Program.Functions), res.FileCount, path)
		return res, nil
	}
	var le *LoadError
	if errors.As(err, &le) {
		msg := le.Message
		if le.Pos.IsValid() {
			msg = fmt.Sprintf("%s:%d:%d: %s", le.Pos.Filename(), le.Pos.Line(), le.Pos.Column(), le.Message)
		}
		return nil, commandError(f, le.Code, msg)
	}
	return nil, commandError(f, ErrCodeGeneric, err.Error())
}
