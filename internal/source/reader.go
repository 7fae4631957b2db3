// Package source implements the interpreter's source reader: a stack
// of open files (for import), byte-level reading with line/column
// tracking, and the save()/jump() checkpoint pair that the rest of the
// interpreter treats as an ordinary refcounted value.
package source

import (
	"bufio"
	"errors"
	"fmt"
	"io"
	"os"
	"path/filepath"

	"github.com/google/uuid"
)

type fileState struct {
	id         string
	path       string
	f          *os.File
	br         *bufio.Reader
	line, col  int
	byteOffset int64
}

// Reader is the interpreter's file stack.
type Reader struct {
	stack       []*fileState
	searchPaths []string
	importing   map[string]bool // circular-import guard, by resolved path
}

// NewReader opens mainPath as the bottom of the file stack.
func NewReader(mainPath string, searchPaths []string) (*Reader, error) {
	r := &Reader{
		searchPaths: append([]string{"."}, searchPaths...),
		importing:   make(map[string]bool),
	}
	fs, err := openFile(mainPath)
	if err != nil {
		return nil, err
	}
	r.stack = []*fileState{fs}
	return r, nil
}

func openFile(path string) (*fileState, error) {
	f, err := os.Open(path)
	if err != nil {
		return nil, err
	}
	return &fileState{
		id:   uuid.NewString(),
		path: path,
		f:    f,
		br:   bufio.NewReader(f),
		line: 1,
		col:  1,
	}, nil
}

// Depth reports how many files are currently open on the stack. Used
// by import to detect when a pushed file (and anything it transitively
// imports) has fully unwound back to the importing file.
func (r *Reader) Depth() int { return len(r.stack) }

func (r *Reader) top() *fileState {
	if len(r.stack) == 0 {
		return nil
	}
	return r.stack[len(r.stack)-1]
}

// CurrentFile, CurrentLine and CurrentCol report the location the next
// byte will come from. The lexer uses them to stamp each token, and
// diag to locate fatal errors.
func (r *Reader) CurrentFile() string {
	if f := r.top(); f != nil {
		return f.path
	}
	return ""
}

func (r *Reader) CurrentLine() int {
	if f := r.top(); f != nil {
		return f.line
	}
	return 0
}

func (r *Reader) CurrentCol() int {
	if f := r.top(); f != nil {
		return f.col
	}
	return 0
}

// ReadByte returns the next byte of the logical, textually-spliced
// source stream: reads of the top file that hit EOF transparently pop
// the stack and resume the file beneath, exactly as if import had
// spliced the child's text in at the import statement, so the lexer
// never needs to know a file boundary occurred. The bottom (main) file
// is never popped; its exhaustion is the stream's EOF, and it must
// stay open for reset() and for jumps back into it.
func (r *Reader) ReadByte() (byte, error) {
	for {
		f := r.top()
		b, err := f.br.ReadByte()
		if err == io.EOF {
			if len(r.stack) == 1 {
				return 0, io.EOF
			}
			f.f.Close()
			delete(r.importing, f.path)
			r.stack = r.stack[:len(r.stack)-1]
			continue
		}
		if err != nil {
			return 0, err
		}
		f.byteOffset++
		if b == '\n' {
			f.line++
			f.col = 1
		} else {
			f.col++
		}
		return b, nil
	}
}

// PeekByte reports the next byte without consuming it, popping
// exhausted files exactly as ReadByte does so the two always agree on
// which file the next byte comes from.
func (r *Reader) PeekByte() (byte, bool) {
	for {
		f := r.top()
		b, err := f.br.Peek(1)
		if err == io.EOF {
			if len(r.stack) == 1 {
				return 0, false
			}
			f.f.Close()
			delete(r.importing, f.path)
			r.stack = r.stack[:len(r.stack)-1]
			continue
		}
		if err != nil {
			return 0, false
		}
		return b[0], true
	}
}

// Checkpoint captures everything needed to resume reading at exactly
// this point.
type Checkpoint struct {
	FileID     string
	FilePath   string
	ByteOffset int64
	Line, Col  int
}

// Save returns a checkpoint for the current top-of-stack file.
func (r *Reader) Save() Checkpoint {
	f := r.top()
	if f == nil {
		return Checkpoint{}
	}
	return Checkpoint{FileID: f.id, FilePath: f.path, ByteOffset: f.byteOffset, Line: f.line, Col: f.col}
}

// Jump restores the reader to a prior checkpoint. Any files imported
// after the checkpoint was taken are closed and dropped. A checkpoint
// may also target a file no longer on the stack (a function defined
// in an imported file is called after import has popped that file),
// in which case the file is reopened on top of the stack; the jump
// back to the call site pops it again.
func (r *Reader) Jump(c Checkpoint) error {
	idx := -1
	for i, f := range r.stack {
		if f.id == c.FileID {
			idx = i
			break
		}
	}
	if idx < 0 {
		fs, err := openFile(c.FilePath)
		if err != nil {
			return fmt.Errorf("jump target %q: %v", c.FilePath, err)
		}
		fs.id = c.FileID
		r.stack = append(r.stack, fs)
		idx = len(r.stack) - 1
	}
	for i := len(r.stack) - 1; i > idx; i-- {
		r.stack[i].f.Close()
		delete(r.importing, r.stack[i].path)
	}
	r.stack = r.stack[:idx+1]

	f := r.stack[idx]
	if _, err := f.f.Seek(c.ByteOffset, io.SeekStart); err != nil {
		return err
	}
	f.br = bufio.NewReader(f.f)
	f.byteOffset = c.ByteOffset
	f.line = c.Line
	f.col = c.Col
	return nil
}

// Reset rewinds the current top-of-stack file to its beginning. It is
// only ever called once, between the pre-scan pass and the main
// statement loop, before any import has run, so "current file" and
// "the main file" coincide.
func (r *Reader) Reset() error {
	f := r.top()
	if f == nil {
		return errors.New("reset with no open file")
	}
	if _, err := f.f.Seek(0, io.SeekStart); err != nil {
		return err
	}
	f.br = bufio.NewReader(f.f)
	f.byteOffset = 0
	f.line, f.col = 1, 1
	return nil
}

// Import resolves path against the importing file's directory and the
// configured search paths, then pushes it as the new top of stack.
func (r *Reader) Import(path string) error {
	resolved, err := r.resolvePath(path)
	if err != nil {
		return err
	}
	if r.importing[resolved] {
		return fmt.Errorf("circular import: %s", path)
	}
	fs, err := openFile(resolved)
	if err != nil {
		return err
	}
	r.importing[resolved] = true
	r.stack = append(r.stack, fs)
	return nil
}

// ImportAll resolves every path against the importing (current top)
// file before any push, then pushes in reverse so the first listed
// file is read first and the next begins when it ends: the textual
// splice order of `import a, b`.
func (r *Reader) ImportAll(paths []string) error {
	resolved := make([]string, len(paths))
	for i, p := range paths {
		rp, err := r.resolvePath(p)
		if err != nil {
			return err
		}
		if r.importing[rp] {
			return fmt.Errorf("circular import: %s", p)
		}
		resolved[i] = rp
	}
	for i := len(resolved) - 1; i >= 0; i-- {
		fs, err := openFile(resolved[i])
		if err != nil {
			return err
		}
		r.importing[resolved[i]] = true
		r.stack = append(r.stack, fs)
	}
	return nil
}

func (r *Reader) resolvePath(path string) (string, error) {
	if filepath.IsAbs(path) {
		if _, err := os.Stat(path); err == nil {
			return path, nil
		}
		return "", fmt.Errorf("import %q: not found", path)
	}
	bases := []string{}
	if f := r.top(); f != nil {
		bases = append(bases, filepath.Dir(f.path))
	}
	bases = append(bases, r.searchPaths...)
	for _, base := range bases {
		candidate := filepath.Join(base, path)
		if _, err := os.Stat(candidate); err == nil {
			return candidate, nil
		}
	}
	return "", fmt.Errorf("import %q: not found in search paths", path)
}

// Close releases every file still open on the stack.
func (r *Reader) Close() {
	for _, f := range r.stack {
		f.f.Close()
	}
	r.stack = nil
}
