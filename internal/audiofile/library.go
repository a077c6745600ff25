// Package audiofile resolves audio sample references against the configured
// audio directory and inspects their embedded metadata.
package audiofile

import (
	"errors"
	"fmt"
	"io"
	"io/fs"
	"os"
	"path/filepath"

	"github.com/dustin/go-humanize"

	"github.com/cesargomez89/shamzam/internal/constants"
	"github.com/cesargomez89/shamzam/internal/domain"
)

// Sample is an audio file read fully into memory, ready for upload.
type Sample struct {
	Name string
	Path string
	Data []byte
}

// Size returns the sample length in bytes.
func (s *Sample) Size() int64 {
	return int64(len(s.Data))
}

func (s *Sample) String() string {
	return fmt.Sprintf("%s (%s)", s.Name, humanize.Bytes(uint64(len(s.Data))))
}

// Library reads samples from a single directory.
type Library struct {
	Dir      string
	MaxBytes int64
}

func NewLibrary(dir string, maxBytes int64) *Library {
	return &Library{Dir: dir, MaxBytes: maxBytes}
}

// Resolve maps name to a path inside the library directory. Names that are
// absolute or climb out of the directory are reported as not found.
func (l *Library) Resolve(name string) (string, error) {
	const op = "audiofile.resolve"

	if name == "" {
		return "", domain.E(domain.KindMalformedRequest, op, errors.New("empty file name"))
	}
	if !filepath.IsLocal(name) {
		return "", domain.E(domain.KindNotFound, op, fmt.Errorf("%q is outside the audio directory", name))
	}

	path := filepath.Join(l.Dir, name)
	info, err := os.Stat(path)
	if err != nil {
		if errors.Is(err, fs.ErrNotExist) {
			return "", domain.E(domain.KindNotFound, op, err)
		}
		return "", domain.E(domain.KindNotFound, op, fmt.Errorf("failed to stat %s: %w", path, err))
	}
	if info.IsDir() {
		return "", domain.E(domain.KindNotFound, op, fmt.Errorf("%s is a directory", path))
	}
	if l.MaxBytes > 0 && info.Size() > l.MaxBytes {
		return "", l.tooLarge(op, name, info.Size())
	}
	return path, nil
}

func (l *Library) tooLarge(op, name string, size int64) error {
	return &domain.Error{
		Kind:   domain.KindMalformedRequest,
		Op:     op,
		Reason: constants.ErrMsgSampleTooLarge,
		Err:    fmt.Errorf("%s is at least %s, limit is %s", name, humanize.Bytes(uint64(size)), humanize.Bytes(uint64(l.MaxBytes))),
	}
}

// Open resolves name and reads the whole file.
func (l *Library) Open(name string) (*Sample, error) {
	path, err := l.Resolve(name)
	if err != nil {
		return nil, err
	}

	f, err := os.Open(path)
	if err != nil {
		return nil, domain.E(domain.KindNotFound, "audiofile.open", fmt.Errorf("failed to open %s: %w", path, err))
	}
	defer f.Close()

	data, err := l.read(name, f)
	if err != nil {
		return nil, err
	}
	return &Sample{Name: name, Path: path, Data: data}, nil
}

// read never buffers more than MaxBytes+1, so a file that grew after
// Resolve is still rejected.
func (l *Library) read(name string, r io.Reader) ([]byte, error) {
	const op = "audiofile.open"

	if l.MaxBytes > 0 {
		r = io.LimitReader(r, l.MaxBytes+1)
	}
	data, err := io.ReadAll(r)
	if err != nil {
		return nil, domain.E(domain.KindNotFound, op, fmt.Errorf("failed to read %s: %w", name, err))
	}
	if l.MaxBytes > 0 && int64(len(data)) > l.MaxBytes {
		return nil, l.tooLarge(op, name, int64(len(data)))
	}
	return data, nil
}
