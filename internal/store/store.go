// Package store persists the vault as a single XML file.
//
// Every operation reads the whole file from disk; mutations rewrite it in
// full through an atomic temp-file rename. There is no cache between calls.
package store

import (
	"errors"
	"fmt"
	"io/fs"
	"os"
	"path/filepath"
	"sync"
	"time"

	"github.com/charmbracelet/log"

	"github.com/hpungsan/vault/internal/atomicfile"
	vaulterrors "github.com/hpungsan/vault/internal/errors"
	"github.com/hpungsan/vault/internal/logging"
	"github.com/hpungsan/vault/internal/record"
)

// Store is a handle on one vault file.
type Store struct {
	path   string
	strict bool
	logger *log.Logger
	now    func() time.Time

	// mu serializes load-modify-save sequences within this process.
	mu sync.Mutex
}

// Option configures a Store.
type Option func(*Store)

// WithStrictParse makes an unparsable file a PARSE_FAILURE instead of an
// empty vault.
func WithStrictParse(strict bool) Option {
	return func(s *Store) { s.strict = strict }
}

// WithLogger sets the logger. The default discards everything.
func WithLogger(l *log.Logger) Option {
	return func(s *Store) {
		if l != nil {
			s.logger = l
		}
	}
}

// WithClock overrides time.Now for created and updated stamps.
func WithClock(now func() time.Time) Option {
	return func(s *Store) {
		if now != nil {
			s.now = now
		}
	}
}

// New returns a Store bound to path. The file is not touched until used.
func New(path string, opts ...Option) *Store {
	s := &Store{
		path:   path,
		logger: logging.Discard(),
		now:    time.Now,
	}
	for _, opt := range opts {
		opt(s)
	}
	s.logger = s.logger.With("store", path)
	return s
}

// Path returns the vault file path.
func (s *Store) Path() string {
	return s.path
}

// Snapshot is the raw result of reading the vault file.
type Snapshot struct {
	Exists   bool
	ParseErr error // set when the file exists but cannot be parsed
	Version  string
	Updated  string
	Records  []record.Record
}

// Inspect reads the file without applying the parse-failure policy.
// Only I/O errors other than a missing file are returned as errors.
func (s *Store) Inspect() (*Snapshot, error) {
	data, err := os.ReadFile(s.path)
	if err != nil {
		if errors.Is(err, fs.ErrNotExist) {
			return &Snapshot{Records: []record.Record{}}, nil
		}
		return nil, vaulterrors.NewInternal(fmt.Errorf("read %s: %w", s.path, err))
	}

	doc, err := decode(data)
	if err != nil {
		return &Snapshot{Exists: true, ParseErr: err, Records: []record.Record{}}, nil
	}

	return &Snapshot{
		Exists:  true,
		Version: doc.Version,
		Updated: doc.Updated,
		Records: doc.records(),
	}, nil
}

// Load returns all records in file order.
//
// A missing file is an empty vault. A file that cannot be parsed is also an
// empty vault unless the store is strict, in which case PARSE_FAILURE is
// returned.
func (s *Store) Load() ([]record.Record, error) {
	snap, err := s.Inspect()
	if err != nil {
		return nil, err
	}
	if snap.ParseErr != nil {
		if s.strict {
			return nil, vaulterrors.NewParseFailure(s.path, snap.ParseErr)
		}
		s.logger.Warn("vault file unparsable, treating as empty", "err", snap.ParseErr)
		return []record.Record{}, nil
	}
	s.logger.Debug("loaded vault", "records", len(snap.Records), "exists", snap.Exists)
	return snap.Records, nil
}

// Save replaces the file with records. Failures are WRITE_FAILURE.
func (s *Store) Save(records []record.Record) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.save(records)
}

func (s *Store) save(records []record.Record) error {
	data, err := encode(records, s.now().Format(UpdatedLayout))
	if err != nil {
		return vaulterrors.NewWriteFailure(s.path, err)
	}
	target, err := s.target()
	if err != nil {
		return vaulterrors.NewWriteFailure(s.path, err)
	}
	if err := atomicfile.WriteFile(target, data, 0600); err != nil {
		s.logger.Error("save failed", "err", err)
		return vaulterrors.NewWriteFailure(s.path, err)
	}
	s.logger.Debug("saved vault", "records", len(records))
	return nil
}

// Mutation edits the loaded records. Returning changed=false skips the save.
type Mutation func(records []record.Record) (next []record.Record, changed bool, err error)

// Update runs fn inside one locked load-modify-save sequence.
//
// In lenient mode an unparsable file is handed to fn as an empty vault; if
// fn then changes it, the unparsable file is first renamed to
// <path>.corrupt-<timestamp> so its bytes survive the rewrite.
func (s *Store) Update(fn Mutation) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	snap, err := s.Inspect()
	if err != nil {
		return err
	}
	if snap.ParseErr != nil && s.strict {
		return vaulterrors.NewParseFailure(s.path, snap.ParseErr)
	}

	next, changed, err := fn(snap.Records)
	if err != nil || !changed {
		return err
	}

	if snap.ParseErr != nil {
		if err := s.quarantine(snap.ParseErr); err != nil {
			return err
		}
	}

	return s.save(next)
}

// quarantine moves an unparsable vault file aside. A symlinked vault keeps
// its link; the target is moved.
func (s *Store) quarantine(parseErr error) error {
	target, err := s.target()
	if err != nil {
		return vaulterrors.NewWriteFailure(s.path, err)
	}
	dest := target + ".corrupt-" + s.now().Format("20060102T150405")
	if err := os.Rename(target, dest); err != nil {
		return vaulterrors.NewWriteFailure(s.path, fmt.Errorf("move unparsable file aside: %w", err))
	}
	s.logger.Warn("moved unparsable vault file aside", "dest", dest, "err", parseErr)
	return nil
}

// target returns the file that saves replace. When the vault path is a
// symlink the link is followed, so the rename lands on its target and the
// link itself is left in place. A dangling link resolves to where it points.
func (s *Store) target() (string, error) {
	info, err := os.Lstat(s.path)
	if err != nil || info.Mode()&os.ModeSymlink == 0 {
		return s.path, nil
	}

	resolved, err := filepath.EvalSymlinks(s.path)
	if err == nil {
		return resolved, nil
	}
	if !errors.Is(err, fs.ErrNotExist) {
		return "", fmt.Errorf("resolve symlink %s: %w", s.path, err)
	}

	dest, err := os.Readlink(s.path)
	if err != nil {
		return "", fmt.Errorf("read symlink %s: %w", s.path, err)
	}
	if !filepath.IsAbs(dest) {
		dest = filepath.Join(filepath.Dir(s.path), dest)
	}
	return dest, nil
}
