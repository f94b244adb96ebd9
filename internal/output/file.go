package output

import (
	"os"

	"github.com/scribery/aushape-go/internal/aushapeerr"
)

// File writes fragments straight to an *os.File, closing it on Close only
// if it was created owning that file (mirrors fd_owned in the original
// file-descriptor output type).
type File struct {
	f     *os.File
	owned bool
}

// NewFile wraps f. If owned, Close also closes f.
func NewFile(f *os.File, owned bool) *File {
	return &File{f: f, owned: owned}
}

func (*File) IsContinuous() bool { return true }

func (s *File) Write(p []byte) error {
	if _, err := s.f.Write(p); err != nil {
		return aushapeerr.Wrap(err, aushapeerr.OutputWriteFailure, "writing to file output")
	}
	return nil
}

func (s *File) Close() error {
	if !s.owned {
		return nil
	}
	if err := s.f.Close(); err != nil {
		return aushapeerr.Wrap(err, aushapeerr.OutputWriteFailure, "closing file output")
	}
	return nil
}
