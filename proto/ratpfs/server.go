package ratpfs

import (
	"io"
	"os"
	"path/filepath"
	"strings"
	"syscall"

	"github.com/pkg/errors"
	"github.com/terassyi/goratp/logger"
	"github.com/terassyi/goratp/packet/ratpfs"
)

// maximum bytes answered by one read call
const maxChunk = 4096

var ErrUnknownCall = errors.New("unknown call")

// Server answers filesystem calls against an exported directory.
// Paths are confined to the export root.
type Server struct {
	root    string
	mounted bool
	handles map[uint32]*os.File
	next    uint32
	logger  *logger.Logger
}

// NewServer exports root. With an empty root every call is answered invalid.
func NewServer(root string, debug bool) (*Server, error) {
	s := &Server{
		handles: make(map[uint32]*os.File),
		next:    1,
		logger:  logger.New(debug, "ratpfs"),
	}
	if root == "" {
		return s, nil
	}
	abs, err := filepath.Abs(root)
	if err != nil {
		return nil, errors.Wrapf(err, "export %s", root)
	}
	info, err := os.Stat(abs)
	if err != nil {
		return nil, errors.Wrapf(err, "export %s", root)
	}
	if !info.IsDir() {
		return nil, errors.Errorf("export %s: not a directory", root)
	}
	s.root = abs
	return s, nil
}

func (s *Server) Root() string {
	return s.root
}

// Handle answers one fs call payload with an fs_return payload.
func (s *Server) Handle(data []byte) []byte {
	call, err := ratpfs.New(data)
	if err != nil {
		s.logger.Warn(err)
		return invalid()
	}
	s.logger.Debugf("call %s", call)
	if s.root == "" {
		return invalid()
	}
	if call.Op == ratpfs.MOUNT_CALL {
		s.mounted = true
		return ratpfs.Build(ratpfs.MOUNT_RETURN, nil).Serialize()
	}
	if !s.mounted {
		s.logger.Warnf("%s before mount", call.Op)
		return invalid()
	}
	payload, err := s.dispatch(call)
	if err != nil {
		s.logger.Warnf("%s: %v", call.Op, err)
		return invalid()
	}
	return ratpfs.Build(call.Op.Return(), payload).Serialize()
}

func invalid() []byte {
	return ratpfs.Build(ratpfs.INVALID, nil).Serialize()
}

func (s *Server) dispatch(call *ratpfs.Packet) ([]byte, error) {
	switch call.Op {
	case ratpfs.READDIR_CALL:
		return s.readdir(string(call.Payload)), nil
	case ratpfs.STAT_CALL:
		return s.stat(string(call.Payload)), nil
	case ratpfs.OPEN_CALL:
		c, err := ratpfs.DecodeOpenCall(call.Payload)
		if err != nil {
			return nil, err
		}
		return s.open(c), nil
	case ratpfs.READ_CALL:
		c, err := ratpfs.DecodeReadCall(call.Payload)
		if err != nil {
			return nil, err
		}
		return s.read(c)
	case ratpfs.WRITE_CALL:
		c, err := ratpfs.DecodeWriteCall(call.Payload)
		if err != nil {
			return nil, err
		}
		return nil, s.write(c)
	case ratpfs.CLOSE_CALL:
		c, err := ratpfs.DecodeCloseCall(call.Payload)
		if err != nil {
			return nil, err
		}
		return nil, s.close(c)
	case ratpfs.TRUNCATE_CALL:
		c, err := ratpfs.DecodeTruncateCall(call.Payload)
		if err != nil {
			return nil, err
		}
		return nil, s.truncate(c)
	default:
		return nil, errors.Wrapf(ErrUnknownCall, "%s", call.Op)
	}
}

// resolve maps a target path below the export root. Empty components and
// components containing ".." are dropped.
func (s *Server) resolve(path string) string {
	parts := []string{s.root}
	for _, p := range strings.Split(path, "/") {
		if p == "" || strings.Contains(p, "..") {
			continue
		}
		parts = append(parts, p)
	}
	return filepath.Join(parts...)
}

func errno(err error) uint32 {
	var e syscall.Errno
	if errors.As(err, &e) {
		return uint32(e)
	}
	return uint32(syscall.EIO)
}

func (s *Server) readdir(path string) []byte {
	entries, err := os.ReadDir(s.resolve(path))
	if err != nil {
		s.logger.Debugf("readdir %s: %v", path, err)
		return nil
	}
	names := make([]string, 0, len(entries))
	for _, e := range entries {
		names = append(names, e.Name())
	}
	return ratpfs.EncodeNames(names)
}

func (s *Server) stat(path string) []byte {
	info, err := os.Stat(s.resolve(path))
	if err != nil {
		return (&ratpfs.StatReturn{Kind: ratpfs.NOT_FOUND, Size: errno(err)}).Encode()
	}
	switch {
	case info.Mode().IsRegular():
		return (&ratpfs.StatReturn{Kind: ratpfs.FILE, Size: uint32(info.Size())}).Encode()
	case info.IsDir():
		return (&ratpfs.StatReturn{Kind: ratpfs.DIR, Size: uint32(info.Size())}).Encode()
	default:
		return (&ratpfs.StatReturn{Kind: ratpfs.NOT_FOUND}).Encode()
	}
}

// openFlags keeps the permitted bits of the target's flags.
func openFlags(flags uint32) int {
	var f int
	switch flags & 3 {
	case ratpfs.O_WRONLY:
		f = os.O_WRONLY
	case ratpfs.O_RDWR:
		f = os.O_RDWR
	default:
		f = os.O_RDONLY
	}
	if flags&ratpfs.O_CREAT != 0 {
		f |= os.O_CREATE
	}
	if flags&ratpfs.O_TRUNC != 0 {
		f |= os.O_TRUNC
	}
	return f
}

func (s *Server) open(c *ratpfs.OpenCall) []byte {
	path := s.resolve(c.Path)
	f, err := os.OpenFile(path, openFlags(c.Flags), 0666)
	if err != nil {
		s.logger.Debugf("open %s: %v", path, err)
		return (&ratpfs.OpenReturn{Handle: 0, Size: errno(err)}).Encode()
	}
	info, err := f.Stat()
	if err != nil {
		f.Close()
		return (&ratpfs.OpenReturn{Handle: 0, Size: errno(err)}).Encode()
	}
	handle := s.next
	s.next++
	s.handles[handle] = f
	s.logger.Debugf("open %s as %d", path, handle)
	return (&ratpfs.OpenReturn{Handle: handle, Size: uint32(info.Size())}).Encode()
}

func (s *Server) file(handle uint32) (*os.File, error) {
	f, ok := s.handles[handle]
	if !ok {
		return nil, errors.Errorf("unknown handle %d", handle)
	}
	return f, nil
}

func (s *Server) read(c *ratpfs.ReadCall) ([]byte, error) {
	f, err := s.file(c.Handle)
	if err != nil {
		return nil, err
	}
	size := c.Size
	if size > maxChunk {
		size = maxChunk
	}
	buf := make([]byte, size)
	n, err := f.ReadAt(buf, int64(c.Pos))
	if err != nil && err != io.EOF {
		s.logger.Warnf("read %s: %v", f.Name(), err)
	}
	return buf[:n], nil
}

func (s *Server) write(c *ratpfs.WriteCall) error {
	f, err := s.file(c.Handle)
	if err != nil {
		return err
	}
	if _, err := f.WriteAt(c.Data, int64(c.Pos)); err != nil {
		s.logger.Warnf("write %s: %v", f.Name(), err)
	}
	return nil
}

func (s *Server) close(c *ratpfs.CloseCall) error {
	f, err := s.file(c.Handle)
	if err != nil {
		return err
	}
	delete(s.handles, c.Handle)
	return f.Close()
}

func (s *Server) truncate(c *ratpfs.TruncateCall) error {
	f, err := s.file(c.Handle)
	if err != nil {
		return err
	}
	if err := f.Truncate(int64(c.Size)); err != nil {
		s.logger.Warnf("truncate %s: %v", f.Name(), err)
	}
	return nil
}

// Close releases every open handle.
func (s *Server) Close() error {
	var first error
	for handle, f := range s.handles {
		if err := f.Close(); err != nil && first == nil {
			first = err
		}
		delete(s.handles, handle)
	}
	return first
}
