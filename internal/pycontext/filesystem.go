package pycontext

import "github.com/ivarvong/pyex-sub002/internal/pyerr"

// FileMode is a file handle's open mode.
type FileMode string

const (
	ModeRead   FileMode = "r"
	ModeWrite  FileMode = "w"
	ModeAppend FileMode = "a"
)

// FilesystemBackend is the host-supplied filesystem protocol of spec.md
// §6. Reads pull content immediately; writes are only flushed to the
// backend on close (spec.md §4.3).
type FilesystemBackend interface {
	Read(path string) (string, error)
	Write(path, content string, mode FileMode) error
	ListDir(path string) ([]string, error)
}

// FileHandle is one entry in the context's integer-keyed file-handle
// table (spec.md §3, §4.3).
type FileHandle struct {
	ID     int
	Path   string
	Mode   FileMode
	Buf    []byte // read buffer (mode r) or accumulated writes (mode w/a)
	Pos    int
	Closed bool
}

// Open creates a new handle for path in the given mode. Reads are pulled
// from the backend immediately and buffered; writes/appends start with an
// empty buffer that accumulates until Close flushes it.
func (c *Context) Open(path string, mode FileMode) (int, error) {
	if c.FileSystem == nil {
		return 0, pyerr.New(pyerr.IOError, "no filesystem backend configured")
	}
	c.RecordFileOp("open:"+string(mode), path)
	h := &FileHandle{Path: path, Mode: mode}
	switch mode {
	case ModeRead:
		content, err := c.FileSystem.Read(path)
		if err != nil {
			return 0, pyerr.New(pyerr.IOError, "%s", err.Error())
		}
		h.Buf = []byte(content)
	case ModeWrite, ModeAppend:
		// buffer starts empty regardless of existing content; append
		// mode's existing content is only merged by the backend on
		// flush (spec.md §6: "append concatenates").
	default:
		return 0, pyerr.New(pyerr.ValueError, "invalid file mode %q", mode)
	}
	c.nextFileID++
	h.ID = c.nextFileID
	c.Files[h.ID] = h
	return h.ID, nil
}

func (c *Context) handle(id int) (*FileHandle, error) {
	h, ok := c.Files[id]
	if !ok || h.Closed {
		return nil, pyerr.New(pyerr.ValueError, "I/O operation on closed or unknown file handle")
	}
	return h, nil
}

// Read returns the remaining buffered content (a read handle's entire
// content on first call, consistent with Python's file.read()).
func (c *Context) Read(id int) (string, error) {
	h, err := c.handle(id)
	if err != nil {
		return "", err
	}
	if h.Mode != ModeRead {
		return "", pyerr.New(pyerr.IOError, "file not open for reading")
	}
	out := string(h.Buf[h.Pos:])
	h.Pos = len(h.Buf)
	return out, nil
}

// Write appends content to the handle's accumulation buffer.
func (c *Context) Write(id int, content string) (int, error) {
	h, err := c.handle(id)
	if err != nil {
		return 0, err
	}
	if h.Mode != ModeWrite && h.Mode != ModeAppend {
		return 0, pyerr.New(pyerr.IOError, "file not open for writing")
	}
	h.Buf = append(h.Buf, content...)
	return len(content), nil
}

// Close flushes a write/append handle's buffer to the backend and marks
// the handle closed; closing a read handle is a no-op flush.
func (c *Context) Close(id int) error {
	h, err := c.handle(id)
	if err != nil {
		return err
	}
	c.RecordFileOp("close", h.Path)
	if h.Mode == ModeWrite || h.Mode == ModeAppend {
		if c.FileSystem == nil {
			return pyerr.New(pyerr.IOError, "no filesystem backend configured")
		}
		if err := c.FileSystem.Write(h.Path, string(h.Buf), h.Mode); err != nil {
			return pyerr.New(pyerr.IOError, "%s", err.Error())
		}
	}
	h.Closed = true
	return nil
}

// ListDir delegates to the backend.
func (c *Context) ListDir(path string) ([]string, error) {
	if c.FileSystem == nil {
		return nil, pyerr.New(pyerr.IOError, "no filesystem backend configured")
	}
	c.RecordFileOp("list_dir", path)
	names, err := c.FileSystem.ListDir(path)
	if err != nil {
		return nil, pyerr.New(pyerr.IOError, "%s", err.Error())
	}
	return names, nil
}
