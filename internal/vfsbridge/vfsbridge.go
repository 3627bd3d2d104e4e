// Package vfsbridge projects an open container as a read-only
// io/fs.FS: one directory per distinct tag, one file per ref within
// it. It exists so the same traversal code serves both the CLI
// inspector (cmd/hdump) and the FUSE mount (cmd/hmount), the way the
// teacher's squashfs package let one io/fs.FS implementation serve
// both sqfs(1) and its fuse mount.
package vfsbridge

import (
	"fmt"
	"io"
	iofs "io/fs"
	"sort"
	"strconv"
	"strings"
	"time"

	"github.com/KarpelesLab/hdf4core"
)

// FS is a read-only io/fs.FS view of an open store. Directory names
// take the form "tag-<n>"; file names within them take the form
// "ref-<n>".
type FS struct {
	store *ddstore.Store
}

// New wraps store for filesystem-shaped traversal.
func New(store *ddstore.Store) *FS { return &FS{store: store} }

func tagName(t ddstore.Tag) string { return fmt.Sprintf("tag-%d", uint16(t)) }
func refName(r ddstore.Ref) string { return fmt.Sprintf("ref-%d", uint16(r)) }

func parseTagName(s string) (ddstore.Tag, bool) {
	n, ok := strings.CutPrefix(s, "tag-")
	if !ok {
		return 0, false
	}
	v, err := strconv.ParseUint(n, 10, 16)
	if err != nil {
		return 0, false
	}
	return ddstore.Tag(v), true
}

func parseRefName(s string) (ddstore.Ref, bool) {
	n, ok := strings.CutPrefix(s, "ref-")
	if !ok {
		return 0, false
	}
	v, err := strconv.ParseUint(n, 10, 16)
	if err != nil {
		return 0, false
	}
	return ddstore.Ref(v), true
}

func (f *FS) tagsAndRefs() map[ddstore.Tag][]ddstore.ElementInfo {
	byTag := map[ddstore.Tag][]ddstore.ElementInfo{}
	for _, e := range f.store.List() {
		byTag[e.Tag] = append(byTag[e.Tag], e)
	}
	return byTag
}

// Open implements io/fs.FS.
func (f *FS) Open(name string) (iofs.File, error) {
	if name == "." {
		return f.openRoot()
	}

	dir, file, hasSlash := strings.Cut(name, "/")
	tag, ok := parseTagName(dir)
	if !ok {
		return nil, &iofs.PathError{Op: "open", Path: name, Err: iofs.ErrNotExist}
	}
	entries, ok := f.tagsAndRefs()[tag]
	if !ok {
		return nil, &iofs.PathError{Op: "open", Path: name, Err: iofs.ErrNotExist}
	}
	if !hasSlash {
		return f.openTagDir(tag, entries), nil
	}

	ref, ok := parseRefName(file)
	if !ok {
		return nil, &iofs.PathError{Op: "open", Path: name, Err: iofs.ErrNotExist}
	}
	for _, e := range entries {
		if e.Ref == ref {
			return f.openElement(e)
		}
	}
	return nil, &iofs.PathError{Op: "open", Path: name, Err: iofs.ErrNotExist}
}

func (f *FS) openRoot() (iofs.File, error) {
	byTag := f.tagsAndRefs()
	tags := make([]ddstore.Tag, 0, len(byTag))
	for t := range byTag {
		tags = append(tags, t)
	}
	sort.Slice(tags, func(i, j int) bool { return tags[i] < tags[j] })

	entries := make([]iofs.DirEntry, len(tags))
	for i, t := range tags {
		entries[i] = dirEntry{name: tagName(t), isDir: true}
	}
	return &dirFile{name: ".", entries: entries}, nil
}

func (f *FS) openTagDir(tag ddstore.Tag, elems []ddstore.ElementInfo) iofs.File {
	sort.Slice(elems, func(i, j int) bool { return elems[i].Ref < elems[j].Ref })
	entries := make([]iofs.DirEntry, len(elems))
	for i, e := range elems {
		entries[i] = dirEntry{name: refName(e.Ref), size: e.Length}
	}
	return &dirFile{name: tagName(tag), entries: entries}
}

func (f *FS) openElement(e ddstore.ElementInfo) (iofs.File, error) {
	aid, err := f.store.StartRead(e.Tag, e.Ref)
	if err != nil {
		return nil, &iofs.PathError{Op: "open", Path: refName(e.Ref), Err: err}
	}
	defer f.store.EndAccess(aid)

	md, err := f.store.Inquire(aid)
	if err != nil {
		return nil, &iofs.PathError{Op: "open", Path: refName(e.Ref), Err: err}
	}
	data, err := f.store.Read(aid, int(md.Length))
	if err != nil && err != io.EOF {
		return nil, &iofs.PathError{Op: "open", Path: refName(e.Ref), Err: err}
	}
	return &elemFile{name: refName(e.Ref), data: data}, nil
}

// dirEntry is a minimal iofs.DirEntry over precomputed metadata.
type dirEntry struct {
	name  string
	isDir bool
	size  int64
}

func (d dirEntry) Name() string      { return d.name }
func (d dirEntry) IsDir() bool       { return d.isDir }
func (d dirEntry) Type() iofs.FileMode {
	if d.isDir {
		return iofs.ModeDir
	}
	return 0
}
func (d dirEntry) Info() (iofs.FileInfo, error) { return fileInfo{d}, nil }

type fileInfo struct{ dirEntry }

func (f fileInfo) Size() int64        { return f.size }
func (f fileInfo) Mode() iofs.FileMode { return f.Type() }
func (f fileInfo) ModTime() time.Time  { return time.Time{} }
func (f fileInfo) Sys() any            { return nil }

// dirFile implements iofs.ReadDirFile for both the root and tag
// directories.
type dirFile struct {
	name    string
	entries []iofs.DirEntry
	pos     int
}

func (d *dirFile) Stat() (iofs.FileInfo, error) {
	return fileInfo{dirEntry{name: d.name, isDir: true}}, nil
}
func (d *dirFile) Read([]byte) (int, error) { return 0, &iofs.PathError{Op: "read", Path: d.name, Err: iofs.ErrInvalid} }
func (d *dirFile) Close() error             { return nil }

func (d *dirFile) ReadDir(n int) ([]iofs.DirEntry, error) {
	if n <= 0 {
		out := d.entries[d.pos:]
		d.pos = len(d.entries)
		return out, nil
	}
	if d.pos >= len(d.entries) {
		return nil, io.EOF
	}
	end := d.pos + n
	if end > len(d.entries) {
		end = len(d.entries)
	}
	out := d.entries[d.pos:end]
	d.pos = end
	return out, nil
}

// elemFile implements iofs.File over a fully buffered element payload.
type elemFile struct {
	name string
	data []byte
	pos  int
}

func (e *elemFile) Stat() (iofs.FileInfo, error) {
	return fileInfo{dirEntry{name: e.name, size: int64(len(e.data))}}, nil
}

func (e *elemFile) Read(p []byte) (int, error) {
	if e.pos >= len(e.data) {
		return 0, io.EOF
	}
	n := copy(p, e.data[e.pos:])
	e.pos += n
	return n, nil
}

func (e *elemFile) Close() error { return nil }
