package vfsbridge

import (
	"context"
	"io/fs"
	"sort"
	"syscall"

	gofs "github.com/hanwen/go-fuse/v2/fs"
	"github.com/hanwen/go-fuse/v2/fuse"
)

// node is a generic FUSE inode wrapping one path of an io/fs.FS,
// resolving children lazily on Lookup/Readdir the same way the
// teacher's Inode.Lookup/OpenDir/ReadDir resolved squashfs directory
// entries on demand rather than building the whole tree up front.
type node struct {
	gofs.Inode

	fsys fs.FS
	path string
}

var (
	_ gofs.NodeLookuper  = (*node)(nil)
	_ gofs.NodeReaddirer = (*node)(nil)
	_ gofs.NodeOpener    = (*node)(nil)
	_ gofs.NodeGetattrer = (*node)(nil)
)

// Root returns the FUSE root node for fsys, suitable for gofs.Mount.
func Root(fsys fs.FS) gofs.InodeEmbedder {
	return &node{fsys: fsys, path: "."}
}

func joinPath(dir, name string) string {
	if dir == "." {
		return name
	}
	return dir + "/" + name
}

func (n *node) Getattr(ctx context.Context, f gofs.FileHandle, out *fuse.AttrOut) syscall.Errno {
	info, err := fs.Stat(n.fsys, n.path)
	if err != nil {
		return syscall.ENOENT
	}
	if info.IsDir() {
		out.Mode = fuse.S_IFDIR | 0o555
	} else {
		out.Mode = fuse.S_IFREG | 0o444
		out.Size = uint64(info.Size())
	}
	out.SetTimes(nil, nil, nil)
	return 0
}

func (n *node) Lookup(ctx context.Context, name string, out *fuse.EntryOut) (*gofs.Inode, syscall.Errno) {
	childPath := joinPath(n.path, name)
	info, err := fs.Stat(n.fsys, childPath)
	if err != nil {
		return nil, syscall.ENOENT
	}
	child := &node{fsys: n.fsys, path: childPath}
	mode := uint32(fuse.S_IFREG)
	if info.IsDir() {
		mode = fuse.S_IFDIR
	}
	out.Attr.Mode = mode
	out.Attr.Size = uint64(info.Size())
	return n.NewInode(ctx, child, gofs.StableAttr{Mode: mode}), 0
}

func (n *node) Readdir(ctx context.Context) (gofs.DirStream, syscall.Errno) {
	entries, err := fs.ReadDir(n.fsys, n.path)
	if err != nil {
		return nil, syscall.ENOENT
	}
	sort.Slice(entries, func(i, j int) bool { return entries[i].Name() < entries[j].Name() })

	out := make([]fuse.DirEntry, 0, len(entries))
	for _, e := range entries {
		mode := uint32(fuse.S_IFREG)
		if e.IsDir() {
			mode = uint32(fuse.S_IFDIR)
		}
		out = append(out, fuse.DirEntry{Name: e.Name(), Mode: mode})
	}
	return gofs.NewListDirStream(out), 0
}

func (n *node) Open(ctx context.Context, flags uint32) (gofs.FileHandle, uint32, syscall.Errno) {
	data, err := fs.ReadFile(n.fsys, n.path)
	if err != nil {
		return nil, 0, syscall.EIO
	}
	return &fileHandle{data: data}, fuse.FOPEN_KEEP_CACHE, 0
}

// fileHandle serves reads from a buffered, fully-decoded payload — the
// same whole-buffer-in-memory simplification the compressed-element
// engine uses.
type fileHandle struct {
	data []byte
}

var _ gofs.FileReader = (*fileHandle)(nil)

func (h *fileHandle) Read(ctx context.Context, dest []byte, off int64) (fuse.ReadResult, syscall.Errno) {
	if off < 0 || off > int64(len(h.data)) {
		return nil, syscall.EINVAL
	}
	end := off + int64(len(dest))
	if end > int64(len(h.data)) {
		end = int64(len(h.data))
	}
	return fuse.ReadResultData(h.data[off:end]), 0
}

// Mount mounts fsys read-only at mountpoint and returns once the mount
// is up, with the server already serving requests in the background;
// callers block on server.Wait() and call server.Unmount() to stop it.
func Mount(mountpoint string, fsys fs.FS) (*fuse.Server, error) {
	opts := &gofs.Options{
		MountOptions: fuse.MountOptions{
			Name:   "hdf4core",
			FsName: "hdf4core",
			Debug:  false,
		},
	}
	return gofs.Mount(mountpoint, Root(fsys), opts)
}
