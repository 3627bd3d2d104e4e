// Command hmount mounts a container read-only as a FUSE filesystem,
// one directory per tag and one file per ref, via internal/vfsbridge.
package main

import (
	"fmt"
	"os"
	"os/signal"
	"syscall"

	"github.com/KarpelesLab/hdf4core"
	"github.com/KarpelesLab/hdf4core/internal/vfsbridge"
)

func main() {
	if len(os.Args) != 3 {
		fmt.Fprintln(os.Stderr, "Usage: hmount <file> <mountpoint>")
		os.Exit(1)
	}

	store, err := ddstore.Open(os.Args[1], ddstore.ModeRead)
	if err != nil {
		fmt.Fprintf(os.Stderr, "Error: %s\n", err)
		os.Exit(1)
	}
	defer store.Close()

	fsys := vfsbridge.New(store)
	server, err := vfsbridge.Mount(os.Args[2], fsys)
	if err != nil {
		fmt.Fprintf(os.Stderr, "Error: %s\n", err)
		os.Exit(1)
	}

	sig := make(chan os.Signal, 1)
	signal.Notify(sig, syscall.SIGINT, syscall.SIGTERM)
	go func() {
		<-sig
		server.Unmount()
	}()

	server.Wait()
}
