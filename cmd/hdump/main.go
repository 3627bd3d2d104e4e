// Command hdump is a small CLI inspector for containers, mirroring
// the teacher's sqfs(1) tool (ls/cat/info over an io/fs.FS view).
package main

import (
	"fmt"
	"io/fs"
	"os"

	"github.com/KarpelesLab/hdf4core"
	"github.com/KarpelesLab/hdf4core/internal/vfsbridge"
)

const usage = `hdump - container inspector

Usage:
  hdump ls <file> [<tag-dir>]     List tags, or refs under one tag
  hdump cat <file> <tag> <ref>    Print an element's payload to stdout
  hdump info <file>               Summarize the container
  hdump help                      Show this help message
`

func main() {
	if len(os.Args) < 2 {
		fmt.Print(usage)
		os.Exit(1)
	}

	switch os.Args[1] {
	case "ls":
		if len(os.Args) < 3 {
			fmt.Fprintln(os.Stderr, "Error: missing file path")
			os.Exit(1)
		}
		path := "."
		if len(os.Args) > 3 {
			path = os.Args[3]
		}
		if err := list(os.Args[2], path); err != nil {
			fmt.Fprintf(os.Stderr, "Error: %s\n", err)
			os.Exit(1)
		}
	case "cat":
		if len(os.Args) < 5 {
			fmt.Fprintln(os.Stderr, "Error: missing file, tag, or ref")
			os.Exit(1)
		}
		if err := cat(os.Args[2], os.Args[3], os.Args[4]); err != nil {
			fmt.Fprintf(os.Stderr, "Error: %s\n", err)
			os.Exit(1)
		}
	case "info":
		if len(os.Args) < 3 {
			fmt.Fprintln(os.Stderr, "Error: missing file path")
			os.Exit(1)
		}
		if err := info(os.Args[2]); err != nil {
			fmt.Fprintf(os.Stderr, "Error: %s\n", err)
			os.Exit(1)
		}
	case "help":
		fmt.Print(usage)
	default:
		fmt.Fprintf(os.Stderr, "Error: unknown command %q\n", os.Args[1])
		fmt.Print(usage)
		os.Exit(1)
	}
}

func openFS(path string) (*ddstore.Store, *vfsbridge.FS, error) {
	s, err := ddstore.Open(path, ddstore.ModeRead)
	if err != nil {
		return nil, nil, err
	}
	return s, vfsbridge.New(s), nil
}

func list(path, dir string) error {
	store, fsys, err := openFS(path)
	if err != nil {
		return err
	}
	defer store.Close()

	entries, err := fs.ReadDir(fsys, dir)
	if err != nil {
		return err
	}
	for _, e := range entries {
		info, err := e.Info()
		if err != nil {
			fmt.Fprintf(os.Stderr, "Warning: %s: %s\n", e.Name(), err)
			continue
		}
		if info.IsDir() {
			fmt.Printf("%-16s  <tag>\n", e.Name())
			continue
		}
		fmt.Printf("%-16s  %8d bytes\n", e.Name(), info.Size())
	}
	return nil
}

func cat(path, tag, ref string) error {
	store, fsys, err := openFS(path)
	if err != nil {
		return err
	}
	defer store.Close()

	data, err := fs.ReadFile(fsys, fmt.Sprintf("tag-%s/ref-%s", tag, ref))
	if err != nil {
		return err
	}
	_, err = os.Stdout.Write(data)
	return err
}

func info(path string) error {
	store, err := ddstore.Open(path, ddstore.ModeRead)
	if err != nil {
		return err
	}
	defer store.Close()

	elems := store.List()
	tags := map[ddstore.Tag]bool{}
	var special int
	var total int64
	for _, e := range elems {
		tags[e.Tag] = true
		total += e.Length
		if e.Special {
			special++
		}
	}

	fmt.Println("Container information")
	fmt.Println("=====================")
	fmt.Printf("Elements:          %d\n", len(elems))
	fmt.Printf("Distinct tags:     %d\n", len(tags))
	fmt.Printf("Special elements:  %d\n", special)
	fmt.Printf("Descriptor bytes:  %d\n", total)
	return nil
}
