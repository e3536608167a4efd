// Command vark bundles files into, and extracts files from, a Vark
// archive. It is a thin collaborator around the vark package: flag
// parsing, recursive directory expansion, and progress printing live here;
// the archive format and its read/append paths live in the library.
package main

import (
	"fmt"
	"io/fs"
	"os"
	"path/filepath"

	"github.com/spf13/pflag"

	vark "github.com/ondralie/vark"
)

func main() {
	os.Exit(run(os.Args[1:]))
}

type mode int

const (
	modeNone mode = iota
	modeCreate
	modeAppend
	modeExtract
	modeList
	modeVerify
)

func run(args []string) int {
	flags := pflag.NewFlagSet("vark", pflag.ContinueOnError)
	create := flags.BoolP("create", "c", false, "create a new archive")
	appendFlag := flags.BoolP("append", "a", false, "append inputs to an archive")
	extract := flags.BoolP("extract", "x", false, "extract an archive's contents")
	list := flags.BoolP("list", "l", false, "list an archive's contents")
	verify := flags.BoolP("verify", "v", false, "verify stored hashes against decompressed contents")
	sharded := flags.BoolP("sharded", "s", false, "store appended entries in sharded form")
	dest := flags.StringP("output", "o", ".", "destination directory for extract")

	if err := flags.Parse(args); err != nil {
		return 1
	}

	rest := flags.Args()
	if len(rest) == 0 {
		fmt.Fprintln(os.Stderr, "vark: usage: vark [-c|-a|-x|-l|-v] [-s] archive [inputs...]")
		return 1
	}
	archivePath := rest[0]
	inputs := rest[1:]

	m, err := resolveMode(*create, *appendFlag, *extract, *list, *verify, archivePath, inputs)
	if err != nil {
		fmt.Fprintln(os.Stderr, "vark:", err)
		return 1
	}

	opts := vark.AppendOption(0)
	if *sharded {
		opts = vark.CompressSharded
	}

	switch m {
	case modeCreate:
		return doCreate(archivePath, inputs, opts)
	case modeAppend:
		return doAppend(archivePath, inputs, opts)
	case modeExtract:
		return doExtract(archivePath, *dest)
	case modeList:
		return doList(archivePath)
	case modeVerify:
		return doVerify(archivePath)
	default:
		fmt.Fprintln(os.Stderr, "vark: no mode selected")
		return 1
	}
}

// resolveMode picks the operating mode, honoring spec.md §6's default:
// without an explicit mode flag, extract if the archive exists and no
// inputs were given, otherwise append (if it exists) or create.
func resolveMode(create, appendFlag, extract, list, verify bool, archivePath string, inputs []string) (mode, error) {
	var picked mode
	count := 0
	for _, sel := range []struct {
		set bool
		m   mode
	}{
		{create, modeCreate},
		{appendFlag, modeAppend},
		{extract, modeExtract},
		{list, modeList},
		{verify, modeVerify},
	} {
		if sel.set {
			picked = sel.m
			count++
		}
	}
	if count > 1 {
		return modeNone, fmt.Errorf("only one of -c/-a/-x/-l/-v may be given")
	}
	if count == 1 {
		return picked, nil
	}

	_, err := os.Stat(archivePath)
	exists := err == nil
	switch {
	case exists && len(inputs) == 0:
		return modeExtract, nil
	case exists:
		return modeAppend, nil
	default:
		return modeCreate, nil
	}
}

type fileToAdd struct{ src, stored string }

// expandInputs recursively expands any directory argument into the set of
// regular files beneath it (spec.md §6), storing paths with '/' separators
// regardless of host platform.
func expandInputs(inputs []string) ([]fileToAdd, error) {
	var out []fileToAdd
	for _, in := range inputs {
		info, err := os.Stat(in)
		if err != nil {
			return nil, fmt.Errorf("stat %s: %w", in, err)
		}
		if !info.IsDir() {
			out = append(out, fileToAdd{src: in, stored: filepath.ToSlash(in)})
			continue
		}
		base := filepath.Dir(in)
		err = filepath.WalkDir(in, func(p string, d fs.DirEntry, err error) error {
			if err != nil {
				return err
			}
			if d.IsDir() || !d.Type().IsRegular() {
				return nil
			}
			rel, err := filepath.Rel(base, p)
			if err != nil {
				return err
			}
			out = append(out, fileToAdd{src: p, stored: filepath.ToSlash(rel)})
			return nil
		})
		if err != nil {
			return nil, err
		}
	}
	return out, nil
}

func doCreate(archivePath string, inputs []string, opts vark.AppendOption) int {
	a, err := vark.Create(archivePath, vark.Write|vark.PersistentFP)
	if err != nil {
		fmt.Fprintln(os.Stderr, "vark:", err)
		return 1
	}
	defer a.Close()
	return addAll(a, inputs, opts)
}

func doAppend(archivePath string, inputs []string, opts vark.AppendOption) int {
	a, err := vark.Open(archivePath, vark.Write|vark.PersistentFP)
	if err != nil {
		fmt.Fprintln(os.Stderr, "vark:", err)
		return 1
	}
	defer a.Close()
	return addAll(a, inputs, opts)
}

func addAll(a *vark.Archive, inputs []string, opts vark.AppendOption) int {
	files, err := expandInputs(inputs)
	if err != nil {
		fmt.Fprintln(os.Stderr, "vark:", err)
		return 1
	}
	for _, f := range files {
		if _, err := a.AppendFile(f.src, f.stored, opts); err != nil {
			fmt.Fprintln(os.Stderr, "vark:", err)
			return 1
		}
		fmt.Println(f.stored)
	}
	return 0
}

func doExtract(archivePath, dest string) int {
	a, err := vark.Open(archivePath, vark.Mmap)
	if err != nil {
		fmt.Fprintln(os.Stderr, "vark:", err)
		return 1
	}
	defer a.Close()

	for _, e := range a.Entries() {
		data, err := a.DecompressFile(e.Path)
		if err != nil {
			fmt.Fprintln(os.Stderr, "vark:", err)
			return 1
		}
		outPath := filepath.Join(dest, filepath.FromSlash(e.Path))
		if err := os.MkdirAll(filepath.Dir(outPath), 0o755); err != nil {
			fmt.Fprintln(os.Stderr, "vark:", err)
			return 1
		}
		if err := os.WriteFile(outPath, data, 0o644); err != nil {
			fmt.Fprintln(os.Stderr, "vark:", err)
			return 1
		}
		fmt.Println(e.Path)
	}
	return 0
}

func doList(archivePath string) int {
	a, err := vark.Open(archivePath, 0)
	if err != nil {
		fmt.Fprintln(os.Stderr, "vark:", err)
		return 1
	}
	defer a.Close()

	for _, e := range a.Entries() {
		kind := "plain"
		if e.Sharded() {
			kind = "sharded"
		}
		fmt.Printf("%-8s %12d  %s\n", kind, e.Size, e.Path)
	}
	return 0
}

func doVerify(archivePath string) int {
	a, err := vark.Open(archivePath, 0)
	if err != nil {
		fmt.Fprintln(os.Stderr, "vark:", err)
		return 1
	}
	defer a.Close()

	ok := true
	for _, e := range a.Entries() {
		good, err := a.Verify(e.Path)
		if err != nil {
			fmt.Fprintf(os.Stderr, "vark: %s: %v\n", e.Path, err)
			ok = false
			continue
		}
		if !good {
			fmt.Fprintf(os.Stderr, "vark: %s: hash mismatch\n", e.Path)
			ok = false
			continue
		}
		fmt.Println(e.Path)
	}
	if !ok {
		return 1
	}
	return 0
}
