package x86_64

import (
	"fmt"
	"os"
	"path/filepath"

	"github.com/spf13/cobra"
	"golang.org/x/sys/unix"

	"github.com/xvisor/xv/architecture/x86_64"
	"github.com/xvisor/xv/internal/tracecontext"
)

var DisassembleCmd = &cobra.Command{
	Use:     "disassemble <file> [base-address]",
	GroupID: "file-operations",
	Short:   "Disassemble a flat binary file to stdout.",
	Long: `Disassemble a flat binary file to stdout.

The file is mapped read-only and walked from offset 0 to end of file,
decoding one instruction at a time and pretty-printing it. An optional
second argument gives the logical base address the file's first byte
should be treated as occupying; it defaults to 0.`,
	Run: func(cmd *cobra.Command, args []string) {
		if err := runDisassemble(cmd, args); err != nil {
			cmd.PrintErrln("Error:", err)
		}
	},
}

func runDisassemble(cmd *cobra.Command, args []string) error {
	fullPath, err := resolveFilePath(args)
	if err != nil {
		return err
	}

	base, err := resolveBaseAddress(args)
	if err != nil {
		return err
	}

	mem, err := mapFileReadOnly(fullPath)
	if err != nil {
		return err
	}
	defer unix.Munmap(mem)

	ctx := tracecontext.New(filepath.Base(fullPath))
	ctx.SetPhase("decode")

	var out [256]byte
	pos := 0
	for pos < len(mem) {
		ins, next, status := x86_64.Decode(mem, pos, base+uint64(pos))
		if status != x86_64.ReadCont {
			if status == x86_64.ReadEnd {
				break
			}
			ctx.Error(ctx.Loc(base+uint64(pos)), fmt.Sprintf("decode stopped: %s", status))
			break
		}

		n := x86_64.Print(&ins, out[:])
		if n == 0 {
			ctx.Warning(ctx.Loc(ins.Start), "instruction text truncated")
		} else {
			cmd.Println(string(out[:n]))
		}
		pos = next
	}

	for _, e := range ctx.Entries() {
		cmd.PrintErrln(e.String())
	}
	return nil
}

// resolveFilePath validates the CLI arguments and returns the absolute path
// to the binary file.
func resolveFilePath(args []string) (string, error) {
	if len(args) < 1 {
		return "", fmt.Errorf("no input file provided")
	}
	if args[0] == "" {
		return "", fmt.Errorf("input file path is empty")
	}

	cwd, err := os.Getwd()
	if err != nil {
		return "", fmt.Errorf("unable to get current working directory: %w", err)
	}

	fullPath := args[0]
	if !filepath.IsAbs(fullPath) {
		fullPath = filepath.Join(cwd, fullPath)
	}
	if _, err := os.Stat(fullPath); os.IsNotExist(err) {
		return "", fmt.Errorf("input file does not exist at path: %s", fullPath)
	}

	return fullPath, nil
}

// resolveBaseAddress reads the optional second positional argument as a
// hex or decimal logical base address, defaulting to 0.
func resolveBaseAddress(args []string) (uint64, error) {
	if len(args) < 2 || args[1] == "" {
		return 0, nil
	}
	var base uint64
	_, err := fmt.Sscanf(args[1], "0x%x", &base)
	if err != nil {
		_, err = fmt.Sscanf(args[1], "%d", &base)
	}
	if err != nil {
		return 0, fmt.Errorf("invalid base address %q: %w", args[1], err)
	}
	return base, nil
}

// mapFileReadOnly mmaps the file PRIVATE so decoding never risks mutating
// the caller's on-disk copy, matching how a rewriter would first inspect a
// target image before remapping any part of it writable.
func mapFileReadOnly(path string) ([]byte, error) {
	f, err := os.Open(path)
	if err != nil {
		return nil, fmt.Errorf("open %s: %w", path, err)
	}
	defer f.Close()

	fi, err := f.Stat()
	if err != nil {
		return nil, fmt.Errorf("stat %s: %w", path, err)
	}
	size := int(fi.Size())
	if size == 0 {
		return nil, fmt.Errorf("%s is empty", path)
	}

	mem, err := unix.Mmap(int(f.Fd()), 0, size, unix.PROT_READ, unix.MAP_PRIVATE)
	if err != nil {
		return nil, fmt.Errorf("mmap %s: %w", path, err)
	}
	return mem, nil
}
