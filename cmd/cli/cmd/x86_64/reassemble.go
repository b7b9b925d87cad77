package x86_64

import (
	"bytes"
	"fmt"
	"path/filepath"

	"github.com/spf13/cobra"
	"golang.org/x/sys/unix"

	"github.com/xvisor/xv/architecture/x86_64"
	"github.com/xvisor/xv/internal/tracecontext"
)

var ReassembleCmd = &cobra.Command{
	Use:     "reassemble <file> [base-address]",
	GroupID: "file-operations",
	Short:   "Decode a flat binary file and re-encode it, reporting any byte drift.",
	Long: `Decode a flat binary file one instruction at a time and re-encode each
decoded record into a fresh RWX buffer, then diff the result byte-for-byte
against the original. A clean diff demonstrates that the decoder captured
the full semantic content of the input; this is the round-trip property a
rewriter depends on when it relocates code it never intends to modify.`,
	Run: func(cmd *cobra.Command, args []string) {
		if err := runReassemble(cmd, args); err != nil {
			cmd.PrintErrln("Error:", err)
		}
	},
}

func runReassemble(cmd *cobra.Command, args []string) error {
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

	out, err := x86_64.NewBuffer(len(mem), base)
	if err != nil {
		return fmt.Errorf("allocate output buffer: %w", err)
	}
	defer out.Close()

	pos := 0
	count := 0
	for pos < len(mem) {
		ctx.SetPhase("decode")
		ins, next, status := x86_64.Decode(mem, pos, base+uint64(pos))
		if status != x86_64.ReadCont {
			if status == x86_64.ReadEnd {
				break
			}
			return fmt.Errorf("decode stopped at 0x%x: %s", base+uint64(pos), status)
		}

		ctx.SetPhase("encode")
		if _, status := out.WriteInsn(&ins); status != x86_64.WriteCont {
			if status != x86_64.WriteEOBUF {
				return fmt.Errorf("encode stopped at 0x%x: %s", ins.Start, status)
			}
			if err := out.Reallocate(out.Capacity() * 2); err != nil {
				return fmt.Errorf("grow output buffer: %w", err)
			}
			pos, count = 0, 0
			continue
		}
		pos = next
		count++
	}

	original := mem[:pos]
	rewritten := out.Bytes()[:out.Current]
	if bytes.Equal(original, rewritten) {
		cmd.Printf("round trip clean: %d bytes, %d instructions\n", pos, count)
		return nil
	}

	reportDrift(cmd, ctx, original, rewritten)
	return nil
}

// reportDrift locates the first differing byte and records it, then prints
// the surrounding windows from both buffers for comparison.
func reportDrift(cmd *cobra.Command, ctx *tracecontext.Context, original, rewritten []byte) {
	n := len(original)
	if len(rewritten) < n {
		n = len(rewritten)
	}

	offset := n
	for i := 0; i < n; i++ {
		if original[i] != rewritten[i] {
			offset = i
			break
		}
	}

	ctx.Error(ctx.Loc(uint64(offset)), fmt.Sprintf(
		"byte drift at offset %d (original len %d, rewritten len %d)",
		offset, len(original), len(rewritten)))

	for _, e := range ctx.Entries() {
		cmd.PrintErrln(e.String())
	}

	window := func(b []byte, at int) []byte {
		start := at - 4
		if start < 0 {
			start = 0
		}
		end := at + 4
		if end > len(b) {
			end = len(b)
		}
		return b[start:end]
	}
	cmd.Printf("original:  % x\n", window(original, offset))
	cmd.Printf("rewritten: % x\n", window(rewritten, offset))
}
