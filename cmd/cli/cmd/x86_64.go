package cmd

import (
	"github.com/spf13/cobra"

	x8664 "github.com/xvisor/xv/cmd/cli/cmd/x86_64"
)

var x8664Cmd = &cobra.Command{
	Use:     "x86_64",
	GroupID: "arch",
	Short:   "x86_64 instruction codec",
	Long:    `Decode, pretty-print, and re-encode x86-64 machine code.`,
}

func init() {
	x8664Cmd.AddGroup(&cobra.Group{
		ID:    "file-operations",
		Title: "File operations",
	})

	x8664Cmd.AddCommand(x8664.DisassembleCmd)
	x8664Cmd.AddCommand(x8664.ReassembleCmd)
}
