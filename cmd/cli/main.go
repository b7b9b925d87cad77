package main

import "github.com/xvisor/xv/cmd/cli/cmd"

func main() {
	cmd.Execute()
}
