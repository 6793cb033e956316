package main

import (
	"github.com/Laisky/scratchpad-mcp/cmd"
)

func main() {
	cmd.Execute()
}
