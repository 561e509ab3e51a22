package main

import "github.com/agentic-research/litgrep/cmd"

func main() {
	cmd.Execute()
}
