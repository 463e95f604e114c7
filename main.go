package main

import "github.com/agentic-research/sage/cmd"

func main() {
	cmd.Execute()
}
