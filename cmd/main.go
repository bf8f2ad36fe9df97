package main

import (
	"github.com/graph-inspector/cmd/agent"
)

func main() {
	agent.Execute()
}
