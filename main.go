package main

import (
	"github.com/hwforge/xactgen/cmd"
)

func main() {
	cmd.Execute()
}
