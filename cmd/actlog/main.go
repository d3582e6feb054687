package main

import (
	"github.com/nari/actlog/cmd/actlog/cmd"
)

func main() {
	cmd.Execute()
}
