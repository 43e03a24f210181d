package main

import (
	"github.com/robalobadob/wordchain/cmd"
)

func main() {
	cmd.Execute()
}
