package main

import (
	"github.com/andrefdof/syncfiler/cmd"
	"github.com/andrefdof/syncfiler/cmd/util"
)

func main() {
	defer util.HandlePanic()
	cmd.Execute()
}
