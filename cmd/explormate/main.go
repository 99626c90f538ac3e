package main

import (
	"os"

	"github.com/explormate/explormate-chain/common/runtime"
)

func main() {
	err := NewRootCommand().Execute()
	if err != nil {
		runtime.ReportError(err)
	}
	runtime.Shutdown()
	if err != nil {
		os.Exit(1)
	}
}
