// main.go
//
// Entry point; CLI handling lives in the cobra root command in cmd/root.go

package main

import (
	"github.com/hector-sim/hector-core/cmd"
)

func main() {
	cmd.Execute()
}
