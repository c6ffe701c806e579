package main

import (
	"log"
	"runtime/debug"

	"github.com/sirrobot01/streamgate/pkg/cli"
	_ "github.com/sirrobot01/streamgate/pkg/cli/commands"
)

func main() {
	defer func() {
		if r := recover(); r != nil {
			log.Printf("FATAL: Recovered from panic in main: %v\n", r)
			debug.PrintStack()
		}
	}()

	if err := cli.Execute(); err != nil {
		log.Fatal(err)
	}
}
