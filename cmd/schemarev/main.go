package main

import "github.com/schemarev/schemarev/cmd/schemarev/cmd"

func main() {
	cmd.Execute()
}
