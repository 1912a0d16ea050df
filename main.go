package main

import "github.com/robertgumeny/testgen/cmd"

func main() {
	cmd.Execute()
}
