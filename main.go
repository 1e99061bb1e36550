package main

import "github.com/Aandreba/mutflex/cmd"

func main() {
	cmd.Execute()
}
