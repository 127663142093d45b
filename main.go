package main

import "github.com/textpolish/textpolish/cmd"

func main() {
	cmd.Execute()
}
