package main

import "github.com/sw33tLie/curaudit/cmd"

func main() {
	cmd.Execute()
}
