package main

import "github.com/carton-build/carton/cmd"

func main() {
	cmd.Execute()
}
