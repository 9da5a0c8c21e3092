package main

import "registro/cmd"

func main() {
	cmd.Execute()
}
