package main

import "springboard/commands"

const Version = "v0.1.0"

func main() {
	commands.Execute(Version)
}
