package main

import "github.com/diogo/agui/internal/commands"

func main() {
	commands.Execute()
}
