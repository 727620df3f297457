package main

import "github.com/livp123/mcapstat/cmd/mcapstat/commands"

func main() {
	commands.Execute()
}
