package main

import "github.com/joeycumines/go-winloop/cmd/winloop-demo/commands"

func main() {
	commands.Execute()
}
