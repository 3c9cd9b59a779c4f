package main

import "github.com/caretapps-developer/gb2-terminal-monorepo/internal/cli"

func main() {
	cli.Execute()
}
