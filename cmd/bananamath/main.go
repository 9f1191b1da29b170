package main

import "github.com/mcoot/bananamath/internal/cli"

func main() {
	cli.Execute()
}
