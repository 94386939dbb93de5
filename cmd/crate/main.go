package main

import "github.com/tessro/crate/internal/cli"

func main() {
	cli.Execute()
}
