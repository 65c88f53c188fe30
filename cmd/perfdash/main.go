package main

import "perfdash/internal/cli"

func main() {
	cli.Execute()
}
