package main

import "checkctl/internal/cli"

func main() {
	cli.Execute()
}
