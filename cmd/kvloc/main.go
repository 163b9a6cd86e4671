package main

import "kvloc/internal/cli"

func main() {
	cli.Execute()
}
