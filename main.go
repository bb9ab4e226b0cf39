package main

import "github.com/vietddude/tapedeck/internal/cli"

func main() {
	cli.Execute()
}
