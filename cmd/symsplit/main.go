package main

import "github.com/mvp-joe/symsplit/internal/cli"

func main() {
	cli.Execute()
}
