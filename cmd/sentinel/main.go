package main

import "github.com/gatherly/sentinel/internal/cli"

func main() {
	cli.Execute()
}
