package main

import "examsathi/internal/cli"

func main() {
	cli.Execute()
}
