package main

import "github.com/mvp-joe/autoheaders/internal/cli"

func main() {
	cli.Execute()
}
