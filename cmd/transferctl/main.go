package main

import "github.com/transferdesk/platform/internal/cli"

func main() {
	cli.Execute()
}
