package main

import "github.com/dmitrymomot/sessionkit/cmd/sessionctl/cmd"

func main() {
	cmd.Execute()
}
