package main

import "github.com/lipish/postloop/cmd"

func main() {
	cmd.Execute()
}
