package main

import "github.com/jmehdipour/lunchly/cmd"

func main() {
	cmd.Execute()
}
