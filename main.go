package main

import "github.com/StinkyLord/xctools/cmd"

func main() {
	cmd.Execute()
}
