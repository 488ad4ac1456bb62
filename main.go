package main

import "github.com/arctir/schedsim/cmd"

func main() {
	cmd.Execute()
}
