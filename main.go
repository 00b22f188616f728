package main

import "github.com/annolab/facepair/cmd"

func main() {
	cmd.Execute()
}
