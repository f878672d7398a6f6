package main

import "github.com/mrameshirs/face-gate/cmd"

func main() {
	cmd.Execute()
}
