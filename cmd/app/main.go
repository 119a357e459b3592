package main

import "dispatch/cmd"

func main() {
	cmd.Execute()
}
