package main

import "emrtd-reader/cmd"

func main() {
	cmd.Execute()
}
