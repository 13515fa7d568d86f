package main

import "github.com/hlindberg/embedded-mqtt/cmd"

func main() {
	cmd.Execute()
}
