package main

import "github.com/theirongolddev/savemoney/cmd"

func main() {
	cmd.Execute()
}
