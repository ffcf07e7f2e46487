package main

import "playshare/cmd"

func main() {
	cmd.Execute()
}
