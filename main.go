package main

import "github.com/openverdict/tribunal/cmd"

func main() {
	cmd.Execute()
}
