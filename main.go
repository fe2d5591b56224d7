package main

import "github.com/darmiel/realmbroker/cmd"

func main() {
	cmd.Execute()
}
