package main

import "github.com/tortlewortle/vodrecover/cmd"

func main() {
	cmd.Execute()
}
