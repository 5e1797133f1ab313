package main

import "github.com/JeroenBertels/glh-timer/cmd"

func main() {
	cmd.Execute()
}
