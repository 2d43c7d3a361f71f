package main

import "github.com/Flakebi/FileSender/cmd"

func main() {
	cmd.Execute()
}
