package main

import "github.com/windloads/segpress/cmd"

func main() {
	cmd.Execute()
}
