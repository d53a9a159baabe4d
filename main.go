package main

import "github.com/KaramelBytes/churnlens-cli/cmd"

func main() {
	cmd.Execute()
}
