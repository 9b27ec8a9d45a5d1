package main

import "github.com/Laisky/zine-site/cmd"

func main() {
	cmd.Execute()
}
