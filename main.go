package main

import "github.com/mj1618/ai-testing-tool/cmd"

func main() {
	cmd.Execute()
}
