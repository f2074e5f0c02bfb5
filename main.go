package main

import "github.com/freshersjob/freshersjob/cmd"

func main() {
	cmd.Execute()
}
