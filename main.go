package main

import "github.com/naka-gawa/reporanger-dashboard/cmd"

func main() {
	cmd.Execute()
}
