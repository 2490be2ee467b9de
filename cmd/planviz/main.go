package main

import "github.com/mhpenta/planviz/internal/cmd"

func main() {
	cmd.Execute()
}
