package main

import "swatch-backend/cmd"

func main() {
	cmd.Run()
}
