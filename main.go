package main

import "restaurant/cmd"

func main() {
	cmd.Execute()
}
