package main

import "github.com/Olenjan/makelist/cmd"

func main() {
	cmd.Execute()
}
